// Package loader reads translation files from a directory and builds the
// phrases of every locale.
//
// File names select the locale: en.json holds the base English phrases,
// en-GB.yaml the British ones and en-GB.formal.toml a formal variation.
// Country and variation phrases inherit everything they do not override.
// go-i18n message files (active.en.toml) are imported alongside.
package loader
