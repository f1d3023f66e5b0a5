package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// DirMode is the permission mode of directories created under [ConfigDir]
// and [CacheDir].
const DirMode os.FileMode = 0o700

// Prefix returns the executable's base name, used to derive directory names
// and environment variable prefixes. A dlv debug binary ("__debug_bin123")
// maps to [Name] and leading dots are removed.
//
//nolint:gochecknoglobals
var Prefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		if exe, err := os.Executable(); err == nil {
			id = exe
		}

		id = filepath.Base(id)
		id = strings.TrimSuffix(id, filepath.Ext(id))
		id = regexp.MustCompile(`^__debug_bin\d*$`).ReplaceAllString(id, Name)
		id = strings.TrimLeft(id, ".")

		if id == "" {
			return Name
		}

		return id
	},
)

// userDir resolves a per-user base directory, falling back to a dot
// directory under the home directory and then to the working directory.
func userDir(base func() (string, error), dot string) string {
	if dir, err := base(); err == nil {
		return filepath.Join(dir, Prefix())
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, dot, Prefix())
	}

	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, "."+Prefix())
	}

	return "." + Prefix()
}

// ConfigDir returns the per-user configuration directory.
//
//nolint:gochecknoglobals
var ConfigDir = sync.OnceValue(func() string {
	return userDir(os.UserConfigDir, ".config")
})

// CacheDir returns the per-user directory for transient files such as
// profiles and REPL history.
//
//nolint:gochecknoglobals
var CacheDir = sync.OnceValue(func() string {
	return userDir(os.UserCacheDir, ".cache")
})

// TranslationsDir returns the default directory searched for translation
// files.
func TranslationsDir() string {
	return filepath.Join(ConfigDir(), "translations")
}

// ConfigFile returns the path of the default configuration file with the
// given extension (".json", ".yaml").
func ConfigFile(ext string) string {
	return filepath.Join(ConfigDir(), "config"+ext)
}

// HistoryFile returns the path of the REPL history file.
func HistoryFile() string {
	return filepath.Join(CacheDir(), "history")
}
