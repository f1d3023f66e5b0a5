package i18n

import "github.com/ardnew/lingo/lang"

// Predefined errors (sentinel values).
var (
	ErrMissingTranslation = lang.NewError("missing translation")
	ErrMissingPhrase      = lang.NewError("missing selectable phrase key")
	ErrUnsupportedLocale  = lang.NewError("unsupported locale")
	ErrInvalidArgument    = lang.NewError("invalid argument")
	ErrUnknownFormat      = lang.NewError("unknown format")
	ErrCyclicTranslation  = lang.NewError("cyclic translation")
)
