package repl

import "github.com/ardnew/lingo/lang"

// Sentinel errors.
var (
	ErrOutOfBounds    = lang.NewError("index out of range")
	ErrEditDeclined   = lang.NewError("decline edit")
	ErrNoTranslator   = lang.NewError("no translator")
	ErrUnknownCommand = lang.NewError("unknown command")
)
