package cmd

import "github.com/ardnew/lingo/lang"

var (
	ErrInvalidBinding = lang.NewError("invalid binding")
	ErrCheckFailed    = lang.NewError("translations have errors")
	ErrMarshal        = lang.NewError("cannot encode output")
	ErrWriteConfig    = lang.NewError("write configuration file")
	ErrFileExists     = lang.NewError("file exists (use --force to overwrite)")
	ErrServe          = lang.NewError("server stopped")
)
