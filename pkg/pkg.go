// Package pkg holds the module's identity and the locations it uses on disk.
package pkg

import (
	_ "embed"
	"strings"
)

// Version is the semantic version of the module, embedded at build time.
//
//go:embed VERSION
var version string

// Version returns the module version without surrounding whitespace.
func Version() string { return strings.TrimSpace(version) }

const (
	// Name is the command name and the identifier used for default paths and
	// environment variables.
	Name = "lingo"
	// Description is a one-line summary shown in help output.
	Description = "Phrase interpolation and translation toolkit"
)

// AuthorInfo is an author's name and email address.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the primary authors of the project.
//
//nolint:gochecknoglobals
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
