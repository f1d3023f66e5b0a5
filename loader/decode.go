package loader

import (
	"encoding/json"
	"log/slog"
	"path"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"

	"github.com/ardnew/lingo/lang"
)

// UnmarshalFunc decodes file contents into v.
type UnmarshalFunc func(data []byte, v any) error

// Decoders maps a lower-case file extension, without the dot, to the function
// that decodes it.
var Decoders = map[string]UnmarshalFunc{
	"json": json.Unmarshal,
	"yaml": yaml.Unmarshal,
	"yml":  yaml.Unmarshal,
	"toml": toml.Unmarshal,
}

// Ext returns the lower-case extension of name without the dot.
func Ext(name string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
}

// Decode decodes data by the extension of name into a phrase tree.
func Decode(name string, data []byte) (Phrases, error) {
	ext := Ext(name)

	unmarshal, ok := Decoders[ext]
	if !ok {
		return nil, ErrDecode.With(
			slog.String("file", name),
			slog.String("reason", "unsupported extension"),
			slog.String("ext", ext),
		)
	}

	var phrases Phrases

	if err := unmarshal(data, &phrases); err != nil {
		return nil, ErrDecode.Wrap(err).With(slog.String("file", name))
	}

	if phrases == nil {
		phrases = Phrases{}
	}

	return phrases, nil
}

func readFile(fs afero.Fs, name string) (Phrases, error) {
	data, err := afero.ReadFile(fs, name)
	if err != nil {
		return nil, lang.ErrReadInput.Wrap(err).With(slog.String("file", name))
	}

	return Decode(name, data)
}
