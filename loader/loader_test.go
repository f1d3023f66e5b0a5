package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/kylelemons/godebug/pretty"
	"github.com/spf13/afero"

	"github.com/ardnew/lingo/lang"
)

func memFS(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()

	for name, body := range files {
		if err := afero.WriteFile(fs, filepath.Join("locales", name), []byte(body), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	return fs
}

func TestLoad(t *testing.T) {
	fs := memFS(t, map[string]string{
		"en.json":           `{"hello": "Hello", "nav": {"home": "Home", "about": "About"}}`,
		"en.formal.json":    `{"hello": "Good day"}`,
		"en-GB.yaml":        "nav:\n  home: Homepage\n",
		"en-GB.formal.toml": `bye = "Farewell"`,
		"FR.toml":           `hello = "Bonjour"`,
		"readme.md":         "# not a translation",
		"active.de.toml": `farewell = "Tschüss"

[greeting]
one = "Hallo du"
other = "Hallo {{.Name}}"
`,
	})

	got, err := Load(context.Background(), Options{FS: fs, Dir: "locales"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	nav := map[string]any{"home": "Home", "about": "About"}
	navGB := map[string]any{"home": "Homepage", "about": "About"}

	want := Translations{
		"en":        {"hello": "Hello", "nav": nav},
		"en.formal": {"hello": "Good day", "nav": nav},
		"en-GB":     {"hello": "Hello", "nav": navGB},
		"en-GB.formal": {
			"hello": "Good day",
			"nav":   navGB,
			"bye":   "Farewell",
		},
		"fr": {"hello": "Bonjour"},
		"de": {
			"farewell":       "Tschüss",
			"greeting":       "Hallo ${Name}",
			"greeting.one":   "Hallo du",
			"greeting.other": "Hallo ${Name}",
		},
	}

	if diff := pretty.Compare(got, want); diff != "" {
		t.Errorf("translations mismatch (-got +want):\n%s", diff)
	}

	wantLocales := []string{"de", "en", "en-GB", "en-GB.formal", "en.formal", "fr"}
	if diff := pretty.Compare(Locales(got), wantLocales); diff != "" {
		t.Errorf("locales mismatch (-got +want):\n%s", diff)
	}
}

func TestLoad_Errors(t *testing.T) {
	ctx := context.Background()

	fs := memFS(t, map[string]string{"en.json": `{"hello": `})

	if _, err := Load(ctx, Options{FS: fs, Dir: "locales"}); !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}

	if _, err := Load(ctx, Options{FS: fs, Dir: "missing"}); !errors.Is(err, lang.ErrReadInput) {
		t.Errorf("expected ErrReadInput, got %v", err)
	}

	bad := regexp.MustCompile(`^(?P<locale>[a-z]+)\.json$`)
	if _, err := Load(ctx, Options{FS: fs, Dir: "locales", Pattern: bad}); !errors.Is(err, ErrBadPattern) {
		t.Errorf("expected ErrBadPattern, got %v", err)
	}
}

func TestLoad_CustomPattern(t *testing.T) {
	fs := memFS(t, map[string]string{
		"messages_en.json": `{"a": "A"}`,
		"messages_nl.json": `{"a": "Aa"}`,
		"en.json":          `{"ignored": "yes"}`,
	})

	got, err := Load(context.Background(), Options{
		FS:      fs,
		Dir:     "locales",
		Pattern: regexp.MustCompile(`^messages_(?P<lang>[a-z]{2})\.json$`),
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := Translations{"en": {"a": "A"}, "nl": {"a": "Aa"}}
	if diff := pretty.Compare(got, want); diff != "" {
		t.Errorf("translations mismatch (-got +want):\n%s", diff)
	}
}

func TestMerge(t *testing.T) {
	base := Phrases{"a": "1", "b": map[string]any{"c": "2", "d": "3"}}
	over := Phrases{"b": map[string]any{"d": "4", "e": "5"}, "f": "6"}

	got := Merge(base, over)
	want := Phrases{
		"a": "1",
		"b": map[string]any{"c": "2", "d": "4", "e": "5"},
		"f": "6",
	}

	if diff := pretty.Compare(got, want); diff != "" {
		t.Errorf("merge mismatch (-got +want):\n%s", diff)
	}

	// Inputs are not modified.
	if base["b"].(map[string]any)["d"] != "3" {
		t.Error("merge modified its input")
	}
}

func TestImportMessageFile(t *testing.T) {
	data := []byte(`{
		"cart": {
			"id": "cart",
			"leftDelim": "<<",
			"rightDelim": ">>",
			"one": "<<.Count>> item",
			"other": "<<.Count>> items"
		},
		"title": "Shop"
	}`)

	locale, got, err := ImportMessageFile("translate.en-US.json", data)
	if err != nil {
		t.Fatalf("ImportMessageFile: %v", err)
	}

	if locale != "en-US" {
		t.Errorf("expected locale en-US, got %q", locale)
	}

	want := Phrases{
		"cart":       "${Count} items",
		"cart.one":   "${Count} item",
		"cart.other": "${Count} items",
		"title":      "Shop",
	}

	if diff := pretty.Compare(got, want); diff != "" {
		t.Errorf("phrases mismatch (-got +want):\n%s", diff)
	}

	if _, _, err := ImportMessageFile("active.en.ini", []byte("x=1")); !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
}

func TestDecode_UnsupportedExt(t *testing.T) {
	if _, err := Decode("en.xml", []byte("<a/>")); !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
}

func TestMatch(t *testing.T) {
	available := []string{"fr", "en", "en-GB", "en.formal"}

	tests := []struct {
		preferred []string
		want      string
		ok        bool
	}{
		{[]string{"fr-CA"}, "fr", true},
		{[]string{"en-GB"}, "en-GB", true},
		{[]string{"xx-invalid-!", "fr"}, "fr", true},
		{nil, "en", false},
	}

	for _, tt := range tests {
		got, ok, err := Match(available, tt.preferred...)
		if err != nil {
			t.Fatalf("Match(%v): %v", tt.preferred, err)
		}

		if got != tt.want || ok != tt.ok {
			t.Errorf("Match(%v): expected %q %v, got %q %v", tt.preferred, tt.want, tt.ok, got, ok)
		}
	}

	got, ok, err := MatchAcceptLanguage(available, "fr;q=0.5, en-GB;q=0.9")
	if err != nil || !ok || got != "en-GB" {
		t.Errorf("expected en-GB, got %q %v (%v)", got, ok, err)
	}

	if _, _, err := Match([]string{"en.formal"}, "en"); !errors.Is(err, ErrNoLocales) {
		t.Errorf("expected ErrNoLocales, got %v", err)
	}
}

func TestTranslators(t *testing.T) {
	fs := memFS(t, map[string]string{
		"en.json":        `{"hello": "Hello ${name}"}`,
		"en.formal.json": `{"hello": "Good day, ${name}"}`,
	})

	tr, err := Load(context.Background(), Options{FS: fs, Dir: "locales"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	translators, err := tr.Translators()
	if err != nil {
		t.Fatalf("Translators: %v", err)
	}

	got, err := translators["en.formal"].T(context.Background(), "hello",
		lang.Locals{"name": "Ann"})
	if err != nil || got != "Good day, Ann" {
		t.Errorf("expected Good day, Ann; got %q (%v)", got, err)
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	changed := make(chan string, 16)
	done := make(chan error, 1)

	go func() {
		done <- Watch(ctx, Options{Dir: dir}, func(path string) {
			changed <- filepath.Base(path)
		})
	}()

	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()

	for got := ""; got != "en.json"; {
		select {
		case got = <-changed:
		case <-tick.C:
			_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600)
			_ = os.WriteFile(filepath.Join(dir, "en.json"), []byte(`{}`), 0o600)
		case <-ctx.Done():
			t.Fatal("timed out waiting for change")
		}

		if got == "notes.txt" {
			t.Fatal("reported a file that is not a translation")
		}
	}

	cancel()

	if err := <-done; err != nil {
		t.Errorf("Watch: %v", err)
	}
}
