package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
	"github.com/kylelemons/godebug/pretty"
)

type initCLI struct {
	Locale  string   `default:"en"  name:"locale"`
	Verbose bool     `name:"verbose"`
	Count   int      `name:"count"`
	Tags    []string `name:"tags"`
	Secret  string   `hidden:""    name:"secret"`
	Pprof   string   `name:"pprof-mode"`
}

func parseInit(t *testing.T, vars kong.Vars, args ...string) context.Context {
	t.Helper()

	var cli initCLI

	parser, err := kong.New(&cli, vars)
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		t.Fatal(err)
	}

	return WithContext(context.Background(), ktx)
}

// TestInitRun tests the Init.Run command.
func TestInitRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		force   bool
		exists  bool
		wantErr error
	}{
		{name: "create_new_config"},
		{name: "overwrite_existing_with_force", force: true, exists: true},
		{name: "fail_without_force", exists: true, wantErr: ErrFileExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			base := filepath.Join(t.TempDir(), "nested", "config")
			confPath := base + ".yaml"

			if tt.exists {
				if err := os.MkdirAll(filepath.Dir(confPath), 0o700); err != nil {
					t.Fatal(err)
				}

				if err := os.WriteFile(confPath, []byte("existing: true\n"), 0o600); err != nil {
					t.Fatal(err)
				}
			}

			ctx := parseInit(t, kong.Vars{ConfigIdentifier: base}, "--verbose")

			err := (&Init{Force: tt.force, Format: "yaml"}).Run(ctx)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Init.Run() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("Init.Run() error = %v", err)
			}

			data, err := os.ReadFile(confPath)
			if err != nil {
				t.Fatal(err)
			}

			var got map[string]any
			if err := yaml.Unmarshal(data, &got); err != nil {
				t.Fatalf("generated config is not YAML: %v", err)
			}

			if got["verbose"] != true || got["locale"] != "en" {
				t.Errorf("config = %v", got)
			}
		})
	}
}

func TestInitRun_JSONPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.json")
	ctx := parseInit(t, kong.Vars{ConfigIdentifier: "unused"},
		"--count=3", "--tags=a,b", "--secret=x", "--pprof-mode=cpu")

	if err := (&Init{Format: "json", Path: path}).Run(ctx); err != nil {
		t.Fatalf("Init.Run() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("generated config is not JSON: %v", err)
	}

	want := map[string]any{
		"locale":  "en",
		"verbose": false,
		"count":   float64(3),
		"tags":    []any{"a", "b"},
	}

	if diff := pretty.Compare(want, got); diff != "" {
		t.Errorf("config diff (-want +got):\n%s", diff)
	}
}

// TestInitFlagValue tests the flagValue conversion of parsed values.
func TestInitFlagValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"bool", true, true},
		{"int", 5, 5},
		{"string", "x", "x"},
		{"empty_string", "", nil},
		{"strings", []string{"a"}, []string{"a"}},
		{"empty_strings", []string{}, nil},
		{"unsupported", struct{}{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if diff := pretty.Compare(tt.want, flagValue(tt.in)); diff != "" {
				t.Errorf("flagValue(%v) diff (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}
