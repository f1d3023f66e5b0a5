package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/lingo/lang"
	"github.com/ardnew/lingo/log"
)

const defaultEditor = "vi"

// editLocalsCommand implements [tea.ExecCommand] for the edit-decode-retry
// loop over the session bindings. It writes the bindings as YAML to a temp
// file, opens the user's editor and decodes the result. On a decode error
// the user is prompted to re-edit; declining exits the program.
type editLocalsCommand struct {
	locals  lang.Locals
	ctxFunc func() context.Context
	edited  lang.Locals
	logger  log.Logger
	editor  string
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editLocalsCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editLocalsCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editLocalsCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit loop. An empty file cancels the edit and leaves
// edited nil; declining to fix a decode error returns [ErrEditDeclined].
func (c *editLocalsCommand) Run() error {
	ctx := c.ctxFunc()

	content, err := yaml.Marshal(map[string]any(c.locals))
	if err != nil {
		return fmt.Errorf("encode bindings: %w", err)
	}

	f, err := os.CreateTemp("", "lingo-repl-*.yaml")
	if err != nil {
		return err
	}

	tmpPath := f.Name()
	f.Close()

	defer os.Remove(tmpPath)

	for {
		if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
			return err
		}

		if err := c.runEditor(ctx, tmpPath); err != nil {
			return err
		}

		data, err := os.ReadFile(tmpPath)
		if err != nil {
			return err
		}

		if strings.TrimSpace(string(data)) == "" {
			return nil
		}

		edited := lang.Locals{}
		decodeErr := yaml.Unmarshal(data, &edited)

		c.logger.TraceContext(ctx, "editor decode attempt",
			slog.Int("content_length", len(data)),
			slog.Bool("success", decodeErr == nil))

		if decodeErr == nil {
			c.edited = edited

			return nil
		}

		fmt.Fprintf(c.stderr, "\nDecode error: %s\n", decodeErr)
		fmt.Fprint(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}

		content = data
	}
}

// runEditor launches the editor on path and waits for it to exit.
func (c *editLocalsCommand) runEditor(ctx context.Context, path string) error {
	editor := c.editor
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}

	if editor == "" {
		editor = defaultEditor
	}

	args := append(strings.Fields(editor), path)

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdin = c.stdin
	cmd.Stdout = c.stdout
	cmd.Stderr = c.stderr

	return cmd.Run()
}
