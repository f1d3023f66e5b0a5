package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/lingo/i18n"
	"github.com/ardnew/lingo/lang"
	"github.com/ardnew/lingo/log"
)

// editLocalsMsg is sent when editing the bindings completes successfully.
type editLocalsMsg struct{ locals lang.Locals }

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after a decode
// error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process encounters a non-decode error.
type editErrorMsg struct{ err error }

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"

	// resultName is the binding holding the value of the last evaluation.
	resultName = "_"

	defaultWidth = 80
	previewWidth = 48
)

const helpMessage = `
: Commands (press Esc to toggle mode):

  help              Print this cruft
  keys [FILTER]     List translation keys
  t KEY             Render a translation with the session bindings
  ast PHRASE        Print the syntax tree of a phrase
  locals            List session bindings
  set NAME=EXPR     Bind NAME to the value of an expr-lang expression
  unset NAME...     Remove session bindings
  edit              Edit session bindings as YAML in $EDITOR
  clear             Clear screen
  quit              Exit REPL

Usage:
  Type a phrase to render it, e.g. Hello ${name}!
  The value of the last phrase is bound to _
  Completions appear inside ${...} as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Space to accept the current candidate
  Press Esc to toggle between eval and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Press Ctrl+C on empty line or Ctrl+D to exit
`

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)
)

// BindFunc evaluates a "name=expr" binding with env as the expression
// environment.
type BindFunc func(set string, env lang.Locals) (name string, value any, err error)

// Options configures [Run].
type Options struct {
	// Translator renders phrases and translations. Required.
	Translator *i18n.Translator
	// Locals are the initial session bindings.
	Locals lang.Locals
	// History is the history file. Empty keeps history in memory.
	History string
	// Bind evaluates the set command. Nil disables it.
	Bind BindFunc
	// Editor overrides $EDITOR for the edit command.
	Editor string
	// Logger receives trace output.
	Logger log.Logger
}

// savedInput is the text and cursor of a mode while the other is active.
type savedInput struct {
	text   string
	cursor int
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	tr           *i18n.Translator
	locals       lang.Locals
	bind         BindFunc
	editor       string
	logger       log.Logger
	history      *History
	historyIdx   int
	matches      fuzzy.Matches // current fuzzy match results
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	width        int           // terminal width for ellipsization
	quitting     bool
	mode         inputMode
	saved        [2]savedInput
}

// Run starts the REPL and returns when the user quits or ctx is done.
func Run(ctx context.Context, opts Options) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if opts.Translator == nil {
		return ErrNoTranslator
	}

	opts.Logger.TraceContext(ctx, "repl start",
		slog.String("locale", opts.Translator.Locale()),
		slog.String("history", opts.History),
		slog.Int("locals", len(opts.Locals)))

	history := NewHistory(opts.History)
	if err := history.Load(); err != nil {
		opts.Logger.WarnContext(ctx, "could not load history",
			slog.String("file", opts.History),
			slog.Any("error", err))
	}

	opts.Logger.TraceContext(ctx, "repl history loaded",
		slog.Int("entry_count", history.Len()))

	p := tea.NewProgram(newModel(ctx, opts, history), tea.WithContext(ctx))
	_, err = p.Run()

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}

	return err
}

func newModel(ctx context.Context, opts Options, history *History) model {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	m := model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		tr:         opts.Translator,
		locals:     lang.Merge(opts.Locals),
		bind:       opts.Bind,
		editor:     opts.Editor,
		logger:     opts.Logger,
		history:    history,
		historyIdx: history.Len(),
		width:      defaultWidth,
		mode:       modeEval,
		suggIdx:    -1,
	}

	m.input.Prompt = m.prompt()

	return m
}

func (m model) prompt() string {
	if m.mode == modeCtrl {
		return ctrlPromptStyle.Render(ctrlPrompt)
	}

	return promptStyle.Render(m.tr.Locale() + " " + evalPrompt)
}

// scope returns the names visible to phrases: the translator's default
// bindings overridden by the session bindings.
func (m model) scope() lang.Locals {
	return lang.Merge(m.tr.Context(), m.locals)
}

// scopeNames returns the names in scope in sorted order.
func (m model) scopeNames() []string {
	return slices.Sorted(maps.Keys(m.scope()))
}

func (m model) keys() []string { return m.tr.Keys() }

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - lipgloss.Width(m.input.Prompt) - 2

		return m, nil

	case editLocalsMsg:
		m.locals = msg.locals
		m.logger.TraceContext(m.ctxFunc(), "repl edit complete",
			slog.Int("locals", len(m.locals)))

		return m, tea.Println(resultStyle.Render("✔ — bindings updated"))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("🗴 — edit cancelled."))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("🗴 — error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	return m.input.View() + "\n" + m.hint() + "\n"
}

// hint returns the line shown below the input.
func (m model) hint() string {
	input := m.input.Value()

	if m.historyIdx < m.history.Len() {
		return hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len()))
	}

	if strings.TrimSpace(input) == "" {
		if m.mode == modeEval {
			return hintStyle.Render("Type a phrase or press Esc for commands")
		}

		return hintStyle.Render("Type: " + strings.Join(ctrlCommands, ", ") +
			" (press Esc to return)")
	}

	if m.mode == modeEval && len(m.matches) == 0 {
		call := detectFunctionCall(input, m.input.Position())
		if call.inCall {
			if params, ok := signature(call.name, m.scope()); ok {
				return renderSignatureHint(call.name, params, call.argIndex)
			}
		}
	}

	return m.renderCandidateBar()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctxFunc(), "repl keypress",
		slog.String("key", msg.String()),
		slog.Int("type", int(msg.Type)))

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.tabActive = false
		m.historyIdx = m.history.Len()
		m = m.setInput("", 0, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}

		// Lock in the current tab candidate without executing.
		m.tabActive = false
		m.refreshMatches(true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyStep(-1, false), nil

	case tea.KeyDown:
		return m.historyStep(1, false), nil

	case tea.KeyShiftUp:
		return m.historyStep(-1, true), nil

	case tea.KeyShiftDown:
		return m.historyStep(1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m = m.setInput(m.preTabText, m.preTabCursor, false)

			return m, nil
		}

		if m.mode == modeEval {
			return m.switchToMode(modeCtrl), nil
		}

		return m.switchToMode(modeEval), nil

	case tea.KeyRunes, tea.KeySpace:
		// Space breaks out of tab-cycling, keeping the candidate.
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		m.refreshMatches(true)

		return m, cmd
	}

	// Any other key (backspace, delete, arrows) edits without auto-confirm.
	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refreshMatches(false)

	return m, cmd
}

// cycle moves the tab selection by delta, completing the selected candidate.
// A single candidate completes immediately.
func (m model) cycle(delta int) model {
	n := len(m.matches)

	switch {
	case n == 0:
		return m

	case n == 1:
		m.replaceCurrentWord(m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m

	case m.tabActive:
		m.suggIdx = (m.suggIdx + delta + n) % n

	default:
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = 0
		if delta < 0 {
			m.suggIdx = n - 1
		}
	}

	m.replaceCurrentWord(m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word with replacement and moves
// the cursor after it.
func (m *model) replaceCurrentWord(replacement string) {
	input := m.input.Value()
	cursor := m.wordStart + len(replacement)

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(cursor)
	m.wordEnd = cursor
}

// refreshMatches recomputes the fuzzy matches for the current input. When
// autoConfirm is set and the typed word already equals the only candidate,
// the completion is accepted and the bar is hidden.
func (m *model) refreshMatches(autoConfirm bool) {
	m.matches, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

// setInput replaces the input text and cursor and recomputes matches.
func (m model) setInput(text string, cursor int, autoConfirm bool) model {
	m.input.SetValue(text)
	m.input.SetCursor(cursor)
	m.refreshMatches(autoConfirm)

	return m
}

// historyStep moves through history by delta (-1 older, +1 newer). With
// sameMode, entries of the other mode are skipped; otherwise the mode
// follows the entry. Stepping past the newest entry clears the input.
func (m model) historyStep(delta int, sameMode bool) model {
	for i := m.historyIdx + delta; i >= 0 && i < m.history.Len(); i += delta {
		entry, err := m.history.Entry(i)
		if err != nil {
			break
		}

		if sameMode && entry.Mode != m.mode {
			continue
		}

		if entry.Mode != m.mode {
			m = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i

		return m.setInput(entry.Line, len(entry.Line), false)
	}

	if delta > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m = m.setInput("", 0, false)
	}

	return m
}

// switchToMode activates mode, saving the input of the current mode and
// restoring the input last seen in the target mode.
func (m model) switchToMode(mode inputMode) model {
	m.saved[m.mode] = savedInput{m.input.Value(), m.input.Position()}
	m.mode = mode
	m.input.Prompt = m.prompt()

	return m.setInput(m.saved[mode].text, m.saved[mode].cursor, false)
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	mode := m.mode

	m.saved = [2]savedInput{}
	m.tabActive = false
	m = m.setInput("", 0, false)

	if err := m.history.Add(input, mode); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "could not save history",
			slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	if mode == modeCtrl {
		return m.executeCommand(input)
	}

	echo := tea.Println(promptStyle.Render(m.tr.Locale()+" "+evalPrompt) +
		inputStyle.Render(input))

	m, out, err := m.evaluate(input)
	if err != nil {
		return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
	}

	return m, tea.Sequence(echo, tea.Println(resultStyle.Render(out)))
}

// evaluate renders input as a phrase and binds its value to resultName: the
// value of the only part, or the joined text of several.
func (m model) evaluate(input string) (model, string, error) {
	ctx := m.ctxFunc()

	m.logger.TraceContext(ctx, "repl eval", slog.String("input", input))

	parts, err := m.tr.Evaluate(ctx, input, m.locals)
	if err != nil {
		return m, "", err
	}

	text := lang.Join(parts)

	var result any = text
	if len(parts) == 1 {
		result = parts[0]
	}

	m.locals = lang.Merge(m.locals, lang.Locals{resultName: result})

	m.logger.TraceContext(ctx, "repl eval result",
		slog.Int("parts", len(parts)),
		slog.String("result_type", fmt.Sprintf("%T", result)))

	return m, text, nil
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	echo := tea.Println(ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input))

	name, _, _ := strings.Cut(input, " ")

	switch name {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echo, m.edit())
	}

	m, out, err := m.command(input)
	if err != nil {
		return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
	}

	if out == "" {
		return m, echo
	}

	return m, tea.Sequence(echo, tea.Println(out))
}

// command runs a control command that produces output.
func (m model) command(input string) (model, string, error) {
	name, arg, _ := strings.Cut(strings.TrimSpace(input), " ")
	arg = strings.TrimSpace(arg)

	m.logger.TraceContext(m.ctxFunc(), "repl command",
		slog.String("command", name),
		slog.String("arg", arg))

	switch name {
	case "h", "help":
		return m, helpMessage, nil

	case "k", "keys":
		return m, m.listKeys(arg), nil

	case "locals":
		return m, m.listLocals(), nil

	case "t":
		text, err := m.tr.T(m.ctxFunc(), arg, m.locals)
		if err != nil {
			return m, "", err
		}

		return m, resultStyle.Render(text), nil

	case "ast":
		phrase, err := lang.Parse(m.ctxFunc(), arg)
		if err != nil {
			return m, "", err
		}

		var b strings.Builder
		if err := phrase.FormatTree(m.ctxFunc(), &b, 2); err != nil {
			return m, "", err
		}

		return m, strings.TrimRight(b.String(), "\n"), nil

	case "set":
		if m.bind == nil {
			return m, "", ErrUnknownCommand.With(slog.String("command", name))
		}

		key, value, err := m.bind(arg, m.locals)
		if err != nil {
			return m, "", err
		}

		m.locals = lang.Merge(m.locals, lang.Locals{key: value})

		return m, hintStyle.Render(key + " = " + lang.Stringify(value)), nil

	case "unset":
		locals := lang.Merge(m.locals)
		for _, key := range strings.Fields(arg) {
			delete(locals, key)
		}

		m.locals = locals

		return m, "", nil
	}

	return m, "", ErrUnknownCommand.With(slog.String("command", name))
}

func (m model) edit() tea.Cmd {
	cmd := &editLocalsCommand{
		locals:  m.locals,
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
		editor:  m.editor,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{}
		case err != nil:
			return editErrorMsg{err: err}
		case cmd.edited == nil:
			return editCancelledMsg{}
		}

		return editLocalsMsg{locals: cmd.edited}
	})
}

// listKeys lists the translation keys matching filter, or all keys, with a
// preview of their text.
func (m model) listKeys(filter string) string {
	keys := m.keys()

	if filter != "" {
		matches := fuzzy.Find(filter, keys)

		keys = make([]string, len(matches))
		for i, match := range matches {
			keys[i] = match.Str
		}
	}

	var b strings.Builder

	for _, key := range keys {
		text, _ := m.tr.Source(key)
		fmt.Fprintf(&b, "  %s %s\n", key, hintStyle.Render(preview(text, previewWidth)))
	}

	return strings.TrimRight(b.String(), "\n")
}

// listLocals lists the session bindings in sorted order.
func (m model) listLocals() string {
	var b strings.Builder

	for _, key := range slices.Sorted(maps.Keys(m.locals)) {
		fmt.Fprintf(&b, "  %s %s\n", key,
			hintStyle.Render(preview(lang.Stringify(m.locals[key]), previewWidth)))
	}

	return strings.TrimRight(b.String(), "\n")
}
