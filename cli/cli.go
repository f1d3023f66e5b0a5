package cli

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/ardnew/lingo/cli/cmd"
	"github.com/ardnew/lingo/log"
	"github.com/ardnew/lingo/pkg"
)

// envFile holds environment variables loaded before parsing. Variables
// already set in the environment take precedence.
const envFile = ".env"

// CLI is the top-level command-line interface for lingo.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Translations string `default:"${translations}" env:"LINGO_TRANSLATIONS" help:"Translation directory." placeholder:"DIR" short:"d" type:"path"`
	Locale       string `default:"${locale}"       env:"LINGO_LOCALE"       help:"Locale to render."       placeholder:"LOCALE" short:"l"`

	Version kong.VersionFlag `help:"Print version and exit." short:"V"`

	Render  cmd.Render  `cmd:"" help:"Render a translation"`
	Eval    cmd.Eval    `cmd:"" help:"Evaluate a phrase"`
	Tokens  cmd.Tokens  `cmd:"" help:"Print the tokens of a phrase"`
	AST     cmd.AST     `cmd:"" help:"Print the syntax tree of a phrase" name:"ast"`
	Check   cmd.Check   `cmd:"" help:"Report syntax errors in translations"`
	Locales cmd.Locales `cmd:"" help:"List available locales"`
	Serve   cmd.Serve   `cmd:"" help:"Serve translations over HTTP"`
	Init    cmd.Init    `cmd:"" help:"Initialize configuration file"`

	Repl cmd.Repl `cmd:"" default:"1" help:"Start an interactive session"`
}

// Run executes the lingo CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := loadEnv(); err != nil {
		return err
	}

	if err := mkdirAllRequired(); err != nil {
		return err
	}

	vars := kong.Vars{
		cmd.ConfigIdentifier:  filepath.Join(pkg.ConfigDir(), "config"),
		cmd.HistoryIdentifier: pkg.HistoryFile(),
		"translations":        pkg.TranslationsDir(),
		"locale":              cmd.DefaultLocale,
		"version":             pkg.Version(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags so parse errors are logged as configured,
	// regardless of flag position.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		// The provider reads ctx when a command runs, after the values
		// below have been added to it.
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				FlagsLast:           false,
				NoAppSummary:        false,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, pkg.ConfigFile(".json")),
		kong.Configuration(resolveYAML, pkg.ConfigFile(".yaml"), pkg.ConfigFile(".yml")),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Finalize logger configuration with all parsed values including
	// TimeLayout and Caller which don't use TextUnmarshaler.
	cli.Log.start(ctx)

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithSource(ctx, cmd.Source{
		Dir:    cli.Translations,
		Locale: cli.Locale,
		Logger: log.Default(),
	})

	log.DebugContext(ctx, "run",
		slog.String("command", ktx.Command()),
		slog.String("translations", cli.Translations),
		slog.String("locale", cli.Locale))

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}

// loadEnv loads envFile from the working directory if it exists.
func loadEnv() error {
	err := godotenv.Load(envFile)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}

// mkdirAllRequired creates the per-user directories lingo writes to.
func mkdirAllRequired() error {
	for _, dir := range []string{pkg.ConfigDir(), pkg.CacheDir()} {
		if err := os.MkdirAll(dir, pkg.DirMode); err != nil {
			return err
		}
	}

	return nil
}
