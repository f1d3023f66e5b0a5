package profile

// Stopper ends a profiling session and flushes its output.
type Stopper interface{ Stop() }

// Config returns the profiling mode, the output directory and whether the
// profiler should suppress its own log lines.
type Config func() (mode, path string, quiet bool)

// Make returns a Config with the given options applied to an empty one.
func Make(opts ...func(Config) Config) Config {
	c := Config(func() (string, string, bool) { return "", "", false })

	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

// Start begins profiling. It returns a no-op Stopper when the mode is empty
// or unsupported, or when built without the pprof tag.
func (c Config) Start() Stopper {
	mode, path, quiet := c()

	if mode == "" {
		return ignore{}
	}

	return start(mode, path, quiet)
}

// Enabled reports whether c names a supported mode.
func (c Config) Enabled() bool {
	mode, _, _ := c()

	for _, m := range Modes() {
		if m == mode {
			return true
		}
	}

	return false
}

// WithMode sets the profiling mode, one of [Modes].
func WithMode(mode string) func(Config) Config {
	return func(c Config) Config {
		_, path, quiet := c()

		return func() (string, string, bool) { return mode, path, quiet }
	}
}

// WithPath sets the directory profiles are written to.
func WithPath(path string) func(Config) Config {
	return func(c Config) Config {
		mode, _, quiet := c()

		return func() (string, string, bool) { return mode, path, quiet }
	}
}

// WithQuiet suppresses the profiler's start and stop messages.
func WithQuiet(quiet bool) func(Config) Config {
	return func(c Config) Config {
		mode, path, _ := c()

		return func() (string, string, bool) { return mode, path, quiet }
	}
}

type ignore struct{}

func (ignore) Stop() {}
