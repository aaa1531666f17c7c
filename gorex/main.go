// Command gorex searches files with the gorex engine and exposes its
// compiler for inspection and code generation.
package main

import (
	"errors"
	"io"
	"log"
	"os"

	"github.com/alecthomas/kong"

	"github.com/mfroeh/gorex/internal/config"
	"github.com/mfroeh/gorex/regex"
)

const (
	exitMatch   = 0
	exitNoMatch = 1
	exitError   = 2
)

// errNoMatch is returned by commands that ran fine but found nothing.
var errNoMatch = errors.New("no match")

// kongExit carries the exit code of flags like --version and --help, which
// make kong exit in the middle of parsing, back to run.
type kongExit int

type Globals struct {
	Config    string           `help:"Config file to use instead of $XDG_CONFIG_HOME/gorex/config.yaml." type:"path" placeholder:"FILE"`
	StepLimit int              `help:"Maximum backtracking steps per search, -1 for no limit." placeholder:"N"`
	Trace     bool             `help:"Log every executed VM instruction to stderr."`
	Version   kong.VersionFlag `help:"Print the engine version and exit."`
}

type CLI struct {
	Globals

	Grep GrepCmd `cmd:"" help:"Recursively search paths for lines matching a pattern."`
	Demo DemoCmd `cmd:"" help:"Search a subject once and print the match offsets of every group."`
	Dump DumpCmd `cmd:"" help:"Print the compiled program of a pattern."`
	Gen  GenCmd  `cmd:"" help:"Generate Go source for a precompiled pattern."`
}

// env is what every command gets to run with.
type env struct {
	cfg    config.Config
	stdout io.Writer
	logger *log.Logger
	trace  *log.Logger
}

// compile builds re with the options from the config file, overridden by
// flags, and the trace logger if requested.
func (e *env) compile(pattern string, ignoreCase bool) (*regex.Regex, error) {
	opts := e.cfg.RegexOptions()
	opts.IgnoreCase = opts.IgnoreCase || ignoreCase
	opts.Trace = e.trace
	return regex.CompileWith(pattern, opts)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) (code int) {
	logger := log.New(stderr, "gorex: ", 0)

	defer func() {
		if r := recover(); r != nil {
			exit, ok := r.(kongExit)
			if !ok {
				panic(r)
			}
			code = int(exit)
		}
	}()

	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("gorex"),
		kong.Description("A byte-oriented backtracking regular expression engine."),
		kong.UsageOnError(),
		kong.Vars{
			"version":      regex.Version(),
			"demo_pattern": demoPattern,
			"demo_subject": demoSubject,
		},
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { panic(kongExit(code)) }),
	)
	if err != nil {
		logger.Printf("%v", err)
		return exitError
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		parser.Errorf("%v", err)
		return exitError
	}

	cfg, err := config.Load(cli.Config)
	if err != nil {
		logger.Printf("failed to load config: %v", err)
		return exitError
	}
	if cli.StepLimit != 0 {
		cfg.StepLimit = cli.StepLimit
	}

	e := &env{cfg: cfg, stdout: stdout, logger: logger}
	if cli.Trace {
		e.trace = log.New(stderr, "trace: ", 0)
	}

	err = ctx.Run(e)
	switch {
	case err == nil:
		return exitMatch
	case errors.Is(err, errNoMatch):
		return exitNoMatch
	}
	logger.Printf("%v", err)
	return exitError
}
