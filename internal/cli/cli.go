// Package cli is the command line surface of listbuilder.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"listbuilder/internal/config"
	"listbuilder/internal/dialect"
	"listbuilder/internal/listbuilder"
	"listbuilder/internal/log"
)

// Exit statuses
const (
	ExitOK         = 0
	ExitError      = 1
	ExitParseError = 2
)

// Streams are the standard streams a command reads and writes
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StdStreams returns the process streams
func StdStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

type app struct {
	streams Streams

	configPath  string
	catalogPath string
	templateDir string
	scratchDir  string
	outDir      string
	unresolved  string
	dialect     string
	logFile     string
	verbose     bool

	cfg *config.Config
	svc *listbuilder.Service
}

// NewRootCommand builds the command tree
func NewRootCommand(streams Streams) *cobra.Command {
	a := &app{streams: streams}

	root := &cobra.Command{
		Use:   "listbuilder",
		Short: "Convert Star Wars: Armada fleet lists into VASSAL logs",
		Long: `listbuilder reads a fleet list exported by one of the common list builders
(Fab's, Warlords, Armada Fleets Designer, Kingston's or the plain ship:/upgrade:
format), lays the pieces out behind the deployment zone and writes the save
notation (.vlb) or a ready to open VASSAL log (.vlog).

Lists can be given as a file, as literal text, or on stdin with "-".`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.svc != nil {
				a.svc.Close()
			}
		},
	}
	root.SetIn(streams.In)
	root.SetOut(streams.Out)
	root.SetErr(streams.Err)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "listbuilder.yaml", "configuration file")
	pf.StringVar(&a.catalogPath, "catalog", "", "piece catalog database")
	pf.StringVar(&a.templateDir, "template-dir", "", "directory holding the moduledata and savedata templates")
	pf.StringVar(&a.scratchDir, "scratch-dir", "", "root for per-invocation scratch directories")
	pf.StringVar(&a.outDir, "out-dir", "", "directory for generated files")
	pf.StringVar(&a.unresolved, "unresolved", "", "what to do with unknown pieces: log, report or strict")
	pf.StringVar(&a.dialect, "dialect", "", "parse lists as this format (fab, warlord, afd, kingston, aff) instead of detecting it")
	pf.StringVar(&a.logFile, "log-file", "", "write logs to this file instead of stderr")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		a.importCommand(),
		a.exportCommand(),
		a.convertCommand(),
		a.decodeCommand(),
		a.identifyCommand(),
		a.batchCommand(),
		a.configCommand(),
	)
	return root
}

// setup loads configuration, applies flag overrides and configures logging
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("catalog") {
		cfg.Catalog.Path = a.catalogPath
	}
	if flags.Changed("template-dir") {
		cfg.Paths.TemplateDir = a.templateDir
	}
	if flags.Changed("scratch-dir") {
		cfg.Paths.ScratchDir = a.scratchDir
	}
	if flags.Changed("out-dir") {
		cfg.Paths.OutputDir = a.outDir
	}
	if flags.Changed("unresolved") {
		cfg.Import.Unresolved = config.UnresolvedPolicy(a.unresolved)
	}
	if flags.Changed("dialect") {
		cfg.Import.Dialect = a.dialect
	}
	if flags.Changed("log-file") {
		cfg.Logging.File = a.logFile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := log.Configure(cfg.LogOptions()); err != nil {
		return err
	}
	// --verbose only affects this run; the configured level is what config prints and writes.
	if a.verbose {
		log.SetLevel(slog.LevelDebug)
	}
	a.cfg = cfg
	return nil
}

func (a *app) service() (*listbuilder.Service, error) {
	if a.svc != nil {
		return a.svc, nil
	}
	svc, err := listbuilder.New(a.cfg)
	if err != nil {
		return nil, err
	}
	a.svc = svc
	return svc, nil
}

func (a *app) stdinIsTerminal() bool {
	f, ok := a.streams.In.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func (a *app) stdoutIsTerminal() bool {
	f, ok := a.streams.Out.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// Execute runs the command line in args and returns the exit status
func Execute(ctx context.Context, args []string, streams Streams) int {
	root := NewRootCommand(streams)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return report(err, streams.Err)
}

func report(err error, w io.Writer) int {
	if err == nil {
		return ExitOK
	}
	var pf *dialect.ParseFailure
	if errors.As(err, &pf) {
		fmt.Fprintf(w, "error: could not read %s list: %v\n", pf.Dialect.Title(), pf.Err)
		fmt.Fprintf(w, "  line %d: %s\n", pf.LineNo, pf.Line)
		if pf.Hint != "" {
			fmt.Fprintf(w, "  hint: %s\n", pf.Hint)
		}
		return ExitParseError
	}
	fmt.Fprintf(w, "error: %v\n", err)
	return ExitError
}
