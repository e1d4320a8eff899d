package cmd

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"github.com/ianlopshire/go-fixcol"
	"github.com/ianlopshire/go-fixcol/charset"
	"github.com/ianlopshire/go-fixcol/internal/config"
	"github.com/ianlopshire/go-fixcol/internal/logging"
	"github.com/ianlopshire/go-fixcol/layout"
)

// app is the state shared by the subcommands once the root command has
// resolved the configuration.
type app struct {
	cfg    config.Config
	layout *layout.Layout

	// log replaces the logger built from the configuration.
	log *zap.Logger
}

// Execute runs the fixcol command and exits non-zero on failure.
// This is called by main.main().
func Execute() {
	if err := newRootCmd(&app{}).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "fixcol",
		Short: "Convert fixed-width files to and from JSON lines",
		Long: `fixcol reads and writes fixed-width column files described by a
YAML layout file.

Settings can also be given in the environment (FIXCOL_LAYOUT,
FIXCOL_STRICT, FIXCOL_CODEPOINTS, FIXCOL_CHARSET, FIXCOL_LOG_LEVEL,
FIXCOL_FAIL_FAST) or in a .env file. Flags take precedence.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = logging.Logger().Sync()
		},
	}

	f := root.PersistentFlags()
	f.StringP("layout", "l", "", "YAML layout file")
	f.Bool("strict", false, "reject lines that do not conform exactly to the layout")
	f.Bool("codepoints", false, "measure columns in UTF-8 characters instead of bytes")
	f.String("charset", "utf-8", "encoding of the fixed-width data, such as ebcdic or latin1")
	f.Bool("fail-fast", false, "stop at the first bad line")
	f.String("log-level", "info", "log level")
	f.BoolP("verbose", "v", false, "human readable debug logging")
	f.String("env-file", ".env", "dotenv file to load")

	root.AddCommand(newDecodeCmd(a), newEncodeCmd(a), newCheckCmd(a))
	return root
}

// setup merges the environment with the flags that were set, then loads
// the layout and the logger.
func (a *app) setup(cmd *cobra.Command) error {
	f := cmd.Flags()
	envFile, _ := f.GetString("env-file")
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	if f.Changed("layout") {
		cfg.Layout, _ = f.GetString("layout")
	}
	if f.Changed("strict") {
		cfg.Strict, _ = f.GetBool("strict")
	}
	if f.Changed("codepoints") {
		cfg.Codepoints, _ = f.GetBool("codepoints")
	}
	if f.Changed("charset") {
		cfg.Charset, _ = f.GetString("charset")
	}
	if f.Changed("fail-fast") {
		cfg.FailFast, _ = f.GetBool("fail-fast")
	}
	if f.Changed("log-level") {
		cfg.LogLevel, _ = f.GetString("log-level")
	}
	verbose, _ := f.GetBool("verbose")
	if verbose {
		cfg.LogLevel = "debug"
	}

	if a.log == nil {
		if a.log, err = logging.New(cfg.LogLevel, verbose); err != nil {
			return err
		}
	}
	logging.SetLogger(a.log)

	if cfg.Layout == "" {
		return errors.New("no layout: set --layout or FIXCOL_LAYOUT")
	}
	enc, err := charset.Lookup(cfg.Charset)
	if err != nil {
		return err
	}
	// Transcoded text is UTF-8 but each source character was one column.
	if enc != encoding.Nop {
		cfg.Codepoints = true
	}
	if a.layout, err = layout.Load(cfg.Layout); err != nil {
		return err
	}

	a.cfg = cfg
	logging.Logger().Debug("configured",
		zap.String("layout", a.layout.Name()),
		zap.Bool("strict", cfg.Strict),
		zap.Bool("codepoints", cfg.Codepoints),
		zap.String("charset", cfg.Charset))
	return nil
}

// open returns the input named by args, standard input when there is none
// or it is "-".
func open(cmd *cobra.Command, args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(args[0])
	return f, errors.Wrap(err, "open input")
}

// stats counts the records handled by a command.
type stats struct {
	records int
	failed  int
}

// reject logs a record that could not be converted. line is used when the
// error does not carry a line number itself.
func (a *app) reject(s *stats, err error, line int) {
	s.failed++

	fields := []zap.Field{zap.Int("line", line), zap.Error(err)}
	if ce, ok := err.(*fixcol.Error); ok {
		if ce.Line > 0 {
			fields[0] = zap.Int("line", ce.Line)
		}
		fields = append(fields,
			zap.String("kind", ce.Kind.String()),
			zap.String("record", ce.Record),
			zap.String("field", ce.Field),
			zap.String("text", ce.Text))
		if ce.Violation != fixcol.NoViolation {
			fields = append(fields, zap.String("violation", ce.Violation.String()))
		}
	}
	logging.Logger().Warn("bad record", fields...)
}

// done logs the totals and fails the command when a record was rejected.
func (a *app) done(s *stats, op string) error {
	logging.Logger().Info(op+" finished", zap.Int("records", s.records), zap.Int("failed", s.failed))
	if s.failed > 0 {
		return errors.Errorf("%s: %d of %d records failed", op, s.failed, s.records)
	}
	return nil
}
