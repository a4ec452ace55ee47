package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/benoitkugler/avdconv/batch"
	"github.com/benoitkugler/avdconv/config"
	"github.com/benoitkugler/avdconv/convert"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// globals holds the persistent flags shared by every command.
type globals struct {
	configPath      string
	palettePath     string
	dropUnsupported bool
	indent          int
	verbose         bool
}

var flags globals

// exitError carries a specific exit status.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func main() {
	rootCmd := &cobra.Command{
		Use:   "avdconv",
		Short: "Convert Android Vector Drawables to SVG and back",
		Long: `avdconv translates Android Vector Drawable XML files to SVG documents,
and SVG documents to Vector Drawables.

Constructs without an equivalent in the target format are skipped
and reported as diagnostics on the standard error.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "configuration file (default ./"+config.FileName+" if present)")
	pf.StringVar(&flags.palettePath, "palette", "", "JSON palette of color placeholders")
	pf.BoolVar(&flags.dropUnsupported, "drop-unsupported", false, "remove unknown drawable tags with their children")
	pf.IntVar(&flags.indent, "indent", config.DefaultIndent, "spaces per indentation level, 0 for a single line")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		convertCmd(),
		batchCmd(),
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		errorMsg("%s", err)
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		os.Exit(1)
	}
}

// loadConfig reads the configuration file, then applies
// the flags explicitly set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(flags.configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("indent") {
		indent := flags.indent
		cfg.Indent = &indent
	}
	if flags.dropUnsupported {
		cfg.Unsupported = convert.DropUnsupported.String()
	}
	if flags.palettePath != "" {
		cfg.Palette, err = filepath.Abs(flags.palettePath)
		if err != nil {
			return nil, err
		}
	}
	return cfg, cfg.Validate()
}

// newRunner builds the runner shared by every command.
func newRunner(cfg *config.Config, logger *slog.Logger) (*batch.Runner, error) {
	p, err := cfg.LoadPalette()
	if err != nil {
		return nil, err
	}
	return &batch.Runner{
		Options: cfg.ConvertOptions(),
		Palette: p,
		Workers: cfg.Workers,
		Logger:  logger,
	}, nil
}

// newLogger returns a text logger on stderr. --verbose lowers
// the level to debug.
func newLogger(level slog.Level) *slog.Logger {
	if flags.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
