package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/benoitkugler/avdconv/batch"
	"github.com/benoitkugler/avdconv/convert"
)

func convertCmd() *cobra.Command {
	var (
		output    string
		from      string
		strict    bool
		overwrite bool
		highlight string
	)

	cmd := &cobra.Command{
		Use:   "convert [file|-]",
		Short: "Convert one document",
		Long: `Convert one document. The direction is chosen from the file extension:
.xml files are Vector Drawables, .svg files are SVG images.

When reading from stdin, --from is required.

Examples:
  avdconv convert ic_heart.xml              # writes ic_heart.svg
  avdconv convert logo.svg -o -             # prints the drawable
  cat ic_heart.xml | avdconv convert --from avd - > ic_heart.svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := pipeName
			if len(args) == 1 {
				src = args[0]
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			runner, err := newRunner(cfg, newLogger(slog.LevelError))
			if err != nil {
				return err
			}

			dir, err := direction(src, from)
			if err != nil {
				return err
			}
			data, err := readSource(src)
			if err != nil {
				return err
			}

			res, err := runner.ConvertBytes(cmd.Context(), dir, data)
			if err != nil {
				return err
			}
			for _, d := range res.Diagnostics {
				warn("%s", d.Message)
			}
			if strict && len(res.Diagnostics) > 0 {
				return &exitError{code: 2, err: fmt.Errorf("%w (%d), nothing written", batch.ErrStrict, len(res.Diagnostics))}
			}

			if output == "" {
				output = pipeName
				if src != pipeName {
					output = dir.TargetName(src)
				}
			}
			if output == pipeName {
				return writeStdout(res.Output, highlight)
			}
			sink := batch.DirSink{Root: filepath.Dir(output), Overwrite: overwrite || cfg.Overwrite}
			if err := sink.Put(cmd.Context(), filepath.Base(output), dir.ContentType(), res.Output); err != nil {
				if errors.Is(err, batch.ErrExists) {
					return fmt.Errorf("%w, use --overwrite to replace it", err)
				}
				return err
			}
			success("saved as %s", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: source with the target extension)")
	cmd.Flags().StringVar(&from, "from", "", "source format when reading stdin: avd or svg")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail with status 2 if anything is unsupported")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing output file")
	cmd.Flags().StringVar(&highlight, "highlight", "auto", "colorize stdout: auto, always or never")

	return cmd
}

// direction picks the conversion from --from, or from the file extension.
func direction(src, from string) (convert.Direction, error) {
	switch from {
	case "avd":
		return convert.AVD2SVG, nil
	case "svg":
		return convert.SVG2AVD, nil
	case "":
	default:
		return 0, fmt.Errorf("invalid --from %q: expected avd or svg", from)
	}
	if src == pipeName {
		return 0, errors.New("--from is required when reading stdin")
	}
	return convert.DirectionFor(src)
}

// readSource reads a file, or stdin for the pipe name.
func readSource(src string) ([]byte, error) {
	if src != pipeName {
		return os.ReadFile(src)
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("`-` should be used with a pipe for stdin")
	}
	return io.ReadAll(os.Stdin)
}

func writeStdout(data []byte, mode string) error {
	var colorize bool
	switch mode {
	case "always":
		colorize = true
	case "never":
	case "auto":
		colorize = term.IsTerminal(int(os.Stdout.Fd()))
	default:
		return fmt.Errorf("invalid --highlight %q: expected auto, always or never", mode)
	}
	if !colorize {
		_, err := os.Stdout.Write(data)
		return err
	}
	return highlightXML(os.Stdout, data)
}

// highlightXML writes `data` with terminal color escapes.
func highlightXML(w io.Writer, data []byte) error {
	lexer := lexers.Get("xml")
	if lexer == nil {
		return errors.New(`lexer "xml" not found`)
	}
	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return errors.New(`formatter "terminal256" not found`)
	}
	iterator, err := lexer.Tokenise(nil, string(data))
	if err != nil {
		return err
	}
	return formatter.Format(w, style, iterator)
}
