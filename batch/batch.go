// Converts whole directories of assets concurrently, writing the
// results to a Sink.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/benoitkugler/avdconv/convert"
	"github.com/benoitkugler/avdconv/palette"
	"github.com/benoitkugler/avdconv/telemetry"
)

// maxWorkers sets the maximum number of concurrently running workers.
const maxWorkers = 20

// ErrStrict is reported for documents which produced diagnostics
// while the Runner is strict. Such documents are not written.
var ErrStrict = errors.New("unsupported constructs found")

var sourceExtensions = []string{".xml", ".svg"}

// FileResult is the outcome of converting one file.
// Paths are slash separated and relative to the walked directory.
type FileResult struct {
	Source      string               `json:"source"`
	Target      string               `json:"target,omitempty"`
	Diagnostics []convert.Diagnostic `json:"diagnostics,omitempty"`
	Err         error                `json:"-"`
	Error       string               `json:"error,omitempty"`
}

func (fr *FileResult) setErr(err error) {
	fr.Err = err
	if err != nil {
		fr.Error = err.Error()
	}
}

// Runner holds the settings shared by every conversion.
// The zero value converts with default options and no palette,
// but Run requires a Sink.
type Runner struct {
	Options   []convert.Option
	Palette   palette.Palette
	Sink      Sink
	Workers   int  // default to runtime.NumCPU()
	Strict    bool // fail documents with diagnostics
	Logger    *slog.Logger
	Telemetry *telemetry.Telemetry
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r.Logger
}

// ConvertBytes converts one document. Palette values are collapsed back
// to placeholders before parsing SVG, and placeholders are expanded
// in SVG output.
func (r *Runner) ConvertBytes(ctx context.Context, dir convert.Direction, data []byte) (convert.Result, error) {
	if dir == convert.SVG2AVD {
		data = r.Palette.Collapse(data)
	}
	opts := append([]convert.Option{convert.WithLogger(r.logger())}, r.Options...)
	res, err := r.Telemetry.Observe(ctx, dir, func(context.Context) (convert.Result, error) {
		return convert.Convert(dir, data, opts...)
	})
	if err != nil {
		return res, err
	}
	if dir == convert.AVD2SVG {
		res.Output = r.Palette.Expand(res.Output)
	}
	return res, nil
}

// Run converts every .xml and .svg file below `root`. The returned
// slice is sorted by source path and contains one entry per file,
// failed ones included. The error is only non nil if the walk itself
// failed or `ctx` was cancelled.
func (r *Runner) Run(ctx context.Context, root string) ([]FileResult, error) {
	if r.Sink == nil {
		return nil, errors.New("batch: no sink configured")
	}
	fi, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	workers := r.Workers
	// Limit the concurrently running workers to maxWorkers.
	if workers <= 0 || workers > maxWorkers {
		workers = runtime.NumCPU()
		if workers > maxWorkers {
			workers = maxWorkers
		}
	}

	ch := make(chan FileResult)
	done := ctx.Done()
	paths, errc := walkDir(done, root, sourceExtensions)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			r.consumer(ctx, root, paths, ch)
		}()
	}

	// Close the channel after the values are consumed.
	go func() {
		defer close(ch)
		wg.Wait()
	}()

	var results []FileResult
	for res := range ch {
		results = append(results, res)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Source < results[j].Source })

	if err := <-errc; err != nil {
		return results, err
	}
	return results, ctx.Err()
}

// consumer reads the path names from the paths channel, converts
// the documents and sends the results on `res`.
func (r *Runner) consumer(ctx context.Context, root string, paths <-chan string, res chan<- FileResult) {
	for src := range paths {
		out := r.process(ctx, root, src)

		select {
		case <-ctx.Done():
			return
		case res <- out:
		}
	}
}

func (r *Runner) process(ctx context.Context, root, src string) (out FileResult) {
	rel, err := filepath.Rel(root, src)
	if err != nil {
		rel = src
	}
	out.Source = filepath.ToSlash(rel)
	log := r.logger().With("source", out.Source)
	defer func() {
		if out.Err != nil {
			log.Error("conversion failed", "error", out.Err)
		} else {
			log.Info("converted", "target", out.Target, "diagnostics", len(out.Diagnostics))
		}
	}()

	dir, err := convert.DirectionFor(src)
	if err != nil {
		out.setErr(err)
		return out
	}
	data, err := os.ReadFile(src)
	if err != nil {
		out.setErr(err)
		return out
	}
	result, err := r.ConvertBytes(ctx, dir, data)
	if err != nil {
		out.setErr(err)
		return out
	}
	out.Diagnostics = result.Diagnostics
	if r.Strict && len(result.Diagnostics) > 0 {
		out.setErr(fmt.Errorf("%w (%d)", ErrStrict, len(result.Diagnostics)))
		return out
	}
	target := dir.TargetName(out.Source)
	if err := r.Sink.Put(ctx, target, dir.ContentType(), result.Output); err != nil {
		out.setErr(err)
		return out
	}
	out.Target = target
	return out
}

// walkDir starts a goroutine to walk the specified directory tree in recursive manner
// and send the path of each regular file on the string channel.
// It sends the result of the walk on the error channel.
// It terminates in case done channel is closed.
func walkDir(done <-chan struct{}, src string, srcExts []string) (<-chan string, <-chan error) {
	pathChan := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		// Close the paths channel after Walk returns.
		defer close(pathChan)

		errChan <- filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.Type().IsRegular() || !hasExtension(d.Name(), srcExts) {
				return nil
			}
			select {
			case <-done:
				return errors.New("directory walk cancelled")
			case pathChan <- path:
			}
			return nil
		})
	}()
	return pathChan, errChan
}

func hasExtension(name string, exts []string) bool {
	fx := strings.ToLower(filepath.Ext(name))
	for _, ext := range exts {
		if ext == fx {
			return true
		}
	}
	return false
}

// Failed counts the results holding an error.
func Failed(results []FileResult) int {
	n := 0
	for _, res := range results {
		if res.Err != nil {
			n++
		}
	}
	return n
}
