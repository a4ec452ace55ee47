// Converts vector assets between Android Vector Drawables and SVG.
//
// Both directions parse the input into an element tree, build a new tree
// in the target vocabulary and serialize it. Constructs that cannot be
// translated never abort a conversion: they are reported as Diagnostics
// alongside a best-effort output. Only malformed XML is fatal.
package convert

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/benoitkugler/avdconv/xmltree"
)

// XML declarations written in front of each output format.
const (
	SVGDeclaration = `<?xml version="1.0" encoding="utf-8" standalone="no" ?>`
	AVDDeclaration = `<?xml version="1.0" encoding="utf-8"?>`
)

// ParseError is returned for input which is not well-formed XML.
type ParseError = xmltree.ParseError

// ErrUnknownFormat is returned when a direction cannot be inferred.
var ErrUnknownFormat = errors.New("unknown asset format")

// Kind classifies a diagnostic.
type Kind string

const (
	UnsupportedTag       Kind = "unsupported_tag"
	UnsupportedAttribute Kind = "unsupported_attribute"
	UnsupportedShape     Kind = "unsupported_shape"
	UnsupportedViewBox   Kind = "unsupported_viewbox"
)

// Diagnostic describes one construct which has been skipped
// during a conversion.
type Diagnostic struct {
	Kind    Kind   `json:"kind"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string { return d.Message }

// Result holds the output of one conversion.
// Diagnostics are in document order.
type Result struct {
	Output      []byte       `json:"-"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Direction selects the source and target vocabularies.
type Direction uint8

const (
	AVD2SVG Direction = iota // Android Vector Drawable to SVG
	SVG2AVD                  // SVG to Android Vector Drawable
)

func (d Direction) String() string {
	switch d {
	case AVD2SVG:
		return "avd2svg"
	case SVG2AVD:
		return "svg2avd"
	default:
		return "<unknown Direction>"
	}
}

// ParseDirection is the inverse of Direction.String.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "avd2svg":
		return AVD2SVG, nil
	case "svg2avd":
		return SVG2AVD, nil
	}
	return 0, fmt.Errorf("%w: direction %q", ErrUnknownFormat, s)
}

// DirectionFor chooses the direction from a file name:
// .xml files are drawables, .svg files are SVG images.
func DirectionFor(filename string) (Direction, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xml":
		return AVD2SVG, nil
	case ".svg":
		return SVG2AVD, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, filename)
}

// SourceExt returns the file extension of the input format.
func (d Direction) SourceExt() string {
	if d == SVG2AVD {
		return ".svg"
	}
	return ".xml"
}

// TargetExt returns the file extension of the output format.
func (d Direction) TargetExt() string {
	if d == SVG2AVD {
		return ".xml"
	}
	return ".svg"
}

// ContentType returns the media type of the output format.
func (d Direction) ContentType() string {
	if d == SVG2AVD {
		return "application/xml"
	}
	return "image/svg+xml"
}

// TargetName replaces the extension of `filename` by the target one.
func (d Direction) TargetName(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename)) + d.TargetExt()
}

// Policy decides what happens to tags the AVD to SVG
// direction does not know.
type Policy uint8

const (
	// KeepUnsupported leaves the element in place, without attributes,
	// so that its translated children survive.
	KeepUnsupported Policy = iota
	// DropUnsupported removes the element and its subtree.
	DropUnsupported
)

func (p Policy) String() string {
	if p == DropUnsupported {
		return "drop"
	}
	return "keep"
}

// ParsePolicy accepts "keep" (or the empty string) and "drop".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "", "keep":
		return KeepUnsupported, nil
	case "drop":
		return DropUnsupported, nil
	}
	return 0, fmt.Errorf("invalid unsupported tag policy %q", s)
}

type options struct {
	indent int
	policy Policy
	logger *slog.Logger
}

// Option customizes a conversion.
type Option func(*options)

// WithIndent pretty prints the output with `n` spaces per level.
// Zero or a negative value writes the tree on a single line.
func WithIndent(n int) Option {
	return func(o *options) { o.indent = n }
}

// WithPolicy sets the policy for unknown tags.
func WithPolicy(p Policy) Option {
	return func(o *options) { o.policy = p }
}

// WithLogger logs every diagnostic at warn level, in addition
// to returning it.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func newOptions(opts []Option) options {
	o := options{indent: 4}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Convert runs the conversion selected by `dir`.
func Convert(dir Direction, data []byte, opts ...Option) (Result, error) {
	if dir == SVG2AVD {
		return SVGToAVD(data, opts...)
	}
	return AVDToSVG(data, opts...)
}

// AVDToSVG converts an Android Vector Drawable document to SVG.
func AVDToSVG(data []byte, opts ...Option) (Result, error) {
	o := newOptions(opts)
	src, err := xmltree.Parse(data)
	if err != nil {
		return Result{}, err
	}
	r := &rewriter{opts: o, dir: AVD2SVG}
	root := r.avdRoot(src)
	xmltree.StripNamespaces(root)
	xmltree.SetFirstAttr(root, "xmlns", xmltree.SVGNamespace)
	out, err := xmltree.Serialize(root, SVGDeclaration, o.indent)
	if err != nil {
		return Result{}, err
	}
	return Result{Output: out, Diagnostics: r.diags}, nil
}

// SVGToAVD converts an SVG document to an Android Vector Drawable.
func SVGToAVD(data []byte, opts ...Option) (Result, error) {
	o := newOptions(opts)
	data = xmltree.RebindDefaultNamespace(data, xmltree.SVGNamespace,
		xmltree.AndroidPrefix, xmltree.AndroidNamespace)
	src, err := xmltree.Parse(data)
	if err != nil {
		return Result{}, err
	}
	r := &rewriter{opts: o, dir: SVG2AVD}
	root := r.svgRoot(src)
	xmltree.SetFirstAttr(root, "xmlns:"+xmltree.AndroidPrefix, xmltree.AndroidNamespace)
	out, err := xmltree.Serialize(root, AVDDeclaration, o.indent)
	if err != nil {
		return Result{}, err
	}
	return Result{Output: out, Diagnostics: r.diags}, nil
}
