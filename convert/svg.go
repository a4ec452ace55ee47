package convert

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// svgTag enumerates the SVG elements the SVG to AVD direction handles.
type svgTag uint8

const (
	svgUnknown svgTag = iota
	svgRoot
	svgPath
)

func (t svgTag) String() string {
	switch t {
	case svgRoot:
		return "svg"
	case svgPath:
		return "path"
	default:
		return "<unknown svgTag>"
	}
}

// lookupSVGTag only recognizes svg as the document root:
// nested viewports have no drawable equivalent.
func lookupSVGTag(el *etree.Element, isRoot bool) svgTag {
	switch elementName(el) {
	case "svg":
		if isRoot {
			return svgRoot
		}
	case "path":
		return svgPath
	}
	return svgUnknown
}

const androidPrefix = "android:"

var (
	svgSizeTable = attrTable{
		{"width", androidPrefix + "width"},
		{"height", androidPrefix + "height"},
	}
	svgPathTable = attrTable{
		{"fill", androidPrefix + "fillColor"},
		{"stroke", androidPrefix + "strokeColor"},
		{"stroke-width", androidPrefix + "strokeWidth"},
		{"d", androidPrefix + "pathData"},
	}
)

// svgRoot converts the SVG document rooted at `src`. The output root is
// always a vector; supported elements found below unsupported ones are
// hoisted into it, in document order.
func (r *rewriter) svgRoot(src *etree.Element) *etree.Element {
	root := etree.NewElement("vector")
	if lookupSVGTag(src, true) != svgRoot {
		r.flatten(src, root)
		return root
	}
	vals := r.collect(src, "", "width", "height", "viewBox")
	svgSizeTable.apply(vals, root, nil)
	if viewBox, ok := vals["viewBox"]; ok {
		r.viewBox(src, viewBox, root)
	}
	for _, child := range src.ChildElements() {
		r.flatten(child, root)
	}
	return root
}

func (r *rewriter) flatten(src, root *etree.Element) {
	switch lookupSVGTag(src, false) {
	case svgPath:
		dst := etree.NewElement("path")
		vals := r.collect(src, "", svgPathTable.sources()...)
		svgPathTable.apply(vals, dst, normalizePaint)
		root.AddChild(dst)
	default:
		r.unsupportedElement(src)
	}
	for _, child := range src.ChildElements() {
		r.flatten(child, root)
	}
}

// viewBox decomposes "minX minY width height" into the two viewport
// attributes of a vector. The tokens are copied verbatim.
func (r *rewriter) viewBox(src *etree.Element, value string, dst *etree.Element) {
	fields := splitOnCommaOrSpace(value)
	if len(fields) != 4 || !allNumbers(fields) {
		r.report(UnsupportedViewBox, src.FullTag(),
			"viewBox: malformed value "+strconv.Quote(value)+", ignored")
		return
	}
	if !isZero(fields[0]) || !isZero(fields[1]) {
		r.report(UnsupportedViewBox, src.FullTag(), "viewBox: Non 0 viewBox origin is not supported")
	}
	dst.CreateAttr(androidPrefix+"viewportWidth", fields[2])
	dst.CreateAttr(androidPrefix+"viewportHeight", fields[3])
}

// splitOnCommaOrSpace returns a list of strings after splitting the input on comma and space delimiters
func splitOnCommaOrSpace(s string) []string {
	return strings.FieldsFunc(s,
		func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
		})
}

func allNumbers(fields []string) bool {
	for _, f := range fields {
		if _, err := strconv.ParseFloat(f, 64); err != nil {
			return false
		}
	}
	return true
}

func isZero(s string) bool {
	f, err := strconv.ParseFloat(s, 64)
	return err == nil && f == 0
}
