package convert

import (
	"github.com/beevik/etree"

	"github.com/benoitkugler/avdconv/xmltree"
)

// avdTag enumerates the drawable elements the AVD to SVG direction handles.
type avdTag uint8

const (
	avdUnknown avdTag = iota
	avdVector
	avdPath
	avdShape
	avdSVG // only reachable through a nested raw svg element
)

func (t avdTag) String() string {
	switch t {
	case avdVector:
		return "vector"
	case avdPath:
		return "path"
	case avdShape:
		return "shape"
	case avdSVG:
		return "svg"
	default:
		return "<unknown avdTag>"
	}
}

func lookupAVDTag(el *etree.Element) avdTag {
	switch elementName(el) {
	case "vector":
		return avdVector
	case "path":
		return avdPath
	case "shape":
		return avdShape
	case "svg":
		return avdSVG
	default:
		return avdUnknown
	}
}

var (
	vectorTable = attrTable{
		{"width", "width"},
		{"height", "height"},
	}
	avdPathTable = attrTable{
		{"fillColor", "fill"},
		{"strokeColor", "stroke"},
		{"strokeWidth", "stroke-width"},
		{"pathData", "d"},
	}
)

// avdRoot converts the drawable rooted at `src`. A root which is
// not a vector gets wrapped into a synthetic svg element.
func (r *rewriter) avdRoot(src *etree.Element) *etree.Element {
	if lookupAVDTag(src) == avdVector {
		return r.avdElement(src)
	}
	root := etree.NewElement("svg")
	if child := r.avdElement(src); child != nil {
		root.AddChild(child)
	}
	return root
}

// avdElement converts `src` and its subtree, in pre-order.
// It returns nil when the element is removed from the output.
func (r *rewriter) avdElement(src *etree.Element) *etree.Element {
	var dst *etree.Element
	switch lookupAVDTag(src) {
	case avdVector:
		dst = r.vector(src)
	case avdPath:
		dst = etree.NewElement("path")
		avdPathTable.apply(r.collect(src, xmltree.AndroidNamespace, avdPathTable.sources()...), dst, nil)
	case avdShape:
		return r.shape(src)
	case avdSVG:
		dst = etree.NewElement("svg")
		for _, a := range src.Attr {
			if xmltree.IsNamespaceDecl(a) {
				continue
			}
			if xmltree.AttrKey(src, a).Space != "" {
				r.unsupportedAttr(src, a)
				continue
			}
			dst.CreateAttr(a.Key, a.Value)
		}
	default:
		if r.opts.policy == DropUnsupported {
			r.dropSubtree(src)
			return nil
		}
		r.unsupportedElement(src)
		dst = etree.NewElement(src.FullTag())
	}
	for _, child := range src.ChildElements() {
		if c := r.avdElement(child); c != nil {
			dst.AddChild(c)
		}
	}
	return dst
}

func (r *rewriter) vector(src *etree.Element) *etree.Element {
	vals := r.collect(src, xmltree.AndroidNamespace,
		"width", "height", "viewportWidth", "viewportHeight")
	dst := etree.NewElement("svg")
	vectorTable.apply(vals, dst, nil)

	w, hasW := vals["viewportWidth"]
	h, hasH := vals["viewportHeight"]
	switch {
	case hasW && hasH:
		dst.CreateAttr("viewBox", "0 0 "+w+" "+h)
	case hasW:
		r.report(UnsupportedAttribute, src.FullTag(),
			"android:viewportWidth: viewBox needs both viewportWidth and viewportHeight, ignored")
	case hasH:
		r.report(UnsupportedAttribute, src.FullTag(),
			"android:viewportHeight: viewBox needs both viewportWidth and viewportHeight, ignored")
	}
	return dst
}
