package convert

import (
	"github.com/beevik/etree"

	"github.com/benoitkugler/avdconv/xmltree"
)

// Geometry of a shape without a size child.
const (
	defaultShapeWidth  = "20"
	defaultShapeHeight = "20"
)

// rectGeometry collects the attributes of the rect a shape expands to.
// Empty fields are not emitted.
type rectGeometry struct {
	width, height, x, y   string
	rx, ry                string
	fill, stroke, strokeW string
}

func (g rectGeometry) element() *etree.Element {
	rect := etree.NewElement("rect")
	for _, a := range [...]struct{ key, value string }{
		{"width", g.width},
		{"height", g.height},
		{"x", g.x},
		{"y", g.y},
		{"rx", g.rx},
		{"ry", g.ry},
		{"fill", g.fill},
		{"stroke", g.stroke},
		{"stroke-width", g.strokeW},
	} {
		if a.value != "" {
			rect.CreateAttr(a.key, a.value)
		}
	}
	return rect
}

// shape expands a drawable shape into a rect. Only rectangles are
// supported; other shape kinds fall back to a rectangle. The known
// children are consumed: their attributes are hoisted on the rect and
// they do not appear in the output.
func (r *rewriter) shape(src *etree.Element) *etree.Element {
	g := rectGeometry{
		width:  defaultShapeWidth,
		height: defaultShapeHeight,
		x:      "0",
		y:      "0",
	}
	vals := r.collect(src, xmltree.AndroidNamespace, "shape")
	if kind, ok := vals["shape"]; ok && kind != "rectangle" {
		r.report(UnsupportedShape, src.FullTag(), kind+": unsupported shape, rectangle used")
	}

	for _, child := range src.ChildElements() {
		switch elementName(child) {
		case "corners":
			vals := r.collect(child, xmltree.AndroidNamespace, "radius")
			if radius, ok := vals["radius"]; ok {
				g.rx, g.ry = radius, radius
			}
		case "size":
			vals := r.collect(child, xmltree.AndroidNamespace, "width", "height")
			if w, ok := vals["width"]; ok {
				g.width = w
			}
			if h, ok := vals["height"]; ok {
				g.height = h
			}
		case "solid":
			vals := r.collect(child, xmltree.AndroidNamespace, "color")
			if c, ok := vals["color"]; ok {
				g.fill = c
			}
		case "stroke":
			vals := r.collect(child, xmltree.AndroidNamespace, "color", "width")
			if c, ok := vals["color"]; ok {
				g.stroke = c
			}
			if w, ok := vals["width"]; ok {
				g.strokeW = w
			}
		default:
			r.dropSubtree(child)
			continue
		}
		for _, grandChild := range child.ChildElements() {
			r.dropSubtree(grandChild)
		}
	}
	return g.element()
}
