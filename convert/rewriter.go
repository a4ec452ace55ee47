package convert

import (
	"github.com/beevik/etree"

	"github.com/benoitkugler/avdconv/xmltree"
)

// rewriter accumulates the diagnostics of one conversion.
// Source elements are only read; the target tree is built from scratch.
type rewriter struct {
	opts  options
	dir   Direction
	diags []Diagnostic
}

func (r *rewriter) report(kind Kind, tag, msg string) {
	r.diags = append(r.diags, Diagnostic{Kind: kind, Tag: tag, Message: msg})
	if r.opts.logger != nil {
		r.opts.logger.Warn(msg, "direction", r.dir.String(), "kind", string(kind), "tag", tag)
	}
}

func (r *rewriter) unsupportedTag(el *etree.Element) {
	tag := el.FullTag()
	r.report(UnsupportedTag, tag, tag+": unsupported tag, ignored")
}

func (r *rewriter) unsupportedAttr(el *etree.Element, a etree.Attr) {
	r.report(UnsupportedAttribute, el.FullTag(), a.FullKey()+": unsupported attribute, ignored")
}

// unsupportedElement reports `el` and each of its attributes.
func (r *rewriter) unsupportedElement(el *etree.Element) {
	r.unsupportedTag(el)
	for _, a := range el.Attr {
		if !xmltree.IsNamespaceDecl(a) {
			r.unsupportedAttr(el, a)
		}
	}
}

// dropSubtree reports `el`, its descendants and all their
// attributes as unsupported.
func (r *rewriter) dropSubtree(el *etree.Element) {
	r.unsupportedElement(el)
	for _, child := range el.ChildElements() {
		r.dropSubtree(child)
	}
}

// attrValues holds the recognized attributes of a source element,
// keyed by local name.
type attrValues map[string]string

// collect reads the attributes of `el` in namespace `space` whose local
// name is in `known`. Every other attribute is reported and dropped;
// namespace declarations are ignored.
func (r *rewriter) collect(el *etree.Element, space string, known ...string) attrValues {
	vals := make(attrValues, len(known))
	for _, a := range el.Attr {
		if xmltree.IsNamespaceDecl(a) {
			continue
		}
		key := xmltree.AttrKey(el, a)
		if key.Space == space && isOneOf(key.Local, known) {
			vals[key.Local] = a.Value
			continue
		}
		r.unsupportedAttr(el, a)
	}
	return vals
}

func isOneOf(s string, list []string) bool {
	for _, l := range list {
		if s == l {
			return true
		}
	}
	return false
}

// attrRule maps a source local name to a target attribute name.
type attrRule struct {
	from, to string
}

// attrTable is an ordered list of rules: target attributes
// are emitted in table order.
type attrTable []attrRule

func (t attrTable) sources() []string {
	out := make([]string, len(t))
	for i, rule := range t {
		out[i] = rule.from
	}
	return out
}

// apply sets the mapped attributes on `dst`, skipping absent sources.
// `transform`, if not nil, is applied to each value along with its source name.
func (t attrTable) apply(vals attrValues, dst *etree.Element, transform func(from, value string) string) {
	for _, rule := range t {
		v, ok := vals[rule.from]
		if !ok {
			continue
		}
		if transform != nil {
			v = transform(rule.from, v)
		}
		dst.CreateAttr(rule.to, v)
	}
}

// elementName returns the local tag of `el`, or the empty
// string for prefixed (foreign) tags.
func elementName(el *etree.Element) string {
	if el.Space != "" {
		return ""
	}
	return el.Tag
}
