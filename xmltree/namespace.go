package xmltree

import (
	"bytes"

	"github.com/beevik/etree"
)

// Key identifies an attribute by namespace URI and local name.
// Two keys with the same local name but different namespaces are distinct.
type Key struct {
	Space, Local string
}

// String returns the key in Clark notation, {uri}local.
func (k Key) String() string {
	if k.Space == "" {
		return k.Local
	}
	return "{" + k.Space + "}" + k.Local
}

// IsNamespaceDecl reports whether `a` is an xmlns declaration
// rather than a regular attribute.
func IsNamespaceDecl(a etree.Attr) bool {
	return a.Space == "xmlns" || (a.Space == "" && a.Key == "xmlns")
}

// AttrKey resolves the namespace of `a`, declared on `el`.
// Prefixes are looked up on `el` and its ancestors; an undeclared
// android prefix still resolves to the Android namespace, since
// hand written drawables often omit the declaration.
func AttrKey(el *etree.Element, a etree.Attr) Key {
	if a.Space == "" {
		return Key{Local: a.Key}
	}
	if uri := lookupPrefix(el, a.Space); uri != "" {
		return Key{Space: uri, Local: a.Key}
	}
	if a.Space == AndroidPrefix {
		return Key{Space: AndroidNamespace, Local: a.Key}
	}
	return Key{Space: a.Space, Local: a.Key}
}

func lookupPrefix(el *etree.Element, prefix string) string {
	for e := el; e != nil; e = e.Parent() {
		for _, a := range e.Attr {
			if a.Space == "xmlns" && a.Key == prefix {
				return a.Value
			}
		}
	}
	return ""
}

// StripNamespaces removes every namespace prefix and every prefixed
// xmlns declaration from the tree rooted at `el`. When stripping a
// prefix makes two attributes collide, the first one wins.
func StripNamespaces(el *etree.Element) {
	el.Space = ""
	kept := el.Attr[:0]
	seen := make(map[string]bool, len(el.Attr))
	for _, a := range el.Attr {
		if a.Space == "xmlns" {
			continue
		}
		a.Space = ""
		if seen[a.Key] {
			continue
		}
		seen[a.Key] = true
		kept = append(kept, a)
	}
	el.Attr = kept
	for _, child := range el.ChildElements() {
		StripNamespaces(child)
	}
}

// SetFirstAttr sets `key` to `value` on `el`, moving the attribute
// in front of the others. Used for the root namespace declaration.
func SetFirstAttr(el *etree.Element, key, value string) {
	el.RemoveAttr(key)
	el.CreateAttr(key, value)
	last := len(el.Attr) - 1
	attr := el.Attr[last]
	copy(el.Attr[1:], el.Attr[:last])
	el.Attr[0] = attr
}

// RebindDefaultNamespace is a textual pass replacing the default
// namespace declaration xmlns="fromURI" by xmlns:prefix="toURI".
// Both quoting styles are handled. Documents already declaring
// `prefix` are returned unchanged.
func RebindDefaultNamespace(data []byte, fromURI, prefix, toURI string) []byte {
	if bytes.Contains(data, []byte(`xmlns:`+prefix+`=`)) {
		return data
	}
	to := []byte(`xmlns:` + prefix + `="` + toURI + `"`)
	for _, q := range []string{`"`, `'`} {
		from := []byte(`xmlns=` + q + fromURI + q)
		data = bytes.ReplaceAll(data, from, to)
	}
	return data
}
