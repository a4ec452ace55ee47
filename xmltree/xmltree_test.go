package xmltree

import (
	"errors"
	"strings"
	"testing"

	"github.com/beevik/etree"
)

func TestParseMalformed(t *testing.T) {
	for _, input := range []string{
		`<vector><path android:pathData="M0,0"`,
		`<vector><path></vector>`,
		``,
		`<?xml version="1.0"?>`,
		`<a/><b/>`,
	} {
		root, err := Parse([]byte(input))
		if root != nil {
			t.Errorf("%q: expected no tree", input)
		}
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("%q: expected a ParseError, got %v", input, err)
		}
	}
}

func TestParseCharset(t *testing.T) {
	input := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n<svg id=\"caf\xe9\"/>"
	root, err := Parse([]byte(input))
	if err != nil {
		t.Fatal(err)
	}
	if got := root.SelectAttrValue("id", ""); got != "café" {
		t.Errorf("expected decoded attribute, got %q", got)
	}
}

func TestAttrKey(t *testing.T) {
	root, err := Parse([]byte(`<vector xmlns:a="http://schemas.android.com/apk/res/android" xmlns:tools="urn:tools">
		<path a:fillColor="#fff" android:pathData="M0,0" tools:ignore="x" d="M1,1"/>
	</vector>`))
	if err != nil {
		t.Fatal(err)
	}
	path := root.ChildElements()[0]
	expected := []Key{
		{Space: AndroidNamespace, Local: "fillColor"},
		{Space: AndroidNamespace, Local: "pathData"},
		{Space: "urn:tools", Local: "ignore"},
		{Local: "d"},
	}
	for i, a := range path.Attr {
		if got := AttrKey(path, a); got != expected[i] {
			t.Errorf("attribute %s: expected %s, got %s", a.FullKey(), expected[i], got)
		}
	}
	for _, a := range root.Attr {
		if !IsNamespaceDecl(a) {
			t.Errorf("%s should be a namespace declaration", a.FullKey())
		}
	}
}

func TestStripNamespaces(t *testing.T) {
	root, err := Parse([]byte(`<svg xmlns:xlink="http://www.w3.org/1999/xlink"><use xlink:href="#a" href="#b"/></svg>`))
	if err != nil {
		t.Fatal(err)
	}
	StripNamespaces(root)
	if len(root.Attr) != 0 {
		t.Errorf("expected declarations to be removed, got %v", root.Attr)
	}
	use := root.ChildElements()[0]
	if len(use.Attr) != 1 || use.Attr[0].FullKey() != "href" || use.Attr[0].Value != "#a" {
		t.Errorf("unexpected attributes %v", use.Attr)
	}
}

func TestSetFirstAttr(t *testing.T) {
	el := etree.NewElement("svg")
	el.CreateAttr("width", "24")
	el.CreateAttr("xmlns", "urn:old")
	el.CreateAttr("height", "24")
	SetFirstAttr(el, "xmlns", SVGNamespace)
	var keys []string
	for _, a := range el.Attr {
		keys = append(keys, a.Key+"="+a.Value)
	}
	if got := strings.Join(keys, " "); got != "xmlns="+SVGNamespace+" width=24 height=24" {
		t.Errorf("unexpected attribute order %q", got)
	}
}

func TestRebindDefaultNamespace(t *testing.T) {
	for _, input := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg"/>`,
		`<svg xmlns='http://www.w3.org/2000/svg'/>`,
	} {
		got := string(RebindDefaultNamespace([]byte(input), SVGNamespace, AndroidPrefix, AndroidNamespace))
		if got != `<svg xmlns:android="`+AndroidNamespace+`"/>` {
			t.Errorf("unexpected rebind %s", got)
		}
	}
}

func TestRebindKeepsDeclaredPrefix(t *testing.T) {
	input := `<svg xmlns="http://www.w3.org/2000/svg" xmlns:android="` + AndroidNamespace + `"/>`
	got := string(RebindDefaultNamespace([]byte(input), SVGNamespace, AndroidPrefix, AndroidNamespace))
	if got != input {
		t.Errorf("declared prefix should not be rebound, got %s", got)
	}
	if _, err := Parse([]byte(got)); err != nil {
		t.Error(err)
	}
}

func TestSerialize(t *testing.T) {
	root := etree.NewElement("svg")
	root.CreateAttr("width", "24")
	root.AddChild(etree.NewElement("path"))
	out, err := Serialize(root, `<?xml version="1.0"?>`, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(out); got != "<?xml version=\"1.0\"?>\n<svg width=\"24\"><path/></svg>\n" {
		t.Errorf("unexpected output %q", got)
	}
}
