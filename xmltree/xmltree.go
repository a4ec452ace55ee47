// Implements the element tree shared by both conversion
// directions: parsing raw documents into etree elements,
// namespace bookkeeping and serialization with an XML declaration.
package xmltree

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
)

// Namespaces used by the two vocabularies.
const (
	SVGNamespace     = "http://www.w3.org/2000/svg"
	AndroidNamespace = "http://schemas.android.com/apk/res/android"
	AndroidPrefix    = "android"
)

var (
	errNoRoot        = errors.New("document has no root element")
	errMultipleRoots = errors.New("document has more than one root element")
)

// ParseError is returned when the input is not a well-formed
// XML document. It is always fatal: no partial tree is returned.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "malformed XML document: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse reads a whole document and returns its root element.
// The input is first checked with a strict token pass, since etree
// reads raw tokens and does not verify that start and end tags match.
func Parse(data []byte) (*etree.Element, error) {
	if err := checkWellFormed(data); err != nil {
		return nil, &ParseError{Err: err}
	}
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, &ParseError{Err: err}
	}
	root := doc.Root()
	if root == nil {
		return nil, &ParseError{Err: errNoRoot}
	}
	return root, nil
}

func checkWellFormed(data []byte) error {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = charset.NewReaderLabel
	depth, roots := 0, 0
	for {
		t, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		switch t.(type) {
		case xml.StartElement:
			if depth == 0 {
				roots++
				if roots > 1 {
					return errMultipleRoots
				}
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}
	if roots == 0 {
		return errNoRoot
	}
	return nil
}

// Serialize writes `decl` on its own line followed by the tree rooted at `root`.
// A positive `indent` pretty prints the tree with that many spaces per level.
// Serialize takes ownership of `root`.
func Serialize(root *etree.Element, decl string, indent int) ([]byte, error) {
	doc := etree.NewDocument()
	doc.SetRoot(root)
	if indent > 0 {
		doc.Indent(indent)
	}
	var buf bytes.Buffer
	buf.WriteString(decl)
	buf.WriteByte('\n')
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, err
	}
	if indent <= 0 {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}
