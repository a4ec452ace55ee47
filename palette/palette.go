// Substitutes resource placeholders found in drawables
// (such as @android:color/background_dark) by concrete colors,
// and back.
//
// A Palette is an ordered list of entries: replacements are applied
// in list order, directly on the document bytes.
package palette

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"

	"gopkg.in/errgo.v1"

	"github.com/benoitkugler/avdconv/convert"
)

var (
	ErrEmptyPlaceholder = errors.New("empty placeholder")
	ErrInvalidValue     = errors.New("value is not a color")
)

// Entry binds a placeholder to its value.
type Entry struct {
	Placeholder string `json:"placeholder"`
	Value       string `json:"value"`
}

// Palette is an ordered list of substitutions.
type Palette []Entry

// Default returns the substitutions used when no palette is configured.
func Default() Palette {
	return Palette{
		{Placeholder: "@android:color/holo_blue_light", Value: "#0000ff"},
		{Placeholder: "@android:color/background_dark", Value: "#ffffff"},
	}
}

type file struct {
	Entries Palette `json:"entries"`
}

// Load reads a JSON palette of the form
//
//	{"entries": [{"placeholder": "@color/accent", "value": "#ff4081"}]}
//
// and validates it.
func Load(r io.Reader) (Palette, error) {
	var f file
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, errgo.Notef(err, "cannot decode palette")
	}
	if err := f.Entries.Validate(); err != nil {
		return nil, err
	}
	return f.Entries, nil
}

// LoadFile is a convenience wrapper around Load.
func LoadFile(path string) (Palette, error) {
	fi, err := os.Open(path)
	if err != nil {
		return nil, errgo.Mask(err, os.IsNotExist)
	}
	defer fi.Close()
	p, err := Load(fi)
	if err != nil {
		return nil, errgo.NoteMask(err, path, errgo.Any)
	}
	return p, nil
}

// Validate checks that every entry has a placeholder and a color value:
// either #RGB, #ARGB, #RRGGBB, #AARRGGBB or a CSS color keyword.
func (p Palette) Validate() error {
	for i, e := range p {
		if e.Placeholder == "" {
			return errgo.WithCausef(nil, ErrEmptyPlaceholder, "entry %d: empty placeholder", i)
		}
		if !isColor(e.Value) {
			return errgo.WithCausef(nil, ErrInvalidValue, "entry %d (%s): %q is not a color", i, e.Placeholder, e.Value)
		}
	}
	return nil
}

func isColor(v string) bool {
	if convert.IsColorName(v) {
		return true
	}
	if !strings.HasPrefix(v, "#") {
		return false
	}
	switch len(v) - 1 {
	case 3, 4, 6, 8:
	default:
		return false
	}
	for _, c := range v[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return false
		}
	}
	return true
}

// Expand replaces every placeholder by its value.
func (p Palette) Expand(data []byte) []byte {
	for _, e := range p {
		data = bytes.ReplaceAll(data, []byte(e.Placeholder), []byte(e.Value))
	}
	return data
}

// Collapse replaces every value by its placeholder. Values are
// matched byte for byte: #0000ff does not match #0000FF.
func (p Palette) Collapse(data []byte) []byte {
	for _, e := range p {
		data = bytes.ReplaceAll(data, []byte(e.Value), []byte(e.Placeholder))
	}
	return data
}
