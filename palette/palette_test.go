package palette

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/errgo.v1"
)

func TestExpandCollapse(t *testing.T) {
	p := Default()
	avd := []byte(`<path fill="@android:color/holo_blue_light" stroke="@android:color/background_dark"/>`)

	svg := p.Expand(avd)
	assert.Equal(t, `<path fill="#0000ff" stroke="#ffffff"/>`, string(svg))
	assert.Equal(t, string(avd), string(p.Collapse(svg)))
}

func TestCollapseIsByteExact(t *testing.T) {
	data := []byte(`fill="#0000FF"`)
	assert.Equal(t, string(data), string(Default().Collapse(data)))
}

func TestOrderMatters(t *testing.T) {
	p := Palette{
		{Placeholder: "@color/a", Value: "@color/b"},
		{Placeholder: "@color/b", Value: "#000"},
	}
	assert.Equal(t, "#000", string(p.Expand([]byte("@color/a"))))
}

func TestLoad(t *testing.T) {
	p, err := Load(strings.NewReader(`{"entries": [
		{"placeholder": "@color/accent", "value": "#ff4081"},
		{"placeholder": "@color/primary", "value": "teal"}
	]}`))
	require.NoError(t, err)
	assert.Equal(t, Palette{
		{Placeholder: "@color/accent", Value: "#ff4081"},
		{Placeholder: "@color/primary", Value: "teal"},
	}, p)
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load(strings.NewReader(`{"entries": [{"placeholder": "", "value": "#fff"}]}`))
	assert.Equal(t, ErrEmptyPlaceholder, errgo.Cause(err))

	_, err = Load(strings.NewReader(`{"entries": [{"placeholder": "@color/a", "value": "#12345"}]}`))
	assert.Equal(t, ErrInvalidValue, errgo.Cause(err))

	_, err = Load(strings.NewReader(`{"entries": `))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "palette.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"entries": [{"placeholder": "@color/a", "value": "#AARRGGBB"}]}`), 0o644))
	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, os.IsNotExist(errgo.Cause(err)))
}

func TestValidateDefault(t *testing.T) {
	assert.NoError(t, Default().Validate())
}
