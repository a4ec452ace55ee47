package service

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benoitkugler/avdconv/batch"
	"github.com/benoitkugler/avdconv/palette"
	"github.com/benoitkugler/avdconv/telemetry"
)

const tintedAVD = `<vector xmlns:android="http://schemas.android.com/apk/res/android" android:width="24dp" android:height="24dp" android:tint="#fff">
	<path android:fillColor="@android:color/holo_blue_light" android:pathData="M0,0 L10,10"/>
</vector>`

func newTestServer(t *testing.T, opts ...Option) http.Handler {
	t.Helper()
	reg := prometheus.NewRegistry()
	runner := &batch.Runner{
		Palette:   palette.Default(),
		Telemetry: telemetry.New(telemetry.WithRegistry(reg)),
	}
	opts = append([]Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
	}, opts...)
	return New(runner, opts...).Handler()
}

func post(h http.Handler, target, accept, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestConvertRaw(t *testing.T) {
	h := newTestServer(t)
	rec := post(h, "/v1/convert/avd2svg", "", tintedAVD)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Equal(t, []string{"android:tint: unsupported attribute, ignored"}, rec.Header().Values(DiagnosticHeader))
	assert.Contains(t, rec.Body.String(), `<svg xmlns="http://www.w3.org/2000/svg"`)
	assert.Contains(t, rec.Body.String(), `fill="#0000ff"`)
}

func TestConvertJSON(t *testing.T) {
	h := newTestServer(t)
	for _, rec := range []*httptest.ResponseRecorder{
		post(h, "/v1/convert/avd2svg", "application/json", tintedAVD),
		post(h, "/v1/convert/avd2svg?format=json", "", tintedAVD),
	} {
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var resp ConvertResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.Output, "<svg")
		require.Len(t, resp.Diagnostics, 1)
		assert.Equal(t, "unsupported_attribute", string(resp.Diagnostics[0].Kind))
		assert.Equal(t, "vector", resp.Diagnostics[0].Tag)
	}

	rec := post(h, "/v1/convert/svg2avd?format=json", "", `<svg xmlns="http://www.w3.org/2000/svg"/>`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"diagnostics":[]`)
}

func TestConvertErrors(t *testing.T) {
	h := newTestServer(t, WithMaxBodyBytes(64))

	rec := post(h, "/v1/convert/png2svg", "", tintedAVD[:10])
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = post(h, "/v1/convert/avd2svg", "", "<vector><path></vector>")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "malformed XML document")

	rec = post(h, "/v1/convert/avd2svg", "", tintedAVD)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/convert/avd2svg", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestServer(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	post(h, "/v1/convert/avd2svg", "", tintedAVD)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.Bytes()
	assert.True(t, bytes.Contains(body, []byte(`avdconv_conversions_total{direction="avd2svg",status="diagnostics"} 1`)))
	assert.True(t, bytes.Contains(body, []byte(`avdconv_diagnostics_total{direction="avd2svg",kind="unsupported_attribute"} 1`)))
}
