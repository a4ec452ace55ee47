package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/benoitkugler/avdconv/convert"
)

func TestObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	tel := New(WithRegistry(reg))
	ctx := context.Background()

	_, _ = tel.Observe(ctx, convert.AVD2SVG, func(context.Context) (convert.Result, error) {
		return convert.Result{Output: []byte("<svg/>")}, nil
	})
	_, _ = tel.Observe(ctx, convert.AVD2SVG, func(context.Context) (convert.Result, error) {
		return convert.Result{Diagnostics: []convert.Diagnostic{
			{Kind: convert.UnsupportedTag}, {Kind: convert.UnsupportedTag}, {Kind: convert.UnsupportedAttribute},
		}}, nil
	})
	_, err := tel.Observe(ctx, convert.SVG2AVD, func(context.Context) (convert.Result, error) {
		return convert.Result{}, errors.New("boom")
	})
	assert.EqualError(t, err, "boom")

	assert.Equal(t, 1.0, testutil.ToFloat64(tel.conversions.WithLabelValues("avd2svg", StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(tel.conversions.WithLabelValues("avd2svg", StatusDiagnostics)))
	assert.Equal(t, 1.0, testutil.ToFloat64(tel.conversions.WithLabelValues("svg2avd", StatusError)))
	assert.Equal(t, 2.0, testutil.ToFloat64(tel.diagnostics.WithLabelValues("avd2svg", string(convert.UnsupportedTag))))
	assert.Equal(t, 2, testutil.CollectAndCount(tel.duration))
}

func TestNilTelemetry(t *testing.T) {
	var tel *Telemetry
	res, err := tel.Observe(context.Background(), convert.AVD2SVG, func(context.Context) (convert.Result, error) {
		return convert.Result{Output: []byte("x")}, nil
	})
	assert.NoError(t, err)
	assert.Equal(t, "x", string(res.Output))
}
