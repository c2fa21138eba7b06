//go:build mapbox

package mapbox

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/observability"
)

// These tests hit the real Mapbox API and require a valid MAPBOX_TOKEN env var.
// Run with: go test -tags=mapbox ./internal/adapter/mapbox/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	token := os.Getenv("MAPBOX_TOKEN")
	if token == "" {
		t.Fatal("MAPBOX_TOKEN must be set to run smoke tests")
	}
	return NewClient(token, 10*time.Second, 2, observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSmoke_LocateCounty(t *testing.T) {
	c := smokeClient(t)

	result, err := c.LocateCounty(context.Background(), "Travis", "TX")
	require.NoError(t, err)

	assert.InDelta(t, 30.3, result.Lat, 0.5, "lat should be near Travis County")
	assert.InDelta(t, -97.8, result.Lon, 0.5, "lon should be near Travis County")
	assert.Contains(t, result.FormattedAddress, "Travis")
	assert.Greater(t, result.Confidence, 0.5)
}

func TestSmoke_LocateCounty_Parish(t *testing.T) {
	c := smokeClient(t)

	result, err := c.LocateCounty(context.Background(), "Orleans Parish", "LA")
	require.NoError(t, err)
	assert.Contains(t, result.FormattedAddress, "Orleans")
}

func TestSmoke_CachedLocator(t *testing.T) {
	c := smokeClient(t)
	cached := NewCachedLocator(c, 10, observability.NewMetricsForTesting())

	r1, err := cached.LocateCounty(context.Background(), "Dallas", "TX")
	require.NoError(t, err)
	assert.Contains(t, r1.FormattedAddress, "Dallas")

	r2, err := cached.LocateCounty(context.Background(), "Dallas", "TX")
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}
