package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/domain"
	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/observability"
)

const defaultBaseURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"

// Client implements domain.CountyLocator using the Mapbox Geocoding API.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Mapbox geocoding client that issues at most rps
// requests per second.
func NewClient(token string, timeout time.Duration, rps float64, metrics *observability.Metrics, logger *slog.Logger) *Client {
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: defaultBaseURL,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		metrics: metrics,
		logger:  logger,
	}
}

// LocateCounty resolves "<county> County, <state>" to the county's centroid.
// An unknown county yields a zero result and no error.
func (c *Client) LocateCounty(ctx context.Context, county, state string) (domain.GeocodingResult, error) {
	query := countyQuery(county, state)

	u := fmt.Sprintf("%s/%s.json", c.baseURL, url.PathEscape(query))
	params := url.Values{
		"access_token": {c.token},
		"country":      {"us"},
		"limit":        {"1"},
		"types":        {"district"},
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return domain.GeocodingResult{}, fmt.Errorf("wait for rate limiter: %w", err)
		}
	}

	start := time.Now()
	result, err := c.doRequest(ctx, u+"?"+params.Encode())
	c.metrics.GeocodeAPIDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
	case result.FormattedAddress == "":
		c.metrics.GeocodeRequests.WithLabelValues("empty").Inc()
		c.logger.Debug("no geocoding match", "query", query)
	default:
		c.metrics.GeocodeRequests.WithLabelValues("success").Inc()
	}
	return result, err
}

// countyQuery appends "County" unless the name already carries a county
// equivalent suffix (Parish, Borough, city).
func countyQuery(county, state string) string {
	name := strings.TrimSpace(county)
	lower := strings.ToLower(name)
	suffixed := false
	for _, s := range []string{" county", " parish", " borough", " census area", " municipality", " city"} {
		if strings.HasSuffix(lower, s) {
			suffixed = true
			break
		}
	}
	if !suffixed {
		name += " County"
	}
	if state != "" {
		name = fmt.Sprintf("%s, %s", name, state)
	}
	return name
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.GeocodingResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("county geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.GeocodingResult{}, fmt.Errorf("mapbox API error: status %d: %s", resp.StatusCode, body)
	}

	var mapboxResp response
	if err := json.NewDecoder(resp.Body).Decode(&mapboxResp); err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("decode response: %w", err)
	}

	if len(mapboxResp.Features) == 0 {
		return domain.GeocodingResult{}, nil
	}

	f := mapboxResp.Features[0]
	result := domain.GeocodingResult{
		FormattedAddress: f.PlaceName,
		PlaceName:        f.Text,
		Confidence:       f.Relevance,
	}
	if len(f.Center) == 2 {
		result.Lon = f.Center[0]
		result.Lat = f.Center[1]
	}
	return result, nil
}

// Mapbox API response types.

type response struct {
	Features []feature `json:"features"`
}

type feature struct {
	Center    []float64 `json:"center"` // [lon, lat]
	PlaceName string    `json:"place_name"`
	Text      string    `json:"text"`
	Relevance float64   `json:"relevance"`
}
