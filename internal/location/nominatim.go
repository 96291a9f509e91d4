package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"photojournal/internal/config"
	"photojournal/internal/model"
)

// ErrGeocoderUnavailable is returned when the geocoding service answers with a non-2xx status.
var ErrGeocoderUnavailable = errors.New("geocoder unavailable")

// Nominatim is a Geocoder backed by a Nominatim-compatible /reverse endpoint.
type Nominatim struct {
	baseURL   *url.URL
	userAgent string
	client    *http.Client
}

// NewNominatim builds a geocoding client. Outbound requests are traced.
func NewNominatim(cfg config.GeocoderConfig) (*Nominatim, error) {
	u, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid geocoder url %q", cfg.URL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Nominatim{
		baseURL:   u,
		userAgent: cfg.UserAgent,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

type nominatimResponse struct {
	Name    string            `json:"name"`
	Error   string            `json:"error"`
	Address map[string]string `json:"address"`
}

// ReverseGeocode returns at most one address. An empty result is not an error.
func (n *Nominatim) ReverseGeocode(ctx context.Context, c model.Coordinates) ([]model.Address, error) {
	u := *n.baseURL
	u.Path += "/reverse"
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("addressdetails", "1")
	q.Set("lat", strconv.FormatFloat(c.Latitude, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(c.Longitude, 'f', -1, 64))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if n.userAgent != "" {
		req.Header.Set("User-Agent", n.userAgent)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status %d", ErrGeocoderUnavailable, resp.StatusCode)
	}

	var body nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode geocoder response: %w", err)
	}
	if body.Error != "" {
		return []model.Address{}, nil
	}
	return []model.Address{toAddress(body)}, nil
}

func toAddress(r nominatimResponse) model.Address {
	a := r.Address
	street := a["road"]
	if street != "" && a["house_number"] != "" {
		street = a["house_number"] + " " + street
	}
	return model.Address{
		Name:    r.Name,
		Street:  street,
		City:    firstOf(a, "city", "town", "village", "hamlet"),
		Region:  firstOf(a, "state", "region", "county"),
		Country: a["country"],
	}
}

func firstOf(m map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := m[k]; v != "" {
			return v
		}
	}
	return ""
}
