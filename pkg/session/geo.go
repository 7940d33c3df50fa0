package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/yukti-live/yukti/internal/httpc"
)

// GeoFix is an approximate location captured once at connect time.
// It is best-effort and immutable for the life of the session.
type GeoFix struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city,omitempty"`
}

const geoEndpoint = "http://ip-api.com/json/?fields=status,lat,lon,city"

// Locate resolves a coarse IP-based location fix. The caller bounds it with
// a context deadline; on any failure it reports ok=false and the session
// proceeds without a location.
func Locate(ctx context.Context) (GeoFix, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, geoEndpoint, nil)
	if err != nil {
		return GeoFix{}, false
	}

	resp, err := httpc.Do(req)
	if err != nil {
		return GeoFix{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return GeoFix{}, false
	}

	var body struct {
		Status string  `json:"status"`
		Lat    float64 `json:"lat"`
		Lon    float64 `json:"lon"`
		City   string  `json:"city"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Status != "success" {
		return GeoFix{}, false
	}

	return GeoFix{Latitude: body.Lat, Longitude: body.Lon, City: body.City}, true
}

// String renders the fix for logs.
func (g GeoFix) String() string {
	if g.City != "" {
		return fmt.Sprintf("%s (%.3f, %.3f)", g.City, g.Latitude, g.Longitude)
	}
	return fmt.Sprintf("(%.3f, %.3f)", g.Latitude, g.Longitude)
}
