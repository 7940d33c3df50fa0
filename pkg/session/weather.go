package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/yukti-live/yukti/internal/httpc"
)

const weatherEndpoint = "https://api.open-meteo.com/v1/forecast"

// weatherCodes maps WMO weather interpretation codes to short descriptions.
var weatherCodes = map[int]string{
	0:  "clear sky",
	1:  "mainly clear",
	2:  "partly cloudy",
	3:  "overcast",
	45: "fog",
	48: "depositing rime fog",
	51: "light drizzle",
	53: "drizzle",
	55: "dense drizzle",
	61: "light rain",
	63: "rain",
	65: "heavy rain",
	71: "light snow",
	73: "snow",
	75: "heavy snow",
	80: "rain showers",
	81: "moderate rain showers",
	82: "violent rain showers",
	95: "thunderstorm",
	96: "thunderstorm with hail",
	99: "thunderstorm with heavy hail",
}

// FetchWeather looks up current conditions at the fix via the Open-Meteo
// forecast API and renders a short sentence the model can speak.
func FetchWeather(ctx context.Context, fix GeoFix) (string, error) {
	url := fmt.Sprintf("%s?latitude=%.4f&longitude=%.4f&current=temperature_2m,weather_code,wind_speed_10m",
		weatherEndpoint, fix.Latitude, fix.Longitude)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("weather lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("weather lookup returned status %d", resp.StatusCode)
	}

	var body struct {
		Current struct {
			Temperature float64 `json:"temperature_2m"`
			WeatherCode int     `json:"weather_code"`
			WindSpeed   float64 `json:"wind_speed_10m"`
		} `json:"current"`
		CurrentUnits struct {
			Temperature string `json:"temperature_2m"`
			WindSpeed   string `json:"wind_speed_10m"`
		} `json:"current_units"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("weather response malformed: %w", err)
	}

	desc := weatherCodes[body.Current.WeatherCode]
	if desc == "" {
		desc = "unknown conditions"
	}

	where := "here"
	if fix.City != "" {
		where = "in " + fix.City
	}

	return fmt.Sprintf("Currently %s %s, %.1f%s with wind at %.1f %s.",
		desc, where,
		body.Current.Temperature, body.CurrentUnits.Temperature,
		body.Current.WindSpeed, body.CurrentUnits.WindSpeed), nil
}
