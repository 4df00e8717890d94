package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// WeatherSnapshot is the typed current-conditions view the transport
// layer uses to default absent risk-engine inputs.
type WeatherSnapshot struct {
	TemperatureF     float64
	Humidity         float64
	WindSpeed        float64
	WindDirectionDeg float64
	RainLastHourMM   float64
}

// WeatherClient fetches current conditions from an OpenWeatherMap-style
// endpoint. A zero API key disables the client; callers fall back to
// engine defaults.
type WeatherClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewWeatherClient(baseURL, apiKey string) *WeatherClient {
	return &WeatherClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (w *WeatherClient) Enabled() bool {
	return w.apiKey != ""
}

type owmResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Rain struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
}

func (w *WeatherClient) Current(ctx context.Context, lat, lon float64) (*WeatherSnapshot, error) {
	if !w.Enabled() {
		return nil, fmt.Errorf("weather client disabled: no API key configured")
	}

	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lon", fmt.Sprintf("%f", lon))
	q.Set("appid", w.apiKey)
	q.Set("units", "imperial")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var data owmResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	return &WeatherSnapshot{
		TemperatureF:     data.Main.Temp,
		Humidity:         data.Main.Humidity,
		WindSpeed:        data.Wind.Speed,
		WindDirectionDeg: data.Wind.Deg,
		RainLastHourMM:   data.Rain.OneHour,
	}, nil
}
