package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const openWeatherBaseURL = "https://api.openweathermap.org"

// WeatherClient fetches current conditions from OpenWeatherMap.
type WeatherClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewWeatherClient creates a weather client. An empty apiKey selects
// demo mode.
func NewWeatherClient(apiKey string, httpClient *http.Client) *WeatherClient {
	return &WeatherClient{
		apiKey:     apiKey,
		baseURL:    openWeatherBaseURL,
		httpClient: httpClient,
	}
}

// Demo reports whether the client returns simulated conditions.
func (c *WeatherClient) Demo() bool {
	return c.apiKey == ""
}

// WeatherReport is the current conditions for a city, metric units.
type WeatherReport struct {
	City        string  `json:"city"`
	Description string  `json:"description"`
	TempC       float64 `json:"tempC"`
	FeelsLikeC  float64 `json:"feelsLikeC"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"` // meters per second
	Simulated   bool    `json:"simulated,omitempty"`
}

type openWeatherResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Message string `json:"message"`
}

// Current fetches current conditions for the city.
func (c *WeatherClient) Current(ctx context.Context, city string) (*WeatherReport, error) {
	if c.Demo() {
		return &WeatherReport{
			City:        city,
			Description: "clear sky",
			TempC:       22.0,
			FeelsLikeC:  21.5,
			Humidity:    40,
			WindSpeed:   3.1,
			Simulated:   true,
		}, nil
	}

	endpoint := fmt.Sprintf("%s/data/2.5/weather?q=%s&units=metric&appid=%s",
		c.baseURL, url.QueryEscape(city), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build weather request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send weather request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return nil, fmt.Errorf("read weather response: %w", err)
	}

	var out openWeatherResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode weather response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("city %q not found", city)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather API returned status %d: %s", resp.StatusCode, out.Message)
	}

	report := &WeatherReport{
		City:       out.Name,
		TempC:      out.Main.Temp,
		FeelsLikeC: out.Main.FeelsLike,
		Humidity:   out.Main.Humidity,
		WindSpeed:  out.Wind.Speed,
	}
	if len(out.Weather) > 0 {
		report.Description = out.Weather[0].Description
	}
	if report.City == "" {
		report.City = city
	}

	return report, nil
}
