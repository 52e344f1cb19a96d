package solcast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/anicoll/solarroi/internal/pkg/config"
	"github.com/anicoll/solarroi/internal/pkg/model"
)

const defaultBaseURL = "https://api.solcast.com.au"

// Client fetches rooftop generation forecasts. Estimates are passed through
// unmodified; this tool records them, it does not judge them.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	resourceID string
	logger     *zap.Logger
}

type Option func(c *Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func New(cfg *config.SolcastConfig, opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		baseURL:    defaultBaseURL,
		apiKey:     cfg.APIKey,
		resourceID: cfg.ResourceID,
		logger:     zap.L(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type forecastsResponse struct {
	Forecasts []struct {
		PeriodEnd  time.Time `json:"period_end"`
		PvEstimate float64   `json:"pv_estimate"`
	} `json:"forecasts"`
}

// Forecasts returns the site's forecast periods in feed order.
func (c *Client) Forecasts(ctx context.Context) ([]model.ForecastRecord, error) {
	requestURL := fmt.Sprintf("%s/rooftop_sites/%s/forecasts?format=json", c.baseURL, c.resourceID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("solcast request failed",
			zap.String("url", requestURL),
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("solcast API returned %d", resp.StatusCode)
	}

	response := forecastsResponse{}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, err
	}
	if response.Forecasts == nil {
		return nil, fmt.Errorf("forecasts missing in solcast API response")
	}

	records := make([]model.ForecastRecord, 0, len(response.Forecasts))
	for _, forecast := range response.Forecasts {
		records = append(records, model.ForecastRecord{
			PeriodEnd:  forecast.PeriodEnd,
			PvEstimate: forecast.PvEstimate,
		})
	}
	return records, nil
}
