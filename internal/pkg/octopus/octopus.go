package octopus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/anicoll/solarroi/internal/pkg/config"
	"github.com/anicoll/solarroi/internal/pkg/model"
	"github.com/anicoll/solarroi/pkg/urlcache"
)

const defaultBaseURL = "https://api.octopus.energy/v1"

// Client talks to the energy retailer's REST API. Requests authenticate with
// the account API key as the basic-auth username and an empty password.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	account    string
	cache      *urlcache.Cache
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

// WithCache memoises unit-rate lookups for the lifetime of the cache. The
// rate endpoints are static within a run, so repeat tariff/day pairs cost
// nothing after the first fetch.
func WithCache(cache *urlcache.Cache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

func New(cfg *config.OctopusConfig, opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		baseURL:    defaultBaseURL,
		apiKey:     cfg.APIKey,
		account:    cfg.Account,
		logger:     zap.L(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Account fetches the account's meter points and their agreement history.
// Either meter may be nil when the account lacks that capability.
func (c *Client) Account(ctx context.Context) (importMeter, exportMeter *model.Meter, err error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/accounts/%s/", c.baseURL, c.account), false)
	if err != nil {
		return nil, nil, err
	}

	response := accountResponse{}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, nil, err
	}
	if len(response.Properties) == 0 {
		return nil, nil, fmt.Errorf("account %s has no properties", c.account)
	}

	for _, point := range response.Properties[0].ElectricityMeterPoints {
		meter := newMeter(point)
		if point.IsExport {
			exportMeter = meter
		} else {
			importMeter = meter
		}
	}
	return importMeter, exportMeter, nil
}

func newMeter(point meterPoint) *model.Meter {
	direction := model.MeterDirectionImport
	if point.IsExport {
		direction = model.MeterDirectionExport
	}
	meter := &model.Meter{
		Direction: direction,
		MPAN:      point.MPAN,
	}
	if len(point.Meters) > 0 {
		meter.Serial = point.Meters[0].SerialNumber
	}
	for _, a := range point.Agreements {
		meter.Agreements = append(meter.Agreements, model.Agreement{
			TariffCode: a.TariffCode,
			ValidFrom:  dateOnly(a.ValidFrom),
			ValidTo:    dateOnlyPtr(a.ValidTo),
		})
	}
	return meter
}

// Agreement windows arrive as full timestamps but resolution happens at
// calendar-day granularity, so truncate on construction.
func dateOnly(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

func dateOnlyPtr(s *string) *string {
	if s == nil {
		return nil
	}
	d := dateOnly(*s)
	return &d
}

// UnitRates returns the priced sub-periods covering the given day, ordered as
// the retailer returns them. Responses are memoised by request URL when a
// cache is configured.
func (c *Client) UnitRates(ctx context.Context, productCode, tariffCode, day string) ([]Rate, error) {
	nextDay, err := time.Parse(time.DateOnly, day)
	if err != nil {
		return nil, fmt.Errorf("invalid day %q: %w", day, err)
	}

	params := url.Values{}
	params.Set("period_from", day)
	params.Set("period_to", nextDay.AddDate(0, 0, 1).Format(time.DateOnly))
	requestURL := fmt.Sprintf(
		"%s/products/%s/electricity-tariffs/%s/standard-unit-rates/?%s",
		c.baseURL, productCode, tariffCode, params.Encode(),
	)

	body, err := c.get(ctx, requestURL, true)
	if err != nil {
		return nil, err
	}
	response := unitRatesResponse{}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, err
	}
	return response.Results, nil
}

// Consumption returns the meter's samples between from and to, following
// pagination until the feed is exhausted.
func (c *Client) Consumption(ctx context.Context, mpan, serial, from, to string, groupBy Grouping) ([]model.ConsumptionSample, error) {
	params := url.Values{}
	params.Set("period_from", from)
	params.Set("period_to", to)
	params.Set("order_by", "period")
	if groupBy != GroupingHalfHour {
		params.Set("group_by", string(groupBy))
	}
	requestURL := fmt.Sprintf(
		"%s/electricity-meter-points/%s/meters/%s/consumption/?%s",
		c.baseURL, mpan, serial, params.Encode(),
	)

	samples := []model.ConsumptionSample{}
	for requestURL != "" {
		body, err := c.get(ctx, requestURL, false)
		if err != nil {
			return nil, err
		}
		response := consumptionResponse{}
		if err := json.Unmarshal(body, &response); err != nil {
			return nil, err
		}
		for _, result := range response.Results {
			samples = append(samples, model.ConsumptionSample{
				IntervalStart: result.IntervalStart,
				Quantity:      result.Consumption,
			})
		}
		requestURL = ""
		if response.Next != nil {
			requestURL = *response.Next
		}
	}
	return samples, nil
}

func (c *Client) get(ctx context.Context, requestURL string, cacheable bool) ([]byte, error) {
	if cacheable && c.cache != nil {
		if body, ok := c.cache.Get(requestURL); ok {
			return body, nil
		}
	}
	c.logger.Debug("octopus request", zap.String("url", requestURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.apiKey, "")

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
		return nil, fmt.Errorf("octopus API returned %d for %s", resp.StatusCode, requestURL)
	}

	if cacheable && c.cache != nil {
		c.cache.Set(requestURL, body)
	}
	return body, nil
}
