package givenergy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/anicoll/solarroi/internal/pkg/config"
	"github.com/anicoll/solarroi/internal/pkg/model"
	"github.com/anicoll/solarroi/pkg/utils"
)

const defaultBaseURL = "https://api.givenergy.cloud/v1"

var (
	ErrUnauthenticated = errors.New("unable to access GivEnergy API: unauthenticated")
	ErrRateLimited     = errors.New("too many GivEnergy API requests")
)

// Grouping mirrors the energy-flows API's grouping parameter.
type Grouping int

const (
	GroupingHalfHour Grouping = iota
	GroupingDaily
	GroupingMonthly
	GroupingYearly
	GroupingTotal
)

// EnergyType identifies one flow direction in the inverter's accounting.
type EnergyType int

const (
	EnergyPvToHome EnergyType = iota
	EnergyPvToBattery
	EnergyPvToGrid
	EnergyGridToHome
	EnergyGridToBattery
	EnergyBatteryToHome
	EnergyBatteryToGrid
)

// Home consumption is everything arriving at the house; grid import is
// everything drawn from the grid. GridToHome sits in both.
var (
	homeConsumptionTypes = []EnergyType{EnergyBatteryToHome, EnergyGridToHome, EnergyPvToHome}
	gridImportTypes      = []EnergyType{EnergyGridToBattery, EnergyGridToHome}
)

// Client talks to the inverter vendor's cloud API with a bearer token.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	inverterSerial string
	logger         *zap.Logger
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

func New(cfg *config.GivEnergyConfig, opts ...Option) *Client {
	c := &Client{
		httpClient:     http.DefaultClient,
		baseURL:        defaultBaseURL,
		apiKey:         cfg.APIKey,
		inverterSerial: cfg.InverterSerial,
		logger:         zap.L(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type energyFlowsRequest struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Grouping  int    `json:"grouping"`
	Types     []int  `json:"types"`
}

type flowDataPoint struct {
	StartTime string             `json:"start_time"`
	EndTime   string             `json:"end_time"`
	Data      map[string]float64 `json:"data"`
}

type energyFlowsResponse struct {
	Message *string                  `json:"message"`
	Data    map[string]flowDataPoint `json:"data"`
}

// EnergyFlows fetches half-hourly inverter flows between the two ISO dates
// and folds them into per-day home consumption and grid import, keeping the
// half-hourly consumption periods for sub-day tariff alignment downstream.
func (c *Client) EnergyFlows(ctx context.Context, startDate, endDate string) (map[string]model.DayUsage, error) {
	types := make([]int, 0, len(homeConsumptionTypes)+len(gridImportTypes))
	for _, t := range homeConsumptionTypes {
		types = append(types, int(t))
	}
	for _, t := range gridImportTypes {
		types = append(types, int(t))
	}

	request := energyFlowsRequest{
		StartTime: startDate,
		EndTime:   endDate,
		Grouping:  int(GroupingHalfHour),
		Types:     types,
	}
	response := energyFlowsResponse{}
	if err := c.post(ctx, fmt.Sprintf("%s/inverter/%s/energy-flows", c.baseURL, c.inverterSerial), request, &response); err != nil {
		return nil, err
	}
	if err := checkMessage(response.Message); err != nil {
		return nil, err
	}

	points := make([]flowDataPoint, 0, len(response.Data))
	for _, point := range response.Data {
		points = append(points, point)
	}
	slices.SortFunc(points, func(a, b flowDataPoint) int {
		return strings.Compare(a.StartTime, b.StartTime)
	})

	results := make(map[string]model.DayUsage)
	for _, point := range points {
		if len(point.StartTime) < 10 {
			continue
		}
		date := point.StartTime[:10]

		homeConsumption := 0.0
		gridImport := 0.0
		for key, value := range point.Data {
			flow, err := strconv.Atoi(key)
			if err != nil {
				continue
			}
			if slices.Contains(gridImportTypes, EnergyType(flow)) {
				gridImport += value
			}
			if slices.Contains(homeConsumptionTypes, EnergyType(flow)) {
				homeConsumption += value
			}
		}

		validFrom, err := parseFlowTime(point.StartTime)
		if err != nil {
			return nil, err
		}
		validTo, err := parseFlowTime(point.EndTime)
		if err != nil {
			return nil, err
		}

		usage := results[date]
		usage.TotalHomeConsumption += homeConsumption
		usage.TotalGridImport += gridImport
		usage.Periods = append(usage.Periods, model.ConsumptionPeriod{
			ValidFrom:   validFrom,
			ValidTo:     validTo,
			Consumption: homeConsumption,
		})
		results[date] = usage
	}

	for date, usage := range results {
		usage.TotalHomeConsumption = utils.Round2(usage.TotalHomeConsumption)
		usage.TotalGridImport = utils.Round2(usage.TotalGridImport)
		results[date] = usage
	}
	return results, nil
}

func parseFlowTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, time.DateTime} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable flow timestamp %q", s)
}

func checkMessage(message *string) error {
	if message == nil {
		return nil
	}
	if *message == "Too Many Attempts." {
		return ErrRateLimited
	}
	if strings.Contains(*message, "Unauthenticated") {
		return ErrUnauthenticated
	}
	return nil
}

func (c *Client) post(ctx context.Context, requestURL string, request, response any) error {
	payload, err := json.Marshal(request)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("givenergy request", zap.String("url", requestURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, response)
}
