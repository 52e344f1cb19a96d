package octopus

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anicoll/solarroi/internal/pkg/config"
	"github.com/anicoll/solarroi/internal/pkg/model"
	"github.com/anicoll/solarroi/pkg/urlcache"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.OctopusConfig{APIKey: "sk_test", Account: "A-12345"}
	return New(cfg, append([]Option{WithBaseURL(server.URL)}, opts...)...)
}

func TestClient_Account(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts/A-12345/", r.URL.Path)
		user, _, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "sk_test", user)

		fmt.Fprint(w, `{
			"properties": [{
				"electricity_meter_points": [
					{
						"mpan": "1012345678901",
						"is_export": false,
						"meters": [{"serial_number": "21E1234567"}],
						"agreements": [
							{"tariff_code": "E-1R-VAR-22-11-01-C", "valid_from": "2023-01-01T00:00:00Z", "valid_to": null}
						]
					},
					{
						"mpan": "1098765432109",
						"is_export": true,
						"meters": [{"serial_number": "21E7654321"}],
						"agreements": [
							{"tariff_code": "E-1R-OUTGOING-FIX-12M-19-05-13-C", "valid_from": "2023-02-01T00:00:00Z", "valid_to": "2024-02-01T00:00:00Z"}
						]
					}
				]
			}]
		}`)
	})

	importMeter, exportMeter, err := client.Account(context.Background())
	require.NoError(t, err)
	require.NotNil(t, importMeter)
	require.NotNil(t, exportMeter)

	assert.Equal(t, model.MeterDirectionImport, importMeter.Direction)
	assert.Equal(t, "1012345678901", importMeter.MPAN)
	assert.Equal(t, "21E1234567", importMeter.Serial)
	require.Len(t, importMeter.Agreements, 1)
	// Agreement windows are truncated to dates on construction so the
	// resolver's lexicographic day comparisons line up.
	assert.Equal(t, "2023-01-01", importMeter.Agreements[0].ValidFrom)
	assert.Nil(t, importMeter.Agreements[0].ValidTo)

	assert.Equal(t, model.MeterDirectionExport, exportMeter.Direction)
	require.Len(t, exportMeter.Agreements, 1)
	require.NotNil(t, exportMeter.Agreements[0].ValidTo)
	assert.Equal(t, "2024-02-01", *exportMeter.Agreements[0].ValidTo)
}

func TestClient_AccountNoProperties(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"properties": []}`)
	})

	_, _, err := client.Account(context.Background())
	assert.Error(t, err)
}

func TestClient_UnitRatesCached(t *testing.T) {
	requests := 0
	cache := urlcache.New()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "/products/VAR-22-11-01/electricity-tariffs/E-1R-VAR-22-11-01-C/standard-unit-rates/", r.URL.Path)
		assert.Equal(t, "2024-01-15", r.URL.Query().Get("period_from"))
		assert.Equal(t, "2024-01-16", r.URL.Query().Get("period_to"))

		fmt.Fprint(w, `{
			"count": 1,
			"results": [
				{"valid_from": "2024-01-15T00:00:00Z", "valid_to": null, "value_inc_vat": 24.5, "payment_method": "DIRECT_DEBIT"}
			]
		}`)
	}, WithCache(cache))

	for i := 0; i < 3; i++ {
		rates, err := client.UnitRates(context.Background(), "VAR-22-11-01", "E-1R-VAR-22-11-01-C", "2024-01-15")
		require.NoError(t, err)
		require.Len(t, rates, 1)
		assert.InDelta(t, 24.5, rates[0].ValueIncVAT, 1e-9)
	}

	assert.Equal(t, 1, requests, "repeat lookups must come from the cache")
	assert.Equal(t, 1, cache.Len())
}

func TestClient_ConsumptionPagination(t *testing.T) {
	var serverURL string
	page := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page++
		switch page {
		case 1:
			fmt.Fprintf(w, `{
				"count": 2,
				"next": "%s/electricity-meter-points/1012345678901/meters/21E1234567/consumption/?page=2",
				"results": [{"interval_start": "2024-01-15T00:00:00Z", "consumption": 1.5}]
			}`, serverURL)
		default:
			fmt.Fprint(w, `{
				"count": 2,
				"next": null,
				"results": [{"interval_start": "2024-01-15T00:30:00Z", "consumption": 2.5}]
			}`)
		}
	}))
	t.Cleanup(server.Close)
	serverURL = server.URL

	cfg := &config.OctopusConfig{APIKey: "sk_test", Account: "A-12345"}
	client := New(cfg, WithBaseURL(server.URL))

	samples, err := client.Consumption(context.Background(), "1012345678901", "21E1234567",
		"2024-01-15T00:00:00Z", "2024-01-15T23:59:59Z", GroupingDay)
	require.NoError(t, err)

	require.Len(t, samples, 2)
	assert.Equal(t, "2024-01-15", samples[0].Date())
	assert.InDelta(t, 1.5, samples[0].Quantity, 1e-9)
	assert.InDelta(t, 2.5, samples[1].Quantity, 1e-9)
	assert.Equal(t, 2, page)
}

func TestClient_ErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, _, err := client.Account(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
