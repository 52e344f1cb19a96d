package cmd

import (
	"context"
	"time"

	"github.com/anicoll/solarroi/internal/pkg/model"
	"github.com/anicoll/solarroi/internal/pkg/octopus"
)

type accountService interface {
	Account(ctx context.Context) (importMeter, exportMeter *model.Meter, err error)
}

type reconcilerService interface {
	Reconcile(ctx context.Context, meter *model.Meter, start, end time.Time) (*octopus.Reconciliation, error)
}

type telemetryService interface {
	EnergyFlows(ctx context.Context, startDate, endDate string) (map[string]model.DayUsage, error)
}

type forecastService interface {
	Forecasts(ctx context.Context) ([]model.ForecastRecord, error)
}

type storageService interface {
	UpsertForecast(ctx context.Context, record model.ForecastRecord) error
	DailyRecords(ctx context.Context, from, to string) ([]model.DailyRecord, error)
	Cleanup(ctx context.Context) error
	Close() error
}
