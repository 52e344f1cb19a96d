package database

import (
	"context"

	"github.com/anicoll/solarroi/internal/pkg/model"
)

// UpsertDailyRecord writes one day's record keyed on date. Idempotent:
// re-running a range overwrites the previous figures for those days.
func (db *Database) UpsertDailyRecord(ctx context.Context, record model.DailyRecord) error {
	const upsertSQL = `
	INSERT INTO roi (date, cost, grid_export, grid_import, home_consumption, income, no_pv_cost, roi)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (date) DO UPDATE SET
		cost = EXCLUDED.cost,
		grid_export = EXCLUDED.grid_export,
		grid_import = EXCLUDED.grid_import,
		home_consumption = EXCLUDED.home_consumption,
		income = EXCLUDED.income,
		no_pv_cost = EXCLUDED.no_pv_cost,
		roi = EXCLUDED.roi;
	`
	_, err := db.conn.Exec(ctx, upsertSQL,
		record.Date,
		record.Cost,
		record.GridExport,
		record.GridImport,
		record.HomeConsumption,
		record.Income,
		record.NoPvCost,
		record.Roi,
	)
	return err
}

// PublishDaily lets the database act as a publisher sink.
func (db *Database) PublishDaily(ctx context.Context, record model.DailyRecord) error {
	return db.UpsertDailyRecord(ctx, record)
}

// UpsertForecast writes one forecast period keyed on its end timestamp.
func (db *Database) UpsertForecast(ctx context.Context, record model.ForecastRecord) error {
	const upsertSQL = `
	INSERT INTO solcast (date, pv_estimate)
	VALUES ($1, $2)
	ON CONFLICT (date) DO UPDATE SET pv_estimate = EXCLUDED.pv_estimate;
	`
	_, err := db.conn.Exec(ctx, upsertSQL, record.PeriodEnd, record.PvEstimate)
	return err
}
