package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/anicoll/solarroi/internal/pkg/model"
)

// DailyRecords returns the persisted records between the two ISO dates
// inclusive, oldest first.
func (db *Database) DailyRecords(ctx context.Context, from, to string) ([]model.DailyRecord, error) {
	const query = `
	SELECT date, cost, grid_export, grid_import, home_consumption, income, no_pv_cost, roi
	FROM roi
	WHERE date BETWEEN $1 AND $2
	ORDER BY date ASC;
	`

	rows, err := db.conn.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDailyRecords(rows)
}

func scanDailyRecords(rows pgx.Rows) ([]model.DailyRecord, error) {
	var records []model.DailyRecord
	for rows.Next() {
		var record model.DailyRecord
		var date time.Time
		if err := rows.Scan(&date, &record.Cost, &record.GridExport, &record.GridImport,
			&record.HomeConsumption, &record.Income, &record.NoPvCost, &record.Roi); err != nil {
			return nil, err
		}
		record.Date = date.Format(time.DateOnly)
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		if err == pgx.ErrNoRows {
			return records, nil
		}
		return nil, err
	}

	return records, nil
}
