package database

import (
	"context"
	"time"
)

// Cleanup removes forecast rows older than a week. Forecasts go stale fast;
// the daily records are kept forever.
func (db *Database) Cleanup(ctx context.Context) error {
	if _, err := db.conn.Exec(ctx, "DELETE FROM solcast WHERE date < $1", time.Now().AddDate(0, 0, -8)); err != nil {
		return err
	}
	return nil
}
