package database

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Database persists reconciliation results and forecasts. Writes are one
// statement per record so a mid-run failure loses at most the in-flight day.
type Database struct {
	conn *pgx.Conn
}

func NewDatabase(conn *pgx.Conn) *Database {
	return &Database{
		conn: conn,
	}
}

func (db *Database) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close(context.Background())
}
