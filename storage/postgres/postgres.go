// Package postgres persists received reports in PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/and161185/sysfs-stats/internal/utils"
	"github.com/and161185/sysfs-stats/model"
)

type PostgresStorage struct {
	db *pgxpool.Pool
}

// NewPostgresStorage connects to the database and ensures the reports
// table exists.
func NewPostgresStorage(ctx context.Context, databaseDsn string) (*PostgresStorage, error) {
	db, err := pgxpool.New(ctx, databaseDsn)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	store := &PostgresStorage{db: db}
	if err := store.createSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return store, nil
}

func (store *PostgresStorage) createSchema(ctx context.Context) error {
	return utils.WithRetry(ctx, func() error {
		_, err := store.db.Exec(ctx, `
			CREATE TABLE IF NOT EXISTS reports (
				id          BIGSERIAL PRIMARY KEY,
				received_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				kind        TEXT NOT NULL,
				payload     JSONB NOT NULL
			)`)
		return err
	})
}

func (store *PostgresStorage) Save(ctx context.Context, report *model.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	return utils.WithRetry(ctx, func() error {
		_, err := store.db.Exec(ctx,
			`INSERT INTO reports (kind, payload) VALUES ($1, $2)`,
			string(report.Kind), payload)
		return err
	})
}

func (store *PostgresStorage) List(ctx context.Context) ([]model.Report, error) {
	rows, err := store.db.Query(ctx, `SELECT payload FROM reports ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var result []model.Report
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		var report model.Report
		if err := json.Unmarshal(payload, &report); err != nil {
			return nil, fmt.Errorf("unmarshal report: %w", err)
		}
		result = append(result, report)
	}
	return result, rows.Err()
}

func (store *PostgresStorage) Ping(ctx context.Context) error {
	return store.db.Ping(ctx)
}

// Close releases the connection pool.
func (store *PostgresStorage) Close() {
	store.db.Close()
}
