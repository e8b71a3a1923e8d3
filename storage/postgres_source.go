package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"catalog-insights/models"
)

// PostgresSource reads every row of one table whose columns follow the same
// loose naming as spreadsheet headers.
type PostgresSource struct {
	DSN   string
	Table string
}

func (s *PostgresSource) Load(ctx context.Context) (*models.RawTable, error) {
	if s.Table == "" {
		return nil, fmt.Errorf("postgres: table cannot be empty")
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", s.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryxContext(ctx, "SELECT * FROM "+pq.QuoteIdentifier(s.Table))
	if err != nil {
		return nil, fmt.Errorf("postgres: select from %s: %w", s.Table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("postgres: columns: %w", err)
	}

	table := &models.RawTable{Columns: columns}
	for rows.Next() {
		row := make(map[string]interface{}, len(columns))
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		table.Rows = append(table.Rows, models.RawRow(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate rows: %w", err)
	}
	return table, nil
}
