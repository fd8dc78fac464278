package source

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/markmhendrickson/site-mcp/internal/record"
)

// datasetTables maps each dataset to its backing table. Each table holds one
// jsonb document per row in a `record` column, ordered by `position`.
var datasetTables = map[Dataset]string{
	Posts:    "posts",
	Links:    "links",
	Timeline: "timeline",
}

// datasetQuery returns the fetch statement for one dataset table. The id
// tiebreaker keeps rows sharing a position in a stable order, so repeated
// fetches of an unchanged table yield identical sequences.
func datasetQuery(table string) string {
	return fmt.Sprintf("SELECT record::text FROM %s ORDER BY position, id", table)
}

// PostgresSource reads dataset records from a Postgres database.
type PostgresSource struct {
	pool *pgxpool.Pool
}

func NewPostgresSource(ctx context.Context, dsn string) (*PostgresSource, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	// Read-only workload with a handful of fixed statements; cache them.
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return &PostgresSource{pool: pool}, nil
}

func (s *PostgresSource) Fetch(ctx context.Context, dataset Dataset) ([]record.Record, error) {
	table, ok := datasetTables[dataset]
	if !ok {
		return nil, fmt.Errorf("unknown dataset: %s", dataset)
	}

	rows, err := s.pool.Query(ctx, datasetQuery(table))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", dataset, err)
	}
	defer rows.Close()

	var records []record.Record
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", dataset, err)
		}
		r, err := record.Parse([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("decode %s row %d: %w", dataset, len(records), err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s: %w", dataset, err)
	}
	return records, nil
}

// Close releases the connection pool.
func (s *PostgresSource) Close() {
	s.pool.Close()
}
