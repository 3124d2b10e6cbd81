package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anatolykoptev/go_seek/internal/engine"
)

var postgresDialect = dialect{
	placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	types: map[string]string{
		"int":   "BIGINT",
		"float": "DOUBLE PRECISION",
		"bool":  "BOOLEAN",
		"time":  "TIMESTAMPTZ",
		"text":  "TEXT",
	},
	value: jsonValue,
}

type postgresDB struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects a pgx pool to databaseURL, retrying transient
// connection failures.
func OpenPostgres(ctx context.Context, databaseURL string) (Sink, error) {
	if databaseURL == "" {
		return nil, errors.New("store: DATABASE_URL is required for postgres output")
	}
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("store: parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 4
	config.MinConns = 1

	pool, err := engine.RetryDo(ctx, engine.DefaultRetryConfig, func() (*pgxpool.Pool, error) {
		p, err := pgxpool.NewWithConfig(ctx, config)
		if err != nil {
			return nil, err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return nil, err
		}
		return p, nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: connect postgres: %w", err)
	}

	slog.Info("store: postgres connected", slog.String("addr", config.ConnConfig.Host))
	return &sqlSink{db: &postgresDB{pool: pool}, dialect: postgresDialect}, nil
}

func (d *postgresDB) columns(ctx context.Context, table string) ([]string, error) {
	rows, err := d.pool.Query(ctx, `SELECT column_name FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1
		ORDER BY ordinal_position`, table)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (d *postgresDB) execAll(ctx context.Context, stmts []statement) error {
	return pgx.BeginFunc(ctx, d.pool, func(tx pgx.Tx) error {
		// Batched statements are prepared up front, so schema changes run first.
		batch := &pgx.Batch{}
		for _, s := range stmts {
			if len(s.args) == 0 {
				if _, err := tx.Exec(ctx, s.query); err != nil {
					return err
				}
				continue
			}
			batch.Queue(s.query, s.args...)
		}
		if batch.Len() == 0 {
			return nil
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

func (d *postgresDB) close() error {
	d.pool.Close()
	return nil
}
