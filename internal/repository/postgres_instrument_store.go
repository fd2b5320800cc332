package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"FinForge/internal/domain/models"
	domrepo "FinForge/internal/domain/repository"
)

const pgInstrumentSchema = `
CREATE TABLE IF NOT EXISTS instruments (
    symbol        TEXT PRIMARY KEY,
    name          TEXT NOT NULL DEFAULT '',
    current_price DOUBLE PRECISION NOT NULL,
    day_change    DOUBLE PRECISION NOT NULL DEFAULT 0,
    beta          DOUBLE PRECISION NOT NULL DEFAULT 1,
    sector        TEXT NOT NULL DEFAULT '',
    country       TEXT NOT NULL DEFAULT '',
    market_cap    DOUBLE PRECISION NOT NULL DEFAULT 0,
    volume        DOUBLE PRECISION NOT NULL DEFAULT 0,
    pe_ratio      DOUBLE PRECISION NOT NULL DEFAULT 0,
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const pgColumns = `symbol, name, current_price, day_change, beta, sector, country, market_cap, volume, pe_ratio`

// pgDB is the part of *pgxpool.Pool the store uses.
type pgDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGInstrumentStore implements InstrumentProvider and QuoteSink over Postgres.
type PGInstrumentStore struct {
	db pgDB
}

var (
	_ domrepo.InstrumentProvider = (*PGInstrumentStore)(nil)
	_ domrepo.QuoteSink          = (*PGInstrumentStore)(nil)
)

func NewPGInstrumentStore(pool *pgxpool.Pool) *PGInstrumentStore {
	return &PGInstrumentStore{db: pool}
}

func (s *PGInstrumentStore) InitSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, pgInstrumentSchema); err != nil {
		return fmt.Errorf("init instruments schema: %w", err)
	}
	return nil
}

func (s *PGInstrumentStore) Get(ctx context.Context, symbol string) (models.InstrumentDescriptor, error) {
	row := s.db.QueryRow(ctx, `SELECT `+pgColumns+` FROM instruments WHERE symbol = $1`, normalizeSymbol(symbol))
	inst, err := scanInstrument(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.InstrumentDescriptor{}, fmt.Errorf("%w: %s", domrepo.ErrInstrumentNotFound, symbol)
	}
	if err != nil {
		return models.InstrumentDescriptor{}, fmt.Errorf("get instrument: %w", err)
	}
	return inst, nil
}

func (s *PGInstrumentStore) List(ctx context.Context) ([]models.InstrumentDescriptor, error) {
	rows, err := s.db.Query(ctx, `SELECT `+pgColumns+` FROM instruments ORDER BY symbol ASC`)
	if err != nil {
		return nil, fmt.Errorf("list instruments: %w", err)
	}
	defer rows.Close()

	var out []models.InstrumentDescriptor
	for rows.Next() {
		inst, err := scanInstrument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan instrument: %w", err)
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

// Upsert inserts or replaces the instrument row.
func (s *PGInstrumentStore) Upsert(ctx context.Context, inst models.InstrumentDescriptor) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO instruments (`+pgColumns+`, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		 ON CONFLICT (symbol) DO UPDATE SET
		     name = EXCLUDED.name, current_price = EXCLUDED.current_price,
		     day_change = EXCLUDED.day_change, beta = EXCLUDED.beta,
		     sector = EXCLUDED.sector, country = EXCLUDED.country,
		     market_cap = EXCLUDED.market_cap, volume = EXCLUDED.volume,
		     pe_ratio = EXCLUDED.pe_ratio, updated_at = NOW()`,
		normalizeSymbol(inst.Symbol), inst.Name, inst.CurrentPrice, inst.DayChange, inst.Beta,
		inst.Sector, inst.Country, inst.MarketCap, inst.Volume, inst.PERatio,
	)
	if err != nil {
		return fmt.Errorf("upsert instrument %s: %w", inst.Symbol, err)
	}
	return nil
}

// ApplyQuote updates the price in place; day_change keeps tracking the previous close.
func (s *PGInstrumentStore) ApplyQuote(ctx context.Context, q *models.Quote) error {
	if err := validQuote(q); err != nil {
		return err
	}
	var tag pgconn.CommandTag
	var err error
	if q.PreviousClose > 0 {
		tag, err = s.db.Exec(ctx,
			`UPDATE instruments SET current_price = $2, day_change = $2 - $3, updated_at = NOW() WHERE symbol = $1`,
			normalizeSymbol(q.Symbol), q.Price, q.PreviousClose)
	} else {
		tag, err = s.db.Exec(ctx,
			`UPDATE instruments SET day_change = $2 - (current_price - day_change), current_price = $2, updated_at = NOW() WHERE symbol = $1`,
			normalizeSymbol(q.Symbol), q.Price)
	}
	if err != nil {
		return fmt.Errorf("apply quote %s: %w", q.Symbol, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domrepo.ErrInstrumentNotFound, q.Symbol)
	}
	return nil
}
