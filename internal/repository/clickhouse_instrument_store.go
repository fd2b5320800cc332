package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"FinForge/internal/domain/models"
	domrepo "FinForge/internal/domain/repository"
	pkgch "FinForge/pkg/clickhouse"
	applogger "FinForge/pkg/logger"
)

// InstrumentSchema creates the ClickHouse snapshot table. Every price update is a new
// row; readers take the latest row per symbol.
var InstrumentSchema = []string{
	`CREATE DATABASE IF NOT EXISTS finforge`,
	`CREATE TABLE IF NOT EXISTS finforge.instruments (
        symbol        LowCardinality(String),
        name          String,
        current_price Float64,
        day_change    Float64,
        beta          Float64,
        sector        LowCardinality(String),
        country       LowCardinality(String),
        market_cap    Float64,
        volume        Float64,
        pe_ratio      Float64,
        updated_at    DateTime64(3, 'UTC')
    ) ENGINE = ReplacingMergeTree(updated_at)
    ORDER BY symbol`,
}

const chLatestSelect = `
        SELECT symbol,
               argMax(name, updated_at),
               argMax(current_price, updated_at),
               argMax(day_change, updated_at),
               argMax(beta, updated_at),
               argMax(sector, updated_at),
               argMax(country, updated_at),
               argMax(market_cap, updated_at),
               argMax(volume, updated_at),
               argMax(pe_ratio, updated_at)
        FROM finforge.instruments
    `

const chInsert = `
        INSERT INTO finforge.instruments
            (symbol, name, current_price, day_change, beta, sector, country, market_cap, volume, pe_ratio, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `

// CHInstrumentStore implements InstrumentProvider and QuoteSink over ClickHouse.
type CHInstrumentStore struct {
	db  *sql.DB
	l   *applogger.Logger
	now func() time.Time
}

var (
	_ domrepo.InstrumentProvider = (*CHInstrumentStore)(nil)
	_ domrepo.QuoteSink          = (*CHInstrumentStore)(nil)
)

func NewCHInstrumentStore(ch *pkgch.Client, l *applogger.Logger) *CHInstrumentStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHInstrumentStore{db: ch.DB(), l: l, now: time.Now}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInstrument(r rowScanner) (models.InstrumentDescriptor, error) {
	var inst models.InstrumentDescriptor
	err := r.Scan(&inst.Symbol, &inst.Name, &inst.CurrentPrice, &inst.DayChange, &inst.Beta,
		&inst.Sector, &inst.Country, &inst.MarketCap, &inst.Volume, &inst.PERatio)
	return inst, err
}

func (s *CHInstrumentStore) Get(ctx context.Context, symbol string) (models.InstrumentDescriptor, error) {
	sym := normalizeSymbol(symbol)
	row := s.db.QueryRowContext(ctx, chLatestSelect+" WHERE symbol = ? GROUP BY symbol", sym)
	inst, err := scanInstrument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.InstrumentDescriptor{}, fmt.Errorf("%w: %s", domrepo.ErrInstrumentNotFound, symbol)
	}
	if err != nil {
		s.l.Ctx(ctx).Error("clickhouse get_instrument failed", applogger.String("symbol", sym), applogger.Error(err))
		return models.InstrumentDescriptor{}, fmt.Errorf("get instrument: %w", err)
	}
	return inst, nil
}

func (s *CHInstrumentStore) List(ctx context.Context) ([]models.InstrumentDescriptor, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, chLatestSelect+" GROUP BY symbol ORDER BY symbol")
	if err != nil {
		s.l.Ctx(ctx).Error("clickhouse list_instruments query error", applogger.Error(err))
		return nil, fmt.Errorf("list instruments: %w", err)
	}
	defer rows.Close()

	out := make([]models.InstrumentDescriptor, 0, 16)
	for rows.Next() {
		inst, err := scanInstrument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan instrument: %w", err)
		}
		out = append(out, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	s.l.Debug("clickhouse list_instruments ok",
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

// Upsert appends a snapshot row.
func (s *CHInstrumentStore) Upsert(ctx context.Context, inst models.InstrumentDescriptor) error {
	inst.Symbol = normalizeSymbol(inst.Symbol)
	_, err := s.db.ExecContext(ctx, chInsert, insertArgs(inst, s.now())...)
	if err != nil {
		return fmt.Errorf("upsert instrument %s: %w", inst.Symbol, err)
	}
	return nil
}

// ApplyQuote reads the latest snapshot and appends one with the new price.
func (s *CHInstrumentStore) ApplyQuote(ctx context.Context, q *models.Quote) error {
	if err := validQuote(q); err != nil {
		return err
	}
	inst, err := s.Get(ctx, q.Symbol)
	if err != nil {
		return err
	}
	return s.Upsert(ctx, applyQuote(inst, q))
}

func insertArgs(inst models.InstrumentDescriptor, at time.Time) []any {
	return []any{
		inst.Symbol, inst.Name, inst.CurrentPrice, inst.DayChange, inst.Beta,
		inst.Sector, inst.Country, inst.MarketCap, inst.Volume, inst.PERatio, at.UTC(),
	}
}

// applyQuote returns inst moved to the quote price, DayChange kept against the previous close.
func applyQuote(inst models.InstrumentDescriptor, q *models.Quote) models.InstrumentDescriptor {
	prevClose := inst.PreviousClose()
	if q.PreviousClose > 0 {
		prevClose = q.PreviousClose
	}
	inst.CurrentPrice = q.Price
	inst.DayChange = q.Price - prevClose
	return inst
}
