package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"fxetl/internal/domain"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CountryRateRepository struct {
	pool *pgxpool.Pool
}

type countryRateRow struct {
	Date         string  `json:"date"`
	CurrencyCode string  `json:"currency_code"`
	RateToBase   float64 `json:"rate_to_base"`
	Base         string  `json:"base"`
	CCA3         string  `json:"cca3"`
	CountryName  string  `json:"country_name"`
	Region       string  `json:"region"`
	Subregion    string  `json:"subregion"`
}

// ReplaceWindow atomically swaps the [start, end] date window of
// fx_country_rates for the given rows and reports how many were
// inserted. An empty slice leaves the table untouched.
func (r *CountryRateRepository) ReplaceWindow(ctx context.Context, start, end time.Time, rows []domain.CountryRate) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	payload := make([]countryRateRow, 0, len(rows))
	for _, row := range rows {
		payload = append(payload, countryRateRow{
			Date:         row.Date,
			CurrencyCode: row.CurrencyCode,
			RateToBase:   row.RateToBase,
			Base:         row.Base,
			CCA3:         row.CCA3,
			CountryName:  row.CountryName,
			Region:       row.Region,
			Subregion:    row.Subregion,
		})
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal country rates: %w", err)
	}

	const clearQ = `delete from fx_country_rates where date between $1 and $2;`

	const insertQ = `
		insert into fx_country_rates
			(date, currency_code, rate_to_base, base, cca3, country_name, region, subregion)
		select r.date::date, r.currency_code, r.rate_to_base, r.base,
		       r.cca3, r.country_name, r.region, r.subregion
		from json_to_recordset($1::json)
			as r(date text, currency_code text, rate_to_base double precision, base text,
			     cca3 text, country_name text, region text, subregion text);
	`

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err = tx.Exec(ctx, clearQ, start, end); err != nil {
		return 0, fmt.Errorf("failed to clear window %s..%s: %w",
			start.Format(domain.DateLayout), end.Format(domain.DateLayout), err)
	}

	tag, err := tx.Exec(ctx, insertQ, json.RawMessage(payloadJSON))
	if err != nil {
		return 0, fmt.Errorf("failed to insert country rates: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return tag.RowsAffected(), nil
}

func NewCountryRateRepository(pool *pgxpool.Pool) *CountryRateRepository {
	return &CountryRateRepository{pool: pool}
}
