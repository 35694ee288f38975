// Package fundamentals normalizes raw financial statements into canonical
// metric records.
package fundamentals

import (
	"github.com/finmetrix/finmetrix/internal/clients/yahoo"
	"github.com/finmetrix/finmetrix/internal/domain"
)

// RawPeriod is one reporting period as delivered by the provider: an end
// date, a kind, and an opaque field map. Field values may be plain numbers
// or the provider's {raw, fmt} value objects.
type RawPeriod struct {
	EndDate string
	Kind    domain.PeriodKind
	Fields  map[string]interface{}
}

// RawStatement is the normalizer input: the full unparsed statement history
// for one company.
type RawStatement struct {
	Ticker   string
	Currency string
	Periods  []RawPeriod
}

// FromProvider flattens a provider statement payload into one RawStatement.
// Income, balance and cashflow entries for the same period end date land in
// the same RawPeriod so their fields merge into one row.
func FromProvider(raw yahoo.RawStatements) RawStatement {
	stmt := RawStatement{
		Ticker:   raw.Ticker,
		Currency: raw.Currency,
	}

	index := make(map[domain.PeriodKey]int)

	add := func(entries []map[string]interface{}, kind domain.PeriodKind) {
		for _, entry := range entries {
			endDate := extractEndDate(entry)
			if endDate == "" {
				continue
			}

			key := domain.PeriodKey{EndDate: endDate, Kind: kind}
			i, ok := index[key]
			if !ok {
				stmt.Periods = append(stmt.Periods, RawPeriod{
					EndDate: endDate,
					Kind:    kind,
					Fields:  make(map[string]interface{}),
				})
				i = len(stmt.Periods) - 1
				index[key] = i
			}

			for field, value := range entry {
				if field == "endDate" || field == "maxAge" {
					continue
				}
				stmt.Periods[i].Fields[field] = value
			}
		}
	}

	add(raw.Income, domain.PeriodAnnual)
	add(raw.Balance, domain.PeriodAnnual)
	add(raw.Cashflow, domain.PeriodAnnual)
	add(raw.IncomeQuarterly, domain.PeriodQuarterly)
	add(raw.BalanceQuarterly, domain.PeriodQuarterly)
	add(raw.CashflowQuarterly, domain.PeriodQuarterly)

	return stmt
}

// AsRaw converts a normalized record back into normalizer input, using the
// canonical metric names as field names. Normalize(AsRaw(r)) reproduces r.
func AsRaw(record domain.FundamentalsRecord) RawStatement {
	stmt := RawStatement{
		Ticker:   record.Ticker,
		Currency: string(record.Currency),
	}

	for _, kind := range []domain.PeriodKind{domain.PeriodAnnual, domain.PeriodQuarterly} {
		for _, key := range record.PeriodsOf(kind) {
			fields := make(map[string]interface{})
			for metric, value := range record.Periods[key] {
				if value.Valid {
					fields[metric] = value.V
				}
			}
			stmt.Periods = append(stmt.Periods, RawPeriod{
				EndDate: key.EndDate,
				Kind:    key.Kind,
				Fields:  fields,
			})
		}
	}

	return stmt
}
