package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPeriodsOfSortedAscending(t *testing.T) {
	rec := NewFundamentalsRecord("AAPL", CurrencyUSD)
	for _, end := range []string{"2023-09-30", "2021-09-25", "2024-09-28", "2022-09-24"} {
		rec.Periods[PeriodKey{EndDate: end, Kind: PeriodAnnual}] = Metrics{
			MetricRevenue: Some(1),
		}
	}
	rec.Periods[PeriodKey{EndDate: "2024-06-29", Kind: PeriodQuarterly}] = Metrics{
		MetricRevenue: Some(1),
	}

	annual := rec.PeriodsOf(PeriodAnnual)
	dates := make([]string, 0, len(annual))
	for _, k := range annual {
		assert.Equal(t, PeriodAnnual, k.Kind)
		dates = append(dates, k.EndDate)
	}
	assert.Equal(t, []string{"2021-09-25", "2022-09-24", "2023-09-30", "2024-09-28"}, dates)
}

func TestMetricUnknownPeriodAndMetric(t *testing.T) {
	rec := NewFundamentalsRecord("AAPL", CurrencyUSD)
	key := PeriodKey{EndDate: "2024-09-28", Kind: PeriodAnnual}
	rec.Periods[key] = Metrics{MetricRevenue: Some(391035)}

	assert.Equal(t, Some(391035), rec.Metric(key, MetricRevenue))
	assert.Equal(t, NA(), rec.Metric(key, MetricNetIncome))
	assert.Equal(t, NA(), rec.Metric(PeriodKey{EndDate: "1999-12-31", Kind: PeriodAnnual}, MetricRevenue))
}
