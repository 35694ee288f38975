package yahoo

import "time"

// Bar is one daily OHLCV bar from the chart API.
type Bar struct {
	Date     time.Time `json:"date" msgpack:"date"`
	Open     float64   `json:"open" msgpack:"open"`
	High     float64   `json:"high" msgpack:"high"`
	Low      float64   `json:"low" msgpack:"low"`
	Close    float64   `json:"close" msgpack:"close"`
	Volume   int64     `json:"volume" msgpack:"volume"`
	AdjClose float64   `json:"adj_close" msgpack:"adj_close"`
}

// DividendEvent is one cash dividend from the chart API event stream.
type DividendEvent struct {
	Date   time.Time `json:"date" msgpack:"date"`
	Amount float64   `json:"amount" msgpack:"amount"`
}

// RawStatements carries the unparsed statement history for one company.
// Each entry is the provider's JSON object for a single reporting period;
// field extraction is left to the caller.
type RawStatements struct {
	Ticker            string                   `msgpack:"ticker"`
	Currency          string                   `msgpack:"currency"`
	Income            []map[string]interface{} `msgpack:"income"`
	IncomeQuarterly   []map[string]interface{} `msgpack:"income_quarterly"`
	Balance           []map[string]interface{} `msgpack:"balance"`
	BalanceQuarterly  []map[string]interface{} `msgpack:"balance_quarterly"`
	Cashflow          []map[string]interface{} `msgpack:"cashflow"`
	CashflowQuarterly []map[string]interface{} `msgpack:"cashflow_quarterly"`
}

// QuoteSummary holds the relevant quoteSummary modules for one company.
// AssetProfile and Price stay as raw maps; companies differ wildly in which
// fields they populate.
type QuoteSummary struct {
	Ticker       string                 `msgpack:"ticker"`
	AssetProfile map[string]interface{} `msgpack:"asset_profile"`
	SummaryData  map[string]interface{} `msgpack:"summary_data"`
	Price        map[string]interface{} `msgpack:"price"`
	Statements   RawStatements          `msgpack:"statements"`
}
