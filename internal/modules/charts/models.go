// Package charts shapes normalized data into chart-ready payloads.
package charts

// Series kinds understood by the frontend chart renderer.
const (
	KindLine = "line"
	KindBar  = "bar"
)

// ChartDataPoint represents a single point on a chart. Value is nil where a
// series has no observation for an x-axis slot (tickers trade on different
// calendars but share one date domain).
type ChartDataPoint struct {
	Time  string   `json:"time"` // YYYY-MM-DD format
	Value *float64 `json:"value"`
}

// ChartSeries is one named series on a chart.
type ChartSeries struct {
	Name   string           `json:"name"`
	Kind   string           `json:"kind"`
	Points []ChartDataPoint `json:"points"`
}

// ChartData is a complete render-ready chart payload.
type ChartData struct {
	Title  string        `json:"title"`
	Unit   string        `json:"unit,omitempty"` // e.g. "USD", "USD/share", "ratio"
	XAxis  []string      `json:"x_axis"`
	Series []ChartSeries `json:"series"`
}

// Empty reports whether the chart carries no series with data.
func (c ChartData) Empty() bool {
	for _, s := range c.Series {
		if len(s.Points) > 0 {
			return false
		}
	}
	return true
}
