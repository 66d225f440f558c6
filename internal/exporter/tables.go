package exporter

import (
	"strconv"

	"retailbi/internal/anomaly"
	"retailbi/internal/forecast"
	"retailbi/pkg/contracts/domain"
)

// dateFormat is how month keys appear in the exported tables
const dateFormat = "2006-01-02"

// Table is one exportable table: a header row plus data records.
type Table struct {
	Headers []string
	Records [][]string
}

// FactSalesTable is the star-schema fact table: one row per
// (month, country, category) revenue bucket.
func FactSalesTable(monthly []domain.MonthlyRevenue) Table {
	records := make([][]string, len(monthly))
	for i, m := range monthly {
		records[i] = []string{
			m.Month.Format(dateFormat),
			m.Country,
			m.Category,
			formatRevenue(m.Revenue),
		}
	}
	return Table{
		Headers: []string{"Date", "Country", "Category", "Revenue"},
		Records: records,
	}
}

// DimDateTable is the date dimension covering every month of the series
func DimDateTable(series forecast.Series) Table {
	records := make([][]string, len(series))
	for i, p := range series {
		records[i] = []string{
			p.Month.Format(dateFormat),
			strconv.Itoa(p.Month.Year()),
			strconv.Itoa(int(p.Month.Month())),
			p.Month.Format("2006-01"),
		}
	}
	return Table{
		Headers: []string{"Date", "Year", "Month", "YearMonth"},
		Records: records,
	}
}

// TotalSeriesTable is the gap-filled monthly revenue total series
func TotalSeriesTable(series forecast.Series) Table {
	records := make([][]string, len(series))
	for i, p := range series {
		records[i] = []string{
			p.Month.Format(dateFormat),
			formatRevenue(p.Revenue),
		}
	}
	return Table{
		Headers: []string{"Date", "TotalRevenue"},
		Records: records,
	}
}

// ForecastTable is the point forecast with its confidence band
func ForecastTable(points []forecast.ForecastPoint) Table {
	records := make([][]string, len(points))
	for i, p := range points {
		records[i] = []string{
			p.Month.Format(dateFormat),
			formatRevenue(p.Yhat),
			formatRevenue(p.Lower),
			formatRevenue(p.Upper),
		}
	}
	return Table{
		Headers: []string{"Month", "Yhat", "Lower", "Upper"},
		Records: records,
	}
}

// AnomalyTable is the per-month anomaly verdict table
func AnomalyTable(records []anomaly.Record) Table {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			r.Month.Format(dateFormat),
			formatRevenue(r.Residual),
			formatRevenue(r.Z),
			strconv.FormatBool(r.Anomaly),
		}
	}
	return Table{
		Headers: []string{"Month", "Residual", "Z", "Anomaly"},
		Records: rows,
	}
}

func formatRevenue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
