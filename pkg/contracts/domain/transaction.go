package domain

import "time"

// Transaction represents a single cleaned retail invoice line item.
// Quantity and UnitPrice are guaranteed positive after cleaning; Revenue is
// their product.
type Transaction struct {
	InvoiceDate time.Time `json:"invoice_date" csv:"InvoiceDate"`
	Quantity    float64   `json:"quantity" csv:"Quantity"`
	UnitPrice   float64   `json:"unit_price" csv:"UnitPrice"`
	Country     string    `json:"country" csv:"Country"`
	Item        string    `json:"item" csv:"Item"`
	Category    string    `json:"category" csv:"Category"`
	Revenue     float64   `json:"revenue" csv:"Revenue"`
}

// IsValid checks if the transaction passes the cleaning filters
func (t Transaction) IsValid() bool {
	return !t.InvoiceDate.IsZero() && t.Quantity > 0 && t.UnitPrice > 0
}

// MonthlyRevenue is one aggregated revenue bucket for a
// (month, country, category) combination. Month is the first day of the
// calendar month in UTC.
type MonthlyRevenue struct {
	Month    time.Time `json:"month" csv:"Month"`
	Country  string    `json:"country" csv:"Country"`
	Category string    `json:"category" csv:"Category"`
	Revenue  float64   `json:"revenue" csv:"Revenue"`
}

// IsValid checks if the bucket carries usable data
func (m MonthlyRevenue) IsValid() bool {
	return !m.Month.IsZero() && m.Revenue >= 0
}
