// Package dataprocessing loads raw retail transaction files and prepares
// them for the forecasting pipeline.
//
// The package handles the messy side of ingestion so the forecast core can
// assume clean input:
//
//   - parser.go: CSV/XLSX reading, column-alias resolution, type coercion
//     and row-level cleaning filters
//   - aggregator.go: monthly revenue bucketing by country and category,
//     plus the per-month totals that seed the forecast series
//
// Supported inputs are Online Retail style exports: a header row naming at
// least an invoice date, a quantity and a unit price column (several alias
// spellings are recognized), with optional country and item description
// columns. Rows with unparseable dates or numbers, and rows with
// non-positive quantity or price (cancellations, adjustments), are dropped
// during parsing.
package dataprocessing
