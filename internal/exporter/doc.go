// Package exporter writes the pipeline's tabular artifacts for BI tools.
//
// Five CSV files (fact_sales, dim_date, total_timeseries, forecast,
// anomalies) and one Excel workbook mirroring them are produced per run.
// The CSV column names are a contract with external dashboard and export
// consumers; changing them breaks downstream imports.
package exporter
