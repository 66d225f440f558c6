// Package services contains the application service layer.
//
// PipelineService orchestrates the full batch run: parse transactions,
// aggregate monthly revenue, forecast the total series and flag residual
// anomalies. The result of the most recent run is cached in memory and
// served to the HTTP handlers. HealthService reports process health and
// runtime statistics.
package services
