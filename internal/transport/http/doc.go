// Package http contains the HTTP transport layer: chi handlers that
// expose the pipeline results as a JSON API. Handlers depend on small
// service interfaces so tests can stub the service layer.
package http
