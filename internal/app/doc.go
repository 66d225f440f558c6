// Package app assembles the application: configuration, logging,
// the pipeline service layer and the chi HTTP router with its
// middleware chain, plus graceful startup and shutdown.
package app
