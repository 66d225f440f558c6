package services

import "errors"

var (
	// ErrPipelineRunning indicates a pipeline run is already in progress
	ErrPipelineRunning = errors.New("pipeline run already in progress")

	// ErrNoPipelineRun indicates no pipeline run has completed yet
	ErrNoPipelineRun = errors.New("no pipeline run has completed")
)
