package fxsync

import "context"

type (
	// RunReport is what a single scheduled invocation accomplished.
	RunReport struct {
		Fetched         int
		Skipped         int
		AlreadyUploaded int
		Uploaded        int
		Journaled       int
	}

	Service interface {
		Run(ctx context.Context) (RunReport, error)
	}

	// Uploader is the analytics destination a run publishes to.
	Uploader interface {
		EnsureTable(ctx context.Context) error
		Clear(ctx context.Context) error
		Insert(ctx context.Context, records []RateRecord) (int, error)
	}
)
