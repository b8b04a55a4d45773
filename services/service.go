// Package services wires fetchers, the normalizer, the upload journal and
// the destination client into the scheduled pipeline runs.
package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	fxsync "github.com/unhappyben/fx-sync"
	"github.com/unhappyben/fx-sync/normalize"
)

// SyncService is the shared pipeline shape: fetch, normalize, filter against
// the journal, upload, journal. Each run is sequential and executes to
// completion or aborts on the first provider or upload error.
type SyncService struct {
	Fetcher       fxsync.Fetcher
	Uploader      fxsync.Uploader
	Storages      []fxsync.Storage
	Logger        *zap.Logger
	Base          string
	Quotes        []string
	Interpolate   bool
	RecreateTable bool
}

func (s SyncService) Execute(ctx context.Context, dates []time.Time) (fxsync.RunReport, error) {
	report := fxsync.RunReport{}

	raw, err := s.Fetcher.Fetch(ctx, dates, s.Base, s.Quotes)

	if err != nil {
		return report, err
	}

	records, skipped := normalize.Records(s.Logger, raw, s.Quotes)

	if s.Interpolate {
		records = normalize.FillWeekendGaps(s.Logger, records)
	}

	report.Fetched = len(records)
	report.Skipped = skipped

	return report, s.publish(ctx, records, &report)
}

// publish runs the tail of the pipeline on already-normalized records.
func (s SyncService) publish(ctx context.Context, records []fxsync.RateRecord, report *fxsync.RunReport) error {
	if s.RecreateTable {
		// The original table is recreated best-effort: a failed create or
		// clear still leaves the insert worth attempting.
		if err := s.Uploader.EnsureTable(ctx); err != nil {
			s.Logger.Warn("table create failed, continuing", zap.Error(err))
		}

		if err := s.Uploader.Clear(ctx); err != nil {
			s.Logger.Warn("table clear failed, continuing", zap.Error(err))
		}
	}

	toUpload := records

	for _, storage := range s.Storages {
		remaining, err := storage.Filter(toUpload)

		if err != nil {
			return err
		}

		toUpload = remaining
	}

	report.AlreadyUploaded = len(records) - len(toUpload)

	if len(toUpload) == 0 {
		s.Logger.Info("nothing to upload",
			zap.Int("fetched", report.Fetched),
			zap.Int("already_uploaded", report.AlreadyUploaded),
		)

		return nil
	}

	uploaded, err := s.Uploader.Insert(ctx, toUpload)

	if err != nil {
		return err
	}

	report.Uploaded = uploaded

	for _, storage := range s.Storages {
		stored, err := storage.Store(toUpload)

		if err != nil {
			// The upload went through; a journal failure only costs dedupe
			// on the next overlapping run.
			s.Logger.Warn("journaling uploaded batch failed",
				zap.String("storage", storage.GetStorageProviderName()),
				zap.Error(err),
			)

			continue
		}

		report.Journaled += len(stored)
	}

	s.Logger.Info("run finished",
		zap.Int("fetched", report.Fetched),
		zap.Int("skipped", report.Skipped),
		zap.Int("already_uploaded", report.AlreadyUploaded),
		zap.Int("uploaded", report.Uploaded),
	)

	return nil
}
