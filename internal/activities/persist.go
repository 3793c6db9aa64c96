package activities

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/activity"

	"github.com/draftwright/draftwright/internal/archive"
	"github.com/draftwright/draftwright/internal/db"
	"github.com/draftwright/draftwright/internal/metrics"
)

// Persist writes the finished document to the output directory as a
// markdown file plus a zip bundle, and records the run when a store is
// configured. Artifacts are write-once per request.
func (a *Activities) Persist(ctx context.Context, in PersistInput) (PersistResult, error) {
	logger := activity.GetLogger(ctx)

	mdPath, zipPath, err := archive.Write(a.outputDir, in.Title, in.Final)
	if err != nil {
		return PersistResult{}, fmt.Errorf("persist document %q: %w", in.Title, err)
	}

	if a.store != nil {
		run := db.Run{
			ID:            in.RunID,
			Topic:         in.Topic,
			Mode:          string(in.Mode),
			BlogKind:      string(in.BlogKind),
			Title:         in.Title,
			SectionCount:  in.SectionCount,
			EvidenceCount: in.EvidenceCount,
			MarkdownPath:  mdPath,
			ArchivePath:   zipPath,
		}
		if err := a.store.SaveRun(ctx, run); err != nil {
			// The document is already on disk; losing the record is not
			// worth failing the request over.
			logger.Warn("Failed to record blog run", "run_id", in.RunID, "error", err)
		}
	}

	metrics.WorkflowsCompleted.WithLabelValues(string(in.Mode)).Inc()
	if in.ElapsedSeconds > 0 {
		metrics.WorkflowDuration.WithLabelValues(string(in.Mode)).Observe(in.ElapsedSeconds)
	}
	logger.Info("Persisted document",
		"markdown", mdPath,
		"archive", zipPath,
	)
	return PersistResult{MarkdownPath: mdPath, ArchivePath: zipPath}, nil
}
