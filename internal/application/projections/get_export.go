package projections

import (
	"context"
	"time"

	"curriculum/internal/adapters/storage/curriculum"
)

// ExportFormatVersion identifies the export envelope layout.
const ExportFormatVersion = 1

// ExportResult is the export envelope.
type ExportResult struct {
	Version    int                 `json:"version"`
	ExportedAt time.Time           `json:"exported_at"`
	Document   curriculum.Document `json:"document"`
}

// ExportDeps holds dependencies for QueryExport.
type ExportDeps struct {
	Store DocumentExporter
	Now   func() time.Time
}

// QueryExport snapshots the whole persisted document.
// PRE: none
// POST: the envelope can be fed back to ExecuteImportDocument
func QueryExport(ctx context.Context, deps ExportDeps) (ExportResult, error) {
	doc, err := deps.Store.Export(ctx)
	if err != nil {
		return ExportResult{}, err
	}
	return ExportResult{Version: ExportFormatVersion, ExportedAt: deps.Now().UTC(), Document: doc}, nil
}
