package cognis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dan-solli/cognis/pkg/artifact"
	"github.com/dan-solli/cognis/pkg/audit"
	"github.com/dan-solli/cognis/pkg/graph"
	"github.com/dan-solli/cognis/pkg/metrics"
	"github.com/dan-solli/cognis/pkg/trace"
)

// Case is an ingestion collaborator's output: evidence records plus the
// entity network extracted from them.
type Case struct {
	// Name is the uploaded file the case was extracted from
	Name      string
	Artifacts []artifact.Artifact
	Network   graph.Snapshot
}

// SampleCase returns the demonstration case.
func SampleCase() Case {
	return Case{
		Name:      "case_001_whatsapp.zip",
		Artifacts: artifact.SampleCase(),
		Network:   graph.SampleNetwork(),
	}
}

// IngestCase loads artifacts, then entities, then relationships, and records
// a File Uploaded entry once everything is in. Ingestion stops at the first
// error; whatever was loaded before it stays loaded and nothing is recorded.
func (s *Session) IngestCase(ctx context.Context, c Case) error {
	start := time.Now()
	ot := trace.NewOperationTrace()

	err := s.ingest(ctx, c, ot)
	if err == nil {
		span := ot.StartSpan("audit-upload")
		_, err = s.record(ctx, audit.ActionFileUploaded, fmt.Sprintf("%s uploaded successfully", c.Name))
		span.Finish(ClassifyError(err), nil)
	}

	s.observe(ctx, metrics.OpIngest, start, err)
	s.exportTrace(ctx, metrics.OpIngest, uuid.New().String(), start, ot, err, map[string]interface{}{
		"artifacts":     len(c.Artifacts),
		"entities":      len(c.Network.Entities),
		"relationships": len(c.Network.Relationships),
	})
	s.updateStorageCounts(ctx)

	if err != nil {
		s.logger.Error("case ingestion failed", "error", err, "error_type", ClassifyError(err))
		return err
	}
	s.logger.Info("case ingested",
		"artifacts", len(c.Artifacts),
		"entities", len(c.Network.Entities),
		"relationships", len(c.Network.Relationships),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (s *Session) ingest(ctx context.Context, c Case, ot *trace.OperationTrace) error {
	span := ot.StartSpan("load-artifacts")
	if err := s.catalog.IngestAll(ctx, c.Artifacts); err != nil {
		span.Finish(ClassifyError(err), nil)
		return err
	}
	span.Finish("", map[string]int64{"artifacts": int64(len(c.Artifacts))})

	span = ot.StartSpan("load-entities")
	if err := graph.Load(ctx, s.graph, graph.Snapshot{Entities: c.Network.Entities}); err != nil {
		span.Finish(ClassifyError(err), nil)
		return err
	}
	span.Finish("", map[string]int64{"entities": int64(len(c.Network.Entities))})

	span = ot.StartSpan("load-relationships")
	if err := graph.Load(ctx, s.graph, graph.Snapshot{Relationships: c.Network.Relationships}); err != nil {
		span.Finish(ClassifyError(err), nil)
		return err
	}
	span.Finish("", map[string]int64{"relationships": int64(len(c.Network.Relationships))})
	return nil
}
