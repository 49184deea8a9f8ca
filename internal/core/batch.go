package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/storyimport/internal/logging"
)

// Import results reported to the Recorder.
const (
	ImportResultOK    = "ok"
	ImportResultFatal = "fatal"
	ImportResultBusy  = "busy"
)

// RunImport imports every row of the configured stories CSV.
//
// Each row is transformed in isolation: a row that fails, or panics, is
// recorded in Summary.Failed and the next row is processed. Only a missing
// source file (ErrSourceMissing), an unreadable stream, or a concurrent
// import (ErrImportInProgress) fail the call as a whole.
//
// When at least one story was created, the story_name,node_id mapping is
// written to the configured mapping path. If that write fails the summary is
// still returned together with the error: the stories already exist.
func (s *Service) RunImport(ctx context.Context) (*Summary, error) {
	if !s.gate.tryAcquire() {
		s.recorder.ImportFinished(ImportResultBusy, 0)
		return nil, ErrImportInProgress
	}
	defer s.gate.release()

	start := time.Now()
	importID := uuid.New().String()
	log := logging.WithFields(ctx, "import_id", importID, "source", s.sourcePath).With(requesterFields(ctx)...)

	f, counter, err := openSource(s.sourcePath)
	if err != nil {
		log.Error("import aborted", "error", err)
		s.recorder.ImportFinished(ImportResultFatal, time.Since(start))
		return nil, err
	}
	defer f.Close()

	log.Info("import started", "bytes", counter.total)

	summary, err := s.importRows(ctx, counter, importID)
	if err != nil {
		log.Error("import aborted", "error", err, "bytes_read", counter.bytesRead)
		s.recorder.ImportFinished(ImportResultFatal, time.Since(start))
		return nil, err
	}
	summary.StartedAt = start

	if len(summary.provenance) > 0 {
		if err := WriteProvenance(s.mappingPath, summary.provenance); err != nil {
			summary.Duration = time.Since(start)
			s.setLast(&summary.Summary)
			log.Error("write mapping failed", "path", s.mappingPath, "error", err)
			s.recorder.ImportFinished(ImportResultFatal, summary.Duration)
			return &summary.Summary, fmt.Errorf("%w: %w", ErrMappingNotWritten, err)
		}
		summary.MappingPath = s.mappingPath
	}

	summary.Duration = time.Since(start)
	s.setLast(&summary.Summary)
	s.recorder.ImportFinished(ImportResultOK, summary.Duration)

	log.Info("import finished",
		"created", summary.CreatedCount,
		"skipped", summary.SkippedCount,
		"failed", summary.FailedCount,
		"mapping", summary.MappingPath,
		"duration_ms", summary.Duration.Milliseconds(),
	)
	return &summary.Summary, nil
}

// batch accumulates outcomes while rows are processed.
type batch struct {
	Summary
	provenance []ProvenanceEntry
}

func (b *batch) add(out Outcome, row Row, line int) {
	switch out.Kind {
	case OutcomeCreated:
		b.Created = append(b.Created, out.Story)
		b.Languages[out.Story] = row.Get(ColLanguage)
		b.Titles[out.Story] = row.Get(ColTitle)
		b.provenance = append(b.provenance, ProvenanceEntry{
			StoryName: out.Story,
			NodeID:    row.Get(ColNodeID),
		})
	case OutcomeSkipped:
		b.Skipped = append(b.Skipped, SkippedRow{
			Status: string(OutcomeSkipped),
			Reason: out.Reason,
			Story:  out.Story,
		})
	default:
		b.Failed = append(b.Failed, FailedRow{
			Title: out.Title,
			Error: out.Error,
			Line:  line,
		})
	}
	b.CreatedCount = len(b.Created)
	b.SkippedCount = len(b.Skipped)
	b.FailedCount = len(b.Failed)
}

// importRows drives the transformer over every row of r.
func (s *Service) importRows(ctx context.Context, r *countingReader, importID string) (*batch, error) {
	b := &batch{Summary: Summary{
		ImportID:  importID,
		Created:   []string{},
		Skipped:   []SkippedRow{},
		Failed:    []FailedRow{},
		Languages: map[string]string{},
		Titles:    map[string]string{},
	}}
	log := logging.WithFields(ctx, "import_id", importID)

	rows, err := newRowReader(r)
	if err != nil {
		return nil, err
	}

	for {
		row, line, err := rows.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", rows.line+1, err)
		}

		out := s.safeTransform(ctx, row)
		b.add(out, row, line)
		s.recorder.RowProcessed(out.Kind)

		switch out.Kind {
		case OutcomeFailed:
			log.Warn("row failed", "line", line, "title", out.Title, "error", firstLine(out.Error))
		case OutcomeSkipped:
			log.Debug("row skipped", "line", line, "title", out.Title, "story", out.Story)
		default:
			log.Debug("row created", "line", line, "story", out.Story, "progress", r.Progress())
		}
	}

	return b, nil
}

// safeTransform runs TransformRow and turns errors and panics into a failed
// outcome carrying the original title and a rendered diagnostic.
func (s *Service) safeTransform(ctx context.Context, row Row) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{
				Kind:  OutcomeFailed,
				Title: row.Get(ColTitle),
				Error: RenderDiagnostic(&panicError{value: r, stack: debug.Stack()}),
			}
		}
	}()

	out, err := s.transformer.TransformRow(ctx, row)
	if err != nil {
		return Outcome{
			Kind:  OutcomeFailed,
			Title: row.Get(ColTitle),
			Error: RenderDiagnostic(err),
		}
	}
	return out
}

// firstLine trims a rendered diagnostic to its message for log lines.
func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
