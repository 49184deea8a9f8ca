package core

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Recorder receives import and media events, typically to export metrics.
type Recorder interface {
	RowProcessed(kind OutcomeKind)
	ImportFinished(result string, duration time.Duration)
	MediaUpdated(field string, applied bool)
}

type nopRecorder struct{}

func (nopRecorder) RowProcessed(OutcomeKind)             {}
func (nopRecorder) ImportFinished(string, time.Duration) {}
func (nopRecorder) MediaUpdated(string, bool)            {}

// Options configures a Service.
type Options struct {
	// SourcePath is the stories CSV read by RunImport.
	SourcePath string
	// MappingPath is where the story_name,node_id mapping is written.
	MappingPath string
	// Languages overrides DefaultLanguages.
	Languages *Languages
	// Recorder receives events. Optional.
	Recorder Recorder
}

// Service runs story imports and media updates against a Store.
type Service struct {
	store       Store
	transformer *Transformer
	recorder    Recorder
	gate        *importGate

	sourcePath  string
	mappingPath string

	mu   sync.RWMutex
	last *Summary
}

// NewService creates a new Service instance.
func NewService(store Store, opts Options) (*Service, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if opts.SourcePath == "" {
		return nil, errors.New("source path is required")
	}
	if opts.MappingPath == "" {
		return nil, errors.New("mapping path is required")
	}

	recorder := opts.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}

	return &Service{
		store:       store,
		transformer: NewTransformer(store, opts.Languages),
		recorder:    recorder,
		gate:        newImportGate(),
		sourcePath:  opts.SourcePath,
		mappingPath: opts.MappingPath,
	}, nil
}

// Languages returns the language registry used for imports.
func (s *Service) Languages() *Languages {
	return s.transformer.Languages()
}

// SourcePath returns the configured stories CSV location.
func (s *Service) SourcePath() string {
	return s.sourcePath
}

// LastSummary returns the summary of the most recent import in this process.
func (s *Service) LastSummary() (*Summary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.last != nil
}

// ImportStatus reports whether an import is currently running.
func (s *Service) ImportStatus() GateStatus {
	return s.gate.status()
}

// WaitForImports blocks until the running import, if any, completes.
// Used for graceful shutdown.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.gate.waitForDrain(ctx)
}

func (s *Service) setLast(summary *Summary) {
	s.mu.Lock()
	s.last = summary
	s.mu.Unlock()
}
