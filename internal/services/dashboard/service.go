package dashboard

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/bobmcallan/finsight/internal/common"
	"github.com/bobmcallan/finsight/internal/interfaces"
	"github.com/bobmcallan/finsight/internal/models"
)

// Service implements interfaces.DashboardService.
type Service struct {
	documents interfaces.DocumentService
	retriever interfaces.Retriever
	gemini    interfaces.GeminiClient
	search    interfaces.SearchClient
	store     interfaces.DashboardStore
	logger    *common.Logger

	workers        int
	sectionTimeout time.Duration
	sparseChars    int
	threshold      float64
}

// NewService creates the dashboard service. search may be nil; the
// web-sourced sections then fall back to placeholders.
func NewService(
	documents interfaces.DocumentService,
	retriever interfaces.Retriever,
	gemini interfaces.GeminiClient,
	search interfaces.SearchClient,
	store interfaces.DashboardStore,
	pipeline common.PipelineConfig,
	logger *common.Logger,
) *Service {
	return &Service{
		documents:      documents,
		retriever:      retriever,
		gemini:         gemini,
		search:         search,
		store:          store,
		logger:         logger,
		workers:        pipeline.Workers,
		sectionTimeout: pipeline.GetSectionTimeout(),
		sparseChars:    pipeline.SparseContextChars,
		threshold:      pipeline.CompletenessThreshold,
	}
}

// Generate builds all sections, scores completeness, and replaces the
// cached record for the current fingerprint.
func (s *Service) Generate(ctx context.Context) (*models.DashboardRecord, error) {
	fingerprint, err := s.documents.Fingerprint(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	completed := newResultSet()

	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup

	// Sections are fed in canonical order: financial statements first,
	// so slower sections falling through to derive see their data.
	for _, def := range sectionDefs {
		sem <- struct{}{}
		s.safeGo(&wg, def.Name, func(def sectionDef) func() {
			return func() {
				defer func() { <-sem }()

				sectionCtx, cancel := context.WithTimeout(ctx, s.sectionTimeout)
				defer cancel()

				completed.put(s.runSection(sectionCtx, def, completed))
			}
		}(def))
	}
	wg.Wait()

	record := &models.DashboardRecord{
		Fingerprint: fingerprint,
		Sections:    make([]models.SectionResult, 0, len(sectionDefs)),
		GeneratedAt: time.Now().UTC(),
	}
	completed.mu.Lock()
	for _, def := range sectionDefs {
		if result, ok := completed.sections[def.Name]; ok {
			record.Sections = append(record.Sections, result)
		}
	}
	completed.mu.Unlock()

	score, low := Score(record)
	record.CompletenessScore = score
	record.LowSections = low

	if score < s.threshold {
		s.logger.Warn().
			Float64("score", score).
			Float64("threshold", s.threshold).
			Strs("low_sections", low).
			Msg("Dashboard completeness below threshold")
	}

	if err := s.store.Put(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to cache dashboard: %w", err)
	}

	s.logger.Info().
		Str("fingerprint", fingerprint).
		Float64("score", score).
		Dur("elapsed", time.Since(start)).
		Msg("Dashboard generated")

	return record, nil
}

// Get returns the cached dashboard for the current document set,
// regenerating when the fingerprint does not match the cache.
func (s *Service) Get(ctx context.Context) (*models.DashboardRecord, error) {
	fingerprint, err := s.documents.Fingerprint(ctx)
	if err != nil {
		return nil, err
	}

	record, err := s.store.Get(ctx, fingerprint)
	if err == nil && record != nil {
		return record, nil
	}

	s.logger.Info().Str("fingerprint", fingerprint).Msg("No cached dashboard for fingerprint, generating")
	return s.Generate(ctx)
}

// GetSection returns one section of the current dashboard.
func (s *Service) GetSection(ctx context.Context, name string) (*models.SectionResult, error) {
	if _, ok := sectionDefByName(name); !ok {
		return nil, fmt.Errorf("unknown dashboard section: %s", name)
	}

	record, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	result := record.Section(name)
	if result == nil {
		return nil, fmt.Errorf("section %s missing from dashboard", name)
	}
	return result, nil
}

// safeGo runs fn on the WaitGroup with panic recovery, so one failing
// section never takes down a generation run.
func (s *Service) safeGo(wg *sync.WaitGroup, name string, fn func()) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error().
					Str("section", name).
					Str("panic", fmt.Sprintf("%v", r)).
					Str("stack", string(debug.Stack())).
					Msg("Recovered from panic in section worker")
			}
		}()
		fn()
	}()
}
