package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"chart-analyze-service/config"
	"chart-analyze-service/database"
	"chart-analyze-service/llm"
	"chart-analyze-service/metrics"
	"chart-analyze-service/models"
	"chart-analyze-service/parser"

	"github.com/apex/log"
)

// ErrAnalysisInProgress is returned when Analyze is called while another
// analysis is outstanding. One analysis at a time per service instance;
// callers surface this instead of queueing.
var ErrAnalysisInProgress = errors.New("an analysis is already in progress")

// ErrEmptyImage is returned when Analyze is called without image bytes.
var ErrEmptyImage = errors.New("image data is empty")

// Service orchestrates the capture → analyze → persist cycle. Dependencies
// are injected; there are no package-level singletons.
type Service struct {
	config    *config.Config
	db        *database.Database
	llmClient llm.Client

	mu       sync.Mutex
	inFlight bool
}

// NewService creates a new analysis service.
func NewService(cfg *config.Config, db *database.Database, client llm.Client) *Service {
	return &Service{
		config:    cfg,
		db:        db,
		llmClient: client,
	}
}

// Start verifies the schema. Called once at boot.
func (s *Service) Start() error {
	log.Infof("Starting chart analysis service, LLM provider=%s", s.llmClient.SourceName())
	return s.db.CreateAnalysisRecordsTable()
}

// Analyze runs one full analysis cycle: submit the image to the LLM, parse
// the reply leniently, persist the record, return it. A second call while
// one is in flight is rejected with ErrAnalysisInProgress. A failed call
// persists nothing.
func (s *Service) Analyze(ctx context.Context, imageData []byte, languageCode string) (*models.AnalysisRecord, error) {
	if len(imageData) == 0 {
		return nil, ErrEmptyImage
	}

	if !s.acquire() {
		return nil, ErrAnalysisInProgress
	}
	defer s.release()

	metrics.AnalysesInFlight.Inc()
	defer metrics.AnalysesInFlight.Dec()
	start := time.Now()

	if languageCode == "" {
		languageCode = s.config.DefaultLanguage
	}
	language := config.LanguageName(languageCode)
	log.Infof("Analyzing chart image, size=%d bytes, language=%s", len(imageData), language)

	content, err := s.llmClient.AnalyzeChart(ctx, imageData, language)
	if err != nil {
		log.Errorf("Chart analysis failed: %v", err)
		s.observe("failed", start)
		return nil, err
	}

	analysis := parser.ParseAnalysis(content, imageData)

	record := models.NewAnalysisRecord(analysis, imageData)
	record.Source = s.llmClient.SourceName()
	if err := s.db.SaveRecord(record); err != nil {
		log.Errorf("Failed to save analysis record %s: %v", record.ID, err)
		s.observe("save_failed", start)
		return nil, fmt.Errorf("failed to save analysis record: %w", err)
	}

	result := "chart"
	if !analysis.IsChart {
		result = "not_a_chart"
	}
	s.observe(result, start)
	log.Infof("Saved analysis record %s (is_chart=%v, trend=%q)", record.ID, analysis.IsChart, analysis.Data.Trend)
	return record, nil
}

// History lists persisted records within the retention window, newest first.
func (s *Service) History() ([]models.AnalysisRecord, error) {
	return s.db.ListRecords(s.config.RetentionDays)
}

// Get fetches one record by id.
func (s *Service) Get(id string) (*models.AnalysisRecord, error) {
	return s.db.GetRecord(id)
}

// Delete removes one record by explicit user action.
func (s *Service) Delete(id string) error {
	if err := s.db.DeleteRecord(id); err != nil {
		return err
	}
	metrics.RecordsDeletedTotal.Inc()
	return nil
}

// Stats returns history counts within the retention window.
func (s *Service) Stats() (*database.Stats, error) {
	return s.db.GetStats(s.config.RetentionDays)
}

func (s *Service) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return false
	}
	s.inFlight = true
	return true
}

func (s *Service) release() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}

func (s *Service) observe(result string, start time.Time) {
	metrics.AnalysesTotal.WithLabelValues(result).Inc()
	metrics.AnalysisDurationSeconds.WithLabelValues(result).Observe(time.Since(start).Seconds())
}
