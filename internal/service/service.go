package service

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/subworks/subflow/internal/classify"
	"github.com/subworks/subflow/internal/config"
	"github.com/subworks/subflow/internal/intake"
	"github.com/subworks/subflow/internal/jobs"
	"github.com/subworks/subflow/internal/runner"
	"github.com/subworks/subflow/pkg/icron"
	"github.com/subworks/subflow/pkg/log"
)

// Service drives a batch from raw paths to queued translation jobs:
// expand, classify, resolve metadata, plan rewrites, enqueue.
type Service struct {
	mu  sync.RWMutex
	cfg config.Config

	metadata        MetadataProvider
	metadataFactory func(apiKey string) MetadataProvider
	cache           MetadataCache
	runner          TranslationRunner
	queue           *jobs.Queue
	cron            *cron.Cron

	lastTriggerMu   sync.Mutex
	lastTriggerTime time.Time

	sf singleflight.Group
}

type Option func(*Service)

// WithMetadataFactory installs a constructor for the metadata provider
// so a settings update carrying a new API key takes effect immediately.
func WithMetadataFactory(factory func(apiKey string) MetadataProvider) Option {
	return func(s *Service) {
		s.metadataFactory = factory
		if factory != nil {
			s.metadata = factory(s.cfg.Metadata.TMDBAPIKey)
		}
	}
}

func WithMetadataProvider(provider MetadataProvider) Option {
	return func(s *Service) {
		s.metadata = provider
	}
}

func WithMetadataCache(cache MetadataCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

func WithCron(c *cron.Cron) Option {
	return func(s *Service) {
		s.cron = c
	}
}

func NewService(cfg config.Config, run TranslationRunner, queue *jobs.Queue, opts ...Option) *Service {
	s := &Service{
		cfg:    cfg,
		runner: run,
		queue:  queue,
		cron:   cron.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns a snapshot of the effective configuration.
func (s *Service) Config() config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// ApplySettings overlays validated runtime settings onto the effective
// configuration and rebuilds the metadata provider when possible.
func (s *Service) ApplySettings(next config.RuntimeSettings) error {
	if err := next.Validate(); err != nil {
		return WrapError(err, ErrValidation, "invalid settings")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.cfg
	config.WithRuntimeSettings(next)(&cfg)
	s.cfg = cfg

	if s.metadataFactory != nil {
		s.metadata = s.metadataFactory(cfg.Metadata.TMDBAPIKey)
	}
	return nil
}

// TargetCode returns the effective output language code.
func (s *Service) TargetCode() string {
	cfg := s.Config()
	if cfg.Translate.LanguageCode != "" {
		return cfg.Translate.LanguageCode
	}
	return classify.CodeForLanguage(cfg.Translate.Language)
}

// Preview classifies and plans a batch without enqueueing anything.
func (s *Service) Preview(ctx context.Context, paths []string) (*BatchReport, error) {
	return s.processBatch(ctx, paths, "preview", false, "")
}

// PreviewAs previews with an explicit target code instead of the
// configured one.
func (s *Service) PreviewAs(ctx context.Context, paths []string, code string) (*BatchReport, error) {
	return s.processBatch(ctx, paths, "preview", false, code)
}

// Submit classifies a batch and enqueues one translation job per
// non-skipped planned file.
func (s *Service) Submit(ctx context.Context, paths []string, source string) (*BatchReport, error) {
	return s.processBatch(ctx, paths, source, true, "")
}

// SubmitAs submits with an explicit target code instead of the
// configured one.
func (s *Service) SubmitAs(ctx context.Context, paths []string, source, code string) (*BatchReport, error) {
	return s.processBatch(ctx, paths, source, true, code)
}

func (s *Service) processBatch(ctx context.Context, paths []string, source string, enqueue bool, code string) (*BatchReport, error) {
	expanded, inaccessible := classify.Expand(paths)
	for _, ia := range inaccessible {
		log.Warn("Skipping unreadable path %s: %v", ia.Path, ia.Err)
	}
	if len(expanded) == 0 {
		return &BatchReport{Source: source, Inaccessible: inaccessible}, nil
	}

	result := classify.Classify(expanded)
	report := &BatchReport{
		Source:       source,
		Ambiguous:    result.Ambiguous,
		Unrecognized: result.Unrecognized,
		Inaccessible: inaccessible,
	}
	for _, amb := range result.Ambiguous {
		log.Warn("Ambiguous grouping for %q: %v", amb.Title, amb.Paths)
	}
	for _, unrec := range result.Unrecognized {
		log.Warn("Skipping unrecognized file %s", unrec.Path)
	}

	cfg := s.Config()
	if code == "" {
		code = s.TargetCode()
	}

	reports := make([]GroupReport, len(result.Groups))
	g, gctx := errgroup.WithContext(ctx)
	limit := cfg.Metadata.Concurrency
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, group := range result.Groups {
		g.Go(func() error {
			reports[i] = s.buildGroupReport(gctx, cfg, group, code)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	report.Groups = reports

	if enqueue {
		s.enqueueReport(report, code)
	}
	return report, nil
}

func (s *Service) buildGroupReport(ctx context.Context, cfg config.Config, group classify.MediaGroup, code string) GroupReport {
	gr := GroupReport{
		Kind:   group.Kind,
		Title:  group.Title,
		Year:   group.Year,
		Season: group.Season,
	}

	if cfg.Metadata.AutoFetch && s.metadata != nil {
		meta, err := s.lookupMetadata(ctx, group)
		if err != nil {
			log.Warn("Metadata lookup failed for %q: %v", group.Title, err)
		} else {
			gr.Metadata = meta
		}
	}
	title := gr.Metadata.MatchedTitle
	if title == "" {
		title = group.Title
	}
	gr.Description = runner.BuildDescription(title, gr.Metadata.Overview, group.Kind == classify.KindSeries)

	for _, plan := range classify.PlanGroup(group, code) {
		pf := PlannedFile{
			InputPath:  plan.File.Path,
			OutputPath: plan.OutputPath,
			Changed:    plan.Changed,
		}
		switch {
		case plan.OutputPath == plan.File.Path:
			pf.Skipped = true
			pf.SkipReason = "already carries the target language code"
		case pathExists(plan.OutputPath):
			pf.Skipped = true
			pf.SkipReason = "output file already exists"
		}
		gr.Files = append(gr.Files, pf)
	}
	return gr
}

func (s *Service) enqueueReport(report *BatchReport, code string) {
	for gi := range report.Groups {
		gr := &report.Groups[gi]
		for fi := range gr.Files {
			pf := &gr.Files[fi]
			if pf.Skipped {
				continue
			}
			job, created := s.queue.Enqueue(jobs.EnqueueRequest{
				Source:    report.Source,
				DedupeKey: pf.OutputPath,
				Payload: jobs.JobPayload{
					InputPath:   pf.InputPath,
					OutputPath:  pf.OutputPath,
					TargetCode:  code,
					Title:       gr.Title,
					Year:        gr.Year,
					IsSeries:    gr.Kind == classify.KindSeries,
					Description: gr.Description,
				},
			})
			pf.JobID = job.ID
			if !created {
				pf.Skipped = true
				pf.SkipReason = "translation already queued"
				continue
			}
			report.Enqueued++
		}
	}
}

// Schedule registers the periodic catch-up rescan of the drop
// directories. Overlapping fires collapse into one run.
func (s *Service) Schedule(ctx context.Context) error {
	cfg := s.Config()
	if cfg.Intake.CronExpr == "" {
		log.Info("Catch-up rescan disabled: no cron expression")
		return nil
	}

	runFunc := func() {
		_, _, _ = s.sf.Do("rescan", func() (any, error) {
			s.rescan(ctx)
			return nil, nil
		})
	}
	if _, err := s.cron.AddFunc(cfg.Intake.CronExpr, runFunc); err != nil {
		return WrapError(err, ErrConfig, "invalid rescan schedule")
	}
	s.cron.Start()
	return nil
}

// StopSchedule stops the cron scheduler and waits for a running rescan.
func (s *Service) StopSchedule() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Service) rescan(ctx context.Context) {
	cfg := s.Config()

	since, err := s.scanWindowStart(cfg.Intake.CronExpr)
	if err != nil {
		log.Error("Failed to compute rescan window: %v", err)
		return
	}

	s.lastTriggerMu.Lock()
	s.lastTriggerTime = time.Now()
	s.lastTriggerMu.Unlock()

	paths := intake.CatchUpScan(cfg.Intake.DropDirs, since)
	if len(paths) == 0 {
		log.Debug("Rescan found no new subtitle files")
		return
	}

	log.Info("Rescan found %d subtitle file(s)", len(paths))
	if _, err := s.Submit(ctx, paths, "scan"); err != nil {
		log.Error("Rescan batch failed: %v", err)
	}
}

// scanWindowStart picks up where the previous trigger left off. On the
// first fire after startup the previous cron firing bounds the window,
// clamped to one week when the schedule is sparse.
func (s *Service) scanWindowStart(cronExpr string) (time.Time, error) {
	s.lastTriggerMu.Lock()
	last := s.lastTriggerTime
	s.lastTriggerMu.Unlock()

	if !last.IsZero() {
		return last, nil
	}

	info, err := icron.GetTriggerInfo(cronExpr, time.Now())
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get cron schedule: %w", err)
	}
	if info.Last.IsZero() || info.Last.Before(time.Now().Add(-24*7*time.Hour)) {
		return time.Now().Add(-24 * 7 * time.Hour), nil
	}
	return info.Last, nil
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
