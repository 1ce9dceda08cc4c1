package service

import (
	"context"
	"strings"

	"github.com/subworks/subflow/internal/jobs"
	"github.com/subworks/subflow/internal/runner"
	"github.com/subworks/subflow/internal/subtitle"
	"github.com/subworks/subflow/pkg/log"
)

// ExecuteJob is the queue executor: it runs the gst CLI for one job and
// optionally prepends the translator credit cue to the output.
func (s *Service) ExecuteJob(ctx context.Context, job *jobs.TranslationJob) error {
	cfg := s.Config()

	if cfg.Translate.GeminiAPIKey == "" {
		return NewError(ErrConfig, "gemini api key is not configured")
	}

	language := cfg.Translate.Language
	if language == "" {
		language = job.Payload.TargetCode
	}

	req := runner.Request{
		OutputFile:   job.Payload.OutputPath,
		Language:     language,
		APIKey:       cfg.Translate.GeminiAPIKey,
		Model:        cfg.Translate.Model,
		Description:  job.Payload.Description,
		ExtractAudio: cfg.Translate.ExtractAudio,
	}
	if isVideoPath(job.Payload.InputPath) {
		req.VideoFile = job.Payload.InputPath
	} else {
		req.SubtitleFile = job.Payload.InputPath
	}

	log.Info("Job %s: translating %s -> %s", job.ID, job.Payload.InputPath, job.Payload.OutputPath)
	err := s.runner.Run(ctx, req, func(line string) {
		log.Debug("Job %s: %s", job.ID, line)
	})
	if err != nil {
		return WrapError(err, ErrTranslation, "translation run failed")
	}

	if cfg.Translate.AddTranslatorInfo && strings.HasSuffix(strings.ToLower(job.Payload.OutputPath), ".srt") {
		credit := subtitle.TranslatorCredit(cfg.Translate.Model)
		if err := subtitle.AddTranslatorCredit(job.Payload.OutputPath, credit); err != nil {
			// the translation itself succeeded, keep the output
			log.Warn("Job %s: failed to add translator credit: %v", job.ID, err)
		}
	}

	log.Info("Job %s: done", job.ID)
	return nil
}

var videoExts = []string{".mkv", ".mp4", ".avi", ".mov", ".webm", ".m4v", ".ts", ".wmv", ".flv", ".mpg", ".mpeg"}

func isVideoPath(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range videoExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
