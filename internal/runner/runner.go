package runner

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"syscall"
	"time"

	"github.com/subworks/subflow/pkg/log"
)

// ansiEscape matches terminal escape sequences; gst colors its progress
// output and the stripped lines are what we log and stream.
var ansiEscape = regexp.MustCompile(`\x1b(?:[@-Z\-_]|\[[0-?]*[ -/]*[@-~])`)

// Runner executes the external gst translation CLI.
type Runner struct {
	gstCmd string
}

// Request describes one translation invocation.
type Request struct {
	SubtitleFile string
	VideoFile    string
	OutputFile   string
	Language     string
	APIKey       string
	Model        string
	Description  string
	ExtractAudio bool
}

// New locates the gst executable on PATH or in the working directory.
func New() (*Runner, error) {
	if path, err := exec.LookPath("gst"); err == nil {
		return &Runner{gstCmd: path}, nil
	}

	for _, candidate := range []string{"gst", "gst.exe"} {
		local := filepath.Join(".", candidate)
		if _, err := os.Stat(local); err == nil {
			abs, err := filepath.Abs(local)
			if err != nil {
				return nil, err
			}
			return &Runner{gstCmd: abs}, nil
		}
	}

	return nil, fmt.Errorf("gst executable not found in PATH or working directory")
}

// NewWithCommand builds a runner around an explicit executable path.
func NewWithCommand(cmd string) *Runner {
	return &Runner{gstCmd: cmd}
}

func (r *Runner) Command() string {
	return r.gstCmd
}

// BuildArgs assembles the gst translate argument list for a request.
func (r *Runner) BuildArgs(req Request) []string {
	args := []string{"translate"}

	if req.SubtitleFile != "" {
		args = append(args, "-i", req.SubtitleFile)
	}
	if req.OutputFile != "" {
		args = append(args, "-o", req.OutputFile)
	}
	if req.Language != "" {
		args = append(args, "-l", req.Language)
	}
	if req.APIKey != "" {
		args = append(args, "-k", req.APIKey)
	}
	if req.Model != "" {
		args = append(args, "--model", req.Model)

		// Gemini 2.0 models need a larger batch to stay responsive.
		if strings.Contains(req.Model, "2.0") {
			args = append(args, "--batch-size", "100")
		}
	}
	if req.Description != "" {
		args = append(args, "--description", req.Description)
	}
	if req.VideoFile != "" {
		args = append(args, "-v", req.VideoFile)
		if req.ExtractAudio {
			args = append(args, "--extract-audio")
		}
	}

	return args
}

// Run executes gst translate, streaming each output line (ANSI codes
// stripped) to onLine. Cancelling ctx sends SIGTERM and force-kills
// after a grace period.
func (r *Runner) Run(ctx context.Context, req Request, onLine func(string)) error {
	return r.run(ctx, r.BuildArgs(req), req.APIKey, onLine)
}

func (r *Runner) run(ctx context.Context, args []string, apiKey string, onLine func(string)) error {
	log.Info("Executing: %s %s", r.gstCmd, strings.Join(redactKey(args, apiKey), " "))

	cmd := exec.CommandContext(ctx, r.gstCmd, args...)
	cmd.Env = append(os.Environ(), "PYTHONIOENCODING=utf-8", "PYTHONUTF8=1")
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = 3 * time.Second

	pr, pw, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("failed to create output pipe: %w", err)
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return fmt.Errorf("failed to start gst: %w", err)
	}
	pw.Close()

	scanner := bufio.NewScanner(pr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := StripANSI(strings.TrimRight(scanner.Text(), "\r"))
		if line == "" {
			continue
		}
		if onLine != nil {
			onLine(line)
		}
	}
	pr.Close()

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("gst translate failed: %w", err)
	}
	return nil
}

// StripANSI removes terminal escape sequences from a line.
func StripANSI(line string) string {
	return ansiEscape.ReplaceAllString(line, "")
}

func redactKey(args []string, apiKey string) []string {
	if apiKey == "" {
		return args
	}
	redacted := make([]string, len(args))
	for i, arg := range args {
		if arg == apiKey {
			redacted[i] = "***"
		} else {
			redacted[i] = arg
		}
	}
	return redacted
}
