// Package slicer drives the external slicing engine: it admits at most one
// job at a time, provisions an isolated workspace, invokes the engine with
// a bounded timeout, and recovers the produced machine instructions.
package slicer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/printforge/slicerd/pkg/profile"
)

const (
	// DefaultTimeout is the fixed wall-clock bound for one engine run.
	// It is a deployment constant, not adjustable per request.
	DefaultTimeout = 300 * time.Second

	// stdoutHeaderLimit bounds the success-path stdout excerpt.
	stdoutHeaderLimit = 500

	// diagnosticLimit bounds the per-stream excerpts attached to engine
	// failures.
	diagnosticLimit = 2000
)

// modelExtensions are the recognized 3D-model filename extensions.
var modelExtensions = map[string]bool{
	".stl": true,
	".3mf": true,
}

// Config configures an Orchestrator.
type Config struct {
	// EngineBin is the path to the slicing engine executable.
	EngineBin string

	// WorkDir is the parent directory for per-job workspaces.
	WorkDir string

	// Store resolves referenced profile names to on-disk paths.
	Store *profile.Store

	// Timeout bounds one engine run. Defaults to DefaultTimeout.
	Timeout time.Duration

	// Logger receives job diagnostics. Defaults to a no-op logger.
	Logger *zap.Logger
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.EngineBin) == "" {
		return fmt.Errorf("engine binary path is required")
	}
	if strings.TrimSpace(c.WorkDir) == "" {
		return fmt.Errorf("work dir is required")
	}
	if c.Store == nil {
		return fmt.Errorf("profile store is required")
	}
	return nil
}

// Orchestrator owns the single execution slot and the lifecycle of the
// job holding it.
type Orchestrator struct {
	cfg    Config
	logger *zap.Logger

	// slot is the execution slot. It is acquired with TryLock only and is
	// held from admission through cleanup.
	slot sync.Mutex

	// mu guards job for status reads against job-lifecycle writes. Status
	// queries never touch the slot.
	mu  sync.Mutex
	job Job
}

// New returns an orchestrator for the given configuration.
func New(cfg Config) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{cfg: cfg, logger: logger}, nil
}

// Status reports whether a job is active and, if so, its model filename
// and start time. Purely observational.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	job := o.job
	o.mu.Unlock()
	if job.State == "" || job.State == JobStateIdle {
		return Status{Busy: false}
	}
	return Status{Busy: true, Model: job.Model, Started: job.Started}
}

func (o *Orchestrator) setJob(job Job) {
	o.mu.Lock()
	o.job = job
	o.mu.Unlock()
}

func (o *Orchestrator) setState(state JobState) {
	o.mu.Lock()
	o.job.State = state
	o.mu.Unlock()
}

// Submit runs one slice job to completion.
//
// Preconditions are checked before any side effects: the model filename
// must carry a recognized extension and all three referenced profiles
// must exist. Admission is non-blocking; a held slot fails immediately
// with ErrBusy. Whatever the outcome, the workspace is removed, the job
// record is cleared, and the slot is released before Submit returns.
func (o *Orchestrator) Submit(ctx context.Context, req Request) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(req.ModelName))
	if !modelExtensions[ext] {
		return nil, ErrUnsupportedModel
	}

	var missing []string
	for _, ref := range []struct {
		cat  profile.Category
		name string
	}{
		{profile.CategoryPrinter, req.Printer},
		{profile.CategoryProcess, req.Process},
		{profile.CategoryFilament, req.Filament},
	} {
		if !o.cfg.Store.Exists(ref.cat, ref.name) {
			missing = append(missing, string(ref.cat)+"/"+ref.name)
		}
	}
	if len(missing) > 0 {
		return nil, &NotFoundError{Missing: missing}
	}

	if !o.slot.TryLock() {
		return nil, ErrBusy
	}

	jobID := uuid.New().String()
	started := time.Now()
	workspace := filepath.Join(o.cfg.WorkDir, jobID)

	o.setJob(Job{ID: jobID, Model: req.ModelName, Started: started, State: JobStateAdmitted})
	o.logger.Info("Slice job admitted",
		zap.String("job_id", jobID),
		zap.String("model", req.ModelName))

	defer func() {
		// Cleanup runs exactly once per submitted job. Workspace removal
		// is best effort and must never block releasing the slot.
		if err := os.RemoveAll(workspace); err != nil {
			o.logger.Warn("Workspace cleanup failed",
				zap.String("job_id", jobID),
				zap.Error(err))
		}
		o.setJob(Job{State: JobStateIdle})
		o.slot.Unlock()
	}()

	outputDir := filepath.Join(workspace, "output")
	modelPath := filepath.Join(workspace, filepath.Base(req.ModelName))
	if err := o.provision(outputDir, modelPath, req.Model); err != nil {
		o.setState(JobStateFailed)
		return nil, err
	}
	o.setState(JobStateProvisioned)

	args := buildArgs(
		o.cfg.Store.Path(profile.CategoryPrinter, req.Printer),
		o.cfg.Store.Path(profile.CategoryProcess, req.Process),
		o.cfg.Store.Path(profile.CategoryFilament, req.Filament),
		outputDir,
		modelPath,
		req,
	)

	runCtx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, o.cfg.EngineBin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// The engine binary is a launcher that spawns its own children. Run it
	// in its own process group and kill the whole group on timeout, so
	// descendants cannot outlive the bound or hold the output pipes open.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	// Grace period after the kill signal so Wait always returns and no
	// zombie is left behind.
	cmd.WaitDelay = 10 * time.Second

	o.setState(JobStateRunning)
	o.logger.Debug("Invoking slicing engine",
		zap.String("job_id", jobID),
		zap.Strings("args", args))

	runErr := cmd.Run()
	if runCtx.Err() == context.DeadlineExceeded {
		o.setState(JobStateTimedOut)
		o.logger.Warn("Slice job timed out",
			zap.String("job_id", jobID),
			zap.Duration("bound", o.cfg.Timeout))
		return nil, &TimeoutError{Bound: o.cfg.Timeout}
	}

	// Exit status alone is not trusted: the engine is known to exit zero
	// on some failures and nonzero on some successes. The presence of a
	// GCODE artifact is the success signal.
	gcodePath, ok := findGCode(outputDir)
	if !ok {
		o.setState(JobStateFailed)
		o.logger.Warn("Slice job produced no output",
			zap.String("job_id", jobID),
			zap.Int("exit_code", exitCode(cmd, runErr)),
			zap.Error(runErr))
		return nil, &EngineError{
			ExitCode: exitCode(cmd, runErr),
			Stdout:   truncate(stdout.String(), diagnosticLimit),
			Stderr:   truncate(stderr.String(), diagnosticLimit),
		}
	}

	gcode, err := os.ReadFile(gcodePath)
	if err != nil {
		o.setState(JobStateFailed)
		return nil, fmt.Errorf("read gcode output: %w", err)
	}

	elapsed := time.Since(started)
	o.setState(JobStateSucceeded)
	o.logger.Info("Slice job succeeded",
		zap.String("job_id", jobID),
		zap.String("gcode", filepath.Base(gcodePath)),
		zap.Duration("elapsed", elapsed))

	return &Result{
		GCodeName:     filepath.Base(gcodePath),
		GCode:         gcode,
		Elapsed:       elapsed,
		StdoutExcerpt: flatten(truncate(stdout.String(), stdoutHeaderLimit)),
	}, nil
}

// provision creates the workspace tree and persists the model bytes.
func (o *Orchestrator) provision(outputDir, modelPath string, model []byte) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}
	if err := os.WriteFile(modelPath, model, 0644); err != nil {
		return fmt.Errorf("write model file: %w", err)
	}
	return nil
}

// findGCode returns the first .gcode file in directory-listing order.
func findGCode(outputDir string) (string, bool) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(e.Name()), ".gcode") {
			return filepath.Join(outputDir, e.Name()), true
		}
	}
	return "", false
}

func exitCode(cmd *exec.Cmd, runErr error) int {
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	var ee *exec.ExitError
	if errors.As(runErr, &ee) {
		return ee.ExitCode()
	}
	return -1
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := s[:n]
	for len(cut) > 0 {
		r, size := utf8.DecodeLastRuneInString(cut)
		if r != utf8.RuneError || size > 1 {
			break
		}
		cut = cut[:len(cut)-1]
	}
	return cut
}

// flatten makes the excerpt safe for an HTTP header value: newlines and
// tabs become spaces, other control characters are dropped.
func flatten(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
}
