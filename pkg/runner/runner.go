package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultMaxCodeBytes   = 10_000
	DefaultMaxOutputBytes = 1 << 20
	DefaultTimeout        = 10 * time.Second
	NoOutputMessage       = "> Program executed (no output)"
)

var (
	ErrInvalidCode = errors.New("invalid code")
	ErrBlockedCode = errors.New("unsafe operations not allowed")
	ErrTimeout     = errors.New("execution timed out")
)

// DefaultBlocked lists substrings that make a submission unrunnable.
var DefaultBlocked = []string{
	"System.IO.Unsafe",
	"unsafePerformIO",
	"subprocess",
	"os.system",
	"shutil.rmtree",
}

type Config struct {
	Interpreter    string
	Timeout        time.Duration
	MaxCodeBytes   int
	MaxOutputBytes int
	Blocked        []string
	TempDir        string
}

type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Output is what a learner sees: stdout, else stderr, else a fixed notice.
func (r Result) Output() string {
	if r.Stdout != "" {
		return r.Stdout
	}
	if r.Stderr != "" {
		return r.Stderr
	}
	return NoOutputMessage
}

// Runner executes untrusted Python snippets in a child process.
type Runner struct {
	cfg Config
}

func New(cfg Config) *Runner {
	if cfg.Interpreter == "" {
		cfg.Interpreter = "python3"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxCodeBytes <= 0 {
		cfg.MaxCodeBytes = DefaultMaxCodeBytes
	}
	if cfg.MaxOutputBytes <= 0 {
		cfg.MaxOutputBytes = DefaultMaxOutputBytes
	}
	if cfg.Blocked == nil {
		cfg.Blocked = DefaultBlocked
	}
	return &Runner{cfg: cfg}
}

// Validate rejects empty, oversized or blocked submissions.
func (r *Runner) Validate(code string) error {
	if strings.TrimSpace(code) == "" || len(code) > r.cfg.MaxCodeBytes {
		return fmt.Errorf("%w: must be non-empty and under %d bytes", ErrInvalidCode, r.cfg.MaxCodeBytes)
	}
	for _, pattern := range r.cfg.Blocked {
		if strings.Contains(code, pattern) {
			return fmt.Errorf("%w: %s", ErrBlockedCode, pattern)
		}
	}
	return nil
}

func (r *Runner) Run(ctx context.Context, code, input string) (*Result, error) {
	if err := r.Validate(code); err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp(r.cfg.TempDir, "haskify-run-*")
	if err != nil {
		return nil, fmt.Errorf("create run dir: %w", err)
	}
	defer os.RemoveAll(dir)

	script := filepath.Join(dir, "main.py")
	if err := os.WriteFile(script, []byte(code), 0o600); err != nil {
		return nil, fmt.Errorf("write script: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	stdout := &cappedBuffer{limit: r.cfg.MaxOutputBytes}
	stderr := &cappedBuffer{limit: r.cfg.MaxOutputBytes}

	cmd := exec.CommandContext(runCtx, r.cfg.Interpreter, script)
	cmd.Dir = dir
	cmd.Stdin = strings.NewReader(input)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = time.Second

	start := time.Now()
	err = cmd.Run()
	res := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if runCtx.Err() == context.DeadlineExceeded {
		return res, ErrTimeout
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return nil, fmt.Errorf("run %s: %w", r.cfg.Interpreter, err)
	}
	return res, nil
}

// cappedBuffer keeps the first limit bytes and discards the rest without
// failing the writer.
type cappedBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if room := b.limit - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *cappedBuffer) String() string { return b.buf.String() }
