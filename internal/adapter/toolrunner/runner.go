package toolrunner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"

	"github.com/semmidev/custos/internal/domain"
)

const (
	defaultDumpPath    = "pg_dump"
	defaultRestorePath = "pg_restore"
)

// Runner spawns the external dump and restore tools. Credentials go
// through the child's environment (PGPASSWORD), never through argv.
type Runner struct {
	dumpPath    string
	restorePath string
}

func New(dumpPath, restorePath string) *Runner {
	if dumpPath == "" {
		dumpPath = defaultDumpPath
	}
	if restorePath == "" {
		restorePath = defaultRestorePath
	}
	return &Runner{dumpPath: dumpPath, restorePath: restorePath}
}

// StartDump launches the dump tool for the given connection and returns
// a running process whose stdout carries the archive stream.
func (r *Runner) StartDump(ctx context.Context, conn domain.DatabaseConnection) (*Process, error) {
	if conn.Engine != domain.EnginePostgreSQL {
		return nil, fmt.Errorf("dump %s: %w", conn.Engine, domain.ErrUnsupportedEngine)
	}

	cmd := exec.CommandContext(ctx, r.dumpPath,
		"--host", conn.Host,
		"--port", strconv.Itoa(conn.Port),
		"--username", conn.Username,
		"--no-password",
		"--format=c",
		"--large-objects",
		"--verbose",
		"--schema", "public",
		conn.DatabaseName,
	)
	cmd.Env = append(os.Environ(), "PGPASSWORD="+conn.Password)

	return start(cmd, r.dumpPath, withStdout)
}

// StartRestore launches the restore tool against the target database.
// The caller streams the archive into the returned process's stdin.
func (r *Runner) StartRestore(ctx context.Context, target domain.RestoreTarget) (*Process, error) {
	cmd := exec.CommandContext(ctx, r.restorePath,
		"--host", target.Host,
		"--port", strconv.Itoa(target.Port),
		"--username", target.Username,
		"--dbname", target.DatabaseName,
		"--no-password",
		"--verbose",
	)
	cmd.Env = append(os.Environ(), "PGPASSWORD="+target.Password)

	return start(cmd, r.restorePath, withStdin)
}

type pipeMode int

const (
	withStdout pipeMode = iota
	withStdin
)

func start(cmd *exec.Cmd, tool string, mode pipeMode) (*Process, error) {
	p := &Process{cmd: cmd, tool: tool}
	cmd.Stderr = &p.stderr

	var err error
	switch mode {
	case withStdout:
		p.stdout, err = cmd.StdoutPipe()
	case withStdin:
		p.stdin, err = cmd.StdinPipe()
	}
	if err != nil {
		return nil, fmt.Errorf("pipe %s: %w", tool, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("launch %s: %v: %w", tool, err, domain.ErrToolUnavailable)
	}
	return p, nil
}

// Process is one running external tool. Stderr is captured up to a cap
// so a verbose tool cannot grow the diagnostic buffer without bound.
type Process struct {
	cmd    *exec.Cmd
	tool   string
	stdout io.ReadCloser
	stdin  io.WriteCloser
	stderr cappedBuffer
}

// Stdout is the tool's output stream. Only set for dump processes.
func (p *Process) Stdout() io.ReadCloser { return p.stdout }

// Stdin is the tool's input stream. Only set for restore processes.
func (p *Process) Stdin() io.WriteCloser { return p.stdin }

// Wait blocks until the process exits. A nonzero exit is reported as a
// *domain.ToolError carrying the captured stderr text.
func (p *Process) Wait() error {
	err := p.cmd.Wait()
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &domain.ToolError{
			Tool:     p.tool,
			ExitCode: exitErr.ExitCode(),
			Stderr:   p.stderr.String(),
		}
	}
	return fmt.Errorf("wait %s: %w", p.tool, err)
}

// Kill terminates the process. Wait must still be called afterwards.
func (p *Process) Kill() {
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
}

// Stderr returns the diagnostic text captured so far.
func (p *Process) Stderr() string { return p.stderr.String() }
