package util

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/markusressel/fan2bmc/internal/ui"
)

// time granted to a killed process to release its output pipes
const waitDelay = 500 * time.Millisecond

var ErrCommandTimeout = errors.New("command timed out")

type CommandResult struct {
	ExitCode int    `json:"exitCode"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
}

// ExecuteCommand runs the given executable synchronously from within its own directory,
// without a console window, and waits at most timeout for it to finish.
// A non-zero exit code is not an error, it is returned as part of the result.
func ExecuteCommand(executable string, args []string, timeout time.Duration) (CommandResult, error) {
	result := CommandResult{ExitCode: -1}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	executable, dir, err := resolveExecutable(executable)
	if err != nil {
		return result, err
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, executable, args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	hideConsoleWindow(cmd)

	err = cmd.Run()
	result.Stdout = DecodeConsoleOutput(stdout.Bytes())
	result.Stderr = DecodeConsoleOutput(stderr.Bytes())

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		ui.Warning("Command timed out: %s", executable)
		return result, fmt.Errorf("%w after %s: %s", ErrCommandTimeout, timeout, executable)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	if err != nil {
		return result, err
	}

	result.ExitCode = cmd.ProcessState.ExitCode()
	return result, nil
}

// StartDetached launches the given executable in the background without waiting for it
func StartDetached(executable string, args ...string) error {
	executable, dir, err := resolveExecutable(executable)
	if err != nil {
		return err
	}
	cmd := exec.Command(executable, args...)
	cmd.Dir = dir
	hideConsoleWindow(cmd)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}

// resolveExecutable makes a path to an executable absolute and returns the directory it lives in.
// A bare name is looked up in PATH by exec and keeps the current working directory.
func resolveExecutable(executable string) (string, string, error) {
	if filepath.Base(executable) == executable {
		return executable, "", nil
	}
	abs, err := filepath.Abs(executable)
	if err != nil {
		return executable, "", fmt.Errorf("cannot resolve path of %s: %w", executable, err)
	}
	return abs, filepath.Dir(abs), nil
}
