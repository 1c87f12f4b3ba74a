package util

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// ExecutableDir returns the directory containing the running binary.
// Bundled resources (actuation tool, monitoring service) are looked up relative to it.
func ExecutableDir() string {
	executable, err := os.Executable()
	if err != nil {
		return "."
	}
	resolved, err := filepath.EvalSymlinks(executable)
	if err == nil {
		executable = resolved
	}
	return filepath.Dir(executable)
}

// CheckFileExists returns an error if the given path does not exist or is a directory
func CheckFileExists(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("file not found: %s", path)
	}
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory: %s", path)
	}
	return nil
}

// WriteFileAtomic replaces the file at path with data, creating parent directories if necessary
func WriteFileAtomic(path string, data []byte) error {
	parentDir := filepath.Dir(path)
	if err := os.MkdirAll(parentDir, 0755); err != nil {
		return err
	}
	return atomic.WriteFile(path, bytes.NewReader(data))
}
