//go:build !windows

package util

import "os/exec"

func hideConsoleWindow(_ *exec.Cmd) {
}

func consoleCodePage() uint32 {
	return codePageUtf8
}
