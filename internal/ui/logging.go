package ui

import (
	"io"
	"os"

	"github.com/pterm/pterm"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logFile *lumberjack.Logger

func SetDebugEnabled(enabled bool) {
	pterm.PrintDebugMessages = enabled
}

// SetLogFile mirrors all output into a size rotated log file.
// An empty path disables the file sink again.
func SetLogFile(path string, maxSizeMb int, maxBackups int, maxAgeDays int) {
	CloseLogFile()
	if len(path) <= 0 {
		pterm.SetDefaultOutput(os.Stdout)
		return
	}

	logFile = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMb,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
	}
	pterm.SetDefaultOutput(io.MultiWriter(os.Stdout, logFile))
}

func CloseLogFile() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

func Printf(format string, a ...interface{}) {
	pterm.Printf(format, a...)
}

func Printfln(format string, a ...interface{}) {
	pterm.Printfln(format, a...)
}

func Debug(format string, a ...interface{}) {
	pterm.Debug.Printfln(format, a...)
}

func Info(format string, a ...interface{}) {
	pterm.Info.Printfln(format, a...)
}

func Success(format string, a ...interface{}) {
	pterm.Success.Printfln(format, a...)
}

func Warning(format string, a ...interface{}) {
	pterm.Warning.Printfln(format, a...)
}

func Error(format string, a ...interface{}) {
	pterm.Error.Printfln(format, a...)
}

func ErrorAndNotify(title, format string, a ...interface{}) {
	text := pterm.Sprintf(format, a...)
	Error("%s: %s", title, text)
	NotifyError(title, text)
}

func Fatal(format string, a ...interface{}) {
	CloseLogFile()
	pterm.Fatal.Printfln(format, a...)
}
