package ui

import (
	"github.com/gen2brain/beeep"
)

var notificationsEnabled = true

func SetNotificationsEnabled(enabled bool) {
	notificationsEnabled = enabled
}

func NotifyWarn(title, text string) {
	notify(title, text)
}

func NotifyError(title, text string) {
	if !notificationsEnabled {
		return
	}
	if err := beeep.Alert(title, text, ""); err != nil {
		Warning("Cannot send notification: %v", err)
	}
}

func notify(title, text string) {
	if !notificationsEnabled {
		return
	}
	if err := beeep.Notify(title, text, ""); err != nil {
		Warning("Cannot send notification: %v", err)
	}
}
