//go:build windows

package tray

import (
	"golang.org/x/sys/windows"
)

const (
	mbIconError       = 0x10
	mbIconInformation = 0x40
	mbSetForeground   = 0x10000
)

func messageBox(caption, text string, style uint32) {
	c, err := windows.UTF16PtrFromString(caption)
	if err != nil {
		return
	}
	t, err := windows.UTF16PtrFromString(text)
	if err != nil {
		return
	}
	windows.MessageBox(0, t, c, style|mbSetForeground)
}

// ShowInfo shows an information dialog and blocks until it is dismissed.
func ShowInfo(caption, text string) {
	messageBox(caption, text, mbIconInformation)
}

// ShowError shows an error dialog and blocks until it is dismissed.
func ShowError(caption, text string) {
	messageBox(caption, text, mbIconError)
}
