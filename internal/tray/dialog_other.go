//go:build !windows

package tray

import (
	"fmt"
	"os"
)

// ShowInfo prints the message; there is no dialog off Windows.
func ShowInfo(caption, text string) {
	fmt.Fprintf(os.Stdout, "%s: %s\n", caption, text)
}

// ShowError prints the message to stderr.
func ShowError(caption, text string) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", caption, text)
}
