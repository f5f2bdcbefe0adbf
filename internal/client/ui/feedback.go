package ui

import (
	"io"

	"github.com/atotto/clipboard"
)

// clipboardWriteAll is a package-level variable to allow mocking in tests.
var clipboardWriteAll = clipboard.WriteAll

// Haptics gives tactile feedback where the platform has it
type Haptics interface {
	Impact()
}

// NoHaptics is used where there is nothing to vibrate
type NoHaptics struct{}

// Impact does nothing
func (NoHaptics) Impact() {}

// Bell rings the terminal bell, the closest a terminal gets to a tap
type Bell struct {
	W io.Writer
}

// Impact writes BEL
func (b Bell) Impact() {
	_, _ = io.WriteString(b.W, "\a")
}
