// Package automation issues the mouse and keyboard events that act on a
// detection result: opening the editor from its icon, typing content, and
// saving it. It is thin hardware glue around robotgo with fixed pacing
// delays; there is nothing to unit test here without a desktop session.
package automation

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-vgo/robotgo"
)

// Pacing between synthetic input events. Desktop shells drop events that
// arrive faster than a human could produce them.
const (
	actionDelay  = 300 * time.Millisecond
	typeInterval = 20 * time.Millisecond
	windowWait   = 2 * time.Second
)

// ShowDesktop minimizes all windows so the icons are visible for capture.
func ShowDesktop() {
	robotgo.KeyTap("d", "cmd")
	pause(500 * time.Millisecond)
}

// OpenIconAt moves to the icon center and double-clicks it, then waits for
// the launched window to appear.
func OpenIconAt(x, y int) {
	robotgo.MoveSmooth(x, y)
	pause(actionDelay)
	robotgo.Click("left", true)
	pause(windowWait)
}

// TypeText types the given text into the focused window, line by line with
// a fixed per-keystroke interval. Newlines are sent as Enter so the editor
// applies its own line handling.
func TypeText(text string) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			robotgo.TypeStr(line)
			pause(typeInterval)
		}
		if i < len(lines)-1 {
			robotgo.KeyTap("enter")
		}
	}
	pause(actionDelay)
}

// SaveAs opens the save dialog (Ctrl+S), types the full target path, and
// confirms. The caller is responsible for picking a path that does not
// collide with an existing file.
func SaveAs(path string) {
	robotgo.KeyTap("s", "ctrl")
	pause(windowWait)
	robotgo.TypeStr(path)
	pause(actionDelay)
	robotgo.KeyTap("enter")
	pause(windowWait)
}

// CloseEditor closes the focused editor window (Ctrl+W, which current
// Notepad builds map to close-tab/close-window).
func CloseEditor() {
	robotgo.KeyTap("w", "ctrl")
	pause(windowWait)
}

// DedupPath appends a unix timestamp to the file stem when the target
// already exists, mirroring how the save dialog would otherwise stall on an
// overwrite prompt.
func DedupPath(path string, exists func(string) bool) string {
	if !exists(path) {
		return path
	}
	dot := strings.LastIndex(path, ".")
	if dot < 0 {
		return fmt.Sprintf("%s_%d", path, time.Now().Unix())
	}
	return fmt.Sprintf("%s_%d%s", path[:dot], time.Now().Unix(), path[dot:])
}

func pause(d time.Duration) {
	robotgo.MilliSleep(int(d / time.Millisecond))
}
