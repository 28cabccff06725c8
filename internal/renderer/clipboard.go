package renderer

import (
	"bytes"
	"fmt"
	"os/exec"
	"runtime"
	"sync"
)

// Clipboard receives copied source text
type Clipboard interface {
	WriteText(text string) error
}

// SystemClipboard copies through the platform clipboard utility.
type SystemClipboard struct{}

// NewSystemClipboard creates the platform clipboard.
func NewSystemClipboard() *SystemClipboard {
	return &SystemClipboard{}
}

// Enabled reports whether the platform has a known clipboard utility.
func (c *SystemClipboard) Enabled() bool {
	switch runtime.GOOS {
	case "darwin", "linux":
		return true
	default:
		return false
	}
}

// WriteText copies text with pbcopy, xclip or wl-copy.
func (c *SystemClipboard) WriteText(text string) error {
	if !c.Enabled() {
		return fmt.Errorf("clipboard not supported on %s", runtime.GOOS)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("pbcopy")
	default:
		if _, err := exec.LookPath("xclip"); err == nil {
			cmd = exec.Command("xclip", "-selection", "clipboard")
		} else if _, err := exec.LookPath("wl-copy"); err == nil {
			cmd = exec.Command("wl-copy")
		} else {
			return fmt.Errorf("clipboard utilities not found")
		}
	}
	cmd.Stdin = bytes.NewBufferString(text)

	return cmd.Run()
}

// MemoryClipboard keeps the last copied text. The server uses it since the
// browser, not the server process, owns the user's clipboard.
type MemoryClipboard struct {
	mu   sync.Mutex
	text string
}

func (c *MemoryClipboard) WriteText(text string) error {
	c.mu.Lock()
	c.text = text
	c.mu.Unlock()
	return nil
}

// Text returns the last copied text.
func (c *MemoryClipboard) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

var (
	_ Clipboard = (*SystemClipboard)(nil)
	_ Clipboard = (*MemoryClipboard)(nil)
)
