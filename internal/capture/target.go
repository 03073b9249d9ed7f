package capture

import "fmt"

// Target selects what Source captures: the full screen or one window.
// The zero value is FullScreen.
type Target struct {
	window bool
	handle uint64
}

// FullScreen targets the whole display.
func FullScreen() Target {
	return Target{}
}

// Window targets the window identified by a platform handle.
func Window(handle uint64) Target {
	return Target{window: true, handle: handle}
}

// Handle returns the window handle and whether the target is a window.
func (t Target) Handle() (uint64, bool) {
	return t.handle, t.window
}

// IsFullScreen reports whether the target is the full screen.
func (t Target) IsFullScreen() bool {
	return !t.window
}

func (t Target) String() string {
	if !t.window {
		return "full screen"
	}
	return fmt.Sprintf("window %d", t.handle)
}

// degrade is the only transition between targets. It is one way.
func (t *Target) degrade() {
	*t = FullScreen()
}
