package entities

// Signal is a best-effort environment event reported by the client while a
// session is running. The guard layer decides whether to suppress the event,
// terminate the session, or ignore it.
type Signal string

const (
	SignalTabHidden        Signal = "visibility-hidden"
	SignalContextMenu      Signal = "context-menu"
	SignalZoomShortcut     Signal = "zoom-shortcut"
	SignalDevtoolsShortcut Signal = "devtools-shortcut"
)

// ParseSignal maps a wire string onto a known signal.
func ParseSignal(s string) (Signal, bool) {
	switch Signal(s) {
	case SignalTabHidden, SignalContextMenu, SignalZoomShortcut, SignalDevtoolsShortcut:
		return Signal(s), true
	}
	return "", false
}
