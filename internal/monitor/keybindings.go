package monitor

// Key bindings as constants for consistency. Input is read in raw mode, so
// each key arrives as a single byte.
const (
	KeyQuit       byte = 'q'
	KeyQuitAlt    byte = 0x03 // Ctrl+C
	KeySortCPU    byte = 'p'
	KeySortMemory byte = 'm'
	KeyCycleView  byte = 'r'
	KeyCommand    byte = 'c'
	KeyToggleHelp byte = 'h'
	KeyHelpAlt    byte = '?'
)

// KeyAction is what a key press asks the loop to do.
type KeyAction int

const (
	ActionNone KeyAction = iota
	ActionQuit
	ActionSortCPU
	ActionSortMemory
	ActionCycleView
	ActionCommand
	ActionToggleHelp
)

// ActionForKey maps a key byte to its action. Unbound keys give ActionNone.
func ActionForKey(key byte) KeyAction {
	switch key {
	case KeyQuit, KeyQuitAlt:
		return ActionQuit
	case KeySortCPU:
		return ActionSortCPU
	case KeySortMemory:
		return ActionSortMemory
	case KeyCycleView:
		return ActionCycleView
	case KeyCommand:
		return ActionCommand
	case KeyToggleHelp, KeyHelpAlt:
		return ActionToggleHelp
	default:
		return ActionNone
	}
}

// HelpBinding represents a single keyboard shortcut entry.
type HelpBinding struct {
	Key  string
	Desc string
}

// HelpBindings defines all keyboard shortcuts shown in the help overlay.
var HelpBindings = []HelpBinding{
	{Key: "q / Ctrl+C", Desc: "Quit"},
	{Key: "p", Desc: "Sort by CPU%"},
	{Key: "m", Desc: "Sort by MEM%"},
	{Key: "r", Desc: "Next host (local / remote)"},
	{Key: "c", Desc: "Enter a command (kill, pause, resume, restart)"},
	{Key: "h / ?", Desc: "Toggle this help"},
}
