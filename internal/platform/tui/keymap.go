package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-forage/internal/core"
)

// RepeatWindow is the longest gap between two presses of the same movement
// key that still counts as the key being held. Terminals report auto-repeat
// as a stream of presses and never report a release.
const RepeatWindow = 150 * time.Millisecond

// KeyMapper translates Bubble Tea key messages to task actions.
// It remembers the last movement key to tell auto-repeat from fresh taps.
type KeyMapper struct {
	lastMove   core.Action
	lastMoveAt time.Time
}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{}
}

// MapKey translates a key message to an action.
// Returns the action (may be ActionNone) and whether it's a quit request.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) (action core.Action, isQuit bool) {
	switch msg.String() {
	case "ctrl+c", "q":
		return core.ActionQuit, true
	case "w", "up":
		return core.ActionUp, false
	case "s", "down":
		return core.ActionDown, false
	case "a", "left":
		return core.ActionLeft, false
	case "d", "right":
		return core.ActionRight, false
	case " ":
		return core.ActionRelease, false
	case "enter":
		return core.ActionConfirm, false
	}
	return core.ActionNone, false
}

// MapKeyToFrame updates an input frame based on a key message received at
// now. Space also confirms, so a single key advances terminal screens.
// Returns true if the key was a quit request.
func (km *KeyMapper) MapKeyToFrame(msg tea.KeyMsg, frame *core.InputFrame, now time.Time) bool {
	action, isQuit := km.MapKey(msg)
	if isQuit {
		return true
	}
	switch {
	case action.IsMove():
		if action == km.lastMove && now.Sub(km.lastMoveAt) <= RepeatWindow {
			frame.Held = true
		}
		km.lastMove = action
		km.lastMoveAt = now
		frame.Set(action)
	case action == core.ActionRelease:
		frame.Set(core.ActionRelease)
		frame.Set(core.ActionConfirm)
	case action != core.ActionNone:
		frame.Set(action)
	}
	return false
}
