package sim

// Action enumerates the player input vocabulary.
type Action string

const (
	ActionMoveLeft  Action = "move_left"
	ActionMoveRight Action = "move_right"
	ActionRotateCW  Action = "rotate_cw"
	ActionRotateCCW Action = "rotate_ccw"
	ActionSoftDrop  Action = "soft_drop"
	ActionHardDrop  Action = "hard_drop"
)

// Valid reports whether the action belongs to the input vocabulary.
func (a Action) Valid() bool {
	switch a {
	case ActionMoveLeft, ActionMoveRight, ActionRotateCW, ActionRotateCCW, ActionSoftDrop, ActionHardDrop:
		return true
	default:
		return false
	}
}
