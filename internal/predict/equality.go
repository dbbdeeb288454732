package predict

import "github.com/tianzhicdev/tetris-battle-sub004/internal/sim"

// Equivalent compares the gameplay-significant subset of two snapshots:
// active piece identity/position/rotation (or both absent), score, stars,
// lines cleared, and the game-over flag. Volatile fields (timestamps, timed
// effect bookkeeping) and derived fields (combo, board cells) are excluded
// so equality reflects meaningful divergence rather than metadata drift.
func Equivalent(a, b sim.GameState) bool {
	if a.GameOver != b.GameOver {
		return false
	}
	if a.Score != b.Score || a.Stars != b.Stars || a.Lines != b.Lines {
		return false
	}
	if (a.Active == nil) != (b.Active == nil) {
		return false
	}
	if a.Active != nil {
		if a.Active.Kind != b.Active.Kind {
			return false
		}
		if a.Active.X != b.Active.X || a.Active.Y != b.Active.Y {
			return false
		}
		if a.Active.Rotation != b.Active.Rotation {
			return false
		}
	}
	return true
}
