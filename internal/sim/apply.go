package sim

type cell struct {
	x int
	y int
}

// pieceShapes lists occupied cells per kind and rotation state, relative to
// the piece origin. Rotation states follow the standard guideline order.
var pieceShapes = map[PieceKind][4][]cell{
	PieceI: {
		{{0, 1}, {1, 1}, {2, 1}, {3, 1}},
		{{2, 0}, {2, 1}, {2, 2}, {2, 3}},
		{{0, 2}, {1, 2}, {2, 2}, {3, 2}},
		{{1, 0}, {1, 1}, {1, 2}, {1, 3}},
	},
	PieceO: {
		{{1, 0}, {2, 0}, {1, 1}, {2, 1}},
		{{1, 0}, {2, 0}, {1, 1}, {2, 1}},
		{{1, 0}, {2, 0}, {1, 1}, {2, 1}},
		{{1, 0}, {2, 0}, {1, 1}, {2, 1}},
	},
	PieceT: {
		{{1, 0}, {0, 1}, {1, 1}, {2, 1}},
		{{1, 0}, {1, 1}, {2, 1}, {1, 2}},
		{{0, 1}, {1, 1}, {2, 1}, {1, 2}},
		{{1, 0}, {0, 1}, {1, 1}, {1, 2}},
	},
	PieceS: {
		{{1, 0}, {2, 0}, {0, 1}, {1, 1}},
		{{1, 0}, {1, 1}, {2, 1}, {2, 2}},
		{{1, 1}, {2, 1}, {0, 2}, {1, 2}},
		{{0, 0}, {0, 1}, {1, 1}, {1, 2}},
	},
	PieceZ: {
		{{0, 0}, {1, 0}, {1, 1}, {2, 1}},
		{{2, 0}, {1, 1}, {2, 1}, {1, 2}},
		{{0, 1}, {1, 1}, {1, 2}, {2, 2}},
		{{1, 0}, {0, 1}, {1, 1}, {0, 2}},
	},
	PieceJ: {
		{{0, 0}, {0, 1}, {1, 1}, {2, 1}},
		{{1, 0}, {2, 0}, {1, 1}, {1, 2}},
		{{0, 1}, {1, 1}, {2, 1}, {2, 2}},
		{{1, 0}, {1, 1}, {0, 2}, {1, 2}},
	},
	PieceL: {
		{{2, 0}, {0, 1}, {1, 1}, {2, 1}},
		{{1, 0}, {1, 1}, {1, 2}, {2, 2}},
		{{0, 1}, {1, 1}, {2, 1}, {0, 2}},
		{{0, 0}, {1, 0}, {1, 1}, {1, 2}},
	},
}

var pieceColors = map[PieceKind]int{
	PieceI: 1,
	PieceO: 2,
	PieceT: 3,
	PieceS: 4,
	PieceZ: 5,
	PieceJ: 6,
	PieceL: 7,
}

// lineScores indexes score awarded by the number of rows cleared at once.
var lineScores = [5]int{0, 100, 300, 500, 800}

const comboBonus = 50

// rotationKicks lists the horizontal nudges tried when a rotation collides.
var rotationKicks = []int{0, -1, 1}

// Apply is the deterministic transition function: it applies a single input
// to a state and returns the resulting state, or ok=false when the input is
// illegal against that state. It never mutates its argument.
func Apply(state GameState, action Action) (GameState, bool) {
	if state.GameOver || state.Active == nil {
		return GameState{}, false
	}

	next := state.Clone()
	piece := *next.Active

	switch action {
	case ActionMoveLeft:
		piece.X--
		if collides(next.Board, piece) {
			return GameState{}, false
		}
		next.Active = &piece
	case ActionMoveRight:
		piece.X++
		if collides(next.Board, piece) {
			return GameState{}, false
		}
		next.Active = &piece
	case ActionRotateCW:
		rotated, ok := rotate(next.Board, piece, 1)
		if !ok {
			return GameState{}, false
		}
		next.Active = &rotated
	case ActionRotateCCW:
		rotated, ok := rotate(next.Board, piece, 3)
		if !ok {
			return GameState{}, false
		}
		next.Active = &rotated
	case ActionSoftDrop:
		piece.Y++
		if collides(next.Board, piece) {
			piece.Y--
			lockPiece(&next, piece)
		} else {
			next.Active = &piece
		}
	case ActionHardDrop:
		for !collides(next.Board, piece) {
			piece.Y++
		}
		piece.Y--
		lockPiece(&next, piece)
	default:
		return GameState{}, false
	}

	return next, true
}

func rotate(board [][]int, piece ActivePiece, quarterTurns int) (ActivePiece, bool) {
	rotated := piece
	rotated.Rotation = (piece.Rotation + quarterTurns) % 4
	for _, kick := range rotationKicks {
		candidate := rotated
		candidate.X += kick
		if !collides(board, candidate) {
			return candidate, true
		}
	}
	return ActivePiece{}, false
}

func collides(board [][]int, piece ActivePiece) bool {
	for _, c := range pieceCells(piece) {
		if c.x < 0 || c.x >= BoardWidth || c.y >= BoardHeight {
			return true
		}
		if c.y >= 0 && board[c.y][c.x] != 0 {
			return true
		}
	}
	return false
}

func pieceCells(piece ActivePiece) []cell {
	shape := pieceShapes[piece.Kind][((piece.Rotation%4)+4)%4]
	cells := make([]cell, len(shape))
	for i, c := range shape {
		cells[i] = cell{x: piece.X + c.x, y: piece.Y + c.y}
	}
	return cells
}

// lockPiece merges the piece into the board, clears full rows, applies
// scoring, and leaves the state piece-less. The next piece is assigned by
// the server and arrives with the next authoritative snapshot.
func lockPiece(state *GameState, piece ActivePiece) {
	color := pieceColors[piece.Kind]
	for _, c := range pieceCells(piece) {
		if c.y >= 0 && c.y < BoardHeight && c.x >= 0 && c.x < BoardWidth {
			state.Board[c.y][c.x] = color
		}
	}

	cleared := clearLines(state.Board)
	if cleared > 0 {
		state.Combo++
		state.Score += lineScores[cleared] + comboBonus*(state.Combo-1)
		state.Lines += cleared
		state.Stars += cleared
		if cleared == 4 {
			state.Stars++
		}
	} else {
		state.Combo = 0
	}
	state.Active = nil

	for x := 0; x < BoardWidth; x++ {
		if state.Board[0][x] != 0 {
			state.GameOver = true
			break
		}
	}
}

func clearLines(board [][]int) int {
	cleared := 0
	for y := BoardHeight - 1; y >= 0; y-- {
		full := true
		for x := 0; x < BoardWidth; x++ {
			if board[y][x] == 0 {
				full = false
				break
			}
		}
		if !full {
			continue
		}
		cleared++
		for row := y; row > 0; row-- {
			copy(board[row], board[row-1])
		}
		for x := 0; x < BoardWidth; x++ {
			board[0][x] = 0
		}
		y++
	}
	return cleared
}
