package sim

// Board dimensions shared with the server.
const (
	BoardWidth  = 10
	BoardHeight = 20
)

// PieceKind identifies one of the seven falling pieces.
type PieceKind string

const (
	PieceI PieceKind = "I"
	PieceO PieceKind = "O"
	PieceT PieceKind = "T"
	PieceS PieceKind = "S"
	PieceZ PieceKind = "Z"
	PieceJ PieceKind = "J"
	PieceL PieceKind = "L"
)

// EffectKind identifies a timed battle effect granted by ability cards.
type EffectKind string

const (
	EffectSpeedUp  EffectKind = "speed_up"
	EffectSlowDown EffectKind = "slow_down"
	EffectShield   EffectKind = "shield"
)

// ActiveEffect is a timed effect currently applied to the player.
type ActiveEffect struct {
	Kind      EffectKind `json:"kind"`
	ExpiresAt int64      `json:"expiresAt"`
}

// ActivePiece captures the falling piece's identity and placement.
type ActivePiece struct {
	Kind     PieceKind `json:"kind"`
	X        int       `json:"x"`
	Y        int       `json:"y"`
	Rotation int       `json:"rotation"`
}

// GameState is the canonical snapshot shape shared by client and server.
// UpdatedAt is volatile metadata and carries no gameplay meaning.
type GameState struct {
	Board     [][]int        `json:"board"`
	Active    *ActivePiece   `json:"active,omitempty"`
	Score     int            `json:"score"`
	Stars     int            `json:"stars"`
	Lines     int            `json:"lines"`
	Combo     int            `json:"combo"`
	GameOver  bool           `json:"gameOver"`
	Effects   []ActiveEffect `json:"effects,omitempty"`
	UpdatedAt int64          `json:"updatedAt,omitempty"`
}

// NewGameState returns an empty board with no active piece.
func NewGameState() GameState {
	board := make([][]int, BoardHeight)
	for y := range board {
		board[y] = make([]int, BoardWidth)
	}
	return GameState{Board: board}
}

// NewActivePiece spawns a piece of the given kind at the top-center column.
func NewActivePiece(kind PieceKind) *ActivePiece {
	return &ActivePiece{Kind: kind, X: 3, Y: 0}
}

// Clone returns an independent value snapshot. Predicted and server copies
// are never aliased, so every hand-off goes through a clone.
func (s GameState) Clone() GameState {
	cloned := s
	if s.Board != nil {
		cloned.Board = make([][]int, len(s.Board))
		for y, row := range s.Board {
			cloned.Board[y] = append([]int(nil), row...)
		}
	}
	if s.Active != nil {
		piece := *s.Active
		cloned.Active = &piece
	}
	if s.Effects != nil {
		cloned.Effects = append([]ActiveEffect(nil), s.Effects...)
	}
	return cloned
}
