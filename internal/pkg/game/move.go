package game

// Move is one of the three canonical lowercase tokens. Anything else is
// rejected at the wire boundary and never reaches the engine.
type Move string

const (
	Rock     Move = "rock"
	Paper    Move = "paper"
	Scissors Move = "scissors"
)

// Moves lists the canonical moves in the fixed rock, paper, scissors order
// used for weighted partitioning.
var Moves = []Move{Rock, Paper, Scissors}

func Valid(m Move) bool {
	return m == Rock || m == Paper || m == Scissors
}

// Beats reports whether a defeats b under the standard cycle.
func Beats(a, b Move) bool {
	switch a {
	case Rock:
		return b == Scissors
	case Paper:
		return b == Rock
	case Scissors:
		return b == Paper
	}

	return false
}

// Counter returns the move that defeats m.
func Counter(m Move) Move {
	switch m {
	case Rock:
		return Paper
	case Paper:
		return Scissors
	default:
		return Rock
	}
}
