package board

// InvalidArgumentError signals a programming error: a caller passed an
// out-of-domain argument (bad depth, bad corner index, ...).
type InvalidArgumentError struct {
	Msg string
}

func (e *InvalidArgumentError) Error() string { return "invalid argument: " + e.Msg }

// InvalidStateError signals an operation attempted against a state that
// cannot support it (e.g. applying a move to a terminal GameState).
type InvalidStateError struct {
	Msg string
}

func (e *InvalidStateError) Error() string { return "invalid state: " + e.Msg }

// InvalidMoveError signals an attempt to place on an occupied or blocked cell.
type InvalidMoveError struct {
	Cell int
}

func (e *InvalidMoveError) Error() string {
	return "invalid move: cell is occupied or blocked"
}
