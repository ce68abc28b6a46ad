/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package board

// Session is the shared context of one overlay: the calibrated grid, the
// board, and the active tool and turn. It is not safe for concurrent use;
// callers serialise access.
type Session struct {
	Tool     Tool
	Turn     Color
	ShowGrid bool
	Cursor   *Point

	Grid  *Grid
	Board *Board
}

func NewSession() *Session {
	s := &Session{
		Tool:     ToolAlternating,
		Turn:     Black,
		ShowGrid: true,
		Grid:     NewGrid(),
	}
	s.Board = newBoard(s)

	return s
}

// Click handles a raw pointer action. Until the grid is calibrated each
// click captures a corner; afterwards it is passed to Board.PlaceAt.
func (s *Session) Click(p Point, button Button, mods Modifiers) Outcome {
	if s.Grid.IsSet() {
		return s.Board.PlaceAt(p, button, mods)
	}

	if s.Grid.AddCalibrationPoint(p) {
		return Outcome{Change: Calibrated}
	}

	return Outcome{Change: CornerCaptured}
}

// ResetGrid discards calibration and everything placed on the board. The
// letter queue is left as is.
func (s *Session) ResetGrid() {
	s.Grid.Reset()
	s.Board.clear()
}

// Apply runs a command against the session and returns the commands a
// remote session must replay to reach the same state. Targets given as raw
// points are resolved to intersections and toggles are made explicit, so
// the returned commands are safe to apply more than once.
func (s *Session) Apply(c Command) ([]Command, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	return c.apply(s), nil
}
