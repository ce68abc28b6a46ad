/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package board

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Action names a command on the wire.
type Action string

const (
	ActionSetGrid      Action = "set-grid"
	ActionPlaceStone   Action = "place-stone"
	ActionBoardStone   Action = "board-stone"
	ActionAddMark      Action = "add-mark"
	ActionClearDrawing Action = "clear-drawing"
	ActionClearAll     Action = "clear-all"
	ActionResetBoard   Action = "reset-board"
	ActionSetTool      Action = "set-tool"
	ActionSwitchColor  Action = "switch-color"
	ActionToggleGrid   Action = "toggle-grid"
	ActionDrawTool     Action = "draw-tool"
	ActionDrawBatch    Action = "draw-batch"
	ActionCursorMove   Action = "cursor-move"
	ActionClick        Action = "click"
)

// Command is one of the closed set of operations a session accepts. Each
// encodes as a JSON object whose "action" field names the variant.
type Command interface {
	Action() Action

	validate() error
	apply(s *Session) []Command
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrMalformedCommand}, args...)...)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// MarshalJSON encodes a point as [x, y].
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

func (p *Point) UnmarshalJSON(data []byte) error {
	var xy []float64
	if err := json.Unmarshal(data, &xy); err != nil {
		return malformed("point: %v", err)
	}

	if len(xy) != 2 || !finite(xy[0]) || !finite(xy[1]) {
		return malformed("point must be [x, y], got %s", data)
	}

	p.X, p.Y = xy[0], xy[1]

	return nil
}

// Target addresses an intersection either directly or by a canvas point
// that is snapped to the grid when the command is applied.
type Target struct {
	At    *Intersection `json:"at,omitempty"`
	Point *Point        `json:"point,omitempty"`
}

// On targets an intersection.
func On(in Intersection) Target {
	return Target{At: &in}
}

// Near targets the intersection closest to a canvas point.
func Near(p Point) Target {
	return Target{Point: &p}
}

func (t Target) check() error {
	switch {
	case t.At != nil && t.Point != nil:
		return malformed("target has both at and point")
	case t.At != nil:
		if !t.At.Valid() {
			return malformed("intersection %d,%d is off the board", t.At.Row, t.At.Col)
		}
	case t.Point == nil:
		return malformed("target needs at or point")
	}

	return nil
}

// resolve reports false until the grid is calibrated, whichever way the
// target is addressed.
func (t Target) resolve(g *Grid) (Intersection, bool) {
	if !g.IsSet() {
		return Intersection{}, false
	}

	if t.At != nil {
		return *t.At, true
	}

	return g.Nearest(*t.Point)
}

// SetGrid calibrates the grid from four corners.
type SetGrid struct {
	Points []Point `json:"points"`
}

func (SetGrid) Action() Action { return ActionSetGrid }

func (c SetGrid) validate() error {
	if len(c.Points) != 4 {
		return malformed("set-grid needs 4 points, got %d", len(c.Points))
	}

	return nil
}

func (c SetGrid) apply(s *Session) []Command {
	s.Grid.Calibrate([4]Point(c.Points))

	corners, _ := s.Grid.Corners()

	return []Command{SetGrid{Points: corners[:]}}
}

// PlaceStone puts a stone of a colour on an intersection, or removes the
// stone there.
type PlaceStone struct {
	Target
	Color  Color `json:"color"`
	Remove bool  `json:"remove,omitempty"`
}

func (PlaceStone) Action() Action { return ActionPlaceStone }

func (c PlaceStone) validate() error {
	return c.Target.check()
}

func (c PlaceStone) apply(s *Session) []Command {
	in, ok := c.resolve(s.Grid)
	if !ok {
		return nil
	}

	if c.Remove {
		s.Board.RemoveStone(in)
	} else {
		s.Board.SetStone(in, c.Color)
	}

	return []Command{PlaceStone{Target: On(in), Color: c.Color, Remove: c.Remove}}
}

// BoardStone puts a board marker on an intersection, or removes it.
type BoardStone struct {
	Target
	Remove bool `json:"remove,omitempty"`
}

func (BoardStone) Action() Action { return ActionBoardStone }

func (c BoardStone) validate() error {
	return c.Target.check()
}

func (c BoardStone) apply(s *Session) []Command {
	in, ok := c.resolve(s.Grid)
	if !ok {
		return nil
	}

	if c.Remove {
		s.Board.RemoveMarker(in)
	} else {
		s.Board.SetMarker(in)
	}

	return []Command{BoardStone{Target: On(in), Remove: c.Remove}}
}

// AddMark places a decoration, or removes one. Letters without text take
// the next free label.
type AddMark struct {
	Type MarkType `json:"type"`
	Target
	Text   string `json:"text,omitempty"`
	Remove bool   `json:"remove,omitempty"`
}

func (AddMark) Action() Action { return ActionAddMark }

func (c AddMark) validate() error {
	if !c.Type.Valid() {
		return malformed("unknown mark type %q", c.Type)
	}

	if c.Type != MarkLetter && c.Text != "" {
		return malformed("only letter marks carry text")
	}

	return c.Target.check()
}

func (c AddMark) apply(s *Session) []Command {
	in, ok := c.resolve(s.Grid)
	if !ok {
		return nil
	}

	out := AddMark{Type: c.Type, Target: On(in), Remove: c.Remove}

	switch {
	case c.Type == MarkLetter && c.Remove:
		label, ok := s.Board.RemoveLetter(in)
		if !ok {
			return nil
		}
		out.Text = label
	case c.Type == MarkLetter:
		out.Text = s.Board.AddLetter(in, c.Text)
	case c.Remove:
		if !s.Board.RemoveShape(in, c.Type) {
			return nil
		}
	default:
		s.Board.AddShape(in, c.Type)
	}

	return []Command{out}
}

// ClearDrawing removes decoration marks and pen strokes.
type ClearDrawing struct{}

func (ClearDrawing) Action() Action { return ActionClearDrawing }

func (ClearDrawing) validate() error { return nil }

func (c ClearDrawing) apply(s *Session) []Command {
	s.Board.ClearDrawing()

	return []Command{c}
}

// ClearAll removes everything placed on the board and refills the letters.
type ClearAll struct{}

func (ClearAll) Action() Action { return ActionClearAll }

func (ClearAll) validate() error { return nil }

func (c ClearAll) apply(s *Session) []Command {
	s.Board.ClearStones()

	return []Command{c}
}

// ResetBoard discards calibration and everything placed on the board.
type ResetBoard struct{}

func (ResetBoard) Action() Action { return ActionResetBoard }

func (ResetBoard) validate() error { return nil }

func (c ResetBoard) apply(s *Session) []Command {
	s.ResetGrid()

	return []Command{c}
}

// SetTool changes the active placement mode.
type SetTool struct {
	Tool Tool `json:"tool"`
}

func (SetTool) Action() Action { return ActionSetTool }

func (c SetTool) validate() error {
	if !c.Tool.Valid() {
		return malformed("unknown tool %q", c.Tool)
	}

	return nil
}

func (c SetTool) apply(s *Session) []Command {
	s.Tool = c.Tool

	return []Command{c}
}

// SwitchColor sets the colour to play next under the alternating tool.
type SwitchColor struct {
	Color Color `json:"color"`
}

func (SwitchColor) Action() Action { return ActionSwitchColor }

func (c SwitchColor) validate() error {
	if c.Color != Black && c.Color != White {
		return malformed("unknown color %d", int(c.Color))
	}

	return nil
}

func (c SwitchColor) apply(s *Session) []Command {
	s.Turn = c.Color

	return []Command{c}
}

// ToggleGrid shows or hides the lattice points.
type ToggleGrid struct {
	Visible bool `json:"visible"`
}

func (ToggleGrid) Action() Action { return ActionToggleGrid }

func (ToggleGrid) validate() error { return nil }

func (c ToggleGrid) apply(s *Session) []Command {
	s.ShowGrid = c.Visible

	return []Command{c}
}

// StrokePhase is the step of a pen stroke a DrawTool command carries.
type StrokePhase string

const (
	StrokeStart StrokePhase = "start"
	StrokeDraw  StrokePhase = "draw"
	StrokeEnd   StrokePhase = "end"
)

// DrawTool carries a single pen point.
type DrawTool struct {
	Phase StrokePhase `json:"phase"`
	Point *Point      `json:"point,omitempty"`
	Color string      `json:"color,omitempty"`
}

func (DrawTool) Action() Action { return ActionDrawTool }

func (c DrawTool) validate() error {
	switch c.Phase {
	case StrokeStart, StrokeDraw:
		if c.Point == nil {
			return malformed("%s needs a point", c.Phase)
		}
	case StrokeEnd:
	default:
		return malformed("unknown stroke phase %q", c.Phase)
	}

	return nil
}

func (c DrawTool) apply(s *Session) []Command {
	switch c.Phase {
	case StrokeStart:
		s.Board.BeginStroke(*c.Point, c.Color)
	case StrokeDraw:
		s.Board.ExtendStroke(c.Color, *c.Point)
	case StrokeEnd:
		s.Board.EndStroke()
	}

	return []Command{c}
}

// DrawBatch carries several pen points of the current stroke at once.
type DrawBatch struct {
	Points []Point `json:"points"`
	Color  string  `json:"color,omitempty"`
}

func (DrawBatch) Action() Action { return ActionDrawBatch }

func (c DrawBatch) validate() error {
	if len(c.Points) == 0 {
		return malformed("draw-batch needs at least one point")
	}

	return nil
}

func (c DrawBatch) apply(s *Session) []Command {
	s.Board.ExtendStroke(c.Color, c.Points...)

	return []Command{c}
}

// CursorMove mirrors the commentator's pointer. A nil point hides it.
type CursorMove struct {
	Point *Point `json:"point,omitempty"`
}

func (CursorMove) Action() Action { return ActionCursorMove }

func (CursorMove) validate() error { return nil }

func (c CursorMove) apply(s *Session) []Command {
	if c.Point == nil {
		s.Cursor = nil
	} else {
		p := *c.Point
		s.Cursor = &p
	}

	return []Command{c}
}

// Click is a raw pointer action on the canvas. It captures calibration
// corners until the grid is set, then places stones, markers and marks.
type Click struct {
	Point  *Point `json:"point"`
	Button Button `json:"button"`
	Shift  bool   `json:"shift,omitempty"`
}

func (Click) Action() Action { return ActionClick }

func (c Click) validate() error {
	if c.Point == nil {
		return malformed("click needs a point")
	}

	if c.Button != Primary && c.Button != Secondary {
		return malformed("unknown button %q", c.Button)
	}

	return nil
}

func (c Click) apply(s *Session) []Command {
	turn := s.Turn

	o := s.Click(*c.Point, c.Button, Modifiers{Shift: c.Shift})

	var out []Command

	switch o.Change {
	case Calibrated:
		corners, _ := s.Grid.Corners()
		out = append(out, SetGrid{Points: corners[:]})
	case StoneAdded, StoneRemoved:
		out = append(out, PlaceStone{Target: On(o.At), Color: o.Color, Remove: o.Change == StoneRemoved})
	case MarkerAdded, MarkerRemoved:
		out = append(out, BoardStone{Target: On(o.At), Remove: o.Change == MarkerRemoved})
	case MarkAdded, MarkRemoved:
		out = append(out, AddMark{Type: o.Mark, Target: On(o.At), Text: o.Text, Remove: o.Change == MarkRemoved})
	}

	if s.Turn != turn {
		out = append(out, SwitchColor{Color: s.Turn})
	}

	return out
}

type decoder func(body []byte) (Command, error)

var decoders = map[Action]decoder{
	ActionSetGrid:      decodeAs[SetGrid],
	ActionPlaceStone:   decodeAs[PlaceStone],
	ActionBoardStone:   decodeAs[BoardStone],
	ActionAddMark:      decodeAs[AddMark],
	ActionClearDrawing: decodeAs[ClearDrawing],
	ActionClearAll:     decodeAs[ClearAll],
	ActionResetBoard:   decodeAs[ResetBoard],
	ActionSetTool:      decodeAs[SetTool],
	ActionSwitchColor:  decodeAs[SwitchColor],
	ActionToggleGrid:   decodeAs[ToggleGrid],
	ActionDrawTool:     decodeAs[DrawTool],
	ActionDrawBatch:    decodeAs[DrawBatch],
	ActionCursorMove:   decodeAs[CursorMove],
	ActionClick:        decodeAs[Click],
}

func decodeAs[T Command](body []byte) (Command, error) {
	var c T

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()

	if err := dec.Decode(&c); err != nil {
		return nil, malformed("%v", err)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// DecodeCommand parses one command object. Fields the named variant does
// not define are rejected, apart from an optional sender timestamp.
func DecodeCommand(data []byte) (Command, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, malformed("%v", err)
	}

	rawAction, ok := fields["action"]
	if !ok {
		return nil, malformed("missing action")
	}

	var action Action
	if err := json.Unmarshal(rawAction, &action); err != nil {
		return nil, malformed("action: %v", err)
	}

	decode, ok := decoders[action]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	delete(fields, "action")
	delete(fields, "timestamp")

	body, err := json.Marshal(fields)
	if err != nil {
		return nil, malformed("%v", err)
	}

	return decode(body)
}

// EncodeCommand renders a command as a JSON object tagged with its action.
func EncodeCommand(c Command) (json.RawMessage, error) {
	body, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}

	action, err := json.Marshal(c.Action())
	if err != nil {
		return nil, err
	}
	fields["action"] = action

	return json.Marshal(fields)
}
