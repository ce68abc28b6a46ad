/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package board

import (
	"slices"
)

// DefaultPenColor is used for strokes that do not name a colour.
const DefaultPenColor = "#ffffff"

// Change describes what a pointer action altered.
type Change int

const (
	Nothing Change = iota
	CornerCaptured
	Calibrated
	StoneAdded
	StoneRemoved
	MarkerAdded
	MarkerRemoved
	MarkAdded
	MarkRemoved
)

// Outcome reports the effect of a pointer action.
type Outcome struct {
	Change Change
	At     Intersection
	Color  Color
	Mark   MarkType
	Text   string
}

// Board holds the stones, markers, marks and strokes of a session.
type Board struct {
	session *Session

	stones  []Stone
	markers []Marker
	marks   []Mark
	strokes []Stroke
	drawing bool

	letters *Letters
}

func newBoard(s *Session) *Board {
	return &Board{
		session: s,
		letters: NewLetters(),
	}
}

// PlaceAt handles a pointer action on a calibrated board. The point is
// snapped to the nearest intersection, then the active tool decides whether
// a decoration is toggled or a stone or marker is placed or removed.
func (b *Board) PlaceAt(p Point, button Button, mods Modifiers) Outcome {
	at, ok := b.session.Grid.Nearest(p)
	if !ok {
		return Outcome{}
	}

	tool := b.session.Tool

	if mark, ok := tool.Mark(); ok {
		return b.ToggleDecoration(at, mark, "")
	}

	switch button {
	case Secondary:
		return b.toggleMarker(at)
	case Primary:
		if tool == ToolPen {
			return Outcome{}
		}

		return b.toggleStone(at, tool, mods)
	}

	return Outcome{}
}

func (b *Board) toggleMarker(at Intersection) Outcome {
	if b.RemoveMarker(at) {
		return Outcome{Change: MarkerRemoved, At: at}
	}

	b.SetMarker(at)

	return Outcome{Change: MarkerAdded, At: at}
}

func (b *Board) toggleStone(at Intersection, tool Tool, mods Modifiers) Outcome {
	if stone, ok := b.StoneAt(at); ok {
		b.RemoveStone(at)

		return Outcome{Change: StoneRemoved, At: at, Color: stone.Color}
	}

	color := b.session.Turn

	switch tool {
	case ToolBlack:
		color = Black
	case ToolWhite:
		color = White
	}

	b.SetStone(at, color)

	if tool == ToolAlternating && !mods.Shift {
		b.session.Turn = b.session.Turn.Opposite()
	}

	return Outcome{Change: StoneAdded, At: at, Color: color}
}

func (b *Board) stoneIndex(at Intersection) int {
	return slices.IndexFunc(b.stones, func(s Stone) bool {
		return s.At == at
	})
}

func (b *Board) markerIndex(at Intersection) int {
	return slices.IndexFunc(b.markers, func(m Marker) bool {
		return m.At == at
	})
}

func (b *Board) letterIndex(at Intersection) int {
	return slices.IndexFunc(b.marks, func(m Mark) bool {
		return m.Type == MarkLetter && m.At == at
	})
}

// StoneAt returns the stone on an intersection, if any.
func (b *Board) StoneAt(at Intersection) (Stone, bool) {
	i := b.stoneIndex(at)
	if i < 0 {
		return Stone{}, false
	}

	return b.stones[i], true
}

// HasMarker reports whether a marker sits on an intersection.
func (b *Board) HasMarker(at Intersection) bool {
	return b.markerIndex(at) >= 0
}

// SetStone places a stone of the given colour, removing any marker there.
// An existing stone keeps its move number and takes the new colour.
func (b *Board) SetStone(at Intersection, color Color) {
	if !at.Valid() {
		return
	}

	b.RemoveMarker(at)

	if i := b.stoneIndex(at); i >= 0 {
		b.stones[i].Color = color

		return
	}

	b.stones = append(b.stones, Stone{At: at, Color: color})
}

// RemoveStone deletes the stone on an intersection, reporting whether one
// was there.
func (b *Board) RemoveStone(at Intersection) bool {
	i := b.stoneIndex(at)
	if i < 0 {
		return false
	}

	b.stones = slices.Delete(b.stones, i, i+1)

	return true
}

// SetMarker places a marker, removing any stone there.
func (b *Board) SetMarker(at Intersection) {
	if !at.Valid() || b.HasMarker(at) {
		return
	}

	b.RemoveStone(at)

	b.markers = append(b.markers, Marker{At: at})
}

// RemoveMarker deletes the marker on an intersection, reporting whether one
// was there.
func (b *Board) RemoveMarker(at Intersection) bool {
	i := b.markerIndex(at)
	if i < 0 {
		return false
	}

	b.markers = slices.Delete(b.markers, i, i+1)

	return true
}

// ToggleDecoration places a decoration mark. A letter placed where a letter
// already sits removes it instead and returns its label to the queue. New
// letters take text as their label when it is free, otherwise the next
// label in order. Shapes always stack.
func (b *Board) ToggleDecoration(at Intersection, mark MarkType, text string) Outcome {
	if !at.Valid() || !mark.Valid() {
		return Outcome{}
	}

	if mark != MarkLetter {
		b.AddShape(at, mark)

		return Outcome{Change: MarkAdded, At: at, Mark: mark}
	}

	if removed, ok := b.RemoveLetter(at); ok {
		return Outcome{Change: MarkRemoved, At: at, Mark: MarkLetter, Text: removed}
	}

	label := b.AddLetter(at, text)

	return Outcome{Change: MarkAdded, At: at, Mark: MarkLetter, Text: label}
}

// AddLetter places a letter mark unless one is already on the intersection,
// and returns the label shown there.
func (b *Board) AddLetter(at Intersection, text string) string {
	if !at.Valid() {
		return ""
	}

	if i := b.letterIndex(at); i >= 0 {
		return b.marks[i].Text
	}

	label := text
	if label == "" || !b.letters.Take(label) {
		label = b.letters.Next()
	}

	b.marks = append(b.marks, Mark{Type: MarkLetter, At: at, Text: label})

	return label
}

// RemoveLetter deletes the letter mark on an intersection and returns its
// label to the queue.
func (b *Board) RemoveLetter(at Intersection) (string, bool) {
	i := b.letterIndex(at)
	if i < 0 {
		return "", false
	}

	label := b.marks[i].Text
	b.marks = slices.Delete(b.marks, i, i+1)
	b.letters.Return(label)

	return label, true
}

// AddShape stacks a triangle, circle or square on an intersection.
func (b *Board) AddShape(at Intersection, mark MarkType) {
	if !at.Valid() || !mark.Valid() || mark == MarkLetter {
		return
	}

	b.marks = append(b.marks, Mark{Type: mark, At: at})
}

// RemoveShape deletes the most recent shape of a type on an intersection.
func (b *Board) RemoveShape(at Intersection, mark MarkType) bool {
	for i := len(b.marks) - 1; i >= 0; i-- {
		if b.marks[i].Type == mark && b.marks[i].At == at {
			b.marks = slices.Delete(b.marks, i, i+1)

			return true
		}
	}

	return false
}

// BeginStroke starts a new pen stroke at p.
func (b *Board) BeginStroke(p Point, color string) {
	if color == "" {
		color = DefaultPenColor
	}

	b.strokes = append(b.strokes, Stroke{Color: color, Points: []Point{p}})
	b.drawing = true
}

// ExtendStroke appends points to the current stroke, starting one if no
// stroke is in progress.
func (b *Board) ExtendStroke(color string, points ...Point) {
	if len(points) == 0 {
		return
	}

	if !b.drawing {
		b.BeginStroke(points[0], color)
		points = points[1:]
	}

	last := &b.strokes[len(b.strokes)-1]
	last.Points = append(last.Points, points...)
}

// EndStroke finishes the current stroke.
func (b *Board) EndStroke() {
	b.drawing = false
}

// ClearDrawing removes decoration marks and pen strokes. Letter labels stay
// consumed until the next ClearStones.
func (b *Board) ClearDrawing() {
	b.marks = nil
	b.strokes = nil
	b.drawing = false
}

// ClearStones removes stones, markers, marks and strokes, and refills the
// letter queue.
func (b *Board) ClearStones() {
	b.stones = nil
	b.markers = nil
	b.ClearDrawing()
	b.letters.Reset()
}

// clear empties every collection except the letter queue.
func (b *Board) clear() {
	b.stones = nil
	b.markers = nil
	b.ClearDrawing()
}

func (b *Board) Stones() []Stone {
	return slices.Clone(b.stones)
}

func (b *Board) Markers() []Marker {
	return slices.Clone(b.markers)
}

func (b *Board) Marks() []Mark {
	return slices.Clone(b.marks)
}

func (b *Board) Strokes() []Stroke {
	strokes := make([]Stroke, len(b.strokes))
	for i, s := range b.strokes {
		strokes[i] = Stroke{Color: s.Color, Points: slices.Clone(s.Points)}
	}

	return strokes
}

// NextLetter returns the label the next letter mark would receive.
func (b *Board) NextLetter() string {
	return b.letters.Peek()
}
