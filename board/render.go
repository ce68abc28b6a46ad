/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package board

import (
	"math"
	"slices"
)

const (
	// DefaultStoneSize is the neutral stone size preference.
	DefaultStoneSize = 125

	// LetterFontSize is the pixel size letter marks are drawn at.
	LetterFontSize = 24

	stoneBase    = 100
	sizeMargin   = 2
	imagePadding = 1.25
)

var markBase = map[MarkType]float64{
	MarkTriangle: 20,
	MarkCircle:   15,
	MarkSquare:   20,
}

var markGrowth = map[MarkType]float64{
	MarkCircle: 1.5,
	MarkSquare: 1.5,
}

// StoneDiameter sizes a stone to the local grid spacing less a small
// margin, so stones further from the camera shrink with the grid. A stone
// size preference other than DefaultStoneSize scales the result.
func StoneDiameter(g *Grid, at Intersection, stoneSize int) float64 {
	if !g.IsSet() {
		return stoneBase
	}

	d := g.Spacing(at, stoneBase) - sizeMargin

	if stoneSize > 0 && stoneSize != DefaultStoneSize {
		d *= float64(stoneSize) / DefaultStoneSize
	}

	return math.Round(d)
}

// MarkSize sizes a shape mark the same way stones are sized, relative to a
// stone of base 100. Letters use LetterFontSize.
func MarkSize(g *Grid, at Intersection, mark MarkType) float64 {
	base, ok := markBase[mark]
	if !ok {
		return LetterFontSize
	}

	size := base
	if g.IsSet() {
		size = math.Round((g.Spacing(at, base) - sizeMargin) * (base / stoneBase))
	}

	if growth, ok := markGrowth[mark]; ok {
		size *= growth
	}

	return size
}

type StoneView struct {
	At       Intersection `json:"at"`
	Label    string       `json:"label"`
	Position Point        `json:"position"`
	Color    Color        `json:"color"`
	Number   int          `json:"number"`
	Size     float64      `json:"size"`
}

type MarkerView struct {
	At       Intersection `json:"at"`
	Position Point        `json:"position"`
	Size     float64      `json:"size"`
}

type MarkView struct {
	Type     MarkType     `json:"type"`
	At       Intersection `json:"at"`
	Position Point        `json:"position"`
	Text     string       `json:"text,omitempty"`
	Size     float64      `json:"size"`
}

// Snapshot is everything a renderer needs to draw one frame.
type Snapshot struct {
	Calibrated  bool         `json:"calibrated"`
	Corners     []Point      `json:"corners"`
	Calibration string       `json:"calibration,omitempty"`
	ShowGrid    bool         `json:"show_grid"`
	Lattice     *Lattice     `json:"lattice,omitempty"`
	Stones      []StoneView  `json:"stones"`
	Markers     []MarkerView `json:"markers"`
	Marks       []MarkView   `json:"marks"`
	Strokes     []Stroke     `json:"strokes"`
	Tool        Tool         `json:"tool"`
	Turn        Color        `json:"turn"`
	NextLetter  string       `json:"next_letter"`
	Cursor      *Point       `json:"cursor,omitempty"`
}

// Snapshot captures the session for rendering. Stones are drawn at the
// given size preference; pass DefaultStoneSize for none.
func (s *Session) Snapshot(stoneSize int) Snapshot {
	g, b := s.Grid, s.Board

	snap := Snapshot{
		Calibrated:  g.IsSet(),
		Corners:     slices.Clone(g.points),
		Calibration: g.Calibration(),
		ShowGrid:    s.ShowGrid,
		Stones:      make([]StoneView, 0, len(b.stones)),
		Markers:     make([]MarkerView, 0, len(b.markers)),
		Marks:       make([]MarkView, 0, len(b.marks)),
		Strokes:     b.Strokes(),
		Tool:        s.Tool,
		Turn:        s.Turn,
		NextLetter:  b.NextLetter(),
	}

	if snap.Corners == nil {
		snap.Corners = []Point{}
	}

	if l, ok := g.Lattice(); ok {
		snap.Lattice = &l
	}

	if s.Cursor != nil {
		p := *s.Cursor
		snap.Cursor = &p
	}

	for i, st := range b.stones {
		pos, _ := g.Position(st.At)
		snap.Stones = append(snap.Stones, StoneView{
			At:       st.At,
			Label:    st.At.String(),
			Position: pos,
			Color:    st.Color,
			Number:   i + 1,
			Size:     StoneDiameter(g, st.At, stoneSize) * imagePadding,
		})
	}

	for _, m := range b.markers {
		pos, _ := g.Position(m.At)
		snap.Markers = append(snap.Markers, MarkerView{
			At:       m.At,
			Position: pos,
			Size:     StoneDiameter(g, m.At, stoneSize),
		})
	}

	for _, m := range b.marks {
		pos, _ := g.Position(m.At)
		snap.Marks = append(snap.Marks, MarkView{
			Type:     m.Type,
			At:       m.At,
			Position: pos,
			Text:     m.Text,
			Size:     MarkSize(g, m.At, m.Type),
		})
	}

	return snap
}
