package board_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/stonecast/board"
)

func TestStoneDiameterUniformOnSquare(t *testing.T) {
	g := board.NewGrid()
	g.Calibrate(square)

	for i := 1; i < board.Size-1; i++ {
		for j := 1; j < board.Size-1; j++ {
			d := board.StoneDiameter(g, board.Intersection{Row: i, Col: j}, board.DefaultStoneSize)
			require.InDelta(t, 98, d, 1)
		}
	}
}

func TestStoneDiameterBeforeCalibration(t *testing.T) {
	assert.Equal(t, 100.0, board.StoneDiameter(board.NewGrid(), board.Intersection{}, board.DefaultStoneSize))
}

func TestStoneDiameterScalesWithPreference(t *testing.T) {
	g := board.NewGrid()
	g.Calibrate(square)
	at := board.Intersection{Row: 9, Col: 9}

	base := board.StoneDiameter(g, at, board.DefaultStoneSize)
	double := board.StoneDiameter(g, at, 2*board.DefaultStoneSize)

	assert.InDelta(t, 2*base, double, 1)
	assert.Equal(t, base, board.StoneDiameter(g, at, 0), "no preference means neutral")
}

func TestMarkSize(t *testing.T) {
	g := board.NewGrid()

	assert.Equal(t, 20.0, board.MarkSize(g, board.Intersection{}, board.MarkTriangle))
	assert.Equal(t, 22.5, board.MarkSize(g, board.Intersection{}, board.MarkCircle))
	assert.Equal(t, 30.0, board.MarkSize(g, board.Intersection{}, board.MarkSquare))
	assert.Equal(t, float64(board.LetterFontSize), board.MarkSize(g, board.Intersection{}, board.MarkLetter))

	g.Calibrate(square)
	at := board.Intersection{Row: 9, Col: 9}
	spacing := g.Spacing(at, 0)

	assert.InDelta(t, (spacing-2)*0.2, board.MarkSize(g, at, board.MarkTriangle), 0.5)
	assert.InDelta(t, (spacing-2)*0.15*1.5, board.MarkSize(g, at, board.MarkCircle), 0.75)
}

func TestSnapshot(t *testing.T) {
	s := board.NewSession()

	snap := s.Snapshot(board.DefaultStoneSize)
	assert.False(t, snap.Calibrated)
	assert.Nil(t, snap.Lattice)
	assert.Empty(t, snap.Corners)

	s.Click(board.Point{X: 10, Y: 10}, board.Primary, board.Modifiers{})
	assert.Len(t, s.Snapshot(board.DefaultStoneSize).Corners, 1, "pending corners are shown")

	s.ResetGrid()
	s.Grid.Calibrate(square)
	s.Board.SetStone(board.Intersection{Row: 3, Col: 3}, board.Black)
	s.Board.SetStone(board.Intersection{Row: 15, Col: 15}, board.White)
	s.Board.SetMarker(board.Intersection{Row: 9, Col: 9})
	s.Board.AddLetter(board.Intersection{Row: 2, Col: 2}, "")

	snap = s.Snapshot(board.DefaultStoneSize)
	require.True(t, snap.Calibrated)
	require.NotNil(t, snap.Lattice)
	assert.Equal(t, "0,0;1800,0;0,1800;1800,1800", snap.Calibration)

	require.Len(t, snap.Stones, 2)
	assert.Equal(t, 1, snap.Stones[0].Number)
	assert.Equal(t, "D4", snap.Stones[0].Label)
	assert.Equal(t, 2, snap.Stones[1].Number)
	assert.Equal(t, board.White, snap.Stones[1].Color)
	assert.InDelta(t, 1500, snap.Stones[1].Position.X, 1)
	assert.InDelta(t, snap.Markers[0].Size*1.25, snap.Stones[0].Size, 2)

	require.Len(t, snap.Marks, 1)
	assert.Equal(t, "A", snap.Marks[0].Text)
	assert.Equal(t, "B", snap.NextLetter)

	data, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"turn":"BLACK"`)
	assert.Contains(t, string(data), `"tool":"ALTERNATING"`)
}
