package board_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/stonecast/board"
)

var (
	square = [4]board.Point{{X: 0, Y: 0}, {X: 1800, Y: 0}, {X: 0, Y: 1800}, {X: 1800, Y: 1800}}

	// skewed is a board seen from above and to the left of centre.
	skewed = [4]board.Point{{X: 412, Y: 138}, {X: 1480, Y: 152}, {X: 260, Y: 1002}, {X: 1655, Y: 1031}}
)

func permutations(points [4]board.Point) [][4]board.Point {
	var out [][4]board.Point

	var walk func(k int, p [4]board.Point)
	walk = func(k int, p [4]board.Point) {
		if k == len(p) {
			out = append(out, p)
			return
		}
		for i := k; i < len(p); i++ {
			p[k], p[i] = p[i], p[k]
			walk(k+1, p)
			p[k], p[i] = p[i], p[k]
		}
	}
	walk(0, points)

	return out
}

func TestComputeLatticeIsDeterministic(t *testing.T) {
	first := board.ComputeLattice(skewed)
	second := board.ComputeLattice(skewed)

	require.Equal(t, first, second)
}

func TestComputeLatticeIgnoresCornerOrder(t *testing.T) {
	want := board.ComputeLattice(skewed)

	orders := permutations(skewed)
	require.Len(t, orders, 24)

	for _, order := range orders {
		require.Equal(t, want, board.ComputeLattice(order), "corners %v", order)
	}
}

func TestComputeLatticeHitsCorners(t *testing.T) {
	l := board.ComputeLattice(skewed)

	assert.Equal(t, skewed[0], l[0][0], "top-left")
	assert.Equal(t, skewed[1], l[0][18], "top-right")
	assert.Equal(t, skewed[2], l[18][0], "bottom-left")
	assert.Equal(t, skewed[3], l[18][18], "bottom-right")
}

func TestComputeLatticeFloorsToPixels(t *testing.T) {
	l := board.ComputeLattice(skewed)

	for i := range board.Size {
		for j := range board.Size {
			p := l[i][j]
			require.Equal(t, float64(int(p.X)), p.X)
			require.Equal(t, float64(int(p.Y)), p.Y)
		}
	}
}

func TestComputeLatticeCentre(t *testing.T) {
	l := board.ComputeLattice([4]board.Point{{X: 0, Y: 0}, {X: 1000, Y: 0}, {X: 0, Y: 1000}, {X: 1000, Y: 1000}})

	assert.Equal(t, board.Point{X: 500, Y: 500}, l[9][9])
}

func TestComputeLatticeDegenerateDoesNotPanic(t *testing.T) {
	line := [4]board.Point{{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 20, Y: 20}, {X: 30, Y: 30}}

	require.NotPanics(t, func() {
		l := board.ComputeLattice(line)
		board.NearestIntersection(board.Point{X: 15, Y: 15}, &l)
		board.LocalSpacing(board.Intersection{Row: 9, Col: 9}, &l, 42)
	})
}

func TestNearestIntersectionOnLatticePoints(t *testing.T) {
	l := board.ComputeLattice(skewed)

	for i := range board.Size {
		for j := range board.Size {
			in, d := board.NearestIntersection(l[i][j], &l)
			require.Equal(t, board.Intersection{Row: i, Col: j}, in)
			require.Zero(t, d)
		}
	}
}

func TestNearestIntersectionTieGoesToFirstScanned(t *testing.T) {
	l := board.ComputeLattice(square)

	a, b := l[0][0], l[0][1]
	mid := board.Point{X: (a.X + b.X) / 2, Y: a.Y}

	in, _ := board.NearestIntersection(mid, &l)
	assert.Equal(t, board.Intersection{Row: 0, Col: 0}, in)
}

func TestNearestIntersectionOffBoard(t *testing.T) {
	l := board.ComputeLattice(square)

	in, _ := board.NearestIntersection(board.Point{X: 5000, Y: -300}, &l)
	assert.Equal(t, board.Intersection{Row: 0, Col: 18}, in)
}

func TestLocalSpacingUniformOnSquare(t *testing.T) {
	l := board.ComputeLattice(square)

	for i := 1; i < board.Size-1; i++ {
		for j := 1; j < board.Size-1; j++ {
			s := board.LocalSpacing(board.Intersection{Row: i, Col: j}, &l, 1)
			require.InDelta(t, 100, s, 1, "spacing at %d,%d", i, j)
		}
	}
}

func TestLocalSpacingShrinksWithPerspective(t *testing.T) {
	// The far edge is narrower than the near edge.
	l := board.ComputeLattice([4]board.Point{{X: 600, Y: 100}, {X: 1300, Y: 100}, {X: 200, Y: 1000}, {X: 1700, Y: 1000}})

	far := board.LocalSpacing(board.Intersection{Row: 1, Col: 9}, &l, 1)
	near := board.LocalSpacing(board.Intersection{Row: 17, Col: 9}, &l, 1)

	assert.Less(t, far, near)
}

func TestLocalSpacingFallsBackToBase(t *testing.T) {
	p := board.Point{X: 300, Y: 300}
	l := board.ComputeLattice([4]board.Point{p, p, p, p})

	assert.Equal(t, 42.0, board.LocalSpacing(board.Intersection{Row: 4, Col: 4}, &l, 42))
	assert.Equal(t, 42.0, board.LocalSpacing(board.Intersection{Row: -1, Col: 4}, &l, 42))
}

func TestGridCalibratesOnFourthPoint(t *testing.T) {
	g := board.NewGrid()

	for i, p := range skewed[:3] {
		require.False(t, g.AddCalibrationPoint(p))
		require.Equal(t, i+1, g.Pending())
	}

	_, ok := g.Nearest(board.Point{X: 500, Y: 500})
	require.False(t, ok, "no snapping before calibration")

	require.True(t, g.AddCalibrationPoint(skewed[3]))
	require.True(t, g.IsSet())

	l, ok := g.Lattice()
	require.True(t, ok)
	require.Equal(t, board.ComputeLattice(skewed), l)

	require.False(t, g.AddCalibrationPoint(board.Point{X: 1, Y: 1}), "extra points are ignored")
	require.Equal(t, 4, g.Pending())

	corners, ok := g.Corners()
	require.True(t, ok)
	require.Equal(t, skewed, corners)
}

func TestGridRoundsCalibrationClicks(t *testing.T) {
	g := board.NewGrid()
	g.AddCalibrationPoint(board.Point{X: 10.4, Y: 10.6})
	g.AddCalibrationPoint(board.Point{X: 990.5, Y: 9.2})
	g.AddCalibrationPoint(board.Point{X: 10.1, Y: 990.9})
	g.AddCalibrationPoint(board.Point{X: 990, Y: 990})

	corners, ok := g.Corners()
	require.True(t, ok)
	assert.Equal(t, [4]board.Point{{X: 10, Y: 11}, {X: 991, Y: 9}, {X: 10, Y: 991}, {X: 990, Y: 990}}, corners)
}

func TestGridReset(t *testing.T) {
	g := board.NewGrid()
	g.Calibrate(square)
	require.True(t, g.IsSet())

	g.Reset()
	assert.False(t, g.IsSet())
	assert.Zero(t, g.Pending())

	_, ok := g.Lattice()
	assert.False(t, ok)
	assert.Equal(t, 7.0, g.Spacing(board.Intersection{Row: 3, Col: 3}, 7))
}

func TestIntersectionString(t *testing.T) {
	tests := []struct {
		in   board.Intersection
		want string
	}{
		{board.Intersection{Row: 0, Col: 0}, "A1"},
		{board.Intersection{Row: 3, Col: 3}, "D4"},
		{board.Intersection{Row: 0, Col: 8}, "J1"},
		{board.Intersection{Row: 18, Col: 18}, "T19"},
		{board.Intersection{Row: 19, Col: 0}, "??"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.String())
	}
}
