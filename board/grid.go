/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package board maps a camera view of a Go board onto a 19x19 lattice and
// tracks the stones and marks a commentator places on it.
package board

import (
	"cmp"
	"math"
	"slices"
	"strconv"
)

// Size is the number of lines on each side of the board.
const Size = 19

// Canvas dimensions of the shared coordinate space. Browsers scale their
// pointer positions into this space before sending them.
const (
	CanvasWidth  = 1920
	CanvasHeight = 1080
)

// columnLabels skips I, as board coordinates traditionally do.
const columnLabels = "ABCDEFGHJKLMNOPQRST"

// Point is a position in canvas pixel space.
type Point struct {
	X float64
	Y float64
}

// Intersection addresses one lattice cell by row and column.
type Intersection struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Valid reports whether the intersection lies on the board.
func (in Intersection) Valid() bool {
	return in.Row >= 0 && in.Row < Size && in.Col >= 0 && in.Col < Size
}

// String renders the intersection as a board coordinate, e.g. "D4".
func (in Intersection) String() string {
	if !in.Valid() {
		return "??"
	}

	return string(columnLabels[in.Col]) + strconv.Itoa(in.Row+1)
}

// Lattice holds the canvas position of every intersection, indexed [row][col].
type Lattice [Size][Size]Point

// At returns the canvas position of an intersection.
func (l *Lattice) At(in Intersection) Point {
	return l[in.Row][in.Col]
}

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func lerp(a, b Point, t float64) Point {
	return Point{
		X: a.X*(1-t) + b.X*t,
		Y: a.Y*(1-t) + b.Y*t,
	}
}

// OrderCorners returns the corners as top-left, top-right, bottom-left,
// bottom-right: the two highest points form the top edge, and each edge is
// ordered left to right. Both sorts are stable, so equal coordinates keep
// their input order.
func OrderCorners(points [4]Point) [4]Point {
	sorted := slices.Clone(points[:])

	slices.SortStableFunc(sorted, func(a, b Point) int {
		return cmp.Compare(a.Y, b.Y)
	})

	byX := func(a, b Point) int {
		return cmp.Compare(a.X, b.X)
	}
	slices.SortStableFunc(sorted[:2], byX)
	slices.SortStableFunc(sorted[2:], byX)

	return [4]Point{sorted[0], sorted[1], sorted[2], sorted[3]}
}

// ComputeLattice derives every intersection from four corner points by
// bilinear interpolation, flooring each coordinate to a whole pixel. The
// corners may be supplied in any order. This is not a projective mapping, so
// strongly oblique camera angles bend the outer lines slightly.
func ComputeLattice(points [4]Point) Lattice {
	corners := OrderCorners(points)
	topLeft, topRight, bottomLeft, bottomRight := corners[0], corners[1], corners[2], corners[3]

	var l Lattice

	for i := range Size {
		v := float64(i) / (Size - 1)

		for j := range Size {
			u := float64(j) / (Size - 1)

			top := lerp(topLeft, topRight, u)
			bottom := lerp(bottomLeft, bottomRight, u)
			p := lerp(top, bottom, v)

			l[i][j] = Point{X: math.Floor(p.X), Y: math.Floor(p.Y)}
		}
	}

	return l
}

// NearestIntersection scans the lattice in row-major order and returns the
// closest intersection to p along with its distance. Ties go to the first
// intersection scanned.
func NearestIntersection(p Point, l *Lattice) (Intersection, float64) {
	var best Intersection
	bestDist := distance(p, l[0][0])

	for i := range Size {
		for j := range Size {
			if d := distance(p, l[i][j]); d < bestDist {
				bestDist = d
				best = Intersection{Row: i, Col: j}
			}
		}
	}

	return best, bestDist
}

// LocalSpacing returns the distance from an intersection to its closest
// orthogonal neighbour, or base when no usable spacing can be measured.
func LocalSpacing(in Intersection, l *Lattice, base float64) float64 {
	if !in.Valid() {
		return base
	}

	center := l.At(in)
	spacing := math.Inf(1)

	neighbours := [4]Intersection{
		{Row: in.Row - 1, Col: in.Col},
		{Row: in.Row + 1, Col: in.Col},
		{Row: in.Row, Col: in.Col - 1},
		{Row: in.Row, Col: in.Col + 1},
	}

	for _, n := range neighbours {
		if !n.Valid() {
			continue
		}

		spacing = min(spacing, distance(center, l.At(n)))
	}

	if math.IsInf(spacing, 0) || math.IsNaN(spacing) || spacing <= 0 {
		return base
	}

	return spacing
}

// Grid owns the calibration corners and the lattice derived from them.
// The zero value is an uncalibrated grid.
type Grid struct {
	points  []Point
	lattice Lattice
	set     bool
}

func NewGrid() *Grid {
	return &Grid{
		points: make([]Point, 0, 4),
	}
}

// AddCalibrationPoint records one corner click, rounded to a whole pixel.
// The fourth corner completes calibration and reports true. Calls made once
// the grid is set are ignored; Reset must be called first.
func (g *Grid) AddCalibrationPoint(p Point) bool {
	if g.set || len(g.points) >= 4 {
		return false
	}

	g.points = append(g.points, Point{X: math.Round(p.X), Y: math.Round(p.Y)})

	if len(g.points) < 4 {
		return false
	}

	g.Calibrate([4]Point(g.points))

	return true
}

// Calibrate replaces the grid with one derived from four corners, each
// rounded to a whole pixel.
func (g *Grid) Calibrate(points [4]Point) {
	for i, p := range points {
		points[i] = Point{X: math.Round(p.X), Y: math.Round(p.Y)}
	}

	corners := OrderCorners(points)

	g.points = append(g.points[:0], corners[:]...)
	g.lattice = ComputeLattice(corners)
	g.set = true
}

// Reset discards calibration, abandoning any calibration in progress.
func (g *Grid) Reset() {
	g.points = g.points[:0]
	g.lattice = Lattice{}
	g.set = false
}

func (g *Grid) IsSet() bool {
	return g.set
}

// Pending returns how many corners have been captured so far.
func (g *Grid) Pending() int {
	return len(g.points)
}

// Corners returns the ordered calibration corners once the grid is set.
func (g *Grid) Corners() ([4]Point, bool) {
	if !g.set {
		return [4]Point{}, false
	}

	return [4]Point(g.points), true
}

// Lattice returns a copy of the lattice once the grid is set.
func (g *Grid) Lattice() (Lattice, bool) {
	if !g.set {
		return Lattice{}, false
	}

	return g.lattice, true
}

// Position returns the canvas position of an intersection. It reports false
// before calibration or for off-board intersections.
func (g *Grid) Position(in Intersection) (Point, bool) {
	if !g.set || !in.Valid() {
		return Point{}, false
	}

	return g.lattice.At(in), true
}

// Nearest snaps a canvas point to the closest intersection. It reports false
// before calibration.
func (g *Grid) Nearest(p Point) (Intersection, bool) {
	if !g.set {
		return Intersection{}, false
	}

	in, _ := NearestIntersection(p, &g.lattice)

	return in, true
}

// Spacing returns the local grid spacing at an intersection, or base before
// calibration.
func (g *Grid) Spacing(in Intersection, base float64) float64 {
	if !g.set {
		return base
	}

	return LocalSpacing(in, &g.lattice, base)
}
