/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package board

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatCalibration renders four corners as "x,y;x,y;x,y;x,y" with each
// coordinate rounded to a whole pixel, the form used by the grid URL
// parameter.
func FormatCalibration(points [4]Point) string {
	pairs := make([]string, len(points))

	for i, p := range points {
		pairs[i] = strconv.Itoa(int(math.Round(p.X))) + "," + strconv.Itoa(int(math.Round(p.Y)))
	}

	return strings.Join(pairs, ";")
}

// ParseCalibration reads the form written by FormatCalibration.
func ParseCalibration(s string) ([4]Point, error) {
	var points [4]Point

	pairs := strings.Split(strings.TrimSpace(s), ";")
	if len(pairs) != len(points) {
		return points, fmt.Errorf("%w: want 4 points, got %d", ErrInvalidCalibration, len(pairs))
	}

	for i, pair := range pairs {
		x, y, ok := strings.Cut(pair, ",")
		if !ok {
			return points, fmt.Errorf("%w: point %d %q is not x,y", ErrInvalidCalibration, i+1, pair)
		}

		px, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || !finite(px) {
			return points, fmt.Errorf("%w: point %d has bad x %q", ErrInvalidCalibration, i+1, x)
		}

		py, err := strconv.ParseFloat(strings.TrimSpace(y), 64)
		if err != nil || !finite(py) {
			return points, fmt.Errorf("%w: point %d has bad y %q", ErrInvalidCalibration, i+1, y)
		}

		points[i] = Point{X: px, Y: py}
	}

	return points, nil
}

// Calibration returns the grid's corners in URL parameter form, or an empty
// string before calibration.
func (g *Grid) Calibration() string {
	corners, ok := g.Corners()
	if !ok {
		return ""
	}

	return FormatCalibration(corners)
}
