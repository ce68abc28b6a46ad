/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package board

import (
	"fmt"
)

// Color is the colour of a played stone.
type Color int

const (
	Black Color = iota
	White
)

func (c Color) String() string {
	switch c {
	case Black:
		return "BLACK"
	case White:
		return "WHITE"
	default:
		return fmt.Sprintf("Color(%d)", int(c))
	}
}

// Opposite returns the other player's colour.
func (c Color) Opposite() Color {
	if c == Black {
		return White
	}

	return Black
}

func (c Color) MarshalText() ([]byte, error) {
	switch c {
	case Black, White:
		return []byte(c.String()), nil
	default:
		return nil, fmt.Errorf("%w: color %d", ErrMalformedCommand, int(c))
	}
}

func (c *Color) UnmarshalText(text []byte) error {
	switch string(text) {
	case "BLACK":
		*c = Black
	case "WHITE":
		*c = White
	default:
		return fmt.Errorf("%w: unknown color %q", ErrMalformedCommand, text)
	}

	return nil
}

// Tool is the active placement mode.
type Tool string

const (
	ToolBlack       Tool = "BLACK"
	ToolWhite       Tool = "WHITE"
	ToolAlternating Tool = "ALTERNATING"
	ToolPen         Tool = "PEN"
	ToolTriangle    Tool = "TRIANGLE"
	ToolCircle      Tool = "CIRCLE"
	ToolSquare      Tool = "SQUARE"
	ToolLetter      Tool = "LETTER"
)

func (t Tool) Valid() bool {
	switch t {
	case ToolBlack, ToolWhite, ToolAlternating, ToolPen,
		ToolTriangle, ToolCircle, ToolSquare, ToolLetter:
		return true
	}

	return false
}

// Mark returns the decoration a tool places, if any.
func (t Tool) Mark() (MarkType, bool) {
	switch t {
	case ToolTriangle:
		return MarkTriangle, true
	case ToolCircle:
		return MarkCircle, true
	case ToolSquare:
		return MarkSquare, true
	case ToolLetter:
		return MarkLetter, true
	}

	return "", false
}

// MarkType is the shape of a decoration mark.
type MarkType string

const (
	MarkTriangle MarkType = "TRIANGLE"
	MarkCircle   MarkType = "CIRCLE"
	MarkSquare   MarkType = "SQUARE"
	MarkLetter   MarkType = "LETTER"
)

func (m MarkType) Valid() bool {
	switch m {
	case MarkTriangle, MarkCircle, MarkSquare, MarkLetter:
		return true
	}

	return false
}

// Button distinguishes the two pointer actions on the board.
type Button string

const (
	// Primary places and removes played stones.
	Primary Button = "primary"
	// Secondary places and removes board markers.
	Secondary Button = "secondary"
)

// Modifiers are keyboard modifiers held during a pointer action.
type Modifiers struct {
	// Shift places a stone without advancing the turn.
	Shift bool
}

// Stone is a played stone. Stones are kept in move order.
type Stone struct {
	At    Intersection `json:"at"`
	Color Color        `json:"color"`
}

// Marker flags an empty point of interest. A marker and a stone never share
// an intersection.
type Marker struct {
	At Intersection `json:"at"`
}

// Mark is a decoration drawn over the board.
type Mark struct {
	Type MarkType     `json:"type"`
	At   Intersection `json:"at"`
	Text string       `json:"text,omitempty"`
}

// Stroke is a free-hand pen line in canvas space.
type Stroke struct {
	Color  string  `json:"color"`
	Points []Point `json:"points"`
}
