package board_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/stonecast/board"
)

func TestLettersStartFull(t *testing.T) {
	l := board.NewLetters()

	require.Equal(t, 702, l.Len())
	assert.Equal(t, "A", l.Peek())
}

func TestLettersHandOutInOrder(t *testing.T) {
	l := board.NewLetters()

	for _, want := range []string{"A", "B", "C"} {
		assert.Equal(t, want, l.Next())
	}

	for range 23 {
		l.Next()
	}

	assert.Equal(t, "AA", l.Next(), "double letters follow Z")
	assert.Equal(t, "AB", l.Next())
}

func TestLettersReturnToSortedPosition(t *testing.T) {
	l := board.NewLetters()
	for range 5 {
		l.Next()
	}

	l.Return("C")
	assert.Equal(t, "C", l.Next())
	assert.Equal(t, "F", l.Next())

	l.Return("B")
	l.Return("A")
	assert.Equal(t, "A", l.Next())
	assert.Equal(t, "B", l.Next())
}

func TestLettersReturnZBeforeDoubleLetters(t *testing.T) {
	l := board.NewLetters()
	for range 27 {
		l.Next()
	}
	require.Equal(t, "AB", l.Peek())

	l.Return("Z")
	assert.Equal(t, "Z", l.Next())
	assert.Equal(t, "AB", l.Next())
}

func TestLettersIgnoreDuplicatesAndJunk(t *testing.T) {
	l := board.NewLetters()

	l.Return("A")
	l.Return("hello")
	l.Return("")
	l.Return("AAA")

	assert.Equal(t, 702, l.Len())
}

func TestLettersFallBackWhenExhausted(t *testing.T) {
	l := board.NewLetters()
	for range 702 {
		l.Next()
	}

	require.Zero(t, l.Len())
	assert.Equal(t, board.FallbackLetter, l.Peek())
	assert.Equal(t, board.FallbackLetter, l.Next())

	l.Reset()
	assert.Equal(t, 702, l.Len())
}

func TestLettersTake(t *testing.T) {
	l := board.NewLetters()

	require.True(t, l.Take("D"))
	require.False(t, l.Take("D"))
	require.False(t, l.Take("nope"))

	for _, want := range []string{"A", "B", "C", "E"} {
		assert.Equal(t, want, l.Next())
	}
}
