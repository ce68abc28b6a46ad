/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package board

import (
	"cmp"
	"slices"
)

// FallbackLetter is handed out once every label is in use.
const FallbackLetter = "A"

// compareLabels orders labels shortest first, then alphabetically, so that
// Z sorts before AA.
func compareLabels(a, b string) int {
	if c := cmp.Compare(len(a), len(b)); c != 0 {
		return c
	}

	return cmp.Compare(a, b)
}

func isLabel(s string) bool {
	if len(s) < 1 || len(s) > 2 {
		return false
	}

	for i := range len(s) {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}

	return true
}

func allLabels() []string {
	labels := make([]string, 0, 26+26*26)

	for c := 'A'; c <= 'Z'; c++ {
		labels = append(labels, string(c))
	}

	for c := 'A'; c <= 'Z'; c++ {
		for d := 'A'; d <= 'Z'; d++ {
			labels = append(labels, string([]rune{c, d}))
		}
	}

	return labels
}

// Letters is the sorted queue of labels still available for letter marks.
type Letters struct {
	queue []string
}

func NewLetters() *Letters {
	return &Letters{queue: allLabels()}
}

// Reset refills the queue with every label.
func (l *Letters) Reset() {
	l.queue = allLabels()
}

// Len returns the number of unused labels.
func (l *Letters) Len() int {
	return len(l.queue)
}

// Peek returns the label the next letter mark would receive.
func (l *Letters) Peek() string {
	if len(l.queue) == 0 {
		return FallbackLetter
	}

	return l.queue[0]
}

// Next removes and returns the lowest unused label.
func (l *Letters) Next() string {
	if len(l.queue) == 0 {
		return FallbackLetter
	}

	label := l.queue[0]
	l.queue = l.queue[1:]

	return label
}

// Take removes a specific label from the queue, reporting whether it was
// available.
func (l *Letters) Take(label string) bool {
	i, found := slices.BinarySearchFunc(l.queue, label, compareLabels)
	if !found {
		return false
	}

	l.queue = slices.Delete(l.queue, i, i+1)

	return true
}

// Return puts a label back at its sorted position. Labels already queued,
// and text that is not a label, are ignored.
func (l *Letters) Return(label string) {
	if !isLabel(label) {
		return
	}

	i, found := slices.BinarySearchFunc(l.queue, label, compareLabels)
	if found {
		return
	}

	l.queue = slices.Insert(l.queue, i, label)
}
