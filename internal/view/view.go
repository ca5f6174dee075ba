// Package view derives what the presentation layers display from a collection.
// Nothing here mutates its input.
package view

import (
	"cmp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Makepad-fr/tada/internal/model"
)

// Project returns items in display order: incomplete first, newest first
// within each bucket.
func Project(items []model.Item) []model.Item {
	out := slices.Clone(items)
	slices.SortFunc(out, func(a, b model.Item) int { return cmp.Compare(b.ID, a.ID) })
	slices.SortStableFunc(out, func(a, b model.Item) int {
		return cmp.Compare(completedRank(a), completedRank(b))
	})
	return out
}

func completedRank(it model.Item) int {
	if it.Completed {
		return 1
	}
	return 0
}

// Summary holds the counts shown in headers.
type Summary struct {
	Total        int
	Completed    int
	Pending      int
	AnyCompleted bool
	AllCompleted bool
}

func Summarize(items []model.Item) Summary {
	var s Summary
	s.Total = len(items)
	for _, it := range items {
		if it.Completed {
			s.Completed++
		}
	}
	s.Pending = s.Total - s.Completed
	s.AnyCompleted = s.Completed > 0
	s.AllCompleted = s.Total > 0 && s.Completed == s.Total
	return s
}

// Actions says which bulk actions are worth offering for the current list.
type Actions struct {
	ClearMarked bool
	ClearAll    bool
	MarkAll     bool
	UnmarkAll   bool
}

func Affordances(items []model.Item) Actions {
	s := Summarize(items)
	return Actions{
		ClearMarked: s.AnyCompleted,
		ClearAll:    s.Total > 1 && !s.AllCompleted,
		MarkAll:     s.AnyCompleted && !s.AllCompleted,
		UnmarkAll:   s.Completed > 1,
	}
}

// SentenceCase upper-cases the first letter of the first word.
// The stored title is left untouched; this is display formatting only.
func SentenceCase(title string) string {
	first, rest, found := strings.Cut(title, " ")
	r, size := utf8.DecodeRuneInString(first)
	if size == 0 {
		return title
	}
	first = string(unicode.ToUpper(r)) + first[size:]
	if !found {
		return first
	}
	return first + " " + rest
}
