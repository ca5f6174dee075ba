package model

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Item is the domain model for a todo entry.
// ID is assigned once at creation and is the only identity key.
type Item struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Title bounds enforced at the input boundary (CLI args, TUI text input).
const (
	MinTitleLen = 3
	MaxTitleLen = 150
)

var (
	ErrEmptyTitle    = errors.New("cannot submit an empty title")
	ErrTitleTooShort = errors.New("title is too short")
	ErrTitleTooLong  = errors.New("title is too long")
)

// ValidateTitle trims s and checks it against the title bounds.
// The trimmed title is returned even when an error is reported.
func ValidateTitle(s string) (string, error) {
	title := strings.TrimSpace(s)
	n := utf8.RuneCountInString(title)
	switch {
	case n == 0:
		return title, ErrEmptyTitle
	case n < MinTitleLen:
		return title, ErrTitleTooShort
	case n > MaxTitleLen:
		return title, ErrTitleTooLong
	}
	return title, nil
}

// SameTitle reports whether two titles collide under the uniqueness rule.
func SameTitle(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
