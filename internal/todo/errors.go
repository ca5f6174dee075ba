package todo

import (
	"errors"

	"github.com/Makepad-fr/tada/internal/model"
)

var (
	// ErrDuplicateTitle rejects a title that matches another item case-insensitively.
	ErrDuplicateTitle = errors.New("todo already exists")
	// ErrEmptyTitle is model.ErrEmptyTitle, re-exported for callers of Add/Edit.
	ErrEmptyTitle = model.ErrEmptyTitle
	// ErrPersist wraps adapter write failures. The in-memory change is kept.
	ErrPersist = errors.New("persist todos")
)
