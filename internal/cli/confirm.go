package cli

import (
	"errors"
	"io"
	"log"
	"strings"

	"github.com/peterh/liner"
)

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// alwaysYes backs the --yes flag.
var alwaysYes = ConfirmFunc(func(string) bool { return true })

// linerConfirmer prompts on the controlling terminal. Ctrl-C, EOF and
// anything but y/yes count as "no".
type linerConfirmer struct{}

func (linerConfirmer) Confirm(prompt string) bool {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	answer, err := line.Prompt(prompt + " [y/N] ")
	if err != nil {
		if !errors.Is(err, liner.ErrPromptAborted) && !errors.Is(err, io.EOF) {
			log.Printf("confirm: %v", err)
		}
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

func (a *App) confirmer() Confirmer {
	switch {
	case a.yes:
		return alwaysYes
	case a.Confirm != nil:
		return a.Confirm
	}
	return linerConfirmer{}
}
