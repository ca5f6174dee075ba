package cli

import (
	"fmt"
	"strings"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/ui"
	"github.com/Makepad-fr/tada/internal/view"
	"github.com/charmbracelet/glamour"
)

const maxLineTitle = 80

// flatLines renders items with display indexes starting at first.
func flatLines(items []model.Item, first int) []string {
	t := ui.Current()
	if len(items) == 0 {
		return []string{t.Error.Render("Currently Empty!"), t.Muted.Render("*** Add some Todos ***")}
	}
	out := make([]string, 0, len(items))
	for i, it := range items {
		idx := fmt.Sprintf("%2d.", first+i)
		box := t.Muted.Render(t.BoxUnchecked)
		title := ui.Truncate(view.SentenceCase(it.Title), maxLineTitle)
		if it.Completed {
			box = t.Success.Render(t.BoxChecked)
			title = t.Done.Render(title)
		}
		out = append(out, fmt.Sprintf("%s %s %s", t.Muted.Render(idx), box, title))
	}
	return out
}

// groupLines keeps the projected numbering so indexes still work with done/rm.
func groupLines(items []model.Item) []string {
	t := ui.Current()
	split := len(items)
	for i, it := range items {
		if it.Completed {
			split = i
			break
		}
	}
	pend, done := items[:split], items[split:]

	var lines []string
	lines = append(lines, t.Accent.Render("Pending"))
	if len(pend) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, flatLines(pend, 1)...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Accent.Render("Done"))
	if len(done) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, flatLines(done, split+1)...)
	}
	return lines
}

// mdEscaper backslash-escapes the punctuation markdown treats as syntax, so
// a title is always rendered as plain text.
var mdEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "{", `\{`, "}", `\}`,
	"[", `\[`, "]", `\]`, "(", `\(`, ")", `\)`, "#", `\#`, "+", `\+`,
	"-", `\-`, ".", `\.`, "!", `\!`, "|", `\|`, "<", `\<`, ">", `\>`,
	"~", `\~`,
)

// markdownList writes items as a GitHub task list.
func markdownList(items []model.Item) string {
	var b strings.Builder
	b.WriteString("# Todos\n\n")
	if len(items) == 0 {
		b.WriteString("_Currently empty._\n")
		return b.String()
	}
	for _, it := range items {
		mark := " "
		if it.Completed {
			mark = "x"
		}
		fmt.Fprintf(&b, "- [%s] %s\n", mark, mdEscaper.Replace(view.SentenceCase(it.Title)))
	}
	return b.String()
}

func renderMarkdown(items []model.Item, plain bool) (string, error) {
	style := "auto"
	if plain {
		style = "ascii"
	}
	return glamour.Render(markdownList(items), style)
}
