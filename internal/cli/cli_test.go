package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/todo"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	code   int
	stdout string
	stderr string
}

type harness struct {
	t       *testing.T
	dir     string
	env     map[string]string
	confirm Confirmer
	prompts []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	dir := t.TempDir()
	h := &harness{
		t:   t,
		dir: dir,
		env: map[string]string{
			"HOME":          dir,
			"TADA_DATA_DIR": filepath.Join(dir, "data"),
			"TADA_NO_COLOR": "true",
		},
	}
	h.answer(true)
	return h
}

// answer makes every confirmation prompt return yes.
func (h *harness) answer(yes bool) {
	h.confirm = ConfirmFunc(func(prompt string) bool {
		h.prompts = append(h.prompts, prompt)
		return yes
	})
}

func (h *harness) run(args ...string) result {
	h.t.Helper()

	var out, errOut bytes.Buffer
	app := &App{In: &bytes.Buffer{}, Out: &out, Err: &errOut, Env: h.env, Confirm: h.confirm}
	code := app.Run(context.Background(), args)
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

func (h *harness) mustRun(args ...string) result {
	h.t.Helper()

	r := h.run(args...)
	require.Equal(h.t, 0, r.code, "args=%v stderr=%s", args, r.stderr)
	return r
}

// listed returns the projected list as printed by `ls --format json`.
func (h *harness) listed() []model.Item {
	h.t.Helper()

	r := h.mustRun("ls", "--format", "json")
	var items []model.Item
	require.NoError(h.t, json.Unmarshal([]byte(r.stdout), &items))
	return items
}

func listedTitles(items []model.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Title)
	}
	return out
}

func TestAddAndListNewestFirst(t *testing.T) {
	h := newHarness(t)

	r := h.mustRun("add", "buy", "milk")
	assert.Contains(t, r.stdout, "added")
	h.mustRun("add", "walk the dog")

	items := h.listed()
	assert.Equal(t, []string{"walk the dog", "buy milk"}, listedTitles(items))
	assert.Greater(t, items[0].ID, items[1].ID)
}

func TestAddPersistsBlobFile(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "persist me")

	b, err := os.ReadFile(filepath.Join(h.dir, "data", "todos.json"))
	require.NoError(t, err)
	items, err := todo.DecodeItems(b)
	require.NoError(t, err)
	if diff := cmp.Diff([]model.Item{{Title: "persist me"}}, items, cmpopts.IgnoreFields(model.Item{}, "ID")); diff != "" {
		t.Fatalf("blob mismatch (-want +got):\n%s", diff)
	}
}

func TestAddRejections(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "Buy Milk")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"duplicate ignoring case", []string{"add", "buy", "MILK"}, "Todo already exists!"},
		{"blank", []string{"add", "   "}, "cannot submit empty form"},
		{"too short", []string{"add", "ab"}, "at least 3"},
		{"missing title", []string{"add"}, "requires at least 1 arg"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := h.run(tc.args...)
			assert.Equal(t, exitUsage, r.code)
			assert.Contains(t, r.stderr, tc.wantErr)
		})
	}
	assert.Len(t, h.listed(), 1)
}

func TestDoneTogglesByDisplayIndex(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "first")
	h.mustRun("add", "second")

	h.mustRun("done", "1")
	items := h.listed()
	assert.Equal(t, []string{"first", "second"}, listedTitles(items))
	assert.True(t, items[1].Completed)

	h.mustRun("done", "2")
	for _, it := range h.listed() {
		assert.False(t, it.Completed, it.Title)
	}
}

func TestIndexErrors(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "only one")

	r := h.run("done", "2")
	assert.Equal(t, exitUsage, r.code)
	assert.Contains(t, r.stderr, "index out of range: have 1, got 2")

	r = h.run("rm", "abc")
	assert.Equal(t, exitUsage, r.code)
	assert.Contains(t, r.stderr, "rm: not a number: abc")
}

func TestEdit(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "first")
	h.mustRun("add", "second")

	h.mustRun("edit", "2", "first", "renamed")
	assert.Equal(t, []string{"second", "first renamed"}, listedTitles(h.listed()))

	r := h.run("edit", "1", "FIRST", "RENAMED")
	assert.Equal(t, exitUsage, r.code)
	assert.Contains(t, r.stderr, "already exists")

	h.mustRun("edit", "1", "Second")
	assert.Equal(t, []string{"Second", "first renamed"}, listedTitles(h.listed()))
}

func TestRemoveAsksForConfirmation(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "keep me")
	h.mustRun("add", "drop me")

	h.answer(false)
	r := h.mustRun("rm", "1")
	assert.Contains(t, r.stdout, "cancelled")
	assert.Equal(t, []string{"Are you sure to delete it?"}, h.prompts)
	assert.Len(t, h.listed(), 2)

	h.answer(true)
	h.mustRun("rm", "1")
	assert.Equal(t, []string{"keep me"}, listedTitles(h.listed()))
}

func TestYesFlagSkipsPrompt(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "gone soon")
	h.answer(false)

	h.mustRun("--yes", "clear")
	assert.Empty(t, h.prompts)
	assert.Empty(t, h.listed())
}

func TestMarkAndClear(t *testing.T) {
	h := newHarness(t)
	for _, title := range []string{"one", "two", "three"} {
		h.mustRun("add", title)
	}

	h.mustRun("mark-all")
	for _, it := range h.listed() {
		assert.True(t, it.Completed, it.Title)
	}

	h.mustRun("unmark-all")
	for _, it := range h.listed() {
		assert.False(t, it.Completed, it.Title)
	}

	h.mustRun("done", "1") // three
	h.mustRun("clear", "--marked")
	assert.Equal(t, []string{"two", "one"}, listedTitles(h.listed()))
	assert.Equal(t, "Are you sure to clear marked?", h.prompts[len(h.prompts)-1])

	h.mustRun("clear")
	assert.Equal(t, "Are you sure to clear all?", h.prompts[len(h.prompts)-1])
	assert.Empty(t, h.listed())
}

func TestListPanel(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "buy milk")
	h.mustRun("add", "call mom")
	h.mustRun("done", "2")

	r := h.mustRun("ls")
	assert.Contains(t, r.stdout, "Todos")
	assert.Contains(t, r.stdout, " 1. ☐ Call mom")
	assert.Contains(t, r.stdout, " 2. ☑ Buy milk")

	r = h.mustRun("ls", "--group")
	assert.Contains(t, r.stdout, "Pending")
	assert.Contains(t, r.stdout, "Done")
	assert.Contains(t, r.stdout, " 2. ☑ Buy milk")
}

func TestListEmptyAndCorruptedStore(t *testing.T) {
	h := newHarness(t)
	dataDir := filepath.Join(h.dir, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "todos.json"), []byte("{{garbage"), 0o644))

	r := h.mustRun("ls")
	assert.Contains(t, r.stdout, "Currently Empty!")
	assert.Empty(t, h.listed())

	h.mustRun("add", "fresh start")
	assert.Len(t, h.listed(), 1)
}

func TestListMarkdown(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "write docs")

	r := h.mustRun("ls", "--format", "markdown")
	assert.Contains(t, r.stdout, "Write docs")

	r = h.run("ls", "--format", "xml")
	assert.Equal(t, exitUsage, r.code)
	assert.Contains(t, r.stderr, "unknown format")
}

func TestMarkdownListEscapesTitles(t *testing.T) {
	got := markdownList([]model.Item{
		{ID: 2, Title: "# big"},
		{ID: 1, Title: "**x** [link](y) - 1. done", Completed: true},
	})

	want := "# Todos\n\n" +
		"- [ ] \\# big\n" +
		"- [x] \\*\\*x\\*\\* \\[link\\]\\(y\\) \\- 1\\. done\n"
	assert.Equal(t, want, got)

	out, err := renderMarkdown([]model.Item{{ID: 1, Title: "**x**"}}, true)
	require.NoError(t, err)
	assert.Contains(t, out, "**x**")
}

func TestSQLiteBackend(t *testing.T) {
	h := newHarness(t)
	h.env["TADA_BACKEND"] = "sqlite"

	h.mustRun("add", "stored in sqlite")
	assert.FileExists(t, filepath.Join(h.dir, "data", "tada.sqlite"))
	assert.NoFileExists(t, filepath.Join(h.dir, "data", "todos.json"))
	assert.Equal(t, []string{"stored in sqlite"}, listedTitles(h.listed()))
}

func TestMemoryBackendForgets(t *testing.T) {
	h := newHarness(t)

	h.mustRun("--backend", "memory", "add", "ephemeral")
	assert.Empty(t, h.listed())
}

func TestConfigErrors(t *testing.T) {
	h := newHarness(t)

	r := h.run("--backend", "redis", "ls")
	assert.Equal(t, exitUsage, r.code)
	assert.Contains(t, r.stderr, "unknown backend")

	r = h.run("--config", filepath.Join(h.dir, "missing.json"), "ls")
	assert.Equal(t, exitUsage, r.code)
	assert.Contains(t, r.stderr, "config file not found")
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness(t)

	r := h.run("frobnicate")
	assert.Equal(t, exitUsage, r.code)
	assert.Contains(t, r.stderr, "unknown command")
}

func TestRootStartsInteractiveList(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "seen by tui")

	var got []model.Item
	var out, errOut bytes.Buffer
	app := &App{
		In: &bytes.Buffer{}, Out: &out, Err: &errOut, Env: h.env,
		RunTUI: func(_ context.Context, ops todo.Ops) error {
			got = ops.Items()
			return nil
		},
	}
	require.Equal(t, 0, app.Run(context.Background(), nil), errOut.String())
	assert.Equal(t, []string{"seen by tui"}, listedTitles(got))
}
