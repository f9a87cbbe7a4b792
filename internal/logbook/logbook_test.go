package logbook

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestTailReturnsRecentLinesAndTotal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "newsroom.log")
	book, err := New(path)
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	for i := 0; i < 5; i++ {
		book.Info("entry-%d", i)
	}
	lines, total := book.Tail(3)
	if total != 5 {
		t.Fatalf("total lines = %d, want 5", total)
	}
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for idx, want := range []string{"entry-2", "entry-3", "entry-4"} {
		if !strings.Contains(lines[idx], want) {
			t.Fatalf("line %d = %q, missing %s", idx, lines[idx], want)
		}
	}
}

func TestWithScopesComponent(t *testing.T) {
	dir := t.TempDir()
	book, err := New(filepath.Join(dir, "newsroom.log"))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	book.With("manager").Warn("queue %s empty", "review")
	lines, total := book.Tail(1)
	if total != 1 {
		t.Fatalf("total = %d", total)
	}
	if !strings.Contains(lines[0], "[manager]") || !strings.Contains(lines[0], "WARN") {
		t.Fatalf("line = %q", lines[0])
	}
}

func TestNilLogbookIsSafe(t *testing.T) {
	var book *Logbook
	book.Info("ignored")
	book.With("x").Error("ignored")
	if lines, total := book.Tail(5); lines != nil || total != 0 {
		t.Fatal("nil logbook should report nothing")
	}
}
