package ui

import (
	"fmt"
	"strings"
	"testing"

	"logport/internal/driver"
)

func TestApplyEvent(t *testing.T) {
	files := []string{"a.cpp", "b.cpp"}
	m := NewProgressModel("rewrite", files, nil).(*progressModel)

	m.applyEvent(driver.Event{File: "a.cpp", Stage: driver.StageRewrite, Status: driver.StatusWorking})
	m.applyEvent(driver.Event{File: "b.cpp", Stage: driver.StageWrite, Status: driver.StatusCached})
	m.applyEvent(driver.Event{File: "unknown.cpp", Stage: driver.StageWrite, Status: driver.StatusDone})

	if m.items[0].status != "rewriting" || m.items[1].status != "cached" {
		t.Fatalf("statuses = %q, %q", m.items[0].status, m.items[1].status)
	}
	if got := m.percent(); got != (0.4+1.0)/2 {
		t.Fatalf("percent = %v", got)
	}

	view := m.View()
	for _, want := range []string{"rewrite", "rewriting", "a.cpp", "cached", "1/2 files"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view lacks %q:\n%s", want, view)
		}
	}
}

func TestVisibleItemsCapsLongLists(t *testing.T) {
	files := make([]string, 40)
	for i := range files {
		files[i] = fmt.Sprintf("f%02d.cpp", i)
	}
	m := NewProgressModel("rewrite", files, nil).(*progressModel)
	m.applyEvent(driver.Event{File: "f39.cpp", Stage: driver.StageRewrite, Status: driver.StatusWorking})
	for i := 0; i < 5; i++ {
		m.applyEvent(driver.Event{File: files[i], Stage: driver.StageWrite, Status: driver.StatusDone})
	}

	rows, hidden := m.visibleItems()
	if len(rows) != maxRows || hidden != len(files)-maxRows {
		t.Fatalf("rows=%d hidden=%d", len(rows), hidden)
	}
	if rows[0].path != "f39.cpp" {
		t.Fatalf("working file must come first, got %s", rows[0].path)
	}
	if !strings.Contains(m.View(), "and 28 more") {
		t.Fatal("hidden counter missing")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("src/very/long/path/file.cpp", 10); got != "src/ver..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("短い.cpp", 20); got != "短い.cpp" {
		t.Fatalf("truncate = %q", got)
	}
}
