package scripting

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/windlane/lanes/internal/spawn"
	"go.uber.org/zap"
)

func newEngine(t *testing.T, script string) *Engine {
	t.Helper()
	dir := t.TempDir()
	if script != "" {
		if err := os.WriteFile(filepath.Join(dir, "spawn.lua"), []byte(script), 0o644); err != nil {
			t.Fatalf("write script: %v", err)
		}
	}
	e, err := NewEngine(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

var req = spawn.Request{
	Lanes: 5,
	Types: []spawn.Candidate{{ID: "smog", Weight: 3}, {ID: "sludge", Weight: 1}},
	Roll:  0.5,
}

func TestPickSpawn(t *testing.T) {
	e := newEngine(t, `
function pick_spawn(ctx)
  if ctx.elapsed_ms >= 60000 then
    return { type = ctx.types[2].id, lane = ctx.lanes }
  end
  return { type = ctx.types[1].id, lane = 1 }
end
`)
	if !e.Has("pick_spawn") {
		t.Fatal("pick_spawn not loaded")
	}
	got, err := e.Pick(req)
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if got != (spawn.Choice{TypeID: "smog", Lane: 0}) {
		t.Errorf("early pick = %+v", got)
	}

	late := req
	late.Elapsed = 90 * time.Second
	got, err = e.Pick(late)
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if got != (spawn.Choice{TypeID: "sludge", Lane: 4}) {
		t.Errorf("late pick = %+v", got)
	}
}

func TestPickSpawnRejectsBadAnswers(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{"lane zero", `function pick_spawn(ctx) return { type = "smog", lane = 0 } end`, "outside"},
		{"lane too high", `function pick_spawn(ctx) return { type = "smog", lane = 6 } end`, "outside"},
		{"unknown type", `function pick_spawn(ctx) return { type = "oil", lane = 1 } end`, "unknown type"},
		{"not a table", `function pick_spawn(ctx) return 3 end`, "want table"},
		{"runtime error", `function pick_spawn(ctx) error("boom") end`, "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, tt.script)
			_, err := e.Pick(req)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestPickSpawnWithoutHook(t *testing.T) {
	e := newEngine(t, "")
	if _, err := e.Pick(req); !errors.Is(err, ErrNoHook) {
		t.Errorf("err = %v, want ErrNoHook", err)
	}
}

func TestNewEngineReportsSyntaxErrors(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.lua"), []byte("function ("), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewEngine(dir, zap.NewNop()); err == nil {
		t.Error("NewEngine accepted a broken script")
	}
}

func TestShippedSpawnScript(t *testing.T) {
	e, err := NewEngine("../../scripts", zap.NewNop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer e.Close()

	early := req
	early.LaneRoll = 0.99
	got, err := e.Pick(early)
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if got != (spawn.Choice{TypeID: "smog", Lane: 4}) {
		t.Errorf("early pick = %+v", got)
	}

	late := req
	late.Elapsed = 2 * time.Minute
	late.Roll = 0.9
	got, err = e.Pick(late)
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if got.TypeID != "sludge" || got.Lane != 0 {
		t.Errorf("late pick = %+v", got)
	}
}
