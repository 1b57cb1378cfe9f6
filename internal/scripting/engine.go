package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/windlane/lanes/internal/spawn"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// ErrNoHook is returned when the loaded scripts do not define a hook.
var ErrNoHook = errors.New("lua hook not defined")

// Engine wraps a single gopher-lua VM. Single-goroutine access only (tick loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads every .lua file in scriptsDir in
// name order. A missing directory yields an engine with no hooks.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load scripts: %w", err)
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Has reports whether a global Lua function called name exists.
func (e *Engine) Has(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// Pick implements spawn.Picker by calling pick_spawn(ctx).
//
// ctx fields: elapsed_ms, lanes, roll, lane_roll and types, an array of
// {id, weight}. The hook returns {type = id, lane = n} with n counted from 1.
func (e *Engine) Pick(req spawn.Request) (spawn.Choice, error) {
	fn, ok := e.vm.GetGlobal("pick_spawn").(*lua.LFunction)
	if !ok {
		return spawn.Choice{}, fmt.Errorf("pick_spawn: %w", ErrNoHook)
	}

	t := e.vm.NewTable()
	t.RawSetString("elapsed_ms", lua.LNumber(req.Elapsed.Milliseconds()))
	t.RawSetString("lanes", lua.LNumber(req.Lanes))
	t.RawSetString("roll", lua.LNumber(req.Roll))
	t.RawSetString("lane_roll", lua.LNumber(req.LaneRoll))
	types := e.vm.NewTable()
	for _, c := range req.Types {
		ct := e.vm.NewTable()
		ct.RawSetString("id", lua.LString(c.ID))
		ct.RawSetString("weight", lua.LNumber(c.Weight))
		types.Append(ct)
	}
	t.RawSetString("types", types)

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		return spawn.Choice{}, fmt.Errorf("pick_spawn: %w", err)
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		return spawn.Choice{}, fmt.Errorf("pick_spawn returned %s, want table", result.Type())
	}
	choice := spawn.Choice{
		TypeID: lStr(rt, "type"),
		Lane:   lInt(rt, "lane") - 1,
	}
	if choice.Lane < 0 || choice.Lane >= req.Lanes {
		return spawn.Choice{}, fmt.Errorf("pick_spawn lane %d outside 1..%d", choice.Lane+1, req.Lanes)
	}
	for _, c := range req.Types {
		if c.ID == choice.TypeID {
			return choice, nil
		}
	}
	return spawn.Choice{}, fmt.Errorf("pick_spawn chose unknown type %q", choice.TypeID)
}

// lInt reads an integer field from a Lua table.
func lInt(t *lua.LTable, key string) int {
	return int(lua.LVAsNumber(t.RawGetString(key)))
}

// lStr reads a string field from a Lua table.
func lStr(t *lua.LTable, key string) string {
	return lua.LVAsString(t.RawGetString(key))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
