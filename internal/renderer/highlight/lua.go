package highlight

import (
	"context"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/textstore/internal/renderer/core"
)

// DefaultLuaTimeout bounds a single call of a Lua resolve function.
const DefaultLuaTimeout = 100 * time.Millisecond

// LuaResolver styles captures with a Lua script. The script defines a global
// function
//
//	function resolve(capture)
//	  if capture == "keyword" then
//	    return { fg = "#569cd6", bold = true }
//	  end
//	  return nil
//	end
//
// Returning nil leaves the capture unstyled. The table may set fg, bg,
// attrs (a list of attribute names) and the boolean attributes bold, dim,
// italic, underline, blink, reverse and strikethrough. Results are cached per
// capture name.
//
// The script runs with the base, table, string and math libraries only.
type LuaResolver struct {
	mu      sync.Mutex
	L       *lua.LState
	fn      *lua.LFunction
	timeout time.Duration
	cache   map[string]luaResult
	closed  bool
}

type luaResult struct {
	style core.Style
	ok    bool
}

// NewLuaResolver runs script and returns a resolver calling its resolve
// function.
func NewLuaResolver(script string) (*LuaResolver, error) {
	return newLuaResolver(func(L *lua.LState) error { return L.DoString(script) })
}

// LoadLuaResolver runs the script file at path.
func LoadLuaResolver(path string) (*LuaResolver, error) {
	r, err := newLuaResolver(func(L *lua.LState) error { return L.DoFile(path) })
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

func newLuaResolver(load func(*lua.LState) error) (*LuaResolver, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}

	if err := load(L); err != nil {
		L.Close()
		return nil, fmt.Errorf("lua resolver: %w", err)
	}
	fn, ok := L.GetGlobal("resolve").(*lua.LFunction)
	if !ok {
		L.Close()
		return nil, ErrNoResolveFunction
	}
	return &LuaResolver{
		L:       L,
		fn:      fn,
		timeout: DefaultLuaTimeout,
		cache:   make(map[string]luaResult),
	}, nil
}

// SetTimeout changes the per-call time limit.
func (r *LuaResolver) SetTimeout(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timeout = d
}

// Resolve implements AttributeResolver. Script errors leave the capture
// unstyled.
func (r *LuaResolver) Resolve(capture string) (core.Style, bool) {
	style, ok, _ := r.Call(capture)
	return style, ok
}

// Call runs the resolve function for capture and reports script errors.
func (r *LuaResolver) Call(capture string) (core.Style, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return core.Style{}, false, fmt.Errorf("lua resolver closed")
	}
	if res, ok := r.cache[capture]; ok {
		return res.style, res.ok, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	r.L.SetContext(ctx)
	defer r.L.RemoveContext()

	err := r.L.CallByParam(lua.P{Fn: r.fn, NRet: 1, Protect: true}, lua.LString(capture))
	if err != nil {
		return core.Style{}, false, fmt.Errorf("lua resolve %q: %w", capture, err)
	}
	ret := r.L.Get(-1)
	r.L.Pop(1)

	var res luaResult
	switch v := ret.(type) {
	case *lua.LNilType:
	case lua.LBool:
		// false means unstyled; true means the default style.
		res = luaResult{style: core.DefaultStyle(), ok: bool(v)}
	case *lua.LTable:
		style, err := styleFromTable(v)
		if err != nil {
			return core.Style{}, false, fmt.Errorf("lua resolve %q: %w", capture, err)
		}
		res = luaResult{style: style, ok: true}
	default:
		return core.Style{}, false, fmt.Errorf("lua resolve %q: unexpected %s result", capture, ret.Type())
	}
	r.cache[capture] = res
	return res.style, res.ok, nil
}

func styleFromTable(t *lua.LTable) (core.Style, error) {
	style := core.DefaultStyle()
	var err error
	if fg, ok := t.RawGetString("fg").(lua.LString); ok {
		if style.Foreground, err = core.ParseColor(string(fg)); err != nil {
			return style, err
		}
	}
	if bg, ok := t.RawGetString("bg").(lua.LString); ok {
		if style.Background, err = core.ParseColor(string(bg)); err != nil {
			return style, err
		}
	}

	var names []string
	if list, ok := t.RawGetString("attrs").(*lua.LTable); ok {
		list.ForEach(func(_, v lua.LValue) {
			names = append(names, v.String())
		})
	}
	for _, name := range []string{"bold", "dim", "italic", "underline", "blink", "reverse", "strikethrough"} {
		if lua.LVAsBool(t.RawGetString(name)) {
			names = append(names, name)
		}
	}
	if style.Attributes, err = core.ParseAttributes(names...); err != nil {
		return style, err
	}
	return style, nil
}

// Close releases the Lua state.
func (r *LuaResolver) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.closed {
		r.closed = true
		r.L.Close()
	}
}
