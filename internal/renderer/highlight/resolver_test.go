package highlight

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/textstore/internal/renderer/core"
)

func TestChain(t *testing.T) {
	bold := core.DefaultStyle().Bold()
	only := func(name string, style core.Style) AttributeResolver {
		return ResolverFunc(func(capture string) (core.Style, bool) {
			return style, capture == name
		})
	}
	chain := Chain{nil, only("keyword", bold), DefaultTheme()}

	style, ok := chain.Resolve("keyword")
	require.True(t, ok)
	assert.True(t, style.Equals(bold))

	style, ok = chain.Resolve("string")
	require.True(t, ok)
	assert.True(t, style.Equals(DefaultTheme().StyleFor("string")))

	_, ok = chain.Resolve("nothing")
	assert.False(t, ok)
}

func TestSwappable(t *testing.T) {
	s := NewSwappable(DefaultTheme())
	dark, ok := s.Resolve("keyword")
	require.True(t, ok)

	s.Set(LightTheme())
	light, ok := s.Resolve("keyword")
	require.True(t, ok)
	assert.False(t, dark.Equals(light))

	s.Set(nil)
	_, ok = s.Resolve("keyword")
	assert.False(t, ok)

	var empty Swappable
	_, ok = empty.Resolve("keyword")
	assert.False(t, ok)

	// Concurrent swaps and lookups.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if i%2 == 0 {
					s.Set(MonokaiTheme())
				} else {
					s.Resolve("string")
				}
			}
		}(i)
	}
	wg.Wait()
}

const nightTheme = `
name = "Night"
extends = "Default Dark"
foreground = "#101010"

[styles]
keyword = { fg = "#ff0000", attrs = ["bold", "underline"] }
"string.escape" = { fg = "idx(3)", bg = "#000000" }
`

func TestParseTheme(t *testing.T) {
	reg := NewThemeRegistry()
	theme, err := ParseTheme(strings.NewReader(nightTheme), reg)
	require.NoError(t, err)

	assert.Equal(t, "Night", theme.Name)
	assert.Equal(t, core.ColorFromRGB(0x10, 0x10, 0x10), theme.Foreground)
	assert.Equal(t, DefaultTheme().Background, theme.Background)

	kw, ok := theme.Resolve("keyword.control")
	require.True(t, ok)
	assert.Equal(t, core.ColorFromRGB(255, 0, 0), kw.Foreground)
	assert.True(t, kw.Attributes.Has(core.AttrBold))
	assert.True(t, kw.Attributes.Has(core.AttrUnderline))

	esc, ok := theme.Resolve("string.escape")
	require.True(t, ok)
	assert.Equal(t, core.ColorFromIndex(3), esc.Foreground)
	assert.Equal(t, core.ColorFromRGB(0, 0, 0), esc.Background)

	// Inherited from the base theme.
	_, ok = theme.Resolve("comment")
	assert.True(t, ok)

	// The base theme is untouched.
	base, _ := reg.Get("Default Dark")
	baseKW, _ := base.Resolve("keyword")
	assert.NotEqual(t, kw.Foreground, baseKW.Foreground)
}

func TestParseThemeErrors(t *testing.T) {
	tests := map[string]string{
		"no name":      `foreground = "#fff"`,
		"unknown key":  "name = \"x\"\ncolour = \"red\"",
		"bad color":    "name = \"x\"\n[styles]\nkeyword = { fg = \"#zzzzzz\" }",
		"bad attr":     "name = \"x\"\n[styles]\nkeyword = { attrs = [\"sparkly\"] }",
		"unknown base": "name = \"x\"\nextends = \"Nope\"",
		"bad toml":     "name = ",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseTheme(strings.NewReader(src), NewThemeRegistry())
			assert.Error(t, err)
		})
	}

	_, err := ParseTheme(strings.NewReader("name = \"x\"\nextends = \"Nope\""), nil)
	assert.ErrorIs(t, err, ErrUnknownBaseTheme)
}

func TestRegistryLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "night.toml")
	require.NoError(t, os.WriteFile(path, []byte(nightTheme), 0o644))

	reg := NewThemeRegistry()
	theme, err := reg.LoadFile(path)
	require.NoError(t, err)
	got, ok := reg.Get("Night")
	require.True(t, ok)
	assert.Same(t, theme, got)

	_, err = reg.LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLuaResolver(t *testing.T) {
	r, err := NewLuaResolver(`
calls = 0
function resolve(capture)
  calls = calls + 1
  if capture == "keyword" then
    return { fg = "#569cd6", bold = true, attrs = { "italic" } }
  elseif capture == "plain" then
    return true
  elseif capture == "broken" then
    error("boom")
  elseif capture == "bad" then
    return 42
  end
  return nil
end
`)
	require.NoError(t, err)
	defer r.Close()

	style, ok := r.Resolve("keyword")
	require.True(t, ok)
	want, _ := core.ColorFromHex("#569cd6")
	assert.Equal(t, want, style.Foreground)
	assert.True(t, style.Attributes.Has(core.AttrBold))
	assert.True(t, style.Attributes.Has(core.AttrItalic))
	assert.True(t, style.Background.IsDefault())

	style, ok = r.Resolve("plain")
	require.True(t, ok)
	assert.True(t, style.IsDefault())

	_, ok = r.Resolve("comment")
	assert.False(t, ok)

	_, _, err = r.Call("broken")
	assert.Error(t, err)
	_, ok = r.Resolve("broken")
	assert.False(t, ok)

	_, _, err = r.Call("bad")
	assert.ErrorContains(t, err, "unexpected")

	// Results are cached per capture.
	before := r.L.GetGlobal("calls").String()
	r.Resolve("keyword")
	assert.Equal(t, before, r.L.GetGlobal("calls").String())
}

func TestLuaResolverErrors(t *testing.T) {
	_, err := NewLuaResolver(`x = 1`)
	assert.ErrorIs(t, err, ErrNoResolveFunction)

	_, err = NewLuaResolver(`function resolve(`)
	assert.Error(t, err)

	// The sandbox has no io or os.
	_, err = NewLuaResolver(`io.write("x")`)
	assert.Error(t, err)
}

func TestLuaResolverTimeout(t *testing.T) {
	r, err := NewLuaResolver(`
function resolve(capture)
  while true do end
end
`)
	require.NoError(t, err)
	defer r.Close()
	r.SetTimeout(20 * time.Millisecond)

	_, ok, err := r.Call("keyword")
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestLoadLuaResolver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "styles.lua")
	require.NoError(t, os.WriteFile(path, []byte(`function resolve(c) return { fg = "#ffffff" } end`), 0o644))

	r, err := LoadLuaResolver(path)
	require.NoError(t, err)
	defer r.Close()

	style, ok := r.Resolve("anything")
	require.True(t, ok)
	assert.Equal(t, core.ColorFromRGB(255, 255, 255), style.Foreground)

	r.Close()
	_, _, err = r.Call("other")
	assert.Error(t, err)
}

func TestThemeWatcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "live.toml")
	write := func(color string) {
		src := "name = \"Live\"\n[styles]\nkeyword = { fg = \"" + color + "\" }\n"
		require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	}
	write("#ff0000")

	reg := NewThemeRegistry()
	target := NewSwappable(nil)
	var reloads atomic.Int32
	w, err := WatchTheme(path, reg, target,
		WithReloadDelay(10*time.Millisecond),
		OnReload(func(*Theme, error) { reloads.Add(1) }))
	require.NoError(t, err)
	defer w.Close()

	style, ok := target.Resolve("keyword")
	require.True(t, ok)
	assert.Equal(t, core.ColorFromRGB(255, 0, 0), style.Foreground)

	write("#00ff00")
	require.Eventually(t, func() bool {
		style, ok := target.Resolve("keyword")
		return ok && style.Foreground == core.ColorFromRGB(0, 255, 0)
	}, 5*time.Second, 10*time.Millisecond)

	assert.Positive(t, reloads.Load())

	live, ok := reg.Get("Live")
	require.True(t, ok)
	assert.Same(t, live, target.Get())

	// A broken file keeps the previous theme.
	require.NoError(t, os.WriteFile(path, []byte("name = "), 0o644))
	_, err = w.Reload()
	assert.Error(t, err)
	style, ok = target.Resolve("keyword")
	require.True(t, ok)
	assert.Equal(t, core.ColorFromRGB(0, 255, 0), style.Foreground)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	_, err = w.Reload()
	assert.ErrorIs(t, err, ErrWatcherClosed)
}

func TestWatchThemeMissingFile(t *testing.T) {
	_, err := WatchTheme(filepath.Join(t.TempDir(), "none.toml"), nil, NewSwappable(nil))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
