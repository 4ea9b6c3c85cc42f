// Package highlight turns parser capture spans into positioned, styled
// ranges.
//
// A capture span is a byte range tagged with a name such as "keyword" or
// "string.escape". The Mapper converts both ends to line/column positions
// through the line index and asks an AttributeResolver for the display
// style of the capture. Spans the resolver rejects are dropped.
//
// Resolvers:
//
//   - Theme: capture names to styles, with dotted-name fallback
//   - ResolverFunc: any function
//   - Chain: the first resolver that knows a capture wins
//   - LuaResolver: a Lua script deciding styles
//   - Swappable: a resolver that can be replaced while in use, which is
//     what ThemeWatcher does when a theme file changes on disk
//
// Themes can be loaded from TOML files:
//
//	name = "Night"
//	extends = "Default Dark"
//	foreground = "#d4d4d4"
//
//	[styles]
//	keyword = { fg = "#569cd6", attrs = ["bold"] }
//	"string.escape" = { fg = "#d7ba7d" }
package highlight
