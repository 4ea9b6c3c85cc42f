// Package config loads the settings of the textstore tool.
//
// Settings come from three layers, later ones overriding earlier ones:
//
//  1. Built-in defaults (Default)
//  2. A TOML file, which may pull in others with @include
//  3. TEXTSTORE_* environment variables
//
// A file looks like:
//
//	[logging]
//	level = "debug"
//
//	[highlight]
//	theme = "Monokai"
//	themeFile = "$HOME/.config/textstore/theme.toml"
//	deferred = true
//
//	[parser]
//	backend = "rules"
//	grammar = "go"
//
//	[store]
//	maxUndo = 500
//
// Environment variables map by name: TEXTSTORE_PARSER_RULES_FILE sets
// parser.rulesFile. The short forms TEXTSTORE_LOG_LEVEL, TEXTSTORE_THEME,
// TEXTSTORE_BACKEND and TEXTSTORE_GRAMMAR are also accepted.
package config
