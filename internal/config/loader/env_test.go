package loader

import (
	"strings"
	"testing"
)

func getByPath(data map[string]any, path string) (any, bool) {
	section, key, ok := strings.Cut(path, ".")
	if !ok {
		v, found := data[path]
		return v, found
	}
	m, isMap := data[section].(map[string]any)
	if !isMap {
		return nil, false
	}
	v, found := m[key]
	return v, found
}

func loaderWith(env ...string) *EnvLoader {
	l := NewEnvLoader(EnvPrefix)
	l.environ = func() []string { return env }
	return l
}

func TestEnvLoader_Load(t *testing.T) {
	config, err := loaderWith(
		"TEXTSTORE_LOG_LEVEL=debug",
		"TEXTSTORE_THEME=Light",
		"TEXTSTORE_STORE_MAX_UNDO=20",
		"TEXTSTORE_PARSER_RULES_FILE=/tmp/rules.yaml",
		"OTHER_VAR=x",
	).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tests := []struct {
		path string
		want any
	}{
		{"logging.level", "debug"},
		{"highlight.theme", "Light"},
		{"store.maxUndo", int64(20)},
		{"parser.rulesFile", "/tmp/rules.yaml"},
	}
	for _, tt := range tests {
		if got, ok := getByPath(config, tt.path); !ok || got != tt.want {
			t.Errorf("%s = %v (%T), want %v", tt.path, got, got, tt.want)
		}
	}
	if _, ok := config["other"]; ok {
		t.Error("unprefixed variables must be ignored")
	}
}

func TestEnvLoader_EmptyValue(t *testing.T) {
	config, _ := loaderWith("TEXTSTORE_HIGHLIGHT_THEME_FILE=").Load()
	if got, ok := getByPath(config, "highlight.themeFile"); !ok || got != "" {
		t.Errorf("highlight.themeFile = %v, %v; want empty string set", got, ok)
	}
}

func TestEnvLoader_AddMapping(t *testing.T) {
	l := loaderWith("TEXTSTORE_UNDO=7")
	l.AddMapping("TEXTSTORE_UNDO", "store.maxUndo")

	config, _ := l.Load()
	if got, _ := getByPath(config, "store.maxUndo"); got != int64(7) {
		t.Errorf("store.maxUndo = %v, want 7", got)
	}
}

func TestEnvLoader_envToPath(t *testing.T) {
	l := NewEnvLoader(EnvPrefix)

	tests := []struct {
		env      string
		expected string
	}{
		{"TEXTSTORE_HIGHLIGHT_THEME_FILE", "highlight.themeFile"},
		{"TEXTSTORE_HIGHLIGHT_LUA_RESOLVER", "highlight.luaResolver"},
		{"TEXTSTORE_PARSER_BACKEND", "parser.backend"},
		{"TEXTSTORE_SIMPLE", "simple"},
		{"TEXTSTORE_", ""},
	}
	for _, tt := range tests {
		if got := l.envToPath(tt.env); got != tt.expected {
			t.Errorf("envToPath(%q) = %q, want %q", tt.env, got, tt.expected)
		}
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"true", true},
		{"Yes", true},
		{"off", false},
		{"42", int64(42)},
		{"-3", int64(-3)},
		{"Default Dark", "Default Dark"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := parseValue(tt.in); got != tt.want {
			t.Errorf("parseValue(%q) = %v (%T), want %v", tt.in, got, got, tt.want)
		}
	}
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("TEXTSTORE_TEST_CONFIG", "/etc/textstore.toml")
	if got := GetEnvOrDefault("TEXTSTORE_TEST_CONFIG", "x"); got != "/etc/textstore.toml" {
		t.Errorf("got %q", got)
	}
	if got := GetEnvOrDefault("TEXTSTORE_TEST_UNSET", "x"); got != "x" {
		t.Errorf("got %q, want default", got)
	}
}
