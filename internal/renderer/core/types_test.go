package core

import "testing"

func TestColorDefault(t *testing.T) {
	c := ColorDefault
	if !c.IsDefault() {
		t.Error("ColorDefault should be default")
	}
	if c.String() != "default" {
		t.Errorf("String = %q, want default", c.String())
	}
}

func TestColorFromIndex(t *testing.T) {
	c := ColorFromIndex(42)

	if c.R != 42 {
		t.Errorf("expected index 42, got %d", c.R)
	}
	if !c.Indexed {
		t.Error("indexed color should have Indexed true")
	}
	if c.String() != "idx(42)" {
		t.Errorf("String = %q, want idx(42)", c.String())
	}
}

func TestColorFromHex(t *testing.T) {
	tests := []struct {
		hex     string
		r, g, b uint8
		wantErr bool
	}{
		{"#FF8040", 255, 128, 64, false},
		{"#ff8040", 255, 128, 64, false},
		{"FF8040", 255, 128, 64, false},
		{"#FFF", 255, 255, 255, false},
		{"#000", 0, 0, 0, false},
		{"invalid", 0, 0, 0, true},
		{"#GGG", 0, 0, 0, true},
	}

	for _, tt := range tests {
		c, err := ColorFromHex(tt.hex)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ColorFromHex(%q) expected error, got nil", tt.hex)
			}
			continue
		}
		if err != nil {
			t.Errorf("ColorFromHex(%q) unexpected error: %v", tt.hex, err)
			continue
		}
		if c.R != tt.r || c.G != tt.g || c.B != tt.b {
			t.Errorf("ColorFromHex(%q) = (%d,%d,%d), want (%d,%d,%d)",
				tt.hex, c.R, c.G, c.B, tt.r, tt.g, tt.b)
		}
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"", ColorDefault},
		{"Default", ColorDefault},
		{"idx(3)", ColorFromIndex(3)},
		{"200", ColorFromIndex(200)},
		{"#0000ff", ColorFromRGB(0, 0, 255)},
		{"00ff00", ColorFromRGB(0, 255, 0)},
		{"Fuchsia", ColorFromRGB(255, 0, 255)},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if err != nil {
			t.Errorf("ParseColor(%q): %v", tt.in, err)
			continue
		}
		if !got.Equals(tt.want) {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"idx(300)", "idx(x)", "#12", "nosuchcolor"} {
		if _, err := ParseColor(bad); err == nil {
			t.Errorf("ParseColor(%q) expected error", bad)
		}
	}
}

func TestParseAttributes(t *testing.T) {
	attrs, err := ParseAttributes("bold", " Italic ", "none")
	if err != nil {
		t.Fatalf("ParseAttributes: %v", err)
	}
	if !attrs.Has(AttrBold) || !attrs.Has(AttrItalic) || attrs.Has(AttrUnderline) {
		t.Errorf("attrs = %v", attrs.Names())
	}
	if _, err := ParseAttributes("sparkly"); err == nil {
		t.Error("expected error for unknown attribute")
	}
}

func TestStyleMerge(t *testing.T) {
	base := NewStyle(ColorFromRGB(1, 2, 3)).WithBackground(ColorFromIndex(4)).Bold()
	over := DefaultStyle().WithForeground(ColorFromRGB(9, 9, 9)).Italic()

	got := base.Merge(over)
	if !got.Foreground.Equals(ColorFromRGB(9, 9, 9)) {
		t.Errorf("foreground = %v", got.Foreground)
	}
	if !got.Background.Equals(ColorFromIndex(4)) {
		t.Errorf("background = %v", got.Background)
	}
	if !got.Attributes.Has(AttrBold) || !got.Attributes.Has(AttrItalic) {
		t.Errorf("attributes = %v", got.Attributes.Names())
	}
	if got.String() != "#090909 on idx(4) bold italic" {
		t.Errorf("String = %q", got.String())
	}
	if !DefaultStyle().IsDefault() || got.IsDefault() {
		t.Error("IsDefault mismatch")
	}
}
