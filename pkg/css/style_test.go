package css

import "testing"

func TestParseInlineStyle_SingleProperty(t *testing.T) {
	style := ParseInlineStyle("color: red")
	value, ok := style.Get("color")
	if !ok || value != "red" {
		t.Error("expected color='red'")
	}
}

func TestParseInlineStyle_MultipleProperties(t *testing.T) {
	style := ParseInlineStyle("color: red; width: 100px")
	color, _ := style.Get("color")
	width, _ := style.Get("width")
	if color != "red" || width != "100px" {
		t.Error("expected both properties to parse")
	}
}

func TestGetLength_PixelValue(t *testing.T) {
	style := ParseInlineStyle("width: 100px")
	width, ok := style.GetLength("width")
	if !ok || width != 100.0 {
		t.Errorf("expected width=100.0, got %f", width)
	}
}

func TestParseColor_BasicColors(t *testing.T) {
	tests := map[string]Color{
		"red":         {255, 0, 0, 255},
		"blue":        {0, 0, 255, 255},
		"green":       {0, 128, 0, 255},
		"transparent": {0, 0, 0, 0},
		"#f00":        {255, 0, 0, 255},
		"#336699":     {0x33, 0x66, 0x99, 255},
		"#33669980":   {0x33, 0x66, 0x99, 0x80},
	}
	for name, expected := range tests {
		color, ok := ParseColor(name)
		if !ok || color != expected {
			t.Errorf("color %s: expected %+v, got %+v", name, expected, color)
		}
	}
	if _, ok := ParseColor("#12345"); ok {
		t.Error("expected a five digit hex color to be rejected")
	}
}

func TestParseInlineStyle_BorderShorthand(t *testing.T) {
	style := ParseInlineStyle("border: 2px solid black")
	border := style.GetBorderWidth()
	if border.Top != 2 || border.Left != 2 {
		t.Errorf("expected 2px borders, got %+v", border)
	}
	if c := style.GetColor("border-color", Color{}); c != (Color{0, 0, 0, 255}) {
		t.Errorf("expected black border, got %+v", c)
	}
}

func TestGetPosition(t *testing.T) {
	tests := map[string]PositionType{
		"":                 PositionStatic,
		"position: fixed":  PositionFixed,
		"position: Sticky": PositionSticky,
		"position: bogus":  PositionStatic,
	}
	for decl, expected := range tests {
		if got := ParseInlineStyle(decl).GetPosition(); got != expected {
			t.Errorf("%q: expected %s, got %s", decl, expected, got)
		}
	}
}

func TestGetZIndex(t *testing.T) {
	if _, ok := ParseInlineStyle("").GetZIndex(); ok {
		t.Error("expected auto when unset")
	}
	if z, ok := ParseInlineStyle("z-index: -3").GetZIndex(); !ok || z != -3 {
		t.Errorf("expected -3, got %d (%v)", z, ok)
	}
	if _, ok := ParseInlineStyle("z-index: auto").GetZIndex(); ok {
		t.Error("expected auto")
	}
}

func TestGetOpacity(t *testing.T) {
	tests := map[string]float64{
		"":              1,
		"opacity: 0.5":  0.5,
		"opacity: 50%":  0.5,
		"opacity: 7":    1,
		"opacity: -1":   0,
		"opacity: junk": 1,
	}
	for decl, expected := range tests {
		if got := ParseInlineStyle(decl).GetOpacity(); got != expected {
			t.Errorf("%q: expected %v, got %v", decl, expected, got)
		}
	}
}

func TestEffectKeywords(t *testing.T) {
	s := ParseInlineStyle("transform: rotate(10deg); filter: blur(2px); clip-path: circle(10px); " +
		"mix-blend-mode: multiply; isolation: isolate; transform-style: preserve-3d; " +
		"backface-visibility: hidden; will-change: transform, opacity; overflow: scroll; visibility: collapse")

	checks := map[string]bool{
		"transform":   s.HasTransform(),
		"filter":      s.HasFilter(),
		"clip-path":   s.HasClipPath(),
		"isolation":   s.IsIsolated(),
		"preserve-3d": s.PreservesThreeD(),
		"backface":    s.IsBackfaceHidden(),
		"will-change": s.WillChange("opacity") && s.WillChange("transform"),
		"clips":       s.ClipsOverflow(),
		"scrolls":     s.IsScrollContainer(),
		"hidden":      s.IsVisibilityHidden(),
	}
	for name, ok := range checks {
		if !ok {
			t.Errorf("expected %s to be detected", name)
		}
	}
	if s.GetMixBlendMode() != "multiply" {
		t.Errorf("expected multiply, got %q", s.GetMixBlendMode())
	}

	plain := NewStyle()
	if plain.HasTransform() || plain.ClipsOverflow() || plain.WillChange("transform") || plain.IsVisibilityHidden() {
		t.Error("expected an empty style to have no effects")
	}
}

func TestOverflowHiddenDoesNotScroll(t *testing.T) {
	s := ParseInlineStyle("overflow: hidden")
	if !s.ClipsOverflow() || s.IsScrollContainer() {
		t.Error("expected overflow hidden to clip without scrolling")
	}
}

func TestColumns(t *testing.T) {
	s := ParseInlineStyle("columns: 3; column-gap: 12px")
	if s.GetColumnCount() != 3 {
		t.Errorf("expected 3 columns, got %d", s.GetColumnCount())
	}
	if s.GetColumnGap() != 12 {
		t.Errorf("expected gap 12, got %v", s.GetColumnGap())
	}
	if NewStyle().GetColumnCount() != 0 {
		t.Error("expected no columns by default")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := ParseInlineStyle("color: red")
	c := s.Clone()
	c.Set("color", "blue")
	if v, _ := s.Get("color"); v != "red" {
		t.Errorf("expected original to keep red, got %q", v)
	}
}
