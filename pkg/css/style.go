package css

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

type Style struct {
	Properties map[string]string
}

func NewStyle() *Style {
	return &Style{Properties: make(map[string]string)}
}

func (s *Style) Get(property string) (string, bool) {
	val, ok := s.Properties[property]
	return val, ok
}

func (s *Style) Set(property, value string) {
	s.Properties[property] = value
}

// Clone returns an independent copy of s.
func (s *Style) Clone() *Style {
	c := NewStyle()
	for k, v := range s.Properties {
		c.Properties[k] = v
	}
	return c
}

// String formats s as inline declarations, sorted by property.
func (s *Style) String() string {
	var sb strings.Builder
	for i, k := range slices.Sorted(maps.Keys(s.Properties)) {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(s.Properties[k])
	}
	return sb.String()
}

// getKeyword returns the lower-cased value of property, or def when unset.
func (s *Style) getKeyword(property, def string) string {
	if val, ok := s.Get(property); ok && val != "" {
		return strings.ToLower(strings.TrimSpace(val))
	}
	return def
}

func (s *Style) GetLength(property string) (float64, bool) {
	val, ok := s.Get(property)
	if !ok {
		return 0, false
	}
	return ParseLength(val)
}

// ParseLength parses a length value (e.g., "100px" or "100")
func ParseLength(val string) (float64, bool) {
	val = strings.TrimSpace(val)
	val = strings.TrimSuffix(val, "px")
	num, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false
	}
	return num, true
}

// getLengthOrZero returns the length value or 0 if not found
func (s *Style) getLengthOrZero(property string) float64 {
	val, ok := s.GetLength(property)
	if !ok {
		return 0
	}
	return val
}

// BoxEdge represents the four sides of a box (top, right, bottom, left)
type BoxEdge struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// GetBorderWidth returns the border width for all four sides
func (s *Style) GetBorderWidth() BoxEdge {
	return BoxEdge{
		Top:    s.getLengthOrZero("border-top-width"),
		Right:  s.getLengthOrZero("border-right-width"),
		Bottom: s.getLengthOrZero("border-bottom-width"),
		Left:   s.getLengthOrZero("border-left-width"),
	}
}

// Positioning

type PositionType string

const (
	PositionStatic   PositionType = "static"
	PositionRelative PositionType = "relative"
	PositionAbsolute PositionType = "absolute"
	PositionFixed    PositionType = "fixed"
	PositionSticky   PositionType = "sticky"
)

// GetPosition returns the position type (default: static)
func (s *Style) GetPosition() PositionType {
	switch s.getKeyword("position", "static") {
	case "relative":
		return PositionRelative
	case "absolute":
		return PositionAbsolute
	case "fixed":
		return PositionFixed
	case "sticky":
		return PositionSticky
	}
	return PositionStatic
}

// GetZIndex returns the z-index and false for auto.
func (s *Style) GetZIndex() (int, bool) {
	zindex := s.getKeyword("z-index", "auto")
	if zindex == "auto" {
		return 0, false
	}
	z, err := strconv.Atoi(zindex)
	if err != nil {
		return 0, false
	}
	return z, true
}

// GetOpacity returns the opacity clamped to [0, 1] (default: 1)
func (s *Style) GetOpacity() float64 {
	val, ok := s.Get("opacity")
	if !ok {
		return 1
	}
	val = strings.TrimSpace(val)
	scale := 1.0
	if strings.HasSuffix(val, "%") {
		val = strings.TrimSuffix(val, "%")
		scale = 0.01
	}
	o, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 1
	}
	o *= scale
	switch {
	case o < 0:
		return 0
	case o > 1:
		return 1
	}
	return o
}

// Effects

// HasTransform reports a transform other than none.
func (s *Style) HasTransform() bool {
	return s.getKeyword("transform", "none") != "none"
}

// HasFilter reports a filter other than none.
func (s *Style) HasFilter() bool {
	return s.getKeyword("filter", "none") != "none"
}

// HasClipPath reports a clip-path other than none.
func (s *Style) HasClipPath() bool {
	return s.getKeyword("clip-path", "none") != "none"
}

// GetMixBlendMode returns the mix-blend-mode keyword (default: normal)
func (s *Style) GetMixBlendMode() string {
	return s.getKeyword("mix-blend-mode", "normal")
}

// IsIsolated reports isolation: isolate.
func (s *Style) IsIsolated() bool {
	return s.getKeyword("isolation", "auto") == "isolate"
}

// PreservesThreeD reports transform-style: preserve-3d.
func (s *Style) PreservesThreeD() bool {
	return s.getKeyword("transform-style", "flat") == "preserve-3d"
}

// IsBackfaceHidden reports backface-visibility: hidden.
func (s *Style) IsBackfaceHidden() bool {
	return s.getKeyword("backface-visibility", "visible") == "hidden"
}

// GetWillChange returns the will-change property names.
func (s *Style) GetWillChange() []string {
	val := s.getKeyword("will-change", "auto")
	if val == "auto" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(val, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// WillChange reports whether will-change names property.
func (s *Style) WillChange(property string) bool {
	for _, p := range s.GetWillChange() {
		if p == property {
			return true
		}
	}
	return false
}

// Overflow and visibility

type OverflowType string

const (
	OverflowVisible OverflowType = "visible"
	OverflowHidden  OverflowType = "hidden"
	OverflowClip    OverflowType = "clip"
	OverflowScroll  OverflowType = "scroll"
	OverflowAuto    OverflowType = "auto"
)

// GetOverflow returns the overflow value (default: visible)
func (s *Style) GetOverflow() OverflowType {
	switch s.getKeyword("overflow", "visible") {
	case "hidden":
		return OverflowHidden
	case "clip":
		return OverflowClip
	case "scroll":
		return OverflowScroll
	case "auto":
		return OverflowAuto
	}
	return OverflowVisible
}

// ClipsOverflow reports whether content outside the box is clipped.
func (s *Style) ClipsOverflow() bool {
	return s.GetOverflow() != OverflowVisible
}

// IsScrollContainer reports whether the box can be scrolled.
func (s *Style) IsScrollContainer() bool {
	o := s.GetOverflow()
	return o == OverflowScroll || o == OverflowAuto
}

// IsVisibilityHidden reports visibility: hidden or collapse.
func (s *Style) IsVisibilityHidden() bool {
	v := s.getKeyword("visibility", "visible")
	return v == "hidden" || v == "collapse"
}

// GetDisplay returns the display keyword (default: block)
func (s *Style) GetDisplay() string {
	return s.getKeyword("display", "block")
}

// GetColumnCount returns column-count, or 0 when the box is not a
// multi-column container.
func (s *Style) GetColumnCount() int {
	n, err := strconv.Atoi(s.getKeyword("column-count", "auto"))
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// GetColumnGap returns column-gap in pixels (default: 0)
func (s *Style) GetColumnGap() float64 {
	return s.getLengthOrZero("column-gap")
}

// Extra hints a scene may set for replaced or animated content.

// IsAcceleratedContent reports content painted by a GPU surface, such as
// video or canvas.
func (s *Style) IsAcceleratedContent() bool {
	return s.getKeyword("-l14-accelerated", "false") == "true"
}

// HasActiveAnimation reports an animation on transform or opacity.
func (s *Style) HasActiveAnimation() bool {
	return s.getKeyword("animation-name", "none") != "none"
}

// ParseInlineStyle parses declarations such as "color: red; width: 10px".
func ParseInlineStyle(styleAttr string) *Style {
	style := NewStyle()
	declarations := strings.Split(styleAttr, ";")
	for _, decl := range declarations {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		parts := strings.SplitN(decl, ":", 2)
		if len(parts) != 2 {
			continue
		}
		property := strings.TrimSpace(strings.ToLower(parts[0]))
		value := strings.TrimSpace(parts[1])

		expandShorthand(style, property, value)
	}
	return style
}

// expandShorthand expands shorthand CSS properties into individual properties
func expandShorthand(style *Style, property, value string) {
	switch property {
	case "border":
		// border: 1px solid black -> border-width/style/color
		expandBorderProperty(style, value)
	case "columns":
		// columns: 3 -> column-count
		for _, part := range strings.Fields(value) {
			if _, err := strconv.Atoi(part); err == nil {
				style.Set("column-count", part)
			}
		}
	default:
		style.Set(property, value)
	}
}

// expandBorderProperty expands border shorthand
// Format: "1px solid black" or "2px dotted #FF0000"
func expandBorderProperty(style *Style, value string) {
	parts := strings.Fields(value)

	for _, part := range parts {
		if strings.HasSuffix(part, "px") {
			style.Set("border-width", part)
			style.Set("border-top-width", part)
			style.Set("border-right-width", part)
			style.Set("border-bottom-width", part)
			style.Set("border-left-width", part)
		} else if part == "solid" || part == "dotted" || part == "dashed" || part == "double" {
			style.Set("border-style", part)
		} else {
			style.Set("border-color", part)
		}
	}
}

type Color struct {
	R, G, B, A uint8
}

var namedColors = map[string]Color{
	"red":     {255, 0, 0, 255},
	"green":   {0, 128, 0, 255},
	"blue":    {0, 0, 255, 255},
	"yellow":  {255, 255, 0, 255},
	"cyan":    {0, 255, 255, 255},
	"magenta": {255, 0, 255, 255},
	"white":   {255, 255, 255, 255},
	"black":   {0, 0, 0, 255},
	"gray":    {128, 128, 128, 255},
	"orange":  {255, 165, 0, 255},
	"purple":  {128, 0, 128, 255},
	"pink":    {255, 192, 203, 255},
	"brown":   {165, 42, 42, 255},
	"lime":    {0, 255, 0, 255},
	"navy":    {0, 0, 128, 255},
	"teal":    {0, 128, 128, 255},
	"silver":  {192, 192, 192, 255},

	"transparent": {0, 0, 0, 0},
}

// ParseColor accepts named colors and #rgb, #rrggbb or #rrggbbaa.
func ParseColor(colorStr string) (Color, bool) {
	colorStr = strings.ToLower(strings.TrimSpace(colorStr))
	if strings.HasPrefix(colorStr, "#") {
		return parseHexColor(colorStr[1:])
	}
	color, ok := namedColors[colorStr]
	return color, ok
}

func parseHexColor(hex string) (Color, bool) {
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return Color{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, false
	}
	return Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, true
}

// GetColor returns the color of property, or def when unset or invalid.
func (s *Style) GetColor(property string, def Color) Color {
	if colorStr, ok := s.Get(property); ok {
		if color, ok := ParseColor(colorStr); ok {
			return color
		}
	}
	return def
}

// GetBackgroundColor returns background-color (default: transparent)
func (s *Style) GetBackgroundColor() Color {
	bg := s.GetColor("background", Color{})
	return s.GetColor("background-color", bg)
}
