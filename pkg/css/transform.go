package css

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"paintlayer/pkg/geom"
)

// ErrInvalidTransform is wrapped by every transform parse failure.
var ErrInvalidTransform = errors.New("invalid transform")

// ParseTransform parses a transform function list such as
// "translate(10px, 0) rotateY(45deg)". Functions apply right to left, as in
// CSS. "none" yields the identity.
func ParseTransform(value string) (geom.Transform, error) {
	value = strings.TrimSpace(value)
	result := geom.Identity()
	if value == "" || value == "none" {
		return result, nil
	}
	rest := value
	for rest != "" {
		open := strings.IndexByte(rest, '(')
		closing := strings.IndexByte(rest, ')')
		if open <= 0 || closing < open {
			return geom.Transform{}, fmt.Errorf("%w: %q", ErrInvalidTransform, value)
		}
		name := strings.ToLower(strings.TrimSpace(rest[:open]))
		args := splitArgs(rest[open+1 : closing])
		fn, err := transformFunction(name, args)
		if err != nil {
			return geom.Transform{}, fmt.Errorf("%w: %s in %q: %v", ErrInvalidTransform, name, value, err)
		}
		result = result.Multiply(fn)
		rest = strings.TrimSpace(rest[closing+1:])
	}
	return result, nil
}

func splitArgs(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	out := fields[:0]
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func transformFunction(name string, args []string) (geom.Transform, error) {
	lengths := func(n, min int) ([]float64, error) {
		if len(args) < min || len(args) > n {
			return nil, fmt.Errorf("want %d to %d arguments, got %d", min, n, len(args))
		}
		out := make([]float64, n)
		for i, a := range args {
			v, ok := ParseLength(a)
			if !ok {
				return nil, fmt.Errorf("bad number %q", a)
			}
			out[i] = v
		}
		return out, nil
	}
	angle := func() (float64, error) {
		if len(args) != 1 {
			return 0, fmt.Errorf("want 1 angle, got %d", len(args))
		}
		return ParseAngle(args[0])
	}

	switch name {
	case "translate":
		v, err := lengths(2, 1)
		if err != nil {
			return geom.Transform{}, err
		}
		return geom.Translate(v[0], v[1], 0), nil
	case "translatex":
		v, err := lengths(1, 1)
		if err != nil {
			return geom.Transform{}, err
		}
		return geom.Translate(v[0], 0, 0), nil
	case "translatey":
		v, err := lengths(1, 1)
		if err != nil {
			return geom.Transform{}, err
		}
		return geom.Translate(0, v[0], 0), nil
	case "translatez":
		v, err := lengths(1, 1)
		if err != nil {
			return geom.Transform{}, err
		}
		return geom.Translate(0, 0, v[0]), nil
	case "translate3d":
		v, err := lengths(3, 3)
		if err != nil {
			return geom.Transform{}, err
		}
		return geom.Translate(v[0], v[1], v[2]), nil
	case "scale":
		v, err := lengths(2, 1)
		if err != nil {
			return geom.Transform{}, err
		}
		if len(args) == 1 {
			v[1] = v[0]
		}
		return geom.Scale(v[0], v[1], 1), nil
	case "scalex":
		v, err := lengths(1, 1)
		if err != nil {
			return geom.Transform{}, err
		}
		return geom.Scale(v[0], 1, 1), nil
	case "scaley":
		v, err := lengths(1, 1)
		if err != nil {
			return geom.Transform{}, err
		}
		return geom.Scale(1, v[0], 1), nil
	case "rotate", "rotatez":
		a, err := angle()
		if err != nil {
			return geom.Transform{}, err
		}
		return geom.RotateZ(a), nil
	case "rotatex":
		a, err := angle()
		if err != nil {
			return geom.Transform{}, err
		}
		return geom.RotateX(a), nil
	case "rotatey":
		a, err := angle()
		if err != nil {
			return geom.Transform{}, err
		}
		return geom.RotateY(a), nil
	case "perspective":
		v, err := lengths(1, 1)
		if err != nil {
			return geom.Transform{}, err
		}
		return geom.Perspective(v[0]), nil
	case "matrix":
		v, err := lengths(6, 6)
		if err != nil {
			return geom.Transform{}, err
		}
		return geom.Affine(v[0], v[1], v[2], v[3], v[4], v[5]), nil
	}
	return geom.Transform{}, fmt.Errorf("unknown function")
}

// ParseAngle parses deg, rad, grad and turn units into radians. A bare
// number is taken as degrees.
func ParseAngle(s string) (float64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	units := []struct {
		suffix string
		scale  float64
	}{
		{"grad", math.Pi / 200},
		{"deg", math.Pi / 180},
		{"rad", 1},
		{"turn", 2 * math.Pi},
	}
	scale := math.Pi / 180
	for _, u := range units {
		if strings.HasSuffix(s, u.suffix) {
			s = strings.TrimSuffix(s, u.suffix)
			scale = u.scale
			break
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad angle %q", s)
	}
	return v * scale, nil
}

// GetTransformOrigin resolves transform-origin for a box of the given size
// (default: the center).
func (s *Style) GetTransformOrigin(width, height float64) geom.Point {
	parts := strings.Fields(s.getKeyword("transform-origin", "50% 50%"))
	origin := geom.Pt(width/2, height/2)
	if len(parts) == 1 && (parts[0] == "top" || parts[0] == "bottom") {
		parts = []string{"center", parts[0]}
	}
	if len(parts) >= 1 {
		origin.X = resolveOrigin(parts[0], width, map[string]float64{"left": 0, "center": 0.5, "right": 1})
	}
	if len(parts) >= 2 {
		origin.Y = resolveOrigin(parts[1], height, map[string]float64{"top": 0, "center": 0.5, "bottom": 1})
	}
	return origin
}

func resolveOrigin(v string, extent float64, keywords map[string]float64) float64 {
	if f, ok := keywords[v]; ok {
		return f * extent
	}
	if strings.HasSuffix(v, "%") {
		if p, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64); err == nil {
			return p / 100 * extent
		}
	}
	if l, ok := ParseLength(v); ok {
		return l
	}
	return extent / 2
}

// GetTransform returns the box transform including its origin, or nil when
// transform is none. Invalid transforms are reported as errors.
func (s *Style) GetTransform(width, height float64) (*geom.Transform, error) {
	if !s.HasTransform() {
		return nil, nil
	}
	val, _ := s.Get("transform")
	t, err := ParseTransform(val)
	if err != nil {
		return nil, err
	}
	o := s.GetTransformOrigin(width, height)
	full := geom.Translate(o.X, o.Y, 0).Multiply(t).Multiply(geom.Translate(-o.X, -o.Y, 0))
	return &full, nil
}
