// Package scene loads YAML scene files into layout documents.
//
// A scene gives a viewport, optional stylesheets, a box tree with explicit
// geometry, an optional script and a list of hit checks:
//
//	width: 300
//	height: 200
//	stylesheet: |
//	  .card { background: white; border-width: 1px }
//	boxes:
//	  - id: card
//	    class: [card]
//	    style: "position: relative; z-index: 1"
//	    rect: [10, 10, 100, 60]
//	    text: hello
//	hits:
//	  - at: [20, 20]
//	    expect: card
package scene

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"paintlayer/pkg/css"
	"paintlayer/pkg/layout"
	"paintlayer/pkg/resource"
)

// ErrInvalidScene is returned for scenes that parse but cannot be built.
var ErrInvalidScene = errors.New("invalid scene")

// Scene is the decoded form of a scene file.
type Scene struct {
	Name   string  `yaml:"name"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`

	// Stylesheet is inline CSS. Stylesheets lists further files, resolved
	// relative to the scene file.
	Stylesheet  string   `yaml:"stylesheet"`
	Stylesheets []string `yaml:"stylesheets"`

	Boxes  []BoxSpec  `yaml:"boxes"`
	Script string     `yaml:"script"`
	Hits   []HitCheck `yaml:"hits"`

	// Match names a reference scene, relative to this one, that must
	// render to the same pixels.
	Match string `yaml:"match"`

	base string
}

// MatchPath resolves Match against the scene's location. It returns ""
// when the scene has no reference.
func (s *Scene) MatchPath() string {
	if s.Match == "" {
		return ""
	}
	return resource.NewFetcher(s.base).Resolve(s.Match)
}

// BoxSpec describes one box and its subtree.
type BoxSpec struct {
	Tag      string    `yaml:"tag"`
	ID       string    `yaml:"id"`
	Class    []string  `yaml:"class"`
	Style    string    `yaml:"style"`
	Rect     []float64 `yaml:"rect"`
	Text     string    `yaml:"text"`
	Children []BoxSpec `yaml:"children"`
}

// HitCheck is a hit test with an expected box id. An empty Expect means the
// point should hit nothing but the root.
type HitCheck struct {
	At     []float64 `yaml:"at"`
	Expect string    `yaml:"expect"`
}

// Point returns the point to hit test.
func (p HitCheck) Point() (x, y float64) {
	return p.At[0], p.At[1]
}

// Load decodes a scene. Unknown keys are rejected.
func Load(r io.Reader) (*Scene, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var s Scene
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty scene", ErrInvalidScene)
		}
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadFile reads and decodes the scene at path.
func LoadFile(path string) (*Scene, error) {
	return Open(context.Background(), path)
}

// Open reads and decodes the scene at uri, a local path or an http(s)
// URL. Stylesheets and match scenes resolve relative to it.
func Open(ctx context.Context, uri string) (*Scene, error) {
	data, _, err := resource.NewFetcher("").Fetch(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	s, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", uri, err)
	}
	s.base = resource.Dir(uri)
	if s.Name == "" {
		s.Name = baseName(uri)
	}
	return s, nil
}

func baseName(uri string) string {
	if resource.IsNetworkURL(uri) {
		if u, err := url.Parse(uri); err == nil {
			return path.Base(u.Path)
		}
	}
	return filepath.Base(uri)
}

func (s *Scene) validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: viewport %vx%v", ErrInvalidScene, s.Width, s.Height)
	}
	var check func(path string, specs []BoxSpec) error
	check = func(path string, specs []BoxSpec) error {
		for i, b := range specs {
			at := fmt.Sprintf("%s[%d]", path, i)
			if len(b.Rect) != 0 && len(b.Rect) != 4 {
				return fmt.Errorf("%w: %s: rect needs 4 numbers, got %d", ErrInvalidScene, at, len(b.Rect))
			}
			if err := check(at+".children", b.Children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := check("boxes", s.Boxes); err != nil {
		return err
	}
	for i, p := range s.Hits {
		if len(p.At) != 2 {
			return fmt.Errorf("%w: hits[%d]: at needs 2 numbers, got %d", ErrInvalidScene, i, len(p.At))
		}
	}
	return nil
}

// Build creates a document holding the scene's boxes.
func (s *Scene) Build(opts ...layout.Option) (*layout.Document, error) {
	sheets, err := s.stylesheets()
	if err != nil {
		return nil, err
	}
	opts = append(opts, layout.WithStylesheets(sheets...))
	doc := layout.NewDocument(s.Width, s.Height, opts...)
	for _, spec := range s.Boxes {
		if err := doc.AppendChild(doc.Root, spec.box()); err != nil {
			return nil, fmt.Errorf("build scene: %w", err)
		}
	}
	return doc, nil
}

func (s *Scene) stylesheets() ([]*css.Stylesheet, error) {
	var sheets []*css.Stylesheet
	fetcher := resource.NewFetcher(s.base)
	for _, name := range s.Stylesheets {
		data, err := fetcher.FetchCSS(context.Background(), name)
		if err != nil {
			return nil, fmt.Errorf("read stylesheet: %w", err)
		}
		sheet, err := css.ParseStylesheet(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		sheets = append(sheets, sheet)
	}
	if s.Stylesheet != "" {
		sheet, err := css.ParseStylesheet(s.Stylesheet)
		if err != nil {
			return nil, fmt.Errorf("inline stylesheet: %w", err)
		}
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}

// box builds the detached subtree for spec.
func (spec BoxSpec) box() *layout.Box {
	tag := spec.Tag
	if tag == "" {
		tag = "div"
	}
	b := layout.NewBox(tag, spec.ID, spec.Class...)
	b.SetInlineStyle(spec.Style)
	if len(spec.Rect) == 4 {
		b.X, b.Y, b.Width, b.Height = spec.Rect[0], spec.Rect[1], spec.Rect[2], spec.Rect[3]
	}
	b.Text = spec.Text
	for _, c := range spec.Children {
		child := c.box()
		child.Parent = b
		b.Children = append(b.Children, child)
	}
	return b
}
