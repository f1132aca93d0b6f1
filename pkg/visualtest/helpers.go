package visualtest

import (
	"context"
	"fmt"
	"image"

	"paintlayer/pkg/js"
	"paintlayer/pkg/render"
	"paintlayer/pkg/scene"
)

// RenderScene builds s, runs its script and renders it with opts.
func RenderScene(ctx context.Context, s *scene.Scene, opts render.Options) (image.Image, error) {
	doc, err := s.Build()
	if err != nil {
		return nil, err
	}
	if s.Script != "" {
		if err := js.New(doc).Run(ctx, s.Name, s.Script); err != nil {
			return nil, fmt.Errorf("run script: %w", err)
		}
	}
	if opts.ShowCompositing {
		doc.Update(nil)
	}
	r := render.NewRenderer(int(s.Width), int(s.Height), opts)
	r.Render(doc)
	return r.Image(), nil
}

// RenderSceneFile loads and renders the scene at path.
func RenderSceneFile(ctx context.Context, path string, opts render.Options) (image.Image, error) {
	s, err := scene.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return RenderScene(ctx, s, opts)
}

// CompareScenes renders the scene at path and the scene it names as its
// match, then compares the two images.
func CompareScenes(ctx context.Context, path string, opts CompareOptions) (*CompareResult, error) {
	s, err := scene.LoadFile(path)
	if err != nil {
		return nil, err
	}
	ref := s.MatchPath()
	if ref == "" {
		return nil, fmt.Errorf("%s: no match scene", path)
	}
	actual, err := RenderScene(ctx, s, render.Options{})
	if err != nil {
		return nil, fmt.Errorf("render test: %w", err)
	}
	expected, err := RenderSceneFile(ctx, ref, render.Options{})
	if err != nil {
		return nil, fmt.Errorf("render reference: %w", err)
	}
	return Compare(actual, expected, opts)
}
