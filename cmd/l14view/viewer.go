package main

import (
	"context"
	"fmt"
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"paintlayer/pkg/js"
	"paintlayer/pkg/layout"
	"paintlayer/pkg/render"
	"paintlayer/pkg/scene"
)

// sceneView shows the rendered scene at one fyne unit per scene pixel and
// reports taps in scene coordinates.
type sceneView struct {
	widget.BaseWidget
	image *canvas.Image
	onTap func(x, y float64)
}

func newSceneView(onTap func(x, y float64)) *sceneView {
	v := &sceneView{image: canvas.NewImageFromImage(nil), onTap: onTap}
	v.image.FillMode = canvas.ImageFillStretch
	v.image.ScaleMode = canvas.ImageScalePixels
	v.ExtendBaseWidget(v)
	return v
}

func (v *sceneView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.image)
}

func (v *sceneView) Tapped(e *fyne.PointEvent) {
	if v.onTap != nil {
		v.onTap(float64(e.Position.X), float64(e.Position.Y))
	}
}

func (v *sceneView) setImage(img image.Image) {
	b := img.Bounds()
	v.image.Image = img
	v.image.SetMinSize(fyne.NewSize(float32(b.Dx()), float32(b.Dy())))
	v.image.Refresh()
	v.Refresh()
}

// viewer holds the loaded scene and the widgets showing it.
type viewer struct {
	log  *zap.Logger
	opts render.Options

	path  string
	scene *scene.Scene
	doc   *layout.Document

	view   *sceneView
	status *widget.Label
	entry  *widget.Entry
}

func newViewer(log *zap.Logger, opts render.Options) *viewer {
	v := &viewer{log: log, opts: opts}
	v.view = newSceneView(v.tap)
	v.status = widget.NewLabel("Enter a scene file and press Enter")
	v.entry = widget.NewEntry()
	v.entry.SetPlaceHolder("scenes/stacking.yaml")
	v.entry.OnSubmitted = func(path string) {
		if err := v.load(path); err != nil {
			v.status.SetText("Error: " + err.Error())
		}
	}
	return v
}

// content lays out the viewer: scene path on top, toggles and status at
// the bottom, the scene in the middle.
func (v *viewer) content() fyne.CanvasObject {
	labels := widget.NewCheck("Labels", func(on bool) {
		v.opts.ShowLabels = on
		v.redraw()
	})
	labels.SetChecked(v.opts.ShowLabels)
	compositing := widget.NewCheck("Compositing", func(on bool) {
		v.opts.ShowCompositing = on
		v.redraw()
	})
	compositing.SetChecked(v.opts.ShowCompositing)
	reload := widget.NewButton("Reload", func() {
		if v.path == "" {
			return
		}
		if err := v.load(v.path); err != nil {
			v.status.SetText("Error: " + err.Error())
		}
	})

	bottom := container.NewBorder(nil, nil, container.NewHBox(labels, compositing, reload), nil, v.status)
	return container.NewBorder(v.entry, bottom, nil, nil, container.NewScroll(v.view))
}

// load reads the scene at path, runs its script and shows it.
func (v *viewer) load(path string) error {
	s, err := scene.Open(context.Background(), path)
	if err != nil {
		return err
	}
	log := v.log.With(zap.String("scene", s.Name))
	doc, err := s.Build(layout.WithLogger(log.Named("layout")))
	if err != nil {
		return err
	}
	if s.Script != "" {
		if err := js.New(doc, js.WithLogger(log.Named("script"))).Run(context.Background(), s.Name, s.Script); err != nil {
			return fmt.Errorf("run script: %w", err)
		}
	}
	v.path, v.scene, v.doc = path, s, doc
	v.entry.SetText(path)
	v.redraw()
	v.status.SetText(fmt.Sprintf("%s: %d layers", s.Name, doc.Tree().Len()))
	return nil
}

func (v *viewer) redraw() {
	if v.doc == nil {
		return
	}
	if v.opts.ShowCompositing {
		v.doc.Update(nil)
	}
	r := render.NewRenderer(int(v.scene.Width), int(v.scene.Height), v.opts)
	r.Render(v.doc)
	v.view.setImage(r.Image())
}

// tap hit tests a point and reports the box found in the status line.
func (v *viewer) tap(x, y float64) {
	if v.doc == nil {
		return
	}
	box, r, ok := v.doc.HitTest(x, y)
	if !ok {
		v.status.SetText(fmt.Sprintf("(%g, %g): nothing", x, y))
		return
	}
	owner := v.doc.BoxForLayer(r.Layer)
	v.status.SetText(fmt.Sprintf("(%g, %g): %s in layer %s, %s", x, y, box.DebugName(), owner.DebugName(), r.Phase))
	v.log.Debug("hit", zap.String("box", box.DebugName()), zap.Stringer("layer", r.Layer))
}
