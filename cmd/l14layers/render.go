package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"paintlayer/pkg/render"
	"paintlayer/pkg/visualtest"
)

// errMismatch reports scenes that differ from their reference PNG.
var errMismatch = errors.New("scene differs from reference")

func newRenderCmd(a *app, v *viper.Viper) *cobra.Command {
	var update bool
	cmd := &cobra.Command{
		Use:   "render <scene.yaml>...",
		Short: "Render scenes to PNG files.",
		Long: "Each scene is rendered to <output-dir>/<scene>.png. Scenes render\n" +
			"concurrently, each with its own document.\n\n" +
			"With --reference-dir each image is compared to <reference-dir>/<scene>.png\n" +
			"and a <scene>-diff.png is written next to any image that differs.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc := a.cfg.Render
			if err := os.MkdirAll(rc.OutputDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			opts := render.Options{ShowLabels: rc.ShowLabels, ShowCompositing: rc.ShowCompositing}

			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(rc.Concurrency)
			outputs := make([]string, len(args))
			for i, path := range args {
				g.Go(func() error {
					s, doc, err := a.loadScene(ctx, path)
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					if opts.ShowCompositing {
						doc.Update(nil)
					}
					r := render.NewRenderer(int(s.Width), int(s.Height), opts)
					r.Render(doc)

					name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".png"
					out := filepath.Join(rc.OutputDir, name)
					if err := r.SavePNG(out); err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					a.logger.Info("rendered scene", zap.String("scene", s.Name), zap.String("output", out))
					outputs[i] = out
					if rc.ReferenceDir == "" {
						return nil
					}
					return a.checkReference(r, rc.ReferenceDir, name, out, rc.Tolerance, update)
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			for _, out := range outputs {
				fmt.Fprintln(cmd.OutOrStdout(), out)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringP("output-dir", "o", "", "directory for PNG files")
	flags.Bool("labels", false, "draw layer names")
	flags.Bool("compositing", false, "outline composited layers")
	flags.IntP("jobs", "j", 0, "scenes to render at once")
	flags.String("reference-dir", "", "compare against reference PNGs in this directory")
	flags.Int("tolerance", 0, "allowed difference per color channel when comparing")
	flags.BoolVar(&update, "update-references", false, "write missing or differing references instead of failing")
	_ = v.BindPFlag("render.output_dir", flags.Lookup("output-dir"))
	_ = v.BindPFlag("render.show_labels", flags.Lookup("labels"))
	_ = v.BindPFlag("render.show_compositing", flags.Lookup("compositing"))
	_ = v.BindPFlag("render.concurrency", flags.Lookup("jobs"))
	_ = v.BindPFlag("render.reference_dir", flags.Lookup("reference-dir"))
	_ = v.BindPFlag("render.tolerance", flags.Lookup("tolerance"))
	return cmd
}

// checkReference compares the rendered image with its reference. With
// update set a missing or differing reference is overwritten instead.
func (a *app) checkReference(r *render.Renderer, dir, name, out string, tolerance int, update bool) error {
	ref := filepath.Join(dir, name)
	log := a.logger.With(zap.String("reference", ref))

	opts := visualtest.DefaultOptions()
	opts.Tolerance = tolerance
	opts.WantDiff = true
	result, err := visualtest.CompareFile(r.Image(), ref, opts)
	switch {
	case err != nil && !update:
		return fmt.Errorf("%s: %w", name, err)
	case err == nil && result.Match:
		log.Debug("reference matches", zap.Int("max_difference", result.MaxDifference))
		return nil
	case update:
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create reference dir: %w", err)
		}
		log.Info("updating reference")
		return r.SavePNG(ref)
	}

	diff := strings.TrimSuffix(out, ".png") + "-diff.png"
	if err := visualtest.SavePNG(result.Diff, diff); err != nil {
		return fmt.Errorf("save diff: %w", err)
	}
	log.Warn("reference mismatch",
		zap.Int("different_pixels", result.DifferentPixels),
		zap.Int("total_pixels", result.TotalPixels),
		zap.String("diff", diff))
	return fmt.Errorf("%s: %w: %d of %d pixels, see %s",
		name, errMismatch, result.DifferentPixels, result.TotalPixels, diff)
}
