// Command l14view shows a YAML scene in a window. Tapping the scene hit
// tests the point and names the box in the status line.
package main

import (
	"fmt"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"paintlayer/internal/config"
	"paintlayer/internal/observability"
	"paintlayer/pkg/render"
)

func main() {
	var cfgFile string
	v := viper.New()

	cmd := &cobra.Command{
		Use:          "l14view [scene.yaml]",
		Short:        "Show a scene and hit test it interactively.",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			observability.InitializeLogger(cfg.Logger)
			defer observability.Sync()

			a := app.New()
			w := a.NewWindow(cfg.Viewer.Title)
			w.Resize(fyne.NewSize(float32(cfg.Viewer.Width), float32(cfg.Viewer.Height)))

			vw := newViewer(observability.GetLogger().Named("viewer"),
				render.Options{ShowLabels: cfg.Render.ShowLabels, ShowCompositing: cfg.Render.ShowCompositing})
			w.SetContent(vw.content())
			if len(args) == 1 {
				if err := vw.load(args[0]); err != nil {
					vw.status.SetText("Error: " + err.Error())
				}
			}

			// Keep focus on the entry to prevent Tab freeze with no other focusable widgets
			w.Canvas().Focus(vw.entry)
			w.ShowAndRun()
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./l14.yaml)")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
