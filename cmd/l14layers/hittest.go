package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newHitTestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hittest <scene.yaml> [x y]",
		Short: "Hit test a point, or run the scene's hit checks.",
		Long: "With a point, prints the box hit there. Without one, runs every hit check\n" +
			"listed in the scene and fails if any check finds an unexpected box.",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 && len(args) != 3 {
				return fmt.Errorf("accepts a scene and an optional x y pair, received %d args", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, doc, err := a.loadScene(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 3 {
				x, err := strconv.ParseFloat(args[1], 64)
				if err != nil {
					return fmt.Errorf("x: %w", err)
				}
				y, err := strconv.ParseFloat(args[2], 64)
				if err != nil {
					return fmt.Errorf("y: %w", err)
				}
				box, r, ok := doc.HitTest(x, y)
				if !ok {
					fmt.Fprintln(out, "no hit")
					return nil
				}
				fmt.Fprintf(out, "%s layer=%s local=(%g,%g) phase=%s\n",
					box.DebugName(), doc.BoxForLayer(r.Layer).DebugName(), r.Local.X, r.Local.Y, r.Phase)
				return nil
			}

			failed := 0
			for _, res := range s.RunHitChecks(doc) {
				fmt.Fprintln(out, res)
				if !res.OK() {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d hit checks failed", failed, len(s.Hits))
			}
			return nil
		},
	}
}
