package main

import (
	"github.com/spf13/cobra"
)

func newDumpCmd(a *app) *cobra.Command {
	var composite bool
	cmd := &cobra.Command{
		Use:   "dump <scene.yaml>",
		Short: "Print the layer tree of a scene.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, doc, err := a.loadScene(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if composite {
				doc.Update(nil)
			}
			return doc.Tree().Dump(cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&composite, "compositing", true, "update compositing and show reasons")
	return cmd
}
