package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"paintlayer/internal/config"
	"paintlayer/internal/observability"
	"paintlayer/pkg/js"
	"paintlayer/pkg/layout"
	"paintlayer/pkg/scene"
)

// app is the state shared by the subcommands once the root pre-run has
// loaded the configuration.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() (*cobra.Command, *app) {
	var cfgFile string
	a := &app{logger: zap.NewNop()}
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:           "l14layers",
		Short:         "Inspect the layer trees of YAML scenes.",
		Long:          "Inspect the layer trees of YAML scenes. A scene is a file path or an\nhttp(s) URL; its stylesheets resolve relative to it.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			a.cfg = cfg
			observability.InitializeLogger(cfg.Logger)
			a.logger = observability.GetLogger()
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default is ./l14.yaml)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	_ = v.BindPFlag("logger.level", flags.Lookup("log-level"))

	rootCmd.AddCommand(newDumpCmd(a), newHitTestCmd(a), newRenderCmd(a, v))
	return rootCmd, a
}

// loadScene builds the document of the scene at path and runs its script.
func (a *app) loadScene(ctx context.Context, path string) (*scene.Scene, *layout.Document, error) {
	s, err := scene.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	log := a.logger.With(zap.String("scene", s.Name))
	doc, err := s.Build(layout.WithLogger(log.Named("layout")))
	if err != nil {
		return nil, nil, err
	}
	if s.Script != "" {
		engine := js.New(doc, js.WithLogger(log.Named("script")))
		if err := engine.Run(ctx, s.Name, s.Script); err != nil {
			return nil, nil, fmt.Errorf("run script: %w", err)
		}
	}
	log.Debug("scene loaded", zap.Int("layers", doc.Tree().Len()))
	return s, doc, nil
}
