// Command l14layers loads YAML scenes and inspects their layer trees: it
// dumps the tree, runs hit tests and renders PNGs.
package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"paintlayer/internal/observability"
)

func main() {
	root, _ := newRootCmd()
	err := root.ExecuteContext(context.Background())
	observability.Sync()
	if err != nil {
		if logger := observability.GetLogger(); logger.Core().Enabled(zap.ErrorLevel) {
			logger.Error("command failed", zap.Error(err))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
