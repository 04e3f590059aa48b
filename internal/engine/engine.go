package engine

import (
	"context"

	"github.com/mglaserna/envelope/internal/pipeline"
)

type Engine struct {
	runner *pipeline.Runner
}

func (e *Engine) Run(ctx context.Context) error {
	defer func() { _ = e.runner.Close() }()
	return e.runner.Run(ctx)
}
