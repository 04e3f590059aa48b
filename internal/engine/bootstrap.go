package engine

import (
	"fmt"

	"github.com/mglaserna/envelope/internal/pipeline"
	"github.com/mglaserna/envelope/internal/telemetry"
)

type Config struct {
	PipelineYml string
	MetricsPort int
}

func Bootstrap(cfg Config) (*Engine, error) {
	runner, err := pipeline.Compile(cfg.PipelineYml)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	telemetry.Expose(cfg.MetricsPort)

	return &Engine{runner: runner}, nil
}
