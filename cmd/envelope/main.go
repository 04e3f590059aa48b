package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/mglaserna/envelope/internal/engine"
	"github.com/mglaserna/envelope/internal/logging"
	"github.com/mglaserna/envelope/source/kafka"
)

func main() {
	pipelineYml := flag.String("pipeline", "pipeline.yml", "path to the pipeline spec")
	metricsPort := flag.Int("metrics-port", 9100, "prometheus metrics port")
	flag.Parse()

	logging.InitFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	kafka.Register("sarama", func() kafka.Adapter { return &kafka.SaramaDriver{} })

	e, err := engine.Bootstrap(engine.Config{
		PipelineYml: *pipelineYml,
		MetricsPort: *metricsPort,
	})
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	if err := e.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("engine: %v", err)
	}
}
