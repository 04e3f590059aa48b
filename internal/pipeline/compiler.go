package pipeline

import (
	"fmt"
	"time"

	"github.com/mglaserna/envelope/internal/config"
	"github.com/mglaserna/envelope/internal/input"
	"github.com/mglaserna/envelope/internal/rule"
	"github.com/mglaserna/envelope/internal/translate"
	"github.com/mglaserna/envelope/output"
	"github.com/mglaserna/envelope/source/kafka"

	// Offset store backends register themselves by kind.
	_ "github.com/mglaserna/envelope/output/etcd"
	_ "github.com/mglaserna/envelope/output/memory"
	_ "github.com/mglaserna/envelope/output/redis"
)

// Compile wires a Runner from a pipeline YAML: source driver, offset
// store, consumer, translator, and rules. Every configuration mistake
// surfaces here, before the first record is fetched.
func Compile(path string) (*Runner, error) {
	r := NewRunner()
	if err := LoadYAML(path, r); err != nil {
		return nil, err
	}
	return r, nil
}

func LoadYAML(path string, r *Runner) error {
	cfg, confPath, err := config.LoadPipelineSpec(path)
	if err != nil {
		return err
	}

	if cfg.Source.Kind != "kafka" {
		return fmt.Errorf("unsupported source %q", cfg.Source.Kind)
	}
	kc, err := config.LoadKafkaConfig(confPath)
	if err != nil {
		return err
	}

	src, err := kafka.NewAdapter(cfg.Source.Driver)
	if err != nil {
		return err
	}
	if err = src.Configure(kc); err != nil {
		return err
	}
	r.SetSource(src, kc.Encoding)
	r.SetInterval(time.Duration(kc.BatchMilliseconds) * time.Millisecond)

	var store output.RandomStore
	if kc.Offsets.Manage {
		if store, err = output.NewRandom(kc.Offsets.Output); err != nil {
			return err
		}
		r.SetStore(store)
	}

	consumer, err := input.New(src, store, kc)
	if err != nil {
		return err
	}
	r.SetConsumer(consumer)

	tr, err := translate.New(cfg.Translator)
	if err != nil {
		return err
	}
	r.SetTranslator(tr)

	for _, rc := range cfg.Rules {
		rr, err := rule.New(rc)
		if err != nil {
			return err
		}
		r.AddRule(rr)
	}
	return nil
}
