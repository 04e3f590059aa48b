package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mglaserna/envelope/internal/input"
	"github.com/mglaserna/envelope/internal/logging"
	"github.com/mglaserna/envelope/internal/row"
	"github.com/mglaserna/envelope/internal/rule"
	"github.com/mglaserna/envelope/internal/telemetry"
	"github.com/mglaserna/envelope/internal/translate"
	"github.com/mglaserna/envelope/output"
	"github.com/mglaserna/envelope/source/kafka"
)

// ProcessFunc receives the batch's valid rows and returns once their
// derived writes are durable. Offsets are committed only after it returns
// nil. The execution engine behind it is not this package's concern.
type ProcessFunc func(context.Context, []*row.Row) error

// Runner drives one micro-batch at a time: fetch, decode, validate,
// process, commit. It owns the source adapter and offset store it was
// compiled with; the consumer only borrows them.
type Runner struct {
	source     kafka.Adapter
	consumer   *input.Consumer
	translator translate.Translator
	rules      []rule.RowRule
	process    ProcessFunc
	store      output.RandomStore

	encoding kafka.Encoding
	interval time.Duration
}

func NewRunner() *Runner {
	return &Runner{
		process:  func(context.Context, []*row.Row) error { return nil },
		interval: 5 * time.Second,
	}
}

func (r *Runner) SetSource(s kafka.Adapter, enc kafka.Encoding) { r.source, r.encoding = s, enc }
func (r *Runner) SetConsumer(c *input.Consumer)                 { r.consumer = c }
func (r *Runner) SetTranslator(t translate.Translator)          { r.translator = t }
func (r *Runner) AddRule(rr rule.RowRule)                       { r.rules = append(r.rules, rr) }
func (r *Runner) SetProcess(fn ProcessFunc)                     { r.process = fn }
func (r *Runner) SetStore(s output.RandomStore)                 { r.store = s }
func (r *Runner) SetInterval(d time.Duration)                   { r.interval = d }

// RunBatch executes one pull→decode→commit cycle. Any error aborts the
// batch without committing; retry policy belongs to the caller.
func (r *Runner) RunBatch(ctx context.Context) error {
	if r.consumer == nil {
		return errors.New("runner: no consumer configured")
	}
	res, err := r.consumer.Fetch(ctx)
	if err != nil {
		return err
	}
	telemetry.RecordsConsumed.Add(float64(len(res.Records)))

	valid := make([]*row.Row, 0, len(res.Records))
	for _, rec := range res.Records {
		rw, err := r.translator.Translate(r.key(rec), r.value(rec))
		if err != nil {
			return fmt.Errorf("runner: %s[%d]@%d: %w", rec.Topic, rec.Partition, rec.Offset, err)
		}
		ok, err := r.validate(rw, rec)
		if err != nil {
			return err
		}
		if ok {
			valid = append(valid, rw)
		}
	}

	if len(valid) > 0 {
		if err := r.process(ctx, valid); err != nil {
			return fmt.Errorf("runner: process batch: %w", err)
		}
	}
	return r.consumer.CommitProgress(ctx)
}

func (r *Runner) validate(rw *row.Row, rec kafka.Record) (bool, error) {
	for _, rr := range r.rules {
		verdict, err := rr.Check(rw)
		if err != nil {
			return false, fmt.Errorf("runner: %s[%d]@%d: %w", rec.Topic, rec.Partition, rec.Offset, err)
		}
		if !verdict.Pass {
			telemetry.RecordsInvalid.Inc()
			logging.L().Warn("runner: record failed rule",
				"rule", verdict.Rule, "fields", verdict.Failed,
				"topic", rec.Topic, "partition", rec.Partition, "offset", rec.Offset)
			return false, nil
		}
	}
	return true, nil
}

func (r *Runner) key(rec kafka.Record) any {
	if rec.Key == nil {
		return nil
	}
	if r.encoding == kafka.EncodingString {
		return string(rec.Key)
	}
	return rec.Key
}

func (r *Runner) value(rec kafka.Record) any {
	if r.encoding == kafka.EncodingString {
		return string(rec.Value)
	}
	return rec.Value
}

// Run executes batches back to back on the configured interval until the
// context is canceled or a batch fails.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		if err := r.RunBatch(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (r *Runner) Close() error {
	if r.source != nil {
		_ = r.source.Close()
	}
	if r.store != nil {
		_ = r.store.Close()
	}
	return nil
}
