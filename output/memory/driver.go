// Package memory holds checkpoint rows in process memory. Useful for
// single-process runs and as the store fake in tests.
package memory

import (
	"context"
	"sync"

	"github.com/mglaserna/envelope/output"
)

type key struct {
	group     string
	topic     string
	partition int32
}

type driver struct {
	mu   sync.Mutex
	rows map[key]output.Row
}

func init() { output.Register("memory", func() output.Store { return New() }) }

func New() output.RandomStore {
	return &driver{rows: make(map[key]output.Row)}
}

func (d *driver) Configure(output.Config) error { return nil }

func (d *driver) Upsert(_ context.Context, rows []output.Row) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, r := range rows {
		d.rows[key{r.GroupID, r.Topic, r.Partition}] = r
	}
	return nil
}

func (d *driver) QueryByFilter(_ context.Context, f output.Filter) ([]output.Row, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []output.Row
	for _, r := range d.rows {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (d *driver) Close() error { return nil }
