// Package redis backs the checkpoint store with a redis hash per
// group/topic: field = partition, value = offset. HSET gives the upsert
// semantics the contract requires.
package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/mglaserna/envelope/output"
)

type driver struct {
	cl *redis.Client
	ns string
}

func init() { output.Register("redis", func() output.Store { return &driver{} }) }

func (d *driver) Configure(cfg output.Config) error {
	if cfg.Redis.Addr == "" {
		return fmt.Errorf("redis store: offsets.output.redis.addr is required")
	}
	d.ns = cfg.Namespace
	if d.ns == "" {
		d.ns = "envelope:offsets"
	}
	d.cl = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return nil
}

func (d *driver) hashKey(group, topic string) string {
	return d.ns + ":" + group + ":" + topic
}

func (d *driver) Upsert(ctx context.Context, rows []output.Row) error {
	pipe := d.cl.Pipeline()
	for _, r := range rows {
		pipe.HSet(ctx, d.hashKey(r.GroupID, r.Topic),
			strconv.FormatInt(int64(r.Partition), 10), strconv.FormatInt(r.Offset, 10))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis store: upsert: %w", err)
	}
	return nil
}

func (d *driver) QueryByFilter(ctx context.Context, f output.Filter) ([]output.Row, error) {
	fields, err := d.cl.HGetAll(ctx, d.hashKey(f.GroupID, f.Topic)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis store: query: %w", err)
	}
	var out []output.Row
	for field, val := range fields {
		p, err := strconv.ParseInt(field, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("redis store: bad partition field %q: %w", field, err)
		}
		off, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("redis store: bad offset %q: %w", val, err)
		}
		r := output.Row{GroupID: f.GroupID, Topic: f.Topic, Partition: int32(p), Offset: off}
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (d *driver) Close() error { return d.cl.Close() }
