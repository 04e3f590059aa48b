// Package etcd backs the checkpoint store with one etcd key per
// group/topic/partition. Put overwrites by key, which is all the upsert
// contract needs; no transaction spans rows.
package etcd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/mglaserna/envelope/output"
)

type driver struct {
	cl *clientv3.Client
	ns string
}

func init() { output.Register("etcd", func() output.Store { return &driver{} }) }

func (d *driver) Configure(cfg output.Config) error {
	if len(cfg.Etcd.Endpoints) == 0 {
		return fmt.Errorf("etcd store: offsets.output.etcd.endpoints is required")
	}
	d.ns = cfg.Namespace
	if d.ns == "" {
		d.ns = "/envelope/offsets"
	}
	timeout := cfg.Etcd.DialTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	cl, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Etcd.Endpoints,
		DialTimeout: timeout,
	})
	if err != nil {
		return fmt.Errorf("etcd store: %w", err)
	}
	d.cl = cl
	return nil
}

func (d *driver) prefix(group, topic string) string {
	return d.ns + "/" + group + "/" + topic + "/"
}

func (d *driver) Upsert(ctx context.Context, rows []output.Row) error {
	for _, r := range rows {
		key := d.prefix(r.GroupID, r.Topic) + strconv.FormatInt(int64(r.Partition), 10)
		if _, err := d.cl.Put(ctx, key, strconv.FormatInt(r.Offset, 10)); err != nil {
			return fmt.Errorf("etcd store: upsert %s: %w", key, err)
		}
	}
	return nil
}

func (d *driver) QueryByFilter(ctx context.Context, f output.Filter) ([]output.Row, error) {
	prefix := d.prefix(f.GroupID, f.Topic)
	resp, err := d.cl.Get(ctx, prefix, clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("etcd store: query %s: %w", prefix, err)
	}
	var out []output.Row
	for _, kv := range resp.Kvs {
		p, err := strconv.ParseInt(strings.TrimPrefix(string(kv.Key), prefix), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("etcd store: bad partition key %q: %w", kv.Key, err)
		}
		off, err := strconv.ParseInt(string(kv.Value), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("etcd store: bad offset %q: %w", kv.Value, err)
		}
		r := output.Row{GroupID: f.GroupID, Topic: f.Topic, Partition: int32(p), Offset: off}
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (d *driver) Close() error { return d.cl.Close() }
