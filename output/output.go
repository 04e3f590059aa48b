// Package output defines the narrow contract the consumer needs from a
// keyed, filterable store: upsert rows and read them back by equality
// filter. Backends register themselves by kind; anything satisfying the
// contract can hold offset state.
package output

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUpsertUnsupported marks a configured store kind that cannot perform
// random upsert mutations. Surfaced at configure time, never at runtime.
var ErrUpsertUnsupported = errors.New("output: store does not support random upsert mutations")

// Row is one persisted checkpoint entry. Offset is the exclusive upper
// bound already consumed for the partition.
type Row struct {
	GroupID   string
	Topic     string
	Partition int32
	Offset    int64
}

// Filter is an equality predicate over the row key. A nil Partition
// matches every partition of the group/topic.
type Filter struct {
	GroupID   string
	Topic     string
	Partition *int32
}

func (f Filter) Matches(r Row) bool {
	if r.GroupID != f.GroupID || r.Topic != f.Topic {
		return false
	}
	return f.Partition == nil || *f.Partition == r.Partition
}

// Store is the minimal lifecycle every backend implements.
type Store interface {
	Configure(Config) error
	Close() error
}

// RandomStore adds keyed random mutation: an upsert of an existing
// (group, topic, partition) key overwrites the offset. No atomicity
// across rows is assumed.
type RandomStore interface {
	Store
	Upsert(ctx context.Context, rows []Row) error
	QueryByFilter(ctx context.Context, f Filter) ([]Row, error)
}

// Config is the offsets.output sub-block of the input configuration.
type Config struct {
	Kind      string      `koanf:"kind"`
	Namespace string      `koanf:"namespace"`
	Redis     RedisConfig `koanf:"redis"`
	Etcd      EtcdConfig  `koanf:"etcd"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

type EtcdConfig struct {
	Endpoints   []string      `koanf:"endpoints"`
	DialTimeout time.Duration `koanf:"dial_timeout"`
}

type Factory func() Store

var registry = map[string]Factory{}

func Register(kind string, f Factory) {
	registry[kind] = f
}

// NewRandom builds a store by kind and asserts the upsert capability
// before any row is written. A kind lacking it is a configuration error.
func NewRandom(cfg Config) (RandomStore, error) {
	f, ok := registry[cfg.Kind]
	if !ok {
		return nil, fmt.Errorf("output: unsupported store kind %q in offsets.output.kind", cfg.Kind)
	}
	s := f()
	rs, ok := s.(RandomStore)
	if !ok {
		return nil, fmt.Errorf("%w: offsets.output.kind %q", ErrUpsertUnsupported, cfg.Kind)
	}
	if err := rs.Configure(cfg); err != nil {
		return nil, err
	}
	return rs, nil
}
