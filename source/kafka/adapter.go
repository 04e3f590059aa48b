package kafka

import "context"

// Record is one raw record pulled from the transport. Key and Value stay
// opaque bytes; the translator gives them shape.
type Record struct {
	Key       []byte
	Value     []byte
	Topic     string
	Partition int32
	Offset    int64
}

// OffsetRange is the span of offsets a batch consumed for one partition.
// Until is exclusive: the next fetch starts there.
type OffsetRange struct {
	Topic     string
	Partition int32
	From      int64
	Until     int64
}

// FetchResult carries one micro-batch. Ranges holds only partitions whose
// fetch completed cleanly; a partition that errored mid-fetch is absent
// and must not be committed.
type FetchResult struct {
	Records []Record
	Ranges  []OffsetRange
}

// Adapter is the transport boundary. A nil startOffsets means the
// transport's default starting position; otherwise the fetch must begin
// at exactly the given per-partition offsets.
type Adapter interface {
	Configure(Config) error
	Fetch(ctx context.Context, startOffsets map[int32]int64) (*FetchResult, error)
	Close() error
}
