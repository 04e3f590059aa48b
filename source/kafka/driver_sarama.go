package kafka

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"github.com/mglaserna/envelope/internal/logging"
)

// SaramaDriver fetches micro-batches with a sarama client and plain
// partition consumers. Consumer groups are deliberately not used: resume
// must be able to seed explicit per-partition offsets from the checkpoint
// store, which group subscription cannot do.
type SaramaDriver struct {
	cfg  Config
	cl   sarama.Client
	cons sarama.Consumer
}

func (d *SaramaDriver) Configure(config Config) error {
	d.cfg = config

	if !config.Encoding.Valid() {
		return fmt.Errorf("kafka: invalid encoding %q (valid types are 'string' and 'bytearray')", config.Encoding)
	}

	ver, err := sarama.ParseKafkaVersion(config.Version)
	if err != nil {
		return err
	}
	sc := sarama.NewConfig()
	sc.Version = ver
	sc.Consumer.Return.Errors = true
	if config.TLSEn {
		sc.Net.TLS.Enable = true
	}
	if config.SASLUser != "" {
		sc.Net.SASL.Enable = true
		sc.Net.SASL.User, sc.Net.SASL.Password = config.SASLUser, config.SASLPass
	}
	if err := applyParameters(sc, config.Parameters); err != nil {
		return err
	}

	if d.cl, err = sarama.NewClient(config.Brokers, sc); err != nil {
		return err
	}
	d.cons, err = sarama.NewConsumerFromClient(d.cl)
	return err
}

func (d *SaramaDriver) Close() error {
	if d.cons != nil {
		_ = d.cons.Close()
	}
	if d.cl != nil {
		_ = d.cl.Close()
	}
	return nil
}

// Fetch pulls at most one batch window of records per partition, starting
// at the explicit offsets when given and at the configured default
// position otherwise. Partitions drain concurrently; a partition that
// errors mid-fetch contributes neither records nor a committable range.
func (d *SaramaDriver) Fetch(ctx context.Context, startOffsets map[int32]int64) (*FetchResult, error) {
	partitions, err := d.cl.Partitions(d.cfg.Topic)
	if err != nil {
		return nil, fmt.Errorf("kafka: partitions for %q: %w", d.cfg.Topic, err)
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		result   FetchResult
		fatalErr error
	)
	for _, p := range partitions {
		// A partition with no committed row starts at the default position.
		var start int64
		var explicit bool
		if startOffsets != nil {
			start, explicit = startOffsets[p]
		}
		wg.Add(1)
		go func(p int32, start int64, explicit bool) {
			defer wg.Done()
			records, rng, err := d.fetchPartition(ctx, p, start, explicit)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil && fatalErr == nil:
				fatalErr = err
			case err == nil && rng != nil:
				result.Records = append(result.Records, records...)
				result.Ranges = append(result.Ranges, *rng)
			}
		}(p, start, explicit)
	}
	wg.Wait()

	if fatalErr != nil {
		return nil, fatalErr
	}
	sort.Slice(result.Ranges, func(i, j int) bool {
		return result.Ranges[i].Partition < result.Ranges[j].Partition
	})
	return &result, nil
}

// fetchPartition drains one partition up to the high-water mark observed
// at batch start, bounded by max_records and the fetch window. A nil
// range with a nil error means the partition ended uncleanly and must be
// re-fetched next batch.
func (d *SaramaDriver) fetchPartition(ctx context.Context, p int32, start int64, explicit bool) ([]Record, *OffsetRange, error) {
	newest, err := d.cl.GetOffset(d.cfg.Topic, p, sarama.OffsetNewest)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka: high-water mark for %s[%d]: %w", d.cfg.Topic, p, err)
	}

	from := start
	if !explicit {
		if d.cfg.StartFrom == "oldest" {
			if from, err = d.cl.GetOffset(d.cfg.Topic, p, sarama.OffsetOldest); err != nil {
				return nil, nil, fmt.Errorf("kafka: oldest offset for %s[%d]: %w", d.cfg.Topic, p, err)
			}
		} else {
			from = newest
		}
	}

	if from >= newest {
		return nil, &OffsetRange{Topic: d.cfg.Topic, Partition: p, From: from, Until: from}, nil
	}

	target := newest
	if d.cfg.MaxRecords > 0 && from+int64(d.cfg.MaxRecords) < target {
		target = from + int64(d.cfg.MaxRecords)
	}

	pc, err := d.cons.ConsumePartition(d.cfg.Topic, p, from)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka: consume %s[%d] at %d: %w", d.cfg.Topic, p, from, err)
	}
	defer pc.Close()

	timer := time.NewTimer(d.cfg.FetchWindow())
	defer timer.Stop()

	var records []Record
	next := from
	for next < target {
		select {
		case msg := <-pc.Messages():
			records = append(records, Record{
				Key:       msg.Key,
				Value:     msg.Value,
				Topic:     msg.Topic,
				Partition: msg.Partition,
				Offset:    msg.Offset,
			})
			next = msg.Offset + 1
		case cerr := <-pc.Errors():
			logging.L().Error("kafka: partition fetch failed, discarding partial range",
				"topic", d.cfg.Topic, "partition", p, "err", cerr)
			return nil, nil, nil
		case <-timer.C:
			// Window elapsed: commit what was consumed cleanly so far.
			return records, &OffsetRange{Topic: d.cfg.Topic, Partition: p, From: from, Until: next}, nil
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
	}
	return records, &OffsetRange{Topic: d.cfg.Topic, Partition: p, From: from, Until: next}, nil
}

// applyParameters maps `parameter.`-prefixed passthrough settings onto
// the sarama client config. Unknown keys are logged and skipped rather
// than failing the pipeline.
func applyParameters(sc *sarama.Config, params map[string]string) error {
	for key, val := range params {
		switch key {
		case "client.id":
			sc.ClientID = val
		case "fetch.min.bytes":
			n, err := strconv.ParseInt(val, 10, 32)
			if err != nil {
				return fmt.Errorf("kafka: parameter.%s: %w", key, err)
			}
			sc.Consumer.Fetch.Min = int32(n)
		case "fetch.max.bytes":
			n, err := strconv.ParseInt(val, 10, 32)
			if err != nil {
				return fmt.Errorf("kafka: parameter.%s: %w", key, err)
			}
			sc.Consumer.Fetch.Max = int32(n)
		case "fetch.max.wait.ms":
			n, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return fmt.Errorf("kafka: parameter.%s: %w", key, err)
			}
			sc.Consumer.MaxWaitTime = time.Duration(n) * time.Millisecond
		default:
			logging.L().Warn("kafka: ignoring unsupported passthrough parameter", "parameter", key)
		}
	}
	return nil
}
