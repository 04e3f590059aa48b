// Package input drives crash-consistent offset bookkeeping for one
// consumer group and topic: resume from the checkpoint store, fetch a
// micro-batch, and after the batch's derived writes are durable, commit
// the new offsets with a read-back verification.
package input

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mglaserna/envelope/internal/logging"
	"github.com/mglaserna/envelope/internal/telemetry"
	"github.com/mglaserna/envelope/output"
	"github.com/mglaserna/envelope/source/kafka"
)

var (
	// ErrNoGroupID means offset management was requested without a
	// configured consumer group identity.
	ErrNoGroupID = errors.New("input: cannot manage offsets without a provided group_id")

	// ErrVerifyFailed means the store read back a different offset than
	// was just committed. Continuing would risk silent reprocessing or
	// loss, so the batch is fatal.
	ErrVerifyFailed = errors.New("input: failed to assert that offset ranges were stored correctly")
)

// Consumer owns the in-memory offset state for the current batch. The
// transport adapter is borrowed: the surrounding scheduler owns its
// lifecycle.
type Consumer struct {
	adapter kafka.Adapter
	store   output.RandomStore
	groupID string
	topic   string
	manage  bool
	staged  []kafka.OffsetRange
}

func New(adapter kafka.Adapter, store output.RandomStore, cfg kafka.Config) (*Consumer, error) {
	if cfg.Offsets.Manage {
		if cfg.GroupID == "" {
			return nil, ErrNoGroupID
		}
		if store == nil {
			return nil, fmt.Errorf("input: offsets.manage requires an offsets.output store")
		}
	}
	groupID := cfg.GroupID
	if groupID == "" {
		groupID = uuid.NewString()
	}
	return &Consumer{
		adapter: adapter,
		store:   store,
		groupID: groupID,
		topic:   cfg.Topic,
		manage:  cfg.Offsets.Manage,
	}, nil
}

func (c *Consumer) GroupID() string { return c.groupID }

// LastOffsets reads the committed per-partition offsets for this
// group/topic. A nil map means no checkpoint exists and the transport
// should start from its default position.
func (c *Consumer) LastOffsets(ctx context.Context) (map[int32]int64, error) {
	if !c.manage {
		return nil, nil
	}
	rows, err := c.store.QueryByFilter(ctx, output.Filter{GroupID: c.groupID, Topic: c.topic})
	if err != nil {
		return nil, fmt.Errorf("input: read last offsets: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	offsets := make(map[int32]int64, len(rows))
	for _, r := range rows {
		offsets[r.Partition] = r.Offset
	}
	return offsets, nil
}

// Fetch resumes from the last committed offsets and pulls one batch,
// staging its offset ranges before anything downstream runs.
func (c *Consumer) Fetch(ctx context.Context) (*kafka.FetchResult, error) {
	starts, err := c.LastOffsets(ctx)
	if err != nil {
		return nil, err
	}
	res, err := c.adapter.Fetch(ctx, starts)
	if err != nil {
		return nil, err
	}
	c.StageProgress(res.Ranges)
	return res, nil
}

// StageProgress captures the batch's offset ranges as soon as they are
// known; the transport may not retain them after consumption. An empty
// batch is a logged no-op, not an error.
func (c *Consumer) StageProgress(ranges []kafka.OffsetRange) {
	c.staged = ranges
	if len(ranges) == 0 {
		logging.L().Info("input: no offset ranges in batch", "group_id", c.groupID, "topic", c.topic)
		return
	}
	for _, r := range ranges {
		logging.L().Debug("input: staged offset range",
			"topic", r.Topic, "partition", r.Partition, "from", r.From, "until", r.Until)
	}
}

// CommitProgress upserts one checkpoint row per staged range and then
// reads the store back to verify the write. Invoke only after the
// batch's derived writes are durable.
func (c *Consumer) CommitProgress(ctx context.Context) error {
	staged := c.staged
	c.staged = nil
	if !c.manage || len(staged) == 0 {
		return nil
	}

	rows := make([]output.Row, len(staged))
	for i, r := range staged {
		rows[i] = output.Row{GroupID: c.groupID, Topic: r.Topic, Partition: r.Partition, Offset: r.Until}
	}
	if err := c.store.Upsert(ctx, rows); err != nil {
		return fmt.Errorf("input: commit offsets: %w", err)
	}

	stored, err := c.LastOffsets(ctx)
	if err != nil {
		return err
	}
	for _, r := range staged {
		got, ok := stored[r.Partition]
		if !ok {
			telemetry.VerifyFailures.Inc()
			return fmt.Errorf("%w: for group ID %q, topic %q, partition %d expected offset %d but found none",
				ErrVerifyFailed, c.groupID, r.Topic, r.Partition, r.Until)
		}
		if got != r.Until {
			telemetry.VerifyFailures.Inc()
			return fmt.Errorf("%w: for group ID %q, topic %q, partition %d expected offset %d but found offset %d",
				ErrVerifyFailed, c.groupID, r.Topic, r.Partition, r.Until, got)
		}
	}
	telemetry.BatchesCommitted.Inc()
	return nil
}
