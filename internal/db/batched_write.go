package db

import (
	"go.uber.org/zap"

	"citrine/internal/common"
)

// maxBatchSize caps how many queued writes are folded into one WAL
// fsync.
const maxBatchSize = 128

// writeRequest is one pending mutation waiting for the writer loop.
// Seq is zero until the writer assigns it.
type writeRequest struct {
	entry *common.Entry
	done  chan error
}

// writerLoop is the single goroutine that orders all mutations. It
// drains queued requests into a batch, assigns sequence numbers, makes
// the batch durable with one fsync, applies it to the memtable, and
// then answers every waiter. Group commit amortizes the fsync across
// concurrent writers.
func (d *dbImpl) writerLoop() {
	defer d.writerDone.Done()

	for {
		select {
		case <-d.closeChan:
			return
		case first := <-d.writeChan:
			batch := d.drainBatch(first)
			d.commitBatch(batch)
		}
	}
}

// drainBatch greedily collects whatever else is already queued, up to
// maxBatchSize requests.
func (d *dbImpl) drainBatch(first *writeRequest) []*writeRequest {
	batch := []*writeRequest{first}
	for len(batch) < maxBatchSize {
		select {
		case req := <-d.writeChan:
			batch = append(batch, req)
		default:
			return batch
		}
	}
	return batch
}

func (d *dbImpl) commitBatch(batch []*writeRequest) {
	d.mu.Lock()

	entries := make([]*common.Entry, len(batch))
	for i, req := range batch {
		d.lastSeq++
		req.entry.Seq = d.lastSeq
		entries[i] = req.entry
	}

	err := d.wal.WriteEntries(entries)
	if err == nil {
		for _, e := range entries {
			switch e.Type {
			case common.EntryTypeDelete:
				err = d.mem.Delete(e.Seq, e.Key)
			default:
				err = d.mem.Put(e.Seq, e.Key, e.Value)
			}
			if err != nil {
				break
			}
		}
	}
	needFlush := err == nil && d.mem.Len() >= d.opts.FlushThreshold
	d.mu.Unlock()

	for _, req := range batch {
		req.done <- err
	}

	if needFlush {
		if flushErr := d.Flush(); flushErr != nil {
			common.Logger().Error("automatic flush failed", zap.Error(flushErr))
		}
	}
}
