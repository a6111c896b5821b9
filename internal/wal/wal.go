package wal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"

	"citrine/internal/common"
)

// WALImpl appends entries to a single log file. One fsync per batch;
// the group-commit loop in the DB layer amortizes that cost across
// concurrent writers.
type WALImpl struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	written int
}

var _ WAL = (*WALImpl)(nil)

// CreateWAL creates a fresh log file at path, truncating any existing one.
func CreateWAL(path string) (*WALImpl, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create wal %s: %w", path, err)
	}
	return &WALImpl{path: path, file: file}, nil
}

// OpenWAL opens an existing log file for appending, creating it if
// absent. A torn tail left by a crash mid-append is truncated away
// first: appending after torn bytes would leave everything behind them
// unreachable to replay, so the file must end on an entry boundary
// before it is reused.
func OpenWAL(path string) (*WALImpl, error) {
	if err := repairTornTail(path); err != nil {
		return nil, fmt.Errorf("repair wal %s: %w", path, err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open wal %s: %w", path, err)
	}
	return &WALImpl{path: path, file: file}, nil
}

// repairTornTail truncates path to its longest cleanly decodable entry
// prefix. A missing file needs no repair.
func repairTornTail(path string) error {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer file.Close()

	cr := &countingReader{r: bufio.NewReader(file)}
	var valid int64
	for {
		entry, err := common.ReadEntry(cr)
		if err != nil {
			break
		}
		if entry == nil {
			return nil // file ends on an entry boundary
		}
		valid = cr.n
	}

	common.Logger().Warn("truncating torn wal tail",
		zap.String("path", path),
		zap.Int64("valid_bytes", valid))
	return os.Truncate(path, valid)
}

// countingReader tracks how many bytes the decoder has consumed, so the
// repair knows the offset of the last complete entry.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// WriteEntries appends the batch and fsyncs once for the whole batch.
func (w *WALImpl) WriteEntries(batch []*common.Entry) error {
	if len(batch) == 0 {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return fmt.Errorf("wal %s: %w", w.path, os.ErrClosed)
	}

	buf := bufio.NewWriter(w.file)
	for _, entry := range batch {
		if _, err := common.WriteEntry(buf, entry); err != nil {
			return fmt.Errorf("append wal entry: %w", err)
		}
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("flush wal: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("sync wal: %w", err)
	}

	w.written += len(batch)
	return nil
}

// Iterator replays the log from the beginning using a separate read
// handle, so replay never disturbs the append offset.
func (w *WALImpl) Iterator() (common.EntryIterator, error) {
	file, err := os.Open(w.path)
	if err != nil {
		return nil, fmt.Errorf("open wal for replay %s: %w", w.path, err)
	}
	return &walIterator{file: file}, nil
}

// Len returns the number of entries appended through this handle.
func (w *WALImpl) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// Close flushes and closes the log file.
func (w *WALImpl) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	if err != nil {
		return fmt.Errorf("close wal %s: %w", w.path, err)
	}
	return nil
}

// walIterator streams entries off disk and closes its file handle when
// the log is exhausted or an error ends the replay.
type walIterator struct {
	file   *os.File
	reader *bufio.Reader
	done   bool
}

func (it *walIterator) Next() (*common.Entry, error) {
	if it.done {
		return nil, nil
	}
	if it.reader == nil {
		it.reader = bufio.NewReader(it.file)
	}

	entry, err := common.ReadEntry(it.reader)
	if err != nil {
		it.close()
		if err == io.ErrUnexpectedEOF {
			common.Logger().Warn("wal truncated mid-entry, discarding tail",
				zap.String("path", it.file.Name()))
		}
		return nil, err
	}
	if entry == nil {
		it.close()
		return nil, nil
	}
	return entry, nil
}

func (it *walIterator) close() {
	if it.done {
		return
	}
	it.done = true
	_ = it.file.Close()
}
