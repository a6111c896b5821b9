package db

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"citrine/internal/block_cache"
	"citrine/internal/common"
	"citrine/internal/manifest"
	"citrine/internal/memtable"
	"citrine/internal/props"
	"citrine/internal/sstable"
	"citrine/internal/wal"
)

// ErrClosed is returned by operations on a closed database.
var ErrClosed = errors.New("db: closed")

type dbImpl struct {
	opts  Options
	paths *common.PathManager
	man   *manifest.ManifestImpl
	cache block_cache.BlockCache

	// mu guards the mutable engine state below.
	mu      sync.RWMutex
	mem     memtable.Memtable
	tables  []sstable.SSTable // oldest first
	wal     *wal.WALImpl
	lastSeq uint64

	// flushMu serializes flushes so the WAL rotation and the memtable
	// swap stay atomic with respect to each other.
	flushMu sync.Mutex

	writeChan  chan *writeRequest
	closeChan  chan struct{}
	writerDone sync.WaitGroup
	closeOnce  sync.Once
	closed     bool
}

var _ DB = (*dbImpl)(nil)

// Open opens the database in dir, creating it if absent and replaying
// any WAL tail left by a previous run.
func Open(dir string, options ...Option) (DB, error) {
	opts := DefaultOptions()
	for _, apply := range options {
		apply(&opts)
	}
	if opts.Logger != nil {
		common.SetLogger(opts.Logger)
	}

	paths := common.NewPathManager(dir)
	for _, p := range []string{paths.Root(), paths.WALDir(), paths.SSTableDir()} {
		if err := os.MkdirAll(p, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory %s: %w", p, err)
		}
	}

	man, err := manifest.OpenManifest(paths)
	if err != nil {
		return nil, err
	}

	d := &dbImpl{
		opts:      opts,
		paths:     paths,
		man:       man,
		cache:     block_cache.NewLRUCache(opts.BlockCacheCapacity),
		mem:       opts.NewMemtable(),
		writeChan: make(chan *writeRequest, maxBatchSize),
		closeChan: make(chan struct{}),
	}

	version := man.Version()
	d.lastSeq = version.LastSeq
	for _, meta := range version.Files {
		table, err := sstable.NewSSTable(paths.SSTablePath(meta.Level, meta.FileNo), meta.FileNo, d.cache)
		if err != nil {
			d.closeTables()
			return nil, err
		}
		d.tables = append(d.tables, table)
	}

	if err := d.openAndReplayWAL(version.WALFileNo); err != nil {
		if d.wal != nil {
			d.wal.Close()
		}
		d.closeTables()
		return nil, err
	}

	d.writerDone.Add(1)
	go d.writerLoop()

	common.Logger().Info("database opened",
		zap.String("dir", dir),
		zap.Int("tables", len(d.tables)),
		zap.Uint64("last_seq", d.lastSeq),
		zap.Int("collectors", len(opts.PropertyCollectors)))
	return d, nil
}

// openAndReplayWAL opens the active log and re-applies its tail to the
// memtable. Entries at or below the manifest's LastSeq are already in
// SSTables and are skipped.
func (d *dbImpl) openAndReplayWAL(fileNo common.FileNo) error {
	w, err := wal.OpenWAL(d.paths.WALPath(fileNo))
	if err != nil {
		return err
	}
	d.wal = w

	iter, err := w.Iterator()
	if err != nil {
		return err
	}

	flushedSeq := d.lastSeq
	replayed := 0
	for {
		entry, err := iter.Next()
		if errors.Is(err, io.ErrUnexpectedEOF) {
			break // torn tail from a crash, already logged by the WAL
		}
		if err != nil {
			return fmt.Errorf("replay wal: %w", err)
		}
		if entry == nil {
			break
		}
		if entry.Seq <= flushedSeq {
			continue
		}
		if err := d.applyToMemtable(entry); err != nil {
			return fmt.Errorf("replay wal entry: %w", err)
		}
		if entry.Seq > d.lastSeq {
			d.lastSeq = entry.Seq
		}
		replayed++
	}
	if replayed > 0 {
		common.Logger().Info("replayed wal tail", zap.Int("entries", replayed))
	}
	return nil
}

func (d *dbImpl) applyToMemtable(e *common.Entry) error {
	if e.Type == common.EntryTypeDelete {
		return d.mem.Delete(e.Seq, e.Key)
	}
	return d.mem.Put(e.Seq, e.Key, e.Value)
}

func (d *dbImpl) Put(key, value []byte) error {
	return d.write(&common.Entry{
		Type:  common.EntryTypePut,
		Key:   append([]byte(nil), key...),
		Value: append([]byte(nil), value...),
	})
}

func (d *dbImpl) Delete(key []byte) error {
	return d.write(&common.Entry{
		Type: common.EntryTypeDelete,
		Key:  append([]byte(nil), key...),
	})
}

func (d *dbImpl) write(entry *common.Entry) error {
	req := &writeRequest{entry: entry, done: make(chan error, 1)}
	select {
	case d.writeChan <- req:
	case <-d.closeChan:
		return ErrClosed
	}
	select {
	case err := <-req.done:
		return err
	case <-d.closeChan:
		return ErrClosed
	}
}

func (d *dbImpl) Get(key []byte) ([]byte, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return nil, false, ErrClosed
	}

	// Values are copied out on every path: the entries alias memtable
	// or block cache storage, which callers must not be able to mutate.
	if entry, ok := d.mem.Get(key); ok {
		if entry.Type == common.EntryTypeDelete {
			return nil, false, nil
		}
		return append([]byte(nil), entry.Value...), true, nil
	}

	// Newest table first; the first hit wins.
	for i := len(d.tables) - 1; i >= 0; i-- {
		entry, ok, err := d.tables[i].Get(key)
		if err != nil {
			return nil, false, err
		}
		if ok {
			if entry.Type == common.EntryTypeDelete {
				return nil, false, nil
			}
			return append([]byte(nil), entry.Value...), true, nil
		}
	}
	return nil, false, nil
}

// Flush writes the current memtable to a new L0 SSTable, feeding every
// entry through the configured property collectors, then rotates the
// WAL and installs a fresh memtable.
func (d *dbImpl) Flush() error {
	d.flushMu.Lock()
	defer d.flushMu.Unlock()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	if d.mem.Len() == 0 {
		return nil
	}

	entries, err := drainIterator(d.mem.Iterator())
	if err != nil {
		return fmt.Errorf("flush: drain memtable: %w", err)
	}

	collectors, err := createCollectors(d.opts.PropertyCollectors)
	if err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	fileNo, err := d.man.AllocateFileNo()
	if err != nil {
		destroyCollectors(collectors)
		return fmt.Errorf("flush: %w", err)
	}

	result, err := d.writeTableFile(fileNo, entries, collectors)
	if err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	table, err := sstable.NewSSTable(d.paths.SSTablePath(0, fileNo), fileNo, d.cache)
	if err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	if err := d.man.AddFile(manifest.FileMetadata{
		FileNo:      fileNo,
		Level:       0,
		Size:        uint64(result.BytesWritten),
		SmallestKey: result.SmallestKey,
		LargestKey:  result.LargestKey,
		EntryCount:  result.EntryCount,
		NeedCompact: result.NeedCompact,
	}); err != nil {
		table.Close()
		return fmt.Errorf("flush: %w", err)
	}
	d.tables = append(d.tables, table)

	if err := d.rotateWAL(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	d.mem = d.opts.NewMemtable()

	common.Logger().Info("flushed memtable",
		zap.Uint64("file_no", uint64(fileNo)),
		zap.Uint64("entries", result.EntryCount),
		zap.Int("bytes", result.BytesWritten),
		zap.Bool("need_compact", result.NeedCompact))
	return nil
}

// writeTableFile builds the SSTable on disk. The builder owns the
// dispatch tables from here on.
func (d *dbImpl) writeTableFile(fileNo common.FileNo, entries []*common.Entry, collectors []props.Table) (*sstable.WriteResult, error) {
	path := d.paths.SSTablePath(0, fileNo)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		destroyCollectors(collectors)
		return nil, fmt.Errorf("create sstable level dir: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		destroyCollectors(collectors)
		return nil, fmt.Errorf("create sstable %s: %w", path, err)
	}

	result, err := sstable.WriteSSTable(file, entries, collectors)
	if err != nil {
		file.Close()
		os.Remove(path)
		return nil, err
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return nil, fmt.Errorf("sync sstable %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("close sstable %s: %w", path, err)
	}
	return result, nil
}

// rotateWAL starts a fresh log and retires the old one. Everything in
// the old log is now durable in an SSTable.
func (d *dbImpl) rotateWAL() error {
	oldNo := d.man.Version().WALFileNo

	walNo, err := d.man.AllocateFileNo()
	if err != nil {
		return err
	}
	newWAL, err := wal.CreateWAL(d.paths.WALPath(walNo))
	if err != nil {
		return err
	}
	if err := d.man.SetWAL(walNo, d.lastSeq); err != nil {
		newWAL.Close()
		return err
	}

	old := d.wal
	d.wal = newWAL
	if err := old.Close(); err != nil {
		common.Logger().Warn("close retired wal", zap.Error(err))
	}
	if err := os.Remove(d.paths.WALPath(oldNo)); err != nil {
		common.Logger().Warn("remove retired wal", zap.Error(err))
	}
	return nil
}

func (d *dbImpl) TablesNeedingCompact() []manifest.FileMetadata {
	version := d.man.Version()
	return version.FilesNeedingCompact()
}

func (d *dbImpl) Close() error {
	var firstErr error
	d.closeOnce.Do(func() {
		close(d.closeChan)
		d.writerDone.Wait()

		d.mu.Lock()
		defer d.mu.Unlock()
		d.closed = true

		if err := d.wal.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		for _, t := range d.tables {
			if err := t.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		d.tables = nil
		common.Logger().Info("database closed")
	})
	return firstErr
}

func (d *dbImpl) closeTables() {
	for _, t := range d.tables {
		t.Close()
	}
	d.tables = nil
}

func drainIterator(iter common.EntryIterator) ([]*common.Entry, error) {
	var entries []*common.Entry
	for {
		entry, err := iter.Next()
		if err != nil {
			return nil, err
		}
		if entry == nil {
			return entries, nil
		}
		entries = append(entries, entry)
	}
}

// createCollectors runs every factory. If one fails, the tables already
// created are destroyed before the error is returned.
func createCollectors(factories []props.Factory) ([]props.Table, error) {
	collectors := make([]props.Table, 0, len(factories))
	for _, factory := range factories {
		table, err := factory()
		if err != nil {
			destroyCollectors(collectors)
			return nil, fmt.Errorf("create property collector: %w", err)
		}
		collectors = append(collectors, table)
	}
	return collectors, nil
}

func destroyCollectors(collectors []props.Table) {
	for _, t := range collectors {
		t.Destroy(t.Handle)
	}
}
