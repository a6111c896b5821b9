package wal

import "citrine/internal/common"

// WAL is the append-only durability log. Every mutation batch is written
// and fsynced here before it is applied to the memtable, so a crash can
// never lose an acknowledged write.
type WAL interface {
	// WriteEntries appends the batch and fsyncs once for the whole
	// batch. Either the entire batch becomes durable or the caller
	// gets an error.
	WriteEntries(batch []*common.Entry) error

	// Iterator replays the log from the beginning. OpenWAL truncates a
	// crash-torn tail before appending resumes, so replay of an opened
	// log always ends cleanly; Next yields io.ErrUnexpectedEOF only if
	// the file is torn while this handle holds it.
	Iterator() (common.EntryIterator, error)

	// Len returns the number of entries appended through this handle.
	// Entries recovered from disk are not counted.
	Len() int

	// Close flushes and closes the underlying file.
	Close() error
}
