package manifest

import "citrine/internal/common"

// Manifest owns the durable version of the database. Every mutation is
// persisted atomically before it returns, so the on-disk manifest is
// always a consistent snapshot.
type Manifest interface {
	// Version returns a snapshot of the current version.
	Version() Version

	// AllocateFileNo reserves the next file number and persists the
	// bumped counter, so a number is never handed out twice even
	// across a crash.
	AllocateFileNo() (common.FileNo, error)

	// AddFile records a newly flushed SSTable and persists.
	AddFile(meta FileMetadata) error

	// SetWAL records the active WAL file and the last sequence number
	// covered by flushed SSTables, then persists. Called when the WAL
	// is rotated after a flush.
	SetWAL(fileNo common.FileNo, lastSeq uint64) error
}
