package manifest

import "citrine/internal/common"

// FileMetadata describes one live SSTable. SmallestKey and LargestKey
// bound the file's key range; EntryCount and NeedCompact come from the
// build summary.
type FileMetadata struct {
	FileNo      common.FileNo `json:"file_no"`
	Level       int           `json:"level"`
	Size        uint64        `json:"size"`
	SmallestKey []byte        `json:"smallest_key"`
	LargestKey  []byte        `json:"largest_key"`
	EntryCount  uint64        `json:"entry_count"`

	// NeedCompact marks files that a property collector flagged for
	// recompaction at build time.
	NeedCompact bool `json:"need_compact,omitempty"`
}

// Version is the durable state of the database: the live file set plus
// the counters needed to resume after a restart.
type Version struct {
	NextFileNo common.FileNo  `json:"next_file_no"`
	WALFileNo  common.FileNo  `json:"wal_file_no"`
	LastSeq    uint64         `json:"last_seq"`
	Files      []FileMetadata `json:"files"`
}

// NewVersion returns the initial version of an empty database.
func NewVersion() *Version {
	return &Version{NextFileNo: 1, WALFileNo: 1}
}

// FilesNeedingCompact returns the metadata of every file flagged for
// recompaction, newest first.
func (v *Version) FilesNeedingCompact() []FileMetadata {
	var flagged []FileMetadata
	for i := len(v.Files) - 1; i >= 0; i-- {
		if v.Files[i].NeedCompact {
			flagged = append(flagged, v.Files[i])
		}
	}
	return flagged
}

// clone returns a deep enough copy for handing out snapshots; key bounds
// are immutable once recorded, so the byte slices are shared.
func (v *Version) clone() Version {
	out := *v
	out.Files = make([]FileMetadata, len(v.Files))
	copy(out.Files, v.Files)
	return out
}
