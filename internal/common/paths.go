package common

import (
	"fmt"
	"path/filepath"
)

// PathManager builds file paths for all on-disk artifacts under a single
// database root directory.
type PathManager struct {
	root string
}

// NewPathManager returns a PathManager rooted at dir.
func NewPathManager(dir string) *PathManager {
	return &PathManager{root: dir}
}

// Root returns the database root directory.
func (p *PathManager) Root() string {
	return p.root
}

// WALDir returns the directory holding WAL files.
func (p *PathManager) WALDir() string {
	return filepath.Join(p.root, "wal")
}

// SSTableDir returns the directory holding SSTable level subdirectories.
func (p *PathManager) SSTableDir() string {
	return filepath.Join(p.root, "sstable")
}

// SSTablePath returns the file path for an SSTable at the given level and file number.
func (p *PathManager) SSTablePath(level int, fileNo FileNo) string {
	return filepath.Join(p.SSTableDir(), fmt.Sprintf("%d", level), fmt.Sprintf("%d.sst", fileNo))
}

// WALPath returns the file path for a WAL with the given file number.
func (p *PathManager) WALPath(fileNo FileNo) string {
	return filepath.Join(p.WALDir(), fmt.Sprintf("%d.log", fileNo))
}

// ManifestPath returns the path of the current manifest file.
func (p *PathManager) ManifestPath() string {
	return filepath.Join(p.root, "MANIFEST")
}

// ManifestTmpPath returns the scratch path used for atomic manifest rewrites.
func (p *PathManager) ManifestTmpPath() string {
	return filepath.Join(p.root, "MANIFEST.tmp")
}
