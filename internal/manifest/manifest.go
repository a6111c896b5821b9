package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"citrine/internal/common"
)

// ManifestImpl persists the version as JSON. Every mutation rewrites the
// whole file through a temp file and an atomic rename; a crash leaves
// either the old manifest or the new one, never a torn mix.
type ManifestImpl struct {
	mu      sync.Mutex
	paths   *common.PathManager
	version *Version
}

var _ Manifest = (*ManifestImpl)(nil)

// OpenManifest loads the manifest under paths, creating a fresh one for
// an empty database directory.
func OpenManifest(paths *common.PathManager) (*ManifestImpl, error) {
	m := &ManifestImpl{paths: paths}

	raw, err := os.ReadFile(paths.ManifestPath())
	switch {
	case errors.Is(err, os.ErrNotExist):
		m.version = NewVersion()
		if err := m.persistLocked(); err != nil {
			return nil, err
		}
		common.Logger().Info("created fresh manifest", zap.String("path", paths.ManifestPath()))
		return m, nil
	case err != nil:
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var v Version
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", paths.ManifestPath(), err)
	}
	m.version = &v
	common.Logger().Info("loaded manifest",
		zap.Int("files", len(v.Files)),
		zap.Uint64("last_seq", v.LastSeq))
	return m, nil
}

func (m *ManifestImpl) Version() Version {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version.clone()
}

func (m *ManifestImpl) AllocateFileNo() (common.FileNo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fileNo := m.version.NextFileNo
	m.version.NextFileNo++
	if err := m.persistLocked(); err != nil {
		m.version.NextFileNo = fileNo
		return 0, err
	}
	return fileNo, nil
}

func (m *ManifestImpl) AddFile(meta FileMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.version.Files = append(m.version.Files, meta)
	if err := m.persistLocked(); err != nil {
		m.version.Files = m.version.Files[:len(m.version.Files)-1]
		return err
	}
	return nil
}

func (m *ManifestImpl) SetWAL(fileNo common.FileNo, lastSeq uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prevFile, prevSeq := m.version.WALFileNo, m.version.LastSeq
	m.version.WALFileNo = fileNo
	m.version.LastSeq = lastSeq
	if err := m.persistLocked(); err != nil {
		m.version.WALFileNo, m.version.LastSeq = prevFile, prevSeq
		return err
	}
	return nil
}

func (m *ManifestImpl) persistLocked() error {
	raw, err := json.MarshalIndent(m.version, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	tmp := m.paths.ManifestTmpPath()
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write manifest temp: %w", err)
	}
	if err := os.Rename(tmp, m.paths.ManifestPath()); err != nil {
		return fmt.Errorf("rename manifest: %w", err)
	}
	return nil
}
