package deployer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/conn-castle/pki-deploy/internal/directory"
	"github.com/conn-castle/pki-deploy/internal/fsutil"
	"github.com/conn-castle/pki-deploy/internal/messages"
)

// Manifest lists what spawn laid down for each subsystem of an instance.
type Manifest struct {
	Instance   string                       `toml:"instance"`
	Subsystems map[string]SubsystemManifest `toml:"subsystems"`
}

// SubsystemManifest is the record of one subsystem's last spawn.
type SubsystemManifest struct {
	SpawnedAt  time.Time          `toml:"spawned_at"`
	Scriptlets []string           `toml:"scriptlets"`
	Entries    []directory.Record `toml:"entry"`
}

// ReadManifest loads the manifest at path. A missing file yields an empty manifest.
func ReadManifest(path string) (*Manifest, error) {
	m := &Manifest{Subsystems: map[string]SubsystemManifest{}}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return m, nil
		}
		return nil, fmt.Errorf(messages.DeployerReadManifestFmt, path, err)
	}
	if err := toml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf(messages.DeployerDecodeManifestFmt, path, err)
	}
	if m.Subsystems == nil {
		m.Subsystems = map[string]SubsystemManifest{}
	}
	return m, nil
}

// writeManifest stores m at path, or removes the file when no subsystem remains.
func writeManifest(path string, m *Manifest, perm os.FileMode) error {
	if len(m.Subsystems) == 0 {
		return fsutil.Remove(path)
	}
	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf(messages.DeployerEncodeManifestFmt, err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf(messages.DeployerManifestDirFmt, dir, err)
	}
	if err := fsutil.WriteFileAtomic(path, data, perm); err != nil {
		return fmt.Errorf(messages.DeployerWriteManifestFmt, path, err)
	}
	return nil
}
