package directory

import (
	"fmt"
	"os"
	"path/filepath"
)

// Record types.
const (
	TypeDirectory = "directory"
	TypeFile      = "file"
	TypeSymlink   = "link"
)

// Record describes one filesystem object the Directory created or re-moded.
type Record struct {
	Name  string   `toml:"name"`
	Type  string   `toml:"type"`
	User  string   `toml:"user,omitempty"`
	Group string   `toml:"group,omitempty"`
	UID   int      `toml:"uid"`
	GID   int      `toml:"gid"`
	Mode  string   `toml:"mode"`
	ACLs  []string `toml:"acls,omitempty"`
}

// Records returns the manifest entries in the order their paths were first seen.
func (d *Directory) Records() []Record {
	out := make([]Record, len(d.records))
	copy(out, d.records)
	return out
}

// record adds or replaces the entry for name.
func (d *Directory) record(name string, kind string, mode os.FileMode, acls []string) {
	name = filepath.Clean(name)
	r := Record{
		Name:  name,
		Type:  kind,
		User:  d.policy.User,
		Group: d.policy.Group,
		UID:   d.policy.UID,
		GID:   d.policy.GID,
		Mode:  fmt.Sprintf("%04o", uint32(mode)&0o7777),
		ACLs:  append([]string(nil), acls...),
	}
	if i, ok := d.index[name]; ok {
		d.records[i] = r
		return
	}
	d.index[name] = len(d.records)
	d.records = append(d.records, r)
}
