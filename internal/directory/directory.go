// Package directory creates deployment directories and applies the ownership,
// permission and ACL policy to them, recording what it touched.
package directory

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/conn-castle/pki-deploy/internal/logger"
	"github.com/conn-castle/pki-deploy/internal/messages"
)

// ErrNotDirectory reports that a path expected to be a directory is something else.
var ErrNotDirectory = errors.New("not a directory")

// Directory applies a Policy to paths and keeps a manifest of them.
type Directory struct {
	sys     System
	policy  Policy
	log     *slog.Logger
	records []Record
	index   map[string]int
}

// New returns a Directory using sys for filesystem access.
func New(sys System, policy Policy, log *slog.Logger) *Directory {
	if sys == nil {
		sys = RealSystem{}
	}
	return &Directory{
		sys:    sys,
		policy: policy,
		log:    logger.OrDiscard(log),
		index:  make(map[string]int),
	}
}

// Policy returns the policy this Directory applies.
func (d *Directory) Policy() Policy {
	return d.policy
}

// Create makes path (and missing parents) when absent and gives it the policy
// mode and owner. An existing directory is left as is.
func (d *Directory) Create(ctx context.Context, path string) error {
	if path == "" {
		return fmt.Errorf(messages.DirectoryPathRequired)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	path = filepath.Clean(path)
	info, err := d.sys.Lstat(path)
	if err == nil && info.Mode()&fs.ModeSymlink != 0 {
		// A link to a directory counts as the directory.
		info, err = d.sys.Stat(path)
	}
	switch {
	case err == nil:
		if !info.IsDir() {
			return fmt.Errorf(messages.DirectoryNotDirectoryFmt+": %w", path, ErrNotDirectory)
		}
		d.log.Debug("Directory already exists", logger.KeyPath, path)
		d.record(path, TypeDirectory, d.policy.DirPerms, nil)
		return nil
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf(messages.FsutilStatFmt, path, err)
	}

	d.log.Debug("Creating directory", logger.KeyPath, path)
	if err := d.sys.MkdirAll(path, d.policy.DirPerms); err != nil {
		return fmt.Errorf(messages.DirectoryCreateFmt, path, err)
	}
	if err := d.sys.Chmod(path, d.policy.DirPerms); err != nil {
		return fmt.Errorf(messages.DirectoryChmodFmt, d.policy.DirPerms, path, err)
	}
	if err := d.chown(path, nil, false); err != nil {
		return err
	}
	d.record(path, TypeDirectory, d.policy.DirPerms, nil)
	return nil
}

// SetMode walks path and applies the policy: directories get DirPerms and
// DirACLs, files get FilePerms and FileACLs, and symlinks only change owner.
func (d *Directory) SetMode(ctx context.Context, path string) error {
	if path == "" {
		return fmt.Errorf(messages.DirectoryPathRequired)
	}
	path = filepath.Clean(path)
	d.log.Debug("Setting ownership and permissions", logger.KeyPath, path,
		logger.KeyUID, d.policy.UID, logger.KeyGID, d.policy.GID)

	root := path
	if info, err := d.sys.Lstat(path); err == nil && info.Mode()&fs.ModeSymlink != 0 {
		// A trailing separator makes the walk start at the link target.
		root = path + string(filepath.Separator)
	}
	err := d.sys.WalkDir(root, func(name string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		switch {
		case entry.Type()&fs.ModeSymlink != 0:
			if err := d.chown(name, info, true); err != nil {
				return err
			}
			d.record(name, TypeSymlink, d.policy.SymlinkPerms, nil)
			return nil
		case entry.IsDir():
			return d.apply(ctx, name, info, TypeDirectory, d.policy.DirPerms, d.policy.DirACLs)
		default:
			return d.apply(ctx, name, info, TypeFile, d.policy.FilePerms, d.policy.FileACLs)
		}
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf(messages.DirectoryWalkFmt, path, err)
	}
	return nil
}

func (d *Directory) apply(ctx context.Context, name string, info fs.FileInfo, kind string, mode os.FileMode, acls []string) error {
	if info.Mode().Perm() != mode.Perm() || mode&0o7000 != 0 {
		if err := d.sys.Chmod(name, mode); err != nil {
			return fmt.Errorf(messages.DirectoryChmodFmt, mode, name, err)
		}
	}
	if err := d.chown(name, info, false); err != nil {
		return err
	}
	for _, acl := range acls {
		d.log.Debug("Applying ACL", logger.KeyPath, name, logger.KeyACL, acl)
		if err := d.sys.SetFACL(ctx, name, acl); err != nil {
			return fmt.Errorf(messages.DirectoryACLFmt, acl, name, err)
		}
	}
	d.record(name, kind, mode, acls)
	return nil
}

// chown sets the policy owner on name unless info shows it already matches.
func (d *Directory) chown(name string, info fs.FileInfo, link bool) error {
	if info != nil {
		if st, ok := info.Sys().(*syscall.Stat_t); ok && int(st.Uid) == d.policy.UID && int(st.Gid) == d.policy.GID {
			return nil
		}
	}
	chown := d.sys.Chown
	if link {
		chown = d.sys.Lchown
	}
	if err := chown(name, d.policy.UID, d.policy.GID); err != nil {
		return fmt.Errorf(messages.DirectoryChownFmt, d.policy.UID, d.policy.GID, name, err)
	}
	return nil
}
