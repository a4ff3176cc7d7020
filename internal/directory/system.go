package directory

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// System abstracts filesystem operations needed by the directory utility.
// This interface is package-local so tests can inject faults without shared global state.
type System interface {
	Lstat(name string) (os.FileInfo, error)
	Stat(name string) (os.FileInfo, error)
	MkdirAll(path string, perm os.FileMode) error
	Chmod(name string, mode os.FileMode) error
	Chown(name string, uid int, gid int) error
	Lchown(name string, uid int, gid int) error
	WalkDir(root string, fn fs.WalkDirFunc) error
	SetFACL(ctx context.Context, path string, acl string) error
}

// RealSystem implements System using the OS filesystem.
type RealSystem struct{}

// Lstat returns a FileInfo describing the named file without following symlinks.
func (RealSystem) Lstat(name string) (os.FileInfo, error) {
	return os.Lstat(name)
}

// Stat returns a FileInfo describing the named file, following symlinks.
func (RealSystem) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

// MkdirAll creates a directory named path, along with any necessary parents.
func (RealSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// Chmod sets the mode of name, ignoring the umask. The low twelve bits of mode
// are passed through as unix permission and special bits.
func (RealSystem) Chmod(name string, mode os.FileMode) error {
	return unix.Chmod(name, uint32(mode)&0o7777)
}

// Chown changes the numeric uid and gid of name.
func (RealSystem) Chown(name string, uid int, gid int) error {
	return unix.Chown(name, uid, gid)
}

// Lchown changes the numeric uid and gid of a symlink itself.
func (RealSystem) Lchown(name string, uid int, gid int) error {
	return unix.Lchown(name, uid, gid)
}

// WalkDir walks the file tree rooted at root.
func (RealSystem) WalkDir(root string, fn fs.WalkDirFunc) error {
	return filepath.WalkDir(root, fn)
}

// SetFACL runs setfacl to add acl to path.
func (RealSystem) SetFACL(ctx context.Context, path string, acl string) error {
	out, err := exec.CommandContext(ctx, "setfacl", "-m", acl, path).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}
