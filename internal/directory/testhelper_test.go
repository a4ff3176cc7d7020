package directory

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// faultSystem wraps a System for deterministic error injection and call capture.
type faultSystem struct {
	base      System
	lstatErrs map[string]error
	statErrs  map[string]error
	mkdirErrs map[string]error
	chmodErrs map[string]error
	chownErrs map[string]error
	aclErrs   map[string]error
	walkErrs  map[string]error

	mu     sync.Mutex
	acls   []string
	chowns []string
	lchown []string
	mkdirs []string
}

func newFaultSystem(base System) *faultSystem {
	return &faultSystem{
		base:      base,
		lstatErrs: map[string]error{},
		statErrs:  map[string]error{},
		mkdirErrs: map[string]error{},
		chmodErrs: map[string]error{},
		chownErrs: map[string]error{},
		aclErrs:   map[string]error{},
		walkErrs:  map[string]error{},
	}
}

func normalizePath(path string) string {
	return filepath.Clean(path)
}

func (f *faultSystem) Lstat(name string) (os.FileInfo, error) {
	if err, ok := f.lstatErrs[normalizePath(name)]; ok {
		return nil, err
	}
	return f.base.Lstat(name)
}

func (f *faultSystem) Stat(name string) (os.FileInfo, error) {
	if err, ok := f.statErrs[normalizePath(name)]; ok {
		return nil, err
	}
	return f.base.Stat(name)
}

func (f *faultSystem) MkdirAll(path string, perm os.FileMode) error {
	f.mu.Lock()
	f.mkdirs = append(f.mkdirs, normalizePath(path))
	f.mu.Unlock()
	if err, ok := f.mkdirErrs[normalizePath(path)]; ok {
		return err
	}
	return f.base.MkdirAll(path, perm)
}

func (f *faultSystem) Chmod(name string, mode os.FileMode) error {
	if err, ok := f.chmodErrs[normalizePath(name)]; ok {
		return err
	}
	return f.base.Chmod(name, mode)
}

func (f *faultSystem) Chown(name string, uid int, gid int) error {
	f.mu.Lock()
	f.chowns = append(f.chowns, normalizePath(name))
	f.mu.Unlock()
	if err, ok := f.chownErrs[normalizePath(name)]; ok {
		return err
	}
	return f.base.Chown(name, uid, gid)
}

func (f *faultSystem) Lchown(name string, uid int, gid int) error {
	f.mu.Lock()
	f.lchown = append(f.lchown, normalizePath(name))
	f.mu.Unlock()
	if err, ok := f.chownErrs[normalizePath(name)]; ok {
		return err
	}
	return f.base.Lchown(name, uid, gid)
}

func (f *faultSystem) WalkDir(root string, fn fs.WalkDirFunc) error {
	if err, ok := f.walkErrs[normalizePath(root)]; ok {
		return err
	}
	return f.base.WalkDir(root, fn)
}

// SetFACL records the call instead of running setfacl.
func (f *faultSystem) SetFACL(_ context.Context, path string, acl string) error {
	f.mu.Lock()
	f.acls = append(f.acls, normalizePath(path)+" "+acl)
	f.mu.Unlock()
	if err, ok := f.aclErrs[normalizePath(path)]; ok {
		return err
	}
	return nil
}

// selfPolicy returns a policy owned by the current user so chown succeeds without root.
func selfPolicy() Policy {
	return Policy{
		UID:          os.Getuid(),
		GID:          os.Getgid(),
		DirPerms:     0o770,
		FilePerms:    0o660,
		SymlinkPerms: 0o777,
	}
}
