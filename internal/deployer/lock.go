package deployer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"github.com/conn-castle/pki-deploy/internal/messages"
)

type fileLock struct {
	file *os.File
}

var flockFn = unix.Flock

var (
	lockWaitTimeout = 30 * time.Second
	lockPollEvery   = 100 * time.Millisecond
)

// acquireFileLock opens or creates path and takes an exclusive advisory lock,
// polling until the lock frees up, the timeout passes or ctx is done.
func acquireFileLock(ctx context.Context, path string) (*fileLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf(messages.LockCreateDirFmt, filepath.Dir(path), err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf(messages.LockOpenFmt, path, err)
	}
	if err := lockFile(ctx, file); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf(messages.LockFmt, path, err)
	}
	return &fileLock{file: file}, nil
}

// release unlocks and closes the file lock.
func (l *fileLock) release() error {
	if l == nil || l.file == nil {
		return nil
	}
	if err := flockFn(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		_ = l.file.Close()
		return err
	}
	return l.file.Close()
}

func lockFile(ctx context.Context, file *os.File) error {
	deadline := time.Now().Add(lockWaitTimeout)
	ticker := time.NewTicker(lockPollEvery)
	defer ticker.Stop()
	for {
		err := flockFn(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return nil
		}
		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EAGAIN) {
			return err
		}
		if time.Now().After(deadline) {
			return fmt.Errorf(messages.LockTimeoutFmt, lockWaitTimeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
