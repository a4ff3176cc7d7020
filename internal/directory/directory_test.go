package directory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateMakesDirectoryWithPolicyMode(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "ca", "webapps")
	d := New(RealSystem{}, selfPolicy(), nil)

	require.NoError(t, d.Create(context.Background(), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.True(t, info.IsDir())
	require.Equal(t, os.FileMode(0o770), info.Mode().Perm())

	records := d.Records()
	require.Len(t, records, 1)
	require.Equal(t, path, records[0].Name)
	require.Equal(t, TypeDirectory, records[0].Type)
	require.Equal(t, "0770", records[0].Mode)
}

func TestCreateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "webapps")
	sys := newFaultSystem(RealSystem{})
	d := New(sys, selfPolicy(), nil)

	require.NoError(t, d.Create(context.Background(), path))
	require.NoError(t, d.Create(context.Background(), path))

	require.Equal(t, []string{path}, sys.mkdirs)
	require.Len(t, d.Records(), 1)
}

func TestCreateRejectsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "webapps")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	d := New(RealSystem{}, selfPolicy(), nil)

	err := d.Create(context.Background(), path)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrNotDirectory))
}

func TestCreateErrors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name   string
		inject func(f *faultSystem, path string)
		want   string
	}{
		{
			name:   "stat",
			inject: func(f *faultSystem, path string) { f.lstatErrs[path] = boom },
			want:   "failed to stat",
		},
		{
			name:   "mkdir",
			inject: func(f *faultSystem, path string) { f.mkdirErrs[path] = boom },
			want:   "failed to create directory",
		},
		{
			name:   "chmod",
			inject: func(f *faultSystem, path string) { f.chmodErrs[path] = boom },
			want:   "failed to set permissions",
		},
		{
			name:   "chown",
			inject: func(f *faultSystem, path string) { f.chownErrs[path] = boom },
			want:   "failed to set ownership",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "webapps")
			sys := newFaultSystem(RealSystem{})
			tt.inject(sys, path)
			d := New(sys, selfPolicy(), nil)

			err := d.Create(context.Background(), path)
			require.Error(t, err)
			require.True(t, errors.Is(err, boom))
			require.Contains(t, err.Error(), tt.want)
			require.Empty(t, d.Records())
		})
	}
}

func TestCreateRequiresPath(t *testing.T) {
	d := New(nil, selfPolicy(), nil)
	require.ErrorContains(t, d.Create(context.Background(), ""), "directory path is required")
	require.ErrorContains(t, d.SetMode(context.Background(), ""), "directory path is required")
}

func TestCreateHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := New(RealSystem{}, selfPolicy(), nil)
	err := d.Create(ctx, filepath.Join(t.TempDir(), "webapps"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestSetModeAppliesPolicyRecursively(t *testing.T) {
	root := filepath.Join(t.TempDir(), "webapps")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "ROOT", "WEB-INF"), 0o755))
	file := filepath.Join(root, "ROOT", "index.jsp")
	require.NoError(t, os.WriteFile(file, []byte("<html/>"), 0o644))
	link := filepath.Join(root, "current")
	require.NoError(t, os.Symlink("ROOT", link))

	policy := selfPolicy()
	policy.DirACLs = []string{"user:pkiuser:rwx"}
	policy.FileACLs = []string{"user:pkiuser:rw"}
	sys := newFaultSystem(RealSystem{})
	d := New(sys, policy, nil)

	require.NoError(t, d.SetMode(context.Background(), root))

	for _, dir := range []string{root, filepath.Join(root, "ROOT"), filepath.Join(root, "ROOT", "WEB-INF")} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o770), info.Mode().Perm(), dir)
	}
	info, err := os.Stat(file)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o660), info.Mode().Perm())

	require.Contains(t, sys.acls, root+" user:pkiuser:rwx")
	require.Contains(t, sys.acls, file+" user:pkiuser:rw")
	for _, entry := range sys.acls {
		require.NotContains(t, entry, link)
	}

	kinds := map[string]string{}
	for _, r := range d.Records() {
		kinds[r.Name] = r.Type
	}
	require.Equal(t, TypeDirectory, kinds[root])
	require.Equal(t, TypeFile, kinds[file])
	require.Equal(t, TypeSymlink, kinds[link])
	require.Len(t, kinds, 5)
}

func TestSetModeSkipsChownWhenOwnerMatches(t *testing.T) {
	root := filepath.Join(t.TempDir(), "webapps")
	require.NoError(t, os.Mkdir(root, 0o770))
	sys := newFaultSystem(RealSystem{})
	d := New(sys, selfPolicy(), nil)

	require.NoError(t, d.SetMode(context.Background(), root))
	require.Empty(t, sys.chowns)
}

func TestSetModeChownsForeignOwner(t *testing.T) {
	root := filepath.Join(t.TempDir(), "webapps")
	require.NoError(t, os.Mkdir(root, 0o770))
	policy := selfPolicy()
	policy.UID = os.Getuid() + 1
	sys := newFaultSystem(RealSystem{})
	sys.chownErrs[root] = os.ErrPermission
	d := New(sys, policy, nil)

	err := d.SetMode(context.Background(), root)
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrPermission)
	require.Equal(t, []string{root}, sys.chowns)
}

func TestSetModeErrors(t *testing.T) {
	boom := errors.New("boom")
	root := filepath.Join(t.TempDir(), "webapps")
	require.NoError(t, os.Mkdir(root, 0o700))

	sys := newFaultSystem(RealSystem{})
	sys.chmodErrs[root] = boom
	err := New(sys, selfPolicy(), nil).SetMode(context.Background(), root)
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "failed to walk")

	policy := selfPolicy()
	policy.DirACLs = []string{"group:pki:rx"}
	sys = newFaultSystem(RealSystem{})
	sys.aclErrs[root] = boom
	err = New(sys, policy, nil).SetMode(context.Background(), root)
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), `failed to apply ACL "group:pki:rx"`)

	sys = newFaultSystem(RealSystem{})
	sys.walkErrs[root] = boom
	err = New(sys, selfPolicy(), nil).SetMode(context.Background(), root)
	require.ErrorIs(t, err, boom)
}

func TestSetModeMissingPath(t *testing.T) {
	err := New(RealSystem{}, selfPolicy(), nil).SetMode(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestSetModeCancelled(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(RealSystem{}, selfPolicy(), nil).SetMode(ctx, root)
	require.ErrorIs(t, err, context.Canceled)
}

func TestCreateAcceptsSymlinkedDirectory(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "real")
	require.NoError(t, os.Mkdir(target, 0o755))
	link := filepath.Join(root, "webapps")
	require.NoError(t, os.Symlink(target, link))
	sys := newFaultSystem(RealSystem{})
	d := New(sys, selfPolicy(), nil)

	require.NoError(t, d.Create(context.Background(), link))
	require.Empty(t, sys.mkdirs)
	records := d.Records()
	require.Len(t, records, 1)
	require.Equal(t, link, records[0].Name)
	require.Equal(t, TypeDirectory, records[0].Type)

	require.NoError(t, d.SetMode(context.Background(), link))
	info, err := os.Stat(target)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o770), info.Mode().Perm())
	require.Len(t, d.Records(), 1)
}

func TestCreateRejectsSymlinkToFile(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "real")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))
	link := filepath.Join(root, "webapps")
	require.NoError(t, os.Symlink(target, link))
	d := New(RealSystem{}, selfPolicy(), nil)

	err := d.Create(context.Background(), link)
	require.ErrorIs(t, err, ErrNotDirectory)
}

func TestCreateSymlinkStatError(t *testing.T) {
	root := t.TempDir()
	link := filepath.Join(root, "webapps")
	require.NoError(t, os.Symlink(filepath.Join(root, "real"), link))
	sys := newFaultSystem(RealSystem{})
	sys.statErrs[link] = errors.New("stat denied")
	d := New(sys, selfPolicy(), nil)

	err := d.Create(context.Background(), link)
	require.Error(t, err)
	require.Contains(t, err.Error(), "stat denied")
}

func TestSetModeFollowsSymlinkedRoot(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "real")
	require.NoError(t, os.MkdirAll(filepath.Join(target, "ROOT"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "ROOT", "index.jsp"), []byte("x"), 0o644))
	link := filepath.Join(root, "webapps")
	require.NoError(t, os.Symlink(target, link))
	d := New(RealSystem{}, selfPolicy(), nil)

	require.NoError(t, d.SetMode(context.Background(), link))

	for path, want := range map[string]os.FileMode{
		target:                        0o770,
		filepath.Join(target, "ROOT"): 0o770,
		filepath.Join(target, "ROOT", "index.jsp"): 0o660,
	} {
		info, err := os.Stat(path)
		require.NoError(t, err)
		require.Equal(t, want, info.Mode().Perm(), path)
	}
	var names []string
	for _, r := range d.Records() {
		names = append(names, r.Name)
	}
	require.Equal(t, []string{
		link,
		filepath.Join(link, "ROOT"),
		filepath.Join(link, "ROOT", "index.jsp"),
	}, names)
}
