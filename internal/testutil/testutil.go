// Package testutil holds helpers shared by package tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// WriteStub writes an executable shell stub that exits successfully.
// t is the active test; dir is the output directory; name is the executable file name.
func WriteStub(t *testing.T, dir string, name string) {
	t.Helper()
	WriteStubWithExit(t, dir, name, 0)
}

// WriteStubWithExit writes an executable shell stub that exits with the provided code.
// t is the active test; dir is the output directory; name is the executable file name.
func WriteStubWithExit(t *testing.T, dir string, name string, exitCode int) {
	t.Helper()
	path := filepath.Join(dir, name)
	content := []byte(fmt.Sprintf("#!/bin/sh\nexit %d\n", exitCode))
	if err := os.WriteFile(path, content, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
}

// WriteStubExpectArg writes an executable shell stub that succeeds only when expectedArg is present.
// Otherwise it prints a diagnostic to stderr and exits 1.
func WriteStubExpectArg(t *testing.T, dir string, name string, expectedArg string) {
	t.Helper()
	path := filepath.Join(dir, name)
	content := []byte(fmt.Sprintf("#!/bin/sh\nfor arg in \"$@\"; do\n  if [ \"$arg\" = \"%s\" ]; then exit 0; fi\ndone\necho \"%s: missing %s\" >&2\nexit 1\n", expectedArg, name, expectedArg))
	if err := os.WriteFile(path, content, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
}

// PrependPath puts dir first on PATH for the rest of the test.
func PrependPath(t *testing.T, dir string) {
	t.Helper()
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

// BoolPtr returns a pointer to v.
func BoolPtr(v bool) *bool {
	return &v
}

// DeploymentFile writes a TOML deployment file for an instance rooted under root,
// owned by the current user, with extra appended verbatim. It creates the
// instance base directory and returns the file path.
func DeploymentFile(t *testing.T, root string, instanceName string, extra string) string {
	t.Helper()
	content := fmt.Sprintf(`pki_instance_name = %q
pki_instance_path = "%s/var/lib/pki/%%(pki_instance_name)s"
pki_instance_configuration_path = "%s/etc/pki/%%(pki_instance_name)s"
pki_lock_path = "%s/run/%%(pki_instance_name)s.lock"
pki_uid = %d
pki_gid = %d
%s
`, instanceName, root, root, root, os.Getuid(), os.Getgid(), extra)
	path := filepath.Join(root, "deploy.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write deployment file: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(root, "var", "lib", "pki", instanceName), 0o755); err != nil {
		t.Fatalf("create instance dir: %v", err)
	}
	return path
}
