// Package scriptlet defines the install and uninstall hooks run by the deployer
// and the collaborators they act through.
package scriptlet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/conn-castle/pki-deploy/internal/config"
	"github.com/conn-castle/pki-deploy/internal/directory"
	"github.com/conn-castle/pki-deploy/internal/fsutil"
	"github.com/conn-castle/pki-deploy/internal/logger"
	"github.com/conn-castle/pki-deploy/internal/messages"
)

// ErrUnknownScriptlet reports a scriptlet name with no registered implementation.
var ErrUnknownScriptlet = errors.New("unknown scriptlet")

// Operation is a lifecycle operation.
type Operation string

// Lifecycle operations.
const (
	OpSpawn   Operation = "spawn"
	OpDestroy Operation = "destroy"
)

// ParseOperation converts a command-line word into an Operation.
func ParseOperation(s string) (Operation, error) {
	switch Operation(s) {
	case OpSpawn, OpDestroy:
		return Operation(s), nil
	default:
		return "", fmt.Errorf(messages.CLIUnknownOperationFmt, s)
	}
}

// Scriptlet is one named install/uninstall hook.
type Scriptlet interface {
	Name() string
	Spawn(ctx context.Context, d *Deployer) error
	Destroy(ctx context.Context, d *Deployer) error
}

// Action is one step a plan would perform.
type Action struct {
	Description string
	// Diff optionally shows the file change the step makes.
	Diff string
}

// Planner is implemented by scriptlets that can describe their effects without acting.
type Planner interface {
	Plan(ctx context.Context, d *Deployer, op Operation) ([]Action, error)
}

// Directory creates directories and applies the deployment permission policy.
type Directory interface {
	Create(ctx context.Context, path string) error
	SetMode(ctx context.Context, path string) error
	Policy() directory.Policy
}

// Instance is the server instance being deployed into.
type Instance interface {
	Load(ctx context.Context) error
}

// FS is the file utility used for existence checks and removal.
type FS interface {
	Exists(path string) (bool, error)
	Remove(path string) error
	ReadFile(path string) ([]byte, error)
}

// OSFS implements FS with fsutil on the host filesystem.
type OSFS struct{}

// Exists reports whether path exists.
func (OSFS) Exists(path string) (bool, error) {
	return fsutil.Exists(path)
}

// Remove deletes path; a path that is already gone counts as removed.
func (OSFS) Remove(path string) error {
	return fsutil.Remove(path)
}

// ReadFile reads the named file.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Deployer carries the deployment record and collaborators handed to every scriptlet.
type Deployer struct {
	Deployment *config.Deployment
	Directory  Directory
	Instance   Instance
	FS         FS
	Log        *slog.Logger
}

// Validate reports missing collaborators and fills optional ones with defaults.
func (d *Deployer) Validate() error {
	if d.Deployment == nil {
		return fmt.Errorf(messages.DeployerConfigRequired)
	}
	if d.Directory == nil {
		return fmt.Errorf(messages.DeployerDirectoryRequired)
	}
	if d.Instance == nil {
		return fmt.Errorf(messages.DeployerInstanceRequired)
	}
	if d.FS == nil {
		d.FS = OSFS{}
	}
	d.Log = logger.OrDiscard(d.Log)
	return nil
}

// logger returns the deployer log scoped to a scriptlet.
func (d *Deployer) logger(scriptlet string) *slog.Logger {
	return logger.OrDiscard(d.Log).With(logger.KeyScriptlet, scriptlet)
}

var registry = map[string]func() Scriptlet{
	WebappDeploymentName: func() Scriptlet { return WebappDeployment{} },
}

// Names returns the registered scriptlet names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the scriptlet registered under name.
func Lookup(name string) (Scriptlet, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf(messages.ScriptletUnknownFmt, ErrUnknownScriptlet, name)
	}
	return factory(), nil
}

// Resolve looks up every name, failing on the first unknown one.
func Resolve(names []string) ([]Scriptlet, error) {
	out := make([]Scriptlet, 0, len(names))
	for _, name := range names {
		s, err := Lookup(name)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
