// Package deployer runs the configured scriptlets for one subsystem of an
// instance, serialised per instance by an advisory file lock.
package deployer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/conn-castle/pki-deploy/internal/config"
	"github.com/conn-castle/pki-deploy/internal/directory"
	"github.com/conn-castle/pki-deploy/internal/instance"
	"github.com/conn-castle/pki-deploy/internal/logger"
	"github.com/conn-castle/pki-deploy/internal/messages"
	"github.com/conn-castle/pki-deploy/internal/scriptlet"
)

// Options configures a Deployer.
type Options struct {
	Deployment *config.Deployment
	Log        *slog.Logger
	// Lookup resolves policy user and group names; nil uses the host user database.
	Lookup directory.IdentityLookup
	// DirectorySystem and InstanceSystem default to the host filesystem.
	DirectorySystem directory.System
	InstanceSystem  instance.System
	FS              scriptlet.FS
	// Resolve maps scriptlet names to implementations; nil uses the registry.
	Resolve func(names []string) ([]scriptlet.Scriptlet, error)
	// Now stamps manifest entries; nil uses time.Now.
	Now func() time.Time
}

// Deployer runs lifecycle operations for one deployment.
type Deployer struct {
	opts Options
	log  *slog.Logger
}

// ScriptletPlan is the dry-run output of one scriptlet.
type ScriptletPlan struct {
	Name    string
	Actions []scriptlet.Action
}

// New returns a Deployer for opts.Deployment.
func New(opts Options) (*Deployer, error) {
	if opts.Deployment == nil {
		return nil, fmt.Errorf(messages.DeployerConfigRequired)
	}
	if opts.Resolve == nil {
		opts.Resolve = scriptlet.Resolve
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.FS == nil {
		opts.FS = scriptlet.OSFS{}
	}
	dep := opts.Deployment
	log := logger.OrDiscard(opts.Log).With(logger.KeyInstance, dep.InstanceName, logger.KeySubsystem, dep.Subsystem)
	return &Deployer{opts: opts, log: log}, nil
}

// Run performs op under the instance lock.
func (d *Deployer) Run(ctx context.Context, op scriptlet.Operation) error {
	dep := d.opts.Deployment
	scriptlets, err := d.opts.Resolve(d.names(op))
	if err != nil {
		return err
	}

	lock, err := acquireFileLock(ctx, dep.LockPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = lock.release()
	}()
	d.log.Debug(messages.DeployerLockAcquired, logger.KeyLockPath, dep.LockPath)
	d.log.Info(fmt.Sprintf(messages.DeployerStartFmt, op, dep.Subsystem), logger.KeyOperation, string(op))

	switch op {
	case scriptlet.OpSpawn:
		err = d.spawn(ctx, scriptlets)
	case scriptlet.OpDestroy:
		err = d.destroy(ctx, scriptlets)
	default:
		err = fmt.Errorf(messages.CLIUnknownOperationFmt, op)
	}
	if err != nil {
		return err
	}
	d.log.Info(fmt.Sprintf(messages.DeployerFinishedFmt, op, dep.Subsystem), logger.KeyOperation, string(op))
	return nil
}

// Plan describes what op would do without acquiring the lock or changing anything.
func (d *Deployer) Plan(ctx context.Context, op scriptlet.Operation) ([]ScriptletPlan, error) {
	if _, err := scriptlet.ParseOperation(string(op)); err != nil {
		return nil, err
	}
	scriptlets, err := d.opts.Resolve(d.names(op))
	if err != nil {
		return nil, err
	}
	env, _, err := d.environment(ctx, false)
	if err != nil {
		return nil, err
	}
	plans := make([]ScriptletPlan, 0, len(scriptlets))
	for _, s := range scriptlets {
		plan := ScriptletPlan{Name: s.Name()}
		if planner, ok := s.(scriptlet.Planner); ok {
			actions, err := planner.Plan(ctx, env, op)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", s.Name(), err)
			}
			plan.Actions = actions
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

func (d *Deployer) names(op scriptlet.Operation) []string {
	if op == scriptlet.OpDestroy {
		return d.opts.Deployment.DestroyScriptlets
	}
	return d.opts.Deployment.SpawnScriptlets
}

// spawn stops at the first failing scriptlet, then records what was created.
func (d *Deployer) spawn(ctx context.Context, scriptlets []scriptlet.Scriptlet) error {
	dep := d.opts.Deployment
	env, dir, err := d.environment(ctx, !dep.SkipInstallation)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(scriptlets))
	for _, s := range scriptlets {
		if err := ctx.Err(); err != nil {
			return err
		}
		d.log.Debug(fmt.Sprintf(messages.DeployerScriptletFmt, s.Name()), logger.KeyScriptlet, s.Name())
		if err := s.Spawn(ctx, env); err != nil {
			return fmt.Errorf(messages.ScriptletSpawnFailedFmt, s.Name(), err)
		}
		names = append(names, s.Name())
	}
	if dep.SkipInstallation {
		return nil
	}
	return d.recordSpawn(names, dir.Records())
}

// destroy runs every scriptlet and reports all failures together.
func (d *Deployer) destroy(ctx context.Context, scriptlets []scriptlet.Scriptlet) error {
	env, _, err := d.environment(ctx, false)
	if err != nil {
		return err
	}
	var errs []error
	for _, s := range scriptlets {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		d.log.Debug(fmt.Sprintf(messages.DeployerScriptletFmt, s.Name()), logger.KeyScriptlet, s.Name())
		if err := s.Destroy(ctx, env); err != nil {
			d.log.Error(messages.DeployerScriptletFailed, logger.KeyScriptlet, s.Name(), logger.KeyError, err)
			errs = append(errs, fmt.Errorf(messages.ScriptletDestroyFailedFmt, s.Name(), err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return d.forgetSubsystem()
}

// environment builds the collaborators handed to scriptlets. Owner names are
// resolved only when resolveOwner is set, since plan and destroy never chown.
func (d *Deployer) environment(ctx context.Context, resolveOwner bool) (*scriptlet.Deployer, *directory.Directory, error) {
	dep := d.opts.Deployment
	inst := instance.New(dep, d.opts.InstanceSystem, d.log)
	lookup := d.opts.Lookup
	if !resolveOwner {
		lookup = unresolvedLookup{}
	}
	policy, err := directory.PolicyFromDeployment(d.owned(ctx, inst), lookup)
	if err != nil {
		return nil, nil, err
	}
	dir := directory.New(d.opts.DirectorySystem, policy, d.log)
	env := &scriptlet.Deployer{
		Deployment: dep,
		Directory:  dir,
		Instance:   inst,
		FS:         d.opts.FS,
		Log:        d.log,
	}
	if err := env.Validate(); err != nil {
		return nil, nil, err
	}
	return env, dir, nil
}

// owned returns the deployment with its owner filled in. An unset user or
// group is taken from the instance's tomcat.conf, then from the defaults.
// A load failure is left for the scriptlets to report.
func (d *Deployer) owned(ctx context.Context, inst *instance.Instance) *config.Deployment {
	dep := d.opts.Deployment
	needUser := dep.User == "" && dep.UID == ""
	needGroup := dep.Group == "" && dep.GID == ""
	if !needUser && !needGroup {
		return dep
	}
	if err := inst.Load(ctx); err != nil {
		d.log.Debug(messages.DeployerOwnerFromDefaults, logger.KeyError, err)
	}
	owned := *dep
	if needUser {
		owned.User = firstNonEmpty(inst.User(), config.DefaultUser)
	}
	if needGroup {
		owned.Group = firstNonEmpty(inst.Group(), config.DefaultGroup)
	}
	return &owned
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// unresolvedLookup leaves owner names unresolved for operations that never chown.
type unresolvedLookup struct{}

func (unresolvedLookup) UserID(string) (int, error)  { return -1, nil }
func (unresolvedLookup) GroupID(string) (int, error) { return -1, nil }

func (d *Deployer) recordSpawn(names []string, records []directory.Record) error {
	dep := d.opts.Deployment
	path := dep.ManifestPath()
	m, err := ReadManifest(path)
	if err != nil {
		return err
	}
	m.Instance = dep.InstanceName
	m.Subsystems[dep.Subsystem] = SubsystemManifest{
		SpawnedAt:  d.opts.Now().UTC().Truncate(time.Second),
		Scriptlets: names,
		Entries:    records,
	}
	if err := writeManifest(path, m, dep.FilePerms); err != nil {
		return err
	}
	d.log.Info(messages.DeployerManifestWritten, logger.KeyPath, path, logger.KeyRecordSize, len(records))
	return nil
}

func (d *Deployer) forgetSubsystem() error {
	dep := d.opts.Deployment
	path := dep.ManifestPath()
	m, err := ReadManifest(path)
	if err != nil {
		return err
	}
	if _, ok := m.Subsystems[dep.Subsystem]; !ok {
		return nil
	}
	delete(m.Subsystems, dep.Subsystem)
	if err := writeManifest(path, m, dep.FilePerms); err != nil {
		return err
	}
	if len(m.Subsystems) == 0 {
		d.log.Debug(messages.DeployerManifestRemoved, logger.KeyPath, path)
	}
	return nil
}
