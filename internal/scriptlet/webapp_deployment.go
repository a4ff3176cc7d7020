package scriptlet

import (
	"context"
	"fmt"

	"github.com/aymanbagabas/go-udiff"

	"github.com/conn-castle/pki-deploy/internal/logger"
	"github.com/conn-castle/pki-deploy/internal/messages"
)

// WebappDeploymentName is the registered name of the webapp deployment scriptlet.
const WebappDeploymentName = "webapp_deployment"

// WebappDeployment creates the subsystem webapps directory on spawn and
// removes the subsystem's servlet-container context descriptor on destroy.
type WebappDeployment struct{}

// Name returns the scriptlet name.
func (WebappDeployment) Name() string {
	return WebappDeploymentName
}

// Spawn creates <instance>/<subsystem>/webapps and applies the permission policy.
// It does nothing when the deployment skips installation.
func (WebappDeployment) Spawn(ctx context.Context, d *Deployer) error {
	log := d.logger(WebappDeploymentName)
	if d.Deployment.SkipInstallation {
		log.Info(messages.WebappSkipping)
		return nil
	}

	log.Info(fmt.Sprintf(messages.WebappDeployingFmt, d.Deployment.SubsystemLower()))
	if err := d.Instance.Load(ctx); err != nil {
		return err
	}

	// Custom webapps for the subsystem live in <instance>/<subsystem>/webapps.
	path := d.Deployment.SubsystemWebappsPath
	if err := d.Directory.Create(ctx, path); err != nil {
		return err
	}
	return d.Directory.SetMode(ctx, path)
}

// Destroy removes <instance-conf>/Catalina/localhost/<subsystem>.xml if it exists.
func (WebappDeployment) Destroy(ctx context.Context, d *Deployer) error {
	log := d.logger(WebappDeploymentName)
	log.Info(fmt.Sprintf(messages.WebappUndeployingFmt, d.Deployment.SubsystemLower()))
	if err := ctx.Err(); err != nil {
		return err
	}

	path := d.Deployment.ContextDescriptorPath()
	exists, err := d.FS.Exists(path)
	if err != nil {
		return err
	}
	if !exists {
		log.Debug(messages.WebappContextAbsent, logger.KeyPath, path)
		return nil
	}
	log.Info(messages.WebappRemoveContext, logger.KeyPath, path)
	// FS.Remove treats a file that vanished after the check as removed.
	return d.FS.Remove(path)
}

// Plan describes what Spawn or Destroy would do.
func (WebappDeployment) Plan(_ context.Context, d *Deployer, op Operation) ([]Action, error) {
	dep := d.Deployment
	switch op {
	case OpSpawn:
		if dep.SkipInstallation {
			return []Action{{Description: messages.PlanSkipInstallation}}, nil
		}
		actions := []Action{{Description: fmt.Sprintf(messages.PlanLoadInstanceFmt, dep.InstanceName, dep.InstancePath)}}
		path := dep.SubsystemWebappsPath
		policy := d.Directory.Policy()
		exists, err := d.FS.Exists(path)
		if err != nil {
			return nil, err
		}
		if exists {
			actions = append(actions, Action{Description: fmt.Sprintf(messages.PlanDirExistsFmt, path)})
		} else {
			actions = append(actions, Action{Description: fmt.Sprintf(messages.PlanCreateDirFmt, path, policy.DirPerms, policy.Owner())})
		}
		actions = append(actions, Action{Description: fmt.Sprintf(messages.PlanSetModeFmt, path)})
		for _, acl := range policy.DirACLs {
			actions = append(actions, Action{Description: fmt.Sprintf(messages.PlanApplyACLFmt, acl)})
		}
		return actions, nil
	case OpDestroy:
		path := dep.ContextDescriptorPath()
		exists, err := d.FS.Exists(path)
		if err != nil {
			return nil, err
		}
		if !exists {
			return []Action{{Description: fmt.Sprintf(messages.PlanFileAbsentFmt, path)}}, nil
		}
		content, err := d.FS.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return []Action{{
			Description: fmt.Sprintf(messages.PlanRemoveFileFmt, path),
			Diff:        udiff.Unified(path, "/dev/null", string(content), ""),
		}}, nil
	default:
		return nil, fmt.Errorf(messages.CLIUnknownOperationFmt, op)
	}
}
