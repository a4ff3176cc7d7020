// Package instance loads the server instance a deployment targets.
package instance

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/conn-castle/pki-deploy/internal/config"
	"github.com/conn-castle/pki-deploy/internal/logger"
	"github.com/conn-castle/pki-deploy/internal/messages"
	"github.com/conn-castle/pki-deploy/internal/sysconfig"
)

// ErrInstanceNotFound reports that the instance base directory does not exist.
var ErrInstanceNotFound = errors.New("instance not found")

// Instance is a PKI server instance on the local host.
type Instance struct {
	Name string
	Path string
	// ConfPath is the instance's tomcat.conf.
	ConfPath string
	sys      System
	log      *slog.Logger
	props    *sysconfig.Values
}

// New returns an unloaded instance described by d.
func New(d *config.Deployment, sys System, log *slog.Logger) *Instance {
	if sys == nil {
		sys = RealSystem{}
	}
	return &Instance{
		Name:     d.InstanceName,
		Path:     d.InstancePath,
		ConfPath: d.TomcatConfPath(),
		sys:      sys,
		log:      logger.OrDiscard(log),
	}
}

// Load reads the instance's on-disk state: the base directory must exist and
// tomcat.conf is parsed when present. Loading again refreshes that state.
func (i *Instance) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if i.Name == "" {
		return fmt.Errorf(messages.InstanceNameRequired)
	}
	i.log.Debug("Loading instance", logger.KeyInstance, i.Name, logger.KeyPath, i.Path)

	info, err := i.sys.Stat(i.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf(messages.InstanceNotFoundFmt+": %w", i.Name, i.Path, ErrInstanceNotFound)
		}
		return fmt.Errorf(messages.InstanceStatFmt, i.Path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf(messages.InstanceNotDirFmt, i.Path)
	}

	props, err := i.readTomcatConf()
	if err != nil {
		return err
	}
	i.props = props
	return nil
}

func (i *Instance) readTomcatConf() (*sysconfig.Values, error) {
	data, err := i.sys.ReadFile(i.ConfPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &sysconfig.Values{}, nil
		}
		return nil, fmt.Errorf(messages.InstanceReadConfFmt, i.ConfPath, err)
	}
	values, err := sysconfig.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf(messages.InstanceInvalidConfFmt, i.ConfPath, err)
	}
	return values, nil
}

// User returns the account the instance runs as, or "" when tomcat.conf does not say.
func (i *Instance) User() string {
	return firstSet(i.props, "TOMCAT_USER", "PKI_USER")
}

// Group returns the group the instance runs as, or "" when tomcat.conf does not say.
func (i *Instance) Group() string {
	return firstSet(i.props, "TOMCAT_GROUP", "PKI_GROUP")
}

func firstSet(props *sysconfig.Values, keys ...string) string {
	for _, key := range keys {
		if v := props.Get(key); v != "" {
			return v
		}
	}
	return ""
}
