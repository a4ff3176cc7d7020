package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conn-castle/pki-deploy/internal/config"
	"github.com/conn-castle/pki-deploy/internal/deployer"
	"github.com/conn-castle/pki-deploy/internal/logger"
	"github.com/conn-castle/pki-deploy/internal/messages"
)

// rootFlags holds the persistent flags shared by every subcommand.
type rootFlags struct {
	logLevel  string
	logFormat string
}

// deploymentFlags selects the deployment file and subsystem.
type deploymentFlags struct {
	file      string
	subsystem string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:           messages.RootUse,
		Short:         messages.RootShort,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "INFO", messages.RootFlagLogLevel)
	cmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "text", messages.RootFlagLogFormat)

	cmd.AddCommand(
		newSpawnCmd(flags),
		newDestroyCmd(flags),
		newPlanCmd(flags),
	)
	return cmd
}

func (f *deploymentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", messages.FlagDeploymentFile)
	cmd.Flags().StringVarP(&f.subsystem, "subsystem", "s", "", messages.FlagSubsystem)
}

// load validates the flags and reads the deployment.
func (f *deploymentFlags) load() (*config.Deployment, error) {
	if strings.TrimSpace(f.file) == "" {
		return nil, fmt.Errorf(messages.CLIDeploymentFileRequired)
	}
	if strings.TrimSpace(f.subsystem) == "" {
		return nil, fmt.Errorf(messages.CLISubsystemRequired)
	}
	return config.Load(f.file, f.subsystem)
}

// newLogger builds the command logger; records go to w, which is stderr in practice.
func (f *rootFlags) newLogger(w io.Writer) (*slog.Logger, error) {
	return logger.New(w, logger.Config{Level: f.logLevel, Format: f.logFormat})
}

// newDeployer loads the deployment and wires a Deployer that logs to the command's stderr.
func newDeployer(cmd *cobra.Command, root *rootFlags, dep *deploymentFlags) (*deployer.Deployer, *config.Deployment, error) {
	log, err := root.newLogger(cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	d, err := dep.load()
	if err != nil {
		return nil, nil, err
	}
	runner, err := deployer.New(deployer.Options{Deployment: d, Log: log})
	if err != nil {
		return nil, nil, err
	}
	return runner, d, nil
}
