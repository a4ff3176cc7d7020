package main

import (
	"github.com/spf13/cobra"

	"github.com/conn-castle/pki-deploy/internal/messages"
	"github.com/conn-castle/pki-deploy/internal/scriptlet"
)

func newSpawnCmd(root *rootFlags) *cobra.Command {
	return newLifecycleCmd(root, scriptlet.OpSpawn, messages.SpawnUse, messages.SpawnShort)
}

func newDestroyCmd(root *rootFlags) *cobra.Command {
	return newLifecycleCmd(root, scriptlet.OpDestroy, messages.DestroyUse, messages.DestroyShort)
}

func newLifecycleCmd(root *rootFlags, op scriptlet.Operation, use string, short string) *cobra.Command {
	dep := &deploymentFlags{}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, _, err := newDeployer(cmd, root, dep)
			if err != nil {
				return err
			}
			return runner.Run(cmd.Context(), op)
		},
	}
	dep.register(cmd)
	return cmd
}
