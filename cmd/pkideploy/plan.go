package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conn-castle/pki-deploy/internal/config"
	"github.com/conn-castle/pki-deploy/internal/deployer"
	"github.com/conn-castle/pki-deploy/internal/messages"
	"github.com/conn-castle/pki-deploy/internal/scriptlet"
)

func newPlanCmd(root *rootFlags) *cobra.Command {
	dep := &deploymentFlags{}
	cmd := &cobra.Command{
		Use:       messages.PlanUse,
		Short:     messages.PlanShort,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(scriptlet.OpSpawn), string(scriptlet.OpDestroy)},
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := scriptlet.ParseOperation(args[0])
			if err != nil {
				return err
			}
			runner, d, err := newDeployer(cmd, root, dep)
			if err != nil {
				return err
			}
			plans, err := runner.Plan(cmd.Context(), op)
			if err != nil {
				return err
			}
			renderPlan(cmd.OutOrStdout(), op, d, plans)
			return nil
		},
	}
	dep.register(cmd)
	return cmd
}

// renderPlan prints each scriptlet's actions, colouring diff lines.
func renderPlan(out io.Writer, op scriptlet.Operation, d *config.Deployment, plans []deployer.ScriptletPlan) {
	_, _ = fmt.Fprintf(out, messages.PlanHeaderFmt, op, d.Subsystem, d.InstanceName)
	removed := color.New(color.FgRed)
	added := color.New(color.FgGreen)
	for _, plan := range plans {
		_, _ = fmt.Fprintf(out, messages.PlanScriptletFmt, plan.Name)
		if len(plan.Actions) == 0 {
			_, _ = fmt.Fprint(out, messages.PlanNoActions)
			continue
		}
		for _, action := range plan.Actions {
			_, _ = fmt.Fprintf(out, messages.PlanActionFmt, action.Description)
			if action.Diff == "" {
				continue
			}
			for _, line := range strings.Split(strings.TrimSuffix(action.Diff, "\n"), "\n") {
				writeDiffLine(out, line, removed, added)
			}
		}
	}
}

func writeDiffLine(out io.Writer, line string, removed *color.Color, added *color.Color) {
	text := "    " + line
	switch {
	case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
		_, _ = fmt.Fprintln(out, text)
	case strings.HasPrefix(line, "-"):
		_, _ = removed.Fprintln(out, text)
	case strings.HasPrefix(line, "+"):
		_, _ = added.Fprintln(out, text)
	default:
		_, _ = fmt.Fprintln(out, text)
	}
}
