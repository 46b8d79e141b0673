package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sosy-lab/cpachecker-sub130/analysis/verifier"
	"github.com/sosy-lab/cpachecker-sub130/utils"
	"github.com/sosy-lab/cpachecker-sub130/utils/dot"
)

func render(cmd *cobra.Command, g *dot.DotGraph) error {
	w, closeOut, err := output(cmd)
	if err != nil {
		return err
	}
	if err := g.Render(w, utils.Opts().OutputFormat()); err != nil {
		closeOut()
		return err
	}
	return closeOut()
}

func newArgCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "arg TASK",
		Short: "Verify the task and export the final abstract reachability graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, name, err := loadTask(args[0])
			if err != nil {
				return err
			}
			cfg, err := verifier.ConfigFromOpts()
			if err != nil {
				return err
			}
			res, err := verifier.Verify(cmd.Context(), c, cfg)
			if err != nil {
				return err
			}
			return render(cmd, res.Reached.ARG().ToDot(name+": "+res.Verdict.String()))
		},
	}
}

func newCfaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cfa TASK",
		Short: "Export the control-flow automaton of the task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, name, err := loadTask(args[0])
			if err != nil {
				return err
			}
			return render(cmd, c.ToDot(name))
		},
	}
}
