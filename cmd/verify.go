package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sosy-lab/cpachecker-sub130/analysis/verifier"
	"github.com/sosy-lab/cpachecker-sub130/report"
	"github.com/sosy-lab/cpachecker-sub130/utils"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify TASK",
		Short: "Check whether an error location of the task is reachable",
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

			res, verr := verifier.Verify(cmd.Context(), c, cfg)

			w, closeOut, err := output(cmd)
			if err != nil {
				return err
			}
			if err := report.Write(w, utils.Opts().ReportFormat(), name, res); err != nil {
				closeOut()
				return err
			}
			if err := closeOut(); err != nil {
				return err
			}

			if utils.Opts().Visualize() && res.Reached != nil {
				if _, err := res.Reached.ARG().ToDot(name).RenderFile(name+"-arg", utils.Opts().OutputFormat()); err != nil {
					log.Errorf("Rendering the ARG failed: %v", err)
				}
			}
			return verr
		},
	}
}
