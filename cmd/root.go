// Package cmd implements the command line interface.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sosy-lab/cpachecker-sub130/analysis/cfa"
	"github.com/sosy-lab/cpachecker-sub130/utils"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cpachecker",
		Short:         "Configurable program analysis with counterexample-guided refinement",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := utils.ApplyConfigFile(cmd.Flags()); err != nil {
				return err
			}
			if err := utils.ValidateOpts(); err != nil {
				return err
			}
			return utils.SetupLogging()
		},
	}
	utils.BindFlags(root.PersistentFlags())

	root.AddCommand(newVerifyCmd(), newArgCmd(), newCfaCmd())
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func loadTask(path string) (*cfa.CFA, string, error) {
	c, err := cfa.Load(path)
	if err != nil {
		return nil, "", err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	log.Debugf("Loaded %s: %d nodes, %d edges", name, len(c.Nodes()), len(c.Edges()))
	return c, name, nil
}

// output opens the file selected with --out, or returns the command's
// standard output.
func output(cmd *cobra.Command) (io.Writer, func() error, error) {
	path := utils.Opts().Out()
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
