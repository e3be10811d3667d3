package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/icp"
	"github.com/sells-group/prospect-cli/internal/output"
)

var (
	discoverICP string
	discoverOut string
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find prospects for one ICP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		profile, err := icp.Load(discoverICP)
		if err != nil {
			return err
		}

		env, err := initDiscovery(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		run, err := env.Service.Run(ctx, profile)
		if err != nil {
			return eris.Wrap(err, "discover")
		}

		zap.L().Info("discovery finished",
			zap.String("run_id", run.ID),
			zap.String("status", string(run.Status)),
			zap.Int("prospects", len(run.Result.Prospects)),
		)

		if discoverOut != "" {
			if err := output.WriteFile(discoverOut, run.Result); err != nil {
				return err
			}
		}
		return output.WriteJSON(os.Stdout, run.Result)
	},
}

func init() {
	discoverCmd.Flags().StringVar(&discoverICP, "icp", "", "path to the ICP file (YAML or JSON)")
	discoverCmd.Flags().StringVar(&discoverOut, "out", "", "also write results to this file (.json or .xlsx)")
	_ = discoverCmd.MarkFlagRequired("icp")
	rootCmd.AddCommand(discoverCmd)
}
