package cmd

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/canonmap/pkg/logging"
	"github.com/agentstation/canonmap/pkg/recommend"
)

func newRecommendCmd() *cobra.Command {
	var snapshotPath string
	var improvements bool

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend tenant-defined fields worth adding to the canonical catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tenant, err := requireTenant()
			if err != nil {
				return err
			}
			client, err := newClient()
			if err != nil {
				return err
			}

			ctx := logging.WithTenant(cmd.Context(), tenant)
			snap, err := loadOrDiscoverSnapshot(ctx, client, tenant, snapshotPath)
			if err != nil {
				return err
			}
			report, err := client.Reconcile(ctx, snap)
			if err != nil {
				return err
			}

			recs, err := client.Recommend(ctx, snap, report)
			if err != nil {
				return err
			}

			if improvements {
				return writeOutput(struct {
					*recommend.Report
					Improvements []recommend.ImprovementSuggestion `json:"improvements"`
				}{
					Report:       recs,
					Improvements: client.ImprovementSuggestions(snap, report),
				})
			}
			return writeOutput(recs)
		},
	}

	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "reuse a saved snapshot file instead of discovering")
	cmd.Flags().BoolVar(&improvements, "improvements", false, "include governance improvement suggestions")
	return cmd
}
