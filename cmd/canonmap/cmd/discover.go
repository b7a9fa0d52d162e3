package cmd

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/canonmap/pkg/logging"
)

func newDiscoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "Discover a tenant's schema and emit the snapshot as JSON",
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
			snap, err := client.Discover(ctx, tenant)
			if err != nil {
				return err
			}
			return writeOutput(snap)
		},
	}
}
