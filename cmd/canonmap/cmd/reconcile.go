package cmd

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/canonmap"
	"github.com/agentstation/canonmap/pkg/errors"
	"github.com/agentstation/canonmap/pkg/logging"
	"github.com/agentstation/canonmap/pkg/reconcile"
	"github.com/agentstation/canonmap/pkg/schema"
)

func newReconcileCmd() *cobra.Command {
	var snapshotPath string
	var exactOnly bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile the canonical catalog against a tenant schema",
		Long: `Reconcile matches every canonical field onto the tenant's schema and
prints the reconciliation report. The schema is discovered live unless
--snapshot points at a previously saved snapshot file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tenant, err := requireTenant()
			if err != nil {
				return err
			}
			client, err := newClient(
				canonmap.WithReconcileOptions(reconcile.WithExactOnly(exactOnly)),
			)
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
			return writeOutput(report)
		},
	}

	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "reuse a saved snapshot file instead of discovering")
	cmd.Flags().BoolVar(&exactOnly, "exact-only", false, "restrict matching to exact-confidence strategies")
	return cmd
}

// loadOrDiscoverSnapshot reads a snapshot file when given one, otherwise
// performs live discovery.
func loadOrDiscoverSnapshot(ctx context.Context, client *canonmap.Client, tenant, path string) (*schema.TenantSchemaSnapshot, error) {
	if path == "" {
		return client.Discover(ctx, tenant)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapParse("json", path, err)
	}
	var snap schema.TenantSchemaSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.WrapParse("json", path, err)
	}
	return &snap, nil
}
