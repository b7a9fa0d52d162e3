package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/canonmap/pkg/catalog"
	"github.com/agentstation/canonmap/pkg/errors"
	"github.com/agentstation/canonmap/pkg/logging"
	"github.com/agentstation/canonmap/pkg/tenantconfig"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage tenant field mapping configurations",
	}
	cmd.AddCommand(
		newConfigInitCmd(),
		newConfigConfirmCmd(),
		newConfigRejectCmd(),
		newConfigOverrideCmd(),
		newConfigExcludeCmd(),
		newConfigIncludeCmd(),
		newConfigMergeCmd(),
		newConfigValidateCmd(),
		newConfigCompletenessCmd(),
	)
	return cmd
}

func loadConfig(path string) (tenantconfig.Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tenantconfig.Configuration{}, errors.WrapParse("json", path, err)
	}
	return tenantconfig.Unmarshal(data)
}

func saveConfig(path string, cfg tenantconfig.Configuration) error {
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func newConfigInitCmd() *cobra.Command {
	var snapshotPath string

	cmd := &cobra.Command{
		Use:   "init <config-file>",
		Short: "Create an initial configuration from a fresh reconciliation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			cfg := client.InitialConfiguration(tenant, report)
			if err := saveConfig(args[0], cfg); err != nil {
				return err
			}
			logging.Info().
				Str("tenant_id", tenant).
				Str("path", args[0]).
				Int("mappings", len(cfg.Mappings)).
				Float64("score", report.Score).
				Msg("Configuration created")
			return nil
		},
	}

	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "reuse a saved snapshot file instead of discovering")
	return cmd
}

// mutateConfig loads, transforms, and saves a configuration file.
func mutateConfig(path string, fn func(tenantconfig.Configuration) (tenantconfig.Configuration, error)) error {
	cfg, err := loadConfig(path)
	if err != nil {
		return err
	}
	updated, err := fn(cfg)
	if err != nil {
		return err
	}
	if err := saveConfig(path, updated); err != nil {
		return err
	}
	logging.Info().
		Str("tenant_id", updated.TenantID).
		Int("version", updated.Version).
		Msg("Configuration updated")
	return nil
}

func newConfigConfirmCmd() *cobra.Command {
	var by string

	cmd := &cobra.Command{
		Use:   "confirm <config-file> <field-id>",
		Short: "Confirm a field mapping",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return mutateConfig(args[0], func(cfg tenantconfig.Configuration) (tenantconfig.Configuration, error) {
				return cfg.Confirm(args[1], by)
			})
		},
	}
	cmd.Flags().StringVar(&by, "by", "", "reviewer recorded on the decision")
	return cmd
}

func newConfigRejectCmd() *cobra.Command {
	var by string

	cmd := &cobra.Command{
		Use:   "reject <config-file> <field-id>",
		Short: "Reject a field mapping",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return mutateConfig(args[0], func(cfg tenantconfig.Configuration) (tenantconfig.Configuration, error) {
				return cfg.Reject(args[1], by)
			})
		},
	}
	cmd.Flags().StringVar(&by, "by", "", "reviewer recorded on the decision")
	return cmd
}

func newConfigOverrideCmd() *cobra.Command {
	var by, kind, path string

	cmd := &cobra.Command{
		Use:   "override <config-file> <field-id>",
		Short: "Override a field mapping with a human-chosen tenant source",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return mutateConfig(args[0], func(cfg tenantconfig.Configuration) (tenantconfig.Configuration, error) {
				return cfg.Override(args[1], tenantconfig.TenantSource{
					Kind: catalog.SourceKind(kind),
					Path: path,
				}, by)
			})
		},
	}
	cmd.Flags().StringVar(&by, "by", "", "reviewer recorded on the decision")
	cmd.Flags().StringVar(&kind, "kind", string(catalog.SourceAttribute), "source kind (attribute, custom_metadata, classification, relationship)")
	cmd.Flags().StringVar(&path, "path", "", "tenant source path")
	_ = cmd.MarkFlagRequired("path")
	return cmd
}

func newConfigExcludeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exclude <config-file> <field-id>",
		Short: "Exclude a canonical field from the tenant's scope",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return mutateConfig(args[0], func(cfg tenantconfig.Configuration) (tenantconfig.Configuration, error) {
				return cfg.Exclude(args[1])
			})
		},
	}
}

func newConfigIncludeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "include <config-file> <field-id>",
		Short: "Take a canonical field off the excluded list",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return mutateConfig(args[0], func(cfg tenantconfig.Configuration) (tenantconfig.Configuration, error) {
				return cfg.Include(args[1])
			})
		},
	}
}

func newConfigMergeCmd() *cobra.Command {
	var snapshotPath string

	cmd := &cobra.Command{
		Use:   "merge <config-file>",
		Short: "Re-reconcile and merge into an existing configuration",
		Long: `Merge re-runs reconciliation against the tenant's current schema and
folds the results into the configuration. Confirmed and rejected mappings
are preserved; automatic mappings are refreshed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			return mutateConfig(args[0], func(cfg tenantconfig.Configuration) (tenantconfig.Configuration, error) {
				return client.MergeConfiguration(cfg, report)
			})
		},
		Args: cobra.ExactArgs(1),
	}

	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "reuse a saved snapshot file instead of discovering")
	return cmd
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Run structural checks on a configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := loadConfig(args[0])
			if err != nil {
				return err
			}
			result := cfg.Validate()
			if err := writeOutput(result); err != nil {
				return err
			}
			if !result.Valid {
				return fmt.Errorf("configuration %s is invalid", args[0])
			}
			return nil
		},
	}
}

func newConfigCompletenessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completeness <config-file>",
		Short: "Report onboarding progress against the canonical catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			cfg, err := loadConfig(args[0])
			if err != nil {
				return err
			}
			return writeOutput(client.Completeness(cfg))
		},
	}
}
