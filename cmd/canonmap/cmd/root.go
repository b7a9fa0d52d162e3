// Package cmd implements the canonmap CLI commands.
package cmd

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentstation/canonmap"
	"github.com/agentstation/canonmap/pkg/catalog"
	"github.com/agentstation/canonmap/pkg/logging"
)

// BuildInfo carries version metadata injected at build time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// Execute runs the root command with the given context.
func Execute(ctx context.Context, info BuildInfo) error {
	root := newRootCmd(info)
	if err := root.ExecuteContext(ctx); err != nil {
		logging.Err(err).Msg("Command failed")
		return err
	}
	return nil
}

func newRootCmd(info BuildInfo) *cobra.Command {
	root := &cobra.Command{
		Use:     "canonmap",
		Short:   "Reconcile a canonical metadata field catalog against tenant schemas",
		Version: fmt.Sprintf("%s (commit %s, built %s)", info.Version, info.Commit, info.Date),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Local .env files are a development convenience; absence is fine.
			_ = godotenv.Load()
			logging.ConfigureFromEnv()
			return initViper(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("base-url", "", "tenant metadata API base URL")
	flags.String("credential", "", "bearer credential for the tenant API (or CANONMAP_CREDENTIAL)")
	flags.String("tenant", "", "tenant identifier")
	flags.String("catalog", "", "path to a custom canonical field catalog YAML (defaults to embedded)")
	flags.Duration("cache-ttl", 5*time.Minute, "typedef cache TTL for the tenant API client")
	flags.StringP("output", "o", "", "write output to file instead of stdout")

	root.AddCommand(
		newDiscoverCmd(),
		newReconcileCmd(),
		newRecommendCmd(),
		newConfigCmd(),
	)
	return root
}

func initViper(cmd *cobra.Command) error {
	viper.SetEnvPrefix("CANONMAP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName("canonmap")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home + "/.config/canonmap")
	}
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) {
			return err
		}
	}

	return viper.BindPFlags(cmd.Root().PersistentFlags())
}

// newClient builds the canonmap client from flags and environment.
func newClient(extra ...canonmap.Option) (*canonmap.Client, error) {
	opts := make([]canonmap.Option, 0, len(extra)+4)

	if path := viper.GetString("catalog"); path != "" {
		cat, err := catalog.LoadFile(path)
		if err != nil {
			return nil, err
		}
		opts = append(opts, canonmap.WithCatalog(cat))
	}
	if baseURL := viper.GetString("base-url"); baseURL != "" {
		opts = append(opts, canonmap.WithBaseURL(baseURL))
	}
	if credential := viper.GetString("credential"); credential != "" {
		opts = append(opts, canonmap.WithCredential(credential))
	}
	if ttl := viper.GetDuration("cache-ttl"); ttl > 0 {
		opts = append(opts, canonmap.WithCacheTTL(ttl))
	}

	opts = append(opts, extra...)
	return canonmap.New(opts...)
}

func requireTenant() (string, error) {
	tenant := viper.GetString("tenant")
	if tenant == "" {
		return "", fmt.Errorf("tenant is required (--tenant or CANONMAP_TENANT)")
	}
	return tenant, nil
}

// writeOutput emits v as indented JSON to the configured output target.
func writeOutput(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if path := viper.GetString("output"); path != "" {
		return os.WriteFile(path, data, 0o644)
	}
	_, err = os.Stdout.Write(data)
	return err
}
