package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hawkops/hawkops/pkg/hawkops/apierr"
	"github.com/hawkops/hawkops/pkg/hawkops/config"
	"github.com/hawkops/hawkops/pkg/hawkops/output"
)

func NewConfigCommand() *cobra.Command {
	var apiKey string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or update the hawkops configuration",
		Long: `Without flags, prints the configured API key (masked) and base URL.
With --api-key, stores a new API key. Tokens issued for a previous key are dropped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("api-key") {
				if strings.TrimSpace(apiKey) == "" {
					return apierr.InvalidInput("API key must not be empty")
				}
				mgr, err := rt.Manager()
				if err != nil {
					return err
				}
				if err := mgr.SetAPIKey(apiKey); err != nil {
					return err
				}
				rt.logger().Debug("API key updated", zap.String("config", rt.configPathValue()))
				_, _ = fmt.Fprintln(rt.Writer(), "API key updated successfully")
				return nil
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			w := rt.Writer()
			_, _ = fmt.Fprintln(w, "Current configuration:")
			_, _ = fmt.Fprintf(w, "API Key: %s\n", maskSecret(rt.cfg.API.APIKey))
			_, _ = fmt.Fprintf(w, "Base URL: %s\n", rt.cfg.API.BaseURL)
			if rt.cfg.API.OrgID != "" {
				_, _ = fmt.Fprintf(w, "Organization: %s\n", rt.cfg.API.OrgID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Store a new API key")

	cmd.AddCommand(
		newConfigInitCommand(),
		newConfigViewCommand(),
		newConfigSetValueCommand(),
	)
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		apiKey  string
		baseURL string
		orgID   string
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a hawkops config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			path := rt.configPathValue()
			if !force {
				if _, err := os.Stat(path); err == nil {
					return apierr.Config("config already exists: %s", path)
				}
			}
			cfg := config.DefaultConfig()
			cfg.API.APIKey = apiKey
			cfg.API.OrgID = orgID
			if baseURL != "" {
				cfg.API.BaseURL = strings.TrimRight(baseURL, "/")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.Save(path, &cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Initialized config at %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "API base URL")
	cmd.Flags().StringVar(&orgID, "org-id", "", "Default organization ID")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config")
	return cmd
}

func newConfigViewCommand() *cobra.Command {
	var showSecrets bool

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Print the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			cfg, err := config.LoadFile(rt.configPathValue())
			if err != nil {
				return err
			}
			if !showSecrets {
				for _, secret := range []*string{&cfg.API.APIKey, &cfg.Auth.AccessToken, &cfg.Auth.RefreshToken} {
					if *secret != "" {
						*secret = maskSecret(*secret)
					}
				}
			}
			format := output.FormatYAML
			if rt.outputFormat == string(output.FormatJSON) {
				format = output.FormatJSON
			}
			return output.WriteObject(rt.Writer(), format, cfg)
		},
	}
	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "Print API key and tokens unmasked")
	return cmd
}

func newConfigSetValueCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a config value",
		Long: `Set a single config value. Supported keys:
  api.base_url, api.api_key, api.org_id, api.timeout, auth.auto_refresh,
  settings.output-format, settings.log-level, settings.token-storage`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			path := rt.configPathValue()
			cfg, err := config.LoadFile(path)
			if err != nil {
				return err
			}
			previousKey := cfg.API.APIKey
			if err := cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if cfg.API.APIKey != previousKey {
				cfg.Auth.AccessToken, cfg.Auth.RefreshToken = "", ""
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Set %s\n", args[0])
			return nil
		},
	}
}

// maskSecret keeps the last four characters of longer secrets.
func maskSecret(s string) string {
	switch {
	case s == "":
		return "Not set"
	case len(s) <= 8:
		return "****"
	default:
		return "****" + s[len(s)-4:]
	}
}
