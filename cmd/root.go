package cmd

import (
	"context"

	"github.com/danielolaszy/redmine/internal/config"
	"github.com/danielolaszy/redmine/internal/logging"
	"github.com/danielolaszy/redmine/pkg/redmine"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "redmine",
		Short: "Redmine is a command line client for the Redmine REST API",
		Long: `Redmine is a CLI tool for browsing and updating a Redmine instance.
It lists issues, projects, users and time entries, and logs time.

Connection settings are read from REDMINE_* environment variables, a .env file
in the working directory or ~/.redmine.yaml. Flags override all of them.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("url", "", "Redmine base URL (e.g., 'https://redmine.example.com')")
	flags.String("api-key", "", "Redmine API key")
	flags.String("login", "", "login for basic authentication")
	flags.String("password", "", "password for basic authentication")
	flags.Bool("insecure", false, "skip TLS certificate verification")
	flags.Int("page-limit", 0, "records requested per page")
	flags.String("config", "", "config file (default is $HOME/.redmine.yaml)")
	flags.StringP("output", "o", outputTable, "output format: table or json")

	rootCmd.AddCommand(
		newIssuesCmd(),
		newIssueCmd(),
		newProjectsCmd(),
		newProjectCmd(),
		newVersionsCmd(),
		newMembersCmd(),
		newUsersCmd(),
		newWhoamiCmd(),
		newTrackersCmd(),
		newStatusesCmd(),
		newPrioritiesCmd(),
		newActivitiesCmd(),
		newCustomFieldsCmd(),
		newTimeEntriesCmd(),
		newLogTimeCmd(),
		newPingCmd(),
	)
	return rootCmd
}

// Execute runs the command tree.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// newClient builds a client from configuration and persistent flags.
func newClient(cmd *cobra.Command) (*redmine.Client, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cmd, &cfg.Redmine); err != nil {
		return nil, err
	}
	if err := config.ValidateRedmineConfig(cfg); err != nil {
		return nil, err
	}

	rc := cfg.Redmine
	var client *redmine.Client
	switch rc.AuthMode() {
	case config.AuthAPIKey:
		client = redmine.NewWithAPIKey(rc.URL, rc.APIKey, rc.CheckSSL)
	case config.AuthBasic:
		client = redmine.NewWithPassword(rc.URL, rc.Login, rc.Password, rc.CheckSSL)
	default:
		client = redmine.New(rc.URL)
		client.SetCheckSSL(rc.CheckSSL)
	}
	if rc.UserAgent != "" {
		client.SetUserAgent(rc.UserAgent)
	}
	client.SetPageLimit(rc.PageLimit)
	client.SetTimeout(rc.Timeout)
	client.SetLogger(logging.GetLogger())

	logging.Debug("created redmine client",
		"url", rc.URL,
		"auth", rc.AuthMode(),
		"api_key", logging.MaskSensitive(rc.APIKey),
		"check_ssl", rc.CheckSSL)
	return client, nil
}

// applyFlags overrides configuration with the flags given on the command line.
func applyFlags(cmd *cobra.Command, rc *config.RedmineConfig) error {
	flags := cmd.Flags()
	stringFlags := map[string]*string{
		"url":      &rc.URL,
		"api-key":  &rc.APIKey,
		"login":    &rc.Login,
		"password": &rc.Password,
	}
	for name, target := range stringFlags {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*target = value
	}

	if flags.Changed("insecure") {
		insecure, err := flags.GetBool("insecure")
		if err != nil {
			return err
		}
		rc.CheckSSL = !insecure
	}
	if flags.Changed("page-limit") {
		limit, err := flags.GetInt("page-limit")
		if err != nil {
			return err
		}
		rc.PageLimit = limit
	}
	return nil
}
