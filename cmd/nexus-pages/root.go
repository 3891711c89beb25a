package main

import (
	stderrors "errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/saturnines/nexus-pages/pkg/config"
	"github.com/saturnines/nexus-pages/pkg/core"
	"github.com/saturnines/nexus-pages/pkg/logging"
	"github.com/saturnines/nexus-pages/pkg/pagination"
	"github.com/saturnines/nexus-pages/pkg/pullrequest"
	"github.com/saturnines/nexus-pages/pkg/transport/rest"
)

const defaultEnvFile = ".env"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "nexus-pages",
		Short:         "Reads paginated pull request collections from REST APIs",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadEnvFile(cmd)
		},
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "endpoint YAML file")
	rootCmd.PersistentFlags().String("env", defaultEnvFile, "dotenv file loaded before the config is expanded")
	rootCmd.PersistentFlags().String("log-level", "", "log level (trace, debug, info, warn, error); overrides the config")
	_ = rootCmd.MarkPersistentFlagRequired("config")

	return rootCmd
}

// loadEnvFile loads the dotenv file. Only the default file may be missing.
func loadEnvFile(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("env")
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err != nil && !cmd.Flags().Changed("env") && stderrors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// session is everything a subcommand needs for one endpoint.
type session struct {
	endpoint *config.Endpoint
	sequence *pagination.Sequence[pullrequest.Record]
	mapper   *pullrequest.Mapper
}

func newSession(cmd *cobra.Command) (*session, error) {
	path, _ := cmd.Flags().GetString("config")
	ep, err := config.NewDefaultLoader().Load(path)
	if err != nil {
		return nil, err
	}

	level := ep.LogLevel
	if flagLevel, _ := cmd.Flags().GetString("log-level"); flagLevel != "" {
		level = flagLevel
	}
	logging.Configure(cmd.ErrOrStderr(), level)
	logger := logging.With().Str("endpoint", ep.Name).Logger()

	client, err := core.NewClientFromEndpoint(ep, core.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	seq, err := newSequence(client, ep, pagination.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	mapper, err := pullrequest.NewMapper(ep.Mapping, nil)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("base_url", client.BaseURL()).
		Str("path", ep.Source.Path).
		Stringer("pagination", seq.Config()).
		Strs("fields", mapper.Fields()).
		Msg("endpoint loaded")

	return &session{endpoint: ep, sequence: seq, mapper: mapper}, nil
}

func newSequence(root rest.RootFetcher, ep *config.Endpoint, opts ...pagination.Option) (*pagination.Sequence[pullrequest.Record], error) {
	switch cfg := ep.Pagination.Config(); cfg {
	case pagination.NextConfig():
		return rest.FromGetUsingNext[pullrequest.Record](root, ep.Source.Path, opts...)
	case pagination.SkipConfig():
		return rest.FromGetUsingSkip[pullrequest.Record](root, ep.Source.Path, opts...)
	default:
		return rest.FromUsing[pullrequest.Record](root, ep.Source.Path, cfg, opts...)
	}
}
