// Copyright (c) 2019-present Mattermost, Inc. All Rights Reserved.
// See License for license information.

package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/mattermost/mattermost-lambda-function/config"
	"github.com/mattermost/mattermost-lambda-function/entrypoint"
	"github.com/mattermost/mattermost-lambda-function/function"
	"github.com/mattermost/mattermost-lambda-function/utils"
)

var (
	verbose bool
	log     = utils.MustMakeCommandLogger(zapcore.InfoLevel)
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Fatalw("command failed")
	}
}

var rootCmd = &cobra.Command{
	Use:   "function",
	Short: "Runs the HTTP function in AWS Lambda, or locally.",
	Long: `Runs the HTTP function. Inside AWS Lambda it serves invocation events;
anywhere else it listens on $PORT, like "function serve".`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log = utils.MustMakeCommandLogger(zapcore.DebugLevel)
		}
	},
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig()
		if err != nil {
			return err
		}
		ep := newEntryPoint(conf)

		if !conf.IsLambda() {
			return serve(cmd.Context(), ep, conf)
		}
		if err = ep.Start(); err != nil {
			log.WithError(err).Fatalw("Failed to initialize the function")
		}
		return nil
	},
}

func loadConfig() (*config.Config, error) {
	conf, err := config.Load()
	if err != nil {
		return nil, err
	}
	if verbose {
		conf.LogLevel = zapcore.DebugLevel.String()
	}
	return conf, nil
}

func newEntryPoint(conf *config.Config) *entrypoint.EntryPoint {
	return entrypoint.New(conf, func(b *entrypoint.HostBuilder) {
		b.ConfigureLogging(func(hctx *entrypoint.HostContext, lb *entrypoint.LoggingBuilder) {
			if hctx.Config.FunctionName != "" {
				lb.With("function", hctx.Config.FunctionName)
			}
		})
		b.UseStartup(function.New)
	})
}
