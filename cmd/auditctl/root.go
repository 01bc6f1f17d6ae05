package main

import (
	"github.com/auditpro/document-auditor/client"
	"github.com/auditpro/document-auditor/config"
	"github.com/auditpro/document-auditor/logger"
	"github.com/auditpro/document-auditor/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// deps are the pieces tests swap out.
type deps struct {
	loadConfig   func() *config.Config
	newExtractor func(cfg *config.Config) service.Extractor
	newLogger    func(verbose bool) *zap.Logger
}

func defaultDeps() deps {
	return deps{
		loadConfig: config.LoadConfig,
		newExtractor: func(cfg *config.Config) service.Extractor {
			return client.NewGeminiClient(client.GeminiConfig{
				APIKey:      cfg.APIKey,
				BaseURL:     cfg.GeminiBaseURL,
				Model:       cfg.GeminiModel,
				Timeout:     cfg.RequestTimeout,
				MaxAttempts: cfg.MaxAttempts,
			})
		},
		newLogger: func(verbose bool) *zap.Logger {
			level := "warn"
			if verbose {
				level = "debug"
			}
			return logger.New(&logger.Config{Level: level, Format: "console", Output: "stderr"})
		},
	}
}

func newRootCommand(d deps) *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "auditctl",
		Short:         "Audit a ledger against its source documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log progress to stderr")

	rootCmd.AddCommand(newAuditCommand(d, &verbose))
	rootCmd.AddCommand(newMatchCommand(d, &verbose))
	return rootCmd
}
