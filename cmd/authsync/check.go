package main

import (
	"github.com/spf13/cobra"

	"github.com/vango-dev/authsync/internal/config"
)

func checkCmd() *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate authsync.json",
		Long: `Load and validate configuration, reporting the effective values
after defaults and AUTHSYNC_* environment overrides are applied.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configDir)
			if err != nil {
				return err
			}

			success("configuration valid")
			if cfg.Path() != "" {
				info("file:     %s", cfg.Path())
			} else {
				info("file:     (defaults, no authsync.json found)")
			}
			info("address:  %s", cfg.Address())
			info("channel:  %s", cfg.Channel.Backend)
			switch cfg.Channel.Backend {
			case config.BackendWebSocket:
				info("ws url:   %s", cfg.Channel.WebSocket.URL)
			case config.BackendBlob:
				info("bucket:   %s", cfg.Channel.Blob.Bucket)
				info("key:      %s%s", cfg.Channel.Blob.Prefix, cfg.Channel.Blob.Key)
			}
			info("strategy: %s", cfg.Hydration.Strategy)
			info("timeout:  %s", cfg.WaitTimeout())
			return nil
		},
	}

	cmd.Flags().StringVarP(&configDir, "config", "c", ".", "Directory containing authsync.json")

	return cmd
}
