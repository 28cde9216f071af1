package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/vango-dev/authsync/internal/config"
	"github.com/vango-dev/authsync/internal/errors"
	"github.com/vango-dev/authsync/pkg/authstate"
	"github.com/vango-dev/authsync/pkg/blob"
	"github.com/vango-dev/authsync/pkg/broadcast"
)

func tailCmd() *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print snapshots from the configured channel",
		Long: `Subscribe to the configured cross-context channel and print each
auth snapshot as it arrives. Useful for watching convergence while
poking at a running demo.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configDir)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(),
				os.Interrupt, syscall.SIGTERM)
			defer stop()

			ch, err := openChannel(ctx, cfg)
			if err != nil {
				return err
			}
			defer ch.Close()

			cancel := ch.OnReceive(func(snap authstate.Snapshot) {
				user := "<signed out>"
				if snap.User != nil {
					user = snap.User.ID
				}
				fmt.Printf("%s  authenticated=%v  user=%s\n",
					snap.Time().Format(time.RFC3339), snap.IsAuthenticated, user)
			})
			defer cancel()

			info("listening on %s channel (ctrl-c to stop)", cfg.Channel.Backend)
			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().StringVarP(&configDir, "config", "c", ".", "Directory containing authsync.json")

	return cmd
}

// openChannel builds the channel named by the config. The memory
// backend is in-process only and cannot be tailed from outside.
func openChannel(ctx context.Context, cfg *config.Config) (broadcast.Channel, error) {
	switch cfg.Channel.Backend {
	case config.BackendWebSocket:
		ch, err := broadcast.DialWS(ctx, cfg.Channel.WebSocket.URL)
		if err != nil {
			return nil, errors.New("A040").Wrap(err)
		}
		return ch, nil

	case config.BackendBlob:
		var loadOpts []func(*awsconfig.LoadOptions) error
		if cfg.Channel.Blob.Region != "" {
			loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Channel.Blob.Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, errors.New("A042").Wrap(err)
		}
		store := blob.NewS3Store(s3.NewFromConfig(awsCfg), cfg.Channel.Blob.Bucket,
			blob.WithPrefix(cfg.Channel.Blob.Prefix))
		return broadcast.NewBlobChannel(store, cfg.Channel.Blob.Key,
			broadcast.WithBlobPollInterval(cfg.BlobPollInterval())), nil

	default:
		return nil, errors.New("A081").
			WithDetail("the memory backend lives inside a single process and cannot be tailed").
			WithSuggestion("configure the websocket or blob backend")
	}
}
