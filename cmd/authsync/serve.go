package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/authsync/internal/config"
	"github.com/vango-dev/authsync/pkg/authstate"
	"github.com/vango-dev/authsync/pkg/broadcast"
	"github.com/vango-dev/authsync/pkg/payload"
	"github.com/vango-dev/authsync/pkg/serve"
)

func serveCmd() *cobra.Command {
	var (
		configDir string
		addr      string
		demo      bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo server",
		Long: `Run the demo server: an index page with the embedded hydration
payload, the /sync websocket relay, /healthz, and /metrics.

With --demo the page embeds a canned signed-in payload, which lets two
browser tabs demonstrate cross-context convergence without a real auth
backend.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configDir)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Address()
			}

			var provider serve.PayloadProvider
			if demo {
				provider = demoProvider
			}

			srv := serve.New(serve.Options{
				Addr:     addr,
				Provider: provider,
				Hub:      broadcast.NewHub(),
				Logger:   slog.Default(),
			})

			success("serving on http://%s", addr)
			info("sync endpoint at ws://%s/sync", addr)
			return srv.Run()
		},
	}

	cmd.Flags().StringVarP(&configDir, "config", "c", ".", "Directory containing authsync.json")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (overrides config)")
	cmd.Flags().BoolVar(&demo, "demo", false, "Embed a canned signed-in payload")

	return cmd
}

// demoProvider embeds a fixed signed-in user so the page hydrates
// authenticated without a real auth backend.
func demoProvider(r *http.Request) *payload.Payload {
	now := time.Now()
	p := payload.New(
		&authstate.User{
			ID:      "user_demo",
			Email:   "demo@example.com",
			Name:    "Demo User",
			Created: now.Add(-24 * time.Hour),
		},
		&authstate.Session{
			ID:      "sess_demo",
			UserID:  "user_demo",
			Status:  "active",
			Created: now.Add(-time.Hour),
			Expires: now.Add(time.Hour),
		},
		now,
	)
	return &p
}
