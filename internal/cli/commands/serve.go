package commands

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/OLEGSHA/kendb3/internal/api/fields"
	apiserver "github.com/OLEGSHA/kendb3/internal/api/server"
	"github.com/OLEGSHA/kendb3/internal/cli/config"
	"github.com/OLEGSHA/kendb3/internal/web/middleware"
	"github.com/OLEGSHA/kendb3/internal/web/server"
	"github.com/OLEGSHA/kendb3/internal/web/static"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the database API server",
		Long: "Load the configuration, assemble the model registry and serve " +
			"the data-manager API until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			log, err := zap.NewProduction()
			if err != nil {
				return fmt.Errorf("initializing logger: %w", err)
			}
			defer log.Sync()

			registry, err := buildRegistry()
			if err != nil {
				return err
			}

			closeDB, err := bindStores(cmd.Context(), registry, &cfg.Database)
			if err != nil {
				return err
			}

			serverConfig := server.DefaultConfig(buildHandler(cfg, registry, log))
			serverConfig.Address = cfg.Server.Address()
			if address != "" {
				serverConfig.Address = address
			}

			srv, err := server.New(serverConfig)
			if err != nil {
				closeDB()
				return err
			}

			shutdownConfig := server.DefaultShutdownConfig()
			shutdownConfig.Logger = log
			gs := server.NewGracefulShutdown(srv, shutdownConfig)
			gs.RegisterHook(func(ctx context.Context) error {
				return closeDB()
			})

			log.Info("configured",
				zap.String("address", serverConfig.Address),
				zap.String("driver", cfg.Database.Driver),
				zap.Int("models", registry.Count()),
			)
			return gs.Start()
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "listen address, overrides server.host and server.port")
	return cmd
}

// buildHandler assembles the middleware chain and the route tree.
func buildHandler(cfg *config.Config, registry *fields.Registry, log *zap.Logger) http.Handler {
	dataman := apiserver.NewDataManager(registry, log)

	router := chi.NewRouter()
	router.Mount(cfg.Server.APIPrefix+"/dataman", dataman.Routes())
	if cfg.Server.StaticDir != "" {
		router.Mount("/static", static.NewFileServer(cfg.Server.StaticDir, "/static"))
	}

	return middleware.NewChain(
		middleware.RequestID(),
		middleware.Logging(log),
		middleware.Recovery(log),
	).Then(router)
}
