package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/confscout/speaker-scout/internal/catalog"
	"github.com/confscout/speaker-scout/internal/logger"
	"github.com/confscout/speaker-scout/internal/server"
)

const (
	defaultCatalogFile = "data/speakers.json"
	defaultAddress     = ":8000"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the speaker recommendation HTTP API",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("address", "a", "", "address to listen on (overrides server.address)")
	viper.BindPFlag("server.address", serveCmd.Flags().Lookup("address"))
}

func serve() {
	ctx := context.Background()

	log := mustLogger()

	config, err := getConfig()
	if err != nil {
		log.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		log.Fatal("config is required")
	}

	log.Info("starting the speaker-scout server", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	log.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	catalogFile := config.CatalogFile
	if catalogFile == "" {
		catalogFile = defaultCatalogFile
	}

	cat, err := catalog.FromFile(catalogFile)
	if err != nil {
		log.Fatal("loading speaker catalog",
			zap.Error(err),
			zap.String("hint", "set catalog-file in the configuration file"),
		)
	}

	log.Info("loaded speaker catalog",
		zap.String("file", catalogFile),
		zap.Int("count", cat.Len()),
	)

	engine, err := newMatcher(ctx, config, log)
	if err != nil {
		log.Fatal("building matcher", zap.Error(err))
	}
	defer engine.Close()

	serverCfg := server.Config{Address: defaultAddress}
	if config.Server != nil {
		if config.Server.Address != "" {
			serverCfg.Address = config.Server.Address
		}
		serverCfg.CORSOrigin = config.Server.CORSOrigin
	}

	srv := server.New(serverCfg, cat, engine, log)

	if err := srv.Run(); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func mustLogger() *zap.Logger {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}
