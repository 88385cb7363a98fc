/* main.go
 * The "main" method for running the bot and its HTTP surface. Configuration is read from the environment, see config/config.go
 * Usage: go run . -test="false" -http="true"
 * Authors: Gamers Bot contributors
 */

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gamers-bot/api/api"
	"gamers-bot/api/external"
	"gamers-bot/api/query"
	"gamers-bot/api/store"
	"gamers-bot/bot"
	"gamers-bot/config"
	"gamers-bot/web"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func main() {
	envErr := godotenv.Load()

	//Flags
	testPtr := flag.String("test", "false", "Use main or test bot: takes true or false as argument")
	httpPtr := flag.String("http", "true", "Serve webhooks and session registration: takes true or false as argument")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := newLogger(cfg, os.Stderr)
	if envErr != nil {
		logger.Warn().Err(envErr).Msg("no .env file loaded, using the environment only")
	}

	useBeta, err := convertStrToBool(*testPtr)
	if err != nil {
		logger.Fatal().Str("test", *testPtr).Msg("Invalid \"test\" flag. Should be true or false")
	}
	serveHTTP, err := convertStrToBool(*httpPtr)
	if err != nil {
		logger.Fatal().Str("http", *httpPtr).Msg("Invalid \"http\" flag. Should be true or false")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions, err := store.NewStore(cfg.MongoDB, cfg.MongoURI)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to mongo")
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sessions.Close(closeCtx); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect from mongo")
		}
	}()

	cache, closeCache := newQueryCache(cfg, logger)
	defer closeCache()

	client, err := external.NewClient(cfg.APIURL, cfg.APITimeout, cfg.APIRateLimit, logger.With().Str("component", "external").Logger())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create platform client")
	}
	queries := query.NewClient(cache, cfg.CacheTTL, logger.With().Str("component", "query").Logger())

	apiPtr, err := api.NewAPI(client, queries, sessions, logger.With().Str("component", "api").Logger())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize API")
	}

	discordBot, err := bot.NewBot(cfg.DiscordToken(useBeta), apiPtr, cfg.WebURL, logger.With().Str("component", "bot").Logger())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize bot")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return discordBot.Run(gctx)
	})
	if serveHTTP {
		g.Go(func() error {
			return web.Start(gctx, web.Config{
				Addr:          cfg.HTTPAddr,
				API:           apiPtr,
				SessionSecret: cfg.SessionSecret,
				Logger:        logger.With().Str("component", "web").Logger(),
			})
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("shutting down after error")
		return
	}
	logger.Info().Msg("shut down")
}

// newQueryCache connects the shared redis cache when one is configured, otherwise an in process cache is used
func newQueryCache(cfg config.Config, logger zerolog.Logger) (store.QueryCache, func()) {
	if cfg.RedisAddr == "" {
		logger.Info().Msg("REDIS_ADDR not set, using in memory query cache")
		return store.NewMemoryCache(), func() {}
	}
	cache, err := store.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisNamespace)
	if err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to connect to redis")
	}
	return cache, func() {
		if err := cache.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close redis")
		}
	}
}
