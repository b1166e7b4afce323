package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/olusolaa/sailbuddy/foundation/config"
	"github.com/olusolaa/sailbuddy/foundation/llm"
	"github.com/olusolaa/sailbuddy/foundation/spotify"
	"github.com/olusolaa/sailbuddy/sailbuddy/agent"
	"github.com/olusolaa/sailbuddy/sailbuddy/ui"
)

func main() {
	settingsPath := flag.String("config", "", "settings file (default "+config.DefaultSettingsFile+" when present)")
	flag.Parse()

	if err := run(*settingsPath); err != nil {
		log.Fatalf("❌ SailBuddy failed: %v", err)
	}
}

func run(settingsPath string) error {
	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		return err
	}

	logger, err := newLogger(settings.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	creds, err := config.LoadCredentials(settings.Credentials.File)
	if err != nil {
		return err
	}
	if err := creds.Require(config.RequiredKeys(settings.LLM.Provider)...); err != nil {
		return fmt.Errorf("%s: %w", settings.Credentials.File, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	spotifyClient, err := connectSpotify(ctx, settings, creds, logger)
	if err != nil {
		return err
	}

	chatModel, err := llm.NewChatModel(ctx, settings.LLM, creds)
	if err != nil {
		return err
	}
	logger.Info("chat model ready", zap.String("provider", settings.LLM.Provider), zap.String("model", settings.LLM.Model))

	registry, err := setupTools(ctx, settings, spotifyClient)
	if err != nil {
		return err
	}

	sailBuddy, err := agent.New(ctx, chatModel, registry, agent.NewMemory(settings.Agent.HistoryLimit),
		agent.WithMaxSteps(settings.Agent.MaxSteps),
		agent.WithLogger(logger.Named("agent")),
	)
	if err != nil {
		return fmt.Errorf("failed to create agent: %w", err)
	}

	page, err := ui.NewServer(settings.Server.Addr, sailBuddy, logger.Named("ui"))
	if err != nil {
		return fmt.Errorf("failed to create page server: %w", err)
	}

	logger.Info("⛵ SailBuddy is listening", zap.String("addr", "http://"+settings.Server.Addr))
	return page.Serve(ctx)
}

// connectSpotify authenticates the user and checks the token against the
// current user endpoint before anything else starts.
func connectSpotify(ctx context.Context, settings *config.Settings, creds config.Credentials, logger *zap.Logger) (*spotify.Client, error) {
	auth, err := spotify.NewAuthenticator(spotify.Config{
		ClientID:     creds.Get(config.KeySpotifyClientID),
		ClientSecret: creds.Get(config.KeySpotifyClientSecret),
		RedirectURI:  creds.Get(config.KeySpotifyRedirectURI),
		CachePath:    settings.Spotify.TokenCache,
	}, spotify.WithAuthLogger(logger.Named("spotify")))
	if err != nil {
		return nil, err
	}

	tokens, err := auth.Authenticate(ctx)
	if err != nil {
		return nil, fmt.Errorf("spotify authentication failed: %w", err)
	}

	client := spotify.NewClient(tokens, spotify.WithClientLogger(logger.Named("spotify")))
	user, err := client.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("spotify current user check failed: %w", err)
	}
	logger.Info("spotify token saved", zap.String("user_id", user.ID), zap.String("cache", auth.CachePath()))
	return client, nil
}

func newLogger(s config.LogSettings) (*zap.Logger, error) {
	if s.Development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
