package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/ai"
	"github.com/spigell/cv-matcher/internal/ai/gemini"
	"github.com/spigell/cv-matcher/internal/logger"
	"github.com/spigell/cv-matcher/internal/notify"
	"github.com/spigell/cv-matcher/internal/queue"
	"github.com/spigell/cv-matcher/internal/recruiting"
	"github.com/spigell/cv-matcher/internal/scoring"
	"github.com/spigell/cv-matcher/internal/secrets"
	"github.com/spigell/cv-matcher/internal/storage"
	"github.com/spigell/cv-matcher/internal/store"
)

// mustLogger builds the logger from the persistent flags.
func mustLogger() *zap.Logger {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}

func newAggregator(cfg *ScoringConfig, modeOverride string) (*scoring.Aggregator, error) {
	if cfg == nil {
		cfg = &ScoringConfig{}
	}

	mode := cfg.Mode
	if modeOverride != "" {
		mode = modeOverride
	}

	m, err := scoring.ParseMode(mode)
	if err != nil {
		return nil, err
	}

	rubric, err := scoring.RubricFromConfig(cfg.Weights)
	if err != nil {
		return nil, fmt.Errorf("scoring weights: %w", err)
	}

	return scoring.NewAggregator(rubric, m), nil
}

func newStore(ctx context.Context, config *Config, l *zap.Logger) (store.Store, error) {
	switch strings.ToLower(strings.TrimSpace(config.Store)) {
	case "memory":
		l.Warn("using in-memory store, data is lost on exit")
		return store.NewMemory(), nil
	case "", "mongo":
		if config.Mongo == nil || config.Mongo.URL == "" {
			return nil, errors.New("mongo url is not configured (set mongo.url or MONGO_URL)")
		}
		return store.NewMongo(ctx, config.Mongo.URL, config.Mongo.Database, l)
	default:
		return nil, fmt.Errorf("unknown store %q", config.Store)
	}
}

func newAnalyzer(ctx context.Context, cfg *AIConfig, l *zap.Logger) (ai.Analyzer, error) {
	if cfg == nil {
		cfg = &AIConfig{}
	}
	if cfg.Gemini == nil {
		cfg.Gemini = &GeminiConfig{}
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	generator, err := gemini.NewGenerator(ctx, gemini.Options{
		APIKey:     apiKey,
		Model:      cfg.Gemini.Model,
		MaxRetries: cfg.Gemini.MaxRetries,
		Logger:     l,
	})
	if err != nil {
		return nil, err
	}

	return gemini.NewAnalyzer(generator, logger.WithAI(l, "gemini", generator.Model())), nil
}

// newWhatsApp returns a disabled sender and no media fetcher when Twilio is not configured.
func newWhatsApp(cfg notify.TwilioConfig, l *zap.Logger) (notify.Sender, *notify.MediaFetcher, error) {
	token, err := secrets.Optional(secrets.Source{
		Name:  "twilio auth token",
		Value: cfg.AuthToken,
		File:  cfg.AuthFile,
		Env:   "TWILIO_AUTH_TOKEN",
	})
	if err != nil {
		return nil, nil, err
	}
	cfg.AuthToken = token

	sender, err := notify.NewTwilio(cfg, l)
	if errors.Is(err, notify.ErrNotConfigured) {
		l.Warn("whatsapp notifications are disabled",
			zap.String("hint", "set TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN_FILE and TWILIO_WHATSAPP_FROM"),
		)
		return notify.Disabled{}, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	return sender, notify.NewMediaFetcher(cfg.AccountSID, token, l), nil
}

// application bundles the service with the resources that must be released on exit.
type application struct {
	svc   *recruiting.Service
	close func()
}

func newApplication(ctx context.Context, config *Config, l *zap.Logger) (*application, error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	st, err := newStore(ctx, config, l)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	closers = append(closers, func() {
		if err := st.Close(context.Background()); err != nil {
			l.Warn("closing store", zap.Error(err))
		}
	})

	files, err := storage.New(ctx, config.Storage)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("file storage: %w", err)
	}

	analyzer, err := newAnalyzer(ctx, config.AI, l)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("building ai analyzer: %w", err)
	}

	aggregator, err := newAggregator(config.Scoring, "")
	if err != nil {
		closeAll()
		return nil, err
	}

	sender, media, err := newWhatsApp(config.Twilio, l)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("whatsapp: %w", err)
	}

	deps := recruiting.Deps{
		Store:       st,
		Files:       files,
		Analyzer:    analyzer,
		Aggregator:  aggregator,
		Sender:      sender,
		Logger:      l,
		CountryCode: config.Twilio.CountryCode,
	}
	if media != nil {
		deps.Media = media
	}

	a := &application{}
	if config.Queue.URL != "" {
		pub, err := queue.NewPublisher(config.Queue)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("queue: %w", err)
		}
		closers = append(closers, func() {
			if err := pub.Close(); err != nil {
				l.Warn("closing queue publisher", zap.Error(err))
			}
		})
		deps.Queue = pub
	} else {
		l.Info("matching queue is not configured, /matching/enqueue is disabled")
	}

	a.svc = recruiting.New(deps)
	a.close = closeAll

	l.Info("application ready",
		zap.String("store", config.Store),
		zap.String("storage", config.Storage.Backend),
		zap.String("scoring_mode", aggregator.Mode().String()),
	)

	return a, nil
}
