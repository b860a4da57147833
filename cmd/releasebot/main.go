package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mmcdole/releasebot/internal/adapter"
	"github.com/mmcdole/releasebot/internal/adapter/catalog"
	"github.com/mmcdole/releasebot/internal/adapter/telegram"
	"github.com/mmcdole/releasebot/internal/adapter/translate"
	"github.com/mmcdole/releasebot/internal/bot"
	"github.com/mmcdole/releasebot/internal/httpapi"
	"github.com/mmcdole/releasebot/internal/scheduler"
	"github.com/mmcdole/releasebot/internal/search"
	"github.com/mmcdole/releasebot/internal/service"
	"github.com/mmcdole/releasebot/internal/store"
)

// Version is set at build time via -ldflags
var Version = "dev"

const (
	genreLoadTimeout = 30 * time.Second
	stopTimeout      = 10 * time.Second
)

func main() {
	var showVersion bool
	var configPath string
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.StringVar(&configPath, "config", "", "path to config.yaml")
	flag.Parse()

	if showVersion {
		fmt.Printf("releasebot %s\n", Version)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := adapter.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, logCloser, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger, logCloser = adapter.NullLogger(), nil
	}
	if logCloser != nil {
		defer logCloser.Close()
	}
	slog.SetDefault(logger)
	logger.Info("starting releasebot", "version", Version)

	discoveryLoc, err := cfg.Discovery.Location()
	if err != nil {
		return err
	}

	st, err := store.Open(store.Options{
		Path:     cfg.Store.Path,
		MaxLists: cfg.Store.MaxLists,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("failed to open state: %w", err)
	}
	defer st.Close()

	cat, err := catalog.New(&cfg.TMDB, logger)
	if err != nil {
		return err
	}
	translator, err := translate.New(&cfg.Translate, logger)
	if err != nil {
		return err
	}

	// Services
	enricher := service.NewEnricher(cat, translator, service.NewGate(cfg.Translate.MinInterval), service.EnricherOptions{
		PreferredRegion: cfg.Discovery.PrimaryRegion,
		FallbackRegion:  cfg.Discovery.FallbackRegion,
		Concurrency:     cfg.Discovery.Concurrency,
	}, logger)
	finder := service.NewFinder(cat, enricher, service.FinderOptions{
		PrimaryRegion:  cfg.Discovery.PrimaryRegion,
		FallbackRegion: cfg.Discovery.FallbackRegion,
		MinVotes:       cfg.Discovery.MinVotes,
		Location:       discoveryLoc,
	}, logger)
	picker := service.NewRandomPicker(cat, service.RandomOptions{
		PageCap:        cfg.Discovery.PageCap,
		MinRating:      cfg.Discovery.RandomMinRating,
		MinVotes:       cfg.Discovery.RandomMinVotes,
		AnimeKeywordID: cfg.Random.AnimeKeywordID,
	}, nil, logger)
	genres := service.NewGenreService(cat, st, search.NewGenreIndex(logger), logger)

	loadCtx, cancelLoad := context.WithTimeout(ctx, genreLoadTimeout)
	if err := genres.Load(loadCtx); err != nil {
		logger.Warn("genre taxonomy incomplete", "error", err)
	}
	cancelLoad()

	handler := bot.NewHandler(finder, picker, enricher, genres, st, bot.Options{
		TodayLimit:         cfg.Discovery.TodayLimit,
		NextLimit:          cfg.Discovery.NextLimit,
		HistoryLimit:       cfg.Discovery.HistoryLimit,
		HorizonDays:        cfg.Discovery.HorizonDays,
		MovieGenres:        cfg.Random.MovieGenres,
		SeriesGenres:       cfg.Random.SeriesGenres,
		AnimationGenreName: cfg.Random.AnimationGenreName,
		AnimationGenreID:   cfg.Random.AnimationGenreID,
	}, logger)

	tg, err := telegram.New(&cfg.Telegram, handler, logger)
	if err != nil {
		return err
	}

	// Operational surfaces
	var srv *httpapi.Server
	if cfg.Server.Addr != "" {
		srv = httpapi.NewServer(cfg.Server.Addr, httpapi.NewHandler(st, genres.Index(), logger), logger)
		srv.Start()
	}

	var sched *scheduler.Service
	if cfg.Schedule.Enabled {
		sched, err = newScheduler(cfg, handler, st, tg, logger)
		if err != nil {
			return err
		}
		if err := sched.Start(ctx); err != nil {
			return err
		}
	}

	if err := tg.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("shutting down")

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	if err := tg.Stop(); err != nil {
		logger.Warn("failed to stop polling", "error", err)
	}
	if sched != nil {
		if err := sched.Stop(stopCtx); err != nil {
			logger.Warn("failed to stop scheduler", "error", err)
		}
	}
	if srv != nil {
		if err := srv.Shutdown(stopCtx); err != nil {
			logger.Warn("failed to stop http server", "error", err)
		}
	}
	return nil
}

func newScheduler(cfg *adapter.Config, h *bot.Handler, st *store.State, tg *telegram.Bot, logger *slog.Logger) (*scheduler.Service, error) {
	loc, err := cfg.Schedule.Location()
	if err != nil {
		return nil, err
	}
	jobs, err := scheduler.JobsFromConfig(&cfg.Schedule)
	if err != nil {
		return nil, err
	}
	present := func(chatID int64) bot.Presenter {
		return telegram.NewSendNew(tg.API(), chatID)
	}
	return scheduler.New(h, st, present, jobs, scheduler.Options{
		Location: loc,
		Interval: cfg.Schedule.BroadcastInterval,
		Attempts: cfg.Schedule.SendAttempts,
	}, logger), nil
}
