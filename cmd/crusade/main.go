package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aminvimazi/casualcrusade/internal/config"
	"github.com/aminvimazi/casualcrusade/internal/game"
	"github.com/aminvimazi/casualcrusade/internal/game/board"
	"github.com/aminvimazi/casualcrusade/internal/game/deck"
	"github.com/aminvimazi/casualcrusade/internal/game/watchers"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	levels     = flag.Int("levels", 3, "number of levels to play")
	realtime   = flag.Bool("realtime", false, "play walks back in real time instead of draining the clock")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting crusade",
		zap.String("version", version),
		zap.String("config", *configPath),
		zap.Int("levels", *levels),
		zap.Bool("realtime", *realtime),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received shutdown signal", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	outcome, err := play(ctx, cfg, logger)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("game aborted", zap.Error(err))
		os.Exit(1)
	}

	fmt.Printf("level %d  score %d  health %d\n", outcome.state.Level, outcome.state.Score, outcome.state.Health)
	fmt.Printf("placements %d  rejections %d  longest path %d  steps %d\n",
		outcome.stats.Placements, outcome.stats.Rejections, outcome.stats.LongestPath, outcome.stats.TotalSteps)
	logger.Info("crusade finished",
		zap.Int("score", outcome.state.Score),
		zap.Int("level", outcome.state.Level),
	)
}

type summary struct {
	state game.State
	stats watchers.SessionStats
}

func optionsFrom(cfg *config.Config) (game.Options, error) {
	rule, ok := board.RuleByName(cfg.Game.PlacementRule)
	if !ok {
		return game.Options{}, fmt.Errorf("unknown placement rule %q", cfg.Game.PlacementRule)
	}
	opts := game.DefaultOptions()
	opts.Cols = cfg.Game.Cols
	opts.Rows = cfg.Game.Rows
	opts.Start = board.Index{Col: cfg.Game.StartCol, Row: cfg.Game.StartRow}
	opts.StepDuration = cfg.Game.StepDuration
	opts.SettleDelay = cfg.Game.SettleDelay
	opts.StepScore = cfg.Game.StepScore
	opts.StartingHealth = cfg.Game.StartingHealth
	opts.Level = cfg.Game.Level
	opts.HealOnStep = cfg.Game.HealOnStep
	opts.RemoteMulti = cfg.Game.RemoteMulti
	opts.PlacementRule = rule
	opts.JournalCapacity = 0
	if cfg.Journal.Enabled {
		opts.JournalCapacity = cfg.Journal.Capacity
	}
	return opts, nil
}

// play places cards from a random hand until the requested number of
// levels is cleared, health runs out or no card fits.
func play(ctx context.Context, cfg *config.Config, logger *zap.Logger) (summary, error) {
	opts, err := optionsFrom(cfg)
	if err != nil {
		return summary{}, err
	}

	seed := cfg.Game.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	hand := deck.NewHand(rand.New(rand.NewSource(seed)), deck.Options{
		Size:       cfg.Game.HandSize,
		GemChance:  cfg.Game.GemChance,
		CanHaveGem: true,
	}, logger)

	picker := rand.New(rand.NewSource(seed + 1))

	engine := game.NewEngine(logger)
	defer engine.Close()
	engine.SetNotificationHandler(func(n game.GameNotification) {
		logger.Debug("event",
			zap.String("type", n.Type),
			zap.String("session_id", n.SessionID),
			zap.Any("data", n.Data),
		)
	})

	checks := make(chan game.LevelStatus, 1)
	session, err := engine.StartSession(opts, hand, game.LevelControllerFunc(func(status game.LevelStatus) {
		checks <- status
	}))
	if err != nil {
		return summary{}, err
	}

	if *realtime {
		go func() {
			if err := engine.Run(ctx, 10*time.Millisecond); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("clock stopped", zap.Error(err))
			}
		}()
	}

	result := func() summary {
		return summary{state: session.State(), stats: session.Stats()}
	}

	for cleared := 0; cleared < *levels; {
		card, idx, ok := pickMove(session, hand, picker)
		if !ok {
			logger.Info("no playable card", zap.Int("hand_size", hand.Size()))
			return result(), nil
		}
		hand.Take(card)
		if _, err := session.PlaceCard(card, idx); err != nil {
			hand.Return(card)
			logger.Warn("placement failed", zap.Stringer("tile", idx), zap.Error(err))
			continue
		}
		for hand.Size() < cfg.Game.HandSize {
			hand.DrawCard()
		}

		if !*realtime {
			session.Drain()
		}
		var status game.LevelStatus
		select {
		case status = <-checks:
		case <-ctx.Done():
			return result(), ctx.Err()
		}

		switch {
		case status.Depleted:
			logger.Info("health depleted", zap.Int("level", status.Level))
			return result(), nil
		case status.BoardFull:
			cleared++
			logger.Info("level cleared", zap.Int("level", status.Level), zap.Int("score", status.Score))
			if cleared < *levels {
				if err := session.NextLevel(); err != nil {
					return result(), err
				}
			}
		}
	}
	return result(), nil
}

// pickMove returns a random card from the hand and a random tile it fits.
func pickMove(session *game.Session, hand *deck.Hand, rng *rand.Rand) (*board.Card, board.Index, bool) {
	cards := hand.Cards()
	rng.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
	for _, card := range cards {
		spots := session.PossibleSpots(card)
		if len(spots) > 0 {
			return card, spots[rng.Intn(len(spots))], true
		}
	}
	return nil, board.Index{}, false
}

func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
