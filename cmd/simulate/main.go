// Command simulate plays a bot-vs-bot match and prints its log, result and
// checksum. The same seed and catalog always produce the same checksum.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"

	"go.uber.org/zap"

	"github.com/hexclash/hexclash-server-go/internal/catalog"
	"github.com/hexclash/hexclash-server-go/internal/config"
	"github.com/hexclash/hexclash-server-go/internal/game"
	"github.com/hexclash/hexclash-server-go/internal/game/ai"
	"github.com/hexclash/hexclash-server-go/internal/game/player"
)

var (
	configPath = flag.String("config", config.DefaultPath, "path to configuration file")
	seed       = flag.Int64("seed", 1, "match seed; overrides match.seed")
	maxTurns   = flag.Int("turns", 0, "turn limit; 0 keeps rules.max_turns")
	quiet      = flag.Bool("quiet", false, "print only the result and checksum")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "simulate: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	cat, err := catalog.Open(ctx, cfg.Catalog.Path, cfg.Catalog.DatabaseURL, logger)
	if err != nil {
		return err
	}

	settings := cfg.Settings()
	settings.Seed = *seed
	if *maxTurns > 0 {
		settings.MaxTurns = *maxTurns
	}

	m, err := game.NewManager(logger, settings, cat.Templates())
	if err != nil {
		return err
	}
	defer m.Close()

	// Each bot gets its own stream derived from the match seed.
	for i, side := range []player.Side{player.SideA, player.SideB} {
		rng := rand.New(rand.NewSource(settings.Seed + int64(i) + 1))
		bot := ai.New(logger.Named("bot"), m.Seat(side), rng)
		m.Subscribe(bot.OnSnapshot)
	}

	recorder := game.NewReplayRecorder(logger)
	recorder.Attach(m)

	if err := m.StartGame(); err != nil {
		return fmt.Errorf("start match: %w", err)
	}
	// Both bots play out the whole match inside StartGame's notifications.
	m.WaitFlavor()

	snap := m.Snapshot()
	if !*quiet {
		for _, msg := range snap.Messages {
			fmt.Printf("[turn %2d] %-7s %s\n", msg.Turn, msg.Kind, msg.Text)
		}
		fmt.Println()
	}

	for _, p := range snap.Players {
		st := snap.Stats[p.Side]
		fmt.Printf("%-10s health %3d  score %3d  played %2d  destroyed %2d\n",
			p.Name, p.Health, p.Score, st.CardsPlayed, st.CardsDestroyed)
	}

	result := "draw"
	if p := snap.Player(snap.Winner); p != nil {
		result = p.Name + " wins"
	}
	sum, err := snap.ComputeChecksum()
	if err != nil {
		return fmt.Errorf("checksum: %w", err)
	}

	states := 0
	if replay, ok := recorder.GetReplay(snap.MatchID); ok {
		states = replay.Size()
	}

	fmt.Printf("result:   %s after %d turns\n", result, snap.Turn)
	fmt.Printf("seed:     %d\n", settings.Seed)
	fmt.Printf("states:   %d\n", states)
	fmt.Printf("checksum: %s\n", sum.Hash)

	logger.Debug("simulation finished", zap.String("match_id", snap.MatchID), zap.Bool("game_over", snap.GameOver))
	return nil
}
