package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/windlane/lanes/internal/config"
	"github.com/windlane/lanes/internal/core/event"
	"github.com/windlane/lanes/internal/data"
	"github.com/windlane/lanes/internal/progression"
	"github.com/windlane/lanes/internal/scripting"
	"github.com/windlane/lanes/internal/sim"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(p *message.Printer, label string, count int) {
	numStr := p.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

// ── Run ────────────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/lanes.toml"
	if p := os.Getenv("LANES_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	pr := message.NewPrinter(language.English)

	// 3. Catalogs
	printSection("Catalogs")
	enemies, err := data.LoadEnemyTable(cfg.Data.Enemies)
	if err != nil {
		return fmt.Errorf("load enemy table: %w", err)
	}
	printStat(pr, "Enemy types", enemies.Count())

	defenders, err := data.LoadDefenderTable(cfg.Data.Defenders)
	if err != nil {
		return fmt.Errorf("load defender table: %w", err)
	}
	printStat(pr, "Defender types", defenders.Count())

	// 4. Scripts
	opts := []sim.Option{sim.WithLogger(log)}
	lua, err := scripting.NewEngine(cfg.Data.Scripts, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer lua.Close()
	if lua.Has("pick_spawn") {
		opts = append(opts, sim.WithSpawnPicker(lua))
		printOK("Lua spawn picker loaded")
	}
	fmt.Println()

	// 5. Simulation
	s, err := sim.New(cfg, enemies, defenders, opts...)
	if err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	stats := watch(s.Events(), log)

	opening := append([]config.Placement(nil), cfg.Opening...)
	sort.SliceStable(opening, func(i, j int) bool { return opening[i].At < opening[j].At })

	printSection("Running")
	printOK(fmt.Sprintf("run %s (tick %s, realtime %t)", s.RunID, cfg.Simulation.TickRate, cfg.Simulation.Realtime))
	fmt.Println()

	// 6. Tick loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownCh)

	step := func() bool {
		opening = placeDue(s, opening, log)
		s.Tick(cfg.Simulation.TickRate)
		return s.Outcome() == progression.None
	}

	if cfg.Simulation.Realtime {
		ticker := time.NewTicker(cfg.Simulation.TickRate)
		defer ticker.Stop()
	loop:
		for {
			select {
			case <-ticker.C:
				if !step() {
					break loop
				}
			case sig := <-shutdownCh:
				log.Info("shutdown signal", zap.String("signal", sig.String()))
				break loop
			}
		}
	} else {
	fast:
		for step() {
			select {
			case sig := <-shutdownCh:
				log.Info("shutdown signal", zap.String("signal", sig.String()))
				break fast
			default:
			}
		}
	}
	// Deliver the events of the final tick.
	s.Tick(0)

	report(pr, s, stats)
	return nil
}

// placeDue attempts every opening placement whose time has come and returns
// the ones still waiting.
func placeDue(s *sim.Simulation, pending []config.Placement, log *zap.Logger) []config.Placement {
	for len(pending) > 0 && pending[0].At <= s.Elapsed() {
		p := pending[0]
		pending = pending[1:]
		if _, err := s.PlaceDefender(p.Kind, p.X, p.Y); err != nil {
			log.Warn("opening placement rejected",
				zap.String("kind", p.Kind),
				zap.Float64("x", p.X),
				zap.Float64("y", p.Y),
				zap.Error(err),
			)
		}
	}
	return pending
}

type runStats struct {
	spawned    int
	destroyed  map[event.Cause]int
	placed     int
	spent      int
	lost       int
	income     int
	turbines   int
	outcome    string
	finishedAt time.Duration
}

// watch subscribes the run report and log lines to the event stream.
func watch(bus *event.Bus, log *zap.Logger) *runStats {
	st := &runStats{destroyed: make(map[event.Cause]int)}
	event.Subscribe(bus, func(e event.EnemySpawned) { st.spawned++ })
	event.Subscribe(bus, func(e event.EnemyDestroyed) { st.destroyed[e.Cause]++ })
	event.Subscribe(bus, func(e event.DefenderPlaced) {
		st.placed++
		st.spent += e.Cost
		log.Info("defender placed",
			zap.String("kind", e.TypeID),
			zap.Int("lane", e.Lane),
			zap.Int("column", e.Column),
		)
	})
	event.Subscribe(bus, func(e event.DefenderDestroyed) {
		st.lost++
		log.Info("defender lost", zap.String("kind", e.TypeID), zap.Duration("at", e.At))
	})
	event.Subscribe(bus, func(e event.IncomePaid) { st.income += e.Amount })
	event.Subscribe(bus, func(e event.TurbineTriggered) { st.turbines++ })
	event.Subscribe(bus, func(e event.GameOver) {
		st.outcome = e.Outcome
		st.finishedAt = e.At
	})
	return st
}

func report(pr *message.Printer, s *sim.Simulation, st *runStats) {
	printSection("Report")
	outcome := st.outcome
	if outcome == "" {
		outcome = "interrupted"
	}
	printOK(pr.Sprintf("%s after %s", outcome, s.Elapsed().Round(time.Millisecond)))
	printStat(pr, "Enemies spawned", st.spawned)

	causes := make([]string, 0, len(st.destroyed))
	for c := range st.destroyed {
		causes = append(causes, string(c))
	}
	sort.Strings(causes)
	for _, c := range causes {
		printStat(pr, "Destroyed by "+c, st.destroyed[event.Cause(c)])
	}
	printStat(pr, "Defenders placed", st.placed)
	printStat(pr, "Defenders lost", st.lost)
	printStat(pr, "Turbines triggered", st.turbines)
	printStat(pr, "Currency earned", st.income)
	printStat(pr, "Currency spent", st.spent)
	printStat(pr, "Final balance", s.Balance())
	fmt.Println()
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
