// Command laneview runs a simulation in a window. Keys 1-9 pick a defender
// from the catalog, a left click places it.
package main

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/windlane/lanes/internal/config"
	"github.com/windlane/lanes/internal/data"
	"github.com/windlane/lanes/internal/placement"
	"github.com/windlane/lanes/internal/progression"
	"github.com/windlane/lanes/internal/scripting"
	"github.com/windlane/lanes/internal/sim"
	"github.com/windlane/lanes/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/image/font/basicfont"
)

var (
	bgColor         = color.RGBA{24, 32, 28, 255}
	laneColor       = color.RGBA{40, 56, 46, 255}
	gridColor       = color.RGBA{60, 80, 66, 255}
	menuColor       = color.RGBA{16, 20, 18, 255}
	turbineColor    = color.RGBA{120, 200, 230, 255}
	turbineUsed     = color.RGBA{70, 90, 100, 255}
	enemyColor      = color.RGBA{150, 120, 90, 255}
	enemyHeldColor  = color.RGBA{190, 90, 70, 255}
	shooterColor    = color.RGBA{90, 200, 90, 255}
	eaterColor      = color.RGBA{140, 90, 180, 255}
	incomeColor     = color.RGBA{230, 200, 70, 255}
	rangedColor     = color.RGBA{230, 110, 150, 255}
	projectileColor = color.RGBA{220, 240, 200, 255}
	textColor       = color.RGBA{230, 230, 230, 255}
	errColor        = color.RGBA{240, 120, 110, 255}
)

var digitKeys = []ebiten.Key{
	ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5,
	ebiten.Key6, ebiten.Key7, ebiten.Key8, ebiten.Key9,
}

type viewer struct {
	sim      *sim.Simulation
	cfg      *config.Config
	kinds    []*data.DefenderTemplate
	selected int
	message  string
	msgColor color.Color
	dt       time.Duration
}

func (v *viewer) Update() error {
	for i, k := range digitKeys {
		if i < len(v.kinds) && inpututil.IsKeyJustPressed(k) {
			v.selected = i
		}
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && len(v.kinds) > 0 {
		x, y := ebiten.CursorPosition()
		kind := v.kinds[v.selected].ID
		if _, err := v.sim.PlaceDefender(kind, float64(x), float64(y)); err != nil {
			v.message, v.msgColor = placementMessage(err), errColor
		} else {
			v.message, v.msgColor = "placed "+kind, textColor
		}
	}
	v.sim.Tick(v.dt)
	return nil
}

func placementMessage(err error) string {
	switch {
	case errors.Is(err, placement.ErrUnaffordable):
		return "not enough currency"
	case errors.Is(err, placement.ErrOccupied):
		return "cell taken"
	case errors.Is(err, placement.ErrOutOfBounds):
		return "outside the field"
	case errors.Is(err, sim.ErrGameOver):
		return "game over"
	}
	return err.Error()
}

func (v *viewer) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)
	g := v.sim.Grid()
	gc := v.cfg.Grid
	width := float32(v.cfg.Simulation.Width)

	vector.DrawFilledRect(screen, 0, 0, width, float32(gc.MenuBand), menuColor, false)
	for lane := 0; lane < g.Lanes(); lane++ {
		top := float32(g.LaneY(lane) - g.LaneHeight()/2)
		vector.DrawFilledRect(screen, 0, top, width, float32(g.LaneHeight())-2, laneColor, false)
	}
	for c := 0; c <= g.Columns(); c++ {
		x := float32(gc.OriginX + float64(c)*g.CellWidth())
		vector.StrokeLine(screen, x, float32(gc.MenuBand), x, float32(v.cfg.Simulation.Height), 1, gridColor, false)
	}

	snap := v.sim.Snapshot()
	for _, t := range snap.Turbines {
		clr := turbineColor
		if t.Used {
			clr = turbineUsed
		}
		vector.DrawFilledCircle(screen, float32(t.X), float32(t.Y), float32(v.cfg.Turbine.Radius), clr, true)
	}
	for _, d := range snap.Defenders {
		vector.DrawFilledCircle(screen, float32(d.X), float32(d.Y), float32(v.cfg.Combat.DefenderRadius), kindColor(d.Kind), true)
		if d.State != "idle" {
			text.Draw(screen, d.State, basicfont.Face7x13, int(d.X)-20, int(d.Y)+34, textColor)
		}
	}
	for _, e := range snap.Enemies {
		clr := enemyColor
		if e.State != world.Advancing {
			clr = enemyHeldColor
		}
		vector.DrawFilledCircle(screen, float32(e.X), float32(e.Y), float32(e.Radius), clr, true)
		if e.MaxHealth > 0 {
			w := float32(e.Radius*2) * float32(e.Health) / float32(e.MaxHealth)
			vector.DrawFilledRect(screen, float32(e.X-e.Radius), float32(e.Y-e.Radius)-6, w, 3, textColor, false)
		}
	}
	for _, p := range snap.Projectiles {
		vector.DrawFilledCircle(screen, float32(p.X), float32(p.Y), float32(v.cfg.Combat.ProjectileRadius), projectileColor, true)
	}

	v.drawHUD(screen, snap)
}

func (v *viewer) drawHUD(screen *ebiten.Image, snap sim.Snapshot) {
	face := basicfont.Face7x13
	x := 12
	for i, k := range v.kinds {
		label := fmt.Sprintf("%d %s (%d)", i+1, k.Name, k.Cost)
		clr := color.Color(gridColor)
		if i == v.selected {
			clr = textColor
		}
		text.Draw(screen, label, face, x, 24, clr)
		x += len(label)*7 + 18
	}
	status := fmt.Sprintf("balance %d   time %s", snap.Balance, snap.Elapsed.Truncate(time.Second))
	text.Draw(screen, status, face, 12, 48, textColor)
	if v.message != "" {
		text.Draw(screen, v.message, face, 12, 72, v.msgColor)
	}
	if snap.Outcome != progression.None {
		text.Draw(screen, "-- "+snap.Outcome.String()+" --", face, int(v.cfg.Simulation.Width)/2-40, 72, textColor)
	}
}

func kindColor(k data.DefenderKind) color.Color {
	switch k {
	case data.KindEater:
		return eaterColor
	case data.KindIncome:
		return incomeColor
	case data.KindRanged:
		return rangedColor
	}
	return shooterColor
}

func (v *viewer) Layout(_, _ int) (int, int) {
	return int(v.cfg.Simulation.Width), int(v.cfg.Simulation.Height)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := "config/lanes.toml"
	if p := os.Getenv("LANES_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	enemies, err := data.LoadEnemyTable(cfg.Data.Enemies)
	if err != nil {
		return fmt.Errorf("load enemy table: %w", err)
	}
	defenders, err := data.LoadDefenderTable(cfg.Data.Defenders)
	if err != nil {
		return fmt.Errorf("load defender table: %w", err)
	}

	opts := []sim.Option{sim.WithLogger(log)}
	lua, err := scripting.NewEngine(cfg.Data.Scripts, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer lua.Close()
	if lua.Has("pick_spawn") {
		opts = append(opts, sim.WithSpawnPicker(lua))
	}

	s, err := sim.New(cfg, enemies, defenders, opts...)
	if err != nil {
		return fmt.Errorf("simulation: %w", err)
	}

	v := &viewer{
		sim:   s,
		cfg:   cfg,
		kinds: defenders.All(),
		dt:    time.Second / time.Duration(ebiten.TPS()),
	}
	ebiten.SetWindowSize(int(cfg.Simulation.Width), int(cfg.Simulation.Height))
	ebiten.SetWindowTitle("lanes")
	return ebiten.RunGame(v)
}

// newLogger keeps the viewer's console quiet below warnings.
func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level := zapcore.WarnLevel
	if l, err := zapcore.ParseLevel(cfg.Level); err == nil && l > level {
		level = l
	}
	zapCfg := zap.NewDevelopmentConfig()
	zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	zapCfg.DisableCaller = true
	zapCfg.DisableStacktrace = true
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}
