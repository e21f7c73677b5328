package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/l1jgo/unitsim/internal/config"
	"github.com/l1jgo/unitsim/internal/content"
	"github.com/l1jgo/unitsim/internal/core/event"
	coresys "github.com/l1jgo/unitsim/internal/core/system"
	"github.com/l1jgo/unitsim/internal/data"
	gonet "github.com/l1jgo/unitsim/internal/net"
	"github.com/l1jgo/unitsim/internal/net/packet"
	"github.com/l1jgo/unitsim/internal/netsync"
	"github.com/l1jgo/unitsim/internal/persist"
	"github.com/l1jgo/unitsim/internal/scripting"
	"github.com/l1jgo/unitsim/internal/system"
	"github.com/l1jgo/unitsim/internal/unit"
	"github.com/l1jgo/unitsim/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(name, role string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              unitsim  v0.1.0              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mnode:\033[0m %s \033[90m(%s)\033[0m\n\n", name, role)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main loop ─────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("UNITSIM_CONFIG"); p != "" {
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

	printBanner(cfg.Server.Name, cfg.Server.Role)

	// 3. Load data tables
	printSection("data")
	tables, err := loadTables(cfg.Simulation.DataDir)
	if err != nil {
		return err
	}
	printStat("unit types", tables.units.Count())
	printStat("items", tables.items.Count())
	printStat("floors", tables.env.FloorCount())
	printStat("status effects", tables.env.StatusCount())
	printStat("factory blocks", tables.factories.Count())
	fmt.Println()

	// 4. Lua engine
	printSection("scripts")
	lua, err := scripting.NewEngine(cfg.Simulation.ScriptsDir, log.Named("lua"))
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer lua.Close()
	printOK("Lua engine loaded")
	fmt.Println()

	// 5. World and unit content
	printSection("world")
	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	bus := event.NewBus()
	ws, err := world.NewState(world.Options{
		Layout:   tables.layout,
		Env:      tables.env,
		Items:    tables.items,
		Rules:    unitRules(cfg.Rules),
		Bus:      bus,
		Headless: cfg.Simulation.Headless,
		Seed:     seed,
		Log:      log.Named("world"),
	})
	if err != nil {
		return fmt.Errorf("world: %w", err)
	}
	if err := content.Build(tables.units, ws, lua, log); err != nil {
		return fmt.Errorf("build content: %w", err)
	}
	if err := ws.PlaceFactories(tables.layout, tables.factories); err != nil {
		return fmt.Errorf("place factories: %w", err)
	}
	printStat("cores", len(ws.Cores()))
	printStat("factories", len(ws.Factories()))
	printStat("wave spawns", len(ws.SpawnPoints()))

	role := packet.RoleReplica
	if cfg.Authoritative() {
		role = packet.RoleAuthority
	}
	node := netsync.NewNode(role, cfg.Server.Name, ws, log.Named("sync"))
	ws.Sim().Net = node
	fmt.Println()

	// 6. Database (authority only): migrations, restore
	var (
		unitRepo  *persist.UnitRepo
		destroyed *persist.DestructionLog
	)
	if cfg.Database.Enabled && cfg.Authoritative() {
		printSection("database")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		if err := persist.RunMigrations(ctx, db.Pool, log); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK("migrations applied")

		unitRepo = persist.NewUnitRepo(db)
		destroyed = persist.NewDestructionLog(db)
		n, err := restoreUnits(ctx, ws, unitRepo, log)
		if err != nil {
			return fmt.Errorf("restore units: %w", err)
		}
		printStat("restored units", n)
		if recent, err := destroyed.Recent(ctx, 1); err != nil {
			log.Warn("read destruction log", zap.Error(err))
		} else if len(recent) > 0 {
			log.Info("last recorded destruction",
				zap.Int32("unit", recent[0].UnitID), zap.String("type", recent[0].Type), zap.Uint64("tick", recent[0].Tick))
		}
		fmt.Println()
	}

	// 7. Network
	printSection("network")
	sessCfg := gonet.SessionConfig{
		InQueueSize:  cfg.Network.InQueueSize,
		OutQueueSize: cfg.Network.OutQueueSize,
		MsgPerSec:    cfg.Network.MaxMessagesPerSec,
		WriteTimeout: cfg.Network.WriteTimeout,
		ReadTimeout:  cfg.Network.ReadTimeout,
	}
	var netServer *gonet.Server
	if cfg.Authoritative() {
		netServer, err = gonet.NewServer(cfg.Network.BindAddress, cfg.Network.MaxPeers, sessCfg, log.Named("net"))
		if err != nil {
			return fmt.Errorf("network: %w", err)
		}
		go netServer.AcceptLoop()
		printReady(fmt.Sprintf("listening on %s", netServer.Addr().String()))
	} else {
		sess, err := gonet.Dial(cfg.Server.AuthorityAddress, sessCfg, log.Named("net"))
		if err != nil {
			return fmt.Errorf("dial authority %s: %w", cfg.Server.AuthorityAddress, err)
		}
		node.AddPeer(netsync.NewSessionPeer(sess))
		defer sess.Close()
		printReady(fmt.Sprintf("connected to %s", cfg.Server.AuthorityAddress))
	}

	// 8. Systems
	runner := coresys.NewRunner()
	runner.Register(system.NewInputSystem(netServer, node, cfg.Network.MaxMessagesPerTick, log.Named("input")))
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewProductionSystem(ws, node, cfg.Rules.UnitBuildSpeedMultiplier, log.Named("production")))
	runner.Register(system.NewUnitUpdateSystem(ws))
	runner.Register(system.NewPhysicsSystem(ws))
	runner.Register(system.NewOutputSystem(node))
	var persistSys *system.PersistenceSystem
	if unitRepo != nil {
		persistSys = system.NewPersistenceSystem(ws, unitRepo, destroyed, log.Named("persist"), cfg.Simulation.SaveIntervalTicks)
		runner.Register(persistSys)
	}
	runner.Register(system.NewCleanupSystem(ws))
	if cfg.Player.Console {
		var history system.DestructionHistory
		if destroyed != nil {
			history = destroyed
		}
		console := system.NewConsoleSystem(ws, node, lua, history, os.Stdout, log.Named("console"))
		runner.Register(console)
		go console.ReadFrom(os.Stdin)
		printOK("console ready (.help)")
	}
	if cfg.Player.Name != "" {
		if err := node.JoinPlayer(cfg.Player.Name, cfg.Player.UnitType, unit.Team(cfg.Player.Team)); err != nil {
			return fmt.Errorf("join player %s: %w", cfg.Player.Name, err)
		}
	}

	// 9. Game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Network.TickRate)
	defer ticker.Stop()

	printReady(fmt.Sprintf("game loop started (tick: %s)", cfg.Network.TickRate))
	fmt.Println()

	const overrunLogEvery = 300
	overruns := 0
	for {
		select {
		case <-ticker.C:
			if runner.Tick(cfg.Network.TickRate) {
				overruns++
				if overruns%overrunLogEvery == 1 {
					log.Warn("tick overrun",
						zap.Duration("took", runner.LastDuration()),
						zap.Duration("rate", cfg.Network.TickRate),
						zap.Int("overruns", overruns),
						zap.Int("units", ws.UnitCount()),
					)
				}
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()), zap.Uint64("ticks", runner.Ticks()))
			if cfg.Player.Name != "" && !cfg.Authoritative() {
				node.LeavePlayer(cfg.Player.Name)
				node.Flush()
			}
			if persistSys != nil {
				persistSys.SaveAll()
			}
			if netServer != nil {
				netServer.Shutdown()
			}
			log.Info("node stopped", zap.Int("units", ws.UnitCount()))
			return nil
		}
	}
}

type dataTables struct {
	units     *data.UnitTable
	items     *data.ItemTable
	env       *data.EnvTable
	factories *data.FactoryTable
	layout    *data.MapLayout
}

func loadTables(dir string) (*dataTables, error) {
	var (
		t   dataTables
		err error
	)
	if t.units, err = data.LoadUnitTable(filepath.Join(dir, "unit_types.yaml")); err != nil {
		return nil, fmt.Errorf("load unit types: %w", err)
	}
	if t.items, err = data.LoadItemTable(filepath.Join(dir, "items.yaml")); err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	if t.env, err = data.LoadEnvTable(filepath.Join(dir, "environment.yaml")); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	if t.factories, err = data.LoadFactoryTable(filepath.Join(dir, "factories.yaml")); err != nil {
		return nil, fmt.Errorf("load factories: %w", err)
	}
	if t.layout, err = data.LoadMapLayout(filepath.Join(dir, "map.yaml")); err != nil {
		return nil, fmt.Errorf("load map: %w", err)
	}
	return &t, nil
}

func unitRules(r config.RulesConfig) unit.Rules {
	return unit.Rules{
		UnitAmmo:         r.UnitAmmo,
		UnitCap:          r.UnitCap,
		UnitCapVariable:  r.UnitCapVariable,
		WaveTeam:         unit.Team(r.WaveTeam),
		DropZoneRadius:   r.DropZoneRadius,
		DamageExplosions: r.DamageExplosions,
	}
}

// restoreUnits re-adds the last saved unit set. Snapshots of types no longer
// defined are skipped.
func restoreUnits(ctx context.Context, ws *world.State, repo *persist.UnitRepo, log *zap.Logger) (int, error) {
	snaps, err := repo.LoadAll(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, s := range snaps {
		if _, err := ws.RestoreUnit(s); err != nil {
			log.Warn("skip saved unit", zap.Int32("unit", s.ID), zap.Error(err))
			continue
		}
		n++
	}
	return n, nil
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
