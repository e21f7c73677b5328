package system

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/l1jgo/unitsim/internal/control"
	coresys "github.com/l1jgo/unitsim/internal/core/system"
	"github.com/l1jgo/unitsim/internal/netsync"
	"github.com/l1jgo/unitsim/internal/persist"
	"github.com/l1jgo/unitsim/internal/unit"
	"github.com/l1jgo/unitsim/internal/world"
	"go.uber.org/zap"
)

// LuaRunner executes ad-hoc Lua source.
type LuaRunner interface {
	LoadString(src string) error
}

// DestructionHistory reads back the destruction log.
type DestructionHistory interface {
	Recent(ctx context.Context, limit int) ([]persist.DestructionEntry, error)
}

const consoleQueue = 64

// ConsoleSystem runs "." prefixed operator commands typed on the node's
// terminal. Lines arrive on a reader goroutine and run in the Input phase,
// between ticks. Phase 0 (Input).
type ConsoleSystem struct {
	world   *world.State
	node    *netsync.Node
	lua     LuaRunner          // may be nil
	history DestructionHistory // nil without a database
	out     io.Writer
	log     *zap.Logger
	lines   chan string
	inputs  map[string]control.Input
}

func NewConsoleSystem(ws *world.State, node *netsync.Node, lua LuaRunner, history DestructionHistory, out io.Writer, log *zap.Logger) *ConsoleSystem {
	return &ConsoleSystem{
		world:   ws,
		node:    node,
		lua:     lua,
		history: history,
		out:     out,
		log:     log,
		lines:   make(chan string, consoleQueue),
		inputs:  make(map[string]control.Input),
	}
}

func (s *ConsoleSystem) Phase() coresys.Phase { return coresys.PhaseInput }

// ReadFrom queues lines from r until it ends. Run on its own goroutine.
func (s *ConsoleSystem) ReadFrom(r io.Reader) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s.lines <- sc.Text()
	}
}

// Submit queues one line without blocking. A full queue drops it.
func (s *ConsoleSystem) Submit(line string) bool {
	select {
	case s.lines <- line:
		return true
	default:
		return false
	}
}

func (s *ConsoleSystem) Update(_ time.Duration) {
	for {
		select {
		case line := <-s.lines:
			s.Exec(line)
		default:
			return
		}
	}
}

// Exec runs one command. Returns false if text is not a command.
func (s *ConsoleSystem) Exec(text string) bool {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, ".") {
		return false
	}
	parts := strings.Fields(text[1:])
	if len(parts) == 0 {
		return true
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help":
		s.help()
	case "join":
		s.join(args)
	case "move":
		s.steer(args, func(in *control.Input, x, y float64) { in.Move = unit.Vec2{X: x, Y: y} })
	case "aim":
		s.steer(args, func(in *control.Input, x, y float64) { in.AimX, in.AimY = x, y })
	case "shoot":
		s.toggle(args, func(in *control.Input, on bool) { in.Shooting = on })
	case "boost":
		s.toggle(args, func(in *control.Input, on bool) { in.Boost = on })
	case "stop":
		s.stop(args)
	case "leave":
		s.leave(args)
	case "who":
		s.who()
	case "stats":
		s.stats()
	case "recent":
		s.recent(args)
	case "lua":
		s.runLua(strings.TrimSpace(strings.TrimPrefix(text[1:], parts[0])))
	default:
		s.printf("unknown command .%s, try .help", cmd)
	}
	return true
}

func (s *ConsoleSystem) printf(format string, a ...any) {
	fmt.Fprintf(s.out, format+"\n", a...)
}

func (s *ConsoleSystem) help() {
	s.printf(".join <name> <type> <team>   spawn a player unit at the team core")
	s.printf(".move <name> <x> <y>         set movement direction")
	s.printf(".aim <name> <x> <y>          set aim point")
	s.printf(".shoot <name> on|off")
	s.printf(".boost <name> on|off")
	s.printf(".stop <name>                 clear movement")
	s.printf(".leave <name>                hand the unit back to its AI")
	s.printf(".who  .stats  .recent [n]  .lua <source>")
}

func (s *ConsoleSystem) join(args []string) {
	if len(args) < 3 {
		s.printf("usage: .join <name> <type> <team>")
		return
	}
	team, err := strconv.Atoi(args[2])
	if err != nil {
		s.printf("bad team %q", args[2])
		return
	}
	if err := s.node.JoinPlayer(args[0], args[1], unit.Team(team)); err != nil {
		s.printf("join failed: %v", err)
		return
	}
	s.inputs[args[0]] = control.Input{}
	s.log.Info("console join", zap.String("player", args[0]), zap.String("type", args[1]), zap.Int("team", team))
}

func (s *ConsoleSystem) steer(args []string, set func(in *control.Input, x, y float64)) {
	if len(args) < 3 {
		s.printf("usage: <name> <x> <y>")
		return
	}
	x, errX := strconv.ParseFloat(args[1], 64)
	y, errY := strconv.ParseFloat(args[2], 64)
	if errX != nil || errY != nil {
		s.printf("bad coordinates %q %q", args[1], args[2])
		return
	}
	in := s.inputs[args[0]]
	set(&in, x, y)
	s.send(args[0], in)
}

func (s *ConsoleSystem) toggle(args []string, set func(in *control.Input, on bool)) {
	if len(args) < 2 {
		s.printf("usage: <name> on|off")
		return
	}
	in := s.inputs[args[0]]
	set(&in, args[1] == "on")
	s.send(args[0], in)
}

func (s *ConsoleSystem) stop(args []string) {
	if len(args) < 1 {
		s.printf("usage: .stop <name>")
		return
	}
	in := s.inputs[args[0]]
	in.Move = unit.Vec2{}
	s.send(args[0], in)
}

func (s *ConsoleSystem) send(name string, in control.Input) {
	s.inputs[name] = in
	s.node.PlayerInput(name, in)
}

func (s *ConsoleSystem) leave(args []string) {
	if len(args) < 1 {
		s.printf("usage: .leave <name>")
		return
	}
	delete(s.inputs, args[0])
	s.node.LeavePlayer(args[0])
}

func (s *ConsoleSystem) who() {
	s.printf("peers: %d", s.node.PeerCount())
	for _, name := range s.node.Players() {
		s.printf("  player %s", name)
	}
}

func (s *ConsoleSystem) stats() {
	ai, players := 0, 0
	for _, u := range s.world.Units() {
		if u.IsAI() {
			ai++
		} else {
			players++
		}
	}
	s.printf("units: %d ai, %d player", ai, players)
	for _, f := range s.world.Factories() {
		s.printf("  factory %d %s: %d/%d spawned, %.0f%% built",
			f.ID, f.Block.Name, f.Spawned, f.Block.MaxSpawn, f.Progress()*100)
	}
	fx := s.world.Effects()
	s.printf("effects: %d explosions, %d shakes, %d decals",
		fx.Count("explosion"), fx.Shakes(), fx.Decals())
	s.printf("peers: %d", s.node.PeerCount())
}

func (s *ConsoleSystem) recent(args []string) {
	if s.history == nil {
		s.printf("destruction log unavailable (database disabled)")
		return
	}
	limit := 10
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
			limit = n
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	entries, err := s.history.Recent(ctx, limit)
	if err != nil {
		s.printf("recent failed: %v", err)
		return
	}
	for _, e := range entries {
		s.printf("  tick %d: unit %d %s team %d at (%.0f, %.0f) explosiveness %.1f",
			e.Tick, e.UnitID, e.Type, e.Team, e.X, e.Y, e.Explosiveness)
	}
}

func (s *ConsoleSystem) runLua(src string) {
	if s.lua == nil || src == "" {
		s.printf("usage: .lua <source>")
		return
	}
	if err := s.lua.LoadString(src); err != nil {
		s.printf("lua: %v", err)
	}
}
