// Package engine implements the Atlas Engine's lifecycle orchestrator: it
// owns a World, a NetContext and a Scheduler, binds a Role to a Capability
// set, and runs the single unified tick loop described by spec.md §4.9.
package engine

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/atlas-engine/atlas/server/net"
	"github.com/atlas-engine/atlas/server/sim"
	"github.com/atlas-engine/atlas/server/world"
)

// Capability is a named permission the engine grants per Role.
type Capability uint8

const (
	AssetWrite Capability = iota
	Rendering
	Physics
	GraphEdit
	GraphExecute
	NetAuthority
	HotReload
)

// capabilityTable is a pure function of Role, per spec.md §4.9.
var capabilityTable = map[Role]map[Capability]bool{
	RoleEditor: {
		AssetWrite: true, Rendering: true, Physics: true, GraphEdit: true,
		GraphExecute: true, NetAuthority: false, HotReload: true,
	},
	RoleClient: {
		AssetWrite: false, Rendering: true, Physics: true, GraphEdit: false,
		GraphExecute: true, NetAuthority: false, HotReload: false,
	},
	RoleServer: {
		AssetWrite: false, Rendering: false, Physics: true, GraphEdit: false,
		GraphExecute: true, NetAuthority: true, HotReload: false,
	},
}

// Engine is the lifecycle orchestrator binding one World, one net.Context
// and one sim.Scheduler together and running the tick loop for a given
// Role.
type Engine struct {
	log    *slog.Logger
	config Config
	role   Role

	running atomic.Bool

	world     *world.World
	net       *net.Context
	scheduler *sim.Scheduler
}

// New constructs an Engine from cfg. It does not start anything: hosts call
// InitCore..InitEditor in order, matching the original engine's explicit
// lifecycle, before Run. Run does not perform the Init phases itself and
// returns an error if InitECS or InitNetworking has not run.
func New(cfg Config, log *slog.Logger) (*Engine, error) {
	if log == nil {
		log = slog.Default()
	}
	role, err := cfg.Role()
	if err != nil {
		return nil, err
	}
	return &Engine{
		log:    log,
		config: cfg,
		role:   role,
	}, nil
}

// InitCore prepares logging and marks the engine running.
func (e *Engine) InitCore() {
	e.log.Info("engine core initialized")
	e.running.Store(true)
}

// InitRender is a no-op in Server mode; the core never renders.
func (e *Engine) InitRender() {
	if e.role == RoleServer {
		e.log.Info("server mode: rendering disabled")
		return
	}
	e.log.Info("render system initialized")
}

// InitUI is a no-op in Server mode.
func (e *Engine) InitUI() {
	if e.role == RoleServer {
		e.log.Info("server mode: UI disabled")
		return
	}
	e.log.Info("UI system initialized")
}

// InitECS readies an empty World.
func (e *Engine) InitECS() {
	e.world = world.New()
	e.log.Info("ECS initialized (empty world)")
}

// InitNetworking maps role to a net.Mode and initializes the NetContext.
func (e *Engine) InitNetworking() {
	mode := net.Standalone
	switch e.role {
	case RoleServer:
		mode = net.Server
	case RoleClient:
		mode = net.Client
	case RoleEditor:
		mode = net.Standalone
	}
	e.net = net.New(e.log)
	e.net.Init(mode)
	e.log.Info("networking initialized", "mode", mode.String())
}

// InitEditor is a no-op outside Editor mode.
func (e *Engine) InitEditor() {
	if e.role != RoleEditor {
		return
	}
	e.log.Info("editor tools initialized")
}

// Run sets the scheduler's rate from config and dispatches to the loop
// variant matching the engine's Role. It returns once the loop stops
// (Shutdown called, or MaxTicks reached).
func (e *Engine) Run() error {
	if e.world == nil || e.net == nil {
		return fmt.Errorf("engine: Run called before Init phases completed")
	}
	e.scheduler = sim.NewScheduler()
	e.scheduler.SetTickRate(e.config.TickRate)

	switch e.role {
	case RoleEditor:
		e.runLoop(false)
	case RoleClient:
		e.runLoop(false)
	case RoleServer:
		e.runLoop(true)
	}
	return nil
}

// runLoop is the single unified tick loop from spec.md §4.9: Poll, tick the
// World at the scheduler's fixed rate, optionally Flush (Server only), then
// check MaxTicks.
func (e *Engine) runLoop(flushEachTick bool) {
	var tickCount uint32
	for e.running.Load() {
		e.net.Poll()
		e.scheduler.Tick(func(dt float64) {
			e.world.Update(dt)
		})
		if flushEachTick {
			if err := e.net.Flush(); err != nil {
				e.log.Warn("engine: net flush failed", "error", err)
			}
		}
		tickCount++
		if e.config.MaxTicks > 0 && tickCount >= e.config.MaxTicks {
			e.running.Store(false)
		}
	}
}

// Running reports whether the engine's tick loop is (or would be) executing.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Shutdown is idempotent: it flips running to false (ending the loop at its
// next iteration boundary) and shuts down the NetContext.
func (e *Engine) Shutdown() {
	if !e.running.Swap(false) {
		return
	}
	e.log.Info("engine shutting down")
	if e.net != nil {
		e.net.Shutdown()
	}
}

// Can reports whether cap is granted to the engine's Role. It is a pure
// lookup against capabilityTable.
func (e *Engine) Can(cap Capability) bool {
	return capabilityTable[e.role][cap]
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.config }

// Role returns the engine's operating role.
func (e *Engine) Role() Role { return e.role }

// World returns the engine's World. It is nil until InitECS has run.
func (e *Engine) World() *world.World { return e.world }

// Net returns the engine's NetContext. It is nil until InitNetworking has
// run.
func (e *Engine) Net() *net.Context { return e.net }

// Scheduler returns the engine's Scheduler. It is nil until Run has been
// called once.
func (e *Engine) Scheduler() *sim.Scheduler { return e.scheduler }
