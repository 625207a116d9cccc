// Package builtin registers the console command set exposed by spec.md §6:
// spawn_entity, ecs.dump, set tickrate <N>, net.mode, and help. Message
// wording matches the original ConsolePanel's history lines exactly, since
// host tooling built against the editor's transcript format depends on it.
package builtin

import (
	"strconv"

	"github.com/atlas-engine/atlas/server/cmd"
	"github.com/atlas-engine/atlas/server/engine"
)

// Register adds every builtin command to the cmd package's global registry,
// bound to e.
func Register(e *engine.Engine) {
	cmd.Register(newSpawnEntityCommand(e))
	cmd.Register(newECSDumpCommand(e))
	cmd.Register(newSetCommand(e))
	cmd.Register(newNetModeCommand(e))
	cmd.Register(newHelpCommand())
}

func newSpawnEntityCommand(e *engine.Engine) cmd.Command {
	return cmd.New("spawn_entity", "Creates a new entity in the world.", "", nil, func(src cmd.Source, o *cmd.Output, args []string) {
		id := e.World().CreateEntity()
		o.Printf("Created entity %d", id)
	})
}

func newECSDumpCommand(e *engine.Engine) cmd.Command {
	return cmd.New("ecs.dump", "Lists every live entity and its component count.", "", nil, func(src cmd.Source, o *cmd.Output, args []string) {
		entities := e.World().GetEntities()
		o.Printf("Entities: %d", len(entities))
		for _, id := range entities {
			types := e.World().GetComponentTypes(id)
			o.Printf("  Entity %d (%d components)", id, len(types))
		}
	})
}

func newSetCommand(e *engine.Engine) cmd.Command {
	return cmd.New("set", "Changes a runtime setting.", "tickrate <N>", nil, func(src cmd.Source, o *cmd.Output, args []string) {
		if len(args) < 1 {
			o.Print("Unknown setting: ")
			return
		}
		key := args[0]
		if key != "tickrate" {
			o.Printf("Unknown setting: %s", key)
			return
		}
		if len(args) < 2 {
			o.Print("Invalid tick rate")
			return
		}
		rate, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil || rate == 0 {
			o.Print("Invalid tick rate")
			return
		}
		if e.Scheduler() != nil {
			e.Scheduler().SetTickRate(uint32(rate))
		}
		o.Printf("Tick rate set to %d", rate)
	})
}

func newNetModeCommand(e *engine.Engine) cmd.Command {
	return cmd.New("net.mode", "Prints the current networking mode.", "", nil, func(src cmd.Source, o *cmd.Output, args []string) {
		o.Printf("Net mode: %s", e.Net().Mode().String())
	})
}

func newHelpCommand() cmd.Command {
	return cmd.New("help", "Lists available commands.", "", nil, func(src cmd.Source, o *cmd.Output, args []string) {
		o.Print("Commands: spawn_entity, ecs.dump, set tickrate <N>, net.mode, help")
	})
}
