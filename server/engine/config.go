package engine

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml"
)

// Role selects an Engine's capability set, net mode mapping, and loop
// variant.
type Role uint8

const (
	RoleEditor Role = iota
	RoleClient
	RoleServer
)

// ParseRole converts a config-file role name into a Role. It accepts the
// same spelling Config.Mode is serialized with.
func ParseRole(s string) (Role, error) {
	switch s {
	case "editor", "Editor":
		return RoleEditor, nil
	case "client", "Client":
		return RoleClient, nil
	case "server", "Server":
		return RoleServer, nil
	default:
		return 0, fmt.Errorf("engine: unknown role %q", s)
	}
}

func (r Role) String() string {
	switch r {
	case RoleEditor:
		return "editor"
	case RoleClient:
		return "client"
	case RoleServer:
		return "server"
	default:
		return "unknown"
	}
}

// Config holds the recognized EngineConfig fields from spec.md §6, loadable
// from a TOML file the way a dragonfly-style host loads its own
// config.toml before calling a constructor.
type Config struct {
	// Mode is the string form of Role ("editor", "client", "server"); kept
	// as a string at the TOML boundary so a malformed config file produces a
	// clear error from ParseRole rather than a silent zero value.
	Mode string `toml:"mode"`
	// AssetRoot is the directory handed to asset.Registry.Scan by the host.
	// The core never reads it implicitly.
	AssetRoot string `toml:"asset_root"`
	// AssetCachePath, if non-empty, is opened as the asset registry's
	// persistent LevelDB scan cache.
	AssetCachePath string `toml:"asset_cache_path"`
	// TickRate is the scheduler's rate in Hz; clamped to >= 1.
	TickRate uint32 `toml:"tick_rate"`
	// MaxTicks is 0 for unbounded, or the tick count the loop stops at.
	MaxTicks uint32 `toml:"max_ticks"`
}

// DefaultConfig returns the configuration a freshly unpacked host would ship.
func DefaultConfig() Config {
	return Config{
		Mode:      RoleClient.String(),
		AssetRoot: "assets",
		TickRate:  30,
		MaxTicks:  0,
	}
}

// LoadConfig reads and unmarshals a TOML config file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WriteDefault writes DefaultConfig() to path as a starter TOML file.
func WriteDefault(path string) error {
	data, err := toml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Role parses cfg.Mode, falling back to RoleClient on an empty string.
func (cfg Config) Role() (Role, error) {
	if cfg.Mode == "" {
		return RoleClient, nil
	}
	return ParseRole(cfg.Mode)
}
