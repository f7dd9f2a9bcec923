// Package registry provides a global registry for battle scenarios.
// Scenarios register themselves in init() functions, allowing the CLI
// and the match coordinator to discover them without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/skirmish/internal/battle"
	"github.com/vovakirdan/skirmish/internal/config"
	"github.com/vovakirdan/skirmish/internal/core"
	"github.com/vovakirdan/skirmish/internal/world"
)

// Scenario builds ready-to-start battles.
type Scenario interface {
	// ID returns a unique identifier (e.g., "skirmish", "duel").
	// Used for CLI commands and battle history.
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// Description returns a one-line summary.
	Description() string

	// Setup generates the map and spawns both armies.
	// The same config and seed always produce the same battle.
	Setup(cfg config.BattleConfig, rt core.RuntimeConfig, sink battle.Sink) (*Battle, error)
}

// Battle is a prepared, not yet started battle.
type Battle struct {
	Game      *battle.Game
	Map       *world.Map
	FirstSide core.Side
	Army      string
}

// ScenarioInfo contains metadata about a registered scenario.
type ScenarioInfo struct {
	ID          string
	Title       string
	Description string
}

var (
	scenarios = make(map[string]Scenario)
	mu        sync.RWMutex
)

// Register adds a scenario to the registry.
// Typically called from an init() function.
// Panics if a scenario with the same ID is already registered.
func Register(s Scenario) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := scenarios[s.ID()]; exists {
		panic(fmt.Sprintf("registry: scenario %q already registered", s.ID()))
	}
	scenarios[s.ID()] = s
}

// List returns information about all registered scenarios, sorted by ID.
func List() []ScenarioInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]ScenarioInfo, 0, len(scenarios))
	for _, s := range scenarios {
		result = append(result, ScenarioInfo{
			ID:          s.ID(),
			Title:       s.Title(),
			Description: s.Description(),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Get returns a scenario by its ID.
// Returns an error if the ID is not registered.
func Get(id string) (Scenario, error) {
	mu.RLock()
	defer mu.RUnlock()

	s, ok := scenarios[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown scenario %q", id)
	}
	return s, nil
}

// Exists checks if a scenario with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := scenarios[id]
	return ok
}
