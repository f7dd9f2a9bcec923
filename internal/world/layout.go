package world

import (
	"fmt"

	"github.com/vovakirdan/skirmish/internal/core"
)

// SpawnLayout decides where the two armies start.
type SpawnLayout int

const (
	LayoutHorizontal SpawnLayout = iota // Opposite ends of the X axis
	LayoutVertical                      // Opposite ends of the Z axis
	LayoutDiagonal                      // Opposite corners
)

// layoutCount is the number of layouts a random pick chooses from.
const layoutCount = 3

// String returns the config name of the layout.
func (l SpawnLayout) String() string {
	switch l {
	case LayoutHorizontal:
		return "horizontal"
	case LayoutVertical:
		return "vertical"
	case LayoutDiagonal:
		return "diagonal"
	default:
		return "unknown"
	}
}

// ParseSpawnLayout converts a config name into a layout.
// "random" and "" report ok=false so the caller picks one.
func ParseSpawnLayout(name string) (layout SpawnLayout, ok bool, err error) {
	switch name {
	case "horizontal":
		return LayoutHorizontal, true, nil
	case "vertical":
		return LayoutVertical, true, nil
	case "diagonal":
		return LayoutDiagonal, true, nil
	case "random", "":
		return LayoutHorizontal, false, nil
	default:
		return LayoutHorizontal, false, fmt.Errorf("world: unknown spawn layout %q", name)
	}
}

func (l SpawnLayout) centers(w, h, zone float64) [2]core.Vec {
	switch l {
	case LayoutVertical:
		return [2]core.Vec{core.V(w/2, zone/2), core.V(w/2, h-zone/2)}
	case LayoutDiagonal:
		return [2]core.Vec{core.V(zone/2, zone/2), core.V(w-zone/2, h-zone/2)}
	default:
		return [2]core.Vec{core.V(zone/2, h/2), core.V(w-zone/2, h/2)}
	}
}
