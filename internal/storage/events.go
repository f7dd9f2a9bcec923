package storage

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/vovakirdan/skirmish/internal/battle"
)

func encodeEvent(e battle.Event) (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeAs[T battle.Event](payload []byte) (battle.Event, error) {
	var e T
	if err := json.Unmarshal(payload, &e); err != nil {
		return nil, err
	}
	return e, nil
}

// decodeEvent restores a replication event stored under its type name.
func decodeEvent(t battle.EventType, payload []byte) (battle.Event, error) {
	switch t {
	case battle.EventGameStarted:
		return decodeAs[battle.GameStarted](payload)
	case battle.EventUnitMoved:
		return decodeAs[battle.UnitMoved](payload)
	case battle.EventUnitDestroyed:
		return decodeAs[battle.UnitDestroyed](payload)
	case battle.EventTurnChanged:
		return decodeAs[battle.TurnChanged](payload)
	case battle.EventUnboundedMovementEnabled:
		return decodeAs[battle.UnboundedMovementEnabled](payload)
	case battle.EventGameEnded:
		return decodeAs[battle.GameEnded](payload)
	default:
		return nil, fmt.Errorf("unknown event type %q", t)
	}
}
