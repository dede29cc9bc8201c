package client

import (
	"reflect"
	"testing"

	"dungeonbot/pkg/ai"
	"dungeonbot/pkg/core"
)

func TestMatchIsReproducible(t *testing.T) {
	a := NewMatch(5, &ai.AIConfigNormal, &ai.AIConfigCautious).Run()
	b := NewMatch(5, &ai.AIConfigNormal, &ai.AIConfigCautious).Run()

	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same seed gave different results:\n%v\n%v", a, b)
	}
	if a.Ticks <= 0 || a.Ticks > core.DefaultRules.MaxTicks {
		t.Fatalf("ticks = %d", a.Ticks)
	}
	if len(a.Players) != 2 {
		t.Fatalf("players = %d, want 2", len(a.Players))
	}
	for _, p := range a.Players {
		if p.Missed != 0 {
			t.Fatalf("local bot %d missed %d turns", p.ID, p.Missed)
		}
	}
}

func TestMatchStopsWhenOver(t *testing.T) {
	m := NewMatch(9)
	res := m.Run()
	if !m.Game.Over {
		t.Fatalf("Run returned before the game ended")
	}
	if m.Step() {
		t.Fatalf("Step advanced a finished game")
	}
	if m.Game.TickNum != res.Ticks {
		t.Fatalf("tick moved after game over")
	}
}
