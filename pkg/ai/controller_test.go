package ai

import (
	"io"
	"log"
	"reflect"
	"testing"

	"dungeonbot/pkg/core"
)

func TestDecideIdleWithoutAmmo(t *testing.T) {
	q := core.MustParseSnapshot([]string{
		"...",
		".0.",
		"...",
	}, 0)
	q.Player(0).Ammo = 0

	var st AgentState
	for tick := 0; tick < 5; tick++ {
		q.TickNum = tick
		var action core.Action
		action, st = Decide(st, q, &AIConfigNormal)
		if action == core.ActionPlantBomb {
			t.Fatalf("tick %d: planted without ammo", tick)
		}
		if action != core.ActionNoOp {
			t.Fatalf("tick %d: action = %v, want no_op on the waiting tile", tick, action)
		}
	}
}

func TestDecideWalksToWaitingTile(t *testing.T) {
	q := core.MustParseSnapshot([]string{
		"0.....",
		"......",
		"......",
		"......",
	}, 0)
	q.Player(0).Ammo = 0

	action, st := Decide(AgentState{}, q, &AIConfigNormal)
	if !action.IsMove() {
		t.Fatalf("action = %v, want a move toward the centre", action)
	}
	if st.Target == nil || !core.ContainsCell(AIConfigNormal.waitingTiles(q), *st.Target) {
		t.Fatalf("target = %v, want a waiting tile", st.Target)
	}
}

func TestDecidePlantsNextToSoftBlock(t *testing.T) {
	q := core.MustParseSnapshot([]string{
		"...",
		".0S",
		"...",
	}, 0)
	q.Player(0).Ammo = 1

	action, st := Decide(AgentState{}, q, &AIConfigNormal)
	if st.Stage != StageOpening {
		t.Fatalf("stage = %s, want opening", st.Stage)
	}
	if action != core.ActionPlantBomb {
		t.Fatalf("action = %v, want plant_bomb", action)
	}
}

func TestDecideDoesNotPlantWithoutEscape(t *testing.T) {
	q := core.MustParseSnapshot([]string{
		"0S",
	}, 0)

	action, _ := Decide(AgentState{}, q, &AIConfigNormal)
	if action == core.ActionPlantBomb {
		t.Fatalf("planted a bomb with no way out")
	}
}

// primeBomb 在 tick 0 观察到炸弹，然后把快照推进到 tick
func primeBomb(t *testing.T, rows []string, tick int) (AgentState, *core.Snapshot) {
	t.Helper()
	q := core.MustParseSnapshot(rows, 0)
	st := NewAgentState(q)
	q.TickNum = tick
	return st, q
}

func TestDecideEscapesToSafeNeighbour(t *testing.T) {
	st, q := primeBomb(t, []string{
		"0.B..",
		".III.",
	}, 32)

	action, next := Decide(st, q, &AIConfigNormal)
	if action != core.ActionUp {
		t.Fatalf("action = %v, want up", action)
	}
	if next.Location != (core.GridPos{X: 0, Y: 1}) {
		t.Fatalf("predicted location = %v, want (0,1)", next.Location)
	}
}

// bombUnderfoot 炸弹就在玩家脚下，tick 0 观察到，然后推进到 tick
func bombUnderfoot(t *testing.T, rows []string, tick int) (AgentState, *core.Snapshot) {
	t.Helper()
	q := core.MustParseSnapshot(rows, 0)
	loc, _ := q.PlayerLocation(0)
	q.Bombs = append(q.Bombs, loc)
	st := NewAgentState(q)
	q.TickNum = tick
	return st, q
}

func TestDecideEscapeLooksTwoStepsAhead(t *testing.T) {
	tests := []struct {
		name         string
		tick         int
		wantAction   core.Action
		wantFailures int
	}{
		// 安全格在三步之外，来不及逃
		{name: "about to blow", tick: 32, wantAction: core.ActionNoOp, wantFailures: 1},
		// 离引爆还远，沿完整路线撤离
		{name: "early retreat", tick: 10, wantAction: core.ActionRight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, q := bombUnderfoot(t, []string{"0...."}, tt.tick)
			action, next := Decide(st, q, &AIConfigNormal)
			if action != tt.wantAction {
				t.Fatalf("action = %v, want %v", action, tt.wantAction)
			}
			if next.EscapeFailures != tt.wantFailures {
				t.Fatalf("escape failures = %d, want %d", next.EscapeFailures, tt.wantFailures)
			}
		})
	}
}

func TestDecideReportsEscapeFailure(t *testing.T) {
	st, q := primeBomb(t, []string{
		"0.B..",
	}, 32)

	action, next := Decide(st, q, &AIConfigNormal)
	if action != core.ActionNoOp {
		t.Fatalf("action = %v, want no_op", action)
	}
	if next.EscapeFailures != 1 {
		t.Fatalf("escape failures = %d, want 1", next.EscapeFailures)
	}
}

func TestDecideResyncsAfterRepeatedDesync(t *testing.T) {
	q := core.MustParseSnapshot([]string{
		"0....",
		".....",
	}, 0)
	st := NewAgentState(q)
	st.Location = core.GridPos{X: 3, Y: 0}

	var action core.Action
	for i := 1; i <= AIConfigNormal.MaxDesync; i++ {
		q.TickNum = i
		action, st = Decide(st, q, &AIConfigNormal)
		if action != core.ActionNoOp {
			t.Fatalf("desync %d: action = %v, want no_op", i, action)
		}
		if st.Desync != i || st.Missed != i {
			t.Fatalf("desync %d: counters = (%d,%d)", i, st.Desync, st.Missed)
		}
	}

	q.TickNum++
	_, st = Decide(st, q, &AIConfigNormal)
	if st.Desync != 0 || st.Resyncs != 1 {
		t.Fatalf("after resync: desync = %d, resyncs = %d", st.Desync, st.Resyncs)
	}
	if st.Missed != AIConfigNormal.MaxDesync {
		t.Fatalf("missed = %d, want %d", st.Missed, AIConfigNormal.MaxDesync)
	}
}

func TestDecideDoesNotMutateInput(t *testing.T) {
	st, q := primeBomb(t, []string{
		"0.B..",
		".....",
		"..S..",
	}, 10)
	before := st.Clone()

	a1, s1 := Decide(st, q, &AIConfigNormal)
	a2, s2 := Decide(st, q, &AIConfigNormal)
	if a1 != a2 {
		t.Fatalf("same input produced %v and %v", a1, a2)
	}
	if s1.Location != s2.Location || !reflect.DeepEqual(s1.Path, s2.Path) {
		t.Fatalf("same input produced different states")
	}
	if !reflect.DeepEqual(st.Threat.Bombs, before.Threat.Bombs) || st.Location != before.Location || len(st.History) != 0 {
		t.Fatalf("Decide modified its input state")
	}
}

func TestControllersPlayFullMatch(t *testing.T) {
	g := core.NewGame(3)
	quiet := log.New(io.Discard, "", 0)
	bots := []*AIController{NewAIController(0), NewAIControllerWithConfig(1, &AIConfigCautious)}
	for _, b := range bots {
		b.SetLogger(quiet)
	}

	for i := 0; i < 600 && !g.Over; i++ {
		actions := make(map[int]core.Action, len(bots))
		for _, b := range bots {
			actions[b.PlayerID] = b.Decide(g.View(b.PlayerID))
		}
		g.Step(actions)

		for _, p := range g.Players {
			if p.Dead() {
				continue
			}
			if tile := g.Map.GetTile(p.Pos); tile.IsBlock() {
				t.Fatalf("tick %d: player %d stands on %v", g.TickNum, p.ID, tile)
			}
		}
	}
	if g.TickNum == 0 {
		t.Fatalf("match did not advance")
	}
	if len(bots[0].State().History) == 0 {
		t.Fatalf("controller recorded no history")
	}
}
