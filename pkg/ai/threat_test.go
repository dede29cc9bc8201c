package ai

import (
	"reflect"
	"testing"

	"dungeonbot/pkg/core"
)

func TestThreatFuseWindow(t *testing.T) {
	q := core.MustParseSnapshot([]string{
		"...",
		".B.",
		"...",
	}, 0)
	bomb := core.GridPos{X: 1, Y: 1}

	tm := NewThreatModel()
	tm.Observe(q, q.LiveBombs(), 0)

	tm.Observe(q, q.LiveBombs(), 34)
	if tm.IsSafe(bomb, 35, 0) {
		t.Fatalf("tick 34: bomb tile reported safe at its detonation tick")
	}
	if _, ok := tm.Earliest[bomb]; !ok {
		t.Fatalf("tick 34: threat entry missing")
	}

	tm.Observe(q, q.LiveBombs(), 35)
	if len(tm.Earliest) != 0 {
		t.Fatalf("tick 35: threat map still has %d entries", len(tm.Earliest))
	}

	tm.Observe(q, nil, 36)
	if !tm.IsSafe(bomb, 35, 0) {
		t.Fatalf("tick 36: bomb tile still unsafe")
	}
}

func TestThreatUpdateIsIdempotent(t *testing.T) {
	q := core.MustParseSnapshot([]string{
		".BO..",
		".....",
	}, 0)
	q.TickNum = 5

	once := NewThreatModel()
	once.Update(q)

	twice := NewThreatModel()
	twice.Update(q)
	twice.Update(q)

	if !reflect.DeepEqual(once.Earliest, twice.Earliest) {
		t.Fatalf("threat map differs: %v vs %v", once.Earliest, twice.Earliest)
	}
	if !reflect.DeepEqual(once.Ores, twice.Ores) {
		t.Fatalf("ore state differs: %v vs %v", once.Ores, twice.Ores)
	}
	if hits := twice.OreHits(core.GridPos{X: 2, Y: 0}); hits != core.OreHits-1 {
		t.Fatalf("ore hits = %d, want %d", hits, core.OreHits-1)
	}
}

func TestThreatChainUsesEarliestDetonation(t *testing.T) {
	first := core.MustParseSnapshot([]string{"B...."}, 0)
	both := core.MustParseSnapshot([]string{"B.B.."}, 0)

	tm := NewThreatModel()
	tm.Observe(first, first.LiveBombs(), 0)
	tm.Observe(both, both.LiveBombs(), 10)

	when, ok := tm.DetonationTick(core.GridPos{X: 2, Y: 0})
	if !ok {
		t.Fatalf("second bomb not tracked")
	}
	if when != core.FuseTicks {
		t.Fatalf("chained detonation = %d, want %d", when, core.FuseTicks)
	}
	if e := tm.EarliestAt(core.GridPos{X: 4, Y: 0}); e != core.FuseTicks {
		t.Fatalf("earliest at (4,0) = %d, want %d", e, core.FuseTicks)
	}
}

func TestThreatOreCreditedOncePerSandwich(t *testing.T) {
	left := core.MustParseSnapshot([]string{"BO.."}, 0)
	both := core.MustParseSnapshot([]string{"BOB."}, 0)
	ore := core.GridPos{X: 1, Y: 0}

	tm := NewThreatModel()
	tm.Observe(left, left.LiveBombs(), 0)
	if got := tm.OreHits(ore); got != core.OreHits-1 {
		t.Fatalf("after first bomb ore hits = %d, want %d", got, core.OreHits-1)
	}
	tm.Observe(both, both.LiveBombs(), 1)
	if got := tm.OreHits(ore); got != core.OreHits-1 {
		t.Fatalf("after second bomb ore hits = %d, want %d", got, core.OreHits-1)
	}
}

func TestThreatDropsVanishedBombs(t *testing.T) {
	q := core.MustParseSnapshot([]string{".B."}, 0)
	empty := core.MustParseSnapshot([]string{"..."}, 0)

	tm := NewThreatModel()
	tm.Observe(q, q.LiveBombs(), 0)
	tm.Observe(empty, nil, 3)
	if len(tm.Bombs) != 0 || tm.InBlast(core.GridPos{X: 0, Y: 0}) {
		t.Fatalf("bomb not dropped after the engine stopped reporting it")
	}
}

func TestWithBombLeavesOriginalUntouched(t *testing.T) {
	q := core.MustParseSnapshot([]string{"....."}, 0)
	tm := NewThreatModel()
	tm.Update(q)

	hypo := tm.WithBomb(core.GridPos{X: 2, Y: 0})
	if !hypo.InBlast(core.GridPos{X: 0, Y: 0}) {
		t.Fatalf("hypothetical bomb does not cover (0,0)")
	}
	if tm.InBlast(core.GridPos{X: 0, Y: 0}) || len(tm.Bombs) != 0 {
		t.Fatalf("WithBomb modified the original model")
	}
}
