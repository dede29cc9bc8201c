package ai

import (
	"math/rand"
	"reflect"
	"testing"

	"dungeonbot/pkg/core"
)

func TestFindPathToSelfIsEmpty(t *testing.T) {
	q := core.MustParseSnapshot([]string{"0.."}, 0)
	pf := &PathFinder{Grid: q, Opponent: -1, Weight: 2}
	path, ok := pf.FindPath(core.GridPos{}, core.GridPos{}, 0, true)
	if !ok || len(path) != 0 {
		t.Fatalf("FindPath(a, a) = %v, %v; want empty path", path, ok)
	}
}

func TestFindPathAvoidsObstacles(t *testing.T) {
	q := core.MustParseSnapshot([]string{
		"0.I....",
		"..S.O..",
		".IB.I..",
		"...I...",
		".......",
	}, 0)
	from, to := core.GridPos{X: 0, Y: 0}, core.GridPos{X: 6, Y: 0}

	for _, weight := range []float64{1, 2} {
		pf := &PathFinder{Grid: q, Opponent: -1, Weight: weight}
		path, ok := pf.FindPath(from, to, 500, true)
		if !ok {
			t.Fatalf("weight %.0f: no path found", weight)
		}
		if path[len(path)-1] != to {
			t.Fatalf("weight %.0f: path ends at %v, want %v", weight, path[len(path)-1], to)
		}
		prev := from
		for _, step := range path {
			if !core.IsAdjacent(prev, step) {
				t.Fatalf("weight %.0f: step %v not adjacent to %v", weight, step, prev)
			}
			if q.EntityAt(step).IsObstacle() {
				t.Fatalf("weight %.0f: path crosses impassable %v (%v)", weight, step, q.EntityAt(step))
			}
			prev = step
		}
	}
}

func TestFindPathRespectsBudget(t *testing.T) {
	q := core.MustParseSnapshot([]string{"0........."}, 0)
	pf := &PathFinder{Grid: q, Opponent: -1, Weight: 2}
	to := core.GridPos{X: 9, Y: 0}

	if _, ok := pf.FindPath(core.GridPos{}, to, 3, true); ok {
		t.Fatalf("path found with an exhausted budget")
	}
	if _, ok := pf.FindPath(core.GridPos{}, to, Budget(10, core.GridPos{}, to), true); !ok {
		t.Fatalf("path not found with the default budget")
	}
}

func TestFindPathUnreachable(t *testing.T) {
	q := core.MustParseSnapshot([]string{
		"0.I..",
		"..I..",
		"SSI..",
	}, 0)
	pf := &PathFinder{Grid: q, Opponent: -1, Weight: 2}
	if path, ok := pf.FindPath(core.GridPos{}, core.GridPos{X: 4, Y: 2}, 1000, true); ok {
		t.Fatalf("found path %v through a wall", path)
	}
}

func TestFindPathOpponentBlocksCorridor(t *testing.T) {
	q := core.MustParseSnapshot([]string{"0.1.."}, 0)
	pf := &PathFinder{Grid: q, Opponent: 1, Weight: 2}
	to := core.GridPos{X: 4, Y: 0}

	if _, ok := pf.FindPath(core.GridPos{}, to, 100, true); ok {
		t.Fatalf("path went through the opponent")
	}
	path, ok := pf.FindPath(core.GridPos{}, to, 100, false)
	if !ok || len(path) != 4 {
		t.Fatalf("path ignoring opponent = %v, %v; want 4 steps", path, ok)
	}
}

func TestFindPathSeededShuffleIsReproducible(t *testing.T) {
	q := core.MustParseSnapshot([]string{
		"0.....",
		"......",
		"......",
		"......",
	}, 0)
	to := core.GridPos{X: 5, Y: 3}

	a := &PathFinder{Grid: q, Opponent: -1, Weight: 2, Rand: rand.New(rand.NewSource(42))}
	b := &PathFinder{Grid: q, Opponent: -1, Weight: 2, Rand: rand.New(rand.NewSource(42))}
	pa, okA := a.FindPath(core.GridPos{}, to, 200, true)
	pb, okB := b.FindPath(core.GridPos{}, to, 200, true)
	if !okA || !okB {
		t.Fatalf("path not found: %v %v", okA, okB)
	}
	if !reflect.DeepEqual(pa, pb) {
		t.Fatalf("same seed produced different paths: %v vs %v", pa, pb)
	}
}

func TestEscapeRouteLeavesBlast(t *testing.T) {
	q := core.MustParseSnapshot([]string{
		"0....",
		".I.I.",
	}, 0)
	tm := NewThreatModel()
	tm.Update(q)
	hypo := tm.WithBomb(core.GridPos{})

	route, ok := escapeRoute(q, hypo, core.GridPos{}, -1)
	if !ok {
		t.Fatalf("no escape route found")
	}
	if end := route[len(route)-1]; hypo.InBlast(end) {
		t.Fatalf("escape route ends inside the blast at %v", end)
	}
}
