package ai

import (
	"container/heap"
	"container/list"
	"math/rand"

	"dungeonbot/pkg/core"
)

// isPassable 格子能否走入：在地图内、不是方块或炸弹、不是对手所在格
func isPassable(q core.GridQuery, pos core.GridPos, opponent int) bool {
	if !q.InBounds(pos) {
		return false
	}
	e := q.EntityAt(pos)
	if e.IsObstacle() {
		return false
	}
	if e.IsPlayer() && e.PlayerID() == opponent {
		return false
	}
	return true
}

func passableNeighbors(q core.GridQuery, pos core.GridPos, opponent int) []core.GridPos {
	out := make([]core.GridPos, 0, 4)
	for _, n := range core.Neighbors(q, pos) {
		if isPassable(q, n, opponent) {
			out = append(out, n)
		}
	}
	return out
}

// PathFinder 带迭代预算的加权 A*
type PathFinder struct {
	Grid     core.GridQuery
	Opponent int
	// Weight 启发式权重（>1 时不可采纳，换取更快的搜索）
	Weight float64
	// Rand 非 nil 时打乱邻居扩展顺序，种子固定则结果可复现
	Rand *rand.Rand
}

// Budget 寻路迭代预算，随曼哈顿距离平方增长
func Budget(base int, from, to core.GridPos) int {
	d := core.Manhattan(from, to)
	return base + d*d
}

type openNode struct {
	pos core.GridPos
	g   int
	f   float64
	seq int
}

// openSet 按 f 升序，f 相同时优先 g 更大（更接近目标），再按插入顺序
type openSet []*openNode

func (o openSet) Len() int { return len(o) }
func (o openSet) Less(i, j int) bool {
	if o[i].f != o[j].f {
		return o[i].f < o[j].f
	}
	if o[i].g != o[j].g {
		return o[i].g > o[j].g
	}
	return o[i].seq < o[j].seq
}
func (o openSet) Swap(i, j int) { o[i], o[j] = o[j], o[i] }
func (o *openSet) Push(x any) { *o = append(*o, x.(*openNode)) }
func (o *openSet) Pop() any {
	old := *o
	n := old[len(old)-1]
	*o = old[:len(old)-1]
	return n
}

// FindPath 从 from 到 to 的路径（不含起点、含终点）
//
// from == to 时返回空路径。预算耗尽或无路可走时返回 false。
func (pf *PathFinder) FindPath(from, to core.GridPos, budget int, avoidOpponent bool) ([]core.GridPos, bool) {
	if from == to {
		return []core.GridPos{}, true
	}
	opponent := -1
	if avoidOpponent {
		opponent = pf.Opponent
	}

	open := &openSet{}
	parent := make(map[core.GridPos]core.GridPos)
	best := map[core.GridPos]int{from: 0}
	closed := make(map[core.GridPos]bool)
	seq := 0
	heap.Push(open, &openNode{pos: from, f: pf.heuristic(from, to), seq: seq})

	dirs := core.Directions
	for iter := 0; open.Len() > 0 && iter < budget; iter++ {
		cur := heap.Pop(open).(*openNode)
		if closed[cur.pos] {
			continue
		}
		closed[cur.pos] = true
		if cur.pos == to {
			return reconstruct(parent, from, to), true
		}

		if pf.Rand != nil {
			pf.Rand.Shuffle(len(dirs), func(i, j int) { dirs[i], dirs[j] = dirs[j], dirs[i] })
		}
		for _, d := range dirs {
			next := cur.pos.Add(d)
			if closed[next] || !isPassable(pf.Grid, next, opponent) {
				continue
			}
			g := cur.g + 1
			if old, ok := best[next]; ok && old <= g {
				continue
			}
			best[next] = g
			parent[next] = cur.pos
			seq++
			heap.Push(open, &openNode{pos: next, g: g, f: float64(g) + pf.heuristic(next, to), seq: seq})
		}
	}
	return nil, false
}

func (pf *PathFinder) heuristic(a, b core.GridPos) float64 {
	w := pf.Weight
	if w <= 0 {
		w = 1
	}
	return float64(core.Manhattan(a, b)) * w
}

func reconstruct(parent map[core.GridPos]core.GridPos, from, to core.GridPos) []core.GridPos {
	path := []core.GridPos{to}
	for cur := to; parent[cur] != from; {
		cur = parent[cur]
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

type stepNode struct {
	Pos  core.GridPos
	Prev *stepNode
	Tick int
}

// escapeRoute 广度优先寻找一条逃离所有爆炸范围的路线
//
// 路线上每一格在到达的 tick 都不能恰好爆炸，终点必须不在任何爆炸范围内。
// 返回不含起点的路线。
func escapeRoute(q core.GridQuery, threat *ThreatModel, start core.GridPos, opponent int) ([]core.GridPos, bool) {
	now := q.Tick()
	queue := list.New()
	visited := map[core.GridPos]bool{start: true}
	queue.PushBack(&stepNode{Pos: start, Tick: now})

	for queue.Len() > 0 {
		n := queue.Remove(queue.Front()).(*stepNode)
		if n.Pos != start && !threat.InBlast(n.Pos) {
			path := make([]core.GridPos, 0)
			for cur := n; cur.Prev != nil; cur = cur.Prev {
				path = append(path, cur.Pos)
			}
			for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
				path[i], path[j] = path[j], path[i]
			}
			return path, true
		}
		if n.Tick-now >= threat.FuseTicks {
			continue
		}

		for _, next := range passableNeighbors(q, n.Pos, opponent) {
			arrive := n.Tick + 1
			if visited[next] || threat.HasBomb(next) || !threat.IsSafe(next, arrive, 0) {
				continue
			}
			visited[next] = true
			queue.PushBack(&stepNode{Pos: next, Prev: n, Tick: arrive})
		}
	}
	return nil, false
}
