package mines

import (
	"github.com/gammazero/deque"
	"github.com/zyedidia/generic/mapset"
)

/*
revealFrom returns the cells that one reveal at start opens, in breadth-first
order.

An open start yields nothing and a mined start yields only itself. Otherwise
every cell taken off the frontier is opened, and a cell with no mined
neighbors pushes all of its neighbors that are neither open nor already
queued, whatever their own count. The flood therefore crosses zero cells and
stops one layer into the numbered border. Each cell is queued at most once.
*/
func revealFrom(
	adjacency map[Point]int,
	mines mapset.Set[Point],
	start Point,
	open mapset.Set[Point],
	rows, cols int,
) []Point {
	if open.Has(start) {
		return nil
	}
	if mines.Has(start) {
		return []Point{start}
	}

	var (
		result   []Point
		queued   = mapset.New[Point]()
		frontier deque.Deque[Point]
	)

	queued.Put(start)
	frontier.PushBack(start)

	for frontier.Len() > 0 {
		p := frontier.PopFront()
		result = append(result, p)

		if adjacency[p] != 0 {
			continue
		}
		for _, n := range Neighbors(p, rows, cols) {
			if queued.Has(n) || open.Has(n) {
				continue
			}
			queued.Put(n)
			frontier.PushBack(n)
		}
	}

	return result
}
