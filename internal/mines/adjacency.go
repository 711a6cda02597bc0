package mines

import "github.com/zyedidia/generic/mapset"

// computeAdjacency counts the mined neighbors of every non-mine cell.
func computeAdjacency(mines mapset.Set[Point], rows, cols int) map[Point]int {
	adjacency := make(map[Point]int, rows*cols-mines.Size())
	for y := range rows {
		for x := range cols {
			p := Point{X: x, Y: y}
			if mines.Has(p) {
				continue
			}
			count := 0
			for _, n := range Neighbors(p, rows, cols) {
				if mines.Has(n) {
					count++
				}
			}
			adjacency[p] = count
		}
	}
	return adjacency
}
