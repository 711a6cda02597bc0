package mines

import "fmt"

// Point is a zero-based (column, row) pair.
type Point struct {
	X int `json:"x" schema:"x,required"`
	Y int `json:"y" schema:"y,required"`
}

// [Point] implements [fmt.Stringer]
func (p Point) String() string {
	return fmt.Sprintf("%d:%d", p.X, p.Y)
}

// Neighbors returns every in-bounds point at Chebyshev distance 1 from p,
// row by row. p itself is never included.
func Neighbors(p Point, rows, cols int) []Point {
	neighbors := make([]Point, 0, 8)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			x, y := p.X+dx, p.Y+dy
			if (dx != 0 || dy != 0) &&
				0 <= x && x < cols &&
				0 <= y && y < rows {
				neighbors = append(neighbors, Point{X: x, Y: y})
			}
		}
	}
	return neighbors
}
