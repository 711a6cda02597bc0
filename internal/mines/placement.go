package mines

import (
	"math/rand/v2"

	"github.com/zyedidia/generic/mapset"
)

// MinePlacer chooses the mine layout of a game once its first cell is
// revealed. Implementations must return exactly params.MineCount points and
// must not include safe.
type MinePlacer func(params GameParams, safe Point, rnd *rand.Rand) (mapset.Set[Point], error)

const placementAttemptsPerCell = 64

func maxPlacementAttempts(params GameParams) int {
	return placementAttemptsPerCell*params.Cells() + 1
}

// placeMines draws random cells until it has params.MineCount distinct mines,
// skipping duplicates and the safe cell. Only safe itself is guaranteed to be
// mine-free; its neighbors are not.
func placeMines(params GameParams, safe Point, rnd *rand.Rand) (mapset.Set[Point], error) {
	var (
		mines = mapset.New[Point]()
		limit = maxPlacementAttempts(params)
	)
	for attempt := 0; mines.Size() < params.MineCount; attempt++ {
		if attempt >= limit {
			return mines, ParamsError{
				Params: params,
				reason: "mine placement did not converge",
			}
		}
		p := Point{X: rnd.IntN(params.Cols), Y: rnd.IntN(params.Rows)}
		if p == safe || mines.Has(p) {
			continue
		}
		mines.Put(p)
	}
	return mines, nil
}

// PlaceAt returns a [MinePlacer] with a fixed layout.
func PlaceAt(points ...Point) MinePlacer {
	return func(params GameParams, safe Point, _ *rand.Rand) (mapset.Set[Point], error) {
		mines := mapset.New[Point]()
		for _, p := range points {
			mines.Put(p)
		}
		return mines, nil
	}
}
