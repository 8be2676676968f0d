package optim

import (
	"context"
	"math"
)

// Objective scores a candidate; lower is better.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// NewGridSearchFromSpace samples each parameter at steps evenly spaced points.
func NewGridSearchFromSpace(space Space, steps int) *GridSearch {
	if steps < 2 {
		steps = 2
	}
	ranges := make([][]float64, len(space))
	for i, p := range space {
		ranges[i] = make([]float64, steps)
		for k := 0; k < steps; k++ {
			ranges[i][k] = p.Min + float64(k)*(p.Max-p.Min)/float64(steps-1)
		}
	}
	return NewGridSearch(space.Names(), ranges)
}

// Search evaluates every grid point and returns the lowest-scoring one.
// Candidates whose evaluation fails are skipped.
func (g *GridSearch) Search(ctx context.Context, objective Objective) (map[string]float64, float64, error) {
	best := math.Inf(1)
	var bestParams map[string]float64

	if err := g.searchRecursive(ctx, 0, make(map[string]float64), objective, &best, &bestParams); err != nil {
		return bestParams, best, err
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	objective Objective,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		val, err := objective(ctx, current)
		if err != nil {
			return nil
		}
		if val < *best {
			*best = val
			*bestParams = make(map[string]float64, len(current))
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, next, objective, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}
