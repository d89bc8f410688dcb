package optim

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/san-kum/nbody/internal/dynamo"
)

// Objective scores one grid point. Lower is better.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

type Point struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	workers    int
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges, workers: runtime.NumCPU()}
}

func (g *GridSearch) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	g.workers = n
}

// Points enumerates the cartesian product of the ranges, the last parameter
// varying fastest.
func (g *GridSearch) Points() []map[string]float64 {
	var out []map[string]float64
	g.enumerate(0, make(map[string]float64), &out)
	return out
}

func (g *GridSearch) enumerate(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		p := make(map[string]float64, len(current))
		for k, v := range current {
			p[k] = v
		}
		*out = append(*out, p)
		return
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[name] = val
		g.enumerate(depth+1, current, out)
	}
	delete(current, g.paramNames[depth])
}

// Search evaluates every point on a pool of workers. All points are returned
// in grid order; best is the lowest finite value. Failed points keep their
// error and are skipped when choosing best.
func (g *GridSearch) Search(ctx context.Context, eval Objective) (*Point, []Point, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, nil, fmt.Errorf("%d parameters, %d ranges: %w",
			len(g.paramNames), len(g.ranges), dynamo.ErrInvalidArgument)
	}

	params := g.Points()
	points := make([]Point, len(params))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < g.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				val, err := eval(ctx, params[idx])
				points[idx] = Point{Params: params[idx], Value: val, Err: err}
			}
		}()
	}

	for i := range params {
		select {
		case jobs <- i:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, points, err
	}

	var best *Point
	for i := range points {
		p := &points[i]
		if p.Err != nil || math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			continue
		}
		if best == nil || p.Value < best.Value {
			best = p
		}
	}
	if best == nil {
		return nil, points, fmt.Errorf("no grid point evaluated successfully: %w", dynamo.ErrNoData)
	}
	return best, points, nil
}
