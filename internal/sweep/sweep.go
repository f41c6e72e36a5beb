// Package sweep builds and analyzes one signal per modulation index
// concurrently.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"am-simulator/internal/analysis"
	"am-simulator/internal/pipeline"
)

// ErrInvalidRange is returned for an empty, non-advancing or oversized
// index range.
var ErrInvalidRange = errors.New("invalid sweep range")

// MaxPoints bounds the number of builds in one sweep.
const MaxPoints = 10000

// Point is the outcome of one sweep job.
type Point struct {
	Index  float64
	Report analysis.Report
}

// Indices returns from, from+step, ... up to and including to.
func Indices(from, to, step float64) ([]float64, error) {
	if !(step > 0) || math.IsInf(step, 0) {
		return nil, fmt.Errorf("%w: step must be positive, got %v", ErrInvalidRange, step)
	}
	if math.IsInf(from, 0) || math.IsInf(to, 0) || !(to >= from) {
		return nil, fmt.Errorf("%w: from %v is above to %v", ErrInvalidRange, from, to)
	}

	span := math.Floor((to-from)/step + 1e-9)
	if span+1 > MaxPoints {
		return nil, fmt.Errorf("%w: step %v gives more than %d points", ErrInvalidRange, step, MaxPoints)
	}

	count := int(span) + 1
	out := make([]float64, count)
	for i := range out {
		out[i] = from + float64(i)*step
	}
	return out, nil
}

// Run builds base once per index with at most workers builds in flight.
// Every job owns its builder; a non-zero seed gives job i the seed seed+i so
// a sweep is reproducible regardless of scheduling. Points keep the order of
// indices. The first failing job cancels the rest.
func Run(ctx context.Context, base pipeline.SignalSpec, indices []float64, workers int, seed int64) ([]Point, error) {
	if workers < 1 {
		workers = 1
	}

	points := make([]Point, len(indices))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, k := range indices {
		i, k := i, k
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			spec := base
			spec.ModulationIndex = k

			var opts []pipeline.Option
			if seed != 0 {
				opts = append(opts, pipeline.WithSeed(seed+int64(i)))
			}

			res, err := pipeline.NewBuilder(opts...).Build(spec)
			if err != nil {
				return fmt.Errorf("index %v: %w", k, err)
			}

			report, err := analysis.Analyze(res)
			if err != nil {
				return fmt.Errorf("index %v: %w", k, err)
			}

			points[i] = Point{Index: k, Report: report}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}

// BestSNR returns the point with the highest SNR. ok is false for an empty
// sweep.
func BestSNR(points []Point) (best Point, ok bool) {
	if len(points) == 0 {
		return Point{}, false
	}
	snr := make([]float64, len(points))
	for i, p := range points {
		snr[i] = p.Report.SNR.DB
	}
	return points[floats.MaxIdx(snr)], true
}
