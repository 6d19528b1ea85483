package column

import (
	"fmt"
	"math/rand"

	"golang.org/x/sync/errgroup"
)

// Generator produces synthetic datasets of independent uniform columns.
// The cardinality rate c bounds values to [0, floor(rows*c)].
type Generator struct {
	rows   int
	cols   int
	card   float64
	seed   int64
	seeded bool
}

func NewGenerator(rows, cols int, card float64) (*Generator, error) {
	if rows < 0 {
		return nil, fmt.Errorf("invalid row count %d", rows)
	}
	if cols < 1 {
		return nil, fmt.Errorf("invalid column count %d", cols)
	}
	if card <= 0 || card > 1 {
		return nil, fmt.Errorf("cardinality rate %v outside (0,1]", card)
	}
	return &Generator{rows: rows, cols: cols, card: card}, nil
}

// Seed makes the generator deterministic. Without it every Generate
// call draws from a fresh nondeterministic source.
func (gen *Generator) Seed(seed int64) {
	gen.seed = seed
	gen.seeded = true
}

func (gen *Generator) Generate() (*Dataset, error) {
	seed := gen.seed
	if !gen.seeded {
		seed = rand.Int63()
	}
	// Per-column seeds derived up front so columns can be filled
	// concurrently without sharing a source.
	seeder := rand.New(rand.NewSource(seed))
	colSeeds := make([]int64, gen.cols)
	for i := range colSeeds {
		colSeeds[i] = seeder.Int63()
	}

	upper := int64(float64(gen.rows) * gen.card)
	cols := make([]Raw, gen.cols)
	var eg errgroup.Group
	for i := 0; i < gen.cols; i++ {
		eg.Go(func() error {
			rng := rand.New(rand.NewSource(colSeeds[i]))
			col := make(Raw, gen.rows)
			for j := range col {
				col[j] = uint32(rng.Int63n(upper + 1))
			}
			cols[i] = col
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return NewDataset(cols...)
}
