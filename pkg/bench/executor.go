package bench

import (
	"errors"
	"fmt"
	"io"
	"os"

	treemap "github.com/liyue201/gostl/ds/map"
	"github.com/xlab/treeprint"
	"go.uber.org/zap"

	"github.com/CaiusDai/whippet-sort/pkg/column"
	"github.com/CaiusDai/whippet-sort/pkg/stitch"
	"github.com/CaiusDai/whippet-sort/pkg/util"
)

const (
	DefaultL3CacheSize = 12 * 1024 * 1024
	DefaultScaleFactor = 50
	DefaultRows        = (DefaultL3CacheSize / 8) * DefaultScaleFactor
	DefaultColumns     = 4
	DefaultCardinality = 0.5
	DefaultRuns        = 5
)

// Benchmark owns a plan catalogue, one dataset, and the report file.
// Plans run one at a time; each plan's summary is appended to the
// report as soon as its runs finish.
type Benchmark struct {
	plans   *treemap.Map[int, StitchPlan]
	nextSeq int
	data    *column.Dataset
	out     io.WriteCloser
	lock    *util.ReentryLock
}

func NewBenchmark(outPath string) (*Benchmark, error) {
	file, err := os.Create(outPath)
	if err != nil {
		return nil, fmt.Errorf("open report file %s: %w", outPath, err)
	}
	return newBenchmark(file), nil
}

// NewBenchmarkWriter is the testing seam: reports go to w instead of a
// file.
func NewBenchmarkWriter(w io.WriteCloser) *Benchmark {
	return newBenchmark(w)
}

func newBenchmark(w io.WriteCloser) *Benchmark {
	cmp := func(a, b int) int { return a - b }
	return &Benchmark{
		plans: treemap.New[int, StitchPlan](cmp),
		out:   w,
		lock:  util.NewReentryLock(),
	}
}

func (b *Benchmark) Close() error {
	return b.out.Close()
}

// RegisterPlan stores a deep copy, keyed by registration order so the
// report is written in the order plans came in.
func (b *Benchmark) RegisterPlan(plan StitchPlan) {
	b.plans.Insert(b.nextSeq, plan.Clone())
	b.nextSeq++
}

func (b *Benchmark) RegisterPlans(plans []StitchPlan) {
	for _, plan := range plans {
		b.RegisterPlan(plan)
	}
}

func (b *Benchmark) RegisterData(data *column.Dataset) error {
	if data == nil {
		return errors.New("nil dataset")
	}
	b.data = data
	return nil
}

// Describe renders the registered plan catalogue as a tree.
func (b *Benchmark) Describe() string {
	tree := treeprint.New()
	tree.SetValue("plans")
	b.plans.Traversal(func(seq int, plan StitchPlan) bool {
		branch := tree.AddBranch(fmt.Sprintf("plan %d: %s", seq, plan))
		for r, round := range plan {
			branch.AddNode(fmt.Sprintf("round %d: columns %v", r, round))
		}
		return true
	})
	return tree.String()
}

// RunAll runs every registered plan numRuns times and writes each
// plan's summary. It returns the final permutation of the last plan so
// callers can verify or export it.
func (b *Benchmark) RunAll(numRuns int) ([]uint32, error) {
	if b.data == nil {
		return nil, errors.New("no dataset registered")
	}
	var final []uint32
	for iter := b.plans.Begin(); iter.IsValid(); iter.Next() {
		plan := iter.Value()
		stats, err := NewPlanStats(plan, b.data.Rows(), b.data.ColumnCount())
		if err != nil {
			return nil, err
		}
		final, err = b.RunPlan(plan, stats, numRuns)
		if err != nil {
			return nil, err
		}
		if err = b.writeReport(stats); err != nil {
			return nil, err
		}
		util.Info("plan finished",
			zap.Stringer("plan", plan),
			zap.Float64("medianTotalMs", Median(stats.totalTiming)),
			zap.Int("skippedDataRate", stats.SkippedDataRate()))
	}
	return final, nil
}

// RunPlan executes one plan numRuns times against the registered
// dataset, recording per-operation timings into stats. The sorting
// state moves from round to round; each stitched column lives for
// exactly one round.
func (b *Benchmark) RunPlan(plan StitchPlan, stats *PlanStats, numRuns int) (final []uint32, err error) {
	if b.data == nil {
		return nil, errors.New("no dataset registered")
	}
	if err = plan.Validate(b.data.ColumnCount()); err != nil {
		return nil, fmt.Errorf("invalid plan %s: %w", plan, err)
	}
	if numRuns < 1 {
		return nil, fmt.Errorf("invalid run count %d", numRuns)
	}
	defer func() {
		if v := recover(); v != nil {
			err = util.ConvertPanicError(v)
		}
	}()

	rounds := len(plan)
	globalTimer, roundTimer, opTimer := NewTimer(), NewTimer(), NewTimer()

	for run := 0; run < numRuns; run++ {
		var state stitch.SortingState
		globalTimer.Start()
		state.Indices = stitch.IdentityIndices(b.data.Rows())

		for r := 0; r < rounds; r++ {
			roundTimer.Start()
			cols, selErr := b.data.Select(plan[r])
			if selErr != nil {
				return nil, selErr
			}

			opTimer.Start()
			stitched, stErr := stitch.Stitch(cols, state.Indices)
			opTimer.Stop()
			if stErr != nil {
				return nil, stErr
			}
			stats.Record(TimingStitch, r, opTimer.ElapsedMs())

			opTimer.Start()
			if r == 0 {
				stitched.Sort()
			} else {
				stitched.SortGroups(state.Groups)
			}
			opTimer.Stop()
			stats.Record(TimingSort, r, opTimer.ElapsedMs())

			opTimer.Start()
			switch {
			case r == rounds-1:
				final = stitched.IndexOnly()
			case r == 0:
				state = stitched.GroupAndIndex()
			default:
				// later rounds refine, they never rediscover:
				// rows in different incoming groups already
				// differ on an earlier key
				state = stitched.Refine(state.Groups)
			}
			opTimer.Stop()
			stats.Record(TimingGroup, r, opTimer.ElapsedMs())
			if r < rounds-1 {
				stats.RecordUniqueGroups(r, state.UniqueGroupCount())
			}
			stitched.Close()

			roundTimer.Stop()
			stats.Record(TimingRound, r, roundTimer.ElapsedMs())
		}
		globalTimer.Stop()
		stats.RecordTotal(globalTimer.ElapsedMs())
	}
	return final, nil
}

func (b *Benchmark) writeReport(stats *PlanStats) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	return stats.WriteSummary(b.out)
}
