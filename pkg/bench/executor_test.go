package bench

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CaiusDai/whippet-sort/pkg/column"
)

type nopWriteCloser struct {
	*bytes.Buffer
}

func (nopWriteCloser) Close() error { return nil }

func newTestBenchmark(t *testing.T, cols ...column.Raw) (*Benchmark, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	b := NewBenchmarkWriter(nopWriteCloser{buf})
	data, err := column.NewDataset(cols...)
	require.NoError(t, err)
	require.NoError(t, b.RegisterData(data))
	return b, buf
}

func runPlan(t *testing.T, b *Benchmark, plan StitchPlan, numRuns int) ([]uint32, *PlanStats) {
	t.Helper()
	stats, err := NewPlanStats(plan, b.data.Rows(), b.data.ColumnCount())
	require.NoError(t, err)
	final, err := b.RunPlan(plan, stats, numRuns)
	require.NoError(t, err)
	return final, stats
}

func Test_runSingleRound(t *testing.T) {
	b, _ := newTestBenchmark(t, column.Raw{1, 2, 3}, column.Raw{4, 5, 6})

	final, _ := runPlan(t, b, StitchPlan{{0, 1}}, 1)
	assert.Equal(t, []uint32{0, 1, 2}, final)
}

func Test_runTwoRoundRefinement(t *testing.T) {
	col0 := column.Raw{1, 2, 2, 1, 1, 4}
	col1 := column.Raw{4, 2, 2, 4, 1, 4}
	col2 := column.Raw{6, 9, 8, 5, 4, 3}
	b, _ := newTestBenchmark(t, col0, col1, col2)

	plan := StitchPlan{{0, 1}, {2}}
	final, stats := runPlan(t, b, plan, 1)

	// after round 0 the partition is [1,2,2,1]: two length-1 groups
	assert.Equal(t, 2, stats.UniqueGroups(0))
	assert.True(t, VerifySorted([]column.Raw{col0, col1, col2}, final))
}

func Test_runThreeRounds(t *testing.T) {
	cols := make([]column.Raw, 4)
	vals := [][]uint32{
		{3, 1, 3, 1, 2, 2, 3, 1},
		{1, 1, 2, 2, 1, 1, 2, 2},
		{5, 4, 5, 4, 5, 4, 5, 4},
		{0, 1, 2, 3, 4, 5, 6, 7},
	}
	for i := range cols {
		cols[i] = vals[i]
	}
	b, _ := newTestBenchmark(t, cols...)

	plan := StitchPlan{{0, 1}, {2}, {3}}
	final, _ := runPlan(t, b, plan, 3)
	assert.True(t, VerifySorted(cols, final))
}

func Test_runEmptyDataset(t *testing.T) {
	b, _ := newTestBenchmark(t, column.Raw{})

	final, _ := runPlan(t, b, StitchPlan{{0}}, 1)
	assert.Empty(t, final)
}

func Test_runSingleEqualColumn(t *testing.T) {
	b, _ := newTestBenchmark(t, column.Raw{7, 7, 7, 7})

	final, _ := runPlan(t, b, StitchPlan{{0}}, 1)
	seen := make([]bool, 4)
	for _, id := range final {
		seen[id] = true
	}
	for _, ok := range seen {
		assert.True(t, ok)
	}
}

func Test_runAllDistinctFirstRound(t *testing.T) {
	col0 := column.Raw{5, 3, 9, 1, 7, 0}
	col1 := column.Raw{1, 1, 1, 1, 1, 1}
	b, _ := newTestBenchmark(t, col0, col1)

	final, stats := runPlan(t, b, StitchPlan{{0}, {1}}, 1)
	// every row unique after round 0, round 1 cannot move anything
	assert.Equal(t, 6, stats.UniqueGroups(0))
	assert.True(t, VerifySorted([]column.Raw{col0, col1}, final))
}

func Test_runWideStitch(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	const rows = 800
	cols := make([]column.Raw, 4)
	for i := range cols {
		col := make(column.Raw, rows)
		for j := range col {
			col[j] = uint32(rng.Int31())
		}
		cols[i] = col
	}
	b, _ := newTestBenchmark(t, cols...)

	final, _ := runPlan(t, b, StitchPlan{{0, 1, 2, 3}}, 1)
	assert.True(t, VerifySorted(cols, final))
}

func Test_runDefaultCatalogue(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	const rows = 600
	cols := make([]column.Raw, 4)
	for i := range cols {
		col := make(column.Raw, rows)
		for j := range col {
			col[j] = uint32(rng.Intn(30))
		}
		cols[i] = col
	}
	b, _ := newTestBenchmark(t, cols...)

	// every catalogue plan names all four columns, so every plan must
	// yield a valid sort of the same composite key
	for _, plan := range DefaultPlans() {
		var idxs []int
		for _, round := range plan {
			idxs = append(idxs, round...)
		}
		planCols, err := b.data.Select(idxs)
		require.NoError(t, err)

		final, _ := runPlan(t, b, plan, 2)
		assert.True(t, VerifySorted(planCols, final), "plan %s", plan)
	}
}

func Test_invalidPlans(t *testing.T) {
	b, _ := newTestBenchmark(t,
		column.Raw{1}, column.Raw{2}, column.Raw{3}, column.Raw{4}, column.Raw{5})

	tests := []struct {
		name string
		plan StitchPlan
	}{
		{name: "empty plan", plan: StitchPlan{}},
		{name: "empty round", plan: StitchPlan{{0}, {}}},
		{name: "column out of range", plan: StitchPlan{{0, 9}}},
		{name: "negative column", plan: StitchPlan{{-1}}},
		{name: "duplicate across rounds", plan: StitchPlan{{0, 1}, {1}}},
		{name: "duplicate in round", plan: StitchPlan{{2, 2}}},
		{name: "compare factor too wide", plan: StitchPlan{{0, 1, 2, 3, 4}}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			stats, err := NewPlanStats(StitchPlan{{0}}, 1, 5)
			require.NoError(t, err)
			_, err = b.RunPlan(test.plan, stats, 1)
			assert.Error(t, err)
		})
	}
}

func Test_runAllWritesReports(t *testing.T) {
	col0 := column.Raw{2, 1, 2, 1}
	col1 := column.Raw{9, 8, 7, 6}
	b, buf := newTestBenchmark(t, col0, col1)

	b.RegisterPlans([]StitchPlan{
		{{0, 1}},
		{{0}, {1}},
	})
	final, err := b.RunAll(2)
	require.NoError(t, err)
	assert.True(t, VerifySorted([]column.Raw{col0, col1}, final))

	report := buf.String()
	assert.Contains(t, report, "Plan: [0,1]\n")
	assert.Contains(t, report, "Plan: [0] [1]\n")
	assert.Contains(t, report, "Row count: 4\n")
	assert.Contains(t, report, "Column count: 2\n")
	assert.Contains(t, report, "Total time: ")
	assert.Contains(t, report, "Round 0 : Stitch: ")
	// the plans run in registration order
	assert.Less(t,
		strings.Index(report, "Plan: [0,1]"),
		strings.Index(report, "Plan: [0] [1]"))
}

func Test_registerPlanIsolation(t *testing.T) {
	b, _ := newTestBenchmark(t, column.Raw{1, 2}, column.Raw{3, 4})

	plan := StitchPlan{{0}, {1}}
	b.RegisterPlan(plan)
	// caller mutation after registration must not corrupt the run
	plan[0][0] = 99

	_, err := b.RunAll(1)
	assert.NoError(t, err)
}

func Test_runAllWithoutData(t *testing.T) {
	b := NewBenchmarkWriter(nopWriteCloser{&bytes.Buffer{}})
	b.RegisterPlan(StitchPlan{{0}})
	_, err := b.RunAll(1)
	assert.Error(t, err)
}

func Test_describe(t *testing.T) {
	b, _ := newTestBenchmark(t, column.Raw{1}, column.Raw{2})
	b.RegisterPlan(StitchPlan{{0}, {1}})

	desc := b.Describe()
	assert.Contains(t, desc, "plan 0: [0] [1]")
	assert.Contains(t, desc, "round 0: columns [0]")
	assert.Contains(t, desc, "round 1: columns [1]")
}
