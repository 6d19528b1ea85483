package bench

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_medianUpper(t *testing.T) {
	assert.Equal(t, 0.0, Median(nil))
	assert.Equal(t, 3.0, Median([]float64{3}))
	// even count picks the upper median
	assert.Equal(t, 4.0, Median([]float64{4, 1}))
	assert.Equal(t, 2.0, Median([]float64{3, 1, 2}))
	assert.Equal(t, 3.0, Median([]float64{4, 3, 2, 1}))
}

func Test_skippedDataRate(t *testing.T) {
	plan := StitchPlan{{0, 1}, {2}, {3}}
	stats, err := NewPlanStats(plan, 6, 4)
	require.NoError(t, err)

	stats.RecordUniqueGroups(0, 2)
	stats.RecordUniqueGroups(1, 4)
	// C=4, S_0=2, S_1=3: (2-0)*(4-2) + (4-2)*(4-3) = 6 of 24 reads
	assert.Equal(t, 25, stats.SkippedDataRate())
}

func Test_skippedDataRateSingleRound(t *testing.T) {
	stats, err := NewPlanStats(StitchPlan{{0, 1, 2, 3}}, 100, 4)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.SkippedDataRate())
}

func Test_skippedDataRateEmptyRows(t *testing.T) {
	stats, err := NewPlanStats(StitchPlan{{0}, {1}}, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.SkippedDataRate())
}

func Test_emptyPlanStats(t *testing.T) {
	_, err := NewPlanStats(StitchPlan{}, 10, 4)
	assert.Error(t, err)
}

func Test_writeSummaryFormat(t *testing.T) {
	plan := StitchPlan{{0, 1}, {2}}
	stats, err := NewPlanStats(plan, 6, 3)
	require.NoError(t, err)

	for run := 0; run < 3; run++ {
		for r := 0; r < 2; r++ {
			stats.Record(TimingStitch, r, 1.5)
			stats.Record(TimingSort, r, 2.5)
			stats.Record(TimingGroup, r, 0.5)
			stats.Record(TimingRound, r, 4.5)
		}
		stats.RecordTotal(9.0)
	}
	stats.RecordUniqueGroups(0, 2)

	buf := &bytes.Buffer{}
	require.NoError(t, stats.WriteSummary(buf))

	want := "Plan: [0,1] [2]\n" +
		"Row count: 6\n" +
		"Column count: 3\n" +
		"Skipped data rate: 11%\n" +
		"Unique group counts:\n" +
		"[Round 0] 2/6\n" +
		"Total time: 9.000 ms\n" +
		"Round 0 : Stitch: 1.500 ms, Sort: 2.500 ms, Group: 0.500 ms, Total: 4.500 ms\n" +
		"Round 1 : Stitch: 1.500 ms, Sort: 2.500 ms, Group: 0.500 ms, Total: 4.500 ms\n" +
		"\n"
	assert.Equal(t, want, buf.String())
}

func Test_planString(t *testing.T) {
	assert.Equal(t, "[0,1,2,3]", StitchPlan{{0, 1, 2, 3}}.String())
	assert.Equal(t, "[0,1] [2] [3]", StitchPlan{{0, 1}, {2}, {3}}.String())
}

func Test_planTotalColumns(t *testing.T) {
	assert.Equal(t, 4, StitchPlan{{0, 1}, {2, 3}}.TotalColumns())
	assert.Equal(t, 1, StitchPlan{{0}}.TotalColumns())
}

func Test_planClone(t *testing.T) {
	plan := StitchPlan{{0, 1}, {2}}
	cp := plan.Clone()
	cp[0][0] = 9
	assert.Equal(t, 0, plan[0][0])
}

func Test_defaultPlansValid(t *testing.T) {
	plans := DefaultPlans()
	require.Len(t, plans, 8)
	for _, plan := range plans {
		assert.NoError(t, plan.Validate(4))
		assert.Equal(t, 4, plan.TotalColumns())
	}
}
