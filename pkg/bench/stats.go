package bench

import (
	"fmt"
	"io"
	"sort"
)

type TimingType int

const (
	TimingStitch TimingType = iota
	TimingSort
	TimingGroup
	TimingRound
)

// PlanStats collects per-round operation timings across the repeated
// runs of one plan, plus the per-round unique group counts feeding the
// skipped-data accounting.
type PlanStats struct {
	plan        StitchPlan
	rowCount    int
	columnCount int

	stitchTiming [][]float64
	sortTiming   [][]float64
	groupTiming  [][]float64
	roundTiming  [][]float64
	totalTiming  []float64

	// count of length-1 groups after round r, for r < R-1
	uniqueGroups []int
}

func NewPlanStats(plan StitchPlan, rowCount, columnCount int) (*PlanStats, error) {
	if len(plan) == 0 {
		return nil, fmt.Errorf("empty plan")
	}
	rounds := len(plan)
	return &PlanStats{
		plan:         plan,
		rowCount:     rowCount,
		columnCount:  columnCount,
		stitchTiming: make([][]float64, rounds),
		sortTiming:   make([][]float64, rounds),
		groupTiming:  make([][]float64, rounds),
		roundTiming:  make([][]float64, rounds),
		uniqueGroups: make([]int, rounds),
	}, nil
}

func (stats *PlanStats) Record(typ TimingType, round int, ms float64) {
	switch typ {
	case TimingStitch:
		stats.stitchTiming[round] = append(stats.stitchTiming[round], ms)
	case TimingSort:
		stats.sortTiming[round] = append(stats.sortTiming[round], ms)
	case TimingGroup:
		stats.groupTiming[round] = append(stats.groupTiming[round], ms)
	case TimingRound:
		stats.roundTiming[round] = append(stats.roundTiming[round], ms)
	default:
		panic(fmt.Sprintf("invalid timing type %d", typ))
	}
}

func (stats *PlanStats) RecordTotal(ms float64) {
	stats.totalTiming = append(stats.totalTiming, ms)
}

// RecordUniqueGroups notes how many groups of length 1 exist after a
// round. The counts are data-dependent, not run-dependent, so repeated
// runs simply overwrite.
func (stats *PlanStats) RecordUniqueGroups(round, count int) {
	stats.uniqueGroups[round] = count
}

func (stats *PlanStats) UniqueGroups(round int) int {
	return stats.uniqueGroups[round]
}

// Median picks the upper median: sort ascending, take index n/2.
func Median(timing []float64) float64 {
	if len(timing) == 0 {
		return 0
	}
	sorted := make([]float64, len(timing))
	copy(sorted, timing)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}

// SkippedDataRate is the fraction of per-row column reads later rounds
// avoid because earlier rounds already isolated rows into length-1
// groups. Rows that become unique after round r never need their
// remaining C-S_r key words stitched again.
func (stats *PlanStats) SkippedDataRate() int {
	totalCols := stats.plan.TotalColumns()
	denom := stats.rowCount * totalCols
	if denom == 0 {
		return 0
	}
	num := 0
	prevUnique := 0
	stitched := 0
	for r := 0; r < len(stats.plan)-1; r++ {
		stitched += len(stats.plan[r])
		unique := stats.uniqueGroups[r]
		num += (unique - prevUnique) * (totalCols - stitched)
		prevUnique = unique
	}
	return num * 100 / denom
}

// WriteSummary renders the plan's report block. The layout is diffed
// by downstream tooling, keep it stable.
func (stats *PlanStats) WriteSummary(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Plan: %s\n", stats.plan); err != nil {
		return err
	}
	fmt.Fprintf(w, "Row count: %d\n", stats.rowCount)
	fmt.Fprintf(w, "Column count: %d\n", stats.columnCount)
	fmt.Fprintf(w, "Skipped data rate: %d%%\n", stats.SkippedDataRate())
	fmt.Fprintf(w, "Unique group counts:\n")
	for r := 0; r < len(stats.plan)-1; r++ {
		fmt.Fprintf(w, "[Round %d] %d/%d\n", r, stats.uniqueGroups[r], stats.rowCount)
	}
	fmt.Fprintf(w, "Total time: %.3f ms\n", Median(stats.totalTiming))
	for r := range stats.plan {
		fmt.Fprintf(w, "Round %d : Stitch: %.3f ms, Sort: %.3f ms, Group: %.3f ms, Total: %.3f ms\n",
			r,
			Median(stats.stitchTiming[r]),
			Median(stats.sortTiming[r]),
			Median(stats.groupTiming[r]),
			Median(stats.roundTiming[r]))
	}
	_, err := fmt.Fprintln(w)
	return err
}
