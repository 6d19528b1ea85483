package bench

import (
	"fmt"
	"strings"

	"github.com/huandu/go-clone"

	"github.com/CaiusDai/whippet-sort/pkg/stitch"
)

// StitchPlan is an ordered sequence of rounds; each round names the raw
// columns stitched and sorted in that round.
type StitchPlan [][]int

// Validate rejects plans the executor cannot run: empty plans, empty
// rounds, compare factors outside the supported widths, column indices
// outside the dataset, and columns repeated across rounds.
func (plan StitchPlan) Validate(columnCount int) error {
	if len(plan) == 0 {
		return fmt.Errorf("empty plan")
	}
	seen := make(map[int]int)
	for r, round := range plan {
		if len(round) == 0 {
			return fmt.Errorf("plan round %d is empty", r)
		}
		if len(round) > stitch.MaxCompareFactor {
			return fmt.Errorf("plan round %d has compare factor %d, max %d",
				r, len(round), stitch.MaxCompareFactor)
		}
		for _, idx := range round {
			if idx < 0 || idx >= columnCount {
				return fmt.Errorf("plan round %d: column index %d out of range [0,%d)",
					r, idx, columnCount)
			}
			if prev, dup := seen[idx]; dup {
				return fmt.Errorf("column %d appears in rounds %d and %d", idx, prev, r)
			}
			seen[idx] = r
		}
	}
	return nil
}

// TotalColumns is the number of column positions across all rounds.
func (plan StitchPlan) TotalColumns() int {
	total := 0
	for _, round := range plan {
		total += len(round)
	}
	return total
}

// Clone deep-copies the plan so a registered plan cannot be mutated
// from outside a run.
func (plan StitchPlan) Clone() StitchPlan {
	return clone.Clone(plan).(StitchPlan)
}

func (plan StitchPlan) String() string {
	var sb strings.Builder
	for r, round := range plan {
		if r > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte('[')
		for i, idx := range round {
			if i > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(&sb, "%d", idx)
		}
		sb.WriteByte(']')
	}
	return sb.String()
}

// DefaultPlans is the fixed catalogue the harness runs over a
// four-column dataset.
func DefaultPlans() []StitchPlan {
	return []StitchPlan{
		{{0, 1, 2, 3}},
		{{0, 1}, {2}, {3}},
		{{0, 1}, {2, 3}},
		{{0}, {1, 2}, {3}},
		{{0}, {1}, {2, 3}},
		{{0, 1, 2}, {3}},
		{{0}, {1, 2, 3}},
		{{0}, {1}, {2}, {3}},
	}
}
