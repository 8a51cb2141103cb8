// Property-based tests for the balance derivation rule.
package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

// TestComputeBalancesNonNegativityProperty checks that the available
// balance never goes below zero for any combination of earnings and
// spend. Overspending is absorbed, never surfaced as debt.
func TestComputeBalancesNonNegativityProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		eventPoints := rapid.Int64Range(0, 1000000).Draw(t, "eventPoints")
		achievementPoints := rapid.Int64Range(0, 1000000).Draw(t, "achievementPoints")
		adminPoints := rapid.Int64Range(-1000000, 1000000).Draw(t, "adminPoints")
		spent := rapid.Int64Range(0, 10000000).Draw(t, "spent")

		b := computeBalances(eventPoints, achievementPoints, adminPoints, spent)

		if b.Available < 0 {
			t.Fatalf("available balance went negative: %+v", b)
		}
	})
}

// TestComputeBalancesAdditivityProperty checks that the lifetime total
// is the literal sum of the three sources and that growing one source
// grows the total by exactly that amount.
func TestComputeBalancesAdditivityProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		eventPoints := rapid.Int64Range(0, 1000000).Draw(t, "eventPoints")
		achievementPoints := rapid.Int64Range(0, 1000000).Draw(t, "achievementPoints")
		adminPoints := rapid.Int64Range(-1000000, 1000000).Draw(t, "adminPoints")
		spent := rapid.Int64Range(0, 1000000).Draw(t, "spent")
		delta := rapid.Int64Range(0, 10000).Draw(t, "delta")

		b := computeBalances(eventPoints, achievementPoints, adminPoints, spent)
		if b.TotalEarned != eventPoints+achievementPoints+adminPoints {
			t.Fatalf("total %d is not the sum of sources (%d+%d+%d)",
				b.TotalEarned, eventPoints, achievementPoints, adminPoints)
		}

		grown := computeBalances(eventPoints+delta, achievementPoints, adminPoints, spent)
		if grown.TotalEarned != b.TotalEarned+delta {
			t.Fatalf("adding %d event points changed total by %d", delta, grown.TotalEarned-b.TotalEarned)
		}
	})
}

// TestComputeBalancesSpendProperty checks that spend reduces only the
// available balance and exactly by the spent amount while it fits.
func TestComputeBalancesSpendProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		eventPoints := rapid.Int64Range(0, 1000000).Draw(t, "eventPoints")
		achievementPoints := rapid.Int64Range(0, 1000000).Draw(t, "achievementPoints")
		adminPoints := rapid.Int64Range(0, 1000000).Draw(t, "adminPoints")

		total := eventPoints + achievementPoints + adminPoints
		spent := rapid.Int64Range(0, total).Draw(t, "spent")

		b := computeBalances(eventPoints, achievementPoints, adminPoints, spent)

		if b.Available != total-spent {
			t.Fatalf("available %d, want %d", b.Available, total-spent)
		}
		if b.TotalEarned != total {
			t.Fatalf("spend changed lifetime total: got %d, want %d", b.TotalEarned, total)
		}
	})
}

// TestComputeBalancesScenarios pins the arithmetic with the canonical
// earn/spend/cancel walk-through.
func TestComputeBalancesScenarios(t *testing.T) {
	// One attended event worth 30, one achievement worth 20, no orders.
	b := computeBalances(30, 20, 0, 0)
	assert.Equal(t, int64(50), b.TotalEarned)
	assert.Equal(t, int64(50), b.Available)

	// A pending order of 35 holds points immediately.
	b = computeBalances(30, 20, 0, 35)
	assert.Equal(t, int64(50), b.TotalEarned)
	assert.Equal(t, int64(15), b.Available)

	// Cancelling the order releases the hold.
	b = computeBalances(30, 20, 0, 0)
	assert.Equal(t, int64(50), b.Available)

	// Spend beyond lifetime earnings clamps at zero.
	b = computeBalances(10, 0, 0, 25)
	assert.Equal(t, int64(10), b.TotalEarned)
	assert.Equal(t, int64(0), b.Available)

	// A negative admin adjustment can clamp availability too.
	b = computeBalances(10, 0, -15, 0)
	assert.Equal(t, int64(-5), b.TotalEarned)
	assert.Equal(t, int64(0), b.Available)
}
