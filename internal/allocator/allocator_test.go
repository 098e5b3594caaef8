package allocator

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/flat-stake/internal/models"
)

func outcomes(odds ...float64) []models.Outcome {
	out := make([]models.Outcome, len(odds))
	for i, o := range odds {
		out[i] = models.Outcome{ID: i + 1, Label: i + 1, Odds: o}
	}
	return out
}

func TestAllocateTwoRunners(t *testing.T) {
	result, err := Allocate(10000, outcomes(2.5, 5.0))
	require.NoError(t, err)

	a, _ := result.StakeFor(1)
	b, _ := result.StakeFor(2)
	assert.Equal(t, int64(6700), a.Stake)
	assert.Equal(t, int64(3300), b.Stake)
	assert.Equal(t, int64(16750), a.Payout)
	assert.Equal(t, int64(16500), b.Payout)
	assert.Equal(t, 1, result.RemainderSteps)

	assert.Equal(t, Summary{
		TotalInvested:     10000,
		MinPayout:         16500,
		MaxPayout:         16750,
		ExpectedProfit:    6500,
		ReturnRatePercent: 165,
	}, result.Summary)
	assert.True(t, result.Summary.IsPayoutRange())
}

func TestAllocateSingleRunnerTakesWholeBudget(t *testing.T) {
	result, err := Allocate(10000, outcomes(2.0))
	require.NoError(t, err)

	require.Len(t, result.Stakes, 1)
	assert.Equal(t, int64(10000), result.Stakes[0].Stake)
	assert.Equal(t, int64(20000), result.Stakes[0].Payout)
	assert.Equal(t, int64(10000), result.Summary.ExpectedProfit)
	assert.Equal(t, int64(200), result.Summary.ReturnRatePercent)
	assert.False(t, result.Summary.IsPayoutRange())
}

func TestAllocateNoResult(t *testing.T) {
	tests := []struct {
		name     string
		budget   int64
		outcomes []models.Outcome
	}{
		{"zero budget", 0, outcomes(2.5, 5.0)},
		{"negative budget", -500, outcomes(2.5)},
		{"no outcomes", 10000, nil},
		{"all zero odds", 10000, outcomes(0, 0)},
		{"negative odds", 10000, outcomes(-2, -1.5)},
		{"budget below unit", 50, outcomes(2.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Allocate(tt.budget, tt.outcomes)
			assert.ErrorIs(t, err, models.ErrNoResult)
			assert.Nil(t, result)
		})
	}
}

func TestAllocateIneligibleOutcomesKeptWithZeroStake(t *testing.T) {
	result, err := Allocate(10000, []models.Outcome{
		{ID: 1, Label: 1, Odds: 2.5},
		{ID: 7, Label: 2, Odds: 0},
		{ID: 3, Label: 3, Odds: 5.0},
	})
	require.NoError(t, err)

	require.Len(t, result.Stakes, 3)
	excluded, ok := result.StakeFor(7)
	require.True(t, ok)
	assert.False(t, excluded.Eligible)
	assert.Zero(t, excluded.Stake)
	assert.Zero(t, excluded.Payout)

	first, _ := result.StakeFor(1)
	last, _ := result.StakeFor(3)
	assert.Equal(t, int64(6700), first.Stake)
	assert.Equal(t, int64(3300), last.Stake)
	assert.Equal(t, int64(16500), result.Summary.MinPayout)
}

func TestAllocateTieGoesToFirstInInputOrder(t *testing.T) {
	result, err := Allocate(10000, []models.Outcome{
		{ID: 2, Label: 2, Odds: 5.0},
		{ID: 1, Label: 1, Odds: 2.5},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3400), result.Stakes[0].Stake)
	assert.Equal(t, int64(6600), result.Stakes[1].Stake)
	assert.Equal(t, int64(16500), result.Summary.MinPayout)
	assert.Equal(t, int64(17000), result.Summary.MaxPayout)
}

func TestAllocateRemainderGoesToLowestPayout(t *testing.T) {
	// base pass: 100 and 0, remainder 150
	result, err := Allocate(250, outcomes(2.5, 5.0))
	require.NoError(t, err)

	assert.Equal(t, int64(100), result.Stakes[0].Stake)
	assert.Equal(t, int64(100), result.Stakes[1].Stake)
	assert.Equal(t, int64(200), result.Summary.TotalInvested)
	assert.Equal(t, int64(250), result.Summary.MinPayout)
	assert.Equal(t, int64(50), result.Summary.ExpectedProfit)
	assert.Equal(t, int64(125), result.Summary.ReturnRatePercent)
}

func TestAllocateLeavesSubUnitShortfall(t *testing.T) {
	result, err := Allocate(10150, outcomes(2.0, 4.0, 4.0))
	require.NoError(t, err)

	assert.Equal(t, []int64{5100, 2500, 2500}, stakeValues(result))
	assert.Equal(t, int64(10100), result.Summary.TotalInvested)
	assert.Equal(t, int64(10000), result.Summary.MinPayout)
	assert.Equal(t, int64(10200), result.Summary.MaxPayout)
	assert.Equal(t, int64(-100), result.Summary.ExpectedProfit)
	assert.Equal(t, int64(99), result.Summary.ReturnRatePercent)
}

func TestAllocateExactSplitNeedsNoRemainder(t *testing.T) {
	result, err := Allocate(10000, outcomes(2.0, 4.0, 4.0))
	require.NoError(t, err)

	assert.Equal(t, []int64{5000, 2500, 2500}, stakeValues(result))
	assert.Zero(t, result.RemainderSteps)
	assert.False(t, result.Summary.IsPayoutRange())
	assert.Equal(t, int64(100), result.Summary.ReturnRatePercent)
}

func TestAllocatorCustomUnit(t *testing.T) {
	alloc, err := New(500)
	require.NoError(t, err)
	assert.Equal(t, int64(500), alloc.Unit())

	result, err := alloc.Allocate(10000, outcomes(2.5, 5.0))
	require.NoError(t, err)
	assert.Equal(t, []int64{6500, 3500}, stakeValues(result))
	assert.Equal(t, int64(500), result.Unit)
}

func TestNewRejectsNonPositiveUnit(t *testing.T) {
	for _, unit := range []int64{0, -100} {
		alloc, err := New(unit)
		assert.ErrorIs(t, err, models.ErrInvalidUnit)
		assert.Nil(t, alloc)
	}
}

func TestAllocateState(t *testing.T) {
	state := models.State{Budget: 10000, Outcomes: outcomes(2.5, 5.0)}
	fromState, err := Default().AllocateState(state)
	require.NoError(t, err)
	direct, err := Allocate(state.Budget, state.Outcomes)
	require.NoError(t, err)
	assert.Equal(t, direct, fromState)
}

func TestAllocateProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for iter := 0; iter < 500; iter++ {
		n := rng.Intn(8) + 1
		in := make([]models.Outcome, n)
		for i := range in {
			odds := math.Round((rng.Float64()*40-4)*10) / 10
			in[i] = models.Outcome{ID: i + 1, Label: i + 1, Odds: odds}
		}
		budget := int64(rng.Intn(100000))

		result, err := Allocate(budget, in)
		if err != nil {
			require.ErrorIs(t, err, models.ErrNoResult)
			continue
		}

		again, err := Allocate(budget, in)
		require.NoError(t, err)
		assert.Equal(t, result, again, "allocation must be deterministic")

		var sum int64
		for i, s := range result.Stakes {
			assert.GreaterOrEqual(t, s.Stake, int64(0))
			assert.Zero(t, s.Stake%DefaultUnit, "stake must be a multiple of the unit")
			if in[i].Odds <= 0 {
				assert.Zero(t, s.Stake)
				assert.False(t, s.Eligible)
			}
			sum += s.Stake
		}
		assert.LessOrEqual(t, sum, budget)
		assert.Less(t, budget-sum, DefaultUnit)
		assert.Equal(t, sum, result.Summary.TotalInvested)
	}
}

func TestAllocateOutOfRange(t *testing.T) {
	tests := []struct {
		name     string
		budget   int64
		outcomes []models.Outcome
	}{
		{"budget above max", models.MaxBudget + 1, []models.Outcome{{ID: 1, Label: 1, Odds: 2.0}}},
		{"max int64 budget", math.MaxInt64, []models.Outcome{{ID: 1, Label: 1, Odds: 2.0}}},
		{"huge odds", 10000, []models.Outcome{{ID: 1, Label: 1, Odds: 1e20}}},
		{"odds just above max", 10000, []models.Outcome{{ID: 1, Label: 1, Odds: 2.5}, {ID: 2, Label: 2, Odds: 1000.1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Allocate(tt.budget, tt.outcomes)
			assert.ErrorIs(t, err, models.ErrOutOfRange)
			assert.Nil(t, result)
		})
	}
}

func TestAllocateAtRangeLimits(t *testing.T) {
	result, err := Allocate(models.MaxBudget, []models.Outcome{
		{ID: 1, Label: 1, Odds: 2.0},
		{ID: 2, Label: 2, Odds: models.MaxOdds},
	})
	require.NoError(t, err)

	var sum int64
	for _, s := range result.Stakes {
		assert.Positive(t, s.Payout)
		sum += s.Stake
	}
	assert.LessOrEqual(t, sum, models.MaxBudget)
	assert.Less(t, models.MaxBudget-sum, DefaultUnit)
	assert.Positive(t, result.Summary.MinPayout)
}

func TestAllocateLargeValueProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for iter := 0; iter < 300; iter++ {
		n := rng.Intn(8) + 1
		in := make([]models.Outcome, n)
		for i := range in {
			in[i] = models.Outcome{ID: i + 1, Label: i + 1, Odds: 1 + rng.Float64()*(models.MaxOdds-1)}
		}
		budget := models.MaxBudget - rng.Int63n(1<<40)

		result, err := Allocate(budget, in)
		require.NoError(t, err)

		var sum int64
		for _, s := range result.Stakes {
			assert.GreaterOrEqual(t, s.Stake, int64(0))
			assert.Zero(t, s.Stake%DefaultUnit)
			assert.GreaterOrEqual(t, s.Payout, s.Stake, "odds above 1 never pay back less than the stake")
			sum += s.Stake
		}
		assert.LessOrEqual(t, sum, budget)
		assert.Less(t, budget-sum, DefaultUnit)
		assert.Equal(t, result.Summary.MinPayout-sum, result.Summary.ExpectedProfit)
	}
}

func TestAllocateReturnRateRoundsHalfUp(t *testing.T) {
	// 225 / 200 * 100 is exactly 112.5
	result, err := Allocate(200, []models.Outcome{{ID: 1, Label: 1, Odds: 1.125}})
	require.NoError(t, err)

	assert.Equal(t, int64(200), result.Summary.TotalInvested)
	assert.Equal(t, int64(225), result.Summary.MinPayout)
	assert.Equal(t, int64(25), result.Summary.ExpectedProfit)
	assert.Equal(t, int64(113), result.Summary.ReturnRatePercent)
}

func TestRoundHalfUp(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
	}{
		{112.5, 113},
		{112.49, 112},
		{2.5, 3},
		{0.5, 1},
		{-0.5, 0},
		{-1.5, -1},
		{99.999, 100},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, roundHalfUp(tt.in), "roundHalfUp(%v)", tt.in)
	}
}

func stakeValues(a *Allocation) []int64 {
	out := make([]int64, len(a.Stakes))
	for i, s := range a.Stakes {
		out[i] = s.Stake
	}
	return out
}
