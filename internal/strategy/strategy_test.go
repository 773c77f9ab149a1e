package strategy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracktitans/railcore/internal/network"
	"github.com/tracktitans/railcore/internal/solution"
	"github.com/tracktitans/railcore/internal/strategy"
	"github.com/tracktitans/railcore/internal/topology"
	"github.com/tracktitans/railcore/internal/trains"
)

func singleTrainNetwork(t *testing.T, trainType, timeOfDay string) *network.Network {
	t.Helper()
	stations := map[string]topology.Station{"NDLS": {}, "GZB": {}}
	tracks := map[string]topology.Track{"NDLS_GZB": {From: "NDLS", To: "GZB", TravelTimeMinutes: 20}}
	g := topology.New(stations, tracks)
	return network.New(g, []trains.Input{{
		ID: "T1", TrainType: trainType, TimeOfDay: timeOfDay,
		SectionStart: "NDLS", SectionEnd: "GZB",
		ScheduledArrivalTime: "2026-01-01 10:00:00",
	}})
}

func TestScoreLowerIsBetterOrdering(t *testing.T) {
	halt := solution.Candidate{ActionType: network.ActionHalt, TrainID: "T1", DurationMins: 10}
	cancel := solution.Candidate{ActionType: network.ActionCancel, TrainID: "T1"}

	haltScore := strategy.Score(strategy.Balanced, halt, "Passenger", 3, false)
	cancelScore := strategy.Score(strategy.Balanced, cancel, "Passenger", 3, false)

	assert.Less(t, haltScore, cancelScore, "a short halt should score lower (better) than an outright cancellation")
}

// TestCancelNeverBeatsShortHaltForTopPriorityTrain exercises the scorer's
// core trade-off: under Balanced weights (every penalty multiplier 1.0) and
// the base action costs (Halt 1, Cancel 50), cancelling a priority-1 train
// never scores better than a halt of 30 minutes or less on that same train.
func TestCancelNeverBeatsShortHaltForTopPriorityTrain(t *testing.T) {
	cancel := solution.Candidate{ActionType: network.ActionCancel, TrainID: "T1"}
	cancelScore := strategy.Score(strategy.Balanced, cancel, "Express", 1, false)

	for _, mins := range []int{5, 10, 15, 20, 25, 30} {
		halt := solution.Candidate{ActionType: network.ActionHalt, TrainID: "T1", DurationMins: mins}
		haltScore := strategy.Score(strategy.Balanced, halt, "Express", 1, false)
		assert.Less(t, haltScore, cancelScore, "halt of %d minutes must score strictly lower than cancel", mins)
	}
}

func TestScoreAppliesPeakMultiplier(t *testing.T) {
	halt := solution.Candidate{ActionType: network.ActionHalt, TrainID: "T1", DurationMins: 20}

	offPeak := strategy.Score(strategy.Balanced, halt, "Passenger", 3, false)
	peak := strategy.Score(strategy.Balanced, halt, "Passenger", 3, true)

	assert.Greater(t, peak, offPeak, "peak hours must not produce a cheaper score for the same candidate")
}

func TestScoreRespectsProfileWeighting(t *testing.T) {
	// Punctuality weighs Goods heavier (1.5) than Throughput (0.5): the same
	// halt on a Goods train must score higher (worse) under Punctuality.
	halt := solution.Candidate{ActionType: network.ActionHalt, TrainID: "T1", DurationMins: 15}

	punctualityScore := strategy.Score(strategy.Punctuality, halt, "Goods", 5, false)
	throughputScore := strategy.Score(strategy.Throughput, halt, "Goods", 5, false)

	assert.Greater(t, punctualityScore, throughputScore)
}

func TestRerouteAddonPenalizesLongerDistanceAlternative(t *testing.T) {
	base := solution.Candidate{
		ActionType:       network.ActionReroute,
		TrainID:          "T1",
		AlternativeRoute: &solution.AlternativeRouteSummary{Stations: []string{"A", "B", "C"}},
	}

	shorter := base
	shorter.AdditionalDistanceKM = -20 // alternative is shorter than the current route
	longer := base
	longer.AdditionalDistanceKM = 20 // alternative adds 20km over the current route

	shorterScore := strategy.Score(strategy.Balanced, shorter, "Passenger", 3, false)
	longerScore := strategy.Score(strategy.Balanced, longer, "Passenger", 3, false)

	assert.Greater(t, longerScore, shorterScore, "a reroute that adds distance over the current route must score worse")
}

func TestEvaluateReportsNoConflictWhenNoneDetected(t *testing.T) {
	n := singleTrainNetwork(t, "Express", "Midday")
	result := strategy.Evaluate(strategy.Balanced, n, nil, nil, 0)

	assert.Equal(t, strategy.StatusNoConflict, result.Status)
	assert.Nil(t, result.Recommendation)
}

func TestEvaluateReportsNoSolutionWhenNoCandidates(t *testing.T) {
	n := singleTrainNetwork(t, "Express", "Midday")
	result := strategy.Evaluate(strategy.Balanced, n, nil, "some-conflict", 1)

	assert.Equal(t, strategy.StatusNoSolution, result.Status)
	assert.Nil(t, result.Recommendation)
	assert.Equal(t, 1, result.TotalConflicts)
}

func TestEvaluatePicksLowestScoringCandidate(t *testing.T) {
	n := singleTrainNetwork(t, "Express", "Midday")
	candidates := []solution.Candidate{
		{SolutionID: "SOL-1", ActionType: network.ActionCancel, TrainID: "T1"},
		{SolutionID: "SOL-2", ActionType: network.ActionHalt, TrainID: "T1", DurationMins: 5},
	}

	result := strategy.Evaluate(strategy.Balanced, n, candidates, "conflict-1", 1)

	require.Equal(t, strategy.StatusRecommendation, result.Status)
	require.NotNil(t, result.Recommendation)
	assert.Equal(t, "SOL-2", result.Recommendation.Action.SolutionID)
	require.NotNil(t, result.BenefitsDrawbacks)
}

func TestEvaluateUnknownTrainFallsBackToDefaultContext(t *testing.T) {
	n := singleTrainNetwork(t, "Express", "Midday")
	candidates := []solution.Candidate{
		{SolutionID: "SOL-1", ActionType: network.ActionHalt, TrainID: "GHOST", DurationMins: 10},
	}

	result := strategy.Evaluate(strategy.Balanced, n, candidates, "conflict-1", 1)
	require.Equal(t, strategy.StatusRecommendation, result.Status)
	assert.Equal(t, "SOL-1", result.Recommendation.Action.SolutionID)
}

func TestConfidenceFromScoreGap(t *testing.T) {
	n := singleTrainNetwork(t, "Express", "Midday")

	t.Run("single candidate yields medium confidence", func(t *testing.T) {
		candidates := []solution.Candidate{{SolutionID: "S1", ActionType: network.ActionHalt, TrainID: "T1", DurationMins: 5}}
		result := strategy.Evaluate(strategy.Balanced, n, candidates, "c", 1)
		assert.Equal(t, strategy.ConfidenceMedium, result.Recommendation.Confidence)
	})

	t.Run("wide gap yields high confidence", func(t *testing.T) {
		candidates := []solution.Candidate{
			{SolutionID: "S1", ActionType: network.ActionHalt, TrainID: "T1", DurationMins: 5},
			{SolutionID: "S2", ActionType: network.ActionCancel, TrainID: "T1"},
		}
		result := strategy.Evaluate(strategy.Balanced, n, candidates, "c", 1)
		assert.Equal(t, strategy.ConfidenceHigh, result.Recommendation.Confidence)
	})

	t.Run("narrow gap yields low confidence", func(t *testing.T) {
		goods := singleTrainNetwork(t, "Goods", "Midday")
		candidates := []solution.Candidate{
			{SolutionID: "S1", ActionType: network.ActionHalt, TrainID: "T1", DurationMins: 10},
			{SolutionID: "S2", ActionType: network.ActionHalt, TrainID: "T1", DurationMins: 11},
		}
		result := strategy.Evaluate(strategy.Balanced, goods, candidates, "c", 1)
		assert.Equal(t, strategy.ConfidenceLow, result.Recommendation.Confidence)
	})
}

func TestBenefitsDrawbacksMentionLongHaltAndCancellationCosts(t *testing.T) {
	n := singleTrainNetwork(t, "Goods", "Midday")

	longHalt := []solution.Candidate{{SolutionID: "S1", ActionType: network.ActionHalt, TrainID: "T1", DurationMins: 45}}
	result := strategy.Evaluate(strategy.Balanced, n, longHalt, "c", 1)
	require.NotEmpty(t, result.BenefitsDrawbacks.Drawbacks)

	cancel := []solution.Candidate{{SolutionID: "S2", ActionType: network.ActionCancel, TrainID: "T1"}}
	result = strategy.Evaluate(strategy.Balanced, n, cancel, "c", 1)
	assert.GreaterOrEqual(t, len(result.BenefitsDrawbacks.Drawbacks), 2)
}

func TestAllReturnsThreeProfilesInEvaluationOrder(t *testing.T) {
	profiles := strategy.All()
	require.Len(t, profiles, 3)
	assert.Equal(t, []string{"Balanced", "Punctuality", "Throughput"}, []string{profiles[0].Name, profiles[1].Name, profiles[2].Name})
}
