package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracktitans/railcore/internal/engine"
	"github.com/tracktitans/railcore/internal/network"
	"github.com/tracktitans/railcore/internal/strategy"
	"github.com/tracktitans/railcore/internal/topology"
	"github.com/tracktitans/railcore/internal/trains"
)

func twoStationEngine(t *testing.T) *engine.Engine {
	t.Helper()
	stations := map[string]topology.Station{"NDLS": {}, "GZB": {}}
	tracks := map[string]topology.Track{"NDLS_GZB": {From: "NDLS", To: "GZB", TravelTimeMinutes: 20}}
	g := topology.New(stations, tracks)
	schedule := []trains.Input{
		{ID: "12001_SHATABDI", TrainType: "Express", TimeOfDay: "Midday", SectionStart: "NDLS", SectionEnd: "GZB", ScheduledArrivalTime: "2026-01-01 10:00:00"},
		{ID: "18205_GOODS", TrainType: "Goods", TimeOfDay: "Midday", SectionStart: "NDLS", SectionEnd: "GZB", ScheduledArrivalTime: "2026-01-01 10:05:00"},
	}
	return engine.New(network.New(g, schedule))
}

func diamondEngine(t *testing.T) *engine.Engine {
	t.Helper()
	stations := map[string]topology.Station{"NDLS": {}, "ANVR": {}, "SBB": {}, "GZB": {}}
	tracks := map[string]topology.Track{
		"NDLS_ANVR": {From: "NDLS", To: "ANVR", DistanceKM: 30, TravelTimeMinutes: 10, TrackType: topology.TrackDoubleLine},
		"ANVR_GZB":  {From: "ANVR", To: "GZB", DistanceKM: 30, TravelTimeMinutes: 12, TrackType: topology.TrackDoubleLine},
		"NDLS_SBB":  {From: "NDLS", To: "SBB", DistanceKM: 5, TravelTimeMinutes: 25, TrackType: topology.TrackSingleLine},
		"SBB_GZB":   {From: "SBB", To: "GZB", DistanceKM: 5, TravelTimeMinutes: 20, TrackType: topology.TrackSingleLine},
	}
	g := topology.New(stations, tracks)
	schedule := []trains.Input{
		{ID: "GOODS1", TrainType: "Goods", TimeOfDay: "Midday", SectionStart: "NDLS", SectionEnd: "GZB", ScheduledArrivalTime: "2026-01-01 11:00:00"},
	}
	return engine.New(network.New(g, schedule))
}

// S1: an Express delay under adverse weather collapses the gap to its Goods
// counterpart below the required buffer; the pipeline must detect the
// conflict and recommend a remediation for one of the two trains involved.
func TestExpressDelayTriggersRecommendation(t *testing.T) {
	e := twoStationEngine(t)
	now, _ := time.Parse("2006-01-02 15:04:05", "2026-01-01 09:00:00")

	ok, err := e.ApplyEvent(network.Event{EventType: network.EventDelay, TrainID: "12001_SHATABDI", DelayMinutes: 10, Weather: "Fog"})
	require.NoError(t, err)
	require.True(t, ok)

	result := e.RunStrategyAt(strategy.Balanced, now)

	require.Equal(t, strategy.StatusRecommendation, result.Status)
	require.NotNil(t, result.Recommendation)
	assert.Contains(t, []string{"12001_SHATABDI", "18205_GOODS"}, result.Recommendation.Action.TrainID)
	assert.Equal(t, 1, result.TotalConflicts)
}

// Applying the resulting recommendation back onto the live network must be
// observable on the target train.
func TestApplyActionMutatesLiveNetwork(t *testing.T) {
	e := twoStationEngine(t)
	now, _ := time.Parse("2006-01-02 15:04:05", "2026-01-01 09:00:00")
	_, err := e.ApplyEvent(network.Event{EventType: network.EventDelay, TrainID: "12001_SHATABDI", DelayMinutes: 10, Weather: "Fog"})
	require.NoError(t, err)

	result := e.RunStrategyAt(strategy.Balanced, now)
	require.NotNil(t, result.Recommendation)
	action := result.Recommendation.Action

	ok, err := e.ApplyAction(network.Action{
		ActionType:   action.ActionType,
		TrainID:      action.TrainID,
		DurationMins: action.DurationMins,
		RouteIndex:   action.RouteIndex,
		SpeedFactor:  action.SpeedFactor,
		Description:  "accepted recommendation",
	})
	require.NoError(t, err)
	require.True(t, ok)

	tr, ok := e.Network().Train(action.TrainID)
	require.True(t, ok)
	assert.NotEqual(t, "On-Time", tr.Status)
}

// S2/S3: a track failure degrades the network and forces alternative routes
// onto the affected train; a subsequent repair restores it to healthy.
func TestTrackFailureAndRepairCycle(t *testing.T) {
	e := diamondEngine(t)

	snapshot := e.Network().GetStateSnapshot()
	require.Equal(t, "healthy", snapshot.NetworkHealth)

	ok, err := e.ApplyEvent(network.Event{EventType: network.EventTrackFailure, TrackID: "NDLS_ANVR", Description: "signal failure"})
	require.NoError(t, err)
	require.True(t, ok)

	degraded := e.Network().GetStateSnapshot()
	assert.Equal(t, "degraded", degraded.NetworkHealth)
	assert.Equal(t, 1, degraded.FailedTracks)

	tr, ok := e.Network().Train("GOODS1")
	require.True(t, ok)
	assert.NotEmpty(t, tr.AlternativeRoutes, "losing its primary track must leave an affected train with alternatives to fall back on")

	ok, err = e.ApplyEvent(network.Event{EventType: network.EventTrackRepair, TrackID: "NDLS_ANVR"})
	require.NoError(t, err)
	require.True(t, ok)

	healed := e.Network().GetStateSnapshot()
	assert.Equal(t, "healthy", healed.NetworkHealth)
	assert.Equal(t, 0, healed.FailedTracks)
}

// Unknown track and train identifiers must fail without mutating state.
func TestApplyEventRejectsUnknownIdentifiers(t *testing.T) {
	e := twoStationEngine(t)

	ok, err := e.ApplyEvent(network.Event{EventType: network.EventDelay, TrainID: "GHOST", DelayMinutes: 5})
	assert.Error(t, err)
	assert.False(t, ok)

	ok, err = e.ApplyEvent(network.Event{EventType: network.EventTrackFailure, TrackID: "NOPE"})
	assert.Error(t, err)
	assert.False(t, ok)
}

// S4: running every built-in profile must evaluate each independently
// against its own network clone, so an action considered while scoring one
// profile never leaks into another, and all three profiles are present.
func TestRunAllStrategiesEvaluatesEveryProfileInIsolation(t *testing.T) {
	e := twoStationEngine(t)
	now, _ := time.Parse("2006-01-02 15:04:05", "2026-01-01 09:00:00")
	_, err := e.ApplyEvent(network.Event{EventType: network.EventDelay, TrainID: "12001_SHATABDI", DelayMinutes: 10, Weather: "Fog"})
	require.NoError(t, err)

	results := e.RunAllStrategiesAt(now)

	require.Len(t, results, 3)
	for _, name := range []string{"Balanced", "Punctuality", "Throughput"} {
		r, ok := results[name]
		require.True(t, ok, "missing profile %s", name)
		assert.Equal(t, strategy.StatusRecommendation, r.Status)
	}

	// The live network must be untouched: multi-strategy evaluation only
	// previews actions against clones.
	tr, ok := e.Network().Train("12001_SHATABDI")
	require.True(t, ok)
	assert.Contains(t, tr.Status, "Delayed")
}

// S5: confidence follows the gap between the best and second-best scores,
// exercised here through the full pipeline. The two cheapest candidates are
// the 15- and 20-minute Goods halts (Balanced scores 20 and 25); a gap of 5
// is below the Medium threshold, so confidence is Low.
func TestRunStrategyConfidenceReflectsScoreGap(t *testing.T) {
	e := twoStationEngine(t)
	now, _ := time.Parse("2006-01-02 15:04:05", "2026-01-01 09:00:00")
	_, err := e.ApplyEvent(network.Event{EventType: network.EventDelay, TrainID: "12001_SHATABDI", DelayMinutes: 10, Weather: "Fog"})
	require.NoError(t, err)

	result := e.RunStrategyAt(strategy.Balanced, now)
	require.NotNil(t, result.Recommendation)
	assert.Equal(t, strategy.ConfidenceLow, result.Recommendation.Confidence)
}

func TestRunStrategyNoConflictWhenNetworkUndisturbed(t *testing.T) {
	// A 30-minute scheduled gap exceeds even the 20-minute Goods buffer, so
	// this fixture needs its own wider spacing rather than twoStationEngine's
	// 5-minute gap (which is already inside the buffer before any event).
	stations := map[string]topology.Station{"NDLS": {}, "GZB": {}}
	tracks := map[string]topology.Track{"NDLS_GZB": {From: "NDLS", To: "GZB", TravelTimeMinutes: 20}}
	g := topology.New(stations, tracks)
	schedule := []trains.Input{
		{ID: "12001_SHATABDI", TrainType: "Express", TimeOfDay: "Midday", SectionStart: "NDLS", SectionEnd: "GZB", ScheduledArrivalTime: "2026-01-01 10:00:00"},
		{ID: "18205_GOODS", TrainType: "Goods", TimeOfDay: "Midday", SectionStart: "NDLS", SectionEnd: "GZB", ScheduledArrivalTime: "2026-01-01 10:30:00"},
	}
	e := engine.New(network.New(g, schedule))
	now, _ := time.Parse("2006-01-02 15:04:05", "2026-01-01 09:00:00")

	result := e.RunStrategyAt(strategy.Balanced, now)
	assert.Equal(t, strategy.StatusNoConflict, result.Status)
}
