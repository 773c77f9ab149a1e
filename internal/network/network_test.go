package network_test

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracktitans/railcore/internal/network"
	"github.com/tracktitans/railcore/internal/topology"
	"github.com/tracktitans/railcore/internal/trains"
)

func twoStationNetwork(t *testing.T) *network.Network {
	t.Helper()
	stations := map[string]topology.Station{"NDLS": {Platforms: 2}, "GZB": {Platforms: 2}}
	tracks := map[string]topology.Track{"NDLS_GZB": {From: "NDLS", To: "GZB", TravelTimeMinutes: 20}}
	g := topology.New(stations, tracks)
	schedule := []trains.Input{
		{ID: "12001", TrainType: "Express", SectionStart: "NDLS", SectionEnd: "GZB", ScheduledArrivalTime: "2026-01-01 10:00:00"},
	}
	return network.New(g, schedule)
}

func TestApplyActionRejectsUnknownTrainAndInvalidHalt(t *testing.T) {
	n := twoStationNetwork(t)

	ok, err := n.ApplyAction(network.Action{ActionType: network.ActionHalt, TrainID: "GHOST", DurationMins: 5})
	assert.Error(t, err)
	assert.False(t, ok)

	ok, err = n.ApplyAction(network.Action{ActionType: network.ActionHalt, TrainID: "12001", DurationMins: -1})
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestApplyActionHaltRecordsAuditEntry(t *testing.T) {
	n := twoStationNetwork(t)

	ok, err := n.ApplyAction(network.Action{ActionType: network.ActionHalt, TrainID: "12001", DurationMins: 10, Description: "capacity conflict"})
	require.NoError(t, err)
	require.True(t, ok)

	entries := n.AuditSince(0, 10)
	require.Len(t, entries, 1)
	assert.Equal(t, "action", entries[0].Category)
	assert.Equal(t, "12001", entries[0].TrainID)
	assert.NotEmpty(t, entries[0].TraceID, "every audit entry must carry a correlation id")

	tr, ok := n.Train("12001")
	require.True(t, ok)
	assert.Equal(t, 10, tr.ActualDelayMins)
	assert.Contains(t, tr.Status, "Halted")
}

func TestAuditSinceOnlyReturnsNewerEntries(t *testing.T) {
	n := twoStationNetwork(t)
	_, _ = n.ApplyAction(network.Action{ActionType: network.ActionHalt, TrainID: "12001", DurationMins: 5})
	_, _ = n.ApplyAction(network.Action{ActionType: network.ActionHalt, TrainID: "12001", DurationMins: 5})

	all := n.AuditSince(0, 10)
	require.Len(t, all, 2)

	firstID, err := strconv.ParseInt(all[0].ID, 10, 64)
	require.NoError(t, err)
	onlySecond := n.AuditSince(firstID, 10)
	require.Len(t, onlySecond, 1)
	assert.Equal(t, all[1].ID, onlySecond[0].ID)
}

func TestMetricsTracksDelaysAndConflicts(t *testing.T) {
	n := twoStationNetwork(t)
	_, err := n.ApplyEvent(network.Event{EventType: network.EventDelay, TrainID: "12001", DelayMinutes: 15})
	require.NoError(t, err)

	n.RecordConflictDetected()
	n.RecordConflictResolved(2 * time.Minute)

	snap := n.Metrics()
	assert.Equal(t, 1, snap.DelaySamples)
	assert.Equal(t, 15.0, snap.AverageDelayMins)
	assert.Equal(t, 1, snap.ConflictsDetected)
	assert.Equal(t, 1, snap.ConflictsResolved)
	assert.Equal(t, 2.0, snap.AverageMTTRMins)
}

func TestCloneIsolatesMutationFromOriginal(t *testing.T) {
	n := twoStationNetwork(t)
	clone := n.Clone()

	_, err := clone.ApplyAction(network.Action{ActionType: network.ActionHalt, TrainID: "12001", DurationMins: 20})
	require.NoError(t, err)

	original, ok := n.Train("12001")
	require.True(t, ok)
	assert.Equal(t, 0, original.ActualDelayMins, "mutating a clone must never affect the source network")

	clonedTrain, ok := clone.Train("12001")
	require.True(t, ok)
	assert.Equal(t, 20, clonedTrain.ActualDelayMins)

	assert.Empty(t, n.AuditSince(0, 10), "the clone's own action must not appear in the source network's audit log")
}

func TestGetStateSnapshotReflectsTrackFailure(t *testing.T) {
	n := twoStationNetwork(t)
	snap := n.GetStateSnapshot()
	assert.Equal(t, "healthy", snap.NetworkHealth)
	require.Len(t, snap.Trains, 1)

	ok, err := n.ApplyEvent(network.Event{EventType: network.EventTrackFailure, TrackID: "NDLS_GZB", Description: "derailment"})
	require.NoError(t, err)
	require.True(t, ok)

	snap = n.GetStateSnapshot()
	assert.Equal(t, "degraded", snap.NetworkHealth)
	assert.Equal(t, 1, snap.FailedTracks)
}

func TestGetAllTrainETAsExcludesCancelledTrains(t *testing.T) {
	n := twoStationNetwork(t)
	tr, ok := n.Train("12001")
	require.True(t, ok)
	tr.ApplyCancellation("no crew")

	etas := n.GetAllTrainETAs()
	assert.Empty(t, etas)
}
