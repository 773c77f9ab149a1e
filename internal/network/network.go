// Copyright (C) 2008-2019 by Nicolas Piganeau and the TS2 TEAM
// (See AUTHORS file)
//
// This program is free software; you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation; either version 2 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program; if not, write to the
// Free Software Foundation, Inc.,
// 59 Temple Place - Suite 330, Boston, MA  02111-1307, USA.

// Package network composes the topology graph, pathfinder and train models
// into the live digital twin: it initialises routes, applies events and
// recommended actions, and produces state snapshots.
package network

import (
	"fmt"
	"sync"
	"time"

	log "gopkg.in/inconshreveable/log15.v2"

	"github.com/tracktitans/railcore/internal/routing"
	"github.com/tracktitans/railcore/internal/topology"
	"github.com/tracktitans/railcore/internal/trains"
)

var logger log.Logger = log.New("module", "network")

// InitializeLogger rebinds the package logger under a parent logger, mirroring
// how sibling components attach to a shared root logger.
func InitializeLogger(parent log.Logger) {
	logger = parent.New("module", "network")
}

// Network owns the topology graph, a pathfinder bound to it, all trains and
// the platform/track occupancy tables. All mutation is serialised behind mu;
// pathfinding and scoring performed against a Network are pure reads of the
// current snapshot.
type Network struct {
	mu sync.RWMutex

	graph      *topology.Graph
	pathfinder *routing.Pathfinder

	trainOrder []string
	trainsByID map[string]*trains.Train

	platforms      map[string][]string // station -> platform index -> train id ("" if empty)
	trackOccupancy map[string]string   // track id -> train id ("" if empty)

	audit   *auditLog
	metrics *metricsState
}

// New builds a network from a topology graph and a schedule, then computes
// each train's initial primary and alternative routes.
func New(graph *topology.Graph, schedule []trains.Input) *Network {
	n := &Network{
		graph:          graph,
		pathfinder:     routing.New(graph, routing.Dijkstra),
		trainOrder:     make([]string, 0, len(schedule)),
		trainsByID:     make(map[string]*trains.Train, len(schedule)),
		platforms:      make(map[string][]string),
		trackOccupancy: make(map[string]string),
		audit:          newAuditLog(500),
		metrics:        newMetricsState(time.Hour),
	}

	for code, s := range graph.Stations() {
		n.platforms[code] = make([]string, s.Platforms)
	}
	for id := range graph.Tracks() {
		n.trackOccupancy[id] = ""
	}

	for _, in := range schedule {
		t := trains.New(in)
		n.trainOrder = append(n.trainOrder, t.ID)
		n.trainsByID[t.ID] = t
	}

	n.initializeTrainRoutes()
	logger.Info("network constructed", "trains", len(n.trainsByID), "stations", len(n.platforms), "tracks", len(n.trackOccupancy))
	return n
}

// initializeTrainRoutes computes the primary route (time criterion) and up to
// two distinct alternatives for every train. Must be called with mu held.
func (n *Network) initializeTrainRoutes() {
	for _, id := range n.trainOrder {
		t := n.trainsByID[id]
		primary, ok := n.pathfinder.FindBestRoute(t.SectionStart, t.SectionEnd, t.TrainType, routing.CriterionTime)
		alternatives := n.pathfinder.FindAlternativeRoutes(t.SectionStart, t.SectionEnd, t.TrainType, 2)
		alternatives = removeRouteIfPresent(alternatives, primary)
		if !ok {
			t.SetRoutes(nil, alternatives)
			logger.Warn("no route found for train", "train", t.ID, "from", t.SectionStart, "to", t.SectionEnd)
			continue
		}
		t.SetRoutes(primary, alternatives)
	}
}

func removeRouteIfPresent(routes []*routing.Route, primary *routing.Route) []*routing.Route {
	if primary == nil {
		return routes
	}
	out := make([]*routing.Route, 0, len(routes))
	for _, r := range routes {
		if routesEqual(r, primary) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func routesEqual(a, b *routing.Route) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.Stations) != len(b.Stations) {
		return false
	}
	for i := range a.Stations {
		if a.Stations[i] != b.Stations[i] {
			return false
		}
	}
	return true
}

// Train returns a train by ID for read-only inspection by other components.
func (n *Network) Train(id string) (*trains.Train, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	t, ok := n.trainsByID[id]
	return t, ok
}

// Trains returns the trains in schedule order.
func (n *Network) Trains() []*trains.Train {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]*trains.Train, 0, len(n.trainOrder))
	for _, id := range n.trainOrder {
		out = append(out, n.trainsByID[id])
	}
	return out
}

// Graph exposes the topology graph for read-only inspection.
func (n *Network) Graph() *topology.Graph { return n.graph }

// Pathfinder exposes the bound pathfinder for read-only inspection, e.g. by
// the solution generator when it needs fresh alternatives.
func (n *Network) Pathfinder() *routing.Pathfinder { return n.pathfinder }

// ApplyEvent mutates train/track state in response to a reported disruption.
// Unknown train/track identifiers fail with state unchanged. Unknown event
// types are treated as "delay".
func (n *Network) ApplyEvent(ev Event) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch ev.EventType {
	case EventTrackFailure:
		return n.applyTrackFailureLocked(ev)
	case EventTrackRepair:
		return n.applyTrackRepairLocked(ev)
	default:
		return n.applyDelayLocked(ev)
	}
}

func (n *Network) applyDelayLocked(ev Event) (bool, error) {
	t, ok := n.trainsByID[ev.TrainID]
	if !ok {
		return false, fmt.Errorf("unknown train_id %q", ev.TrainID)
	}
	t.ApplyDelay(ev.DelayMinutes, ev.Description)
	if ev.Weather != "" {
		t.Weather = ev.Weather
	}
	if ev.TrackCondition != "" {
		t.TrackCondition = ev.TrackCondition
	}
	n.metrics.recordDelay(time.Now(), ev.DelayMinutes)
	n.audit.append("delay", t.ID, "", map[string]interface{}{
		"delay_minutes": ev.DelayMinutes,
		"description":   ev.Description,
	})
	logger.Info("delay applied", "train", t.ID, "minutes", ev.DelayMinutes, "reason", ev.Description)
	return true, nil
}

func (n *Network) applyTrackFailureLocked(ev Event) (bool, error) {
	if _, ok := n.graph.Track(ev.TrackID); !ok {
		return false, fmt.Errorf("unknown track_id %q", ev.TrackID)
	}

	affected := n.trainsUsingTrackLocked(ev.TrackID)

	if !n.graph.DisableTrack(ev.TrackID, ev.Description) {
		return false, fmt.Errorf("unknown track_id %q", ev.TrackID)
	}

	for _, t := range affected {
		alts := n.pathfinder.FindAlternativeRoutes(t.SectionStart, t.SectionEnd, t.TrainType, 3)
		t.AlternativeRoutes = alts
	}

	n.audit.append("track_failure", "", ev.TrackID, map[string]interface{}{
		"description":     ev.Description,
		"affected_trains": trainIDs(affected),
	})
	logger.Warn("track failure applied", "track", ev.TrackID, "affected", len(affected))
	return true, nil
}

func (n *Network) applyTrackRepairLocked(ev Event) (bool, error) {
	if !n.graph.EnableTrack(ev.TrackID) {
		return false, fmt.Errorf("unknown track_id %q", ev.TrackID)
	}
	n.initializeTrainRoutes()
	n.audit.append("track_repair", "", ev.TrackID, nil)
	logger.Info("track repair applied", "track", ev.TrackID)
	return true, nil
}

// trainsUsingTrackLocked returns the trains whose current route traverses
// trackID, before the track is disabled.
func (n *Network) trainsUsingTrackLocked(trackID string) []*trains.Train {
	var out []*trains.Train
	for _, id := range n.trainOrder {
		t := n.trainsByID[id]
		if t.CurrentRoute == nil {
			continue
		}
		for _, seg := range t.CurrentRoute.Segments {
			if seg.TrackID == trackID {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

func trainIDs(ts []*trains.Train) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}

// RecalculateRoutesForTrains attempts to reassign a primary route to each
// listed train under current graph status.
func (n *Network) RecalculateRoutesForTrains(trainIDs []string) RecalculationResult {
	n.mu.Lock()
	defer n.mu.Unlock()

	result := RecalculationResult{ReroutingInfo: make([]ReroutingInfo, 0, len(trainIDs))}
	for _, id := range trainIDs {
		t, ok := n.trainsByID[id]
		if !ok {
			continue
		}
		result.TotalAffected++
		route, ok := n.pathfinder.FindBestRoute(t.SectionStart, t.SectionEnd, t.TrainType, routing.CriterionTime)
		if !ok {
			result.ReroutingInfo = append(result.ReroutingInfo, ReroutingInfo{TrainID: id, Succeeded: false})
			continue
		}
		t.SetRoutes(route, t.AlternativeRoutes)
		result.SuccessfullyRerouted++
		result.ReroutingInfo = append(result.ReroutingInfo, ReroutingInfo{TrainID: id, Succeeded: true, NewRoute: route.RouteType})
	}
	return result
}

// ApplyAction routes a recommended remediation action to the target train's
// mutation methods. Invalid parameters and unknown identifiers leave state
// unchanged.
func (n *Network) ApplyAction(action Action) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	t, ok := n.trainsByID[action.TrainID]
	if !ok {
		return false, fmt.Errorf("unknown train_id %q", action.TrainID)
	}

	switch action.ActionType {
	case ActionHalt:
		if action.DurationMins < 0 {
			return false, fmt.Errorf("invalid halt duration %d", action.DurationMins)
		}
		t.ApplyHalt(action.DurationMins, action.Description)
	case ActionSpeedAdjust:
		if err := t.ApplySpeedAdjustment(action.SpeedFactor, action.Description); err != nil {
			return false, err
		}
	case ActionReroute:
		if err := t.SwitchToAlternativeRoute(action.RouteIndex); err != nil {
			return false, err
		}
	case ActionCancel:
		t.ApplyCancellation(action.Description)
	default:
		return false, fmt.Errorf("unknown action_type %q", action.ActionType)
	}

	n.audit.append("action", t.ID, "", map[string]interface{}{
		"action_type": action.ActionType,
		"description": action.Description,
	})
	logger.Info("action applied", "train", t.ID, "action", action.ActionType)
	return true, nil
}

// GetAllTrainETAs returns one record per non-cancelled train with a valid
// ETA.
func (n *Network) GetAllTrainETAs() []ETARecord {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := make([]ETARecord, 0, len(n.trainOrder))
	for _, id := range n.trainOrder {
		t := n.trainsByID[id]
		if t.IsCancelled() {
			continue
		}
		eta := t.GetETAAtDestination()
		if !eta.Valid {
			continue
		}
		out = append(out, ETARecord{
			TrainID:        t.ID,
			TrainType:      t.TrainType,
			Priority:       t.Priority,
			Destination:    eta.Destination,
			ETA:            eta.Time,
			TotalDelayMins: eta.TotalDelayMins,
			Weather:        t.Weather,
			TrackCondition: t.TrackCondition,
			TimeOfDay:      t.TimeOfDay,
		})
	}
	return out
}

// GetStateSnapshot serialises the current twin state.
func (n *Network) GetStateSnapshot() Snapshot {
	n.mu.RLock()
	defer n.mu.RUnlock()

	snap := Snapshot{
		Trains:            make([]TrainSnapshot, 0, len(n.trainOrder)),
		Platforms:         make(map[string][]string, len(n.platforms)),
		TrackOccupancy:    make([]TrackOccupancySnapshot, 0, len(n.trackOccupancy)),
		OperationalTracks: n.graph.OperationalCount(),
		FailedTracks:      n.graph.FailedCount(),
		Timestamp:         time.Now().UTC(),
	}
	if snap.FailedTracks > 0 {
		snap.NetworkHealth = "degraded"
	} else {
		snap.NetworkHealth = "healthy"
	}

	for _, id := range n.trainOrder {
		t := n.trainsByID[id]
		ts := TrainSnapshot{
			ID:              t.ID,
			TrainType:       t.TrainType,
			Status:          t.Status,
			Priority:        t.Priority,
			SectionStart:    t.SectionStart,
			SectionEnd:      t.SectionEnd,
			CurrentLocation: t.CurrentLocation,
			ActualDelayMins: t.ActualDelayMins,
			Weather:         t.Weather,
			TrackCondition:  t.TrackCondition,
		}
		if t.CurrentRoute != nil {
			ts.RouteInfo = &RouteInfo{
				RouteType:        t.CurrentRoute.RouteType,
				Stations:         t.CurrentRoute.Stations,
				TotalDistanceKM:  t.CurrentRoute.TotalDistanceKM,
				TotalTimeMinutes: t.CurrentRoute.TotalTimeMinutes,
			}
		}
		snap.Trains = append(snap.Trains, ts)
	}

	for station, slots := range n.platforms {
		cp := make([]string, len(slots))
		copy(cp, slots)
		snap.Platforms[station] = cp
	}

	for id, tr := range n.graph.Tracks() {
		snap.TrackOccupancy = append(snap.TrackOccupancy, TrackOccupancySnapshot{
			TrackID: id,
			TrainID: n.trackOccupancy[id],
			Status:  string(tr.Status),
		})
	}

	return snap
}

// Metrics returns a rolling-window KPI snapshot.
func (n *Network) Metrics() KPISnapshot {
	return n.metrics.snapshot()
}

// AuditSince returns audit entries recorded after sinceID.
func (n *Network) AuditSince(sinceID int64, limit int) []AuditEntry {
	return n.audit.Since(sinceID, limit)
}

// RecordConflictDetected and RecordConflictResolved let the decision engine
// feed the rolling KPI window without reaching into Network internals.
func (n *Network) RecordConflictDetected() { n.metrics.recordConflictDetected() }
func (n *Network) RecordConflictResolved(d time.Duration) { n.metrics.recordConflictResolved(d) }

// Clone returns an independent deep copy of the network: a new graph, new
// train values (route slots remain shared by reference since routes are
// immutable) and independent occupancy tables. Used by multi-strategy
// evaluation so that preview mutations never leak between strategies.
func (n *Network) Clone() *Network {
	n.mu.RLock()
	defer n.mu.RUnlock()

	clonedGraph := n.graph.Clone()
	clone := &Network{
		graph:          clonedGraph,
		pathfinder:     routing.New(clonedGraph, n.pathfinder.Strategy),
		trainOrder:     append([]string(nil), n.trainOrder...),
		trainsByID:     make(map[string]*trains.Train, len(n.trainsByID)),
		platforms:      make(map[string][]string, len(n.platforms)),
		trackOccupancy: make(map[string]string, len(n.trackOccupancy)),
		audit:          n.audit.clone(),
		metrics:        n.metrics.clone(),
	}
	for id, t := range n.trainsByID {
		clone.trainsByID[id] = t.Clone()
	}
	for station, slots := range n.platforms {
		clone.platforms[station] = append([]string(nil), slots...)
	}
	for id, trainID := range n.trackOccupancy {
		clone.trackOccupancy[id] = trainID
	}
	return clone
}
