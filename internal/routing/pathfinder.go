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

package routing

import (
	"container/heap"
	"math"
	"sort"

	"github.com/tracktitans/railcore/internal/topology"
)

// Strategy selects the graph search algorithm.
type Strategy string

const (
	Dijkstra Strategy = "dijkstra"
	Greedy   Strategy = "greedy"
	AStar    Strategy = "astar"
)

// Criterion selects the edge-cost function.
type Criterion string

const (
	CriterionTime        Criterion = "time"
	CriterionDistance    Criterion = "distance"
	CriterionReliability Criterion = "reliability"
)

// Pathfinder computes best and k-alternative routes over a Graph under a
// configurable strategy and cost criterion.
type Pathfinder struct {
	graph    *topology.Graph
	Strategy Strategy
}

// New binds a pathfinder to a graph with a default strategy. The criterion is
// supplied per call since it varies by request (time/distance/reliability).
func New(g *topology.Graph, strategy Strategy) *Pathfinder {
	if strategy == "" {
		strategy = Dijkstra
	}
	return &Pathfinder{graph: g, Strategy: strategy}
}

// edgeCost computes w(edge, criterion, train_type) per the routing spec.
func edgeCost(track topology.Track, criterion Criterion, trainType string) float64 {
	var base float64
	switch criterion {
	case CriterionDistance:
		base = track.DistanceKM
	case CriterionReliability:
		base = track.TravelTimeMinutes
		if track.TrackType == topology.TrackSingleLine {
			base *= 1.5
		}
		if track.Priority == topology.PriorityLow {
			base *= 1.3
		}
	default: // time
		base = track.TravelTimeMinutes
	}

	switch trainType {
	case "Express":
		if track.MaxSpeedKMH < 100 {
			base *= 1.2
		}
	case "Goods":
		if track.TrackType == topology.TrackSingleLine {
			base *= 0.9
		}
	}
	return base
}

// heuristic is the Euclidean distance between two stations' coordinates,
// scaled by 100. It returns +Inf if either station lacks coordinates.
func heuristic(a, b topology.Station) float64 {
	if !a.HasCoordinates() || !b.HasCoordinates() {
		return math.Inf(1)
	}
	dLat := a.Coordinates.Lat - b.Coordinates.Lat
	dLon := a.Coordinates.Lon - b.Coordinates.Lon
	return math.Sqrt(dLat*dLat+dLon*dLon) * 100
}

// searchItem is a priority-queue payload. insertion order breaks ties so the
// heap never needs to compare path slices.
type searchItem struct {
	key       float64
	g         float64
	counter   int64
	station   string
	segments  []RouteSegment
}

type searchHeap []searchItem

func (h searchHeap) Len() int { return len(h) }
func (h searchHeap) Less(i, j int) bool {
	if h[i].key != h[j].key {
		return h[i].key < h[j].key
	}
	return h[i].counter < h[j].counter
}
func (h searchHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *searchHeap) Push(x interface{}) { *h = append(*h, x.(searchItem)) }
func (h *searchHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// search runs the configured Strategy from origin to destination and returns
// the chained segments of the first accepted path, or nil if unreachable.
func (p *Pathfinder) search(origin, destination, trainType string, criterion Criterion) []RouteSegment {
	destStation, destOK := p.graph.Station(destination)
	if _, ok := p.graph.Station(origin); !ok || !destOK {
		return nil
	}

	var counter int64
	pq := &searchHeap{}
	heap.Init(pq)
	heap.Push(pq, searchItem{key: 0, g: 0, counter: counter, station: origin})
	visited := make(map[string]bool)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(searchItem)
		if visited[item.station] {
			continue
		}
		visited[item.station] = true

		if item.station == destination {
			return item.segments
		}

		for _, n := range p.graph.Neighbours(item.station) {
			if visited[n.To] {
				continue
			}
			seg := segmentFromTrack(n, item.station)
			newSegments := make([]RouteSegment, len(item.segments), len(item.segments)+1)
			copy(newSegments, item.segments)
			newSegments = append(newSegments, seg)

			w := edgeCost(n.Track, criterion, trainType)
			newG := item.g + w

			var key float64
			switch p.Strategy {
			case Greedy:
				toStation, _ := p.graph.Station(n.To)
				key = heuristic(toStation, destStation)
			case AStar:
				toStation, _ := p.graph.Station(n.To)
				key = newG + heuristic(toStation, destStation)
			default: // Dijkstra
				key = newG
			}

			counter++
			heap.Push(pq, searchItem{key: key, g: newG, counter: counter, station: n.To, segments: newSegments})
		}
	}
	return nil
}

// FindBestRoute returns the route found by the configured strategy, or
// (nil, false) if origin == destination or the destination is unreachable.
func (p *Pathfinder) FindBestRoute(origin, destination, trainType string, criterion Criterion) (*Route, bool) {
	if origin == destination {
		return nil, false
	}
	segments := p.search(origin, destination, trainType, criterion)
	if segments == nil {
		return nil, false
	}
	route := buildRoute(segments, string(p.Strategy)+"_route", trainType)
	if route == nil {
		return nil, false
	}
	return route, true
}

// FindAlternativeRoutes runs the search under time, reliability and distance
// criteria in that order, de-duplicating by identical station list or more
// than 80% shared segments, and returns up to maxAlternatives results sorted
// ascending by route cost.
func (p *Pathfinder) FindAlternativeRoutes(origin, destination, trainType string, maxAlternatives int) []*Route {
	criteria := []Criterion{CriterionTime, CriterionReliability, CriterionDistance}
	routes := make([]*Route, 0, maxAlternatives)

	for _, c := range criteria {
		route, ok := p.FindBestRoute(origin, destination, trainType, c)
		if !ok {
			continue
		}
		if isDuplicate(route, routes) {
			continue
		}
		routes = append(routes, route)
		if len(routes) >= maxAlternatives {
			break
		}
	}

	sort.SliceStable(routes, func(i, j int) bool { return routes[i].TotalCost < routes[j].TotalCost })
	if len(routes) > maxAlternatives {
		routes = routes[:maxAlternatives]
	}
	return routes
}

func isDuplicate(candidate *Route, existing []*Route) bool {
	for _, r := range existing {
		if sameStations(candidate.Stations, r.Stations) {
			return true
		}
		if candidate.sharesOver80Percent(r) {
			return true
		}
	}
	return false
}
