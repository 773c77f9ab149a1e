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

// Package routing implements the multi-algorithm pathfinder and the
// immutable Route/RouteSegment value types it produces.
package routing

import "github.com/tracktitans/railcore/internal/topology"

// RouteSegment is a reference to one track edge plus the scalar attributes it
// carried at the time the route was built. Immutable.
type RouteSegment struct {
	TrackID               string
	From                  string
	To                    string
	DistanceKM            float64
	TravelTimeMinutes     float64
	TrackType             topology.TrackType
	CapacityTrainsPerHour int
	Priority              topology.TrackPriority
	MaxSpeedKMH           float64
}

func segmentFromTrack(n topology.Neighbour, from string) RouteSegment {
	t := n.Track
	return RouteSegment{
		TrackID:               n.TrackID,
		From:                  from,
		To:                    n.To,
		DistanceKM:            t.DistanceKM,
		TravelTimeMinutes:     t.TravelTimeMinutes,
		TrackType:             t.TrackType,
		CapacityTrainsPerHour: t.CapacityTrainsPerHour,
		Priority:              t.Priority,
		MaxSpeedKMH:           t.MaxSpeedKMH,
	}
}

// Route is an ordered non-empty sequence of chained segments, immutable once
// built by the pathfinder.
type Route struct {
	Segments         []RouteSegment
	TotalDistanceKM  float64
	TotalTimeMinutes float64
	TotalCost        float64
	RouteType        string
	Stations         []string
}

func buildRoute(segments []RouteSegment, routeType string, trainType string) *Route {
	if len(segments) == 0 {
		return nil
	}
	stations := make([]string, 0, len(segments)+1)
	stations = append(stations, segments[0].From)
	var totalDistance, totalTime float64
	singleLine := 0
	for _, seg := range segments {
		stations = append(stations, seg.To)
		totalDistance += seg.DistanceKM
		totalTime += seg.TravelTimeMinutes
		if seg.TrackType == topology.TrackSingleLine {
			singleLine++
		}
	}
	cost := totalTime
	if len(segments) > 2 {
		cost += 10
	}
	cost += float64(singleLine) * 5
	return &Route{
		Segments:         segments,
		TotalDistanceKM:  totalDistance,
		TotalTimeMinutes: totalTime,
		TotalCost:        cost,
		RouteType:        routeType,
		Stations:         stations,
	}
}

// sharesOver80Percent reports whether two routes share more than 80% of r's
// own segments by track ID, per find_alternative_routes de-duplication.
func (r *Route) sharesOver80Percent(other *Route) bool {
	if len(r.Segments) == 0 {
		return false
	}
	shared := 0
	for _, seg := range r.Segments {
		for _, oseg := range other.Segments {
			if seg.TrackID == oseg.TrackID {
				shared++
				break
			}
		}
	}
	return float64(shared)/float64(len(r.Segments)) > 0.8
}

func sameStations(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
