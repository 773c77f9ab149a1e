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

// Package solution proposes candidate remediation actions — Halt,
// SpeedAdjust, Reroute, Cancel — for a detected conflict, grounded in train
// characteristics and the alternatives already computed by the pathfinder.
package solution

import (
	"fmt"

	log "gopkg.in/inconshreveable/log15.v2"

	"github.com/tracktitans/railcore/internal/conflict"
	"github.com/tracktitans/railcore/internal/network"
)

var logger log.Logger = log.New("module", "solution")

// InitializeLogger rebinds the package logger under a parent logger.
func InitializeLogger(parent log.Logger) {
	logger = parent.New("module", "solution")
}

// EnvironmentalAdjustment records the contextual deltas applied alongside a
// candidate, carried through to the scorer.
type EnvironmentalAdjustment struct {
	WeatherFactor float64 `json:"weather_factor"`
	TrackFactor   float64 `json:"track_factor"`
	TimeFactor    float64 `json:"time_factor"`
}

// AlternativeRouteSummary is the slice of a route's attributes carried on a
// Reroute candidate.
type AlternativeRouteSummary struct {
	RouteIndex       int      `json:"route_index"`
	RouteType        string   `json:"route_type"`
	Stations         []string `json:"stations"`
	TotalDistanceKM  float64  `json:"total_distance_km"`
	TotalTimeMinutes float64  `json:"total_time_minutes"`
}

// Candidate is one proposed remediation action for one train in a conflict.
type Candidate struct {
	SolutionID              string                  `json:"solution_id"`
	ActionType              string                  `json:"action_type"`
	TrainID                 string                  `json:"train_id"`
	DurationMins            int                     `json:"duration_mins,omitempty"`
	RouteIndex              int                     `json:"route_index,omitempty"`
	SpeedFactor             float64                 `json:"speed_factor,omitempty"`
	Description             string                  `json:"description"`
	EnvironmentalAdjustment EnvironmentalAdjustment `json:"environmental_adjustment"`
	AlternativeRoute        *AlternativeRouteSummary `json:"alternative_route,omitempty"`
	AdditionalTimeMinutes   float64                  `json:"additional_time_minutes,omitempty"`
	AdditionalDistanceKM    float64                  `json:"additional_distance_km,omitempty"`
}

func isPeak(timeOfDay string) bool {
	return timeOfDay == "Morning_Peak" || timeOfDay == "Evening_Peak"
}

func environmentalAdjustment(weather, trackCondition, timeOfDay string) EnvironmentalAdjustment {
	adj := EnvironmentalAdjustment{}
	if weather == "Rain" || weather == "Fog" {
		adj.WeatherFactor = 5
	}
	if trackCondition == "Maintenance" {
		adj.TrackFactor = 10
	}
	if isPeak(timeOfDay) {
		adj.TimeFactor = -2
	}
	return adj
}

// haltDurations returns the base halt durations H(train, beta) before the
// weather/track bumps, per §4.F.
func haltDurations(trainType string, beta float64) []int {
	b := int(beta)
	switch trainType {
	case "Express":
		return []int{5, 10, b}
	case "Passenger":
		return []int{10, 15, b + 5}
	case "Goods":
		return []int{15, 20, 30, b + 10}
	default: // Local/other
		return []int{10, 15, 20}
	}
}

// Generate produces candidate actions for every affected train in a
// conflict, given required buffer beta from the conflict record.
func Generate(n *network.Network, c conflict.Conflict) []Candidate {
	var candidates []Candidate
	seq := 0

	for _, trainID := range c.AffectedTrains {
		t, ok := n.Train(trainID)
		if !ok {
			logger.Warn("solution generation skipped unknown train", "train_id", trainID)
			continue
		}

		bump := 0
		if t.Weather == "Rain" || t.Weather == "Fog" {
			bump += 5
		}
		if t.TrackCondition == "Maintenance" {
			bump += 10
		}
		adj := environmentalAdjustment(t.Weather, t.TrackCondition, t.TimeOfDay)

		for _, base := range haltDurations(t.TrainType, c.RequiredBufferMinutes) {
			seq++
			duration := base + bump
			candidates = append(candidates, Candidate{
				SolutionID:              fmt.Sprintf("SOL-%s-%03d", c.ConflictID, seq),
				ActionType:              network.ActionHalt,
				TrainID:                 trainID,
				DurationMins:            duration,
				Description:             fmt.Sprintf("Hold %s at current location for %d minutes", trainID, duration),
				EnvironmentalAdjustment: adj,
			})
		}

		if t.TrainType == "Express" && t.Priority <= 2 {
			seq++
			duration := int(c.RequiredBufferMinutes) / 2
			candidates = append(candidates, Candidate{
				SolutionID:              fmt.Sprintf("SOL-%s-%03d", c.ConflictID, seq),
				ActionType:              network.ActionSpeedAdjust,
				TrainID:                 trainID,
				DurationMins:            duration,
				SpeedFactor:             1.2,
				Description:             fmt.Sprintf("Reduce speed of %s to increase separation by %d minutes", trainID, duration),
				EnvironmentalAdjustment: adj,
			})
		}

		if t.TrainType == "Goods" || t.TrainType == "Local" || t.Priority >= 4 {
			currentTime := 0.0
			currentDistance := 0.0
			if t.CurrentRoute != nil {
				currentTime = t.CurrentRoute.TotalTimeMinutes
				currentDistance = t.CurrentRoute.TotalDistanceKM
			}
			for i, alt := range t.AlternativeRoutes {
				additional := alt.TotalTimeMinutes - currentTime
				if additional < 0 {
					additional = 0
				}
				seq++
				candidates = append(candidates, Candidate{
					SolutionID:            fmt.Sprintf("SOL-%s-%03d", c.ConflictID, seq),
					ActionType:            network.ActionReroute,
					TrainID:               trainID,
					RouteIndex:            i,
					Description:           fmt.Sprintf("Reroute %s via %s (+%.0f min)", trainID, alt.RouteType, additional),
					EnvironmentalAdjustment: adj,
					AdditionalTimeMinutes: additional,
					AdditionalDistanceKM:  alt.TotalDistanceKM - currentDistance,
					AlternativeRoute: &AlternativeRouteSummary{
						RouteIndex:       i,
						RouteType:        alt.RouteType,
						Stations:         alt.Stations,
						TotalDistanceKM:  alt.TotalDistanceKM,
						TotalTimeMinutes: alt.TotalTimeMinutes,
					},
				})
			}
		}

		if t.Priority == 5 && t.TrainType == "Goods" {
			seq++
			candidates = append(candidates, Candidate{
				SolutionID:              fmt.Sprintf("SOL-%s-%03d", c.ConflictID, seq),
				ActionType:              network.ActionCancel,
				TrainID:                 trainID,
				Description:             fmt.Sprintf("Cancel %s to relieve section congestion", trainID),
				EnvironmentalAdjustment: adj,
			})
		}
	}

	logger.Info("candidate generation complete", "conflict_id", c.ConflictID, "candidates", len(candidates))
	return candidates
}
