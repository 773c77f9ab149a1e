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

// Package conflict projects train arrivals and flags section-capacity
// violations: pairs of trains converging on the same destination too close
// together given a dynamic safety buffer.
package conflict

import (
	"fmt"
	"math"
	"sort"
	"time"

	log "gopkg.in/inconshreveable/log15.v2"

	"github.com/tracktitans/railcore/internal/network"
)

var logger log.Logger = log.New("module", "conflict")

// InitializeLogger rebinds the package logger under a parent logger.
func InitializeLogger(parent log.Logger) {
	logger = parent.New("module", "conflict")
}

// Severity is the ranked urgency of a detected conflict.
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

// TrainDetail is the subset of a train's projection carried on a conflict
// record for explainability.
type TrainDetail struct {
	TrainID        string    `json:"train_id"`
	TrainType      string    `json:"train_type"`
	Priority       int       `json:"priority"`
	ETA            time.Time `json:"eta"`
	Weather        string    `json:"weather"`
	TrackCondition string    `json:"track_condition"`
	TimeOfDay      string    `json:"time_of_day"`
}

// Conflict is one detected section-capacity violation between two trains
// converging on the same destination.
type Conflict struct {
	ConflictID             string                 `json:"conflict_id"`
	Type                   string                 `json:"type"`
	Location               string                 `json:"location"`
	AffectedTrains         []string               `json:"affected_trains"`
	TrainDetails           []TrainDetail          `json:"train_details"`
	TimeGapMinutes         float64                `json:"time_gap_minutes"`
	RequiredBufferMinutes  float64                `json:"required_buffer_minutes"`
	Severity               Severity               `json:"severity"`
	EnvironmentalFactors   map[string]interface{} `json:"environmental_factors"`
	Details                string                 `json:"details"`
}

// Options configures a detection run. ProjectionHorizon is advisory: ETAs
// that land more than ProjectionHorizonMins after the earliest ETA in the
// batch are skipped, per the horizon's treatment as a filter rather than a
// hard scheduling constraint. Now is carried for callers that want to log or
// reason about the reporting clock; detection itself anchors the horizon to
// the projected arrivals, not to Now, since the two can be arbitrarily far
// apart (a report filed hours before a scheduled arrival is routine).
type Options struct {
	ProjectionHorizonMins int
	Now                   time.Time
}

// DefaultOptions returns the default 60-minute projection horizon with Now
// set to the given instant. Detect anchors the horizon to the earliest ETA,
// not to Now.
func DefaultOptions(now time.Time) Options {
	return Options{ProjectionHorizonMins: 60, Now: now}
}

// Detect runs the conflict-detection algorithm over a network's current ETA
// projections and returns every section-capacity conflict found, ordered by
// destination then by ETA within the pair. Requires at least two ETA
// records; fewer yields an empty result.
func Detect(n *network.Network, opts Options) []Conflict {
	records := n.GetAllTrainETAs()
	if len(records) < 2 {
		return nil
	}

	if opts.ProjectionHorizonMins > 0 {
		basis := earliestETA(records)
		horizon := basis.Add(time.Duration(opts.ProjectionHorizonMins) * time.Minute)
		filtered := records[:0]
		for _, r := range records {
			if !r.ETA.After(horizon) {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}

	byDestination := make(map[string][]network.ETARecord)
	for _, r := range records {
		byDestination[r.Destination] = append(byDestination[r.Destination], r)
	}

	destinations := make([]string, 0, len(byDestination))
	for dest := range byDestination {
		destinations = append(destinations, dest)
	}
	sort.Strings(destinations)

	var conflicts []Conflict
	seq := 0
	for _, dest := range destinations {
		group := byDestination[dest]
		sort.SliceStable(group, func(i, j int) bool { return group[i].ETA.Before(group[j].ETA) })
		for i := 0; i+1 < len(group); i++ {
			a, b := group[i], group[i+1]
			buffer := requiredBuffer(a, b)
			gap := b.ETA.Sub(a.ETA).Minutes()
			if gap >= buffer {
				continue
			}
			seq++
			conflicts = append(conflicts, buildConflict(seq, dest, a, b, gap, buffer))
		}
	}

	logger.Info("conflict detection complete", "candidates", len(records), "conflicts", len(conflicts))
	return conflicts
}

func requiredBuffer(a, b network.ETARecord) float64 {
	buffer := 10.0
	switch {
	case a.TrainType == "Express" && b.TrainType == "Express":
		buffer = 8
	case a.TrainType == "Goods" || b.TrainType == "Goods":
		buffer = 20
	}
	if hasAdverseWeather(a) || hasAdverseWeather(b) {
		buffer += 5
	}
	if a.TrackCondition == "Maintenance" || b.TrackCondition == "Maintenance" {
		buffer += 10
	}
	return buffer
}

func hasAdverseWeather(r network.ETARecord) bool {
	return r.Weather == "Rain" || r.Weather == "Fog"
}

// earliestETA returns the earliest projected arrival in a batch of records,
// used as the anchor for horizon filtering so that enforcement bounds the
// spread of arrivals under comparison rather than their distance from the
// moment detection happens to run.
func earliestETA(records []network.ETARecord) time.Time {
	basis := records[0].ETA
	for _, r := range records[1:] {
		if r.ETA.Before(basis) {
			basis = r.ETA
		}
	}
	return basis
}

func isPeak(timeOfDay string) bool {
	return timeOfDay == "Morning_Peak" || timeOfDay == "Evening_Peak"
}

func buildConflict(seq int, destination string, a, b network.ETARecord, gap, buffer float64) Conflict {
	severity := severityOf(a, b, gap, buffer)
	envFactors := map[string]interface{}{
		"weather_a":         a.Weather,
		"weather_b":         b.Weather,
		"track_condition_a": a.TrackCondition,
		"track_condition_b": b.TrackCondition,
	}

	return Conflict{
		ConflictID:            fmt.Sprintf("CONFLICT-%s-%03d", destination, seq),
		Type:                  "SectionCapacityConflict",
		Location:              destination,
		AffectedTrains:        []string{a.TrainID, b.TrainID},
		TrainDetails:          []TrainDetail{trainDetail(a), trainDetail(b)},
		TimeGapMinutes:        math.Round(gap*10) / 10,
		RequiredBufferMinutes: buffer,
		Severity:              severity,
		EnvironmentalFactors:  envFactors,
		Details: fmt.Sprintf("%s and %s both project arrival at %s within %.1f minutes (buffer %.0f)",
			a.TrainID, b.TrainID, destination, gap, buffer),
	}
}

func trainDetail(r network.ETARecord) TrainDetail {
	return TrainDetail{
		TrainID:        r.TrainID,
		TrainType:      r.TrainType,
		Priority:       r.Priority,
		ETA:            r.ETA,
		Weather:        r.Weather,
		TrackCondition: r.TrackCondition,
		TimeOfDay:      r.TimeOfDay,
	}
}

func severityOf(a, b network.ETARecord, gap, buffer float64) Severity {
	if gap <= 0 && buffer > 0 {
		return SeverityCritical
	}
	score := 0
	switch {
	case gap < 0.3*buffer:
		score += 3
	case gap < 0.6*buffer:
		score += 2
	default:
		score += 1
	}
	if a.Priority <= 2 || b.Priority <= 2 {
		score++
	}
	if a.Weather != "Clear" || b.Weather != "Clear" {
		score++
	}
	if a.TrackCondition == "Maintenance" || b.TrackCondition == "Maintenance" {
		score++
	}
	if isPeak(a.TimeOfDay) || isPeak(b.TimeOfDay) {
		score++
	}

	switch {
	case score >= 5:
		return SeverityCritical
	case score >= 3:
		return SeverityHigh
	case score >= 2:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
