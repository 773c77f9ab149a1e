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

// Package strategy scores solution candidates under a named weight profile,
// selects the best, and generates human-readable benefits/drawbacks text.
package strategy

import (
	"fmt"
	"math"

	log "gopkg.in/inconshreveable/log15.v2"

	"github.com/tracktitans/railcore/internal/network"
	"github.com/tracktitans/railcore/internal/solution"
)

var logger log.Logger = log.New("module", "strategy")

// InitializeLogger rebinds the package logger under a parent logger.
func InitializeLogger(parent log.Logger) {
	logger = parent.New("module", "strategy")
}

// Profile is a named weight vector trading off passenger punctuality against
// freight throughput.
type Profile struct {
	Name              string
	Description       string
	ExpressPriority   float64
	PassengerPriority float64
	GoodsPriority     float64
	HaltPenalty       float64
	ReroutePenalty    float64
	CancelPenalty     float64
	PeakHour          float64
}

// The three built-in profiles, per the scorer's weight table.
var (
	Balanced = Profile{
		Name: "Balanced", Description: "Balances punctuality and throughput with neutral weighting.",
		ExpressPriority: 1.0, PassengerPriority: 1.0, GoodsPriority: 1.0,
		HaltPenalty: 1.0, ReroutePenalty: 1.0, CancelPenalty: 1.0, PeakHour: 1.0,
	}
	Punctuality = Profile{
		Name: "Punctuality", Description: "Prioritises passenger on-time performance over freight throughput.",
		ExpressPriority: 0.6, PassengerPriority: 0.7, GoodsPriority: 1.5,
		HaltPenalty: 1.3, ReroutePenalty: 0.8, CancelPenalty: 0.9, PeakHour: 0.5,
	}
	Throughput = Profile{
		Name: "Throughput", Description: "Maximises overall network flow, tolerating individual delay.",
		ExpressPriority: 1.3, PassengerPriority: 1.2, GoodsPriority: 0.5,
		HaltPenalty: 0.8, ReroutePenalty: 1.1, CancelPenalty: 1.0, PeakHour: 1.2,
	}
)

// All lists the built-in profiles in the order multi-strategy runs evaluate
// them.
func All() []Profile { return []Profile{Balanced, Punctuality, Throughput} }

var baseActionCost = map[string]float64{
	network.ActionHalt:        1,
	network.ActionSpeedAdjust: 0.5,
	network.ActionReroute:     5,
	network.ActionCancel:      50,
}

var priorityBase = map[int]float64{1: 100, 2: 80, 3: 50, 4: 20, 5: 5}

var durationTypeMultiplier = map[string]float64{
	"Express":   2.0,
	"Passenger": 1.0,
	"Local":     0.6,
	"Goods":     0.4,
}

// Scored pairs a candidate with its computed score under a profile.
type Scored struct {
	Candidate solution.Candidate
	Score     float64
}

func actionPenalty(p Profile, actionType string) float64 {
	switch actionType {
	case network.ActionHalt:
		return p.HaltPenalty
	case network.ActionReroute:
		return p.ReroutePenalty
	case network.ActionCancel:
		return p.CancelPenalty
	default: // SpeedAdjust carries no dedicated penalty weight
		return 1.0
	}
}

func trainTypeMultiplier(p Profile, trainType string) float64 {
	switch trainType {
	case "Express":
		return p.ExpressPriority
	case "Goods":
		return p.GoodsPriority
	default: // Passenger, Local and anything else use the passenger weight
		return p.PassengerPriority
	}
}

func rerouteAddon(p Profile, c solution.Candidate, trainType string) float64 {
	if c.ActionType != network.ActionReroute || c.AlternativeRoute == nil {
		return 0
	}
	alt := c.AlternativeRoute
	addon := 2*math.Max(0, float64(len(alt.Stations)-3)) + 0.5*math.Max(0, c.AdditionalDistanceKM)
	switch trainType {
	case "Express":
		addon *= 1.5
	case "Goods":
		addon *= 0.7
	}
	return addon
}

// Score computes the candidate's score under a profile; lower is better.
func Score(p Profile, c solution.Candidate, trainType string, priority int, peak bool) float64 {
	c0 := baseActionCost[c.ActionType]
	actionMult := actionPenalty(p, c.ActionType)

	durationBase := float64(c.DurationMins) * 0.5
	typeMult, ok := durationTypeMultiplier[trainType]
	if !ok {
		typeMult = 1.0
	}
	duration := durationBase * typeMult
	if peak {
		duration *= 1.5
	}

	priorityBaseVal, ok := priorityBase[priority]
	if !ok {
		priorityBaseVal = 50
	}
	p_ := priorityBaseVal * trainTypeMultiplier(p, trainType)

	peakMult := 1.0
	if peak {
		peakMult = p.PeakHour
	}

	addon := rerouteAddon(p, c, trainType)

	raw := (c0*actionMult + duration + c.EnvironmentalAdjustment.WeatherFactor + c.EnvironmentalAdjustment.TrackFactor + addon + c.EnvironmentalAdjustment.TimeFactor) * p_ * peakMult
	return math.Round(raw*100) / 100
}

// Confidence is the qualitative trust level assigned to a recommendation.
type Confidence string

const (
	ConfidenceLow    Confidence = "Low"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceHigh   Confidence = "High"
)

// confidenceFromGap derives confidence from the score gap between the best
// and second-best candidates.
func confidenceFromGap(scored []Scored) Confidence {
	if len(scored) <= 1 {
		return ConfidenceMedium
	}
	gap := scored[1].Score - scored[0].Score
	switch {
	case gap > 50:
		return ConfidenceHigh
	case gap > 20:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Recommendation is the winning candidate under a profile, with its score
// and confidence.
type Recommendation struct {
	RecommendationID  string     `json:"recommendation_id"`
	Action            solution.Candidate `json:"action"`
	Score             float64    `json:"score"`
	Confidence        Confidence `json:"confidence"`
	RecommendationText string    `json:"recommendation_text"`
	Reasoning         string     `json:"reasoning"`
}

// BenefitsDrawbacks is the explanatory text attached to a recommendation.
type BenefitsDrawbacks struct {
	Benefits  []string `json:"benefits"`
	Drawbacks []string `json:"drawbacks"`
}

// Status values surfaced on a per-strategy evaluation result.
const (
	StatusRecommendation = "Recommendation"
	StatusNoSolution     = "NoSolution"
	StatusNoConflict     = "NoConflict"
)

// Result is the complete per-strategy output: status, the conflict that
// triggered it, the winning recommendation (if any), and its rationale.
type Result struct {
	Status              string             `json:"status"`
	Strategy            string             `json:"strategy"`
	StrategyName        string             `json:"strategy_name"`
	StrategyDescription string             `json:"strategy_description"`
	ConflictInfo        interface{}        `json:"conflict_info,omitempty"`
	Recommendation      *Recommendation    `json:"recommendation,omitempty"`
	TotalConflicts      int                `json:"total_conflicts"`
	BenefitsDrawbacks   *BenefitsDrawbacks `json:"benefits_drawbacks,omitempty"`
}

// trainContext is the per-candidate train attributes needed for scoring,
// looked up once per Evaluate call rather than per candidate.
type trainContext struct {
	trainType string
	priority  int
	peak      bool
}

// Evaluate scores every candidate under the profile and returns the full
// per-strategy result. candidates and totalConflicts come from the caller's
// conflict-detection and solution-generation passes; conflictInfo is carried
// through opaquely for the caller's own serialisation needs.
func Evaluate(p Profile, n *network.Network, candidates []solution.Candidate, conflictInfo interface{}, totalConflicts int) Result {
	if totalConflicts == 0 {
		return Result{Status: StatusNoConflict, Strategy: p.Name, StrategyName: p.Name, StrategyDescription: p.Description, TotalConflicts: 0}
	}
	if len(candidates) == 0 {
		return Result{Status: StatusNoSolution, Strategy: p.Name, StrategyName: p.Name, StrategyDescription: p.Description, ConflictInfo: conflictInfo, TotalConflicts: totalConflicts}
	}

	scored := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		ctx := contextFor(n, c.TrainID)
		s := Score(p, c, ctx.trainType, ctx.priority, ctx.peak)
		scored = append(scored, Scored{Candidate: c, Score: s})
	}

	sortScoredAscending(scored)

	best := scored[0]
	confidence := confidenceFromGap(scored)
	bd := benefitsDrawbacks(p, best.Candidate)

	rec := &Recommendation{
		RecommendationID:   fmt.Sprintf("REC-%s-%s", p.Name, best.Candidate.SolutionID),
		Action:             best.Candidate,
		Score:              best.Score,
		Confidence:         confidence,
		RecommendationText: recommendationText(best.Candidate),
		Reasoning:          fmt.Sprintf("Lowest score (%.2f) under the %s profile among %d candidates", best.Score, p.Name, len(scored)),
	}

	logger.Info("strategy evaluation complete", "strategy", p.Name, "winner", best.Candidate.SolutionID, "score", best.Score, "confidence", confidence)

	return Result{
		Status:              StatusRecommendation,
		Strategy:            p.Name,
		StrategyName:        p.Name,
		StrategyDescription: p.Description,
		ConflictInfo:        conflictInfo,
		Recommendation:      rec,
		TotalConflicts:      totalConflicts,
		BenefitsDrawbacks:   &bd,
	}
}

func contextFor(n *network.Network, trainID string) trainContext {
	t, ok := n.Train(trainID)
	if !ok {
		return trainContext{trainType: "Passenger", priority: 3, peak: false}
	}
	return trainContext{trainType: t.TrainType, priority: t.Priority, peak: isPeak(t.TimeOfDay)}
}

func isPeak(timeOfDay string) bool {
	return timeOfDay == "Morning_Peak" || timeOfDay == "Evening_Peak"
}

func sortScoredAscending(scored []Scored) {
	for i := 1; i < len(scored); i++ {
		for j := i; j > 0 && scored[j].Score < scored[j-1].Score; j-- {
			scored[j], scored[j-1] = scored[j-1], scored[j]
		}
	}
}

func recommendationText(c solution.Candidate) string {
	switch c.ActionType {
	case network.ActionHalt:
		return fmt.Sprintf("Halt %s for %d minutes", c.TrainID, c.DurationMins)
	case network.ActionSpeedAdjust:
		return fmt.Sprintf("Adjust speed of %s (factor %.2f)", c.TrainID, c.SpeedFactor)
	case network.ActionReroute:
		return fmt.Sprintf("Reroute %s via alternative %d", c.TrainID, c.RouteIndex)
	case network.ActionCancel:
		return fmt.Sprintf("Cancel %s", c.TrainID)
	default:
		return fmt.Sprintf("Apply %s to %s", c.ActionType, c.TrainID)
	}
}

func benefitsDrawbacks(p Profile, c solution.Candidate) BenefitsDrawbacks {
	var bd BenefitsDrawbacks

	switch p.Name {
	case Punctuality.Name:
		bd.Benefits = append(bd.Benefits, "Protects passenger on-time performance")
		bd.Drawbacks = append(bd.Drawbacks, "May increase freight transit time")
	case Throughput.Name:
		bd.Benefits = append(bd.Benefits, "Maximises overall network flow")
		bd.Drawbacks = append(bd.Drawbacks, "May increase individual passenger delay")
	}

	switch c.ActionType {
	case network.ActionHalt:
		if c.DurationMins > 30 {
			bd.Drawbacks = append(bd.Drawbacks, fmt.Sprintf("%d minute halt is a substantial delay", c.DurationMins))
		} else {
			bd.Benefits = append(bd.Benefits, "Short halt resolves the conflict with minimal disruption")
		}
	case network.ActionReroute:
		bd.Benefits = append(bd.Benefits, "Keeps the train moving rather than halted")
		bd.Drawbacks = append(bd.Drawbacks, fmt.Sprintf("Adds approximately %.0f minutes over the primary route", c.AdditionalTimeMinutes))
	case network.ActionCancel:
		bd.Drawbacks = append(bd.Drawbacks,
			"Requires rebooking or rerouting of freight cargo",
			"May affect customer reputation for reliability")
	case network.ActionSpeedAdjust:
		bd.Benefits = append(bd.Benefits, "Resolves the conflict without halting or cancelling the train")
	}

	return bd
}
