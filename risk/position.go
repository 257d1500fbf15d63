package risk

import (
	"errors"
	"fmt"
	"math"

	"github.com/rustyeddy/sessionmap/market"
)

var (
	ErrInvalidStop      = errors.New("risk: stop distance must be positive")
	ErrInvalidDirection = errors.New("risk: direction must be LONG or SHORT")
)

type StopResult struct {
	StopLoss       float64
	StopLossPoints float64
}

// HybridStopLoss places the stop at the technical level unless that is
// further than MaxStopPoints away, in which case the ceiling wins.
func HybridStopLoss(p Policy, entry float64, dir market.Direction, technicalStop float64) StopResult {
	pts := abs(entry - technicalStop)
	if p.MaxStopPoints > 0 && pts > p.MaxStopPoints {
		pts = p.MaxStopPoints
	}

	stop := entry - pts
	if dir == market.Short {
		stop = entry + pts
	}
	return StopResult{StopLoss: stop, StopLossPoints: pts}
}

type SizeResult struct {
	PositionSize int
	RiskAmount   float64 // actual risk at PositionSize
}

// PositionSize floors the risk budget to whole contracts, never fewer than
// one. At the floor RiskAmount can exceed the budget.
func PositionSize(p Policy, stopLossPoints float64) (SizeResult, error) {
	if stopLossPoints <= 0 || math.IsNaN(stopLossPoints) || math.IsInf(stopLossPoints, 0) {
		return SizeResult{}, fmt.Errorf("%w: got %v", ErrInvalidStop, stopLossPoints)
	}
	riskPerUnit := stopLossPoints * p.PointValue
	if riskPerUnit <= 0 {
		return SizeResult{}, fmt.Errorf("%w: point value %v", ErrInvalidStop, p.PointValue)
	}

	size := int(math.Floor(p.MaxRisk() / riskPerUnit))
	if size < 1 {
		size = 1
	}
	return SizeResult{
		PositionSize: size,
		RiskAmount:   PlannedRisk(size, stopLossPoints, p.PointValue),
	}, nil
}

// Sizing is a Setup with every policy-derived field filled in.
type Sizing struct {
	Entry            float64
	Direction        market.Direction
	TechnicalStop    float64
	StopLoss         float64
	StopLossPoints   float64
	TakeProfit       float64
	TakeProfitPoints float64
	RiskRewardRatio  float64
	PositionSize     int
	RiskAmount       float64
	PotentialProfit  float64
}

// SizeSetup applies HybridStopLoss then PositionSize and derives the reward
// side.
func SizeSetup(p Policy, s Setup) (Sizing, error) {
	if s.Direction != market.Long && s.Direction != market.Short {
		return Sizing{}, fmt.Errorf("%w: got %q", ErrInvalidDirection, s.Direction)
	}

	stop := HybridStopLoss(p, s.Entry, s.Direction, s.TechnicalStop)
	size, err := PositionSize(p, stop.StopLossPoints)
	if err != nil {
		return Sizing{}, err
	}

	tpPts := abs(s.TakeProfit - s.Entry)
	return Sizing{
		Entry:            s.Entry,
		Direction:        s.Direction,
		TechnicalStop:    s.TechnicalStop,
		StopLoss:         stop.StopLoss,
		StopLossPoints:   stop.StopLossPoints,
		TakeProfit:       s.TakeProfit,
		TakeProfitPoints: tpPts,
		RiskRewardRatio:  tpPts / stop.StopLossPoints,
		PositionSize:     size.PositionSize,
		RiskAmount:       size.RiskAmount,
		PotentialProfit:  tpPts * p.PointValue * float64(size.PositionSize),
	}, nil
}
