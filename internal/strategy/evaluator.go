package strategy

import (
	"time"

	"github.com/InfinixInfotech/Trading-App/internal/model"
)

// MinHistory is the minimum sample count any evaluator needs. Below it
// every strategy holds with confidence 0.
const MinHistory = 20

// Execution gates on the 0-100 confidence scale. The two evaluation
// styles keep their own thresholds; callers must pick via GateFor.
const (
	RuleGate = 70
	VoteGate = 60
)

// MarketView is the per-evaluation snapshot handed to an evaluator:
// chronological prices/volumes (latest quote already appended), the
// latest price and its timestamp.
type MarketView struct {
	Prices  []float64
	Volumes []int64
	Price   float64
	At      time.Time
}

// Evaluator turns a strategy config plus a market view into exactly one
// signal. Implementations are pure: same inputs, same signal.
type Evaluator interface {
	Evaluate(cfg StrategyConfig, view MarketView) model.Signal
}

// EvaluatorFor selects the evaluation style for a strategy instance.
// The two styles stay separate; their thresholds differ materially.
func EvaluatorFor(t StrategyType) Evaluator {
	if t == TypeIndicatorVote {
		return VoteEvaluator{}
	}
	return RuleEvaluator{}
}

// GateFor returns the minimum confidence required to execute a signal
// produced for the given strategy type.
func GateFor(t StrategyType) float64 {
	if t == TypeIndicatorVote {
		return VoteGate
	}
	return RuleGate
}

// hold builds the neutral signal used whenever no rule fires or history
// is too short.
func hold(cfg StrategyConfig, view MarketView, reason string) model.Signal {
	sig := model.Signal{
		StrategyID: cfg.ID,
		Strategy:   cfg.Name,
		Symbol:     cfg.Symbol,
		Action:     model.ActionHold,
		Confidence: 0,
		Price:      view.Price,
		At:         view.At,
	}
	if reason != "" {
		sig.Conditions = []string{reason}
	}
	return sig
}
