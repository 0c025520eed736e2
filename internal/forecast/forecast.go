package forecast

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/microschoolhq/finance-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// stageWeights holds the probability-of-closing multiplier per pipeline
// stage. The table is fixed; an unknown stage weighs zero.
var stageWeights = map[domain.PipelineStage]decimal.Decimal{
	domain.StageResearch:   decimal.NewFromFloat(0.05),
	domain.StageQualify:    decimal.NewFromFloat(0.15),
	domain.StageLOI:        decimal.NewFromFloat(0.25),
	domain.StageInvited:    decimal.NewFromFloat(0.50),
	domain.StageInProgress: decimal.NewFromFloat(0.65),
	domain.StageSubmitted:  decimal.NewFromFloat(0.75),
	domain.StageAwarded:    decimal.NewFromInt(1),
	domain.StageClosedWon:  decimal.NewFromInt(1),
	domain.StageDeclined:   decimal.Zero,
	domain.StageClosedLost: decimal.Zero,
	domain.StageReported:   decimal.NewFromInt(1),
}

// StageWeight returns the forecast weight for a stage
func StageWeight(stage domain.PipelineStage) decimal.Decimal {
	if w, ok := stageWeights[stage]; ok {
		return w
	}
	return decimal.Zero
}

// Summary is the aggregate fundraising report for the pipeline
type Summary struct {
	Goal                decimal.Decimal
	PipelineTotal       decimal.Decimal // open asks, closed stages excluded
	WeightedForecast    decimal.Decimal
	SecuredRestricted   decimal.Decimal
	SecuredUnrestricted decimal.Decimal
	WinRate             int // percent; zero with no closed deals
}

// OpportunityUpdate carries optional changes to an opportunity
type OpportunityUpdate struct {
	Funder        *string
	Stage         *domain.PipelineStage
	AskAmount     *decimal.Decimal
	AmountAwarded *decimal.Decimal
	AwardType     *domain.AwardType
}

// Engine computes the weighted pipeline forecast. Every Summary is a full
// reduction over the stored opportunities; nothing is cached, so a partial
// update can never leave the totals drifted.
type Engine struct {
	store domain.OpportunityStore
}

// NewEngine creates a new forecast Engine
func NewEngine(store domain.OpportunityStore) *Engine {
	return &Engine{store: store}
}

// Summary recomputes the aggregate report from scratch
func (e *Engine) Summary() (Summary, error) {
	opps, err := e.store.ListOpportunities()
	if err != nil {
		return Summary{}, fmt.Errorf("listing opportunities: %w", err)
	}

	goal, err := e.store.Goal()
	if err != nil {
		return Summary{}, fmt.Errorf("fetching goal: %w", err)
	}

	summary := Summary{
		Goal:                goal,
		PipelineTotal:       decimal.Zero,
		WeightedForecast:    decimal.Zero,
		SecuredRestricted:   decimal.Zero,
		SecuredUnrestricted: decimal.Zero,
	}

	wonCount, closedCount := 0, 0

	for _, opp := range opps {
		summary.WeightedForecast = summary.WeightedForecast.Add(opp.AskAmount.Mul(StageWeight(opp.Stage)))

		if !opp.Stage.IsClosed() {
			summary.PipelineTotal = summary.PipelineTotal.Add(opp.AskAmount)
			continue
		}

		closedCount++
		if opp.Stage.IsWon() {
			wonCount++
			if opp.AwardType == domain.AwardRestricted {
				summary.SecuredRestricted = summary.SecuredRestricted.Add(opp.AmountAwarded)
			} else {
				summary.SecuredUnrestricted = summary.SecuredUnrestricted.Add(opp.AmountAwarded)
			}
		}
	}

	if closedCount > 0 {
		summary.WinRate = int(math.Round(float64(wonCount) / float64(closedCount) * 100))
	}

	return summary, nil
}

// Create validates and stores a new opportunity, generating an id when the
// caller supplies none, and returns it with the recomputed summary
func (e *Engine) Create(opp domain.FundraisingOpportunity) (domain.FundraisingOpportunity, Summary, error) {
	if opp.ID == "" {
		opp.ID = uuid.NewString()
	}
	if opp.AwardType == "" {
		opp.AwardType = domain.AwardUnrestricted
	}

	if err := validate(opp); err != nil {
		return domain.FundraisingOpportunity{}, Summary{}, err
	}

	if err := e.store.PutOpportunity(opp); err != nil {
		return domain.FundraisingOpportunity{}, Summary{}, fmt.Errorf("storing opportunity: %w", err)
	}

	summary, err := e.Summary()
	if err != nil {
		return domain.FundraisingOpportunity{}, Summary{}, err
	}

	return opp, summary, nil
}

// Update applies the changes to an existing opportunity and returns it with
// the recomputed summary. Validation failures leave the record untouched.
func (e *Engine) Update(id string, update OpportunityUpdate) (domain.FundraisingOpportunity, Summary, error) {
	opp, err := e.store.GetOpportunity(id)
	if err != nil {
		return domain.FundraisingOpportunity{}, Summary{}, err
	}

	if update.Funder != nil {
		opp.Funder = *update.Funder
	}
	if update.Stage != nil {
		opp.Stage = *update.Stage
	}
	if update.AskAmount != nil {
		opp.AskAmount = *update.AskAmount
	}
	if update.AmountAwarded != nil {
		opp.AmountAwarded = *update.AmountAwarded
	}
	if update.AwardType != nil {
		opp.AwardType = *update.AwardType
	}

	// A deal moved out of a won stage cannot keep its award.
	if !opp.Stage.IsWon() {
		opp.AmountAwarded = decimal.Zero
	}

	if err := validate(opp); err != nil {
		return domain.FundraisingOpportunity{}, Summary{}, err
	}

	if err := e.store.PutOpportunity(opp); err != nil {
		return domain.FundraisingOpportunity{}, Summary{}, fmt.Errorf("storing opportunity: %w", err)
	}

	summary, err := e.Summary()
	if err != nil {
		return domain.FundraisingOpportunity{}, Summary{}, err
	}

	return opp, summary, nil
}

// UpdateGoal replaces the fundraising goal and returns the recomputed summary
func (e *Engine) UpdateGoal(amount decimal.Decimal) (Summary, error) {
	if amount.IsNegative() {
		return Summary{}, &domain.InvalidInputError{Field: "goal", Reason: "goal cannot be negative"}
	}

	if err := e.store.SetGoal(amount); err != nil {
		return Summary{}, fmt.Errorf("storing goal: %w", err)
	}

	return e.Summary()
}

func validate(opp domain.FundraisingOpportunity) error {
	if !domain.ValidPipelineStage(opp.Stage) {
		return &domain.InvalidInputError{Field: "stage", Reason: fmt.Sprintf("unknown stage %q", opp.Stage)}
	}
	if !domain.ValidAwardType(opp.AwardType) {
		return &domain.InvalidInputError{Field: "awardType", Reason: fmt.Sprintf("unknown award type %q", opp.AwardType)}
	}
	if opp.AskAmount.IsNegative() {
		return &domain.InvalidInputError{Field: "askAmount", Reason: "ask amount cannot be negative"}
	}
	if opp.AmountAwarded.IsNegative() {
		return &domain.InvalidInputError{Field: "amountAwarded", Reason: "awarded amount cannot be negative"}
	}
	if !opp.AmountAwarded.IsZero() && !opp.Stage.IsWon() {
		return &domain.InvalidInputError{Field: "amountAwarded", Reason: fmt.Sprintf("awarded amount requires a closed-won stage, not %q", opp.Stage)}
	}
	return nil
}
