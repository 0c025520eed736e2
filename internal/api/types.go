package api

import (
	"github.com/microschoolhq/finance-engine/internal/checklist"
	"github.com/microschoolhq/finance-engine/internal/domain"
	"github.com/microschoolhq/finance-engine/internal/forecast"
	"github.com/microschoolhq/finance-engine/internal/service"
)

const dateFormat = "2006-01-02"

// Wire representations. Amounts travel as decimal strings so no client ever
// re-parses floats.

type allocationPayload struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Tag    string `json:"tag,omitempty"`
}

type transactionPayload struct {
	ID               string              `json:"id"`
	Date             string              `json:"date"`
	Amount           string              `json:"amount"`
	Direction        string              `json:"direction"`
	Account          string              `json:"account"`
	Description      string              `json:"description"`
	Reference        string              `json:"reference,omitempty"`
	GLAccount        string              `json:"glAccount,omitempty"`
	ProgramCode      string              `json:"programCode,omitempty"`
	DescriptionNote  string              `json:"descriptionNote,omitempty"`
	ReceiptAttached  bool                `json:"receiptAttached"`
	RequiresSplit    bool                `json:"requiresSplit"`
	SplitAllocations []allocationPayload `json:"splitAllocations,omitempty"`
	AllocationType   string              `json:"allocationType,omitempty"`
	Status           string              `json:"status"`
	Reconciled       bool                `json:"reconciled"`
}

type statementLinePayload struct {
	ID              string `json:"id"`
	StatementID     string `json:"statementId"`
	Date            string `json:"date"`
	Description     string `json:"description"`
	Amount          string `json:"amount"`
	CostCenter      string `json:"costCenter,omitempty"`
	Note            string `json:"note,omitempty"`
	Status          string `json:"status"`
	ReceiptAttached bool   `json:"receiptAttached"`
}

type statementPayload struct {
	ID      string                 `json:"id"`
	Account string                 `json:"account,omitempty"`
	Period  string                 `json:"period,omitempty"`
	Lines   []statementLinePayload `json:"lines"`
}

type checklistStepPayload struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Done        bool   `json:"done"`
}

type progressPayload struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Percent   int `json:"percent"`
}

type summaryPayload struct {
	ByStatus           map[string]int `json:"byStatus"`
	Reconciled         int            `json:"reconciled"`
	TotalInbound       string         `json:"totalInbound"`
	TotalOutbound      string         `json:"totalOutbound"`
	LinesNeedingReview int            `json:"linesNeedingReview"`
}

type opportunityPayload struct {
	ID            string `json:"id"`
	Funder        string `json:"funder"`
	Stage         string `json:"stage"`
	AskAmount     string `json:"askAmount"`
	AmountAwarded string `json:"amountAwarded"`
	AwardType     string `json:"awardType"`
}

type forecastSummaryPayload struct {
	Goal                string `json:"goal"`
	PipelineTotal       string `json:"pipelineTotal"`
	WeightedForecast    string `json:"weightedForecast"`
	SecuredRestricted   string `json:"securedRestricted"`
	SecuredUnrestricted string `json:"securedUnrestricted"`
	WinRate             int    `json:"winRate"`
}

func toTransactionPayload(txn domain.Transaction) transactionPayload {
	payload := transactionPayload{
		ID:              txn.ID,
		Date:            txn.Date.Format(dateFormat),
		Amount:          txn.Amount.String(),
		Direction:       string(txn.Direction),
		Account:         txn.Account,
		Description:     txn.Description,
		Reference:       txn.Reference,
		GLAccount:       txn.GLAccount,
		ProgramCode:     txn.ProgramCode,
		DescriptionNote: txn.DescriptionNote,
		ReceiptAttached: txn.ReceiptAttached,
		RequiresSplit:   txn.RequiresSplit,
		AllocationType:  string(txn.AllocationType),
		Status:          string(txn.Status()),
		Reconciled:      txn.Reconciled,
	}

	for _, alloc := range txn.SplitAllocations {
		payload.SplitAllocations = append(payload.SplitAllocations, allocationPayload{
			Name:   alloc.Name,
			Amount: alloc.Amount.String(),
			Tag:    alloc.Tag,
		})
	}

	return payload
}

func toStatementPayload(stmt domain.Statement) statementPayload {
	payload := statementPayload{
		ID:      stmt.ID,
		Account: stmt.Account,
		Period:  stmt.Period,
		Lines:   make([]statementLinePayload, 0, len(stmt.Lines)),
	}

	for _, line := range stmt.Lines {
		payload.Lines = append(payload.Lines, statementLinePayload{
			ID:              line.ID,
			StatementID:     line.StatementID,
			Date:            line.Date.Format(dateFormat),
			Description:     line.Description,
			Amount:          line.Amount.String(),
			CostCenter:      string(line.CostCenter),
			Note:            line.Note,
			Status:          string(line.Status),
			ReceiptAttached: line.ReceiptAttached,
		})
	}

	return payload
}

func toChecklistPayload(steps []domain.ChecklistStep) []checklistStepPayload {
	payload := make([]checklistStepPayload, 0, len(steps))
	for _, step := range steps {
		payload = append(payload, checklistStepPayload{
			ID:          step.ID,
			Title:       step.Title,
			Description: step.Description,
			Done:        step.Done,
		})
	}
	return payload
}

func toProgressPayload(progress checklist.Progress) progressPayload {
	return progressPayload{
		Completed: progress.Completed,
		Total:     progress.Total,
		Percent:   progress.Percent,
	}
}

func toSummaryPayload(summary service.Summary) summaryPayload {
	byStatus := make(map[string]int, len(summary.ByStatus))
	for status, count := range summary.ByStatus {
		byStatus[string(status)] = count
	}

	return summaryPayload{
		ByStatus:           byStatus,
		Reconciled:         summary.Reconciled,
		TotalInbound:       summary.TotalInbound.String(),
		TotalOutbound:      summary.TotalOutbound.String(),
		LinesNeedingReview: summary.LinesNeedingReview,
	}
}

func toOpportunityPayload(opp domain.FundraisingOpportunity) opportunityPayload {
	return opportunityPayload{
		ID:            opp.ID,
		Funder:        opp.Funder,
		Stage:         string(opp.Stage),
		AskAmount:     opp.AskAmount.String(),
		AmountAwarded: opp.AmountAwarded.String(),
		AwardType:     string(opp.AwardType),
	}
}

func toForecastSummaryPayload(summary forecast.Summary) forecastSummaryPayload {
	return forecastSummaryPayload{
		Goal:                summary.Goal.String(),
		PipelineTotal:       summary.PipelineTotal.String(),
		WeightedForecast:    summary.WeightedForecast.String(),
		SecuredRestricted:   summary.SecuredRestricted.String(),
		SecuredUnrestricted: summary.SecuredUnrestricted.String(),
		WinRate:             summary.WinRate,
	}
}
