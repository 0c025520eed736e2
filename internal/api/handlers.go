package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/microschoolhq/finance-engine/internal/allocation"
	"github.com/microschoolhq/finance-engine/internal/checklist"
	"github.com/microschoolhq/finance-engine/internal/domain"
	"github.com/microschoolhq/finance-engine/internal/forecast"
	"github.com/microschoolhq/finance-engine/internal/reconciler"
	"github.com/microschoolhq/finance-engine/internal/service"
	"github.com/shopspring/decimal"
)

// Handler wires the engine components to the HTTP surface. Handlers stay
// thin: decode, delegate, map errors.
type Handler struct {
	Transactions *reconciler.TransactionReconciler
	Statements   *reconciler.StatementReconciler
	Checklist    *checklist.Checklist
	Forecast     *forecast.Engine
	Activity     *service.ActivityService
}

func (h *Handler) getActivityFeed(c *gin.Context) {
	feed, err := h.Activity.ActivityFeed()
	if err != nil {
		writeError(c, err)
		return
	}

	txns := make([]transactionPayload, 0, len(feed.Transactions))
	for _, txn := range feed.Transactions {
		txns = append(txns, toTransactionPayload(txn))
	}

	stmts := make([]statementPayload, 0, len(feed.Statements))
	for _, stmt := range feed.Statements {
		stmts = append(stmts, toStatementPayload(stmt))
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": txns,
		"statements":   stmts,
		"summary":      toSummaryPayload(feed.Summary),
	})
}

func (h *Handler) splitTransaction(c *gin.Context) {
	var req struct {
		Allocations []allocationPayload `json:"allocations"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inputs := make([]allocation.Input, 0, len(req.Allocations))
	for _, a := range req.Allocations {
		inputs = append(inputs, allocation.Input{Name: a.Name, Amount: a.Amount, Tag: a.Tag})
	}

	txn, err := h.Transactions.Split(c.Param("id"), inputs)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": toTransactionPayload(txn)})
}

func (h *Handler) markCategorized(c *gin.Context) {
	var req struct {
		GLAccount string `json:"glAccount"`
	}
	// An empty body selects the default category.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	txn, err := h.Transactions.MarkCategorized(c.Param("id"), req.GLAccount)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": toTransactionPayload(txn)})
}

func (h *Handler) markInstitutionalFunding(c *gin.Context) {
	txn, err := h.Transactions.MarkInstitutionalFunding(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": toTransactionPayload(txn)})
}

func (h *Handler) applySuggestions(c *gin.Context) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.Transactions.ApplySuggestionsBulk(req.IDs)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updatedCount": updated})
}

func (h *Handler) attachReceipt(c *gin.Context) {
	txn, err := h.Transactions.AttachReceipt(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": toTransactionPayload(txn)})
}

func (h *Handler) reconcileTransaction(c *gin.Context) {
	txn, err := h.Transactions.Reconcile(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": toTransactionPayload(txn)})
}

func (h *Handler) updateStatementLine(c *gin.Context) {
	var req struct {
		Status          *string `json:"status"`
		CostCenter      *string `json:"costCenter"`
		Note            *string `json:"note"`
		ReceiptAttached *bool   `json:"receiptAttached"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := reconciler.LineUpdate{
		Note:            req.Note,
		ReceiptAttached: req.ReceiptAttached,
	}
	if req.Status != nil {
		status := domain.LineStatus(*req.Status)
		update.Status = &status
	}
	if req.CostCenter != nil {
		costCenter := domain.CostCenter(*req.CostCenter)
		update.CostCenter = &costCenter
	}

	stmt, err := h.Statements.UpdateLine(c.Param("stmtId"), c.Param("lineId"), update)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"statement": toStatementPayload(stmt)})
}

func (h *Handler) updateChecklistStep(c *gin.Context) {
	var req struct {
		Done bool `json:"done"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	steps, progress, err := h.Checklist.Toggle(c.Param("stepId"), req.Done)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"checklist": toChecklistPayload(steps),
		"progress":  toProgressPayload(progress),
	})
}

func (h *Handler) getCloseReadiness(c *gin.Context) {
	readiness, err := h.Activity.CloseReadiness()
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ready": readiness.Ready,
		"blockers": gin.H{
			"openSteps":           emptyIfNil(readiness.OpenSteps),
			"pendingTransactions": emptyIfNil(readiness.PendingTransactions),
			"linesNeedingReview":  emptyIfNil(readiness.LinesNeedingReview),
		},
	})
}

func (h *Handler) getForecast(c *gin.Context) {
	summary, err := h.Forecast.Summary()
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": toForecastSummaryPayload(summary)})
}

func (h *Handler) createOpportunity(c *gin.Context) {
	opp, ok := h.bindOpportunity(c)
	if !ok {
		return
	}

	created, summary, err := h.Forecast.Create(opp)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"opportunity": toOpportunityPayload(created),
		"summary":     toForecastSummaryPayload(summary),
	})
}

func (h *Handler) updateOpportunity(c *gin.Context) {
	var req struct {
		Funder        *string `json:"funder"`
		Stage         *string `json:"stage"`
		AskAmount     *string `json:"askAmount"`
		AmountAwarded *string `json:"amountAwarded"`
		AwardType     *string `json:"awardType"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := forecast.OpportunityUpdate{Funder: req.Funder}
	if req.Stage != nil {
		stage := domain.PipelineStage(*req.Stage)
		update.Stage = &stage
	}
	if req.AwardType != nil {
		awardType := domain.AwardType(*req.AwardType)
		update.AwardType = &awardType
	}
	if req.AskAmount != nil {
		ask, ok := parseAmount(c, "askAmount", *req.AskAmount)
		if !ok {
			return
		}
		update.AskAmount = &ask
	}
	if req.AmountAwarded != nil {
		awarded, ok := parseAmount(c, "amountAwarded", *req.AmountAwarded)
		if !ok {
			return
		}
		update.AmountAwarded = &awarded
	}

	opp, summary, err := h.Forecast.Update(c.Param("id"), update)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"opportunity": toOpportunityPayload(opp),
		"summary":     toForecastSummaryPayload(summary),
	})
}

func (h *Handler) updateGoal(c *gin.Context) {
	var req struct {
		Amount string `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, ok := parseAmount(c, "amount", req.Amount)
	if !ok {
		return
	}

	summary, err := h.Forecast.UpdateGoal(amount)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": toForecastSummaryPayload(summary)})
}

func (h *Handler) bindOpportunity(c *gin.Context) (domain.FundraisingOpportunity, bool) {
	var req opportunityPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return domain.FundraisingOpportunity{}, false
	}

	opp := domain.FundraisingOpportunity{
		ID:        req.ID,
		Funder:    req.Funder,
		Stage:     domain.PipelineStage(req.Stage),
		AwardType: domain.AwardType(req.AwardType),
	}

	if req.AskAmount != "" {
		ask, ok := parseAmount(c, "askAmount", req.AskAmount)
		if !ok {
			return domain.FundraisingOpportunity{}, false
		}
		opp.AskAmount = ask
	}
	if req.AmountAwarded != "" {
		awarded, ok := parseAmount(c, "amountAwarded", req.AmountAwarded)
		if !ok {
			return domain.FundraisingOpportunity{}, false
		}
		opp.AmountAwarded = awarded
	}

	return opp, true
}

func parseAmount(c *gin.Context, field, raw string) (decimal.Decimal, bool) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		writeError(c, &domain.InvalidInputError{Field: field, Reason: "not a valid amount"})
		return decimal.Decimal{}, false
	}
	return amount, true
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// writeError maps domain errors onto HTTP responses. Every failure body
// carries enough detail to render an actionable message.
func writeError(c *gin.Context, err error) {
	var mismatch *domain.AllocationMismatchError
	if errors.As(err, &mismatch) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":    "allocation_mismatch",
			"expected": mismatch.Expected.String(),
			"actual":   mismatch.Actual.String(),
		})
		return
	}

	var notReady *domain.NotReadyError
	if errors.As(err, &notReady) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "not_ready_for_reconciliation",
			"status": string(notReady.Status),
		})
		return
	}

	var invalid *domain.InvalidInputError
	if errors.As(err, &invalid) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "invalid_input",
			"field":  invalid.Field,
			"reason": invalid.Reason,
		})
		return
	}

	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "detail": err.Error()})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "detail": err.Error()})
}
