package api

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tirasundara/bpo-reconciliation/internal/domain"
	"github.com/tirasundara/bpo-reconciliation/internal/ingest"
	"github.com/tirasundara/bpo-reconciliation/internal/service"
)

// Importer ingests statement files
type Importer interface {
	Import(ctx context.Context, req ingest.Request) (domain.ImportResult, error)
}

// Reconciler drives the match workflow
type Reconciler interface {
	RunAutoMatch(ctx context.Context, req service.AutoMatchRequest) (domain.AutoMatchResult, error)
	ConfirmMatch(ctx context.Context, companyID, matchID, userID string) (domain.Match, error)
	RejectMatch(ctx context.Context, companyID, matchID, userID string) (domain.Match, error)
	CreateManualMatch(ctx context.Context, companyID, transactionID string, ref domain.AccountRef, userID string) (domain.Match, error)
	LinkTransactions(ctx context.Context, companyID string, links []service.LinkRequest, userID string) []service.LinkResult
	ListMatches(ctx context.Context, filter domain.MatchFilter) ([]domain.Match, error)
	Stats(ctx context.Context, companyID string) (domain.ReconciliationStats, error)
}

// Handler serves the /api/v1 routes
type Handler struct {
	importer   Importer
	reconciler Reconciler
}

// NewHandler creates a new Handler
func NewHandler(importer Importer, reconciler Reconciler) *Handler {
	return &Handler{
		importer:   importer,
		reconciler: reconciler,
	}
}

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

// Import handles POST /api/v1/imports
func (h *Handler) Import(c *gin.Context) {
	var req importRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}

	if strings.TrimSpace(req.FileBase64) == "" {
		writeError(c, fmt.Errorf("%w: fileBase64 is required", domain.ErrInvalidInput))
		return
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(req.FileBase64))
	if err != nil {
		writeError(c, fmt.Errorf("%w: fileBase64 is not valid base64", domain.ErrInvalidInput))
		return
	}

	companyID := req.CompanyID
	if companyID == "" {
		if companies := sessionFrom(c).Companies; len(companies) > 0 {
			companyID = companies[0]
		}
	}
	if _, err := authorizeCompany(c, companyID); err != nil {
		writeError(c, err)
		return
	}

	result, err := h.importer.Import(c.Request.Context(), ingest.Request{
		CompanyID: companyID,
		FileName:  req.FileName,
		Data:      data,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newImportResponse(result))
}

// RunMatching handles POST /api/v1/matching/run
func (h *Handler) RunMatching(c *gin.Context) {
	var req runMatchingRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}
	if _, err := authorizeCompany(c, req.CompanyID); err != nil {
		writeError(c, err)
		return
	}

	result, err := h.reconciler.RunAutoMatch(c.Request.Context(), service.AutoMatchRequest{
		CompanyID:     req.CompanyID,
		TransactionID: req.TransactionID,
		Threshold:     req.AutoConfirmThreshold,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, runMatchingResponse{
		Success:       true,
		TotalMatches:  result.TotalMatches,
		AutoConfirmed: result.AutoConfirmed,
		Matches:       newMatchResponses(result.Matches),
	})
}

// ListMatches handles GET /api/v1/matches
func (h *Handler) ListMatches(c *gin.Context) {
	companyID := c.Query("company_id")
	if _, err := authorizeCompany(c, companyID); err != nil {
		writeError(c, err)
		return
	}

	status := domain.MatchStatus(c.Query("status"))
	switch status {
	case "", domain.MatchSuggested, domain.MatchConfirmed, domain.MatchRejected:
	default:
		writeError(c, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status))
		return
	}

	matches, err := h.reconciler.ListMatches(c.Request.Context(), domain.MatchFilter{
		CompanyID:     companyID,
		TransactionID: c.Query("transaction_id"),
		Status:        status,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"matches": newMatchResponses(matches)})
}

// ConfirmMatch handles POST /api/v1/matches/:id/confirm
func (h *Handler) ConfirmMatch(c *gin.Context) {
	h.transition(c, h.reconciler.ConfirmMatch)
}

// RejectMatch handles POST /api/v1/matches/:id/reject
func (h *Handler) RejectMatch(c *gin.Context) {
	h.transition(c, h.reconciler.RejectMatch)
}

func (h *Handler) transition(c *gin.Context, fn func(ctx context.Context, companyID, matchID, userID string) (domain.Match, error)) {
	var req companyRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}
	session, err := authorizeCompany(c, req.CompanyID)
	if err != nil {
		writeError(c, err)
		return
	}

	m, err := fn(c.Request.Context(), req.CompanyID, c.Param("id"), session.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newMatchResponse(m))
}

func accountRef(accountType, accountID string) (domain.AccountRef, error) {
	if strings.TrimSpace(accountID) == "" {
		return domain.AccountRef{}, fmt.Errorf("%w: account_id is required", domain.ErrInvalidInput)
	}
	kind, err := domain.ParseAccountKind(accountType)
	if err != nil {
		return domain.AccountRef{}, err
	}
	return domain.AccountRef{Kind: kind, ID: accountID}, nil
}

// CreateManualMatch handles POST /api/v1/matches/manual
func (h *Handler) CreateManualMatch(c *gin.Context) {
	var req manualMatchRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}
	session, err := authorizeCompany(c, req.CompanyID)
	if err != nil {
		writeError(c, err)
		return
	}
	if strings.TrimSpace(req.TransactionID) == "" {
		writeError(c, fmt.Errorf("%w: transaction_id is required", domain.ErrInvalidInput))
		return
	}
	ref, err := accountRef(req.AccountType, req.AccountID)
	if err != nil {
		writeError(c, err)
		return
	}

	m, err := h.reconciler.CreateManualMatch(c.Request.Context(), req.CompanyID, req.TransactionID, ref, session.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newMatchResponse(m))
}

// LinkTransactions handles POST /api/v1/links
func (h *Handler) LinkTransactions(c *gin.Context) {
	var req linksRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}
	session, err := authorizeCompany(c, req.CompanyID)
	if err != nil {
		writeError(c, err)
		return
	}
	if len(req.Links) == 0 {
		writeError(c, fmt.Errorf("%w: links is empty", domain.ErrInvalidInput))
		return
	}

	results := make([]linkResultResponse, len(req.Links))
	links := make([]service.LinkRequest, 0, len(req.Links))
	positions := make([]int, 0, len(req.Links))

	for i, item := range req.Links {
		results[i] = linkResultResponse{TransactionID: item.TransactionID, AccountID: item.AccountID}

		ref, err := accountRef(item.AccountType, item.AccountID)
		if err != nil {
			msg := err.Error()
			results[i].Error = &msg
			continue
		}
		links = append(links, service.LinkRequest{TransactionID: item.TransactionID, Account: ref})
		positions = append(positions, i)
	}

	for j, r := range h.reconciler.LinkTransactions(c.Request.Context(), req.CompanyID, links, session.UserID) {
		i := positions[j]
		if r.Err != nil {
			msg := errorMessage(r.Err)
			results[i].Error = &msg
			continue
		}
		results[i].MatchID = &r.Match.ID
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// Stats handles GET /api/v1/reconciliation/stats
func (h *Handler) Stats(c *gin.Context) {
	companyID := c.Query("company_id")
	if _, err := authorizeCompany(c, companyID); err != nil {
		writeError(c, err)
		return
	}

	stats, err := h.reconciler.Stats(c.Request.Context(), companyID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newStatsResponse(stats))
}
