package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Aashish23092/statement-parser/dto"
	"github.com/Aashish23092/statement-parser/service"
	"github.com/Aashish23092/statement-parser/storage"
)

type StatementHandler struct {
	statementService *service.StatementService
	log              zerolog.Logger
}

func NewStatementHandler(statementService *service.StatementService, log zerolog.Logger) *StatementHandler {
	return &StatementHandler{statementService: statementService, log: log}
}

// Upload handles POST /api/v1/statements. The multipart form carries the PDF
// plus optional issuer hint and password; ?format=csv|pretty switches the
// response body away from JSON.
func (h *StatementHandler) Upload(c *gin.Context) {
	var req dto.UploadStatementRequest
	if err := c.ShouldBind(&req); err != nil {
		sendError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, dto.ErrUnsupportedFileType) {
			status = http.StatusUnsupportedMediaType
		}
		sendError(c, status, "INVALID_UPLOAD", err.Error())
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		sendError(c, http.StatusUnauthorized, "UNAUTHORIZED", "no authenticated user")
		return
	}

	stmt, err := h.statementService.ParseUpload(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleParseError(c, err)
		return
	}

	if format := c.Query("format"); format != "" && format != service.FormatJSON {
		body, contentType, err := service.Render(stmt.Record, format)
		if err != nil {
			sendError(c, http.StatusBadRequest, "INVALID_FORMAT", err.Error())
			return
		}
		c.Data(http.StatusOK, contentType, body)
		return
	}

	c.JSON(http.StatusOK, dto.ParseResponse{
		Statement:    toStatementResponse(stmt),
		Transactions: stmt.Record.Transactions,
	})
}

// List handles GET /api/v1/statements
func (h *StatementHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		sendError(c, http.StatusUnauthorized, "UNAUTHORIZED", "no authenticated user")
		return
	}

	stmts, err := h.statementService.List(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list statements")
		sendError(c, http.StatusInternalServerError, "LIST_FAILED", "could not list statements")
		return
	}

	out := make([]dto.StatementResponse, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, toStatementResponse(s))
	}
	c.JSON(http.StatusOK, out)
}

// Get handles GET /api/v1/statements/:id
func (h *StatementHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		sendError(c, http.StatusUnauthorized, "UNAUTHORIZED", "no authenticated user")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		sendError(c, http.StatusBadRequest, "INVALID_ID", "statement id must be numeric")
		return
	}

	stmt, err := h.statementService.Get(c.Request.Context(), userID, id)
	if errors.Is(err, storage.ErrNotFound) {
		sendError(c, http.StatusNotFound, "NOT_FOUND", "statement not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("failed to load statement")
		sendError(c, http.StatusInternalServerError, "GET_FAILED", "could not load statement")
		return
	}

	c.JSON(http.StatusOK, dto.ParseResponse{
		Statement:    toStatementResponse(stmt),
		Transactions: stmt.Record.Transactions,
	})
}

// handleParseError maps pipeline failures to status codes: unreadable input
// is the client's problem, an unresolved issuer or a parser fault means the
// document could not be processed.
func (h *StatementHandler) handleParseError(c *gin.Context, err error) {
	var failure *dto.ExtractionFailure
	if errors.As(err, &failure) {
		switch failure.Kind {
		case dto.FailureSourceRead:
			sendError(c, http.StatusBadRequest, "UNREADABLE_STATEMENT", failure.Message)
		case dto.FailureIssuerUnresolved:
			sendError(c, http.StatusUnprocessableEntity, "ISSUER_UNRESOLVED", failure.Message)
		default:
			sendError(c, http.StatusUnprocessableEntity, "EXTRACTION_FAILED", failure.Message)
		}
		return
	}
	h.log.Error().Err(err).Msg("statement upload failed")
	sendError(c, http.StatusInternalServerError, "UPLOAD_FAILED", "could not process statement")
}

func toStatementResponse(stmt *storage.Statement) dto.StatementResponse {
	return dto.StatementResponse{
		ID:             stmt.ID,
		Issuer:         stmt.Record.Issuer,
		CardVariant:    stmt.Record.CardVariant,
		CardLast4:      stmt.Record.CardLast4,
		BillingCycle:   stmt.Record.BillingCycle,
		PaymentDueDate: stmt.Record.PaymentDueDate,
		TotalAmountDue: stmt.Record.TotalAmountDue,
		ParsedAt:       stmt.Record.ParsedAt,
		PDFPath:        stmt.PDFPath,
		CreatedAt:      stmt.CreatedAt,
	}
}
