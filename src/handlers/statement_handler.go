// src/handlers/statement_handler.go
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/username/mpesaviz/backend/src/config"
	"github.com/username/mpesaviz/backend/src/database"
	"github.com/username/mpesaviz/backend/src/logger"
	"github.com/username/mpesaviz/backend/src/models"
	"github.com/username/mpesaviz/backend/src/services"
	"github.com/username/mpesaviz/backend/src/utils"
)

type StatementHandler struct {
	store            *database.StatementStore
	statementService services.StatementService
}

func NewStatementHandler(store *database.StatementStore, statementService services.StatementService) *StatementHandler {
	return &StatementHandler{store: store, statementService: statementService}
}

// loadStatement fetches the session statement, writing the error response
// itself when there is nothing to serve.
func (h *StatementHandler) loadStatement(w http.ResponseWriter) *models.Statement {
	statement, err := h.store.Load(config.Cfg.StatementSlot)
	if err != nil {
		logger.L.Error("Failed to load persisted statement", "error", err)
		utils.SendJSONError(w, "Failed to load statement", http.StatusInternalServerError)
		return nil
	}
	if statement == nil {
		utils.SendJSONError(w, "No statement available. Please upload a file first.", http.StatusNotFound)
		return nil
	}
	return statement
}

// writeJSONWithETag writes data with ETag revalidation, the same way the
// analytics are cached: a statement that has not changed hashes to the
// same tag and the client keeps its copy.
func writeJSONWithETag(w http.ResponseWriter, r *http.Request, data interface{}) {
	w.Header().Set("Cache-Control", "no-cache, private")

	currentETag, etagErr := utils.GenerateETag(data)
	if etagErr == nil && currentETag != "" {
		quotedETag := fmt.Sprintf("\"%s\"", currentETag)
		w.Header().Set("ETag", quotedETag)
		for _, cETag := range strings.Split(r.Header.Get("If-None-Match"), ",") {
			if strings.TrimSpace(cETag) == quotedETag {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	} else {
		logger.L.Warn("Proceeding without ETag check", "error", etagErr)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.L.Error("Error encoding JSON response", "error", err)
	}
}

// HandleGetStatement returns the full canonical statement.
func (h *StatementHandler) HandleGetStatement(w http.ResponseWriter, r *http.Request) {
	statement := h.loadStatement(w)
	if statement == nil {
		return
	}
	writeJSONWithETag(w, r, statement)
}

// HandleGetSummary returns the category summary rows only.
func (h *StatementHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	statement := h.loadStatement(w)
	if statement == nil {
		return
	}
	summaries := statement.Summaries
	if summaries == nil {
		summaries = []models.CategorySummary{}
	}
	writeJSONWithETag(w, r, map[string]interface{}{"summaries": summaries})
}

// HandleGetTransactions returns transactions, optionally filtered by a
// details substring (?q=) and direction (?type=income|expense).
func (h *StatementHandler) HandleGetTransactions(w http.ResponseWriter, r *http.Request) {
	statement := h.loadStatement(w)
	if statement == nil {
		return
	}

	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	txType := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("type")))

	filtered := make([]models.Transaction, 0, len(statement.Transactions))
	for _, tx := range statement.Transactions {
		if query != "" &&
			!strings.Contains(strings.ToLower(tx.Details), query) &&
			!strings.Contains(strings.ToLower(tx.ReceiptID), query) {
			continue
		}
		_, inbound := tx.Amount()
		if txType == "income" && !inbound {
			continue
		}
		if txType == "expense" && inbound {
			continue
		}
		filtered = append(filtered, tx)
	}

	writeJSONWithETag(w, r, map[string]interface{}{
		"transactions": filtered,
		"count":        len(filtered),
	})
}

func (h *StatementHandler) analytics(w http.ResponseWriter) (*services.Analytics, bool) {
	statement := h.loadStatement(w)
	if statement == nil {
		return nil, false
	}
	analytics, err := h.statementService.Analytics(statement)
	if err != nil {
		logger.L.Error("Failed to compute analytics", "error", err)
		utils.SendJSONError(w, "Failed to compute analytics", http.StatusInternalServerError)
		return nil, false
	}
	return analytics, true
}

// HandleGetOverview returns the statement-level cash flow summary.
func (h *StatementHandler) HandleGetOverview(w http.ResponseWriter, r *http.Request) {
	analytics, ok := h.analytics(w)
	if !ok {
		return
	}
	writeJSONWithETag(w, r, analytics.NetFlow)
}

// HandleGetFees returns the fee breakdown.
func (h *StatementHandler) HandleGetFees(w http.ResponseWriter, r *http.Request) {
	analytics, ok := h.analytics(w)
	if !ok {
		return
	}
	writeJSONWithETag(w, r, analytics.Fees)
}

// HandleGetTrends returns the time-bucketed activity view.
func (h *StatementHandler) HandleGetTrends(w http.ResponseWriter, r *http.Request) {
	analytics, ok := h.analytics(w)
	if !ok {
		return
	}
	writeJSONWithETag(w, r, analytics.Trends)
}

// HandleGetRecipients returns counterparties sorted by volume.
func (h *StatementHandler) HandleGetRecipients(w http.ResponseWriter, r *http.Request) {
	analytics, ok := h.analytics(w)
	if !ok {
		return
	}
	parties := analytics.Counterparties
	if parties == nil {
		parties = []models.Counterparty{}
	}
	writeJSONWithETag(w, r, map[string]interface{}{"recipients": parties})
}

// HandleGetRecurring returns detected repeating payment patterns.
func (h *StatementHandler) HandleGetRecurring(w http.ResponseWriter, r *http.Request) {
	analytics, ok := h.analytics(w)
	if !ok {
		return
	}
	groups := analytics.Recurring
	if groups == nil {
		groups = []models.RecurringGroup{}
	}
	writeJSONWithETag(w, r, map[string]interface{}{"recurring": groups})
}

// HandleDeleteStatement clears the session statement.
func (h *StatementHandler) HandleDeleteStatement(w http.ResponseWriter, r *http.Request) {
	h.store.Clear(config.Cfg.StatementSlot)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "statement cleared"})
}
