// src/handlers/export_handler.go
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/username/mpesaviz/backend/src/config"
	"github.com/username/mpesaviz/backend/src/database"
	"github.com/username/mpesaviz/backend/src/logger"
	"github.com/username/mpesaviz/backend/src/models"
	"github.com/username/mpesaviz/backend/src/utils"
)

// csvHeader is the canonical Transaction field order for CSV export.
var csvHeader = []string{"receipt_id", "completed_at", "details", "status", "paid_in", "withdrawn", "balance"}

type ExportHandler struct {
	store *database.StatementStore
}

func NewExportHandler(store *database.StatementStore) *ExportHandler {
	return &ExportHandler{store: store}
}

func (h *ExportHandler) loadStatement(w http.ResponseWriter) *models.Statement {
	statement, err := h.store.Load(config.Cfg.StatementSlot)
	if err != nil {
		logger.L.Error("Failed to load persisted statement for export", "error", err)
		utils.SendJSONError(w, "Failed to load statement", http.StatusInternalServerError)
		return nil
	}
	if statement == nil {
		utils.SendJSONError(w, "No statement available to export.", http.StatusNotFound)
		return nil
	}
	return statement
}

// HandleExportCSV writes the ledger as CSV: header row in canonical field
// order, every value quoted, internal quotes doubled.
func (h *ExportHandler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	statement := h.loadStatement(w)
	if statement == nil {
		return
	}

	var sb strings.Builder
	writeCSVRow(&sb, csvHeader)
	for _, tx := range statement.Transactions {
		writeCSVRow(&sb, []string{
			tx.ReceiptID,
			tx.CompletedAt.Format(utils.CompletionTimeFormat),
			tx.Details,
			string(tx.Status),
			formatOptionalAmount(tx.PaidIn),
			formatOptionalAmount(tx.Withdrawn),
			fmt.Sprintf("%.2f", tx.Balance),
		})
	}

	filename := fmt.Sprintf("mpesa_statement_%s.csv", time.Now().Format(utils.DayFormat))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write([]byte(sb.String())); err != nil {
		logger.L.Error("Error writing CSV export", "error", err)
	}
}

// HandleExportJSON writes the ledger as a JSON array of transactions.
// Absent amounts are omitted, matching the canonical JSON policy.
func (h *ExportHandler) HandleExportJSON(w http.ResponseWriter, r *http.Request) {
	statement := h.loadStatement(w)
	if statement == nil {
		return
	}

	filename := fmt.Sprintf("mpesa_statement_%s.json", time.Now().Format(utils.DayFormat))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := json.NewEncoder(w).Encode(statement.Transactions); err != nil {
		logger.L.Error("Error writing JSON export", "error", err)
	}
}

// writeCSVRow quotes every value unconditionally, doubling embedded quotes.
func writeCSVRow(sb *strings.Builder, values []string) {
	for i, val := range values {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('"')
		sb.WriteString(strings.ReplaceAll(val, `"`, `""`))
		sb.WriteByte('"')
	}
	sb.WriteByte('\n')
}

func formatOptionalAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}
