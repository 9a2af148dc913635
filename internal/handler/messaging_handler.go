package handler

import (
	"encoding/json"
	"net/http"

	"github.com/apricitydigital/attendance-core/internal/domain"
	"github.com/apricitydigital/attendance-core/internal/messaging"
	"github.com/apricitydigital/attendance-core/internal/middleware"
	"github.com/apricitydigital/attendance-core/internal/report"
	"github.com/apricitydigital/attendance-core/internal/service"
)

// MessagingHandler forwards a rendered report to the WhatsApp gateway
// (spec.md §4.5 supplement).
type MessagingHandler struct {
	reportService *service.ReportService
	whatsapp      *messaging.WhatsAppClient
}

// NewMessagingHandler creates a new messaging handler.
func NewMessagingHandler(reportService *service.ReportService, whatsapp *messaging.WhatsAppClient) *MessagingHandler {
	return &MessagingHandler{reportService: reportService, whatsapp: whatsapp}
}

type whatsappReportInput struct {
	To      string `json:"to"`
	Caption string `json:"caption"`
}

// SendReport runs the requested report, renders it as CSV, and forwards it
// to a WhatsApp recipient.
func (h *MessagingHandler) SendReport(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == nil {
		WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	var input whatsappReportInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if input.To == "" {
		WriteError(w, http.StatusBadRequest, "missing_recipient", "to is required")
		return
	}

	filter := parseReportFilter(r)
	filter.Format = domain.ReportFormatCSV

	result, rows, err := h.reportService.Run(r.Context(), *userID, filter)
	if err != nil {
		RespondError(w, err)
		return
	}

	grouping, ok := h.reportService.Grouping(filter.Grouping)
	if !ok {
		WriteError(w, http.StatusBadRequest, "unknown_grouping", "unknown report grouping")
		return
	}

	csvBytes, err := report.RenderCSV(grouping, rows)
	if err != nil {
		RespondError(w, err)
		return
	}

	fileName := report.FileName(string(filter.Grouping), result.GeneratedAt)
	messageID, err := h.whatsapp.SendReport(r.Context(), messaging.ReportMessage{
		To:          input.To,
		Caption:     input.Caption,
		FileName:    fileName,
		ContentType: "text/csv",
		Attachment:  csvBytes,
	})
	if err != nil {
		RespondError(w, err)
		return
	}

	WriteSuccess(w, map[string]string{"message_id": messageID, "file_name": fileName})
}
