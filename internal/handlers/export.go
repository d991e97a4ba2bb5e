package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"aistyleguide/internal/export"
	"aistyleguide/internal/middleware"
)

// maxExportLen caps the markdown accepted for export.
const maxExportLen = 500_000

// Export groups document export handlers.
type Export struct {
	exporter *export.Exporter
}

// NewExport creates the export handler group.
func NewExport(exporter *export.Exporter) *Export {
	return &Export{exporter: exporter}
}

type exportRequest struct {
	Content string `json:"content"`
	Format  string `json:"format"`
	Title   string `json:"title"`
}

func (e *Export) decode(w http.ResponseWriter, r *http.Request) (*exportRequest, bool) {
	var req exportRequest
	if !decodeJSON(w, r, &req) {
		return nil, false
	}
	if len(req.Content) > maxExportLen {
		writeError(w, http.StatusRequestEntityTooLarge, "Document is too large to export.")
		return nil, false
	}
	return &req, true
}

// Download renders the document as a markdown or HTML attachment.
func (e *Export) Download(w http.ResponseWriter, r *http.Request) {
	req, ok := e.decode(w, r)
	if !ok {
		return
	}
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unsupported export format. Use markdown or html.")
		return
	}

	file, err := e.exporter.Render(req.Content, format, req.Title)
	if errors.Is(err, export.ErrEmptyContent) {
		writeError(w, http.StatusBadRequest, "There is no content to export.")
		return
	}
	if err != nil {
		slog.Error("export render failed", "error", err, "request_id", middleware.RequestIDFromCtx(r.Context()))
		writeError(w, http.StatusInternalServerError, "Could not export the document.")
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+file.Name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Body)))
	w.WriteHeader(http.StatusOK)
	w.Write(file.Body)
}

// Share uploads the HTML export and returns a presigned link.
func (e *Export) Share(w http.ResponseWriter, r *http.Request) {
	if !e.exporter.CanShare() {
		writeError(w, http.StatusServiceUnavailable, "Sharing is not available.")
		return
	}
	req, ok := e.decode(w, r)
	if !ok {
		return
	}

	url, err := e.exporter.Share(r.Context(), req.Content, req.Title)
	switch {
	case errors.Is(err, export.ErrEmptyContent):
		writeError(w, http.StatusBadRequest, "There is no content to share.")
		return
	case err != nil:
		slog.Error("share export failed", "error", err, "request_id", middleware.RequestIDFromCtx(r.Context()))
		writeError(w, http.StatusBadGateway, "Could not create a share link.")
		return
	}
	writeSuccess(w, map[string]any{"url": url, "expiresIn": int(export.ShareExpiry.Seconds())})
}

// ExportPDF is not offered; clients fall back to the HTML export.
func (e *Export) ExportPDF(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotImplemented, "PDF export is not available. Download the HTML version and print it to PDF.")
}
