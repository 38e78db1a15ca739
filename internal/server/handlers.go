package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/amrelsisy2023/HiLyte-sub000/internal/entity"
)

// extractRegionRequest is the body for POST /api/extract/region.
type extractRegionRequest struct {
	DrawingID string        `json:"drawingId"`
	Page      int           `json:"page"`
	Region    entity.Region `json:"region"`
	Persist   bool          `json:"persist"`
}

type extractRegionResponse struct {
	entity.ExtractionResult
	Items   []entity.ExtractedItem `json:"items,omitempty"`
	Columns map[string][]string    `json:"columns,omitempty"`
}

// handleExtractRegion runs the interactive pipeline over one region of one
// page. With persist=true any AI-extracted items are saved in a single call.
func (s *Server) handleExtractRegion(w http.ResponseWriter, r *http.Request) {
	var req extractRegionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.DrawingID == "" || req.Page <= 0 {
		http.Error(w, "drawingId and positive page required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	imagePath, err := s.pages.GetPageImagePath(req.DrawingID, req.Page)
	if err != nil {
		s.fail(w, "extract.page_lookup", err)
		return
	}

	sheet := entity.SheetMetadata{PageNumber: req.Page}
	if sheets, err := s.store.GetSheetMetadata(ctx, req.DrawingID); err == nil {
		for _, sh := range sheets {
			if sh.PageNumber == req.Page {
				sheet = sh
				break
			}
		}
	}

	divisions, err := s.store.ListDivisions(ctx)
	if err != nil {
		s.fail(w, "extract.divisions", err)
		return
	}

	res, err := s.extractor.ExtractRegion(ctx, imagePath, req.Region, sheet, divisions)
	if err != nil {
		s.fail(w, "extract.region", err)
		return
	}

	if req.Persist && len(res.Items) > 0 {
		if err := s.store.SaveExtractedItems(ctx, req.DrawingID, res.Items); err != nil {
			s.fail(w, "extract.persist", err)
			return
		}
	}

	s.writeJSON(w, http.StatusOK, extractRegionResponse{
		ExtractionResult: res.ExtractionResult,
		Items:            res.Items,
		Columns:          res.Columns,
	})
}

// bulkStartRequest is the body for POST /api/drawings/{drawingID}/extract.
type bulkStartRequest struct {
	TotalPages int    `json:"totalPages"`
	Filename   string `json:"filename"`
}

func (s *Server) handleBulkStart(w http.ResponseWriter, r *http.Request) {
	drawingID := chi.URLParam(r, "drawingID")

	var req bulkStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.bulk.Start(drawingID, req.TotalPages, req.Filename); err != nil {
		s.fail(w, "bulk.start", err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, s.bulk.Status(drawingID))
}

func (s *Server) handleBulkStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.bulk.Status(chi.URLParam(r, "drawingID")))
}

func (s *Server) handleBulkCancel(w http.ResponseWriter, r *http.Request) {
	drawingID := chi.URLParam(r, "drawingID")
	cancelled := s.bulk.Cancel(drawingID)
	s.writeJSON(w, http.StatusOK, map[string]bool{"cancelled": cancelled})
}

func (s *Server) handleListDivisions(w http.ResponseWriter, r *http.Request) {
	divisions, err := s.store.ListDivisions(r.Context())
	if err != nil {
		s.fail(w, "divisions.list", err)
		return
	}
	s.writeJSON(w, http.StatusOK, divisions)
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	drawingID := chi.URLParam(r, "drawingID")
	items, err := s.store.ListExtractedItems(r.Context(), drawingID)
	if err != nil {
		s.fail(w, "items.list", err)
		return
	}
	if items == nil {
		items = []entity.ExtractedItem{}
	}
	s.writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetSheets(w http.ResponseWriter, r *http.Request) {
	drawingID := chi.URLParam(r, "drawingID")
	sheets, err := s.store.GetSheetMetadata(r.Context(), drawingID)
	if err != nil {
		s.fail(w, "sheets.get", err)
		return
	}
	if sheets == nil {
		sheets = []entity.SheetMetadata{}
	}
	s.writeJSON(w, http.StatusOK, sheets)
}

func (s *Server) handlePutSheets(w http.ResponseWriter, r *http.Request) {
	drawingID := chi.URLParam(r, "drawingID")

	var sheets []entity.SheetMetadata
	if err := json.NewDecoder(r.Body).Decode(&sheets); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	for _, sh := range sheets {
		if sh.PageNumber <= 0 {
			http.Error(w, "pageNumber must be positive", http.StatusBadRequest)
			return
		}
	}

	if err := s.store.PutSheetMetadata(r.Context(), drawingID, sheets); err != nil {
		s.fail(w, "sheets.put", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	drawingID := chi.URLParam(r, "drawingID")
	data, err := s.exporter.ExportItemsXLSX(r.Context(), drawingID)
	if err != nil {
		s.fail(w, "export.xlsx", err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", drawingID+"-items.xlsx"))
	_, _ = w.Write(data)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("server.encode_response", "error", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("server."+op, "error", err)
	} else {
		s.logger.Warn("server."+op, "error", err)
	}
	http.Error(w, err.Error(), status)
}
