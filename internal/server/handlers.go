package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"zenflow/internal/tracker"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

type progressRequest struct {
	Date tracker.Date `json:"date"`
}

type areaRequest struct {
	Name string `json:"name"`
}

type demandRequest struct {
	Description string `json:"description"`
}

func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.items.Registry())
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	it, err := s.items.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// createItemRequest tells an omitted target apart from an explicit zero.
type createItemRequest struct {
	tracker.Form
	TargetRepetitions *int `json:"target_repetitions"`
}

func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	form := req.Form
	if t := req.TargetRepetitions; t != nil {
		if *t < 1 {
			s.writeError(w, r, &tracker.ValidationError{Field: "target_repetitions", Reason: "target must be at least 1"})
			return
		}
		form.TargetRepetitions = *t
	}
	it, err := s.items.Register(r.Context(), form)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	var form tracker.Form
	if !decodeBody(w, r, &form) {
		return
	}
	it, err := s.items.Edit(r.Context(), chi.URLParam(r, "id"), form)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) recordProgress(w http.ResponseWriter, r *http.Request) {
	var req progressRequest
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}
	if req.Date == "" {
		req.Date = s.items.Today()
	}
	it, err := s.items.RecordProgress(r.Context(), chi.URLParam(r, "id"), req.Date)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) requestDelete(w http.ResponseWriter, r *http.Request) {
	it, err := s.items.RequestDelete(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, it)
}

func (s *Server) confirmDelete(w http.ResponseWriter, r *http.Request) {
	it, err := s.items.ConfirmDelete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) cancelDelete(w http.ResponseWriter, r *http.Request) {
	if !s.items.CancelDelete(chi.URLParam(r, "id")) {
		s.writeError(w, r, tracker.ErrDeleteNotRequested)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) agenda(w http.ResponseWriter, r *http.Request) {
	date := s.items.Today()
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := tracker.ParseDate(raw)
		if err != nil {
			s.writeError(w, r, &tracker.ValidationError{Field: "date", Reason: "invalid date " + raw})
			return
		}
		date = d
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":  date,
		"items": s.items.Agenda(date),
	})
}

func (s *Server) listAreas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.demands.Areas())
}

func (s *Server) createArea(w http.ResponseWriter, r *http.Request) {
	var req areaRequest
	if !decodeBody(w, r, &req) {
		return
	}
	area, err := s.demands.CreateArea(r.Context(), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, area)
}

func (s *Server) requestDeleteArea(w http.ResponseWriter, r *http.Request) {
	area, err := s.demands.RequestDeleteArea(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, area)
}

func (s *Server) confirmDeleteArea(w http.ResponseWriter, r *http.Request) {
	if err := s.demands.ConfirmDeleteArea(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listDemands(w http.ResponseWriter, r *http.Request) {
	s.demandMu.Lock()
	defer s.demandMu.Unlock()

	if err := s.demands.Select(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.demands.Demands())
}

func (s *Server) createDemand(w http.ResponseWriter, r *http.Request) {
	var req demandRequest
	if !decodeBody(w, r, &req) {
		return
	}

	s.demandMu.Lock()
	defer s.demandMu.Unlock()

	if err := s.demands.Select(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	d, err := s.demands.CreateDemand(r.Context(), req.Description)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// toggleDemand acts on the demands of the area named by ?area=, or of the
// area listed last when the parameter is absent.
func (s *Server) toggleDemand(w http.ResponseWriter, r *http.Request) {
	s.demandMu.Lock()
	defer s.demandMu.Unlock()

	if !s.selectAreaParam(w, r) {
		return
	}
	d, err := s.demands.ToggleDemand(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) deleteDemand(w http.ResponseWriter, r *http.Request) {
	s.demandMu.Lock()
	defer s.demandMu.Unlock()

	if !s.selectAreaParam(w, r) {
		return
	}
	if err := s.demands.DeleteDemand(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) selectAreaParam(w http.ResponseWriter, r *http.Request) bool {
	area := r.URL.Query().Get("area")
	if area == "" {
		return true
	}
	if err := s.demands.Select(r.Context(), area); err != nil {
		s.writeError(w, r, err)
		return false
	}
	return true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case tracker.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, tracker.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, tracker.ErrInvalidOperation):
		return http.StatusConflict
	case tracker.IsPersistence(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
