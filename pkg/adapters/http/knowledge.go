package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/hostline/pkg/knowledge"
)

func (s *Server) kb(w http.ResponseWriter) (*knowledge.Base, bool) {
	if s.cfg.Knowledge == nil {
		writeError(w, http.StatusServiceUnavailable, "knowledge base not configured")
		return nil, false
	}
	return s.cfg.Knowledge, true
}

// ListCities handles GET /kb/cities.
func (s *Server) ListCities(w http.ResponseWriter, r *http.Request) {
	kb, ok := s.kb(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"cities": kb.Cities()})
}

// ListOutlets handles GET /kb/outlets/{city}.
func (s *Server) ListOutlets(w http.ResponseWriter, r *http.Request) {
	kb, ok := s.kb(w)
	if !ok {
		return
	}
	city := chi.URLParam(r, "city")
	outlets, err := kb.Outlets(city)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"city": knowledge.Key(city), "outlets": outlets})
}

// GetOutlet handles GET /kb/outlet/{city}/{outlet}.
func (s *Server) GetOutlet(w http.ResponseWriter, r *http.Request) {
	kb, ok := s.kb(w)
	if !ok {
		return
	}
	ans, err := kb.Outlet(chi.URLParam(r, "city"), chi.URLParam(r, "outlet"), r.URL.Query().Get("info_type"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ans)
}

// GetMenu handles GET /kb/menu.
func (s *Server) GetMenu(w http.ResponseWriter, r *http.Request) {
	kb, ok := s.kb(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, kb.Menu(r.URL.Query().Get("category")))
}

// QueryKnowledge handles POST /kb/query.
func (s *Server) QueryKnowledge(w http.ResponseWriter, r *http.Request) {
	kb, ok := s.kb(w)
	if !ok {
		return
	}
	var req knowledge.QueryRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, kb.Query(req))
}
