package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/gompdf/offerpdf/internal/document"
	"github.com/gompdf/offerpdf/internal/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	plan, err := s.gen.Plan(req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writePDF(w, r, req)
}

func (s *Server) writePDF(w http.ResponseWriter, r *http.Request, req document.Request) {
	data, err := s.gen.GenerateBytes(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+s.gen.FileName(req)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := s.gen.Preview(r.Context(), req, &buf); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	count, err := strconv.Atoi(q.Get("count"))
	if err != nil || count < 0 {
		s.writeError(w, r, fmt.Errorf("%w: count must be a non-negative integer", errBadRequest))
		return
	}
	est, err := s.gen.Estimate(count, q.Get("orientation"))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, est)
}

func (s *Server) handleListOffers(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context(), r.URL.Query().Get("profile"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateOffer(w http.ResponseWriter, r *http.Request) {
	s.saveOffer(w, r, "", http.StatusCreated)
}

func (s *Server) handlePutOffer(w http.ResponseWriter, r *http.Request) {
	s.saveOffer(w, r, mux.Vars(r)["id"], http.StatusOK)
}

func (s *Server) saveOffer(w http.ResponseWriter, r *http.Request, id string, code int) {
	req, err := decodeRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if id == "" {
		id = req.ID
	}
	rec, err := s.store.Put(r.Context(), store.Record{
		ID:      id,
		Profile: r.URL.Query().Get("profile"),
		Request: req,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, code, rec)
}

func (s *Server) handleGetOffer(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteOffer(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// renderResult reports where a stored offer's document was written
type renderResult struct {
	ID       string `json:"id"`
	File     string `json:"file"`
	Location string `json:"location"`
	Bytes    int    `json:"bytes"`
}

func (s *Server) handleRenderOffer(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := s.gen.GenerateBytes(r.Context(), rec.Request)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	name := s.gen.FileName(rec.Request)
	loc, err := s.sink.Write(r.Context(), name, data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("offer rendered", "id", rec.ID, "location", loc, "bytes", len(data))
	writeJSON(w, http.StatusCreated, renderResult{ID: rec.ID, File: name, Location: loc, Bytes: len(data)})
}
