package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/arzlive/arzlive/internal/market"
	"github.com/arzlive/arzlive/internal/model"
	"github.com/arzlive/arzlive/internal/snapshot"
	"github.com/arzlive/arzlive/internal/version"
)

// catalogResponse is the body of the assets and refresh endpoints.
type catalogResponse struct {
	CycleID   string        `json:"cycle_id"`
	StartedAt time.Time     `json:"started_at"`
	Error     string        `json:"error,omitempty"`
	Assets    []model.Asset `json:"assets"`
}

func newCatalogResponse(res snapshot.Result, assets []model.Asset) catalogResponse {
	return catalogResponse{
		CycleID:   res.CycleID,
		StartedAt: res.StartedAt,
		Error:     res.Err,
		Assets:    assets,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	res := s.source.Latest()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"version":    version.Get(),
		"cycle_id":   res.CycleID,
		"last_cycle": res.StartedAt,
		"error":      res.Err,
	})
}

func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	cat := model.Category(strings.ToUpper(r.URL.Query().Get("category")))
	if cat != "" && !cat.Valid() {
		writeError(w, http.StatusBadRequest, "unknown category: "+string(cat))
		return
	}

	res := s.source.Latest()
	writeJSON(w, http.StatusOK, newCatalogResponse(res, market.Filter(res.Assets, cat)))
}

func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	a, ok := s.findAsset(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tf, err := market.ParseTimeframe(q.Get("range"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	unit, err := market.ParseUnit(q.Get("unit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	a, ok := s.findAsset(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, market.BuildChart(a, tf, unit, s.now()))
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	unit, err := market.ParseUnit(q.Get("unit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	a, ok := s.findAsset(w, r)
	if !ok {
		return
	}
	conv, err := market.Convert(a, q.Get("amount"), unit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (s *Server) handleHighlights(w http.ResponseWriter, r *http.Request) {
	res := s.source.Latest()
	writeJSON(w, http.StatusOK, market.ComputeHighlights(res.Assets, s.cfg.GoldID))
}

func (s *Server) handleDigest(w http.ResponseWriter, r *http.Request) {
	res := s.source.Latest()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(market.Digest(res.Assets)))
}

// handleRefresh runs one cycle now. Concurrent refreshes share a cycle and
// the cycle is not cancelled when a requester goes away.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	v, _, _ := s.refresh.Do("refresh", func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), s.cfg.RefreshTimeout)
		defer cancel()

		res := s.source.PollOnce(ctx)
		s.HandleResult(res)
		return res, nil
	})

	res := v.(snapshot.Result)
	writeJSON(w, http.StatusOK, newCatalogResponse(res, res.Assets))
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	initial, err := json.Marshal(newEvent(s.source.Latest()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode snapshot")
		return
	}
	s.hub.ServeWS(w, r, initial)
}

func (s *Server) findAsset(w http.ResponseWriter, r *http.Request) (model.Asset, bool) {
	id := strings.ToLower(mux.Vars(r)["id"])
	a, err := market.Find(s.source.Latest().Assets, id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return model.Asset{}, false
	}
	return a, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
