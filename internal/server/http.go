package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/zeusync/zeuscore/internal/core/entity"
	"github.com/zeusync/zeuscore/internal/core/events/bus"
	"github.com/zeusync/zeuscore/internal/core/observability/log"
	"github.com/zeusync/zeuscore/internal/core/supervisor"
)

// Source is what the monitor reports on
type Source interface {
	Entities() []*entity.Entity
	Entity(id entity.ID) (*entity.Entity, bool)
	Stats() supervisor.Stats
}

type FeedStats struct {
	Clients int    `json:"clients"`
	Dropped uint64 `json:"dropped"`
	History int    `json:"history"`
}

type StatsResponse struct {
	Supervisor supervisor.Stats `json:"supervisor"`
	Bus        *bus.Metrics     `json:"bus,omitempty"`
	Feed       FeedStats        `json:"feed"`
}

// Handler serves the monitor routes:
//
//	GET /ws             notice stream
//	GET /entities       live entity stats in spawn order
//	GET /entities/{id}  one entity
//	GET /stats          supervisor, bus and feed counters
func (m *Monitor) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /ws", m.feed)
	mux.HandleFunc("GET /entities", m.handleEntities)
	mux.HandleFunc("GET /entities/{id}", m.handleEntity)
	mux.HandleFunc("GET /stats", m.handleStats)
	return m.auth.middleware(mux)
}

func (m *Monitor) handleEntities(w http.ResponseWriter, _ *http.Request) {
	entities := m.src.Entities()
	out := make([]entity.Stats, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.Stats())
	}
	m.writeJSON(w, http.StatusOK, out)
}

func (m *Monitor) handleEntity(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		http.Error(w, ErrBadEntityID.Error(), http.StatusBadRequest)
		return
	}
	e, ok := m.src.Entity(entity.ID(id))
	if !ok {
		http.Error(w, supervisor.ErrUnknownEntity.Error(), http.StatusNotFound)
		return
	}
	m.writeJSON(w, http.StatusOK, e.Stats())
}

func (m *Monitor) handleStats(w http.ResponseWriter, _ *http.Request) {
	resp := StatsResponse{
		Supervisor: m.src.Stats(),
		Feed: FeedStats{
			Clients: m.feed.Clients(),
			Dropped: m.feed.dropped.Load(),
			History: m.history.Len(),
		},
	}
	if m.notices != nil {
		metrics := m.notices.Metrics()
		resp.Bus = &metrics
	}
	m.writeJSON(w, http.StatusOK, resp)
}

func (m *Monitor) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		m.log.Debug("write response failed", log.Error(err))
	}
}
