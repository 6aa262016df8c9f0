package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/tkingovr/logfilter/api"
	"github.com/tkingovr/logfilter/internal/config"
	"github.com/tkingovr/logfilter/internal/sink"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) gate(w http.ResponseWriter, name string) (*sink.Gate, bool) {
	if name == "" {
		name = config.DefaultChain
	}
	g, ok := s.gates[name]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown chain %q", name))
	}
	return g, ok
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req api.CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	g, ok := s.gate(w, req.Chain)
	if !ok {
		return
	}

	// Dry run: evaluate without recording.
	ev := req.Event.ToEvent()
	d := g.Chain().Evaluate(ev)
	writeJSON(w, http.StatusOK, api.CheckResponse{
		Chain:     g.Name(),
		Result:    d.Result,
		DecidedBy: d.DecidedBy,
		Steps:     g.Chain().Explain(ev),
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	var req api.EventsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	g, ok := s.gate(w, req.Chain)
	if !ok {
		return
	}

	resp := api.EventsResponse{
		Chain:   g.Name(),
		Results: make([]api.Result, 0, len(req.Events)),
	}
	for i := range req.Events {
		ev := req.Events[i].ToEvent()
		if ev.Timestamp.IsZero() {
			ev.Timestamp = time.Now()
		}
		d := g.Evaluate(r.Context(), ev)
		if d.Result == api.ResultAccept {
			resp.Accepted++
		} else {
			resp.Denied++
		}
		resp.Results = append(resp.Results, d.Result)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChains(w http.ResponseWriter, _ *http.Request) {
	chains := make([]api.ChainInfo, 0, len(s.gates))
	for _, name := range s.chainNames() {
		filters := s.gates[name].Chain().Filters()
		if filters == nil {
			filters = []string{}
		}
		chains = append(chains, api.ChainInfo{Name: name, Filters: filters})
	}
	writeJSON(w, http.StatusOK, chains)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "decision recording is disabled")
		return
	}
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleDecisions(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "decision recording is disabled")
		return
	}

	f, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	records, err := s.store.Query(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query decision log")
		return
	}

	if records == nil {
		records = []*api.DecisionRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func parseQuery(r *http.Request) (api.QueryFilter, error) {
	q := r.URL.Query()
	f := api.QueryFilter{
		Chain:  q.Get("chain"),
		Logger: q.Get("logger"),
		Limit:  100,
		Newest: true,
	}
	if v := q.Get("result"); v != "" {
		res, err := api.ParseResult(v)
		if err != nil {
			return f, err
		}
		f.Result = res
	}
	for key, dst := range map[string]*int{"limit": &f.Limit, "offset": &f.Offset} {
		if v := q.Get(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return f, fmt.Errorf("invalid %s %q", key, v)
			}
			*dst = n
		}
	}
	for key, dst := range map[string]*time.Time{"since": &f.Since, "until": &f.Until} {
		if v := q.Get(key); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return f, fmt.Errorf("invalid %s %q", key, v)
			}
			*dst = t
		}
	}
	return f, nil
}

func (s *Server) handleDecisionStream(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "decision recording is disabled")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	ch, cancel := s.store.Subscribe(r.Context())
	defer cancel()

	chain := r.URL.Query().Get("chain")
	for {
		select {
		case record, ok := <-ch:
			if !ok {
				return
			}
			if chain != "" && record.Chain != chain {
				continue
			}
			data, err := json.Marshal(record)
			if err != nil {
				s.logger.Warn("failed to encode decision", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: decision\ndata: %s\n\n", data)
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}
