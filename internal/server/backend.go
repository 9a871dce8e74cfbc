package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stlplant/tankview/pkg/errors"
	"github.com/stlplant/tankview/pkg/model"
	"github.com/stlplant/tankview/pkg/render/tank/sink"
	"github.com/stlplant/tankview/pkg/selection"
	"github.com/stlplant/tankview/pkg/topology"
)

func (s *Server) requireClient() error {
	if s.client == nil {
		return errors.New(errors.ErrCodeUnsupported, "no backend configured")
	}
	return nil
}

// handleLineLayout fetches the tanks of a line and renders them in the
// format named by the path extension.
func (s *Server) handleLineLayout(w http.ResponseWriter, r *http.Request) {
	if err := s.requireClient(); err != nil {
		writeError(w, err)
		return
	}
	lineID, err := urlID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	q := r.URL.Query()
	q.Set("format", chi.URLParam(r, "format"))
	p, err := s.parseRenderParams(q)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()
	line, err := s.client.Lines.Get(ctx, lineID)
	if err != nil {
		writeError(w, err)
		return
	}
	tanks, err := s.client.Lines.Tanks(ctx, lineID)
	if err != nil {
		writeError(w, err)
		return
	}

	rnd, err := s.drawTanks(p, model.LineTanks{Line: &line, Tanks: tanks})
	if err != nil {
		writeError(w, err)
		return
	}
	defer rnd.Close()
	data, err := rnd.Export(p.format)
	if err != nil {
		writeError(w, err)
		return
	}
	writeBytes(w, sink.ContentType(p.format), data)
}

// handleTopology renders the customer, plant, line and tank hierarchy of a
// customer as SVG or DOT.
func (s *Server) handleTopology(w http.ResponseWriter, r *http.Request) {
	if err := s.requireClient(); err != nil {
		writeError(w, err)
		return
	}
	customerID, err := urlID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	q := r.URL.Query()
	format := chi.URLParam(r, "format")
	plantID := 0
	if v := q.Get("plant"); v != "" {
		if plantID, err = strconv.Atoi(v); err != nil {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "plant must be an id, got %q", v))
			return
		}
	}
	activeOnly, err := boolParam(q, "active_only", false)
	if err != nil {
		writeError(w, err)
		return
	}
	detailed, err := boolParam(q, "detailed", false)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()
	key := s.keyer.TopologyKey(customerID, plantID, format+":"+strconv.FormatBool(detailed)+":"+strconv.FormatBool(activeOnly))
	contentType := "text/vnd.graphviz"
	if format == topology.FormatSVG {
		contentType = sink.ContentType(sink.FormatSVG)
	}
	if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		w.Header().Set(CacheHeader, "HIT")
		writeBytes(w, contentType, data)
		return
	}

	cust, err := s.client.Customers.Get(ctx, customerID)
	if err != nil {
		writeError(w, err)
		return
	}
	tree, err := topology.Fetch(ctx, topology.APISource(s.client), cust, topology.FetchOptions{PlantID: plantID, ActiveOnly: activeOnly})
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := topology.Render(ctx, tree, format, topology.Options{Detailed: detailed, Palette: s.themes.PaletteOrDefault(s.render.Theme)})
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.logger.Debug("topology cache write failed", "err", err)
	}
	w.Header().Set(CacheHeader, "MISS")
	writeBytes(w, contentType, data)
}

// selectionService opens the selection slot named by the request header.
func (s *Server) selectionService(r *http.Request) (*selection.Service, error) {
	if s.store == nil {
		return nil, errors.New(errors.ErrCodeUnsupported, "no selection store configured")
	}
	opts := []selection.ServiceOption{
		selection.WithKey(r.Header.Get(SelectionKeyHeader)),
		selection.WithLogger(s.logger),
	}
	if s.lister != nil {
		opts = append(opts, selection.WithRevisionLister(s.lister))
	}
	return selection.NewService(s.store, opts...), nil
}

func (s *Server) handleSelectionGet(w http.ResponseWriter, r *http.Request) {
	svc, err := s.selectionService(r)
	if err != nil {
		writeError(w, err)
		return
	}
	sel, err := svc.Current(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

// handleSelectionPut selects the record in the body at the level named by
// the path: customer, plant or revision.
func (s *Server) handleSelectionPut(w http.ResponseWriter, r *http.Request) {
	svc, err := s.selectionService(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()
	var sel selection.Selection
	switch level := chi.URLParam(r, "level"); level {
	case "customer":
		var c model.Customer
		if err = decodeBody(w, r, &c); err == nil {
			sel, err = svc.SelectCustomer(ctx, c)
		}
	case "plant":
		var p model.Plant
		if err = decodeBody(w, r, &p); err == nil {
			sel, err = svc.SelectPlant(ctx, p)
		}
	case "revision":
		var rev model.PlantRevision
		if err = decodeBody(w, r, &rev); err == nil {
			sel, err = svc.SelectRevision(ctx, rev)
		}
	default:
		err = errors.New(errors.ErrCodeNotFound, "unknown selection level %q (want customer, plant or revision)", level)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

func (s *Server) handleSelectionDelete(w http.ResponseWriter, r *http.Request) {
	svc, err := s.selectionService(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := svc.Clear(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
