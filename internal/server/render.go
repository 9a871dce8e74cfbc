package server

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/stlplant/tankview/pkg/buildinfo"
	"github.com/stlplant/tankview/pkg/cache"
	"github.com/stlplant/tankview/pkg/errors"
	"github.com/stlplant/tankview/pkg/header"
	"github.com/stlplant/tankview/pkg/model"
	"github.com/stlplant/tankview/pkg/render/tank"
	"github.com/stlplant/tankview/pkg/render/tank/layout"
	"github.com/stlplant/tankview/pkg/render/tank/sink"
	"github.com/stlplant/tankview/pkg/render/tank/surface"
)

const (
	canvasHandle = "tankLayoutCanvas"
	// canvasInset matches the inset the renderer subtracts from its surface.
	canvasInset = 4
	maxCanvas   = 10000
)

// renderParams are the query parameters shared by the render routes.
type renderParams struct {
	format  string
	preset  string
	theme   string
	width   float64
	height  float64
	hovered *int
	grid    bool
	buttons bool
}

// parseRenderParams reads render parameters from q, falling back to the
// server defaults.
func (s *Server) parseRenderParams(q url.Values) (renderParams, error) {
	p := renderParams{
		format:  sink.NormalizeFormat(first(q.Get("format"), s.render.Format)),
		preset:  first(q.Get("preset"), s.render.Preset),
		theme:   first(q.Get("theme"), s.render.Theme),
		width:   float64(s.render.Width),
		height:  float64(s.render.Height),
		grid:    s.render.Grid,
		buttons: s.render.EditButtons,
	}

	var err error
	if p.width, err = floatParam(q, "width", p.width); err != nil {
		return p, err
	}
	if p.height, err = floatParam(q, "height", p.height); err != nil {
		return p, err
	}
	if !(p.width > 0 && p.width <= maxCanvas && p.height > 0 && p.height <= maxCanvas) {
		return p, errors.New(errors.ErrCodeInvalidInput, "canvas %gx%g out of range (1..%d)", p.width, p.height, maxCanvas)
	}
	if p.grid, err = boolParam(q, "grid", p.grid); err != nil {
		return p, err
	}
	if p.buttons, err = boolParam(q, "buttons", p.buttons); err != nil {
		return p, err
	}
	if v := q.Get("hover"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return p, errors.New(errors.ErrCodeInvalidInput, "hover must be a tank id, got %q", v)
		}
		p.hovered = &id
	}
	return p, nil
}

// newRenderer binds a renderer to a fresh in-memory canvas.
func (s *Server) newRenderer(p renderParams) (*tank.Renderer, error) {
	preset, err := layout.Preset(p.preset)
	if err != nil {
		return nil, err
	}
	preset.MaxWidth = maxCanvas
	if p.theme != "" {
		if _, ok := s.themes.Palette(p.theme); !ok {
			return nil, errors.New(errors.ErrCodeInvalidTheme, "unknown theme %q (known: %s)", p.theme, strings.Join(s.themes.PaletteNames(), ", "))
		}
	}

	reg := surface.NewRegistry()
	reg.Register(canvasHandle, surface.NewRecorder(p.width+canvasInset, p.height+canvasInset))

	opts := []tank.Option{
		tank.WithLayout(preset),
		tank.WithThemes(s.themes),
		tank.WithGrid(p.grid),
		tank.WithEditButtons(p.buttons),
		tank.WithLogger(s.logger),
	}
	if p.theme != "" {
		opts = append(opts, tank.WithTheme(p.theme))
	}
	return tank.New(reg, canvasHandle, opts...)
}

// draw decodes a tank list and draws it.
func (s *Server) draw(p renderParams, body []byte) (*tank.Renderer, error) {
	lt, err := model.DecodeLineTanks(body)
	if err != nil {
		return nil, err
	}
	return s.drawTanks(p, lt)
}

func (s *Server) drawTanks(p renderParams, lt model.LineTanks) (*tank.Renderer, error) {
	r, err := s.newRenderer(p)
	if err != nil {
		return nil, err
	}
	r.DrawLayout(lt.Tanks, lt.Line, tank.DrawOptions{HoveredTankID: p.hovered})
	if r.Layout().Clipped {
		r.Close()
		return nil, errors.New(errors.ErrCodeInvalidInput, "%d tanks do not fit in %dpx at the minimum scale", len(lt.Tanks), maxCanvas)
	}
	return r, nil
}

func (s *Server) renderKey(body []byte, p renderParams) string {
	return s.keyer.RenderKey(cache.Hash(body), cache.RenderKeyOpts{
		Preset:  p.preset,
		Theme:   p.theme,
		Format:  p.format,
		Width:   p.width,
		Height:  p.height,
		Grid:    p.grid,
		Buttons: p.buttons,
		Hovered: p.hovered,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Get()})
}

// handleRender draws the posted tanks and answers with the encoded frame.
// Identical requests are served from the cache.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	p, err := s.parseRenderParams(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()
	key := s.renderKey(body, p)
	if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		w.Header().Set(CacheHeader, "HIT")
		writeBytes(w, sink.ContentType(p.format), data)
		return
	}

	rnd, err := s.draw(p, body)
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
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.logger.Debug("render cache write failed", "err", err)
	}
	w.Header().Set(CacheHeader, "MISS")
	writeBytes(w, sink.ContentType(p.format), data)
}

// handleLayout answers with the computed layout, as msgpack when the client
// accepts it and JSON otherwise.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	p, err := s.parseRenderParams(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	rnd, err := s.draw(p, body)
	if err != nil {
		writeError(w, err)
		return
	}
	defer rnd.Close()

	format := sink.FormatJSON
	if strings.Contains(r.Header.Get("Accept"), sink.ContentType(sink.FormatMsgpack)) {
		format = sink.FormatMsgpack
	}
	data, err := rnd.Export(format)
	if err != nil {
		writeError(w, err)
		return
	}
	writeBytes(w, sink.ContentType(format), data)
}

// hitResponse reports what a pointer position would edit.
type hitResponse struct {
	Hit    bool        `json:"hit"`
	TankID int         `json:"tank_id,omitempty"`
	Tank   *model.Tank `json:"tank,omitempty"`
	Cursor tank.Cursor `json:"cursor"`
}

// handleHit draws the posted tanks and hit tests the point x,y against
// their edit buttons.
func (s *Server) handleHit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, err := s.parseRenderParams(q)
	if err != nil {
		writeError(w, err)
		return
	}
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "x and y must be numbers"))
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	rnd, err := s.draw(p, body)
	if err != nil {
		writeError(w, err)
		return
	}
	defer rnd.Close()

	resp := hitResponse{Cursor: rnd.PointerMove(x, y)}
	if t, ok := rnd.Click(x, y); ok {
		resp.Hit = true
		resp.TankID = t.ID
		resp.Tank = &t
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleHeader renders the page header as an HTML fragment, or its
// resolved fields with format=json.
func (s *Server) handleHeader(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	v, err := header.Resolve(header.Options{
		Page:     q.Get("page"),
		Theme:    q.Get("theme"),
		Title:    q.Get("title"),
		Subtitle: q.Get("subtitle"),
		Icon:     q.Get("icon"),
		BackURL:  q.Get("back"),
		Themes:   s.themes,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if q.Get("format") == "json" {
		writeJSON(w, http.StatusOK, v)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := header.Render(w, v); err != nil {
		s.logger.Warn("header render failed", "err", err)
	}
}

func floatParam(q url.Values, name string, def float64) (float64, error) {
	v := q.Get(name)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s must be a number, got %q", name, v)
	}
	return f, nil
}

func boolParam(q url.Values, name string, def bool) (bool, error) {
	v := q.Get(name)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.New(errors.ErrCodeInvalidInput, "%s must be true or false, got %q", name, v)
	}
	return b, nil
}

func first(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
