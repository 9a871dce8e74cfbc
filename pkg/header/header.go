// Package header resolves and renders the banner shown at the top of every
// page: page title, subtitle and icon, the work-context colors, the browser
// document title and the target of the back button.
package header

import (
	"maps"
	"slices"
	"strings"

	"github.com/stlplant/tankview/pkg/errors"
	"github.com/stlplant/tankview/pkg/theme"
)

// Fallbacks for pages without an entry in the page table.
const (
	DefaultTitle    = "STL System"
	DefaultSubtitle = "Surface Treatment Line Management"
	DefaultIcon     = "bi-gear-fill"

	// HomeURL is where main pages navigate back to.
	HomeURL = "/static/index.html"
)

// Page is the header content for one page.
type Page struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Icon     string `json:"icon"`
}

var pages = map[string]Page{
	"sales":                    {"Customer's Plant Manager", "Customer and production facility management", "bi-buildings"},
	"engineering":              {"Design", "Design and layout management", "bi-tools"},
	"customer-plant-selection": {"Customer & Plant", "Select customer and plant for your work", "bi-buildings"},
	"treatment-programs":       {"Treatment Programs Manager", "Manage treatment programs for your selected plant", "bi-table"},
	"plant_layout":             {"Plant Layout Designer", "Design and configure production line layouts", "bi-diagram-3"},
	"basic-line-layout":        {"Basic Line & Layout", "Design basic production line layouts and tank positioning", "bi-grid-3x3-gap"},
	"knowledge-hub":            {"Knowledge Hub", "AI-powered technical assistant for surface treatment plants", "bi-lightbulb"},
	"simulation":               {"Simulation", "Production process simulation and optimization", "bi-graph-up"},
}

// mainContexts have a landing page of their own.
var mainContexts = map[string]bool{
	theme.Sales:       true,
	theme.Engineering: true,
	theme.Training:    true,
	theme.Simulation:  true,
}

// mainPages navigate back to the home page.
var mainPages = map[string]bool{
	"sales":         true,
	"engineering":   true,
	"training":      true,
	"simulation":    true,
	"knowledge-hub": true,
}

// Options selects the page and overrides parts of its header.
type Options struct {
	// Page is the page file name, with or without ".html" or a path.
	Page  string
	Theme string

	Title    string
	Subtitle string
	Icon     string
	BackURL  string

	// Themes supplies banner colors; nil uses the built-in banners.
	Themes *theme.Registry
}

// View is a resolved header ready to render.
type View struct {
	Page     string       `json:"page"`
	Theme    string       `json:"theme"`
	Title    string       `json:"title"`
	Subtitle string       `json:"subtitle"`
	Icon     string       `json:"icon"`
	Banner   theme.Banner `json:"banner"`

	SubtitleColor   string `json:"subtitle_color"`
	BackBorderColor string `json:"back_border_color"`
	// DocumentTitle is empty when the page keeps its own title.
	DocumentTitle string `json:"document_title,omitempty"`
	// BackURL is empty when the back button uses browser history.
	BackURL string `json:"back_url,omitempty"`
}

// Lookup returns the page table entry for page.
func Lookup(page string) (Page, bool) {
	p, ok := pages[pageKey(page)]
	return p, ok
}

// Resolve builds the header for o. Explicit titles, subtitles and icons
// take precedence over the page table, which takes precedence over the
// defaults. Unknown themes use the default banner.
func Resolve(o Options) (View, error) {
	if err := errors.ValidatePageName(baseName(o.Page)); err != nil {
		return View{}, err
	}
	reg := o.Themes
	if reg == nil {
		reg = theme.NewRegistry()
	}

	name := strings.ToLower(strings.TrimSpace(o.Theme))
	if !reg.HasBanner(name) {
		name = theme.Default
	}
	banner := reg.Banner(name)
	page, _ := Lookup(o.Page)

	v := View{
		Page:     pageKey(o.Page),
		Theme:    name,
		Title:    first(o.Title, page.Title, DefaultTitle),
		Subtitle: first(o.Subtitle, page.Subtitle, DefaultSubtitle),
		Icon:     first(o.Icon, page.Icon, DefaultIcon),
		Banner:   banner,
		BackURL:  BackTarget(o.Page, name, o.BackURL),
	}
	if theme.IsWhite(banner.Text) {
		v.SubtitleColor = "rgba(255, 255, 255, 0.85)"
		v.BackBorderColor = "rgba(255, 255, 255, 0.5)"
	} else {
		v.SubtitleColor = "rgba(0, 0, 0, 0.7)"
		v.BackBorderColor = "rgba(0, 0, 0, 0.3)"
	}
	if banner.Label != reg.Banner(theme.Default).Label {
		v.DocumentTitle = v.Title + " - " + banner.Label + " Context"
	}
	return v, nil
}

// BackTarget returns where the back button of page goes. An explicit URL
// wins. Main pages return to the home page; sub-pages return to the landing
// page of a main context. The empty string means browser history.
func BackTarget(page, themeName, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if mainPages[pageKey(page)] {
		return HomeURL
	}
	if t := strings.ToLower(themeName); mainContexts[t] {
		return "/static/" + t + ".html"
	}
	return ""
}

// Pages returns the sorted names in the page table.
func Pages() []string {
	return slices.Sorted(maps.Keys(pages))
}

func pageKey(page string) string {
	return strings.TrimSuffix(strings.ToLower(baseName(page)), ".html")
}

func baseName(page string) string {
	page = strings.TrimSpace(page)
	if i := strings.IndexAny(page, "?#"); i >= 0 {
		page = page[:i]
	}
	if i := strings.LastIndexByte(page, '/'); i >= 0 {
		page = page[i+1:]
	}
	return page
}

func first(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
