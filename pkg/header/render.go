package header

import (
	"html/template"
	"io"

	"github.com/stlplant/tankview/pkg/errors"
)

var bannerTmpl = template.Must(template.New("header").Parse(`<div class="universal-header" data-theme="{{.Theme}}" style="{{.BannerStyle}}">
  <div class="container">
    <div class="row align-items-center">
      <div class="col">
        <h1 class="universal-header-title" style="{{.TitleStyle}}">
          <i class="{{.Icon}} me-2"></i>
          {{.Title}}
        </h1>
        <p class="universal-header-subtitle" style="{{.SubtitleStyle}}">{{.Subtitle}}</p>
      </div>
      <div class="col-auto">
        <button id="universal-back-btn" class="btn btn-outline-light universal-back-btn" style="{{.BackStyle}}"{{if .BackURL}} data-back-url="{{.BackURL}}"{{else}} data-back="history"{{end}}>
          <i class="bi bi-arrow-left me-1"></i> Back
        </button>
      </div>
    </div>
  </div>
</div>
`))

type renderData struct {
	View
	BannerStyle   template.CSS
	TitleStyle    template.CSS
	SubtitleStyle template.CSS
	BackStyle     template.CSS
}

// Render writes the banner HTML for v. Colors come from the theme registry,
// whose loader validates them.
func Render(w io.Writer, v View) error {
	b := v.Banner
	d := renderData{
		View: v,
		BannerStyle: template.CSS("background: linear-gradient(135deg, " + b.Primary + " 0%, " + b.PrimaryDark + " 100%); " +
			"color: " + b.Text + "; padding: 2rem 0; margin-bottom: 2rem; " +
			"--theme-primary: " + b.Primary + "; --theme-primary-dark: " + b.PrimaryDark + "; --theme-text: " + b.Text + ";"),
		TitleStyle:    template.CSS("font-size: 2.5rem; color: " + b.Text + "; margin-bottom: 10px; font-weight: 700; letter-spacing: -0.02em;"),
		SubtitleStyle: template.CSS("font-size: 1.2rem; color: " + v.SubtitleColor + "; margin-bottom: 0; font-weight: 400;"),
		BackStyle:     template.CSS("border-color: " + v.BackBorderColor + "; color: " + b.Text + ";"),
	}
	if err := bannerTmpl.Execute(w, d); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "render header")
	}
	return nil
}
