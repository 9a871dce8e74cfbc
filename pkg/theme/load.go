package theme

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/stlplant/tankview/pkg/errors"
)

// File is the YAML layout of a theme override file:
//
//	palettes:
//	  night:
//	    tank: "#1b263b"
//	    button: "#415a77"
//	banners:
//	  training:
//	    primary: "#ff7331"
type File struct {
	Palettes map[string]Palette `yaml:"palettes"`
	Banners  map[string]Banner  `yaml:"banners"`
}

// Load returns the built-in registry with the overrides from the YAML file
// at path applied. An empty path returns the built-in registry.
func Load(path string) (*Registry, error) {
	r := NewRegistry()
	if path == "" {
		return r, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "theme file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read theme file %s", path)
	}
	if err := r.Apply(data); err != nil {
		return nil, err
	}
	return r, nil
}

// Apply merges YAML overrides into the registry. Every color is validated
// before anything is applied.
func (r *Registry) Apply(data []byte) error {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse theme file")
	}
	for name, p := range f.Palettes {
		for _, c := range []string{p.Tank, p.TankBorder, p.Text, p.Grid, p.Button, p.ButtonHover} {
			if c == "" {
				continue
			}
			if _, err := ParseColor(c); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidTheme, err, "palette %q", name)
			}
		}
	}
	for name, b := range f.Banners {
		for _, c := range []string{b.Primary, b.PrimaryDark, b.Text} {
			if c == "" {
				continue
			}
			if _, err := ParseColor(c); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidTheme, err, "banner %q", name)
			}
		}
	}
	for name, p := range f.Palettes {
		r.SetPalette(name, p)
	}
	for name, b := range f.Banners {
		r.SetBanner(name, b)
	}
	return nil
}
