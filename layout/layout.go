// Package layout loads the ordered list of table capacities which an
// Allocator is built from. A layout is read once, at startup.
package layout

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

// Layout is an ordered list of table capacities. Order is significant:
// tables are scanned for seating in the order given.
type Layout struct {
	Tables []int `yaml:"tables"`
}

// Validate returns an error if the Layout is empty or has a non-positive
// table capacity.
func (l Layout) Validate() error {
	if len(l.Tables) == 0 {
		return errors.New("expected at least one table")
	}
	for i, c := range l.Tables {
		if c <= 0 {
			return errors.Errorf("table %d has invalid capacity %d (expected > 0)", i, c)
		}
	}
	return nil
}

// Seats returns the number of seats summed across all tables.
func (l Layout) Seats() (n int) {
	for _, c := range l.Tables {
		n += c
	}
	return
}

// Parse a YAML-encoded Layout, such as:
//
//	tables: [2, 2, 4, 4, 6]
//
// Unknown fields are an error.
func Parse(b []byte) (Layout, error) {
	var l Layout
	if err := yaml.UnmarshalStrict(b, &l); err != nil {
		return Layout{}, errors.WithMessage(err, "decoding layout")
	}
	return l, l.Validate()
}

// Load and Parse the Layout file at |path| of the filesystem.
func Load(fs afero.Fs, path string) (Layout, error) {
	var b, err = afero.ReadFile(fs, path)
	if os.IsNotExist(err) {
		return Layout{}, errors.Errorf("layout file %q does not exist", path)
	} else if err != nil {
		return Layout{}, errors.WithMessagef(err, "reading layout %q", path)
	}
	l, err := Parse(b)
	return l, errors.WithMessagef(err, "layout %q", path)
}

// Config configures the source of a Layout: either a YAML file, or table
// capacities given directly. Exactly one must be set.
type Config struct {
	Path  string `long:"path" env:"PATH" description:"Path to a YAML file of table capacities, in seating order"`
	Sizes []int  `long:"size" env:"SIZES" env-delim:"," description:"Capacity of a table. Repeat for each table, in seating order"`
}

// Build the Layout described by the Config.
func (cfg Config) Build(fs afero.Fs) (Layout, error) {
	switch {
	case cfg.Path != "" && len(cfg.Sizes) != 0:
		return Layout{}, errors.New("expected only one of a layout path or table sizes")
	case cfg.Path != "":
		return Load(fs, cfg.Path)
	default:
		var l = Layout{Tables: append([]int(nil), cfg.Sizes...)}
		return l, l.Validate()
	}
}
