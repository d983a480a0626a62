package view

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/fractalview/pkg/cplx"
	"github.com/matzehuels/fractalview/pkg/errors"
	"github.com/matzehuels/fractalview/pkg/fractal"
	"github.com/matzehuels/fractalview/pkg/raster"
)

// Colours is a colour scheme as hex strings.
type Colours struct {
	Outer string `toml:"outer" json:"outer" bson:"outer"`
	Edge  string `toml:"edge" json:"edge" bson:"edge"`
	Inner string `toml:"inner" json:"inner" bson:"inner"`
}

// Record is the persisted form of one set's parameters.
type Record struct {
	Variant       fractal.Variant `toml:"variant" json:"variant" bson:"variant"`
	MaxIterations int             `toml:"max_iterations" json:"max_iterations" bson:"max_iterations"`
	Power         float64         `toml:"power" json:"power" bson:"power"`
	ChunkSize     int             `toml:"chunk_size" json:"chunk_size" bson:"chunk_size"`
	Zoom          float64         `toml:"zoom" json:"zoom" bson:"zoom"`
	Centre        cplx.Number     `toml:"centre" json:"centre" bson:"centre"`
	ZStart        cplx.Number     `toml:"z_start" json:"z_start" bson:"z_start"`
	C             cplx.Number     `toml:"c" json:"c" bson:"c"`
	Colours       Colours         `toml:"colours" json:"colours" bson:"colours"`
}

// FromParams builds a record from p and the scheme it is drawn with.
func FromParams(p fractal.Params, s raster.Scheme) Record {
	outer, edge, inner := s.Hex()
	return Record{
		Variant:       p.Variant,
		MaxIterations: p.MaxIterations,
		Power:         p.Power,
		ChunkSize:     p.ChunkSize,
		Zoom:          p.Zoom,
		Centre:        p.Centre,
		ZStart:        p.ZStart,
		C:             p.C,
		Colours:       Colours{Outer: outer, Edge: edge, Inner: inner},
	}
}

// Params returns the record's parameters, validated.
func (r Record) Params() (fractal.Params, error) {
	p := fractal.Params{
		Variant:       r.Variant,
		MaxIterations: r.MaxIterations,
		Power:         r.Power,
		ChunkSize:     r.ChunkSize,
		Zoom:          r.Zoom,
		Centre:        r.Centre,
		ZStart:        r.ZStart,
		C:             r.C,
	}
	if err := p.Validate(); err != nil {
		return fractal.Params{}, err
	}
	return p, nil
}

// Scheme parses the record's colours. A record without colours uses the
// default scheme.
func (r Record) Scheme() (raster.Scheme, error) {
	if r.Colours == (Colours{}) {
		return raster.DefaultScheme(), nil
	}
	return raster.ParseScheme(r.Colours.Outer, r.Colours.Edge, r.Colours.Inner)
}

// View is a named, saved explorer state.
type View struct {
	ID        string    `toml:"id" json:"id" bson:"_id"`
	Name      string    `toml:"name" json:"name" bson:"name"`
	CreatedAt time.Time `toml:"created_at" json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `toml:"updated_at" json:"updated_at" bson:"updated_at"`
	Records   []Record  `toml:"records" json:"records" bson:"records"`
}

// New creates a view with a fresh ID. The name must be a valid view name
// and records must hold a Mandelbrot record followed by a Julia record.
func New(name string, records []Record) (*View, error) {
	v := &View{Name: name, Records: records}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	v.ID = uuid.NewString()
	v.CreatedAt, v.UpdatedAt = now, now
	return v, nil
}

// FromExplorer captures the current state of e.
func FromExplorer(name string, e *fractal.Explorer, s raster.Scheme) (*View, error) {
	params := e.Export()
	records := make([]Record, len(params))
	for i, p := range params {
		records[i] = FromParams(p, s)
	}
	return New(name, records)
}

// Validate checks the name and the record pair.
func (v *View) Validate() error {
	if err := errors.ValidateViewName(v.Name); err != nil {
		return err
	}
	_, err := v.Params()
	return err
}

// Params decodes the record pair.
func (v *View) Params() ([]fractal.Params, error) {
	if len(v.Records) != 2 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "view %q has %d records, want 2", v.Name, len(v.Records))
	}
	out := make([]fractal.Params, 2)
	for i, want := range []fractal.Variant{fractal.Mandelbrot, fractal.Julia} {
		p, err := v.Records[i].Params()
		if err != nil {
			return nil, err
		}
		if p.Variant != want {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "view %q record %d is %s, want %s", v.Name, i, p.Variant, want)
		}
		out[i] = p
	}
	return out, nil
}

// Scheme returns the colour scheme of the Mandelbrot record.
func (v *View) Scheme() (raster.Scheme, error) {
	if len(v.Records) == 0 {
		return raster.DefaultScheme(), nil
	}
	return v.Records[0].Scheme()
}

// Restore loads the view into e.
func (v *View) Restore(ctx context.Context, e *fractal.Explorer) error {
	params, err := v.Params()
	if err != nil {
		return err
	}
	return e.Import(ctx, params)
}

// Store persists views by name.
type Store interface {
	// Save creates or replaces the view with v.Name. Replacing keeps the
	// stored ID and creation time.
	Save(ctx context.Context, v *View) error
	// Load returns the named view or a VIEW_NOT_FOUND error.
	Load(ctx context.Context, name string) (*View, error)
	// List returns all views ordered by name.
	List(ctx context.Context) ([]*View, error)
	// Delete removes the named view or returns VIEW_NOT_FOUND.
	Delete(ctx context.Context, name string) error
	Close() error
}

func notFound(name string) error {
	return errors.New(errors.ErrCodeViewNotFound, "view %q not found", name)
}

// carry keeps identity fields of a stored view when v replaces it.
func carry(v, existing *View) {
	if existing != nil {
		v.ID = existing.ID
		v.CreatedAt = existing.CreatedAt
	}
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	v.UpdatedAt = now
}

func isNotFound(err error) bool {
	return errors.Is(err, errors.ErrCodeViewNotFound)
}
