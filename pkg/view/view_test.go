package view

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/fractalview/pkg/cplx"
	"github.com/matzehuels/fractalview/pkg/errors"
	"github.com/matzehuels/fractalview/pkg/fractal"
	"github.com/matzehuels/fractalview/pkg/raster"
)

func testRecords() []Record {
	m := fractal.DefaultParams()
	m.Centre = cplx.New(-0.75, 0.1)
	m.Zoom = 600
	m.MaxIterations = 250
	j := fractal.JuliaParams(m)
	s := raster.DefaultScheme()
	return []Record{FromParams(m, s), FromParams(j, s)}
}

func TestRecordParamsRoundTrip(t *testing.T) {
	m := fractal.DefaultParams()
	m.Power = 3.5
	m.ZStart = cplx.New(0.1, -0.2)
	got, err := FromParams(m, raster.DefaultScheme()).Params()
	if err != nil {
		t.Fatal(err)
	}
	if got != m {
		t.Errorf("Params() = %+v, want %+v", got, m)
	}
}

func TestRecordParamsInvalid(t *testing.T) {
	r := FromParams(fractal.DefaultParams(), raster.DefaultScheme())
	r.ChunkSize = 0
	if _, err := r.Params(); !errors.Is(err, errors.ErrCodeInvalidParams) {
		t.Errorf("err = %v, want INVALID_PARAMS", err)
	}
}

func TestRecordSchemeDefault(t *testing.T) {
	s, err := Record{}.Scheme()
	if err != nil {
		t.Fatal(err)
	}
	if s != raster.DefaultScheme() {
		t.Errorf("Scheme() = %+v, want default", s)
	}
}

func TestNewValidates(t *testing.T) {
	tests := []struct {
		name    string
		view    string
		records []Record
		code    errors.Code
	}{
		{"bad name", "../x", testRecords(), errors.ErrCodeInvalidInput},
		{"one record", "ok", testRecords()[:1], errors.ErrCodeInvalidFormat},
		{"swapped", "ok", []Record{testRecords()[1], testRecords()[0]}, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.view, tt.records)
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (err %v)", got, tt.code, err)
			}
		})
	}

	v, err := New("seahorse", testRecords())
	if err != nil {
		t.Fatal(err)
	}
	if v.ID == "" || v.CreatedAt.IsZero() {
		t.Errorf("New did not set identity: %+v", v)
	}
}

func TestJSONEncoding(t *testing.T) {
	v, err := New("seahorse", testRecords())
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	var back View
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	got, err := back.Params()
	if err != nil {
		t.Fatal(err)
	}
	want, _ := v.Params()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	v, err := New("seahorse", testRecords())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, v); err != nil {
		t.Fatal(err)
	}

	got, err := s.Load(ctx, "seahorse")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != v.ID {
		t.Errorf("ID = %s, want %s", got.ID, v.ID)
	}
	gp, _ := got.Params()
	vp, _ := v.Params()
	if gp[0] != vp[0] || gp[1] != vp[1] {
		t.Errorf("loaded params differ: %+v vs %+v", gp, vp)
	}
	if o, _, _ := mustScheme(t, got).Hex(); o != "#ff0000" {
		t.Errorf("outer colour = %s, want #ff0000", o)
	}

	// replacing keeps the identity
	v2, _ := New("seahorse", testRecords())
	if err := s.Save(ctx, v2); err != nil {
		t.Fatal(err)
	}
	if v2.ID != v.ID {
		t.Errorf("replaced ID = %s, want %s", v2.ID, v.ID)
	}

	other, _ := New("antenna", testRecords())
	if err := s.Save(ctx, other); err != nil {
		t.Fatal(err)
	}
	views, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(views) != 2 || views[0].Name != "antenna" || views[1].Name != "seahorse" {
		t.Errorf("List() names = %v", names(views))
	}

	if err := s.Delete(ctx, "seahorse"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(ctx, "seahorse"); !errors.Is(err, errors.ErrCodeViewNotFound) {
		t.Errorf("Load after Delete: err = %v, want VIEW_NOT_FOUND", err)
	}
	if err := s.Delete(ctx, "seahorse"); !errors.Is(err, errors.ErrCodeViewNotFound) {
		t.Errorf("second Delete: err = %v, want VIEW_NOT_FOUND", err)
	}
}

func TestFileStoreSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "junk.toml"), []byte("not = [valid"), 0600); err != nil {
		t.Fatal(err)
	}
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	views, err := s.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(views) != 0 {
		t.Errorf("List() = %v, want empty", names(views))
	}
	if _, err := s.Load(context.Background(), "junk"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Load(junk) err = %v, want INVALID_FORMAT", err)
	}
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	e, err := fractal.NewExplorer(32, 24, fractal.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	v, _ := New("seahorse", testRecords())
	if err := v.Restore(ctx, e); err != nil {
		t.Fatal(err)
	}
	want, _ := v.Params()
	got := e.Export()
	if got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Export() = %+v, want %+v", got, want)
	}

	back, err := FromExplorer("copy", e, raster.DefaultScheme())
	if err != nil {
		t.Fatal(err)
	}
	bp, _ := back.Params()
	if bp[0] != want[0] {
		t.Errorf("FromExplorer mandelbrot = %+v, want %+v", bp[0], want[0])
	}
}

func mustScheme(t *testing.T, v *View) raster.Scheme {
	t.Helper()
	s, err := v.Scheme()
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func names(views []*View) []string {
	out := make([]string, len(views))
	for i, v := range views {
		out[i] = v.Name
	}
	return out
}
