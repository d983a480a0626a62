package fractal

import (
	"context"
	"image"
	"testing"

	"github.com/matzehuels/fractalview/pkg/cplx"
	"github.com/matzehuels/fractalview/pkg/errors"
)

func newTestExplorer(t *testing.T) *Explorer {
	t.Helper()
	e, err := NewExplorer(48, 36, DefaultParams())
	if err != nil {
		t.Fatalf("NewExplorer: %v", err)
	}
	t.Cleanup(e.Close)
	if err := e.Iterate(context.Background()); err != nil {
		t.Fatalf("Iterate: %v", err)
	}
	return e
}

func TestNewExplorerDerivesJulia(t *testing.T) {
	p := DefaultParams()
	p.Centre = cplx.New(-0.75, 0.1)
	e, err := NewExplorer(10, 10, p)
	if err != nil {
		t.Fatalf("NewExplorer: %v", err)
	}
	j := e.Julia().Params()
	if j.Variant != Julia || !j.C.Equal(p.Centre) || !j.Centre.Equal(cplx.Origin) {
		t.Errorf("julia params = %+v", j)
	}
	if j.MaxIterations != p.MaxIterations || j.Zoom != p.Zoom || j.ChunkSize != p.ChunkSize {
		t.Errorf("julia did not copy iteration settings: %+v", j)
	}

	if _, err := NewExplorer(10, 10, JuliaParams(p)); !errors.Is(err, errors.ErrCodeInvalidParams) {
		t.Errorf("NewExplorer(julia params) error = %v, want INVALID_PARAMS", err)
	}
}

func TestUndoRedoBitIdentical(t *testing.T) {
	ctx := context.Background()
	e := newTestExplorer(t)

	s0 := e.Snapshot()
	if err := e.ZoomBy(ctx, Mandelbrot, 2); err != nil {
		t.Fatalf("ZoomBy: %v", err)
	}
	s1 := e.Snapshot()
	if err := e.SetCentre(ctx, cplx.New(-0.1, 0.65)); err != nil {
		t.Fatalf("SetCentre: %v", err)
	}
	s2 := e.Snapshot()
	if err := e.SetMaxIterations(ctx, 250); err != nil {
		t.Fatalf("SetMaxIterations: %v", err)
	}
	s3 := e.Snapshot()

	steps := []struct {
		name string
		do   func(context.Context) (bool, error)
		want Snapshot
	}{
		{"undo 1", e.Undo, s2},
		{"undo 2", e.Undo, s1},
		{"undo 3", e.Undo, s0},
		{"redo 1", e.Redo, s1},
		{"redo 2", e.Redo, s2},
		{"redo 3", e.Redo, s3},
	}
	for _, st := range steps {
		ok, err := st.do(ctx)
		if err != nil || !ok {
			t.Fatalf("%s: ok = %v, err = %v", st.name, ok, err)
		}
		if got := e.Snapshot(); got != st.want {
			t.Fatalf("%s: snapshot = %+v, want %+v", st.name, got, st.want)
		}
	}

	if ok, _ := e.Redo(ctx); ok {
		t.Error("Redo() past the newest state = true")
	}
}

func TestRecordAfterUndoClearsRedo(t *testing.T) {
	ctx := context.Background()
	e := newTestExplorer(t)

	if err := e.ZoomBy(ctx, Mandelbrot, 2); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Undo(ctx); err != nil {
		t.Fatal(err)
	}
	if !e.CanRedo() {
		t.Fatal("CanRedo() = false after undo")
	}
	if err := e.SetPower(ctx, 3); err != nil {
		t.Fatal(err)
	}
	if e.CanRedo() {
		t.Error("CanRedo() = true after a new change")
	}
}

func TestUndoRestoresGrid(t *testing.T) {
	ctx := context.Background()
	e := newTestExplorer(t)
	before := e.Mandelbrot().Grid()

	if err := e.SetCentre(ctx, cplx.New(-1, 0.2)); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Undo(ctx); err != nil {
		t.Fatal(err)
	}
	after := e.Mandelbrot().Grid()
	for i := range before.Counts {
		if before.Counts[i] != after.Counts[i] {
			t.Fatalf("pixel %d: count after undo = %d, want %d", i, after.Counts[i], before.Counts[i])
		}
	}
}

func TestSetCentreBindsJulia(t *testing.T) {
	ctx := context.Background()
	e := newTestExplorer(t)
	z := cplx.New(-0.8, 0.156)

	if err := e.SetCentre(ctx, z); err != nil {
		t.Fatal(err)
	}
	if got := e.Mandelbrot().Params().Centre; !got.Equal(z) {
		t.Errorf("mandelbrot centre = %v, want %v", got, z)
	}
	if got := e.Julia().Params().C; !got.Equal(z) {
		t.Errorf("julia c = %v, want %v", got, z)
	}
	if e.Julia().Grid().Stride != 1 {
		t.Error("julia was not iterated after the change")
	}
}

func TestPan(t *testing.T) {
	ctx := context.Background()
	e := newTestExplorer(t)
	m := e.Mandelbrot().Mapper()
	want := m.Drag(image.Pt(10, 10), image.Pt(20, 5))

	if err := e.Pan(ctx, Mandelbrot, image.Pt(10, 10), image.Pt(20, 5)); err != nil {
		t.Fatal(err)
	}
	s := e.Snapshot()
	if !s.Mandelbrot.Centre.Equal(want) || !s.Julia.C.Equal(want) {
		t.Errorf("after pan centre = %v, c = %v, want %v", s.Mandelbrot.Centre, s.Julia.C, want)
	}

	julia := e.Julia().Mapper()
	want = julia.Drag(image.Pt(0, 0), image.Pt(3, 3))
	if err := e.Pan(ctx, Julia, image.Pt(0, 0), image.Pt(3, 3)); err != nil {
		t.Fatal(err)
	}
	if got := e.Snapshot(); !got.Julia.Centre.Equal(want) || !got.Julia.C.Equal(s.Julia.C) {
		t.Errorf("julia pan moved c or missed centre: %+v", got.Julia)
	}
}

func TestPanFromMovedCentre(t *testing.T) {
	ctx := context.Background()
	e := newTestExplorer(t)
	if err := e.SetCentre(ctx, cplx.New(-1, 0.25)); err != nil {
		t.Fatal(err)
	}
	m := e.Mandelbrot().Mapper()
	want := m.Drag(image.Pt(5, 5), image.Pt(9, 7))
	if err := e.Pan(ctx, Mandelbrot, image.Pt(5, 5), image.Pt(9, 7)); err != nil {
		t.Fatal(err)
	}
	if got := e.Snapshot().Mandelbrot.Centre; !got.Equal(want) {
		t.Errorf("centre = %v, want %v", got, want)
	}
}

func TestInvalidChangeIsNotRecorded(t *testing.T) {
	ctx := context.Background()
	e := newTestExplorer(t)
	before := e.Snapshot()

	if err := e.SetChunkSize(ctx, 0); !errors.Is(err, errors.ErrCodeInvalidParams) {
		t.Fatalf("SetChunkSize(0) error = %v, want INVALID_PARAMS", err)
	}
	if err := e.ZoomBy(ctx, Julia, 0); !errors.Is(err, errors.ErrCodeInvalidParams) {
		t.Fatalf("ZoomBy(0) error = %v, want INVALID_PARAMS", err)
	}
	if e.Snapshot() != before {
		t.Error("snapshot changed after rejected updates")
	}
	if e.CanUndo() {
		t.Error("rejected update was recorded")
	}
}

func TestNoOpChangeIsNotRecorded(t *testing.T) {
	ctx := context.Background()
	e := newTestExplorer(t)
	if err := e.SetPower(ctx, DefaultPower); err != nil {
		t.Fatal(err)
	}
	if err := e.SetMaxIterations(ctx, DefaultMaxIterations); err != nil {
		t.Fatal(err)
	}
	if e.CanUndo() {
		t.Error("unchanged parameters were recorded")
	}
}

func TestSetMaxIterationsExtends(t *testing.T) {
	ctx := context.Background()
	e := newTestExplorer(t)
	if err := e.SetMaxIterations(ctx, 300); err != nil {
		t.Fatal(err)
	}

	p := DefaultParams()
	p.MaxIterations = 300
	fresh := newTestSet(t, 48, 36, p)
	if err := fresh.Iterate(ctx, false); err != nil {
		t.Fatal(err)
	}
	a, b := e.Mandelbrot().Grid(), fresh.Grid()
	for i := range a.Counts {
		if a.Counts[i] != b.Counts[i] {
			t.Fatalf("pixel %d: count = %d, want %d", i, a.Counts[i], b.Counts[i])
		}
	}
	if got := e.Julia().Params().MaxIterations; got != 300 {
		t.Errorf("julia max iterations = %d, want 300", got)
	}
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	e := newTestExplorer(t)
	if err := e.SetCentre(ctx, cplx.New(-0.74, 0.18)); err != nil {
		t.Fatal(err)
	}
	if err := e.ZoomBy(ctx, Julia, 4); err != nil {
		t.Fatal(err)
	}
	records := e.Export()
	if len(records) != 2 || records[0].Variant != Mandelbrot || records[1].Variant != Julia {
		t.Fatalf("Export() = %+v", records)
	}

	other := newTestExplorer(t)
	if err := other.Import(ctx, records); err != nil {
		t.Fatalf("Import: %v", err)
	}
	if other.Snapshot() != e.Snapshot() {
		t.Errorf("imported snapshot = %+v, want %+v", other.Snapshot(), e.Snapshot())
	}
	if other.Mandelbrot().Grid().Stride != 1 {
		t.Error("Import did not run a full pass")
	}

	a, b := other.Julia().Grid(), e.Julia().Grid()
	for i := range a.Counts {
		if a.Counts[i] != b.Counts[i] {
			t.Fatalf("pixel %d: imported julia count = %d, want %d", i, a.Counts[i], b.Counts[i])
		}
	}

	swapped := []Params{records[1], records[0]}
	if err := other.Import(ctx, swapped); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Import(swapped) error = %v, want INVALID_INPUT", err)
	}
	if err := other.Import(ctx, records[:1]); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Import(one record) error = %v, want INVALID_INPUT", err)
	}
}

func TestMutatorStopsRefinement(t *testing.T) {
	ctx := context.Background()
	e := newTestExplorer(t)
	e.Refiner().Delay = 0

	if err := e.Refine(ctx, 16, nil); err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if err := e.ZoomBy(ctx, Mandelbrot, 0.5); err != nil {
		t.Fatalf("ZoomBy: %v", err)
	}
	if e.Refiner().Running() {
		t.Error("refinement still running after a navigation change")
	}
	if got := e.Mandelbrot().Grid().Stride; got != 1 {
		t.Errorf("stride after change = %d, want a full pass at 1", got)
	}
}

func TestResizeExplorer(t *testing.T) {
	ctx := context.Background()
	e := newTestExplorer(t)
	if err := e.Resize(ctx, 20, 10); err != nil {
		t.Fatal(err)
	}
	for _, s := range []*Set{e.Mandelbrot(), e.Julia()} {
		if w, h := s.Size(); w != 20 || h != 10 {
			t.Errorf("%v size = %dx%d, want 20x10", s.Params().Variant, w, h)
		}
	}
	if e.CanUndo() {
		t.Error("Resize was recorded in history")
	}
}

func TestImportUnchangedRunsPass(t *testing.T) {
	e, err := NewExplorer(24, 16, DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()
	if err := e.Import(context.Background(), e.Export()); err != nil {
		t.Fatal(err)
	}
	if e.Mandelbrot().Grid().Stride != 1 || e.Julia().Grid().Stride != 1 {
		t.Error("unchanged Import did not run a full pass")
	}
	if e.CanUndo() {
		t.Error("unchanged Import recorded history")
	}
}
