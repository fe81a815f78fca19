package structures

import (
	"errors"
	"math"
	"testing"

	"StructureVision/cliente/internal/faction"
	"StructureVision/cliente/internal/scene"
	"StructureVision/shared/structdata"
)

func newTestEntity(typ, fac string, complete bool) (*Entity, *fakeScene) {
	data := &structdata.StructureData{ID: "e", Type: typ, Faction: fac, IsComplete: complete}
	desc := &faction.Descriptor{ID: fac}
	placeholder := StyleFor(desc.Key()).Build(Normalize(typ) == TypeBase, desc.Palette())
	return newEntity(data, desc, placeholder, false), newFakeScene()
}

func TestNewEntityUnderConstruction(t *testing.T) {
	e, _ := newTestEntity("pylon", faction.Protoss, false)

	if e.State() != StateUnderConstruction {
		t.Fatalf("State = %v, want under construction", e.State())
	}
	if e.Type() != TypeSupply {
		t.Errorf("Type = %v, want supply", e.Type())
	}
	if !e.HasPowerField() || e.PowerFieldVisible() {
		t.Errorf("power field: has=%v visible=%v, want attached and hidden", e.HasPowerField(), e.PowerFieldVisible())
	}
	if got := e.TimerText(); got != TimerPlaceholder {
		t.Errorf("TimerText = %q, want %q", got, TimerPlaceholder)
	}
	if got := e.FillFraction(); got != MinFillFraction {
		t.Errorf("FillFraction = %v, want %v", got, MinFillFraction)
	}
	if cs, ok := e.Construction(); !ok || cs.Progress != 0 {
		t.Errorf("Construction = %+v, %v", cs, ok)
	}
	if e.Selected() || e.DebugVisible() {
		t.Error("selection and debug should start off")
	}
	if e.h.hitbox.Visible || !e.h.hitbox.Pickable {
		t.Error("hitbox must be invisible and pickable")
	}
	if e.h.selection.Visible {
		t.Error("selection ring must start hidden")
	}
}

func TestNewEntityComplete(t *testing.T) {
	e, _ := newTestEntity("pylon", faction.Protoss, true)
	if e.State() != StateComplete || e.HasOverlay() {
		t.Fatalf("State = %v overlay=%v, want complete without overlay", e.State(), e.HasOverlay())
	}
	if !e.PowerFieldVisible() {
		t.Error("power field should be visible on an already complete pylon")
	}
	if _, ok := e.Construction(); ok {
		t.Error("complete entity must not have construction state")
	}
	if e.Opacity() != 1 {
		t.Errorf("Opacity = %v, want 1", e.Opacity())
	}
}

func TestPowerFieldOnlyForProtossSupply(t *testing.T) {
	tests := []struct {
		typ, fac string
		want     bool
	}{
		{"pylon", faction.Protoss, true},
		{"supply-depot", faction.Protoss, true},
		{"Nexus", faction.Protoss, false},
		{"gateway", faction.Protoss, false},
		{"overlord", faction.Zerg, false},
		{"supply-depot", faction.Human, false},
	}
	for _, tt := range tests {
		e, _ := newTestEntity(tt.typ, tt.fac, false)
		if got := e.HasPowerField(); got != tt.want {
			t.Errorf("%s/%s HasPowerField = %v, want %v", tt.fac, tt.typ, got, tt.want)
		}
	}
}

func TestSelectionRingRadius(t *testing.T) {
	base, _ := newTestEntity("hatchery", faction.Zerg, true)
	pool, _ := newTestEntity("spawning-pool", faction.Zerg, true)
	if got := base.h.selection.Size.X(); got != 4.5 {
		t.Errorf("base ring = %v, want 4.5", got)
	}
	if got := pool.h.selection.Size.X(); got != 2.5 {
		t.Errorf("barracks ring = %v, want 2.5", got)
	}
}

func TestUpdateProgressThenComplete(t *testing.T) {
	e, sc := newTestEntity("pylon", faction.Protoss, false)

	if err := e.UpdateProgress(0.5, 30, false); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	if got := e.TimerText(); got != "0:30" {
		t.Errorf("TimerText = %q, want 0:30", got)
	}
	if got := e.FillFraction(); got != 0.5 {
		t.Errorf("FillFraction = %v, want 0.5", got)
	}
	if got := e.FillColor(); got != colorFillActive {
		t.Errorf("FillColor = %06x, want green", uint32(got))
	}
	if !approx(e.Opacity(), 0.65) {
		t.Errorf("Opacity = %v, want 0.65", e.Opacity())
	}
	if f := e.Visual().Children[0].Fade; !approx(f, 0.65) {
		t.Errorf("visual fade = %v, want 0.65", f)
	}
	if e.h.overlay.fill.Fade != 1 || e.h.overlay.timer.Fade != 1 {
		t.Error("fill and timer must not be faded")
	}
	overlayRoot := e.h.overlay.root

	if err := e.Complete(sc); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if e.State() != StateComplete || e.HasOverlay() {
		t.Fatalf("State = %v overlay=%v", e.State(), e.HasOverlay())
	}
	if _, ok := e.Construction(); ok {
		t.Error("construction state should be gone")
	}
	if !e.Data().IsComplete {
		t.Error("data.IsComplete should be set")
	}
	if !e.PowerFieldVisible() {
		t.Error("power field should be revealed")
	}
	if len(sc.disposed) != 1 || sc.disposed[0] != overlayRoot {
		t.Errorf("overlay not disposed through the container: %v", sc.disposed)
	}
	e.Root().Walk(func(n *scene.Node) bool {
		if n.Fade != 1 {
			t.Errorf("node %q Fade = %v after completion, want 1", n.Name, n.Fade)
		}
		if n == overlayRoot {
			t.Error("overlay still attached to the root")
		}
		return true
	})
}

func TestFillNeverCollapses(t *testing.T) {
	tests := []struct {
		progress float32
		want     float32
	}{
		{0, MinFillFraction},
		{-3, MinFillFraction},
		{0.01, MinFillFraction},
		{0.25, 0.25},
		{1, 1},
		{7, 1},
		{float32(math.NaN()), MinFillFraction},
	}
	for _, tt := range tests {
		e, _ := newTestEntity("barracks", faction.Human, false)
		if err := e.UpdateProgress(tt.progress, 10, false); err != nil {
			t.Fatalf("UpdateProgress(%v): %v", tt.progress, err)
		}
		if got := e.FillFraction(); got != tt.want {
			t.Errorf("UpdateProgress(%v) fill = %v, want %v", tt.progress, got, tt.want)
		}
		// borda esquerda fixa em -largura/2
		o := e.h.overlay
		left := o.fill.Position.X() - o.barWidth*o.fill.Scale.X()/2
		if !approx(left, -o.barWidth/2) {
			t.Errorf("UpdateProgress(%v) left edge = %v, want %v", tt.progress, left, -o.barWidth/2)
		}
	}
}

func TestUpdateProgressPaused(t *testing.T) {
	e, _ := newTestEntity("factory", faction.Zerg, false)
	if err := e.UpdateProgress(0.4, 90, true); err != nil {
		t.Fatal(err)
	}
	if got := e.FillColor(); got != colorFillPaused {
		t.Errorf("FillColor = %06x, want amber", uint32(got))
	}
	if got := e.TimerText(); got != "" {
		t.Errorf("TimerText = %q, want blank while paused", got)
	}
	cs, _ := e.Construction()
	if !cs.Paused {
		t.Error("Paused flag not stored")
	}

	if err := e.UpdateProgress(0.5, -4, false); err != nil {
		t.Fatal(err)
	}
	if got := e.TimerText(); got != "0:00" {
		t.Errorf("TimerText = %q, want 0:00", got)
	}
	if cs, _ := e.Construction(); cs.RemainingSeconds != 0 {
		t.Errorf("RemainingSeconds = %v, want clamped 0", cs.RemainingSeconds)
	}
}

func TestCompleteTwiceIsNoop(t *testing.T) {
	e, sc := newTestEntity("gateway", faction.Protoss, false)
	if err := e.Complete(sc); err != nil {
		t.Fatal(err)
	}
	if err := e.Complete(sc); !errors.Is(err, ErrNotUnderConstruction) {
		t.Errorf("second Complete = %v, want ErrNotUnderConstruction", err)
	}
	if e.State() != StateComplete {
		t.Errorf("State = %v, want complete", e.State())
	}
	if err := e.UpdateProgress(0.9, 1, false); !errors.Is(err, ErrNotUnderConstruction) {
		t.Errorf("UpdateProgress after complete = %v", err)
	}
	if len(sc.disposed) != 1 {
		t.Errorf("disposed %d times, want 1", len(sc.disposed))
	}

	done, sc2 := newTestEntity("gateway", faction.Protoss, true)
	if err := done.Complete(sc2); !errors.Is(err, ErrNotUnderConstruction) {
		t.Errorf("Complete without overlay = %v", err)
	}
}

func TestAnimate(t *testing.T) {
	e, sc := newTestEntity("pylon", faction.Protoss, false)
	e.Animate(2)
	if got := e.h.overlay.scaffold.RotationY; !approx(got, 2*ScaffoldSpinRate) {
		t.Errorf("scaffold RotationY = %v, want %v", got, 2*ScaffoldSpinRate)
	}
	if got := e.h.powerField.Opacity; got != 0.3 {
		t.Errorf("hidden power field animated: Opacity = %v", got)
	}

	_ = e.Complete(sc)
	e.Animate(math.Pi / 4)
	pf := e.h.powerField
	if !approx(pf.Opacity, 0.35) {
		t.Errorf("power field Opacity = %v, want 0.35", pf.Opacity)
	}
	if !approx(pf.RotationY, float32(math.Pi/4*0.2)) {
		t.Errorf("power field RotationY = %v", pf.RotationY)
	}
}

func TestDisposeMakesEntityInert(t *testing.T) {
	e, sc := newTestEntity("refinery", faction.Human, false)
	root := e.Root()

	if err := e.Dispose(sc); err != nil {
		t.Fatal(err)
	}
	if e.State() != StateRemoved || e.Root() != nil {
		t.Fatalf("State = %v, want removed", e.State())
	}
	if len(sc.disposed) != 1 || sc.disposed[0] != root {
		t.Error("root not disposed through the container")
	}

	checks := map[string]error{
		"SetSelected":     e.SetSelected(true),
		"SetDebugVisible": e.SetDebugVisible(true),
		"UpdateProgress":  e.UpdateProgress(0.5, 1, false),
		"Complete":        e.Complete(sc),
		"Dispose":         e.Dispose(sc),
	}
	for op, err := range checks {
		if !errors.Is(err, ErrRemoved) {
			t.Errorf("%s after dispose = %v, want ErrRemoved", op, err)
		}
	}
	e.Animate(1)
	if e.spliceVisual(scene.NewGroup("late")) {
		t.Error("splice after dispose should be ignored")
	}
}

func TestSpliceVisualKeepsFade(t *testing.T) {
	e, _ := newTestEntity("barracks", faction.Zerg, false)
	_ = e.UpdateProgress(0.5, 20, false)

	model := scene.New(scene.KindModel, "model")
	if !e.spliceVisual(model) {
		t.Fatal("splice rejected")
	}
	if e.Visual() != model {
		t.Error("visual slot not replaced")
	}
	if !approx(model.Fade, 0.65) {
		t.Errorf("spliced Fade = %v, want 0.65", model.Fade)
	}
	if e.h.overlay == nil || e.TimerText() != "0:20" {
		t.Error("splice disturbed the overlay")
	}
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		in   float32
		want string
	}{
		{0, "0:00"},
		{9.99, "0:09"},
		{59.9, "0:59"},
		{60, "1:00"},
		{125.5, "2:05"},
		{3600, "60:00"},
		{-1, "0:00"},
		{1e20, "9999:59"},
		{float32(math.Inf(1)), "9999:59"},
		{float32(math.NaN()), "0:00"},
	}
	for _, tt := range tests {
		if got := FormatRemaining(tt.in); got != tt.want {
			t.Errorf("FormatRemaining(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
