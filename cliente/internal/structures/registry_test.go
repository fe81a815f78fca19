package structures

import (
	"errors"
	"reflect"
	"testing"

	"StructureVision/cliente/internal/faction"
	"StructureVision/cliente/internal/scene"
	"StructureVision/shared/structdata"
)

func newData(id, typ string, complete bool) *structdata.StructureData {
	return &structdata.StructureData{ID: id, Type: typ, IsComplete: complete, Position: structdata.Position{X: 4, Z: -2}}
}

func TestCreateNexusForProtoss(t *testing.T) {
	f := newRegistryFixture(t)
	data := newData("e1", "Nexus", true)

	e, err := f.reg.Create(data, protoss())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if e.Type() != TypeBase {
		t.Errorf("Type = %v, want base", e.Type())
	}
	if e.Profile().DisplayName != "Command Center / Hatchery / Nexus" {
		t.Errorf("DisplayName = %q", e.Profile().DisplayName)
	}
	if e.HasPowerField() {
		t.Error("base must not get a power field")
	}
	if data.HalfSize != 3 {
		t.Errorf("HalfSize = %v, want 3", data.HalfSize)
	}
	if f.scene.objects["e1"] != e.Root() {
		t.Error("root not added to the scene container")
	}
	if got := e.Root().Position; got.X() != 4 || got.Z() != -2 {
		t.Errorf("root Position = %v", got)
	}
	if v := e.Visual(); v == nil || v.Name != "fallback:protoss" {
		t.Errorf("placeholder = %v, want protoss fallback", v)
	}

	f.reg.WaitPending()
	v := e.Visual()
	if v == nil || v.Kind != scene.KindModel {
		t.Fatalf("visual after resolution = %v, want model", v)
	}
	if v.Color != 0xffcc00 {
		t.Errorf("palette primary = %06x, want ffcc00", uint32(v.Color))
	}
}

func TestCreatePylonPowerField(t *testing.T) {
	f := newRegistryFixture(t)
	e, err := f.reg.Create(newData("e2", "pylon", false), protoss())
	if err != nil {
		t.Fatal(err)
	}
	if e.Type() != TypeSupply || e.State() != StateUnderConstruction {
		t.Fatalf("Type = %v State = %v", e.Type(), e.State())
	}
	if !e.HasPowerField() || e.PowerFieldVisible() {
		t.Fatal("power field should be attached and hidden")
	}

	if err := f.reg.UpdateProgress("e2", 0.5, 30, false); err != nil {
		t.Fatal(err)
	}
	if err := f.reg.Complete("e2"); err != nil {
		t.Fatal(err)
	}
	if !e.PowerFieldVisible() {
		t.Error("power field should be visible after completion")
	}
	if e.Opacity() != 1 || e.HasOverlay() {
		t.Errorf("Opacity = %v overlay = %v after completion", e.Opacity(), e.HasOverlay())
	}
	if err := f.reg.Complete("e2"); !errors.Is(err, ErrNotUnderConstruction) {
		t.Errorf("second Complete = %v", err)
	}
	if e.State() != StateComplete {
		t.Errorf("State = %v, want complete", e.State())
	}
}

func TestCreateDuplicate(t *testing.T) {
	f := newRegistryFixture(t)
	first, _ := f.reg.Create(newData("a", "barracks", true), nil)

	again, err := f.reg.Create(newData("a", "factory", false), nil)
	if !errors.Is(err, ErrDuplicateStructure) {
		t.Fatalf("err = %v, want ErrDuplicateStructure", err)
	}
	if again != first {
		t.Error("duplicate create should return the existing entity")
	}
	if len(f.scene.added) != 1 || f.reg.Len() != 1 {
		t.Errorf("added = %v Len = %d", f.scene.added, f.reg.Len())
	}
	if _, err := f.reg.Create(nil, nil); !errors.Is(err, ErrInvalidStructure) {
		t.Errorf("Create(nil) = %v", err)
	}
}

func TestCreatePropagatesSceneError(t *testing.T) {
	f := newRegistryFixture(t)
	f.scene.addErr = errSceneBroken

	if _, err := f.reg.Create(newData("a", "base", true), nil); !errors.Is(err, errSceneBroken) {
		t.Fatalf("err = %v, want scene error", err)
	}
	if f.reg.Len() != 0 {
		t.Errorf("Len = %d, want 0", f.reg.Len())
	}
}

func TestDebugVisibilityIsPerEntity(t *testing.T) {
	f := newRegistryFixture(t)
	a, _ := f.reg.Create(newData("a", "base", true), nil)
	b, _ := f.reg.Create(newData("b", "supply", true), nil)

	if err := a.SetDebugVisible(true); err != nil {
		t.Fatal(err)
	}
	if !a.h.debugBox.Visible || b.h.debugBox.Visible {
		t.Errorf("debug a=%v b=%v, want true/false", a.h.debugBox.Visible, b.h.debugBox.Visible)
	}

	f.reg.SetGlobalDebugVisible(true)
	if !b.DebugVisible() {
		t.Error("global toggle should reach live entities")
	}
	c, _ := f.reg.Create(newData("c", "factory", false), nil)
	if !c.DebugVisible() || !c.h.debugBox.Visible {
		t.Error("entities created afterwards should inherit the debug flag")
	}

	f.reg.SetGlobalDebugVisible(false)
	for _, id := range f.reg.IDs() {
		e, _ := f.reg.Get(id)
		if e.DebugVisible() {
			t.Errorf("%s still shows its debug box", id)
		}
	}
}

func TestSelection(t *testing.T) {
	f := newRegistryFixture(t)
	e, _ := f.reg.Create(newData("a", "gateway", true), protoss())

	if err := f.reg.SetSelected("a", true); err != nil {
		t.Fatal(err)
	}
	if !e.Selected() || !e.h.selection.Visible {
		t.Error("selection ring should be visible")
	}
	if e.h.debugBox.Visible || e.h.hitbox.Visible {
		t.Error("selection must not touch other nodes")
	}
	_ = f.reg.SetSelected("a", false)
	if e.h.selection.Visible {
		t.Error("selection ring should be hidden")
	}
}

func TestRemoveTwiceAndUnknownIDs(t *testing.T) {
	f := newRegistryFixture(t)
	e, _ := f.reg.Create(newData("a", "hatchery", false), zerg())
	root := e.Root()

	if err := f.reg.Remove("a"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := f.scene.objects["a"]; ok {
		t.Error("object still in the scene")
	}
	if len(f.scene.disposed) != 1 || f.scene.disposed[0] != root {
		t.Error("root not disposed")
	}
	if e.State() != StateRemoved {
		t.Errorf("State = %v, want removed", e.State())
	}

	ops := map[string]error{
		"remove":          f.reg.Remove("a"),
		"select":          f.reg.SetSelected("a", true),
		"update_progress": f.reg.UpdateProgress("a", 0.1, 1, false),
		"complete":        f.reg.Complete("a"),
		"ghost":           f.reg.Remove("never-existed"),
	}
	for op, err := range ops {
		if !errors.Is(err, ErrUnknownStructure) {
			t.Errorf("%s = %v, want ErrUnknownStructure", op, err)
		}
	}
	if got := counterTotal(t, f.reader, "structures.usage_errors"); got != int64(len(ops)) {
		t.Errorf("usage_errors = %d, want %d", got, len(ops))
	}
	if f.reg.Len() != 0 {
		t.Errorf("Len = %d, want 0", f.reg.Len())
	}
}

func TestPendingResolutionDroppedAfterRemove(t *testing.T) {
	f := newRegistryFixture(t)
	f.loader.gate = make(chan struct{})

	old, _ := f.reg.Create(newData("a", "pylon", false), protoss())
	if err := f.reg.Remove("a"); err != nil {
		t.Fatal(err)
	}
	// reaproveita o slot liberado por "a"
	fresh, _ := f.reg.Create(newData("b", "pylon", false), protoss())

	close(f.loader.gate)
	f.reg.pending.Wait()
	if got := f.reg.ProcessResolved(); got != 1 {
		t.Errorf("spliced = %d, want only the live entity", got)
	}
	if old.Visual() != nil {
		t.Error("removed entity received a visual")
	}
	if v := fresh.Visual(); v == nil || v.Kind != scene.KindModel {
		t.Errorf("live entity visual = %v, want model", v)
	}
	if got := f.loader.loadCount("models/supply.glb"); got != 1 {
		t.Errorf("loads = %d, want 1", got)
	}
}

func TestAnimateAppliesResolvedVisuals(t *testing.T) {
	f := newRegistryFixture(t)
	e, _ := f.reg.Create(newData("a", "robotics-facility", false), protoss())
	_ = f.reg.UpdateProgress("a", 0.5, 12, false)

	f.reg.pending.Wait()
	f.reg.Animate(1)

	v := e.Visual()
	if v == nil || v.Kind != scene.KindModel {
		t.Fatalf("visual = %v, want model", v)
	}
	if !approx(v.Fade, 0.65) {
		t.Errorf("spliced visual Fade = %v, want 0.65", v.Fade)
	}
	if got := e.h.overlay.scaffold.RotationY; !approx(got, ScaffoldSpinRate) {
		t.Errorf("scaffold RotationY = %v", got)
	}
}

func TestDisposeRemovesEverything(t *testing.T) {
	f := newRegistryFixture(t)
	f.loader.gate = make(chan struct{})
	for _, id := range []string{"c", "a", "b"} {
		if _, err := f.reg.Create(newData(id, "barracks", false), nil); err != nil {
			t.Fatal(err)
		}
	}
	if got := f.reg.IDs(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("IDs = %v", got)
	}

	f.reg.Dispose()
	f.reg.pending.Wait()

	if f.reg.Len() != 0 || len(f.scene.objects) != 0 {
		t.Errorf("Len = %d objects = %d after dispose", f.reg.Len(), len(f.scene.objects))
	}
	if len(f.scene.disposed) != 3 {
		t.Errorf("disposed = %d, want 3", len(f.scene.disposed))
	}
	if got := f.reg.ProcessResolved(); got != 0 {
		t.Errorf("late resolutions spliced: %d", got)
	}
}

func TestCreateWithUnknownFactionUsesDefaults(t *testing.T) {
	f := newRegistryFixture(t)
	e, err := f.reg.Create(newData("x", "", true), &faction.Descriptor{ID: "mystery"})
	if err != nil {
		t.Fatal(err)
	}
	if e.Type() != TypeBase {
		t.Errorf("Type = %v, want base", e.Type())
	}
	f.reg.WaitPending()
	if got := e.Visual().Color; got != faction.DefaultPalette().Primary {
		t.Errorf("Color = %06x, want default primary", uint32(got))
	}
}

func TestHugeRemainingTimeShowsCappedTimer(t *testing.T) {
	f := newRegistryFixture(t)
	e, _ := f.reg.Create(newData("x", "barracks", false), protoss())
	if err := f.reg.UpdateProgress("x", 0.1, 1e20, false); err != nil {
		t.Fatal(err)
	}
	if got := e.TimerText(); got != "9999:59" {
		t.Errorf("TimerText = %q, want 9999:59", got)
	}
}

func TestCreateAfterDisposeIsRejected(t *testing.T) {
	f := newRegistryFixture(t)
	f.reg.Dispose()

	e, err := f.reg.Create(newData("late", "barracks", true), protoss())
	if !errors.Is(err, ErrRemoved) {
		t.Errorf("err = %v, want ErrRemoved", err)
	}
	if e != nil || f.reg.Len() != 0 || len(f.scene.objects) != 0 {
		t.Errorf("entity = %v Len = %d objects = %d after dispose", e, f.reg.Len(), len(f.scene.objects))
	}
	if got := counterTotal(t, f.reader, "structures.usage_errors"); got != 1 {
		t.Errorf("usage_errors = %d, want 1", got)
	}
}
