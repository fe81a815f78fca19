package structures

import (
	"context"
	"errors"
	"sync"
	"testing"

	"StructureVision/cliente/internal/faction"
	"StructureVision/cliente/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

func TestResolveVisualScalesCentersAndPaints(t *testing.T) {
	loader := newFakeLoader()
	r := newTestResolver(t, loader, fullCatalog())

	node := r.ResolveVisual(context.Background(), TypeBase, protoss())
	if node.Kind != scene.KindModel {
		t.Fatalf("Kind = %v, want model", node.Kind)
	}
	if node.Asset != scene.Asset(loader.asset) {
		t.Error("node should reference the loaded asset")
	}
	if !node.Scale.ApproxEqual(mgl32.Vec3{1.6, 1.6, 1.6}) {
		t.Errorf("Scale = %v, want 1.6", node.Scale)
	}
	// bounds x [-1,3] z [-1,1], base no chão: centro (1, 0) * 1.6
	if !node.Position.ApproxEqual(mgl32.Vec3{-1.6, 0, 0}) {
		t.Errorf("Position = %v, want (-1.6, 0, 0)", node.Position)
	}
	pal := faction.PaletteFor(faction.Protoss)
	if node.Color != 0xffcc00 {
		t.Errorf("Color = %06x, want protoss primary ffcc00", uint32(node.Color))
	}
	if node.Accent != pal.Secondary || node.Emissive != pal.Emissive {
		t.Errorf("accent/emissive = %06x/%06x", uint32(node.Accent), uint32(node.Emissive))
	}
}

func TestResolveVisualReturnsIndependentInstances(t *testing.T) {
	loader := newFakeLoader()
	r := newTestResolver(t, loader, fullCatalog())

	a := r.ResolveVisual(context.Background(), TypeSupply, protoss())
	b := r.ResolveVisual(context.Background(), TypeSupply, protoss())
	if a == b {
		t.Fatal("each call must return a new node")
	}
	if a.Asset != b.Asset {
		t.Error("instances should share the underlying asset")
	}
	a.SetFade(0.3)
	if b.Fade != 1 {
		t.Errorf("fading one instance changed the other: Fade = %v", b.Fade)
	}
	if got := loader.loadCount("models/supply.glb"); got != 1 {
		t.Errorf("loads = %d, want 1", got)
	}
}

func TestResolveVisualFallsBackOnLoadError(t *testing.T) {
	loader := newFakeLoader()
	loader.fail["models/factory.glb"] = errors.New("corrupt")
	r := newTestResolver(t, loader, fullCatalog())

	for i := 0; i < 3; i++ {
		node := r.ResolveVisual(context.Background(), TypeFactory, zerg())
		if node.Name != "fallback:zerg" {
			t.Fatalf("Name = %q, want fallback:zerg", node.Name)
		}
	}
	if got := loader.loadCount("models/factory.glb"); got != 1 {
		t.Errorf("failed fetch retried: loads = %d, want 1", got)
	}
	if !r.Cached(TypeFactory) {
		t.Error("failure should be cached")
	}

	_, err := r.fetch(context.Background(), TypeFactory)
	var loadErr *AssetLoadError
	if !errors.As(err, &loadErr) || loadErr.Path != "models/factory.glb" {
		t.Errorf("fetch error = %v, want *AssetLoadError for factory", err)
	}
}

func TestResolveVisualWithoutManifestEntry(t *testing.T) {
	loader := newFakeLoader()
	r := newTestResolver(t, loader, fakeCatalog{})

	node := r.ResolveVisual(context.Background(), TypeBarracks, nil)
	if node.Name != "fallback:human" {
		t.Errorf("Name = %q, want fallback:human", node.Name)
	}
	if got := loader.loadCount(""); got != 0 {
		t.Errorf("loader called without a path")
	}
	_, err := r.fetch(context.Background(), TypeBarracks)
	if !errors.Is(err, ErrNoModel) {
		t.Errorf("err = %v, want ErrNoModel", err)
	}
}

func TestConcurrentResolveFetchesOnce(t *testing.T) {
	loader := newFakeLoader()
	loader.gate = make(chan struct{})
	r := newTestResolver(t, loader, fullCatalog())

	const n = 16
	var wg sync.WaitGroup
	nodes := make([]*scene.Node, n)
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			nodes[i] = r.ResolveVisual(context.Background(), TypeBarracks, protoss())
		}()
	}
	close(loader.gate)
	wg.Wait()

	if got := loader.loadCount("models/barracks.glb"); got != 1 {
		t.Errorf("loads = %d, want 1", got)
	}
	for i, node := range nodes {
		if node.Kind != scene.KindModel {
			t.Errorf("node %d Kind = %v, want model", i, node.Kind)
		}
	}
}

func TestResolveCancelledIsNotCached(t *testing.T) {
	loader := newFakeLoader()
	loader.gate = make(chan struct{})
	defer close(loader.gate)
	r := newTestResolver(t, loader, fullCatalog())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	node := r.ResolveVisual(ctx, TypeSupply, protoss())
	if node.Name != "fallback:protoss" {
		t.Errorf("Name = %q, want fallback:protoss", node.Name)
	}
	if r.Cached(TypeSupply) {
		t.Error("cancellation must not be cached")
	}
}

func TestPreloadOncePerType(t *testing.T) {
	loader := newFakeLoader()
	loader.fail["models/gas.glb"] = errors.New("missing")
	r := newTestResolver(t, loader, fullCatalog())

	if err := r.Preload(context.Background(), AllTypes()); err != nil {
		t.Fatalf("Preload: %v", err)
	}
	if err := r.Preload(context.Background(), AllTypes()); err != nil {
		t.Fatalf("second Preload: %v", err)
	}

	for _, path := range []string{"models/base.glb", "models/gas.glb", "models/factory.glb"} {
		if got := loader.loadCount(path); got != 1 {
			t.Errorf("loads[%s] = %d, want 1", path, got)
		}
	}
	if got := loader.preloadCalls(); got != 1 {
		t.Errorf("loader.Preload calls = %d, want 1", got)
	}
	for _, ct := range AllTypes() {
		if !r.Cached(ct) {
			t.Errorf("%s not cached after preload", ct)
		}
	}

	node := r.ResolveVisual(context.Background(), TypeGasExtractor, protoss())
	if node.Name != "fallback:protoss" {
		t.Errorf("gas extractor should surface its failure as fallback, got %q", node.Name)
	}
}

func TestOverlappingPreloadClaimsTypesOnce(t *testing.T) {
	loader := newFakeLoader()
	loader.gate = make(chan struct{})
	r := newTestResolver(t, loader, fullCatalog())

	first := make(chan error, 1)
	go func() { first <- r.Preload(context.Background(), AllTypes()) }()
	waitFor(t, func() bool { return loader.preloadCalls() == 1 })

	// a segunda chamada vê todos os tipos em voo e retorna sem esperar
	if err := r.Preload(context.Background(), AllTypes()); err != nil {
		t.Fatalf("second Preload: %v", err)
	}
	close(loader.gate)
	if err := <-first; err != nil {
		t.Fatalf("first Preload: %v", err)
	}

	if got := loader.preloadCalls(); got != 1 {
		t.Errorf("loader.Preload calls = %d, want 1", got)
	}
	if got := loader.loadCount("models/barracks.glb"); got != 1 {
		t.Errorf("loads = %d, want 1", got)
	}
}

func TestCancelledRequesterDoesNotAbortSharedFetch(t *testing.T) {
	loader := newFakeLoader()
	loader.gate = make(chan struct{})
	r := newTestResolver(t, loader, fullCatalog())

	ctx1, cancel1 := context.WithCancel(context.Background())
	preloaded := make(chan error, 1)
	go func() { preloaded <- r.Preload(ctx1, []CanonicalType{TypeBarracks}) }()
	waitFor(t, func() bool { return loader.loadCount("models/barracks.glb") == 1 })

	resolved := make(chan *scene.Node, 1)
	go func() { resolved <- r.ResolveVisual(context.Background(), TypeBarracks, protoss()) }()

	cancel1()
	if err := <-preloaded; !errors.Is(err, context.Canceled) {
		t.Errorf("Preload err = %v, want context.Canceled", err)
	}
	close(loader.gate)

	node := <-resolved
	if node.Kind != scene.KindModel {
		t.Errorf("Kind = %v (%q), want model", node.Kind, node.Name)
	}
	if got := loader.loadCount("models/barracks.glb"); got != 1 {
		t.Errorf("loads = %d, want 1", got)
	}
	if !r.Cached(TypeBarracks) {
		t.Error("shared fetch result not cached")
	}
}

func TestCloseStopsInflightFetch(t *testing.T) {
	loader := newFakeLoader()
	loader.gate = make(chan struct{})
	defer close(loader.gate)
	r := newTestResolver(t, loader, fullCatalog())

	resolved := make(chan *scene.Node, 1)
	go func() { resolved <- r.ResolveVisual(context.Background(), TypeFactory, protoss()) }()
	waitFor(t, func() bool { return loader.loadCount("models/factory.glb") == 1 })

	r.Close()
	if node := <-resolved; node.Name != "fallback:protoss" {
		t.Errorf("Name = %q, want fallback:protoss", node.Name)
	}
	if r.Cached(TypeFactory) {
		t.Error("cancellation must not be cached")
	}
}

func TestFallbackSizeDependsOnlyOnBase(t *testing.T) {
	r := newTestResolver(t, newFakeLoader(), fakeCatalog{})
	human := &faction.Descriptor{ID: faction.Human}

	size := func(ct CanonicalType) float32 {
		n := r.Fallback(ct, human)
		for _, c := range n.Children {
			if c.Name == "body" {
				return c.Size.X()
			}
		}
		t.Fatalf("fallback for %s has no body", ct)
		return 0
	}

	if got := size(TypeBase); got != 5 {
		t.Errorf("base body = %v, want 5", got)
	}
	for _, ct := range []CanonicalType{TypeSupply, TypeBarracks, TypeFactory, TypeGasExtractor} {
		if got := size(ct); got != 2.5 {
			t.Errorf("%s body = %v, want 2.5", ct, got)
		}
	}

	body := r.Fallback(TypeSupply, human).Children[0]
	if body.Color != faction.PaletteFor(faction.Human).Secondary {
		t.Errorf("fallback tint = %06x, want secondary", uint32(body.Color))
	}
}

func TestStyleFor(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{faction.Zerg, "zerg"},
		{faction.Protoss, "protoss"},
		{faction.Human, "human"},
		{"terran-mod", "human"},
		{"", "human"},
	}
	for _, tt := range tests {
		if got := StyleFor(tt.id).Name(); got != tt.want {
			t.Errorf("StyleFor(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
