package structures

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"StructureVision/cliente/internal/faction"
	"StructureVision/cliente/internal/observe"
	"StructureVision/cliente/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type fakeAsset struct {
	lo, hi mgl32.Vec3
}

func (a *fakeAsset) Bounds() (mgl32.Vec3, mgl32.Vec3) { return a.lo, a.hi }

// fakeLoader conta as chamadas e pode segurar Load até gate ser fechado.
type fakeLoader struct {
	mu       sync.Mutex
	loads    map[string]int
	preloads [][]string
	fail     map[string]error
	gate     chan struct{}
	asset    *fakeAsset
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{
		loads: make(map[string]int),
		fail:  make(map[string]error),
		asset: &fakeAsset{lo: mgl32.Vec3{-1, 0, -1}, hi: mgl32.Vec3{3, 2, 1}},
	}
}

func (f *fakeLoader) Preload(_ context.Context, paths []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.preloads = append(f.preloads, append([]string(nil), paths...))
	return nil
}

func (f *fakeLoader) Load(ctx context.Context, path string) (scene.Asset, error) {
	f.mu.Lock()
	f.loads[path]++
	gate := f.gate
	err := f.fail[path]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, &AssetLoadError{Path: path, Err: err}
	}
	return f.asset, nil
}

func (f *fakeLoader) ApplyPalette(node *scene.Node, primary scene.Color) {
	node.Color = primary
}

func (f *fakeLoader) loadCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads[path]
}

func (f *fakeLoader) preloadCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.preloads)
}

// waitFor espera cond virar verdadeira ou falha depois de 2s.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timeout esperando condição")
		}
		time.Sleep(time.Millisecond)
	}
}

type fakeCatalog map[string]string

func (c fakeCatalog) StructureModel(token string) (string, bool) {
	p, ok := c[token]
	return p, ok
}

func fullCatalog() fakeCatalog {
	return fakeCatalog{
		"BASE":          "models/base.glb",
		"SUPPLY":        "models/supply.glb",
		"BARRACKS":      "models/barracks.glb",
		"FACTORY":       "models/factory.glb",
		"GAS_EXTRACTOR": "models/gas.glb",
	}
}

// fakeScene registra o que o núcleo faz com o container.
type fakeScene struct {
	objects  map[string]*scene.Node
	added    []string
	removed  []string
	disposed []*scene.Node
	addErr   error
}

func newFakeScene() *fakeScene {
	return &fakeScene{objects: make(map[string]*scene.Node)}
}

func (s *fakeScene) AddObject(id string, root *scene.Node) error {
	if s.addErr != nil {
		return s.addErr
	}
	s.objects[id] = root
	s.added = append(s.added, id)
	return nil
}

func (s *fakeScene) RemoveObject(id string) {
	delete(s.objects, id)
	s.removed = append(s.removed, id)
}

func (s *fakeScene) DisposeObject(root *scene.Node) {
	s.disposed = append(s.disposed, root)
}

var errSceneBroken = errors.New("scene broken")

func newTestMetrics(t *testing.T) (*observe.Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

// counterTotal soma todos os data points de um counter.
func counterTotal(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %q is not a sum", name)
			}
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func newTestResolver(t *testing.T, loader *fakeLoader, catalog ModelCatalog) *Resolver {
	t.Helper()
	m, _ := newTestMetrics(t)
	r := NewResolver(loader, catalog, m)
	t.Cleanup(r.Close)
	return r
}

type registryFixture struct {
	reg    *Registry
	scene  *fakeScene
	loader *fakeLoader
	reader *sdkmetric.ManualReader
}

func newRegistryFixture(t *testing.T) *registryFixture {
	t.Helper()
	loader := newFakeLoader()
	sc := newFakeScene()
	m, reader := newTestMetrics(t)
	res := NewResolver(loader, fullCatalog(), m)
	reg := NewRegistry(sc, res, m)
	t.Cleanup(res.Close)
	t.Cleanup(reg.Dispose)
	return &registryFixture{reg: reg, scene: sc, loader: loader, reader: reader}
}

func protoss() *faction.Descriptor { return &faction.Descriptor{ID: faction.Protoss} }

func zerg() *faction.Descriptor { return &faction.Descriptor{ID: faction.Zerg} }

func approx(a, b float32) bool {
	d := a - b
	return d < 1e-5 && d > -1e-5
}
