package structures

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"StructureVision/cliente/internal/faction"
	"StructureVision/cliente/internal/observe"
	"StructureVision/cliente/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ErrNoModel indica que o manifesto não tem modelo para o tipo.
var ErrNoModel = errors.New("nenhum modelo no manifesto")

// AssetLoader é o serviço externo que busca e cacheia modelos 3D.
// Load deve retornar *AssetLoadError quando o modelo não puder ser produzido.
type AssetLoader interface {
	Preload(ctx context.Context, paths []string) error
	Load(ctx context.Context, path string) (scene.Asset, error)
	ApplyPalette(node *scene.Node, primary scene.Color)
}

// ModelCatalog mapeia o token de um tipo canônico para o caminho do modelo.
type ModelCatalog interface {
	StructureModel(token string) (string, bool)
}

type cachedAsset struct {
	asset scene.Asset
	err   error
}

// Resolver obtém o visual de cada tipo canônico: modelo do disco quando existe,
// forma procedural caso contrário. Cada tipo é buscado no máximo uma vez por
// processo; falhas também ficam no cache.
//
// Seguro para uso concorrente.
type Resolver struct {
	loader  AssetLoader
	catalog ModelCatalog
	metrics *observe.Metrics

	group singleflight.Group

	// ctx governa as buscas compartilhadas; cancelado só por Close.
	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	cache      map[CanonicalType]cachedAsset
	preloading map[CanonicalType]bool
}

// NewResolver cria o resolver. metrics nil usa observe.DefaultMetrics().
func NewResolver(loader AssetLoader, catalog ModelCatalog, metrics *observe.Metrics) *Resolver {
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Resolver{
		loader:     loader,
		catalog:    catalog,
		metrics:    metrics,
		ctx:        ctx,
		cancel:     cancel,
		cache:      make(map[CanonicalType]cachedAsset),
		preloading: make(map[CanonicalType]bool),
	}
}

// Close cancela as buscas em voo. Depois disso, tipos fora do cache resolvem
// para o visual procedural.
func (r *Resolver) Close() {
	r.cancel()
}

// Preload aquece o loader e busca todos os tipos em paralelo. Bloqueia até o fim;
// quem chama decide se roda com `go`. Tipos já em cache ou em voo não geram nova busca.
// Falhas individuais ficam no cache e só aparecem quando o tipo é usado; o único
// erro retornado é o cancelamento do contexto.
func (r *Resolver) Preload(ctx context.Context, types []CanonicalType) error {
	var pending []CanonicalType
	var paths []string
	r.mu.Lock()
	for _, t := range types {
		if _, ok := r.cache[t]; ok || r.preloading[t] {
			continue
		}
		r.preloading[t] = true
		pending = append(pending, t)
		if path, ok := r.catalog.StructureModel(t.Token()); ok {
			paths = append(paths, path)
		}
	}
	r.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}
	defer func() {
		r.mu.Lock()
		for _, t := range pending {
			delete(r.preloading, t)
		}
		r.mu.Unlock()
	}()

	if len(paths) > 0 {
		if err := r.loader.Preload(ctx, paths); err != nil {
			log.Printf("[Resolver] AVISO: preload de %d modelos falhou: %v", len(paths), err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range pending {
		t := t
		g.Go(func() error {
			_, _ = r.fetch(gctx, t)
			return nil
		})
	}
	_ = g.Wait()
	return ctx.Err()
}

// ResolveVisual retorna um nó novo para o tipo, já escalado, centralizado e com
// a paleta da facção. Nunca falha: sem modelo, devolve o visual procedural.
func (r *Resolver) ResolveVisual(ctx context.Context, t CanonicalType, fac *faction.Descriptor) *scene.Node {
	asset, err := r.fetch(ctx, t)
	if err != nil {
		log.Printf("[Resolver] AVISO: usando visual procedural para %s: %v", t, err)
		r.metrics.RecordFallback(ctx, string(t))
		return r.Fallback(t, fac)
	}
	return r.instantiate(asset, t, fac)
}

// Fallback constrói o visual procedural do tipo no estilo da facção.
// O tamanho depende só de o tipo ser a base principal.
func (r *Resolver) Fallback(t CanonicalType, fac *faction.Descriptor) *scene.Node {
	return StyleFor(fac.Key()).Build(t == TypeBase, fac.Palette())
}

// Cached informa se o tipo já tem resultado no cache (sucesso ou falha).
func (r *Resolver) Cached(t CanonicalType) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.cache[t]
	return ok
}

func (r *Resolver) lookup(t CanonicalType) (cachedAsset, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cache[t]
	return c, ok
}

// fetch devolve o asset do tipo, buscando uma única vez. Requisições concorrentes
// do mesmo tipo aguardam a mesma busca, que roda no contexto do resolver: ctx só
// limita a espera de quem chamou. Cancelamentos não entram no cache.
func (r *Resolver) fetch(ctx context.Context, t CanonicalType) (scene.Asset, error) {
	if c, ok := r.lookup(t); ok {
		return c.asset, c.err
	}

	ch := r.group.DoChan(string(t), func() (any, error) {
		if c, ok := r.lookup(t); ok {
			return c.asset, c.err
		}

		start := time.Now()
		asset, err := r.load(r.ctx, t)
		status := "ok"
		if err != nil {
			status = "error"
		}
		r.metrics.RecordAssetLoad(r.ctx, string(t), status, time.Since(start).Seconds())

		if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			return nil, err
		}

		r.mu.Lock()
		r.cache[t] = cachedAsset{asset: asset, err: err}
		r.mu.Unlock()
		return asset, err
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(scene.Asset), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Resolver) load(ctx context.Context, t CanonicalType) (scene.Asset, error) {
	path, ok := r.catalog.StructureModel(t.Token())
	if !ok {
		return nil, &AssetLoadError{Path: t.Token(), Err: ErrNoModel}
	}
	asset, err := r.loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, &AssetLoadError{Path: path, Err: errors.New("loader retornou asset nil")}
	}
	return asset, nil
}

// instantiate cria um nó de modelo independente apontando para o asset compartilhado.
// Escala uniforme, centralizado no XZ pela caixa delimitadora e apoiado no chão.
func (r *Resolver) instantiate(asset scene.Asset, t CanonicalType, fac *faction.Descriptor) *scene.Node {
	profile := ProfileOf(t)
	pal := fac.Palette()
	s := profile.VisualScale

	lo, hi := asset.Bounds()
	center := lo.Add(hi).Mul(0.5)

	node := scene.New(scene.KindModel, "model")
	node.Asset = asset
	node.Scale = mgl32.Vec3{s, s, s}
	node.Position = mgl32.Vec3{-center.X() * s, -lo.Y() * s, -center.Z() * s}
	node.Accent = pal.Secondary
	node.Emissive = pal.Emissive
	r.loader.ApplyPalette(node, pal.Primary)
	return node
}
