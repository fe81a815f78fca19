package render

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"StructureVision/cliente/internal/observe"
	"StructureVision/cliente/internal/scene"
	"StructureVision/cliente/internal/structures"
	"StructureVision/shared/util"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	errEmptyModel    = errors.New("modelo sem malhas")
	errLoaderStopped = errors.New("loader descarregado")
)

// ModelAsset é um modelo já enviado para a GPU. É compartilhado por todas as
// estruturas do mesmo tipo; o estado por instância fica no scene.Node.
type ModelAsset struct {
	Path  string
	Model rl.Model

	lo, hi mgl32.Vec3
}

// Bounds retorna a caixa delimitadora do modelo em coordenadas locais.
func (a *ModelAsset) Bounds() (mgl32.Vec3, mgl32.Vec3) {
	return a.lo, a.hi
}

type uploadResult struct {
	asset *ModelAsset
	err   error
}

type uploadJob struct {
	path string
	done chan uploadResult // buffer 1; nil em uploads de preload
}

// ModelLoader carrega modelos do disco. A checagem de arquivo roda na goroutine
// de quem chama; o upload para a GPU só acontece na thread principal, em
// ProcessUploads, com orçamento por frame.
type ModelLoader struct {
	mu      sync.Mutex
	models  map[string]*ModelAsset
	jobs    *util.ThreadSafeQueue[uploadJob]
	metrics *observe.Metrics
}

// NewModelLoader cria o loader. metrics nil usa observe.DefaultMetrics().
func NewModelLoader(metrics *observe.Metrics) *ModelLoader {
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	return &ModelLoader{
		models:  make(map[string]*ModelAsset),
		jobs:    util.NewThreadSafeQueue[uploadJob](),
		metrics: metrics,
	}
}

func (l *ModelLoader) cached(path string) (*ModelAsset, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.models[path]
	return m, ok
}

func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &structures.AssetLoadError{Path: path, Err: err}
	}
	if info.IsDir() || info.Size() == 0 {
		return &structures.AssetLoadError{Path: path, Err: errEmptyModel}
	}
	return nil
}

// Preload agenda o upload dos caminhos existentes sem esperar pelo resultado.
// Arquivos ausentes são devolvidos juntos em um único erro.
func (l *ModelLoader) Preload(ctx context.Context, paths []string) error {
	var errs []error
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, ok := l.cached(p); ok {
			continue
		}
		if err := checkFile(p); err != nil {
			errs = append(errs, err)
			continue
		}
		l.jobs.Push(uploadJob{path: p})
	}
	return errors.Join(errs...)
}

// Load devolve o modelo do caminho, esperando o upload na thread principal.
// Falhas vêm como *structures.AssetLoadError.
func (l *ModelLoader) Load(ctx context.Context, path string) (scene.Asset, error) {
	if m, ok := l.cached(path); ok {
		return m, nil
	}
	if err := checkFile(path); err != nil {
		return nil, err
	}

	job := uploadJob{path: path, done: make(chan uploadResult, 1)}
	l.jobs.Push(job)

	select {
	case res := <-job.done:
		if res.err != nil {
			return nil, res.err
		}
		return res.asset, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ProcessUploads envia até budget modelos para a GPU. Deve ser chamado na thread
// principal, uma vez por frame. Retorna quantos jobs foram processados.
func (l *ModelLoader) ProcessUploads(budget int) int {
	processed := 0
	for processed < budget {
		job, ok := l.jobs.Pop()
		if !ok {
			break
		}
		processed++

		asset, err := l.upload(job.path)
		if job.done != nil {
			job.done <- uploadResult{asset: asset, err: err}
		}
	}
	return processed
}

func (l *ModelLoader) upload(path string) (*ModelAsset, error) {
	if m, ok := l.cached(path); ok {
		return m, nil
	}
	if !rl.IsWindowReady() {
		return nil, &structures.AssetLoadError{Path: path, Err: errors.New("janela não inicializada")}
	}

	model := rl.LoadModel(path)
	if model.MeshCount == 0 {
		log.Printf("[Renderer] FALHA ao carregar modelo: %s", path)
		return nil, &structures.AssetLoadError{Path: path, Err: errEmptyModel}
	}

	box := rl.GetModelBoundingBox(model)
	asset := &ModelAsset{
		Path:  path,
		Model: model,
		lo:    mgl32.Vec3{box.Min.X, box.Min.Y, box.Min.Z},
		hi:    mgl32.Vec3{box.Max.X, box.Max.Y, box.Max.Z},
	}

	l.mu.Lock()
	l.models[path] = asset
	l.mu.Unlock()

	l.metrics.GPUUploads.Add(context.Background(), 1)
	log.Printf("[Renderer] Modelo carregado: %s (bounds %v..%v)", path, asset.lo, asset.hi)
	return asset, nil
}

// ApplyPalette pinta o nó com a cor primária da facção. A cor é aplicada como
// tint no desenho, sem mexer nos materiais compartilhados do modelo.
func (l *ModelLoader) ApplyPalette(node *scene.Node, primary scene.Color) {
	node.Color = primary
}

// Pending retorna quantos uploads aguardam a thread principal.
func (l *ModelLoader) Pending() int {
	return l.jobs.Len()
}

// Loaded retorna quantos modelos estão na GPU.
func (l *ModelLoader) Loaded() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.models)
}

// Unload descarrega todos os modelos e falha os uploads pendentes.
// Chamar na thread principal antes de fechar a janela.
func (l *ModelLoader) Unload() {
	for _, job := range l.jobs.Drain() {
		if job.done != nil {
			job.done <- uploadResult{err: &structures.AssetLoadError{Path: job.path, Err: errLoaderStopped}}
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for path, m := range l.models {
		rl.UnloadModel(m.Model)
		delete(l.models, path)
	}
	log.Printf("[Renderer] Modelos descarregados")
}

func (l *ModelLoader) String() string {
	return fmt.Sprintf("ModelLoader(%d carregados, %d pendentes)", l.Loaded(), l.Pending())
}
