package structures

import (
	"context"
	"log"
	"sort"
	"sync"

	"StructureVision/cliente/internal/faction"
	"StructureVision/cliente/internal/observe"
	"StructureVision/cliente/internal/scene"
	"StructureVision/shared/structdata"
	"StructureVision/shared/util"
)

// SceneContainer é a cena externa onde as subárvores das estruturas vivem.
// Erros de AddObject são violações de contrato e sobem sem alteração.
type SceneContainer interface {
	AddObject(id string, root *scene.Node) error
	RemoveObject(id string)
	DisposeObject(root *scene.Node)
}

// handle identifica uma entidade na arena. A geração invalida handles antigos
// quando o slot é reaproveitado.
type handle struct {
	index uint32
	gen   uint32
}

type slot struct {
	gen    uint32
	entity *Entity
}

// resolvedVisual é o resultado de uma resolução em segundo plano,
// aplicado depois na thread de renderização.
type resolvedVisual struct {
	h      handle
	visual *scene.Node
}

// Registry é a fachada das estruturas visuais: cria, atualiza e remove entidades
// por id. Todos os métodos pertencem à thread de renderização; só as resoluções
// de assets rodam em goroutines, e o resultado volta pela fila results.
type Registry struct {
	scene    SceneContainer
	resolver *Resolver
	metrics  *observe.Metrics

	slots []slot
	free  []uint32
	byID  map[string]handle

	debug    bool
	disposed bool

	results *util.ThreadSafeQueue[resolvedVisual]
	pending sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewRegistry cria a fachada. metrics nil usa observe.DefaultMetrics().
func NewRegistry(sc SceneContainer, resolver *Resolver, metrics *observe.Metrics) *Registry {
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		scene:    sc,
		resolver: resolver,
		metrics:  metrics,
		byID:     make(map[string]handle),
		results:  util.NewThreadSafeQueue[resolvedVisual](),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Create materializa a estrutura: placeholder síncrono e resolução do visual real
// em segundo plano. Escreve data.HalfSize. Id duplicado retorna a entidade existente
// junto com ErrDuplicateStructure.
func (r *Registry) Create(data *structdata.StructureData, fac *faction.Descriptor) (*Entity, error) {
	if data == nil || data.ID == "" {
		return nil, r.usage("create", "", ErrInvalidStructure)
	}
	if r.disposed {
		return nil, r.usage("create", data.ID, ErrRemoved)
	}
	if h, ok := r.byID[data.ID]; ok {
		return r.slots[h.index].entity, r.usage("create", data.ID, ErrDuplicateStructure)
	}

	profile := ResolveProfile(data.Type)
	data.HalfSize = profile.HalfSize()

	e := newEntity(data, fac, r.resolver.Fallback(profile.Type, fac), r.debug)
	if err := r.scene.AddObject(data.ID, e.root); err != nil {
		return nil, err
	}

	h := r.alloc(e)
	r.byID[data.ID] = h
	r.metrics.LiveStructures.Add(context.Background(), 1)

	r.pending.Add(1)
	go func(ctx context.Context, t CanonicalType) {
		defer r.pending.Done()
		visual := r.resolver.ResolveVisual(ctx, t, fac)
		r.results.Push(resolvedVisual{h: h, visual: visual})
	}(r.ctx, profile.Type)

	log.Printf("[Structures] Criada %s como %s (%s)", data, profile.Type, e.state)
	return e, nil
}

// ProcessResolved aplica as resoluções terminadas. Resultados de entidades já
// removidas são descartados. Retorna quantos visuais foram trocados.
func (r *Registry) ProcessResolved() int {
	spliced := 0
	for _, res := range r.results.Drain() {
		e := r.lookup(res.h)
		if e == nil {
			continue
		}
		if e.spliceVisual(res.visual) {
			spliced++
		}
	}
	return spliced
}

// WaitPending espera as resoluções em voo e aplica os resultados.
// Usado no desligamento e nos testes; no loop normal basta Animate.
func (r *Registry) WaitPending() {
	r.pending.Wait()
	r.ProcessResolved()
}

// Remove tira a estrutura da cena e libera a subárvore. Remover de novo é no-op
// reportado como id desconhecido.
func (r *Registry) Remove(id string) error {
	h, ok := r.byID[id]
	if !ok {
		return r.usage("remove", id, ErrUnknownStructure)
	}
	e := r.slots[h.index].entity

	r.scene.RemoveObject(id)
	if err := e.Dispose(r.scene); err != nil {
		return r.usage("remove", id, err)
	}

	delete(r.byID, id)
	r.release(h)
	r.metrics.LiveStructures.Add(context.Background(), -1)
	log.Printf("[Structures] Removida %s", id)
	return nil
}

// SetSelected mostra/esconde o indicador de seleção da estrutura.
func (r *Registry) SetSelected(id string, selected bool) error {
	e, err := r.get("select", id)
	if err != nil {
		return err
	}
	if err := e.SetSelected(selected); err != nil {
		return r.usage("select", id, err)
	}
	return nil
}

// UpdateProgress repassa o progresso de construção para a entidade.
func (r *Registry) UpdateProgress(id string, progress, remainingSeconds float32, paused bool) error {
	e, err := r.get("update_progress", id)
	if err != nil {
		return err
	}
	if err := e.UpdateProgress(progress, remainingSeconds, paused); err != nil {
		return r.usage("update_progress", id, err)
	}
	return nil
}

// Complete finaliza a construção da estrutura.
func (r *Registry) Complete(id string) error {
	e, err := r.get("complete", id)
	if err != nil {
		return err
	}
	if err := e.Complete(r.scene); err != nil {
		return r.usage("complete", id, err)
	}
	log.Printf("[Structures] Construção concluída: %s", id)
	return nil
}

// Animate aplica resoluções pendentes e anima todas as entidades vivas.
// Chamado uma vez por frame com o tempo em segundos.
func (r *Registry) Animate(t float64) {
	r.ProcessResolved()
	for i := range r.slots {
		if e := r.slots[i].entity; e != nil {
			e.Animate(t)
		}
	}
}

// SetGlobalDebugVisible liga/desliga as caixas de colisão de todas as entidades
// vivas e das criadas depois.
func (r *Registry) SetGlobalDebugVisible(visible bool) {
	r.debug = visible
	for i := range r.slots {
		if e := r.slots[i].entity; e != nil {
			_ = e.SetDebugVisible(visible)
		}
	}
}

// DebugVisible retorna o estado atual do modo debug global.
func (r *Registry) DebugVisible() bool { return r.debug }

// Dispose cancela as resoluções em voo e remove todas as entidades.
// Resultados que chegarem depois são descartados pela checagem de geração.
// O registro não aceita novas estruturas depois disso: Create retorna ErrRemoved.
func (r *Registry) Dispose() {
	r.disposed = true
	r.cancel()
	for _, id := range r.IDs() {
		_ = r.Remove(id)
	}
	r.results.Clear()
}

// Get retorna a entidade viva com o id.
func (r *Registry) Get(id string) (*Entity, bool) {
	h, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	e := r.lookup(h)
	return e, e != nil
}

// Len retorna o número de entidades vivas.
func (r *Registry) Len() int { return len(r.byID) }

// IDs retorna os ids vivos em ordem.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) get(op, id string) (*Entity, error) {
	h, ok := r.byID[id]
	if !ok {
		return nil, r.usage(op, id, ErrUnknownStructure)
	}
	return r.slots[h.index].entity, nil
}

// usage registra um erro de uso (log + métrica) e o devolve.
func (r *Registry) usage(op, id string, err error) error {
	log.Printf("[Structures] AVISO: %s(%q): %v", op, id, err)
	r.metrics.RecordUsageError(context.Background(), op, usageReason(err))
	return err
}

func (r *Registry) alloc(e *Entity) handle {
	if n := len(r.free); n > 0 {
		idx := r.free[n-1]
		r.free = r.free[:n-1]
		r.slots[idx].entity = e
		return handle{index: idx, gen: r.slots[idx].gen}
	}
	r.slots = append(r.slots, slot{entity: e})
	return handle{index: uint32(len(r.slots) - 1)}
}

func (r *Registry) release(h handle) {
	s := &r.slots[h.index]
	s.entity = nil
	s.gen++
	r.free = append(r.free, h.index)
}

// lookup resolve o handle; nil se a entidade já foi removida.
func (r *Registry) lookup(h handle) *Entity {
	if int(h.index) >= len(r.slots) {
		return nil
	}
	s := r.slots[h.index]
	if s.gen != h.gen {
		return nil
	}
	return s.entity
}
