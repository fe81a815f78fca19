// Package sim avança a construção das estruturas do cenário e publica os
// eventos correspondentes.
package sim

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	"StructureVision/shared/proto/structnet"
	"StructureVision/shared/structdata"

	"gopkg.in/yaml.v3"
)

// Broadcaster publica eventos para os clientes conectados.
type Broadcaster interface {
	Broadcast(ev *structnet.StructureEvent)
}

// Simulator é dono do estado autoritativo do cenário.
type Simulator struct {
	mu         sync.Mutex
	store      *structdata.Store
	structures map[string]*structdata.StructureModel
	out        Broadcaster
}

// New carrega o cenário persistido no store.
func New(store *structdata.Store, out Broadcaster) (*Simulator, error) {
	all, err := store.All()
	if err != nil {
		return nil, fmt.Errorf("carregar cenário: %w", err)
	}
	s := &Simulator{
		store:      store,
		structures: make(map[string]*structdata.StructureModel, len(all)),
		out:        out,
	}
	for i := range all {
		m := all[i]
		s.structures[m.ID] = &m
	}
	log.Printf("[Sim] %d estruturas carregadas do banco", len(all))
	return s, nil
}

// Seed grava o cenário inicial quando o banco está vazio.
// Retorna quantas estruturas foram criadas.
func (s *Simulator) Seed(scenario []structdata.StructureModel) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.structures) > 0 {
		return 0, nil
	}
	for i := range scenario {
		m := scenario[i]
		if m.BuildTime <= 0 {
			m.IsComplete = true
		}
		if err := s.store.Save(&m); err != nil {
			return i, err
		}
		s.structures[m.ID] = &m
	}
	log.Printf("[Sim] Cenário inicial com %d estruturas", len(scenario))
	return len(scenario), nil
}

// Tick avança dt segundos de construção, publica PROGRESS/COMPLETE e persiste
// as estruturas alteradas.
func (s *Simulator) Tick(dt float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.sortedIDs() {
		m := s.structures[id]
		if m.IsComplete || m.Paused {
			continue
		}

		m.Elapsed += dt
		if m.Elapsed >= m.BuildTime {
			m.Elapsed = m.BuildTime
			m.IsComplete = true
			s.out.Broadcast(&structnet.StructureEvent{Type: structnet.EventComplete, ID: id})
			log.Printf("[Sim] Construção concluída: %s", id)
		} else {
			s.out.Broadcast(progressEvent(m))
		}

		if err := s.store.Save(m); err != nil {
			log.Printf("[Sim] Erro ao persistir %s: %v", id, err)
		}
	}
}

// Run chama Tick na frequência dada até o contexto ser cancelado.
func (s *Simulator) Run(ctx context.Context, hz int) {
	if hz <= 0 {
		hz = 10
	}
	interval := time.Second / time.Duration(hz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Tick(float32(now.Sub(last).Seconds()))
			last = now
		}
	}
}

// Snapshot retorna CREATE para cada estrutura e PROGRESS para as que estão em obra.
func (s *Simulator) Snapshot() []structnet.StructureEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]structnet.StructureEvent, 0, len(s.structures)*2)
	for _, id := range s.sortedIDs() {
		m := s.structures[id]
		out = append(out, structnet.StructureEvent{
			Type:     structnet.EventCreate,
			ID:       m.ID,
			Kind:     m.Type,
			Faction:  m.Faction,
			X:        m.X,
			Z:        m.Z,
			Complete: m.IsComplete,
		})
		if !m.IsComplete {
			out = append(out, *progressEvent(m))
		}
	}
	return out
}

// HandleCommand trata comandos do cliente: PROGRESS só altera a pausa,
// SELECT é repassado a todos e REMOVE demole a estrutura.
func (s *Simulator) HandleCommand(ev *structnet.StructureEvent) {
	switch ev.Type {
	case structnet.EventProgress:
		if err := s.SetPaused(ev.ID, ev.Paused); err != nil {
			log.Printf("[Sim] Pausa ignorada: %v", err)
		}
	case structnet.EventSelect:
		s.mu.Lock()
		_, ok := s.structures[ev.ID]
		s.mu.Unlock()
		if ok {
			s.out.Broadcast(&structnet.StructureEvent{Type: structnet.EventSelect, ID: ev.ID, Selected: ev.Selected})
		}
	case structnet.EventRemove:
		if err := s.Remove(ev.ID); err != nil {
			log.Printf("[Sim] Remoção ignorada: %v", err)
		}
	default:
		log.Printf("[Sim] Comando %s não suportado", ev.Type)
	}
}

// SetPaused pausa ou retoma uma construção em andamento.
func (s *Simulator) SetPaused(id string, paused bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.structures[id]
	if !ok {
		return fmt.Errorf("estrutura %q desconhecida", id)
	}
	if m.IsComplete {
		return fmt.Errorf("estrutura %q já está pronta", id)
	}
	if m.Paused == paused {
		return nil
	}
	m.Paused = paused
	if err := s.store.Save(m); err != nil {
		return err
	}
	s.out.Broadcast(progressEvent(m))
	log.Printf("[Sim] %s pausada=%v", id, paused)
	return nil
}

// Remove demole a estrutura e avisa os clientes.
func (s *Simulator) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.structures[id]; !ok {
		return fmt.Errorf("estrutura %q desconhecida", id)
	}
	if err := s.store.Delete(id); err != nil {
		return err
	}
	delete(s.structures, id)
	s.out.Broadcast(&structnet.StructureEvent{Type: structnet.EventRemove, ID: id})
	return nil
}

// Get retorna uma cópia do estado da estrutura.
func (s *Simulator) Get(id string) (structdata.StructureModel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.structures[id]
	if !ok {
		return structdata.StructureModel{}, false
	}
	return *m, true
}

func (s *Simulator) sortedIDs() []string {
	ids := make([]string, 0, len(s.structures))
	for id := range s.structures {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func progressEvent(m *structdata.StructureModel) *structnet.StructureEvent {
	return &structnet.StructureEvent{
		Type:      structnet.EventProgress,
		ID:        m.ID,
		Progress:  m.Progress(),
		Remaining: m.Remaining(),
		Paused:    m.Paused,
	}
}

// scenarioFile é o formato do YAML de cenário.
type scenarioFile struct {
	Structures []struct {
		ID        string  `yaml:"id"`
		Type      string  `yaml:"type"`
		Faction   string  `yaml:"faction"`
		X         float32 `yaml:"x"`
		Z         float32 `yaml:"z"`
		BuildTime float32 `yaml:"build_time"`
	} `yaml:"structures"`
}

// LoadScenario lê um cenário YAML. Campos desconhecidos são erro.
func LoadScenario(path string) ([]structdata.StructureModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var file scenarioFile
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("cenário %s: %w", path, err)
	}

	out := make([]structdata.StructureModel, 0, len(file.Structures))
	seen := make(map[string]bool)
	for i, st := range file.Structures {
		if st.ID == "" {
			return nil, fmt.Errorf("cenário %s: estrutura %d sem id", path, i)
		}
		if seen[st.ID] {
			return nil, fmt.Errorf("cenário %s: id duplicado %q", path, st.ID)
		}
		seen[st.ID] = true
		out = append(out, structdata.StructureModel{
			ID: st.ID, Type: st.Type, Faction: st.Faction,
			X: st.X, Z: st.Z, BuildTime: st.BuildTime,
		})
	}
	return out, nil
}

// DefaultScenario é o cenário usado quando nenhum arquivo é informado:
// uma base pronta e algumas obras por facção.
func DefaultScenario() []structdata.StructureModel {
	return []structdata.StructureModel{
		{ID: "protoss-nexus", Type: "Nexus", Faction: "protoss", X: 0, Z: 0},
		{ID: "protoss-pylon-1", Type: "pylon", Faction: "protoss", X: 8, Z: 2, BuildTime: 25},
		{ID: "protoss-gateway", Type: "gateway", Faction: "protoss", X: 8, Z: -6, BuildTime: 65},
		{ID: "protoss-assimilator", Type: "assimilator", Faction: "protoss", X: -7, Z: 5, BuildTime: 30},
		{ID: "zerg-hatchery", Type: "Hatchery", Faction: "zerg", X: 30, Z: 0},
		{ID: "zerg-overlord", Type: "overlord", Faction: "zerg", X: 36, Z: 4, BuildTime: 18},
		{ID: "zerg-pool", Type: "spawning-pool", Faction: "zerg", X: 36, Z: -5, BuildTime: 46},
		{ID: "human-cc", Type: "Command Center", Faction: "human", X: -30, Z: 0},
		{ID: "human-depot", Type: "supply_depot", Faction: "human", X: -24, Z: 5, BuildTime: 21},
		{ID: "human-factory", Type: "factory", Faction: "human", X: -24, Z: -6, BuildTime: 43},
		{ID: "human-refinery", Type: "refinery", Faction: "human", X: -36, Z: 6, BuildTime: 21},
	}
}
