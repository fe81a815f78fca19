// Package feed aplica os eventos do servidor de estruturas ao registro do cliente.
package feed

import (
	"fmt"
	"log"

	"StructureVision/cliente/internal/faction"
	"StructureVision/cliente/internal/structures"
	"StructureVision/shared/proto/structnet"
	"StructureVision/shared/structdata"
)

// FactionLookup resolve o id de facção recebido no evento.
type FactionLookup interface {
	Lookup(id string) *faction.Descriptor
}

// Applier traduz StructureEvent em chamadas do Registry. Roda na thread principal.
type Applier struct {
	Registry *structures.Registry
	Factions FactionLookup

	// OnSelect é chamado quando o servidor muda a seleção de uma estrutura.
	OnSelect func(id string, selected bool)
}

// Apply aplica um evento. Erros de uso do registro (id desconhecido, já concluída)
// são retornados para log; o estado do registro continua consistente.
func (a *Applier) Apply(ev *structnet.StructureEvent) error {
	switch ev.Type {
	case structnet.EventCreate:
		data := &structdata.StructureData{
			ID:         ev.ID,
			Type:       ev.Kind,
			Faction:    ev.Faction,
			Position:   structdata.Position{X: ev.X, Z: ev.Z},
			IsComplete: ev.Complete,
		}
		_, err := a.Registry.Create(data, a.Factions.Lookup(ev.Faction))
		return err
	case structnet.EventProgress:
		return a.Registry.UpdateProgress(ev.ID, ev.Progress, ev.Remaining, ev.Paused)
	case structnet.EventComplete:
		return a.Registry.Complete(ev.ID)
	case structnet.EventRemove:
		return a.Registry.Remove(ev.ID)
	case structnet.EventSelect:
		if err := a.Registry.SetSelected(ev.ID, ev.Selected); err != nil {
			return err
		}
		if a.OnSelect != nil {
			a.OnSelect(ev.ID, ev.Selected)
		}
		return nil
	}
	return fmt.Errorf("feed: evento não suportado %s", ev.Type)
}

// ApplyAll aplica um lote drenado da fila de rede e retorna quantos falharam.
func (a *Applier) ApplyAll(events []structnet.StructureEvent) int {
	failed := 0
	for i := range events {
		if err := a.Apply(&events[i]); err != nil {
			log.Printf("[Feed] Evento %s de %q ignorado: %v", events[i].Type, events[i].ID, err)
			failed++
		}
	}
	return failed
}
