package app

import (
	"fmt"
	"log"

	"StructureVision/cliente/internal/structures"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// loadingTimeout encerra a tela de carregamento mesmo com modelos pendentes;
// o que faltar continua chegando pelos placeholders.
const loadingTimeout = 15.0

// updateLoading sobe os modelos pré-carregados e decide quando sair do loading.
func (a *App) updateLoading() {
	// Durante o loading o orçamento de upload é maior para agilizar
	a.loader.ProcessUploads(a.Config.UploadsPerFrame * 8)

	total := len(structures.AllTypes())
	loaded := a.loader.Loaded()
	a.LoadingProgress = 0.1 + 0.9*float32(loaded)/float32(total)
	a.LoadingStatus = fmt.Sprintf("Carregando modelos: %d/%d", loaded, total)

	select {
	case err := <-a.preloadDone:
		if err != nil {
			log.Printf("[App] Pré-carregamento interrompido: %v", err)
		}
		a.finishLoading()
	default:
		if rl.GetTime() > loadingTimeout {
			log.Printf("[App] Loading encerrado por tempo (%s)", a.loader)
			a.finishLoading()
		}
	}
}

func (a *App) finishLoading() {
	a.Loading = false
	a.LoadingProgress = 1.0
	a.State = StateViewing
	log.Printf("[App] Loading concluído! %s", a.loader)
}

// updateStructures aplica os eventos da rede, os uploads do frame e a animação.
// Tudo aqui roda na thread principal, que é dona do registro.
func (a *App) updateStructures() {
	if nc := a.network(); nc != nil {
		if events := nc.Events.Drain(); len(events) > 0 {
			a.applier.ApplyAll(events)
		}
	}

	a.loader.ProcessUploads(a.Config.UploadsPerFrame)
	a.registry.Animate(rl.GetTime())

	if a.SelectedID != "" {
		if _, ok := a.registry.Get(a.SelectedID); !ok {
			a.SelectedID = ""
		}
	}
}

// cycleSelection seleciona a próxima estrutura (Tab) e centraliza a câmera nela.
func (a *App) cycleSelection() {
	ids := a.registry.IDs()
	if len(ids) == 0 {
		return
	}

	next := ids[0]
	for i, id := range ids {
		if id == a.SelectedID && i+1 < len(ids) {
			next = ids[i+1]
			break
		}
	}
	a.selectStructure(next)
}

func (a *App) selectStructure(id string) {
	if a.SelectedID != "" {
		_ = a.registry.SetSelected(a.SelectedID, false)
	}
	a.SelectedID = id
	if id == "" {
		return
	}
	if err := a.registry.SetSelected(id, true); err != nil {
		a.SelectedID = ""
		return
	}
	if e, ok := a.registry.Get(id); ok {
		pos := e.Data().Position
		a.Cam.FocusOn(pos.X, pos.Z)
	}
}

// togglePause pede ao servidor para pausar/retomar a construção selecionada.
func (a *App) togglePause() {
	nc := a.network()
	if a.SelectedID == "" || nc == nil {
		return
	}
	e, ok := a.registry.Get(a.SelectedID)
	if !ok {
		return
	}
	cs, building := e.Construction()
	if !building {
		return
	}
	if err := nc.Send(pauseRequest(a.SelectedID, !cs.Paused)); err != nil {
		log.Printf("[App] Falha ao pedir pausa de %s: %v", a.SelectedID, err)
	}
}
