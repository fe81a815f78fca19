package app

import (
	"log"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// updateCamera atualiza a câmera baseado no input.
func (a *App) updateCamera() {
	dt := rl.GetFrameTime()
	a.Cam.HandleInput(dt)
	a.Cam.Update(dt)
}

// updateInput processa entradas de teclado gerais.
func (a *App) updateInput() {
	// Toggle debug info
	if rl.IsKeyPressed(rl.KeyF3) {
		a.Config.ShowDebugInfo = !a.Config.ShowDebugInfo
	}

	// Caixas de colisão de todas as estruturas
	if rl.IsKeyPressed(rl.KeyF4) {
		a.Config.ShowCollisionBoxes = !a.Config.ShowCollisionBoxes
		a.registry.SetGlobalDebugVisible(a.Config.ShowCollisionBoxes)
		log.Printf("[App] Caixas de colisão: %v", a.Config.ShowCollisionBoxes)
	}

	if rl.IsKeyPressed(rl.KeyG) {
		a.Config.ShowGrid = !a.Config.ShowGrid
	}

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if a.State == StateViewing {
		if rl.IsKeyPressed(rl.KeyTab) {
			a.cycleSelection()
		}
		if rl.IsKeyPressed(rl.KeyBackspace) {
			a.selectStructure("")
		}
		if rl.IsKeyPressed(rl.KeyP) {
			a.togglePause()
		}
	}

	// ESC: Alternar Pausa/Menu
	if rl.IsKeyPressed(rl.KeyEscape) {
		if a.State == StateViewing {
			a.State = StatePaused
			log.Println("[App] Menu aberto")
		} else if a.State == StatePaused {
			a.State = StateViewing
			log.Println("[App] Menu fechado")
		}
	}
}
