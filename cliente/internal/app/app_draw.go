package app

import (
	"fmt"

	"StructureVision/cliente/internal/structures"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// draw renderiza a cena.
func (a *App) draw() {
	// Texturas dos cronômetros precisam ser atualizadas fora do BeginDrawing/Mode3D
	if !a.Loading {
		a.renderer.RefreshLabels()
	}

	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(30, 30, 40, 255))

	if a.Loading {
		a.drawLoadingScreen()
	} else {
		a.drawScene()
		a.drawHUD()
		a.drawSelectedInfo()

		if a.State == StatePaused {
			a.drawPauseMenu()
		}
	}

	rl.EndDrawing()
}

// drawScene renderiza a cena 3D.
func (a *App) drawScene() {
	rl.BeginMode3D(a.Cam.RLCamera)

	if a.Config.ShowGrid {
		rl.DrawGrid(60, 2)
	}
	a.renderer.Draw(a.Cam.RLCamera)

	rl.EndMode3D()
}

// drawHUD desenha a interface sobreposta.
func (a *App) drawHUD() {
	if !a.Config.ShowDebugInfo {
		return
	}

	width := int32(340)
	height := int32(200)
	x := int32(rl.GetScreenWidth()) - width - 10
	y := int32(10)

	rl.DrawRectangle(x, y, width, height, rl.NewColor(0, 0, 0, 180))
	rl.DrawRectangleLines(x, y, width, height, rl.NewColor(50, 50, 50, 255))

	// FPS
	fps := rl.GetFPS()
	fpsColor := rl.Green
	if fps < 30 {
		fpsColor = rl.Red
	} else if fps < 50 {
		fpsColor = rl.Yellow
	}
	rl.DrawText(fmt.Sprintf("FPS: %d", fps), x+10, y+10, 20, fpsColor)

	syncStatus, syncColor := "Offline", rl.Red
	if nc := a.network(); nc != nil && nc.IsConnected() {
		syncStatus, syncColor = "Conectado", rl.Green
	}
	rl.DrawText(syncStatus, x+215, y+10, 20, syncColor)

	rl.DrawLine(x+10, y+35, x+width-10, y+35, rl.NewColor(100, 100, 100, 100))

	// Cena
	rl.DrawText("CENA", x+10, y+45, 12, rl.Gray)
	stats := a.renderer.Stats()
	rl.DrawText(fmt.Sprintf("Estruturas: %d | Nós: %d | Labels: %d", a.registry.Len(), stats.Nodes, stats.Labels), x+10, y+60, 14, rl.White)
	rl.DrawText(fmt.Sprintf("Modelos: %d na GPU, %d pendentes", a.loader.Loaded(), a.loader.Pending()), x+10, y+80, 14, rl.LightGray)

	look := a.Cam.CurrentLookAt
	rl.DrawText(fmt.Sprintf("Câmera: (%.1f, %.1f)", look.X(), look.Z()), x+10, y+100, 14, rl.LightGray)

	rl.DrawLine(x+10, y+120, x+width-10, y+120, rl.NewColor(100, 100, 100, 100))

	// Atalhos Rápidos
	rl.DrawText("CONTROLES", x+10, y+130, 12, rl.Gray)
	rl.DrawText("Tab: Selecionar | P: Pausar obra | WASD: Mover", x+10, y+145, 14, rl.LightGray)

	debugExtra := ""
	if a.registry.DebugVisible() {
		debugExtra = " [COLISÃO ON]"
	}
	rl.DrawText(fmt.Sprintf("F3: HUD | F4: Colisão | G: Grid%s", debugExtra), x+10, y+170, 14, rl.SkyBlue)

	title := "StructureVision v0.1.0"
	titleWidth := rl.MeasureText(title, 18)
	rl.DrawText(title,
		int32(rl.GetScreenWidth())-titleWidth-20, int32(rl.GetScreenHeight())-30,
		18, rl.NewColor(200, 200, 200, 150))
}

// drawSelectedInfo mostra o painel de inspeção da estrutura selecionada.
func (a *App) drawSelectedInfo() {
	if a.SelectedID == "" {
		return
	}
	e, ok := a.registry.Get(a.SelectedID)
	if !ok {
		return
	}

	width := int32(300)
	height := int32(170)
	x := int32(10)
	y := int32(10)

	rl.DrawRectangle(x, y, width, height, rl.NewColor(0, 0, 0, 200))
	rl.DrawRectangleLines(x, y, width, height, rl.NewColor(255, 215, 0, 255))

	profile := e.Profile()
	rl.DrawText("INSPEÇÃO DE ESTRUTURA", x+15, y+15, 18, rl.Gold)
	rl.DrawLine(x+15, y+40, x+width-15, y+40, rl.NewColor(100, 100, 100, 255))

	data := e.Data()
	rl.DrawText(fmt.Sprintf("%s (%s)", data.ID, data.Type), x+15, y+50, 16, rl.White)
	rl.DrawText(profile.DisplayName, x+15, y+70, 14, rl.LightGray)
	rl.DrawText(fmt.Sprintf("Facção: %s | Meia-largura: %.2f", e.Faction().Key(), data.HalfSize), x+15, y+90, 14, rl.LightGray)

	if cs, building := e.Construction(); building {
		status := fmt.Sprintf("Construindo: %.0f%% (%s)", cs.Progress*100, structures.FormatRemaining(cs.RemainingSeconds))
		color := rl.Green
		if cs.Paused {
			status = fmt.Sprintf("PAUSADA em %.0f%%", cs.Progress*100)
			color = rl.Orange
		}
		rl.DrawText(status, x+15, y+115, 16, color)

		barWidth := width - 30
		rl.DrawRectangle(x+15, y+140, barWidth, 12, rl.DarkGray)
		rl.DrawRectangle(x+15, y+140, int32(float32(barWidth)*cs.Progress), 12, color)
	} else {
		rl.DrawText(e.State().String(), x+15, y+115, 16, rl.Green)
		if e.HasPowerField() {
			rl.DrawText(fmt.Sprintf("Campo de energia: raio %.1f", e.Faction().PowerFieldRadius()), x+15, y+140, 14, rl.SkyBlue)
		}
	}
}

// drawPauseMenu desenha o menu de escape centralizado.
func (a *App) drawPauseMenu() {
	screenWidth := int32(rl.GetScreenWidth())
	screenHeight := int32(rl.GetScreenHeight())

	rl.DrawRectangle(0, 0, screenWidth, screenHeight, rl.NewColor(0, 0, 0, 150))

	panelWidth := int32(400)
	panelHeight := int32(240)
	panelX := (screenWidth - panelWidth) / 2
	panelY := (screenHeight - panelHeight) / 2

	rl.DrawRectangle(panelX, panelY, panelWidth, panelHeight, rl.NewColor(30, 30, 35, 255))
	rl.DrawRectangleLines(panelX, panelY, panelWidth, panelHeight, rl.White)

	menuTitle := "MENU"
	titleWidth := rl.MeasureText(menuTitle, 24)
	rl.DrawText(menuTitle, panelX+(panelWidth-titleWidth)/2, panelY+30, 24, rl.Gold)

	buttonX := panelX + 50
	buttonWidth := panelWidth - 100
	buttonHeight := int32(40)

	if a.drawButton(buttonX, panelY+90, buttonWidth, buttonHeight, "RETOMAR (ESC)", rl.Green) {
		a.State = StateViewing
	}

	label := "MOSTRAR COLISÃO (F4)"
	if a.registry.DebugVisible() {
		label = "ESCONDER COLISÃO (F4)"
	}
	if a.drawButton(buttonX, panelY+145, buttonWidth, buttonHeight, label, rl.Gray) {
		a.Config.ShowCollisionBoxes = !a.registry.DebugVisible()
		a.registry.SetGlobalDebugVisible(a.Config.ShowCollisionBoxes)
	}
}

// drawButton desenha um botão genérico com hover e retorna true se clicado.
func (a *App) drawButton(x, y, w, h int32, text string, color rl.Color) bool {
	mousePos := rl.GetMousePosition()
	isHover := mousePos.X >= float32(x) && mousePos.X <= float32(x+w) &&
		mousePos.Y >= float32(y) && mousePos.Y <= float32(y+h)

	drawColor := color
	if isHover {
		drawColor.R += 30
		drawColor.G += 30
		drawColor.B += 30
	}

	rl.DrawRectangle(x, y, w, h, rl.NewColor(50, 50, 50, 255))
	rl.DrawRectangleLines(x, y, w, h, drawColor)

	textWidth := rl.MeasureText(text, 18)
	rl.DrawText(text, x+(w-textWidth)/2, y+(h-18)/2, 18, rl.White)

	return isHover && rl.IsMouseButtonPressed(rl.MouseLeftButton)
}

func (a *App) drawLoadingScreen() {
	screenWidth := int32(rl.GetScreenWidth())
	screenHeight := int32(rl.GetScreenHeight())

	rl.DrawRectangle(0, 0, screenWidth, screenHeight, rl.NewColor(20, 20, 25, 255))

	title := "STRUCTUREVISION"
	titleWidth := rl.MeasureText(title, 40)
	rl.DrawText(title, (screenWidth-titleWidth)/2, screenHeight/2-60, 40, rl.Gold)

	barWidth := int32(400)
	barHeight := int32(30)
	barX := (screenWidth - barWidth) / 2
	barY := screenHeight/2 + 20

	rl.DrawRectangle(barX, barY, barWidth, barHeight, rl.DarkGray)
	rl.DrawRectangle(barX, barY, int32(float32(barWidth)*a.LoadingProgress), barHeight, rl.Orange)
	rl.DrawRectangleLines(barX, barY, barWidth, barHeight, rl.White)

	statusWidth := rl.MeasureText(a.LoadingStatus, 18)
	rl.DrawText(a.LoadingStatus, (screenWidth-statusWidth)/2, barY+45, 18, rl.LightGray)
}
