package app

import (
	"context"
	"log"
	"sync/atomic"

	"StructureVision/cliente/internal/assets"
	"StructureVision/cliente/internal/camera"
	"StructureVision/cliente/internal/client"
	"StructureVision/cliente/internal/faction"
	"StructureVision/cliente/internal/feed"
	"StructureVision/cliente/internal/observe"
	"StructureVision/cliente/internal/render"
	"StructureVision/cliente/internal/structures"
	"StructureVision/shared/config"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// AppState representa os estados possíveis da aplicação.
type AppState int

const (
	StateLoading AppState = iota // Pré-carregando modelos
	StateViewing                 // Visualizando as estruturas
	StatePaused                  // Menu de pausa
)

// App é a aplicação principal do StructureVision.
type App struct {
	Config *config.Config
	State  AppState

	Cam *camera.CameraController

	frameCount int

	// Estrutura selecionada no HUD (Tab)
	SelectedID string

	metrics   *observe.Metrics
	factions  *faction.Catalog
	manifest  *assets.Manager
	loader    *render.ModelLoader
	renderer  *render.Renderer
	resolver  *structures.Resolver
	registry  *structures.Registry
	applier   *feed.Applier
	netClient atomic.Pointer[client.NetworkClient] // Escrito pela goroutine de conexão

	ctx    context.Context
	cancel context.CancelFunc

	// Estado da tela de carregamento
	Loading         bool
	LoadingStatus   string
	LoadingProgress float32
	preloadDone     chan error
}

// New cria uma nova instância da aplicação.
func New(cfg *config.Config, metrics *observe.Metrics) *App {
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		Config:          cfg,
		State:           StateLoading,
		metrics:         metrics,
		ctx:             ctx,
		cancel:          cancel,
		Loading:         true,
		LoadingStatus:   "Carregando modelos...",
		LoadingProgress: 0.1,
		preloadDone:     make(chan error, 1),
	}
}

// Run inicia o loop principal da aplicação.
func (a *App) Run() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] Erro fatal recuperado: %v", r)
			panic(r)
		}
	}()

	rl.SetConfigFlags(rl.FlagMsaa4xHint | rl.FlagWindowResizable)
	rl.InitWindow(a.Config.WindowWidth, a.Config.WindowHeight, a.Config.WindowTitle)
	rl.SetTraceLogLevel(rl.LogWarning)

	if a.Config.Fullscreen {
		rl.ToggleFullscreen()
	}

	rl.SetTargetFPS(a.Config.TargetFPS)
	rl.SetExitKey(0)

	a.Cam = camera.New(a.Config.CameraSpeed, a.Config.CameraSensitivity, a.Config.ZoomSpeed)

	log.Println("[StructureVision] Janela inicializada com sucesso")
	log.Printf("[StructureVision] Resolução: %dx%d", a.Config.WindowWidth, a.Config.WindowHeight)

	if err := a.initSystems(); err != nil {
		log.Printf("[App] ERRO ao inicializar sistemas: %v", err)
		rl.CloseWindow()
		return
	}

	go a.connectServer()

	for !rl.WindowShouldClose() {
		a.update()
		a.draw()
	}

	a.shutdown()
	rl.CloseWindow()
}

// initSystems monta a cadeia facções -> manifesto -> loader -> resolver -> registro.
func (a *App) initSystems() error {
	cat, err := faction.LoadCatalog(a.Config.FactionsFile)
	if err != nil {
		log.Printf("[App] AVISO: usando facções padrão: %v", err)
		cat = faction.NewCatalog()
	}
	a.factions = cat
	log.Printf("[App] %d facções carregadas", cat.Len())

	manifest, err := assets.NewManager(a.Config.ManifestDir(), a.Config.ModelsDir())
	if err != nil {
		// Sem manifesto todas as estruturas usam o visual procedural.
		log.Printf("[App] AVISO: manifesto de modelos indisponível: %v", err)
		manifest = assets.NewEmptyManager(a.Config.ModelsDir())
	}
	a.manifest = manifest

	a.loader = render.NewModelLoader(a.metrics)
	a.renderer = render.NewRenderer(a.loader)
	a.resolver = structures.NewResolver(a.loader, a.manifest, a.metrics)
	a.registry = structures.NewRegistry(a.renderer, a.resolver, a.metrics)
	a.registry.SetGlobalDebugVisible(a.Config.ShowCollisionBoxes)

	a.applier = &feed.Applier{
		Registry: a.registry,
		Factions: a.factions,
		OnSelect: func(id string, selected bool) {
			if selected {
				a.SelectedID = id
			} else if a.SelectedID == id {
				a.SelectedID = ""
			}
		},
	}

	go func() {
		a.preloadDone <- a.resolver.Preload(a.ctx, structures.AllTypes())
	}()
	return nil
}

// update atualiza a lógica a cada frame.
func (a *App) update() {
	a.frameCount++

	switch a.State {
	case StateLoading:
		a.updateLoading()
	case StateViewing:
		a.updateCamera()
		a.updateInput()
		a.updateStructures()
	case StatePaused:
		a.updateInput()
		a.updateStructures()
	}
}

// shutdown realiza a limpeza de recursos.
func (a *App) shutdown() {
	log.Println("[App] Finalizando aplicação...")

	a.cancel()
	if nc := a.network(); nc != nil {
		_ = nc.Close()
	}
	if a.registry != nil {
		a.registry.Dispose()
	}
	if a.resolver != nil {
		a.resolver.Close()
	}
	if a.renderer != nil {
		a.renderer.Unload()
	}

	if err := a.Config.Save(); err != nil {
		log.Printf("[StructureVision] Erro ao salvar configurações: %v", err)
	}
}

// network retorna o cliente de rede, ou nil enquanto não conectou.
func (a *App) network() *client.NetworkClient {
	return a.netClient.Load()
}
