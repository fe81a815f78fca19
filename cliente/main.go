package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"runtime"
	"time"

	"StructureVision/cliente/internal/app"
	"StructureVision/cliente/internal/observe"
	"StructureVision/shared/config"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const version = "0.1.0"

func main() {
	// Raylib/OpenGL exige rodar na thread principal do SO
	runtime.LockOSThread()

	serverURL := flag.String("server", "", "URL do servidor de estruturas (padrão: ws://127.0.0.1:8090/ws)")
	fullscreen := flag.Bool("fullscreen", false, "Iniciar em tela cheia")
	debug := flag.Bool("debug", false, "Mostrar informações de debug")
	collision := flag.Bool("collision", false, "Mostrar caixas de colisão")
	width := flag.Int("width", 0, "Largura da janela")
	height := flag.Int("height", 0, "Altura da janela")
	assetsDir := flag.String("assets", "", "Pasta de assets (modelos e manifestos)")
	metricsAddr := flag.String("metrics", "", "Endereço do endpoint /metrics (ex.: :9464)")
	flag.Parse()

	// Configurar Log em Arquivo
	f, err := os.OpenFile("debug_sv.log", os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err == nil {
		log.SetOutput(f)
		log.Println("--- INICIANDO STRUCTURE VISION ---")
	}

	log.SetFlags(log.Ltime | log.Lshortfile)
	log.Printf("[StructureVision] Cliente v%s", version)

	cfg := config.Load()

	// Flags sobrescrevem o config salvo
	if *serverURL != "" {
		cfg.ServerURL = *serverURL
	}
	if *fullscreen {
		cfg.Fullscreen = true
	}
	if *debug {
		cfg.ShowDebugInfo = true
	}
	if *collision {
		cfg.ShowCollisionBoxes = true
	}
	if *width > 0 {
		cfg.WindowWidth = int32(*width)
	}
	if *height > 0 {
		cfg.WindowHeight = int32(*height)
	}
	if *assetsDir != "" {
		cfg.AssetsDir = *assetsDir
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}

	shutdown, err := observe.InitProvider(context.Background(), observe.ProviderConfig{
		ServiceName:    "structurevision-cliente",
		ServiceVersion: version,
	})
	if err != nil {
		log.Printf("[Metrics] AVISO: provider indisponível, métricas desativadas: %v", err)
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				log.Printf("[Metrics] Erro ao finalizar provider: %v", err)
			}
		}()
	}

	if cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: promhttp.Handler()}
		go func() {
			log.Printf("[Metrics] Endpoint em http://%s/metrics", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("[Metrics] Erro no servidor: %v", err)
			}
		}()
		defer srv.Close()
	}

	application := app.New(cfg, observe.DefaultMetrics())
	application.Run()
}
