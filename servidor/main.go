package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"StructureVision/servidor/internal/hub"
	"StructureVision/servidor/internal/sim"
	"StructureVision/shared/config"
	"StructureVision/shared/structdata"
)

func main() {
	scenarioPath := flag.String("scenario", "", "Arquivo YAML com o cenário inicial (banco vazio)")
	listen := flag.String("listen", "", "Endereço de escuta (padrão: config listen_addr)")
	flag.Parse()

	// Garante que o working directory é o mesmo diretório do executável,
	// para que caminhos relativos (saves/, tmp/) funcionem corretamente.
	if exePath, err := os.Executable(); err == nil {
		_ = os.Chdir(filepath.Dir(exePath))
	}

	log.SetFlags(log.Ltime | log.Lshortfile)
	if err := os.MkdirAll("tmp", 0755); err == nil {
		logFile, err := os.OpenFile("tmp/server.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			log.SetOutput(io.MultiWriter(os.Stdout, logFile))
		}
	}
	log.Println("[Server] StructureVision SERVER v0.1.0")

	cfg := config.Load()
	if *listen != "" {
		cfg.ListenAddr = *listen
	}

	store, err := structdata.OpenStore(cfg.SavePath)
	if err != nil {
		log.Fatalf("[Server] Erro ao abrir banco: %v", err)
	}
	defer store.Close()

	h := hub.New()
	go h.Run()
	defer h.Close()

	simulator, err := sim.New(store, h)
	if err != nil {
		log.Fatalf("[Server] %v", err)
	}

	scenario := sim.DefaultScenario()
	if *scenarioPath != "" {
		if scenario, err = sim.LoadScenario(*scenarioPath); err != nil {
			log.Fatalf("[Server] %v", err)
		}
	}
	if _, err := simulator.Seed(scenario); err != nil {
		log.Fatalf("[Server] Erro ao gravar cenário inicial: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go simulator.Run(ctx, cfg.TickRateHz)

	mux := http.NewServeMux()
	mux.Handle("/ws", h.ServeWs(simulator))

	// Verifica a porta antes para dar uma mensagem clara com outra instância aberta
	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		log.Printf("[Server] ERRO CRÍTICO: não foi possível abrir %s. Outra instância do servidor está rodando?", cfg.ListenAddr)
		log.Fatalf("[Server] Erro ao iniciar servidor: %v", err)
	}

	srv := &http.Server{Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("[Server] Servidor de estruturas em %s (%d Hz)", cfg.ListenAddr, cfg.TickRateHz)
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("[Server] Erro fatal no servidor HTTP: %v", err)
	}
	log.Println("[Server] Encerrado")
}
