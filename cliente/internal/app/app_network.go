package app

import (
	"log"

	"StructureVision/cliente/internal/client"
	"StructureVision/shared/proto/structnet"
)

// connectServer tenta conectar ao servidor de estruturas.
func (a *App) connectServer() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] Erro em connectServer: %v", r)
		}
	}()

	nc := client.NewNetworkClient(a.Config.ServerURL, a.metrics)
	nc.OnStatus = func(msg string, connected bool) {
		log.Printf("[Server] Status: %s (conectado: %v)", msg, connected)
	}

	if err := nc.Connect(a.ctx); err != nil {
		log.Printf("[Server] Erro ao conectar: %v", err)
		return
	}
	log.Println("[Network] Conectado ao servidor de estruturas!")

	// A thread principal só passa a drenar a fila depois desta atribuição.
	a.netClient.Store(nc)
}

// pauseRequest monta o comando de pausa aceito pelo servidor: um PROGRESS
// vindo do cliente só altera o flag Paused.
func pauseRequest(id string, paused bool) *structnet.StructureEvent {
	return &structnet.StructureEvent{Type: structnet.EventProgress, ID: id, Paused: paused}
}
