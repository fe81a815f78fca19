// Package hub mantém as conexões WebSocket dos clientes e distribui os eventos
// de estrutura.
package hub

import (
	"errors"
	"log"
	"net/http"
	"sync"

	"StructureVision/shared/proto/structnet"

	"github.com/gorilla/websocket"
)

var errUnknownClient = errors.New("cliente não encontrado no hub")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler recebe o que o servidor precisa para atender um cliente.
type Handler interface {
	// Snapshot retorna os eventos que reconstroem o cenário atual.
	Snapshot() []structnet.StructureEvent
	// HandleCommand trata um comando enviado pelo cliente.
	HandleCommand(ev *structnet.StructureEvent)
}

// Hub gerencia as conexões WebSocket ativas
type Hub struct {
	clients    map[*websocket.Conn]*sync.Mutex
	broadcast  chan []byte
	unregister chan *websocket.Conn
	done       chan struct{}
	mu         sync.Mutex
}

func New() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]*sync.Mutex),
		broadcast:  make(chan []byte, 1024), // Bufferizado para não travar o tick da simulação
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
	}
}

// Run processa desregistro e broadcast até Close.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for c := range h.clients {
				c.Close()
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return
		case client := <-h.unregister:
			h.mu.Lock()
			if lock, ok := h.clients[client]; ok {
				lock.Lock()
				delete(h.clients, client)
				client.Close()
				lock.Unlock()
				log.Printf("[Hub] Cliente desregistrado: %s", client.RemoteAddr())
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			type clientEntry struct {
				conn *websocket.Conn
				lock *sync.Mutex
			}
			targets := make([]clientEntry, 0, len(h.clients))
			for c, l := range h.clients {
				targets = append(targets, clientEntry{c, l})
			}
			h.mu.Unlock()

			for _, target := range targets {
				target.lock.Lock()
				err := target.conn.WriteMessage(websocket.BinaryMessage, message)
				target.lock.Unlock()
				if err != nil {
					log.Printf("[Hub] Erro ao enviar para cliente %s: %v", target.conn.RemoteAddr(), err)
					target.conn.Close()
					h.mu.Lock()
					delete(h.clients, target.conn)
					h.mu.Unlock()
				}
			}
		}
	}
}

// Close encerra o loop do hub e fecha todas as conexões.
func (h *Hub) Close() {
	close(h.done)
}

// Clients retorna quantos clientes estão conectados.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast envia o evento para todos os clientes. Não bloqueia: com o buffer
// cheio o evento é descartado e o próximo tick reenvia o estado.
func (h *Hub) Broadcast(ev *structnet.StructureEvent) {
	select {
	case h.broadcast <- ev.Marshal():
	default:
		log.Printf("[Hub] AVISO: buffer de broadcast cheio, %s de %q descartado", ev.Type, ev.ID)
	}
}

// WriteSafe garante que apenas uma goroutine escreva no WebSocket por vez
func (h *Hub) WriteSafe(conn *websocket.Conn, ev *structnet.StructureEvent) error {
	h.mu.Lock()
	lock, ok := h.clients[conn]
	h.mu.Unlock()
	if !ok {
		return errUnknownClient
	}

	lock.Lock()
	defer lock.Unlock()
	return conn.WriteMessage(websocket.BinaryMessage, ev.Marshal())
}

// ServeWs faz o upgrade da conexão, envia o snapshot do cenário e lê os
// comandos do cliente até a desconexão.
func (h *Hub) ServeWs(handler Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("[Hub] Erro no upgrade do WebSocket: %v", err)
			return
		}

		// Registro direto (e não pelo canal) para o snapshot sair antes de
		// qualquer broadcast novo chegar a esta conexão.
		lock := &sync.Mutex{}
		lock.Lock()
		h.mu.Lock()
		h.clients[conn] = lock
		h.mu.Unlock()
		log.Printf("[Hub] Cliente registrado: %s", conn.RemoteAddr())

		snapshot := handler.Snapshot()
		for i := range snapshot {
			if err := conn.WriteMessage(websocket.BinaryMessage, snapshot[i].Marshal()); err != nil {
				log.Printf("[Hub] Erro ao enviar snapshot: %v", err)
				break
			}
		}
		lock.Unlock()
		log.Printf("[Hub] Snapshot de %d eventos enviado para %s", len(snapshot), conn.RemoteAddr())

		go func() {
			defer func() {
				select {
				case h.unregister <- conn:
				case <-h.done:
				}
			}()

			for {
				msgType, message, err := conn.ReadMessage()
				if err != nil {
					log.Printf("[Hub] Conexão encerrada (%s): %v", conn.RemoteAddr(), err)
					return
				}
				if msgType != websocket.BinaryMessage {
					continue
				}
				var ev structnet.StructureEvent
				if err := ev.Unmarshal(message); err != nil {
					log.Printf("[Hub] Comando inválido: %v", err)
					continue
				}
				handler.HandleCommand(&ev)
			}
		}()
	}
}
