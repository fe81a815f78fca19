package client

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"StructureVision/cliente/internal/observe"
	"StructureVision/shared/proto/structnet"
	"StructureVision/shared/util"

	"github.com/gorilla/websocket"
)

// ErrNotConnected é retornado por Send quando não há conexão ativa.
var ErrNotConnected = errors.New("cliente não conectado")

// NetworkClient recebe os eventos de estrutura do servidor. A leitura roda em
// goroutine própria; os eventos ficam em Events até a thread principal drená-los.
type NetworkClient struct {
	conn      *websocket.Conn
	url       string
	connected bool
	mu        sync.RWMutex
	writeMu   sync.Mutex

	MaxRetries int
	RetryDelay time.Duration

	Events  *util.ThreadSafeQueue[structnet.StructureEvent]
	metrics *observe.Metrics

	// OnStatus é chamado (na goroutine de leitura) quando a conexão muda.
	OnStatus func(msg string, connected bool)
}

// NewNetworkClient cria o cliente. metrics nil usa observe.DefaultMetrics().
func NewNetworkClient(url string, metrics *observe.Metrics) *NetworkClient {
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	return &NetworkClient{
		url:        url,
		MaxRetries: 10,
		RetryDelay: 2 * time.Second,
		Events:     util.NewThreadSafeQueue[structnet.StructureEvent](),
		metrics:    metrics,
	}
}

// Connect tenta conectar com retentativas e inicia o loop de leitura.
func (c *NetworkClient) Connect(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}

	var conn *websocket.Conn
	var err error
	for i := 0; i < c.MaxRetries; i++ {
		log.Printf("[Network] Tentativa de conexão %d/%d em %s...", i+1, c.MaxRetries, c.url)
		conn, _, err = dialer.DialContext(ctx, c.url, nil)
		if err == nil {
			break
		}
		log.Printf("[Network] Servidor ainda não está pronto: %v. Aguardando...", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.RetryDelay):
		}
	}
	if err != nil {
		log.Printf("[Network] ERRO CRÍTICO após %d tentativas: %v", c.MaxRetries, err)
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()
	c.status("Conectado", true)

	go c.readLoop(conn)
	return nil
}

func (c *NetworkClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Send envia um comando para o servidor (ex.: pausar uma construção).
func (c *NetworkClient) Send(ev *structnet.StructureEvent) error {
	c.mu.RLock()
	conn, ok := c.conn, c.connected
	c.mu.RUnlock()
	if !ok {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	err := conn.WriteMessage(websocket.BinaryMessage, ev.Marshal())
	c.writeMu.Unlock()
	if err != nil {
		log.Printf("[Network] Erro ao enviar mensagem: %v", err)
		c.setDisconnected()
	}
	return err
}

// Close fecha a conexão; o loop de leitura termina sozinho.
func (c *NetworkClient) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.connected = false
	c.mu.Unlock()
	if conn == nil {
		return nil
	}
	c.writeMu.Lock()
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()
	return conn.Close()
}

func (c *NetworkClient) readLoop(conn *websocket.Conn) {
	defer func() {
		c.setDisconnected()
		conn.Close()
	}()

	for {
		msgType, message, err := conn.ReadMessage()
		if err != nil {
			log.Printf("[Network] Conexão perdida: %v", err)
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}

		var ev structnet.StructureEvent
		if err := ev.Unmarshal(message); err != nil {
			log.Printf("[Network] Erro ao decodificar evento: %v", err)
			continue
		}
		if ev.Type == structnet.EventUnknown {
			continue
		}
		c.metrics.RecordEvent(context.Background(), ev.Type.String())
		c.Events.Push(ev)
	}
}

func (c *NetworkClient) setDisconnected() {
	c.mu.Lock()
	was := c.connected
	c.connected = false
	c.mu.Unlock()
	if was {
		c.status("Desconectado", false)
	}
}

func (c *NetworkClient) status(msg string, connected bool) {
	if c.OnStatus != nil {
		c.OnStatus(msg, connected)
	}
}
