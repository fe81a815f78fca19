package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config armazena as configurações do StructureVision (cliente e servidor).
type Config struct {
	// Janela
	WindowWidth  int32  `json:"window_width"`
	WindowHeight int32  `json:"window_height"`
	WindowTitle  string `json:"window_title"`
	Fullscreen   bool   `json:"fullscreen"`
	TargetFPS    int32  `json:"target_fps"`

	// Servidor de estruturas (feed de construção)
	ServerURL  string `json:"server_url"`  // Usado pelo Cliente
	ListenAddr string `json:"listen_addr"` // Usado pelo Servidor
	SavePath   string `json:"save_path"`   // Banco SQLite do cenário (Servidor)
	TickRateHz int    `json:"tick_rate_hz"`

	// Assets e dados de jogo
	AssetsDir       string `json:"assets_dir"`
	FactionsFile    string `json:"factions_file"`
	PlayerFaction   string `json:"player_faction"`
	UploadsPerFrame int    `json:"uploads_per_frame"` // Modelos enviados para a GPU por frame

	// Observabilidade
	MetricsAddr string `json:"metrics_addr"` // Vazio desativa o endpoint /metrics

	// Câmera
	CameraSpeed       float32 `json:"camera_speed"`
	CameraSensitivity float32 `json:"camera_sensitivity"`
	ZoomSpeed         float32 `json:"zoom_speed"`

	// Debug
	ShowDebugInfo      bool `json:"show_debug_info"`
	ShowGrid           bool `json:"show_grid"`
	ShowCollisionBoxes bool `json:"show_collision_boxes"`
}

// DefaultConfig retorna a configuração padrão.
func DefaultConfig() *Config {
	return &Config{
		WindowWidth:  1280,
		WindowHeight: 720,
		WindowTitle:  "StructureVision",
		Fullscreen:   false,
		TargetFPS:    60,

		ServerURL:  "ws://127.0.0.1:8090/ws",
		ListenAddr: ":8090",
		SavePath:   "saves/structures.db",
		TickRateHz: 10,

		AssetsDir:       "assets",
		FactionsFile:    "assets/config/factions.yaml",
		PlayerFaction:   "protoss",
		UploadsPerFrame: 2,

		MetricsAddr: "",

		CameraSpeed:       10.0,
		CameraSensitivity: 0.3,
		ZoomSpeed:         5.0,

		ShowDebugInfo:      true,
		ShowGrid:           true,
		ShowCollisionBoxes: false,
	}
}

// configPath retorna o caminho do arquivo de configuração.
func configPath() string {
	execDir, err := os.Executable()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(filepath.Dir(execDir), "config.json")
}

// Load carrega as configurações do config.json ao lado do executável.
// Se o arquivo não existir ou estiver corrompido, retorna as configurações padrão.
func Load() *Config {
	cfg, err := LoadFrom(configPath())
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// LoadFrom carrega as configurações de um arquivo JSON específico.
// Campos ausentes no arquivo mantêm o valor padrão.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("falha ao ler %s: %w", path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("falha ao parsear %s: %w", path, err)
	}

	if cfg.UploadsPerFrame <= 0 {
		cfg.UploadsPerFrame = 1
	}
	if cfg.TickRateHz <= 0 {
		cfg.TickRateHz = 10
	}

	return cfg, nil
}

// Save salva as configurações em um arquivo JSON.
func (c *Config) Save() error {
	return c.SaveTo(configPath())
}

// SaveTo salva as configurações no caminho informado.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ModelsDir retorna a pasta dos modelos 3D de estruturas.
func (c *Config) ModelsDir() string {
	return filepath.Join(c.AssetsDir, "models")
}

// ManifestDir retorna a pasta dos manifestos JSON de assets.
func (c *Config) ManifestDir() string {
	return filepath.Join(c.AssetsDir, "config")
}
