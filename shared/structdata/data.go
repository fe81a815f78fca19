package structdata

import "fmt"

// Position é a posição de uma estrutura no plano do chão.
// O eixo Y é sempre o nível do solo e por isso não é armazenado.
type Position struct {
	X float32 `json:"x"`
	Z float32 `json:"z"`
}

// StructureData descreve uma estrutura do jogador.
// Pertence à lógica de jogo (ou ao feed do servidor); o cliente apenas a referencia.
type StructureData struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"` // Identificador bruto ("Nexus", "pylon", ...)
	Faction    string   `json:"faction"`
	Position   Position `json:"position"`
	IsComplete bool     `json:"is_complete"`

	// HalfSize é escrito pelo cliente a partir do perfil do tipo,
	// para consumidores de colisão.
	HalfSize float32 `json:"half_size"`
}

// String retorna uma representação curta para logs.
func (d *StructureData) String() string {
	if d == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s(%s/%s @ %.1f,%.1f)", d.ID, d.Faction, d.Type, d.Position.X, d.Position.Z)
}
