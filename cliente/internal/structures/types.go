package structures

import "strings"

// CanonicalType é a família canônica de uma estrutura. Todos os identificadores
// brutos (nomes por facção) são normalizados para um destes valores.
type CanonicalType string

const (
	TypeBase         CanonicalType = "base"
	TypeSupply       CanonicalType = "supply"
	TypeBarracks     CanonicalType = "barracks"
	TypeFactory      CanonicalType = "factory"
	TypeGasExtractor CanonicalType = "gasExtractor"
)

// AllTypes lista os tipos canônicos em ordem fixa.
func AllTypes() []CanonicalType {
	return []CanonicalType{TypeBase, TypeSupply, TypeBarracks, TypeFactory, TypeGasExtractor}
}

// Token retorna o token usado no manifesto de modelos (structure_meshes.json).
func (t CanonicalType) Token() string {
	switch t {
	case TypeGasExtractor:
		return "GAS_EXTRACTOR"
	default:
		return strings.ToUpper(string(t))
	}
}

// Box são as dimensões de uma caixa de colisão. Zero em todos os eixos significa
// "sem colisão física" (unidades podem sobrepor/entrar).
type Box struct {
	Width, Height, Depth float32
}

// IsZero informa se a caixa não tem colisão física.
func (b Box) IsZero() bool {
	return b.Width == 0 && b.Height == 0 && b.Depth == 0
}

// TypeProfile é o perfil visual/colisão imutável de um tipo canônico.
type TypeProfile struct {
	Type            CanonicalType
	DisplayName     string
	VisualScale     float32
	CollisionBox    Box
	ClickHitboxSize float32
	HitboxHeight    float32
}

// HalfSize é a meia-largura do footprint de colisão (consumida pela lógica de colisão).
func (p TypeProfile) HalfSize() float32 {
	if p.CollisionBox.Width > p.CollisionBox.Depth {
		return p.CollisionBox.Width / 2
	}
	return p.CollisionBox.Depth / 2
}

// Três nomes de facção por família (humano / zerg / protoss), mais o nome canônico.
var aliases = map[string]CanonicalType{
	"base":           TypeBase,
	"command-center": TypeBase,
	"hatchery":       TypeBase,
	"nexus":          TypeBase,

	"supply":       TypeSupply,
	"supply-depot": TypeSupply,
	"overlord":     TypeSupply,
	"pylon":        TypeSupply,

	"barracks":      TypeBarracks,
	"spawning-pool": TypeBarracks,
	"gateway":       TypeBarracks,

	"factory":           TypeFactory,
	"roach-warren":      TypeFactory,
	"robotics-facility": TypeFactory,

	"gasextractor":  TypeGasExtractor,
	"gas-extractor": TypeGasExtractor,
	"refinery":      TypeGasExtractor,
	"extractor":     TypeGasExtractor,
	"assimilator":   TypeGasExtractor,
}

// Tabela exaustiva sobre os tipos canônicos.
var profiles = map[CanonicalType]TypeProfile{
	TypeBase: {
		Type:            TypeBase,
		DisplayName:     "Command Center / Hatchery / Nexus",
		VisualScale:     1.6,
		CollisionBox:    Box{Width: 6, Height: 3, Depth: 6},
		ClickHitboxSize: 6.5,
		HitboxHeight:    4,
	},
	TypeSupply: {
		Type:            TypeSupply,
		DisplayName:     "Supply Depot / Overlord / Pylon",
		VisualScale:     0.8,
		CollisionBox:    Box{Width: 2, Height: 1.5, Depth: 2},
		ClickHitboxSize: 2.5,
		HitboxHeight:    2,
	},
	TypeBarracks: {
		Type:            TypeBarracks,
		DisplayName:     "Barracks / Spawning Pool / Gateway",
		VisualScale:     1.2,
		CollisionBox:    Box{Width: 4, Height: 2.5, Depth: 4},
		ClickHitboxSize: 4.5,
		HitboxHeight:    3,
	},
	TypeFactory: {
		Type:            TypeFactory,
		DisplayName:     "Factory / Roach Warren / Robotics Facility",
		VisualScale:     1.3,
		CollisionBox:    Box{Width: 4.5, Height: 2.5, Depth: 4.5},
		ClickHitboxSize: 5,
		HitboxHeight:    3,
	},
	TypeGasExtractor: {
		Type:            TypeGasExtractor,
		DisplayName:     "Refinery / Extractor / Assimilator",
		VisualScale:     1.0,
		CollisionBox:    Box{},
		ClickHitboxSize: 3,
		HitboxHeight:    2.5,
	},
}

// Normalize converte um identificador bruto no tipo canônico.
// A busca ignora maiúsculas, espaços nas pontas e aceita '_' ou ' ' no lugar de '-'.
// Identificadores vazios ou desconhecidos retornam TypeBase.
func Normalize(identifier string) CanonicalType {
	key := strings.ToLower(strings.TrimSpace(identifier))
	key = strings.NewReplacer("_", "-", " ", "-").Replace(key)
	if t, ok := aliases[key]; ok {
		return t
	}
	return TypeBase
}

// ResolveProfile normaliza o identificador e retorna o perfil do tipo.
func ResolveProfile(identifier string) TypeProfile {
	return profiles[Normalize(identifier)]
}

// ProfileOf retorna o perfil de um tipo já canônico.
func ProfileOf(t CanonicalType) TypeProfile {
	if p, ok := profiles[t]; ok {
		return p
	}
	return profiles[TypeBase]
}
