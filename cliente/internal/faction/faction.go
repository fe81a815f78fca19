// Package faction carrega os descritores de facção (YAML) e resolve as paletas de cor.
package faction

import (
	"fmt"
	"io"
	"os"
	"strings"

	"StructureVision/cliente/internal/scene"

	"gopkg.in/yaml.v3"
)

// IDs de facção conhecidos.
const (
	Human   = "human"
	Zerg    = "zerg"
	Protoss = "protoss"
)

// DefaultPowerFieldRadius é usado quando o descritor não define o raio do campo de energia.
const DefaultPowerFieldRadius float32 = 6.5

// Palette é o esquema de cores de uma facção.
type Palette struct {
	Primary   scene.Color
	Secondary scene.Color
	Emissive  scene.Color
}

// Uma paleta fixa por facção; ids desconhecidos usam a paleta humana.
var palettes = map[string]Palette{
	Human:   {Primary: 0x4a90d9, Secondary: 0x2c3e50, Emissive: 0x66ccff},
	Zerg:    {Primary: 0x8e44ad, Secondary: 0x4a235a, Emissive: 0xff3366},
	Protoss: {Primary: 0xffcc00, Secondary: 0x1f3a93, Emissive: 0x00e5ff},
}

// DefaultPalette retorna a paleta usada para facções desconhecidas.
func DefaultPalette() Palette {
	return palettes[Human]
}

// PaletteFor retorna a paleta de um id de facção (case-insensitive).
func PaletteFor(id string) Palette {
	if p, ok := palettes[strings.ToLower(strings.TrimSpace(id))]; ok {
		return p
	}
	return DefaultPalette()
}

// Balance agrupa os números de balanceamento relevantes para o visual.
type Balance struct {
	PowerFieldRadius *float32 `yaml:"power_field_radius"`
}

// Descriptor descreve uma facção (somente leitura para o cliente).
type Descriptor struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Balance *Balance `yaml:"balance"`
}

// Key retorna o id normalizado da facção.
func (d *Descriptor) Key() string {
	if d == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(d.ID))
}

// Palette retorna a paleta da facção. Descritor nil usa a paleta padrão.
func (d *Descriptor) Palette() Palette {
	return PaletteFor(d.Key())
}

// PowerFieldRadius retorna o raio do campo de energia, ou o padrão se ausente/inválido.
func (d *Descriptor) PowerFieldRadius() float32 {
	if d == nil || d.Balance == nil || d.Balance.PowerFieldRadius == nil || *d.Balance.PowerFieldRadius <= 0 {
		return DefaultPowerFieldRadius
	}
	return *d.Balance.PowerFieldRadius
}

// Catalog é o conjunto de facções carregado do factions.yaml.
type Catalog struct {
	byID map[string]*Descriptor
}

type catalogFile struct {
	Factions []*Descriptor `yaml:"factions"`
}

// LoadCatalog lê o arquivo YAML de facções.
func LoadCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("faction: abrir %q: %w", path, err)
	}
	defer f.Close()

	c, err := LoadCatalogFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("faction: parsear %q: %w", path, err)
	}
	return c, nil
}

// LoadCatalogFromReader decodifica um catálogo YAML. Útil em testes.
func LoadCatalogFromReader(r io.Reader) (*Catalog, error) {
	var file catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("faction: decode yaml: %w", err)
	}

	c := NewCatalog()
	for i, d := range file.Factions {
		if d == nil || d.Key() == "" {
			return nil, fmt.Errorf("faction: entrada %d sem id", i)
		}
		if _, dup := c.byID[d.Key()]; dup {
			return nil, fmt.Errorf("faction: id duplicado %q", d.ID)
		}
		c.byID[d.Key()] = d
	}
	return c, nil
}

// NewCatalog cria um catálogo vazio (todas as consultas caem no padrão).
func NewCatalog() *Catalog {
	return &Catalog{byID: make(map[string]*Descriptor)}
}

// Lookup retorna o descritor da facção. Ids desconhecidos recebem um descritor
// mínimo (paleta padrão e raio padrão), nunca nil.
func (c *Catalog) Lookup(id string) *Descriptor {
	key := strings.ToLower(strings.TrimSpace(id))
	if c != nil {
		if d, ok := c.byID[key]; ok {
			return d
		}
	}
	return &Descriptor{ID: key}
}

// Len retorna quantas facções foram carregadas.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.byID)
}
