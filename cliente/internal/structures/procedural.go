package structures

import (
	"StructureVision/cliente/internal/faction"
	"StructureVision/cliente/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

// ProceduralStyle gera a forma de substituição de uma facção quando não há modelo.
type ProceduralStyle interface {
	Name() string
	// Build monta a forma; o tamanho só depende de isBase.
	Build(isBase bool, pal faction.Palette) *scene.Node
}

// StyleFor escolhe o estilo procedural pelo id da facção. Desconhecidos usam o humano.
func StyleFor(factionID string) ProceduralStyle {
	switch factionID {
	case faction.Zerg:
		return zergStyle{}
	case faction.Protoss:
		return protossStyle{}
	default:
		return humanStyle{}
	}
}

// fallbackSize é o lado do footprint procedural.
func fallbackSize(isBase bool) float32 {
	if isBase {
		return 5
	}
	return 2.5
}

func newFallbackRoot(style string) *scene.Node {
	return scene.NewGroup("fallback:" + style)
}

// humanStyle: blocos metálicos empilhados.
type humanStyle struct{}

func (humanStyle) Name() string { return faction.Human }

func (humanStyle) Build(isBase bool, pal faction.Palette) *scene.Node {
	s := fallbackSize(isBase)
	root := newFallbackRoot(faction.Human)

	body := scene.NewBox("body", s, s*0.5, s, pal.Secondary)
	body.Position = mgl32.Vec3{0, s * 0.25, 0}
	body.Accent = pal.Primary

	roof := scene.NewBox("roof", s*0.6, s*0.2, s*0.6, pal.Secondary.Blend(0x000000, 0.35))
	roof.Position = mgl32.Vec3{0, s*0.5 + s*0.1, 0}

	root.Add(body, roof)
	return root
}

// zergStyle: domo orgânico sobre uma base de creep.
type zergStyle struct{}

func (zergStyle) Name() string { return faction.Zerg }

func (zergStyle) Build(isBase bool, pal faction.Palette) *scene.Node {
	s := fallbackSize(isBase)
	root := newFallbackRoot(faction.Zerg)

	creep := scene.New(scene.KindRing, "creep")
	creep.Size = mgl32.Vec3{s * 0.65, 0, 0}
	creep.Color = pal.Secondary.Blend(0x000000, 0.5)
	creep.Position = mgl32.Vec3{0, 0.02, 0}

	dome := scene.New(scene.KindSphere, "dome")
	dome.Size = mgl32.Vec3{s * 0.45, 0, 0}
	dome.Scale = mgl32.Vec3{1, 0.7, 1}
	dome.Color = pal.Secondary
	dome.Emissive = pal.Emissive
	dome.Position = mgl32.Vec3{0, s * 0.2, 0}

	root.Add(creep, dome)
	return root
}

// protossStyle: pirâmide com um cristal flutuante.
type protossStyle struct{}

func (protossStyle) Name() string { return faction.Protoss }

func (protossStyle) Build(isBase bool, pal faction.Palette) *scene.Node {
	s := fallbackSize(isBase)
	root := newFallbackRoot(faction.Protoss)

	pyramid := scene.New(scene.KindCylinder, "pyramid")
	pyramid.Size = mgl32.Vec3{0, s * 0.6, s * 0.5}
	pyramid.Color = pal.Secondary
	pyramid.Accent = pal.Primary

	crystal := scene.New(scene.KindSphere, "crystal")
	crystal.Size = mgl32.Vec3{s * 0.12, 0, 0}
	crystal.Scale = mgl32.Vec3{1, 1.8, 1}
	crystal.Color = pal.Secondary.Blend(pal.Emissive, 0.5)
	crystal.Emissive = pal.Emissive
	crystal.Position = mgl32.Vec3{0, s*0.6 + s*0.2, 0}

	root.Add(pyramid, crystal)
	return root
}
