// Package scene define a árvore de nós visuais que o cliente monta para cada estrutura.
// Os nós são dados puros (sem chamadas à GPU); o pacote render é quem os desenha.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Kind define a primitiva desenhada por um nó.
type Kind int

const (
	KindGroup    Kind = iota // Apenas agrupa filhos
	KindBox                  // Cubo sólido: Size = (largura, altura, profundidade)
	KindWireBox              // Cubo em wireframe
	KindSphere               // Esfera: Size.X = raio
	KindCylinder             // Cilindro/cone: Size.X = raio topo, Size.Z = raio base, Size.Y = altura
	KindRing                 // Círculo no chão: Size.X = raio
	KindLabel                // Texto em billboard: Size.X/Size.Y = largura/altura no mundo
	KindModel                // Modelo 3D carregado (Asset)
)

// Color é uma cor RGB no formato 0xRRGGBB.
type Color uint32

// RGB retorna os componentes 8 bits da cor.
func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// Blend mistura duas cores no espaço Lab (t=0 → c, t=1 → to).
func (c Color) Blend(to Color, t float64) Color {
	out := c.colorful().BlendLab(to.colorful(), t).Clamped()
	r, g, b := out.RGB255()
	return Color(uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

func (c Color) colorful() colorful.Color {
	r, g, b := c.RGB()
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// Asset é um recurso renderizável compartilhado (ex.: modelo carregado do disco).
// Vários nós podem referenciar o mesmo Asset; o estado por instância fica no nó.
type Asset interface {
	// Bounds retorna a caixa delimitadora do asset em coordenadas locais.
	Bounds() (min, max mgl32.Vec3)
}

// Node é um elemento da árvore visual.
type Node struct {
	Name string
	Kind Kind

	Position  mgl32.Vec3
	RotationY float32 // Radianos, em torno do eixo vertical
	Scale     mgl32.Vec3
	Size      mgl32.Vec3

	Color    Color
	Accent   Color // Cor secundária (detalhes de modelos procedurais/paleta)
	Emissive Color

	// Opacity é a opacidade de autoria do nó (ex.: andaime translúcido).
	// Fade é um multiplicador aplicado por efeitos (construção); o render usa Opacity*Fade.
	Opacity float32
	Fade    float32

	Visible  bool
	Pickable bool // Participa de hit-test mesmo invisível

	Text  string // KindLabel
	Asset Asset  // KindModel

	Children []*Node
	parent   *Node
}

// New cria um nó visível, opaco e com escala unitária.
func New(kind Kind, name string) *Node {
	return &Node{
		Name:    name,
		Kind:    kind,
		Scale:   mgl32.Vec3{1, 1, 1},
		Opacity: 1,
		Fade:    1,
		Visible: true,
	}
}

// NewGroup cria um nó de agrupamento.
func NewGroup(name string) *Node {
	return New(KindGroup, name)
}

// NewBox cria um cubo com as dimensões informadas.
func NewBox(name string, w, h, d float32, c Color) *Node {
	n := New(KindBox, name)
	n.Size = mgl32.Vec3{w, h, d}
	n.Color = c
	return n
}

// Add anexa filhos ao nó, removendo-os do pai anterior se houver.
func (n *Node) Add(children ...*Node) {
	for _, c := range children {
		if c == nil {
			continue
		}
		if c.parent != nil {
			c.parent.Remove(c)
		}
		c.parent = n
		n.Children = append(n.Children, c)
	}
}

// Remove desanexa um filho direto. Retorna false se não era filho.
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// Clear remove todos os filhos diretos e os retorna.
func (n *Node) Clear() []*Node {
	old := n.Children
	for _, c := range old {
		c.parent = nil
	}
	n.Children = nil
	return old
}

// Parent retorna o pai do nó (nil na raiz).
func (n *Node) Parent() *Node {
	return n.parent
}

// Walk percorre a subárvore em profundidade (pré-ordem).
// Se fn retornar false, os filhos daquele nó não são visitados.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Count retorna o número de nós da subárvore (incluindo o próprio).
func (n *Node) Count() int {
	total := 0
	n.Walk(func(*Node) bool {
		total++
		return true
	})
	return total
}

// Clone cria uma cópia profunda da subárvore. Assets são compartilhados, não copiados.
func (n *Node) Clone() *Node {
	cp := *n
	cp.parent = nil
	cp.Children = nil
	for _, c := range n.Children {
		cp.Add(c.Clone())
	}
	return &cp
}

// SetFade aplica o multiplicador de opacidade na subárvore, exceto nos nós em skip.
func (n *Node) SetFade(fade float32, skip ...*Node) {
	n.Walk(func(x *Node) bool {
		for _, s := range skip {
			if x == s {
				return false
			}
		}
		x.Fade = fade
		return true
	})
}

// EffectiveOpacity retorna a opacidade final usada no desenho.
func (n *Node) EffectiveOpacity() float32 {
	return n.Opacity * n.Fade
}
