package render

import (
	"fmt"
	"image/color"
	"log"
	"sort"
	"sync"

	"StructureVision/cliente/internal/scene"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	labelTexWidth  = 128
	labelTexHeight = 48
	labelFontSize  = 32
)

// labelTexture é a textura off-screen onde o texto de um KindLabel é desenhado.
type labelTexture struct {
	target rl.RenderTexture2D
	text   string
}

// Stats resume o estado da cena para o HUD.
type Stats struct {
	Objects int
	Nodes   int
	Labels  int
}

// Renderer é o container de cena do cliente: guarda as subárvores por id e as
// desenha com raylib. Todos os métodos de desenho rodam na thread principal.
type Renderer struct {
	mu      sync.RWMutex
	objects map[string]*scene.Node
	labels  map[*scene.Node]*labelTexture

	Loader *ModelLoader
}

// NewRenderer cria um novo renderizador.
func NewRenderer(loader *ModelLoader) *Renderer {
	return &Renderer{
		objects: make(map[string]*scene.Node),
		labels:  make(map[*scene.Node]*labelTexture),
		Loader:  loader,
	}
}

// AddObject registra a subárvore de uma estrutura na cena.
func (r *Renderer) AddObject(id string, root *scene.Node) error {
	if root == nil {
		return fmt.Errorf("render: subárvore nil para %q", id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.objects[id]; dup {
		return fmt.Errorf("render: objeto %q já está na cena", id)
	}
	r.objects[id] = root
	return nil
}

// RemoveObject tira a subárvore da cena (os recursos continuam até DisposeObject).
func (r *Renderer) RemoveObject(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.objects, id)
}

// DisposeObject libera na hora as texturas de label da subárvore.
// Modelos são compartilhados e só saem no Unload do loader.
func (r *Renderer) DisposeObject(root *scene.Node) {
	if root == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	root.Walk(func(n *scene.Node) bool {
		if lt, ok := r.labels[n]; ok {
			if rl.IsWindowReady() {
				rl.UnloadRenderTexture(lt.target)
			}
			delete(r.labels, n)
		}
		return true
	})
}

// RefreshLabels redesenha as texturas dos labels cujo texto mudou.
// Precisa rodar fora do BeginMode3D (usa BeginTextureMode).
func (r *Renderer) RefreshLabels() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, root := range r.objects {
		root.Walk(func(n *scene.Node) bool {
			if !n.Visible {
				return false
			}
			if n.Kind != scene.KindLabel {
				return true
			}
			lt, ok := r.labels[n]
			if !ok {
				lt = &labelTexture{target: rl.LoadRenderTexture(labelTexWidth, labelTexHeight), text: "\x00"}
				r.labels[n] = lt
			}
			if lt.text == n.Text {
				return true
			}
			lt.text = n.Text

			rl.BeginTextureMode(lt.target)
			rl.ClearBackground(rl.Blank)
			if n.Text != "" {
				w := rl.MeasureText(n.Text, labelFontSize)
				rl.DrawText(n.Text, (labelTexWidth-w)/2, (labelTexHeight-labelFontSize)/2, labelFontSize, toRGBA(n.Color, 1))
			}
			rl.EndTextureMode()
			return true
		})
	}
}

// Draw desenha todas as subárvores. Deve ser chamado dentro de BeginMode3D.
func (r *Renderer) Draw(cam rl.Camera3D) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.objects))
	for id := range r.objects {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rl.BeginBlendMode(rl.BlendAlpha)
	for _, id := range ids {
		r.drawNode(cam, r.objects[id])
	}
	rl.EndBlendMode()
}

// drawNode aplica a transformação do nó na pilha do rlgl e desenha a primitiva.
// Nós invisíveis escondem a subárvore inteira.
func (r *Renderer) drawNode(cam rl.Camera3D, n *scene.Node) {
	if !n.Visible {
		return
	}

	rl.PushMatrix()
	rl.Translatef(n.Position.X(), n.Position.Y(), n.Position.Z())
	if n.RotationY != 0 {
		rl.Rotatef(n.RotationY*rl.Rad2deg, 0, 1, 0)
	}
	rl.Scalef(n.Scale.X(), n.Scale.Y(), n.Scale.Z())

	alpha := n.EffectiveOpacity()
	c := toRGBA(n.Color, alpha)
	origin := rl.Vector3{}

	switch n.Kind {
	case scene.KindBox:
		rl.DrawCube(origin, n.Size.X(), n.Size.Y(), n.Size.Z(), c)
		if n.Accent != 0 {
			rl.DrawCubeWires(origin, n.Size.X(), n.Size.Y(), n.Size.Z(), toRGBA(n.Accent, alpha))
		}
	case scene.KindWireBox:
		rl.DrawCubeWires(origin, n.Size.X(), n.Size.Y(), n.Size.Z(), c)
	case scene.KindSphere:
		if n.Emissive != 0 {
			c = toRGBA(n.Color.Blend(n.Emissive, 0.35), alpha)
		}
		rl.DrawSphere(origin, n.Size.X(), c)
	case scene.KindCylinder:
		rl.DrawCylinder(origin, n.Size.X(), n.Size.Z(), n.Size.Y(), 4, c)
		if n.Accent != 0 {
			rl.DrawCylinderWires(origin, n.Size.X(), n.Size.Z(), n.Size.Y(), 4, toRGBA(n.Accent, alpha))
		}
	case scene.KindRing:
		rl.DrawCircle3D(origin, n.Size.X(), rl.Vector3{X: 1}, 90, c)
	case scene.KindLabel:
		if lt, ok := r.labels[n]; ok && n.Text != "" {
			src := rl.Rectangle{Width: labelTexWidth, Height: -labelTexHeight}
			rl.DrawBillboardRec(cam, lt.target.Texture, src, origin, rl.Vector2{X: n.Size.X(), Y: n.Size.Y()}, toRGBA(0xffffff, alpha))
		}
	case scene.KindModel:
		if m, ok := n.Asset.(*ModelAsset); ok {
			rl.DrawModel(m.Model, origin, 1, c)
		}
	}

	for _, child := range n.Children {
		r.drawNode(cam, child)
	}
	rl.PopMatrix()
}

// Stats conta objetos, nós e labels com textura.
func (r *Renderer) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := Stats{Objects: len(r.objects), Labels: len(r.labels)}
	for _, root := range r.objects {
		s.Nodes += root.Count()
	}
	return s
}

// Unload libera todas as texturas de label e os modelos do loader.
func (r *Renderer) Unload() {
	r.mu.Lock()
	for n, lt := range r.labels {
		rl.UnloadRenderTexture(lt.target)
		delete(r.labels, n)
	}
	r.objects = make(map[string]*scene.Node)
	r.mu.Unlock()

	if r.Loader != nil {
		r.Loader.Unload()
	}
	log.Printf("[Renderer] Recursos liberados")
}

// toRGBA converte a cor do nó para raylib, com opacidade em [0,1].
func toRGBA(c scene.Color, alpha float32) color.RGBA {
	red, green, blue := c.RGB()
	if alpha < 0 {
		alpha = 0
	} else if alpha > 1 {
		alpha = 1
	}
	return rl.NewColor(red, green, blue, uint8(alpha*255))
}
