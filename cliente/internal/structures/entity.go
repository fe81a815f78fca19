package structures

import (
	"math"

	"StructureVision/cliente/internal/faction"
	"StructureVision/cliente/internal/scene"
	"StructureVision/shared/structdata"
	"StructureVision/shared/util"

	"github.com/go-gl/mathgl/mgl32"
)

// State é o estado do ciclo de vida de uma entidade visual.
type State int

const (
	StateUnderConstruction State = iota
	StateComplete
	StateRemoved
)

func (s State) String() string {
	switch s {
	case StateUnderConstruction:
		return "em construção"
	case StateComplete:
		return "completa"
	case StateRemoved:
		return "removida"
	default:
		return "?"
	}
}

// ConstructionState só existe enquanto a estrutura está em construção.
type ConstructionState struct {
	Progress         float32 // [0, 1]
	RemainingSeconds float32 // >= 0
	Paused           bool
}

const (
	selectionRadiusBase  float32 = 4.5
	selectionRadiusOther float32 = 2.5

	colorSelection scene.Color = 0x00ff66
	colorDebugBox  scene.Color = 0xff3030
)

// handles guarda referências diretas para os nós que a entidade altera.
type handles struct {
	visual     *scene.Node // Slot do visual (placeholder ou modelo)
	hitbox     *scene.Node
	debugBox   *scene.Node
	selection  *scene.Node
	powerField *scene.Node // nil quando o tipo/facção não tem campo
	overlay    *overlay    // nil quando completa
}

// Entity é a representação visual de uma estrutura. Pertence à thread de
// renderização: nenhum método é seguro para uso concorrente.
type Entity struct {
	data    *structdata.StructureData
	ctype   CanonicalType
	profile TypeProfile
	faction *faction.Descriptor

	root *scene.Node
	h    handles

	state        State
	selected     bool
	debugVisible bool
	construction *ConstructionState
	fade         float32
}

// hasPowerField informa se a combinação tipo/facção ganha o campo de energia.
func hasPowerField(t CanonicalType, fac *faction.Descriptor) bool {
	return t == TypeSupply && fac.Key() == faction.Protoss
}

// newEntity monta a subárvore de forma síncrona, com placeholder como visual.
func newEntity(data *structdata.StructureData, fac *faction.Descriptor, placeholder *scene.Node, debug bool) *Entity {
	profile := ResolveProfile(data.Type)
	e := &Entity{
		data:         data,
		ctype:        profile.Type,
		profile:      profile,
		faction:      fac,
		root:         scene.NewGroup("structure:" + data.ID),
		debugVisible: debug,
		fade:         1,
	}
	e.root.Position = mgl32.Vec3{data.Position.X, 0, data.Position.Z}

	e.h.visual = scene.NewGroup("visual")
	e.h.visual.Add(placeholder)

	hs, hh := profile.ClickHitboxSize, profile.HitboxHeight
	e.h.hitbox = scene.New(scene.KindBox, "hitbox")
	e.h.hitbox.Size = mgl32.Vec3{hs, hh, hs}
	e.h.hitbox.Position = mgl32.Vec3{0, hh / 2, 0}
	e.h.hitbox.Visible = false
	e.h.hitbox.Pickable = true

	box := profile.CollisionBox
	e.h.debugBox = scene.New(scene.KindWireBox, "debug-collision")
	e.h.debugBox.Size = mgl32.Vec3{box.Width, box.Height, box.Depth}
	e.h.debugBox.Position = mgl32.Vec3{0, box.Height / 2, 0}
	e.h.debugBox.Color = colorDebugBox
	e.h.debugBox.Visible = debug

	radius := selectionRadiusOther
	if profile.Type == TypeBase {
		radius = selectionRadiusBase
	}
	e.h.selection = scene.New(scene.KindRing, "selection")
	e.h.selection.Size = mgl32.Vec3{radius, 0, 0}
	e.h.selection.Position = mgl32.Vec3{0, 0.05, 0}
	e.h.selection.Color = colorSelection
	e.h.selection.Visible = false

	e.root.Add(e.h.visual, e.h.hitbox, e.h.debugBox, e.h.selection)

	if hasPowerField(profile.Type, fac) {
		pf := scene.New(scene.KindRing, "power-field")
		pf.Size = mgl32.Vec3{fac.PowerFieldRadius(), 0, 0}
		pf.Position = mgl32.Vec3{0, 0.03, 0}
		pf.Color = fac.Palette().Emissive
		pf.Opacity = 0.3
		pf.Visible = data.IsComplete
		e.h.powerField = pf
		e.root.Add(pf)
	}

	if data.IsComplete {
		e.state = StateComplete
		return e
	}

	e.state = StateUnderConstruction
	e.construction = &ConstructionState{}
	e.h.overlay = newOverlay(profile)
	e.root.Add(e.h.overlay.root)
	e.applyFade(fadeFor(0))
	return e
}

// fadeFor mapeia o progresso para a opacidade: 0.3 em 0, 1.0 em 1.
func fadeFor(progress float32) float32 {
	return 0.3 + 0.7*progress
}

// applyFade aplica o fade em todos os nós, exceto barra de progresso e cronômetro.
func (e *Entity) applyFade(fade float32) {
	e.fade = fade
	if o := e.h.overlay; o != nil {
		e.root.SetFade(fade, o.fill, o.timer)
		return
	}
	e.root.SetFade(fade)
}

// SetSelected mostra ou esconde o indicador de seleção.
func (e *Entity) SetSelected(selected bool) error {
	if e.state == StateRemoved {
		return ErrRemoved
	}
	e.selected = selected
	e.h.selection.Visible = selected
	return nil
}

// SetDebugVisible mostra ou esconde a caixa de colisão desta entidade.
func (e *Entity) SetDebugVisible(visible bool) error {
	if e.state == StateRemoved {
		return ErrRemoved
	}
	e.debugVisible = visible
	e.h.debugBox.Visible = visible
	return nil
}

// UpdateProgress atualiza barra, cronômetro e fade. Só vale em construção.
// progress é limitado a [0,1] e remainingSeconds a >= 0.
func (e *Entity) UpdateProgress(progress, remainingSeconds float32, paused bool) error {
	switch e.state {
	case StateRemoved:
		return ErrRemoved
	case StateComplete:
		return ErrNotUnderConstruction
	}

	if math.IsNaN(float64(progress)) {
		progress = 0
	}
	if math.IsNaN(float64(remainingSeconds)) {
		remainingSeconds = 0
	}
	progress = util.Clamp(progress, 0, 1)
	remainingSeconds = util.Max(remainingSeconds, 0)

	*e.construction = ConstructionState{
		Progress:         progress,
		RemainingSeconds: remainingSeconds,
		Paused:           paused,
	}

	e.h.overlay.setFill(progress, paused)
	e.h.overlay.setTimer(remainingSeconds, paused)
	e.applyFade(fadeFor(progress))
	return nil
}

// Complete encerra a construção: descarta o overlay pelo container (liberando a
// textura do cronômetro), restaura a opacidade e revela o campo de energia.
func (e *Entity) Complete(sc SceneContainer) error {
	switch {
	case e.state == StateRemoved:
		return ErrRemoved
	case e.state != StateUnderConstruction || e.h.overlay == nil:
		return ErrNotUnderConstruction
	}

	o := e.h.overlay
	e.root.Remove(o.root)
	sc.DisposeObject(o.root)
	e.h.overlay = nil

	e.applyFade(1)
	if e.h.powerField != nil {
		e.h.powerField.Visible = true
	}
	e.construction = nil
	e.state = StateComplete
	e.data.IsComplete = true
	return nil
}

// Animate atualiza os efeitos dependentes do tempo (segundos desde o início).
func (e *Entity) Animate(t float64) {
	if e.state == StateRemoved {
		return
	}
	if o := e.h.overlay; o != nil {
		o.scaffold.RotationY = float32(t) * ScaffoldSpinRate
	}
	if pf := e.h.powerField; pf != nil && pf.Visible {
		pf.Opacity = 0.25 + 0.1*float32(math.Sin(2*t))
		pf.RotationY = float32(t * 0.2)
	}
}

// Dispose libera toda a subárvore pelo container. Depois disso a entidade é inerte.
func (e *Entity) Dispose(sc SceneContainer) error {
	if e.state == StateRemoved {
		return ErrRemoved
	}
	sc.DisposeObject(e.root)
	e.h = handles{}
	e.construction = nil
	e.selected = false
	e.state = StateRemoved
	return nil
}

// spliceVisual troca o conteúdo do slot visual, mantendo o fade atual.
func (e *Entity) spliceVisual(visual *scene.Node) bool {
	if e.state == StateRemoved || visual == nil {
		return false
	}
	e.h.visual.Clear()
	visual.SetFade(e.fade)
	e.h.visual.Add(visual)
	return true
}

// ID retorna o id da estrutura.
func (e *Entity) ID() string { return e.data.ID }

// Type retorna o tipo canônico.
func (e *Entity) Type() CanonicalType { return e.ctype }

// Profile retorna o perfil do tipo.
func (e *Entity) Profile() TypeProfile { return e.profile }

// Faction retorna o descritor de facção usado na criação.
func (e *Entity) Faction() *faction.Descriptor { return e.faction }

// Data retorna os dados (emprestados) da estrutura.
func (e *Entity) Data() *structdata.StructureData { return e.data }

// State retorna o estado de construção atual.
func (e *Entity) State() State { return e.state }

// Selected informa se o anel de seleção está ativo.
func (e *Entity) Selected() bool { return e.selected }

// DebugVisible informa se a caixa de colisão está visível.
func (e *Entity) DebugVisible() bool { return e.debugVisible }

// Construction retorna uma cópia do estado de construção; ok=false se não existe.
func (e *Entity) Construction() (ConstructionState, bool) {
	if e.construction == nil {
		return ConstructionState{}, false
	}
	return *e.construction, true
}

// HasPowerField informa se a entidade tem o visual de campo de energia.
func (e *Entity) HasPowerField() bool { return e.h.powerField != nil }

// PowerFieldVisible informa se o campo de energia está visível.
func (e *Entity) PowerFieldVisible() bool {
	return e.h.powerField != nil && e.h.powerField.Visible
}

// HitboxSize retorna o lado e a altura da hitbox de clique.
func (e *Entity) HitboxSize() (size, height float32) {
	return e.profile.ClickHitboxSize, e.profile.HitboxHeight
}

// Root retorna a raiz da subárvore (nil depois de removida).
func (e *Entity) Root() *scene.Node {
	if e.state == StateRemoved {
		return nil
	}
	return e.root
}

// Visual retorna o nó atualmente no slot visual.
func (e *Entity) Visual() *scene.Node {
	if e.h.visual == nil || len(e.h.visual.Children) == 0 {
		return nil
	}
	return e.h.visual.Children[0]
}

// HasOverlay informa se o overlay de construção ainda existe.
func (e *Entity) HasOverlay() bool { return e.h.overlay != nil }

// TimerText retorna o texto do cronômetro ("" sem overlay).
func (e *Entity) TimerText() string {
	if e.h.overlay == nil {
		return ""
	}
	return e.h.overlay.timer.Text
}

// FillFraction retorna a escala horizontal da barra de progresso (0 sem overlay).
func (e *Entity) FillFraction() float32 {
	if e.h.overlay == nil {
		return 0
	}
	return e.h.overlay.fill.Scale.X()
}

// FillColor retorna a cor atual da barra de progresso.
func (e *Entity) FillColor() scene.Color {
	if e.h.overlay == nil {
		return 0
	}
	return e.h.overlay.fill.Color
}

// Opacity retorna o multiplicador de fade aplicado ao visual.
func (e *Entity) Opacity() float32 { return e.fade }
