package structures

import (
	"fmt"
	"math"

	"StructureVision/cliente/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

// MinFillFraction é a largura mínima da barra de progresso (nunca colapsa a zero).
const MinFillFraction float32 = 0.02

// ScaffoldSpinRate é a velocidade de rotação do andaime (rad/s).
const ScaffoldSpinRate float32 = 0.5

// TimerPlaceholder é o texto do cronômetro antes do primeiro progresso.
const TimerPlaceholder = "--:--"

const (
	colorFillActive scene.Color = 0x33dd55
	colorFillPaused scene.Color = 0xffaa00
	colorBarBack    scene.Color = 0x1a1a1a
	colorScaffold   scene.Color = 0xd0d0d0
	colorTimer      scene.Color = 0xffffff
)

// overlay é o composto temporário mostrado durante a construção:
// andaime, fundo da barra, barra de progresso e cronômetro.
type overlay struct {
	root     *scene.Node
	scaffold *scene.Node
	barBack  *scene.Node
	fill     *scene.Node
	timer    *scene.Node
	barWidth float32
}

func newOverlay(p TypeProfile) *overlay {
	w := p.ClickHitboxSize
	h := p.HitboxHeight
	barY := h + 1

	o := &overlay{
		root:     scene.NewGroup("construction"),
		barWidth: w,
	}

	o.scaffold = scene.New(scene.KindWireBox, "scaffold")
	o.scaffold.Size = mgl32.Vec3{w * 1.05, h, w * 1.05}
	o.scaffold.Position = mgl32.Vec3{0, h / 2, 0}
	o.scaffold.Color = colorScaffold
	o.scaffold.Opacity = 0.4

	o.barBack = scene.NewBox("bar-back", w, 0.2, 0.3, colorBarBack)
	o.barBack.Position = mgl32.Vec3{0, barY, 0}
	o.barBack.Opacity = 0.8

	o.fill = scene.NewBox("bar-fill", w, 0.22, 0.32, colorFillActive)
	o.fill.Position = mgl32.Vec3{0, barY, 0}

	o.timer = scene.New(scene.KindLabel, "timer")
	o.timer.Size = mgl32.Vec3{2, 0.6, 0}
	o.timer.Position = mgl32.Vec3{0, barY + 0.7, 0}
	o.timer.Color = colorTimer
	o.timer.Text = TimerPlaceholder

	o.root.Add(o.scaffold, o.barBack, o.fill, o.timer)
	o.setFill(0, false)
	return o
}

// setFill ajusta a barra: largura proporcional ao progresso, crescendo a partir
// da borda esquerda do fundo.
func (o *overlay) setFill(progress float32, paused bool) {
	frac := progress
	if frac < MinFillFraction {
		frac = MinFillFraction
	}
	o.fill.Scale[0] = frac
	o.fill.Position[0] = -o.barWidth/2 + o.barWidth*frac/2
	if paused {
		o.fill.Color = colorFillPaused
	} else {
		o.fill.Color = colorFillActive
	}
}

func (o *overlay) setTimer(remaining float32, paused bool) {
	if paused {
		o.timer.Text = ""
		return
	}
	o.timer.Text = FormatRemaining(remaining)
}

// maxRemaining limita o timer exibido (9999:59).
const maxRemaining = 9999*60 + 59

// FormatRemaining formata segundos restantes como M:SS (arredondando para baixo).
// Valores acima de maxRemaining, inclusive +Inf, mostram o teto.
func FormatRemaining(seconds float32) string {
	v := float64(seconds)
	switch {
	case v < 0 || math.IsNaN(v):
		v = 0
	case v > maxRemaining:
		v = maxRemaining
	}
	s := int(math.Floor(v))
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}
