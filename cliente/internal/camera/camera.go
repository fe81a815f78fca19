package camera

import (
	"math"

	"StructureVision/shared/util"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	minElevation = -85.0 * math.Pi / 180 // quase topo
	maxElevation = -15.0 * math.Pi / 180 // não deixa deitar no chão
)

// CameraController é a câmera RTS: orbita um ponto no chão, com pan, zoom e
// rotação suavizados.
type CameraController struct {
	RLCamera rl.Camera3D

	MinZoom      float32
	MaxZoom      float32
	MoveSpeed    float32
	RotateSpeed  float32
	ZoomSpeed    float32
	SmoothFactor float32 // 0.0 a 1.0 (quanto menor, mais suave)

	// Alvo (para onde a câmera vai)
	TargetLookAt mgl32.Vec3
	TargetZoom   float32
	AngleY       float32 // Azimute (radianos)
	AngleX       float32 // Elevação (radianos, negativo = olhando para baixo)

	// Estado interpolado
	CurrentLookAt mgl32.Vec3
	CurrentZoom   float32
}

// New cria a câmera com as velocidades da configuração.
func New(moveSpeed, rotateSpeed, zoomSpeed float32) *CameraController {
	c := &CameraController{
		MinZoom:      8.0,
		MaxZoom:      120.0,
		MoveSpeed:    moveSpeed * 4,
		RotateSpeed:  rotateSpeed,
		ZoomSpeed:    zoomSpeed,
		SmoothFactor: 0.12,

		TargetZoom: 45.0,
		AngleY:     45.0 * rl.Deg2rad,
		AngleX:     -50.0 * rl.Deg2rad,
	}
	c.CurrentLookAt = c.TargetLookAt
	c.CurrentZoom = c.TargetZoom

	c.RLCamera = rl.Camera3D{
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       45.0,
		Projection: rl.CameraPerspective,
	}
	c.apply()
	return c
}

// FocusOn move o alvo da câmera para um ponto do chão (com suavização).
func (c *CameraController) FocusOn(x, z float32) {
	c.TargetLookAt = mgl32.Vec3{x, 0, z}
}

// Update interpola a câmera em direção ao alvo. Chamado uma vez por frame.
func (c *CameraController) Update(dt float32) {
	factor := util.Clamp(c.SmoothFactor*60.0*dt, 0, 1) // normaliza para 60 FPS

	c.CurrentLookAt = c.CurrentLookAt.Add(c.TargetLookAt.Sub(c.CurrentLookAt).Mul(factor))
	c.CurrentZoom = util.Lerp(c.CurrentZoom, c.TargetZoom, factor)
	c.apply()
}

func (c *CameraController) apply() {
	pos := c.CurrentLookAt.Add(orbitOffset(c.AngleY, c.AngleX, c.CurrentZoom))
	c.RLCamera.Position = rl.Vector3{X: pos.X(), Y: pos.Y(), Z: pos.Z()}
	c.RLCamera.Target = rl.Vector3{X: c.CurrentLookAt.X(), Y: c.CurrentLookAt.Y(), Z: c.CurrentLookAt.Z()}
}

// orbitOffset converte azimute/elevação/distância em deslocamento cartesiano (Y para cima).
func orbitOffset(angleY, angleX, dist float32) mgl32.Vec3 {
	cosX := float32(math.Cos(float64(angleX)))
	sinX := float32(math.Sin(float64(angleX)))
	cosY := float32(math.Cos(float64(angleY)))
	sinY := float32(math.Sin(float64(angleY)))
	return mgl32.Vec3{dist * cosX * sinY, dist * -sinX, dist * cosX * cosY}
}

// groundAxes retorna os vetores frente/direita projetados no chão.
func groundAxes(angleY float32) (forward, right mgl32.Vec3) {
	forward = orbitOffset(angleY, 0, 1).Mul(-1)
	forward[1] = 0
	forward = forward.Normalize()
	right = forward.Cross(mgl32.Vec3{0, 1, 0}).Normalize()
	return forward, right
}

// Zoom altera a distância alvo, respeitando os limites.
func (c *CameraController) Zoom(steps float32) {
	c.TargetZoom = util.Clamp(c.TargetZoom-steps*c.ZoomSpeed, c.MinZoom, c.MaxZoom)
}

// Orbit gira a câmera (delta em pixels do mouse ou unidades de tecla).
func (c *CameraController) Orbit(dx, dy float32) {
	c.AngleY -= dx * c.RotateSpeed * 0.01
	c.AngleX = util.Clamp(c.AngleX-dy*c.RotateSpeed*0.01, minElevation, maxElevation)
}

// Pan move o alvo no plano do chão, relativo à direção da câmera.
func (c *CameraController) Pan(forwardAmount, rightAmount, dt float32) {
	forward, right := groundAxes(c.AngleY)
	move := forward.Mul(forwardAmount).Add(right.Mul(rightAmount))
	if move.Len() == 0 {
		return
	}
	speed := c.MoveSpeed * (c.CurrentZoom / 45.0) * dt // mais alto, mais rápido
	c.TargetLookAt = c.TargetLookAt.Add(move.Normalize().Mul(speed))
}

// HandleInput lê mouse e teclado. Retorna true se houve movimento.
func (c *CameraController) HandleInput(dt float32) bool {
	moved := false

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		c.Zoom(wheel)
		moved = true
	}

	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		delta := rl.GetMouseDelta()
		if delta.X != 0 || delta.Y != 0 {
			c.Orbit(delta.X*0.5, delta.Y*0.5)
			moved = true
		}
	}
	if rl.IsKeyDown(rl.KeyQ) {
		c.Orbit(-120*dt, 0)
		moved = true
	}
	if rl.IsKeyDown(rl.KeyE) {
		c.Orbit(120*dt, 0)
		moved = true
	}

	var fwd, side float32
	if rl.IsKeyDown(rl.KeyW) {
		fwd++
	}
	if rl.IsKeyDown(rl.KeyS) {
		fwd--
	}
	if rl.IsKeyDown(rl.KeyD) {
		side++
	}
	if rl.IsKeyDown(rl.KeyA) {
		side--
	}
	if fwd != 0 || side != 0 {
		c.Pan(fwd, side, dt)
		moved = true
	}

	return moved
}
