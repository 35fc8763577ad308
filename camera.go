package voxelmarch

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	defaultFovY = 60.0 // degrees
	defaultNear = 0.1
	defaultFar  = 1000.0

	// eyeDistanceFactor places the eye this many volume depths in front of
	// the volume's center.
	eyeDistanceFactor = 1.5
	// spinRateY is the Y rotation speed relative to the X rotation.
	spinRateY = 0.37
)

// Camera is a perspective camera looking at a fixed point. Matrices are
// recomputed lazily after any field changes; call MarkDirty after writing
// fields directly.
type Camera struct {
	Eye, At, Up mgl32.Vec3
	// FovY is the vertical field of view in degrees.
	FovY      float32
	Near, Far float32
	// Viewport is the screen-space rectangle the camera renders into.
	Viewport Rect

	view     mgl32.Mat4
	proj     mgl32.Mat4
	viewProj mgl32.Mat4
	dirty    bool
}

// NewVolumeCamera creates the camera used to look at a volume described by
// h: the eye sits on the -Z axis, 1.5 volume depths from the origin, and
// looks at the origin where ModelMatrix centers the volume.
func NewVolumeCamera(h Header, viewport Rect) *Camera {
	e := h.Extent()
	return &Camera{
		Eye:      mgl32.Vec3{0, 0, -eyeDistanceFactor * e[2]},
		Up:       mgl32.Vec3{0, 1, 0},
		FovY:     defaultFovY,
		Near:     defaultNear,
		Far:      float32(math.Max(defaultFar, 4*float64(e.Len()))),
		Viewport: viewport,
		dirty:    true,
	}
}

// MarkDirty forces the matrices to be recomputed on next use.
func (c *Camera) MarkDirty() {
	c.dirty = true
}

// SetViewport changes the viewport and marks the camera dirty.
func (c *Camera) SetViewport(r Rect) {
	if c.Viewport == r {
		return
	}
	c.Viewport = r
	c.dirty = true
}

// Aspect returns the viewport's width over height, or 1 for an empty
// viewport.
func (c *Camera) Aspect() float32 {
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return 1
	}
	return float32(c.Viewport.Width / c.Viewport.Height)
}

func (c *Camera) computeMatrices() {
	if !c.dirty {
		return
	}
	c.view = mgl32.LookAtV(c.Eye, c.At, c.Up)
	c.proj = mgl32.Perspective(mgl32.DegToRad(c.FovY), c.Aspect(), c.Near, c.Far)
	c.viewProj = c.proj.Mul4(c.view)
	c.dirty = false
}

// View returns the world-to-camera matrix.
func (c *Camera) View() mgl32.Mat4 {
	c.computeMatrices()
	return c.view
}

// Projection returns the camera-to-clip matrix (OpenGL clip conventions,
// NDC depth in [-1, 1]).
func (c *Camera) Projection() mgl32.Mat4 {
	c.computeMatrices()
	return c.proj
}

// ViewProjection returns Projection * View.
func (c *Camera) ViewProjection() mgl32.Mat4 {
	c.computeMatrices()
	return c.viewProj
}

// Project transforms the model-space point p by model and the camera and
// returns its screen position inside the viewport along with the clip-space
// w. A w at or below Near means the point is not in front of the near
// plane and the screen position is meaningless.
func (c *Camera) Project(model mgl32.Mat4, p mgl32.Vec3) (sx, sy, w float32) {
	clip := c.ViewProjection().Mul4(model).Mul4x1(p.Vec4(1))
	w = clip[3]
	if w == 0 {
		return 0, 0, 0
	}
	vp := c.Viewport
	sx = float32(vp.X) + (clip[0]/w*0.5+0.5)*float32(vp.Width)
	sy = float32(vp.Y) + (0.5-clip[1]/w*0.5)*float32(vp.Height)
	return sx, sy, w
}

// Unproject maps a screen position and an NDC depth back to model space.
func (c *Camera) Unproject(model mgl32.Mat4, sx, sy, ndcZ float32) mgl32.Vec3 {
	vp := c.Viewport
	nx := 2*(sx-float32(vp.X))/float32(vp.Width) - 1
	ny := 1 - 2*(sy-float32(vp.Y))/float32(vp.Height)
	inv := c.ViewProjection().Mul4(model).Inv()
	p := inv.Mul4x1(mgl32.Vec4{nx, ny, ndcZ, 1})
	return p.Vec3().Mul(1 / p[3])
}

// ModelMatrix returns the volume's model transform at time t (seconds): the
// volume is first centered on the origin, then spun t radians about X and
// 0.37t radians about Y.
func ModelMatrix(h Header, t float32) mgl32.Mat4 {
	half := h.Extent().Mul(-0.5)
	translate := mgl32.Translate3D(half[0], half[1], half[2])
	rotate := mgl32.HomogRotate3DY(t * spinRateY).Mul4(mgl32.HomogRotate3DX(t))
	return rotate.Mul4(translate)
}

// LightPosition returns the world-space light position for a volume: the
// point at one full extent along each axis.
func LightPosition(h Header) mgl32.Vec3 {
	return h.Extent()
}

// ToModelSpace transforms the world-space point p by the inverse of model.
func ToModelSpace(model mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	q := model.Inv().Mul4x1(p.Vec4(1))
	return q.Vec3().Mul(1 / q[3])
}
