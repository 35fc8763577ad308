package voxelmarch

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

// DefaultSurfaceColor is the base color of the shaded isosurface.
var DefaultSurfaceColor = Color{R: 0.93, G: 0.86, B: 0.74, A: 1}

// RenderStats reports what the last Draw submitted.
type RenderStats struct {
	Triangles int  // triangles submitted
	Culled    int  // back-facing triangles skipped
	Fallback  bool // the eye was inside the near plane; a full-viewport quad was drawn
}

// Renderer draws a volume texture as an isosurface by ray marching inside
// the volume's bounding cube.
type Renderer struct {
	// Steps is the number of samples per ray, clamped to [1, MaxSteps].
	Steps        int
	SurfaceColor Color

	header  Header
	texture *VolumeTexture
	corners [8]mgl32.Vec3

	vertices []ebiten.Vertex
	indices  []uint16
	stats    RenderStats

	uniforms map[string]any
	shaderOp ebiten.DrawTrianglesShaderOptions

	// persistent uniform buffers, stored in uniforms once
	eye, light     [3]float32
	invMVP, texMtx [16]float32
	boxMin, boxMax [3]float32
	texSize        [3]float32
	atlasGrid      [4]float32
	surface        [3]float32
}

// NewRenderer prepares a renderer for a volume with header h that has been
// uploaded as tex.
func NewRenderer(h Header, tex *VolumeTexture, steps int) *Renderer {
	r := &Renderer{
		Steps:        steps,
		SurfaceColor: DefaultSurfaceColor,
		header:       h,
		texture:      tex,
		vertices:     make([]ebiten.Vertex, 0, 8),
		indices:      make([]uint16, 0, len(CubeIndices)),
		uniforms:     make(map[string]any, 11),
	}
	box := h.Bounds()
	r.corners, _ = CubeMesh(box)

	copy(r.boxMin[:], box.Min[:])
	copy(r.boxMax[:], box.Max[:])
	r.texMtx = [16]float32(h.TextureMatrix())

	l := tex.Layout
	r.texSize = [3]float32{float32(l.SliceW), float32(l.SliceH), float32(l.Slices)}
	r.atlasGrid = [4]float32{float32(l.Cols), float32(l.Rows), float32(l.SliceW), float32(l.SliceH)}

	r.uniforms["Eye"] = r.eye[:]
	r.uniforms["LightPos"] = r.light[:]
	r.uniforms["BoxMin"] = r.boxMin[:]
	r.uniforms["BoxMax"] = r.boxMax[:]
	r.uniforms["TexSize"] = r.texSize[:]
	r.uniforms["TexMatrix"] = r.texMtx[:]
	r.uniforms["InvModelViewProj"] = r.invMVP[:]
	r.uniforms["AtlasGrid"] = r.atlasGrid[:]
	r.uniforms["SurfaceColor"] = r.surface[:]
	return r
}

// Stats returns the statistics of the last Draw.
func (r *Renderer) Stats() RenderStats {
	return r.stats
}

// Draw renders the volume with the given model transform and isovalue into
// the camera's viewport on dst.
func (r *Renderer) Draw(dst *ebiten.Image, cam *Camera, model mgl32.Mat4, isovalue float32) {
	vp := cam.Viewport
	if vp.Width <= 0 || vp.Height <= 0 || r.texture == nil || r.texture.Image == nil {
		r.stats = RenderStats{}
		return
	}

	r.vertices, r.indices, r.stats = buildCubeTriangles(cam, model, &r.corners, r.vertices[:0], r.indices[:0])
	if len(r.indices) == 0 {
		return
	}

	eye := ToModelSpace(model, cam.Eye)
	light := ToModelSpace(model, LightPosition(r.header))
	copy(r.eye[:], eye[:])
	copy(r.light[:], light[:])
	r.invMVP = [16]float32(cam.ViewProjection().Mul4(model).Inv())
	copy(r.surface[:], r.SurfaceColor.vec3())

	steps := min(max(r.Steps, 1), MaxSteps)
	r.uniforms["Steps"] = float32(steps)
	r.uniforms["Isovalue"] = isovalue

	target := dst.SubImage(image.Rect(
		int(vp.X), int(vp.Y),
		int(vp.X+vp.Width), int(vp.Y+vp.Height),
	)).(*ebiten.Image)

	r.shaderOp.Images[0] = r.texture.Image
	r.shaderOp.Uniforms = r.uniforms
	target.DrawTrianglesShader(r.vertices, r.indices, ensureRaymarchShader(), &r.shaderOp)
}

// Dispose drops the renderer's reference to its texture. The texture itself
// is owned and disposed by the caller.
func (r *Renderer) Dispose() {
	r.texture = nil
	r.shaderOp.Images[0] = nil
}

// buildCubeTriangles projects the cube corners and appends the front-facing
// triangles to verts and indices. When any corner is at or behind the near
// plane it emits a quad covering the whole viewport instead, since the ray
// can start inside the volume.
func buildCubeTriangles(cam *Camera, model mgl32.Mat4, corners *[8]mgl32.Vec3, verts []ebiten.Vertex, indices []uint16) ([]ebiten.Vertex, []uint16, RenderStats) {
	var stats RenderStats
	for _, c := range corners {
		sx, sy, w := cam.Project(model, c)
		if w <= cam.Near {
			verts, indices = viewportQuad(cam.Viewport, verts[:0], indices[:0])
			return verts, indices, RenderStats{Triangles: 2, Fallback: true}
		}
		verts = append(verts, solidVertex(sx, sy))
	}

	for i := 0; i < len(CubeIndices); i += 3 {
		a, b, c := CubeIndices[i], CubeIndices[i+1], CubeIndices[i+2]
		if !frontFacing(verts[a], verts[b], verts[c]) {
			stats.Culled++
			continue
		}
		indices = append(indices, a, b, c)
		stats.Triangles++
	}
	return verts, indices, stats
}

// frontFacing reports whether a screen-space triangle turns counter-clockwise
// as seen on screen. With Y growing downward that is a negative signed area.
func frontFacing(a, b, c ebiten.Vertex) bool {
	area := (b.DstX-a.DstX)*(c.DstY-a.DstY) - (b.DstY-a.DstY)*(c.DstX-a.DstX)
	return area < 0
}

func viewportQuad(vp Rect, verts []ebiten.Vertex, indices []uint16) ([]ebiten.Vertex, []uint16) {
	x0, y0 := float32(vp.X), float32(vp.Y)
	x1, y1 := float32(vp.X+vp.Width), float32(vp.Y+vp.Height)
	verts = append(verts,
		solidVertex(x0, y0),
		solidVertex(x1, y0),
		solidVertex(x0, y1),
		solidVertex(x1, y1),
	)
	indices = append(indices, 0, 1, 2, 1, 3, 2)
	return verts, indices
}

func solidVertex(x, y float32) ebiten.Vertex {
	return ebiten.Vertex{
		DstX:   x,
		DstY:   y,
		ColorR: 1,
		ColorG: 1,
		ColorB: 1,
		ColorA: 1,
	}
}
