package voxelmarch

import "github.com/go-gl/mathgl/mgl32"

// CubeIndices lists the cube's 12 triangles, two per face, in the order
// +Z, -Z, -X, +X, +Y, -Y. Every triangle winds counter-clockwise when seen
// from outside the cube.
var CubeIndices = [36]uint16{
	0, 2, 1,
	1, 2, 3,
	4, 5, 6,
	5, 7, 6,
	0, 4, 2,
	4, 6, 2,
	1, 3, 5,
	5, 3, 7,
	0, 1, 4,
	4, 1, 5,
	2, 6, 3,
	6, 7, 3,
}

// unitCorner returns corner i of the unit cube. Bit 0 selects X, bit 1
// clears Y, bit 2 clears Z, so corner 0 is (0,1,1) and corner 7 is (1,0,0).
func unitCorner(i int) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(i & 1),
		float32(1 - (i>>1)&1),
		float32(1 - (i>>2)&1),
	}
}

// CubeMesh returns the eight corners of b and the triangle list covering
// its faces. The corners are the unit cube scaled by b's size and offset by
// b.Min.
func CubeMesh(b Box) ([8]mgl32.Vec3, [36]uint16) {
	var verts [8]mgl32.Vec3
	size := b.Size()
	for i := range verts {
		c := unitCorner(i)
		verts[i] = mgl32.Vec3{
			b.Min[0] + c[0]*size[0],
			b.Min[1] + c[1]*size[1],
			b.Min[2] + c[2]*size[2],
		}
	}
	return verts, CubeIndices
}

// FaceNormal returns the unnormalized normal of triangle (a, b, c), using
// counter-clockwise winding.
func FaceNormal(verts []mgl32.Vec3, a, b, c uint16) mgl32.Vec3 {
	e1 := verts[b].Sub(verts[a])
	e2 := verts[c].Sub(verts[a])
	return e1.Cross(e2)
}
