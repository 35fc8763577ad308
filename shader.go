package voxelmarch

import "github.com/hajimehoshi/ebiten/v2"

// MaxSteps is the largest number of samples the ray-march shader takes along
// one ray. The Steps uniform may ask for fewer.
const MaxSteps = 512

// --- Kage shader source ---
// The volume is read from a slice atlas (see AtlasLayout) in image 0.
// Rays are rebuilt per pixel from InvModelViewProj because Ebitengine
// interpolates vertex attributes affinely in screen space.

const raymarchShaderSrc = `//kage:unit pixels
package main

var Isovalue float
var Steps float
var Eye vec3
var LightPos vec3
var BoxMin vec3
var BoxMax vec3
var TexSize vec3
var TexMatrix mat4
var InvModelViewProj mat4
var AtlasGrid vec4
var SurfaceColor vec3

const maxSteps = 512

func unproject(ndc vec3) vec3 {
	p := InvModelViewProj * vec4(ndc, 1)
	return p.xyz / p.w
}

// voxel fetches one grid value; c holds integer voxel coordinates.
func voxel(c vec3) float {
	cc := clamp(c, vec3(0), TexSize-1)
	col := mod(cc.z, AtlasGrid.x)
	row := floor(cc.z / AtlasGrid.x)
	p := vec2(col*AtlasGrid.z+cc.x+0.5, row*AtlasGrid.w+cc.y+0.5)
	return imageSrc0UnsafeAt(p + imageSrc0Origin()).r
}

// density returns the trilinearly filtered value at model-space position p.
func density(p vec3) float {
	tc := (TexMatrix * vec4(p, 1)).xyz
	c := tc*TexSize - 0.5
	c0 := floor(c)
	f := c - c0
	v000 := voxel(c0)
	v100 := voxel(c0 + vec3(1, 0, 0))
	v010 := voxel(c0 + vec3(0, 1, 0))
	v110 := voxel(c0 + vec3(1, 1, 0))
	v001 := voxel(c0 + vec3(0, 0, 1))
	v101 := voxel(c0 + vec3(1, 0, 1))
	v011 := voxel(c0 + vec3(0, 1, 1))
	v111 := voxel(c0 + vec3(1, 1, 1))
	x00 := mix(v000, v100, f.x)
	x10 := mix(v010, v110, f.x)
	x01 := mix(v001, v101, f.x)
	x11 := mix(v011, v111, f.x)
	return mix(mix(x00, x10, f.y), mix(x01, x11, f.y), f.z)
}

// hitBox returns the entry and exit distances of the ray with the volume box.
// The ray misses when x >= y.
func hitBox(ro vec3, rd vec3) vec2 {
	safe := mix(rd, vec3(1e-6), step(abs(rd), vec3(1e-6)))
	inv := vec3(1) / safe
	t0 := (BoxMin - ro) * inv
	t1 := (BoxMax - ro) * inv
	tmin := min(t0, t1)
	tmax := max(t0, t1)
	near := max(max(tmin.x, tmin.y), tmin.z)
	far := min(min(tmax.x, tmax.y), tmax.z)
	return vec2(max(near, 0), far)
}

func normalAt(p vec3, rd vec3) vec3 {
	h := (BoxMax - BoxMin) / TexSize
	g := vec3(
		density(p+vec3(h.x, 0, 0))-density(p-vec3(h.x, 0, 0)),
		density(p+vec3(0, h.y, 0))-density(p-vec3(0, h.y, 0)),
		density(p+vec3(0, 0, h.z))-density(p-vec3(0, 0, h.z)),
	)
	if length(g) < 1e-6 {
		return -rd
	}
	n := -normalize(g)
	if dot(n, rd) > 0 {
		n = -n
	}
	return n
}

func shade(p vec3, rd vec3) vec4 {
	n := normalAt(p, rd)
	l := normalize(LightPos - p)
	v := normalize(Eye - p)
	hv := normalize(l + v)
	diffuse := max(dot(n, l), 0)
	specular := pow(max(dot(n, hv), 0), 32)
	c := SurfaceColor*(0.15+0.85*diffuse) + vec3(0.35)*specular
	return vec4(clamp(c, vec3(0), vec3(1)), 1)
}

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
	uv := (dstPos.xy - imageDstOrigin()) / imageDstSize()
	ndc := vec2(uv.x*2-1, 1-uv.y*2)
	ro := unproject(vec3(ndc, -1))
	rd := normalize(unproject(vec3(ndc, 1)) - ro)

	span := hitBox(ro, rd)
	if span.x >= span.y {
		return vec4(0)
	}

	dt := length(BoxMax-BoxMin) / Steps
	prevT := span.x
	prevV := density(ro + rd*prevT)
	if prevV >= Isovalue {
		return shade(ro+rd*prevT, rd)
	}
	for i := 1; i <= maxSteps; i++ {
		if float(i) > Steps {
			return vec4(0)
		}
		t := span.x + dt*float(i)
		if t > span.y {
			return vec4(0)
		}
		v := density(ro + rd*t)
		if v >= Isovalue {
			f := clamp((Isovalue-prevV)/max(v-prevV, 1e-5), 0, 1)
			return shade(ro+rd*mix(prevT, t, f), rd)
		}
		prevT = t
		prevV = v
	}
	return vec4(0)
}
`

// --- Lazy shader compilation (no sync.Once; Ebitengine calls Update and
// Draw from a single goroutine) ---

var raymarchShader *ebiten.Shader

func ensureRaymarchShader() *ebiten.Shader {
	if raymarchShader == nil {
		s, err := ebiten.NewShader([]byte(raymarchShaderSrc))
		if err != nil {
			panic("voxelmarch: failed to compile ray-march shader: " + err.Error())
		}
		raymarchShader = s
	}
	return raymarchShader
}
