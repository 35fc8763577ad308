// Package voxelmarch renders the isosurface of a scalar volume on
// [Ebitengine] by ray marching it in a Kage fragment shader.
//
// A volume is a grid of 8-bit samples described by a small text header
// (three dimensions, three voxel sizes) next to a raw byte file. It is
// loaded with [LoadVolume], packed slice by slice into a 2D atlas by
// [NewVolumeTexture] (Ebitengine has no 3D textures) and drawn by a
// [Renderer], which rasterizes the front faces of the volume's bounding box
// and marches one ray per covered pixel until the sampled density crosses
// the isovalue.
//
// The quickest way to see it is [Run]:
//
//	cfg := voxelmarch.DefaultConfig()
//	cfg.VolumeDir = "volumes"
//	if err := voxelmarch.Run(cfg); err != nil {
//		log.Fatal(err)
//	}
//
// [App] implements [ebiten.Game] and can be embedded in a custom loop
// instead. Its isovalue is driven by a settings [Panel], number-key presets
// that glide through a [gween] tween, and JSON test scripts loaded with
// [LoadTestScript].
//
// # Coordinate spaces
//
// The box spans the origin to dims*voxelSize in model space. [ModelMatrix]
// centers it and spins it about X and Y; the [Camera] looks down +Z from
// 1.5 box depths away. The shader rebuilds each ray from the inverse
// model-view-projection matrix, so the box faces only bound the pixels
// that are shaded.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package voxelmarch
