package voxelmarch

// InjectPress queues a pointer press at the given screen coordinates. Queued
// events replace real pointer input, one per frame, until the queue drains.
func (a *App) InjectPress(x, y float64) {
	a.injectQueue = append(a.injectQueue, PointerState{X: x, Y: y, Pressed: true})
}

// InjectMove queues a pointer move with the button held down.
func (a *App) InjectMove(x, y float64) {
	a.injectQueue = append(a.injectQueue, PointerState{X: x, Y: y, Pressed: true})
}

// InjectRelease queues a pointer release at the given screen coordinates.
func (a *App) InjectRelease(x, y float64) {
	a.injectQueue = append(a.injectQueue, PointerState{X: x, Y: y})
}

// InjectClick queues a press followed by a release at the same coordinates.
// Consumes two frames.
func (a *App) InjectClick(x, y float64) {
	a.InjectPress(x, y)
	a.InjectRelease(x, y)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY), linearly
// interpolated moves over frames-2 intermediate frames, and release at
// (toX, toY). Minimum frames is 2 (press + release).
func (a *App) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	a.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		a.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	a.InjectRelease(toX, toY)
}

// nextPointer pops one injected event if any are queued, otherwise reads
// the input source.
func (a *App) nextPointer() PointerState {
	if len(a.injectQueue) == 0 {
		if a.input == nil {
			return PointerState{}
		}
		return a.input.Pointer()
	}
	evt := a.injectQueue[0]
	copy(a.injectQueue, a.injectQueue[1:])
	a.injectQueue = a.injectQueue[:len(a.injectQueue)-1]
	return evt
}
