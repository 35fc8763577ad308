package voxelmarch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeTarget struct {
	shots    []string
	clicks   int
	drags    int
	frames   int
	iso      float32
	preset   int
	pauses   int
	quit     bool
	inFlight int
}

func (f *fakeTarget) Screenshot(label string) { f.shots = append(f.shots, label) }
func (f *fakeTarget) InjectClick(x, y float64) {
	f.clicks++
	f.inFlight += 2
}
func (f *fakeTarget) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	f.drags++
	f.frames = frames
	f.inFlight += frames
}
func (f *fakeTarget) SetIsovalue(v float32) { f.iso = v }
func (f *fakeTarget) GlidePreset(k int)     { f.preset = k }
func (f *fakeTarget) TogglePause()          { f.pauses++ }
func (f *fakeTarget) RequestQuit()          { f.quit = true }
func (f *fakeTarget) pendingInput() int     { return f.inFlight }

// frame simulates the app consuming one injected event per frame.
func (f *fakeTarget) frame(r *TestRunner) {
	r.step(f)
	if f.inFlight > 0 {
		f.inFlight--
	}
}

func TestLoadTestScript(t *testing.T) {
	data := []byte(`{
		"steps": [
			{"action": "screenshot", "label": "initial"},
			{"action": "isovalue", "value": 0.4},
			{"action": "preset", "key": 7},
			{"action": "wait", "frames": 3}
		]
	}`)
	runner, err := LoadTestScript(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runner.steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(runner.steps))
	}
	if runner.steps[1].Value != 0.4 {
		t.Errorf("step 1 value = %f, want 0.4", runner.steps[1].Value)
	}
	if runner.steps[2].Key != 7 {
		t.Errorf("step 2 key = %d, want 7", runner.steps[2].Key)
	}
}

func TestLoadTestScriptErrors(t *testing.T) {
	cases := map[string]string{
		"invalid json":   `not json`,
		"empty steps":    `{"steps": []}`,
		"unknown action": `{"steps": [{"action": "explode"}]}`,
	}
	for name, data := range cases {
		if _, err := LoadTestScript([]byte(data)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestLoadTestScriptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	if err := os.WriteFile(path, []byte(`{"steps":[{"action":"quit"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTestScriptFile(path); err != nil {
		t.Fatal(err)
	}
	_, err := LoadTestScriptFile(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil || !strings.Contains(err.Error(), "read test script") {
		t.Errorf("err = %v, want a read error", err)
	}
}

func TestRunnerStepActions(t *testing.T) {
	runner, err := LoadTestScript([]byte(`{"steps": [
		{"action": "isovalue", "value": 0.6},
		{"action": "preset", "key": 3},
		{"action": "pause"},
		{"action": "screenshot", "label": "done"},
		{"action": "quit"}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	f := &fakeTarget{}
	for i := 0; i < 5; i++ {
		f.frame(runner)
	}
	if f.iso != 0.6 || f.preset != 3 || f.pauses != 1 || !f.quit {
		t.Errorf("target = %+v", f)
	}
	if len(f.shots) != 1 || f.shots[0] != "done" {
		t.Errorf("shots = %v, want [done]", f.shots)
	}
	if !runner.Done() {
		t.Error("runner should be done after the last step")
	}
}

func TestRunnerWaitsForInjectedInput(t *testing.T) {
	runner, err := LoadTestScript([]byte(`{"steps": [
		{"action": "drag", "fromX": 0, "fromY": 0, "toX": 10, "toY": 0, "frames": 4},
		{"action": "screenshot", "label": "after"}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	f := &fakeTarget{}
	f.frame(runner)
	if f.drags != 1 || f.frames != 4 {
		t.Fatalf("drags=%d frames=%d, want 1 and 4", f.drags, f.frames)
	}
	// The drag occupies four frames; the screenshot waits for it.
	for i := 0; i < 3; i++ {
		f.frame(runner)
		if len(f.shots) != 0 {
			t.Fatalf("screenshot taken while the drag was in flight (frame %d)", i)
		}
	}
	f.frame(runner)
	if len(f.shots) != 1 {
		t.Errorf("shots = %v, want one after the drag", f.shots)
	}
}

func TestRunnerDragMinimumFrames(t *testing.T) {
	runner, err := LoadTestScript([]byte(`{"steps": [{"action": "drag", "toX": 5}]}`))
	if err != nil {
		t.Fatal(err)
	}
	f := &fakeTarget{}
	f.frame(runner)
	if f.frames != 2 {
		t.Errorf("frames = %d, want 2", f.frames)
	}
}

func TestRunnerWait(t *testing.T) {
	runner, err := LoadTestScript([]byte(`{"steps": [
		{"action": "wait", "frames": 3},
		{"action": "screenshot", "label": "late"}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	f := &fakeTarget{}
	for i := 0; i < 3; i++ {
		f.frame(runner)
	}
	if len(f.shots) != 0 {
		t.Fatal("screenshot ran before the wait finished")
	}
	f.frame(runner)
	if len(f.shots) != 1 {
		t.Errorf("shots = %v, want [late]", f.shots)
	}
}
