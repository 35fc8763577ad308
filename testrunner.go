package voxelmarch

import (
	"encoding/json"
	"fmt"
	"os"
)

// testStep represents a single action in a test script.
type testStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	Value  float32 `json:"value,omitempty"`
	Key    int     `json:"key,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

// testScript is the top-level JSON structure for a test script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

var knownActions = map[string]bool{
	"screenshot": true,
	"wait":       true,
	"isovalue":   true,
	"preset":     true,
	"click":      true,
	"drag":       true,
	"pause":      true,
	"quit":       true,
}

// scriptTarget is what a TestRunner drives. *App implements it.
type scriptTarget interface {
	Screenshot(label string)
	InjectClick(x, y float64)
	InjectDrag(fromX, fromY, toX, toY float64, frames int)
	SetIsovalue(v float32)
	GlidePreset(k int)
	TogglePause()
	RequestQuit()
	pendingInput() int
}

// TestRunner sequences injected input, isovalue changes and screenshots
// across frames for automated visual checks.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
}

// LoadTestScript parses a JSON test script.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i, st := range script.Steps {
		if !knownActions[st.Action] {
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// LoadTestScriptFile reads and parses the test script at path.
func LoadTestScriptFile(path string) (*TestRunner, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read test script: %w", err)
	}
	return LoadTestScript(data)
}

// Done reports whether all steps in the test script have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// step advances the runner by one frame.
func (r *TestRunner) step(t scriptTarget) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if t.pendingInput() > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "screenshot":
		t.Screenshot(st.Label)
	case "click":
		t.InjectClick(st.X, st.Y)
	case "drag":
		t.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, max(st.Frames, 2))
	case "isovalue":
		t.SetIsovalue(st.Value)
	case "preset":
		t.GlidePreset(st.Key)
	case "pause":
		t.TogglePause()
	case "quit":
		t.RequestQuit()
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && t.pendingInput() == 0 {
		r.done = true
	}
}
