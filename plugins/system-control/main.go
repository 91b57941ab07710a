// Package main provides the system-control plugin. It reports and sets the
// output volume for mudra's System Control mode and handles a few one-shot
// media keys. macOS uses AppleScript; Linux uses pactl.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"runtime"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action string          `json:"action"`
	Mode   string          `json:"mode,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type volumeRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type setVolumeParams struct {
	Level *float64 `json:"level"`
}

// actionHandler handles one action and optionally returns response data.
type actionHandler func(params json.RawMessage) (any, error)

var actionHandlers = map[string]actionHandler{
	"volume-range":     volumeRangeAction,
	"set-volume":       setVolume,
	"volume-mute":      noParams(volumeMute),
	"media-play-pause": noParams(mediaKey(100)),
	"media-next":       noParams(mediaKey(101)),
	"media-prev":       noParams(mediaKey(98)),
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("failed to decode request: %v", err)})
		return
	}

	handler, ok := actionHandlers[req.Action]
	if !ok {
		writeResponse(Response{Error: fmt.Sprintf("unknown action: %s", req.Action)})
		return
	}

	data, err := handler(req.Params)
	if err != nil {
		writeResponse(Response{Error: fmt.Sprintf("action %s failed: %v", req.Action, err)})
		return
	}

	resp := Response{Success: true}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			writeResponse(Response{Error: err.Error()})
			return
		}
		resp.Data = raw
	}
	writeResponse(resp)
}

func writeResponse(resp Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}

func noParams(fn func() error) actionHandler {
	return func(json.RawMessage) (any, error) {
		return nil, fn()
	}
}

// volumeRangeAction reports 0..100 on supported platforms.
func volumeRangeAction(json.RawMessage) (any, error) {
	switch runtime.GOOS {
	case "darwin":
		return volumeRange{Min: 0, Max: 100}, nil
	case "linux":
		if _, err := exec.LookPath("pactl"); err != nil {
			return nil, errors.New("pactl not installed")
		}
		return volumeRange{Min: 0, Max: 100}, nil
	default:
		return nil, fmt.Errorf("volume control not supported on %s", runtime.GOOS)
	}
}

func setVolume(params json.RawMessage) (any, error) {
	var p setVolumeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("failed to parse params: %w", err)
	}
	if p.Level == nil {
		return nil, errors.New("level is required")
	}
	level := int(math.Round(math.Max(0, math.Min(100, *p.Level))))

	switch runtime.GOOS {
	case "darwin":
		return nil, run("osascript", "-e", fmt.Sprintf("set volume output volume %d", level))
	case "linux":
		return nil, run("pactl", "set-sink-volume", "@DEFAULT_SINK@", fmt.Sprintf("%d%%", level))
	default:
		return nil, fmt.Errorf("volume control not supported on %s", runtime.GOOS)
	}
}

func volumeMute() error {
	switch runtime.GOOS {
	case "darwin":
		return run("osascript", "-e", `set volume output muted (not (output muted of (get volume settings)))`)
	case "linux":
		return run("pactl", "set-sink-mute", "@DEFAULT_SINK@", "toggle")
	default:
		return fmt.Errorf("mute not supported on %s", runtime.GOOS)
	}
}

// mediaKey sends a macOS media key code through System Events.
func mediaKey(code int) func() error {
	return func() error {
		if runtime.GOOS != "darwin" {
			return fmt.Errorf("media keys not supported on %s", runtime.GOOS)
		}
		return run("osascript", "-e", fmt.Sprintf("tell application \"System Events\"\n\tkey code %d\nend tell", code))
	}
}

func run(name string, args ...string) error {
	output, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
