package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/ayusman/mudra/internal/actuator"
)

// SystemControl is the plugin that owns audio output.
const SystemControl = "system-control"

// Actions handled by the system-control plugin for continuous volume.
const (
	ActionVolumeRange = "volume-range"
	ActionSetVolume   = "set-volume"
)

// VolumeRange is the data answered by the volume-range action.
type VolumeRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// SetVolumeParams are the params of the set-volume action.
type SetVolumeParams struct {
	Level float64 `json:"level"`
}

// Volume implements actuator.VolumeControl through the system-control plugin.
// SetVolume only queues the level: a single worker goroutine runs the plugin
// with the most recent level, so callers never wait on a plugin process.
type Volume struct {
	manager  *Manager
	executor *Executor

	pending chan float64
	done    chan struct{}
	start   sync.Once
	stop    sync.Once
	wg      sync.WaitGroup
	lastErr string
}

var _ actuator.VolumeControl = (*Volume)(nil)

var errVolumeClosed = errors.New("volume control closed")

// NewVolume creates a Volume backed by the manager's system-control plugin.
func NewVolume(manager *Manager, executor *Executor) *Volume {
	return &Volume{
		manager:  manager,
		executor: executor,
		pending:  make(chan float64, 1),
		done:     make(chan struct{}),
	}
}

// VolumeRange asks the plugin for the supported range. A missing plugin or a
// plugin without the action reports actuator.ErrUnavailable.
func (v *Volume) VolumeRange() (float64, float64, error) {
	resp, err := v.call(ActionVolumeRange, nil)
	if err != nil {
		return 0, 0, err
	}
	var r VolumeRange
	if err := json.Unmarshal(resp.Data, &r); err != nil {
		return 0, 0, fmt.Errorf("parse volume range: %w", err)
	}
	if r.Min >= r.Max {
		return 0, 0, fmt.Errorf("invalid volume range [%v, %v]", r.Min, r.Max)
	}
	return r.Min, r.Max, nil
}

// SetVolume queues level for the worker, replacing any level not yet applied.
// A missing plugin or action is reported right away as actuator.ErrUnavailable;
// plugin failures are logged by the worker.
func (v *Volume) SetVolume(level float64) error {
	if _, err := v.lookup(ActionSetVolume); err != nil {
		return err
	}
	select {
	case <-v.done:
		return errVolumeClosed
	default:
	}
	v.start.Do(func() {
		v.wg.Add(1)
		go v.run()
	})

	for {
		select {
		case v.pending <- level:
			return nil
		default:
		}
		select {
		case <-v.pending:
		default:
		}
	}
}

// Close stops the worker after it applies the last queued level.
func (v *Volume) Close() error {
	v.stop.Do(func() { close(v.done) })
	v.wg.Wait()
	return nil
}

func (v *Volume) run() {
	defer v.wg.Done()
	for {
		select {
		case level := <-v.pending:
			v.apply(level)
		case <-v.done:
			select {
			case level := <-v.pending:
				v.apply(level)
			default:
			}
			return
		}
	}
}

func (v *Volume) apply(level float64) {
	params, err := json.Marshal(SetVolumeParams{Level: level})
	if err == nil {
		_, err = v.call(ActionSetVolume, params)
	}
	if err != nil {
		if msg := err.Error(); msg != v.lastErr {
			log.Printf("Set volume failed: %v", err)
			v.lastErr = msg
		}
		return
	}
	v.lastErr = ""
}

// lookup returns the system-control plugin if it supports action.
func (v *Volume) lookup(action string) (*Plugin, error) {
	p, err := v.manager.Get(SystemControl)
	if errors.Is(err, ErrPluginNotFound) {
		return nil, fmt.Errorf("%s plugin: %w", SystemControl, actuator.ErrUnavailable)
	}
	if err != nil {
		return nil, err
	}
	if !p.Supports(action) {
		return nil, fmt.Errorf("%s plugin lacks %s: %w", SystemControl, action, actuator.ErrUnavailable)
	}
	return p, nil
}

func (v *Volume) call(action string, params json.RawMessage) (*Response, error) {
	p, err := v.lookup(action)
	if err != nil {
		return nil, err
	}

	resp, err := v.executor.Execute(context.Background(), p, &Request{
		Action: action,
		Mode:   "system",
		Params: params,
	})
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("%s %s: %s", SystemControl, action, resp.Error)
	}
	return resp, nil
}
