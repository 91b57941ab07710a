// Package app runs the mudra pipeline: a producer goroutine reads and detects
// camera frames, a consumer goroutine feeds them to the gesture engine.
package app

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/engine"
	"github.com/ayusman/mudra/internal/overlay"
	"github.com/ayusman/mudra/internal/plugin"
)

// Pipeline timing constants.
const (
	// FrameQueueSize bounds frames waiting for the engine; the oldest is dropped when full.
	FrameQueueSize = 2
	// RetryInterval is the wait between camera open attempts.
	RetryInterval = time.Second
	// TickInterval is how often the engine is ticked between camera frames, so
	// commands and status keep flowing when frames are slow or absent.
	TickInterval = 250 * time.Millisecond
	// maxReadFailures consecutive read errors close the camera for a full reopen.
	maxReadFailures = 30
)

// Config holds the collaborators of an App. Camera, Detector and Engine are required.
type Config struct {
	Camera   capture.Camera
	Detector detector.Detector
	Engine   *engine.Engine

	// Motion and Rate enable motion-adaptive capture. Both nil means a fixed rate.
	Motion *capture.MotionDetector
	Rate   *capture.RateController

	// Renderer annotates frames passed to OnFrame.
	Renderer *overlay.Renderer
	// OnFrame receives the annotated JPEG of every processed camera frame.
	OnFrame func(jpeg []byte)
	// OnStatus receives the engine status after every engine iteration.
	OnStatus func(engine.Status)

	Plugins *plugin.Manager

	// ExitOnStop makes Run return once the engine is stopped. Otherwise the
	// camera is released while stopped and reopened after a recalibration.
	ExitOnStop bool

	RetryInterval time.Duration
	TickInterval  time.Duration
	Now           func() time.Time
}

// App is the running pipeline.
type App struct {
	config  Config
	dropped atomic.Uint64
	frames  atomic.Uint64
	running atomic.Bool
	closers []func() error
	mu      sync.Mutex
}

// frame is one captured image and the hands detected in it.
type frame struct {
	set detector.FrameSet
	img *gocv.Mat
}

// New creates an App.
func New(config Config) (*App, error) {
	if config.Camera == nil || config.Detector == nil || config.Engine == nil {
		return nil, errors.New("app needs a camera, a detector and an engine")
	}
	if config.Rate == nil {
		config.Rate = capture.NewRateController(capture.DefaultConfig().FPS, capture.DefaultConfig().FPS, time.Second)
	}
	if config.RetryInterval <= 0 {
		config.RetryInterval = RetryInterval
	}
	if config.TickInterval <= 0 {
		config.TickInterval = TickInterval
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &App{config: config}, nil
}

// Engine returns the gesture engine.
func (a *App) Engine() *engine.Engine {
	return a.config.Engine
}

// PluginManager returns the plugin manager, or nil.
func (a *App) PluginManager() *plugin.Manager {
	return a.config.Plugins
}

// Dropped returns how many frames were dropped because the engine fell behind.
func (a *App) Dropped() uint64 {
	return a.dropped.Load()
}

// Frames returns how many camera frames the engine has processed.
func (a *App) Frames() uint64 {
	return a.frames.Load()
}

// Running reports whether Run is in progress.
func (a *App) Running() bool {
	return a.running.Load()
}

// OnClose registers fn to run after the pipeline stops, in reverse order.
func (a *App) OnClose(fn func() error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closers = append(a.closers, fn)
}

// Run processes frames until ctx is canceled, or the engine is stopped when
// ExitOnStop is set. The
// camera, detector and motion detector are released before it returns, and
// the engine is shut down so no drag is left held.
func (a *App) Run(ctx context.Context) error {
	if !a.running.CompareAndSwap(false, true) {
		return errors.New("app is already running")
	}
	defer a.running.Store(false)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	frames := make(chan frame, FrameQueueSize)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.produce(ctx, frames)
	}()

	log.Println("Pipeline started")
	err := a.consume(ctx, frames)
	cancel()
	wg.Wait()
	for f := range frames {
		f.close()
	}

	a.shutdown()
	log.Println("Pipeline stopped")

	if errors.Is(err, engine.ErrStopped) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *App) shutdown() {
	a.config.Engine.Shutdown()
	if a.config.OnStatus != nil {
		a.config.OnStatus(a.config.Engine.Status())
	}

	if err := a.config.Camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	if err := a.config.Detector.Close(); err != nil {
		log.Printf("Error closing detector: %v", err)
	}
	if a.config.Motion != nil {
		a.config.Motion.Close()
	}

	a.mu.Lock()
	closers := a.closers
	a.closers = nil
	a.mu.Unlock()
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}
}

func (f frame) close() {
	if f.img != nil {
		f.img.Close()
	}
}
