package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/engine"
	"github.com/ayusman/mudra/internal/overlay"
)

// produce reads, rate-controls and detects camera frames until ctx is done,
// then closes out. The camera is (re)opened on demand; open failures are
// reported as perception loss and retried every RetryInterval.
func (a *App) produce(ctx context.Context, out chan frame) {
	defer close(out)

	cam := a.config.Camera
	rate := a.config.Rate
	failures := 0

	for ctx.Err() == nil {
		if a.config.Engine.Mode() == engine.ModeStopped {
			if cam.IsOpen() {
				cam.Close()
				log.Println("Engine stopped, camera released")
			}
			if !sleep(ctx, a.config.TickInterval) {
				return
			}
			continue
		}

		if !cam.IsOpen() {
			if err := cam.Open(); err != nil {
				a.config.Engine.ReportError(fmt.Errorf("%w: %v", engine.ErrPerceptionUnavailable, err))
				if !sleep(ctx, a.config.RetryInterval) {
					return
				}
				continue
			}
			a.config.Engine.ReportPerceptionRestored()
			cam.SetFPS(rate.FPS())
			failures = 0
			if a.config.Motion != nil {
				a.config.Motion.Reset()
			}
		}

		start := a.config.Now()
		img, err := cam.ReadFrame()
		if err != nil {
			failures++
			a.config.Engine.ReportError(fmt.Errorf("%w: read frame: %v", engine.ErrTransientFrame, err))
			if failures >= maxReadFailures || errors.Is(err, capture.ErrCameraNotOpen) {
				log.Printf("Camera stopped delivering frames, reopening")
				cam.Close()
			}
			if !sleep(ctx, rate.Interval()) {
				return
			}
			continue
		}
		failures = 0

		if a.config.Motion != nil {
			motion, _ := a.config.Motion.Detect(img)
			if fps, changed := rate.Observe(motion, start); changed {
				cam.SetFPS(fps)
				if rate.Active() {
					log.Printf("Motion detected, capturing at %d fps", fps)
				} else {
					log.Printf("No motion, capturing at %d fps", fps)
				}
			}
		}

		hands, err := a.config.Detector.Detect(img)
		if err != nil {
			img.Close()
			a.config.Engine.ReportError(fmt.Errorf("%w: detect: %v", engine.ErrTransientFrame, err))
			if !sleep(ctx, rate.Interval()) {
				return
			}
			continue
		}

		a.offer(out, frame{set: detector.NewFrameSet(hands, start), img: img})

		if !sleep(ctx, rate.Interval()-a.config.Now().Sub(start)) {
			return
		}
	}
}

// offer queues f without blocking. When the queue is full the oldest pending
// frame is dropped to make room.
func (a *App) offer(out chan frame, f frame) {
	for {
		select {
		case out <- f:
			return
		default:
		}
		select {
		case old := <-out:
			old.close()
			a.dropped.Add(1)
		default:
		}
	}
}

// consume is the only caller of Engine.ProcessFrame. Between camera frames it
// ticks the engine every TickInterval so commands and status keep flowing.
// Only while perception is down does a tick count as a frame without hands.
func (a *App) consume(ctx context.Context, in <-chan frame) error {
	ticker := time.NewTicker(a.config.TickInterval)
	defer ticker.Stop()

	lastFrame := a.config.Now()
	for {
		var err error
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f, ok := <-in:
			if !ok {
				return nil
			}
			lastFrame = a.config.Now()
			err = a.process(f)
		case <-ticker.C:
			now := a.config.Now()
			if now.Sub(lastFrame) < a.config.TickInterval {
				continue
			}
			if a.config.Engine.PerceptionDown() {
				err = a.config.Engine.ProcessFrame(detector.NewFrameSet(nil, now))
			} else {
				err = a.config.Engine.Tick()
			}
			a.publishStatus()
		}
		if errors.Is(err, engine.ErrStopped) && a.config.ExitOnStop {
			return err
		}
	}
}

func (a *App) process(f frame) error {
	defer f.close()

	err := a.config.Engine.ProcessFrame(f.set)
	a.frames.Add(1)
	a.publishStatus()

	if a.config.OnFrame != nil && f.img != nil && !f.img.Empty() {
		if a.config.Renderer != nil {
			a.config.Renderer.Draw(f.img, a.config.Engine.Status(), f.set)
		}
		if data, encErr := overlay.EncodeJPEG(*f.img); encErr == nil {
			a.config.OnFrame(data)
		}
	}
	return err
}

func (a *App) publishStatus() {
	if a.config.OnStatus != nil {
		a.config.OnStatus(a.config.Engine.Status())
	}
}

// sleep waits d or until ctx is done, reporting whether to keep going.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
