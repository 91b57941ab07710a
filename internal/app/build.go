package app

import (
	"fmt"
	"log"

	"github.com/ayusman/mudra/internal/actuator"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/engine"
	"github.com/ayusman/mudra/internal/overlay"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/store"
)

// Options are the caller hooks and overrides used by Build.
type Options struct {
	OnFrame      func(jpeg []byte)
	OnStatus     func(engine.Status)
	OnCalibrated func(engine.CalibrationResult)
	ExitOnStop   bool

	// ConfigureEngine adjusts the engine configuration before the engine is created.
	ConfigureEngine func(*engine.Config)

	// Camera, Detector and Actuator replace the real devices when set.
	Camera   capture.Camera
	Detector detector.Detector
	Actuator actuator.Actuator
}

// Build wires a complete App from cfg. Finished calibrations are recorded in
// st when it is not nil.
func Build(cfg config.Config, st *store.Store, opts Options) (*App, error) {
	plugins := plugin.NewManager(cfg.PluginDir)
	if err := plugins.Discover(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
	}
	executor := plugin.NewExecutor(plugin.DefaultTimeout)

	act := opts.Actuator
	var volume *plugin.Volume
	if act == nil {
		volume = plugin.NewVolume(plugins, executor)
		act = actuator.NewDesktop(volume).
			WithKeyFallback(plugin.NewKeys(plugins, executor))
	}

	ec := cfg.EngineConfig()
	if opts.ConfigureEngine != nil {
		opts.ConfigureEngine(&ec)
	}
	ec.OnCalibrated = func(res engine.CalibrationResult) {
		log.Printf("Calibrated: click %.1f, volume %.1f..%.1f",
			res.Thresholds.ClickDistance, res.Thresholds.VolMinDist, res.Thresholds.VolMaxDist)
		if st != nil {
			if err := RecordCalibration(st.Calibrations(), res); err != nil {
				log.Printf("Failed to save calibration: %v", err)
			}
		}
		if opts.OnCalibrated != nil {
			opts.OnCalibrated(res)
		}
	}
	eng, err := engine.New(ec, act)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	det := opts.Detector
	if det == nil {
		if mp, err := detector.NewMediaPipeDetector(cfg.DetectorConfig()); err == nil {
			det = mp
			log.Println("Using MediaPipe hand detection")
		} else {
			log.Printf("MediaPipe not available (%v), using mock detector", err)
			det = detector.NewMockDetector()
		}
	}

	cam := opts.Camera
	if cam == nil {
		cam = capture.NewCamera(cfg.CameraConfig())
	}

	renderer := overlay.NewRenderer(overlay.Config{
		Margin:    cfg.Margin,
		Layout:    engine.DefaultLayout(),
		Skeletons: true,
	})

	a, err := New(Config{
		Camera:     cam,
		Detector:   det,
		Engine:     eng,
		Motion:     capture.NewMotionDetector(cfg.MotionThreshold),
		Rate:       capture.NewRateController(cfg.IdleFPS, cfg.ActiveFPS, cfg.QuietPeriod),
		Renderer:   renderer,
		OnFrame:    opts.OnFrame,
		OnStatus:   opts.OnStatus,
		Plugins:    plugins,
		ExitOnStop: opts.ExitOnStop,
	})
	if err != nil {
		return nil, err
	}
	if volume != nil {
		a.OnClose(volume.Close)
	}
	return a, nil
}
