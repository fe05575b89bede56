//go:build cgo

package audiocapture

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

// capturer is the miniaudio implementation.
type capturer struct {
	cfg Config

	mu       sync.Mutex
	running  bool
	mctx     *malgo.AllocatedContext
	device   *malgo.Device
	chunker  *Chunker
	stopping atomic.Bool
}

// New creates a Capturer backed by miniaudio. The device is opened by Start.
func New(cfg Config) (Capturer, error) {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = ChunkSize
	}
	return &capturer{cfg: cfg}, nil
}

func (c *capturer) Start(handler ChunkHandler) error {
	if handler == nil {
		return errors.New("audiocapture: nil handler")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return ErrRunning
	}

	mctx, err := initContext()
	if err != nil {
		return err
	}

	if err := requireCaptureDevice(mctx); err != nil {
		freeContext(mctx)
		return err
	}

	devCfg := malgo.DefaultDeviceConfig(malgo.Capture)
	devCfg.Capture.Format = malgo.FormatUnknown // native
	devCfg.Capture.Channels = 0                 // native
	devCfg.SampleRate = 0                       // native

	// The mixer is set before the device is started, so the callback never
	// observes it nil.
	var mixer *Downmixer
	chunker := NewChunker(c.cfg.ChunkSize, handler)
	c.stopping.Store(false)

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			chunker.Write(mixer.Mono(input))
		},
		Stop: func() {
			if !c.stopping.Load() {
				slog.Error("capture device stopped unexpectedly")
			}
		},
	}

	device, err := malgo.InitDevice(mctx.Context, devCfg, callbacks)
	if err != nil {
		freeContext(mctx)
		return fmt.Errorf("init capture device: %w", err)
	}

	format := fromMalgoFormat(device.CaptureFormat())
	channels := int(device.CaptureChannels())
	mixer, err = NewDownmixer(format, channels)
	if err != nil {
		device.Uninit()
		freeContext(mctx)
		return fmt.Errorf("configure downmix: %w", err)
	}

	rate := device.SampleRate()
	if rate != SampleRate {
		slog.Warn("capture device rate differs from stream rate",
			"device_rate", rate, "stream_rate", SampleRate)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		freeContext(mctx)
		return fmt.Errorf("start capture device: %w", err)
	}

	c.mctx = mctx
	c.device = device
	c.chunker = chunker
	c.running = true

	slog.Info("audio capture started",
		"format", format, "channels", channels, "sample_rate", rate, "chunk", c.cfg.ChunkSize)
	return nil
}

func (c *capturer) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil
	}

	c.stopping.Store(true)
	if err := c.device.Stop(); err != nil {
		slog.Error("stop capture device", "error", err)
	}
	c.device.Uninit()
	freeContext(c.mctx)

	if n := c.chunker.Pending(); n > 0 {
		slog.Debug("discarding partial chunk", "samples", n)
	}

	c.device = nil
	c.mctx = nil
	c.chunker = nil
	c.running = false

	slog.Info("audio capture stopped")
	return nil
}

// Devices lists the available capture devices.
func Devices() ([]DeviceInfo, error) {
	mctx, err := initContext()
	if err != nil {
		return nil, err
	}
	defer freeContext(mctx)

	infos, err := mctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("enumerate capture devices: %w", err)
	}

	devices := make([]DeviceInfo, 0, len(infos))
	for i := range infos {
		devices = append(devices, DeviceInfo{
			Name:    infos[i].Name(),
			Default: infos[i].IsDefault != 0,
		})
	}
	return devices, nil
}

func initContext() (*malgo.AllocatedContext, error) {
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		slog.Debug("miniaudio", "message", strings.TrimSpace(message))
	})
	if err != nil {
		return nil, fmt.Errorf("init audio context: %w", err)
	}
	return mctx, nil
}

func freeContext(mctx *malgo.AllocatedContext) {
	if err := mctx.Uninit(); err != nil {
		slog.Error("uninit audio context", "error", err)
	}
	mctx.Free()
}

func requireCaptureDevice(mctx *malgo.AllocatedContext) error {
	infos, err := mctx.Devices(malgo.Capture)
	if err != nil {
		return fmt.Errorf("enumerate capture devices: %w", err)
	}
	if len(infos) == 0 {
		return ErrNoDevice
	}
	return nil
}

func fromMalgoFormat(f malgo.FormatType) SampleFormat {
	switch f {
	case malgo.FormatU8:
		return FormatU8
	case malgo.FormatS16:
		return FormatS16
	case malgo.FormatS24:
		return FormatS24
	case malgo.FormatS32:
		return FormatS32
	case malgo.FormatF32:
		return FormatF32
	default:
		return FormatUnknown
	}
}
