// Package miniaudio records push-to-talk takes from the default capture
// device using malgo bindings.
package miniaudio

import (
	"context"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/hanagata/kioskd/core/audio"
)

// Recorder owns a single capture device and accumulates one take at a
// time. Start begins a new take, Stop returns the raw linear16 bytes
// recorded since Start.
type Recorder struct {
	audioContext *malgo.AllocatedContext
	device       *malgo.Device
	config       malgo.DeviceConfig

	mu        sync.Mutex
	recording bool
	take      []byte
}

func NewRecorder() (*Recorder, error) {
	audioCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio context: %w", err)
	}

	r := &Recorder{audioContext: audioCtx}
	if err := r.initDevice(); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

func (r *Recorder) initDevice() error {
	channels := 1
	format := malgo.FormatS16
	bytesPerFrame := malgo.SampleSizeInBytes(format) * channels

	r.config = malgo.DefaultDeviceConfig(malgo.Capture)
	r.config.SampleRate = uint32(audio.DefaultSampleRate)
	r.config.Capture.Format = format
	r.config.Capture.Channels = uint32(channels)
	r.config.Alsa.NoMMap = 1
	r.config.PerformanceProfile = malgo.LowLatency
	r.config.PeriodSizeInFrames = 480
	r.config.Periods = 3

	var err error
	r.device, err = malgo.InitDevice(r.audioContext.Context, r.config, malgo.DeviceCallbacks{
		Data: func(_, pInput []byte, frameCount uint32) {
			n := int(frameCount) * bytesPerFrame
			if len(pInput) < n || n == 0 {
				return
			}
			r.mu.Lock()
			if r.recording {
				r.take = append(r.take, pInput[:n]...)
			}
			r.mu.Unlock()
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize capture device: %w", err)
	}
	return nil
}

func (r *Recorder) Start(_ context.Context) error {
	r.mu.Lock()
	if r.device == nil {
		r.mu.Unlock()
		return fmt.Errorf("device not initialized")
	}
	r.recording = true
	r.take = nil
	r.mu.Unlock()

	if r.device.IsStarted() {
		return nil
	}
	if err := r.device.Start(); err != nil {
		return fmt.Errorf("failed to start capture device: %w", err)
	}
	return nil
}

func (r *Recorder) Stop() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.device == nil {
		return nil, fmt.Errorf("device not initialized")
	}
	if !r.recording {
		return nil, nil
	}
	r.recording = false
	take := r.take
	r.take = nil

	if r.device.IsStarted() {
		if err := r.device.Stop(); err != nil {
			return take, fmt.Errorf("failed to stop capture device: %w", err)
		}
	}
	return take, nil
}

func (r *Recorder) EncodingInfo() audio.EncodingInfo {
	return audio.GetDefaultEncodingInfo()
}

func (r *Recorder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.device != nil {
		r.device.Uninit()
		r.device = nil
	}
	if r.audioContext != nil {
		_ = r.audioContext.Uninit()
		r.audioContext.Free()
		r.audioContext = nil
	}
}
