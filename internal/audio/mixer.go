package audio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"belltower/internal/logging"
	"belltower/internal/services"
)

const (
	// completionPoll bounds how long a finished clip keeps its caller blocked.
	completionPoll = 100 * time.Millisecond

	resampleQuality = 4
)

// mixerDriver abstracts the beep speaker so preemption semantics are testable
// without an audio device.
type mixerDriver interface {
	Init(rate beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Clear()
	Close()
}

type speakerDriver struct{}

func (speakerDriver) Init(rate beep.SampleRate, bufferSize int) error {
	return speaker.Init(rate, bufferSize)
}

func (speakerDriver) Play(s beep.Streamer) { speaker.Play(s) }

func (speakerDriver) Clear() { speaker.Clear() }

func (speakerDriver) Close() { speaker.Close() }

type decodeFunc func(path string) (beep.StreamSeekCloser, beep.Format, io.Closer, error)

// Mixer plays clips through the in-process beep speaker. At most one clip is
// live at a time; a new trigger preempts whatever is playing.
type Mixer struct {
	rate   beep.SampleRate
	driver mixerDriver
	decode decodeFunc
	logger *slog.Logger

	mu      sync.Mutex
	current *clipHandle
}

// MixerOption configures optional Mixer behavior.
type MixerOption func(*Mixer)

// WithDriver injects a custom speaker driver (primarily for tests).
func WithDriver(driver mixerDriver) MixerOption {
	return func(m *Mixer) {
		if driver != nil {
			m.driver = driver
		}
	}
}

// WithDecoder injects a custom clip decoder (primarily for tests).
func WithDecoder(decode decodeFunc) MixerOption {
	return func(m *Mixer) {
		if decode != nil {
			m.decode = decode
		}
	}
}

// NewMixer initializes the speaker at the given engine sample rate. A failed
// init means the host has no usable in-process audio and callers should fall
// back to the next backend.
func NewMixer(sampleRate int, logger *slog.Logger, opts ...MixerOption) (*Mixer, error) {
	m := &Mixer{
		rate:   beep.SampleRate(sampleRate),
		driver: speakerDriver{},
		decode: decodeFile,
		logger: logging.NewComponentLogger(logger, "mixer"),
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := m.driver.Init(m.rate, m.rate.N(completionPoll)); err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "mixer", "init", "speaker init failed", err)
	}
	return m, nil
}

func (m *Mixer) Name() string { return "mixer" }

// Play decodes the clip, preempts any live one, and blocks until this clip
// completes, is itself preempted, or ctx is canceled. Preemption is
// last-wins: two triggers in the same minute leave only the later audible.
func (m *Mixer) Play(ctx context.Context, path string) error {
	streamer, format, closer, err := m.decode(path)
	if err != nil {
		return services.Wrap(services.ErrTransient, "mixer", "decode", filepath.Base(path), err)
	}
	defer func() {
		_ = streamer.Close()
		if closer != nil {
			_ = closer.Close()
		}
	}()

	var stream beep.Streamer = streamer
	if format.SampleRate != m.rate {
		stream = beep.Resample(resampleQuality, format.SampleRate, m.rate, streamer)
	}

	handle := newClipHandle()
	m.mu.Lock()
	if m.current != nil {
		m.driver.Clear()
		m.current.preempt()
	}
	m.current = handle
	m.driver.Play(beep.Seq(stream, beep.Callback(handle.finish)))
	m.mu.Unlock()

	ticker := time.NewTicker(completionPoll)
	defer ticker.Stop()
	for {
		select {
		case <-handle.done:
			m.detach(handle)
			if handle.preempted.Load() {
				m.logger.Debug("clip preempted by a newer trigger",
					logging.String("path", filepath.Base(path)),
				)
			}
			return nil
		case <-ctx.Done():
			m.stopHandle(handle)
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Stop halts the live clip, if any. Used on shutdown.
func (m *Mixer) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		m.driver.Clear()
		m.current.finish()
		m.current = nil
	}
}

// Close stops playback and releases the speaker.
func (m *Mixer) Close() error {
	m.Stop()
	m.driver.Close()
	return nil
}

func (m *Mixer) detach(handle *clipHandle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == handle {
		m.current = nil
	}
}

func (m *Mixer) stopHandle(handle *clipHandle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == handle {
		m.driver.Clear()
		m.current = nil
	}
	handle.finish()
}

// clipHandle marks completion of one clip. The speaker never invokes the
// completion callback for cleared streamers, so preemption and shutdown close
// the handle explicitly.
type clipHandle struct {
	done      chan struct{}
	once      sync.Once
	preempted atomic.Bool
}

func newClipHandle() *clipHandle {
	return &clipHandle{done: make(chan struct{})}
}

func (h *clipHandle) finish() {
	h.once.Do(func() { close(h.done) })
}

func (h *clipHandle) preempt() {
	h.preempted.Store(true)
	h.finish()
}

func decodeFile(path string) (beep.StreamSeekCloser, beep.Format, io.Closer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, nil, err
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		streamer, format, err = wav.Decode(file)
	case ".mp3":
		streamer, format, err = mp3.Decode(file)
	case ".ogg", ".oga":
		streamer, format, err = vorbis.Decode(file)
	default:
		_ = file.Close()
		return nil, beep.Format{}, nil, fmt.Errorf("unsupported audio format %q", filepath.Ext(path))
	}
	if err != nil {
		_ = file.Close()
		return nil, beep.Format{}, nil, err
	}
	return streamer, format, file, nil
}
