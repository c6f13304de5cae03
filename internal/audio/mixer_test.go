package audio

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"

	"belltower/internal/logging"
	"belltower/internal/services"
)

type stubStreamer struct {
	remaining int
}

func (s *stubStreamer) Stream(samples [][2]float64) (int, bool) {
	if s.remaining <= 0 {
		return 0, false
	}
	n := len(samples)
	if n > s.remaining {
		n = s.remaining
	}
	s.remaining -= n
	return n, true
}

func (s *stubStreamer) Err() error       { return nil }
func (s *stubStreamer) Len() int         { return 0 }
func (s *stubStreamer) Position() int    { return 0 }
func (s *stubStreamer) Seek(p int) error { return nil }
func (s *stubStreamer) Close() error     { return nil }

type fakeDriver struct {
	initErr error
	drain   bool

	mu     sync.Mutex
	played []beep.Streamer
	clears int
	closed bool
}

func (d *fakeDriver) Init(rate beep.SampleRate, bufferSize int) error {
	return d.initErr
}

func (d *fakeDriver) Play(s beep.Streamer) {
	d.mu.Lock()
	d.played = append(d.played, s)
	drain := d.drain
	d.mu.Unlock()
	if !drain {
		return
	}
	go func() {
		buf := make([][2]float64, 512)
		for {
			if _, ok := s.Stream(buf); !ok {
				return
			}
		}
	}()
}

func (d *fakeDriver) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clears++
}

func (d *fakeDriver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
}

func (d *fakeDriver) playCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.played)
}

func stubDecoder(remaining int) decodeFunc {
	return func(path string) (beep.StreamSeekCloser, beep.Format, io.Closer, error) {
		return &stubStreamer{remaining: remaining}, beep.Format{SampleRate: 44100}, nil, nil
	}
}

func newTestMixer(t *testing.T, driver *fakeDriver, decode decodeFunc) *Mixer {
	t.Helper()
	m, err := NewMixer(44100, logging.NewNop(), WithDriver(driver), WithDecoder(decode))
	if err != nil {
		t.Fatalf("NewMixer returned error: %v", err)
	}
	return m
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestMixerPlayBlocksUntilClipCompletes(t *testing.T) {
	driver := &fakeDriver{drain: true}
	m := newTestMixer(t, driver, stubDecoder(4096))

	if err := m.Play(context.Background(), "chime.wav"); err != nil {
		t.Fatalf("Play returned error: %v", err)
	}
	if driver.playCount() != 1 {
		t.Fatalf("expected one driver play, got %d", driver.playCount())
	}
}

func TestMixerNewTriggerPreemptsLiveClip(t *testing.T) {
	driver := &fakeDriver{}
	m := newTestMixer(t, driver, stubDecoder(1<<20))

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- m.Play(context.Background(), "first.wav")
	}()
	waitFor(t, func() bool { return driver.playCount() == 1 }, "first clip never started")

	secondDone := make(chan error, 1)
	go func() {
		secondDone <- m.Play(context.Background(), "second.wav")
	}()
	waitFor(t, func() bool { return driver.playCount() == 2 }, "second clip never started")

	select {
	case err := <-firstDone:
		if err != nil {
			t.Fatalf("preempted clip should return nil, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("preempted clip did not unblock")
	}

	m.Stop()
	select {
	case err := <-secondDone:
		if err != nil {
			t.Fatalf("stopped clip should return nil, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stopped clip did not unblock")
	}
}

func TestMixerPlayHonorsContextCancellation(t *testing.T) {
	driver := &fakeDriver{}
	m := newTestMixer(t, driver, stubDecoder(1<<20))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- m.Play(ctx, "chime.wav")
	}()
	waitFor(t, func() bool { return driver.playCount() == 1 }, "clip never started")

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("canceled clip did not unblock")
	}
}

func TestNewMixerInitFailureIsUnavailable(t *testing.T) {
	driver := &fakeDriver{initErr: errors.New("no output device")}
	_, err := NewMixer(44100, logging.NewNop(), WithDriver(driver))
	if !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}

func TestMixerDecodeFailureIsTransient(t *testing.T) {
	driver := &fakeDriver{}
	decode := func(path string) (beep.StreamSeekCloser, beep.Format, io.Closer, error) {
		return nil, beep.Format{}, nil, errors.New("corrupt header")
	}
	m := newTestMixer(t, driver, decode)

	err := m.Play(context.Background(), "broken.wav")
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if driver.playCount() != 0 {
		t.Fatal("driver must not play undecodable clips")
	}
}

func TestMixerCloseReleasesDriver(t *testing.T) {
	driver := &fakeDriver{drain: true}
	m := newTestMixer(t, driver, stubDecoder(16))

	if err := m.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	driver.mu.Lock()
	closed := driver.closed
	driver.mu.Unlock()
	if !closed {
		t.Fatal("driver should be closed")
	}
}
