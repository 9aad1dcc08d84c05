// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package settings persists the panel settings that the host can change at
// run time: the encoder divisors and the indicator brightness.
//
// The settings are kept as a small CBOR image. Changes are written back
// after they have settled for a hold-off period, so that a brightness sweep
// on an encoder costs one write rather than one per click.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"go.uber.org/zap"

	"github.com/Thermoquad/andromeda/pkg/panel"
)

// ImageVersion is the current image layout
const ImageVersion = 1

// ErrBadImage is returned for an image that cannot be used
var ErrBadImage = errors.New("settings: bad image")

// Image is the stored settings record
type Image struct {
	Version       int   `cbor:"1,keyasint"`
	NormalDivisor int   `cbor:"2,keyasint"`
	VFODivisor    int   `cbor:"3,keyasint"`
	Brightness    uint8 `cbor:"4,keyasint"`
}

// Divisors returns the stored encoder divisors
func (im Image) Divisors() panel.Divisors {
	return panel.Divisors{Normal: im.NormalDivisor, VFO: im.VFODivisor}
}

// Check reports whether the image can be used
func (im Image) Check() error {
	if im.Version != ImageVersion {
		return fmt.Errorf("%w: version %d", ErrBadImage, im.Version)
	}
	if im.NormalDivisor < 1 || im.NormalDivisor > 9 {
		return fmt.Errorf("%w: encoder divisor %d", ErrBadImage, im.NormalDivisor)
	}
	if im.VFODivisor < 1 || im.VFODivisor > 9 {
		return fmt.Errorf("%w: VFO divisor %d", ErrBadImage, im.VFODivisor)
	}
	return nil
}

// DefaultImage returns the image used when nothing valid is stored
func DefaultImage(brightness uint8) Image {
	d := panel.DefaultDivisors()
	return Image{
		Version:       ImageVersion,
		NormalDivisor: d.Normal,
		VFODivisor:    d.VFO,
		Brightness:    brightness,
	}
}

// Encode marshals an image
func Encode(im Image) ([]byte, error) {
	return cbor.Marshal(im)
}

// Decode unmarshals and checks an image
func Decode(data []byte) (Image, error) {
	var im Image
	if err := cbor.Unmarshal(data, &im); err != nil {
		return Image{}, fmt.Errorf("%w: %w", ErrBadImage, err)
	}
	if err := im.Check(); err != nil {
		return Image{}, err
	}
	return im, nil
}

// Store holds the settings image in memory and writes it to path. It
// implements panel.DivisorStore and panel.BrightnessStore and is safe for
// concurrent use.
type Store struct {
	mu    sync.Mutex
	path  string
	delay time.Duration
	log   *zap.Logger
	now   func() time.Time

	image     Image
	dirty     bool
	changedAt time.Time
	writes    uint64
}

// Open loads the image at path. A missing or unusable image is replaced by
// defaults, which are written on the next flush. log may be nil.
func Open(path string, defaults Image, delay time.Duration, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{
		path:  path,
		delay: delay,
		log:   log,
		now:   time.Now,
		image: defaults,
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Info("no stored settings, using defaults", zap.String("path", path))
		s.markDirty()
	case err != nil:
		return nil, fmt.Errorf("read settings: %w", err)
	default:
		im, err := Decode(data)
		if err != nil {
			log.Warn("stored settings unusable, using defaults", zap.String("path", path), zap.Error(err))
			s.markDirty()
			break
		}
		s.image = im
	}
	return s, nil
}

// Image returns the current settings
func (s *Store) Image() Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.image
}

// Dirty reports whether changes are waiting to be written
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Writes returns the number of images written
func (s *Store) Writes() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// PersistDivisors implements panel.DivisorStore
func (s *Store) PersistDivisors(normal, vfo int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.image.NormalDivisor == normal && s.image.VFODivisor == vfo {
		return
	}
	s.image.NormalDivisor = normal
	s.image.VFODivisor = vfo
	s.markDirty()
}

// PersistBrightness implements panel.BrightnessStore
func (s *Store) PersistBrightness(level uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.image.Brightness == level {
		return
	}
	s.image.Brightness = level
	s.markDirty()
}

// markDirty restarts the hold-off; the caller holds mu
func (s *Store) markDirty() {
	s.dirty = true
	s.changedAt = s.now()
}

// Tick writes the image once it has been unchanged for the hold-off period
func (s *Store) Tick() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty || s.now().Sub(s.changedAt) < s.delay {
		return nil
	}
	return s.flush()
}

// Flush writes pending changes immediately
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}
	return s.flush()
}

// Close flushes pending changes
func (s *Store) Close() error {
	return s.Flush()
}

func (s *Store) flush() error {
	data, err := Encode(s.image)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := writeAtomic(s.path, data); err != nil {
		// retry after another hold-off rather than on every tick
		s.changedAt = s.now()
		return err
	}
	s.dirty = false
	s.writes++
	s.log.Debug("settings written", zap.String("path", s.path),
		zap.Int("normal", s.image.NormalDivisor), zap.Int("vfo", s.image.VFODivisor),
		zap.Uint8("brightness", s.image.Brightness))
	return nil
}

// writeAtomic replaces path with data via a temporary file in the same
// directory
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

var (
	_ panel.DivisorStore    = (*Store)(nil)
	_ panel.BrightnessStore = (*Store)(nil)
)
