// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thermoquad/andromeda/pkg/panel"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func openTest(t *testing.T, path string, delay time.Duration) (*Store, *fakeClock) {
	t.Helper()
	s, err := Open(path, DefaultImage(128), delay, nil)
	require.NoError(t, err)
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	s.now = clock.now
	s.changedAt = clock.t
	return s, clock
}

func TestOpenMissingUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "andromeda", "settings.cbor")
	s, _ := openTest(t, path, 0)

	assert.Equal(t, DefaultImage(128), s.Image())
	assert.True(t, s.Dirty(), "defaults are written on the next flush")

	require.NoError(t, s.Flush())
	assert.FileExists(t, path)
	assert.False(t, s.Dirty())
}

func TestPersistAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.cbor")
	s, _ := openTest(t, path, 0)

	s.PersistDivisors(3, 2)
	s.PersistBrightness(200)
	require.NoError(t, s.Close())

	reopened, err := Open(path, DefaultImage(0), 0, nil)
	require.NoError(t, err)
	im := reopened.Image()
	assert.Equal(t, panel.Divisors{Normal: 3, VFO: 2}, im.Divisors())
	assert.Equal(t, uint8(200), im.Brightness)
	assert.False(t, reopened.Dirty())
}

func TestTickCoalescesWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.cbor")
	s, clock := openTest(t, path, 2*time.Second)
	require.NoError(t, s.Flush())
	require.Equal(t, uint64(1), s.Writes())

	for level := uint8(136); level < 200; level += 8 {
		s.PersistBrightness(level)
		clock.advance(500 * time.Millisecond)
		require.NoError(t, s.Tick())
	}
	assert.Equal(t, uint64(1), s.Writes(), "no write while the level keeps changing")

	clock.advance(2 * time.Second)
	require.NoError(t, s.Tick())
	assert.Equal(t, uint64(2), s.Writes())

	require.NoError(t, s.Tick())
	assert.Equal(t, uint64(2), s.Writes(), "clean store is not rewritten")
}

func TestFailedWriteWaitsForHoldOff(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	// The parent is a regular file, so every write fails
	s, clock := openTest(t, filepath.Join(blocker, "settings.cbor"), 2*time.Second)
	clock.advance(2 * time.Second)
	require.Error(t, s.Tick())

	clock.advance(time.Second)
	assert.NoError(t, s.Tick(), "no retry inside the hold-off")
	assert.True(t, s.Dirty())
	assert.Equal(t, uint64(0), s.Writes())

	clock.advance(time.Second)
	assert.Error(t, s.Tick(), "retried once the hold-off elapses")
}

func TestUnchangedValuesStayClean(t *testing.T) {
	s, _ := openTest(t, filepath.Join(t.TempDir(), "settings.cbor"), 0)
	require.NoError(t, s.Flush())

	s.PersistDivisors(1, 1)
	s.PersistBrightness(128)
	assert.False(t, s.Dirty())
}

func TestOpenBadImage(t *testing.T) {
	tests := []struct {
		name string
		data func(t *testing.T) []byte
	}{
		{"garbage", func(t *testing.T) []byte { return []byte{0xFF, 0x00, 0x13} }},
		{"old version", func(t *testing.T) []byte {
			data, err := cbor.Marshal(Image{Version: 0, NormalDivisor: 1, VFODivisor: 1})
			require.NoError(t, err)
			return data
		}},
		{"zero divisor", func(t *testing.T) []byte {
			data, err := Encode(Image{Version: ImageVersion, NormalDivisor: 0, VFODivisor: 1})
			require.NoError(t, err)
			return data
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "settings.cbor")
			require.NoError(t, os.WriteFile(path, tt.data(t), 0o644))

			s, err := Open(path, DefaultImage(64), 0, nil)
			require.NoError(t, err)
			assert.Equal(t, DefaultImage(64), s.Image())
			assert.True(t, s.Dirty())
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode([]byte{0x01})
	assert.ErrorIs(t, err, ErrBadImage)

	data, err := Encode(Image{Version: ImageVersion, NormalDivisor: 1, VFODivisor: 12})
	require.NoError(t, err)
	_, err = Decode(data)
	assert.ErrorIs(t, err, ErrBadImage)
}

func TestStoreWithController(t *testing.T) {
	s, _ := openTest(t, filepath.Join(t.TempDir(), "settings.cbor"), 0)

	var out []int
	ctrl, err := panel.NewController(panel.Config{
		Emitter:  emitterFunc(func(cmd panel.CommandID, param int) { out = append(out, param) }),
		Store:    s,
		Divisors: s.Image().Divisors(),
	})
	require.NoError(t, err)

	ctrl.OnNumericCommand(panel.CmdEncoderIncrement, 45)
	assert.Equal(t, panel.Divisors{Normal: 5, VFO: 4}, s.Image().Divisors())

	ctrl.OnQueryCommand(panel.CmdEncoderIncrement)
	assert.Equal(t, []int{45}, out)
}

type emitterFunc func(cmd panel.CommandID, param int)

func (f emitterFunc) EmitMessage(cmd panel.CommandID, param int) { f(cmd, param) }
