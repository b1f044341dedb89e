package checkout

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feed(t *testing.T, s *Scanner, input string) {
	t.Helper()
	for _, r := range input {
		require.NoError(t, s.Key(r))
	}
}

func TestScannerEnterCompletesCode(t *testing.T) {
	s := NewScanner(time.Second)
	feed(t, s, "012345678905")

	code, err := s.Enter()
	require.NoError(t, err)
	assert.Equal(t, "012345678905", code)
	assert.Equal(t, ScanIdle, s.State())
}

func TestScannerIgnoresNonDigits(t *testing.T) {
	s := NewScanner(time.Second)
	for _, r := range "a1b2-3 " {
		require.NoError(t, s.Key(r))
	}
	code, err := s.Enter()
	require.NoError(t, err)
	assert.Equal(t, "123", code)
}

func TestScannerEmptyEnterIsNoop(t *testing.T) {
	s := NewScanner(time.Second)
	code, err := s.Enter()
	require.NoError(t, err)
	assert.Empty(t, code)
	assert.Equal(t, ScanIdle, s.State())
}

func TestScannerDebounceDiscardsPartialBuffer(t *testing.T) {
	s := NewScanner(20 * time.Millisecond)
	feed(t, s, "123")
	assert.Equal(t, ScanBuffering, s.State())

	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, ScanIdle, s.State())
	code, err := s.Enter()
	require.NoError(t, err)
	assert.Empty(t, code, "expired partial input must not resolve")
}

func TestScannerKeystrokeRestartsTimer(t *testing.T) {
	s := NewScanner(50 * time.Millisecond)
	feed(t, s, "12")
	time.Sleep(30 * time.Millisecond)
	feed(t, s, "34") // within the window, timer restarts
	time.Sleep(30 * time.Millisecond)

	code, err := s.Enter()
	require.NoError(t, err)
	assert.Equal(t, "1234", code)
}

func TestScannerBlockedRejectsInput(t *testing.T) {
	s := NewScanner(time.Second)
	s.Block("999000111222")

	assert.Equal(t, ScanBlocked, s.State())
	assert.Equal(t, "999000111222", s.Pending())

	err := s.Key('5')
	assert.True(t, errors.Is(err, ErrScanBlocked))
	_, err = s.Enter()
	assert.True(t, errors.Is(err, ErrScanBlocked))

	// Rejected input is discarded, never queued behind the block.
	s.Unblock()
	code, err := s.Enter()
	require.NoError(t, err)
	assert.Empty(t, code)
	assert.Empty(t, s.Pending())
}

func TestScannerBlockDiscardsBufferedDigits(t *testing.T) {
	s := NewScanner(time.Second)
	feed(t, s, "777")
	s.Block("777")
	s.Unblock()

	code, err := s.Enter()
	require.NoError(t, err)
	assert.Empty(t, code)
}
