package checkout

import (
	"errors"
	"sync"
	"time"
	"unicode"
)

// ScanState is the scan input machine state.
type ScanState int

const (
	ScanIdle      ScanState = iota
	ScanBuffering           // digits received, awaiting Enter or timeout
	ScanBlocked             // an unresolved product is pending user action
)

// ErrScanBlocked is returned for any scan activity while an unresolved
// product awaits user action. The input is discarded, never queued.
var ErrScanBlocked = errors.New("checkout: scan blocked until pending product is resolved")

// Scanner consumes the raw keystroke stream from a barcode scanner
// (emulated as fast keyboard input): digits are buffered, Enter completes a
// code, and a short inactivity timeout discards partial input as noise.
// The inactivity timer is a single cancelable handle — any keystroke stops
// the previous timer before scheduling the next, so a stale expiry can
// never clear a fresh buffer.
type Scanner struct {
	mu       sync.Mutex
	state    ScanState
	buf      []rune
	debounce time.Duration
	timer    *time.Timer
	pending  string // UPC awaiting resolution while blocked
}

func NewScanner(debounce time.Duration) *Scanner {
	return &Scanner{debounce: debounce}
}

// Key feeds one keystroke. Non-digits are ignored as noise. While blocked,
// all input is rejected and the partial buffer discarded.
func (s *Scanner) Key(r rune) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == ScanBlocked {
		s.buf = s.buf[:0]
		return ErrScanBlocked
	}
	if !unicode.IsDigit(r) {
		return nil
	}

	s.buf = append(s.buf, r)
	s.state = ScanBuffering
	s.stopTimerLocked()
	s.timer = time.AfterFunc(s.debounce, s.expire)
	return nil
}

// Enter completes the buffered code and returns it for lookup. An empty
// buffer returns "", nil. While blocked, the scan is rejected.
func (s *Scanner) Enter() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == ScanBlocked {
		s.buf = s.buf[:0]
		return "", ErrScanBlocked
	}
	s.stopTimerLocked()
	code := string(s.buf)
	s.buf = s.buf[:0]
	s.state = ScanIdle
	return code, nil
}

// expire fires on inactivity: the partial buffer was noise, not an error.
func (s *Scanner) expire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == ScanBuffering {
		s.buf = s.buf[:0]
		s.state = ScanIdle
	}
}

// Block enters the blocked state for an unresolved UPC. Any buffered
// digits are discarded.
func (s *Scanner) Block(upc string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
	s.buf = s.buf[:0]
	s.state = ScanBlocked
	s.pending = upc
}

// Unblock resolves the pending product and returns to idle.
func (s *Scanner) Unblock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = ScanIdle
	s.pending = ""
}

// Pending returns the UPC awaiting resolution, empty when not blocked.
func (s *Scanner) Pending() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func (s *Scanner) State() ScanState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scanner) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
