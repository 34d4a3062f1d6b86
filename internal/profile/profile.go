package profile

import (
	"sync"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/hxabcd/sms-code-sync/internal/domain"
)

const (
	// TOTP parameters
	totpPeriod = 30
	totpSkew   = 1 // Allow ±30 seconds clock drift
)

// Profile is one monitored identity: a TOTP secret, a bounded rolling
// history of extracted codes, and the set of clients currently inside
// their verification window. Name, secret, window and capacity are fixed
// at construction; history and verification state are guarded by a single
// per-profile mutex.
type Profile struct {
	name     string
	secret   string
	window   int64
	capacity int

	mu         sync.Mutex
	history    []domain.CodeRecord
	verifiedAt map[string]int64

	now func() time.Time
}

// New creates a profile. Window and capacity must be positive.
func New(name, secret string, window, capacity int) *Profile {
	return &Profile{
		name:       name,
		secret:     secret,
		window:     int64(window),
		capacity:   capacity,
		verifiedAt: make(map[string]int64),
		now:        time.Now,
	}
}

// Name returns the profile name.
func (p *Profile) Name() string { return p.name }

// Window returns the verification window in seconds.
func (p *Profile) Window() int { return int(p.window) }

// IsVerified reports whether clientID is inside its verification window,
// and how many seconds of the window remain. A client that never verified,
// or whose last verification is window seconds or more in the past, is not
// verified. Stale entries are left in place; validity is computed lazily.
func (p *Profile) IsVerified(clientID string) (bool, int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ts, ok := p.verifiedAt[clientID]
	if !ok {
		return false, 0
	}
	elapsed := p.now().Unix() - ts
	if elapsed >= p.window {
		return false, 0
	}
	return true, int(p.window - elapsed)
}

// Verify validates token against the profile's TOTP secret at the current
// time step. On success the client's verification timestamp is set to now.
// Empty or malformed tokens are simply invalid, never an error.
func (p *Profile) Verify(clientID, token string) bool {
	valid, err := totp.ValidateCustom(token, p.secret, p.now(), totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      totpSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil || !valid {
		return false
	}

	p.mu.Lock()
	p.verifiedAt[clientID] = p.now().Unix()
	p.mu.Unlock()
	return true
}

// Logout removes the client's verification state. Idempotent.
func (p *Profile) Logout(clientID string) {
	p.mu.Lock()
	delete(p.verifiedAt, clientID)
	p.mu.Unlock()
}

// RecordCode prepends rec to the history, evicting the oldest entry when
// the history is at capacity.
func (p *Profile) RecordCode(rec domain.CodeRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.history) >= p.capacity {
		p.history = p.history[:p.capacity-1]
	}
	p.history = append([]domain.CodeRecord{rec}, p.history...)
}

// History returns a copy of the stored codes, newest first.
func (p *Profile) History() []domain.CodeRecord {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]domain.CodeRecord, len(p.history))
	copy(out, p.history)
	return out
}

// ClearHistory empties the stored codes.
func (p *Profile) ClearHistory() {
	p.mu.Lock()
	p.history = nil
	p.mu.Unlock()
}
