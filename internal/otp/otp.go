// Package otp issues and checks one-time codes used to verify high-risk
// cash-on-delivery orders over WhatsApp.
package otp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"
	"sync"
	"time"
)

// CodeTTL is how long an issued code stays valid.
const CodeTTL = 5 * time.Minute

const codeDigits = 6

type entry struct {
	digest    []byte
	expiresAt time.Time
}

// Manager issues single-use numeric codes keyed by phone number. Codes are
// stored hashed; a successful verify consumes the code.
type Manager struct {
	mu    sync.Mutex
	codes map[string]entry
	now   func() time.Time
}

func NewManager() *Manager {
	return &Manager{
		codes: make(map[string]entry),
		now:   time.Now,
	}
}

// Issue generates a fresh code for phone, replacing any outstanding one.
// The plaintext code is returned once for delivery and never stored.
func (m *Manager) Issue(phone string) (string, error) {
	code, err := randomCode()
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[phone] = entry{
		digest:    digest(phone, code),
		expiresAt: m.now().Add(CodeTTL),
	}
	return code, nil
}

// Verify checks code against the outstanding code for phone. A match
// consumes the code; expired or already-used codes fail.
func (m *Manager) Verify(phone, code string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.codes[phone]
	if !ok {
		return false
	}
	if m.now().After(e.expiresAt) {
		delete(m.codes, phone)
		return false
	}
	if !hmac.Equal(e.digest, digest(phone, code)) {
		return false
	}
	delete(m.codes, phone)
	return true
}

func randomCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < codeDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n), nil
}

// digest keys the hash by phone so a code leaked for one number is useless
// for another.
func digest(phone, code string) []byte {
	mac := hmac.New(sha256.New, []byte(phone))
	mac.Write([]byte(code))
	return mac.Sum(nil)
}
