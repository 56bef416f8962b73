// Package credstore holds per-server bot credentials: the shared secret,
// the derived request signature and the lazily acquired bearer token.
package credstore

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Account identifies the bot on one messenger server (CTS).
type Account struct {
	BotID     uuid.UUID
	Host      string
	SecretKey string
}

type serverEntry struct {
	account Account

	// tokenMu serializes token writes per host.
	tokenMu sync.Mutex
	token   string
}

// Store keeps one credentials entry per messenger host. It is safe for
// concurrent use; token writes are serialized per host.
type Store struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]*serverEntry
}

// New creates a store preloaded with the given accounts. Accounts sharing a
// host replace each other, last writer wins.
func New(accounts ...Account) *Store {
	s := &Store{entries: make(map[string]*serverEntry)}
	for _, a := range accounts {
		s.Add(a)
	}
	return s
}

// Add installs credentials for the account's host, silently replacing any
// existing entry for that host. Replacement is the documented way to
// reconfigure a multi-server bot.
func (s *Store) Add(account Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[account.Host]; !ok {
		s.order = append(s.order, account.Host)
	}
	s.entries[account.Host] = &serverEntry{account: account}
}

// Get returns the account registered for host.
func (s *Store) Get(host string) (Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[host]
	if !ok {
		return Account{}, false
	}
	return e.account, true
}

// GetByBotID returns the account whose bot id matches. Inbound commands
// carry a bot id, not a host, so ingress resolution goes through here.
func (s *Store) GetByBotID(botID uuid.UUID) (Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, host := range s.order {
		if e := s.entries[host]; e.account.BotID == botID {
			return e.account, true
		}
	}
	return Account{}, false
}

// Hosts returns the registered hosts in insertion order.
func (s *Store) Hosts() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hosts := make([]string, len(s.order))
	copy(hosts, s.order)
	return hosts
}

// Token returns the cached bearer token for host, if one was issued.
func (s *Store) Token(host string) (string, bool) {
	s.mu.RLock()
	e, ok := s.entries[host]
	s.mu.RUnlock()
	if !ok {
		return "", false
	}
	e.tokenMu.Lock()
	defer e.tokenMu.Unlock()
	return e.token, e.token != ""
}

// SetToken stores a freshly issued token for host. Concurrent acquisitions
// may race; the last stored token wins and is the one later calls observe.
func (s *Store) SetToken(host, token string) error {
	s.mu.RLock()
	e, ok := s.entries[host]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("no credentials for host %q", host)
	}
	e.tokenMu.Lock()
	e.token = token
	e.tokenMu.Unlock()
	return nil
}

// Signature derives the token-request signature for (host, botID):
// uppercase hex of HMAC-SHA256 over the bot id bytes keyed by the host's
// shared secret.
func (s *Store) Signature(host string, botID uuid.UUID) (string, error) {
	account, ok := s.Get(host)
	if !ok {
		return "", fmt.Errorf("no credentials for host %q", host)
	}
	mac := hmac.New(sha256.New, []byte(account.SecretKey))
	mac.Write([]byte(botID.String()))
	return strings.ToUpper(hex.EncodeToString(mac.Sum(nil))), nil
}
