// services/otp_store.go
package services

import (
	"sync"
	"time"

	"github.com/khelarena/khelarena_backend/models"
)

// OtpStore keeps the live OTP record per phone in memory. The OTP
// service owns all mutations; one live record per phone at a time, and
// a Put while a record exists overwrites it, invalidating the old code.
// Expired records are also dropped lazily at verify time, so the sweep
// only exists to bound memory.
type OtpStore struct {
	mu      sync.Mutex
	records map[string]*models.OtpRecord
	now     func() time.Time
	done    chan struct{}
	stopped sync.Once
}

// NewOtpStore creates an empty store and starts its expiry sweep
func NewOtpStore() *OtpStore {
	s := &OtpStore{
		records: make(map[string]*models.OtpRecord),
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go s.sweep()
	return s
}

// Put stores the record for its phone, replacing any prior record
func (s *OtpStore) Put(record *models.OtpRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.Phone] = record
}

// Get returns a copy of the live record for phone, if any
func (s *OtpStore) Get(phone string) (*models.OtpRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[phone]
	if !ok {
		return nil, false
	}
	copied := *record
	return &copied, true
}

// Delete removes the record for phone
func (s *OtpStore) Delete(phone string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, phone)
}

// IncrementAttempts bumps the failed-attempt counter for phone and
// returns the new value. Returns 0, false when no record exists.
func (s *OtpStore) IncrementAttempts(phone string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[phone]
	if !ok {
		return 0, false
	}
	record.Attempts++
	return record.Attempts, true
}

// sweep deletes expired records every 5 minutes
func (s *OtpStore) sweep() {
	ticker := time.NewTicker(sweeperInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			now := s.now()
			s.mu.Lock()
			for phone, record := range s.records {
				if now.After(record.ExpiresAt) {
					delete(s.records, phone)
				}
			}
			s.mu.Unlock()
		}
	}
}

// Stop terminates the sweep routine
func (s *OtpStore) Stop() {
	s.stopped.Do(func() { close(s.done) })
}
