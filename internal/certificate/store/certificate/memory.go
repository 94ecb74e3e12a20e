package certificate

import (
	"context"
	"sync"

	"securevault/internal/certificate/models"
	"securevault/pkg/platform/sentinel"
)

// InMemory keeps certificates in process memory. It is the default backend
// for tests and demo deployments; production uses Postgres.
//
// Insertion order is preserved for ListAll/ListByStudent. The duplicate check
// and insert in Create happen under a single lock hold, so two concurrent
// creates with the same generated ID cannot both succeed.
type InMemory struct {
	mu    sync.RWMutex
	byID  map[string]*models.Certificate
	order []string
}

// NewInMemory creates an empty in-memory certificate store.
func NewInMemory() *InMemory {
	return &InMemory{byID: make(map[string]*models.Certificate)}
}

// Create persists a new certificate, failing with sentinel.ErrConflict when
// the uniqueId is already taken.
func (s *InMemory) Create(_ context.Context, cert *models.Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[cert.UniqueID]; exists {
		return sentinel.ErrConflict
	}
	stored := *cert
	s.byID[cert.UniqueID] = &stored
	s.order = append(s.order, cert.UniqueID)
	return nil
}

// FindByID returns a copy of the certificate with the given uniqueId.
func (s *InMemory) FindByID(_ context.Context, uniqueID string) (*models.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cert, ok := s.byID[uniqueID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	found := *cert
	return &found, nil
}

// ListByStudent returns all certificates for a student in insertion order.
func (s *InMemory) ListByStudent(_ context.Context, studentID string) ([]*models.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var certs []*models.Certificate
	for _, id := range s.order {
		if cert := s.byID[id]; cert != nil && cert.StudentID == studentID {
			found := *cert
			certs = append(certs, &found)
		}
	}
	return certs, nil
}

// ListAll returns every certificate in insertion order.
func (s *InMemory) ListAll(_ context.Context) ([]*models.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	certs := make([]*models.Certificate, 0, len(s.order))
	for _, id := range s.order {
		if cert := s.byID[id]; cert != nil {
			found := *cert
			certs = append(certs, &found)
		}
	}
	return certs, nil
}

// Update replaces the stored record with the same uniqueId.
func (s *InMemory) Update(_ context.Context, cert *models.Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[cert.UniqueID]; !ok {
		return sentinel.ErrNotFound
	}
	stored := *cert
	s.byID[cert.UniqueID] = &stored
	return nil
}

// Delete removes the certificate. Returns false (not an error) when the
// uniqueId does not exist.
func (s *InMemory) Delete(_ context.Context, uniqueID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[uniqueID]; !ok {
		return false, nil
	}
	delete(s.byID, uniqueID)
	for i, id := range s.order {
		if id == uniqueID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true, nil
}
