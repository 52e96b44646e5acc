package memory

import (
	// Go Internal Packages
	"context"
	"sync"
	"time"

	// Local Packages
	errors "tanda-go/errors"
	models "tanda-go/models"
)

// Store keeps transactions and fundings in process. Records are copied on
// the way in and out so callers never share memory with the store.
type Store struct {
	mu           sync.RWMutex
	nextID       uint
	transactions map[string]models.Transaction
	fundings     map[string]models.Funding
}

func NewStore() *Store {
	return &Store{
		transactions: make(map[string]models.Transaction),
		fundings:     make(map[string]models.Funding),
	}
}

func (s *Store) CreateTransaction(_ context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[tx.Reference]; ok {
		return errors.E(errors.Conflict, "duplicate transaction reference "+tx.Reference, nil)
	}
	s.nextID++
	tx.ID = s.nextID
	tx.CreatedAt = time.Now()
	tx.UpdatedAt = tx.CreatedAt
	s.transactions[tx.Reference] = *tx
	return nil
}

func (s *Store) SaveTransaction(_ context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[tx.Reference]; !ok {
		return errors.NotFoundErr("transaction", tx.Reference)
	}
	tx.UpdatedAt = time.Now()
	s.transactions[tx.Reference] = *tx
	return nil
}

func (s *Store) FindTransactionByReference(_ context.Context, reference string) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.transactions[reference]
	if !ok {
		return nil, errors.NotFoundErr("transaction", reference)
	}
	return &tx, nil
}

func (s *Store) FindTransactionByTrackingID(_ context.Context, trackingID string) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if trackingID != "" {
		for _, tx := range s.transactions {
			if tx.TrackingID == trackingID {
				return &tx, nil
			}
		}
	}
	return nil, errors.NotFoundErr("transaction", trackingID)
}

func (s *Store) CreateFunding(_ context.Context, f *models.Funding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.fundings[f.Reference]; ok {
		return errors.E(errors.Conflict, "duplicate funding reference "+f.Reference, nil)
	}
	s.nextID++
	f.ID = s.nextID
	f.CreatedAt = time.Now()
	f.UpdatedAt = f.CreatedAt
	s.fundings[f.Reference] = *f
	return nil
}

func (s *Store) SaveFunding(_ context.Context, f *models.Funding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.fundings[f.Reference]; !ok {
		return errors.NotFoundErr("funding", f.Reference)
	}
	f.UpdatedAt = time.Now()
	s.fundings[f.Reference] = *f
	return nil
}

func (s *Store) FindFundingByReference(_ context.Context, reference string) (*models.Funding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.fundings[reference]
	if !ok {
		return nil, errors.NotFoundErr("funding", reference)
	}
	return &f, nil
}

func (s *Store) FindFundingByTrackingID(_ context.Context, trackingID string) (*models.Funding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if trackingID != "" {
		for _, f := range s.fundings {
			if f.TrackingID == trackingID {
				return &f, nil
			}
		}
	}
	return nil, errors.NotFoundErr("funding", trackingID)
}

// Fundings returns every funding record.
func (s *Store) Fundings() []models.Funding {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Funding, 0, len(s.fundings))
	for _, f := range s.fundings {
		out = append(out, f)
	}
	return out
}
