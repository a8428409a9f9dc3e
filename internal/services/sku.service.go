package services

import (
	"context"
	"fmt"
	"sync"

	"labstock/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
)

const skuPrefix = "LAB-"

// SKUService issues equipment identifiers of the form LAB-NNNNN. The
// counter is seeded from the highest suffix already in the store, then
// advances monotonically under a local mutex so concurrent intakes never
// share an identifier.
type SKUService struct {
	mu     sync.Mutex
	next   int
	seeded bool
	repo   repositories.EquipmentRepository
	log    logger.Logger
}

func NewSKUService(repo repositories.EquipmentRepository) *SKUService {
	return &SKUService{
		repo: repo,
		log:  logger.New("SKUService"),
	}
}

func (s *SKUService) NextSKU(ctx context.Context) (string, error) {
	log := s.log.Function("NextSKU")

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seeded {
		max, err := s.repo.MaxSKUSuffix(ctx)
		if err != nil {
			return "", log.Err("failed to seed SKU counter", err)
		}
		s.next = max + 1
		s.seeded = true
	}

	sku := fmt.Sprintf("%s%05d", skuPrefix, s.next)
	s.next++

	return sku, nil
}
