package service

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"carrental-backend/internal/advisor"
	"carrental-backend/internal/domain"
	"carrental-backend/internal/pricing"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type catalogFile struct {
	Vehicles []domain.Vehicle `yaml:"vehicles"`
}

type catalogService struct {
	vehicles         []domain.Vehicle
	byID             map[int32]domain.Vehicle
	deliveryFeeCents int64
	advisor          advisor.Advisor
}

// NewCatalogService loads the fleet from path, or from the built-in catalog
// when path is empty.
func NewCatalogService(path string, deliveryFeeCents int64, adv advisor.Advisor) (CatalogService, error) {
	data := defaultCatalog
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("failed to read catalog file: %w", err)
		}
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(file.Vehicles) == 0 {
		return nil, fmt.Errorf("catalog has no vehicles")
	}

	s := &catalogService{
		vehicles:         file.Vehicles,
		byID:             make(map[int32]domain.Vehicle, len(file.Vehicles)),
		deliveryFeeCents: deliveryFeeCents,
		advisor:          adv,
	}
	for _, v := range file.Vehicles {
		if _, dup := s.byID[v.ID]; dup {
			return nil, fmt.Errorf("duplicate vehicle id %d in catalog", v.ID)
		}
		s.byID[v.ID] = v
	}
	return s, nil
}

// List returns the fleet in display order.
func (s *catalogService) List() []domain.Vehicle {
	out := make([]domain.Vehicle, len(s.vehicles))
	copy(out, s.vehicles)
	return out
}

func (s *catalogService) Vehicle(id int32) (domain.Vehicle, bool) {
	v, ok := s.byID[id]
	return v, ok
}

// Quote is the vehicle-page estimate. Unlike a draft, it rejects a range
// that does not end after it starts.
func (s *catalogService) Quote(vehicleID int32, startDate, endDate string, delivery bool) (pricing.Quote, error) {
	v, ok := s.byID[vehicleID]
	if !ok {
		return pricing.Quote{}, ErrVehicleNotFound
	}
	q, err := pricing.CalculateDates(startDate, endDate, v.Rates, delivery, s.deliveryFeeCents)
	if err != nil {
		return pricing.Quote{}, err
	}
	if q.DurationDays <= 0 {
		return pricing.Quote{}, ErrInvalidDateRange
	}
	return q, nil
}

func (s *catalogService) Suggest(ctx context.Context, tripDescription string) *advisor.Suggestion {
	return s.advisor.SuggestVehicle(ctx, tripDescription, s.List())
}
