package application

import (
	"context"
	"log/slog"

	"github.com/ericfisherdev/passkeep/internal/domain/model"
	"github.com/ericfisherdev/passkeep/internal/domain/port/driven"
)

// ConsistencyReport describes how the website index lines up with the stored
// credential records.
type ConsistencyReport struct {
	Websites []string
	// Dangling lists indexed websites whose record is missing.
	Dangling []string
}

// Consistent reports whether every indexed website has a record.
func (r *ConsistencyReport) Consistent() bool {
	return len(r.Dangling) == 0
}

// HealthService inspects the secure store on behalf of the health endpoint
// and the CLI check command. It never writes.
type HealthService struct {
	store  driven.SecureStore
	logger *slog.Logger
}

// NewHealthService creates a new HealthService with the required dependencies.
func NewHealthService(store driven.SecureStore, logger *slog.Logger) *HealthService {
	return &HealthService{
		store:  store,
		logger: logger,
	}
}

// CheckConsistency loads the index and looks up each entry's record.
// Records stored without an index entry cannot be found this way, because
// the store offers no listing. Nothing is repaired.
func (s *HealthService) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	idx, err := readIndex(ctx, s.store, s.logger)
	if err != nil {
		return nil, err
	}

	report := &ConsistencyReport{
		Websites: idx,
		Dangling: []string{},
	}
	for _, website := range idx {
		if website == model.IndexKey {
			report.Dangling = append(report.Dangling, website)
			continue
		}
		_, found, err := s.store.Get(ctx, website)
		if err != nil {
			return nil, &StoreError{Op: "get", Key: website, Err: err}
		}
		if !found {
			report.Dangling = append(report.Dangling, website)
		}
	}

	if !report.Consistent() {
		s.logger.Warn("website index references missing records", "dangling", report.Dangling)
	}
	return report, nil
}
