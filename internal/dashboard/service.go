// Package dashboard composes the business owner's performance summary out of
// three independent read queries.
package dashboard

import (
	"context"
	"log/slog"
	"sync"

	"github.com/bzbookit/bzbookit-backend/internal/apperr"
	"github.com/bzbookit/bzbookit-backend/internal/identity"
	"github.com/bzbookit/bzbookit-backend/internal/model"
	"github.com/bzbookit/bzbookit-backend/internal/storage"
)

const upcomingLimit = 5

type BusinessResolver interface {
	SoleBusinessOwnedBy(ctx context.Context, ownerID string) (model.Business, error)
}

type MetricsStore interface {
	CountAppointments(ctx context.Context, businessID string) (int, error)
	CompletedRevenue(ctx context.Context, businessID string) (float64, error)
	UpcomingAppointments(ctx context.Context, businessID string, limit int) ([]model.UpcomingAppointment, error)
}

type Service struct {
	businesses BusinessResolver
	metrics    MetricsStore
	logger     *slog.Logger
}

func NewService(businesses BusinessResolver, metrics MetricsStore, logger *slog.Logger) *Service {
	return &Service{businesses: businesses, metrics: metrics, logger: logger}
}

type Summary struct {
	TotalAppointments    int
	TotalRevenue         float64
	UpcomingAppointments []model.UpcomingAppointment
}

// GetBusinessSummary aggregates the caller's business activity. The three
// sub-queries run concurrently with no ordering dependency; a failed
// sub-query defaults to zero/empty (logged) rather than failing the summary,
// and the same policy applies to all three.
func (s *Service) GetBusinessSummary(ctx context.Context, principal identity.Principal) (Summary, error) {
	if principal.Role != identity.RoleBusinessOwner {
		return Summary{}, apperr.New(apperr.Forbidden, "Forbidden: Access is restricted to business owners.")
	}

	business, err := s.businesses.SoleBusinessOwnedBy(ctx, principal.ID)
	if err != nil {
		if storage.IsNotFound(err) {
			return Summary{}, apperr.New(apperr.NotFound, "Could not find an associated business for this user.")
		}
		return Summary{}, apperr.Wrap(apperr.Internal, "failed to resolve business", err)
	}

	var (
		wg       sync.WaitGroup
		total    int
		revenue  float64
		upcoming []model.UpcomingAppointment
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		n, err := s.metrics.CountAppointments(ctx, business.ID)
		if err != nil {
			s.logger.Warn("appointment count failed; defaulting to 0", "business_id", business.ID, "err", err)
			return
		}
		total = n
	}()
	go func() {
		defer wg.Done()
		sum, err := s.metrics.CompletedRevenue(ctx, business.ID)
		if err != nil {
			s.logger.Warn("revenue sum failed; defaulting to 0", "business_id", business.ID, "err", err)
			return
		}
		revenue = sum
	}()
	go func() {
		defer wg.Done()
		appts, err := s.metrics.UpcomingAppointments(ctx, business.ID, upcomingLimit)
		if err != nil {
			s.logger.Warn("upcoming appointments failed; defaulting to empty", "business_id", business.ID, "err", err)
			return
		}
		upcoming = appts
	}()
	wg.Wait()

	if upcoming == nil {
		upcoming = []model.UpcomingAppointment{}
	}
	return Summary{
		TotalAppointments:    total,
		TotalRevenue:         revenue,
		UpcomingAppointments: upcoming,
	}, nil
}
