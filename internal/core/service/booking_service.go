package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/man7ober/natours/internal/core/domain"
	"github.com/man7ober/natours/internal/core/ports"
	"github.com/man7ober/natours/internal/core/query"
	"github.com/man7ober/natours/internal/metrics"
)

// BookingService implements booking reads and writes and brokers checkout
// sessions with the payment provider.
type BookingService struct {
	bookings ports.BookingRepository
	tours    ports.TourRepository
	checkout ports.CheckoutProvider
	baseURL  string
	logger   zerolog.Logger
}

func NewBookingService(bookings ports.BookingRepository, tours ports.TourRepository, checkout ports.CheckoutProvider, baseURL string, logger zerolog.Logger) *BookingService {
	return &BookingService{
		bookings: bookings,
		tours:    tours,
		checkout: checkout,
		baseURL:  baseURL,
		logger:   logger,
	}
}

func (s *BookingService) Checkout(ctx context.Context, tourID string, user *domain.User) (*ports.CheckoutSession, error) {
	oid, err := parseObjectID(tourID)
	if err != nil {
		return nil, err
	}
	tour, err := s.tours.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}

	session, err := s.checkout.CreateSession(ctx, ports.CheckoutSessionInput{
		Tour:          tour,
		CustomerEmail: user.Email,
		ClientRefID:   tour.ID.Hex(),
		SuccessURL: fmt.Sprintf("%s/?tour=%s&user=%s&price=%g",
			s.baseURL, tour.ID.Hex(), user.ID.Hex(), tour.Price),
		CancelURL: fmt.Sprintf("%s/tour/%s", s.baseURL, tour.Slug),
	})
	if err != nil {
		return nil, err
	}

	metrics.CheckoutSessionsTotal.Inc()
	s.logger.Info().
		Str("tour", tour.Slug).
		Str("user_id", user.ID.Hex()).
		Str("session_id", session.ID).
		Msg("checkout session created")
	return session, nil
}

func (s *BookingService) CreateFromRedirect(ctx context.Context, tourID, userID string, price float64) error {
	_, err := s.Create(ctx, ports.CreateBookingInput{TourID: tourID, UserID: userID, Price: price})
	return err
}

func (s *BookingService) List(ctx context.Context, c query.Criteria, tourID string) ([]domain.Booking, error) {
	var filter *primitive.ObjectID
	if tourID != "" {
		oid, err := parseObjectID(tourID)
		if err != nil {
			return nil, err
		}
		filter = &oid
	}
	return s.bookings.Find(ctx, c, filter)
}

func (s *BookingService) Get(ctx context.Context, id string) (*domain.Booking, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	return s.bookings.FindByID(ctx, oid)
}

func (s *BookingService) Create(ctx context.Context, input ports.CreateBookingInput) (*domain.Booking, error) {
	tourID, err := parseObjectID(input.TourID)
	if err != nil {
		return nil, err
	}
	userID, err := parseObjectID(input.UserID)
	if err != nil {
		return nil, err
	}
	if input.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", domain.ErrValidation)
	}

	booking := &domain.Booking{
		TourID:    tourID,
		UserID:    userID,
		Price:     input.Price,
		CreatedAt: time.Now().UTC(),
		Paid:      true,
	}
	if err := s.bookings.Insert(ctx, booking); err != nil {
		return nil, err
	}

	metrics.BookingsCreatedTotal.Inc()
	s.logger.Info().
		Str("tour_id", input.TourID).
		Str("user_id", input.UserID).
		Float64("price", input.Price).
		Msg("booking created")
	return booking, nil
}

func (s *BookingService) Update(ctx context.Context, id string, input ports.UpdateBookingInput) (*domain.Booking, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if input.Price != nil {
		if *input.Price <= 0 {
			return nil, fmt.Errorf("%w: price must be positive", domain.ErrValidation)
		}
		fields["price"] = *input.Price
	}
	if input.Paid != nil {
		fields["paid"] = *input.Paid
	}
	if len(fields) == 0 {
		return s.bookings.FindByID(ctx, oid)
	}
	return s.bookings.UpdateFields(ctx, oid, fields)
}

func (s *BookingService) Delete(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}
	return s.bookings.Delete(ctx, oid)
}

func (s *BookingService) ForUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	oid, err := parseObjectID(userID)
	if err != nil {
		return nil, err
	}
	return s.bookings.FindByUser(ctx, oid)
}

func (s *BookingService) ToursForUser(ctx context.Context, userID string) ([]domain.Tour, error) {
	oid, err := parseObjectID(userID)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookings.FindByUser(ctx, oid)
	if err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return nil, nil
	}

	ids := make([]primitive.ObjectID, 0, len(bookings))
	seen := map[primitive.ObjectID]struct{}{}
	for _, b := range bookings {
		if _, ok := seen[b.TourID]; ok {
			continue
		}
		seen[b.TourID] = struct{}{}
		ids = append(ids, b.TourID)
	}
	return s.tours.FindByIDs(ctx, ids)
}
