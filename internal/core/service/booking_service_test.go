package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/man7ober/natours/internal/core/domain"
	"github.com/man7ober/natours/internal/core/ports"
	"github.com/man7ober/natours/internal/core/query"
)

type stubBookingRepo struct {
	bookings map[primitive.ObjectID]*domain.Booking
}

func newStubBookingRepo() *stubBookingRepo {
	return &stubBookingRepo{bookings: make(map[primitive.ObjectID]*domain.Booking)}
}

func (r *stubBookingRepo) Insert(_ context.Context, b *domain.Booking) error {
	b.ID = primitive.NewObjectID()
	r.bookings[b.ID] = b
	return nil
}

func (r *stubBookingRepo) FindByID(_ context.Context, id primitive.ObjectID) (*domain.Booking, error) {
	if b, ok := r.bookings[id]; ok {
		return b, nil
	}
	return nil, domain.ErrBookingNotFound
}

func (r *stubBookingRepo) Find(context.Context, query.Criteria, *primitive.ObjectID) ([]domain.Booking, error) {
	return nil, nil
}

func (r *stubBookingRepo) FindByUser(_ context.Context, userID primitive.ObjectID) ([]domain.Booking, error) {
	out := []domain.Booking{}
	for _, b := range r.bookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *stubBookingRepo) UpdateFields(_ context.Context, id primitive.ObjectID, fields map[string]any) (*domain.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	if price, ok := fields["price"].(float64); ok {
		b.Price = price
	}
	if paid, ok := fields["paid"].(bool); ok {
		b.Paid = paid
	}
	return b, nil
}

func (r *stubBookingRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(r.bookings, id)
	return nil
}

func (r *stubBookingRepo) EnsureIndexes(context.Context) error { return nil }

type stubCheckout struct {
	input ports.CheckoutSessionInput
	fail  bool
}

func (c *stubCheckout) CreateSession(_ context.Context, input ports.CheckoutSessionInput) (*ports.CheckoutSession, error) {
	if c.fail {
		return nil, errors.New("provider down")
	}
	c.input = input
	return &ports.CheckoutSession{ID: "cs_test_123", URL: "https://pay.example/cs_test_123"}, nil
}

func TestCheckout_BuildsRedirectURLs(t *testing.T) {
	tours := newStubTourRepo()
	bookings := newStubBookingRepo()
	checkout := &stubCheckout{}
	svc := NewBookingService(bookings, tours, checkout, "https://natours.dev", zerolog.Nop())

	tour := &domain.Tour{Name: "The Forest Hiker", Slug: "the-forest-hiker", Price: 397}
	if err := tours.Insert(context.Background(), tour); err != nil {
		t.Fatalf("seed tour: %v", err)
	}
	user := &domain.User{ID: primitive.NewObjectID(), Email: "ayla@example.com"}

	session, err := svc.Checkout(context.Background(), tour.ID.Hex(), user)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if session.ID != "cs_test_123" {
		t.Fatalf("unexpected session id %q", session.ID)
	}

	wantSuccess := fmt.Sprintf("https://natours.dev/?tour=%s&user=%s&price=397", tour.ID.Hex(), user.ID.Hex())
	if checkout.input.SuccessURL != wantSuccess {
		t.Fatalf("success URL = %q, want %q", checkout.input.SuccessURL, wantSuccess)
	}
	if want := "https://natours.dev/tour/the-forest-hiker"; checkout.input.CancelURL != want {
		t.Fatalf("cancel URL = %q, want %q", checkout.input.CancelURL, want)
	}
	if checkout.input.CustomerEmail != "ayla@example.com" {
		t.Fatalf("customer email not forwarded")
	}
}

func TestCheckout_UnknownTour(t *testing.T) {
	svc := NewBookingService(newStubBookingRepo(), newStubTourRepo(), &stubCheckout{}, "https://natours.dev", zerolog.Nop())

	user := &domain.User{ID: primitive.NewObjectID()}
	if _, err := svc.Checkout(context.Background(), primitive.NewObjectID().Hex(), user); !errors.Is(err, domain.ErrTourNotFound) {
		t.Fatalf("expected tour not found, got %v", err)
	}
}

func TestCreateFromRedirect_RecordsPaidBooking(t *testing.T) {
	bookings := newStubBookingRepo()
	svc := NewBookingService(bookings, newStubTourRepo(), &stubCheckout{}, "https://natours.dev", zerolog.Nop())

	tourID := primitive.NewObjectID()
	userID := primitive.NewObjectID()
	if err := svc.CreateFromRedirect(context.Background(), tourID.Hex(), userID.Hex(), 397); err != nil {
		t.Fatalf("create from redirect: %v", err)
	}

	if len(bookings.bookings) != 1 {
		t.Fatalf("expected 1 booking, got %d", len(bookings.bookings))
	}
	for _, b := range bookings.bookings {
		if !b.Paid || b.Price != 397 || b.TourID != tourID || b.UserID != userID {
			t.Fatalf("booking fields wrong: %+v", b)
		}
	}
}

func TestCreateBooking_Validation(t *testing.T) {
	svc := NewBookingService(newStubBookingRepo(), newStubTourRepo(), &stubCheckout{}, "https://natours.dev", zerolog.Nop())

	if _, err := svc.Create(context.Background(), ports.CreateBookingInput{
		TourID: "junk", UserID: primitive.NewObjectID().Hex(), Price: 10,
	}); !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("expected invalid id, got %v", err)
	}

	if _, err := svc.Create(context.Background(), ports.CreateBookingInput{
		TourID: primitive.NewObjectID().Hex(), UserID: primitive.NewObjectID().Hex(), Price: 0,
	}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBookingsForUser_OnlyTheirOwn(t *testing.T) {
	bookings := newStubBookingRepo()
	svc := NewBookingService(bookings, newStubTourRepo(), &stubCheckout{}, "https://natours.dev", zerolog.Nop())

	userID := primitive.NewObjectID()
	if err := svc.CreateFromRedirect(context.Background(), primitive.NewObjectID().Hex(), userID.Hex(), 397); err != nil {
		t.Fatalf("own booking: %v", err)
	}
	if err := svc.CreateFromRedirect(context.Background(), primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex(), 497); err != nil {
		t.Fatalf("other booking: %v", err)
	}

	got, err := svc.ForUser(context.Background(), userID.Hex())
	if err != nil {
		t.Fatalf("bookings for user: %v", err)
	}
	if len(got) != 1 || got[0].UserID != userID {
		t.Fatalf("expected only the user's booking, got %#v", got)
	}

	if _, err := svc.ForUser(context.Background(), "junk"); !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("expected invalid id error, got %v", err)
	}
}

func TestToursForUser_DeduplicatesTours(t *testing.T) {
	tours := newStubTourRepo()
	bookings := newStubBookingRepo()
	svc := NewBookingService(bookings, tours, &stubCheckout{}, "https://natours.dev", zerolog.Nop())

	tour := &domain.Tour{Name: "The Forest Hiker", Slug: "the-forest-hiker", Price: 397}
	if err := tours.Insert(context.Background(), tour); err != nil {
		t.Fatalf("seed tour: %v", err)
	}
	userID := primitive.NewObjectID()

	// Two bookings of the same tour.
	for i := 0; i < 2; i++ {
		if err := svc.CreateFromRedirect(context.Background(), tour.ID.Hex(), userID.Hex(), 397); err != nil {
			t.Fatalf("booking %d: %v", i, err)
		}
	}

	got, err := svc.ToursForUser(context.Background(), userID.Hex())
	if err != nil {
		t.Fatalf("tours for user: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 deduplicated tour, got %d", len(got))
	}
}
