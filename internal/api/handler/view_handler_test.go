package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/man7ober/natours/internal/api/middleware"
	"github.com/man7ober/natours/internal/core/domain"
	"github.com/man7ober/natours/internal/core/ports"
	"github.com/man7ober/natours/internal/core/query"
)

// captureRenderer records which template a handler rendered and with what
// payload, instead of executing real HTML.
type captureRenderer struct {
	name string
	data any
}

func (r *captureRenderer) Render(_ io.Writer, name string, data any, _ echo.Context) error {
	r.name = name
	r.data = data
	return nil
}

type stubTourService struct {
	tours []domain.Tour
}

func (s *stubTourService) List(context.Context, query.Criteria) ([]domain.Tour, error) {
	return s.tours, nil
}
func (s *stubTourService) Get(context.Context, string) (*ports.TourDetail, error) { return nil, nil }
func (s *stubTourService) GetBySlug(context.Context, string) (*ports.TourDetail, error) {
	return nil, nil
}
func (s *stubTourService) Create(context.Context, ports.CreateTourInput) (*domain.Tour, error) {
	return nil, nil
}
func (s *stubTourService) Update(context.Context, string, ports.UpdateTourInput) (*domain.Tour, error) {
	return nil, nil
}
func (s *stubTourService) Delete(context.Context, string) error { return nil }
func (s *stubTourService) Stats(context.Context) ([]domain.TourStats, error) {
	return nil, nil
}
func (s *stubTourService) MonthlyPlan(context.Context, int) ([]domain.MonthlyPlanEntry, error) {
	return nil, nil
}
func (s *stubTourService) Within(context.Context, ports.GeoWithinInput) ([]domain.Tour, error) {
	return nil, nil
}
func (s *stubTourService) Distances(context.Context, float64, float64, string) ([]domain.TourDistance, error) {
	return nil, nil
}

type stubUserService struct {
	users []domain.User
}

func (s *stubUserService) List(context.Context, query.Criteria) ([]domain.User, error) {
	return s.users, nil
}
func (s *stubUserService) Get(context.Context, string) (*domain.User, error) { return nil, nil }
func (s *stubUserService) UpdateMe(context.Context, string, ports.UpdateMeInput) (*domain.User, error) {
	return nil, nil
}
func (s *stubUserService) DeleteMe(context.Context, string) error { return nil }
func (s *stubUserService) AdminUpdate(context.Context, string, ports.AdminUpdateUserInput) (*domain.User, error) {
	return nil, nil
}
func (s *stubUserService) AdminDelete(context.Context, string) error { return nil }

type stubReviewService struct {
	reviews    []domain.Review
	forUser    []domain.Review
	forUserID  string
	listedTour string
	listCalled bool
	userListed bool
}

func (s *stubReviewService) List(_ context.Context, _ query.Criteria, tourID string) ([]domain.Review, error) {
	s.listCalled = true
	s.listedTour = tourID
	return s.reviews, nil
}
func (s *stubReviewService) ListForUser(_ context.Context, userID string) ([]domain.Review, error) {
	s.userListed = true
	s.forUserID = userID
	return s.forUser, nil
}
func (s *stubReviewService) Get(context.Context, string) (*domain.Review, error) { return nil, nil }
func (s *stubReviewService) Create(context.Context, ports.CreateReviewInput) (*domain.Review, error) {
	return nil, nil
}
func (s *stubReviewService) Update(context.Context, string, ports.UpdateReviewInput) (*domain.Review, error) {
	return nil, nil
}
func (s *stubReviewService) Delete(context.Context, string) error { return nil }

type stubBookingService struct {
	bookings  []domain.Booking
	forUserID string
}

func (s *stubBookingService) Checkout(context.Context, string, *domain.User) (*ports.CheckoutSession, error) {
	return nil, nil
}
func (s *stubBookingService) CreateFromRedirect(context.Context, string, string, float64) error {
	return nil
}
func (s *stubBookingService) List(context.Context, query.Criteria, string) ([]domain.Booking, error) {
	return s.bookings, nil
}
func (s *stubBookingService) Get(context.Context, string) (*domain.Booking, error) { return nil, nil }
func (s *stubBookingService) Create(context.Context, ports.CreateBookingInput) (*domain.Booking, error) {
	return nil, nil
}
func (s *stubBookingService) Update(context.Context, string, ports.UpdateBookingInput) (*domain.Booking, error) {
	return nil, nil
}
func (s *stubBookingService) Delete(context.Context, string) error { return nil }
func (s *stubBookingService) ToursForUser(context.Context, string) ([]domain.Tour, error) {
	return nil, nil
}
func (s *stubBookingService) ForUser(_ context.Context, userID string) ([]domain.Booking, error) {
	s.forUserID = userID
	return s.bookings, nil
}

type viewFixture struct {
	handler  *ViewHandler
	renderer *captureRenderer
	tours    *stubTourService
	users    *stubUserService
	reviews  *stubReviewService
	bookings *stubBookingService
}

func newViewFixture() *viewFixture {
	f := &viewFixture{
		renderer: &captureRenderer{},
		tours:    &stubTourService{},
		users:    &stubUserService{},
		reviews:  &stubReviewService{},
		bookings: &stubBookingService{},
	}
	f.handler = NewViewHandler(f.tours, f.users, f.reviews, f.bookings, zerolog.Nop())
	return f
}

func (f *viewFixture) request(path string, user *domain.User) echo.Context {
	e := echo.New()
	e.Renderer = f.renderer
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != nil {
		c.Set(middleware.PrincipalKey, user)
	}
	return c
}

func adminUser() *domain.User {
	return &domain.User{ID: primitive.NewObjectID(), Name: "Ada", Role: domain.RoleAdmin}
}

func TestViewAdminTours_RendersListing(t *testing.T) {
	f := newViewFixture()
	f.tours.tours = []domain.Tour{{Name: "The Forest Hiker"}, {Name: "The Sea Explorer"}}

	if err := f.handler.AdminTours(f.request("/admin-tours", adminUser())); err != nil {
		t.Fatalf("AdminTours: %v", err)
	}
	if f.renderer.name != "admin-tours" {
		t.Fatalf("rendered %q, want admin-tours", f.renderer.name)
	}
	data, ok := f.renderer.data.(viewData)
	if !ok {
		t.Fatalf("payload type %T", f.renderer.data)
	}
	tours, ok := data.Data.([]domain.Tour)
	if !ok || len(tours) != 2 {
		t.Fatalf("tour listing not passed through: %#v", data.Data)
	}
}

func TestViewAdminUsers_RendersListing(t *testing.T) {
	f := newViewFixture()
	f.users.users = []domain.User{{Name: "Ada"}, {Name: "Grace"}}

	if err := f.handler.AdminUsers(f.request("/admin-users", adminUser())); err != nil {
		t.Fatalf("AdminUsers: %v", err)
	}
	if f.renderer.name != "admin-users" {
		t.Fatalf("rendered %q, want admin-users", f.renderer.name)
	}
}

func TestViewAdminReviews_ListsAcrossTours(t *testing.T) {
	f := newViewFixture()

	if err := f.handler.AdminReviews(f.request("/admin-reviews", adminUser())); err != nil {
		t.Fatalf("AdminReviews: %v", err)
	}
	if f.renderer.name != "admin-reviews" {
		t.Fatalf("rendered %q, want admin-reviews", f.renderer.name)
	}
	if !f.reviews.listCalled || f.reviews.listedTour != "" {
		t.Fatalf("listing should be unscoped, got tour %q", f.reviews.listedTour)
	}
}

func TestViewAdminBillings_RendersListing(t *testing.T) {
	f := newViewFixture()
	f.bookings.bookings = []domain.Booking{{Price: 497}}

	if err := f.handler.AdminBillings(f.request("/admin-billings", adminUser())); err != nil {
		t.Fatalf("AdminBillings: %v", err)
	}
	if f.renderer.name != "admin-billings" {
		t.Fatalf("rendered %q, want admin-billings", f.renderer.name)
	}
}

func TestViewMyReviews_ScopedToPrincipal(t *testing.T) {
	f := newViewFixture()
	user := &domain.User{ID: primitive.NewObjectID(), Name: "Ada", Role: domain.RoleUser}
	f.reviews.forUser = []domain.Review{{Text: "Loved it", Rating: 5}}

	if err := f.handler.MyReviews(f.request("/my-reviews", user)); err != nil {
		t.Fatalf("MyReviews: %v", err)
	}
	if f.renderer.name != "my-reviews" {
		t.Fatalf("rendered %q, want my-reviews", f.renderer.name)
	}
	if !f.reviews.userListed || f.reviews.forUserID != user.ID.Hex() {
		t.Fatalf("listing not scoped to the author: %q", f.reviews.forUserID)
	}
}

func TestViewMyReviews_RequiresPrincipal(t *testing.T) {
	f := newViewFixture()

	err := f.handler.MyReviews(f.request("/my-reviews", nil))
	if err == nil {
		t.Fatal("expected an authentication error for anonymous requests")
	}
}

func TestViewMyBillings_ScopedToPrincipal(t *testing.T) {
	f := newViewFixture()
	user := &domain.User{ID: primitive.NewObjectID(), Name: "Ada", Role: domain.RoleUser}

	if err := f.handler.MyBillings(f.request("/my-billings", user)); err != nil {
		t.Fatalf("MyBillings: %v", err)
	}
	if f.renderer.name != "my-billings" {
		t.Fatalf("rendered %q, want my-billings", f.renderer.name)
	}
	if f.bookings.forUserID != user.ID.Hex() {
		t.Fatalf("listing not scoped to the user: %q", f.bookings.forUserID)
	}
}
