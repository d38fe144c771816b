package handler

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/man7ober/natours/internal/core/domain"
	"github.com/man7ober/natours/internal/core/ports"
	"github.com/man7ober/natours/internal/core/query"
)

const (
	coverWidth   = 2000
	coverHeight  = 1333
	galleryLimit = 3
)

// TourHandler handles HTTP requests for tour operations.
type TourHandler struct {
	service ports.TourService
	resizer ports.ImageResizer
	imgDir  string
}

func NewTourHandler(service ports.TourService, resizer ports.ImageResizer, imgDir string) *TourHandler {
	return &TourHandler{service: service, resizer: resizer, imgDir: imgDir}
}

// --- Request types ---

type locationRequest struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates" validate:"required,len=2"`
	Address     string    `json:"address"`
	Description string    `json:"description"`
	Day         int       `json:"day"`
}

func (lr locationRequest) toDomain() domain.Location {
	return domain.Location{
		Type:        lr.Type,
		Coordinates: lr.Coordinates,
		Address:     lr.Address,
		Description: lr.Description,
		Day:         lr.Day,
	}
}

type createTourRequest struct {
	Name          string            `json:"name" validate:"required,min=10,max=40"`
	Duration      int               `json:"duration" validate:"required,gt=0"`
	MaxGroupSize  int               `json:"maxGroupSize" validate:"required,gt=0"`
	Difficulty    string            `json:"difficulty" validate:"required,oneof=easy medium difficult"`
	Price         float64           `json:"price" validate:"required,gt=0"`
	Discount      float64           `json:"priceDiscount" validate:"omitempty,gt=0"`
	Summary       string            `json:"summary" validate:"required"`
	Description   string            `json:"description"`
	ImageCover    string            `json:"imageCover" validate:"required"`
	Images        []string          `json:"images"`
	StartDates    []time.Time       `json:"startDates"`
	Secret        bool              `json:"secretTour"`
	StartLocation locationRequest   `json:"startLocation"`
	Locations     []locationRequest `json:"locations"`
	Guides        []string          `json:"guides"`
}

type updateTourRequest struct {
	Name          *string           `json:"name" validate:"omitempty,min=10,max=40"`
	Duration      *int              `json:"duration" validate:"omitempty,gt=0"`
	MaxGroupSize  *int              `json:"maxGroupSize" validate:"omitempty,gt=0"`
	Difficulty    *string           `json:"difficulty" validate:"omitempty,oneof=easy medium difficult"`
	Price         *float64          `json:"price" validate:"omitempty,gt=0"`
	Discount      *float64          `json:"priceDiscount" validate:"omitempty,gt=0"`
	Summary       *string           `json:"summary"`
	Description   *string           `json:"description"`
	ImageCover    *string           `json:"imageCover"`
	Images        []string          `json:"images"`
	StartDates    []time.Time       `json:"startDates"`
	Secret        *bool             `json:"secretTour"`
	StartLocation *locationRequest  `json:"startLocation"`
	Locations     []locationRequest `json:"locations"`
	Guides        []string          `json:"guides"`
}

// List handles GET /api/v1/tours.
func (h *TourHandler) List(c echo.Context) error {
	criteria := query.Parse(c.QueryParams())

	tours, err := h.service.List(c.Request().Context(), criteria)
	if err != nil {
		return err
	}
	return respondList(c, http.StatusOK, len(tours), map[string]any{"tours": tours})
}

// TopCheap handles GET /api/v1/tours/top-5-cheap by pre-seeding the query
// with the alias criteria before the usual parse.
func (h *TourHandler) TopCheap(c echo.Context) error {
	values := c.QueryParams()
	values.Set("limit", "5")
	values.Set("sort", "price,ratingsAverage")
	values.Set("fields", "name,price,ratingsAverage,summary,difficulty")
	return h.List(c)
}

// TopExpensive handles GET /api/v1/tours/top-5-expensive.
func (h *TourHandler) TopExpensive(c echo.Context) error {
	values := c.QueryParams()
	values.Set("limit", "5")
	values.Set("sort", "-price,ratingsAverage")
	values.Set("fields", "name,price,ratingsAverage,summary,difficulty")
	return h.List(c)
}

// Get handles GET /api/v1/tours/:id.
func (h *TourHandler) Get(c echo.Context) error {
	detail, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, map[string]any{"tour": detail})
}

// Create handles POST /api/v1/tours.
func (h *TourHandler) Create(c echo.Context) error {
	var req createTourRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: malformed body", domain.ErrValidation)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	locations := make([]domain.Location, 0, len(req.Locations))
	for _, l := range req.Locations {
		locations = append(locations, l.toDomain())
	}

	tour, err := h.service.Create(c.Request().Context(), ports.CreateTourInput{
		Name:          req.Name,
		Duration:      req.Duration,
		MaxGroupSize:  req.MaxGroupSize,
		Difficulty:    req.Difficulty,
		Price:         req.Price,
		Discount:      req.Discount,
		Summary:       req.Summary,
		Description:   req.Description,
		ImageCover:    req.ImageCover,
		Images:        req.Images,
		StartDates:    req.StartDates,
		Secret:        req.Secret,
		StartLocation: req.StartLocation.toDomain(),
		Locations:     locations,
		GuideIDs:      req.Guides,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, map[string]any{"tour": tour})
}

// Update handles PATCH /api/v1/tours/:id.
func (h *TourHandler) Update(c echo.Context) error {
	var req updateTourRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: malformed body", domain.ErrValidation)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	input := ports.UpdateTourInput{
		Name:         req.Name,
		Duration:     req.Duration,
		MaxGroupSize: req.MaxGroupSize,
		Difficulty:   req.Difficulty,
		Price:        req.Price,
		Discount:     req.Discount,
		Summary:      req.Summary,
		Description:  req.Description,
		ImageCover:   req.ImageCover,
		Images:       req.Images,
		StartDates:   req.StartDates,
		Secret:       req.Secret,
		GuideIDs:     req.Guides,
	}
	if req.StartLocation != nil {
		loc := req.StartLocation.toDomain()
		input.StartLocation = &loc
	}
	if req.Locations != nil {
		locations := make([]domain.Location, 0, len(req.Locations))
		for _, l := range req.Locations {
			locations = append(locations, l.toDomain())
		}
		input.Locations = locations
	}

	tour, err := h.service.Update(c.Request().Context(), c.Param("id"), input)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, map[string]any{"tour": tour})
}

// Delete handles DELETE /api/v1/tours/:id.
func (h *TourHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Stats handles GET /api/v1/tours/stats.
func (h *TourHandler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, map[string]any{"stats": stats})
}

// MonthlyPlan handles GET /api/v1/tours/monthly-plan/:year.
func (h *TourHandler) MonthlyPlan(c echo.Context) error {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return fmt.Errorf("%w: year must be numeric", domain.ErrValidation)
	}

	plan, err := h.service.MonthlyPlan(c.Request().Context(), year)
	if err != nil {
		return err
	}
	return respondList(c, http.StatusOK, len(plan), map[string]any{"plan": plan})
}

// Within handles GET /api/v1/tours/within/:distance/center/:latlng/unit/:unit.
func (h *TourHandler) Within(c echo.Context) error {
	distance, err := strconv.ParseFloat(c.Param("distance"), 64)
	if err != nil {
		return fmt.Errorf("%w: distance must be numeric", domain.ErrValidation)
	}
	lat, lng, err := parseLatLng(c.Param("latlng"))
	if err != nil {
		return err
	}

	tours, err := h.service.Within(c.Request().Context(), ports.GeoWithinInput{
		Lat:      lat,
		Lng:      lng,
		Distance: distance,
		Unit:     c.Param("unit"),
	})
	if err != nil {
		return err
	}
	return respondList(c, http.StatusOK, len(tours), map[string]any{"tours": tours})
}

// Distances handles GET /api/v1/tours/distances/:latlng/unit/:unit.
func (h *TourHandler) Distances(c echo.Context) error {
	lat, lng, err := parseLatLng(c.Param("latlng"))
	if err != nil {
		return err
	}

	distances, err := h.service.Distances(c.Request().Context(), lat, lng, c.Param("unit"))
	if err != nil {
		return err
	}
	return respondList(c, http.StatusOK, len(distances), map[string]any{"distances": distances})
}

// UploadImages handles PATCH /api/v1/tours/:id/images with a multipart form
// carrying an optional imageCover and up to three gallery images.
func (h *TourHandler) UploadImages(c echo.Context) error {
	id := c.Param("id")
	form, err := c.MultipartForm()
	if err != nil {
		return fmt.Errorf("%w: expected multipart form", domain.ErrValidation)
	}

	input := ports.UpdateTourInput{}

	if covers := form.File["imageCover"]; len(covers) > 0 {
		name := fmt.Sprintf("tour-%s-%d-cover.jpeg", id, time.Now().UnixMilli())
		if err := h.saveResized(covers[0], name, coverWidth, coverHeight); err != nil {
			return err
		}
		input.ImageCover = &name
	}

	gallery := form.File["images"]
	if len(gallery) > galleryLimit {
		return fmt.Errorf("%w: at most %d gallery images", domain.ErrValidation, galleryLimit)
	}
	if len(gallery) > 0 {
		names := make([]string, 0, len(gallery))
		for i, file := range gallery {
			name := fmt.Sprintf("tour-%s-%d-%d.jpeg", id, time.Now().UnixMilli(), i+1)
			if err := h.saveResized(file, name, coverWidth, coverHeight); err != nil {
				return err
			}
			names = append(names, name)
		}
		input.Images = names
	}

	tour, err := h.service.Update(c.Request().Context(), id, input)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, map[string]any{"tour": tour})
}

func (h *TourHandler) saveResized(file *multipart.FileHeader, name string, width, height int) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	data, err := h.resizer.ResizeJPEG(src, width, height)
	if err != nil {
		return fmt.Errorf("%w: unreadable image upload", domain.ErrValidation)
	}
	return os.WriteFile(filepath.Join(h.imgDir, "tours", name), data, 0o644)
}

// parseLatLng splits a "lat,lng" path segment.
func parseLatLng(raw string) (lat, lng float64, err error) {
	parts := strings.SplitN(raw, ",", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: provide coordinates as lat,lng", domain.ErrValidation)
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: latitude must be numeric", domain.ErrValidation)
	}
	lng, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: longitude must be numeric", domain.ErrValidation)
	}
	return lat, lng, nil
}
