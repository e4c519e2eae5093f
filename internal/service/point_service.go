package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/vbonduro/ecoleta/internal/domain"
	"github.com/vbonduro/ecoleta/internal/geo"
	"github.com/vbonduro/ecoleta/internal/imagestore"
	"github.com/vbonduro/ecoleta/internal/store"
)

var (
	ErrNotFound    = errors.New("point not found")
	ErrGeoDisabled = errors.New("geography lookups are disabled")
)

var tracer = otel.Tracer("github.com/vbonduro/ecoleta/internal/service")

// pointRepository is the subset of store.PointStore that PointService requires.
type pointRepository interface {
	Create(ctx context.Context, point *domain.Point, itemIDs []int64) (*domain.Point, error)
	GetByID(ctx context.Context, id int64) (*domain.Point, error)
	List(ctx context.Context, filter domain.PointFilter) ([]*domain.Point, error)
	Delete(ctx context.Context, id int64) error
}

// itemRepository is the subset of store.ItemStore that PointService requires.
type itemRepository interface {
	List(ctx context.Context) ([]*domain.Item, error)
	ListByPointID(ctx context.Context, pointID int64) ([]*domain.Item, error)
	ListIDsByPointID(ctx context.Context, pointID int64) ([]int64, error)
	CountExisting(ctx context.Context, ids []int64) (int, error)
}

type PointService struct {
	points           pointRepository
	items            itemRepository
	images           imagestore.ImageStore
	geo              geo.Directory
	validateLocation bool
	logger           *slog.Logger
}

// NewPointService wires the service. directory may be nil, which disables
// the geography endpoints and location validation.
func NewPointService(
	points pointRepository,
	items itemRepository,
	images imagestore.ImageStore,
	directory geo.Directory,
	validateLocation bool,
	logger *slog.Logger,
) *PointService {
	return &PointService{
		points:           points,
		items:            items,
		images:           images,
		geo:              directory,
		validateLocation: validateLocation && directory != nil,
		logger:           logger,
	}
}

// Image is an uploaded point picture whose type has already been sniffed.
type Image struct {
	Filename string
	MimeType string
	Data     []byte
}

// PointDetail bundles a point with the items it accepts.
type PointDetail struct {
	Point *domain.Point
	Items []*domain.Item
}

func (s *PointService) ListItems(ctx context.Context) ([]*domain.Item, error) {
	ctx, span := tracer.Start(ctx, "PointService.ListItems")
	defer span.End()

	return s.items.List(ctx)
}

func (s *PointService) ListPoints(ctx context.Context, filter domain.PointFilter) ([]*domain.Point, error) {
	ctx, span := tracer.Start(ctx, "PointService.ListPoints")
	span.SetAttributes(
		attribute.String("uf", filter.UF),
		attribute.String("city", filter.City),
		attribute.Int("item_count", len(filter.ItemIDs)),
	)
	defer span.End()

	points, err := s.points.List(ctx, filter)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("result_count", len(points)))
	return points, nil
}

func (s *PointService) GetPoint(ctx context.Context, id int64) (*PointDetail, error) {
	ctx, span := tracer.Start(ctx, "PointService.GetPoint")
	span.SetAttributes(attribute.Int64("point_id", id))
	defer span.End()

	point, err := s.points.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get point: %w", err)
	}
	if point == nil {
		return nil, ErrNotFound
	}

	items, err := s.items.ListByPointID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return &PointDetail{Point: point, Items: items}, nil
}

// ListPointItemIDs returns the ids of the items a point accepts.
func (s *PointService) ListPointItemIDs(ctx context.Context, id int64) ([]int64, error) {
	ctx, span := tracer.Start(ctx, "PointService.ListPointItemIDs")
	span.SetAttributes(attribute.Int64("point_id", id))
	defer span.End()

	point, err := s.points.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get point: %w", err)
	}
	if point == nil {
		return nil, ErrNotFound
	}
	return s.items.ListIDsByPointID(ctx, id)
}

// CreatePoint validates input, stores the optional image and inserts the
// point with its item associations. A *ValidationError is returned for bad
// input. The stored image is removed again if the insert fails.
func (s *PointService) CreatePoint(ctx context.Context, input CreatePointInput, image *Image) (*PointDetail, error) {
	ctx, span := tracer.Start(ctx, "PointService.CreatePoint")
	defer span.End()

	in := input.Normalize()
	verr := &ValidationError{}
	in.Validate(verr)
	if err := verr.OrNil(); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return nil, err
	}

	if err := s.checkItems(ctx, in.ItemIDs); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.checkLocation(ctx, in.UF, in.City); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	point := &domain.Point{
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		City:      in.City,
		UF:        in.UF,
	}

	if image != nil {
		key, err := s.images.Save(ctx, image.Filename, image.MimeType, bytes.NewReader(image.Data))
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to save image: %w", err)
		}
		s.logger.Debug("point image saved", "key", key, "bytes", len(image.Data))
		point.Image = key
	}

	created, err := s.points.Create(ctx, point, in.ItemIDs)
	if err != nil {
		if point.Image != "" {
			if derr := s.images.Delete(ctx, point.Image); derr != nil {
				s.logger.Error("failed to remove image after insert error", "key", point.Image, "error", derr)
			}
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to create point: %w", err)
	}

	items, err := s.items.ListByPointID(ctx, created.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	span.SetAttributes(attribute.Int64("point_id", created.ID))
	s.logger.Info("point created", "point_id", created.ID, "uf", created.UF, "city", created.City, "items", len(items))
	return &PointDetail{Point: created, Items: items}, nil
}

// DeletePoint removes a point and, best effort, its image.
func (s *PointService) DeletePoint(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "PointService.DeletePoint")
	span.SetAttributes(attribute.Int64("point_id", id))
	defer span.End()

	point, err := s.points.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get point: %w", err)
	}
	if point == nil {
		return ErrNotFound
	}

	if err := s.points.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete point: %w", err)
	}

	if point.Image != "" {
		if err := s.images.Delete(ctx, point.Image); err != nil && !errors.Is(err, imagestore.ErrNotFound) {
			s.logger.Error("failed to delete point image", "point_id", id, "key", point.Image, "error", err)
		}
	}

	s.logger.Info("point deleted", "point_id", id)
	return nil
}

func (s *PointService) States(ctx context.Context) ([]geo.State, error) {
	if s.geo == nil {
		return nil, ErrGeoDisabled
	}
	return s.geo.States(ctx)
}

func (s *PointService) Cities(ctx context.Context, uf string) ([]string, error) {
	if s.geo == nil {
		return nil, ErrGeoDisabled
	}
	return s.geo.Cities(ctx, uf)
}

func (s *PointService) checkItems(ctx context.Context, ids []int64) error {
	count, err := s.items.CountExisting(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to check items: %w", err)
	}
	if count != len(ids) {
		return &ValidationError{Fields: map[string]string{"items": "contains unknown item ids"}}
	}
	return nil
}

// checkLocation rejects a uf/city pair the geography provider does not know.
// Provider outages skip the check.
func (s *PointService) checkLocation(ctx context.Context, uf, city string) error {
	if !s.validateLocation {
		return nil
	}
	ok, err := s.geo.HasCity(ctx, uf, city)
	if err != nil {
		s.logger.Warn("skipping location validation", "uf", uf, "city", city, "error", err)
		return nil
	}
	if !ok {
		return &ValidationError{Fields: map[string]string{"city": fmt.Sprintf("unknown city for %s", uf)}}
	}
	return nil
}
