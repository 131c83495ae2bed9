package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ski-portal/internal/data/entity"
	"ski-portal/internal/data/repository"
	"ski-portal/internal/dto/request"
	"ski-portal/internal/dto/response"
	"ski-portal/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ResortService interface {
	// Public endpoints
	ListResorts(ctx context.Context, req *request.ResortListRequest) (*response.ResortListResponse, error)
	GetResort(ctx context.Context, id string) (*response.ResortResponse, error)
	ListStates(ctx context.Context) ([]string, error)

	// Admin endpoints
	CreateResort(ctx context.Context, req *request.ResortRequest) (*response.ResortResponse, error)
	UpdateResort(ctx context.Context, id string, req *request.ResortRequest) (*response.ResortResponse, error)
	DeleteResort(ctx context.Context, id string) error
}

type resortService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewResortService(repo *repository.Repository, log *zap.Logger) ResortService {
	return &resortService{
		repo: repo,
		log:  log.With(zap.String("service", "resort")),
	}
}

func (s *resortService) ListResorts(ctx context.Context, req *request.ResortListRequest) (*response.ResortListResponse, error) {
	req.Search = strings.TrimSpace(req.Search)
	req.State = strings.TrimSpace(req.State)
	if req.Page < 1 {
		req.Page = 1
	}
	req.PerPage = req.Limit()

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	filter := entity.ResortFilter{
		Search: req.Search,
		State:  req.State,
		Sort:   entity.ResortSort(req.Sort),
	}

	resorts, err := s.repo.Resort.FindAll(ctx, filter, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to list resorts",
			zap.Error(err),
			zap.String("search", req.Search),
			zap.String("state", req.State),
			zap.Int("page", req.Page),
		)
		return nil, fmt.Errorf("list resorts: %w", err)
	}

	total, err := s.repo.Resort.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count resorts: %w", err)
	}

	states, err := s.repo.Resort.ListStates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list states: %w", err)
	}

	resortResponses := make([]response.ResortResponse, len(resorts))
	for i, resort := range resorts {
		resortResponses[i] = response.ResortToResponse(resort)
	}

	return &response.ResortListResponse{
		PaginatedResponse: response.NewPaginatedResponse(resortResponses, req.Page, req.PerPage, total),
		States:            states,
	}, nil
}

func (s *resortService) GetResort(ctx context.Context, id string) (*response.ResortResponse, error) {
	resort, err := s.findResort(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := response.ResortToResponse(resort)
	return &resp, nil
}

func (s *resortService) ListStates(ctx context.Context) ([]string, error) {
	states, err := s.repo.Resort.ListStates(ctx)
	if err != nil {
		s.log.Error("Failed to list states", zap.Error(err))
		return nil, fmt.Errorf("list states: %w", err)
	}
	return states, nil
}

func (s *resortService) CreateResort(ctx context.Context, req *request.ResortRequest) (*response.ResortResponse, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	now := time.Now()
	resort := &entity.Resort{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	applyResortRequest(resort, req)

	if err := s.repo.Resort.Create(ctx, resort); err != nil {
		return nil, fmt.Errorf("create resort: %w", err)
	}

	s.log.Info("Resort created",
		zap.String("resort_id", resort.ID.String()),
		zap.String("name", resort.Name),
		zap.String("state", resort.State),
	)

	resp := response.ResortToResponse(resort)
	return &resp, nil
}

func (s *resortService) UpdateResort(ctx context.Context, id string, req *request.ResortRequest) (*response.ResortResponse, error) {
	resort, err := s.findResort(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.validate(req); err != nil {
		return nil, err
	}

	applyResortRequest(resort, req)
	resort.UpdatedAt = time.Now()

	if err := s.repo.Resort.Update(ctx, resort); err != nil {
		return nil, fmt.Errorf("update resort: %w", err)
	}

	s.log.Info("Resort updated", zap.String("resort_id", id))

	resp := response.ResortToResponse(resort)
	return &resp, nil
}

func (s *resortService) DeleteResort(ctx context.Context, id string) error {
	resortID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid resort ID format %s", id)
	}

	if err := s.repo.Resort.Delete(ctx, resortID); err != nil {
		s.log.Warn("Failed to delete resort", zap.Error(err), zap.String("resort_id", id))
		return err
	}

	return nil
}

// ==================== HELPER METHODS ====================

func (s *resortService) findResort(ctx context.Context, id string) (*entity.Resort, error) {
	resortID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid resort ID format %s", id)
	}

	resort, err := s.repo.Resort.FindByID(ctx, resortID)
	if err != nil {
		s.log.Error("Failed to find resort", zap.Error(err), zap.String("resort_id", id))
		return nil, fmt.Errorf("find resort: %w", err)
	}
	if resort == nil {
		return nil, fmt.Errorf("resort %s not found", id)
	}

	return resort, nil
}

func (s *resortService) validate(req *request.ResortRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.State = strings.TrimSpace(req.State)
	for _, field := range []**string{&req.City, &req.Address, &req.Phone, &req.Website, &req.Description} {
		if *field != nil {
			*field = utils.OptionalString(**field)
		}
	}

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Resort validation failed", zap.Any("errors", errs))
		return fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	if req.BaseElevation != nil && req.SummitElevation != nil && *req.SummitElevation < *req.BaseElevation {
		return fmt.Errorf("validation failed: summit_elevation must not be below base_elevation")
	}

	return nil
}

func applyResortRequest(resort *entity.Resort, req *request.ResortRequest) {
	resort.Name = req.Name
	resort.State = req.State
	resort.City = req.City
	resort.Address = req.Address
	resort.Phone = req.Phone
	resort.Website = req.Website
	resort.Latitude = *req.Latitude
	resort.Longitude = *req.Longitude
	resort.BaseElevation = req.BaseElevation
	resort.SummitElevation = req.SummitElevation
	resort.TrailCount = req.TrailCount
	resort.LiftCount = req.LiftCount
	resort.Description = req.Description
}
