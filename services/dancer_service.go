package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/battled-crew/battled-system/models"
	"github.com/battled-crew/battled-system/repositories"
)

type DancerService interface {
	CreateDancer(ctx context.Context, name string) (*models.Dancer, error)
	GetDancer(ctx context.Context, id int) (*models.Dancer, error)
	ListDancers(ctx context.Context, limit, offset int) ([]models.Dancer, error)
}

type dancerService struct {
	dancerRepo repositories.DancerRepository
}

func NewDancerService(dancerRepo repositories.DancerRepository) DancerService {
	return &dancerService{dancerRepo: dancerRepo}
}

func (s *dancerService) CreateDancer(ctx context.Context, name string) (*models.Dancer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: dancer name is required", ErrValidationFailed)
	}
	d := &models.Dancer{Name: name}
	if err := s.dancerRepo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *dancerService) GetDancer(ctx context.Context, id int) (*models.Dancer, error) {
	d, err := s.dancerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrDancerNotFound) {
			return nil, ErrDancerNotFound
		}
		return nil, err
	}
	return d, nil
}

func (s *dancerService) ListDancers(ctx context.Context, limit, offset int) ([]models.Dancer, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.dancerRepo.List(ctx, limit, offset)
}
