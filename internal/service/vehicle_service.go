package service

import (
	"context"

	"rentacar/internal/config"
	"rentacar/internal/db"
	"rentacar/internal/entities"
	"rentacar/internal/repository"
)

type VehicleService struct {
	Repo *repository.VehicleRepository
	cfg  *config.Config
}

func NewVehicleService(repo *repository.VehicleRepository, cfg *config.Config) *VehicleService {
	return &VehicleService{Repo: repo, cfg: cfg}
}

func (s *VehicleService) ListVehicles(ctx context.Context, filter entities.VehicleFilter) ([]entities.VehicleResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	return s.Repo.ListVehicles(ctx, filter)
}

func (s *VehicleService) GetVehicle(ctx context.Context, id string) (*entities.VehicleResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	return s.Repo.GetVehicle(ctx, id)
}

func (s *VehicleService) ListBrands(ctx context.Context) ([]db.VehicleBrand, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	return s.Repo.ListBrands(ctx)
}

func (s *VehicleService) ListCategories(ctx context.Context) ([]db.VehicleCategory, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	return s.Repo.ListCategories(ctx)
}

func (s *VehicleService) ListLocations(ctx context.Context) ([]db.VehicleLocation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	return s.Repo.ListLocations(ctx)
}
