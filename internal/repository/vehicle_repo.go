package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rentacar/internal/db"
	"rentacar/internal/entities"
	apperr "rentacar/internal/errors"
)

type VehicleRepository struct {
	DB *sql.DB
}

func NewVehicleRepository(database *sql.DB) *VehicleRepository {
	return &VehicleRepository{DB: database}
}

// ListVehicles returns vehicles joined with their brand, category and
// location names, newest first. All filters are optional.
func (r *VehicleRepository) ListVehicles(ctx context.Context, filter entities.VehicleFilter) ([]entities.VehicleResponse, error) {
	query := `
		SELECT v.id, vb.name, v.model, v.year, v.daily_rate, v.status,
		       vc.name, vl.name, v.features, v.images
		FROM vehicles v
		JOIN vehicle_brands vb ON v.brand_id = vb.id
		JOIN vehicle_categories vc ON v.category_id = vc.id
		JOIN vehicle_locations vl ON v.location_id = vl.id
		WHERE ($1 = '' OR v.status = $1)
		  AND ($2 = '' OR vc.name = $2)
		  AND ($3 = '' OR vl.name = $3)
		  AND ($4 = '' OR v.model ILIKE '%' || $4 || '%' OR vb.name ILIKE '%' || $4 || '%')
		ORDER BY v.created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, filter.Status, filter.Category, filter.Location, filter.Search)
	if err != nil {
		return nil, fmt.Errorf("error querying vehicles: %w", err)
	}
	defer rows.Close()

	vehicles := []entities.VehicleResponse{}
	for rows.Next() {
		var v db.Vehicle
		var category, location string
		err := rows.Scan(&v.ID, &v.Brand, &v.Model, &v.Year, &v.DailyRate, &v.Status,
			&category, &location, &v.Features, &v.Images)
		if err != nil {
			return nil, fmt.Errorf("error scanning vehicle: %w", err)
		}
		vehicles = append(vehicles, entities.VehicleResponse{
			ID:        v.ID,
			Brand:     v.Brand,
			Model:     v.Model,
			Year:      v.Year,
			DailyRate: v.DailyRate,
			Status:    v.Status,
			Category:  category,
			Location:  location,
			Features:  v.Features,
			Images:    v.Images,
		})
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating vehicles: %w", err)
	}
	return vehicles, nil
}

func (r *VehicleRepository) GetVehicle(ctx context.Context, id string) (*entities.VehicleResponse, error) {
	query := `
		SELECT v.id, vb.name, v.model, v.year, v.daily_rate, v.status,
		       vc.name, vl.name, v.features, v.images
		FROM vehicles v
		JOIN vehicle_brands vb ON v.brand_id = vb.id
		JOIN vehicle_categories vc ON v.category_id = vc.id
		JOIN vehicle_locations vl ON v.location_id = vl.id
		WHERE v.id = $1`

	var v db.Vehicle
	var category, location string
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&v.ID, &v.Brand, &v.Model, &v.Year, &v.DailyRate, &v.Status,
		&category, &location, &v.Features, &v.Images)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("error querying vehicle %s: %w", id, err)
	}
	return &entities.VehicleResponse{
		ID:        v.ID,
		Brand:     v.Brand,
		Model:     v.Model,
		Year:      v.Year,
		DailyRate: v.DailyRate,
		Status:    v.Status,
		Category:  category,
		Location:  location,
		Features:  v.Features,
		Images:    v.Images,
	}, nil
}

// GetDailyRate fetches just the rate and status for pricing a booking.
func (r *VehicleRepository) GetDailyRate(ctx context.Context, id string) (rate int, status string, err error) {
	err = r.DB.QueryRowContext(ctx, `SELECT daily_rate, status FROM vehicles WHERE id = $1`, id).Scan(&rate, &status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", apperr.ErrNotFound
		}
		return 0, "", fmt.Errorf("error querying daily rate for vehicle %s: %w", id, err)
	}
	return rate, status, nil
}

func (r *VehicleRepository) ListBrands(ctx context.Context) ([]db.VehicleBrand, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, name, COALESCE(logo_url, ''), COALESCE(country, '') FROM vehicle_brands ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("error querying brands: %w", err)
	}
	defer rows.Close()

	var brands []db.VehicleBrand
	for rows.Next() {
		var b db.VehicleBrand
		if err := rows.Scan(&b.ID, &b.Name, &b.LogoURL, &b.Country); err != nil {
			return nil, fmt.Errorf("error scanning brand: %w", err)
		}
		brands = append(brands, b)
	}
	return brands, rows.Err()
}

func (r *VehicleRepository) ListCategories(ctx context.Context) ([]db.VehicleCategory, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, name, COALESCE(description, ''), base_daily_rate FROM vehicle_categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("error querying categories: %w", err)
	}
	defer rows.Close()

	var categories []db.VehicleCategory
	for rows.Next() {
		var c db.VehicleCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.BaseDailyRate); err != nil {
			return nil, fmt.Errorf("error scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *VehicleRepository) ListLocations(ctx context.Context) ([]db.VehicleLocation, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, name, COALESCE(address, ''), COALESCE(phone, '') FROM vehicle_locations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("error querying locations: %w", err)
	}
	defer rows.Close()

	var locations []db.VehicleLocation
	for rows.Next() {
		var l db.VehicleLocation
		if err := rows.Scan(&l.ID, &l.Name, &l.Address, &l.Phone); err != nil {
			return nil, fmt.Errorf("error scanning location: %w", err)
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}
