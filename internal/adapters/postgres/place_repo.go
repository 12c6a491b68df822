package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/voyago/voyago/internal/core/domain"
	"github.com/voyago/voyago/internal/pkg/geospatial"
)

// PlaceRepo implements ports.PlaceRepository with pgx.
type PlaceRepo struct {
	db *DB
}

// NewPlaceRepo creates a new PlaceRepo.
func NewPlaceRepo(db *DB) *PlaceRepo {
	return &PlaceRepo{db: db}
}

// Upsert inserts or updates a single place.
func (r *PlaceRepo) Upsert(ctx context.Context, p *domain.Place) error {
	viewport, err := viewportJSON(p)
	if err != nil {
		return err
	}
	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO places (id, name, address, category, lat, lon, viewport)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, address = EXCLUDED.address,
		    category = EXCLUDED.category,
		    lat = EXCLUDED.lat, lon = EXCLUDED.lon,
		    viewport = EXCLUDED.viewport
	`, p.ID, p.Name, p.Address, p.Category, p.Location.Lat, p.Location.Lon, viewport)
	return err
}

// UpsertBatch inserts many places using pgx.Batch.
func (r *PlaceRepo) UpsertBatch(ctx context.Context, places []domain.Place) error {
	batch := &pgx.Batch{}
	for i := range places {
		p := &places[i]
		viewport, err := viewportJSON(p)
		if err != nil {
			return err
		}
		batch.Queue(`
			INSERT INTO places (id, name, address, category, lat, lon, viewport)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE
			SET name = EXCLUDED.name, address = EXCLUDED.address,
			    category = EXCLUDED.category,
			    lat = EXCLUDED.lat, lon = EXCLUDED.lon,
			    viewport = EXCLUDED.viewport
		`, p.ID, p.Name, p.Address, p.Category, p.Location.Lat, p.Location.Lon, viewport)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range places {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// GetByID returns a place by its place ID.
func (r *PlaceRepo) GetByID(ctx context.Context, id string) (*domain.Place, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(address, ''), COALESCE(category, ''), lat, lon, viewport
		FROM places WHERE id = $1
	`, id)
	return scanPlace(row)
}

// ListByCategory returns places in one category. When near is given,
// results are ordered by distance from it.
func (r *PlaceRepo) ListByCategory(ctx context.Context, category string, near *domain.GeoPoint, limit int) ([]domain.Place, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, COALESCE(address, ''), COALESCE(category, ''), lat, lon, viewport
		FROM places
		WHERE category = $1
		ORDER BY name
		LIMIT $2
	`, category, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	places, err := scanPlaces(rows)
	if err != nil {
		return nil, err
	}
	if near != nil {
		sortByDistance(places, *near)
	}
	return places, nil
}

// FindNearby returns places within radiusMeters, closest first. The
// candidate set is narrowed with a bounding box in SQL; exact distances
// come from the haversine formula.
func (r *PlaceRepo) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Place, error) {
	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(lat, lon, radiusMeters)

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, COALESCE(address, ''), COALESCE(category, ''), lat, lon, viewport
		FROM places
		WHERE lat BETWEEN $1 AND $2 AND lon BETWEEN $3 AND $4
	`, minLat, maxLat, minLon, maxLon)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candidates, err := scanPlaces(rows)
	if err != nil {
		return nil, err
	}

	var places []domain.Place
	for _, p := range candidates {
		dist := geospatial.Haversine(lat, lon, p.Location.Lat, p.Location.Lon)
		if dist <= radiusMeters {
			d := dist
			p.Distance = &d
			places = append(places, p)
		}
	}
	sort.Slice(places, func(i, j int) bool { return *places[i].Distance < *places[j].Distance })
	if len(places) > limit {
		places = places[:limit]
	}
	return places, nil
}

// Search performs case-insensitive substring search on place names.
func (r *PlaceRepo) Search(ctx context.Context, query string, near *domain.GeoPoint, limit int) ([]domain.Place, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, COALESCE(address, ''), COALESCE(category, ''), lat, lon, viewport
		FROM places
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY name
		LIMIT $2
	`, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	places, err := scanPlaces(rows)
	if err != nil {
		return nil, err
	}
	if near != nil {
		sortByDistance(places, *near)
	}
	return places, nil
}

// Categories lists the distinct activity categories.
func (r *PlaceRepo) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT DISTINCT category FROM places
		WHERE category <> ''
		ORDER BY category
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlace(row rowScanner) (*domain.Place, error) {
	var p domain.Place
	var viewport []byte
	if err := row.Scan(&p.ID, &p.Name, &p.Address, &p.Category,
		&p.Location.Lat, &p.Location.Lon, &viewport); err != nil {
		return nil, err
	}
	if len(viewport) > 0 {
		var b domain.Bounds
		if err := json.Unmarshal(viewport, &b); err != nil {
			return nil, fmt.Errorf("decode viewport for %s: %w", p.ID, err)
		}
		p.Viewport = &b
	}
	return &p, nil
}

func scanPlaces(rows pgx.Rows) ([]domain.Place, error) {
	var places []domain.Place
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, err
		}
		places = append(places, *p)
	}
	return places, rows.Err()
}

func sortByDistance(places []domain.Place, near domain.GeoPoint) {
	for i := range places {
		d := geospatial.Haversine(near.Lat, near.Lon, places[i].Location.Lat, places[i].Location.Lon)
		places[i].Distance = &d
	}
	sort.Slice(places, func(i, j int) bool { return *places[i].Distance < *places[j].Distance })
}

func viewportJSON(p *domain.Place) ([]byte, error) {
	if p.Viewport == nil {
		return nil, nil
	}
	data, err := json.Marshal(p.Viewport)
	if err != nil {
		return nil, fmt.Errorf("encode viewport for %s: %w", p.ID, err)
	}
	return data, nil
}
