package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"zenflow/internal/demands"
)

// DemandStore keeps areas and demands. Deleting an area cascades to its
// demands through the foreign key.
type DemandStore struct {
	database *sql.DB
}

var _ demands.Store = (*DemandStore)(nil)

// NewDemandStore returns a DemandStore over an opened database.
func NewDemandStore(database *sql.DB) *DemandStore {
	return &DemandStore{database: database}
}

// ListAreas returns every area ordered by name, with its demand count.
func (store *DemandStore) ListAreas(ctx context.Context) ([]demands.Area, error) {
	rows, err := store.database.QueryContext(ctx,
		`SELECT a.id, a.name, a.created_at, COUNT(d.id)
		FROM areas a LEFT JOIN demands d ON d.area_id = a.id
		GROUP BY a.id, a.name, a.created_at
		ORDER BY a.name COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("listing areas: %w", err)
	}
	defer rows.Close()

	var areas []demands.Area
	for rows.Next() {
		var area demands.Area
		var created string
		if err := rows.Scan(&area.ID, &area.Name, &created, &area.DemandCount); err != nil {
			return nil, fmt.Errorf("scanning area: %w", err)
		}
		area.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		areas = append(areas, area)
	}
	return areas, rows.Err()
}

func (store *DemandStore) CreateArea(ctx context.Context, area demands.Area) (demands.Area, error) {
	_, err := store.database.ExecContext(ctx,
		`INSERT INTO areas (id, name, created_at) VALUES (?, ?, ?)`,
		area.ID, area.Name, area.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return demands.Area{}, fmt.Errorf("creating area: %w", err)
	}
	return area, nil
}

func (store *DemandStore) DeleteArea(ctx context.Context, id string) error {
	result, err := store.database.ExecContext(ctx, `DELETE FROM areas WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting area: %w", err)
	}
	return requireRow(result, id)
}

// ListDemands returns the demands of an area, newest first.
func (store *DemandStore) ListDemands(ctx context.Context, areaID string) ([]demands.Demand, error) {
	rows, err := store.database.QueryContext(ctx,
		`SELECT id, area_id, description, status, created_at
		FROM demands WHERE area_id = ?
		ORDER BY created_at DESC`, areaID)
	if err != nil {
		return nil, fmt.Errorf("listing demands: %w", err)
	}
	defer rows.Close()

	var list []demands.Demand
	for rows.Next() {
		var d demands.Demand
		var status, created string
		if err := rows.Scan(&d.ID, &d.AreaID, &d.Description, &status, &created); err != nil {
			return nil, fmt.Errorf("scanning demand: %w", err)
		}
		d.Status = demands.Status(status)
		d.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		list = append(list, d)
	}
	return list, rows.Err()
}

func (store *DemandStore) CreateDemand(ctx context.Context, d demands.Demand) (demands.Demand, error) {
	_, err := store.database.ExecContext(ctx,
		`INSERT INTO demands (id, area_id, description, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		d.ID, d.AreaID, d.Description, string(d.Status), d.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return demands.Demand{}, fmt.Errorf("creating demand: %w", err)
	}
	return d, nil
}

func (store *DemandStore) SetDemandStatus(ctx context.Context, id string, status demands.Status) error {
	result, err := store.database.ExecContext(ctx,
		`UPDATE demands SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("updating demand: %w", err)
	}
	return requireRow(result, id)
}

func (store *DemandStore) DeleteDemand(ctx context.Context, id string) error {
	result, err := store.database.ExecContext(ctx, `DELETE FROM demands WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting demand: %w", err)
	}
	return requireRow(result, id)
}
