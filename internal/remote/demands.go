package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"zenflow/internal/demands"
	"zenflow/internal/tracker"

	"github.com/tidwall/gjson"
)

// DemandStore keeps areas and demands in two remote tables.
type DemandStore struct {
	client  *Client
	areas   string
	demands string
}

var _ demands.Store = (*DemandStore)(nil)

// Demands returns the demand store of c.
func (c *Client) Demands() *DemandStore {
	return &DemandStore{client: c, areas: c.cfg.AreasTable, demands: c.cfg.DemandsTable}
}

func (s *DemandStore) ListAreas(ctx context.Context) ([]demands.Area, error) {
	q := url.Values{}
	q.Set("select", fmt.Sprintf("id,name,created_at,%s(count)", s.demands))
	q.Set("order", "name.asc")
	body, err := s.client.request(ctx, http.MethodGet, s.areas, q, nil)
	if err != nil {
		return nil, err
	}
	var out []demands.Area
	for _, row := range gjson.ParseBytes(body).Array() {
		out = append(out, demands.Area{
			ID:          row.Get("id").String(),
			Name:        row.Get("name").String(),
			CreatedAt:   parseTime(row.Get("created_at").String()),
			DemandCount: int(row.Get(s.demands + ".0.count").Int()),
		})
	}
	return out, nil
}

func (s *DemandStore) CreateArea(ctx context.Context, area demands.Area) (demands.Area, error) {
	row := map[string]any{
		"id":         area.ID,
		"name":       area.Name,
		"created_at": area.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	body, err := s.client.request(ctx, http.MethodPost, s.areas, nil, []map[string]any{row})
	if err != nil {
		return demands.Area{}, err
	}
	if first := gjson.GetBytes(body, "0"); first.Exists() {
		area.ID = first.Get("id").String()
		area.Name = first.Get("name").String()
		if t := parseTime(first.Get("created_at").String()); !t.IsZero() {
			area.CreatedAt = t
		}
	}
	return area, nil
}

// DeleteArea removes the area's demands first so it does not depend on a
// cascading foreign key on the backend.
func (s *DemandStore) DeleteArea(ctx context.Context, id string) error {
	q := url.Values{}
	q.Set("area_id", eq(id))
	if _, err := s.client.request(ctx, http.MethodDelete, s.demands, q, nil); err != nil {
		return err
	}

	q = url.Values{}
	q.Set("id", eq(id))
	body, err := s.client.request(ctx, http.MethodDelete, s.areas, q, nil)
	if err != nil {
		return err
	}
	if len(gjson.ParseBytes(body).Array()) == 0 {
		return fmt.Errorf("area %s: %w", id, tracker.ErrNotFound)
	}
	return nil
}

func (s *DemandStore) ListDemands(ctx context.Context, areaID string) ([]demands.Demand, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("area_id", eq(areaID))
	q.Set("order", "created_at.desc")
	body, err := s.client.request(ctx, http.MethodGet, s.demands, q, nil)
	if err != nil {
		return nil, err
	}
	var out []demands.Demand
	for _, row := range gjson.ParseBytes(body).Array() {
		out = append(out, demandFromJSON(row))
	}
	return out, nil
}

func demandFromJSON(row gjson.Result) demands.Demand {
	return demands.Demand{
		ID:          row.Get("id").String(),
		AreaID:      row.Get("area_id").String(),
		Description: row.Get("description").String(),
		Status:      demands.Status(row.Get("status").String()),
		CreatedAt:   parseTime(row.Get("created_at").String()),
	}
}

func (s *DemandStore) CreateDemand(ctx context.Context, d demands.Demand) (demands.Demand, error) {
	row := map[string]any{
		"id":          d.ID,
		"area_id":     d.AreaID,
		"description": d.Description,
		"status":      string(d.Status),
		"created_at":  d.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	body, err := s.client.request(ctx, http.MethodPost, s.demands, nil, []map[string]any{row})
	if err != nil {
		return demands.Demand{}, err
	}
	if first := gjson.GetBytes(body, "0"); first.Exists() {
		return demandFromJSON(first), nil
	}
	return d, nil
}

func (s *DemandStore) SetDemandStatus(ctx context.Context, id string, status demands.Status) error {
	q := url.Values{}
	q.Set("id", eq(id))
	body, err := s.client.request(ctx, http.MethodPatch, s.demands, q, map[string]string{"status": string(status)})
	if err != nil {
		return err
	}
	if len(gjson.ParseBytes(body).Array()) == 0 {
		return fmt.Errorf("demand %s: %w", id, tracker.ErrNotFound)
	}
	return nil
}

func (s *DemandStore) DeleteDemand(ctx context.Context, id string) error {
	q := url.Values{}
	q.Set("id", eq(id))
	body, err := s.client.request(ctx, http.MethodDelete, s.demands, q, nil)
	if err != nil {
		return err
	}
	if len(gjson.ParseBytes(body).Array()) == 0 {
		return fmt.Errorf("demand %s: %w", id, tracker.ErrNotFound)
	}
	return nil
}
