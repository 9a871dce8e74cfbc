package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/stlplant/tankview/pkg/model"
)

// customerListLimit is the page size used when listing customers.
const customerListLimit = 1000

// Resource is the CRUD surface shared by all collection endpoints.
type Resource[T any] struct {
	c    *Client
	path string
}

// List returns the collection, filtered by query.
func (r Resource[T]) List(ctx context.Context, query url.Values) ([]T, error) {
	var out []T
	err := r.c.Get(ctx, withQuery(r.path, query), &out)
	return out, err
}

func (r Resource[T]) Get(ctx context.Context, id int) (T, error) {
	var out T
	err := r.c.Get(ctx, r.item(id), &out)
	return out, err
}

// Create posts v and returns the stored record.
func (r Resource[T]) Create(ctx context.Context, v any) (T, error) {
	var out T
	err := r.c.Do(ctx, http.MethodPost, r.path, v, &out)
	return out, err
}

// Update replaces record id with v and returns the stored record.
func (r Resource[T]) Update(ctx context.Context, id int, v any) (T, error) {
	var out T
	err := r.c.Do(ctx, http.MethodPut, r.item(id), v, &out)
	return out, err
}

func (r Resource[T]) Delete(ctx context.Context, id int) error {
	return r.c.Do(ctx, http.MethodDelete, r.item(id), nil, nil)
}

func (r Resource[T]) item(id int, sub ...string) string {
	p := strings.TrimSuffix(r.path, "/") + "/" + strconv.Itoa(id)
	for _, s := range sub {
		p += "/" + s
	}
	return p
}

func (r Resource[T]) canDelete(ctx context.Context, id int) (model.DeleteCheck, error) {
	var out model.DeleteCheck
	err := r.c.Do(ctx, http.MethodGet, r.item(id, "can-delete"), nil, &out)
	return out, err
}

// CustomerService wraps /customers.
type CustomerService struct {
	Resource[model.Customer]
}

// List returns up to 1000 customers.
func (s CustomerService) List(ctx context.Context) ([]model.Customer, error) {
	return s.Resource.List(ctx, url.Values{"limit": {strconv.Itoa(customerListLimit)}})
}

// Search returns customers whose name contains term.
func (s CustomerService) Search(ctx context.Context, term string) ([]model.Customer, error) {
	return s.Resource.List(ctx, url.Values{
		"limit":  {strconv.Itoa(customerListLimit)},
		"search": {term},
	})
}

// CanDelete reports whether the customer has no plants left.
func (s CustomerService) CanDelete(ctx context.Context, id int) (model.DeleteCheck, error) {
	return s.canDelete(ctx, id)
}

// Plants lists the plants of a customer.
func (s CustomerService) Plants(ctx context.Context, id int) ([]model.Plant, error) {
	var out []model.Plant
	err := s.c.Get(ctx, s.item(id, "plants"), &out)
	return out, err
}

// PlantService wraps /plants and plant revisions.
type PlantService struct {
	Resource[model.Plant]
}

// ForCustomer lists the plants of one customer, including every revision
// when activeOnly is false.
func (s PlantService) ForCustomer(ctx context.Context, customerID int, activeOnly bool) ([]model.Plant, error) {
	return s.Resource.List(ctx, url.Values{
		"customer_id": {strconv.Itoa(customerID)},
		"active_only": {strconv.FormatBool(activeOnly)},
	})
}

func (s PlantService) Lines(ctx context.Context, id int) ([]model.Line, error) {
	var out []model.Line
	err := s.c.Get(ctx, s.item(id, "lines"), &out)
	return out, err
}

// NextLineNumber returns the next free line number of a plant.
func (s PlantService) NextLineNumber(ctx context.Context, id int) (int, error) {
	var out model.NextLineNumber
	err := s.c.Do(ctx, http.MethodGet, s.item(id, "lines", "next-number"), nil, &out)
	return out.NextNumber, err
}

func (s PlantService) Revisions(ctx context.Context, id int) ([]model.PlantRevision, error) {
	var out []model.PlantRevision
	if err := s.c.Do(ctx, http.MethodGet, s.item(id, "revisions"), nil, &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].PlantID = id
	}
	return out, nil
}

// CreateRevision creates a new draft revision copied from plant id.
func (s PlantService) CreateRevision(ctx context.Context, id int, req model.RevisionCreate) (model.Plant, error) {
	var out model.Plant
	err := s.c.Do(ctx, http.MethodPost, s.item(id, "revisions"), req, &out)
	return out, err
}

// ActivateRevision makes revision id the active revision of its plant.
func (s PlantService) ActivateRevision(ctx context.Context, id int, req model.RevisionActivate) (model.Plant, error) {
	if req.PlantID == 0 {
		req.PlantID = id
	}
	var out model.Plant
	err := s.c.Do(ctx, http.MethodPut, s.item(id, "revisions", "activate"), req, &out)
	return out, err
}

// DeleteRevision deletes a non-active revision.
func (s PlantService) DeleteRevision(ctx context.Context, id int) error {
	return s.c.Do(ctx, http.MethodDelete, s.item(id, "revisions"), nil, nil)
}

// Active returns the active revision of the plant that id belongs to.
func (s PlantService) Active(ctx context.Context, id int) (model.Plant, error) {
	var out model.Plant
	err := s.c.Do(ctx, http.MethodGet, s.item(id, "active"), nil, &out)
	return out, err
}

// LineService wraps /lines.
type LineService struct {
	Resource[model.Line]
}

// List returns the lines of a plant.
func (s LineService) List(ctx context.Context, plantID int) ([]model.Line, error) {
	var out []model.Line
	err := s.c.Get(ctx, "/plants/"+strconv.Itoa(plantID)+"/lines", &out)
	return out, err
}

func (s LineService) TankGroups(ctx context.Context, id int) ([]model.TankGroup, error) {
	var out []model.TankGroup
	err := s.c.Get(ctx, s.item(id, "tank-groups"), &out)
	return out, err
}

// Tanks returns the tanks of a line in drawing order.
func (s LineService) Tanks(ctx context.Context, id int) ([]model.Tank, error) {
	var out []model.Tank
	err := s.c.Get(ctx, s.item(id, "tanks"), &out)
	return out, err
}

// DeviceService wraps /devices.
type DeviceService struct {
	Resource[model.Device]
}

func (s DeviceService) Search(ctx context.Context, query string) ([]model.Device, error) {
	var out []model.Device
	err := s.c.Get(ctx, withQuery("/devices/search", url.Values{"q": {query}}), &out)
	return out, err
}

// TankService wraps /tanks.
type TankService struct {
	Resource[model.Tank]
}

func (s TankService) CanDelete(ctx context.Context, id int) (model.DeleteCheck, error) {
	return s.canDelete(ctx, id)
}

// TankGroupService wraps /tank-groups.
type TankGroupService struct {
	Resource[model.TankGroup]
}

func (s TankGroupService) Tanks(ctx context.Context, id int) ([]model.Tank, error) {
	var out []model.Tank
	err := s.c.Get(ctx, s.item(id, "tanks"), &out)
	return out, err
}

func (s TankGroupService) CanDelete(ctx context.Context, id int) (model.DeleteCheck, error) {
	return s.canDelete(ctx, id)
}

// ChatService wraps the knowledge hub chat endpoints.
type ChatService struct {
	c *Client
}

func (s ChatService) Sessions(ctx context.Context) ([]model.ChatSession, error) {
	var out []model.ChatSession
	err := s.c.Do(ctx, http.MethodGet, "/chat/sessions", nil, &out)
	return out, err
}

func (s ChatService) CreateSession(ctx context.Context, session model.ChatSession) (model.ChatSession, error) {
	var out model.ChatSession
	err := s.c.Do(ctx, http.MethodPost, "/chat/sessions", session, &out)
	return out, err
}

func (s ChatService) Messages(ctx context.Context, sessionID int) ([]model.ChatMessage, error) {
	var out []model.ChatMessage
	err := s.c.Do(ctx, http.MethodGet, "/chat/sessions/"+strconv.Itoa(sessionID)+"/messages", nil, &out)
	return out, err
}

func (s ChatService) SendMessage(ctx context.Context, sessionID int, msg model.ChatMessage) (model.ChatMessage, error) {
	var out model.ChatMessage
	err := s.c.Do(ctx, http.MethodPost, "/chat/sessions/"+strconv.Itoa(sessionID)+"/messages", msg, &out)
	return out, err
}

// DeleteSession soft-deletes a session.
func (s ChatService) DeleteSession(ctx context.Context, sessionID int) error {
	return s.c.Do(ctx, http.MethodDelete, "/chat/sessions/"+strconv.Itoa(sessionID), nil, nil)
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
