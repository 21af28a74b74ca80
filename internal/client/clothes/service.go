// Package clothes reads and writes the wardrobe inventory through the
// backend table store. Ownership scoping and integrity live server-side;
// this service only shapes payloads and queries.
package clothes

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fitly/fitly/internal/backend"
	"github.com/fitly/fitly/internal/common"
	"github.com/fitly/fitly/internal/logging"
)

const tableName = "clothes"

// CreateInput carries one new item. Name and Category are mandatory;
// Color and ImageURL are optional and omitted from the payload when empty.
type CreateInput struct {
	Name     string `validate:"required"`
	Category string `validate:"required"`
	Color    string
	ImageURL string
	UserID   string `validate:"required"`
}

type Service struct {
	c        *backend.Client
	log      logging.Logger
	validate *validator.Validate
}

func NewService(c *backend.Client, log logging.Logger) *Service {
	return &Service{c: c, log: log, validate: validator.New()}
}

// Create validates the input locally, then inserts a single row. On a
// validation failure no network call is issued. Absent optional fields are
// left out of the payload entirely: the backend schema distinguishes an
// omitted column from an explicit null.
func (s *Service) Create(ctx context.Context, in CreateInput) error {
	if err := s.validate.Struct(in); err != nil {
		return common.NewError(common.KindValidation, "name and category are required", err)
	}

	rec := backend.Record{
		"name":     in.Name,
		"category": in.Category,
		"user_id":  in.UserID,
	}
	if strings.TrimSpace(in.Color) != "" {
		rec["color"] = in.Color
	}
	if in.ImageURL != "" {
		rec["image_url"] = in.ImageURL
	}

	if err := s.c.Table(tableName).Insert(ctx, rec); err != nil {
		s.log.Error(ctx, "item insert failed", "name", in.Name, "error", err)
		return err
	}
	s.log.Info(ctx, "item created", "name", in.Name, "category", in.Category)
	return nil
}

// List fetches all of the user's items, newest first. There is no
// pagination and no cache: every call is a full re-fetch.
func (s *Service) List(ctx context.Context, userID string) ([]ClothingItem, error) {
	if userID == "" {
		return nil, common.ErrNotSignedIn
	}

	var items []ClothingItem
	err := s.c.Table(tableName).
		Select("*").
		Eq("user_id", userID).
		Order("created_at", true).
		Fetch(ctx, &items)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Ping exercises the table store with an unfiltered select, reporting
// whether the backend answers at all. Diagnostic only.
func (s *Service) Ping(ctx context.Context) error {
	var items []ClothingItem
	return s.c.Table(tableName).Select("*").Fetch(ctx, &items)
}
