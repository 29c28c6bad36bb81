package item

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxNameLength        = 100
	MaxDescriptionLength = 500
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrNameRequired       = fmt.Errorf("%w: name is required", ErrValidation)
	ErrNameTooLong        = fmt.Errorf("%w: name exceeds %d characters", ErrValidation, MaxNameLength)
	ErrDescriptionTooLong = fmt.Errorf("%w: description exceeds %d characters", ErrValidation, MaxDescriptionLength)
	ErrNotFound           = errors.New("item not found")
	ErrStorage            = errors.New("storage error")
	ErrStorageUnavailable = fmt.Errorf("%w: storage unavailable", ErrStorage)
)

// Item is immutable once created. A nil Description is the only absent value.
type Item struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type Store interface {
	Initialize(ctx context.Context) error
	List(ctx context.Context) ([]Item, error)
	Create(ctx context.Context, name string, description *string) (Item, error)
	Delete(ctx context.Context, id int64) (bool, error)
	CheckHealth(ctx context.Context) bool
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context) ([]Item, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

// Create validates and normalizes in before touching the store.
func (s *Service) Create(ctx context.Context, in CreateInput) (Item, error) {
	name, description, err := Normalize(in)
	if err != nil {
		return Item{}, err
	}
	return s.store.Create(ctx, name, description)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	removed, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}

func (s *Service) Healthy(ctx context.Context) bool {
	return s.store.CheckHealth(ctx)
}

// Normalize trims the input fields and collapses a blank description to nil.
func Normalize(in CreateInput) (string, *string, error) {
	var name string
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
	}
	if name == "" {
		return "", nil, ErrNameRequired
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", nil, ErrNameTooLong
	}

	var description *string
	if in.Description != nil {
		if d := strings.TrimSpace(*in.Description); d != "" {
			if utf8.RuneCountInString(d) > MaxDescriptionLength {
				return "", nil, ErrDescriptionTooLong
			}
			description = &d
		}
	}
	return name, description, nil
}
