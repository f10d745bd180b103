// Package cars manages the dealership vehicle inventory.
package cars

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dealertasks.org/internal/auth"
	"dealertasks.org/internal/ids"
)

var (
	ErrNotFound      = errors.New("cars: not found")
	ErrAlreadyExists = errors.New("cars: already exists")
	ErrInvalidInput  = errors.New("cars: invalid input")
)

// Car statuses. A car enters the inventory in stock and moves to sold
// when handed over to a buyer.
const (
	StatusStock = "stock"
	StatusSold  = "sold"
)

type Car struct {
	ID            string     `json:"id"`
	Model         string     `json:"model"`
	Color         string     `json:"color"`
	RegNumber     string     `json:"reg_number"`
	ChassisNumber string     `json:"chassis_number"`
	KeyNumber     string     `json:"key_number"`
	Status        string     `json:"status"`
	BuyerName     string     `json:"buyer_name,omitempty"`
	HandoverDate  *time.Time `json:"handover_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type Store interface {
	Create(ctx context.Context, car *Car) error
	Get(ctx context.Context, id string) (*Car, error)
	GetByRegNumber(ctx context.Context, regNumber string) (*Car, error)
	List(ctx context.Context, limit, offset int) ([]*Car, error)
	Update(ctx context.Context, car *Car) error
	Delete(ctx context.Context, id string) error
}

type Service struct {
	store Store
	now   func() time.Time
}

func New(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

type CreateInput struct {
	Model         string `json:"model"`
	Color         string `json:"color"`
	RegNumber     string `json:"reg_number"`
	ChassisNumber string `json:"chassis_number"`
	KeyNumber     string `json:"key_number"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Car, error) {
	if err := auth.RequireAnyRole(ctx, auth.RoleSales, auth.RoleAdmin); err != nil {
		return nil, err
	}
	in.RegNumber = strings.ToUpper(strings.TrimSpace(in.RegNumber))
	if in.Model == "" || in.RegNumber == "" {
		return nil, fmt.Errorf("%w: model and reg_number required", ErrInvalidInput)
	}
	if existing, err := s.store.GetByRegNumber(ctx, in.RegNumber); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: reg number %s", ErrAlreadyExists, in.RegNumber)
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	now := s.now().UTC()
	car := &Car{
		ID:            ids.New(),
		Model:         in.Model,
		Color:         in.Color,
		RegNumber:     in.RegNumber,
		ChassisNumber: in.ChassisNumber,
		KeyNumber:     in.KeyNumber,
		Status:        StatusStock,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Create(ctx, car); err != nil {
		return nil, err
	}
	return car, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Car, error) {
	if _, err := auth.RequireAuthenticated(ctx); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Car, error) {
	if _, err := auth.RequireAuthenticated(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.List(ctx, limit, offset)
}

type UpdateInput struct {
	Model     string `json:"model"`
	Color     string `json:"color"`
	KeyNumber string `json:"key_number"`
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Car, error) {
	if err := auth.RequireAnyRole(ctx, auth.RoleSales, auth.RoleAdmin); err != nil {
		return nil, err
	}
	car, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Model != "" {
		car.Model = in.Model
	}
	if in.Color != "" {
		car.Color = in.Color
	}
	if in.KeyNumber != "" {
		car.KeyNumber = in.KeyNumber
	}
	car.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, car); err != nil {
		return nil, err
	}
	return car, nil
}

// Sell marks a car sold to the named buyer and stamps the handover
// date. Selling an already sold car is rejected.
func (s *Service) Sell(ctx context.Context, id, buyerName string) (*Car, error) {
	if err := auth.RequireAnyRole(ctx, auth.RoleSales, auth.RoleAdmin); err != nil {
		return nil, err
	}
	if buyerName == "" {
		return nil, fmt.Errorf("%w: buyer name required", ErrInvalidInput)
	}
	car, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if car.Status == StatusSold {
		return nil, fmt.Errorf("%w: car %s already sold", ErrInvalidInput, id)
	}
	now := s.now().UTC()
	car.Status = StatusSold
	car.BuyerName = buyerName
	car.HandoverDate = &now
	car.UpdatedAt = now
	if err := s.store.Update(ctx, car); err != nil {
		return nil, err
	}
	return car, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := auth.RequireAnyRole(ctx, auth.RoleSales, auth.RoleAdmin); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}
