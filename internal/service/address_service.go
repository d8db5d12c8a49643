package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/spec-kit/phonebook/internal/domain"
	"github.com/spec-kit/phonebook/internal/repository"
	apperrors "github.com/spec-kit/phonebook/pkg/util/errorutil"
)

// AddressInput carries the mutable fields of an address.
type AddressInput struct {
	City       string
	Province   string
	Country    string
	PostalCode string
}

// AddressQuery describes an address search.
type AddressQuery struct {
	City       *string
	Province   *string
	Country    *string
	PostalCode *string
	Page       domain.PageRequest
}

// AddressService manages shared address records. Addresses have no owner;
// any authenticated identity may read or change them.
type AddressService struct {
	addresses repository.AddressRepository
}

// NewAddressService constructs the service.
func NewAddressService(addresses repository.AddressRepository) *AddressService {
	return &AddressService{addresses: addresses}
}

func (s *AddressService) Create(ctx context.Context, input AddressInput) (*domain.Address, error) {
	address := &domain.Address{}
	applyAddressInput(address, input)
	if err := s.addresses.Create(ctx, address); err != nil {
		return nil, fmt.Errorf("create address: %w", err)
	}
	return address, nil
}

func (s *AddressService) Get(ctx context.Context, id int64) (*domain.Address, error) {
	address, err := s.addresses.GetByID(ctx, id)
	if err != nil {
		return nil, translateAddressErr(err, "load")
	}
	return address, nil
}

func (s *AddressService) Update(ctx context.Context, id int64, input AddressInput) (*domain.Address, error) {
	address, err := s.addresses.GetByID(ctx, id)
	if err != nil {
		return nil, translateAddressErr(err, "load")
	}
	applyAddressInput(address, input)
	if err := s.addresses.Update(ctx, address); err != nil {
		return nil, translateAddressErr(err, "update")
	}
	return address, nil
}

// Delete removes an address; contacts referencing it keep existing with
// the reference cleared.
func (s *AddressService) Delete(ctx context.Context, id int64) error {
	if err := s.addresses.Delete(ctx, id); err != nil {
		return translateAddressErr(err, "delete")
	}
	return nil
}

func (s *AddressService) Search(ctx context.Context, query AddressQuery) (*Page[domain.Address], error) {
	filter := repository.AddressFilter{
		City:       query.City,
		Province:   query.Province,
		Country:    query.Country,
		PostalCode: query.PostalCode,
		Page:       query.Page.Normalize(),
	}
	addresses, total, err := s.addresses.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search addresses: %w", err)
	}
	return newPage(addresses, filter.Page, total), nil
}

func applyAddressInput(address *domain.Address, input AddressInput) {
	address.City = input.City
	address.Province = input.Province
	address.Country = input.Country
	address.PostalCode = input.PostalCode
}

func translateAddressErr(err error, op string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("address")
	}
	return fmt.Errorf("%s address: %w", op, err)
}
