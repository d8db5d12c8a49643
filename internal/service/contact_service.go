package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/phonebook/internal/auth"
	"github.com/spec-kit/phonebook/internal/domain"
	"github.com/spec-kit/phonebook/internal/events"
	"github.com/spec-kit/phonebook/internal/repository"
	apperrors "github.com/spec-kit/phonebook/pkg/util/errorutil"
)

// ContactInput carries the mutable fields of a contact. The owner is
// never part of it.
type ContactInput struct {
	Name      string
	Phone     string
	Email     string
	Street    string
	AddressID *int64
}

// ContactQuery describes a contact search. Every term is a substring match.
type ContactQuery struct {
	Name   *string
	Phone  *string
	Email  *string
	Street *string
	Page   domain.PageRequest
}

// ContactService coordinates owner-scoped contact workflows.
type ContactService struct {
	contacts   repository.ContactRepository
	addresses  repository.AddressRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// ContactDependencies bundles repositories for the contact service.
type ContactDependencies struct {
	ContactRepo repository.ContactRepository
	AddressRepo repository.AddressRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewContactService constructs the service.
func NewContactService(deps ContactDependencies) *ContactService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactService{
		contacts:   deps.ContactRepo,
		addresses:  deps.AddressRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// Create stores a contact owned by the calling identity.
func (s *ContactService) Create(ctx context.Context, principalID int64, input ContactInput) (*domain.Contact, error) {
	if err := s.checkAddress(ctx, input.AddressID); err != nil {
		return nil, err
	}

	contact := &domain.Contact{OwnerID: principalID}
	applyContactInput(contact, input)
	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventContactCreated,
		ContactID: contact.ID,
		ActorID:   principalID,
		Payload:   events.ContactChangedPayload{Fields: contactFields, AddressID: contact.AddressID},
	})
	return contact, nil
}

// Get returns a contact the caller owns. Someone else's contact is
// reported exactly like a missing one.
func (s *ContactService) Get(ctx context.Context, principalID, contactID int64) (*domain.Contact, error) {
	return s.loadOwned(ctx, principalID, contactID)
}

// Update rewrites a contact after the ownership check passes.
func (s *ContactService) Update(ctx context.Context, principalID, contactID int64, input ContactInput) (*domain.Contact, error) {
	contact, err := s.loadOwned(ctx, principalID, contactID)
	if err != nil {
		return nil, err
	}
	if err := s.checkAddress(ctx, input.AddressID); err != nil {
		return nil, err
	}

	changed := diffContact(contact, input)
	applyContactInput(contact, input)
	if err := s.contacts.Update(ctx, contact); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("contact")
		}
		return nil, fmt.Errorf("update contact: %w", err)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventContactUpdated,
		ContactID: contact.ID,
		ActorID:   principalID,
		Payload:   events.ContactChangedPayload{Fields: changed, AddressID: contact.AddressID},
	})
	return contact, nil
}

// Delete removes a contact after the ownership check passes.
func (s *ContactService) Delete(ctx context.Context, principalID, contactID int64) error {
	if _, err := s.loadOwned(ctx, principalID, contactID); err != nil {
		return err
	}
	if err := s.contacts.Delete(ctx, contactID, principalID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("contact")
		}
		return fmt.Errorf("delete contact: %w", err)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventContactDeleted,
		ContactID: contactID,
		ActorID:   principalID,
	})
	return nil
}

// Search lists the caller's contacts. The owner filter is applied in the
// query itself, never after paging.
func (s *ContactService) Search(ctx context.Context, principalID int64, query ContactQuery) (*Page[domain.Contact], error) {
	filter := repository.ContactFilter{
		OwnerID: principalID,
		Name:    query.Name,
		Phone:   query.Phone,
		Email:   query.Email,
		Street:  query.Street,
		Page:    query.Page.Normalize(),
	}
	contacts, total, err := s.contacts.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search contacts: %w", err)
	}
	return newPage(contacts, filter.Page, total), nil
}

func (s *ContactService) loadOwned(ctx context.Context, principalID, contactID int64) (*domain.Contact, error) {
	contact, err := s.contacts.GetByID(ctx, contactID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("contact")
		}
		return nil, fmt.Errorf("load contact: %w", err)
	}
	if err := auth.EnforceOwnership(contact.OwnerID, principalID); err != nil {
		return nil, apperrors.NewNotFound("contact")
	}
	return contact, nil
}

func (s *ContactService) checkAddress(ctx context.Context, addressID *int64) error {
	if addressID == nil {
		return nil
	}
	if _, err := s.addresses.GetByID(ctx, *addressID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewValidationError("validation failed", map[string]any{
				"address_id": "address does not exist",
			})
		}
		return fmt.Errorf("load address: %w", err)
	}
	return nil
}

func (s *ContactService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("contact event handler failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err),
		)
	}
}

var contactFields = []string{"name", "phone", "email", "street", "address_id"}

func applyContactInput(contact *domain.Contact, input ContactInput) {
	contact.Name = input.Name
	contact.Phone = input.Phone
	contact.Email = input.Email
	contact.Street = input.Street
	contact.AddressID = input.AddressID
}

func diffContact(current *domain.Contact, input ContactInput) []string {
	var changed []string
	if current.Name != input.Name {
		changed = append(changed, "name")
	}
	if current.Phone != input.Phone {
		changed = append(changed, "phone")
	}
	if current.Email != input.Email {
		changed = append(changed, "email")
	}
	if current.Street != input.Street {
		changed = append(changed, "street")
	}
	if !sameAddress(current.AddressID, input.AddressID) {
		changed = append(changed, "address_id")
	}
	return changed
}

func sameAddress(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
