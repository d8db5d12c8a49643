package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spec-kit/phonebook/internal/domain"
)

// The in-memory repositories back tests and the database-less development
// mode. They follow the same contracts as the Postgres implementations.

type memoryIdentityRepository struct {
	mu      sync.RWMutex
	nextID  int64
	byEmail map[string]domain.Identity
}

// NewMemoryIdentityRepository builds an in-memory identity store.
func NewMemoryIdentityRepository() IdentityRepository {
	return &memoryIdentityRepository{byEmail: make(map[string]domain.Identity)}
}

func (r *memoryIdentityRepository) Create(_ context.Context, identity *domain.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[identity.Email]; exists {
		return ErrDuplicate
	}
	r.nextID++
	now := time.Now().UTC()
	identity.ID = r.nextID
	identity.CreatedAt = now
	identity.UpdatedAt = now
	r.byEmail[identity.Email] = *identity
	return nil
}

func (r *memoryIdentityRepository) GetByEmail(_ context.Context, email string) (*domain.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	identity, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return &identity, nil
}

type memoryContactRepository struct {
	mu       sync.RWMutex
	nextID   int64
	contacts map[int64]domain.Contact
}

// NewMemoryContactRepository builds an in-memory contact store.
func NewMemoryContactRepository() ContactRepository {
	return &memoryContactRepository{contacts: make(map[int64]domain.Contact)}
}

func (r *memoryContactRepository) Create(_ context.Context, contact *domain.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	now := time.Now().UTC()
	contact.ID = r.nextID
	contact.CreatedAt = now
	contact.UpdatedAt = now
	r.contacts[contact.ID] = cloneContact(*contact)
	return nil
}

func (r *memoryContactRepository) Update(_ context.Context, contact *domain.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.contacts[contact.ID]
	if !ok || stored.OwnerID != contact.OwnerID {
		return ErrNotFound
	}
	stored.AddressID = contact.AddressID
	stored.Name = contact.Name
	stored.Phone = contact.Phone
	stored.Email = contact.Email
	stored.Street = contact.Street
	stored.UpdatedAt = time.Now().UTC()
	contact.UpdatedAt = stored.UpdatedAt
	r.contacts[contact.ID] = cloneContact(stored)
	return nil
}

func (r *memoryContactRepository) Delete(_ context.Context, id, ownerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.contacts[id]
	if !ok || stored.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(r.contacts, id)
	return nil
}

func (r *memoryContactRepository) GetByID(_ context.Context, id int64) (*domain.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.contacts[id]
	if !ok {
		return nil, ErrNotFound
	}
	found := cloneContact(stored)
	return &found, nil
}

func (r *memoryContactRepository) Search(_ context.Context, filter ContactFilter) ([]domain.Contact, int, error) {
	r.mu.RLock()
	matched := make([]domain.Contact, 0)
	for _, contact := range r.contacts {
		if contact.OwnerID != filter.OwnerID {
			continue
		}
		if !contains(contact.Name, filter.Name) || !contains(contact.Phone, filter.Phone) ||
			!contains(contact.Email, filter.Email) || !contains(contact.Street, filter.Street) {
			continue
		}
		matched = append(matched, cloneContact(contact))
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return paginate(matched, filter.Page), len(matched), nil
}

// ClearAddress drops references to a deleted address, mirroring the
// ON DELETE SET NULL foreign key.
func (r *memoryContactRepository) ClearAddress(addressID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, contact := range r.contacts {
		if contact.AddressID != nil && *contact.AddressID == addressID {
			contact.AddressID = nil
			r.contacts[id] = contact
		}
	}
}

type memoryAddressRepository struct {
	mu        sync.RWMutex
	nextID    int64
	addresses map[int64]domain.Address
	onDelete  func(id int64)
}

// NewMemoryAddressRepository builds an in-memory address store. When
// contacts is an in-memory contact repository, deleting an address clears
// the references held by contacts.
func NewMemoryAddressRepository(contacts ContactRepository) AddressRepository {
	repo := &memoryAddressRepository{addresses: make(map[int64]domain.Address)}
	if mem, ok := contacts.(*memoryContactRepository); ok {
		repo.onDelete = mem.ClearAddress
	}
	return repo
}

func (r *memoryAddressRepository) Create(_ context.Context, address *domain.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	now := time.Now().UTC()
	address.ID = r.nextID
	address.CreatedAt = now
	address.UpdatedAt = now
	r.addresses[address.ID] = *address
	return nil
}

func (r *memoryAddressRepository) Update(_ context.Context, address *domain.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.addresses[address.ID]
	if !ok {
		return ErrNotFound
	}
	address.CreatedAt = stored.CreatedAt
	address.UpdatedAt = time.Now().UTC()
	r.addresses[address.ID] = *address
	return nil
}

func (r *memoryAddressRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	if _, ok := r.addresses[id]; !ok {
		r.mu.Unlock()
		return ErrNotFound
	}
	delete(r.addresses, id)
	r.mu.Unlock()

	if r.onDelete != nil {
		r.onDelete(id)
	}
	return nil
}

func (r *memoryAddressRepository) GetByID(_ context.Context, id int64) (*domain.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	address, ok := r.addresses[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &address, nil
}

func (r *memoryAddressRepository) Search(_ context.Context, filter AddressFilter) ([]domain.Address, int, error) {
	r.mu.RLock()
	matched := make([]domain.Address, 0)
	for _, address := range r.addresses {
		if !contains(address.City, filter.City) || !contains(address.Province, filter.Province) ||
			!contains(address.Country, filter.Country) || !contains(address.PostalCode, filter.PostalCode) {
			continue
		}
		matched = append(matched, address)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return paginate(matched, filter.Page), len(matched), nil
}

func contains(value string, term *string) bool {
	if term == nil || strings.TrimSpace(*term) == "" {
		return true
	}
	return strings.Contains(value, strings.TrimSpace(*term))
}

func paginate[T any](items []T, page domain.PageRequest) []T {
	page = page.Normalize()
	start := page.Offset()
	if start < 0 || start >= len(items) {
		return []T{}
	}
	end := start + page.Size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func cloneContact(contact domain.Contact) domain.Contact {
	if contact.AddressID != nil {
		id := *contact.AddressID
		contact.AddressID = &id
	}
	return contact
}
