package domain

import "time"

// Contact is an owner-scoped phonebook entry. OwnerID is captured from the
// creating principal and never changes afterwards.
type Contact struct {
	ID        int64
	OwnerID   int64
	AddressID *int64
	Name      string
	Phone     string
	Email     string
	Street    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
