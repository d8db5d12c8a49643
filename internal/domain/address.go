package domain

import "time"

// Address is a shared record any authenticated identity may reference.
type Address struct {
	ID         int64     `json:"id"`
	City       string    `json:"city"`
	Province   string    `json:"province"`
	Country    string    `json:"country"`
	PostalCode string    `json:"postal_code"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
