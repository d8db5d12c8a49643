package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/phonebook/internal/domain"
)

// ContactFilter captures contact search parameters. OwnerID is mandatory:
// listings are always restricted to one owner inside the query.
type ContactFilter struct {
	OwnerID int64
	Name    *string
	Phone   *string
	Email   *string
	Street  *string
	Page    domain.PageRequest
}

// ContactRepository encapsulates contact persistence.
type ContactRepository interface {
	Create(ctx context.Context, contact *domain.Contact) error
	// Update rewrites the mutable fields of a contact. The owner column is
	// never written; it is only used to match the row.
	Update(ctx context.Context, contact *domain.Contact) error
	Delete(ctx context.Context, id, ownerID int64) error
	GetByID(ctx context.Context, id int64) (*domain.Contact, error)
	Search(ctx context.Context, filter ContactFilter) ([]domain.Contact, int, error)
}

type contactRepository struct {
	pool *pgxpool.Pool
}

// NewContactRepository instantiates repository.
func NewContactRepository(pool *pgxpool.Pool) ContactRepository {
	return &contactRepository{pool: pool}
}

const contactColumns = `id, owner_id, address_id, name, phone, email, street, created_at, updated_at`

func (r *contactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	const query = `
        INSERT INTO contacts (owner_id, address_id, name, phone, email, street)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	if err := r.pool.QueryRow(ctx, query,
		contact.OwnerID,
		contact.AddressID,
		contact.Name,
		contact.Phone,
		contact.Email,
		contact.Street,
	).Scan(&contact.ID, &contact.CreatedAt, &contact.UpdatedAt); err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

func (r *contactRepository) Update(ctx context.Context, contact *domain.Contact) error {
	const query = `
        UPDATE contacts SET address_id=$1, name=$2, phone=$3, email=$4, street=$5, updated_at=NOW()
        WHERE id=$6 AND owner_id=$7
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		contact.AddressID,
		contact.Name,
		contact.Phone,
		contact.Email,
		contact.Street,
		contact.ID,
		contact.OwnerID,
	).Scan(&contact.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	return nil
}

func (r *contactRepository) Delete(ctx context.Context, id, ownerID int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM contacts WHERE id=$1 AND owner_id=$2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *contactRepository) GetByID(ctx context.Context, id int64) (*domain.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id=$1`
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("select contact: %w", err)
	}
	defer rows.Close()

	contacts, err := scanContacts(rows)
	if err != nil {
		return nil, err
	}
	if len(contacts) == 0 {
		return nil, ErrNotFound
	}
	return &contacts[0], nil
}

func (r *contactRepository) Search(ctx context.Context, filter ContactFilter) ([]domain.Contact, int, error) {
	args := []any{filter.OwnerID}
	clauses := []string{"owner_id=$1"}

	addLike := func(column string, value *string) {
		if value == nil || strings.TrimSpace(*value) == "" {
			return
		}
		args = append(args, likePattern(strings.TrimSpace(*value)))
		clauses = append(clauses, fmt.Sprintf(`%s LIKE $%d ESCAPE '\'`, column, len(args)))
	}
	addLike("name", filter.Name)
	addLike("phone", filter.Phone)
	addLike("email", filter.Email)
	addLike("street", filter.Street)

	where := strings.Join(clauses, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM contacts WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count contacts: %w", err)
	}

	page := filter.Page.Normalize()
	query := fmt.Sprintf(`SELECT %s FROM contacts WHERE %s ORDER BY id LIMIT %d OFFSET %d`,
		contactColumns, where, page.Size, page.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search contacts: %w", err)
	}
	defer rows.Close()

	contacts, err := scanContacts(rows)
	if err != nil {
		return nil, 0, err
	}
	return contacts, total, nil
}

func scanContacts(rows pgx.Rows) ([]domain.Contact, error) {
	var result []domain.Contact
	for rows.Next() {
		var contact domain.Contact
		if err := rows.Scan(
			&contact.ID,
			&contact.OwnerID,
			&contact.AddressID,
			&contact.Name,
			&contact.Phone,
			&contact.Email,
			&contact.Street,
			&contact.CreatedAt,
			&contact.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		result = append(result, contact)
	}
	return result, rows.Err()
}
