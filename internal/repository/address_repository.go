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

// AddressFilter captures address search parameters.
type AddressFilter struct {
	City       *string
	Province   *string
	Country    *string
	PostalCode *string
	Page       domain.PageRequest
}

// AddressRepository manages shared address persistence.
type AddressRepository interface {
	Create(ctx context.Context, address *domain.Address) error
	Update(ctx context.Context, address *domain.Address) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Address, error)
	Search(ctx context.Context, filter AddressFilter) ([]domain.Address, int, error)
}

type addressRepository struct {
	pool *pgxpool.Pool
}

// NewAddressRepository builds the repository.
func NewAddressRepository(pool *pgxpool.Pool) AddressRepository {
	return &addressRepository{pool: pool}
}

func (r *addressRepository) Create(ctx context.Context, address *domain.Address) error {
	const query = `
        INSERT INTO addresses (city, province, country, postal_code)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	if err := r.pool.QueryRow(ctx, query,
		address.City,
		address.Province,
		address.Country,
		address.PostalCode,
	).Scan(&address.ID, &address.CreatedAt, &address.UpdatedAt); err != nil {
		return fmt.Errorf("insert address: %w", err)
	}
	return nil
}

func (r *addressRepository) Update(ctx context.Context, address *domain.Address) error {
	const query = `
        UPDATE addresses SET city=$1, province=$2, country=$3, postal_code=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		address.City,
		address.Province,
		address.Country,
		address.PostalCode,
		address.ID,
	).Scan(&address.CreatedAt, &address.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update address: %w", err)
	}
	return nil
}

func (r *addressRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM addresses WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete address: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *addressRepository) GetByID(ctx context.Context, id int64) (*domain.Address, error) {
	const query = `
        SELECT id, city, province, country, postal_code, created_at, updated_at
        FROM addresses WHERE id=$1`
	var address domain.Address
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&address.ID,
		&address.City,
		&address.Province,
		&address.Country,
		&address.PostalCode,
		&address.CreatedAt,
		&address.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select address: %w", err)
	}
	return &address, nil
}

func (r *addressRepository) Search(ctx context.Context, filter AddressFilter) ([]domain.Address, int, error) {
	clauses := []string{"1=1"}
	args := []any{}

	addLike := func(column string, value *string) {
		if value == nil || strings.TrimSpace(*value) == "" {
			return
		}
		args = append(args, likePattern(strings.TrimSpace(*value)))
		clauses = append(clauses, fmt.Sprintf(`%s LIKE $%d ESCAPE '\'`, column, len(args)))
	}
	addLike("city", filter.City)
	addLike("province", filter.Province)
	addLike("country", filter.Country)
	addLike("postal_code", filter.PostalCode)

	where := strings.Join(clauses, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM addresses WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count addresses: %w", err)
	}

	page := filter.Page.Normalize()
	query := fmt.Sprintf(`SELECT id, city, province, country, postal_code, created_at, updated_at
             FROM addresses WHERE %s ORDER BY id LIMIT %d OFFSET %d`, where, page.Size, page.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search addresses: %w", err)
	}
	defer rows.Close()

	var result []domain.Address
	for rows.Next() {
		var address domain.Address
		if err := rows.Scan(&address.ID, &address.City, &address.Province, &address.Country,
			&address.PostalCode, &address.CreatedAt, &address.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan address: %w", err)
		}
		result = append(result, address)
	}
	return result, total, rows.Err()
}
