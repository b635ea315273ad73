package market

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"landshare/internal/platform/postgres"
	"landshare/pkg/domain"
	"landshare/pkg/platform/sentinel"
)

// PostgresStore persists listings. Execute locks the listing row FOR UPDATE
// so a fill and a cancel racing on the same listing serialize; the loser
// sees the terminal state and fails validation.
type PostgresStore struct {
	pool *postgres.Pool
}

func NewPostgresStore(pool *postgres.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const listingColumns = `id, property_id, seller, buyer, shares_locked, price_per_share, status, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, listing *Listing) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO listings (`+listingColumns+`)
		 VALUES ($1, $2, $3, NULL, $4, $5, $6, $7, $8)`,
		uuid.UUID(listing.ID), uuid.UUID(listing.PropertyID), listing.Seller.String(),
		int64(listing.SharesLocked), int64(listing.PricePerShare), string(listing.Status),
		listing.CreatedAt, listing.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create listing: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.ListingID) (*Listing, error) {
	return s.scanOne(ctx, s.pool, id, false)
}

func (s *PostgresStore) ListByProperty(ctx context.Context, propertyID domain.PropertyID, status Status) ([]*Listing, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+listingColumns+` FROM listings
		 WHERE property_id = $1 AND status = $2 ORDER BY created_at`,
		uuid.UUID(propertyID), string(status),
	)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	return collectListings(rows)
}

func (s *PostgresStore) ListBySeller(ctx context.Context, seller domain.Address) ([]*Listing, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE seller = $1 ORDER BY created_at`,
		seller.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	return collectListings(rows)
}

func (s *PostgresStore) Execute(ctx context.Context, id domain.ListingID, validate func(*Listing) error, mutate func(*Listing)) (*Listing, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	listing, err := s.scanOne(ctx, tx, id, true)
	if err != nil {
		return nil, err
	}
	if validate != nil {
		if err := validate(listing); err != nil {
			return nil, err
		}
	}
	mutate(listing)

	var buyer *string
	if listing.Buyer != nil {
		b := listing.Buyer.String()
		buyer = &b
	}
	_, err = tx.Exec(ctx,
		`UPDATE listings SET buyer = $2, status = $3, updated_at = $4 WHERE id = $1`,
		uuid.UUID(id), buyer, string(listing.Status), listing.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update listing: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return listing, nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *PostgresStore) scanOne(ctx context.Context, q querier, id domain.ListingID, forUpdate bool) (*Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	listing, err := scanListing(q.QueryRow(ctx, query, uuid.UUID(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find listing: %w", err)
	}
	return listing, nil
}

func collectListings(rows pgx.Rows) ([]*Listing, error) {
	defer rows.Close()
	var out []*Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, listing)
	}
	return out, rows.Err()
}

func scanListing(row pgx.Row) (*Listing, error) {
	var (
		listing       Listing
		id, property  uuid.UUID
		seller        string
		buyer         *string
		shares, price int64
		status        string
	)
	err := row.Scan(&id, &property, &seller, &buyer, &shares, &price, &status,
		&listing.CreatedAt, &listing.UpdatedAt)
	if err != nil {
		return nil, err
	}
	listing.ID = domain.ListingID(id)
	listing.PropertyID = domain.PropertyID(property)
	listing.Seller = domain.Address(seller)
	if buyer != nil {
		b := domain.Address(*buyer)
		listing.Buyer = &b
	}
	listing.SharesLocked = uint64(shares)
	listing.PricePerShare = uint64(price)
	listing.Status = Status(status)
	return &listing, nil
}
