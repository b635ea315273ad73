package attestation

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

// PostgresStore persists attestation records.
type PostgresStore struct {
	pool *postgres.Pool
}

func NewPostgresStore(pool *postgres.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) SaveVerification(ctx context.Context, record VerificationRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO verification_records (id, property_id, issuer, document_pointer, issued_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.UUID(record.ID), uuid.UUID(record.PropertyID), record.Issuer.String(),
		[]byte(record.DocumentPointer), record.IssuedAt,
	)
	if err != nil {
		return fmt.Errorf("save verification: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindVerification(ctx context.Context, id domain.VerificationID) (VerificationRecord, error) {
	var (
		record     VerificationRecord
		recID      uuid.UUID
		propID     uuid.UUID
		issuer     string
		docPointer []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, property_id, issuer, document_pointer, issued_at
		 FROM verification_records WHERE id = $1`,
		uuid.UUID(id),
	).Scan(&recID, &propID, &issuer, &docPointer, &record.IssuedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return VerificationRecord{}, sentinel.ErrNotFound
		}
		return VerificationRecord{}, fmt.Errorf("find verification: %w", err)
	}
	record.ID = domain.VerificationID(recID)
	record.PropertyID = domain.PropertyID(propID)
	record.Issuer = domain.Address(issuer)
	record.DocumentPointer = domain.DocumentPointer(docPointer)
	return record, nil
}

func (s *PostgresStore) SaveValuation(ctx context.Context, record ValuationRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO valuation_records (id, property_id, issuer, amount, currency, document_pointer, issued_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.UUID(record.ID), uuid.UUID(record.PropertyID), record.Issuer.String(),
		int64(record.Amount), record.Currency, []byte(record.DocumentPointer), record.IssuedAt,
	)
	if err != nil {
		return fmt.Errorf("save valuation: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindValuation(ctx context.Context, id domain.ValuationID) (ValuationRecord, error) {
	var (
		record     ValuationRecord
		recID      uuid.UUID
		propID     uuid.UUID
		issuer     string
		amount     int64
		docPointer []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, property_id, issuer, amount, currency, document_pointer, issued_at
		 FROM valuation_records WHERE id = $1`,
		uuid.UUID(id),
	).Scan(&recID, &propID, &issuer, &amount, &record.Currency, &docPointer, &record.IssuedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ValuationRecord{}, sentinel.ErrNotFound
		}
		return ValuationRecord{}, fmt.Errorf("find valuation: %w", err)
	}
	record.ID = domain.ValuationID(recID)
	record.PropertyID = domain.PropertyID(propID)
	record.Issuer = domain.Address(issuer)
	record.Amount = uint64(amount)
	record.DocumentPointer = domain.DocumentPointer(docPointer)
	return record, nil
}

func (s *PostgresStore) ListByProperty(ctx context.Context, propertyID domain.PropertyID) ([]VerificationRecord, []ValuationRecord, error) {
	verRows, err := s.pool.Query(ctx,
		`SELECT id, property_id, issuer, document_pointer, issued_at
		 FROM verification_records WHERE property_id = $1 ORDER BY issued_at`,
		uuid.UUID(propertyID),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("list verifications: %w", err)
	}
	defer verRows.Close()

	var verifications []VerificationRecord
	for verRows.Next() {
		var (
			record     VerificationRecord
			recID      uuid.UUID
			propID     uuid.UUID
			issuer     string
			docPointer []byte
		)
		if err := verRows.Scan(&recID, &propID, &issuer, &docPointer, &record.IssuedAt); err != nil {
			return nil, nil, fmt.Errorf("scan verification: %w", err)
		}
		record.ID = domain.VerificationID(recID)
		record.PropertyID = domain.PropertyID(propID)
		record.Issuer = domain.Address(issuer)
		record.DocumentPointer = domain.DocumentPointer(docPointer)
		verifications = append(verifications, record)
	}
	if err := verRows.Err(); err != nil {
		return nil, nil, err
	}

	valRows, err := s.pool.Query(ctx,
		`SELECT id, property_id, issuer, amount, currency, document_pointer, issued_at
		 FROM valuation_records WHERE property_id = $1 ORDER BY issued_at`,
		uuid.UUID(propertyID),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("list valuations: %w", err)
	}
	defer valRows.Close()

	var valuations []ValuationRecord
	for valRows.Next() {
		var (
			record     ValuationRecord
			recID      uuid.UUID
			propID     uuid.UUID
			issuer     string
			amount     int64
			docPointer []byte
		)
		if err := valRows.Scan(&recID, &propID, &issuer, &amount, &record.Currency, &docPointer, &record.IssuedAt); err != nil {
			return nil, nil, fmt.Errorf("scan valuation: %w", err)
		}
		record.ID = domain.ValuationID(recID)
		record.PropertyID = domain.PropertyID(propID)
		record.Issuer = domain.Address(issuer)
		record.Amount = uint64(amount)
		record.DocumentPointer = domain.DocumentPointer(docPointer)
		valuations = append(valuations, record)
	}
	return verifications, valuations, valRows.Err()
}
