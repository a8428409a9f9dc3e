package repositories

import (
	"context"
	"time"

	"labstock/internal/apperrors"
	contextutil "labstock/internal/context"
	"labstock/internal/database"
	. "labstock/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

// LedgerRepository is the checkout history ledger: append-oriented, one
// row per checkout event, closed exactly once by the matching return.
type LedgerRepository interface {
	Append(ctx context.Context, record *CheckoutRecord) error
	// FindOpen returns the open record for a SKU, or nil when none
	// exists. Should the one-open-record invariant ever be violated, the
	// most recently created record (highest id) wins and the situation is
	// reported as an integrity anomaly alongside the result.
	FindOpen(ctx context.Context, sku string) (*CheckoutRecord, *apperrors.IntegrityAnomaly, error)
	// Close stamps the return date and replaces the notes. Closing an
	// already-closed record is an error; records are never reopened.
	Close(ctx context.Context, id uint, returnDate time.Time, notes string) error
	List(ctx context.Context, sku string) ([]*CheckoutRecord, error)
	ListInRange(ctx context.Context, start, end time.Time) ([]*CheckoutRecord, error)
	ListClosedInRange(ctx context.Context, start, end time.Time) ([]*CheckoutRecord, error)
}

type ledgerRepository struct {
	db  database.DB
	log logger.Logger
}

func NewLedgerRepository(db database.DB) LedgerRepository {
	return &ledgerRepository{
		db:  db,
		log: logger.New("ledgerRepository"),
	}
}

func (r *ledgerRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextutil.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *ledgerRepository) Append(ctx context.Context, record *CheckoutRecord) error {
	log := r.log.Function("Append")

	if err := r.getDB(ctx).Create(record).Error; err != nil {
		return log.Err("failed to append checkout record", err, "sku", record.SKU)
	}

	return nil
}

func (r *ledgerRepository) FindOpen(
	ctx context.Context,
	sku string,
) (*CheckoutRecord, *apperrors.IntegrityAnomaly, error) {
	log := r.log.Function("FindOpen")

	var records []*CheckoutRecord
	err := r.getDB(ctx).
		Where("sku = ? AND return_date IS NULL", sku).
		Order("id DESC").
		Find(&records).Error
	if err != nil {
		return nil, nil, log.Err("failed to find open checkout record", err, "sku", sku)
	}

	if len(records) == 0 {
		return nil, nil, nil
	}

	if len(records) > 1 {
		anomaly := &apperrors.IntegrityAnomaly{
			SKU:    sku,
			Detail: "multiple open checkout records, using most recent",
		}
		log.Warn("integrity anomaly detected",
			"sku", sku,
			"openRecords", len(records),
			"picked", records[0].ID,
		)
		return records[0], anomaly, nil
	}

	return records[0], nil, nil
}

func (r *ledgerRepository) Close(
	ctx context.Context,
	id uint,
	returnDate time.Time,
	notes string,
) error {
	log := r.log.Function("Close")

	result := r.getDB(ctx).
		Model(&CheckoutRecord{}).
		Where("id = ? AND return_date IS NULL", id).
		Updates(map[string]any{
			"return_date": returnDate,
			"notes":       notes,
		})
	if result.Error != nil {
		return log.Err("failed to close checkout record", result.Error, "id", id)
	}

	if result.RowsAffected == 0 {
		return apperrors.Wrap(
			apperrors.ErrInvalidState,
			"checkout record %d is already closed or missing", id,
		)
	}

	return nil
}

func (r *ledgerRepository) List(ctx context.Context, sku string) ([]*CheckoutRecord, error) {
	log := r.log.Function("List")

	query := r.getDB(ctx).Model(&CheckoutRecord{}).Order("checkout_date DESC")
	if sku != "" {
		query = query.Where("sku = ?", sku)
	}

	var records []*CheckoutRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, log.Err("failed to list checkout records", err, "sku", sku)
	}

	return records, nil
}

func (r *ledgerRepository) ListInRange(
	ctx context.Context,
	start, end time.Time,
) ([]*CheckoutRecord, error) {
	log := r.log.Function("ListInRange")

	var records []*CheckoutRecord
	err := r.getDB(ctx).
		Where("checkout_date >= ? AND checkout_date <= ?", start, end).
		Order("checkout_date DESC").
		Find(&records).Error
	if err != nil {
		return nil, log.Err("failed to list checkout records in range", err)
	}

	return records, nil
}

func (r *ledgerRepository) ListClosedInRange(
	ctx context.Context,
	start, end time.Time,
) ([]*CheckoutRecord, error) {
	log := r.log.Function("ListClosedInRange")

	var records []*CheckoutRecord
	err := r.getDB(ctx).
		Where("checkout_date >= ? AND checkout_date <= ? AND return_date IS NOT NULL", start, end).
		Order("checkout_date DESC").
		Find(&records).Error
	if err != nil {
		return nil, log.Err("failed to list closed checkout records", err)
	}

	return records, nil
}
