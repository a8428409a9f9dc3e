package repositories

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"labstock/internal/apperrors"
	contextutil "labstock/internal/context"
	"labstock/internal/database"
	. "labstock/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EquipmentRepository is the equipment store: a pure keyed record set.
// Business validation lives in the lifecycle engine, never here.
type EquipmentRepository interface {
	GetBySKU(ctx context.Context, sku string) (*Equipment, error)
	// GetBySKUForUpdate locks the row for the duration of the enclosing
	// transaction (SELECT ... FOR UPDATE).
	GetBySKUForUpdate(ctx context.Context, sku string) (*Equipment, error)
	List(ctx context.Context) ([]*Equipment, error)
	ListCheckedOutBy(ctx context.Context, username string) ([]*Equipment, error)
	ListOverdue(ctx context.Context, today time.Time) ([]*Equipment, error)
	MaxSKUSuffix(ctx context.Context) (int, error)
	Upsert(ctx context.Context, equipment *Equipment) error
	Delete(ctx context.Context, sku string) error
}

type equipmentRepository struct {
	db  database.DB
	log logger.Logger
}

func NewEquipmentRepository(db database.DB) EquipmentRepository {
	return &equipmentRepository{
		db:  db,
		log: logger.New("equipmentRepository"),
	}
}

func (r *equipmentRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextutil.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

// lockForUpdate adds row locking on dialects that support it. SQLite,
// used by the test suite, serializes writers on its own.
func lockForUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "postgres" {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

func (r *equipmentRepository) GetBySKU(ctx context.Context, sku string) (*Equipment, error) {
	log := r.log.Function("GetBySKU")

	var equipment Equipment
	if err := r.getDB(ctx).First(&equipment, "sku = ?", sku).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "no equipment with SKU %s", sku)
		}
		return nil, log.Err("failed to get equipment by SKU", err, "sku", sku)
	}

	return &equipment, nil
}

func (r *equipmentRepository) GetBySKUForUpdate(
	ctx context.Context,
	sku string,
) (*Equipment, error) {
	log := r.log.Function("GetBySKUForUpdate")

	var equipment Equipment
	err := lockForUpdate(r.getDB(ctx)).
		First(&equipment, "sku = ?", sku).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "no equipment with SKU %s", sku)
		}
		return nil, log.Err("failed to lock equipment row", err, "sku", sku)
	}

	return &equipment, nil
}

func (r *equipmentRepository) List(ctx context.Context) ([]*Equipment, error) {
	log := r.log.Function("List")

	var equipment []*Equipment
	if err := r.getDB(ctx).Order("created_at DESC").Find(&equipment).Error; err != nil {
		return nil, log.Err("failed to list equipment", err)
	}

	return equipment, nil
}

func (r *equipmentRepository) ListCheckedOutBy(
	ctx context.Context,
	username string,
) ([]*Equipment, error) {
	log := r.log.Function("ListCheckedOutBy")

	var equipment []*Equipment
	err := lockForUpdate(r.getDB(ctx)).
		Where("checked_out_by = ?", username).
		Find(&equipment).Error
	if err != nil {
		return nil, log.Err("failed to list equipment by holder", err, "username", username)
	}

	return equipment, nil
}

func (r *equipmentRepository) ListOverdue(
	ctx context.Context,
	today time.Time,
) ([]*Equipment, error) {
	log := r.log.Function("ListOverdue")

	var equipment []*Equipment
	err := r.getDB(ctx).
		Where("status = ? AND due_date < ?", StatusCheckedOut, today).
		Order("due_date ASC").
		Find(&equipment).Error
	if err != nil {
		return nil, log.Err("failed to list overdue equipment", err)
	}

	return equipment, nil
}

// MaxSKUSuffix returns the numeric suffix of the highest assigned LAB SKU,
// or zero when none exist. Lexicographic ordering matches numeric ordering
// because suffixes are zero-padded.
func (r *equipmentRepository) MaxSKUSuffix(ctx context.Context) (int, error) {
	log := r.log.Function("MaxSKUSuffix")

	var sku string
	err := r.getDB(ctx).
		Model(&Equipment{}).
		Select("sku").
		Where("sku LIKE ?", "LAB-%").
		Order("sku DESC").
		Limit(1).
		Scan(&sku).Error
	if err != nil {
		return 0, log.Err("failed to query max SKU", err)
	}

	if sku == "" {
		return 0, nil
	}

	suffix, err := strconv.Atoi(strings.TrimPrefix(sku, "LAB-"))
	if err != nil {
		return 0, log.Err("failed to parse SKU suffix", err, "sku", sku)
	}

	return suffix, nil
}

func (r *equipmentRepository) Upsert(ctx context.Context, equipment *Equipment) error {
	log := r.log.Function("Upsert")

	err := r.getDB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sku"}},
			UpdateAll: true,
		}).
		Create(equipment).Error
	if err != nil {
		return log.Err("failed to upsert equipment", err, "sku", equipment.SKU)
	}

	return nil
}

func (r *equipmentRepository) Delete(ctx context.Context, sku string) error {
	log := r.log.Function("Delete")

	result := r.getDB(ctx).Delete(&Equipment{}, "sku = ?", sku)
	if result.Error != nil {
		return log.Err("failed to delete equipment", result.Error, "sku", sku)
	}

	if result.RowsAffected == 0 {
		return apperrors.Wrap(apperrors.ErrNotFound, "no equipment with SKU %s", sku)
	}

	return nil
}
