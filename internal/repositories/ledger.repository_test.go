package repositories

import (
	"context"
	"testing"
	"time"

	"labstock/internal/apperrors"
	"labstock/internal/database"
	. "labstock/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRepoTest(t *testing.T) (database.DB, Repository) {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gormDB.AutoMigrate(&User{}, &Equipment{}, &CheckoutRecord{}))

	db := database.DB{SQL: gormDB}

	return db, New(db)
}

func newRecord(sku, user string, checkout time.Time) *CheckoutRecord {
	return &CheckoutRecord{
		SKU:           sku,
		EquipmentName: "Microscope",
		User:          user,
		CheckoutDate:  checkout,
		DueDate:       checkout.AddDate(0, 0, 14),
	}
}

func TestLedger_AppendAndFindOpen(t *testing.T) {
	_, repos := setupRepoTest(t)
	ctx := context.Background()

	open, anomaly, err := repos.Ledger.FindOpen(ctx, "LAB-00001")
	require.NoError(t, err)
	assert.Nil(t, open)
	assert.Nil(t, anomaly)

	record := newRecord("LAB-00001", "jdoe", time.Now())
	require.NoError(t, repos.Ledger.Append(ctx, record))

	open, anomaly, err = repos.Ledger.FindOpen(ctx, "LAB-00001")
	require.NoError(t, err)
	assert.Nil(t, anomaly)
	require.NotNil(t, open)
	assert.Equal(t, record.ID, open.ID)
	assert.True(t, open.IsOpen())
}

func TestLedger_CloseIsIdempotentGuarded(t *testing.T) {
	_, repos := setupRepoTest(t)
	ctx := context.Background()

	record := newRecord("LAB-00001", "jdoe", time.Now())
	require.NoError(t, repos.Ledger.Append(ctx, record))

	require.NoError(t, repos.Ledger.Close(ctx, record.ID, time.Now(), "returned"))

	// A closed record can never be closed again.
	err := repos.Ledger.Close(ctx, record.ID, time.Now(), "returned twice")
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	// Nor can a record that does not exist.
	err = repos.Ledger.Close(ctx, 9999, time.Now(), "ghost")
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	records, err := repos.Ledger.List(ctx, "LAB-00001")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "returned", records[0].Notes)
}

func TestLedger_FindOpenReportsAnomalyOnMultipleOpens(t *testing.T) {
	db, repos := setupRepoTest(t)
	ctx := context.Background()

	first := newRecord("LAB-00001", "jdoe", time.Now().AddDate(0, 0, -10))
	second := newRecord("LAB-00001", "asmith", time.Now())
	require.NoError(t, db.SQL.Create(first).Error)
	require.NoError(t, db.SQL.Create(second).Error)

	open, anomaly, err := repos.Ledger.FindOpen(ctx, "LAB-00001")
	require.NoError(t, err)
	require.NotNil(t, anomaly)
	assert.Equal(t, "LAB-00001", anomaly.SKU)
	require.NotNil(t, open)
	assert.Equal(t, second.ID, open.ID)
}

func TestLedger_ListFiltersAndOrders(t *testing.T) {
	_, repos := setupRepoTest(t)
	ctx := context.Background()

	older := newRecord("LAB-00001", "jdoe", time.Now().AddDate(0, 0, -5))
	newer := newRecord("LAB-00001", "jdoe", time.Now())
	other := newRecord("LAB-00002", "asmith", time.Now())
	require.NoError(t, repos.Ledger.Append(ctx, older))
	require.NoError(t, repos.Ledger.Append(ctx, newer))
	require.NoError(t, repos.Ledger.Append(ctx, other))

	records, err := repos.Ledger.List(ctx, "LAB-00001")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, newer.ID, records[0].ID)
	assert.Equal(t, older.ID, records[1].ID)

	all, err := repos.Ledger.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestLedger_ListClosedInRange(t *testing.T) {
	_, repos := setupRepoTest(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	closed := newRecord("LAB-00001", "jdoe", base.AddDate(0, 0, 3))
	stillOpen := newRecord("LAB-00001", "jdoe", base.AddDate(0, 0, 12))
	require.NoError(t, repos.Ledger.Append(ctx, closed))
	require.NoError(t, repos.Ledger.Append(ctx, stillOpen))
	require.NoError(t, repos.Ledger.Close(ctx, closed.ID, base.AddDate(0, 0, 6), "done"))

	records, err := repos.Ledger.ListClosedInRange(ctx, base, base.AddDate(0, 1, 0))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, closed.ID, records[0].ID)
}

func TestEquipment_MaxSKUSuffix(t *testing.T) {
	db, repos := setupRepoTest(t)
	ctx := context.Background()

	suffix, err := repos.Equipment.MaxSKUSuffix(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, suffix)

	for _, sku := range []string{"LAB-00003", "LAB-00017", "LAB-00009"} {
		require.NoError(t, db.SQL.Create(&Equipment{
			SKU: sku, Name: "Item", Status: StatusInStock,
		}).Error)
	}
	// Non-generated identifiers are ignored by the counter.
	require.NoError(t, db.SQL.Create(&Equipment{
		SKU: "LEGACY-7", Name: "Old Item", Status: StatusInStock,
	}).Error)

	suffix, err = repos.Equipment.MaxSKUSuffix(ctx)
	require.NoError(t, err)
	assert.Equal(t, 17, suffix)
}

func TestEquipment_UpsertAndDelete(t *testing.T) {
	_, repos := setupRepoTest(t)
	ctx := context.Background()

	equipment := &Equipment{SKU: "LAB-00001", Name: "Microscope", Status: StatusInStock}
	require.NoError(t, repos.Equipment.Upsert(ctx, equipment))

	equipment.Location = "Shelf A1"
	require.NoError(t, repos.Equipment.Upsert(ctx, equipment))

	stored, err := repos.Equipment.GetBySKU(ctx, "LAB-00001")
	require.NoError(t, err)
	assert.Equal(t, "Shelf A1", stored.Location)

	require.NoError(t, repos.Equipment.Delete(ctx, "LAB-00001"))

	err = repos.Equipment.Delete(ctx, "LAB-00001")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = repos.Equipment.GetBySKU(ctx, "LAB-00001")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
