package userController

import (
	"context"
	"testing"
	"time"

	"labstock/config"
	"labstock/internal/apperrors"
	"labstock/internal/database"
	. "labstock/internal/models"
	"labstock/internal/repositories"
	"labstock/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTest(t *testing.T) (database.DB, repositories.Repository, UserControllerInterface) {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gormDB.AutoMigrate(&User{}, &Equipment{}, &CheckoutRecord{}))

	db := database.DB{SQL: gormDB}
	repos := repositories.New(db)

	cfg := config.Config{
		ServerPort:          8080,
		JWTSecret:           "test-secret",
		DefaultCheckoutDays: 14,
	}

	svcs, err := services.New(db, cfg, repos)
	require.NoError(t, err)

	controller := New(repos, svcs, nil, cfg, db)

	return db, repos, controller
}

func seedUser(t *testing.T, db database.DB, username string, role Role) *User {
	t.Helper()

	user := &User{
		Username: username,
		Email:    username + "@example.com",
		Password: HashPassword("password"),
		Role:     role,
		Name:     username,
	}
	require.NoError(t, db.SQL.Create(user).Error)

	return user
}

func seedCheckedOut(t *testing.T, db database.DB, sku, holder string) {
	t.Helper()

	now := time.Now()
	due := now.AddDate(0, 0, 14)
	equipment := &Equipment{
		SKU:          sku,
		Name:         "Item " + sku,
		Status:       StatusCheckedOut,
		CheckedOutBy: &holder,
		CheckoutDate: &now,
		DueDate:      &due,
	}
	require.NoError(t, db.SQL.Create(equipment).Error)

	record := &CheckoutRecord{
		SKU:           sku,
		EquipmentName: equipment.Name,
		User:          holder,
		CheckoutDate:  now,
		DueDate:       due,
		Notes:         "seeded checkout",
	}
	require.NoError(t, db.SQL.Create(record).Error)
}

func TestCreate_Validation(t *testing.T) {
	_, _, controller := setupTest(t)
	ctx := context.Background()

	_, err := controller.Create(ctx, &CreateUserRequest{Password: "secret"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = controller.Create(ctx, &CreateUserRequest{Username: "jdoe"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = controller.Create(ctx, &CreateUserRequest{
		Username: "jdoe",
		Password: "secret",
		Role:     Role("superuser"),
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCreate_DefaultsAndDuplicate(t *testing.T) {
	_, repos, controller := setupTest(t)
	ctx := context.Background()

	profile, err := controller.Create(ctx, &CreateUserRequest{
		Username:   "jdoe",
		Password:   "secret",
		Email:      "jdoe@example.com",
		Name:       "Jane Doe",
		Department: "Chemistry",
	})
	require.NoError(t, err)
	assert.Equal(t, RoleUser, profile.Role)

	stored, err := repos.User.GetByUsername(ctx, "jdoe")
	require.NoError(t, err)
	assert.True(t, stored.CheckPassword("secret"))
	assert.NotEqual(t, "secret", stored.Password)

	_, err = controller.Create(ctx, &CreateUserRequest{
		Username: "jdoe",
		Password: "other",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestDelete_CascadesOverHoldings(t *testing.T) {
	db, repos, controller := setupTest(t)
	ctx := context.Background()

	seedUser(t, db, "admin", RoleAdmin)
	seedUser(t, db, "jdoe", RoleUser)
	seedCheckedOut(t, db, "LAB-00001", "jdoe")
	seedCheckedOut(t, db, "LAB-00002", "jdoe")

	require.NoError(t, controller.Delete(ctx, "jdoe"))

	_, err := repos.User.GetByUsername(ctx, "jdoe")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	for _, sku := range []string{"LAB-00001", "LAB-00002"} {
		equipment, err := repos.Equipment.GetBySKU(ctx, sku)
		require.NoError(t, err)
		assert.Equal(t, StatusInStock, equipment.Status)
		assert.Nil(t, equipment.CheckedOutBy)
		assert.Nil(t, equipment.CheckoutDate)
		assert.Nil(t, equipment.DueDate)

		open, anomaly, err := repos.Ledger.FindOpen(ctx, sku)
		require.NoError(t, err)
		assert.Nil(t, anomaly)
		assert.Nil(t, open)

		records, err := repos.Ledger.List(ctx, sku)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.NotNil(t, records[0].ReturnDate)
		assert.Contains(t, records[0].Notes, "seeded checkout")
		assert.Contains(t, records[0].Notes, "user jdoe was deleted")
	}
}

func TestDelete_UserWithoutHoldings(t *testing.T) {
	db, repos, controller := setupTest(t)
	ctx := context.Background()

	seedUser(t, db, "jdoe", RoleUser)

	require.NoError(t, controller.Delete(ctx, "jdoe"))

	_, err := repos.User.GetByUsername(ctx, "jdoe")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDelete_UnknownUser(t *testing.T) {
	_, _, controller := setupTest(t)

	err := controller.Delete(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDelete_LastAdminProtected(t *testing.T) {
	db, repos, controller := setupTest(t)
	ctx := context.Background()

	seedUser(t, db, "admin", RoleAdmin)

	err := controller.Delete(ctx, "admin")
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	// A second admin makes the first deletable.
	seedUser(t, db, "admin2", RoleAdmin)
	require.NoError(t, controller.Delete(ctx, "admin"))

	_, err = repos.User.GetByUsername(ctx, "admin2")
	require.NoError(t, err)
}

func TestList_ReturnsProfilesWithoutPasswords(t *testing.T) {
	db, _, controller := setupTest(t)
	ctx := context.Background()

	seedUser(t, db, "admin", RoleAdmin)
	seedUser(t, db, "jdoe", RoleUser)

	profiles, err := controller.List(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "admin", profiles[0].Username)
	assert.Equal(t, "jdoe", profiles[1].Username)
}
