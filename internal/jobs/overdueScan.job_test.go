package jobs

import (
	"context"
	"testing"
	"time"

	"labstock/config"
	"labstock/internal/database"
	"labstock/internal/events"
	. "labstock/internal/models"
	"labstock/internal/repositories"
	"labstock/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupJobTest(t *testing.T) (database.DB, repositories.Repository, *events.EventBus) {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gormDB.AutoMigrate(&User{}, &Equipment{}, &CheckoutRecord{}))

	db := database.DB{SQL: gormDB}

	return db, repositories.New(db), events.New(nil, config.Config{})
}

func TestOverdueScanJob_PublishesOverdueEvents(t *testing.T) {
	db, repos, eventBus := setupJobTest(t)

	holder := "jdoe"
	pastDue := time.Now().AddDate(0, 0, -3)
	futureDue := time.Now().AddDate(0, 0, 3)
	checkout := time.Now().AddDate(0, 0, -17)

	require.NoError(t, db.SQL.Create(&Equipment{
		SKU: "LAB-00001", Name: "Microscope", Status: StatusCheckedOut,
		CheckedOutBy: &holder, CheckoutDate: &checkout, DueDate: &pastDue,
	}).Error)
	require.NoError(t, db.SQL.Create(&Equipment{
		SKU: "LAB-00002", Name: "Balance", Status: StatusCheckedOut,
		CheckedOutBy: &holder, CheckoutDate: &checkout, DueDate: &futureDue,
	}).Error)

	received := make(chan events.Event, 8)
	require.NoError(t, eventBus.Subscribe(events.EQUIPMENT_CHANNEL, func(event events.Event) error {
		received <- event
		return nil
	}))

	job := NewOverdueScanJob(repos, eventBus)
	assert.Equal(t, "overdue-scan", job.Name())
	assert.Equal(t, services.Daily, job.Schedule())

	require.NoError(t, job.Execute(context.Background()))

	select {
	case event := <-received:
		assert.Equal(t, events.OVERDUE, event.Type)
		assert.Equal(t, "LAB-00001", event.SKU)
		assert.Equal(t, "jdoe", event.Username)
		assert.EqualValues(t, 3, event.Data["daysOverdue"])
	case <-time.After(2 * time.Second):
		t.Fatal("expected an overdue event")
	}

	select {
	case event := <-received:
		t.Fatalf("unexpected extra event for %s", event.SKU)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestOverdueScanJob_NoOverdueEquipment(t *testing.T) {
	_, repos, eventBus := setupJobTest(t)

	received := make(chan events.Event, 1)
	require.NoError(t, eventBus.Subscribe(events.EQUIPMENT_CHANNEL, func(event events.Event) error {
		received <- event
		return nil
	}))

	job := NewOverdueScanJob(repos, eventBus)
	require.NoError(t, job.Execute(context.Background()))

	select {
	case <-received:
		t.Fatal("no events expected")
	case <-time.After(100 * time.Millisecond):
	}
}
