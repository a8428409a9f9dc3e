package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEquipmentStatus_IsValid(t *testing.T) {
	for _, status := range ValidStatuses {
		assert.True(t, status.IsValid(), string(status))
	}
	assert.False(t, EquipmentStatus("Broken").IsValid())
	assert.False(t, EquipmentStatus("").IsValid())
}

func TestReturnCondition_ResolveStatus(t *testing.T) {
	assert.Equal(t, StatusInStock, ConditionGood.ResolveStatus())
	assert.Equal(t, StatusMaintenance, ConditionNeedsMaintenance.ResolveStatus())
	assert.Equal(t, StatusInStock, ConditionDamaged.ResolveStatus())
}

func TestEquipment_CheckoutFieldGroup(t *testing.T) {
	equipment := &Equipment{SKU: "LAB-00001", Name: "Microscope", Status: StatusInStock}
	assert.False(t, equipment.IsCheckedOut())

	now := time.Now()
	due := now.AddDate(0, 0, 14)
	equipment.MarkCheckedOut("jdoe", now, due)

	assert.True(t, equipment.IsCheckedOut())
	assert.Equal(t, "jdoe", *equipment.CheckedOutBy)
	assert.Equal(t, now, *equipment.CheckoutDate)
	assert.Equal(t, due, *equipment.DueDate)

	equipment.ClearCheckout(StatusMaintenance)

	assert.Equal(t, StatusMaintenance, equipment.Status)
	assert.Nil(t, equipment.CheckedOutBy)
	assert.Nil(t, equipment.CheckoutDate)
	assert.Nil(t, equipment.DueDate)
}

func TestCheckoutRecord_AppendReturnNotes(t *testing.T) {
	record := &CheckoutRecord{Notes: "field trip"}
	notes := record.AppendReturnNotes(ConditionDamaged, "lens cracked")
	assert.Equal(t,
		"field trip\nReturn Condition: Damaged\nReturn Notes: lens cracked",
		notes)

	empty := &CheckoutRecord{}
	notes = empty.AppendReturnNotes(ConditionGood, "")
	assert.Equal(t, "Return Condition: Good\nReturn Notes:", notes)
}

func TestRole_Permissions(t *testing.T) {
	assert.True(t, RoleAdmin.CanWrite())
	assert.True(t, RoleUser.CanWrite())
	assert.False(t, RoleReadonly.CanWrite())

	assert.True(t, RoleAdmin.IsValid())
	assert.False(t, Role("root").IsValid())
}

func TestUser_PasswordHashing(t *testing.T) {
	user := &User{Password: HashPassword("hunter2")}

	assert.True(t, user.CheckPassword("hunter2"))
	assert.False(t, user.CheckPassword("hunter3"))
	assert.Len(t, user.Password, 64)
}
