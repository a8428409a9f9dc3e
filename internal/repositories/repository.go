package repositories

import (
	"labstock/internal/database"
)

type Repository struct {
	Equipment EquipmentRepository
	Ledger    LedgerRepository
	User      UserRepository
}

func New(db database.DB) Repository {
	return Repository{
		Equipment: NewEquipmentRepository(db),
		Ledger:    NewLedgerRepository(db),
		User:      NewUserRepository(db),
	}
}
