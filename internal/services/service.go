package services

import (
	"labstock/config"
	"labstock/internal/database"
	"labstock/internal/repositories"
)

type Service struct {
	Transaction *TransactionService
	Lock        *LockService
	SKU         *SKUService
	Token       *TokenService
	Scheduler   *SchedulerService
}

func New(db database.DB, config config.Config, repos repositories.Repository) (Service, error) {
	return Service{
		Transaction: NewTransactionService(db),
		Lock:        NewLockService(),
		SKU:         NewSKUService(repos.Equipment),
		Token:       NewTokenService(config),
		Scheduler:   NewSchedulerService(),
	}, nil
}
