package controllers

import (
	"labstock/config"
	"labstock/internal/database"
	"labstock/internal/events"
	"labstock/internal/repositories"
	"labstock/internal/services"

	authController "labstock/internal/controllers/auth"
	equipmentController "labstock/internal/controllers/equipment"
	reportController "labstock/internal/controllers/reports"
	userController "labstock/internal/controllers/users"
)

type Controllers struct {
	Auth      authController.AuthControllerInterface
	Equipment equipmentController.EquipmentControllerInterface
	Report    reportController.ReportControllerInterface
	User      userController.UserControllerInterface
}

func New(
	services services.Service,
	repos repositories.Repository,
	eventBus *events.EventBus,
	config config.Config,
	db database.DB,
) Controllers {
	return Controllers{
		Auth:      authController.New(services, repos, config, db),
		Equipment: equipmentController.New(repos, services, eventBus, config, db),
		Report:    reportController.New(repos, config, db),
		User:      userController.New(repos, services, eventBus, config, db),
	}
}
