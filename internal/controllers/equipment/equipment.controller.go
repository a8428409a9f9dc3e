package equipmentController

import (
	"context"
	"time"

	"labstock/config"
	"labstock/internal/apperrors"
	reportController "labstock/internal/controllers/reports"
	"labstock/internal/database"
	"labstock/internal/events"
	. "labstock/internal/models"
	"labstock/internal/repositories"
	"labstock/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	minCheckoutDays = 1
	maxCheckoutDays = 180
)

// Note written onto a ledger record closed by the engine rather than by a
// real return, when a stale open record is found for in-stock equipment.
const staleRecordNote = "Closed automatically: open record found for in-stock equipment"

type EquipmentController struct {
	equipmentRepo      repositories.EquipmentRepository
	ledgerRepo         repositories.LedgerRepository
	userRepo           repositories.UserRepository
	transactionService *services.TransactionService
	lockService        *services.LockService
	skuService         *services.SKUService
	eventBus           *events.EventBus
	db                 database.DB
	Config             config.Config
	log                logger.Logger
}

type IntakeRequest struct {
	Name          string            `json:"name"                    validate:"required"`
	Description   string            `json:"description,omitempty"`
	Category      string            `json:"category,omitempty"`
	Manufacturer  string            `json:"manufacturer,omitempty"`
	Model         string            `json:"model,omitempty"`
	SerialNumber  string            `json:"serialNumber,omitempty"`
	PurchaseDate  *datatypes.Date   `json:"purchaseDate,omitempty"`
	PurchasePrice *decimal.Decimal  `json:"purchasePrice,omitempty"`
	Location      string            `json:"location,omitempty"`
	ImagePath     *string           `json:"imagePath,omitempty"`
	Status        *EquipmentStatus  `json:"status,omitempty"`
}

type EditRequest struct {
	Name          *string           `json:"name,omitempty"`
	Description   *string           `json:"description,omitempty"`
	Category      *string           `json:"category,omitempty"`
	Manufacturer  *string           `json:"manufacturer,omitempty"`
	Model         *string           `json:"model,omitempty"`
	SerialNumber  *string           `json:"serialNumber,omitempty"`
	PurchaseDate  *datatypes.Date   `json:"purchaseDate,omitempty"`
	PurchasePrice *decimal.Decimal  `json:"purchasePrice,omitempty"`
	Location      *string           `json:"location,omitempty"`
	ImagePath     *string           `json:"imagePath,omitempty"`
	Status        *EquipmentStatus  `json:"status,omitempty"`
}

type CheckoutRequest struct {
	SKU          string `json:"sku"          validate:"required"`
	ForUser      string `json:"forUser,omitempty"`
	DurationDays *int   `json:"durationDays,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

type ReturnRequest struct {
	SKU       string          `json:"sku"       validate:"required"`
	Condition ReturnCondition `json:"condition" validate:"required"`
	Notes     string          `json:"notes,omitempty"`
}

type EquipmentControllerInterface interface {
	List(ctx context.Context) ([]*Equipment, error)
	Get(ctx context.Context, sku string) (*Equipment, error)
	History(ctx context.Context, sku string) ([]*CheckoutRecord, error)
	Intake(ctx context.Context, request *IntakeRequest) (*Equipment, error)
	Edit(ctx context.Context, sku string, request *EditRequest) (*Equipment, error)
	Delete(ctx context.Context, sku string) error
	Checkout(ctx context.Context, actor *User, request *CheckoutRequest) (*Equipment, error)
	Return(ctx context.Context, request *ReturnRequest) (*Equipment, error)
}

func New(
	repos repositories.Repository,
	services services.Service,
	eventBus *events.EventBus,
	config config.Config,
	db database.DB,
) EquipmentControllerInterface {
	return &EquipmentController{
		equipmentRepo:      repos.Equipment,
		ledgerRepo:         repos.Ledger,
		userRepo:           repos.User,
		transactionService: services.Transaction,
		lockService:        services.Lock,
		skuService:         services.SKU,
		eventBus:           eventBus,
		db:                 db,
		Config:             config,
		log:                logger.New("equipmentController"),
	}
}

func (c *EquipmentController) List(ctx context.Context) ([]*Equipment, error) {
	log := c.log.Function("List")

	equipment, err := c.equipmentRepo.List(ctx)
	if err != nil {
		return nil, log.Err("failed to list equipment", err)
	}

	return equipment, nil
}

func (c *EquipmentController) Get(ctx context.Context, sku string) (*Equipment, error) {
	return c.equipmentRepo.GetBySKU(ctx, sku)
}

func (c *EquipmentController) History(ctx context.Context, sku string) ([]*CheckoutRecord, error) {
	if _, err := c.equipmentRepo.GetBySKU(ctx, sku); err != nil {
		return nil, err
	}

	return c.ledgerRepo.List(ctx, sku)
}

func (c *EquipmentController) Intake(
	ctx context.Context,
	request *IntakeRequest,
) (*Equipment, error) {
	log := c.log.Function("Intake")

	if request.Name == "" {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "name is required")
	}

	status := StatusInStock
	if request.Status != nil {
		status = *request.Status
		if !status.IsValid() {
			return nil, apperrors.Wrap(apperrors.ErrValidation, "invalid status %s", status)
		}
		if status == StatusCheckedOut {
			return nil, apperrors.Wrap(
				apperrors.ErrValidation,
				"equipment cannot be created in checked-out state",
			)
		}
	}

	var equipment *Equipment
	err := c.transactionService.Execute(ctx, func(txCtx context.Context) error {
		sku, err := c.skuService.NextSKU(txCtx)
		if err != nil {
			return err
		}

		equipment = &Equipment{
			SKU:           sku,
			Name:          request.Name,
			Description:   request.Description,
			Category:      request.Category,
			Manufacturer:  request.Manufacturer,
			Model:         request.Model,
			SerialNumber:  request.SerialNumber,
			PurchaseDate:  request.PurchaseDate,
			PurchasePrice: request.PurchasePrice,
			Status:        status,
			Location:      request.Location,
			ImagePath:     request.ImagePath,
		}

		return c.equipmentRepo.Upsert(txCtx, equipment)
	})
	if err != nil {
		return nil, err
	}

	log.Info("equipment intake complete", "sku", equipment.SKU, "name", equipment.Name)
	c.publish(events.INTAKE, equipment.SKU, "", nil)
	c.invalidateReportCaches()

	return equipment, nil
}

// Checkout moves in-stock equipment to a named holder and appends the
// matching ledger record. The store update and ledger append commit
// together or not at all; concurrent checkouts of the same SKU are
// serialized so exactly one wins.
func (c *EquipmentController) Checkout(
	ctx context.Context,
	actor *User,
	request *CheckoutRequest,
) (*Equipment, error) {
	log := c.log.Function("Checkout")

	forUser := request.ForUser
	if forUser == "" {
		forUser = actor.Username
	}

	if actor.Role != RoleAdmin && forUser != actor.Username {
		return nil, apperrors.Wrap(
			apperrors.ErrValidation,
			"only admins may check out equipment for another user",
		)
	}

	duration := c.Config.DefaultCheckoutDays
	if request.DurationDays != nil {
		duration = *request.DurationDays
	}
	if duration < minCheckoutDays || duration > maxCheckoutDays {
		return nil, apperrors.Wrap(
			apperrors.ErrValidation,
			"checkout duration must be between %d and %d days, got %d",
			minCheckoutDays, maxCheckoutDays, duration,
		)
	}

	release, err := c.lockService.Acquire(ctx, request.SKU)
	if err != nil {
		return nil, err
	}
	defer release()

	var equipment *Equipment
	var anomaly *apperrors.IntegrityAnomaly

	err = c.transactionService.Execute(ctx, func(txCtx context.Context) error {
		equipment, err = c.equipmentRepo.GetBySKUForUpdate(txCtx, request.SKU)
		if err != nil {
			return err
		}

		if equipment.Status != StatusInStock {
			return apperrors.Wrap(
				apperrors.ErrInvalidState,
				"%s is not available for checkout (status: %s)",
				equipment.SKU, equipment.Status,
			)
		}

		if _, err = c.userRepo.GetByUsername(txCtx, forUser); err != nil {
			return err
		}

		// In-stock equipment must have no open ledger record. If one
		// survived a past failure, close it before opening the new one so
		// the one-open-record rule holds.
		open, found, err := c.ledgerRepo.FindOpen(txCtx, request.SKU)
		if err != nil {
			return err
		}
		if found != nil {
			anomaly = found
		}
		if open != nil {
			if anomaly == nil {
				anomaly = &apperrors.IntegrityAnomaly{
					SKU:    request.SKU,
					Detail: "open ledger record for in-stock equipment",
				}
			}
			log.Warn("closing stale open ledger record",
				"sku", request.SKU,
				"recordID", open.ID,
			)
			notes := open.AppendReturnNotes(ConditionGood, staleRecordNote)
			if err := c.ledgerRepo.Close(txCtx, open.ID, time.Now(), notes); err != nil {
				return err
			}
		}

		now := time.Now()
		dueDate := now.AddDate(0, 0, duration)
		equipment.MarkCheckedOut(forUser, now, dueDate)

		if err := c.equipmentRepo.Upsert(txCtx, equipment); err != nil {
			return err
		}

		return c.ledgerRepo.Append(txCtx, &CheckoutRecord{
			SKU:           equipment.SKU,
			EquipmentName: equipment.Name,
			User:          forUser,
			CheckoutDate:  now,
			DueDate:       dueDate,
			Notes:         request.Notes,
		})
	})
	if err != nil {
		return nil, err
	}

	if anomaly != nil {
		c.publishAnomaly(anomaly)
	}

	log.Info("equipment checked out", "sku", equipment.SKU, "user", forUser)
	c.publish(events.CHECKOUT, equipment.SKU, forUser, map[string]any{
		"dueDate": equipment.DueDate,
	})
	c.invalidateReportCaches()

	return equipment, nil
}

// Return closes the checkout: the item's next status follows from its
// return condition, and the open ledger record is stamped with the return
// date and annotated notes. A missing open record is reported as an
// anomaly but never blocks the return itself.
func (c *EquipmentController) Return(
	ctx context.Context,
	request *ReturnRequest,
) (*Equipment, error) {
	log := c.log.Function("Return")

	if !request.Condition.IsValid() {
		return nil, apperrors.Wrap(
			apperrors.ErrValidation,
			"invalid return condition %s", request.Condition,
		)
	}

	release, err := c.lockService.Acquire(ctx, request.SKU)
	if err != nil {
		return nil, err
	}
	defer release()

	var equipment *Equipment
	var anomaly *apperrors.IntegrityAnomaly
	var returnedBy string

	err = c.transactionService.Execute(ctx, func(txCtx context.Context) error {
		equipment, err = c.equipmentRepo.GetBySKUForUpdate(txCtx, request.SKU)
		if err != nil {
			return err
		}

		if !equipment.IsCheckedOut() {
			return apperrors.Wrap(
				apperrors.ErrInvalidState,
				"%s is not checked out (status: %s)",
				equipment.SKU, equipment.Status,
			)
		}

		if equipment.CheckedOutBy != nil {
			returnedBy = *equipment.CheckedOutBy
		}

		open, found, err := c.ledgerRepo.FindOpen(txCtx, request.SKU)
		if err != nil {
			return err
		}
		if found != nil {
			anomaly = found
		}

		equipment.ClearCheckout(request.Condition.ResolveStatus())
		if err := c.equipmentRepo.Upsert(txCtx, equipment); err != nil {
			return err
		}

		if open == nil {
			anomaly = &apperrors.IntegrityAnomaly{
				SKU:    request.SKU,
				Detail: "no open ledger record for checked-out equipment",
			}
			log.Warn("returning equipment with no open ledger record", "sku", request.SKU)
			return nil
		}

		notes := open.AppendReturnNotes(request.Condition, request.Notes)
		return c.ledgerRepo.Close(txCtx, open.ID, time.Now(), notes)
	})
	if err != nil {
		return nil, err
	}

	if anomaly != nil {
		c.publishAnomaly(anomaly)
	}

	log.Info("equipment returned",
		"sku", equipment.SKU,
		"condition", request.Condition,
		"newStatus", equipment.Status,
	)
	c.publish(events.RETURN, equipment.SKU, returnedBy, map[string]any{
		"condition": request.Condition,
		"newStatus": equipment.Status,
	})
	c.invalidateReportCaches()

	return equipment, nil
}

// Edit updates descriptive fields. Status is special: while equipment is
// checked out its status belongs to the lifecycle engine, so a submitted
// status is silently retained rather than applied.
func (c *EquipmentController) Edit(
	ctx context.Context,
	sku string,
	request *EditRequest,
) (*Equipment, error) {
	log := c.log.Function("Edit")

	release, err := c.lockService.Acquire(ctx, sku)
	if err != nil {
		return nil, err
	}
	defer release()

	var equipment *Equipment
	err = c.transactionService.Execute(ctx, func(txCtx context.Context) error {
		equipment, err = c.equipmentRepo.GetBySKUForUpdate(txCtx, sku)
		if err != nil {
			return err
		}

		if request.Name != nil {
			if *request.Name == "" {
				return apperrors.Wrap(apperrors.ErrValidation, "name cannot be empty")
			}
			equipment.Name = *request.Name
		}
		if request.Description != nil {
			equipment.Description = *request.Description
		}
		if request.Category != nil {
			equipment.Category = *request.Category
		}
		if request.Manufacturer != nil {
			equipment.Manufacturer = *request.Manufacturer
		}
		if request.Model != nil {
			equipment.Model = *request.Model
		}
		if request.SerialNumber != nil {
			equipment.SerialNumber = *request.SerialNumber
		}
		if request.PurchaseDate != nil {
			equipment.PurchaseDate = request.PurchaseDate
		}
		if request.PurchasePrice != nil {
			equipment.PurchasePrice = request.PurchasePrice
		}
		if request.Location != nil {
			equipment.Location = *request.Location
		}
		if request.ImagePath != nil {
			equipment.ImagePath = request.ImagePath
		}

		if request.Status != nil && !equipment.IsCheckedOut() {
			if !request.Status.IsValid() {
				return apperrors.Wrap(apperrors.ErrValidation, "invalid status %s", *request.Status)
			}
			if *request.Status == StatusCheckedOut {
				return apperrors.Wrap(
					apperrors.ErrValidation,
					"status cannot be set to checked out directly, use checkout",
				)
			}
			equipment.Status = *request.Status
		}

		return c.equipmentRepo.Upsert(txCtx, equipment)
	})
	if err != nil {
		return nil, err
	}

	log.Info("equipment updated", "sku", sku)
	c.publish(events.EDIT, sku, "", nil)
	c.invalidateReportCaches()

	return equipment, nil
}

func (c *EquipmentController) Delete(ctx context.Context, sku string) error {
	log := c.log.Function("Delete")

	release, err := c.lockService.Acquire(ctx, sku)
	if err != nil {
		return err
	}
	defer release()

	err = c.transactionService.Execute(ctx, func(txCtx context.Context) error {
		equipment, err := c.equipmentRepo.GetBySKUForUpdate(txCtx, sku)
		if err != nil {
			return err
		}

		if equipment.IsCheckedOut() {
			return apperrors.Wrap(
				apperrors.ErrInvalidState,
				"%s is checked out and cannot be deleted", sku,
			)
		}

		return c.equipmentRepo.Delete(txCtx, sku)
	})
	if err != nil {
		return err
	}

	log.Info("equipment deleted", "sku", sku)
	c.publish(events.DELETE, sku, "", nil)
	c.invalidateReportCaches()

	return nil
}

func (c *EquipmentController) publish(
	messageType events.MessageType,
	sku, username string,
	data map[string]any,
) {
	if c.eventBus == nil {
		return
	}

	if err := c.eventBus.Publish(events.EQUIPMENT_CHANNEL, events.Event{
		Type:     messageType,
		SKU:      sku,
		Username: username,
		Data:     data,
	}); err != nil {
		c.log.Function("publish").Er("failed to publish event", err, "type", messageType, "sku", sku)
	}
}

func (c *EquipmentController) publishAnomaly(anomaly *apperrors.IntegrityAnomaly) {
	c.publish(events.INTEGRITY_ANOMALY, anomaly.SKU, "", map[string]any{
		"detail": anomaly.Detail,
	})
}

func (c *EquipmentController) invalidateReportCaches() {
	for _, key := range []string{reportController.StatusCacheKey, reportController.CategoryCacheKey} {
		if err := database.NewCacheBuilder(c.db.Cache.Reports, key).Delete(); err != nil {
			c.log.Function("invalidateReportCaches").Er("failed to invalidate cache", err, "key", key)
		}
	}
}
