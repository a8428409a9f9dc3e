package userController

import (
	"context"
	"fmt"
	"time"

	"labstock/config"
	"labstock/internal/apperrors"
	"labstock/internal/database"
	"labstock/internal/events"
	. "labstock/internal/models"
	"labstock/internal/repositories"
	"labstock/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

type UserController struct {
	userRepo           repositories.UserRepository
	equipmentRepo      repositories.EquipmentRepository
	ledgerRepo         repositories.LedgerRepository
	transactionService *services.TransactionService
	eventBus           *events.EventBus
	db                 database.DB
	Config             config.Config
	log                logger.Logger
}

type CreateUserRequest struct {
	Username   string `json:"username"   validate:"required"`
	Password   string `json:"password"   validate:"required"`
	Email      string `json:"email,omitempty"`
	Role       Role   `json:"role,omitempty"`
	Name       string `json:"name,omitempty"`
	Department string `json:"department,omitempty"`
}

type UserControllerInterface interface {
	Get(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]*UserProfile, error)
	Create(ctx context.Context, request *CreateUserRequest) (*UserProfile, error)
	// Delete removes a user and cascades over their holdings: every item
	// they hold returns to stock and its open ledger record is closed with
	// a system note. All of it commits atomically with the user removal.
	Delete(ctx context.Context, username string) error
}

func New(
	repos repositories.Repository,
	services services.Service,
	eventBus *events.EventBus,
	config config.Config,
	db database.DB,
) UserControllerInterface {
	return &UserController{
		userRepo:           repos.User,
		equipmentRepo:      repos.Equipment,
		ledgerRepo:         repos.Ledger,
		transactionService: services.Transaction,
		eventBus:           eventBus,
		db:                 db,
		Config:             config,
		log:                logger.New("userController"),
	}
}

func (c *UserController) Get(ctx context.Context, username string) (*User, error) {
	return c.userRepo.GetByUsername(ctx, username)
}

func (c *UserController) List(ctx context.Context) ([]*UserProfile, error) {
	log := c.log.Function("List")

	users, err := c.userRepo.List(ctx)
	if err != nil {
		return nil, log.Err("failed to list users", err)
	}

	profiles := make([]*UserProfile, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, user.ToProfile())
	}

	return profiles, nil
}

func (c *UserController) Create(
	ctx context.Context,
	request *CreateUserRequest,
) (*UserProfile, error) {
	log := c.log.Function("Create")

	if request.Username == "" {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "username is required")
	}
	if request.Password == "" {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "password is required")
	}

	role := request.Role
	if role == "" {
		role = RoleUser
	}
	if !role.IsValid() {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "invalid role %s", role)
	}

	if _, err := c.userRepo.GetByUsername(ctx, request.Username); err == nil {
		return nil, apperrors.Wrap(
			apperrors.ErrValidation,
			"username %s is already taken", request.Username,
		)
	}

	user := &User{
		Username:   request.Username,
		Email:      request.Email,
		Password:   HashPassword(request.Password),
		Role:       role,
		Name:       request.Name,
		Department: request.Department,
	}

	if err := c.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Info("user created", "username", user.Username, "role", user.Role)

	return user.ToProfile(), nil
}

func (c *UserController) Delete(ctx context.Context, username string) error {
	log := c.log.Function("Delete")

	var returnedSKUs []string

	err := c.transactionService.Execute(ctx, func(txCtx context.Context) error {
		user, err := c.userRepo.GetByUsername(txCtx, username)
		if err != nil {
			return err
		}

		if user.Role == RoleAdmin {
			admins, err := c.userRepo.CountByRole(txCtx, RoleAdmin)
			if err != nil {
				return err
			}
			if admins <= 1 {
				return apperrors.Wrap(
					apperrors.ErrInvalidState,
					"cannot delete the last admin account",
				)
			}
		}

		held, err := c.equipmentRepo.ListCheckedOutBy(txCtx, username)
		if err != nil {
			return err
		}

		now := time.Now()
		cascadeNote := fmt.Sprintf("Returned automatically: user %s was deleted", username)

		for _, equipment := range held {
			open, _, err := c.ledgerRepo.FindOpen(txCtx, equipment.SKU)
			if err != nil {
				return err
			}
			if open != nil {
				notes := open.AppendReturnNotes(ConditionGood, cascadeNote)
				if err := c.ledgerRepo.Close(txCtx, open.ID, now, notes); err != nil {
					return err
				}
			}

			equipment.ClearCheckout(StatusInStock)
			if err := c.equipmentRepo.Upsert(txCtx, equipment); err != nil {
				return err
			}

			returnedSKUs = append(returnedSKUs, equipment.SKU)
		}

		return c.userRepo.Delete(txCtx, username)
	})
	if err != nil {
		return err
	}

	log.Info("user deleted", "username", username, "returnedItems", len(returnedSKUs))

	if c.eventBus != nil {
		publishErr := c.eventBus.Publish(events.USER_CHANNEL, events.Event{
			Type:     events.USER_CASCADE,
			Username: username,
			Data: map[string]any{
				"returnedSKUs": returnedSKUs,
			},
		})
		if publishErr != nil {
			log.Er("failed to publish user cascade event", publishErr, "username", username)
		}
	}

	return nil
}
