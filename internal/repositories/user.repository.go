package repositories

import (
	"context"
	"errors"

	"labstock/internal/apperrors"
	contextutil "labstock/internal/context"
	"labstock/internal/database"
	. "labstock/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	CountByRole(ctx context.Context, role Role) (int64, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, username string) error
}

type userRepository struct {
	db  database.DB
	log logger.Logger
}

func NewUserRepository(db database.DB) UserRepository {
	return &userRepository{
		db:  db,
		log: logger.New("userRepository"),
	}
}

func (r *userRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextutil.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	log := r.log.Function("GetByUsername")

	var user User
	if err := r.getDB(ctx).First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "no user %s", username)
		}
		return nil, log.Err("failed to get user", err, "username", username)
	}

	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]*User, error) {
	log := r.log.Function("List")

	var users []*User
	if err := r.getDB(ctx).Order("username ASC").Find(&users).Error; err != nil {
		return nil, log.Err("failed to list users", err)
	}

	return users, nil
}

func (r *userRepository) CountByRole(ctx context.Context, role Role) (int64, error) {
	log := r.log.Function("CountByRole")

	var count int64
	err := r.getDB(ctx).Model(&User{}).Where("role = ?", role).Count(&count).Error
	if err != nil {
		return 0, log.Err("failed to count users by role", err, "role", role)
	}

	return count, nil
}

func (r *userRepository) Create(ctx context.Context, user *User) error {
	log := r.log.Function("Create")

	if err := r.getDB(ctx).Create(user).Error; err != nil {
		return log.Err("failed to create user", err, "username", user.Username)
	}

	return nil
}

func (r *userRepository) Update(ctx context.Context, user *User) error {
	log := r.log.Function("Update")

	result := r.getDB(ctx).Model(user).Where("username = ?", user.Username).Updates(user)
	if result.Error != nil {
		return log.Err("failed to update user", result.Error, "username", user.Username)
	}

	if result.RowsAffected == 0 {
		return apperrors.Wrap(apperrors.ErrNotFound, "no user %s", user.Username)
	}

	return nil
}

func (r *userRepository) Delete(ctx context.Context, username string) error {
	log := r.log.Function("Delete")

	result := r.getDB(ctx).Delete(&User{}, "username = ?", username)
	if result.Error != nil {
		return log.Err("failed to delete user", result.Error, "username", username)
	}

	if result.RowsAffected == 0 {
		return apperrors.Wrap(apperrors.ErrNotFound, "no user %s", username)
	}

	return nil
}
