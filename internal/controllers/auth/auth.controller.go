package authController

import (
	"context"
	"time"

	"labstock/config"
	"labstock/internal/apperrors"
	"labstock/internal/database"
	. "labstock/internal/models"
	"labstock/internal/repositories"
	"labstock/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

type sessionRecord struct {
	Username string    `json:"username"`
	Role     Role      `json:"role"`
	IssuedAt time.Time `json:"issuedAt"`
}

type AuthController struct {
	userRepo     repositories.UserRepository
	tokenService *services.TokenService
	db           database.DB
	sessionTTL   time.Duration
	log          logger.Logger
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *UserProfile `json:"user"`
}

type AuthControllerInterface interface {
	Login(ctx context.Context, request *LoginRequest) (*LoginResponse, error)
	ResolveToken(ctx context.Context, token string) (*User, error)
}

func New(
	services services.Service,
	repos repositories.Repository,
	config config.Config,
	db database.DB,
) AuthControllerInterface {
	return &AuthController{
		userRepo:     repos.User,
		tokenService: services.Token,
		db:           db,
		sessionTTL:   time.Duration(config.JWTExpiryHours) * time.Hour,
		log:          logger.New("authController"),
	}
}

func (c *AuthController) Login(
	ctx context.Context,
	request *LoginRequest,
) (*LoginResponse, error) {
	log := c.log.Function("Login")

	user, err := c.userRepo.GetByUsername(ctx, request.Username)
	if err != nil {
		// Same failure shape whether the user is missing or the password
		// is wrong, so login probing reveals nothing.
		return nil, apperrors.Wrap(apperrors.ErrValidation, "invalid username or password")
	}

	if !user.CheckPassword(request.Password) {
		log.Warn("failed login attempt", "username", request.Username)
		return nil, apperrors.Wrap(apperrors.ErrValidation, "invalid username or password")
	}

	token, err := c.tokenService.Issue(user)
	if err != nil {
		return nil, log.Err("failed to issue token", err, "username", user.Username)
	}

	// Best effort session record for operator visibility; login never
	// fails on cache trouble.
	err = database.NewCacheBuilder(c.db.Cache.Session, "session:"+user.Username).
		WithContext(ctx).
		WithStruct(sessionRecord{
			Username: user.Username,
			Role:     user.Role,
			IssuedAt: time.Now(),
		}).
		WithTTL(c.sessionTTL).
		Set()
	if err != nil {
		log.Er("failed to record session", err, "username", user.Username)
	}

	return &LoginResponse{
		Token: token,
		User:  user.ToProfile(),
	}, nil
}

// ResolveToken validates a bearer token and loads the user it names.
func (c *AuthController) ResolveToken(ctx context.Context, token string) (*User, error) {
	claims, err := c.tokenService.Validate(token)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "invalid or expired token")
	}

	return c.userRepo.GetByUsername(ctx, claims.Username)
}
