package service

import (
	"errors"
	"time"

	"yamdb/internal/config"
	"yamdb/internal/middleware/auth"
	"yamdb/internal/models"
	"yamdb/internal/repository"
	"yamdb/pkg/apperrors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Claims carried inside an access token.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(username, password, email string) (*models.User, error)
	Login(username, password string) (accessToken, refreshToken string, user *models.User, err error)
	RefreshAccessToken(refreshToken string) (newAccessToken string, err error)
	RevokeToken(refreshToken string) error
	ValidateToken(tokenString string) (*Claims, error)
	AccessTokenTTL() time.Duration
}

type authService struct {
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	jwtSecret        string
	accessTokenTTL   time.Duration
	refreshTokenTTL  time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	cfg *config.Config,
) AuthService {
	return &authService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		jwtSecret:        cfg.JWTSecret,
		accessTokenTTL:   cfg.AccessTokenTTL,
		refreshTokenTTL:  cfg.RefreshTokenTTL,
	}
}

// Register creates a new account with the default "user" role. Username and
// email collisions surface as uniqueness errors; the unique indexes back the
// pre-checks under concurrent signups.
func (s *authService) Register(username, password, email string) (*models.User, error) {
	if _, err := s.userRepo.FindByUsername(username); err == nil {
		return nil, apperrors.Uniqueness("user", "username already in use")
	}
	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, apperrors.Uniqueness("user", "email already in use")
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	user := &models.User{
		ID:       uuid.New().String(),
		Username: username,
		Email:    email,
		Password: hashedPassword,
		Role:     models.RoleUser,
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost a race against a concurrent signup
			return nil, apperrors.Uniqueness("user", "username or email already in use")
		}
		return nil, apperrors.Internal(err)
	}

	return user, nil
}

// Login authenticates a user and returns access and refresh tokens.
func (s *authService) Login(username, password string) (string, string, *models.User, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		// dummy compare so unknown usernames take as long as bad passwords
		auth.VerifyPassword("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy", password)
		return "", "", nil, apperrors.New(apperrors.CodeInvalidCredentials, "auth", "invalid credentials", 401)
	}

	if err := auth.VerifyPassword(user.Password, password); err != nil {
		return "", "", nil, apperrors.New(apperrors.CodeInvalidCredentials, "auth", "invalid credentials", 401)
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return "", "", nil, apperrors.Internal(err)
	}

	refreshToken, err := s.generateRefreshToken(user)
	if err != nil {
		return "", "", nil, apperrors.Internal(err)
	}

	return accessToken, refreshToken, user, nil
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) generateRefreshToken(user *models.User) (string, error) {
	refreshToken := &models.RefreshToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Token:     uuid.New().String(),
		ExpiresAt: time.Now().Add(s.refreshTokenTTL),
	}

	if err := s.refreshTokenRepo.Create(refreshToken); err != nil {
		return "", err
	}

	return refreshToken.Token, nil
}

// RefreshAccessToken exchanges a live refresh token for a new access token.
func (s *authService) RefreshAccessToken(refreshTokenString string) (string, error) {
	refreshToken, err := s.refreshTokenRepo.FindByToken(refreshTokenString)
	if err != nil {
		return "", apperrors.New(apperrors.CodeInvalidToken, "auth", "invalid refresh token", 401)
	}

	if refreshToken.Revoked {
		return "", apperrors.New(apperrors.CodeInvalidToken, "auth", "refresh token revoked", 401)
	}
	if time.Now().After(refreshToken.ExpiresAt) {
		return "", apperrors.New(apperrors.CodeTokenExpired, "auth", "refresh token expired", 401)
	}

	user, err := s.userRepo.FindByID(refreshToken.UserID)
	if err != nil {
		return "", apperrors.New(apperrors.CodeInvalidToken, "auth", "user no longer exists", 401)
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return "", apperrors.Internal(err)
	}

	return accessToken, nil
}

// RevokeToken marks a refresh token as revoked so it can no longer be
// exchanged. Unknown tokens succeed silently; reporting them would tell a
// caller which tokens exist.
func (s *authService) RevokeToken(refreshTokenString string) error {
	refreshToken, err := s.refreshTokenRepo.FindByToken(refreshTokenString)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return apperrors.Internal(err)
	}

	if err := s.refreshTokenRepo.Revoke(refreshToken.ID); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// ValidateToken parses and verifies an access token.
func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.New(apperrors.CodeTokenExpired, "auth", "token has expired", 401)
		}
		return nil, apperrors.New(apperrors.CodeInvalidToken, "auth", "invalid token", 401)
	}
	if !token.Valid {
		return nil, apperrors.New(apperrors.CodeInvalidToken, "auth", "invalid token", 401)
	}

	return claims, nil
}

func (s *authService) AccessTokenTTL() time.Duration {
	return s.accessTokenTTL
}
