package service

import (
	"errors"

	"yamdb/internal/dto"
	"yamdb/internal/middleware/auth"
	"yamdb/internal/models"
	"yamdb/internal/repository"
	"yamdb/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserService covers the admin-side user management plus the /me surface.
type UserService interface {
	CreateUser(req *dto.CreateUserDTO) (*dto.UserResponse, error)
	GetByUsername(username string) (*dto.UserResponse, error)
	ListUsers(page, pageSize int) (*dto.PaginatedUserResponse, error)
	UpdateByUsername(username string, req *dto.UpdateUserDTO) (*dto.UserResponse, error)
	DeleteByUsername(username string) error
	GetMe(userID string) (*dto.UserResponse, error)
	UpdateMe(userID string, req *dto.UpdateMeDTO) (*dto.UserResponse, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// CreateUser is the privileged creation path: unlike signup it may assign
// any role. Role defaults to "user" when the payload omits it.
func (s *userService) CreateUser(req *dto.CreateUserDTO) (*dto.UserResponse, error) {
	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if !models.ValidRole(role) {
		return nil, apperrors.Validation("user", "unknown role: "+role)
	}

	if _, err := s.userRepo.FindByUsername(req.Username); err == nil {
		return nil, apperrors.Uniqueness("user", "username already in use")
	}
	if _, err := s.userRepo.FindByEmail(req.Email); err == nil {
		return nil, apperrors.Uniqueness("user", "email already in use")
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	user := &models.User{
		ID:        uuid.New().String(),
		Username:  req.Username,
		Email:     req.Email,
		Password:  hashedPassword,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      role,
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Uniqueness("user", "username or email already in use")
		}
		return nil, apperrors.Internal(err)
	}

	return dto.FromModelToUserResponse(user), nil
}

func (s *userService) GetByUsername(username string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user", "user not found")
		}
		return nil, apperrors.Internal(err)
	}
	return dto.FromModelToUserResponse(user), nil
}

func (s *userService) ListUsers(page, pageSize int) (*dto.PaginatedUserResponse, error) {
	users, total, err := s.userRepo.List(page, pageSize)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *dto.FromModelToUserResponse(&users[i]))
	}

	return dto.NewPaginatedUserResponse(responses, int(total), page, pageSize), nil
}

func (s *userService) UpdateByUsername(username string, req *dto.UpdateUserDTO) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user", "user not found")
		}
		return nil, apperrors.Internal(err)
	}

	if req.Role != nil {
		if !models.ValidRole(*req.Role) {
			return nil, apperrors.Validation("user", "unknown role: "+*req.Role)
		}
		user.Role = *req.Role
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}

	if err := s.userRepo.Update(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Uniqueness("user", "email already in use")
		}
		return nil, apperrors.Internal(err)
	}

	return dto.FromModelToUserResponse(user), nil
}

// DeleteByUsername hard-deletes the account with all reviews and comments
// it authored. The cleanup runs inside one transaction in the repository.
func (s *userService) DeleteByUsername(username string) error {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("user", "user not found")
		}
		return apperrors.Internal(err)
	}

	if err := s.userRepo.Delete(user.ID); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

func (s *userService) GetMe(userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user", "user not found")
		}
		return nil, apperrors.Internal(err)
	}
	return dto.FromModelToUserResponse(user), nil
}

// UpdateMe updates the caller's own profile. The DTO has no role field, so
// users cannot promote themselves.
func (s *userService) UpdateMe(userID string, req *dto.UpdateMeDTO) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user", "user not found")
		}
		return nil, apperrors.Internal(err)
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}

	if err := s.userRepo.Update(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Uniqueness("user", "email already in use")
		}
		return nil, apperrors.Internal(err)
	}

	return dto.FromModelToUserResponse(user), nil
}
