package services

import (
	"net/http"

	"tradematch_backend/internal/auth"
	"tradematch_backend/internal/models"
	"tradematch_backend/internal/repositories"
	"tradematch_backend/internal/services/dto"
	"tradematch_backend/pkg/apperrors"
)

type UserService interface {
	Register(req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(req *dto.LoginRequest) (*dto.LoginResponse, error)
	GetProfile(userID string) (*dto.UserResponse, error)
}

type UserServiceImpl struct {
	userRepo repositories.UserRepository
	tokens   *auth.TokenManager
}

func NewUserService(userRepo repositories.UserRepository, tokens *auth.TokenManager) UserService {
	return &UserServiceImpl{userRepo: userRepo, tokens: tokens}
}

var errInvalidCredentials = apperrors.New(
	apperrors.CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

func (s *UserServiceImpl) Register(req *dto.RegisterRequest) (*dto.UserResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}

	if existing, err := s.userRepo.FindByEmail(req.Email); err == nil && existing != nil {
		return nil, apperrors.ErrAlreadyExists(nil, "users")
	} else if err != nil && err != repositories.ErrUserNotFound {
		return nil, apperrors.InternalError(err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	specialtiesJSON, err := toJSON(req.Specialties)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Email:            req.Email,
		PasswordHash:     hash,
		Role:             models.UserRole(req.Role),
		Name:             req.Name,
		Phone:            req.Phone,
		SubscriptionTier: models.TierBasic,
		ServiceAreas:     req.ServiceAreas,
		Specialties:      specialtiesJSON,
		HourlyRate:       req.HourlyRate,
		NewJobAlerts:     true,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return newUserResponse(user), nil
}

func (s *UserServiceImpl) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		if err == repositories.ErrUserNotFound {
			return nil, errInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, errInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.LoginResponse{Token: token, User: *newUserResponse(user)}, nil
}

func (s *UserServiceImpl) GetProfile(userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if err == repositories.ErrUserNotFound {
			return nil, apperrors.ErrNotFound(err, "users")
		}
		return nil, apperrors.InternalError(err)
	}
	return newUserResponse(user), nil
}

func newUserResponse(user *models.User) *dto.UserResponse {
	resp := &dto.UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		Role:         string(user.Role),
		Name:         user.Name,
		Phone:        user.Phone,
		NewJobAlerts: user.NewJobAlerts,
	}
	if user.Role == models.UserRoleTradesperson {
		resp.Tier = string(user.Tier())
		resp.ServiceAreas = user.ServiceAreas
		resp.Specialties = user.GetSpecialties()
		resp.HourlyRate = user.HourlyRate
	}
	return resp
}
