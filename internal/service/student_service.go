package service

import (
	"context"
	"errors"

	"github.com/examhall/examhall-backend/internal/model"
	"github.com/examhall/examhall-backend/internal/repository"
)

// StudentService handles student account management.
type StudentService struct {
	repo *repository.StudentRepository
	auth *AuthService
}

// NewStudentService creates a new StudentService.
func NewStudentService(repo *repository.StudentRepository, auth *AuthService) *StudentService {
	return &StudentService{repo: repo, auth: auth}
}

// Register creates a student account with a hashed password.
func (s *StudentService) Register(ctx context.Context, req *model.RegisterStudentRequest) (*model.Student, error) {
	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	student := &model.Student{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

// Authenticate verifies a student's credentials.
func (s *StudentService) Authenticate(ctx context.Context, email, password string) (*model.Student, error) {
	student, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.auth.CheckPassword(student.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return student, nil
}
