package services

import (
	"context"

	"github.com/agendasaude/backend/internal/auth"
	"github.com/agendasaude/backend/internal/domain/entities"
	"github.com/agendasaude/backend/internal/domain/repositories"
	apperrors "github.com/agendasaude/backend/pkg/errors"
)

// CreateProfessionalInput carries a professional registration request.
type CreateProfessionalInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	CRM       string `json:"crm"`
	Password  string `json:"password"`
	Specialty string `json:"specialty"`
}

// UpdateProfessionalInput carries a partial professional update; nil
// fields are left untouched.
type UpdateProfessionalInput struct {
	Name      *string `json:"name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Password  *string `json:"password"`
	Specialty *string `json:"specialty"`
}

// ProfessionalService handles professional registration and profile
// maintenance
type ProfessionalService struct {
	professionals repositories.ProfessionalRepository
}

// NewProfessionalService creates a new professional service
func NewProfessionalService(professionals repositories.ProfessionalRepository) *ProfessionalService {
	return &ProfessionalService{professionals: professionals}
}

// Create registers a new professional. The CRM registration number is
// immutable after creation.
func (s *ProfessionalService) Create(ctx context.Context, in CreateProfessionalInput) (*entities.Professional, error) {
	if in.Name == "" || in.Email == "" || in.CRM == "" || in.Password == "" || in.Specialty == "" {
		return nil, apperrors.NewValidationError("name, email, crm, password and specialty are required")
	}
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to hash password", err)
	}

	professional := &entities.Professional{
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		CRM:          in.CRM,
		PasswordHash: hash,
		Specialty:    in.Specialty,
	}
	if err := s.professionals.Create(ctx, professional); err != nil {
		return nil, err
	}
	return professional, nil
}

// Get retrieves a professional by id
func (s *ProfessionalService) Get(ctx context.Context, id int64) (*entities.Professional, error) {
	return s.professionals.GetByID(ctx, id)
}

// List retrieves all professionals
func (s *ProfessionalService) List(ctx context.Context) ([]*entities.Professional, error) {
	return s.professionals.List(ctx)
}

// Update applies a partial update to the professional's profile. The
// CRM cannot be changed.
func (s *ProfessionalService) Update(ctx context.Context, id int64, in UpdateProfessionalInput) (*entities.Professional, error) {
	professional, err := s.professionals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		if err := validateEmail(*in.Email); err != nil {
			return nil, err
		}
		professional.Email = *in.Email
	}
	if in.Name != nil {
		professional.Name = *in.Name
	}
	if in.Phone != nil {
		professional.Phone = *in.Phone
	}
	if in.Specialty != nil {
		professional.Specialty = *in.Specialty
	}
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to hash password", err)
		}
		professional.PasswordHash = hash
	}

	if err := s.professionals.Update(ctx, professional); err != nil {
		return nil, err
	}
	return professional, nil
}

// Delete removes a professional. Deletion is refused while the
// professional still has booked appointments.
func (s *ProfessionalService) Delete(ctx context.Context, id int64) error {
	if _, err := s.professionals.GetByID(ctx, id); err != nil {
		return err
	}
	return s.professionals.Delete(ctx, id)
}
