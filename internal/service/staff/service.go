package staff

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"restaurant-ops/internal/domain"
	staffrepo "restaurant-ops/internal/repository/staff"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when email/password do not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

type tokenIssuer interface {
	Issue(s domain.Staff) (string, error)
}

// Service handles staff accounts and dashboard login.
type Service struct {
	repo        staffrepo.Repository
	tokens      tokenIssuer
	passwordMin int
	logger      *log.Logger
}

func New(repo staffrepo.Repository, tokens tokenIssuer, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, tokens: tokens, passwordMin: 8, logger: logger}
}

type CreateInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// Create registers a staff member with a bcrypt-hashed password.
func (s *Service) Create(ctx context.Context, establishmentID string, in CreateInput) (*domain.Staff, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" {
		return nil, fmt.Errorf("email required: %w", domain.ErrInvalidInput)
	}
	if !validRole(in.Role) {
		return nil, fmt.Errorf("unknown role %q: %w", in.Role, domain.ErrInvalidInput)
	}
	if err := validatePassword(in.Password, s.passwordMin); err != nil {
		return nil, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(in.Password)), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, domain.Staff{
		EstablishmentID: establishmentID,
		Email:           email,
		PasswordHash:    string(hashed),
		Name:            strings.TrimSpace(in.Name),
		Role:            in.Role,
	})
}

// Login validates credentials and returns the staff member with a signed token.
func (s *Service) Login(ctx context.Context, establishmentID, email, password string) (*domain.Staff, string, error) {
	member, err := s.repo.GetByEmail(ctx, establishmentID, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(strings.TrimSpace(password))); err != nil {
		s.logger.Printf("staff: failed login establishment_id=%s email=%s", establishmentID, member.Email)
		return nil, "", ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(*member)
	if err != nil {
		return nil, "", err
	}
	return member, token, nil
}

func (s *Service) Get(ctx context.Context, establishmentID, id string) (*domain.Staff, error) {
	return s.repo.GetByID(ctx, establishmentID, id)
}

func validRole(role string) bool {
	switch role {
	case domain.RoleOwner, domain.RoleManager, domain.RoleCashier, domain.RoleKitchen:
		return true
	}
	return false
}

func validatePassword(p string, min int) error {
	trimmed := strings.TrimSpace(p)
	if len(trimmed) < min {
		return fmt.Errorf("password must be at least %d characters: %w", min, domain.ErrInvalidInput)
	}
	hasLetter := false
	hasDigit := false
	for _, r := range trimmed {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("password must contain a letter and a number: %w", domain.ErrInvalidInput)
	}
	return nil
}
