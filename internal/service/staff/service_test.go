package staff

import (
	"context"
	"errors"
	"testing"

	"restaurant-ops/internal/domain"
)

// memoryRepo is a lightweight in-memory staff repository for tests.
type memoryRepo struct {
	byEstablishment map[string]map[string]domain.Staff
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byEstablishment: make(map[string]map[string]domain.Staff)}
}

func (r *memoryRepo) Create(_ context.Context, s domain.Staff) (*domain.Staff, error) {
	if r.byEstablishment[s.EstablishmentID] == nil {
		r.byEstablishment[s.EstablishmentID] = make(map[string]domain.Staff)
	}
	if _, exists := r.byEstablishment[s.EstablishmentID][s.Email]; exists {
		return nil, domain.ErrAlreadyExists
	}
	clone := s
	clone.ID = "staff-" + s.Email
	r.byEstablishment[s.EstablishmentID][s.Email] = clone
	return &clone, nil
}

func (r *memoryRepo) GetByEmail(_ context.Context, establishmentID, email string) (*domain.Staff, error) {
	if s, ok := r.byEstablishment[establishmentID][email]; ok {
		return &s, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) GetByID(_ context.Context, establishmentID, id string) (*domain.Staff, error) {
	for _, s := range r.byEstablishment[establishmentID] {
		if s.ID == id {
			clone := s
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

type stubIssuer struct {
	issued []string
	err    error
}

func (s *stubIssuer) Issue(member domain.Staff) (string, error) {
	s.issued = append(s.issued, member.ID)
	return "token-" + member.ID, s.err
}

func TestCreateAndLogin(t *testing.T) {
	repo := newMemoryRepo()
	issuer := &stubIssuer{}
	svc := New(repo, issuer, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, "est", CreateInput{Email: " Chef@Example.com", Password: "kitchen123", Role: domain.RoleKitchen})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Email != "chef@example.com" || created.PasswordHash == "kitchen123" {
		t.Fatalf("unexpected staff %+v", created)
	}

	member, token, err := svc.Login(ctx, "est", "chef@example.com", "kitchen123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if member.ID != created.ID || token != "token-"+created.ID {
		t.Fatalf("unexpected login result %+v %q", member, token)
	}

	if _, _, err := svc.Login(ctx, "est", "chef@example.com", "wrong123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "other", "chef@example.com", "kitchen123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for other establishment, got %v", err)
	}
	if len(issuer.issued) != 1 {
		t.Fatalf("expected one issued token, got %d", len(issuer.issued))
	}
}

func TestCreateValidation(t *testing.T) {
	svc := New(newMemoryRepo(), &stubIssuer{}, nil)
	cases := []CreateInput{
		{Email: "", Password: "kitchen123", Role: domain.RoleKitchen},
		{Email: "a@b.c", Password: "kitchen123", Role: "waiter"},
		{Email: "a@b.c", Password: "short1", Role: domain.RoleCashier},
		{Email: "a@b.c", Password: "onlyletters", Role: domain.RoleCashier},
	}
	for _, in := range cases {
		if _, err := svc.Create(context.Background(), "est", in); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", in, err)
		}
	}
}
