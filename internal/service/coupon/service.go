package coupon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"restaurant-ops/internal/domain"
	"restaurant-ops/internal/pricing"
	couponrepo "restaurant-ops/internal/repository/coupon"

	"github.com/shopspring/decimal"
)

type Service struct {
	repo   couponrepo.Repository
	logger *log.Logger
	now    func() time.Time
}

func New(repo couponrepo.Repository, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Validation is the outcome of checking a code against an order total.
type Validation struct {
	Valid         bool                 `json:"valid"`
	Coupon        *domain.DiscountRule `json:"coupon,omitempty"`
	DiscountCents int64                `json:"discountCents"`
	Reason        pricing.Eligibility  `json:"reason"`
	Message       string               `json:"message"`
}

// Validate reports whether code would discount an order of orderTotalCents
// right now. Unknown codes are a negative validation, not an error.
func (s *Service) Validate(ctx context.Context, establishmentID, code string, orderTotalCents int64) (*Validation, error) {
	rule, err := s.Lookup(ctx, establishmentID, code)
	if err != nil {
		return nil, err
	}
	at := s.now()
	reason := pricing.CheckDiscount(rule, orderTotalCents, at)
	v := &Validation{
		Valid:   reason == pricing.Applied,
		Coupon:  rule,
		Reason:  reason,
		Message: reason.Message(),
	}
	if v.Valid {
		v.DiscountCents = pricing.DiscountCents(rule, orderTotalCents, at)
	}
	return v, nil
}

// Lookup returns the rule for code, or nil when the code is blank or unknown.
func (s *Service) Lookup(ctx context.Context, establishmentID, code string) (*domain.DiscountRule, error) {
	code = couponrepo.NormalizeCode(code)
	if code == "" {
		return nil, nil
	}
	rule, err := s.repo.GetByCode(ctx, establishmentID, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup coupon %s: %w", code, err)
	}
	return rule, nil
}

func (s *Service) Get(ctx context.Context, establishmentID, code string) (*domain.DiscountRule, error) {
	return s.repo.GetByCode(ctx, establishmentID, couponrepo.NormalizeCode(code))
}

func (s *Service) List(ctx context.Context, establishmentID string) ([]domain.DiscountRule, error) {
	return s.repo.List(ctx, establishmentID)
}

var hundred = decimal.NewFromInt(100)

// Create validates and stores a new rule. New rules start active with no uses.
func (s *Service) Create(ctx context.Context, rule domain.DiscountRule) (*domain.DiscountRule, error) {
	rule.Code = couponrepo.NormalizeCode(rule.Code)
	if rule.Code == "" {
		return nil, fmt.Errorf("code required: %w", domain.ErrInvalidInput)
	}
	switch rule.Kind {
	case domain.DiscountPercentage:
		if rule.Value.GreaterThan(hundred) {
			return nil, fmt.Errorf("percentage above 100: %w", domain.ErrInvalidInput)
		}
	case domain.DiscountFixed:
	default:
		return nil, fmt.Errorf("unknown discount kind %q: %w", rule.Kind, domain.ErrInvalidInput)
	}
	if !rule.Value.IsPositive() {
		return nil, fmt.Errorf("discount value must be positive: %w", domain.ErrInvalidInput)
	}
	if rule.MinOrderValueCents != nil && *rule.MinOrderValueCents < 0 {
		return nil, fmt.Errorf("minimum order value must not be negative: %w", domain.ErrInvalidInput)
	}
	if rule.MaxDiscountCents != nil && *rule.MaxDiscountCents < 0 {
		return nil, fmt.Errorf("maximum discount must not be negative: %w", domain.ErrInvalidInput)
	}
	if rule.UsageLimit != nil && *rule.UsageLimit < 0 {
		return nil, fmt.Errorf("usage limit must not be negative: %w", domain.ErrInvalidInput)
	}
	if rule.ValidFrom != nil && rule.ValidTo != nil && rule.ValidTo.Before(*rule.ValidFrom) {
		return nil, fmt.Errorf("validTo before validFrom: %w", domain.ErrInvalidInput)
	}
	rule.UsedCount = 0
	rule.IsActive = true

	created, err := s.repo.Create(ctx, rule)
	if err != nil {
		return nil, err
	}
	s.logger.Printf("coupon: created establishment_id=%s code=%s kind=%s value=%s", created.EstablishmentID, created.Code, created.Kind, created.Value.String())
	return created, nil
}

func (s *Service) Deactivate(ctx context.Context, establishmentID, code string) (*domain.DiscountRule, error) {
	rule, err := s.repo.SetActive(ctx, establishmentID, couponrepo.NormalizeCode(code), false)
	if err != nil {
		return nil, err
	}
	s.logger.Printf("coupon: deactivated establishment_id=%s code=%s", establishmentID, rule.Code)
	return rule, nil
}
