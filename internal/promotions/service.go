package promotions

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"gastro-backend/internal/audit"
	"gastro-backend/internal/models"
	"gastro-backend/internal/pricing"
)

var (
	ErrPromotionNotFound = errors.New("promotion not found")
	ErrInvalidDates      = errors.New("end_date must be after start_date")
	ErrInvalidScope      = errors.New("applicable_to must be all, recipes or categories")
	ErrNotActive         = errors.New("promotion is not active")
)

const activeCachePrefix = "promotions:active:"

type Filter struct {
	LocationID *uint
	ActiveOnly bool
}

type Repository interface {
	List(f Filter) ([]models.Promotion, error)
	Get(id uint) (*models.Promotion, error)
	ActiveAt(locationID *uint, at time.Time) ([]models.Promotion, error)
	Create(p *models.Promotion, actor audit.Actor) error
	Update(p *models.Promotion, before models.Promotion, actor audit.Actor) error
	Delete(id uint, actor audit.Actor) error
}

type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, v any) error
	DeletePrefix(ctx context.Context, prefix string) error
}

type Service struct {
	repo  Repository
	cache Cache
	now   func() time.Time
}

func NewService(repo Repository, cache Cache) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

// Rule maps a stored promotion onto the discount rule used by the pricing engine.
func Rule(p models.Promotion) pricing.PromotionRule {
	scope := pricing.Scope(p.ApplicableTo)
	if scope == "" {
		scope = pricing.ScopeAll
	}
	return pricing.PromotionRule{
		Type:                 pricing.DiscountType(p.DiscountType),
		Value:                p.DiscountValue,
		MinPurchase:          p.MinPurchase,
		MaxDiscount:          p.MaxDiscount,
		BuyQuantity:          p.BuyQuantity,
		GetQuantity:          p.GetQuantity,
		ApplicableTo:         scope,
		ApplicableRecipeIDs:  p.ApplicableRecipeIDs,
		ApplicableCategories: p.ApplicableCategories,
	}
}

func Validate(p models.Promotion) error {
	if !p.EndDate.After(p.StartDate) {
		return ErrInvalidDates
	}
	switch pricing.Scope(p.ApplicableTo) {
	case pricing.ScopeAll, pricing.ScopeRecipes, pricing.ScopeCategories:
	default:
		return ErrInvalidScope
	}
	if p.MinPurchase != nil && *p.MinPurchase < 0 {
		return fmt.Errorf("min_purchase: %w", pricing.ErrInvalidDiscount)
	}
	if p.MaxDiscount != nil && *p.MaxDiscount <= 0 {
		return fmt.Errorf("max_discount: %w", pricing.ErrInvalidDiscount)
	}
	return Rule(p).Validate()
}

func cacheKey(locationID *uint) string {
	if locationID == nil {
		return activeCachePrefix + "all"
	}
	return activeCachePrefix + strconv.FormatUint(uint64(*locationID), 10)
}

func (s *Service) List(f Filter) ([]models.Promotion, error) {
	return s.repo.List(f)
}

func (s *Service) Get(id uint) (*models.Promotion, error) {
	return s.repo.Get(id)
}

// Active returns the promotions running now for a location. Results are
// served from the cache when possible; cache failures only cost a query.
func (s *Service) Active(ctx context.Context, locationID *uint) ([]models.Promotion, error) {
	key := cacheKey(locationID)

	var cached []models.Promotion
	if s.cache != nil {
		hit, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			log.Printf("[WARN] promotion cache read: %v", err)
		} else if hit {
			return cached, nil
		}
	}

	promos, err := s.repo.ActiveAt(locationID, s.now())
	if err != nil {
		return nil, err
	}
	if promos == nil {
		promos = []models.Promotion{}
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, promos); err != nil {
			log.Printf("[WARN] promotion cache write: %v", err)
		}
	}
	return promos, nil
}

// Invalidate drops every cached active list.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePrefix(ctx, activeCachePrefix); err != nil {
		log.Printf("[WARN] promotion cache invalidate: %v", err)
	}
}

func (s *Service) Create(ctx context.Context, p *models.Promotion, actor audit.Actor) error {
	if err := Validate(*p); err != nil {
		return err
	}
	if err := s.repo.Create(p, actor); err != nil {
		return err
	}
	s.Invalidate(ctx)
	return nil
}

func (s *Service) Update(ctx context.Context, p *models.Promotion, before models.Promotion, actor audit.Actor) error {
	if err := Validate(*p); err != nil {
		return err
	}
	if err := s.repo.Update(p, before, actor); err != nil {
		return err
	}
	s.Invalidate(ctx)
	return nil
}

func (s *Service) Delete(ctx context.Context, id uint, actor audit.Actor) error {
	if err := s.repo.Delete(id, actor); err != nil {
		return err
	}
	s.Invalidate(ctx)
	return nil
}

// Resolve prices a promotion against a cart sold at locationID. Inactive or
// expired promotions, and promotions bound to another location, are refused.
// A nil locationID skips the location check.
func (s *Service) Resolve(id uint, locationID *uint, subtotal float64, lines []pricing.CartLine) (*models.Promotion, float64, error) {
	p, err := s.repo.Get(id)
	if err != nil {
		return nil, 0, err
	}
	if !p.ActiveAt(s.now()) {
		return p, 0, ErrNotActive
	}
	if p.LocationID != nil && locationID != nil && *p.LocationID != *locationID {
		return p, 0, fmt.Errorf("%w at location %d", ErrNotActive, *locationID)
	}
	if subtotal <= 0 && len(lines) > 0 {
		subtotal = pricing.Subtotal(lines)
	}
	return p, pricing.RoundMoney(pricing.ResolveDiscount(Rule(*p), subtotal, lines)), nil
}
