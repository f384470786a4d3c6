package usecase

import (
	"context"
	"errors"
	"fmt"

	"cardealer-backend/config"
	"cardealer-backend/internal/domain"
	"cardealer-backend/pkg/logger"
)

type CartUsecase struct {
	cartRepo    domain.CartRepository
	catalogRepo domain.CatalogRepository
	pricing     domain.PricingConfig
	maxQuantity int
}

func NewCartUsecase(cartRepo domain.CartRepository, catalogRepo domain.CatalogRepository, cfg *config.Config) *CartUsecase {
	return &CartUsecase{
		cartRepo:    cartRepo,
		catalogRepo: catalogRepo,
		pricing:     PricingFromConfig(cfg),
		maxQuantity: cfg.MaxCartQuantity,
	}
}

func PricingFromConfig(cfg *config.Config) domain.PricingConfig {
	return domain.PricingConfig{
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		FlatShippingFee:       cfg.FlatShippingFee,
		TaxRatePercent:        cfg.TaxRatePercent,
	}
}

type CartItemInput struct {
	ItemType string `json:"itemType"`
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// getOrCreateCart creates the cart on first access.
func (uc *CartUsecase) getOrCreateCart(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := uc.cartRepo.GetByUserID(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	cart = &domain.Cart{UserID: userID}
	if err := uc.cartRepo.Create(ctx, cart); err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	return cart, nil
}

// GetCart returns the hydrated cart. Lines whose item was deactivated stay visible
// but are left out of the totals.
func (uc *CartUsecase) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := uc.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := uc.cartRepo.GetItems(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("load cart items: %w", err)
	}

	cart.Totals = uc.pricing.Compute(items)

	active := make([]domain.CartItem, 0, len(items))
	for _, it := range items {
		if it.IsActive {
			active = append(active, it)
		}
	}
	if len(active) != len(items) {
		cart.Totals = uc.pricing.Compute(active)
	}
	cart.Items = items
	return cart, nil
}

func (uc *CartUsecase) validateLine(in CartItemInput) error {
	if !domain.IsValidItemType(in.ItemType) {
		return fmt.Errorf("%w: itemType must be car or part", domain.ErrInvalidInput)
	}
	if in.ItemID == "" {
		return fmt.Errorf("%w: itemId is required", domain.ErrInvalidInput)
	}
	return nil
}

// checkQuantity validates the resulting line quantity against the per-line cap and stock.
func (uc *CartUsecase) checkQuantity(ctx context.Context, itemType, itemID string, qty int) error {
	if qty > uc.maxQuantity {
		return fmt.Errorf("%w: at most %d per item", domain.ErrInvalidInput, uc.maxQuantity)
	}

	item, err := uc.catalogRepo.GetItem(ctx, itemType, itemID)
	if err != nil {
		return err
	}
	if !item.IsActive {
		return domain.ErrNotFound
	}
	if qty > item.Stock {
		return fmt.Errorf("%w: only %d of %s available", domain.ErrInsufficientStock, item.Stock, item.Name)
	}
	return nil
}

// AddItem increments an existing line or creates a new one.
func (uc *CartUsecase) AddItem(ctx context.Context, userID string, in CartItemInput) (*domain.Cart, error) {
	if err := uc.validateLine(in); err != nil {
		return nil, err
	}
	if in.Quantity < 1 || in.Quantity > uc.maxQuantity {
		return nil, fmt.Errorf("%w: quantity must be between 1 and %d", domain.ErrInvalidInput, uc.maxQuantity)
	}

	cart, err := uc.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	qty := in.Quantity
	existing, err := uc.cartRepo.GetItem(ctx, cart.ID, in.ItemType, in.ItemID)
	switch {
	case err == nil:
		qty += existing.Quantity
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("load cart line: %w", err)
	}

	if err := uc.checkQuantity(ctx, in.ItemType, in.ItemID, qty); err != nil {
		return nil, err
	}
	if err := uc.cartRepo.SetItemQuantity(ctx, cart.ID, in.ItemType, in.ItemID, qty); err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}

	logger.WithContext(ctx).Debug().
		Str("item_type", in.ItemType).
		Str("item_id", in.ItemID).
		Int("quantity", qty).
		Msg("Cart line updated")
	return uc.GetCart(ctx, userID)
}

// UpdateItem sets an absolute quantity. Zero or less removes the line.
func (uc *CartUsecase) UpdateItem(ctx context.Context, userID string, in CartItemInput) (*domain.Cart, error) {
	if err := uc.validateLine(in); err != nil {
		return nil, err
	}
	if in.Quantity <= 0 {
		return uc.RemoveItem(ctx, userID, in.ItemType, in.ItemID)
	}

	cart, err := uc.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := uc.cartRepo.GetItem(ctx, cart.ID, in.ItemType, in.ItemID); err != nil {
		return nil, err
	}
	if err := uc.checkQuantity(ctx, in.ItemType, in.ItemID, in.Quantity); err != nil {
		return nil, err
	}
	if err := uc.cartRepo.SetItemQuantity(ctx, cart.ID, in.ItemType, in.ItemID, in.Quantity); err != nil {
		return nil, fmt.Errorf("update cart item: %w", err)
	}
	return uc.GetCart(ctx, userID)
}

func (uc *CartUsecase) RemoveItem(ctx context.Context, userID, itemType, itemID string) (*domain.Cart, error) {
	cart, err := uc.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := uc.cartRepo.RemoveItem(ctx, cart.ID, itemType, itemID); err != nil {
		return nil, err
	}
	return uc.GetCart(ctx, userID)
}

func (uc *CartUsecase) Clear(ctx context.Context, userID string) error {
	cart, err := uc.getOrCreateCart(ctx, userID)
	if err != nil {
		return err
	}
	return uc.cartRepo.Clear(ctx, cart.ID)
}
