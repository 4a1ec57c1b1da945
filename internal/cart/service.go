// Package cart управляет корзинами покупателей. Корзина хранит снимки
// цен и весов на момент добавления; при оформлении заказа авторитетным
// источником остаётся текущее состояние каталога.
package cart

import (
	"context"
	"errors"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/rakibhasan/dokan/internal/domain"
)

// Service реализует операции над корзиной с явными границами load/save.
type Service struct {
	carts    domain.CartStore
	products domain.ProductRepository
	logger   *log.Entry
}

// NewService создаёт сервис корзин.
func NewService(carts domain.CartStore, products domain.ProductRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "cart")
	}
	return &Service{carts: carts, products: products, logger: logger}
}

// Get возвращает корзину; отсутствующая корзина трактуется как пустая.
func (s *Service) Get(ctx context.Context, cartID string) (domain.Cart, error) {
	cart, err := s.carts.Load(ctx, cartID)
	if errors.Is(err, domain.ErrCartNotFound) {
		return domain.Cart{ID: cartID}, nil
	}
	if err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}

// AddItem добавляет товар в корзину, копируя снимок цены, названия и
// веса из каталога. Снятый с витрины товар добавить нельзя.
func (s *Service) AddItem(ctx context.Context, cartID, userID, productID string, qty int32) (domain.Cart, error) {
	if strings.TrimSpace(productID) == "" {
		return domain.Cart{}, domain.ErrItemProductRequired
	}
	if qty <= 0 {
		return domain.Cart{}, domain.ErrItemQtyInvalid
	}

	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return domain.Cart{}, err
	}
	if !product.Active {
		return domain.Cart{}, &domain.ProductNotFoundError{ProductID: productID}
	}

	cart, err := s.Get(ctx, cartID)
	if err != nil {
		return domain.Cart{}, err
	}
	if userID != "" {
		cart.UserID = userID
	}

	image := ""
	if len(product.Images) > 0 {
		image = product.Images[0]
	}
	cart.Merge(domain.CartLine{
		ProductID:   product.ID,
		Title:       product.Title,
		PriceMinor:  product.PriceMinor,
		Qty:         qty,
		WeightGrams: product.WeightGrams,
		Image:       image,
	})

	return s.persist(ctx, cart)
}

// SetQty выставляет количество позиции; qty <= 0 удаляет позицию.
func (s *Service) SetQty(ctx context.Context, cartID, productID string, qty int32) (domain.Cart, error) {
	cart, err := s.carts.Load(ctx, cartID)
	if err != nil {
		return domain.Cart{}, err
	}

	if !cart.SetQty(productID, qty) {
		return domain.Cart{}, &domain.ProductNotFoundError{ProductID: productID}
	}

	return s.persist(ctx, cart)
}

// RemoveItem удаляет позицию из корзины.
func (s *Service) RemoveItem(ctx context.Context, cartID, productID string) (domain.Cart, error) {
	return s.SetQty(ctx, cartID, productID, 0)
}

// Clear удаляет корзину целиком. Вызывается после успешного оформления.
func (s *Service) Clear(ctx context.Context, cartID string) error {
	return s.carts.Delete(ctx, cartID)
}

func (s *Service) persist(ctx context.Context, cart domain.Cart) (domain.Cart, error) {
	cart.UpdatedAt = time.Now().UTC()
	if err := s.carts.Save(ctx, cart); err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}
