package domain

import "time"

// Product описывает товар каталога.
type Product struct {
	ID          string
	Title       string
	Description string
	// PriceMinor — цена за единицу в минимальных денежных единицах (пойша).
	PriceMinor int64
	// Stock — количество доступных к продаже единиц. Никогда не уходит в минус:
	// списание выполняется только внутри атомарной транзакции оформления заказа.
	Stock int32
	// Active управляет видимостью товара на витрине.
	Active bool
	// WeightGrams используется расчётом стоимости доставки.
	WeightGrams int32
	Images      []string
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidateInvariants проверяет базовые инварианты товара и возвращает список замечаний.
func (p *Product) ValidateInvariants() []error {
	var errs []error

	if p.Title == "" {
		errs = append(errs, ErrProductTitleRequired)
	}
	if p.PriceMinor < 0 {
		errs = append(errs, ErrProductPriceNegative)
	}
	if p.Stock < 0 {
		errs = append(errs, ErrProductStockNegative)
	}
	if p.WeightGrams < 0 {
		errs = append(errs, ErrProductWeightNegative)
	}

	return errs
}
