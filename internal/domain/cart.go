package domain

import "time"

// CartLine — одна позиция корзины покупателя. Цена и вес копируются из
// товара в момент добавления; авторитетный источник при оформлении заказа —
// всегда текущее состояние Product, перечитываемое внутри транзакции.
type CartLine struct {
	ProductID   string
	Title       string
	PriceMinor  int64
	Qty         int32
	WeightGrams int32
	Image       string
}

// Cart — корзина, привязанная к сессии или пользователю.
type Cart struct {
	ID        string
	UserID    string
	Lines     []CartLine
	UpdatedAt time.Time
}

// Merge добавляет позицию в корзину. Если товар уже есть, количества складываются.
func (c *Cart) Merge(line CartLine) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == line.ProductID {
			c.Lines[i].Qty += line.Qty
			return
		}
	}
	c.Lines = append(c.Lines, line)
}

// SetQty выставляет количество позиции; qty <= 0 удаляет позицию.
// Возвращает false, если товара в корзине нет.
func (c *Cart) SetQty(productID string, qty int32) bool {
	for i := range c.Lines {
		if c.Lines[i].ProductID != productID {
			continue
		}
		if qty <= 0 {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		} else {
			c.Lines[i].Qty = qty
		}
		return true
	}
	return false
}

// SubtotalMinor считает сумму корзины по снимкам цен.
func (c *Cart) SubtotalMinor() int64 {
	var sum int64
	for _, line := range c.Lines {
		sum += int64(line.Qty) * line.PriceMinor
	}
	return sum
}

// WeightGramsTotal считает суммарный вес корзины для расчёта доставки.
func (c *Cart) WeightGramsTotal() int32 {
	var total int32
	for _, line := range c.Lines {
		total += line.Qty * line.WeightGrams
	}
	return total
}
