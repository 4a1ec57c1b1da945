// Package shipping считает стоимость доставки заказа по весу корзины.
package shipping

import (
	"context"

	"github.com/rakibhasan/dokan/internal/domain"
)

// Zone — зона доставки, определяющая базовый тариф.
type Zone string

const (
	// ZoneInsideDhaka — доставка в пределах Дакки.
	ZoneInsideDhaka Zone = "inside_dhaka"
	// ZoneOutsideDhaka — доставка за пределы Дакки.
	ZoneOutsideDhaka Zone = "outside_dhaka"
)

// Valid проверяет, что зона известна.
func (z Zone) Valid() bool {
	return z == ZoneInsideDhaka || z == ZoneOutsideDhaka
}

// Quoter считает стоимость доставки по актуальным настройкам тарифа.
type Quoter struct {
	settings domain.ShippingSettingsRepository
}

// NewQuoter создаёт калькулятор доставки.
func NewQuoter(settings domain.ShippingSettingsRepository) *Quoter {
	return &Quoter{settings: settings}
}

// Quote возвращает стоимость доставки в минимальных единицах. Базовый
// тариф зоны покрывает первый килограмм; каждый начатый килограмм сверх
// первого добавляет PerKgMinor. Неизвестная зона тарифицируется как
// доставка за пределы Дакки.
func (q *Quoter) Quote(ctx context.Context, zone Zone, weightGrams int32) (int64, error) {
	settings, err := q.settings.Get(ctx)
	if err != nil {
		return 0, err
	}
	return Calculate(settings, zone, weightGrams), nil
}

// Calculate применяет тариф к весу без обращения к хранилищу.
func Calculate(settings domain.ShippingSettings, zone Zone, weightGrams int32) int64 {
	base := settings.BaseOutsideMinor
	if zone == ZoneInsideDhaka {
		base = settings.BaseInsideMinor
	}

	if weightGrams <= 1000 {
		return base
	}

	// Каждый начатый килограмм сверх первого.
	extraKg := int64((weightGrams - 1001) / 1000)
	return base + (extraKg+1)*settings.PerKgMinor
}
