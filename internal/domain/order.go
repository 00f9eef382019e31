package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Line — одна позиция заказа: товар и его количество.
// Позиции создаются один раз и дальше не изменяются и не удаляются.
type Line struct {
	// ID присваивается хранилищем при вставке.
	ID          int64
	OrderNumber int64
	ProductRef  int64
	// Quantity — количество единиц товара, строго положительное.
	Quantity int32
}

// Order агрегирует заказ клиента и его позиции.
type Order struct {
	// Number присваивается хранилищем при вставке.
	Number       int64
	CustomerCode string
	// ShippingAddress — адрес доставки, скопированный из адреса клиента
	// в момент создания заказа.
	ShippingAddress Address
	// Discount — фиксированная скидка, назначается ровно один раз при
	// создании и операциями ядра больше не меняется.
	Discount decimal.Decimal
	// ShippedAt — календарная дата отправки; nil означает открытый заказ.
	ShippedAt *time.Time
	Lines     []Line
	CreatedAt time.Time
}

// Shipped сообщает, отправлен ли заказ. Отправленный заказ неизменяем:
// к нему нельзя добавить позицию и его нельзя отправить повторно.
func (o *Order) Shipped() bool {
	return o.ShippedAt != nil
}
