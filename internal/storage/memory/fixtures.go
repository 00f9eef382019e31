package memory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/comptoirs/internal/domain"
)

// Эталонный набор данных, повторяющий sql/seed/test_data.sql хранилища
// postgres: два клиента, отправленные и открытый заказы, товары 93..97.
const (
	SmallCustomerCode = "0COM"
	BulkCustomerCode  = "2COM"

	OpenOrderNumber    int64 = 99998
	ShippedOrderNumber int64 = 99999

	AvailableProductRef   int64 = 93
	UnavailableProductRef int64 = 97
)

// NewReferenceStore возвращает in-memory хранилище, заполненное эталонным
// набором данных для тестов сервисного слоя.
func NewReferenceStore() *Store {
	s := NewStore()

	s.PutCustomer(domain.Customer{
		Code:    SmallCustomerCode,
		Address: domain.Address{Street: "Obere Str. 57", City: "Berlin", Zip: "12209", Country: "Germany"},
	})
	s.PutCustomer(domain.Customer{
		Code:    BulkCustomerCode,
		Address: domain.Address{Street: "24 place Kleber", City: "Strasbourg", Zip: "67000", Country: "France"},
	})

	// Товары 93..96 участвуют в открытом заказе: после его отправки
	// остаток каждого должен стать равным 10. Товар 97 отсутствует на складе.
	s.PutProduct(domain.Product{Ref: 93, UnitsInStock: 20, UnitsOnOrder: 10})
	s.PutProduct(domain.Product{Ref: 94, UnitsInStock: 15, UnitsOnOrder: 5})
	s.PutProduct(domain.Product{Ref: 95, UnitsInStock: 12, UnitsOnOrder: 2})
	s.PutProduct(domain.Product{Ref: 96, UnitsInStock: 11, UnitsOnOrder: 1})
	s.PutProduct(domain.Product{Ref: UnavailableProductRef, UnitsInStock: 0, UnitsOnOrder: 0})

	// Небольшой клиент: единственный давно отправленный заказ на 2 единицы.
	smallShipped := date(2017, time.May, 10)
	s.PutOrder(domain.Order{
		Number:          99996,
		CustomerCode:    SmallCustomerCode,
		ShippingAddress: domain.Address{Street: "Obere Str. 57", City: "Berlin", Zip: "12209", Country: "Germany"},
		Discount:        decimal.Zero,
		ShippedAt:       &smallShipped,
		Lines: []domain.Line{
			{ID: 1, OrderNumber: 99996, ProductRef: 96, Quantity: 2},
		},
		CreatedAt: smallShipped.AddDate(0, 0, -3),
	})

	// Крупный клиент: отправленный заказ на 110 единиц плюс открытый заказ,
	// в сумме строго больше 100 заказанных товаров за всё время.
	bulkShipped := date(2023, time.January, 15)
	s.PutOrder(domain.Order{
		Number:          ShippedOrderNumber,
		CustomerCode:    BulkCustomerCode,
		ShippingAddress: domain.Address{Street: "24 place Kleber", City: "Strasbourg", Zip: "67000", Country: "France"},
		Discount:        decimal.Zero,
		ShippedAt:       &bulkShipped,
		Lines: []domain.Line{
			{ID: 2, OrderNumber: ShippedOrderNumber, ProductRef: UnavailableProductRef, Quantity: 110},
		},
		CreatedAt: bulkShipped.AddDate(0, 0, -7),
	})
	s.PutOrder(domain.Order{
		Number:          OpenOrderNumber,
		CustomerCode:    BulkCustomerCode,
		ShippingAddress: domain.Address{Street: "24 place Kleber", City: "Strasbourg", Zip: "67000", Country: "France"},
		Discount:        decimal.Zero,
		Lines: []domain.Line{
			{ID: 3, OrderNumber: OpenOrderNumber, ProductRef: 93, Quantity: 10},
			{ID: 4, OrderNumber: OpenOrderNumber, ProductRef: 94, Quantity: 5},
			{ID: 5, OrderNumber: OpenOrderNumber, ProductRef: 95, Quantity: 2},
			{ID: 6, OrderNumber: OpenOrderNumber, ProductRef: 96, Quantity: 1},
		},
		CreatedAt: date(2024, time.February, 1),
	})

	// Номер 100000 зарезервирован тестами как несуществующий заказ,
	// поэтому генерация ключей продолжается со 100001.
	s.mu.Lock()
	s.data.nextOrderNumber = 100001
	s.mu.Unlock()

	return s
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
