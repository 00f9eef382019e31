package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/comptoirs/internal/domain"
)

// dataset — полное состояние in-memory хранилища.
type dataset struct {
	customers map[string]domain.Customer
	orders    map[int64]domain.Order
	products  map[int64]domain.Product

	nextOrderNumber int64
	nextLineID      int64
}

func newDataset() *dataset {
	return &dataset{
		customers:       make(map[string]domain.Customer),
		orders:          make(map[int64]domain.Order),
		products:        make(map[int64]domain.Product),
		nextOrderNumber: 1,
		nextLineID:      1,
	}
}

// clone делает глубокую копию состояния, включая срезы позиций.
func (d *dataset) clone() *dataset {
	next := &dataset{
		customers:       make(map[string]domain.Customer, len(d.customers)),
		orders:          make(map[int64]domain.Order, len(d.orders)),
		products:        make(map[int64]domain.Product, len(d.products)),
		nextOrderNumber: d.nextOrderNumber,
		nextLineID:      d.nextLineID,
	}
	for code, customer := range d.customers {
		next.customers[code] = customer
	}
	for number, order := range d.orders {
		next.orders[number] = copyOrder(order)
	}
	for ref, product := range d.products {
		next.products[ref] = product
	}
	return next
}

func copyOrder(order domain.Order) domain.Order {
	if order.ShippedAt != nil {
		day := *order.ShippedAt
		order.ShippedAt = &day
	}
	if order.Lines != nil {
		lines := make([]domain.Line, len(order.Lines))
		copy(lines, order.Lines)
		order.Lines = lines
	}
	return order
}

// Store — in-memory реализация единицы работы для локальной разработки
// и тестов. Замыкание выполняется над глубокой копией состояния, которая
// подменяет оригинал только при успешном завершении, поэтому откат
// действительно не оставляет следов.
type Store struct {
	mu   sync.Mutex
	data *dataset
}

// NewStore возвращает пустое in-memory хранилище.
func NewStore() *Store {
	return &Store{data: newDataset()}
}

// Within выполняет fn внутри одной единицы работы.
func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, g domain.Gateway) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(ctx, &gateway{data: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.data = work
	return nil
}

// PutCustomer добавляет клиента напрямую, минуя единицу работы.
// Роль внешнего инструментария, владеющего жизненным циклом клиентов.
func (s *Store) PutCustomer(customer domain.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.customers[customer.Code] = customer
}

// PutProduct добавляет товар напрямую, минуя единицу работы.
func (s *Store) PutProduct(product domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.products[product.Ref] = product
}

// PutOrder добавляет заказ с уже присвоенным номером и позициями.
// Счётчики генерации ключей сдвигаются за максимальные занятые значения.
func (s *Store) PutOrder(order domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.orders[order.Number] = copyOrder(order)
	if order.Number >= s.data.nextOrderNumber {
		s.data.nextOrderNumber = order.Number + 1
	}
	for _, line := range order.Lines {
		if line.ID >= s.data.nextLineID {
			s.data.nextLineID = line.ID + 1
		}
	}
}

// Customer возвращает снимок клиента вне единицы работы.
func (s *Store) Customer(code string) (domain.Customer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	customer, ok := s.data.customers[code]
	return customer, ok
}

// Order возвращает снимок заказа вне единицы работы.
func (s *Store) Order(number int64) (domain.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.data.orders[number]
	if !ok {
		return domain.Order{}, false
	}
	return copyOrder(order), true
}

// Product возвращает снимок товара вне единицы работы.
func (s *Store) Product(ref int64) (domain.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	product, ok := s.data.products[ref]
	return product, ok
}

var _ domain.UnitOfWork = (*Store)(nil)

// gateway реализует domain.Gateway поверх рабочей копии dataset.
type gateway struct {
	data *dataset
}

func (g *gateway) FindCustomer(_ context.Context, code string) (domain.Customer, error) {
	customer, ok := g.data.customers[code]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return customer, nil
}

func (g *gateway) FindOrder(_ context.Context, number int64) (domain.Order, error) {
	order, ok := g.data.orders[number]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return copyOrder(order), nil
}

func (g *gateway) FindProduct(_ context.Context, ref int64) (domain.Product, error) {
	product, ok := g.data.products[ref]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

func (g *gateway) CountArticlesOrderedByCustomer(_ context.Context, code string) (int64, error) {
	var total int64
	for _, order := range g.data.orders {
		if order.CustomerCode != code {
			continue
		}
		for _, line := range order.Lines {
			total += int64(line.Quantity)
		}
	}
	return total, nil
}

func (g *gateway) InsertOrder(_ context.Context, order domain.Order) (domain.Order, error) {
	order.Number = g.data.nextOrderNumber
	g.data.nextOrderNumber++
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	g.data.orders[order.Number] = copyOrder(order)
	return order, nil
}

func (g *gateway) InsertLine(_ context.Context, line domain.Line) (domain.Line, error) {
	order, ok := g.data.orders[line.OrderNumber]
	if !ok {
		return domain.Line{}, domain.ErrOrderNotFound
	}
	if _, ok := g.data.products[line.ProductRef]; !ok {
		return domain.Line{}, domain.ErrProductNotFound
	}

	line.ID = g.data.nextLineID
	g.data.nextLineID++
	order.Lines = append(order.Lines, line)
	g.data.orders[order.Number] = order
	return line, nil
}

func (g *gateway) AdjustProduct(_ context.Context, ref int64, stockDelta, onOrderDelta int32) error {
	product, ok := g.data.products[ref]
	if !ok {
		return domain.ErrProductNotFound
	}
	product.UnitsInStock += stockDelta
	product.UnitsOnOrder += onOrderDelta
	g.data.products[ref] = product
	return nil
}

func (g *gateway) UpdateOrder(_ context.Context, order domain.Order) error {
	current, ok := g.data.orders[order.Number]
	if !ok {
		return domain.ErrOrderNotFound
	}
	// Проставить дату отправки может только одна единица работы.
	if order.ShippedAt != nil && current.ShippedAt != nil {
		return domain.ErrOrderAlreadyShipped
	}
	// Позиции принадлежат заказу, но изменяются только через InsertLine.
	order.Lines = current.Lines
	g.data.orders[order.Number] = copyOrder(order)
	return nil
}

var _ domain.Gateway = (*gateway)(nil)
