package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/comptoirs/internal/domain"
	"github.com/vladislavdragonenkov/comptoirs/internal/metrics"
)

const (
	opCreateOrder = "create_order"
	opShipOrder   = "ship_order"
)

// Rules — параметры бизнес-правил создания заказа.
type Rules struct {
	// BulkThreshold — порог "крупного клиента". Скидка назначается при
	// строгом превышении: ровно BulkThreshold заказанных товаров скидки
	// не дают.
	BulkThreshold int64
	// BulkDiscount — скидка крупного клиента, точное десятичное значение.
	BulkDiscount decimal.Decimal
}

// DefaultRules возвращает правила по умолчанию: порог 100, скидка 0.15.
func DefaultRules() Rules {
	return Rules{
		BulkThreshold: 100,
		BulkDiscount:  decimal.RequireFromString("0.15"),
	}
}

// Service реализует операции создания и отправки заказа. Каждая операция
// выполняется в одной единице работы: либо фиксируются все мутации,
// либо ни одна.
type Service struct {
	uow     domain.UnitOfWork
	clock   domain.Clock
	rules   Rules
	logger  *log.Entry
	metrics *metrics.ServiceMetrics
}

// NewService конструирует сервис заказов с зависимостями.
func NewService(uow domain.UnitOfWork, clk domain.Clock, rules Rules, logger *log.Entry, m *metrics.ServiceMetrics) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "order-service")
	}
	if m == nil {
		m = metrics.NewServiceMetrics()
	}
	return &Service{
		uow:     uow,
		clock:   clk,
		rules:   rules,
		logger:  logger,
		metrics: m,
	}
}

// CreateOrder создаёт заказ для клиента, известного по коду.
// Адрес клиента копируется в адрес доставки по значению; если суммарное
// количество заказанных клиентом товаров строго превышает порог, заказу
// назначается скидка крупного клиента. Повторные вызовы создают новые
// заказы: идемпотентность не обещается.
func (s *Service) CreateOrder(ctx context.Context, customerCode string) (domain.Order, error) {
	started := time.Now()
	logger := s.logger.WithFields(log.Fields{
		"operation":     "CreateOrder",
		"operation_id":  uuid.NewString(),
		"customer_code": customerCode,
	})

	var created domain.Order
	err := s.uow.Within(ctx, func(ctx context.Context, g domain.Gateway) error {
		customer, err := g.FindCustomer(ctx, customerCode)
		if err != nil {
			return err
		}

		order := domain.Order{
			CustomerCode:    customer.Code,
			ShippingAddress: customer.Address,
			Discount:        decimal.Zero,
			CreatedAt:       time.Now().UTC(),
		}

		ordered, err := g.CountArticlesOrderedByCustomer(ctx, customer.Code)
		if err != nil {
			return err
		}
		if ordered > s.rules.BulkThreshold {
			order.Discount = s.rules.BulkDiscount
		}

		created, err = g.InsertOrder(ctx, order)
		return err
	})
	s.metrics.Observe(opCreateOrder, err, time.Since(started))
	if err != nil {
		logger.WithError(err).Warn("create order failed")
		return domain.Order{}, err
	}

	return created, nil
}

// ShipOrder регистрирует отправку заказа: проставляет дату "сегодня" и
// списывает со склада количество каждой позиции. Заказ и все затронутые
// товары фиксируются одной транзакцией.
func (s *Service) ShipOrder(ctx context.Context, number int64) (domain.Order, error) {
	started := time.Now()
	logger := s.logger.WithFields(log.Fields{
		"operation":    "ShipOrder",
		"operation_id": uuid.NewString(),
		"order_number": number,
	})

	var shipped domain.Order
	err := s.uow.Within(ctx, func(ctx context.Context, g domain.Gateway) error {
		order, err := g.FindOrder(ctx, number)
		if err != nil {
			return err
		}
		if order.Shipped() {
			return domain.ErrOrderAlreadyShipped
		}

		today := s.clock.Today()
		order.ShippedAt = &today

		// Сток зарезервирован при добавлении позиций, поэтому остаток
		// здесь повторно не проверяется и может уйти в минус.
		for _, line := range order.Lines {
			if err := g.AdjustProduct(ctx, line.ProductRef, -line.Quantity, 0); err != nil {
				return err
			}
		}

		if err := g.UpdateOrder(ctx, order); err != nil {
			return err
		}
		shipped = order
		return nil
	})
	s.metrics.Observe(opShipOrder, err, time.Since(started))
	if err != nil {
		logger.WithError(err).Warn("ship order failed")
		return domain.Order{}, err
	}

	return shipped, nil
}
