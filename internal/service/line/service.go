package line

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/comptoirs/internal/domain"
	"github.com/vladislavdragonenkov/comptoirs/internal/metrics"
)

const opAddLine = "add_line"

// Service реализует добавление позиции к открытому заказу.
type Service struct {
	uow     domain.UnitOfWork
	logger  *log.Entry
	metrics *metrics.ServiceMetrics
}

// NewService конструирует сервис позиций с зависимостями.
func NewService(uow domain.UnitOfWork, logger *log.Entry, m *metrics.ServiceMetrics) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "line-service")
	}
	if m == nil {
		m = metrics.NewServiceMetrics()
	}
	return &Service{
		uow:     uow,
		logger:  logger,
		metrics: m,
	}
}

// AddLine добавляет позицию (товар, количество) к открытому заказу,
// увеличивает резерв товара units-on-order и возвращает сохранённую
// позицию с присвоенным ключом. Физический остаток на складе при этом
// не меняется: списание происходит только при отправке заказа.
func (s *Service) AddLine(ctx context.Context, orderNumber, productRef int64, quantity int32) (domain.Line, error) {
	started := time.Now()
	logger := s.logger.WithFields(log.Fields{
		"operation":    "AddLine",
		"operation_id": uuid.NewString(),
		"order_number": orderNumber,
		"product_ref":  productRef,
	})

	// Декларативная проверка аргументов до бизнес-правил: ошибка
	// категории Validation, отличимая от нарушений правил.
	if quantity <= 0 {
		s.metrics.Observe(opAddLine, domain.ErrQuantityNotPositive, time.Since(started))
		logger.WithField("quantity", quantity).Warn("add line rejected: quantity must be positive")
		return domain.Line{}, domain.ErrQuantityNotPositive
	}

	var inserted domain.Line
	err := s.uow.Within(ctx, func(ctx context.Context, g domain.Gateway) error {
		// Порядок проверок наблюдаем снаружи: отсутствие товара
		// сообщается раньше любых претензий к заказу.
		product, err := g.FindProduct(ctx, productRef)
		if err != nil {
			return err
		}
		order, err := g.FindOrder(ctx, orderNumber)
		if err != nil {
			return err
		}
		if order.Shipped() {
			return domain.ErrOrderAlreadyShipped
		}
		if product.UnitsInStock < quantity {
			return domain.ErrInsufficientStock
		}

		inserted, err = g.InsertLine(ctx, domain.Line{
			OrderNumber: order.Number,
			ProductRef:  product.Ref,
			Quantity:    quantity,
		})
		if err != nil {
			return err
		}

		return g.AdjustProduct(ctx, product.Ref, 0, quantity)
	})
	s.metrics.Observe(opAddLine, err, time.Since(started))
	if err != nil {
		logger.WithError(err).Warn("add line failed")
		return domain.Line{}, err
	}

	return inserted, nil
}
