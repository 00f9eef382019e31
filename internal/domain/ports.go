package domain

import (
	"context"
	"time"
)

// Gateway — узкий шлюз персистентности над четырьмя сущностями схемы
// продаж. Каждый метод — одно логическое чтение или запись; бизнес-правил
// здесь нет. Все вызовы выполняются внутри активной единицы работы.
type Gateway interface {
	// FindCustomer возвращает клиента или ErrCustomerNotFound.
	FindCustomer(ctx context.Context, code string) (Customer, error)
	// FindOrder возвращает заказ вместе с позициями или ErrOrderNotFound.
	FindOrder(ctx context.Context, number int64) (Order, error)
	// FindProduct возвращает товар или ErrProductNotFound.
	FindProduct(ctx context.Context, ref int64) (Product, error)
	// CountArticlesOrderedByCustomer считает суммарное количество товаров
	// по всем заказам клиента за всё время, включая уже отправленные.
	CountArticlesOrderedByCustomer(ctx context.Context, code string) (int64, error)
	// InsertOrder сохраняет новый заказ и возвращает его с присвоенным номером.
	InsertOrder(ctx context.Context, order Order) (Order, error)
	// InsertLine сохраняет новую позицию и возвращает её с присвоенным ID.
	InsertLine(ctx context.Context, line Line) (Line, error)
	// AdjustProduct относительно изменяет складские счётчики товара.
	// Относительная запись сохраняет корректность счётчиков при
	// конкурентных изменениях одного товара.
	AdjustProduct(ctx context.Context, ref int64, stockDelta, onOrderDelta int32) error
	// UpdateOrder записывает изменённое состояние заказа. Проставление даты
	// отправки условно: если заказ уже отправлен, возвращается
	// ErrOrderAlreadyShipped, поэтому из конкурентных отправок фиксируется
	// не более одной.
	UpdateOrder(ctx context.Context, order Order) error
}

// UnitOfWork ограничивает каждый сервисный вызов ровно одной транзакцией.
type UnitOfWork interface {
	// Within открывает транзакцию, передаёт привязанный к ней Gateway в fn
	// и фиксирует изменения при nil-результате. Любая ошибка приводит к
	// откату: ни одна мутация не становится видимой. Конфликты записи на
	// уровне хранилища возвращаются как ErrConflict. Вложенные вызовы не
	// поддерживаются.
	Within(ctx context.Context, fn func(ctx context.Context, g Gateway) error) error
}

// Clock выдаёт календарную дату "сегодня" в настроенном часовом поясе.
// Интерфейс внедряется, чтобы дата отправки заказа была детерминированной
// в тестах.
type Clock interface {
	Today() time.Time
}
