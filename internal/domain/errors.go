package domain

import "errors"

var (
	// Ошибка некорректного количества на границе вызова (<= 0).
	ErrQuantityNotPositive = errors.New("quantity must be greater than zero")
	// ErrCustomerNotFound возвращается, если клиент не найден.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrOrderNotFound возвращается, если заказ не найден.
	ErrOrderNotFound = errors.New("order not found")
	// ErrProductNotFound возвращается, если товар не найден в каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrOrderAlreadyShipped — попытка изменить уже отправленный заказ.
	ErrOrderAlreadyShipped = errors.New("order already shipped")
	// ErrInsufficientStock — на складе меньше товара, чем запрошено в позиции.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrConflict — конкурентная запись, обнаруженная хранилищем.
	ErrConflict = errors.New("write conflict")
)

// Kind — категория ошибки, публикуемая внешнему слою. Сообщения ошибок
// носят справочный характер: вызывающая сторона ветвится по категории,
// а не по тексту.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindNotFound       Kind = "not_found"
	KindAlreadyShipped Kind = "already_shipped"
	KindInvalid        Kind = "invalid"
	KindConflict       Kind = "conflict"
	KindInternal       Kind = "internal"
)

// KindOf классифицирует ошибку по таксономии. Всё, что не распознано,
// считается инфраструктурной ошибкой KindInternal.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrQuantityNotPositive):
		return KindValidation
	case errors.Is(err, ErrCustomerNotFound),
		errors.Is(err, ErrOrderNotFound),
		errors.Is(err, ErrProductNotFound):
		return KindNotFound
	case errors.Is(err, ErrOrderAlreadyShipped):
		return KindAlreadyShipped
	case errors.Is(err, ErrInsufficientStock):
		return KindInvalid
	case errors.Is(err, ErrConflict):
		return KindConflict
	default:
		return KindInternal
	}
}

// IsNotFound проверяет, относится ли ошибка к категории NotFound.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
