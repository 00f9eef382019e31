package domain

// Product — позиция каталога. Создаётся и сопровождается внешним
// инструментарием; ядро изменяет только складские счётчики.
type Product struct {
	// Ref — целочисленный ключ товара в каталоге.
	Ref int64
	// UnitsInStock — физический остаток на складе. Списывается только
	// при отправке заказа.
	UnitsInStock int32
	// UnitsOnOrder — суммарный резерв по открытым (неотправленным)
	// заказам. Растёт при добавлении позиции.
	UnitsOnOrder int32
}
