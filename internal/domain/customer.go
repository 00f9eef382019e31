package domain

// Address — почтовый адрес. При создании заказа адрес клиента копируется
// в адрес доставки по значению: последующие изменения адреса клиента
// на заказ не влияют.
type Address struct {
	Street  string
	City    string
	Zip     string
	Country string
}

// Customer представляет клиента каталога. Жизненным циклом клиентов
// управляет внешний инструментарий; ядро их только читает.
type Customer struct {
	// Code — строковый бизнес-ключ клиента (например, "2COM").
	Code    string
	Address Address
}
