package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/comptoirs/internal/domain"
)

const opTimeout = 5 * time.Second

// UnitOfWork открывает одну SQL-транзакцию на сервисный вызов и передаёт
// в замыкание шлюз, привязанный к этой транзакции.
type UnitOfWork struct {
	db *sql.DB
}

// NewUnitOfWork создаёт PostgreSQL-реализацию domain.UnitOfWork.
func NewUnitOfWork(store *Store) *UnitOfWork {
	return &UnitOfWork{db: store.DB()}
}

// Within выполняет fn внутри транзакции: commit при nil-результате,
// rollback при любой ошибке. Конфликты записи, которые отдаёт база,
// транслируются в domain.ErrConflict.
func (u *UnitOfWork) Within(ctx context.Context, fn func(ctx context.Context, g domain.Gateway) error) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(ctx, &gateway{tx: tx}); err != nil {
		_ = tx.Rollback()
		return mapWriteError(err)
	}

	if err := tx.Commit(); err != nil {
		return mapWriteError(fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

var _ domain.UnitOfWork = (*UnitOfWork)(nil)

// gateway выполняет одиночные чтения и записи в рамках активной транзакции.
type gateway struct {
	tx *sql.Tx
}

func (g *gateway) FindCustomer(ctx context.Context, code string) (domain.Customer, error) {
	var customer domain.Customer
	err := g.tx.QueryRowContext(ctx, `
		SELECT code, street, city, zip, country
		FROM customers
		WHERE code = $1
	`, code).Scan(
		&customer.Code,
		&customer.Address.Street, &customer.Address.City,
		&customer.Address.Zip, &customer.Address.Country,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		return domain.Customer{}, fmt.Errorf("select customer: %w", err)
	}
	return customer, nil
}

func (g *gateway) FindOrder(ctx context.Context, number int64) (domain.Order, error) {
	var (
		order     domain.Order
		shippedOn sql.NullTime
	)
	err := g.tx.QueryRowContext(ctx, `
		SELECT number, customer_code,
		       ship_street, ship_city, ship_zip, ship_country,
		       discount, shipped_on, created_at
		FROM orders
		WHERE number = $1
	`, number).Scan(
		&order.Number, &order.CustomerCode,
		&order.ShippingAddress.Street, &order.ShippingAddress.City,
		&order.ShippingAddress.Zip, &order.ShippingAddress.Country,
		&order.Discount, &shippedOn, &order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}
	if shippedOn.Valid {
		day := shippedOn.Time
		order.ShippedAt = &day
	}

	lines, err := g.loadLines(ctx, order.Number)
	if err != nil {
		return domain.Order{}, err
	}
	order.Lines = lines

	return order, nil
}

func (g *gateway) FindProduct(ctx context.Context, ref int64) (domain.Product, error) {
	var product domain.Product
	err := g.tx.QueryRowContext(ctx, `
		SELECT ref, units_in_stock, units_on_order
		FROM products
		WHERE ref = $1
	`, ref).Scan(&product.Ref, &product.UnitsInStock, &product.UnitsOnOrder)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}
	return product, nil
}

func (g *gateway) CountArticlesOrderedByCustomer(ctx context.Context, code string) (int64, error) {
	var total int64
	err := g.tx.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(l.quantity), 0)
		FROM order_lines l
		JOIN orders o ON o.number = l.order_number
		WHERE o.customer_code = $1
	`, code).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count ordered articles: %w", err)
	}
	return total, nil
}

func (g *gateway) InsertOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}

	err := g.tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			customer_code,
			ship_street, ship_city, ship_zip, ship_country,
			discount, shipped_on, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING number
	`,
		order.CustomerCode,
		order.ShippingAddress.Street, order.ShippingAddress.City,
		order.ShippingAddress.Zip, order.ShippingAddress.Country,
		order.Discount, shippedOnValue(order), order.CreatedAt,
	).Scan(&order.Number)
	if err != nil {
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}
	return order, nil
}

func (g *gateway) InsertLine(ctx context.Context, line domain.Line) (domain.Line, error) {
	err := g.tx.QueryRowContext(ctx, `
		INSERT INTO order_lines (order_number, product_ref, quantity)
		VALUES ($1, $2, $3)
		RETURNING id
	`, line.OrderNumber, line.ProductRef, line.Quantity).Scan(&line.ID)
	if err != nil {
		return domain.Line{}, fmt.Errorf("insert line: %w", err)
	}
	return line, nil
}

func (g *gateway) AdjustProduct(ctx context.Context, ref int64, stockDelta, onOrderDelta int32) error {
	// Относительная запись: конкурентные изменения одного товара
	// сериализуются блокировкой строки, потерянных обновлений нет.
	res, err := g.tx.ExecContext(ctx, `
		UPDATE products
		SET units_in_stock = units_in_stock + $1,
		    units_on_order = units_on_order + $2
		WHERE ref = $3
	`, stockDelta, onOrderDelta, ref)
	if err != nil {
		return fmt.Errorf("adjust product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (g *gateway) UpdateOrder(ctx context.Context, order domain.Order) error {
	query := `
		UPDATE orders
		SET ship_street = $1,
		    ship_city = $2,
		    ship_zip = $3,
		    ship_country = $4,
		    discount = $5,
		    shipped_on = $6
		WHERE number = $7
	`
	// Переход в состояние "отправлен" условный: при конкурентных отправках
	// одного заказа перечитанное после блокировки строки условие отсекает
	// проигравшую транзакцию нулём затронутых строк.
	if order.ShippedAt != nil {
		query += ` AND shipped_on IS NULL`
	}

	res, err := g.tx.ExecContext(ctx, query,
		order.ShippingAddress.Street, order.ShippingAddress.City,
		order.ShippingAddress.Zip, order.ShippingAddress.Country,
		order.Discount, shippedOnValue(order), order.Number,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		if order.ShippedAt != nil {
			var exists bool
			err := g.tx.QueryRowContext(ctx, `
				SELECT EXISTS (SELECT 1 FROM orders WHERE number = $1)
			`, order.Number).Scan(&exists)
			if err != nil {
				return fmt.Errorf("check order existence: %w", err)
			}
			if exists {
				return domain.ErrOrderAlreadyShipped
			}
		}
		return domain.ErrOrderNotFound
	}
	return nil
}

func (g *gateway) loadLines(ctx context.Context, orderNumber int64) ([]domain.Line, error) {
	rows, err := g.tx.QueryContext(ctx, `
		SELECT id, order_number, product_ref, quantity
		FROM order_lines
		WHERE order_number = $1
		ORDER BY id ASC
	`, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("load order lines: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.Line, 0)
	for rows.Next() {
		var line domain.Line
		if err := rows.Scan(&line.ID, &line.OrderNumber, &line.ProductRef, &line.Quantity); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order lines: %w", err)
	}
	return lines, nil
}

func shippedOnValue(order domain.Order) any {
	if order.ShippedAt == nil {
		return nil
	}
	return *order.ShippedAt
}

// mapWriteError транслирует конфликтные коды PostgreSQL в domain.ErrConflict:
// unique_violation, serialization_failure и deadlock_detected означают
// проигранную конкурентную запись.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", "40001", "40P01":
			return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.Code)
		}
	}
	return err
}

var _ domain.Gateway = (*gateway)(nil)
