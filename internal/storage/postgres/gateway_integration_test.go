package postgres

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/comptoirs/internal/clock"
	"github.com/vladislavdragonenkov/comptoirs/internal/domain"
	"github.com/vladislavdragonenkov/comptoirs/internal/service/line"
	"github.com/vladislavdragonenkov/comptoirs/internal/service/order"
)

func TestGatewayFindCustomer_Integration(t *testing.T) {
	store := openSeededStoreForIntegrationTest(t)
	uow := NewUnitOfWork(store)

	err := uow.Within(context.Background(), func(ctx context.Context, g domain.Gateway) error {
		customer, err := g.FindCustomer(ctx, "0COM")
		if err != nil {
			return err
		}
		if customer.Address.City != "Berlin" {
			t.Fatalf("expected city Berlin, got %s", customer.Address.City)
		}

		if _, err := g.FindCustomer(ctx, "9COM"); !errors.Is(err, domain.ErrCustomerNotFound) {
			t.Fatalf("expected ErrCustomerNotFound, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unit of work failed: %v", err)
	}
}

func TestGatewayFindOrderLoadsLines_Integration(t *testing.T) {
	store := openSeededStoreForIntegrationTest(t)
	uow := NewUnitOfWork(store)

	err := uow.Within(context.Background(), func(ctx context.Context, g domain.Gateway) error {
		order, err := g.FindOrder(ctx, 99998)
		if err != nil {
			return err
		}
		if order.Shipped() {
			t.Fatal("order 99998 must be open")
		}
		if len(order.Lines) != 4 {
			t.Fatalf("expected 4 lines, got %d", len(order.Lines))
		}

		shipped, err := g.FindOrder(ctx, 99999)
		if err != nil {
			return err
		}
		if !shipped.Shipped() {
			t.Fatal("order 99999 must be shipped")
		}

		if _, err := g.FindOrder(ctx, 100000); !errors.Is(err, domain.ErrOrderNotFound) {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unit of work failed: %v", err)
	}
}

func TestGatewayCountArticles_Integration(t *testing.T) {
	store := openSeededStoreForIntegrationTest(t)
	uow := NewUnitOfWork(store)

	err := uow.Within(context.Background(), func(ctx context.Context, g domain.Gateway) error {
		bulk, err := g.CountArticlesOrderedByCustomer(ctx, "2COM")
		if err != nil {
			return err
		}
		if bulk != 128 {
			t.Fatalf("expected lifetime count 128 for 2COM, got %d", bulk)
		}

		small, err := g.CountArticlesOrderedByCustomer(ctx, "0COM")
		if err != nil {
			return err
		}
		if small != 2 {
			t.Fatalf("expected lifetime count 2 for 0COM, got %d", small)
		}

		none, err := g.CountArticlesOrderedByCustomer(ctx, "9COM")
		if err != nil {
			return err
		}
		if none != 0 {
			t.Fatalf("expected 0 for unknown customer, got %d", none)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unit of work failed: %v", err)
	}
}

func TestGatewayInsertOrderAndLine_Integration(t *testing.T) {
	store := openSeededStoreForIntegrationTest(t)
	uow := NewUnitOfWork(store)

	var number int64
	err := uow.Within(context.Background(), func(ctx context.Context, g domain.Gateway) error {
		order, err := g.InsertOrder(ctx, domain.Order{
			CustomerCode:    "0COM",
			ShippingAddress: domain.Address{City: "Berlin"},
			Discount:        decimal.Zero,
		})
		if err != nil {
			return err
		}
		if order.Number <= 100000 {
			t.Fatalf("expected server-assigned number above 100000, got %d", order.Number)
		}
		number = order.Number

		line, err := g.InsertLine(ctx, domain.Line{OrderNumber: order.Number, ProductRef: 93, Quantity: 3})
		if err != nil {
			return err
		}
		if line.ID == 0 {
			t.Fatal("expected assigned line id")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unit of work failed: %v", err)
	}

	// Изменения видны из следующей единицы работы.
	err = uow.Within(context.Background(), func(ctx context.Context, g domain.Gateway) error {
		order, err := g.FindOrder(ctx, number)
		if err != nil {
			return err
		}
		if len(order.Lines) != 1 {
			t.Fatalf("expected 1 committed line, got %d", len(order.Lines))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unit of work failed: %v", err)
	}
}

func TestGatewayUpdatesRollBackOnError_Integration(t *testing.T) {
	store := openSeededStoreForIntegrationTest(t)
	uow := NewUnitOfWork(store)

	forced := errors.New("forced failure")
	day := time.Date(2024, time.June, 7, 0, 0, 0, 0, time.UTC)

	err := uow.Within(context.Background(), func(ctx context.Context, g domain.Gateway) error {
		if err := g.AdjustProduct(ctx, 93, -19, 0); err != nil {
			return err
		}

		order, err := g.FindOrder(ctx, 99998)
		if err != nil {
			return err
		}
		order.ShippedAt = &day
		if err := g.UpdateOrder(ctx, order); err != nil {
			return err
		}
		return forced
	})
	if !errors.Is(err, forced) {
		t.Fatalf("expected forced failure, got %v", err)
	}

	err = uow.Within(context.Background(), func(ctx context.Context, g domain.Gateway) error {
		product, err := g.FindProduct(ctx, 93)
		if err != nil {
			return err
		}
		if product.UnitsInStock != 20 {
			t.Fatalf("expected stock 20 after rollback, got %d", product.UnitsInStock)
		}

		order, err := g.FindOrder(ctx, 99998)
		if err != nil {
			return err
		}
		if order.Shipped() {
			t.Fatal("shipped date must be rolled back")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unit of work failed: %v", err)
	}
}

func TestGatewayShipDateIsConditional_Integration(t *testing.T) {
	store := openSeededStoreForIntegrationTest(t)
	uow := NewUnitOfWork(store)

	day := time.Date(2024, time.June, 7, 0, 0, 0, 0, time.UTC)
	err := uow.Within(context.Background(), func(ctx context.Context, g domain.Gateway) error {
		order, err := g.FindOrder(ctx, 99999)
		if err != nil {
			return err
		}
		order.ShippedAt = &day
		return g.UpdateOrder(ctx, order)
	})
	if !errors.Is(err, domain.ErrOrderAlreadyShipped) {
		t.Fatalf("expected ErrOrderAlreadyShipped, got %v", err)
	}

	// Исходная дата отправки не затёрта.
	err = uow.Within(context.Background(), func(ctx context.Context, g domain.Gateway) error {
		order, err := g.FindOrder(ctx, 99999)
		if err != nil {
			return err
		}
		if !order.ShippedAt.Equal(time.Date(2023, time.January, 15, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("original ship date must survive, got %v", order.ShippedAt)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unit of work failed: %v", err)
	}
}

func TestConcurrentShipCommitsAtMostOnce_Integration(t *testing.T) {
	store := openSeededStoreForIntegrationTest(t)

	logger := log.New()
	logger.SetOutput(io.Discard)
	entry := log.NewEntry(logger)

	day := time.Date(2024, time.June, 7, 0, 0, 0, 0, time.UTC)
	svc := order.NewService(NewUnitOfWork(store), clock.Fixed(day), order.DefaultRules(), entry, nil)

	// Обе отправки читают ещё не отправленный заказ; зафиксироваться
	// должна ровно одна, проигравшая видит AlreadyShipped или Conflict.
	start := make(chan struct{})
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			<-start
			_, err := svc.ShipOrder(context.Background(), 99998)
			results <- err
		}()
	}
	close(start)

	var succeeded, rejected int
	for i := 0; i < 2; i++ {
		err := <-results
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrOrderAlreadyShipped), errors.Is(err, domain.ErrConflict):
			rejected++
		default:
			t.Fatalf("unexpected shipment error: %v", err)
		}
	}
	if succeeded != 1 || rejected != 1 {
		t.Fatalf("expected exactly one committed shipment, got %d ok / %d rejected", succeeded, rejected)
	}

	// Списание произошло ровно один раз: остаток каждого товара заказа 10.
	uow := NewUnitOfWork(store)
	err := uow.Within(context.Background(), func(ctx context.Context, g domain.Gateway) error {
		for _, ref := range []int64{93, 94, 95, 96} {
			product, err := g.FindProduct(ctx, ref)
			if err != nil {
				return err
			}
			if product.UnitsInStock != 10 {
				t.Fatalf("product %d: expected stock 10 after single shipment, got %d", ref, product.UnitsInStock)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unit of work failed: %v", err)
	}
}

func TestConcurrentReservationsBothCommit_Integration(t *testing.T) {
	store := openSeededStoreForIntegrationTest(t)

	logger := log.New()
	logger.SetOutput(io.Discard)
	entry := log.NewEntry(logger)

	svc := line.NewService(NewUnitOfWork(store), entry, nil)

	// Конкурентные резервы одного товара сериализуются блокировкой строки:
	// обе позиции фиксируются, счётчик растёт на сумму количеств.
	start := make(chan struct{})
	results := make(chan error, 2)
	for _, quantity := range []int32{2, 3} {
		go func(quantity int32) {
			<-start
			_, err := svc.AddLine(context.Background(), 99998, 93, quantity)
			results <- err
		}(quantity)
	}
	close(start)

	for i := 0; i < 2; i++ {
		if err := <-results; err != nil {
			t.Fatalf("add line failed: %v", err)
		}
	}

	uow := NewUnitOfWork(store)
	err := uow.Within(context.Background(), func(ctx context.Context, g domain.Gateway) error {
		product, err := g.FindProduct(ctx, 93)
		if err != nil {
			return err
		}
		if product.UnitsOnOrder != 15 {
			t.Fatalf("expected reservation 10+2+3=15, got %d", product.UnitsOnOrder)
		}
		if product.UnitsInStock != 20 {
			t.Fatalf("stock must be untouched by reservations, got %d", product.UnitsInStock)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unit of work failed: %v", err)
	}
}

func TestGatewayUpdateMissingRows_Integration(t *testing.T) {
	store := openSeededStoreForIntegrationTest(t)
	uow := NewUnitOfWork(store)

	err := uow.Within(context.Background(), func(ctx context.Context, g domain.Gateway) error {
		if err := g.AdjustProduct(ctx, 100, 0, 1); !errors.Is(err, domain.ErrProductNotFound) {
			t.Fatalf("expected ErrProductNotFound, got %v", err)
		}
		if err := g.UpdateOrder(ctx, domain.Order{Number: 100000}); !errors.Is(err, domain.ErrOrderNotFound) {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unit of work failed: %v", err)
	}
}
