package uow

import (
	"context"

	"github.com/corray333/food-delivery/internal/dal/interfaces/icatalogrepo"
	"github.com/corray333/food-delivery/internal/dal/interfaces/iorderitemrepo"
	"github.com/corray333/food-delivery/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/food-delivery/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/food-delivery/internal/dal/postgres"
	catalogrepo "github.com/corray333/food-delivery/internal/dal/repositories/catalog/postgres"
	orderrepo "github.com/corray333/food-delivery/internal/dal/repositories/order/postgres"
	orderitemrepo "github.com/corray333/food-delivery/internal/dal/repositories/orderitem/postgres"
	outboxrepo "github.com/corray333/food-delivery/internal/dal/repositories/outbox/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// unitOfWork hands out repositories bound to the pool, or to a single
// transaction after Begin. Order placement deliberately runs its two
// phases outside a transaction and compensates explicitly; the
// compensation itself runs transacted via Begin.
type unitOfWork struct {
	pool *pgxpool.Pool
	tx   pgx.Tx

	orderRepo     iorderrepo.IOrderRepository
	orderItemRepo iorderitemrepo.IOrderItemRepository
	catalogRepo   icatalogrepo.ICatalogRepository
	outboxRepo    ioutboxrepo.IOutboxRepository
}

func NewUnitOfWork(client *postgres.Client) *unitOfWork {
	pool := client.Pool()

	return &unitOfWork{
		pool:          pool,
		orderRepo:     orderrepo.NewPostgresOrderRepository(pool),
		orderItemRepo: orderitemrepo.NewPostgresOrderItemRepository(pool),
		catalogRepo:   catalogrepo.NewPostgresCatalogRepository(pool),
		outboxRepo:    outboxrepo.NewPostgresOutboxRepository(pool),
	}
}

func (u *unitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return u.orderRepo
}

func (u *unitOfWork) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return u.orderItemRepo
}

func (u *unitOfWork) CatalogRepository() icatalogrepo.ICatalogRepository {
	return u.catalogRepo
}

func (u *unitOfWork) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return u.outboxRepo
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return err
	}

	u.tx = tx
	u.orderRepo = orderrepo.NewPostgresOrderRepository(tx)
	u.orderItemRepo = orderitemrepo.NewPostgresOrderItemRepository(tx)
	u.catalogRepo = catalogrepo.NewPostgresCatalogRepository(tx)
	u.outboxRepo = outboxrepo.NewPostgresOutboxRepository(tx)

	return nil
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Commit(ctx)
}

func (u *unitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Rollback(ctx)
}
