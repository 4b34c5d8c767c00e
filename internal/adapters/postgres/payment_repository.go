package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	pkgerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/fitstack/reepay-payments/internal/core/domain"
)

const uniqueViolation = "23505"

const paymentColumns = `id, order_id, remote_id, remote_state, amount::text, currency_code,
	payment_type, state, test, created_at, updated_at`

// PaymentRepository implements ports.PaymentRepository on Postgres.
// The (remote_id, order_id) unique constraint backs ErrDuplicatePayment.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

func (r *PaymentRepository) FindByRemoteID(ctx context.Context, remoteID, orderID string) ([]*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment WHERE remote_id = $1 AND order_id = $2 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, remoteID, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "query payments by remote id")
	}
	return collectPayments(rows)
}

func (r *PaymentRepository) ListByOrder(ctx context.Context, orderID string) ([]*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment WHERE order_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "query payments by order")
	}
	return collectPayments(rows)
}

func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	query := `INSERT INTO payment (id, order_id, remote_id, remote_state, amount, currency_code,
	          payment_type, state, test, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9, $10, $11)`
	_, err := r.pool.Exec(ctx, query, p.ID, p.OrderID, p.RemoteID, p.RemoteState,
		p.Amount.Number.String(), p.Amount.CurrencyCode, p.PaymentType, string(p.State),
		p.Test, p.CreatedAt, p.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrDuplicatePayment
	}
	if err != nil {
		return pkgerrors.Wrap(err, "insert payment")
	}
	return nil
}

func (r *PaymentRepository) Save(ctx context.Context, p *domain.Payment, expected domain.PaymentState) error {
	query := `UPDATE payment SET state = $1, remote_state = $2, updated_at = $3
	          WHERE id = $4 AND state = $5`
	tag, err := r.pool.Exec(ctx, query, string(p.State), p.RemoteState, p.UpdatedAt, p.ID, string(expected))
	if err != nil {
		return pkgerrors.Wrap(err, "update payment")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}

func collectPayments(rows pgx.Rows) ([]*domain.Payment, error) {
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		var (
			p      domain.Payment
			amount string
			state  string
		)
		err := rows.Scan(&p.ID, &p.OrderID, &p.RemoteID, &p.RemoteState, &amount, &p.Amount.CurrencyCode,
			&p.PaymentType, &state, &p.Test, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "scan payment")
		}
		number, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "payment %s amount", p.ID)
		}
		p.Amount.Number = number
		p.State = domain.PaymentState(state)
		payments = append(payments, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.Wrap(err, "iterate payments")
	}
	return payments, nil
}
