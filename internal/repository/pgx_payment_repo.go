package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/yakoovad/team-expenses/internal/db"
)

type Payment struct {
	ID        int64           `db:"id"`
	ExpenseID int64           `db:"expense_id"`
	UserID    int64           `db:"user_id"`
	Amount    decimal.Decimal `db:"amount"`
	Paid      bool            `db:"paid"`
	PaidAt    *time.Time      `db:"paid_at"`
}

type PaymentRepository interface {
	CreateBatch(ctx context.Context, payments []*Payment) error
	MarkPaid(ctx context.Context, expenseID, userID int64) error
}

type pgxPaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPgxPaymentRepository(pool *pgxpool.Pool) PaymentRepository {
	return &pgxPaymentRepository{pool: pool}
}

// CreateBatch inserts every payment in a single multi-row statement.
func (p *pgxPaymentRepository) CreateBatch(ctx context.Context, payments []*Payment) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("payments", "expense_id", "user_id", "amount", "paid"),
	)

	for _, payment := range payments {
		q.Apply(im.Values(psql.Arg(payment.ExpenseID), psql.Arg(payment.UserID), psql.Arg(payment.Amount), psql.Arg(payment.Paid)))
	}

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	if _, err = e.Exec(ctx, sql, args...); err != nil {
		return err
	}

	return nil
}

// MarkPaid flips the requester's payment from unpaid to paid in one
// conditional update. The paid=false predicate and the write are a single
// statement, so concurrent duplicate calls settle at most once. Zero matched
// rows means the payment does not exist or was already paid; the caller gets
// ErrNotFound either way.
func (p *pgxPaymentRepository) MarkPaid(ctx context.Context, expenseID, userID int64) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Update(
		um.Table("payments"),
		um.SetCol("paid").ToArg(true),
		um.SetCol("paid_at").To(psql.Raw("now()")),
		um.Where(
			psql.Quote("expense_id").EQ(psql.Arg(expenseID)).
				And(psql.Quote("user_id").EQ(psql.Arg(userID))).
				And(psql.Quote("paid").EQ(psql.Arg(false))),
		),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	commandTag, err := e.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}

	if commandTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
