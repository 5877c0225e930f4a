package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/yakoovad/team-expenses/internal/db"
)

type Expense struct {
	ID          int64           `db:"id"`
	TeamID      int64           `db:"team_id"`
	Amount      decimal.Decimal `db:"amount"`
	Description string          `db:"description"`
	PaidBy      int64           `db:"paid_by"`
	CreatedAt   *time.Time      `db:"created_at"`
}

// TeamExpense is the listing row: the expense plus the payer's username and
// the requesting user's own payment columns from a left join (nil when the
// requester has no payment row for the expense).
type TeamExpense struct {
	Expense
	PaidByUsername string           `db:"paid_by_username"`
	UserPaid       *bool            `db:"user_paid"`
	UserShare      *decimal.Decimal `db:"user_share"`
}

type ExpenseRepository interface {
	Create(ctx context.Context, expense *Expense) error
	GetTeamExpenses(ctx context.Context, teamID, userID int64) ([]*TeamExpense, error)
}

type pgxExpenseRepository struct {
	pool *pgxpool.Pool
}

func NewPgxExpenseRepository(pool *pgxpool.Pool) ExpenseRepository {
	return &pgxExpenseRepository{pool: pool}
}

// Create inserts the expense and sets expense.ID and expense.CreatedAt from
// the generated values.
func (p *pgxExpenseRepository) Create(ctx context.Context, expense *Expense) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("expenses", "team_id", "amount", "description", "paid_by"),
		im.Values(psql.Arg(expense.TeamID), psql.Arg(expense.Amount), psql.Arg(expense.Description), psql.Arg(expense.PaidBy)),
		im.Returning("id", "created_at"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	err = e.QueryRow(ctx, sql, args...).Scan(&expense.ID, &expense.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" { // team or payer does not exist
		return ErrNotFound
	}

	return err
}

func (p *pgxExpenseRepository) GetTeamExpenses(ctx context.Context, teamID, userID int64) ([]*TeamExpense, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns(
			"expenses.id", "expenses.team_id", "expenses.amount", "expenses.description",
			"expenses.paid_by", "expenses.created_at",
			"users.username",
			"payments.paid", "payments.amount",
		),
		sm.From("expenses"),
		sm.InnerJoin("users").On(psql.Quote("expenses", "paid_by").EQ(psql.Quote("users", "id"))),
		sm.LeftJoin("payments").On(
			psql.Quote("payments", "expense_id").EQ(psql.Quote("expenses", "id")).
				And(psql.Quote("payments", "user_id").EQ(psql.Arg(userID))),
		),
		sm.Where(psql.Quote("expenses", "team_id").EQ(psql.Arg(teamID))),
		sm.OrderBy(psql.Quote("expenses", "created_at")),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := e.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*TeamExpense, error) {
		te := &TeamExpense{}
		if err = row.Scan(
			&te.ID,
			&te.TeamID,
			&te.Amount,
			&te.Description,
			&te.PaidBy,
			&te.CreatedAt,
			&te.PaidByUsername,
			&te.UserPaid,
			&te.UserShare,
		); err != nil {
			return nil, err
		}
		return te, nil
	})
	if err != nil {
		return nil, err
	}

	return expenses, nil
}
