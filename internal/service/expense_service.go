package service

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/yakoovad/team-expenses/internal/db"
	"github.com/yakoovad/team-expenses/internal/model"
	"github.com/yakoovad/team-expenses/internal/repository"
	"github.com/yakoovad/team-expenses/pkg/logger"
	"go.uber.org/zap"
)

type ExpenseService struct {
	tx db.Transactor

	expenses repository.ExpenseRepository
	payments repository.PaymentRepository
	members  repository.MemberRepository
}

func NewExpenseService(tx db.Transactor) *ExpenseService {
	return &ExpenseService{tx: tx}
}

// CreateExpense records an expense paid in full by payerID and splits it
// equally across the team roster read inside the same transaction. One
// payment row is written per member; the payer's row starts paid. Any failure
// rolls back the expense and every payment row together.
//
// The division keeps decimal's default precision and the remainder is not
// redistributed, so the per-member shares may not sum to the amount exactly.
func (s *ExpenseService) CreateExpense(ctx context.Context, teamID int64, amount decimal.Decimal, description string, payerID int64) (*model.Expense, *Error) {
	l := logger.FromContext(ctx)
	l.Info("creating expense",
		zap.Int64("team_id", teamID),
		zap.String("amount", amount.String()),
		zap.Int64("payer_id", payerID))

	if !amount.IsPositive() {
		return nil, NewServiceError(ErrorCodeInvalidBody, "amount must be positive")
	}

	expense := &repository.Expense{
		TeamID:      teamID,
		Amount:      amount,
		Description: description,
		PaidBy:      payerID,
	}

	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.expenses.Create(txCtx, expense); err != nil {
			l.Error("failed to create expense", zap.Int64("team_id", teamID), zap.Error(err))
			return NewServiceError(ErrorCodeUnspecified, "failed to create expense")
		}

		memberIDs, err := s.members.GetUserIDs(txCtx, teamID)
		if err != nil {
			l.Error("failed to get team members", zap.Int64("team_id", teamID), zap.Error(err))
			return NewServiceError(ErrorCodeUnspecified, "failed to create expense")
		}

		// Unreachable while the payer is a member, but the split below
		// must never divide by zero.
		if len(memberIDs) == 0 {
			l.Error("expense created for team with no members",
				zap.Int64("team_id", teamID),
				zap.Int64("expense_id", expense.ID))
			return NewServiceError(ErrorCodeEmptyTeam, "team has no members")
		}

		share := amount.Div(decimal.NewFromInt(int64(len(memberIDs))))

		shares := make([]*repository.Payment, 0, len(memberIDs))
		for _, memberID := range memberIDs {
			shares = append(shares, &repository.Payment{
				ExpenseID: expense.ID,
				UserID:    memberID,
				Amount:    share,
				Paid:      memberID == payerID,
			})
		}

		if err = s.payments.CreateBatch(txCtx, shares); err != nil {
			l.Error("failed to create payment records",
				zap.Int64("expense_id", expense.ID),
				zap.Error(err))
			return NewServiceError(ErrorCodeUnspecified, "failed to create expense")
		}

		return nil
	})

	if err != nil {
		var res *Error
		if errors.As(err, &res) {
			return nil, res
		}
		// Begin or commit failed outside the transaction body.
		l.Error("transaction failed", zap.Error(err))
		return nil, NewServiceError(ErrorCodeUnspecified, "failed to create expense")
	}

	return &model.Expense{
		ID:          expense.ID,
		TeamID:      expense.TeamID,
		Amount:      expense.Amount,
		Description: expense.Description,
		PaidBy:      expense.PaidBy,
		CreatedAt:   expense.CreatedAt,
	}, nil
}

// PayShare settles the caller's share of an expense. The repository performs
// a single conditional update, so of two concurrent calls for the same share
// exactly one succeeds. A missing share and an already-paid share are
// reported as the same error on purpose.
func (s *ExpenseService) PayShare(ctx context.Context, expenseID, userID int64) *Error {
	l := logger.FromContext(ctx)
	l.Info("paying share", zap.Int64("expense_id", expenseID), zap.Int64("user_id", userID))

	err := s.payments.MarkPaid(ctx, expenseID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		l.Warn("share not found or already paid",
			zap.Int64("expense_id", expenseID),
			zap.Int64("user_id", userID))
		return NewServiceError(ErrorCodeShareNotFoundOrPaid, "payment not found or already paid")
	}
	if err != nil {
		l.Error("failed to pay share",
			zap.Int64("expense_id", expenseID),
			zap.Int64("user_id", userID),
			zap.Error(err))
		return NewServiceError(ErrorCodeUnspecified, "failed to process payment")
	}

	return nil
}

func (s *ExpenseService) GetTeamExpenses(ctx context.Context, teamID, userID int64) ([]*model.TeamExpense, *Error) {
	l := logger.FromContext(ctx)
	l.Debug("getting team expenses", zap.Int64("team_id", teamID), zap.Int64("user_id", userID))

	expensesRepo, err := s.expenses.GetTeamExpenses(ctx, teamID, userID)
	if err != nil {
		l.Error("failed to get team expenses", zap.Int64("team_id", teamID), zap.Error(err))
		return nil, NewServiceError(ErrorCodeUnspecified, "failed to fetch expenses")
	}

	expenses := make([]*model.TeamExpense, 0, len(expensesRepo))
	for _, e := range expensesRepo {
		expenses = append(expenses, &model.TeamExpense{
			Expense: model.Expense{
				ID:          e.ID,
				TeamID:      e.TeamID,
				Amount:      e.Amount,
				Description: e.Description,
				PaidBy:      e.PaidBy,
				CreatedAt:   e.CreatedAt,
			},
			PaidByUsername: e.PaidByUsername,
			UserPaid:       e.UserPaid,
			UserShare:      e.UserShare,
		})
	}

	return expenses, nil
}

func (s *ExpenseService) WithExpenseRepo(r repository.ExpenseRepository) *ExpenseService {
	s.expenses = r
	return s
}

func (s *ExpenseService) WithPaymentRepo(r repository.PaymentRepository) *ExpenseService {
	s.payments = r
	return s
}

func (s *ExpenseService) WithMemberRepo(r repository.MemberRepository) *ExpenseService {
	s.members = r
	return s
}
