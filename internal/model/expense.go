package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Expense struct {
	ID          int64           `json:"id"`
	TeamID      int64           `json:"team_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	PaidBy      int64           `json:"paid_by"`
	CreatedAt   *time.Time      `json:"created_at,omitempty"`
}

// TeamExpense is an expense as seen by one requesting member: the payer's
// username is joined in, and UserPaid/UserShare describe the requester's own
// share. Both are nil when the requester has no share for the expense, e.g.
// they joined the team after it was created.
type TeamExpense struct {
	Expense
	PaidByUsername string           `json:"paid_by_username"`
	UserPaid       *bool            `json:"user_paid"`
	UserShare      *decimal.Decimal `json:"user_share"`
}
