package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/yakoovad/team-expenses/internal/db"
)

type Team struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	Passcode  string `db:"passcode"`
	CreatedBy int64  `db:"created_by"`
}

type TeamSummary struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type TeamRepository interface {
	Create(ctx context.Context, team *Team) error
	GetByIDAndPasscode(ctx context.Context, teamID int64, passcode string) (*Team, error)
	Search(ctx context.Context, query string) ([]*TeamSummary, error)
}

type pgxTeamRepository struct {
	pool *pgxpool.Pool
}

func NewPgxTeamRepository(pool *pgxpool.Pool) TeamRepository {
	return &pgxTeamRepository{pool: pool}
}

// Create inserts the team and sets team.ID from the generated key.
func (p *pgxTeamRepository) Create(ctx context.Context, team *Team) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("teams", "name", "passcode", "created_by"),
		im.Values(psql.Arg(team.Name), psql.Arg(team.Passcode), psql.Arg(team.CreatedBy)),
		im.Returning("id"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	return e.QueryRow(ctx, sql, args...).Scan(&team.ID)
}

// GetByIDAndPasscode matches the id and passcode in a single lookup, so a
// wrong passcode is indistinguishable from a missing team.
func (p *pgxTeamRepository) GetByIDAndPasscode(ctx context.Context, teamID int64, passcode string) (*Team, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "name", "passcode", "created_by"),
		sm.From("teams"),
		sm.Where(
			psql.Quote("id").EQ(psql.Arg(teamID)).
				And(psql.Quote("passcode").EQ(psql.Arg(passcode))),
		),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	team := &Team{}
	if err = e.QueryRow(ctx, sql, args...).Scan(&team.ID, &team.Name, &team.Passcode, &team.CreatedBy); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return team, nil
}

// Search returns id+name pairs for teams whose name contains query,
// case-insensitive. An empty query matches every team.
func (p *pgxTeamRepository) Search(ctx context.Context, query string) ([]*TeamSummary, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "name"),
		sm.From("teams"),
		sm.Where(psql.Raw("name ILIKE ?", "%"+query+"%")),
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

	teams, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*TeamSummary, error) {
		t := &TeamSummary{}
		if err = row.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		return t, nil
	})
	if err != nil {
		return nil, err
	}

	return teams, nil
}
