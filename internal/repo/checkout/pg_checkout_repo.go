package checkout_repo

import (
	"context"
	"errors"
	"fmt"

	"paygate/internal/controller/apperror"
	"paygate/internal/domain/checkout"
	"paygate/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	table           = "checkout_sessions"
	uniqueViolation = "23505"
)

type PgCheckoutRepo struct {
	db      postgres.Executor
	builder squirrel.StatementBuilderType
}

func NewPgCheckoutRepo(pg *postgres.Postgres) checkout.SessionRepo {
	return &PgCheckoutRepo{db: pg.Pool, builder: pg.Builder}
}

func (r *PgCheckoutRepo) Save(ctx context.Context, s checkout.Session) error {
	query, args, err := r.builder.Insert(table).
		Columns(sessionColumns...).
		Values(values(s)...).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	if _, err = r.db.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperror.ErrSessionAlreadyStored
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *PgCheckoutRepo) Get(ctx context.Context, reference string) (checkout.Session, error) {
	query, args, err := r.builder.Select(sessionColumns...).
		From(table).
		Where(squirrel.Eq{"reference": reference}).
		ToSql()
	if err != nil {
		return checkout.Session{}, fmt.Errorf("build select query: %w", err)
	}

	var rw row
	if err := r.db.QueryRow(ctx, query, args...).Scan(rw.dest()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return checkout.Session{}, apperror.ErrSessionNotFound
		}
		return checkout.Session{}, fmt.Errorf("select session: %w", err)
	}
	return rw.toDomain(), nil
}

func (r *PgCheckoutRepo) List(ctx context.Context, q checkout.Query) ([]checkout.Session, error) {
	sb := r.builder.Select(sessionColumns...).From(table)
	if q.PayerID != "" {
		sb = sb.Where(squirrel.Eq{"payer_id": q.PayerID})
	}
	if q.Provider != "" {
		sb = sb.Where(squirrel.Eq{"provider": string(q.Provider)})
	}
	sb = sb.OrderBy("created_at DESC", "reference").
		Limit(uint64(q.Limit)).
		Offset(uint64(q.Offset))

	query, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]checkout.Session, 0, q.Limit)
	for rows.Next() {
		var rw row
		if err := rows.Scan(rw.dest()...); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		sessions = append(sessions, rw.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session rows: %w", err)
	}
	return sessions, nil
}
