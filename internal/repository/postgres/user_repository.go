package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/opentill/cashdesk/internal/domain/user"
)

// UserRepository implements user.Store using PostgreSQL. User records are
// created by an external registration process; this adapter only reads.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) ScanAll(ctx context.Context) ([]user.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT name, email, role, active FROM users`)
	if err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		var (
			u    user.User
			role string
		)
		if err := rows.Scan(&u.Name, &u.Email, &role, &u.Active); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		u.Role = user.Role(role)
		users = append(users, u)
	}
	return users, rows.Err()
}
