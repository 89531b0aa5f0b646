package subscription

import (
	"context"
	"errors"
	"strings"

	"codeberg.org/boomline/server/internal/logger"
	"github.com/jackc/pgx/v5"
)

const statusQuery = "SELECT subscription_status FROM premium_users WHERE email = $1"

const statusActive = "active"

// satisfied by *pgxpool.Pool
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// looks up paid subscriptions in the premium_users table
type Checker struct {
	db querier
}

func NewChecker(db querier) *Checker {
	return &Checker{db: db}
}

// lookup failures count as not premium
func (c *Checker) IsPremium(ctx context.Context, email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}

	var status string

	err := c.db.QueryRow(ctx, statusQuery, email).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return false
	}

	if err != nil {
		logger.WarnErr(err, "subscription check failed", "email", email)
		return false
	}

	return status == statusActive
}
