package categorization

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the repository needs. Declared here so
// tests can substitute a pgxmock pool.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Repository loads and seeds the rule table in Postgres. Statement data never
// touches the database; only the keyword table lives here.
type Repository struct {
	db DB
}

// NewRepository creates a new rule repository
func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

// ListRules fetches the rule table ordered by position. Position order is the
// match precedence, so the ORDER BY is part of the semantics.
func (r *Repository) ListRules(ctx context.Context) ([]Rule, error) {
	query := `
		SELECT keyword, category
		FROM category_rules
		ORDER BY position ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []Rule
	for rows.Next() {
		var rule Rule
		if err := rows.Scan(&rule.Keyword, &rule.Category); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	return rules, rows.Err()
}

// CountRules returns the number of rules in the table.
func (r *Repository) CountRules(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM category_rules`).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// SeedRules inserts the given table with positions matching slice order.
// Used once on boot when the table is empty.
func (r *Repository) SeedRules(ctx context.Context, rules []Rule) error {
	query := `
		INSERT INTO category_rules (position, keyword, category)
		VALUES ($1, $2, $3)
		ON CONFLICT (position) DO UPDATE SET keyword = $2, category = $3
	`

	for i, rule := range rules {
		if _, err := r.db.Exec(ctx, query, i, rule.Keyword, rule.Category); err != nil {
			return fmt.Errorf("failed to seed rule %q: %w", rule.Keyword, err)
		}
	}
	return nil
}
