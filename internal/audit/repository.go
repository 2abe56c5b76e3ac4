package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/legalhold/custodian/pkg/pagination"
	"github.com/legalhold/custodian/pkg/query"
	"github.com/legalhold/custodian/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates an audit repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "audit"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) Record(ctx context.Context, cmd RecordCommand) (*Event, error) {
	details := cmd.Details
	if details == nil {
		details = map[string]any{}
	}

	encoded, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("encode details: %w", err)
	}

	q := `
		INSERT INTO audit_events(id, actor, action, resource_type, resource_id, details, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, actor, action, resource_type, resource_id, details, status, recorded_at`

	args := []any{
		uuid.New(),
		cmd.Actor,
		cmd.Action,
		cmd.ResourceType,
		cmd.ResourceID,
		encoded,
		cmd.Status,
	}

	e, err := repository.QueryOne(ctx, r.db, q, args, scanEvent)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("audit event recorded",
		"id", e.ID,
		"action", e.Action,
		"resource_type", e.ResourceType,
		"resource_id", e.ResourceID,
		"status", e.Status,
	)
	return &e, nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Event], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Actor", "Action")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count audit events: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	events, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanEvent)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}

	result := pagination.NewPageResult(events, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Event, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	e, err := repository.QueryOne(ctx, r.db, q, args, scanEvent)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &e, nil
}

// recentActivityLimit caps the events inlined into a stats response.
const recentActivityLimit = 10

func (r *repo) Stats(ctx context.Context, window time.Duration) (*Stats, error) {
	cutoff := time.Now().UTC().Add(-window)

	stats := &Stats{
		EventsByAction: map[string]int{},
		EventsByActor:  map[string]int{},
		EventsByStatus: map[string]int{},
		TimeRange:      fmt.Sprintf("last %d hours", int(window.Hours())),
	}

	totalSQL := `SELECT COUNT(*) FROM audit_events WHERE recorded_at >= $1`
	if err := r.db.QueryRowContext(ctx, totalSQL, cutoff).Scan(&stats.TotalEvents); err != nil {
		return nil, fmt.Errorf("count audit events: %w", err)
	}

	groups := []struct {
		column string
		into   map[string]int
	}{
		{"action", stats.EventsByAction},
		{"actor", stats.EventsByActor},
		{"status", stats.EventsByStatus},
	}

	for _, g := range groups {
		q := fmt.Sprintf(`
			SELECT %[1]s, COUNT(*)
			FROM audit_events
			WHERE recorded_at >= $1
			GROUP BY %[1]s
			ORDER BY COUNT(*) DESC`, g.column)

		counts, err := repository.QueryMany(ctx, r.db, q, []any{cutoff}, scanGroupCount)
		if err != nil {
			return nil, fmt.Errorf("group audit events by %s: %w", g.column, err)
		}
		for _, c := range counts {
			g.into[c.key] = c.count
		}
	}

	recentSQL, recentArgs := query.
		NewBuilder(projection, defaultSort).
		WhereAtLeast("RecordedAt", cutoff).
		BuildPage(1, recentActivityLimit)

	recent, err := repository.QueryMany(ctx, r.db, recentSQL, recentArgs, scanEvent)
	if err != nil {
		return nil, fmt.Errorf("query recent audit events: %w", err)
	}
	stats.RecentActivity = recent

	return stats, nil
}

func (r *repo) Actions(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "action")
}

func (r *repo) ResourceTypes(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "resource_type")
}

func (r *repo) distinct(ctx context.Context, column string) ([]string, error) {
	q := fmt.Sprintf(`SELECT DISTINCT %[1]s FROM audit_events ORDER BY %[1]s`, column)

	values, err := repository.QueryMany(ctx, r.db, q, nil, scanString)
	if err != nil {
		return nil, fmt.Errorf("distinct %s: %w", column, err)
	}
	return values, nil
}

type groupCount struct {
	key   string
	count int
}

func scanGroupCount(s repository.Scanner) (groupCount, error) {
	var c groupCount
	err := s.Scan(&c.key, &c.count)
	return c, err
}

func scanString(s repository.Scanner) (string, error) {
	var v string
	err := s.Scan(&v)
	return v, err
}
