package contentrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/content-interlinker/internal/domain/interlink"
)

// Answers have no title of their own and borrow the one of their question.
var selectByType = map[interlink.ContentType]string{
	interlink.TypeQuestion: `SELECT id, title, body FROM questions`,
	interlink.TypeAnswer:   `SELECT a.id, COALESCE(q.title, ''), a.body FROM answers a LEFT JOIN questions q ON q.id = a.question_id`,
	interlink.TypeMainPage: `SELECT id, title, body FROM main_pages`,
}

var whereByType = map[interlink.ContentType]string{
	interlink.TypeQuestion: ` WHERE id = $1`,
	interlink.TypeAnswer:   ` WHERE a.id = $1`,
	interlink.TypeMainPage: ` WHERE id = $1`,
}

var allTypes = []interlink.ContentType{interlink.TypeQuestion, interlink.TypeAnswer, interlink.TypeMainPage}

// PostgresRepository implements interlink.ContentRepository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get fetches a single item by type and id.
func (r *PostgresRepository) Get(ctx context.Context, ref interlink.ContentRef) (interlink.Content, bool, error) {
	query, ok := selectByType[ref.Type]
	if !ok {
		return interlink.Content{}, false, nil
	}
	row := r.pool.QueryRow(ctx, query+whereByType[ref.Type], ref.ID)
	item, err := scanContent(row, ref.Type)
	if errors.Is(err, pgx.ErrNoRows) {
		return interlink.Content{}, false, nil
	}
	if err != nil {
		return interlink.Content{}, false, err
	}
	return item, true, nil
}

// List returns every item of the given types ordered by type then id.
func (r *PostgresRepository) List(ctx context.Context, types ...interlink.ContentType) ([]interlink.Content, error) {
	if len(types) == 0 {
		types = allTypes
	}
	var out []interlink.Content
	for _, typ := range orderedTypes(types) {
		query, ok := selectByType[typ]
		if !ok {
			continue
		}
		items, err := r.listType(ctx, query+` ORDER BY 1`, typ)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
	}
	return out, nil
}

func (r *PostgresRepository) listType(ctx context.Context, query string, typ interlink.ContentType) ([]interlink.Content, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", typ, err)
	}
	defer rows.Close()
	var out []interlink.Content
	for rows.Next() {
		item, err := scanContent(rows, typ)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContent(row rowScanner, typ interlink.ContentType) (interlink.Content, error) {
	var (
		id          int64
		title, body string
	)
	if err := row.Scan(&id, &title, &body); err != nil {
		return interlink.Content{}, err
	}
	return interlink.NewContent(id, typ, title, body), nil
}

// orderedTypes dedups types and sorts them like the memory repository does.
func orderedTypes(types []interlink.ContentType) []interlink.ContentType {
	seen := make(map[interlink.ContentType]struct{}, len(types))
	out := make([]interlink.ContentType, 0, len(types))
	for _, typ := range []interlink.ContentType{interlink.TypeAnswer, interlink.TypeMainPage, interlink.TypeQuestion} {
		for _, want := range types {
			if want != typ {
				continue
			}
			if _, dup := seen[typ]; !dup {
				seen[typ] = struct{}{}
				out = append(out, typ)
			}
		}
	}
	return out
}

var _ interlink.ContentRepository = (*PostgresRepository)(nil)
