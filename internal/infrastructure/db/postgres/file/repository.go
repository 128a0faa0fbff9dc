package file

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"files-manager-api/internal/domain/file"
	"files-manager-api/internal/domain/user"
	"files-manager-api/internal/infrastructure/db/postgres"
)

type Repository struct {
	db postgres.DB
}

func NewRepository(db postgres.DB) file.Repository {
	return &Repository{db: db}
}

func scanNode(row pgx.Row) (*Node, error) {
	n := new(Node)
	if err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.Name,
		&n.Type,
		&n.IsPublic,
		&n.ParentID,
		&n.LocalPath,
		&n.Status,

		&n.CreatedAt,
		&n.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return n, nil
}

func (r *Repository) fetchOne(ctx context.Context, query string, args ...any) (*file.Node, error) {
	n, err := scanNode(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return fromDBModel(n), nil
}

func (r *Repository) fetchMany(ctx context.Context, query string, args ...any) (file.Nodes, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ns := Nodes{}
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		ns = append(ns, n)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return fromDBModels(&ns), nil
}

func (r *Repository) CreateNode(ctx context.Context, req *file.Node) (*file.Node, error) {
	n, err := scanNode(r.db.QueryRow(
		ctx,
		InsertNode,
		int64(req.UserID), req.Name, string(req.Type), req.IsPublic, int64(req.ParentID), localPath(req), string(req.Status),
	))
	if err != nil {
		return nil, err
	}

	return fromDBModel(n), nil
}

func (r *Repository) FetchNode(ctx context.Context, id file.ID) (*file.Node, error) {
	return r.fetchOne(ctx, SelectNodeByID, int64(id))
}

func (r *Repository) FetchOwnedNode(ctx context.Context, id file.ID, userID user.ID) (*file.Node, error) {
	return r.fetchOne(ctx, SelectOwnedNode, int64(id), int64(userID))
}

// FetchNodes pages are zero-based and ordered by id, so a static
// catalog never yields the same node on two pages.
func (r *Repository) FetchNodes(ctx context.Context, userID user.ID, parentID file.ID, page int) (file.Nodes, error) {
	if page < 0 {
		page = 0
	}
	return r.fetchMany(ctx, SelectNodesByParent, int64(userID), int64(parentID), file.PageSize, page*file.PageSize)
}

func (r *Repository) FetchStaleNodes(ctx context.Context, status file.Status, before time.Time, limit int) (file.Nodes, error) {
	return r.fetchMany(ctx, SelectStaleNodes, string(status), before, limit)
}

func (r *Repository) UpdatePublic(ctx context.Context, id file.ID, userID user.ID, isPublic bool) (*file.Node, error) {
	return r.fetchOne(ctx, UpdateNodePublic, int64(id), int64(userID), isPublic)
}

// TransitionStatus moves a node to `to` only while it is in one of `from`,
// so a late step never rolls back a later state. It reports whether a row changed.
func (r *Repository) TransitionStatus(ctx context.Context, id file.ID, to file.Status, from ...file.Status) (bool, error) {
	fromStr := make([]string, len(from))
	for i, s := range from {
		fromStr[i] = string(s)
	}

	tag, err := r.db.Exec(ctx, UpdateNodeStatus, int64(id), string(to), fromStr)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

func (r *Repository) CountNodes(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, CountNodes).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
