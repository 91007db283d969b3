package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mirrorboxapp/mirrorbox-server/internal/domain"
	"github.com/mirrorboxapp/mirrorbox-server/internal/filter"
	"github.com/mirrorboxapp/mirrorbox-server/internal/store"
)

// overlayJoin joins the requesting user's overlay row onto an entity table so
// overlay fields filter and sort like intrinsic columns. The join contributes
// one arg (the user ID).
func overlayJoin(alias string, entityType domain.EntityType) string {
	return " LEFT JOIN user_overlays o ON o.user_id = ?" +
		" AND o.entity_type = '" + string(entityType) + "'" +
		" AND o.entity_id = " + alias + ".id" +
		" AND o.entity_instance_id = " + alias + ".instance_id"
}

// overlayColumns is appended to every entity column list; scan order must
// match scanOverlay.
const overlayColumns = `o.rating, o.favorite, o.view_count, o.updated_at`

// scanOverlay assembles an Overlay from the joined columns, or nil when no
// overlay row exists.
func scanOverlay(userID string, entityType domain.EntityType, key domain.EntityKey,
	rating sql.NullInt64, favorite sql.NullInt64, viewCount sql.NullInt64, updatedAt sql.NullString) (*domain.Overlay, error) {
	if !updatedAt.Valid {
		return nil, nil
	}
	at, err := parseTime(updatedAt.String)
	if err != nil {
		return nil, err
	}
	return &domain.Overlay{
		UserID:     userID,
		EntityType: entityType,
		EntityKey:  key,
		Rating:     intPtr(rating),
		Favorite:   favorite.Valid && favorite.Int64 != 0,
		ViewCount:  int(viewCount.Int64),
		UpdatedAt:  at,
	}, nil
}

// randomOrderExpr is a deterministic per-row hash: same seed gives the same
// order across requests, so random browsing pages without repeats, and a
// direction flip reverses the order exactly. The seed is avalanched into the
// multiplier, so nearby or modulus-congruent seeds still shuffle into
// unrelated orders rather than rotations of one fixed sequence.
func randomOrderExpr(alias string, seed uint64) string {
	z := seed + 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	z ^= z >> 31

	mult := 2*(z%1073741823) + 1
	shift := (z >> 32) % 2147483647
	return fmt.Sprintf("((%s.rowid * %d + %d) %% 2147483647 * 1103515245) %% 2147483647",
		alias, mult, shift)
}

// orderClause builds the ORDER BY for a list query. sortColumns maps sort
// keys to column expressions; the "" entry is the default. Entity keys break
// ties in the same direction so pagination is stable.
func orderClause(alias string, params store.ListParams, sortColumns map[string]string) string {
	dir := "ASC"
	if params.Direction == store.SortDesc {
		dir = "DESC"
	}

	expr := sortColumns[params.Sort]
	if params.Sort == "random" {
		expr = randomOrderExpr(alias, params.RandomSeed)
	}
	if expr == "" {
		expr = sortColumns[""]
	}

	return fmt.Sprintf(" ORDER BY %s %s, %s.id %s, %s.instance_id %s",
		expr, dir, alias, dir, alias, dir)
}

// queryList runs the COUNT + SELECT pair of a list query. baseFrom is the
// FROM clause including joins; joinArgs are its placeholder args.
func queryList[T any](ctx context.Context, db querier, columns, baseFrom string, joinArgs []any,
	where filter.Clause, order string, params store.ListParams, scan func(*sql.Rows) (T, error)) (*store.ListResult[T], error) {

	whereSQL := ""
	if !where.Empty() {
		whereSQL = " WHERE " + where.SQL
	}
	args := append(append([]any{}, joinArgs...), where.Args...)

	var total int
	countSQL := "SELECT COUNT(*) FROM " + baseFrom + whereSQL
	if err := db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}

	pageSQL := "SELECT " + columns + " FROM " + baseFrom + whereSQL + order +
		" LIMIT ? OFFSET ?"
	pageArgs := append(append([]any{}, args...), params.PerPage, params.Offset())

	rows, err := db.QueryContext(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, fmt.Errorf("query page: %w", err)
	}
	defer rows.Close()

	items := make([]T, 0, params.PerPage)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &store.ListResult[T]{Items: items, Total: total}, nil
}

// boolClause constrains a boolean column when the filter value is set.
func boolClause(v *bool, column string) filter.Clause {
	if v == nil {
		return filter.Clause{}
	}
	return filter.Clause{SQL: column + " = ?", Args: []any{boolToInt(*v)}}
}

// inList builds an "expr IN (?, ...)" fragment with its args.
func inList(expr string, ids []string) filter.Clause {
	args := make([]any, len(ids))
	marks := make([]string, len(ids))
	for i, id := range ids {
		args[i] = id
		marks[i] = "?"
	}
	return filter.Clause{
		SQL:  expr + " IN (" + strings.Join(marks, ", ") + ")",
		Args: args,
	}
}
