package postgres

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gigmatch/internal/geo"
	"gigmatch/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// mapPgError translates driver errors into the storage sentinels.
func mapPgError(err error, operation string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgForeignKeyViolation:
			zap.L().Debug("postgres: constraint violation",
				zap.String("op", operation), zap.String("constraint", pgErr.ConstraintName))
			return fmt.Errorf("%s: %s: %w", operation, pgErr.ConstraintName, storage.ErrConflict)
		case pgCheckViolation:
			return fmt.Errorf("%s: check %s failed: %w", operation, pgErr.ConstraintName, err)
		}
	}
	zap.L().Error("postgres: query failed", zap.String("op", operation), zap.Error(err))
	return fmt.Errorf("failed %s: %w", operation, err)
}

// distanceExpr renders the haversine distance in kilometres between the row's
// latitude/longitude columns and the point bound at the given placeholders.
func distanceExpr(alias string, latArg, lonArg int) string {
	return fmt.Sprintf(`(2 * %[1]g * asin(sqrt(least(1,
		power(sin(radians(%[2]s.latitude - $%[3]d) / 2), 2) +
		cos(radians($%[3]d)) * cos(radians(%[2]s.latitude)) *
		power(sin(radians(%[2]s.longitude - $%[4]d) / 2), 2)))))`,
		geo.EarthRadiusKm, alias, latArg, lonArg)
}

// addNear appends the radius condition for a proximity query and returns
// the select expression for the distance column.
func addNear(alias string, near *geo.Point, radiusKm float64, conditions *[]string, args *[]interface{}) string {
	if near == nil {
		return "NULL::float8"
	}
	*args = append(*args, near.Latitude, near.Longitude)
	expr := distanceExpr(alias, len(*args)-1, len(*args))
	*args = append(*args, radiusKm)
	*conditions = append(*conditions,
		fmt.Sprintf("%s.latitude IS NOT NULL", alias),
		fmt.Sprintf("%s <= $%d", expr, len(*args)))
	return expr
}

// buildListQuery joins the WHERE conditions onto baseQuery and appends the
// ordering and pagination. A non-positive limit means no limit.
func buildListQuery(baseQuery string, conditions []string, args *[]interface{}, orderBy string, reqOffset, reqLimit int) string {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(baseQuery)

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY ")
	queryBuilder.WriteString(orderBy)

	var limit interface{}
	if reqLimit > 0 {
		limit = reqLimit
	}
	if reqOffset < 0 {
		reqOffset = 0
	}
	*args = append(*args, limit)
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", len(*args)))
	*args = append(*args, reqOffset)
	queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", len(*args)))

	return queryBuilder.String()
}

func pointFrom(lat, lon *float64) *geo.Point {
	if lat == nil || lon == nil {
		return nil
	}
	return &geo.Point{Latitude: *lat, Longitude: *lon}
}

func pointArgs(p *geo.Point) (lat, lon interface{}) {
	if p == nil {
		return nil, nil
	}
	return p.Latitude, p.Longitude
}

func nowIfZero(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
