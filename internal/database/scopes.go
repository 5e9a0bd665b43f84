package database

import (
	"strings"

	"gorm.io/gorm"

	"github.com/yukikurage/project-tracker-api/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// likeEscaper makes LIKE wildcards in user input match literally. '!' is
// used as the escape character since backslash needs quoting on MySQL.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// Search matches term case-insensitively as a substring of any of the given
// columns.
func Search(term string, columns ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" || len(columns) == 0 {
			return db
		}

		pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
		clauses := make([]string, len(columns))
		args := make([]interface{}, len(columns))
		for i, col := range columns {
			clauses[i] = "LOWER(" + col + ") LIKE ? ESCAPE '!'"
			args[i] = pattern
		}
		return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
}

// OrderBy applies a sort from utils.SortParams, falling back to fallback
// when the requested field is not in allowed. tiebreak, when set, is
// appended so pages stay stable across equal sort keys.
func OrderBy(sort utils.SortParams, allowed map[string]string, fallback, tiebreak string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		column, ok := allowed[sort.Field]
		switch {
		case !ok:
			db = db.Order(fallback)
		case sort.Desc:
			db = db.Order(column + " DESC")
		default:
			db = db.Order(column + " ASC")
		}
		if tiebreak != "" {
			db = db.Order(tiebreak)
		}
		return db
	}
}
