package mysql

import (
	"errors"

	gomysql "github.com/go-sql-driver/mysql"
)

// classify maps well-known server error numbers to a short hint shown next
// to the driver message. Unknown numbers and non-server errors get no hint.
// https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
func classify(err error) string {
	var myErr *gomysql.MySQLError
	if !errors.As(err, &myErr) {
		return ""
	}

	switch myErr.Number {
	case 1044, // ER_DBACCESS_DENIED_ERROR
		1045: // ER_ACCESS_DENIED_ERROR
		return "access denied"
	case 1049: // ER_BAD_DB_ERROR
		return "unknown database"
	case 1054: // ER_BAD_FIELD_ERROR
		return "unknown column"
	case 1064: // ER_PARSE_ERROR
		return "SQL syntax error"
	case 1142: // ER_TABLEACCESS_DENIED_ERROR
		return "table access denied"
	case 1146: // ER_NO_SUCH_TABLE
		return "no such table"
	case 1205: // ER_LOCK_WAIT_TIMEOUT
		return "lock wait timeout"
	case 1213: // ER_LOCK_DEADLOCK
		return "deadlock"
	default:
		return ""
	}
}
