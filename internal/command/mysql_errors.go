package command

import (
	"errors"
	"regexp"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"

	"sqlpp/internal/errs"
)

// Registers the MySQL errno classifier once, at package init, so any caller
// of errs.Classify anywhere in the process gets MySQL-aware *errs.DBError
// detail without needing to know this package exists.
func init() {
	errs.RegisterClassifier(classifyMySQLError)
}

// MySQL errno constants this classifier recognizes. Not exhaustive; errnos
// outside this set fall through to a generic DBError carrying the raw
// message.
const (
	errnoDupEntry        = 1062
	errnoColumnNull      = 1048
	errnoRowIsReferenced = 1451
	errnoNoReferencedRow = 1452
	errnoBadFieldError   = 1054
	errnoNoSuchTable     = 1146
	errnoParseError      = 1064
)

var dupKeyPattern = regexp.MustCompile(`for key '([^']+)'`)
var fkNamePattern = regexp.MustCompile("CONSTRAINT `([^`]+)`")
var fkTablePattern = regexp.MustCompile("REFERENCES `([^`]+)`")

func classifyMySQLError(err error) *errs.DBError {
	var me *mysqldriver.MySQLError
	if !errors.As(err, &me) {
		return nil
	}

	de := &errs.DBError{
		SQLCode: int(me.Number),
		Message: me.Message,
		Err:     err,
	}

	switch me.Number {
	case errnoDupEntry:
		if strings.Contains(me.Message, "'PRIMARY'") {
			de.Code = "pk"
		} else {
			de.Code = "uk"
		}
		if m := dupKeyPattern.FindStringSubmatch(me.Message); m != nil {
			de.Col = m[1]
		}
	case errnoColumnNull:
		de.Code = "not_null"
		de.Col = columnFromNullMessage(me.Message)
	case errnoRowIsReferenced, errnoNoReferencedRow:
		de.Code = "fk"
		if m := fkTablePattern.FindStringSubmatch(me.Message); m != nil {
			de.FKTable = m[1]
		}
		if m := fkNamePattern.FindStringSubmatch(me.Message); m != nil {
			de.FKCol = m[1]
		}
	case errnoBadFieldError:
		de.Code = "unknown_column"
	case errnoNoSuchTable:
		de.Code = "unknown_table"
	case errnoParseError:
		de.Code = "syntax"
	default:
		de.Code = "unknown"
	}

	return de
}

var nullColumnPattern = regexp.MustCompile(`Column '([^']+)' cannot be null`)

func columnFromNullMessage(msg string) string {
	if m := nullColumnPattern.FindStringSubmatch(msg); m != nil {
		return m[1]
	}
	return ""
}
