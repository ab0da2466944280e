package ddl

import (
	"fmt"
	"strings"

	gddl "ppetl/internal/ddl"
)

// Dialect renders SQL Server identifiers in [brackets]. T-SQL has no
// CREATE TABLE IF NOT EXISTS, so BuildCreateTableSQL adds an OBJECT_ID guard.
var Dialect = gddl.Dialect{
	Name:       "mssql ddl",
	QuoteIdent: quoteIdent,
}

// BuildCreateTableSQL returns a T-SQL script that creates a table matching
// the provided definition if it does not already exist:
//
//	IF OBJECT_ID(N'[schema].[table]', N'U') IS NULL
//	BEGIN
//	CREATE TABLE [schema].[table] (
//	  [col1] TYPE [NOT NULL] [DEFAULT expr],
//	  PRIMARY KEY ([pk1])
//	);
//	END;
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	create, err := Dialect.CreateTable(t)
	if err != nil {
		return "", err
	}
	name := strings.ReplaceAll(Dialect.QuoteFQN(t.FQN), "'", "''")
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n%s\nEND;", name, create), nil
}

// quoteIdent quotes a single identifier segment for SQL Server using
// bracket syntax, escaping any closing brackets.
//
//	name      -> [name]
//	weird]id  -> [weird]]id]
func quoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}
