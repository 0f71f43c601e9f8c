package mysql

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"

	"sqlpp/internal/core"
)

type testMySQLContainer struct {
	container *mysql.MySQLContainer
	dsn       string
	db        *sql.DB
}

func setupMySQL(t *testing.T) *testMySQLContainer {
	t.Helper()
	ctx := context.Background()

	mysqlContainer, err := mysql.Run(ctx, "mysql:8.0",
		mysql.WithDatabase("testdb"),
		mysql.WithUsername("root"),
		mysql.WithPassword("testpass"),
	)
	require.NoError(t, err, "failed to start MySQL container")

	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(mysqlContainer); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := mysqlContainer.ConnectionString(ctx, "parseTime=true", "multiStatements=true")
	require.NoError(t, err, "failed to get connection string")

	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err, "failed to open direct DB connection")
	require.NoError(t, db.PingContext(ctx), "failed to ping database")
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close DB connection: %v", err)
		}
	})

	return &testMySQLContainer{container: mysqlContainer, dsn: dsn, db: db}
}

const testSchemaDDL = `
CREATE TABLE authors (
	id INT UNSIGNED NOT NULL AUTO_INCREMENT,
	name VARCHAR(120) NOT NULL,
	bio TEXT,
	PRIMARY KEY (id),
	UNIQUE KEY uq_authors_name (name)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci COMMENT='book authors';

CREATE TABLE books (
	id INT UNSIGNED NOT NULL AUTO_INCREMENT,
	author_id INT UNSIGNED NOT NULL,
	title VARCHAR(255) NOT NULL,
	price DECIMAL(10,2) NOT NULL DEFAULT 0.00,
	published_at DATETIME NULL,
	status ENUM('draft','published') NOT NULL DEFAULT 'draft',
	PRIMARY KEY (id),
	KEY idx_books_status (status),
	CONSTRAINT fk_books_author FOREIGN KEY (author_id) REFERENCES authors (id) ON DELETE CASCADE ON UPDATE RESTRICT
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;

CREATE TRIGGER trg_books_before_insert BEFORE INSERT ON books
FOR EACH ROW
BEGIN
	SET NEW.title = TRIM(NEW.title);
END;

CREATE PROCEDURE count_books_by_author(IN p_author_id INT, OUT p_count INT)
BEGIN
	SELECT COUNT(*) INTO p_count FROM books WHERE author_id = p_author_id;
END;
`

func TestIntrospectorIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tc := setupMySQL(t)
	ctx := context.Background()

	_, err := tc.db.ExecContext(ctx, testSchemaDDL)
	require.NoError(t, err, "failed to set up test schema")

	db, err := New().Introspect(ctx, tc.db)
	require.NoError(t, err)
	require.NotNil(t, db)

	t.Run("detects dialect", func(t *testing.T) {
		require.NotNil(t, db.Dialect)
		assert.Equal(t, core.DialectMySQL, *db.Dialect)
	})

	t.Run("introspects tables and columns", func(t *testing.T) {
		require.Len(t, db.Tables, 2)

		authors := db.FindTable("authors")
		require.NotNil(t, authors)
		assert.Equal(t, "book authors", authors.Comment)
		require.NotNil(t, authors.Options.MySQL)
		assert.Equal(t, "InnoDB", authors.Options.MySQL.Engine)
		assert.Equal(t, "utf8mb4", authors.Options.MySQL.Charset)

		id := authors.FindColumn("id")
		require.NotNil(t, id)
		assert.True(t, id.PrimaryKey)
		assert.True(t, id.AutoIncrement)
		assert.True(t, id.Unsigned)
		assert.Equal(t, core.CanonicalNumber, id.CanonicalType)
		assert.Equal(t, int64(0), id.Min)

		name := authors.FindColumn("name")
		require.NotNil(t, name)
		assert.False(t, name.Nullable)
		assert.Equal(t, 120, name.Size)
		assert.Equal(t, core.CanonicalString, name.CanonicalType)

		bio := authors.FindColumn("bio")
		require.NotNil(t, bio)
		assert.True(t, bio.Nullable)
		assert.Equal(t, core.CanonicalBlob, bio.CanonicalType)

		books := db.FindTable("books")
		require.NotNil(t, books)

		price := books.FindColumn("price")
		require.NotNil(t, price)
		assert.Equal(t, 10, price.Digits)
		assert.Equal(t, 2, price.Decimals)

		publishedAt := books.FindColumn("published_at")
		require.NotNil(t, publishedAt)
		assert.True(t, publishedAt.HasTime)
		assert.Equal(t, core.CanonicalDate, publishedAt.CanonicalType)
	})

	t.Run("introspects constraints", func(t *testing.T) {
		authors := db.FindTable("authors")
		require.NotNil(t, authors)
		pk := authors.PrimaryKey()
		require.NotNil(t, pk)
		assert.Equal(t, []string{"id"}, pk.Columns)

		uq := authors.FindConstraint("uq_authors_name")
		require.NotNil(t, uq)
		assert.Equal(t, core.ConstraintUnique, uq.Type)

		books := db.FindTable("books")
		require.NotNil(t, books)
		fk := books.FindConstraint("fk_books_author")
		require.NotNil(t, fk)
		assert.Equal(t, core.ConstraintForeignKey, fk.Type)
		assert.Equal(t, []string{"author_id"}, fk.Columns)
		assert.Equal(t, "authors", fk.ReferencedTable)
		assert.Equal(t, []string{"id"}, fk.ReferencedColumns)
		assert.Equal(t, core.RefActionCascade, fk.OnDelete)
		assert.Equal(t, core.RefActionRestrict, fk.OnUpdate)
	})

	t.Run("introspects indexes without duplicating constraint-backed ones", func(t *testing.T) {
		authors := db.FindTable("authors")
		require.NotNil(t, authors)
		assert.Nil(t, authors.FindIndex("uq_authors_name"), "unique-constraint index should not be duplicated")

		books := db.FindTable("books")
		require.NotNil(t, books)
		idx := books.FindIndex("idx_books_status")
		require.NotNil(t, idx)
		assert.False(t, idx.Unique)
		assert.Equal(t, []string{"status"}, idx.Names())
	})

	t.Run("introspects triggers", func(t *testing.T) {
		books := db.FindTable("books")
		require.NotNil(t, books)
		trg := books.FindTrigger("trg_books_before_insert")
		require.NotNil(t, trg)
		assert.Equal(t, core.TriggerBefore, trg.When)
		assert.Equal(t, core.TriggerInsert, trg.Op)
	})

	t.Run("introspects procedures", func(t *testing.T) {
		proc := db.FindProc("count_books_by_author")
		require.NotNil(t, proc)
		require.Len(t, proc.Params, 2)
		assert.Equal(t, "p_author_id", proc.Params[0].Name)
		assert.Equal(t, core.ProcParamIn, proc.Params[0].Direction)
		assert.Equal(t, "p_count", proc.Params[1].Name)
		assert.Equal(t, core.ProcParamOut, proc.Params[1].Direction)
	})
}
