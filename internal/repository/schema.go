package repository

// Schema statements per driver. Each statement is idempotent and executed
// separately, in order.

var pgSchema = []string{
	`CREATE TABLE IF NOT EXISTS inquiries (
		id         BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		name       VARCHAR(128) NOT NULL CHECK (char_length(name) > 0),
		email      VARCHAR(128) NOT NULL CHECK (char_length(email) > 0),
		inquiry    VARCHAR(256) NOT NULL CHECK (char_length(inquiry) > 0),
		created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
		CONSTRAINT chk_email CHECK (email ~ '^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,20}$')
	)`,
	`CREATE INDEX IF NOT EXISTS idx_inquiries_created_at ON inquiries (created_at DESC)`,
}

// MySQL has no CREATE INDEX IF NOT EXISTS, so the index lives in the table definition.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS inquiries (
		id         INT AUTO_INCREMENT PRIMARY KEY,
		name       VARCHAR(128) CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci NOT NULL,
		email      VARCHAR(128) CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci NOT NULL,
		inquiry    VARCHAR(256) CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_inquiries_created_at (created_at),
		CONSTRAINT chk_inquiries_not_empty CHECK (name <> '' AND email <> '' AND inquiry <> ''),
		CONSTRAINT chk_email CHECK (email REGEXP '^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\\.[A-Za-z]{2,20}$')
	)`,
}

// SQLite has no REGEXP function by default; LIKE approximates the same shape.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS inquiries (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT NOT NULL CHECK (length(name) BETWEEN 1 AND 128),
		email      TEXT NOT NULL CHECK (length(email) BETWEEN 1 AND 128 AND email LIKE '%_@_%._%'),
		inquiry    TEXT NOT NULL CHECK (length(inquiry) BETWEEN 1 AND 256),
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_inquiries_created_at ON inquiries (created_at)`,
}

func schemaFor(driver string) []string {
	switch driver {
	case DriverPostgres:
		return pgSchema
	case DriverMySQL:
		return mysqlSchema
	case DriverSQLite:
		return sqliteSchema
	default:
		return nil
	}
}
