package store

import (
	_ "github.com/go-sql-driver/mysql"
)

// openMySQL connects to a MySQL host. The dsn is the driver's native form
// (user:pass@tcp(host:port)/db) with the mysql:// scheme already stripped.
func openMySQL(dsn string) (*sqlStore, error) {
	return newSQLStore("mysql", dsn+"?parseTime=true")
}
