package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// SetupTestDB opens the shared test database. Tests that need MySQL call
// this and are skipped when no server is listening on localhost:3306.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := "root:@tcp(localhost:3306)/barista_test?parseTime=true"
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// CleanupTestDB empties every table and closes the connection.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := []string{
		"Refunds", "WalletTransactions", "Wallets",
		"LoyaltyTransactions", "LoyaltyAccounts",
		"OrderTimeline", "OrderItems", "Orders",
		"Customers", "CafeTables",
	}
	for _, table := range tables {
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

// SetupTestTables creates the schema the store expects.
func SetupTestTables(t *testing.T, db *sql.DB) {
	createCafeTablesTable := `
	CREATE TABLE IF NOT EXISTS CafeTables (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		number INT NOT NULL UNIQUE,
		status VARCHAR(20) NOT NULL DEFAULT 'idle',
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`

	createCustomersTable := `
	CREATE TABLE IF NOT EXISTS Customers (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(150) NOT NULL,
		phone VARCHAR(30) NOT NULL UNIQUE,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

	createOrdersTable := `
	CREATE TABLE IF NOT EXISTS Orders (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		orderNo VARCHAR(20) NOT NULL,
		tableId INT UNSIGNED NOT NULL,
		total DECIMAL(10,2) NOT NULL DEFAULT 0.00,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		paymentStatus VARCHAR(20) NOT NULL DEFAULT 'unpaid',
		paymentMethod VARCHAR(20),
		cashierOrder TINYINT(1) NOT NULL DEFAULT 0,
		customerId INT UNSIGNED,
		servedAt DATETIME,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_table (tableId),
		INDEX idx_status (status)
	)`

	createOrderItemsTable := `
	CREATE TABLE IF NOT EXISTS OrderItems (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		orderId INT UNSIGNED NOT NULL,
		name VARCHAR(255) NOT NULL,
		quantity INT NOT NULL DEFAULT 1,
		price DECIMAL(10,2) NOT NULL,
		modifiers JSON,
		FOREIGN KEY (orderId) REFERENCES Orders(id) ON DELETE CASCADE,
		INDEX idx_order (orderId)
	)`

	createOrderTimelineTable := `
	CREATE TABLE IF NOT EXISTS OrderTimeline (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		orderId INT UNSIGNED NOT NULL,
		action VARCHAR(100) NOT NULL,
		actor VARCHAR(100) NOT NULL,
		note VARCHAR(255) NOT NULL DEFAULT '',
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (orderId) REFERENCES Orders(id) ON DELETE CASCADE,
		INDEX idx_order (orderId)
	)`

	createLoyaltyAccountsTable := `
	CREATE TABLE IF NOT EXISTS LoyaltyAccounts (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		customerId INT UNSIGNED NOT NULL UNIQUE,
		balance INT NOT NULL DEFAULT 0,
		totalEarned INT NOT NULL DEFAULT 0,
		totalRedeemed INT NOT NULL DEFAULT 0,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`

	createLoyaltyTransactionsTable := `
	CREATE TABLE IF NOT EXISTS LoyaltyTransactions (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		customerId INT UNSIGNED NOT NULL,
		type VARCHAR(20) NOT NULL,
		delta INT NOT NULL,
		orderId INT UNSIGNED,
		description VARCHAR(255) NOT NULL DEFAULT '',
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_customer (customerId)
	)`

	createWalletsTable := `
	CREATE TABLE IF NOT EXISTS Wallets (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		customerId INT UNSIGNED NOT NULL UNIQUE,
		balance DECIMAL(10,2) NOT NULL DEFAULT 0.00,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`

	createWalletTransactionsTable := `
	CREATE TABLE IF NOT EXISTS WalletTransactions (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		customerId INT UNSIGNED NOT NULL,
		type VARCHAR(20) NOT NULL,
		status VARCHAR(20) NOT NULL,
		amount DECIMAL(10,2) NOT NULL,
		balanceBefore DECIMAL(10,2) NOT NULL,
		balanceAfter DECIMAL(10,2) NOT NULL,
		orderId INT UNSIGNED,
		description VARCHAR(255) NOT NULL DEFAULT '',
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_customer (customerId)
	)`

	createRefundsTable := `
	CREATE TABLE IF NOT EXISTS Refunds (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		orderId INT UNSIGNED NOT NULL,
		amount DECIMAL(10,2) NOT NULL,
		reason VARCHAR(255) NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		requestedBy VARCHAR(100) NOT NULL,
		decidedBy VARCHAR(100),
		requestedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		decidedAt DATETIME,
		completedAt DATETIME,
		INDEX idx_order (orderId)
	)`

	tables := []struct {
		name  string
		query string
	}{
		{"CafeTables", createCafeTablesTable},
		{"Customers", createCustomersTable},
		{"Orders", createOrdersTable},
		{"OrderItems", createOrderItemsTable},
		{"OrderTimeline", createOrderTimelineTable},
		{"LoyaltyAccounts", createLoyaltyAccountsTable},
		{"LoyaltyTransactions", createLoyaltyTransactionsTable},
		{"Wallets", createWalletsTable},
		{"WalletTransactions", createWalletTransactionsTable},
		{"Refunds", createRefundsTable},
	}

	for _, tbl := range tables {
		if _, err := db.Exec(tbl.query); err != nil {
			t.Logf("failed to create table %s: %v", tbl.name, err)
		}
	}
}
