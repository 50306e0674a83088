package database

import (
	"context"
	"database/sql"
)

// schema lists the idempotent DDL executed at startup.  The index on
// (event_id, status, seat_label) serves the candidate-seat query of the
// purchase transaction; the unique key prevents duplicate labels within
// an event.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS events (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		title VARCHAR(255) NOT NULL,
		description TEXT NULL,
		starts_at DATETIME NULL,
		ends_at DATETIME NULL,
		address VARCHAR(255) NULL,
		organizer_id BIGINT UNSIGNED NOT NULL DEFAULT 0,
		remaining_tickets INT UNSIGNED NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS tickets (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		event_id BIGINT UNSIGNED NOT NULL,
		seat_label VARCHAR(16) NOT NULL,
		price_cents INT UNSIGNED NOT NULL DEFAULT 0,
		status ENUM('AVAILABLE','SOLD') NOT NULL DEFAULT 'AVAILABLE',
		buyer_id BIGINT UNSIGNED NULL,
		purchased_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_tickets_event_seat (event_id, seat_label),
		KEY idx_tickets_event_status (event_id, status, seat_label),
		CONSTRAINT fk_tickets_event FOREIGN KEY (event_id) REFERENCES events (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// InitSchema creates the events and tickets tables if they do not exist.
// Safe to run on every startup.
func InitSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
