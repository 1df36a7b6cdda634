package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order by Migrate.  Every statement is idempotent so
// Migrate can run on each deploy.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		username      VARCHAR(64)  NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		full_name     VARCHAR(128) NOT NULL DEFAULT '',
		role          ENUM('admin','staff') NOT NULL DEFAULT 'staff',
		is_active     BOOLEAN NOT NULL DEFAULT TRUE,
		created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_username (username)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS units (
		id                    BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name                  VARCHAR(128) NOT NULL,
		number                INT NOT NULL,
		description           TEXT NULL,
		capacity              INT NOT NULL,
		allows_children       BOOLEAN NOT NULL DEFAULT TRUE,
		weekday_rate_cents    BIGINT NOT NULL,
		weekend_rate_cents    BIGINT NOT NULL,
		included_adults       INT NOT NULL DEFAULT 0,
		extra_adult_fee_cents BIGINT NOT NULL DEFAULT 0,
		ical_url              VARCHAR(512) NOT NULL DEFAULT '',
		created_at            TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at            TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_units_number (number)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS clients (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name       VARCHAR(128) NOT NULL,
		name_key   VARCHAR(128) NOT NULL,
		phone      VARCHAR(32)  NOT NULL,
		email      VARCHAR(255) NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_clients_phone (phone),
		KEY idx_clients_name_key (name_key)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS reservations (
		id             BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		unit_id        BIGINT UNSIGNED NOT NULL,
		client_id      BIGINT UNSIGNED NOT NULL,
		check_in       DATE NOT NULL,
		check_out      DATE NOT NULL,
		status         ENUM('pending','confirmed','cancelled','completed') NOT NULL DEFAULT 'pending',
		adults         INT NOT NULL DEFAULT 1,
		children       INT NOT NULL DEFAULT 0,
		total_cents    BIGINT NOT NULL DEFAULT 0,
		deposit_cents  BIGINT NOT NULL DEFAULT 0,
		deposit_paid   BOOLEAN NOT NULL DEFAULT FALSE,
		full_paid      BOOLEAN NOT NULL DEFAULT FALSE,
		checked_in_at  DATETIME NULL,
		checked_out_at DATETIME NULL,
		rating         TINYINT NULL,
		feedback       TEXT NULL,
		origin         ENUM('direct','external') NOT NULL DEFAULT 'direct',
		notes          TEXT NULL,
		created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_reservations_unit_dates (unit_id, check_in, check_out),
		KEY idx_reservations_status (status),
		CONSTRAINT fk_reservations_unit FOREIGN KEY (unit_id) REFERENCES units (id),
		CONSTRAINT fk_reservations_client FOREIGN KEY (client_id) REFERENCES clients (id),
		CONSTRAINT chk_reservations_range CHECK (check_out > check_in)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS messages (
		id             BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		reservation_id BIGINT UNSIGNED NOT NULL,
		sender         ENUM('client','system') NOT NULL,
		body           TEXT NOT NULL,
		is_read        BOOLEAN NOT NULL DEFAULT FALSE,
		created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_messages_reservation (reservation_id, created_at),
		CONSTRAINT fk_messages_reservation FOREIGN KEY (reservation_id) REFERENCES reservations (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS audit_logs (
		id             BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		reservation_id BIGINT UNSIGNED NOT NULL,
		actor          VARCHAR(64) NOT NULL,
		action         VARCHAR(64) NOT NULL,
		details        VARCHAR(512) NOT NULL DEFAULT '',
		created_at     DATETIME NOT NULL,
		KEY idx_audit_logs_reservation (reservation_id, created_at),
		CONSTRAINT fk_audit_logs_reservation FOREIGN KEY (reservation_id) REFERENCES reservations (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates the tables the application needs.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
