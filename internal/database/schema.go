package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements creates the five domain tables plus the refresh-token
// table.  Ordering matters: children reference parents.  Two constraints
// carry invariants the application relies on:
//
//   - habit_checks (habit_id, date_checked) UNIQUE is the sole guard
//     against double-awarding XP under concurrent check requests;
//   - users.email UNIQUE backs duplicate-registration detection.
//
// All habit/user children cascade on delete, so removing a habit wipes its
// completion ledger and removing a user wipes everything they own.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            CHAR(36)     NOT NULL,
		name          VARCHAR(100) NOT NULL,
		email         VARCHAR(100) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		xp            INT          NOT NULL DEFAULT 0,
		level         INT          NOT NULL DEFAULT 1,
		avatar_url    VARCHAR(500) NULL,
		created_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS habits (
		id          CHAR(36)     NOT NULL,
		user_id     CHAR(36)     NOT NULL,
		title       VARCHAR(100) NOT NULL,
		description TEXT         NULL,
		category    VARCHAR(50)  NOT NULL,
		icon        VARCHAR(10)  NOT NULL,
		color       INT          NOT NULL,
		is_public   BOOLEAN      NOT NULL DEFAULT FALSE,
		created_at  DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_habits_user (user_id),
		CONSTRAINT fk_habits_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS habit_checks (
		id           CHAR(36) NOT NULL,
		habit_id     CHAR(36) NOT NULL,
		date_checked CHAR(10) NOT NULL,
		xp_earned    INT      NOT NULL DEFAULT 10,
		created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_checks_habit_day (habit_id, date_checked),
		CONSTRAINT fk_checks_habit FOREIGN KEY (habit_id) REFERENCES habits (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS friends (
		id         CHAR(36)    NOT NULL,
		user_id    CHAR(36)    NOT NULL,
		friend_id  CHAR(36)    NOT NULL,
		status     VARCHAR(20) NOT NULL DEFAULT 'pending',
		created_at DATETIME    NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_friends_pair (user_id, friend_id),
		KEY idx_friends_friend (friend_id),
		CONSTRAINT fk_friends_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE,
		CONSTRAINT fk_friends_friend FOREIGN KEY (friend_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS badges (
		id          CHAR(36)     NOT NULL,
		user_id     CHAR(36)     NOT NULL,
		badge_type  VARCHAR(50)  NOT NULL,
		title       VARCHAR(100) NOT NULL,
		description TEXT         NULL,
		created_at  DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_badges_user (user_id),
		CONSTRAINT fk_badges_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id    CHAR(36)        NOT NULL,
		token_hash CHAR(64)        NOT NULL,
		expires_at DATETIME        NOT NULL,
		revoked_at DATETIME        NULL,
		created_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_refresh_hash (token_hash),
		KEY idx_refresh_user (user_id),
		CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates all tables if they do not exist yet.  It is run at
// startup and is idempotent.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
