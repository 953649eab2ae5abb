package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"finkid/internal/domain"
)

func (d *Database) GetUserSettingsWithDefault(
	ctx context.Context,
	userID int64,
) (*domain.UserSettings, error) {
	query := `select user_id, news_api_key, digest_hour_utc, digest_enabled
	from user_settings
	where user_id = ?`

	var us domain.UserSettings
	err := d.db.QueryRowContext(ctx, query, userID).
		Scan(&us.UserID, &us.NewsAPIKey, &us.DigestHourUTC, &us.DigestEnabled)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.UserSettings{
			UserID:        userID,
			DigestHourUTC: domain.DefaultDigestHourUTC,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	us.NewsAPIKey = strings.TrimSpace(us.NewsAPIKey)

	return &us, nil
}

// UpsertNewsAPIKey stores the key; an empty key clears it.
func (d *Database) UpsertNewsAPIKey(ctx context.Context, userID int64, apiKey string) error {
	query := `insert into user_settings (user_id, news_api_key)
	values (?, ?)
	on conflict (user_id) do update
	set news_api_key = excluded.news_api_key`

	_, err := d.db.ExecContext(ctx, query, userID, strings.TrimSpace(apiKey))

	return err
}

// UpsertDigestHour sets the digest hour and turns the digest on.
func (d *Database) UpsertDigestHour(ctx context.Context, userID int64, hourUTC int64) error {
	if hourUTC < 0 || hourUTC > 23 {
		return fmt.Errorf("digest hour is out of range: %d", hourUTC)
	}

	query := `insert into user_settings (user_id, digest_hour_utc, digest_enabled)
	values (?, ?, 1)
	on conflict (user_id) do update
	set digest_hour_utc = excluded.digest_hour_utc,
	digest_enabled = 1`

	_, err := d.db.ExecContext(ctx, query, userID, hourUTC)

	return err
}

func (d *Database) DisableDigest(ctx context.Context, userID int64) error {
	query := `insert into user_settings (user_id, digest_enabled)
	values (?, 0)
	on conflict (user_id) do update
	set digest_enabled = 0`

	_, err := d.db.ExecContext(ctx, query, userID)

	return err
}

func (d *Database) GetDigestSubscribers(
	ctx context.Context,
	hourUTC int64,
) ([]domain.DigestSubscriber, error) {
	query := `select user_id, news_api_key
	from user_settings
	where digest_enabled = 1
	and digest_hour_utc = ?
	order by user_id`

	rows, err := d.db.QueryContext(ctx, query, hourUTC)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			d.log.ErrorContext(ctx, "Failed to close rows",
				"error", err,
				"hourUTC", hourUTC,
				"operation", "GetDigestSubscribers")
		}
	}()

	var subscribers []domain.DigestSubscriber
	for rows.Next() {
		var s domain.DigestSubscriber
		if err = rows.Scan(&s.UserID, &s.NewsAPIKey); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		s.NewsAPIKey = strings.TrimSpace(s.NewsAPIKey)
		subscribers = append(subscribers, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return subscribers, nil
}

// SaveLastSummary replaces the user's previous summary.
func (d *Database) SaveLastSummary(ctx context.Context, s domain.LastSummary) error {
	if strings.TrimSpace(s.URL) == "" || strings.TrimSpace(s.Summary) == "" {
		return errors.New("summary URL or text is empty")
	}

	createdAt := s.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `insert into last_summaries (user_id, url, summary, degraded, created_at)
	values (?, ?, ?, ?, ?)
	on conflict (user_id) do update
	set url = excluded.url,
	summary = excluded.summary,
	degraded = excluded.degraded,
	created_at = excluded.created_at`

	_, err := d.db.ExecContext(ctx, query, s.UserID, s.URL, s.Summary, s.Degraded, createdAt.UTC())

	return err
}

func (d *Database) GetLastSummary(ctx context.Context, userID int64) (*domain.LastSummary, error) {
	query := `select user_id, url, summary, degraded, created_at
	from last_summaries
	where user_id = ?`

	var s domain.LastSummary
	err := d.db.QueryRowContext(ctx, query, userID).
		Scan(&s.UserID, &s.URL, &s.Summary, &s.Degraded, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	return &s, nil
}
