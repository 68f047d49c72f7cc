package database

import (
	"context"
	"time"

	"github.com/kapu/liqu-discord-bot/internal/domain"
	"github.com/kapu/liqu-discord-bot/pkg/errors"
	"go.uber.org/zap"
)

const createAuditTableSQL = `CREATE TABLE IF NOT EXISTS ask_audit (
	id              BIGSERIAL PRIMARY KEY,
	interaction_id  TEXT        NOT NULL,
	guild_id        TEXT        NOT NULL DEFAULT '',
	channel_id      TEXT        NOT NULL DEFAULT '',
	user_id         TEXT        NOT NULL DEFAULT '',
	question_length INTEGER     NOT NULL,
	answer_length   INTEGER     NOT NULL,
	chunks          INTEGER     NOT NULL,
	backend         TEXT        NOT NULL,
	outcome         TEXT        NOT NULL,
	duration_ms     BIGINT      NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL
)`

const insertAuditSQL = `INSERT INTO ask_audit (
	interaction_id, guild_id, channel_id, user_id,
	question_length, answer_length, chunks, backend, outcome, duration_ms, created_at
) VALUES (
	:interaction_id, :guild_id, :channel_id, :user_id,
	:question_length, :answer_length, :chunks, :backend, :outcome, :duration_ms, :created_at
)`

type auditRow struct {
	InteractionID  string    `db:"interaction_id"`
	GuildID        string    `db:"guild_id"`
	ChannelID      string    `db:"channel_id"`
	UserID         string    `db:"user_id"`
	QuestionLength int       `db:"question_length"`
	AnswerLength   int       `db:"answer_length"`
	Chunks         int       `db:"chunks"`
	Backend        string    `db:"backend"`
	Outcome        string    `db:"outcome"`
	DurationMS     int64     `db:"duration_ms"`
	CreatedAt      time.Time `db:"created_at"`
}

// AuditRepository stores /ask dispatch metadata. Question and answer text are
// never written.
type AuditRepository struct {
	postgres *PostgresService
	logger   *zap.Logger
}

func NewAuditRepository(postgres *PostgresService, logger *zap.Logger) *AuditRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditRepository{postgres: postgres, logger: logger}
}

func (r *AuditRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.postgres.GetDB().ExecContext(ctx, createAuditTableSQL); err != nil {
		return errors.NewServiceError("failed to create ask_audit table", "postgres", "ensure_schema", err)
	}
	return nil
}

func (r *AuditRepository) Record(ctx context.Context, entry domain.AuditEntry) error {
	row := auditRow{
		InteractionID:  entry.InteractionID,
		GuildID:        entry.GuildID,
		ChannelID:      entry.ChannelID,
		UserID:         entry.UserID,
		QuestionLength: entry.QuestionLength,
		AnswerLength:   entry.AnswerLength,
		Chunks:         entry.Chunks,
		Backend:        entry.Backend,
		Outcome:        string(entry.Outcome),
		DurationMS:     entry.Duration.Milliseconds(),
		CreatedAt:      entry.CreatedAt.UTC(),
	}

	if _, err := r.postgres.GetDB().NamedExecContext(ctx, insertAuditSQL, row); err != nil {
		r.logger.Error("Failed to insert audit entry",
			zap.String("interaction_id", entry.InteractionID),
			zap.Error(err),
		)
		return errors.NewServiceError("failed to record ask audit", "postgres", "record", err)
	}
	return nil
}
