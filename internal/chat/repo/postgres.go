package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"campus-ride/internal/chat/domain"
	"campus-ride/internal/shared/fieldmap"
)

var messages = fieldmap.New[domain.Message](domain.TableMessages)

type MessageRepo struct {
	db *pgxpool.Pool
}

func NewMessageRepo(db *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{db: db}
}

func (r *MessageRepo) CreateMessage(ctx context.Context, m *domain.Message) error {
	if _, err := r.db.Exec(ctx, messages.InsertSQL(), messages.Values(m)...); err != nil {
		return fmt.Errorf("insert message failed: %w", err)
	}
	return nil
}

func (r *MessageRepo) ListMessages(ctx context.Context, chatID string) ([]domain.Message, error) {
	return r.list(ctx, messages.SelectSQL()+" WHERE chat_id = $1 ORDER BY created_at ASC, id ASC", chatID)
}

func (r *MessageRepo) LatestPerChat(ctx context.Context, userID string) ([]domain.Message, error) {
	query := fmt.Sprintf(`
		SELECT * FROM (
			SELECT DISTINCT ON (chat_id) %s
			FROM %s
			WHERE sender_id = $1 OR receiver_id = $1
			ORDER BY chat_id, created_at DESC
		) latest
		ORDER BY created_at DESC
	`, messages.ColumnList(), messages.Table())
	return r.list(ctx, query, userID)
}

func (r *MessageRepo) list(ctx context.Context, query string, arg string) ([]domain.Message, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query messages failed: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Message])
	if err != nil {
		return nil, fmt.Errorf("scan messages failed: %w", err)
	}
	return out, nil
}
