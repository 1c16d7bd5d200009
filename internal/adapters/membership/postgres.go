package membership

import (
	"context"
	"fmt"

	"github.com/dkeye/Parley/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Postgres answers membership questions from the conversation store owned
// by the messaging service. It only reads.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	log.Info().Str("module", "adapters.membership").Msg("connected to conversation store")
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() { p.pool.Close() }

func (p *Postgres) IsMember(ctx context.Context, user domain.UserID, room domain.RoomID) (bool, error) {
	const query = `
		SELECT EXISTS(
			SELECT 1 FROM conversation_participants
			WHERE conversation_id::text = $1 AND account_id::text = $2
		)`

	var exists bool
	if err := p.pool.QueryRow(ctx, query, room.String(), user.String()).Scan(&exists); err != nil {
		return false, fmt.Errorf("is member: %w", err)
	}
	return exists, nil
}

func (p *Postgres) ConversationsOf(ctx context.Context, user domain.UserID) ([]domain.RoomID, error) {
	const query = `
		SELECT conversation_id::text FROM conversation_participants
		WHERE account_id::text = $1
		ORDER BY conversation_id`

	rows, err := p.pool.Query(ctx, query, user.String())
	if err != nil {
		return nil, fmt.Errorf("conversations of: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[domain.RoomID])
	if err != nil {
		return nil, fmt.Errorf("conversations of: %w", err)
	}
	return ids, nil
}
