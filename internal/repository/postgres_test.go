package repository

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"marketplace_chat/internal/domain"
	apperrors "marketplace_chat/pkg/errors"
	"marketplace_chat/pkg/logger"
)

// pgStore connects to DATABASE_DSN and applies the schema. Tests using it are
// skipped when the variable is unset.
type pgStore struct {
	db       *pgxpool.Pool
	rooms    ChatRoomRepository
	messages ChatMessageRepository
	members  MemberDirectory

	// suffix keeps ids from different runs apart
	suffix string
	base   int64
}

func newPGStore(t *testing.T) *pgStore {
	t.Helper()
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		t.Skip("DATABASE_DSN not set")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, Migrate(ctx, db))

	log := logger.Nop()
	s := &pgStore{
		db:       db,
		rooms:    NewChatRoomRepository(db, log),
		messages: NewChatMessageRepository(db, log),
		members:  NewMemberDirectory(db, log),
		suffix:   uuid.NewString()[:8],
		base:     time.Now().UnixNano() / 1000,
	}
	return s
}

func (s *pgStore) roomID(prefix string) string {
	return prefix + s.suffix
}

func (s *pgStore) member(t *testing.T, offset int64, name, email string) int64 {
	t.Helper()
	id := s.base + offset
	_, err := s.db.Exec(context.Background(), `
		INSERT INTO chat_members (id, display_name, email, member_role) VALUES ($1, $2, $3, $4)
	`, id, name, email, domain.MemberRoleBuyer)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = s.db.Exec(context.Background(), `DELETE FROM chat_members WHERE id = $1`, id)
	})
	return id
}

// forget removes rooms created by a test along with their rows.
func (s *pgStore) forget(t *testing.T, ids ...string) {
	t.Cleanup(func() {
		ctx := context.Background()
		for _, table := range []string{"chat_messages", "chat_participants"} {
			_, _ = s.db.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE room_id = ANY($1)`, table), ids)
		}
		_, _ = s.db.Exec(ctx, `DELETE FROM chat_rooms WHERE id = ANY($1)`, ids)
	})
}

func pgTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func TestPostgresChatRoomRepository_SaveIfAbsent(t *testing.T) {
	s := newPGStore(t)
	ctx := context.Background()
	mina := s.member(t, 1, "Mina", "")
	dojin := s.member(t, 2, "Dojin", "")

	id := s.roomID("personal_Mina_Dojin_")
	s.forget(t, id)
	base := pgTime(time.Now())

	var wg sync.WaitGroup
	results := make([]*domain.ChatRoom, 8)
	created := make([]bool, len(results))
	errs := make([]error, len(results))
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], created[i], errs[i] = s.rooms.SaveIfAbsent(ctx, &domain.ChatRoom{
				ID:           id,
				Kind:         domain.RoomKindPersonal,
				Participants: []domain.Participant{domain.NewParticipant(mina, "Mina"), domain.NewParticipant(dojin, "Dojin")},
				CreatedAt:    base.Add(time.Duration(i) * time.Second),
			})
		}(i)
	}
	wg.Wait()

	winners := 0
	for i := range results {
		require.NoError(t, errs[i])
		require.True(t, results[0].CreatedAt.Equal(results[i].CreatedAt))
		require.Equal(t, []string{"Mina", "Dojin"}, results[i].MemberNames())
		if created[i] {
			winners++
		}
	}
	require.Equal(t, 1, winners)

	rooms, err := s.rooms.ListByMember(ctx, dojin)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	require.Equal(t, domain.RoomKindPersonal, rooms[0].Kind)
}

func TestPostgresChatRoomRepository_ListByMemberEmpty(t *testing.T) {
	s := newPGStore(t)

	rooms, err := s.rooms.ListByMember(context.Background(), s.base+99)
	require.NoError(t, err)
	require.NotNil(t, rooms)
	require.Empty(t, rooms)
}

func TestPostgresChatRoomRepository_UpdateLastReadAtNeverMovesBack(t *testing.T) {
	s := newPGStore(t)
	ctx := context.Background()
	mina := s.member(t, 1, "Mina", "")
	dojin := s.member(t, 2, "Dojin", "")

	id := s.roomID("personal_Mina_Dojin_")
	s.forget(t, id)
	_, _, err := s.rooms.SaveIfAbsent(ctx, &domain.ChatRoom{
		ID:           id,
		Kind:         domain.RoomKindPersonal,
		Participants: []domain.Participant{domain.NewParticipant(mina, "Mina"), domain.NewParticipant(dojin, "Dojin")},
		CreatedAt:    pgTime(time.Now()),
	})
	require.NoError(t, err)

	later := pgTime(time.Now().Add(time.Hour))
	require.NoError(t, s.rooms.UpdateLastReadAt(ctx, id, mina, later))
	require.NoError(t, s.rooms.UpdateLastReadAt(ctx, id, mina, later.Add(-time.Minute)))

	room, err := s.rooms.GetByID(ctx, id)
	require.NoError(t, err)
	require.True(t, later.Equal(*room.Participant(mina).LastReadAt))
	require.Nil(t, room.Participant(dojin).LastReadAt)

	err = s.rooms.UpdateLastReadAt(ctx, id, s.base+99, later)
	require.ErrorIs(t, err, apperrors.ErrAccessDenied)
}

func TestPostgresChatRoomRepository_MaxGroupSerial(t *testing.T) {
	s := newPGStore(t)
	ctx := context.Background()
	mina := s.member(t, 1, "Mina", "")
	sora := s.member(t, 2, "Sora", "")

	serial := s.base
	ids := []string{domain.GroupRoomID(serial), domain.GroupRoomID(serial - 1)}
	s.forget(t, ids...)
	for _, id := range ids {
		_, created, err := s.rooms.SaveIfAbsent(ctx, &domain.ChatRoom{
			ID:           id,
			Kind:         domain.RoomKindGroup,
			Participants: []domain.Participant{domain.NewParticipant(mina, "Mina"), domain.NewParticipant(sora, "Sora")},
			CreatedAt:    pgTime(time.Now()),
		})
		require.NoError(t, err)
		require.True(t, created)
	}

	highest, err := s.rooms.MaxGroupSerial(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, highest, serial)
}

func TestPostgresChatRoomRepository_RejectsMismatchedKind(t *testing.T) {
	s := newPGStore(t)
	ctx := context.Background()

	id := s.roomID("admin_")
	s.forget(t, id)
	_, err := s.db.Exec(ctx, `INSERT INTO chat_rooms (id, kind, created_at) VALUES ($1, $2, now())`, id, string(domain.RoomKindGroup))
	require.NoError(t, err)

	_, err = s.rooms.GetByID(ctx, id)
	require.Error(t, err)
	require.NotErrorIs(t, err, apperrors.ErrRoomNotFound)
}

func TestPostgresChatMessageRepository_OrderAndCount(t *testing.T) {
	s := newPGStore(t)
	ctx := context.Background()
	mina := s.member(t, 1, "Mina", "")
	dojin := s.member(t, 2, "Dojin", "")

	id := s.roomID("personal_Mina_Dojin_")
	s.forget(t, id)
	_, _, err := s.rooms.SaveIfAbsent(ctx, &domain.ChatRoom{
		ID:           id,
		Kind:         domain.RoomKindPersonal,
		Participants: []domain.Participant{domain.NewParticipant(mina, "Mina"), domain.NewParticipant(dojin, "Dojin")},
		CreatedAt:    pgTime(time.Now()),
	})
	require.NoError(t, err)

	latest, err := s.messages.GetLatest(ctx, id)
	require.NoError(t, err)
	require.Nil(t, latest)

	// equal timestamps still come back in insertion order
	base := pgTime(time.Now())
	bodies := []string{"first", "second", "third"}
	for i, body := range bodies {
		sentAt := base
		if i == 2 {
			sentAt = base.Add(time.Second)
		}
		require.NoError(t, s.messages.Create(ctx, &domain.ChatMessage{
			RoomID:            id,
			SenderID:          &mina,
			SenderDisplayName: "Mina",
			Body:              body,
			Kind:              domain.MessageKindUser,
			SentAt:            sentAt,
		}))
	}

	messages, err := s.messages.ListByRoom(ctx, id)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	for i, message := range messages {
		require.Equal(t, bodies[i], message.Body)
	}

	latest, err = s.messages.GetLatest(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "third", latest.Body)

	total, err := s.messages.CountSince(ctx, id, nil)
	require.NoError(t, err)
	require.Equal(t, int64(3), total)

	// strictly after the cursor
	unread, err := s.messages.CountSince(ctx, id, &base)
	require.NoError(t, err)
	require.Equal(t, int64(1), unread)
}

func TestPostgresMemberDirectory(t *testing.T) {
	s := newPGStore(t)
	ctx := context.Background()
	email := s.suffix + "@shop.example"
	dojin := s.member(t, 1, "Dojin"+s.suffix, email)
	s.member(t, 2, "Sora"+s.suffix, email)

	member, err := s.members.ResolveByEmail(ctx, strings.ToUpper(email))
	require.NoError(t, err)
	require.Equal(t, dojin, member.ID)

	_, err = s.members.ResolveByEmail(ctx, "ghost-"+email)
	require.ErrorIs(t, err, apperrors.ErrMemberNotFound)

	found, err := s.members.SearchByDisplayName(ctx, s.suffix)
	require.NoError(t, err)
	require.Len(t, found, 2)
	require.Equal(t, dojin, found[0].ID)

	_, err = s.members.Resolve(ctx, s.base+99)
	require.ErrorIs(t, err, apperrors.ErrMemberNotFound)
}
