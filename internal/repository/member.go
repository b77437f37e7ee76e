//go:generate go run go.uber.org/mock/mockgen -source=member.go -destination=../mocks/mock_member_directory.go -package=mocks
package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"marketplace_chat/internal/domain"
	apperrors "marketplace_chat/pkg/errors"
	"marketplace_chat/pkg/logger"
)

// MemberDirectory is the read-only view of marketplace accounts the chat core
// needs. Accounts themselves are owned elsewhere.
type MemberDirectory interface {
	Resolve(ctx context.Context, memberID int64) (*domain.Member, error)
	// ResolveStoreOwner returns the member that owns the store with the given URL ref.
	ResolveStoreOwner(ctx context.Context, storeRef string) (*domain.Member, error)
	// ResolveByEmail matches email case-insensitively. When several accounts
	// share an address the lowest id wins.
	ResolveByEmail(ctx context.Context, email string) (*domain.Member, error)
	SearchByDisplayName(ctx context.Context, text string) ([]*domain.Member, error)
}

type memberDirectory struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewMemberDirectory(db *pgxpool.Pool, log logger.Logger) MemberDirectory {
	return &memberDirectory{db: db, log: log}
}

func (r *memberDirectory) Resolve(ctx context.Context, memberID int64) (*domain.Member, error) {
	member := &domain.Member{}
	err := r.db.QueryRow(ctx, `
		SELECT id, display_name, email, member_role
		FROM chat_members
		WHERE id = $1
	`, memberID).Scan(&member.ID, &member.DisplayName, &member.Email, &member.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMemberNotFound
		}
		r.log.Error("Failed to resolve member", "error", err, "member_id", memberID)
		return nil, err
	}

	return member, nil
}

func (r *memberDirectory) ResolveStoreOwner(ctx context.Context, storeRef string) (*domain.Member, error) {
	member := &domain.Member{}
	err := r.db.QueryRow(ctx, `
		SELECT m.id, m.display_name, m.email, m.member_role
		FROM chat_stores s
		JOIN chat_members m ON m.id = s.owner_member_id
		WHERE s.store_ref = $1
	`, storeRef).Scan(&member.ID, &member.DisplayName, &member.Email, &member.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMemberNotFound
		}
		r.log.Error("Failed to resolve store owner", "error", err, "store_ref", storeRef)
		return nil, err
	}

	return member, nil
}

func (r *memberDirectory) ResolveByEmail(ctx context.Context, email string) (*domain.Member, error) {
	if strings.TrimSpace(email) == "" {
		return nil, apperrors.ErrMemberNotFound
	}

	member := &domain.Member{}
	err := r.db.QueryRow(ctx, `
		SELECT id, display_name, email, member_role
		FROM chat_members
		WHERE lower(email) = lower($1)
		ORDER BY id
		LIMIT 1
	`, email).Scan(&member.ID, &member.DisplayName, &member.Email, &member.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMemberNotFound
		}
		r.log.Error("Failed to resolve member by email", "error", err)
		return nil, err
	}

	return member, nil
}

func (r *memberDirectory) SearchByDisplayName(ctx context.Context, text string) ([]*domain.Member, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, display_name, email, member_role
		FROM chat_members
		WHERE strpos(display_name, $1) > 0
		ORDER BY id
	`, text)
	if err != nil {
		r.log.Error("Failed to search members", "error", err)
		return nil, err
	}
	defer rows.Close()

	var members []*domain.Member
	for rows.Next() {
		member := &domain.Member{}
		if err := rows.Scan(&member.ID, &member.DisplayName, &member.Email, &member.Role); err != nil {
			r.log.Error("Failed to scan member", "error", err)
			return nil, err
		}
		members = append(members, member)
	}

	return members, rows.Err()
}
