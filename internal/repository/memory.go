package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"marketplace_chat/internal/domain"
	apperrors "marketplace_chat/pkg/errors"
)

// In-memory implementations of the chat store. They back the "memory"
// database driver and the service tests. Every read returns a copy.

type MemoryChatRoomRepository struct {
	mu    sync.RWMutex
	rooms map[string]*domain.ChatRoom
	order []string
}

func NewMemoryChatRoomRepository() *MemoryChatRoomRepository {
	return &MemoryChatRoomRepository{rooms: make(map[string]*domain.ChatRoom)}
}

func (r *MemoryChatRoomRepository) SaveIfAbsent(_ context.Context, room *domain.ChatRoom) (*domain.ChatRoom, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.rooms[room.ID]; ok {
		return cloneRoom(existing), false, nil
	}
	stored := cloneRoom(room)
	r.rooms[room.ID] = stored
	r.order = append(r.order, room.ID)
	return cloneRoom(stored), true, nil
}

func (r *MemoryChatRoomRepository) GetByID(_ context.Context, id string) (*domain.ChatRoom, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[id]
	if !ok {
		return nil, apperrors.ErrRoomNotFound
	}
	return cloneRoom(room), nil
}

func (r *MemoryChatRoomRepository) ListByMember(_ context.Context, memberID int64) ([]*domain.ChatRoom, error) {
	return r.filter(func(room *domain.ChatRoom) bool {
		return room.HasMember(memberID)
	}), nil
}

func (r *MemoryChatRoomRepository) MaxGroupSerial(context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var highest int64
	for id := range r.rooms {
		if serial, ok := domain.GroupSerial(id); ok && serial > highest {
			highest = serial
		}
	}
	return highest, nil
}

func (r *MemoryChatRoomRepository) UpdateLastReadAt(_ context.Context, roomID string, memberID int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return apperrors.ErrRoomNotFound
	}
	p := room.Participant(memberID)
	if p == nil {
		return apperrors.ErrAccessDenied
	}
	if p.LastReadAt == nil || at.After(*p.LastReadAt) {
		p.LastReadAt = &at
	}
	return nil
}

func (r *MemoryChatRoomRepository) filter(keep func(*domain.ChatRoom) bool) []*domain.ChatRoom {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.ChatRoom, 0)
	for _, id := range r.order {
		if room := r.rooms[id]; keep(room) {
			out = append(out, cloneRoom(room))
		}
	}
	return out
}

func cloneRoom(room *domain.ChatRoom) *domain.ChatRoom {
	out := *room
	out.Participants = make([]domain.Participant, len(room.Participants))
	for i, p := range room.Participants {
		if p.MemberID != nil {
			id := *p.MemberID
			p.MemberID = &id
		}
		if p.LastReadAt != nil {
			at := *p.LastReadAt
			p.LastReadAt = &at
		}
		out.Participants[i] = p
	}
	return &out
}

type MemoryChatMessageRepository struct {
	mu       sync.RWMutex
	nextID   int64
	messages map[string][]*domain.ChatMessage
}

func NewMemoryChatMessageRepository() *MemoryChatMessageRepository {
	return &MemoryChatMessageRepository{messages: make(map[string][]*domain.ChatMessage)}
}

func (r *MemoryChatMessageRepository) Create(_ context.Context, message *domain.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	message.ID = r.nextID
	stored := *message
	r.messages[message.RoomID] = append(r.messages[message.RoomID], &stored)
	return nil
}

func (r *MemoryChatMessageRepository) ListByRoom(_ context.Context, roomID string) ([]*domain.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.messages[roomID]
	out := make([]*domain.ChatMessage, 0, len(stored))
	for _, m := range stored {
		c := *m
		out = append(out, &c)
	}
	return out, nil
}

func (r *MemoryChatMessageRepository) GetLatest(_ context.Context, roomID string) (*domain.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.messages[roomID]
	if len(stored) == 0 {
		return nil, nil
	}
	c := *stored[len(stored)-1]
	return &c, nil
}

func (r *MemoryChatMessageRepository) CountSince(_ context.Context, roomID string, since *time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.messages[roomID]
	if since == nil {
		return int64(len(stored)), nil
	}
	// sent_at increases with position, so the tail after since is contiguous
	i := sort.Search(len(stored), func(i int) bool {
		return stored[i].SentAt.After(*since)
	})
	return int64(len(stored) - i), nil
}

type MemoryMemberDirectory struct {
	mu      sync.RWMutex
	members map[int64]domain.Member
	stores  map[string]int64
}

func NewMemoryMemberDirectory() *MemoryMemberDirectory {
	return &MemoryMemberDirectory{
		members: make(map[int64]domain.Member),
		stores:  make(map[string]int64),
	}
}

// AddMember inserts or replaces a directory entry.
func (d *MemoryMemberDirectory) AddMember(member domain.Member) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.members[member.ID] = member
}

func (d *MemoryMemberDirectory) AddStore(storeRef string, ownerID int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stores[storeRef] = ownerID
}

func (d *MemoryMemberDirectory) Resolve(_ context.Context, memberID int64) (*domain.Member, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	m, ok := d.members[memberID]
	if !ok {
		return nil, apperrors.ErrMemberNotFound
	}
	return &m, nil
}

func (d *MemoryMemberDirectory) ResolveStoreOwner(ctx context.Context, storeRef string) (*domain.Member, error) {
	d.mu.RLock()
	ownerID, ok := d.stores[storeRef]
	d.mu.RUnlock()
	if !ok {
		return nil, apperrors.ErrMemberNotFound
	}
	return d.Resolve(ctx, ownerID)
}

func (d *MemoryMemberDirectory) ResolveByEmail(_ context.Context, email string) (*domain.Member, error) {
	if strings.TrimSpace(email) == "" {
		return nil, apperrors.ErrMemberNotFound
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	var found *domain.Member
	for _, m := range d.members {
		if strings.EqualFold(m.Email, email) && (found == nil || m.ID < found.ID) {
			m := m
			found = &m
		}
	}
	if found == nil {
		return nil, apperrors.ErrMemberNotFound
	}
	return found, nil
}

func (d *MemoryMemberDirectory) SearchByDisplayName(_ context.Context, text string) ([]*domain.Member, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []*domain.Member
	for _, m := range d.members {
		if strings.Contains(m.DisplayName, text) {
			m := m
			out = append(out, &m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MemberSeed is the JSON layout accepted by LoadSeed.
type MemberSeed struct {
	Members []domain.Member  `json:"members"`
	Stores  map[string]int64 `json:"stores"`
}

// LoadSeed fills the directory from a JSON document. Stores must point at a
// member listed in the same document or added earlier.
func (d *MemoryMemberDirectory) LoadSeed(r io.Reader) error {
	var seed MemberSeed
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return fmt.Errorf("decode member seed: %w", err)
	}

	for _, m := range seed.Members {
		if m.ID <= 0 || strings.TrimSpace(m.DisplayName) == "" {
			return fmt.Errorf("member seed entry %d: id and name are required", m.ID)
		}
		d.AddMember(m)
	}
	for ref, owner := range seed.Stores {
		if _, err := d.Resolve(context.Background(), owner); err != nil {
			return fmt.Errorf("store %q: owner %d: %w", ref, owner, err)
		}
		d.AddStore(ref, owner)
	}
	return nil
}
