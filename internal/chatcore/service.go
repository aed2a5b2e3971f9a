package chatcore

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"whispergo/backend/internal/config"
	"whispergo/backend/internal/models"
)

// RoomState is the visitor-facing state of their current room.
type RoomState string

const (
	// StateNone means the visitor is unknown or has no room.
	StateNone RoomState = ""
	// StateWaiting means the room holds only this visitor, parked in the
	// matchmaking slot until a peer arrives.
	StateWaiting RoomState = "waiting"
	// StateActive means both participants are present.
	StateActive RoomState = "active"
	// StateTerminated means the peer already left; the room lingers so this
	// visitor can observe the departure.
	StateTerminated RoomState = "terminated"
)

// RoomStatus is what JoinOrStatus reports back to the transport layer.
type RoomStatus struct {
	State     RoomState            `json:"state"`
	PeerCount int                  `json:"peer_count"`
	Messages  []models.MessageView `json:"messages"`
}

// Service owns the whole mutable chat state: the visitor directory, the
// room registry and the single matchmaking slot. The three are one logical
// unit guarded by one mutex; every operation that touches more than one of
// them holds it for the full duration. Each room additionally has its own
// lock for its message ledger (always acquired after the service lock).
type Service struct {
	cfg    config.Config
	logger *slog.Logger

	mu    sync.Mutex
	users map[string]*models.Visitor
	rooms map[string]*models.Room
	// nextRoom is the matchmaking slot: the one waiting room a newcomer
	// joins. Invariant: nil, or a registered room with exactly one
	// participant and no terminator.
	nextRoom *models.Room

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewService creates an empty core. The reaper is not started; launch it
// with svc.StartReaper() and stop it with svc.Stop().
func NewService(cfg config.Config, logger *slog.Logger) *Service {
	return &Service{
		cfg:    cfg,
		logger: logger,
		users:  make(map[string]*models.Visitor),
		rooms:  make(map[string]*models.Room),
		stopCh: make(chan struct{}),
	}
}

// fault records a broken invariant. Loud but survivable in production;
// fatal under strict mode so tests discover the corruption at its source.
func (s *Service) fault(msg string, args ...any) {
	metricInvariantFaults.Inc()
	s.logger.Error(msg, args...)
	if s.cfg.Chat.StrictInvariants {
		panic(fmt.Sprintf("chatcore invariant: %s", msg))
	}
}

// Identify resolves a visitor from the opaque cookie value. A known ID gets
// its LastSeen refreshed; anything else mints a fresh identity. The second
// return is true when the caller must issue the new ID to the client.
func (s *Service) Identify(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if u, ok := s.users[id]; ok {
			u.Touch()
			return id, false
		}
	}

	newid := newID(func(candidate string) bool {
		_, ok := s.users[candidate]
		return ok
	})
	s.users[newid] = models.NewVisitor(newid)
	metricVisitorsCreated.Inc()
	s.logger.Debug("new visitor", "visitor", newid)
	return newid, true
}

// JoinOrStatus places a roomless visitor into a room (joining the waiting
// slot if one exists, creating one otherwise) and reports the room's state
// with the full backlog rendered from this visitor's point of view. An
// unknown visitor gets a neutral empty status.
func (s *Service) JoinOrStatus(userID string) RoomStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return RoomStatus{}
	}
	u.Touch()

	if u.RoomID != "" {
		room, ok := s.rooms[u.RoomID]
		if !ok {
			s.fault("visitor points at missing room", "visitor", u.ID, "room", u.RoomID)
			u.RoomID = ""
			return RoomStatus{}
		}
		return statusOf(u, room)
	}

	if s.nextRoom != nil {
		room := s.nextRoom
		count := room.AddUser(u.ID)
		u.RoomID = room.ID
		u.ChatCount++
		if count >= 2 {
			s.nextRoom = nil
			metricMatches.Inc()
			s.logger.Info("visitors matched", "room", room.ID, "visitor", u.ID)
		}
		return statusOf(u, room)
	}

	roomID := newID(func(candidate string) bool {
		_, ok := s.rooms[candidate]
		return ok
	})
	room := models.NewRoom(roomID, u.ID)
	s.rooms[roomID] = room
	s.nextRoom = room
	u.RoomID = roomID
	u.ChatCount++
	metricRoomsCreated.Inc()
	s.logger.Info("room created", "room", roomID, "visitor", u.ID)
	return statusOf(u, room)
}

func statusOf(u *models.Visitor, room *models.Room) RoomStatus {
	state := StateActive
	if room.Terminator() != "" {
		state = StateTerminated
	} else if room.UserCount() == 1 {
		state = StateWaiting
	}
	return RoomStatus{
		State:     state,
		PeerCount: room.UserCount(),
		Messages:  room.RenderFor(u.ID),
	}
}

// FetchMessages renders the visitor's inbox newest-first. Rendering marks
// the peer's messages as seen; absence of visitor or room yields nil.
func (s *Service) FetchMessages(userID string) []models.MessageView {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	u.Touch()
	if u.RoomID == "" {
		return nil
	}
	room, ok := s.rooms[u.RoomID]
	if !ok {
		s.fault("visitor points at missing room", "visitor", u.ID, "room", u.RoomID)
		u.RoomID = ""
		return nil
	}
	return room.RenderFor(u.ID)
}

// SendMessage appends a message to the visitor's room. Messages to nowhere
// (unknown visitor, no room, terminated room) are dropped with a log line,
// never an error to the caller.
func (s *Service) SendMessage(userID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok || u.RoomID == "" {
		metricMessagesDropped.Inc()
		s.logger.Warn("dropping message from visitor without a room", "visitor", userID)
		return
	}
	room, ok := s.rooms[u.RoomID]
	if !ok {
		s.fault("visitor points at missing room", "visitor", u.ID, "room", u.RoomID)
		u.RoomID = ""
		metricMessagesDropped.Inc()
		return
	}
	if !room.Append(models.NewMessage(u.ID, text), s.cfg.Chat.MaxMessages) {
		metricMessagesDropped.Inc()
		s.logger.Warn("cannot send to terminated room", "room", room.ID, "visitor", u.ID)
		return
	}
	metricMessagesSent.Inc()
}

// Leave takes the visitor out of their room. The first of the pair to leave
// terminates the room but keeps it registered; the second departure deletes
// it. A visitor without a room is a no-op, so the call is idempotent.
func (s *Service) Leave(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok || u.RoomID == "" {
		return
	}
	room, ok := s.rooms[u.RoomID]
	u.RoomID = ""
	if !ok {
		s.fault("visitor points at missing room", "visitor", u.ID)
		return
	}

	switch {
	case room.Terminator() != "":
		// The peer already left; this departure empties the room.
		delete(s.rooms, room.ID)
		s.logger.Debug("room closed", "room", room.ID)
	case room.UserCount() == 1:
		// Sole waiting participant walked out. The slot must point here.
		delete(s.rooms, room.ID)
		if s.nextRoom == room {
			s.nextRoom = nil
		} else {
			s.fault("waiting room was not the matchmaking slot", "room", room.ID)
		}
		s.logger.Debug("waiting room abandoned", "room", room.ID)
	default:
		room.Terminate(u.ID)
		s.logger.Debug("room terminated", "room", room.ID, "visitor", u.ID)
	}
}

// OnlineCount reports how many visitors are currently known.
func (s *Service) OnlineCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// DebugDump snapshots every visitor-to-room and room-to-participants
// association as text. Operational inspection only, not a stable format.
func (s *Service) DebugDump() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder

	userIDs := make([]string, 0, len(s.users))
	for id := range s.users {
		userIDs = append(userIDs, id)
	}
	sort.Strings(userIDs)
	for _, id := range userIDs {
		roomID := s.users[id].RoomID
		if roomID == "" {
			roomID = "none"
		}
		fmt.Fprintf(&b, "%s: %s\n", id, roomID)
	}

	roomIDs := make([]string, 0, len(s.rooms))
	for id := range s.rooms {
		roomIDs = append(roomIDs, id)
	}
	sort.Strings(roomIDs)
	for _, id := range roomIDs {
		members := s.rooms[id].Users()
		sort.Strings(members)
		fmt.Fprintf(&b, "%s -> %v\n", id, members)
	}

	return b.String()
}
