package chatcore

import (
	"time"

	"whispergo/backend/internal/models"
)

// StartReaper launches the sweep goroutine. The WaitGroup add happens here,
// on the caller's goroutine, so a prompt Stop never races it.
func (s *Service) StartReaper() {
	s.wg.Add(1)
	go s.runReaper()
}

// runReaper sweeps idle visitors on the configured interval until Stop is
// called.
func (s *Service) runReaper() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.Chat.CleanupPollFrequency)
	defer ticker.Stop()

	s.logger.Info("reaper started", "interval", s.cfg.Chat.CleanupPollFrequency)
	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			s.logger.Info("reaper stopped")
			return
		}
	}
}

// Stop shuts the reaper down and waits for the in-flight sweep to finish.
func (s *Service) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

// sweep evicts every visitor idle past the bound that matches their
// situation: the outside bound for visitors not in an active two-party
// chat, the inside bound for visitors mid-conversation. Runs entirely
// under the service lock, so it only ever sees a consistent snapshot.
func (s *Service) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := models.NowMillis()
	outside := s.cfg.Chat.MaxIdleOutside.Milliseconds()
	inside := s.cfg.Chat.MaxIdleInside.Milliseconds()

	// Candidate selection already uses the per-case bound: the bounds are
	// independently configurable, so the inside bound must bite even when
	// it is shorter than the outside one.
	stale := make([]*models.Visitor, 0)
	for _, u := range s.users {
		bound := outside
		if room, ok := s.rooms[u.RoomID]; ok && room.Terminator() == "" && room.UserCount() == 2 {
			bound = inside
		}
		if u.IdleMillis(now) > bound {
			stale = append(stale, u)
		}
	}

	for _, u := range stale {
		idle := u.IdleMillis(now)

		if u.RoomID == "" {
			// Never joined a room, or already left one that is torn down.
			delete(s.users, u.ID)
			metricVisitorsReaped.Inc()
			s.logger.Debug("reaped idle visitor", "visitor", u.ID,
				"age_ms", now-u.FirstSeen, "rooms", u.ChatCount)
			continue
		}

		room, ok := s.rooms[u.RoomID]
		if !ok {
			s.fault("stale visitor points at missing room", "visitor", u.ID, "room", u.RoomID)
			continue
		}

		switch terminator := room.Terminator(); {
		case terminator == u.ID:
			// Leave clears RoomID before terminating, so a visitor still
			// pointing at a room they terminated is corrupt state.
			s.fault("stale visitor is terminator of own room", "visitor", u.ID, "room", room.ID)

		case terminator != "":
			// The peer left and this visitor never came back. A room can
			// also land here mid-sweep, when the peer was reaped moments
			// ago; the visitor is then re-judged by the outside bound,
			// which governs anyone not in a live conversation.
			if idle <= outside {
				continue
			}
			// Final teardown of both records.
			delete(s.rooms, room.ID)
			delete(s.users, u.ID)
			metricRoomsReaped.Inc()
			metricVisitorsReaped.Inc()
			s.logger.Debug("reaped visitor and terminated room", "visitor", u.ID,
				"room", room.ID, "room_age_ms", now-room.Created)

		default:
			switch count := room.UserCount(); count {
			case 1:
				// Still waiting for a peer that never showed up.
				delete(s.rooms, room.ID)
				delete(s.users, u.ID)
				if s.nextRoom == room {
					s.nextRoom = nil
				} else {
					s.fault("reaped waiting room was not the matchmaking slot", "room", room.ID)
				}
				metricRoomsReaped.Inc()
				metricVisitorsReaped.Inc()
				s.logger.Debug("reaped waiting visitor and room", "visitor", u.ID, "room", room.ID)
			case 2:
				// Conversation is live; only evict past the inside bound,
				// and leave on the visitor's behalf so the peer sees it.
				if idle > inside {
					room.Terminate(u.ID)
					delete(s.users, u.ID)
					metricVisitorsReaped.Inc()
					s.logger.Debug("reaped visitor from active room", "visitor", u.ID,
						"room", room.ID, "idle_ms", idle)
				}
			default:
				s.fault("room has impossible participant count", "room", room.ID, "count", count)
			}
		}
	}
}
