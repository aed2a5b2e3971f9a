package chatcore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricVisitorsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_visitors_created_total",
		Help: "Total anonymous visitor identities minted",
	})

	metricRoomsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_rooms_created_total",
		Help: "Total rooms created by the matchmaker",
	})

	metricMatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_matches_total",
		Help: "Total waiting rooms completed into active two-party chats",
	})

	metricMessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_messages_sent_total",
		Help: "Total user messages appended to room ledgers",
	})

	metricMessagesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_messages_dropped_total",
		Help: "Total user messages dropped (no room, or room terminated)",
	})

	metricVisitorsReaped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_visitors_reaped_total",
		Help: "Total visitors evicted by the idle sweep",
	})

	metricRoomsReaped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_rooms_reaped_total",
		Help: "Total rooms removed by the idle sweep",
	})

	metricInvariantFaults = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_invariant_faults_total",
		Help: "Total broken-invariant observations (should stay at zero)",
	})
)
