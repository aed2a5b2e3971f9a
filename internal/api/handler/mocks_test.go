package handler_test

import (
	"github.com/stretchr/testify/mock"

	"whispergo/backend/internal/chatcore"
	"whispergo/backend/internal/models"
)

// MockCore is a testify mock of the handler.ChatCore interface, so the
// transport layer is tested without standing up real chat state.
type MockCore struct {
	mock.Mock
}

func (m *MockCore) Identify(cookie string) (string, bool) {
	args := m.Called(cookie)
	return args.String(0), args.Bool(1)
}

func (m *MockCore) JoinOrStatus(userID string) chatcore.RoomStatus {
	args := m.Called(userID)
	return args.Get(0).(chatcore.RoomStatus)
}

func (m *MockCore) FetchMessages(userID string) []models.MessageView {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]models.MessageView)
}

func (m *MockCore) SendMessage(userID, text string) {
	m.Called(userID, text)
}

func (m *MockCore) Leave(userID string) {
	m.Called(userID)
}

func (m *MockCore) OnlineCount() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockCore) DebugDump() string {
	args := m.Called()
	return args.String(0)
}
