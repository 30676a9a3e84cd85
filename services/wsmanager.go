package services

import (
	"sync"

	"github.com/gorilla/websocket"
)

// WSConnManager хранит открытые WebSocket-соединения по пользователям.
// У одного пользователя может быть несколько соединений (вкладки).
type WSConnManager struct {
	mu    sync.RWMutex
	users map[int64][]*websocket.Conn
}

func NewWSConnManager() *WSConnManager {
	return &WSConnManager{
		users: make(map[int64][]*websocket.Conn),
	}
}

func (m *WSConnManager) Add(userID int64, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[userID] = append(m.users[userID], conn)
}

func (m *WSConnManager) Remove(userID int64, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	conns := m.users[userID]
	for i, c := range conns {
		if c == conn {
			m.users[userID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(m.users[userID]) == 0 {
		delete(m.users, userID)
	}
}

// Send рассылает сообщение по всем соединениям пользователя и
// возвращает количество успешных доставок. Соединения, в которые
// не удалось записать, выбрасываются из реестра.
func (m *WSConnManager) Send(userID int64, message []byte) int {
	m.mu.RLock()
	conns := append([]*websocket.Conn(nil), m.users[userID]...)
	m.mu.RUnlock()

	delivered := 0
	var dead []*websocket.Conn
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			dead = append(dead, conn)
			continue
		}
		delivered++
	}

	for _, conn := range dead {
		m.Remove(userID, conn)
	}
	return delivered
}

var GlobalWSConnManager = NewWSConnManager()
