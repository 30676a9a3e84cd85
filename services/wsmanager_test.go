package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// newTestWSPair поднимает httptest-сервер с апгрейдом и возвращает
// серверную и клиентскую стороны одного соединения
func newTestWSPair(t *testing.T) (*websocket.Conn, *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	connCh := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		connCh <- conn
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return <-connCh, client
}

func TestWSConnManagerSendAndPrune(t *testing.T) {
	m := NewWSConnManager()
	serverConn, clientConn := newTestWSPair(t)
	m.Add(7, serverConn)

	require.Equal(t, 1, m.Send(7, []byte(`{"event":"ping"}`)))

	_, msg, err := clientConn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, `{"event":"ping"}`, string(msg))

	// Закрытое соединение выбрасывается из реестра при первой
	// неудачной доставке
	require.NoError(t, serverConn.Close())
	require.Equal(t, 0, m.Send(7, []byte("x")))

	m.mu.RLock()
	_, stillRegistered := m.users[7]
	m.mu.RUnlock()
	require.False(t, stillRegistered)
}

func TestSendWsNotifyTruncates(t *testing.T) {
	serverConn, clientConn := newTestWSPair(t)
	GlobalWSConnManager.Add(42, serverConn)
	defer GlobalWSConnManager.Remove(42, serverConn)

	long := strings.Repeat("a", 150)
	delivered, err := SendWsNotify(42, "", long)
	require.NoError(t, err)
	require.Equal(t, 1, delivered)

	_, raw, err := clientConn.ReadMessage()
	require.NoError(t, err)

	var notify WsNotify
	require.NoError(t, json.Unmarshal(raw, &notify))
	require.Equal(t, "info", notify.NotifyType)
	require.Equal(t, strings.Repeat("a", 100)+"...", notify.Message)
}

func TestSendWsNotifyEmptyMessage(t *testing.T) {
	delivered, err := SendWsNotify(42, "info", "")
	require.NoError(t, err)
	require.Equal(t, 0, delivered)
}
