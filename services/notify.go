package services

import "encoding/json"

const (
	wsNotifyMaxLen      = 100
	wsNotifyDefaultType = "info"
)

type WsNotify struct {
	NotifyType string `json:"notify_type"`
	Message    string `json:"message"`
}

// SendWsNotify шлет короткое уведомление по всем соединениям
// пользователя и возвращает количество доставленных копий.
// Длинные сообщения обрезаются, в уведомлении только превью.
func SendWsNotify(userID int64, notifyType string, message string) (int, error) {
	if message == "" {
		return 0, nil
	}
	if notifyType == "" {
		notifyType = wsNotifyDefaultType
	}
	if len(message) > wsNotifyMaxLen {
		message = message[:wsNotifyMaxLen] + "..."
	}

	jsonData, err := json.Marshal(WsNotify{NotifyType: notifyType, Message: message})
	if err != nil {
		return 0, err
	}
	return GlobalWSConnManager.Send(userID, jsonData), nil
}
