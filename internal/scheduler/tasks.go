package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskNotificationEmailSend = "notification.email.send"

// notificationEmailMaxRetry bounds redelivery of a failed notification email.
const notificationEmailMaxRetry = 5

// NotificationEmailPayload is one rendered notification for one recipient.
type NotificationEmailPayload struct {
	Event   string `json:"event"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text,omitempty"`
}

func NewNotificationEmailTask(payload NotificationEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationEmailSend, data, asynq.MaxRetry(notificationEmailMaxRetry)), nil
}

func ParseNotificationEmailPayload(task *asynq.Task) (NotificationEmailPayload, error) {
	var payload NotificationEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return NotificationEmailPayload{}, err
	}
	return payload, nil
}
