// Package queue delivers onboarding notifications in the background through an
// asynq (Redis) queue.
package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/vatelanka/waste-admin-api/internal/domain"
	"github.com/vatelanka/waste-admin-api/internal/ports/out/notifier"
)

const (
	// TaskSendCredentials routes credential emails to the worker handler.
	TaskSendCredentials = "email:credentials"

	QueueCritical = "critical"
	QueueDefault  = "default"
)

// credentialsPayload is the JSON body stored in Redis for TaskSendCredentials.
type credentialsPayload struct {
	Kind         string `json:"kind"`
	To           string `json:"to"`
	Name         string `json:"name"`
	EntityID     string `json:"entity_id"`
	Password     string `json:"password"`
	Council      string `json:"municipal_council"`
	District     string `json:"district"`
	Ward         string `json:"ward"`
	PhoneNumber  string `json:"phone_number,omitempty"`
	LicensePlate string `json:"license_plate,omitempty"`
}

func payloadFrom(c notifier.Credentials) credentialsPayload {
	return credentialsPayload{
		Kind:         string(c.Kind),
		To:           c.To,
		Name:         c.Name,
		EntityID:     string(c.EntityID),
		Password:     c.Password,
		Council:      c.Location.Council,
		District:     c.Location.District,
		Ward:         c.Location.Ward,
		PhoneNumber:  c.PhoneNumber,
		LicensePlate: c.LicensePlate,
	}
}

func (p credentialsPayload) credentials() notifier.Credentials {
	return notifier.Credentials{
		Kind:         domain.Kind(p.Kind),
		To:           p.To,
		Name:         p.Name,
		EntityID:     domain.EntityID(p.EntityID),
		Password:     p.Password,
		Location:     domain.Location{Council: p.Council, District: p.District, Ward: p.Ward},
		PhoneNumber:  p.PhoneNumber,
		LicensePlate: p.LicensePlate,
	}
}

// NewCredentialsTask serializes c into a task. Completed tasks are kept only
// briefly since the payload carries an initial password.
func NewCredentialsTask(c notifier.Credentials) (*asynq.Task, error) {
	payload, err := json.Marshal(payloadFrom(c))
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(
		TaskSendCredentials,
		payload,
		asynq.TaskID(uuid.NewString()),
		asynq.MaxRetry(3),
		asynq.Queue(QueueCritical),
		asynq.Timeout(30*time.Second),
	), nil
}
