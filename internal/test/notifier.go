package test

import (
	"context"
	"fmt"
	"sync"

	"philcali.me/kitchen/internal/notifications"
)

// RecordingNotifier keeps every published notification.
type RecordingNotifier struct {
	Err error

	mutex     sync.Mutex
	published []notifications.PublishInput
}

func (rn *RecordingNotifier) Published() []notifications.PublishInput {
	rn.mutex.Lock()
	defer rn.mutex.Unlock()
	return append([]notifications.PublishInput(nil), rn.published...)
}

func (rn *RecordingNotifier) Publish(ctx context.Context, input notifications.PublishInput) (*notifications.PublishOutput, error) {
	rn.mutex.Lock()
	defer rn.mutex.Unlock()
	if rn.Err != nil {
		return nil, rn.Err
	}
	rn.published = append(rn.published, input)
	return &notifications.PublishOutput{MessageId: fmt.Sprintf("message-%d", len(rn.published))}, nil
}
