package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"philcali.me/kitchen/internal/test"
)

func _finishRecord(eventName string, state string, extra map[string]events.DynamoDBAttributeValue) events.DynamoDBEventRecord {
	image := map[string]events.DynamoDBAttributeValue{
		"PK":       events.NewStringAttribute("kitchen:Finish"),
		"SK":       events.NewStringAttribute("finish-1"),
		"orderId":  events.NewStringAttribute("order-1"),
		"dishName": events.NewStringAttribute("Soup"),
		"quantity": events.NewNumberAttribute("3"),
		"state":    events.NewStringAttribute(state),
		"failures": events.NewNullAttribute(),
	}
	for key, value := range extra {
		image[key] = value
	}
	return events.DynamoDBEventRecord{
		EventID:   "event-1",
		EventName: eventName,
		Change: events.DynamoDBStreamRecord{
			NewImage: image,
		},
	}
}

func TestFinishAlertHandler(t *testing.T) {
	notifier := &test.RecordingNotifier{}
	handler := DefaultFinishAlertHandler(notifier)

	t.Run("Filter", func(t *testing.T) {
		writeFailure := map[string]events.DynamoDBAttributeValue{
			"failures": events.NewListAttribute([]events.DynamoDBAttributeValue{events.NewStringAttribute("ing-salt")}),
		}
		cases := []struct {
			name   string
			record events.DynamoDBEventRecord
			want   bool
		}{
			{"aborted", _finishRecord("INSERT", "Aborted", nil), true},
			{"delete failed", _finishRecord("INSERT", "DeleteFailed", nil), true},
			{"committed", _finishRecord("INSERT", "Committed", nil), false},
			{"committed with write failures", _finishRecord("INSERT", "Committed", writeFailure), true},
			{"already finished", _finishRecord("INSERT", "AlreadyFinished", nil), false},
			{"expired entry", _finishRecord("REMOVE", "Aborted", nil), false},
			{"other records", _finishRecord("INSERT", "Aborted", map[string]events.DynamoDBAttributeValue{
				"PK": events.NewStringAttribute("kitchen:Audit"),
			}), false},
		}
		for _, c := range cases {
			if got := handler.Filter(c.record); got != c.want {
				t.Errorf("%s: expected %v, got %v", c.name, c.want, got)
			}
		}
	})

	t.Run("Apply", func(t *testing.T) {
		record := _finishRecord("INSERT", "Aborted", map[string]events.DynamoDBAttributeValue{
			"errorKind": events.NewStringAttribute("InsufficientStock"),
			"message":   events.NewStringAttribute("Not enough Salt: need 6 g, have 5 g"),
		})
		if err := handler.Apply(context.Background(), record); err != nil {
			t.Fatalf("Failed to apply: %s", err)
		}
		published := notifier.Published()
		if len(published) != 1 {
			t.Fatalf("Expected one alert, got %d", len(published))
		}
		if published[0].Subject != "Order order-1 was not finished" {
			t.Fatalf("Unexpected subject %s", published[0].Subject)
		}
		for _, part := range []string{"(Soup x3)", "Reason: InsufficientStock", "Not enough Salt"} {
			if !strings.Contains(published[0].Message, part) {
				t.Fatalf("Expected %q in %s", part, published[0].Message)
			}
		}
	})

	t.Run("write failures are listed", func(t *testing.T) {
		record := _finishRecord("INSERT", "Committed", map[string]events.DynamoDBAttributeValue{
			"failures": events.NewListAttribute([]events.DynamoDBAttributeValue{
				events.NewStringAttribute("ing-salt"),
				events.NewStringAttribute("ing-water"),
			}),
		})
		if err := handler.Apply(context.Background(), record); err != nil {
			t.Fatalf("Failed to apply: %s", err)
		}
		published := notifier.Published()
		last := published[len(published)-1]
		if !strings.Contains(last.Message, "Check stock of: ing-salt, ing-water") {
			t.Fatalf("Unexpected message %s", last.Message)
		}
	})
}

func TestHandleRecords(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	records := []events.DynamoDBEventRecord{
		_finishRecord("INSERT", "Committed", nil),
		_finishRecord("INSERT", "Aborted", nil),
		_finishRecord("INSERT", "DeleteFailed", nil),
	}

	t.Run("only matching records alert", func(t *testing.T) {
		notifier := &test.RecordingNotifier{}
		failures := HandleRecords(context.Background(), logger, records, DefaultFinishAlertHandler(notifier))
		if failures != 0 || len(notifier.Published()) != 2 {
			t.Fatalf("Expected 2 alerts without failures, got %d alerts and %d failures", len(notifier.Published()), failures)
		}
	})

	t.Run("failures are counted", func(t *testing.T) {
		notifier := &test.RecordingNotifier{Err: errors.New("throttled")}
		failures := HandleRecords(context.Background(), logger, records, DefaultFinishAlertHandler(notifier))
		if failures != 2 {
			t.Fatalf("Expected 2 failures, got %d", failures)
		}
	})
}
