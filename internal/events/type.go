package events

import (
	"context"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
)

type EventFilter interface {
	Filter(record events.DynamoDBEventRecord) bool
	Apply(ctx context.Context, record events.DynamoDBEventRecord) error
}

func _getRecordImage(record events.DynamoDBEventRecord) map[string]events.DynamoDBAttributeValue {
	if record.Change.NewImage != nil {
		return record.Change.NewImage
	}
	return record.Change.OldImage
}

func _stringAttr(image map[string]events.DynamoDBAttributeValue, name string) string {
	value, ok := image[name]
	if !ok || value.DataType() != events.DataTypeString {
		return ""
	}
	return value.String()
}

// HandleRecords runs every matching handler on every record. A failing
// handler is logged and skips the rest of that record's handlers. It
// returns the number of failures.
func HandleRecords(ctx context.Context, logger *slog.Logger, records []events.DynamoDBEventRecord, handlers ...EventFilter) int {
	failures := 0
	for _, record := range records {
		for _, handler := range handlers {
			if !handler.Filter(record) {
				continue
			}
			if err := handler.Apply(ctx, record); err != nil {
				logger.ErrorContext(ctx, "failed to handle record",
					"action", "events.apply",
					"eventId", record.EventID,
					"error", err)
				failures++
				break
			}
		}
	}
	return failures
}
