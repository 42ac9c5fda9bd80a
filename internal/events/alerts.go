package events

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"philcali.me/kitchen/internal/notifications"
)

const finishSuffix = ":Finish"

// FinishAlertHandler publishes an alert for every journaled finish that
// needs a person to look at it: aborted finishes, orders that could not be
// removed, and finished orders with stock that was not written back.
type FinishAlertHandler struct {
	Notifications notifications.NotificationService
}

func _failures(image map[string]events.DynamoDBAttributeValue) []string {
	value, ok := image["failures"]
	if !ok || value.DataType() != events.DataTypeList {
		return nil
	}
	var failures []string
	for _, item := range value.List() {
		if item.DataType() == events.DataTypeString {
			failures = append(failures, item.String())
		}
	}
	return failures
}

func (fh *FinishAlertHandler) Filter(record events.DynamoDBEventRecord) bool {
	if record.EventName != "INSERT" {
		return false
	}
	image := _getRecordImage(record)
	if !strings.HasSuffix(_stringAttr(image, "PK"), finishSuffix) {
		return false
	}
	switch _stringAttr(image, "state") {
	case "Aborted", "DeleteFailed":
		return true
	case "Committed":
		return len(_failures(image)) > 0
	}
	return false
}

func _formatAlert(image map[string]events.DynamoDBAttributeValue) notifications.PublishInput {
	orderId := _stringAttr(image, "orderId")
	dish := _stringAttr(image, "dishName")
	quantity := ""
	if value, ok := image["quantity"]; ok && value.DataType() == events.DataTypeNumber {
		quantity = " x" + value.Number()
	}
	var subject string
	switch _stringAttr(image, "state") {
	case "Aborted":
		subject = fmt.Sprintf("Order %s was not finished", orderId)
	case "DeleteFailed":
		subject = fmt.Sprintf("Order %s could not be removed", orderId)
	default:
		subject = fmt.Sprintf("Order %s finished with stock errors", orderId)
	}
	lines := []string{fmt.Sprintf("%s (%s%s)", subject, dish, quantity)}
	if kind := _stringAttr(image, "errorKind"); kind != "" {
		lines = append(lines, "Reason: "+kind)
	}
	if message := _stringAttr(image, "message"); message != "" {
		lines = append(lines, message)
	}
	if failures := _failures(image); len(failures) > 0 {
		lines = append(lines, "Check stock of: "+strings.Join(failures, ", "))
	}
	return notifications.PublishInput{
		Subject: subject,
		Message: strings.Join(lines, "\n"),
	}
}

func (fh *FinishAlertHandler) Apply(ctx context.Context, record events.DynamoDBEventRecord) error {
	_, err := fh.Notifications.Publish(ctx, _formatAlert(_getRecordImage(record)))
	return err
}

func DefaultFinishAlertHandler(service notifications.NotificationService) *FinishAlertHandler {
	return &FinishAlertHandler{
		Notifications: service,
	}
}
