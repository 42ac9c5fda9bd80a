package fulfillment

import (
	"context"
	"errors"

	"philcali.me/kitchen/internal/data"
)

func _stringPtr(value string) *string {
	return &value
}

func (r *Reconciler) _journalInput(report *Report, err error) data.FinishInputDTO {
	state := string(report.State)
	updates := append([]data.StockUpdateDTO{}, report.Updates...)
	failures := append([]string{}, report.Failures...)
	input := data.FinishInputDTO{
		OrderId:  &report.OrderId,
		RecipeId: &report.RecipeId,
		DishName: &report.DishName,
		Quantity: &report.Quantity,
		State:    &state,
		Message:  _stringPtr(report.Message),
		Updates:  &updates,
		Failures: &failures,
	}
	var fe *FinishError
	if errors.As(err, &fe) {
		input.ErrorKind = _stringPtr(string(fe.Kind))
	}
	if r.Retention > 0 {
		expiresIn := r.Now().Add(r.Retention).Unix()
		input.ExpiresIn = &expiresIn
	}
	return input
}

// record appends a terminal outcome to the journal. Journal failures are
// logged and never change the outcome.
func (r *Reconciler) _record(ctx context.Context, report *Report, err error) {
	if r.Journal == nil {
		return
	}
	entry, jerr := r.Journal.Create(context.WithoutCancel(ctx), r.AccountId, r._journalInput(report, err))
	if jerr != nil {
		r.Logger.ErrorContext(ctx, "failed to journal finish",
			"action", "finish.journal",
			"orderId", report.OrderId,
			"error", jerr)
		return
	}
	r.Logger.DebugContext(ctx, "finish journaled", "action", "finish.journal", "orderId", report.OrderId, "finishId", entry.SK)
}
