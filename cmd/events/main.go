package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	lambdaEvents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"philcali.me/kitchen/internal/config"
	"philcali.me/kitchen/internal/events"
	"philcali.me/kitchen/internal/logging"
	"philcali.me/kitchen/internal/sns/services"
)

type App struct {
	Handlers []events.EventFilter
	Logger   *slog.Logger
}

func NewApp(ctx context.Context) App {
	cfg, err := config.Load()
	if err == nil {
		err = cfg.RequireTopic()
	}
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %s", err))
	}
	logger := logging.New(os.Stdout, "kitchen-events", cfg.LogLevel)
	awsCfg, err := cfg.AWS(ctx)
	if err != nil {
		panic(fmt.Sprintf("Failed to load AWS config: %s", err))
	}
	notifier := services.NewNotificationService(sns.NewFromConfig(awsCfg), cfg.TopicArn)
	return App{
		Handlers: []events.EventFilter{
			events.DefaultFinishAlertHandler(notifier),
		},
		Logger: logger,
	}
}

func (app *App) HandleRequest(ctx context.Context, event lambdaEvents.DynamoDBEvent) error {
	if failures := events.HandleRecords(ctx, app.Logger, event.Records, app.Handlers...); failures > 0 {
		app.Logger.WarnContext(ctx, "some records were not handled", "action", "events.batch", "failures", failures, "records", len(event.Records))
	}
	return nil
}

func main() {
	app := NewApp(context.Background())
	lambda.Start(app.HandleRequest)
}
