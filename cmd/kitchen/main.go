package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"philcali.me/kitchen/internal/config"
	"philcali.me/kitchen/internal/dynamodb/finishes"
	"philcali.me/kitchen/internal/dynamodb/token"
	"philcali.me/kitchen/internal/fulfillment"
	"philcali.me/kitchen/internal/gateway"
	"philcali.me/kitchen/internal/inventory"
	"philcali.me/kitchen/internal/logging"
	"philcali.me/kitchen/internal/routes"
	finishRoutes "philcali.me/kitchen/internal/routes/finishes"
	"philcali.me/kitchen/internal/routes/ingredients"
	"philcali.me/kitchen/internal/routes/orders"
	"philcali.me/kitchen/internal/routes/recipes"
)

type App struct {
	Router routes.Router
}

func NewApp(ctx context.Context) App {
	cfg, err := config.Load()
	if err == nil {
		err = cfg.RequireKitchen()
	}
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %s", err))
	}
	logger := logging.New(os.Stdout, "kitchen", cfg.LogLevel)
	kitchen, err := gateway.NewKitchenClient(cfg.KitchenAPIURL, cfg.KitchenAPITimeout)
	if err != nil {
		panic(err.Error())
	}
	reconciler := fulfillment.NewReconciler(kitchen, logger)
	reconciler.Concurrency = cfg.FinishConcurrency
	reconciler.Retention = cfg.JournalRetention
	services := []routes.Service{
		orders.NewRoute(kitchen, reconciler),
		ingredients.NewRoute(inventory.NewService(kitchen, logger)),
		recipes.NewRoute(kitchen),
	}
	if cfg.TableName != "" {
		awsCfg, err := cfg.AWS(ctx)
		if err != nil {
			panic("Failed to load AWS config.")
		}
		journal := finishes.NewFinishService(cfg.TableName, dynamodb.NewFromConfig(awsCfg), token.NewGCM())
		reconciler.Journal = journal
		services = append(services, finishRoutes.NewRoute(journal))
	}
	return App{
		Router: *routes.NewRouter(logger, services...),
	}
}

func (app *App) HandleRequest(ctx context.Context, request events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return app.Router.Invoke(request, ctx), nil
}

func main() {
	app := NewApp(context.Background())
	lambda.Start(app.HandleRequest)
}
