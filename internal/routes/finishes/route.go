package finishes

import (
	"context"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"philcali.me/kitchen/internal/data"
	"philcali.me/kitchen/internal/routes"
	"philcali.me/kitchen/internal/routes/util"
)

type Finish struct {
	Id         string                `json:"finishId"`
	OrderId    string                `json:"orderId"`
	RecipeId   string                `json:"recipeId"`
	DishName   string                `json:"dishName"`
	Quantity   int                   `json:"quantity"`
	State      string                `json:"state"`
	ErrorKind  *string               `json:"errorKind,omitempty"`
	Message    *string               `json:"message,omitempty"`
	Updates    []data.StockUpdateDTO `json:"updates"`
	Failures   []string              `json:"failures,omitempty"`
	ExpiresIn  *time.Time            `json:"expiresIn,omitempty"`
	CreateTime time.Time             `json:"createTime"`
}

func NewFinish(finish data.FinishDTO) Finish {
	var expiresIn *time.Time
	if finish.ExpiresIn != nil {
		expires := time.Unix(*finish.ExpiresIn, 0).UTC()
		expiresIn = &expires
	}
	updates := finish.Updates
	if updates == nil {
		updates = []data.StockUpdateDTO{}
	}
	return Finish{
		Id:         finish.SK,
		OrderId:    finish.OrderId,
		RecipeId:   finish.RecipeId,
		DishName:   finish.DishName,
		Quantity:   finish.Quantity,
		State:      finish.State,
		ErrorKind:  finish.ErrorKind,
		Message:    finish.Message,
		Updates:    updates,
		Failures:   finish.Failures,
		ExpiresIn:  expiresIn,
		CreateTime: finish.CreateTime,
	}
}

type FinishService struct {
	data data.FinishRepository
}

func NewRoute(journal data.FinishRepository) routes.Service {
	return &FinishService{
		data: journal,
	}
}

func (fs *FinishService) GetRoutes() map[string]routes.Route {
	return map[string]routes.Route{
		"GET:/finishes":           fs.ListFinishes,
		"GET:/finishes/:finishId": fs.GetFinish,
	}
}

func (fs *FinishService) ListFinishes(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	params, err := util.QueryParams(event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	items, err := fs.data.List(ctx, event.RequestContext.AccountID, params)
	return util.SerializeResponseOK(func(results data.QueryResults[data.FinishDTO]) util.Page[Finish] {
		return util.NewPage(util.ConvertQueryResults(results, NewFinish))
	}, items, err)
}

func (fs *FinishService) GetFinish(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	item, err := fs.data.Get(ctx, event.RequestContext.AccountID, util.RequestParam(ctx, "finishId"))
	return util.SerializeResponseOK(NewFinish, item, err)
}
