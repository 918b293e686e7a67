package client

import (
	"fmt"
	"net/url"

	"resort/pkg/model"
)

// CatalogClient drives the admin API used to seed resorts, plans, rates and
// inventory.
type CatalogClient struct {
	httpClient *HttpClient
}

func NewCatalogClient(baseUrl string) *CatalogClient {
	return &CatalogClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *CatalogClient) CreateResort(resort *model.Resort) (*Response, error) {
	return c.httpClient.POST("/api/v1/resorts", resort)
}

func (c *CatalogClient) CreateRatePlan(plan *model.RatePlan) (*Response, error) {
	return c.httpClient.POST("/api/v1/rate-plans", plan)
}

func (c *CatalogClient) AddSeasonalRate(ratePlanID string, req model.SeasonalRateRequest) (*Response, error) {
	return c.httpClient.POST("/api/v1/rate-plans/id/"+url.PathEscape(ratePlanID)+"/seasonal-rates", req)
}

func (c *CatalogClient) SetInventory(ratePlanID string, req model.InventoryRangeRequest) (*Response, error) {
	return c.httpClient.PUT("/api/v1/rate-plans/id/"+url.PathEscape(ratePlanID)+"/inventory", req)
}

func (c *CatalogClient) Calendar(ratePlanID, start, end string) (*Response, error) {
	q := url.Values{}
	q.Set("start", start)
	q.Set("end", end)
	return c.httpClient.GET("/api/v1/rate-plans/id/" + url.PathEscape(ratePlanID) + "/inventory?" + q.Encode())
}

func (c *CatalogClient) CheckAvailability(ratePlanID, checkIn, checkOut string, count int) (*Response, error) {
	q := url.Values{}
	q.Set("check_in", checkIn)
	q.Set("check_out", checkOut)
	q.Set("count", fmt.Sprintf("%d", count))
	return c.httpClient.GET("/api/v1/rate-plans/id/" + url.PathEscape(ratePlanID) + "/availability?" + q.Encode())
}

func (c *CatalogClient) CreatePromotion(promotion *model.Promotion) (*Response, error) {
	return c.httpClient.POST("/api/v1/promotions", promotion)
}

func (c *CatalogClient) GetPromotionByCode(code string) (*Response, error) {
	return c.httpClient.GET("/api/v1/promotions/code/" + url.PathEscape(code))
}

func (c *CatalogClient) CreateCommission(commission *model.Commission) (*Response, error) {
	return c.httpClient.POST("/api/v1/commissions", commission)
}

func (c *CatalogClient) CreateTransfer(transfer *model.Transfer) (*Response, error) {
	return c.httpClient.POST("/api/v1/transfers", transfer)
}

func (c *CatalogClient) PutSetting(key, value string) (*Response, error) {
	return c.httpClient.PUT("/api/v1/settings/"+url.PathEscape(key), map[string]string{"value": value})
}
