package client

import (
	"encoding/json"
	"fmt"
	"net/url"

	"resort/pkg/model"
)

type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(baseUrl string) *BookingClient {
	return &BookingClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *BookingClient) Quote(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/bookings/quote", body)
}

func (c *BookingClient) Create(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/bookings", body)
}

func (c *BookingClient) CreateWithIdempotencyKey(body any, key string) (*Response, error) {
	return c.httpClient.POSTWithHeaders("/api/v1/bookings", body, map[string]string{"Idempotency-Key": key})
}

func (c *BookingClient) CreateRaw(rawBody []byte) (*Response, error) {
	return c.httpClient.POSTRaw("/api/v1/bookings", rawBody)
}

func (c *BookingClient) GetAll(limit int, offset int64) (*Response, error) {
	path := fmt.Sprintf("/api/v1/bookings?limit=%d&offset=%d", limit, offset)
	return c.httpClient.GET(path)
}

func (c *BookingClient) GetByID(id string) (*Response, error) {
	return c.httpClient.GET("/api/v1/bookings/id/" + url.PathEscape(id))
}

func (c *BookingClient) GetByReference(reference string) (*Response, error) {
	return c.httpClient.GET("/api/v1/bookings/reference/" + url.PathEscape(reference))
}

func (c *BookingClient) Confirm(id string) (*Response, error) {
	return c.transition(id, "confirm", nil)
}

func (c *BookingClient) Cancel(id, reason string) (*Response, error) {
	return c.transition(id, "cancel", model.CancelRequest{Reason: reason})
}

func (c *BookingClient) Complete(id string) (*Response, error) {
	return c.transition(id, "complete", nil)
}

func (c *BookingClient) MarkNoShow(id string) (*Response, error) {
	return c.transition(id, "no-show", nil)
}

func (c *BookingClient) transition(id, action string, body any) (*Response, error) {
	path := "/api/v1/bookings/id/" + url.PathEscape(id) + "/" + action
	if body == nil {
		return c.httpClient.POSTRaw(path, nil)
	}
	return c.httpClient.POST(path, body)
}

func (c *BookingClient) DecodeBooking(resp *Response) (*model.Booking, error) {
	var booking model.Booking
	if err := resp.DecodeData(&booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *BookingClient) DecodeBookings(resp *Response) ([]*model.Booking, *Metadata, error) {
	var wrapper struct {
		Data       json.RawMessage `json:"data"`
		TotalCount int64           `json:"total_count"`
		Limit      int             `json:"limit"`
		Offset     int64           `json:"offset"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, nil, fmt.Errorf("could not decode paginated resp:\n%+v\n%s", resp.ToString(), err)
	}

	var bookings []*model.Booking
	if err := json.Unmarshal(wrapper.Data, &bookings); err != nil {
		return nil, nil, fmt.Errorf("could not decode booking list:\n%+v\n%s", resp.ToString(), err)
	}

	metadata := &Metadata{
		TotalCount: wrapper.TotalCount,
		Limit:      wrapper.Limit,
		Offset:     wrapper.Offset,
	}

	return bookings, metadata, nil
}
