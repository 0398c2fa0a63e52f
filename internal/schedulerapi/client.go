package schedulerapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	apperrors "appointment_monitor/pkg/errors"
	"appointment_monitor/pkg/logger"
)

// Query описывает один запрос слотов для локации
type Query struct {
	LocationID int
	Limit      int
	StartDate  string
	EndDate    string
}

// Mode возвращает режим запроса: диапазон дат, если StartDate корректна
func (q Query) Mode() Mode {
	if ValidDate(q.StartDate) {
		return ModeDateRange
	}
	return ModeSoonest
}

// dateRange возвращает границы диапазона; EndDate заменяется на StartDate,
// если отсутствует или некорректна
func (q Query) dateRange() (string, string) {
	end := q.EndDate
	if !ValidDate(end) {
		end = q.StartDate
	}
	return q.StartDate, end
}

// Client обращается к API расписания
type Client struct {
	baseURL string
	client  *http.Client
	logger  *logger.Logger
}

// NewClient создает клиента с ограничением времени на каждый запрос
func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	return NewClientWithHTTP(baseURL, &http.Client{Timeout: timeout}, log)
}

// NewClientWithHTTP создает клиента поверх готового http.Client
func NewClientWithHTTP(baseURL string, hc *http.Client, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		baseURL: baseURL,
		client:  hc,
		logger:  log,
	}
}

// SlotsURL строит адрес запроса слотов для режима запроса
func (c *Client) SlotsURL(q Query) string {
	if q.Mode() == ModeDateRange {
		start, end := q.dateRange()
		return fmt.Sprintf("%s/locations/%d/slots?startTimestamp=%sT00:00:00&endTimestamp=%sT23:59:59",
			c.baseURL, q.LocationID, start, end)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 1
	}
	return fmt.Sprintf("%s/slots?orderBy=soonest&limit=%d&locationId=%d", c.baseURL, limit, q.LocationID)
}

// FetchSlots запрашивает слоты локации и возвращает время активных слотов.
// Ошибки транспорта, статуса и разбора возвращаются как MonitorError.
func (c *Client) FetchSlots(ctx context.Context, q Query) ([]string, error) {
	endpoint := c.SlotsURL(q)
	c.logger.Debug("Requesting URL", logger.String("url", endpoint))

	var slots []Slot
	if err := c.getJSON(ctx, endpoint, &slots); err != nil {
		return nil, err
	}

	return ActiveTimestamps(q.Mode(), slots), nil
}

// FetchLocations запрашивает действующие локации программы по имени сервиса
// (например, "NEXUS" или "Global Entry")
func (c *Client) FetchLocations(ctx context.Context, serviceName string) ([]Location, error) {
	params := url.Values{}
	params.Set("temporary", "false")
	params.Set("inviteOnly", "false")
	params.Set("operational", "true")
	params.Set("serviceName", serviceName)
	endpoint := c.baseURL + "/locations/?" + params.Encode()

	var locations []Location
	if err := c.getJSON(ctx, endpoint, &locations); err != nil {
		return nil, err
	}

	return locations, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return apperrors.ErrFetchTransport.WithError(err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return apperrors.ErrFetchTransport.WithError(err).WithContext(endpoint)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, res.Body)
		return apperrors.ErrFetchStatus.WithError(fmt.Errorf("status code: %d", res.StatusCode)).WithContext(strconv.Itoa(res.StatusCode))
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return apperrors.ErrFetchDecode.WithError(err).WithContext(endpoint)
	}

	return nil
}
