package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

type RestClient struct {
	baseURL    string
	headers    map[string]string
	httpClient *http.Client
}

var _ Interface = &RestClient{}

func NewRestClient(baseURL string, headers map[string]string) *RestClient {
	return NewRestClientWithTimeout(baseURL, headers, 0)
}

// NewRestClientWithTimeout builds a client whose requests give up after timeout.
// A zero timeout waits forever.
func NewRestClientWithTimeout(baseURL string, headers map[string]string, timeout time.Duration) *RestClient {
	return &RestClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		headers:    headers,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *RestClient) setHeaders(req *http.Request, headers map[string]string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for key, value := range c.headers {
		if value != "" {
			req.Header.Set(key, value)
		}
	}
	for key, value := range headers {
		if value != "" {
			req.Header.Set(key, value)
		}
	}
}

func (c *RestClient) doRequestOnce(ctx context.Context, request *http.Request) ([]byte, int, error) {
	request = request.WithContext(ctx)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, 0, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	return body, response.StatusCode, err
}

func (c *RestClient) Get(ctx context.Context, endpoint string, headers map[string]string) ([]byte, int, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, 0, err
	}
	c.setHeaders(request, headers)
	return c.doRequestOnce(ctx, request)
}

func (c *RestClient) Post(ctx context.Context, endpoint string, body any, headers map[string]string) ([]byte, int, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, 0, err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, 0, err
	}
	c.setHeaders(request, headers)
	return c.doRequestOnce(ctx, request)
}
