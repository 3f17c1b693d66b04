package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	apperrors "campsite/pkg/errors"
	"campsite/pkg/model"
)

// Geocoder resolves a free-text location into a geometry point.
type Geocoder interface {
	Forward(ctx context.Context, location string) (*model.Geometry, error)
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type forwardResponse struct {
	Features []struct {
		Geometry model.Geometry `json:"geometry"`
	} `json:"features"`
}

// Forward asks the provider for the best match and returns its point.
// Provider failures are not specially classified; they surface as internal
// errors at the boundary.
func (c *Client) Forward(ctx context.Context, location string) (*model.Geometry, error) {
	endpoint := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json?access_token=%s&limit=1",
		c.baseURL, url.PathEscape(location), url.QueryEscape(c.token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create geocoding request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Internal("Geocoding request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Internal("Failed to read geocoding response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Internal(
			fmt.Sprintf("Geocoding provider returned status %d", resp.StatusCode), nil)
	}

	var parsed forwardResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, apperrors.Internal("Failed to decode geocoding response", err)
	}

	if len(parsed.Features) == 0 {
		return nil, apperrors.InvalidPayload(
			fmt.Sprintf("Location %q could not be resolved", location), nil)
	}

	geometry := parsed.Features[0].Geometry
	if geometry.Type != "Point" || len(geometry.Coordinates) != 2 {
		return nil, apperrors.Internal("Geocoding provider returned a non-point geometry", nil)
	}

	return &geometry, nil
}
