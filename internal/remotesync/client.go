package remotesync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bensuskins/habit-hub/internal/models"
)

// Remote is the profile store the agent reconciles with.
type Remote interface {
	GetProfile(ctx context.Context, profileID string) (models.Profile, error)
	CreateScheduledHabit(ctx context.Context, profileID string, habit models.ScheduledHabit) (models.ScheduledHabit, error)
	DeleteScheduledHabit(ctx context.Context, profileID string, name string, time string) error
	CreateHistoryEntry(ctx context.Context, profileID string, entry models.HistoryEntry) (models.HistoryEntry, error)
}

// HTTPClient talks to the profile service REST API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (client *HTTPClient) GetProfile(ctx context.Context, profileID string) (models.Profile, error) {
	var profile models.Profile
	if err := client.do(ctx, http.MethodGet, "/profiles/"+url.PathEscape(profileID), nil, &profile); err != nil {
		return models.Profile{}, fmt.Errorf("getting profile: %w", err)
	}
	return profile, nil
}

func (client *HTTPClient) CreateScheduledHabit(ctx context.Context, profileID string, habit models.ScheduledHabit) (models.ScheduledHabit, error) {
	var created models.ScheduledHabit
	path := "/profiles/" + url.PathEscape(profileID) + "/scheduled-habits"
	if err := client.do(ctx, http.MethodPost, path, habit, &created); err != nil {
		return models.ScheduledHabit{}, fmt.Errorf("creating scheduled habit: %w", err)
	}
	return created, nil
}

func (client *HTTPClient) DeleteScheduledHabit(ctx context.Context, profileID string, name string, time string) error {
	query := url.Values{}
	query.Set("name", name)
	query.Set("time", time)
	path := "/profiles/" + url.PathEscape(profileID) + "/scheduled-habits?" + query.Encode()
	if err := client.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("deleting scheduled habit: %w", err)
	}
	return nil
}

func (client *HTTPClient) CreateHistoryEntry(ctx context.Context, profileID string, entry models.HistoryEntry) (models.HistoryEntry, error) {
	var created models.HistoryEntry
	path := "/profiles/" + url.PathEscape(profileID) + "/history"
	if err := client.do(ctx, http.MethodPost, path, entry, &created); err != nil {
		return models.HistoryEntry{}, fmt.Errorf("creating history entry: %w", err)
	}
	return created, nil
}

func (client *HTTPClient) do(ctx context.Context, method, path string, body any, target any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, client.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	request.Header.Set("Accept", "application/json")

	response, err := client.client.Do(request)
	if err != nil {
		return fmt.Errorf("http %s: %w", strings.ToLower(method), err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		message, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", response.StatusCode, strings.TrimSpace(string(message)))
	}

	if target == nil {
		return nil
	}
	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
