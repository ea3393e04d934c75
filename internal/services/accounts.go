package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	config "github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/configs"
)

// AccountsClient talks to the clinic core API, which owns users, quota
// balances and moderator assignment. It implements protocols.QuotaGate
// and protocols.ModeratorResolver; quota is only checked here, actual
// consumption happens in the core on confirmed send.
type AccountsClient struct {
	Configs *config.Config
	client  *http.Client
}

func NewAccountsClient(configs *config.Config) *AccountsClient {
	return &AccountsClient{
		Configs: configs,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type quotaResponse struct {
	Available int `json:"available"`
}

type moderatorResponse struct {
	ModeratorID uint `json:"moderatorId"`
}

func (ac *AccountsClient) HasQuota(ctx context.Context, userID uint, count int) (bool, error) {
	var resp quotaResponse
	url := fmt.Sprintf("%s/internal/users/%d/quota", strings.TrimSuffix(ac.Configs.CoreAPIBaseURL, "/"), userID)
	if err := ac.getJSON(ctx, url, &resp); err != nil {
		return false, err
	}
	return resp.Available >= count, nil
}

func (ac *AccountsClient) EffectiveModeratorID(ctx context.Context, userID uint) (uint, error) {
	var resp moderatorResponse
	url := fmt.Sprintf("%s/internal/users/%d/moderator", strings.TrimSuffix(ac.Configs.CoreAPIBaseURL, "/"), userID)
	if err := ac.getJSON(ctx, url, &resp); err != nil {
		return 0, err
	}
	return resp.ModeratorID, nil
}

func (ac *AccountsClient) getJSON(ctx context.Context, url string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("apikey", ac.Configs.CoreAPIKey)

	resp, err := ac.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(bodyBytes, dest); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
