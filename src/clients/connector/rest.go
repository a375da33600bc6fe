package connector

import (
	"context"
	"encoding/json"
	"fmt"

	"ledger/src/config"
	"ledger/src/models"
	"ledger/src/utils/requests"
)

// RESTConnector talks to a provider exposing a balances endpoint of the shape
// GET {baseUrl}/accounts/{id}/balances. When the provider reports raw
// minor units (rawUnits in config), amounts are normalized here before they
// leave the connector.
type RESTConnector struct {
	name     string
	baseURL  string
	token    string
	rawUnits bool

	api *requests.ExternalAPIService
}

func NewRESTConnector(cfg config.ConnectorConfig) *RESTConnector {
	return &RESTConnector{
		name:     cfg.Name,
		baseURL:  cfg.BaseURL,
		token:    cfg.Token,
		rawUnits: cfg.RawUnits,
		api:      requests.NewExternalAPIService(),
	}
}

func (c *RESTConnector) Name() string { return c.name }

type balancePayload struct {
	Asset     string `json:"asset"`
	Amount    string `json:"amount"`
	Available string `json:"available"`
	Frozen    string `json:"frozen"`
	Decimals  *int   `json:"decimals"`
}

func (c *RESTConnector) GetBalances(ctx context.Context, accountID string) ([]models.Balance, error) {
	endpoint := fmt.Sprintf("%s/accounts/%s/balances", c.baseURL, accountID)
	resp, err := c.api.Get(ctx, endpoint, c.token, nil)
	if err != nil {
		return nil, fmt.Errorf("connector %s: %w", c.name, err)
	}
	defer resp.Body.Close()

	var payload []balancePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("connector %s: decoding balances: %w", c.name, err)
	}

	balances := make([]models.Balance, 0, len(payload))
	for _, p := range payload {
		b := models.Balance{
			Asset:     p.Asset,
			Quantity:  p.Amount,
			Available: p.Available,
			Frozen:    p.Frozen,
			Decimals:  p.Decimals,
		}
		if c.rawUnits {
			if p.Decimals == nil {
				return nil, fmt.Errorf("connector %s: raw units reported without decimals for %s", c.name, p.Asset)
			}
			if b.Quantity, err = normalize(p.Amount, *p.Decimals); err != nil {
				return nil, fmt.Errorf("connector %s: %w", c.name, err)
			}
			if b.Available, err = normalize(p.Available, *p.Decimals); err != nil {
				return nil, fmt.Errorf("connector %s: %w", c.name, err)
			}
			if b.Frozen, err = normalize(p.Frozen, *p.Decimals); err != nil {
				return nil, fmt.Errorf("connector %s: %w", c.name, err)
			}
		}
		balances = append(balances, b)
	}
	return balances, nil
}

func normalize(raw string, decimals int) (string, error) {
	if raw == "" {
		return "0", nil
	}
	q, err := models.NormalizeRawUnits(raw, decimals)
	if err != nil {
		return "", err
	}
	return q.String(), nil
}
