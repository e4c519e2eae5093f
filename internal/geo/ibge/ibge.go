package ibge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/vbonduro/ecoleta/internal/geo"
)

const DefaultBaseURL = "https://servicodados.ibge.gov.br/api/v1/localidades"

// cacheSize holds the city lists of all 27 UFs with room to spare.
const cacheSize = 64

const statesKey = "_states"

var tracer = otel.Tracer("github.com/vbonduro/ecoleta/internal/geo/ibge")

// Client talks to the IBGE localidades API. Successful responses are cached
// for the configured TTL; failures are not.
type Client struct {
	baseURL string
	client  *http.Client
	states  *expirable.LRU[string, []geo.State]
	cities  *expirable.LRU[string, []string]
}

func NewClient(baseURL string, ttl time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		states:  expirable.NewLRU[string, []geo.State](1, nil, ttl),
		cities:  expirable.NewLRU[string, []string](cacheSize, nil, ttl),
	}
}

// States returns every UF sorted by name.
func (c *Client) States(ctx context.Context) ([]geo.State, error) {
	if cached, ok := c.states.Get(statesKey); ok {
		return cached, nil
	}

	ctx, span := tracer.Start(ctx, "ibge.States")
	defer span.End()

	var states []geo.State
	if err := c.getJSON(ctx, "/estados", &states); err != nil {
		span.RecordError(err)
		return nil, err
	}
	sort.Slice(states, func(i, j int) bool { return states[i].Nome < states[j].Nome })

	c.states.Add(statesKey, states)
	return states, nil
}

// Cities returns the municipality names of uf. An unknown uf yields an empty
// list, as the upstream API does.
func (c *Client) Cities(ctx context.Context, uf string) ([]string, error) {
	uf = strings.ToUpper(strings.TrimSpace(uf))
	if cached, ok := c.cities.Get(uf); ok {
		return cached, nil
	}

	ctx, span := tracer.Start(ctx, "ibge.Cities")
	span.SetAttributes(attribute.String("uf", uf))
	defer span.End()

	var raw []struct {
		Nome string `json:"nome"`
	}
	if err := c.getJSON(ctx, "/estados/"+url.PathEscape(uf)+"/municipios", &raw); err != nil {
		span.RecordError(err)
		return nil, err
	}

	names := make([]string, 0, len(raw))
	for _, city := range raw {
		names = append(names, city.Nome)
	}

	c.cities.Add(uf, names)
	return names, nil
}

func (c *Client) HasCity(ctx context.Context, uf, city string) (bool, error) {
	names, err := c.Cities(ctx, uf)
	if err != nil {
		return false, err
	}
	city = strings.TrimSpace(city)
	for _, name := range names {
		if strings.EqualFold(name, city) {
			return true, nil
		}
	}
	return false, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", geo.ErrUpstream, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close ibge response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: ibge returned status %d for %s", geo.ErrUpstream, resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", geo.ErrUpstream, err)
	}
	return nil
}

var _ geo.Directory = (*Client)(nil)
