package nft

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

const DefaultBaseURL = "https://eth-mainnet.g.alchemy.com"

// maxPages bounds pagination in case the API keeps returning page keys.
const maxPages = 100

// Client calls the Alchemy NFT API v2.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type ClientOption func(*Client)

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("alchemy api key is required")
	}
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// OwnedNFTs returns the non spam NFTs of owner, following every page.
func (c *Client) OwnedNFTs(ctx context.Context, owner string) ([]*NFT, error) {
	if owner == "" {
		return nil, errors.New("owner is required")
	}

	var nfts []*NFT
	pageKey := ""
	for range maxPages {
		params := url.Values{}
		params.Set("owner", owner)
		params.Add("excludeFilters[]", "SPAM")
		if pageKey != "" {
			params.Set("pageKey", pageKey)
		}

		body, err := c.get(ctx, "getNFTs", params)
		if err != nil {
			return nil, err
		}
		if !gjson.ValidBytes(body) {
			return nil, errors.New("getNFTs: invalid json response")
		}

		result := gjson.ParseBytes(body)
		for _, v := range result.Get("ownedNfts").Array() {
			n, err := Normalize(v)
			if err != nil {
				return nil, errors.Wrap(err, "getNFTs")
			}
			nfts = append(nfts, n)
		}

		pageKey = result.Get("pageKey").String()
		if pageKey == "" {
			return nfts, nil
		}
	}
	return nil, errors.Errorf("getNFTs: more than %d pages", maxPages)
}

// ReportSpam reports contract as a spam contract.
func (c *Client) ReportSpam(ctx context.Context, contract string) error {
	params := url.Values{}
	params.Set("address", contract)
	_, err := c.get(ctx, "reportSpam", params)
	return err
}

func (c *Client) get(ctx context.Context, method string, params url.Values) ([]byte, error) {
	endpoint := c.baseURL + "/nft/v2/" + url.PathEscape(c.apiKey) + "/" + method + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "new %s request", method)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", method)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s response", method)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("%s: status %d: %s", method, resp.StatusCode, Truncate(strings.TrimSpace(string(body)), 200))
	}
	return body, nil
}
