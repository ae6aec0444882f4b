package sdk

import (
	"errors"
	"fmt"

	"github.com/mooglife/mooglife/schema"
	"gopkg.in/h2non/gentleman.v2"
)

// Client is a thin caller of the mooglife public api.
type Client struct {
	SCli   *gentleman.Client
	apiKey string
}

func New(apiUrl, apiKey string) *Client {
	return &Client{
		SCli:   gentleman.New().URL(apiUrl),
		apiKey: apiKey,
	}
}

type respInfo struct {
	Ok   bool                 `json:"ok"`
	Data schema.RespTokenInfo `json:"data"`
}

type respHolders struct {
	Ok     bool            `json:"ok"`
	Total  int             `json:"total"`
	Cursor int64           `json:"cursor"`
	Data   []schema.Holder `json:"data"`
}

type respSwaps struct {
	Ok     bool            `json:"ok"`
	Total  int             `json:"total"`
	Cursor int64           `json:"cursor"`
	Data   []schema.SwapTx `json:"data"`
}

type respSummary struct {
	Ok   bool                    `json:"ok"`
	Data schema.RespStatsSummary `json:"data"`
}

type respMarket struct {
	Ok   bool                  `json:"ok"`
	Data schema.MarketSnapshot `json:"data"`
}

func (c *Client) GetInfo() (schema.RespTokenInfo, error) {
	res := respInfo{}
	err := c.getJSON("/info", nil, &res)
	return res.Data, err
}

func (c *Client) GetHolders(limit int, cursor int64) ([]schema.Holder, int64, error) {
	res := respHolders{}
	err := c.getJSON("/holders", map[string]string{
		"limit":  fmt.Sprintf("%d", limit),
		"cursor": fmt.Sprintf("%d", cursor),
	}, &res)
	return res.Data, res.Cursor, err
}

func (c *Client) GetTransactions(limit int, cursor int64, side string) ([]schema.SwapTx, int64, error) {
	query := map[string]string{
		"limit":  fmt.Sprintf("%d", limit),
		"cursor": fmt.Sprintf("%d", cursor),
	}
	if side != "" {
		query["side"] = side
	}
	res := respSwaps{}
	err := c.getJSON("/transactions", query, &res)
	return res.Data, res.Cursor, err
}

func (c *Client) GetMarket() (schema.MarketSnapshot, error) {
	res := respMarket{}
	err := c.getJSON("/market", nil, &res)
	return res.Data, err
}

func (c *Client) GetStatsSummary() (schema.RespStatsSummary, error) {
	res := respSummary{}
	err := c.getJSON("/stats/summary", nil, &res)
	return res.Data, err
}

func (c *Client) getJSON(path string, query map[string]string, out interface{}) error {
	req := c.SCli.Get()
	req.AddPath(path)
	for k, v := range query {
		req.AddQuery(k, v)
	}
	if c.apiKey != "" {
		req.SetHeader("X-API-KEY", c.apiKey)
	}
	resp, err := req.Send()
	if err != nil {
		return err
	}
	defer resp.Close()
	if !resp.Ok {
		return errors.New(fmt.Sprintf("resp failed: %s", resp.String()))
	}
	return resp.JSON(out)
}
