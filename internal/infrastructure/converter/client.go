package converter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/snap2code/creditledger/internal/domain"
)

// Client calls the screenshot-to-code converter service. The converter owns
// the uploaded screenshot and the generated output; this service only passes
// the conversion coordinates and waits for the verdict.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a converter client. The HTTP client's timeout is left to
// the caller; the worker bounds each call with a context deadline.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

type convertRequest struct {
	ConversionID string `json:"conversion_id"`
	AccountID    string `json:"account_id"`
	Framework    string `json:"framework"`
}

// Convert runs one conversion to completion. A non-2xx response is an error;
// the worker decides whether to retry.
func (c *Client) Convert(ctx context.Context, conversion *domain.Conversion) error {
	body, err := json.Marshal(convertRequest{
		ConversionID: conversion.ID,
		AccountID:    conversion.AccountID,
		Framework:    conversion.Framework,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/convert", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("converter request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("converter returned %d: %s", resp.StatusCode, msg)
	}

	return nil
}
