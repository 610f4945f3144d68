package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

type flowView struct {
	Phase      string `json:"phase" yaml:"phase,omitempty"`
	Step       string `json:"step" yaml:"step,omitempty"`
	TxHash     string `json:"txHash" yaml:"txHash,omitempty"`
	TxURL      string `json:"txUrl" yaml:"txUrl,omitempty"`
	Error      string `json:"error" yaml:"error,omitempty"`
	ErrorKind  string `json:"errorKind" yaml:"errorKind,omitempty"`
	Settlement string `json:"settlement" yaml:"settlement,omitempty"`
	Assets     string `json:"assets" yaml:"assets,omitempty"`
	Shares     string `json:"shares" yaml:"shares,omitempty"`
}

func (v flowView) terminal() bool {
	return v.Phase == "succeeded" || v.Phase == "failed"
}

type sessionView struct {
	ID    string `json:"id"`
	Owner string `json:"owner"`
}

type vaultView struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
	TVL     string `json:"tvl"`
	APR     string `json:"apr"`
}

type statsView struct {
	TotalTVL   string `json:"totalTvl"`
	AvgAPR     string `json:"avgApr"`
	VaultCount int    `json:"vaultCount"`
}

func call(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, host+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make http call: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if res.StatusCode >= http.StatusBadRequest {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(raw, &e)
		if e.Error == "" {
			e.Error = http.StatusText(res.StatusCode)
		}
		return &apiError{Status: res.StatusCode, Message: e.Error}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	err = json.Unmarshal(raw, out)
	if err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
