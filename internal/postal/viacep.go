// Package postal wraps the ViaCEP address lookup. The service only
// ever consults it read-only, and only once the typed CEP reaches
// exactly 8 digits.
package postal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"
)

var (
	ErrInvalidCEP = errors.New("cep must be exactly 8 digits")
	ErrNotFound   = errors.New("cep not found")
)

var cepPattern = regexp.MustCompile(`^\d{8}$`)

// Address is the subset of the ViaCEP response the booking form needs.
type Address struct {
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
}

type viaCEPResponse struct {
	Logradouro string `json:"logradouro"`
	Bairro     string `json:"bairro"`
	Localidade string `json:"localidade"`
	Erro       bool   `json:"erro"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client for a ViaCEP-compatible endpoint, e.g.
// https://viacep.com.br.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// Lookup resolves a CEP to street/neighborhood/city. Anything other
// than an 8-digit value is rejected before any network call.
func (c *Client) Lookup(ctx context.Context, cep string) (Address, error) {
	if !cepPattern.MatchString(cep) {
		return Address{}, ErrInvalidCEP
	}

	url := fmt.Sprintf("%s/ws/%s/json/", c.baseURL, cep)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Address{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Address{}, fmt.Errorf("lookup cep %s: %w", cep, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Address{}, fmt.Errorf("lookup cep %s: unexpected status %d", cep, resp.StatusCode)
	}

	var body viaCEPResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Address{}, fmt.Errorf("decode cep response: %w", err)
	}
	if body.Erro {
		return Address{}, ErrNotFound
	}

	return Address{
		Street:       body.Logradouro,
		Neighborhood: body.Bairro,
		City:         body.Localidade,
	}, nil
}
