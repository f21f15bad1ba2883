package restapi

import (
	"errors"
	"net/http"
	"strings"

	"wallet_core/internal/app/port"
	"wallet_core/internal/domain/entity"
	"wallet_core/internal/infrastructure/network/client"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NetworkResponse describes the network the server is currently bound to.
type NetworkResponse struct {
	Network entity.NetworkConfig `json:"network"`
	BuildID string               `json:"buildId"`
}

// SwitchNetworkRequest selects a network either by name or identifier of a known
// definition, or by a full config.
type SwitchNetworkRequest struct {
	Network string                `json:"network,omitempty"`
	Config  *entity.NetworkConfig `json:"config,omitempty"`
}

// TokenView is the API rendering of a token balance.
type TokenView struct {
	Name          string             `json:"name"`
	Symbol        string             `json:"symbol,omitempty"`
	Kind          entity.TokenKind   `json:"kind"`
	Standard      string             `json:"standard,omitempty"`
	Contract      string             `json:"contract,omitempty"`
	Balance       string             `json:"balance"`
	DecimalPlaces uint8              `json:"decimalPlaces"`
	IconURI       string             `json:"iconUri,omitempty"`
	Rate          string             `json:"rate,omitempty"`
	Value         string             `json:"value,omitempty"`
	Items         []entity.TokenItem `json:"items,omitempty"`
}

// AccountTokensResponse lists an account's tokens on the network they were read from.
type AccountTokensResponse struct {
	Address  string      `json:"address"`
	Network  string      `json:"network"`
	BuildID  string      `json:"buildId"`
	Currency string      `json:"currency,omitempty"`
	Tokens   []TokenView `json:"tokens"`
}

// Handler serves the wallet API.
type Handler struct {
	balances port.BalanceService
	registry port.ClientRegistry
	networks port.NetworkDefinitionProvider
	logger   port.Logger
}

// NewHandler creates a Handler.
func NewHandler(
	balances port.BalanceService,
	registry port.ClientRegistry,
	networks port.NetworkDefinitionProvider,
	l port.Logger,
) *Handler {
	return &Handler{
		balances: balances,
		registry: registry,
		networks: networks,
		logger:   l,
	}
}

// GetNetwork returns the active network and the id of the client set serving it.
func (h *Handler) GetNetwork(c *gin.Context) {
	clients := h.registry.Current()
	c.JSON(http.StatusOK, NetworkResponse{
		Network: clients.Network(),
		BuildID: clients.BuildID(),
	})
}

// ListNetworks returns every known network definition.
func (h *Handler) ListNetworks(c *gin.Context) {
	c.JSON(http.StatusOK, h.networks.All())
}

// SwitchNetwork rebuilds the client set for another network. On failure the
// previous network stays active.
func (h *Handler) SwitchNetwork(c *gin.Context) {
	var req SwitchNetworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	var cfg entity.NetworkConfig
	switch {
	case req.Config != nil:
		cfg = *req.Config
	case strings.TrimSpace(req.Network) != "":
		def, ok := h.networks.Lookup(req.Network)
		if !ok {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown network " + req.Network})
			return
		}
		cfg = def
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "either network or config is required"})
		return
	}

	if err := h.registry.Reconfigure(cfg); err != nil {
		h.logger.Warn("Network switch rejected", "network", cfg.DisplayName(), "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	h.GetNetwork(c)
}

// GetAccountTokens returns the native balance and every token held by address.
func (h *Handler) GetAccountTokens(c *gin.Context) {
	address := strings.TrimSpace(c.Param("address"))
	currency := strings.ToLower(strings.TrimSpace(c.Query("currency")))
	if address == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "address is required"})
		return
	}

	result, err := h.balances.AccountTokens(c.Request.Context(), address, currency)
	if err != nil {
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}

	views := make([]TokenView, 0, len(result.Tokens))
	for _, t := range result.Tokens {
		views = append(views, NewTokenView(t, currency != ""))
	}
	c.JSON(http.StatusOK, AccountTokensResponse{
		Address:  address,
		Network:  result.Network.DisplayName(),
		BuildID:  result.BuildID,
		Currency: currency,
		Tokens:   views,
	})
}

// Login returns the identity-provider redirect for the current network.
func (h *Handler) Login(c *gin.Context) {
	provider := port.IdentityProvider(strings.ToLower(c.Param("provider")))
	req, err := h.registry.Current().Identity().LoginRequest(provider, c.Query("state"))
	if err != nil {
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, req)
}

// GetPublicKey returns the revealed public key of address.
func (h *Handler) GetPublicKey(c *gin.Context) {
	address := c.Param("address")
	key, err := h.registry.Current().Identity().ResolvePublicKey(c.Request.Context(), address)
	if err != nil {
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": address, "publicKey": key})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, client.ErrNotFound), errors.Is(err, client.ErrKeyNotRevealed):
		return http.StatusNotFound
	case errors.Is(err, client.ErrUnknownIdentityProvider), errors.Is(err, entity.ErrInvalidNetworkConfig):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// NewTokenView renders t. Rate and value are only set when priced is true and
// the token carries a rate.
func NewTokenView(t entity.Token, priced bool) TokenView {
	view := TokenView{
		Name:          t.Name(),
		Kind:          t.Kind(),
		Balance:       t.Balance().Compact(),
		DecimalPlaces: t.DecimalPlaces(),
		Items:         t.Items(),
	}
	view.Symbol, _ = t.Symbol()
	view.Contract, _ = t.ContractAddress()
	if std, ok := t.StandardVersion(); ok {
		view.Standard = string(std)
	}
	if icon, ok := t.CachedIconURL(); ok {
		view.IconURI = icon
	} else if icon, ok := t.IconSourceURI(); ok {
		view.IconURI = icon
	}
	if priced && !t.LocalCurrencyRate().IsZero() {
		view.Rate = t.LocalCurrencyRate().String()
		view.Value = t.LocalCurrencyValue().StringFixed(2)
	}
	return view
}
