package restapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"wallet_core/internal/app/port"
	"wallet_core/internal/domain/entity"
	"wallet_core/internal/infrastructure/network/client"
	networkdefinition "wallet_core/internal/infrastructure/network/definition"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type nopLogger struct{}

func (nopLogger) Info(string, ...any) {}
func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any) {}
func (nopLogger) Error(string, ...any) {}

type fakeIdentity struct {
	network entity.NetworkConfig
}

func (i fakeIdentity) LoginRequest(provider port.IdentityProvider, state string) (port.LoginRequest, error) {
	if provider != port.IdentityProviderGoogle {
		return port.LoginRequest{}, fmt.Errorf("%w: %q", client.ErrUnknownIdentityProvider, provider)
	}
	return port.LoginRequest{
		Provider:    provider,
		Network:     string(i.network.Identifier),
		RedirectURI: i.network.Identity.Web.Google + "?state=" + state,
		State:       state,
	}, nil
}

func (i fakeIdentity) ResolvePublicKey(_ context.Context, address string) (string, error) {
	if address == "tz1hidden" {
		return "", fmt.Errorf("%w: %s", client.ErrKeyNotRevealed, address)
	}
	return "edpk" + address, nil
}
func (i fakeIdentity) Network() entity.NetworkIdentifier { return i.network.Identifier }
func (i fakeIdentity) BuildID() string { return "build" }

type fakeSet struct {
	network entity.NetworkConfig
	buildID string
}

func (s fakeSet) Node() port.NodeClient { return nil }
func (s fakeSet) Metadata() port.MetadataClient { return nil }
func (s fakeSet) Indexer() port.IndexerClient { return nil }
func (s fakeSet) Identity() port.IdentityClient { return fakeIdentity{network: s.network} }
func (s fakeSet) Network() entity.NetworkConfig { return s.network }
func (s fakeSet) BuildID() string { return s.buildID }

type fakeRegistry struct {
	mu     sync.Mutex
	set    fakeSet
	builds int
}

func (r *fakeRegistry) Current() port.ClientSet {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.set
}

func (r *fakeRegistry) Reconfigure(cfg entity.NetworkConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builds++
	r.set = fakeSet{network: cfg, buildID: fmt.Sprintf("build-%d", r.builds)}
	return nil
}

type fakeBalances struct {
	tokens  []entity.Token
	network entity.NetworkConfig
	err     error
}

func (b fakeBalances) AccountTokens(_ context.Context, _, currency string) (port.AccountBalances, error) {
	if b.err != nil {
		return port.AccountBalances{}, b.err
	}
	network := b.network
	if network.Identifier == "" {
		network = networkdefinition.Mainnet
	}
	result := port.AccountBalances{Network: network, BuildID: "balances-build", Tokens: b.tokens}
	if currency == "" {
		return result, nil
	}
	out := make([]entity.Token, len(b.tokens))
	for i, t := range b.tokens {
		if t.IsNative() {
			t = t.WithLocalCurrencyRate(decimal.RequireFromString("0.75"))
		}
		out[i] = t
	}
	result.Tokens = out
	return result, nil
}

func newTestRouter(t *testing.T, balances port.BalanceService) (*gin.Engine, *fakeRegistry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry := &fakeRegistry{set: fakeSet{network: networkdefinition.Mainnet, buildID: "build-0"}}
	networks := networkdefinition.NewNetworkDefinitionProvider(nopLogger{}, nil)
	h := NewHandler(balances, registry, networks, nopLogger{})
	return SetupRouter(h, nil, zap.NewNop()), registry
}

func serve(router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetNetwork(t *testing.T) {
	router, _ := newTestRouter(t, fakeBalances{})

	rec := serve(router, http.MethodGet, "/api/v1/network", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp NetworkResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, networkdefinition.Mainnet, resp.Network)
	require.Equal(t, "build-0", resp.BuildID)
}

func TestListNetworks(t *testing.T) {
	router, _ := newTestRouter(t, fakeBalances{})

	rec := serve(router, http.MethodGet, "/api/v1/networks", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []entity.NetworkConfig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	require.Equal(t, "Ghostnet", resp[1].Name)
}

func TestSwitchNetworkByName(t *testing.T) {
	router, registry := newTestRouter(t, fakeBalances{})

	rec := serve(router, http.MethodPut, "/api/v1/network", `{"network":"testnet"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp NetworkResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Ghostnet", resp.Network.Name)
	require.Equal(t, "build-1", resp.BuildID)
	require.Equal(t, entity.NetworkTestnet, registry.Current().Network().Identifier)
}

func TestSwitchNetworkByConfig(t *testing.T) {
	router, registry := newTestRouter(t, fakeBalances{})

	cfg := networkdefinition.Ghostnet
	cfg.Identifier = entity.NetworkCustom
	cfg.Name = "Sandbox"
	cfg.NodeEndpoint = "http://localhost:20000"
	body, err := json.Marshal(SwitchNetworkRequest{Config: &cfg})
	require.NoError(t, err)

	rec := serve(router, http.MethodPut, "/api/v1/network", string(body))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, cfg, registry.Current().Network())
}

func TestSwitchNetworkRejected(t *testing.T) {
	router, registry := newTestRouter(t, fakeBalances{})

	cases := []struct {
		name   string
		body   string
		status int
	}{
		{name: "malformed body", body: `{"network":`, status: http.StatusBadRequest},
		{name: "empty request", body: `{}`, status: http.StatusBadRequest},
		{name: "unknown network", body: `{"network":"devnet"}`, status: http.StatusNotFound},
		{name: "invalid config", body: `{"config":{"identifier":"custom","name":"x","nodeEndpoint":"localhost"}}`, status: http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(router, http.MethodPut, "/api/v1/network", tc.body)
			require.Equal(t, tc.status, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.NotEmpty(t, resp.Error)
		})
	}
	require.Equal(t, networkdefinition.Mainnet, registry.Current().Network())
	require.Zero(t, registry.builds)
}

func TestGetAccountTokens(t *testing.T) {
	fungible, err := entity.NewFungibleToken("Kolibri", "kUSD", "KT1K9gCRgaLRFKTErYt1wVxA3Frb9FjasjTV",
		entity.StandardFA12, entity.MustParseDecimalAmount("5.25", 18))
	require.NoError(t, err)
	balances := fakeBalances{tokens: []entity.Token{
		entity.NativeTokenWithAmount(entity.MustParseDecimalAmount("12.5", entity.NativeDecimalPlaces)),
		fungible,
	}}
	router, _ := newTestRouter(t, balances)

	rec := serve(router, http.MethodGet, "/api/v1/accounts/tz1abc/tokens?currency=USD", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AccountTokensResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "tz1abc", resp.Address)
	require.Equal(t, "Mainnet", resp.Network)
	require.Equal(t, "usd", resp.Currency)
	require.Len(t, resp.Tokens, 2)

	native := resp.Tokens[0]
	require.Equal(t, entity.TokenKindNative, native.Kind)
	require.Equal(t, "XTZ", native.Symbol)
	require.Equal(t, "12.5", native.Balance)
	require.Equal(t, uint8(6), native.DecimalPlaces)
	require.Equal(t, "0.75", native.Rate)
	require.Equal(t, "9.38", native.Value)

	kusd := resp.Tokens[1]
	require.Equal(t, entity.TokenKindFungible, kusd.Kind)
	require.Equal(t, "fa1-2", kusd.Standard)
	require.Equal(t, "5.25", kusd.Balance)
	require.Empty(t, kusd.Rate)
}

func TestGetAccountTokensLabelsNetworkOfBalances(t *testing.T) {
	balances := fakeBalances{
		tokens:  []entity.Token{entity.NativeToken()},
		network: networkdefinition.Ghostnet,
	}
	router, registry := newTestRouter(t, balances)
	require.Equal(t, networkdefinition.Mainnet, registry.Current().Network())

	rec := serve(router, http.MethodGet, "/api/v1/accounts/tz1abc/tokens", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AccountTokensResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Ghostnet", resp.Network)
	require.Equal(t, "balances-build", resp.BuildID)
}

func TestGetAccountTokensWithoutCurrency(t *testing.T) {
	balances := fakeBalances{tokens: []entity.Token{entity.NativeToken()}}
	router, _ := newTestRouter(t, balances)

	rec := serve(router, http.MethodGet, "/api/v1/accounts/tz1abc/tokens", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AccountTokensResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Empty(t, resp.Currency)
	require.Equal(t, "0", resp.Tokens[0].Balance)
	require.Empty(t, resp.Tokens[0].Value)
}

func TestGetAccountTokensErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{name: "not found", err: fmt.Errorf("native balance: %w", client.ErrNotFound), status: http.StatusNotFound},
		{name: "backend failure", err: fmt.Errorf("token balances: %w", client.ErrUnexpectedStatus), status: http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router, _ := newTestRouter(t, fakeBalances{err: tc.err})
			rec := serve(router, http.MethodGet, "/api/v1/accounts/tz1abc/tokens", "")
			require.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestLogin(t *testing.T) {
	router, _ := newTestRouter(t, fakeBalances{})

	rec := serve(router, http.MethodGet, "/api/v1/auth/Google/login?state=xyz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp port.LoginRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, port.IdentityProviderGoogle, resp.Provider)
	require.Equal(t, "mainnet", resp.Network)
	require.Equal(t, "xyz", resp.State)

	redirect, err := url.Parse(resp.RedirectURI)
	require.NoError(t, err)
	require.Equal(t, "auth.walletcore.dev", redirect.Host)

	rec = serve(router, http.MethodGet, "/api/v1/auth/fax/login", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPublicKey(t *testing.T) {
	router, _ := newTestRouter(t, fakeBalances{})

	rec := serve(router, http.MethodGet, "/api/v1/accounts/tz1abc/public-key", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"address":"tz1abc","publicKey":"edpktz1abc"}`, rec.Body.String())

	rec = serve(router, http.MethodGet, "/api/v1/accounts/tz1hidden/public-key", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	router, _ := newTestRouter(t, fakeBalances{})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/network", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
