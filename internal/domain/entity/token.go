package entity

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/shopspring/decimal"
)

// Native coin defaults.
const (
	NativeTokenName     = "Tezos"
	NativeTokenSymbol   = "XTZ"
	NativeDecimalPlaces = 6
)

// TokenKind discriminates the native coin, fungible contract tokens and NFTs.
type TokenKind int

const (
	TokenKindNative TokenKind = iota
	TokenKindFungible
	TokenKindNonFungible
)

var tokenKindNames = map[TokenKind]string{
	TokenKindNative:      "native",
	TokenKindFungible:    "fungible",
	TokenKindNonFungible: "nonFungible",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

func (k TokenKind) valid() bool {
	_, ok := tokenKindNames[k]
	return ok
}

// MarshalText implements encoding.TextMarshaler.
func (k TokenKind) MarshalText() ([]byte, error) {
	if !k.valid() {
		return nil, fmt.Errorf("%w: unknown token kind %d", ErrInvalidTokenConfiguration, int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *TokenKind) UnmarshalText(text []byte) error {
	for kind, name := range tokenKindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("%w: unknown token kind %q", ErrInvalidTokenConfiguration, string(text))
}

// StandardVersion is the contract standard of a non-native token.
type StandardVersion string

const (
	StandardFA12    StandardVersion = "fa1-2"
	StandardFA2     StandardVersion = "fa2"
	StandardUnknown StandardVersion = "unknown"
)

// ParseStandardVersion maps indexer spellings ("fa1.2", "FA2", ...) onto a StandardVersion.
func ParseStandardVersion(s string) StandardVersion {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fa1.2", "fa1-2", "fa12":
		return StandardFA12
	case "fa2":
		return StandardFA2
	default:
		return StandardUnknown
	}
}

// TokenItem is one owned item of a non-fungible token contract.
type TokenItem struct {
	TokenID      string        `json:"tokenId"`
	Name         string        `json:"name,omitempty"`
	Description  string        `json:"description,omitempty"`
	ArtifactURI  string        `json:"artifactUri,omitempty"`
	DisplayURI   string        `json:"displayUri,omitempty"`
	ThumbnailURI string        `json:"thumbnailUri,omitempty"`
	Amount       DecimalAmount `json:"amount"`
}

// Equal compares items field by field; amounts must be identical.
func (i TokenItem) Equal(o TokenItem) bool {
	return i.TokenID == o.TokenID &&
		i.Name == o.Name &&
		i.Description == o.Description &&
		i.ArtifactURI == o.ArtifactURI &&
		i.DisplayURI == o.DisplayURI &&
		i.ThumbnailURI == o.ThumbnailURI &&
		i.Amount.Identical(o.Amount)
}

// TokenConfig carries every attribute a Token can be built from. Nil pointers are
// absent optional fields.
type TokenConfig struct {
	Name              string
	Symbol            *string
	Kind              TokenKind
	StandardVersion   *StandardVersion
	Balance           DecimalAmount
	ContractAddress   *string
	IconSourceURI     *string
	CachedIconURL     *string
	LocalCurrencyRate decimal.Decimal
	Items             []TokenItem
}

// Token is an on-chain asset's metadata plus a balance snapshot.
//
// Tokens are immutable values; balance, icon and rate updates produce a new Token
// through the With* methods. A Token can therefore be shared between goroutines
// without synchronization.
//
// Equality (Equal) covers the whole state that identifies a balance snapshot, while
// Hash covers only kind, name, symbol and contract address. Equal tokens always hash
// equal, but two tokens differing only in balance or items share a hash. Keep it that
// way: collections bucket tokens by identity and compare snapshots with Equal.
type Token struct {
	name       string
	symbol     *string
	kind       TokenKind
	standard   *StandardVersion
	balance    DecimalAmount
	contract   *string
	iconSource *string
	cachedIcon *string
	rate       decimal.Decimal
	items      []TokenItem
}

// NewToken validates cfg and builds a Token. The contract address must be present
// exactly when the kind is not native, and items are only allowed on non-fungible
// tokens. Violations return ErrInvalidTokenConfiguration.
func NewToken(cfg TokenConfig) (Token, error) {
	if !cfg.Kind.valid() {
		return Token{}, fmt.Errorf("%w: unknown token kind %d", ErrInvalidTokenConfiguration, int(cfg.Kind))
	}

	hasContract := cfg.ContractAddress != nil && strings.TrimSpace(*cfg.ContractAddress) != ""
	switch {
	case cfg.Kind == TokenKindNative && cfg.ContractAddress != nil:
		return Token{}, fmt.Errorf("%w: native token %q must not have a contract address",
			ErrInvalidTokenConfiguration, cfg.Name)
	case cfg.Kind != TokenKindNative && !hasContract:
		return Token{}, fmt.Errorf("%w: %s token %q requires a contract address",
			ErrInvalidTokenConfiguration, cfg.Kind, cfg.Name)
	}

	if len(cfg.Items) > 0 && cfg.Kind != TokenKindNonFungible {
		return Token{}, fmt.Errorf("%w: %s token %q cannot carry items",
			ErrInvalidTokenConfiguration, cfg.Kind, cfg.Name)
	}

	t := Token{
		name:       cfg.Name,
		symbol:     cloneString(cfg.Symbol),
		kind:       cfg.Kind,
		balance:    cfg.Balance,
		contract:   cloneString(cfg.ContractAddress),
		iconSource: cloneString(cfg.IconSourceURI),
		cachedIcon: cloneString(cfg.CachedIconURL),
		rate:       cfg.LocalCurrencyRate,
		items:      cloneItems(cfg.Items),
	}
	if cfg.StandardVersion != nil {
		v := *cfg.StandardVersion
		t.standard = &v
	}
	if t.balance.mantissa == nil {
		t.balance = ZeroAmount(t.balance.decimalPlaces)
	}
	return t, nil
}

// NativeToken returns the native coin with a zero balance at scale 6.
func NativeToken() Token {
	return NativeTokenWithAmount(ZeroAmount(NativeDecimalPlaces))
}

// NativeTokenWithAmount returns the native coin holding amount. The scale is taken
// from amount as is; callers pass amounts already at the native scale.
func NativeTokenWithAmount(amount DecimalAmount) Token {
	symbol := NativeTokenSymbol
	t, err := NewToken(TokenConfig{
		Name:    NativeTokenName,
		Symbol:  &symbol,
		Kind:    TokenKindNative,
		Balance: amount,
	})
	if err != nil {
		// the native configuration is statically valid
		panic(err)
	}
	return t
}

// NewFungibleToken builds a fungible contract token.
func NewFungibleToken(name, symbol, contract string, standard StandardVersion, balance DecimalAmount) (Token, error) {
	return NewToken(TokenConfig{
		Name:            name,
		Symbol:          optionalString(symbol),
		Kind:            TokenKindFungible,
		StandardVersion: &standard,
		Balance:         balance,
		ContractAddress: &contract,
	})
}

// NewNonFungibleToken builds an NFT collection token. Its balance is the number of
// editions held across items, at scale 0.
func NewNonFungibleToken(name, contract string, standard StandardVersion, items []TokenItem) (Token, error) {
	balance := ZeroAmount(0)
	for _, item := range items {
		balance = balance.Add(item.Amount)
	}
	return NewToken(TokenConfig{
		Name:            name,
		Kind:            TokenKindNonFungible,
		StandardVersion: &standard,
		Balance:         balance,
		ContractAddress: &contract,
		Items:           items,
	})
}

// Name returns the display name.
func (t Token) Name() string { return t.name }

// Symbol returns the short code, if any.
func (t Token) Symbol() (string, bool) { return derefString(t.symbol) }

// Kind returns the token kind.
func (t Token) Kind() TokenKind { return t.kind }

// StandardVersion returns the contract standard, if any.
func (t Token) StandardVersion() (StandardVersion, bool) {
	if t.standard == nil {
		return "", false
	}
	return *t.standard, true
}

// Balance returns the balance snapshot.
func (t Token) Balance() DecimalAmount { return t.balance }

// DecimalPlaces is always the balance's scale.
func (t Token) DecimalPlaces() uint8 { return t.balance.DecimalPlaces() }

// ContractAddress returns the token contract, absent for the native coin.
func (t Token) ContractAddress() (string, bool) { return derefString(t.contract) }

// IconSourceURI returns the origin icon reference, if any.
func (t Token) IconSourceURI() (string, bool) { return derefString(t.iconSource) }

// CachedIconURL returns the locally resolved icon reference, if any.
func (t Token) CachedIconURL() (string, bool) { return derefString(t.cachedIcon) }

// LocalCurrencyRate returns the price of one unit in the local currency (0 when unknown).
func (t Token) LocalCurrencyRate() decimal.Decimal { return t.rate }

// Items returns a copy of the owned NFT items.
func (t Token) Items() []TokenItem { return cloneItems(t.items) }

// IsNative reports whether t is the native coin.
func (t Token) IsNative() bool { return t.kind == TokenKindNative }

// LocalCurrencyValue is balance multiplied by the local currency rate.
func (t Token) LocalCurrencyValue() decimal.Decimal {
	return t.balance.Decimal().Mul(t.rate)
}

// WithBalance returns a copy of t holding balance.
func (t Token) WithBalance(balance DecimalAmount) Token {
	t.balance = balance
	return t
}

// WithCachedIconURL returns a copy of t with the locally resolved icon set.
func (t Token) WithCachedIconURL(url string) Token {
	t.cachedIcon = optionalString(url)
	return t
}

// WithLocalCurrencyRate returns a copy of t priced at rate.
func (t Token) WithLocalCurrencyRate(rate decimal.Decimal) Token {
	t.rate = rate
	return t
}

// WithItems returns a copy of t owning items. Only non-fungible tokens accept items.
func (t Token) WithItems(items []TokenItem) (Token, error) {
	if len(items) > 0 && t.kind != TokenKindNonFungible {
		return Token{}, fmt.Errorf("%w: %s token %q cannot carry items",
			ErrInvalidTokenConfiguration, t.kind, t.name)
	}
	t.items = cloneItems(items)
	return t, nil
}

// Summary is the full descriptive summary of the token.
func (t Token) Summary() string {
	symbol, _ := t.Symbol()
	contract, _ := t.ContractAddress()
	standard, ok := t.StandardVersion()
	if !ok {
		standard = "none"
	}
	return fmt.Sprintf("%s token %q (symbol: %q, standard: %s, contract: %q, decimals: %d, balance: %s, items: %d)",
		t.kind, t.name, symbol, standard, contract, t.DecimalPlaces(), t.balance, len(t.items))
}

// Equal reports full-state equality: name, symbol, summary, contract address,
// balance (value and scale) and items.
func (t Token) Equal(o Token) bool {
	if t.name != o.name ||
		!equalOptional(t.symbol, o.symbol) ||
		t.Summary() != o.Summary() ||
		!equalOptional(t.contract, o.contract) ||
		!t.balance.Identical(o.balance) ||
		len(t.items) != len(o.items) {
		return false
	}
	for i := range t.items {
		if !t.items[i].Equal(o.items[i]) {
			return false
		}
	}
	return true
}

// TokenKey is the reduced identity a Token hashes on. It is comparable and can be
// used directly as a map key.
type TokenKey struct {
	Kind            TokenKind
	Name            string
	Symbol          string
	ContractAddress string
}

// Key returns the identity fields used for hashing.
func (t Token) Key() TokenKey {
	symbol, _ := t.Symbol()
	contract, _ := t.ContractAddress()
	return TokenKey{Kind: t.kind, Name: t.name, Symbol: symbol, ContractAddress: contract}
}

// Hash hashes kind, name, symbol and contract address. Balance and items are left out.
func (t Token) Hash() uint64 {
	k := t.Key()
	d := xxhash.New()
	_, _ = d.WriteString(k.Kind.String())
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(k.Name)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(k.Symbol)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(k.ContractAddress)
	return d.Sum64()
}

// tokenRecord is the stable serialized shape handed to persistence.
type tokenRecord struct {
	Name            string           `json:"name"`
	Symbol          *string          `json:"symbol,omitempty"`
	TokenKind       *TokenKind       `json:"tokenKind"`
	StandardVersion *StandardVersion `json:"standardVersion,omitempty"`
	Balance         DecimalAmount    `json:"balance"`
	ContractAddress *string          `json:"contractAddress,omitempty"`
	Items           []TokenItem      `json:"items,omitempty"`
}

// MarshalJSON encodes the stable token record.
func (t Token) MarshalJSON() ([]byte, error) {
	return json.Marshal(tokenRecord{
		Name:            t.name,
		Symbol:          t.symbol,
		TokenKind:       &t.kind,
		StandardVersion: t.standard,
		Balance:         t.balance,
		ContractAddress: t.contract,
		Items:           t.items,
	})
}

// UnmarshalJSON decodes a token record and re-validates it. The kind must be
// present; it is never inferred.
func (t *Token) UnmarshalJSON(data []byte) error {
	var rec tokenRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("decode token: %w", err)
	}
	if rec.TokenKind == nil {
		return fmt.Errorf("%w: tokenKind is required", ErrInvalidTokenConfiguration)
	}
	decoded, err := NewToken(TokenConfig{
		Name:            rec.Name,
		Symbol:          rec.Symbol,
		Kind:            *rec.TokenKind,
		StandardVersion: rec.StandardVersion,
		Balance:         rec.Balance,
		ContractAddress: rec.ContractAddress,
		Items:           rec.Items,
	})
	if err != nil {
		return err
	}
	*t = decoded
	return nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func derefString(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	return *s, true
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func cloneItems(items []TokenItem) []TokenItem {
	if items == nil {
		return nil
	}
	out := make([]TokenItem, len(items))
	copy(out, items)
	return out
}
