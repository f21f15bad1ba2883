package networkdefinition

import (
	"testing"

	"wallet_core/internal/domain/entity"

	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...any) {}
func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any) {}
func (nopLogger) Error(string, ...any) {}

func customNetwork(name, node string) entity.NetworkConfig {
	cfg := Ghostnet
	cfg.Identifier = entity.NetworkCustom
	cfg.Name = name
	cfg.NodeEndpoint = node
	return cfg
}

func TestBuiltInDefinitionsAreValid(t *testing.T) {
	require.NoError(t, Mainnet.Validate())
	require.NoError(t, Ghostnet.Validate())
}

func TestLookup(t *testing.T) {
	p := NewNetworkDefinitionProvider(nopLogger{}, []entity.NetworkConfig{
		customNetwork("Local Sandbox", "http://localhost:20000"),
	})

	def, ok := p.Lookup("mainnet")
	require.True(t, ok)
	require.Equal(t, Mainnet, def)

	def, ok = p.Lookup("TESTNET")
	require.True(t, ok)
	require.Equal(t, "Ghostnet", def.Name)

	def, ok = p.Lookup("ghostnet")
	require.True(t, ok)
	require.Equal(t, entity.NetworkTestnet, def.Identifier)

	def, ok = p.Lookup(" local sandbox ")
	require.True(t, ok)
	require.Equal(t, "http://localhost:20000", def.NodeEndpoint)

	def, ok = p.Lookup("custom")
	require.True(t, ok)
	require.Equal(t, "Local Sandbox", def.Name)

	_, ok = p.Lookup("devnet")
	require.False(t, ok)
}

func TestInvalidAndDuplicateCustomNetworksAreSkipped(t *testing.T) {
	p := NewNetworkDefinitionProvider(nopLogger{}, []entity.NetworkConfig{
		customNetwork("Broken", "localhost:20000"),
		customNetwork("mainnet", "http://localhost:20000"),
		customNetwork("", "http://localhost:20000"),
		customNetwork("Sandbox", "http://localhost:20000"),
		customNetwork("sandbox", "http://localhost:30000"),
	})

	all := p.All()
	require.Len(t, all, 3)
	require.Equal(t, "Sandbox", all[2].Name)

	all[0].Name = "changed"
	require.Equal(t, "Mainnet", p.All()[0].Name)
}

func TestCustomNetworkDefaultsIdentifier(t *testing.T) {
	cfg := customNetwork("Sandbox", "http://localhost:20000")
	cfg.Identifier = ""

	p := NewNetworkDefinitionProvider(nopLogger{}, []entity.NetworkConfig{cfg})
	def, ok := p.Lookup("Sandbox")
	require.True(t, ok)
	require.Equal(t, entity.NetworkCustom, def.Identifier)
}
