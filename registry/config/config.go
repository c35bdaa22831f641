// Package config carries the chain-level settings for the certificate
// registry client.
package config

// Default values
const (
	DefaultRPC             = "https://rpc.sepolia.org"
	DefaultChainID         = 11155111
	DefaultContractAddress = "0x0000000000000000000000000000000000000000"
	DefaultDeployBlock     = 0
)

// Config holds the configuration for registry operations.
type Config struct {
	RPC             string
	ChainID         int64
	ContractAddress string
	// DeployBlock is the block the registry contract was deployed at; event
	// scans start here instead of genesis.
	DeployBlock uint64
}

// New creates a new Config instance with the provided values.
// If a value is empty/zero, it will use the default value.
// Pass an empty Config{} to use all defaults.
func New(cfg Config) *Config {
	result := &Config{
		RPC:             DefaultRPC,
		ChainID:         DefaultChainID,
		ContractAddress: DefaultContractAddress,
		DeployBlock:     DefaultDeployBlock,
	}

	if cfg.RPC != "" {
		result.RPC = cfg.RPC
	}
	if cfg.ChainID != 0 {
		result.ChainID = cfg.ChainID
	}
	if cfg.ContractAddress != "" {
		result.ContractAddress = cfg.ContractAddress
	}
	if cfg.DeployBlock != 0 {
		result.DeployBlock = cfg.DeployBlock
	}

	return result
}
