// Package chain holds the read-only EVM node connection behind on-chain pool
// reads.
package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"poolscope/internal/model"
)

// Client issues eth_call against pools and tokens. It satisfies
// dex.ContractCaller.
type Client struct {
	rpc     *rpc.Client
	eth     *ethclient.Client
	chainID *big.Int
}

// NewClient dials rpcURL and asks the node for its chain id, so a wrong URL
// fails here rather than on the first pool read.
func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	rpcURL = strings.TrimSpace(rpcURL)
	if rpcURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}
	rc, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rpcURL, err)
	}
	ec := ethclient.NewClient(rc)
	id, err := ec.ChainID(ctx)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("%w: chain id from %s: %w", model.ErrUpstreamFailure, rpcURL, err)
	}
	return &Client{rpc: rc, eth: ec, chainID: id}, nil
}

func (c *Client) Close() {
	if c.rpc != nil {
		c.rpc.Close()
	}
}

// ChainID is the id the node reported when dialed.
func (c *Client) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// CallContract runs eth_call; a nil blockNumber reads the latest block.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return c.eth.CallContract(ctx, msg, blockNumber)
}
