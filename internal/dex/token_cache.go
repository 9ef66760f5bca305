package dex

import (
	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru/v2"

	"poolscope/internal/model"
)

const defaultTokenCacheSize = 4096

// TokenCache holds ERC20 metadata by address. Token metadata is immutable
// on-chain, so entries are only evicted by size.
type TokenCache struct {
	cache *lru.Cache[common.Address, model.Token]
}

func NewTokenCache(size int) (*TokenCache, error) {
	if size <= 0 {
		size = defaultTokenCacheSize
	}
	cache, err := lru.New[common.Address, model.Token](size)
	if err != nil {
		return nil, err
	}
	return &TokenCache{cache: cache}, nil
}

func (c *TokenCache) Get(address common.Address) (model.Token, bool) {
	return c.cache.Get(address)
}

func (c *TokenCache) Set(address common.Address, token model.Token) {
	c.cache.Add(address, token)
}
