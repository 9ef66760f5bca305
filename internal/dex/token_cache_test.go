package dex

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"poolscope/internal/model"
)

func TestTokenCacheEvictsOldest(t *testing.T) {
	cache, err := NewTokenCache(2)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	a := common.HexToAddress("0x01")
	b := common.HexToAddress("0x02")
	c := common.HexToAddress("0x03")

	cache.Set(a, model.Token{Symbol: "A"})
	cache.Set(b, model.Token{Symbol: "B"})
	cache.Set(c, model.Token{Symbol: "C"})

	if _, ok := cache.Get(a); ok {
		t.Fatalf("expected %s to be evicted", a.Hex())
	}
	got, ok := cache.Get(c)
	if !ok || got.Symbol != "C" {
		t.Fatalf("unexpected entry: %+v %v", got, ok)
	}
}
