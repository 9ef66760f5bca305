package dex

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"poolscope/internal/model"
	"poolscope/internal/tickmath"
)

// ContractCaller is the subset of an Ethereum client needed for eth_call.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// StateReader reads V3 pool state and token metadata at the latest block.
type StateReader struct {
	caller ContractCaller
	tokens *TokenCache
	logger *zap.Logger
}

func NewStateReader(caller ContractCaller, logger *zap.Logger) *StateReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	// A positive size never fails.
	tokens, _ := NewTokenCache(defaultTokenCacheSize)
	return &StateReader{caller: caller, tokens: tokens, logger: logger}
}

// PoolState reads immutables, slot0 and liquidity of a pool together with
// both tokens' ERC20 metadata.
func (r *StateReader) PoolState(ctx context.Context, poolAddress string) (model.PoolState, error) {
	if r.caller == nil {
		return model.PoolState{}, fmt.Errorf("chain client is nil")
	}
	if !common.IsHexAddress(poolAddress) {
		return model.PoolState{}, model.InvalidInputf("pool address %q is not a hex address", poolAddress)
	}
	pool := common.HexToAddress(poolAddress)

	parsed, err := V3PoolABI()
	if err != nil {
		return model.PoolState{}, fmt.Errorf("parse pool abi: %w", err)
	}

	var (
		token0, token1 common.Address
		fee            uint32
		spacing        int32
		liquidity      *big.Int
		sqrtPrice      *big.Int
		tick           int32
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		values, err := r.call(gctx, pool, parsed, "token0")
		if err != nil {
			return err
		}
		token0, err = asAddress(values[0])
		return wrapField("token0", err)
	})
	g.Go(func() error {
		values, err := r.call(gctx, pool, parsed, "token1")
		if err != nil {
			return err
		}
		token1, err = asAddress(values[0])
		return wrapField("token1", err)
	})
	g.Go(func() error {
		values, err := r.call(gctx, pool, parsed, "fee")
		if err != nil {
			return err
		}
		feeInt, err := asBigInt(values[0])
		if err != nil {
			return wrapField("fee", err)
		}
		fee = uint32(feeInt.Uint64())
		return nil
	})
	g.Go(func() error {
		values, err := r.call(gctx, pool, parsed, "tickSpacing")
		if err != nil {
			return err
		}
		spacingInt, err := asBigInt(values[0])
		if err != nil {
			return wrapField("tick spacing", err)
		}
		spacing, err = int24FromBig(spacingInt)
		return wrapField("tick spacing", err)
	})
	g.Go(func() error {
		values, err := r.call(gctx, pool, parsed, "slot0")
		if err != nil {
			return err
		}
		if len(values) < 2 {
			return fmt.Errorf("%w: slot0 returned %d values", model.ErrUpstreamFailure, len(values))
		}
		if sqrtPrice, err = asBigInt(values[0]); err != nil {
			return wrapField("sqrtPriceX96", err)
		}
		tickInt, err := asBigInt(values[1])
		if err != nil {
			return wrapField("tick", err)
		}
		tick, err = int24FromBig(tickInt)
		return wrapField("tick", err)
	})
	g.Go(func() error {
		values, err := r.call(gctx, pool, parsed, "liquidity")
		if err != nil {
			r.logger.Debug("liquidity call failed", zap.String("pool", pool.Hex()), zap.Error(err))
			return nil
		}
		liquidity, _ = asBigInt(values[0])
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.PoolState{}, err
	}

	var meta0, meta1 model.Token
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		meta0, err = r.TokenMeta(gctx, token0)
		return err
	})
	g.Go(func() error {
		var err error
		meta1, err = r.TokenMeta(gctx, token1)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.PoolState{}, err
	}

	state := model.PoolState{
		Address:      pool.Hex(),
		Token0:       meta0,
		Token1:       meta1,
		Fee:          fee,
		TickSpacing:  spacing,
		SqrtPriceX96: sqrtPrice.String(),
		Tick:         tick,
	}
	if liquidity != nil {
		state.Liquidity = liquidity.String()
	}
	if sqrtPrice.Sign() > 0 {
		price, err := tickmath.SqrtPriceX96ToPrice(sqrtPrice, meta0.Decimals, meta1.Decimals)
		if err != nil {
			return model.PoolState{}, err
		}
		state.Price = price
	}
	return state, nil
}

// TokenMeta loads decimals, symbol and name of an ERC20 token. Decimals is
// required; symbol and name fall back to the bytes32 encoding and are left
// empty when neither form decodes. Successful reads are cached.
func (r *StateReader) TokenMeta(ctx context.Context, token common.Address) (model.Token, error) {
	if cached, ok := r.tokens.Get(token); ok {
		return cached, nil
	}
	meta := model.Token{Address: token.Hex()}

	stringABI, err := erc20StringABI.get()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 string abi: %w", err)
	}
	bytes32ABI, err := erc20Bytes32ABI.get()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 bytes32 abi: %w", err)
	}

	values, err := r.call(ctx, token, stringABI, "decimals")
	if err != nil {
		return meta, err
	}
	if meta.Decimals, err = asUint8(values[0]); err != nil {
		return meta, wrapField("decimals", err)
	}

	meta.Symbol = r.text(ctx, token, stringABI, bytes32ABI, "symbol")
	meta.Name = r.text(ctx, token, stringABI, bytes32ABI, "name")
	r.tokens.Set(token, meta)
	return meta, nil
}

func (r *StateReader) text(ctx context.Context, token common.Address, stringABI, bytes32ABI abi.ABI, method string) string {
	if values, err := r.call(ctx, token, stringABI, method); err == nil {
		if s, ok := values[0].(string); ok {
			return s
		}
	}
	values, err := r.call(ctx, token, bytes32ABI, method)
	if err != nil {
		r.logger.Debug(method+" call failed", zap.String("token", token.Hex()), zap.Error(err))
		return ""
	}
	s, _ := bytes32ToString(values[0])
	return strings.TrimSpace(s)
}

func (r *StateReader) call(ctx context.Context, to common.Address, parsed abi.ABI, method string) ([]interface{}, error) {
	data, err := parsed.Pack(method)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	resp, err := r.caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: call %s on %s: %w", model.ErrUpstreamFailure, method, to.Hex(), err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("%w: unpack %s: %w", model.ErrUpstreamFailure, method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %s returned no values", model.ErrUpstreamFailure, method)
	}
	return values, nil
}

func wrapField(field string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", model.ErrUpstreamFailure, field, err)
}
