package core

// Platform identifies which on-chain program produced a decoded event.
type Platform string

const (
	PlatformPumpAmm  Platform = "pump_amm"
	PlatformPumpFun  Platform = "pump_fun"
	PlatformRaydium  Platform = "raydium"
)

// EventType distinguishes the two shapes a decoded event can take.
type EventType string

const (
	EventTypeBuy        EventType = "buy"
	EventTypeSell       EventType = "sell"
	EventTypeSwap       EventType = "swap"
	EventTypeCreatePool EventType = "create_pool"
)

// SwapAccounts is the set of accounts common to every swap-shaped event,
// resolved to their base58 pubkeys.
type SwapAccounts struct {
	Pool      string
	User      string
	BaseMint  string
	QuoteMint string
}

// SwapEvent is the decoder's unified shape for a buy, sell, or swap across
// all three supported programs.
type SwapEvent struct {
	Accounts SwapAccounts

	MintIn  string
	MintOut string

	AmountIn  uint64
	AmountOut uint64

	MintInReserve  uint64
	MintOutReserve uint64

	// CoinCreator is set only for pump_amm buy/sell events.
	CoinCreator string

	Type EventType
}

// CreatePoolEvent is the decoder's unified shape for a pool-creation event
// across all three supported programs. Not every field is populated by
// every program; see the individual decoder packages.
type CreatePoolEvent struct {
	Pool      string
	Creator   string
	BaseMint  string
	QuoteMint string

	PoolBaseTokenReserve  uint64
	PoolQuoteTokenReserve uint64

	PoolBaseTokenAccount  string
	PoolQuoteTokenAccount string

	// Index is pump_amm's own pool index field; zero for programs that don't
	// carry one.
	Index uint16

	// Name, Symbol, URI, BondingCurve, and AssociatedBondingCurve are
	// populated only for pump_fun pool creations.
	Name                   string
	Symbol                 string
	URI                    string
	BondingCurve           string
	AssociatedBondingCurve string
}

// DecodedEvent is the decoder's tagged-union output. Exactly one of Swap or
// CreatePool is non-nil.
type DecodedEvent struct {
	Platform Platform

	Swap       *SwapEvent
	CreatePool *CreatePoolEvent
}
