package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Address is a lower-cased 0x-prefixed 20-byte hex account address.
type Address string

const ZeroAddress Address = "0x0000000000000000000000000000000000000000"

// ParseAddress validates and normalizes an account address.
func ParseAddress(input string) (Address, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	if !strings.HasPrefix(s, "0x") || len(s) != 42 {
		return "", fmt.Errorf("invalid address %q: want 0x followed by 40 hex digits", input)
	}
	for _, c := range s[2:] {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", fmt.Errorf("invalid address %q: non-hex digit %q", input, c)
		}
	}
	return Address(s), nil
}

// Canonical lower-cases a so it matches stored addresses. Values built with
// ParseAddress are already canonical.
func (a Address) Canonical() Address { return Address(strings.ToLower(strings.TrimSpace(string(a)))) }

func (a Address) IsZero() bool { return a == "" || a == ZeroAddress }

// Short renders 0x1234…abcd for display.
func (a Address) Short() string {
	s := string(a)
	if len(s) < 12 {
		return s
	}
	return s[:6] + "…" + s[len(s)-4:]
}

// Gwei is a payment amount. 1 ether = 1e9 gwei.
type Gwei int64

const GweiPerEther Gwei = 1_000_000_000

// String renders the amount in ether, e.g. "0.001 ETH".
func (g Gwei) String() string {
	whole := int64(g / GweiPerEther)
	frac := int64(g % GweiPerEther)
	if frac < 0 {
		frac = -frac
	}
	if frac == 0 {
		return strconv.FormatInt(whole, 10) + " ETH"
	}
	fs := strings.TrimRight(fmt.Sprintf("%09d", frac), "0")
	return fmt.Sprintf("%d.%s ETH", whole, fs)
}

// ParseEther parses a decimal ether amount ("0.001") into gwei.
func ParseEther(input string) (Gwei, error) {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(input), "ETH"))
	if s == "" || strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("invalid amount %q", input)
	}
	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > 9 {
		return 0, fmt.Errorf("invalid amount %q: more than 9 decimals", input)
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || w < 0 {
		return 0, fmt.Errorf("invalid amount %q", input)
	}
	var f int64
	if frac != "" {
		f, err = strconv.ParseInt(frac+strings.Repeat("0", 9-len(frac)), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q", input)
		}
	}
	if w > (math.MaxInt64-f)/int64(GweiPerEther) {
		return 0, fmt.Errorf("invalid amount %q: too large", input)
	}
	return Gwei(w)*GweiPerEther + Gwei(f), nil
}

type Element int

const (
	ElementNone Element = iota
	ElementAqua
	ElementTerra
	ElementPyro
	ElementAero
	ElementUmbra
)

var elementNames = [...]string{"None", "Aqua", "Terra", "Pyro", "Aero", "Umbra"}

func (e Element) IsValid() bool { return e >= ElementNone && e <= ElementUmbra }

func (e Element) String() string {
	if !e.IsValid() {
		return fmt.Sprintf("Element(%d)", int(e))
	}
	return elementNames[e]
}

// Generation is stored zero-based: Gen1 == 0.
type Generation int

const (
	Gen1 Generation = iota
	Gen2
	Gen3
	Gen4
	Gen5
)

const MaxGeneration = Gen5

func (g Generation) IsValid() bool { return g >= Gen1 && g <= MaxGeneration }

// Next advances one generation, capped at MaxGeneration.
func (g Generation) Next() Generation {
	if g >= MaxGeneration {
		return MaxGeneration
	}
	return g + 1
}

func (g Generation) String() string { return fmt.Sprintf("Gen-%d", int(g)+1) }

// TokenBasicInfo mirrors getTokenBasicInfo.
type TokenBasicInfo struct {
	EnergyLevel  int64
	Purity       int
	CoreElement  Element
	Generation   Generation
	Evolved      bool
	CreationTime time.Time
}

// TokenEnergyInfo mirrors getTokenEnergyInfo.
type TokenEnergyInfo struct {
	LastEnergized time.Time
	CurrentStreak int64
}

// TokenAttributes is the full token record. InfusedTraits holds the first page only;
// TraitCount is the total.
type TokenAttributes struct {
	ID            int64
	Owner         Address
	EnergyLevel   int64
	Purity        int
	CoreElement   Element
	Generation    Generation
	InfusedTraits []string
	TraitCount    int
	LastEnergized time.Time
	CurrentStreak int64
	Evolved       bool
	CreationTime  time.Time
}

type BasicStats struct {
	TotalMinted  int64
	TotalEvolved int64
}

// Constants is the public rule surface (MINT_PRICE, CLEANSE_COST, ...).
type Constants struct {
	MintPrice             Gwei
	CleanseCost           Gwei
	EvolutionThreshold    int64
	DailyEnergyGain       int64
	StreakBonusMultiplier int64
	MaxSupply             int64
}
