package storage

// Contract is the single deployment row. Timestamps are unix seconds throughout.
type Contract struct {
	Owner        string
	Treasury     int64 // gwei
	NextTokenID  int64
	TotalMinted  int64
	TotalEvolved int64
	DeployedAt   int64
}

type Token struct {
	ID            int64
	Owner         string
	EnergyLevel   int64
	Purity        int
	CoreElement   int
	Generation    int
	LastEnergized int64
	CurrentStreak int64
	Evolved       bool
	CreationTime  int64
}

type Trait struct {
	ID        int64
	TokenID   int64
	Trait     string
	Partner   string
	InfusedAt int64
}

type Partner struct {
	Address     string
	Whitelisted bool
	UpdatedAt   int64
}

type Event struct {
	ID      int64
	Kind    string
	TokenID *int64
	Payload string // JSON
	At      int64
}
