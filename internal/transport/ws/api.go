package ws

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"chronoforge/internal/engine"
)

// API serves the read side of the ledger over HTTP and mounts the event stream.
type API struct {
	svc *engine.Service
	hub *Hub
	log *zap.Logger
}

func NewAPI(svc *engine.Service, hub *Hub, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{svc: svc, hub: hub, log: logger}
}

type tokenView struct {
	ID            int64     `json:"id"`
	Owner         string    `json:"owner"`
	EnergyLevel   int64     `json:"energy_level"`
	Purity        int       `json:"purity"`
	CoreElement   string    `json:"core_element"`
	Generation    string    `json:"generation"`
	Evolved       bool      `json:"evolved"`
	CurrentStreak int64     `json:"current_streak"`
	LastEnergized time.Time `json:"last_energized"`
	CreationTime  time.Time `json:"creation_time"`
	Traits        []string  `json:"traits"`
	TraitCount    int       `json:"trait_count"`
	TokenURI      string    `json:"token_uri"`
}

type holderView struct {
	Address string  `json:"address"`
	Balance int64   `json:"balance"`
	Tokens  []int64 `json:"tokens"`
}

type statsView struct {
	TotalMinted  int64  `json:"total_minted"`
	TotalEvolved int64  `json:"total_evolved"`
	TotalSupply  int64  `json:"total_supply"`
	Owner        string `json:"owner"`
}

type constantsView struct {
	MintPriceGwei         int64 `json:"mint_price_gwei"`
	CleanseCostGwei       int64 `json:"cleanse_cost_gwei"`
	EvolutionThreshold    int64 `json:"evolution_threshold"`
	DailyEnergyGain       int64 `json:"daily_energy_gain"`
	StreakBonusMultiplier int64 `json:"streak_bonus_multiplier"`
	MaxSupply             int64 `json:"max_supply"`
}

type errorView struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// Routes builds the HTTP surface.
func (a *API) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok\n"))
	})
	mux.HandleFunc("GET /tokens/{id}", a.handleToken)
	mux.HandleFunc("GET /holders/{address}/tokens", a.handleHolder)
	mux.HandleFunc("GET /stats", a.handleStats)
	mux.HandleFunc("GET /constants", a.handleConstants)
	mux.HandleFunc("GET /history", a.handleHistory)
	if a.hub != nil {
		mux.HandleFunc("GET /events", a.hub.Handler())
	}
	return mux
}

func (a *API) handleToken(rw http.ResponseWriter, r *http.Request) {
	id, err := engine.ParseTokenID(r.PathValue("id"))
	if err != nil {
		a.writeError(rw, engine.Error{Kind: engine.KindInvalidInput, Op: "tokens", Detail: err.Error()})
		return
	}
	attrs, err := a.svc.TokenAttributes(r.Context(), id)
	if err != nil {
		a.writeError(rw, err)
		return
	}
	uri, err := a.svc.TokenURI(r.Context(), id)
	if err != nil {
		a.writeError(rw, err)
		return
	}
	a.writeJSON(rw, http.StatusOK, tokenView{
		ID:            attrs.ID,
		Owner:         string(attrs.Owner),
		EnergyLevel:   attrs.EnergyLevel,
		Purity:        attrs.Purity,
		CoreElement:   attrs.CoreElement.String(),
		Generation:    attrs.Generation.String(),
		Evolved:       attrs.Evolved,
		CurrentStreak: attrs.CurrentStreak,
		LastEnergized: attrs.LastEnergized,
		CreationTime:  attrs.CreationTime,
		Traits:        attrs.InfusedTraits,
		TraitCount:    attrs.TraitCount,
		TokenURI:      uri,
	})
}

func (a *API) handleHolder(rw http.ResponseWriter, r *http.Request) {
	addr, err := engine.ParseAddress(r.PathValue("address"))
	if err != nil {
		a.writeError(rw, engine.Error{Kind: engine.KindInvalidInput, Op: "holders", Detail: err.Error()})
		return
	}
	ids, err := a.svc.UserTokens(r.Context(), addr)
	if err != nil {
		a.writeError(rw, err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	a.writeJSON(rw, http.StatusOK, holderView{Address: string(addr), Balance: int64(len(ids)), Tokens: ids})
}

func (a *API) handleStats(rw http.ResponseWriter, r *http.Request) {
	stats, err := a.svc.BasicStats(r.Context())
	if err != nil {
		a.writeError(rw, err)
		return
	}
	supply, err := a.svc.TotalSupply(r.Context())
	if err != nil {
		a.writeError(rw, err)
		return
	}
	owner, err := a.svc.Owner(r.Context())
	if err != nil {
		a.writeError(rw, err)
		return
	}
	a.writeJSON(rw, http.StatusOK, statsView{
		TotalMinted:  stats.TotalMinted,
		TotalEvolved: stats.TotalEvolved,
		TotalSupply:  supply,
		Owner:        string(owner),
	})
}

func (a *API) handleConstants(rw http.ResponseWriter, r *http.Request) {
	c := a.svc.Constants()
	a.writeJSON(rw, http.StatusOK, constantsView{
		MintPriceGwei:         int64(c.MintPrice),
		CleanseCostGwei:       int64(c.CleanseCost),
		EvolutionThreshold:    c.EvolutionThreshold,
		DailyEnergyGain:       c.DailyEnergyGain,
		StreakBonusMultiplier: c.StreakBonusMultiplier,
		MaxSupply:             c.MaxSupply,
	})
}

// handleHistory pages through the stored event log: ?after=<seq>&limit=<n>.
func (a *API) handleHistory(rw http.ResponseWriter, r *http.Request) {
	after, limit := int64(0), 100
	q := r.URL.Query()
	if v := q.Get("after"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			a.writeError(rw, engine.Error{Kind: engine.KindInvalidInput, Op: "history", Detail: "bad after"})
			return
		}
		after = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			a.writeError(rw, engine.Error{Kind: engine.KindInvalidInput, Op: "history", Detail: "bad limit"})
			return
		}
		if n < limit {
			limit = n
		}
	}

	events, err := a.svc.EventsAfter(r.Context(), after, limit)
	if err != nil {
		a.writeError(rw, err)
		return
	}
	if events == nil {
		events = []engine.Event{}
	}
	a.writeJSON(rw, http.StatusOK, events)
}

func statusFor(kind engine.ErrorKind) int {
	switch kind {
	case engine.KindTokenNotFound:
		return http.StatusNotFound
	case engine.KindInvalidInput:
		return http.StatusBadRequest
	case engine.KindNotDeployed:
		return http.StatusServiceUnavailable
	case "":
		return http.StatusInternalServerError
	default:
		return http.StatusConflict
	}
}

func (a *API) writeError(rw http.ResponseWriter, err error) {
	kind := engine.KindOf(err)
	status := statusFor(kind)
	if status == http.StatusInternalServerError {
		a.log.Error("api request failed", zap.Error(err))
	}
	a.writeJSON(rw, status, errorView{Error: err.Error(), Kind: string(kind)})
}

func (a *API) writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	if err := json.NewEncoder(rw).Encode(v); err != nil {
		a.log.Debug("write response", zap.Error(err))
	}
}
