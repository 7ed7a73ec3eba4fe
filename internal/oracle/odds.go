package oracle

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/predictarena/internal/contracts"
	"github.com/wonny/predictarena/internal/metrics"
	"github.com/wonny/predictarena/internal/teams"
	"github.com/wonny/predictarena/pkg/httputil"
	"github.com/wonny/predictarena/pkg/redis"
)

// sportKeys maps forecast sport keys to The Odds API keys
var sportKeys = map[string]string{
	"basketball_nba": "basketball_nba",
	"football_nfl":   "americanfootball_nfl",
	"baseball_mlb":   "baseball_mlb",
	"hockey_nhl":     "icehockey_nhl",
	"soccer_epl":     "soccer_epl",
	"soccer_mls":     "soccer_usa_mls",
}

type oddsScore struct {
	Name  string `json:"name"`
	Score string `json:"score"`
}

type oddsEvent struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	CommenceTime time.Time   `json:"commence_time"`
	Completed    bool        `json:"completed"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Scores       []oddsScore `json:"scores"`
}

// eventsTTL bounds how long one scores response is reused per sport.
// 진행 중이던 경기가 끝나면 다음 조회에서 결과가 보이도록 짧게 유지.
const eventsTTL = 5 * time.Minute

type sportEvents struct {
	events    []oddsEvent
	fetchedAt time.Time
}

// OddsOracle 스포츠 경기 결과 oracle (The Odds API scores endpoint)
// Safe for concurrent use (serve 프로세스에서 여러 채점 실행이 공유).
type OddsOracle struct {
	client  *httputil.Client
	apiKey  string
	loc     *time.Location
	cache   *redis.Cache
	metrics *metrics.Registry
	log     zerolog.Logger
	now     func() time.Time

	mu     sync.Mutex
	events map[string]sportEvents
}

// NewOddsOracle creates the sports result oracle
func NewOddsOracle(client *httputil.Client, apiKey string, loc *time.Location, cache *redis.Cache, reg *metrics.Registry, log zerolog.Logger) *OddsOracle {
	return &OddsOracle{
		client:  client,
		apiKey:  apiKey,
		loc:     loc,
		cache:   cache,
		metrics: reg,
		log:     log.With().Str("component", "oracle.odds").Logger(),
		now:     time.Now,
		events:  make(map[string]sportEvents),
	}
}

// GameResult returns the winning team (or "draw"); ok=false while pending
func (o *OddsOracle) GameResult(ctx context.Context, q contracts.GameQuery) (string, bool) {
	day := contracts.FormatDate(q.Date)
	key := redis.GameResultKey(q.Sport, teams.Normalize(q.AwayTeam)+"@"+teams.Normalize(q.HomeTeam), day)

	var winner string
	if found, err := o.cache.Get(ctx, key, &winner); err == nil && found {
		o.metrics.OracleLookup("odds", "cached")
		return winner, true
	}

	if o.apiKey == "" {
		o.log.Warn().Msg("ODDS_API_KEY not set, sports results pending")
		return "", false
	}

	remote, ok := sportKeys[q.Sport]
	if !ok {
		o.log.Warn().Str("sport", q.Sport).Msg("unknown sport key")
		return "", false
	}

	events, err := o.fetch(ctx, remote)
	if err != nil {
		o.log.Warn().Err(err).Str("sport", remote).Msg("odds api request failed")
		o.metrics.OracleLookup("odds", "miss")
		return "", false
	}

	for _, ev := range events {
		if ev.CommenceTime.In(o.loc).Format(contracts.DateLayout) != day {
			continue
		}
		same := teams.Match(q.HomeTeam, ev.HomeTeam) && teams.Match(q.AwayTeam, ev.AwayTeam)
		swapped := teams.Match(q.HomeTeam, ev.AwayTeam) && teams.Match(q.AwayTeam, ev.HomeTeam)
		if !same && !swapped {
			continue
		}

		if !ev.Completed {
			o.log.Info().Str("home", q.HomeTeam).Str("away", q.AwayTeam).Msg("game not completed")
			return "", false
		}

		winner, ok := decideWinner(ev.Scores)
		if !ok {
			o.log.Warn().Str("event", ev.ID).Msg("no usable scores")
			return "", false
		}

		if err := o.cache.Set(ctx, key, winner, redis.TTLDaily); err != nil {
			o.log.Debug().Err(err).Msg("cache set failed")
		}
		o.metrics.OracleLookup("odds", "hit")
		return winner, true
	}

	o.log.Info().
		Str("home", q.HomeTeam).
		Str("away", q.AwayTeam).
		Str("date", day).
		Msg("no matching game")
	o.metrics.OracleLookup("odds", "miss")
	return "", false
}

// fetch returns the sport's recent events, reusing a response younger than
// eventsTTL. The lock is held across the request so concurrent lookups for
// one sport share a single call.
func (o *OddsOracle) fetch(ctx context.Context, sport string) ([]oddsEvent, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if memo, ok := o.events[sport]; ok && o.now().Sub(memo.fetchedAt) < eventsTTL {
		return memo.events, nil
	}

	var events []oddsEvent
	err := o.client.GetJSON(ctx, "/sports/"+sport+"/scores/", map[string]string{
		"apiKey":     o.apiKey,
		"daysFrom":   "3",
		"dateFormat": "iso",
	}, &events)
	if err != nil {
		return nil, err
	}

	o.events[sport] = sportEvents{events: events, fetchedAt: o.now()}
	return events, nil
}

// decideWinner compares the two reported scores
func decideWinner(scores []oddsScore) (string, bool) {
	type entry struct {
		name  string
		score int
	}
	var parsed []entry
	for _, s := range scores {
		n, err := strconv.Atoi(s.Score)
		if err != nil || s.Name == "" {
			continue
		}
		parsed = append(parsed, entry{s.Name, n})
	}
	if len(parsed) < 2 {
		return "", false
	}

	a, b := parsed[0], parsed[1]
	switch {
	case a.score > b.score:
		return a.name, true
	case b.score > a.score:
		return b.name, true
	default:
		return contracts.DrawOutcome, true
	}
}
