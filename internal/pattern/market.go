package pattern

import (
	"time"

	"github.com/openmesh-labs/agora/internal/comms"
	"github.com/openmesh-labs/agora/internal/event"
	"github.com/openmesh-labs/agora/internal/logging"
	"github.com/openmesh-labs/agora/internal/task"
)

// Market timing defaults.
const (
	DefaultBidTimeout   = 5 * time.Second
	DefaultPollInterval = 100 * time.Millisecond
)

// MarketBased auctions the task: every agent is asked to bid, the highest
// bidder wins the task, and the losers are notified of the rejection.
type MarketBased struct {
	shared
	bidTimeout   time.Duration
	pollInterval time.Duration
	timeout      time.Duration
}

// MarketOption configures a MarketBased pattern.
type MarketOption func(*MarketBased)

// WithMarketBidTimeout overrides the bid collection window.
func WithMarketBidTimeout(d time.Duration) MarketOption {
	return func(p *MarketBased) { p.bidTimeout = d }
}

// WithMarketPollInterval overrides the bid polling cadence.
func WithMarketPollInterval(d time.Duration) MarketOption {
	return func(p *MarketBased) { p.pollInterval = d }
}

// WithMarketResponseTimeout overrides the wait for the winner's execution
// response.
func WithMarketResponseTimeout(d time.Duration) MarketOption {
	return func(p *MarketBased) { p.timeout = d }
}

// WithMarketBus attaches an event bus.
func WithMarketBus(bus *event.Bus) MarketOption {
	return func(p *MarketBased) { p.bus = bus }
}

// WithMarketLogger attaches a structured logger.
func WithMarketLogger(logger *logging.Logger) MarketOption {
	return func(p *MarketBased) { p.setLogger(p.Name(), logger) }
}

// NewMarketBased creates a MarketBased pattern.
func NewMarketBased(opts ...MarketOption) *MarketBased {
	p := &MarketBased{
		shared:       newShared("market_based"),
		bidTimeout:   DefaultBidTimeout,
		pollInterval: DefaultPollInterval,
		timeout:      DefaultResponseTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns "market_based".
func (p *MarketBased) Name() string { return "market_based" }

// Coordinate runs the auction.
func (p *MarketBased) Coordinate(t *task.Task, agents []string, ch comms.Channel) *task.Result {
	if len(agents) == 0 {
		return noAgents(t)
	}
	p.started(p.Name(), t, agents)
	if len(agents) == 1 {
		return p.finished(p.Name(), single(t, agents[0], ch, p.timeout))
	}

	for _, id := range agents {
		ch.Send(request(id, BidRequestPayload{Task: t}))
	}

	bids := p.collectBids(t, len(agents), ch)
	if len(bids) == 0 {
		return p.finished(p.Name(), task.FailedResult(t.ID, CoordinatorID, "No bids received"))
	}

	winner := highestBidder(agents, bids)
	p.logger.Info("auction settled", "task_id", t.ID, "winner", winner, "bid", bids[winner])

	t.Assign(winner)
	ch.Send(request(winner, AwardPayload{Task: t}))
	for _, id := range agents {
		if id != winner {
			ch.Send(comms.NewMessage(CoordinatorID, id, comms.MessageNotification,
				RejectPayload{TaskID: t.ID}))
		}
	}

	msg, ok := ch.Receive(CoordinatorID, p.timeout)
	if !ok {
		return p.finished(p.Name(), task.FailedResult(t.ID, winner,
			"No response from winning agent "+winner))
	}
	return p.finished(p.Name(), resultFrom(msg, t))
}

// collectBids polls the channel until every agent has bid or the window
// closes. A response that is not a bid payload counts as a zero bid.
func (p *MarketBased) collectBids(t *task.Task, expected int, ch comms.Channel) map[string]float64 {
	bids := make(map[string]float64, expected)
	deadline := time.Now().Add(p.bidTimeout)

	for len(bids) < expected && time.Now().Before(deadline) {
		msg, ok := ch.Receive(CoordinatorID, p.pollInterval)
		if !ok {
			continue
		}
		bid := 0.0
		if payload, isBid := msg.Content.(BidPayload); isBid {
			bid = payload.Bid
		}
		bids[msg.From] = bid
		p.logger.Debug("bid placed", "task_id", t.ID, "agent", msg.From, "bid", bid)
		if p.bus != nil {
			p.bus.Publish(event.NewBidPlacedEvent(t.ID, msg.From, bid))
		}
	}
	return bids
}

// highestBidder picks the winning agent, breaking bid ties by the given
// agent order.
func highestBidder(agents []string, bids map[string]float64) string {
	winner := ""
	best := 0.0
	for _, id := range agents {
		bid, placed := bids[id]
		if !placed {
			continue
		}
		if winner == "" || bid > best {
			winner, best = id, bid
		}
	}
	return winner
}
