// Package execution runs the order pipeline shared by every intake
// channel: normalize → validate → exchange rules → price gate → broker
// submit → audit log. Each stage short-circuits on the first error; the
// audit journal still records a failed attempt whenever submission reached
// the broker.
package execution

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"tradeterm/internal/marketfeed"
	"tradeterm/internal/metrics"
	"tradeterm/internal/model"
	"tradeterm/internal/order"
)

// Publisher receives each audit entry after journaling, e.g. to push live
// order outcomes to terminal clients. Must not block.
type Publisher interface {
	PublishOrder(entry model.OrderLogEntry)
}

// Pipeline wires the pipeline's collaborators. All state is read-only or
// request-scoped; the pipeline is safe for concurrent callers.
type Pipeline struct {
	creds    model.CredentialProvider
	resolver model.SymbolResolver
	feed     model.PriceFeed // may be nil: price gate disabled
	broker   model.BrokerGateway
	journal  model.OrderJournal
	pub      Publisher        // may be nil
	metrics  *metrics.Metrics // may be nil
	log      *slog.Logger
}

// Config carries the pipeline's collaborators.
type Config struct {
	Credentials model.CredentialProvider
	Resolver    model.SymbolResolver
	Feed        model.PriceFeed
	Broker      model.BrokerGateway
	Journal     model.OrderJournal
	Publisher   Publisher
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
}

// New creates the order pipeline.
func New(cfg Config) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		creds:    cfg.Credentials,
		resolver: cfg.Resolver,
		feed:     cfg.Feed,
		broker:   cfg.Broker,
		journal:  cfg.Journal,
		pub:      cfg.Publisher,
		metrics:  cfg.Metrics,
		log:      logger,
	}
}

// Place runs one order through the full pipeline. At most one submission
// attempt is made; nothing is retried. source tags the intake channel
// (API, SCALPER, VOICE) in the audit log.
func (p *Pipeline) Place(ctx context.Context, clientID, source string, req model.OrderRequest) (*model.PlaceResult, error) {
	start := time.Now()
	defer func() {
		if p.metrics != nil {
			p.metrics.PipelineDur.Observe(time.Since(start).Seconds())
		}
	}()

	// Credentials come first: a dead session fails before any other
	// stage runs.
	creds, err := p.creds.Credentials(ctx, clientID)
	if err != nil {
		return nil, p.reject(KindAuth, "credentials", err)
	}
	if creds == nil {
		return nil, p.reject(KindAuth, "credentials", model.ErrNoCredentials)
	}

	normalized, err := order.Normalize(req)
	if err != nil {
		return nil, p.reject(KindValidation, "normalize", err)
	}

	inst, err := p.resolver.Resolve(ctx, normalized.Symbol, normalized.Exchange)
	if err != nil {
		// An unknown symbol is a validation failure, never a silent
		// default.
		return nil, p.reject(KindValidation, "resolve", err)
	}
	normalized.Token = inst.Token

	if err := order.Validate(normalized); err != nil {
		return nil, p.reject(KindValidation, "validate", err)
	}

	final, err := order.ApplyExchangeRules(normalized, inst)
	if err != nil {
		return nil, p.reject(KindExchangeRule, "exchange_rules", err)
	}

	if err := p.gatePrice(ctx, final); err != nil {
		return nil, p.reject(KindValidation, "price_gate", err)
	}

	resp, err := p.submit(ctx, clientID, source, *creds, final)
	if err != nil {
		return nil, err
	}

	return &model.PlaceResult{
		Status:    true,
		OrderID:   resp.OrderID,
		Message:   resp.Message,
		Timestamp: time.Now().UTC(),
	}, nil
}

// gatePrice fetches the LTP for LIMIT orders and runs the price sanity
// check. Market orders skip the gate entirely.
func (p *Pipeline) gatePrice(ctx context.Context, o *model.NormalizedOrder) error {
	if p.feed == nil || o.OrderType != model.OrderTypeLimit {
		return nil
	}

	ltp, err := p.feed.LTP(ctx, o.Token, o.Exchange)
	if err != nil || ltp == "" {
		return errors.New("could not fetch market price for limit order")
	}

	if !marketfeed.CheckPrice(o.Price, ltp, o.OrderType) {
		return errors.New("order price rejected against market price")
	}
	return nil
}

// submit performs the single broker attempt and always journals the
// outcome, success or failure.
func (p *Pipeline) submit(ctx context.Context, clientID, source string, creds model.Credentials, o *model.NormalizedOrder) (*model.BrokerResponse, error) {
	brokerStart := time.Now()
	resp, err := p.broker.PlaceOrder(ctx, creds, o)
	if p.metrics != nil {
		p.metrics.BrokerPlaceDur.Observe(time.Since(brokerStart).Seconds())
	}

	if err != nil {
		p.journalOutcome(clientID, source, o, "", model.LogStatusFailed, err.Error())
		p.count(source, model.LogStatusFailed)
		return nil, newError(KindBroker, err)
	}
	if !resp.Status {
		p.journalOutcome(clientID, source, o, resp.OrderID, model.LogStatusFailed, resp.Message)
		p.count(source, model.LogStatusFailed)
		return nil, errorf(KindBroker, "broker rejected order: %s", resp.Message)
	}

	p.journalOutcome(clientID, source, o, resp.OrderID, model.LogStatusSuccess, resp.Message)
	p.count(source, model.LogStatusSuccess)
	p.log.Info("order placed",
		"client_id", clientID, "source", source, "order_id", resp.OrderID,
		"symbol", o.Symbol, "exchange", o.Exchange, "side", o.Side,
		"quantity", o.Quantity)
	return resp, nil
}

// journalOutcome writes the audit entry. A logging failure is reported to
// the operator stream only; it never changes the caller's result.
func (p *Pipeline) journalOutcome(clientID, source string, o *model.NormalizedOrder, orderID, status, message string) {
	qty, _ := strconv.ParseInt(o.Quantity, 10, 64)
	entry := model.OrderLogEntry{
		UserID:      clientID,
		OrderID:     orderID,
		Symbol:      o.Symbol,
		Exchange:    o.Exchange,
		OrderType:   o.OrderType,
		Side:        o.Side,
		ProductType: o.ProductType,
		Quantity:    qty,
		Price:       o.Price,
		Status:      status,
		Message:     message,
		Source:      source,
		CreatedAt:   time.Now().UTC(),
	}
	if o.Variety == model.VarietyStopLoss {
		entry.TriggerPrice = o.TriggerPrice
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.journal.Append(ctx, &entry); err != nil {
		p.log.Error("order audit log write failed", "client_id", clientID, "error", err)
		if p.metrics != nil {
			p.metrics.JournalWriteFailures.Inc()
		}
		return
	}

	if p.pub != nil {
		p.pub.PublishOrder(entry)
	}
}

func (p *Pipeline) reject(kind Kind, stage string, err error) error {
	if p.metrics != nil {
		p.metrics.OrdersRejected.WithLabelValues(stage).Inc()
	}
	p.log.Warn("order rejected", "stage", stage, "error", err)
	return newError(kind, err)
}

func (p *Pipeline) count(source, status string) {
	if p.metrics != nil {
		p.metrics.OrdersSubmitted.WithLabelValues(source, status).Inc()
	}
}
