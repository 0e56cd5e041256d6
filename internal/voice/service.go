package voice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tradeterm/internal/model"
)

// ErrParse marks failures of the command grammar or symbol resolution;
// ErrTranscription marks failures of the transcription API. Both are
// detected before any broker call.
var (
	ErrParse         = errors.New("voice command parse failed")
	ErrTranscription = errors.New("voice transcription failed")
)

// OrderPlacer is the slice of the order pipeline the voice channel needs.
type OrderPlacer interface {
	Place(ctx context.Context, clientID, source string, req model.OrderRequest) (*model.PlaceResult, error)
}

// Result is the voice channel's answer: what was heard, what was parsed,
// and what the pipeline did with it.
type Result struct {
	Transcript string             `json:"text"`
	Intent     *model.OrderIntent `json:"intent"`
	Order      *model.PlaceResult `json:"order"`
}

// Service composes transcription, command parsing, and order placement for
// the voice channel.
type Service struct {
	transcriber *Transcriber
	placer      OrderPlacer
	log         *slog.Logger
}

// NewService wires the voice channel.
func NewService(transcriber *Transcriber, placer OrderPlacer, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{transcriber: transcriber, placer: placer, log: log}
}

// ProcessOrder transcribes the audio, parses the command, and submits a
// MARKET order built from the intent and the configured defaults.
func (s *Service) ProcessOrder(ctx context.Context, clientID string, audio []byte, filename string, settings *Settings) (*Result, error) {
	transcript, err := s.transcriber.Transcribe(ctx, settings.GroqAPIKey, settings.Model, audio, filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	s.log.Debug("voice transcript", "client_id", clientID, "text", transcript)

	intent, err := ParseCommand(transcript, settings.ParserConfig())
	if err != nil {
		return &Result{Transcript: transcript}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	s.log.Info("voice command parsed",
		"client_id", clientID, "side", intent.Side,
		"quantity", intent.Quantity, "symbol", intent.Symbol)

	req := model.OrderRequest{
		Symbol:       intent.Symbol,
		Exchange:     settings.Exchange,
		Side:         intent.Side,
		OrderType:    model.OrderTypeMarket,
		ProductType:  settings.ProductType,
		Variety:      model.VarietyNormal,
		Quantity:     fmt.Sprintf("%d", intent.Quantity),
		Price:        "0",
		TriggerPrice: "0",
	}

	placed, err := s.placer.Place(ctx, clientID, model.SourceVoice, req)
	if err != nil {
		return &Result{Transcript: transcript, Intent: intent}, err
	}
	return &Result{Transcript: transcript, Intent: intent, Order: placed}, nil
}
