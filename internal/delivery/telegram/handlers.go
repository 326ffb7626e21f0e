package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NasaVasa/oddswatch/internal/domain"
	"github.com/NasaVasa/oddswatch/internal/usecase"
	"github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type BatchController interface {
	RunBatch(ctx context.Context) (usecase.BatchResult, error)
	Status() usecase.BatchStatus
}

// Handlers serves ops commands. Messages from any chat other than the
// configured one are ignored.
type Handlers struct {
	api     Sender
	chatID  int64
	batch   BatchController
	markets domain.MarketDataClient
	logger  *zap.Logger
}

func NewHandlers(api Sender, chatID int64, batch BatchController, markets domain.MarketDataClient, logger *zap.Logger) *Handlers {
	return &Handlers{api: api, chatID: chatID, batch: batch, markets: markets, logger: logger}
}

func (h *Handlers) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || update.Message.Chat == nil {
		return
	}
	if update.Message.Chat.ID != h.chatID {
		h.logger.Warn("ignoring message from foreign chat", zap.Int64("chat_id", update.Message.Chat.ID))
		return
	}
	if update.Message.IsCommand() {
		h.handleCommand(ctx, update.Message)
	}
}

func (h *Handlers) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	command := message.Command()
	args := message.CommandArguments()

	h.logger.Info(
		"telegram command received",
		zap.Int64("chat_id", message.Chat.ID),
		zap.String("command", command),
		zap.String("args", args),
	)

	switch command {
	case "start", "help":
		h.reply(HelpText)
	case "status":
		h.reply(formatStatus(h.batch.Status()))
	case "run":
		result, err := h.batch.RunBatch(context.WithoutCancel(ctx))
		if err != nil {
			h.logger.Warn("run command failed", zap.Error(err))
			h.reply(fmt.Sprintf("Batch failed: %s", err))
			return
		}
		h.reply(fmt.Sprintf("Batch complete: %d evaluated, %d triggered, %d notified, %d skipped.",
			result.Evaluated, result.Triggered, result.Processed, result.Skipped))
	case "market":
		marketID, err := ParseMarketID(args)
		if err != nil {
			h.reply("Usage: /market <market_id>")
			return
		}
		snapshot, err := h.markets.GetMarketData(ctx, marketID)
		if err != nil {
			h.reply(h.marketErrorMessage(err))
			return
		}
		h.reply(formatSnapshot(*snapshot))
	default:
		h.logger.Warn("unknown command", zap.String("command", command))
		h.reply("Unknown command.\n\n" + HelpText)
	}
}

func (h *Handlers) marketErrorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrMarketNotFound):
		return "Market not found. Ensure the event slug is correct."
	case errors.Is(err, domain.ErrMalformedMarket):
		return "Market data could not be read."
	}

	h.logger.Warn("unhandled error", zap.Error(err))
	return "Something went wrong. Please try again."
}

func formatStatus(status usecase.BatchStatus) string {
	if status.Runs == 0 {
		return "No batch has run yet."
	}
	var builder strings.Builder
	fmt.Fprintf(&builder, "Last batch: %s (%s)\n", status.LastRunAt.UTC().Format(time.RFC3339), humanize.Time(status.LastRunAt))
	if status.LastError != "" {
		fmt.Fprintf(&builder, "Result: failed, %s\n", status.LastError)
	} else {
		r := status.LastResult
		fmt.Fprintf(&builder, "Result: %d evaluated, %d triggered, %d notified, %d skipped\n", r.Evaluated, r.Triggered, r.Processed, r.Skipped)
	}
	fmt.Fprintf(&builder, "Runs since start: %d\nConsecutive failures: %d", status.Runs, status.ConsecutiveFailures)
	return builder.String()
}

func formatSnapshot(snapshot domain.MarketSnapshot) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "%s\nTotal volume: $%s\n", snapshot.Title, humanize.Commaf(snapshot.TotalVolume))
	if len(snapshot.Outcomes) == 0 {
		builder.WriteString("(no outcomes)")
		return builder.String()
	}
	for i, outcome := range snapshot.Outcomes {
		marker := ""
		if outcome.ID == snapshot.FavoriteOutcomeID {
			marker = " ★"
		}
		fmt.Fprintf(&builder, "%d) %s: %.1f%% ($%s)%s\n", i+1, outcome.Label, outcome.Price*100, humanize.Comma(int64(outcome.Volume)), marker)
	}
	return strings.TrimRight(builder.String(), "\n")
}

func (h *Handlers) reply(text string) {
	msg := tgbotapi.NewMessage(h.chatID, text)
	if _, err := h.api.Send(msg); err != nil {
		h.logger.Warn("failed to send message", zap.Error(err))
	}
}
