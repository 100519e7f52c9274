package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"platingreport/internal/markdown"
	"platingreport/internal/pipeline"
	"platingreport/internal/ratelimiter"
)

const (
	// Telegram rejects messages above 4096 characters; stay well below in bytes.
	maxMessageBytes = 4000
	// Raw reply text is split before escaping, which can double its size.
	maxReplyChunkBytes = 1800

	commandTimeout = 5 * time.Minute
)

// Sender is the part of the Telegram client Bot uses to deliver messages.
type Sender interface {
	SendMessage(ctx context.Context, params *tgbot.SendMessageParams) (*models.Message, error)
}

// Service produces the results and replies the bot forwards.
type Service interface {
	Process(ctx context.Context, only ...string) ([]pipeline.Result, error)
	Analyze(ctx context.Context, r pipeline.Result) string
	Ask(ctx context.Context, question string) string
	CanAnalyze() bool
}

// Bot sends report digests to one chat and answers /report and /ask there.
type Bot struct {
	api         *tgbot.Bot
	sender      Sender
	chatID      int64
	svc         Service
	rateLimiter *ratelimiter.RateLimiter
	log         *slog.Logger
}

func New(token string, chatID int64, svc Service, log *slog.Logger) (*Bot, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("telegram token is empty")
	}
	if chatID == 0 {
		return nil, errors.New("telegram chat ID is empty")
	}

	b := newBot(nil, chatID, svc, log)

	api, err := tgbot.New(token,
		tgbot.WithSkipGetMe(),
		tgbot.WithDefaultHandler(b.handleDefault),
	)
	if err != nil {
		return nil, fmt.Errorf("create telegram client: %w", err)
	}

	api.RegisterHandler(tgbot.HandlerTypeMessageText, "/report", tgbot.MatchTypePrefix, b.handleReport)
	api.RegisterHandler(tgbot.HandlerTypeMessageText, "/ask", tgbot.MatchTypePrefix, b.handleAsk)

	b.api = api
	b.sender = api

	return b, nil
}

func newBot(sender Sender, chatID int64, svc Service, log *slog.Logger) *Bot {
	return &Bot{
		sender:      sender,
		chatID:      chatID,
		svc:         svc,
		rateLimiter: ratelimiter.New(log),
		log:         log,
	}
}

// Start polls for commands until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	if b.api == nil {
		return
	}
	b.api.Start(ctx)
}

// SendDigest posts one digest per result, with its analysis when present.
func (b *Bot) SendDigest(ctx context.Context, results []pipeline.Result, replies map[string]string) error {
	var errs []error

	for _, r := range results {
		msgs := Digest(r, replies[r.Sheet])
		if err := b.sendAll(ctx, b.chatID, msgs); err != nil {
			errs = append(errs, fmt.Errorf("send digest (sheet = %s): %w", r.Sheet, err))
		}
	}

	return errors.Join(errs...)
}

func (b *Bot) sendAll(ctx context.Context, chatID int64, msgs []string) error {
	for _, text := range msgs {
		if err := b.rateLimiter.Wait(ctx, chatID); err != nil {
			return fmt.Errorf("wait for rate limiter: %w", err)
		}

		if _, err := b.sender.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID:    chatID,
			Text:      text,
			ParseMode: models.ParseModeMarkdown,
		}); err != nil {
			return fmt.Errorf("send message: %w", err)
		}
	}

	b.log.DebugContext(ctx, "Messages are sent",
		"chatID", chatID,
		"messageCount", len(msgs))

	return nil
}

func (b *Bot) sendReply(ctx context.Context, chatID int64, title, reply string) error {
	return b.sendAll(ctx, chatID, pack(append([]string{markdown.Bold(title)}, replyBlocks(reply)...)))
}

// pack joins blocks into as few messages as fit maxMessageBytes.
func pack(blocks []string) []string {
	var (
		msgs []string
		cur  strings.Builder
	)

	for _, block := range blocks {
		if cur.Len() > 0 && cur.Len()+len(block)+1 > maxMessageBytes {
			msgs = append(msgs, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte('\n')
		}
		cur.WriteString(block)
	}
	if cur.Len() > 0 {
		msgs = append(msgs, cur.String())
	}

	return msgs
}

func replyBlocks(reply string) []string {
	chunks := markdown.Split(reply, maxReplyChunkBytes)
	blocks := make([]string, 0, len(chunks))
	for _, c := range chunks {
		blocks = append(blocks, markdown.EscapeV2(c))
	}
	return blocks
}
