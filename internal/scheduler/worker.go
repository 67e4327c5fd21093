package scheduler

import (
	"context"
	"fmt"

	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/session"
	"github.com/xtaxx12/BGR-SHRIMP/platform/config"
	"github.com/xtaxx12/BGR-SHRIMP/platform/logger"

	"github.com/hibiken/asynq"
)

const (
	followUpTextES = "👋 ¡Hola! ¿Pudiste revisar la cotización que te enviamos? Si quieres ajustar glaseo, flete o destino, escríbenos y la recalculamos al instante. 🦐"
	followUpTextEN = "👋 Hi! Did you get a chance to review the quote we sent? If you want to adjust glaze, freight or destination, just reply and we will recalculate right away. 🦐"
)

// MessageSender delivers the nudge over WhatsApp.
type MessageSender interface {
	SendMessage(ctx context.Context, recipient string, message string) error
}

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	sessions session.Repository
	sender   MessageSender
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, sessions session.Repository, sender MessageSender, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 5
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:   server,
		mux:      mux,
		sessions: sessions,
		sender:   sender,
		log:      log,
	}

	mux.HandleFunc(TaskQuoteFollowUp, w.handleQuoteFollowUp)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleQuoteFollowUp(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseQuoteFollowUpPayload(task)
	if err != nil {
		return err
	}

	if w.sender == nil {
		return nil
	}

	sess, err := w.sessions.Get(ctx, payload.UserID)
	if err != nil {
		return err
	}

	// A session touched after the quote means the conversation moved
	// on; a nudge now would be noise.
	if sess != nil && sess.UpdatedAt.After(payload.QuotedAt) {
		w.log.Debug("follow-up skipped", "user_id", payload.UserID, "reason", "user active")
		return nil
	}

	language := payload.Language
	if sess != nil && sess.Language != "" {
		language = sess.Language.String()
	}

	text := followUpTextES
	if language == "en" {
		text = followUpTextEN
	}

	if err := w.sender.SendMessage(ctx, payload.UserID, text); err != nil {
		return fmt.Errorf("failed to deliver follow-up: %w", err)
	}

	w.log.Info("follow-up delivered", "user_id", payload.UserID, "quote_id", payload.QuoteID)
	return nil
}
