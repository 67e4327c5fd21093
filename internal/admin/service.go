// Package admin exposes the operator surface: session inspection and
// reset, catalog management and quote history. The router mounts every
// route here behind JWT auth with the admin role.
package admin

import (
	"context"
	"strings"

	"github.com/xtaxx12/BGR-SHRIMP/internal/catalog"
	"github.com/xtaxx12/BGR-SHRIMP/internal/history"
	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/domain"
	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/session"
	"github.com/xtaxx12/BGR-SHRIMP/platform/apperr"
	"github.com/xtaxx12/BGR-SHRIMP/platform/config"
	"github.com/xtaxx12/BGR-SHRIMP/platform/logger"

	"github.com/google/uuid"
)

// SessionClearer resets a user's conversation. The quoting engine
// implements it and takes the user lock while doing so.
type SessionClearer interface {
	ClearSession(ctx context.Context, userID string) error
}

// HistoryLister reads previously delivered quotes.
type HistoryLister interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]history.Entry, error)
}

// CatalogReloader re-reads the price sheet file.
type CatalogReloader interface {
	Reload() error
}

// CatalogWriter persists operator price and freight edits. The Postgres
// catalog source implements it; running without a database leaves it
// nil and the write endpoints answer 503.
type CatalogWriter interface {
	UpsertPrice(ctx context.Context, record catalog.PriceRecord) error
	DeletePrice(ctx context.Context, product domain.Product, size domain.Size) error
	UpsertFreightRate(ctx context.Context, rate catalog.FreightRate) error
	ListFreightRates(ctx context.Context) ([]catalog.FreightRate, error)
}

// SessionView is the operator read of a conversation: the raw session
// plus what the flow is still waiting for.
type SessionView struct {
	*domain.Session
	// PendingMissing names the unanswered fields of the parked query,
	// in asking order.
	PendingMissing []string `json:"pendingMissing,omitempty"`
}

type Service struct {
	sessions session.Repository
	clearer  SessionClearer
	hist     HistoryLister
	lister   catalog.Lister
	writer   CatalogWriter
	reloader CatalogReloader
	pricing  config.PricingConfig
	log      *logger.Logger
}

func NewService(sessions session.Repository, clearer SessionClearer, hist HistoryLister, lister catalog.Lister, writer CatalogWriter, reloader CatalogReloader, pricing config.PricingConfig, log *logger.Logger) *Service {
	return &Service{
		sessions: sessions,
		clearer:  clearer,
		hist:     hist,
		lister:   lister,
		writer:   writer,
		reloader: reloader,
		pricing:  pricing,
		log:      log,
	}
}

// GetSession returns the live conversation state for a user.
func (s *Service) GetSession(ctx context.Context, userID string) (*SessionView, error) {
	sess, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("failed to load session", err).WithOp("admin.GetSession")
	}
	if sess == nil {
		return nil, apperr.NotFound("no live session for user")
	}

	view := &SessionView{Session: sess}
	if sess.Pending != nil && sess.Pending.Single != nil {
		view.PendingMissing = sess.Pending.Single.MissingFields()
	}
	return view, nil
}

// ClearSession drops the conversation state. Clearing a user without a
// session is a no-op, so the operation is idempotent.
func (s *Service) ClearSession(ctx context.Context, userID string, actor uuid.UUID) error {
	if err := s.clearer.ClearSession(ctx, userID); err != nil {
		return apperr.Internal("failed to clear session", err).WithOp("admin.ClearSession")
	}

	s.log.Info("session cleared by admin", "user_id", userID, "actor", actor)
	return nil
}

// ListHistory returns the most recent delivered quotes for a user,
// newest first.
func (s *Service) ListHistory(ctx context.Context, userID string, limit int) ([]history.Entry, error) {
	if s.hist == nil {
		return nil, apperr.Unavailable("quote history requires a database", nil)
	}

	entries, err := s.hist.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperr.Internal("failed to list quote history", err).WithOp("admin.ListHistory")
	}
	return entries, nil
}

// ListProducts returns every price row the catalog currently serves.
func (s *Service) ListProducts(ctx context.Context) ([]catalog.PriceRecord, error) {
	records, err := s.lister.ListPrices(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list catalog", err).WithOp("admin.ListProducts")
	}
	return records, nil
}

// UpsertPrice writes one price row to the database-backed catalog. An
// omitted fixed cost falls back to the configured per-kilo default; an
// omitted availability flag stores the row as sellable.
func (s *Service) UpsertPrice(ctx context.Context, req PriceUpsertRequest, actor uuid.UUID) (catalog.PriceRecord, error) {
	if s.writer == nil {
		return catalog.PriceRecord{}, apperr.Unavailable("price management requires a database", nil)
	}

	product, ok := domain.ParseProduct(req.Product)
	if !ok {
		return catalog.PriceRecord{}, apperr.UnknownProduct(req.Product)
	}
	size, ok := domain.NormalizeSize(req.Size)
	if !ok {
		return catalog.PriceRecord{}, apperr.Newf(apperr.KindValidation, "unreadable size %q", req.Size)
	}

	record := catalog.PriceRecord{
		Product:   product,
		Size:      size,
		BasePrice: req.BasePrice,
		FixedCost: s.pricing.GetFixedCost(),
		Available: true,
		Origin:    "postgres",
	}
	if req.FixedCost != nil {
		record.FixedCost = *req.FixedCost
	}
	if req.Available != nil {
		record.Available = *req.Available
	}

	if err := s.writer.UpsertPrice(ctx, record); err != nil {
		return catalog.PriceRecord{}, apperr.Internal("failed to store price", err).WithOp("admin.UpsertPrice")
	}

	s.log.Info("price stored by admin",
		"product", string(product), "size", string(size),
		"base_price", record.BasePrice, "actor", actor)
	return record, nil
}

// DeletePrice removes one price row from the database-backed catalog.
// The sheet and built-in fallbacks are untouched; deleting a row the
// database never held is a not-found.
func (s *Service) DeletePrice(ctx context.Context, req PriceDeleteRequest, actor uuid.UUID) error {
	if s.writer == nil {
		return apperr.Unavailable("price management requires a database", nil)
	}

	product, ok := domain.ParseProduct(req.Product)
	if !ok {
		return apperr.UnknownProduct(req.Product)
	}
	size, ok := domain.NormalizeSize(req.Size)
	if !ok {
		return apperr.Newf(apperr.KindValidation, "unreadable size %q", req.Size)
	}

	if err := s.writer.DeletePrice(ctx, product, size); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return err
		}
		return apperr.Internal("failed to delete price", err).WithOp("admin.DeletePrice")
	}

	s.log.Info("price deleted by admin",
		"product", string(product), "size", string(size), "actor", actor)
	return nil
}

// UpsertFreight writes one destination rate to the database-backed
// catalog. The destination keeps the operator's spelling; lookups fold
// case on their side.
func (s *Service) UpsertFreight(ctx context.Context, req FreightUpsertRequest, actor uuid.UUID) (catalog.FreightRate, error) {
	if s.writer == nil {
		return catalog.FreightRate{}, apperr.Unavailable("freight management requires a database", nil)
	}

	rate := catalog.FreightRate{
		Destination: strings.TrimSpace(req.Destination),
		Rate:        req.Rate,
		UsesPounds:  req.UsesPounds,
	}
	if err := s.writer.UpsertFreightRate(ctx, rate); err != nil {
		return catalog.FreightRate{}, apperr.Internal("failed to store freight rate", err).WithOp("admin.UpsertFreight")
	}

	s.log.Info("freight rate stored by admin",
		"destination", rate.Destination, "rate", rate.Rate, "actor", actor)
	return rate, nil
}

// ListFreights returns every stored destination rate.
func (s *Service) ListFreights(ctx context.Context) ([]catalog.FreightRate, error) {
	if s.writer == nil {
		return nil, apperr.Unavailable("freight management requires a database", nil)
	}

	rates, err := s.writer.ListFreightRates(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list freight rates", err).WithOp("admin.ListFreights")
	}
	return rates, nil
}

// ReloadCatalog re-reads the price sheet from disk. A sheet that fails
// validation is rejected and the live prices stay as they were; the
// rejection reason travels to the caller so the row can be fixed.
func (s *Service) ReloadCatalog(ctx context.Context, actor uuid.UUID) error {
	if s.reloader == nil {
		return apperr.Unavailable("no price sheet configured", nil)
	}

	if err := s.reloader.Reload(); err != nil {
		return apperr.Wrap(apperr.KindValidation, "price sheet rejected", err).
			WithOp("admin.ReloadCatalog").
			WithDetails(map[string]any{"reason": err.Error()})
	}

	s.log.Info("price sheet reloaded", "actor", actor)
	return nil
}
