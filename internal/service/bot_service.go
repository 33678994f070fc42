package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"botdash/internal/domain"
	"botdash/internal/filter"
)

// BotService manages bots across the three tiers
type BotService struct {
	repo domain.BotRepository
	log  *logrus.Entry
	now  func() time.Time
}

// NewBotService creates a new BotService
func NewBotService(repo domain.BotRepository, log *logrus.Entry) *BotService {
	return &BotService{
		repo: repo,
		log:  log.WithField("component", "bots"),
		now:  time.Now,
	}
}

// BotQuery holds list filters; empty fields are ignored
type BotQuery struct {
	Tier    string
	Status  string
	Risk    string
	Search  string
	Sort    string
	Dir     string
	Page    int
	PerPage int
}

// BotInput is the editable part of a bot
type BotInput struct {
	Tier        string             `json:"tier"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Status      string             `json:"status"`
	RiskLevel   string             `json:"risk_level"`
	Metrics     *domain.BotMetrics `json:"metrics,omitempty"`
}

var botSortKeys = filter.Keys[*domain.Bot]{
	"name":     filter.ByString(func(b *domain.Bot) string { return b.Name }),
	"status":   filter.ByString(func(b *domain.Bot) string { return b.Status }),
	"risk":     filter.ByNumber(func(b *domain.Bot) int { return riskRank(b.RiskLevel) }),
	"win_rate": filter.ByNumber(func(b *domain.Bot) float64 { return b.Metrics.WinRate }),
	"pnl":      filter.ByNumber(func(b *domain.Bot) float64 { return b.Metrics.TotalPnL }),
	"trades":   filter.ByNumber(func(b *domain.Bot) int { return b.Metrics.TotalTrades }),
	"created":  filter.ByTime(func(b *domain.Bot) time.Time { return b.CreatedAt }),
}

func riskRank(r string) int {
	switch r {
	case domain.RiskLow:
		return 0
	case domain.RiskMedium:
		return 1
	case domain.RiskHigh:
		return 2
	}
	return 3
}

// List returns the bots visible to user that match q
func (s *BotService) List(ctx context.Context, user *domain.User, q BotQuery) ([]*domain.Bot, filter.PageInfo, error) {
	bots, err := s.repo.GetAll(ctx, q.Tier)
	if err != nil {
		return nil, filter.PageInfo{}, fmt.Errorf("failed to list bots: %w", err)
	}

	bots = filter.Apply(bots,
		filter.Where(func(b *domain.Bot) bool { return b.CanView(user) }),
		filter.Equals(q.Tier, func(b *domain.Bot) string { return b.Tier }),
		filter.OneOf(filter.SplitList(q.Status), func(b *domain.Bot) string { return b.Status }),
		filter.Equals(q.Risk, func(b *domain.Bot) string { return b.RiskLevel }),
		filter.Search(q.Search, func(b *domain.Bot) []string { return []string{b.Name, b.Description} }),
	)
	bots = filter.Sort(bots, q.Sort, filter.ParseDirection(q.Dir), botSortKeys)

	page, info := filter.Paginate(bots, q.Page, q.PerPage)
	return page, info, nil
}

// Get returns a bot the user may view. Invisible bots read as not found.
func (s *BotService) Get(ctx context.Context, user *domain.User, id uuid.UUID) (*domain.Bot, error) {
	bot, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !bot.CanView(user) {
		return nil, domain.ErrNotFound
	}
	return bot, nil
}

// Create adds a bot. Only admins may create premium or prop bots.
func (s *BotService) Create(ctx context.Context, user *domain.User, in BotInput) (*domain.Bot, error) {
	if in.Tier == "" {
		in.Tier = domain.TierUser
	}
	if !domain.ValidTier(in.Tier) {
		return nil, fmt.Errorf("%w: unknown tier %q", domain.ErrInvalid, in.Tier)
	}
	if in.Tier != domain.TierUser && !user.IsAdmin() {
		return nil, fmt.Errorf("%w: %s bots are managed by admins", domain.ErrForbidden, in.Tier)
	}
	if in.Status == "" {
		in.Status = domain.BotStatusInactive
	}
	if in.RiskLevel == "" {
		in.RiskLevel = domain.RiskMedium
	}
	if err := validateBotInput(in); err != nil {
		return nil, err
	}

	now := s.now()
	bot := &domain.Bot{
		ID:          uuid.New(),
		Tier:        in.Tier,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Status:      in.Status,
		RiskLevel:   in.RiskLevel,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.Tier == domain.TierUser {
		bot.OwnerID = user.ID.String()
	}
	if in.Metrics != nil {
		bot.Metrics = *in.Metrics
	}

	if err := s.repo.Create(ctx, bot); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"bot_id": bot.ID, "tier": bot.Tier, "user_id": user.ID}).Info("Bot created")
	return bot, nil
}

// Update changes name, description, status, risk and metrics. Tier and owner
// are fixed at creation.
func (s *BotService) Update(ctx context.Context, user *domain.User, id uuid.UUID, in BotInput) (*domain.Bot, error) {
	bot, err := s.manageable(ctx, user, id)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		bot.Name = strings.TrimSpace(in.Name)
	}
	if in.Description != "" {
		bot.Description = in.Description
	}
	if in.Status != "" {
		bot.Status = in.Status
	}
	if in.RiskLevel != "" {
		bot.RiskLevel = in.RiskLevel
	}
	if in.Metrics != nil {
		bot.Metrics = *in.Metrics
	}
	if err := validateBotInput(BotInput{Name: bot.Name, Status: bot.Status, RiskLevel: bot.RiskLevel, Metrics: &bot.Metrics}); err != nil {
		return nil, err
	}

	bot.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, bot); err != nil {
		return nil, err
	}
	return bot, nil
}

// SetStatus sets any status from the enum; there are no transition rules
func (s *BotService) SetStatus(ctx context.Context, user *domain.User, id uuid.UUID, status string) (*domain.Bot, error) {
	if !domain.ValidBotStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalid, status)
	}
	bot, err := s.manageable(ctx, user, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"bot_id": id, "from": bot.Status, "to": status}).Info("Bot status changed")
	bot.Status = status
	bot.UpdatedAt = s.now()
	return bot, nil
}

// Delete removes a bot the user may manage
func (s *BotService) Delete(ctx context.Context, user *domain.User, id uuid.UUID) error {
	if _, err := s.manageable(ctx, user, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *BotService) manageable(ctx context.Context, user *domain.User, id uuid.UUID) (*domain.Bot, error) {
	bot, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if !bot.CanManage(user) {
		return nil, fmt.Errorf("%w: %s bots are managed by admins", domain.ErrForbidden, bot.Tier)
	}
	return bot, nil
}

func validateBotInput(in BotInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalid)
	}
	if !domain.ValidBotStatus(in.Status) {
		return fmt.Errorf("%w: unknown status %q", domain.ErrInvalid, in.Status)
	}
	if !domain.ValidRiskLevel(in.RiskLevel) {
		return fmt.Errorf("%w: unknown risk level %q", domain.ErrInvalid, in.RiskLevel)
	}
	if in.Metrics != nil && (in.Metrics.WinRate < 0 || in.Metrics.WinRate > 100) {
		return fmt.Errorf("%w: win rate must be between 0 and 100", domain.ErrInvalid)
	}
	return nil
}
