package waste

import (
	"context"
	"sort"
	"sync"
	"time"

	"pantrysync/domain"
	"pantrysync/entities"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// trendMonths caps the monthly trend at the trailing six calendar months.
const trendMonths = 6

type (
	// WasteService is the waste ledger store. Rows are immutable once
	// recorded; statistics are recomputed in full on every fetch.
	WasteService interface {
		FetchWasteItems(ctx context.Context)
		FetchStats(ctx context.Context)
		AddWasteItem(ctx context.Context, req domain.AddWasteItemRequest) error
		DeleteWasteItem(ctx context.Context, id string) error

		WasteItems() []entities.WasteTracking
		Stats() *domain.WasteStats
		Loading() bool
		LoadingCount() int
		Err() string
	}

	wasteService struct {
		wasteRepository WasteRepository
		validate        *validator.Validate

		mu           sync.Mutex
		wasteItems   []entities.WasteTracking
		stats        *domain.WasteStats
		loading      bool
		loadingCount int
		err          string
	}
)

func NewWasteService(wasteRepository WasteRepository, validate *validator.Validate) WasteService {
	return &wasteService{
		wasteRepository: wasteRepository,
		validate:        validate,
	}
}

func (s *wasteService) FetchWasteItems(ctx context.Context) {
	s.beginFetch()
	defer s.endFetch()

	userID, err := s.currentUser(ctx)
	if err != nil {
		s.setErr(err)
		return
	}

	items, err := s.wasteRepository.GetWasteItems(ctx, userID)
	if err != nil {
		s.setErr(err)
		return
	}

	s.mu.Lock()
	s.wasteItems = items
	s.mu.Unlock()
}

func (s *wasteService) FetchStats(ctx context.Context) {
	s.beginFetch()
	defer s.endFetch()

	userID, err := s.currentUser(ctx)
	if err != nil {
		s.setErr(err)
		return
	}

	items, err := s.wasteRepository.GetAllWasteItems(ctx, userID)
	if err != nil {
		s.setErr(err)
		return
	}

	stats := ComputeStats(items)
	s.mu.Lock()
	s.stats = &stats
	s.mu.Unlock()
}

func (s *wasteService) AddWasteItem(ctx context.Context, req domain.AddWasteItemRequest) error {
	s.beginMutation()
	defer s.endMutation()

	if err := s.validate.Struct(req); err != nil {
		s.setErr(err)
		return err
	}

	userID, err := s.currentUser(ctx)
	if err != nil {
		s.setErr(err)
		return err
	}

	if _, err := entities.ParseDate(req.WastedDate); err != nil {
		s.setErr(domain.ErrInvalidWastedDate)
		return domain.ErrInvalidWastedDate
	}

	row := map[string]any{
		"user_id":         userID,
		"item_name":       req.ItemName,
		"category_id":     req.CategoryID,
		"quantity":        req.Quantity,
		"unit":            req.Unit,
		"reason":          req.Reason,
		"wasted_date":     req.WastedDate,
		"estimated_value": req.EstimatedValue,
	}
	if req.FoodItemID != "" {
		row["food_item_id"] = req.FoodItemID
	}

	item, err := s.wasteRepository.AddWasteItem(ctx, row)
	if err != nil {
		s.setErr(err)
		return err
	}

	s.mu.Lock()
	s.wasteItems = append([]entities.WasteTracking{*item}, s.wasteItems...)
	s.mu.Unlock()

	s.FetchStats(ctx)
	return nil
}

func (s *wasteService) DeleteWasteItem(ctx context.Context, id string) error {
	s.beginMutation()
	defer s.endMutation()

	parsed, err := uuid.Parse(id)
	if err != nil {
		s.setErr(domain.ErrParseUUID)
		return domain.ErrParseUUID
	}

	if err := s.wasteRepository.DeleteWasteItem(ctx, id); err != nil {
		s.setErr(err)
		return err
	}

	s.mu.Lock()
	kept := s.wasteItems[:0]
	for _, item := range s.wasteItems {
		if item.ID != parsed {
			kept = append(kept, item)
		}
	}
	s.wasteItems = kept
	s.mu.Unlock()

	s.FetchStats(ctx)
	return nil
}

func (s *wasteService) currentUser(ctx context.Context) (string, error) {
	userID, err := s.wasteRepository.CurrentUserID(ctx)
	if err != nil {
		return "", err
	}
	if userID == "" {
		return "", domain.ErrNotAuthenticated
	}
	return userID, nil
}

func (s *wasteService) WasteItems() []entities.WasteTracking {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]entities.WasteTracking, len(s.wasteItems))
	copy(items, s.wasteItems)
	return items
}

func (s *wasteService) Stats() *domain.WasteStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stats == nil {
		return nil
	}
	copied := *s.stats
	return &copied
}

func (s *wasteService) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *wasteService) LoadingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadingCount
}

func (s *wasteService) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *wasteService) beginFetch() {
	s.mu.Lock()
	s.loadingCount++
	s.loading = true
	s.err = ""
	s.mu.Unlock()
}

func (s *wasteService) endFetch() {
	s.mu.Lock()
	if s.loadingCount > 0 {
		s.loadingCount--
	}
	s.loading = s.loadingCount > 0
	s.mu.Unlock()
}

func (s *wasteService) beginMutation() {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()
}

func (s *wasteService) endMutation() {
	s.mu.Lock()
	s.loading = s.loadingCount > 0
	s.mu.Unlock()
}

func (s *wasteService) setErr(err error) {
	s.mu.Lock()
	s.err = err.Error()
	s.mu.Unlock()
}

// ComputeStats aggregates the full ledger: totals, counts by category and by
// reason, and a calendar-month trend capped at the most recent six months,
// oldest first. A nil estimated value counts as zero.
func ComputeStats(items []entities.WasteTracking) domain.WasteStats {
	stats := domain.WasteStats{
		TotalItems:      len(items),
		ItemsByCategory: map[string]int{},
		ItemsByReason:   map[string]int{},
		MonthlyTrend:    []domain.MonthlyWaste{},
	}

	type bucket struct {
		count int
		value float64
	}
	months := map[time.Time]*bucket{}

	for _, item := range items {
		value := 0.0
		if item.EstimatedValue != nil {
			value = *item.EstimatedValue
		}
		stats.TotalValue += value
		stats.ItemsByCategory[item.CategoryID.String()]++
		stats.ItemsByReason[item.Reason]++

		wasted := item.WastedDate.Time
		month := time.Date(wasted.Year(), wasted.Month(), 1, 0, 0, 0, 0, time.UTC)
		b, ok := months[month]
		if !ok {
			b = &bucket{}
			months[month] = b
		}
		b.count++
		b.value += value
	}

	keys := make([]time.Time, 0, len(months))
	for month := range months {
		keys = append(keys, month)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
	if len(keys) > trendMonths {
		keys = keys[len(keys)-trendMonths:]
	}

	for _, month := range keys {
		stats.MonthlyTrend = append(stats.MonthlyTrend, domain.MonthlyWaste{
			Month: month.Format("Jan 2006"),
			Count: months[month].count,
			Value: months[month].value,
		})
	}
	return stats
}
