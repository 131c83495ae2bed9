package usecase

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"ski-portal/internal/data/entity"
	"ski-portal/internal/data/repository"
	"ski-portal/internal/dto/response"
	"ski-portal/internal/gravatar"
	"ski-portal/pkg/utils"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// activityMonths is how far back the dashboard's monthly activity goes.
const activityMonths = 12

type AnalyticsService interface {
	Dashboard(ctx context.Context) (*response.Dashboard, error)
}

type analyticsService struct {
	repo    *repository.Repository
	config  utils.AnalyticsConfig
	avatars *gravatar.Generator
	log     *zap.Logger
	now     func() time.Time
}

func NewAnalyticsService(repo *repository.Repository, config utils.AnalyticsConfig, avatars *gravatar.Generator, log *zap.Logger) AnalyticsService {
	if config.TopResorts <= 0 {
		config.TopResorts = 10
	}
	if config.TopResortMinimum <= 0 {
		config.TopResortMinimum = 1
	}
	if config.RecentReviews <= 0 {
		config.RecentReviews = 10
	}

	return &analyticsService{
		repo:    repo,
		config:  config,
		avatars: avatars,
		log:     log.With(zap.String("service", "analytics")),
		now:     time.Now,
	}
}

func (s *analyticsService) Dashboard(ctx context.Context) (*response.Dashboard, error) {
	var (
		totalUsers   int64
		totalResorts int64
		facts        []entity.ReviewFact
		recent       []*entity.ReviewDetail
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		totalUsers, err = s.repo.User.CountAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		totalResorts, err = s.repo.Resort.Count(gctx, entity.ResortFilter{})
		return err
	})
	g.Go(func() (err error) {
		facts, err = s.repo.Review.FindAllFacts(gctx)
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.repo.Review.FindRecent(gctx, s.config.RecentReviews)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error("Failed to load dashboard data", zap.Error(err))
		return nil, fmt.Errorf("load dashboard: %w", err)
	}

	resorts, err := s.repo.Resort.FindAll(ctx, entity.ResortFilter{}, int(max(totalResorts, 1)), 0)
	if err != nil {
		s.log.Error("Failed to load resorts for dashboard", zap.Error(err))
		return nil, fmt.Errorf("load resorts: %w", err)
	}

	rated := lo.Filter(facts, func(f entity.ReviewFact, _ int) bool { return f.Rating != nil })

	dashboard := &response.Dashboard{
		TotalUsers:    totalUsers,
		TotalResorts:  totalResorts,
		TotalReviews:  int64(len(facts)),
		AverageRating: averageRating(rated),
		ByState:       s.byState(resorts, facts),
		TopResorts:    s.topResorts(facts),
		Distribution:  distribution(rated),
		Activity:      s.activity(facts),
		RecentReviews: lo.Map(recent, func(d *entity.ReviewDetail, _ int) response.ReviewResponse {
			return response.ReviewDetailToResponse(d, s.avatars)
		}),
	}

	return dashboard, nil
}

func (s *analyticsService) byState(resorts []*entity.Resort, facts []entity.ReviewFact) []response.StateSummary {
	resortsByState := lo.GroupBy(resorts, func(r *entity.Resort) string { return r.State })
	factsByState := lo.GroupBy(facts, func(f entity.ReviewFact) string { return f.ResortState })

	states := lo.Uniq(append(lo.Keys(resortsByState), lo.Keys(factsByState)...))

	summaries := lo.Map(states, func(state string, _ int) response.StateSummary {
		stateFacts := factsByState[state]
		return response.StateSummary{
			State:         state,
			ResortCount:   len(resortsByState[state]),
			ReviewCount:   len(stateFacts),
			AverageRating: averageRating(stateFacts),
		}
	})

	slices.SortFunc(summaries, func(a, b response.StateSummary) int {
		return cmp.Or(
			cmp.Compare(b.ReviewCount, a.ReviewCount),
			cmp.Compare(a.State, b.State),
		)
	})
	return summaries
}

func (s *analyticsService) topResorts(facts []entity.ReviewFact) []response.ResortSummary {
	byResort := lo.GroupBy(facts, func(f entity.ReviewFact) string { return f.ResortID.String() })

	type candidate struct {
		summary response.ResortSummary
		rated   int
	}

	candidates := lo.FilterMap(lo.Entries(byResort), func(e lo.Entry[string, []entity.ReviewFact], _ int) (candidate, bool) {
		rated := lo.CountBy(e.Value, func(f entity.ReviewFact) bool { return f.Rating != nil })
		if rated < s.config.TopResortMinimum {
			return candidate{}, false
		}
		first := e.Value[0]
		return candidate{
			summary: response.ResortSummary{
				ResortID:      e.Key,
				Name:          first.ResortName,
				State:         first.ResortState,
				ReviewCount:   len(e.Value),
				AverageRating: averageRating(e.Value),
			},
			rated: rated,
		}, true
	})

	slices.SortFunc(candidates, func(a, b candidate) int {
		return cmp.Or(
			cmp.Compare(b.summary.AverageRating, a.summary.AverageRating),
			cmp.Compare(b.rated, a.rated),
			cmp.Compare(a.summary.Name, b.summary.Name),
		)
	})

	top := lo.Map(candidates, func(c candidate, _ int) response.ResortSummary { return c.summary })
	if len(top) > s.config.TopResorts {
		top = top[:s.config.TopResorts]
	}
	return top
}

// activity buckets reviews by calendar month over the trailing window,
// oldest first, including months without reviews.
func (s *analyticsService) activity(facts []entity.ReviewFact) []response.MonthlyActivity {
	now := s.now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(activityMonths - 1), 0)

	counts := lo.CountValuesBy(
		lo.Filter(facts, func(f entity.ReviewFact, _ int) bool { return !f.CreatedAt.Before(start) }),
		func(f entity.ReviewFact) string { return f.CreatedAt.In(now.Location()).Format("2006-01") },
	)

	months := make([]response.MonthlyActivity, 0, activityMonths)
	for i := range activityMonths {
		month := start.AddDate(0, i, 0).Format("2006-01")
		months = append(months, response.MonthlyActivity{Month: month, ReviewCount: counts[month]})
	}
	return months
}

// averageRating is the mean over facts that carry a rating, or 0.
func averageRating(facts []entity.ReviewFact) float64 {
	ratings := lo.FilterMap(facts, func(f entity.ReviewFact, _ int) (int, bool) {
		if f.Rating == nil {
			return 0, false
		}
		return *f.Rating, true
	})
	if len(ratings) == 0 {
		return 0
	}
	return float64(lo.Sum(ratings)) / float64(len(ratings))
}

func distribution(rated []entity.ReviewFact) []response.RatingBucket {
	var stats entity.RatingStats
	for _, f := range rated {
		if *f.Rating >= 1 && *f.Rating <= 5 {
			stats.Distribution[*f.Rating]++
			stats.RatingCount++
		}
	}
	return response.StatsToResponse(&stats).Distribution
}
