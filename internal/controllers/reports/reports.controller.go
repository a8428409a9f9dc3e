package reportController

import (
	"context"
	"sort"
	"time"

	"labstock/config"
	"labstock/internal/database"
	. "labstock/internal/models"
	"labstock/internal/repositories"
	"labstock/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
)

const (
	StatusCacheKey   = "reports:status"
	CategoryCacheKey = "reports:category"
	reportCacheTTL   = 5 * time.Minute
)

type ReportController struct {
	equipmentRepo repositories.EquipmentRepository
	ledgerRepo    repositories.LedgerRepository
	userRepo      repositories.UserRepository
	db            database.DB
	Config        config.Config
	log           logger.Logger
}

type CountRow struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type OverdueRow struct {
	SKU          string    `json:"sku"`
	Name         string    `json:"name"`
	CheckedOutBy string    `json:"checkedOutBy"`
	DueDate      time.Time `json:"dueDate"`
	DaysOverdue  int       `json:"daysOverdue"`
}

type UserActivityRow struct {
	Username        string   `json:"username"`
	Name            string   `json:"name"`
	Department      string   `json:"department"`
	CheckoutCount   int      `json:"checkoutCount"`
	AvgDurationDays *float64 `json:"avgDurationDays"`
}

type ReportControllerInterface interface {
	StatusCounts(ctx context.Context) ([]CountRow, error)
	CategoryCounts(ctx context.Context) ([]CountRow, error)
	Overdue(ctx context.Context, today time.Time) ([]OverdueRow, error)
	UserActivity(ctx context.Context, start, end time.Time) ([]UserActivityRow, error)
}

func New(
	repos repositories.Repository,
	config config.Config,
	db database.DB,
) ReportControllerInterface {
	return &ReportController{
		equipmentRepo: repos.Equipment,
		ledgerRepo:    repos.Ledger,
		userRepo:      repos.User,
		db:            db,
		Config:        config,
		log:           logger.New("reportController"),
	}
}

func (c *ReportController) StatusCounts(ctx context.Context) ([]CountRow, error) {
	return c.cachedCounts(ctx, StatusCacheKey, func(e *Equipment) string {
		return string(e.Status)
	})
}

func (c *ReportController) CategoryCounts(ctx context.Context) ([]CountRow, error) {
	return c.cachedCounts(ctx, CategoryCacheKey, func(e *Equipment) string {
		if e.Category == "" {
			return "Uncategorized"
		}
		return e.Category
	})
}

func (c *ReportController) cachedCounts(
	ctx context.Context,
	cacheKey string,
	label func(*Equipment) string,
) ([]CountRow, error) {
	log := c.log.Function("cachedCounts")

	var rows []CountRow
	found, err := database.NewCacheBuilder(c.db.Cache.Reports, cacheKey).
		WithContext(ctx).
		Get(&rows)
	if err != nil {
		log.Er("failed to read report cache", err, "key", cacheKey)
	}
	if found {
		return rows, nil
	}

	equipment, err := c.equipmentRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, item := range equipment {
		counts[label(item)]++
	}

	rows = make([]CountRow, 0, len(counts))
	for name, count := range counts {
		rows = append(rows, CountRow{Label: name, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Label < rows[j].Label })

	err = database.NewCacheBuilder(c.db.Cache.Reports, cacheKey).
		WithContext(ctx).
		WithStruct(rows).
		WithTTL(reportCacheTTL).
		Set()
	if err != nil {
		log.Er("failed to write report cache", err, "key", cacheKey)
	}

	return rows, nil
}

// Overdue lists checked-out equipment whose due date falls strictly before
// today. Days overdue counts whole calendar days, so an item due yesterday
// is one day overdue regardless of the time of day.
func (c *ReportController) Overdue(ctx context.Context, today time.Time) ([]OverdueRow, error) {
	log := c.log.Function("Overdue")

	today = utils.DateOnly(today)

	overdue, err := c.equipmentRepo.ListOverdue(ctx, today)
	if err != nil {
		return nil, log.Err("failed to list overdue equipment", err)
	}

	rows := make([]OverdueRow, 0, len(overdue))
	for _, item := range overdue {
		if item.DueDate == nil {
			continue
		}

		holder := ""
		if item.CheckedOutBy != nil {
			holder = *item.CheckedOutBy
		}

		rows = append(rows, OverdueRow{
			SKU:          item.SKU,
			Name:         item.Name,
			CheckedOutBy: holder,
			DueDate:      *item.DueDate,
			DaysOverdue:  utils.DaysBetween(*item.DueDate, today),
		})
	}

	return rows, nil
}

// UserActivity aggregates the ledger over a date range: checkout counts per
// user over all records in range, and average checkout duration in whole
// days over the closed ones.
func (c *ReportController) UserActivity(
	ctx context.Context,
	start, end time.Time,
) ([]UserActivityRow, error) {
	log := c.log.Function("UserActivity")

	records, err := c.ledgerRepo.ListInRange(ctx, start, end)
	if err != nil {
		return nil, log.Err("failed to list checkout records", err)
	}

	counts := make(map[string]int)
	durationTotals := make(map[string]int)
	closedCounts := make(map[string]int)

	for _, record := range records {
		counts[record.User]++

		if record.ReturnDate != nil {
			durationTotals[record.User] += utils.DaysBetween(record.CheckoutDate, *record.ReturnDate)
			closedCounts[record.User]++
		}
	}

	users, err := c.userRepo.List(ctx)
	if err != nil {
		return nil, log.Err("failed to list users", err)
	}

	profileByUsername := make(map[string]*User, len(users))
	for _, user := range users {
		profileByUsername[user.Username] = user
	}

	rows := make([]UserActivityRow, 0, len(counts))
	for username, count := range counts {
		row := UserActivityRow{
			Username:      username,
			CheckoutCount: count,
		}

		if user, ok := profileByUsername[username]; ok {
			row.Name = user.Name
			row.Department = user.Department
		}

		if closed := closedCounts[username]; closed > 0 {
			avg := float64(durationTotals[username]) / float64(closed)
			row.AvgDurationDays = &avg
		}

		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Username < rows[j].Username })

	return rows, nil
}
