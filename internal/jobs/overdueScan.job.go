package jobs

import (
	"context"
	"time"

	"labstock/internal/events"
	"labstock/internal/repositories"
	"labstock/internal/services"
	"labstock/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
)

// OverdueScanJob sweeps the equipment store once a day and publishes an
// overdue event for every checked-out item past its due date.
type OverdueScanJob struct {
	equipmentRepo repositories.EquipmentRepository
	eventBus      *events.EventBus
	log           logger.Logger
}

func NewOverdueScanJob(
	repos repositories.Repository,
	eventBus *events.EventBus,
) *OverdueScanJob {
	return &OverdueScanJob{
		equipmentRepo: repos.Equipment,
		eventBus:      eventBus,
		log:           logger.New("overdueScanJob"),
	}
}

func (j *OverdueScanJob) Name() string {
	return "overdue-scan"
}

func (j *OverdueScanJob) Schedule() services.Schedule {
	return services.Daily
}

func (j *OverdueScanJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	today := utils.DateOnly(time.Now())

	overdue, err := j.equipmentRepo.ListOverdue(ctx, today)
	if err != nil {
		return log.Err("overdue scan failed", err)
	}

	if len(overdue) == 0 {
		log.Info("overdue scan complete, nothing overdue")
		return nil
	}

	log.Info("overdue scan complete", "overdueCount", len(overdue))

	if j.eventBus == nil {
		return nil
	}

	for _, item := range overdue {
		holder := ""
		if item.CheckedOutBy != nil {
			holder = *item.CheckedOutBy
		}

		daysOverdue := 0
		if item.DueDate != nil {
			daysOverdue = utils.DaysBetween(*item.DueDate, today)
		}

		err := j.eventBus.Publish(events.EQUIPMENT_CHANNEL, events.Event{
			Type:     events.OVERDUE,
			SKU:      item.SKU,
			Username: holder,
			Data: map[string]any{
				"name":        item.Name,
				"dueDate":     item.DueDate,
				"daysOverdue": daysOverdue,
			},
		})
		if err != nil {
			log.Er("failed to publish overdue event", err, "sku", item.SKU)
		}
	}

	return nil
}
