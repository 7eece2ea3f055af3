package scheduler

import (
	"fmt"
	"time"

	"github.com/kadlec/mlproc/internal/domain"
	"github.com/robfig/cron/v3"
)

// cronParser принимает классический пятипольный синтаксис
// (минута час день-месяца месяц день-недели), без секунд
// и без дескрипторов вида @daily.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// CalculateNextDue вычисляет следующий момент срабатывания schedule
// после from. Cron-выражения оцениваются в timezone schedule
// (при неизвестной зоне — UTC); результат всегда в UTC, в таком
// виде next_due_at хранится в БД.
func CalculateNextDue(sched *domain.Schedule, from time.Time) (time.Time, error) {
	loc, err := time.LoadLocation(sched.Timezone)
	if err != nil {
		loc = time.UTC
	}

	fromInTz := from.In(loc)

	if sched.IsCron() {
		return calculateNextCron(sched.CronExpr, fromInTz)
	}

	if sched.IsInterval() {
		return calculateNextInterval(sched.IntervalSec, fromInTz), nil
	}

	return time.Time{}, fmt.Errorf("schedule has neither cron_expr nor interval_sec")
}

func calculateNextCron(cronExpr string, from time.Time) (time.Time, error) {
	schedule, err := cronParser.Parse(cronExpr)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse cron expression %q: %w", cronExpr, err)
	}
	return schedule.Next(from).UTC(), nil
}

func calculateNextInterval(intervalSec int, from time.Time) time.Time {
	return from.Add(time.Duration(intervalSec) * time.Second).UTC()
}

// ValidateCronExpr проверяет выражение без вычисления времени.
// Вызывается API при создании и изменении schedule, чтобы ошибка
// синтаксиса вернулась клиенту, а не всплыла на первом тике.
func ValidateCronExpr(cronExpr string) error {
	if _, err := cronParser.Parse(cronExpr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", cronExpr, err)
	}
	return nil
}

// CalculateInitialNextDue — первое срабатывание нового schedule,
// отсчитанное от текущего момента.
func CalculateInitialNextDue(sched *domain.Schedule) (time.Time, error) {
	return CalculateNextDue(sched, time.Now())
}
