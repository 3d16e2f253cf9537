package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"depot-records/backend/internal/engine"
	"depot-records/backend/internal/model"
)

// ── 作业卡日历 ──────────────────────────────────────
//
// 将未完成的作业卡按截止日期发布为全天 iCalendar（RFC 5545）事件，
// 检修计划员可在任意日历客户端订阅
//   - 已完成的作业卡不发布
//   - 每张卡的 UID 固定，客户端原地更新事件
//   - 逾期的卡带 OVERDUE 分类
// ─────────────────────────────────────────────────────────────

const calendarProductID = "-//Depot Records//Job Cards//EN"

// CalendarService 生成作业卡截止日期订阅
type CalendarService interface {
	JobCardFeed(ctx context.Context, filter engine.ListFilter) (string, error)
}

type calendarService struct {
	records RecordService
	domain  string
	now     func() time.Time
	logger  *zap.Logger
}

// NewCalendarService 创建订阅服务，domain 用于限定事件 UID
func NewCalendarService(records RecordService, domain string, now func() time.Time, logger *zap.Logger) CalendarService {
	if now == nil {
		now = time.Now
	}
	if domain == "" {
		domain = "depot-records"
	}
	return &calendarService{records: records, domain: domain, now: now, logger: logger}
}

func (s *calendarService) JobCardFeed(ctx context.Context, filter engine.ListFilter) (string, error) {
	cards, err := s.openJobCards(ctx, filter)
	if err != nil {
		return "", err
	}

	now := s.now().UTC()
	today := model.NewDate(now)

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetXWRCalName("Depot job cards")
	cal.SetXWRCalDesc("Due dates of open maintenance job cards")
	cal.SetRefreshInterval("PT1H")

	for _, jc := range cards {
		evt := cal.AddEvent(fmt.Sprintf("%s@%s", jc.JCNo, s.domain))
		evt.SetDtStampTime(now)
		evt.SetCreatedTime(jc.CreatedAt)
		evt.SetModifiedAt(jc.UpdatedAt)
		evt.SetAllDayStartAt(jc.DueDate.Time)
		evt.SetAllDayEndAt(jc.DueDate.AddDate(0, 0, 1))
		evt.SetSummary(jobCardSummary(jc))
		evt.SetDescription(jobCardDescription(jc))
		evt.SetPriority(icsPriority(jc.Priority))
		evt.SetStatus(icsStatus(jc.Status))
		evt.SetTimeTransparency(ics.TransparencyTransparent)
		evt.AddCategory(string(jc.Category))
		if jc.Overdue(today) {
			evt.AddCategory("OVERDUE")
		}
	}

	return cal.Serialize(), nil
}

// openJobCards 分页读取台账，跳过已完成的卡
func (s *calendarService) openJobCards(ctx context.Context, filter engine.ListFilter) ([]*model.JobCard, error) {
	filter.Offset = 0
	filter.Limit = exportPageSize
	var out []*model.JobCard
	seen := 0
	for {
		page, total, err := s.records.List(ctx, model.EntityJobCard, filter)
		if err != nil {
			return nil, err
		}
		for _, rec := range page {
			jc, ok := rec.(*model.JobCard)
			if !ok || jc.Status == model.JobCardCompleted {
				continue
			}
			out = append(out, jc)
		}
		seen += len(page)
		if len(page) == 0 || int64(seen) >= total || seen >= maxExportRows {
			return out, nil
		}
		filter.Offset = seen
	}
}

func jobCardSummary(jc *model.JobCard) string {
	return fmt.Sprintf("%s %s/%s %s (%s)", jc.JCNo, jc.TrainID, jc.CarID, jc.Category, jc.Priority)
}

func jobCardDescription(jc *model.JobCard) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Status: %s\n", jc.Status)
	if jc.Description != "" {
		b.WriteString(jc.Description)
		b.WriteString("\n")
	}
	if jc.Status == model.JobCardDelayed && jc.DelayReason != "" {
		fmt.Fprintf(&b, "Delay reason: %s\n", jc.DelayReason)
	}
	return strings.TrimRight(b.String(), "\n")
}

// icsPriority 映射到 RFC 5545 优先级，1 最高
func icsPriority(p model.Priority) int {
	switch p {
	case model.PriorityUrgent:
		return 1
	case model.PriorityHigh:
		return 3
	case model.PriorityMedium:
		return 5
	default:
		return 9
	}
}

func icsStatus(s model.JobCardStatus) ics.ObjectStatus {
	if s == model.JobCardPending {
		return ics.ObjectStatusTentative
	}
	return ics.ObjectStatusConfirmed
}

// calendarDomain 取 baseURL 的主机部分，用于限定事件 UID
func calendarDomain(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
