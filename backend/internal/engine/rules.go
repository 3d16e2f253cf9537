package engine

import (
	"time"

	"depot-records/backend/internal/model"
)

// GuardFailed 错误中报告的不变量名称
const (
	InvariantClosure       = "closure"
	InvariantRepairDetails = "repair-details"
	InvariantNCRDate       = "ncr-date"
	InvariantReopenReason  = "reopen-reason"
)

// Rule 跨字段校验规则
// 只接收已通过类型与格式校验的字段，读取到的值类型均正确
type Rule struct {
	Name  string
	Check func(doc Document, today model.Date, errs FieldErrors)
}

// Today 将 now 截取为 UTC 处理日期
func Today(now time.Time) model.Date {
	return model.NewDate(now)
}

var ruleNCRDateNotFuture = Rule{
	Name: InvariantNCRDate,
	Check: func(doc Document, today model.Date, errs FieldErrors) {
		d, ok := doc.Date("dateOfNcr")
		if ok && d.After(today.Time) {
			errs.Add("dateOfNcr", "must not be later than the processing date")
		}
	},
}

// 已关闭的 NCR 必须有关闭文件，且关闭日期不早于 NCR 日期
var ruleClosure = Rule{
	Name: InvariantClosure,
	Check: func(doc Document, _ model.Date, errs FieldErrors) {
		if s, _ := doc.String("status"); s != string(model.NCRClosed) {
			return
		}
		if !doc.Bool("ncrClosedByDocument") {
			errs.Add("ncrClosedByDocument", "must be true when status is Closed")
		}
		closure, ok := doc.Date("dateOfNcrClosure")
		if !ok {
			errs.Add("dateOfNcrClosure", "is required when status is Closed")
			return
		}
		if opened, ok := doc.Date("dateOfNcr"); ok && closure.Before(opened.Time) {
			errs.Add("dateOfNcrClosure", "must not be earlier than dateOfNcr")
		}
	},
}

var ruleRepairDetails = Rule{
	Name: InvariantRepairDetails,
	Check: func(doc Document, _ model.Date, errs FieldErrors) {
		if s, _ := doc.String("status"); s != string(model.NCRClosed) {
			return
		}
		if doc.Present("itemRepairedReplaced") && !doc.Present("itemRepairedReplacedDetails") {
			errs.Add("itemRepairedReplacedDetails", "is required when the item was repaired or replaced")
		}
	},
}

// runRules 按顺序执行规则，返回第一条报告违规的规则名
func runRules(rules []Rule, doc Document, today model.Date, errs FieldErrors) string {
	failed := ""
	for _, r := range rules {
		count := countMessages(errs)
		r.Check(doc, today, errs)
		if failed == "" && countMessages(errs) != count {
			failed = r.Name
		}
	}
	return failed
}

func countMessages(errs FieldErrors) int {
	n := 0
	for _, msgs := range errs {
		n += len(msgs)
	}
	return n
}
