package engine

import (
	"fmt"
	"strings"
	"time"

	"depot-records/backend/internal/model"
)

// ReopenPolicy NCR Investigation -> Open 的处理策略
type ReopenPolicy string

const (
	// ReopenFlagged 请求标记为重开且附带原因时允许
	ReopenFlagged ReopenPolicy = "flagged"
	// ReopenDeny 始终不允许
	ReopenDeny ReopenPolicy = "deny"
)

func (p ReopenPolicy) Valid() bool {
	return p == ReopenFlagged || p == ReopenDeny
}

// TransitionRequest 调用方请求的状态变更
type TransitionRequest struct {
	To     string
	Reopen bool
	Reason string

	// ExpectedUpdatedAt 非空时与存储中的记录比对
	ExpectedUpdatedAt *time.Time
}

// Machine 一种实体的状态图
type Machine struct {
	Entity      model.EntityType
	StatusField string
	Initial     string

	// Transitions 每个状态可流转到的下一状态
	Transitions map[string][]string

	// Reopen 仅作为标记重开时有效的边
	Reopen map[string]string

	// Guards 进入某状态前必须满足的规则集
	Guards map[string][]Rule
}

// Terminal 状态是否没有任何出边
func (m *Machine) Terminal(status string) bool {
	_, reopen := m.Reopen[status]
	return len(m.Transitions[status]) == 0 && !reopen
}

// Known 是否为状态机中的状态
func (m *Machine) Known(status string) bool {
	if status == m.Initial {
		return true
	}
	if _, ok := m.Transitions[status]; ok {
		return true
	}
	for _, next := range m.Transitions {
		if contains(next, status) {
			return true
		}
	}
	return false
}

// Reachable 是否可经普通边从初始状态到达
func (m *Machine) Reachable(status string) bool {
	seen := map[string]bool{m.Initial: true}
	queue := []string{m.Initial}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == status {
			return true
		}
		for _, next := range m.Transitions[cur] {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

// Check 判断处于 from 状态的 doc 能否流转到 req.To
// 先检查边，再检查目标状态的守卫
func (m *Machine) Check(from string, req TransitionRequest, doc Document, now time.Time, policy ReopenPolicy) error {
	to := req.To
	if !m.Known(to) {
		return invalidTransition(m.Entity, from, to)
	}

	if target, ok := m.Reopen[from]; ok && target == to {
		if policy == ReopenDeny || !req.Reopen {
			return invalidTransition(m.Entity, from, to)
		}
		if strings.TrimSpace(req.Reason) == "" {
			return guardFailed(m.Entity, from, to, InvariantReopenReason,
				FieldErrors{"reason": {"is required to reopen a record"}})
		}
		return nil
	}

	if !contains(m.Transitions[from], to) {
		return invalidTransition(m.Entity, from, to)
	}

	return m.checkGuard(from, to, doc, now)
}

func (m *Machine) checkGuard(from, to string, doc Document, now time.Time) error {
	rules := m.Guards[to]
	if len(rules) == 0 {
		return nil
	}
	candidate := doc.Merge(Document{m.StatusField: to})
	errs := FieldErrors{}
	if failed := runRules(rules, candidate, Today(now), errs); failed != "" {
		return guardFailed(m.Entity, from, to, failed, errs)
	}
	return nil
}

// ── 状态图 ──

var jobCardMachine = &Machine{
	Entity:      model.EntityJobCard,
	StatusField: "status",
	Initial:     string(model.JobCardPending),
	Transitions: map[string][]string{
		string(model.JobCardPending):    {string(model.JobCardInProgress), string(model.JobCardDelayed)},
		string(model.JobCardInProgress): {string(model.JobCardCompleted), string(model.JobCardDelayed)},
		string(model.JobCardDelayed):    {string(model.JobCardInProgress)},
	},
}

var ncrMachine = &Machine{
	Entity:      model.EntityNCRReport,
	StatusField: "status",
	Initial:     string(model.NCROpen),
	Transitions: map[string][]string{
		string(model.NCROpen):          {string(model.NCRInvestigation), string(model.NCRClosed)},
		string(model.NCRInvestigation): {string(model.NCRClosed)},
	},
	Reopen: map[string]string{
		string(model.NCRInvestigation): string(model.NCROpen),
	},
	Guards: map[string][]Rule{
		string(model.NCRClosed): {ruleClosure, ruleRepairDetails},
	},
}

var vendorMachine = &Machine{
	Entity:      model.EntityVendor,
	StatusField: "contractStatus",
	Initial:     string(model.ContractActive),
	Transitions: map[string][]string{
		string(model.ContractActive):   {string(model.ContractInactive)},
		string(model.ContractInactive): {string(model.ContractActive)},
	},
}

// MachineFor 返回该类型的状态图，函件没有状态图
func MachineFor(kind model.EntityType) (*Machine, error) {
	switch kind {
	case model.EntityJobCard:
		return jobCardMachine, nil
	case model.EntityNCRReport:
		return ncrMachine, nil
	case model.EntityVendor:
		return vendorMachine, nil
	case model.EntityLetter:
		return nil, fmt.Errorf("%s has no status", kind)
	}
	return nil, ErrUnknownEntity
}
