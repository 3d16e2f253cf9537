package model

// ── 实体类型 ──

// EntityType 引擎管理的记录类型
type EntityType string

const (
	EntityJobCard   EntityType = "job_card"
	EntityNCRReport EntityType = "ncr_report"
	EntityLetter    EntityType = "letter"
	EntityVendor    EntityType = "vendor"
)

// EntityTypes 按展示顺序列出全部记录类型
func EntityTypes() []EntityType {
	return []EntityType{EntityJobCard, EntityNCRReport, EntityLetter, EntityVendor}
}

// Valid 是否为已知的记录类型
func (e EntityType) Valid() bool {
	switch e {
	case EntityJobCard, EntityNCRReport, EntityLetter, EntityVendor:
		return true
	}
	return false
}

// ── 作业卡选项 ──

// JobCardCategory 作业卡检修类别
type JobCardCategory string

const (
	CategoryInspection   JobCardCategory = "inspection"
	CategoryPreventive   JobCardCategory = "preventive"
	CategoryCorrective   JobCardCategory = "corrective"
	CategoryBreakdown    JobCardCategory = "breakdown"
	CategoryOverhaul     JobCardCategory = "overhaul"
	CategoryModification JobCardCategory = "modification"
	CategoryCleaning     JobCardCategory = "cleaning"
	CategoryWarranty     JobCardCategory = "warranty"
)

func JobCardCategories() []JobCardCategory {
	return []JobCardCategory{
		CategoryInspection, CategoryPreventive, CategoryCorrective, CategoryBreakdown,
		CategoryOverhaul, CategoryModification, CategoryCleaning, CategoryWarranty,
	}
}

func (c JobCardCategory) Valid() bool {
	switch c {
	case CategoryInspection, CategoryPreventive, CategoryCorrective, CategoryBreakdown,
		CategoryOverhaul, CategoryModification, CategoryCleaning, CategoryWarranty:
		return true
	}
	return false
}

// Priority 作业卡优先级
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// JobCardStatus pending | in_progress | completed | delayed
type JobCardStatus string

const (
	JobCardPending    JobCardStatus = "pending"
	JobCardInProgress JobCardStatus = "in_progress"
	JobCardCompleted  JobCardStatus = "completed"
	JobCardDelayed    JobCardStatus = "delayed"
)

func JobCardStatuses() []JobCardStatus {
	return []JobCardStatus{JobCardPending, JobCardInProgress, JobCardCompleted, JobCardDelayed}
}

func (s JobCardStatus) Valid() bool {
	switch s {
	case JobCardPending, JobCardInProgress, JobCardCompleted, JobCardDelayed:
		return true
	}
	return false
}

// ── NCR 选项 ──

// NCRStatus Open | Investigation | Closed
type NCRStatus string

const (
	NCROpen          NCRStatus = "Open"
	NCRInvestigation NCRStatus = "Investigation"
	NCRClosed        NCRStatus = "Closed"
)

func NCRStatuses() []NCRStatus {
	return []NCRStatus{NCROpen, NCRInvestigation, NCRClosed}
}

func (s NCRStatus) Valid() bool {
	switch s {
	case NCROpen, NCRInvestigation, NCRClosed:
		return true
	}
	return false
}

// Modification 故障件是否经过改装
type Modification string

const (
	Modified   Modification = "Modified"
	Unmodified Modification = "Unmodified"
)

func Modifications() []Modification { return []Modification{Modified, Unmodified} }

func (m Modification) Valid() bool {
	switch m {
	case Modified, Unmodified:
		return true
	}
	return false
}

// Responsibility 不合格项的责任方
type Responsibility string

const (
	ResponsibilityVendor Responsibility = "Vendor"
	ResponsibilityBEML   Responsibility = "BEML"
	ResponsibilityOthers Responsibility = "Others"
)

func Responsibilities() []Responsibility {
	return []Responsibility{ResponsibilityVendor, ResponsibilityBEML, ResponsibilityOthers}
}

func (r Responsibility) Valid() bool {
	switch r {
	case ResponsibilityVendor, ResponsibilityBEML, ResponsibilityOthers:
		return true
	}
	return false
}

// NCRSource Internal | External
type NCRSource string

const (
	SourceInternal NCRSource = "Internal"
	SourceExternal NCRSource = "External"
)

func NCRSources() []NCRSource { return []NCRSource{SourceInternal, SourceExternal} }

func (s NCRSource) Valid() bool {
	switch s {
	case SourceInternal, SourceExternal:
		return true
	}
	return false
}

// RepairOutcome NCR 处理后故障件的处置结果
type RepairOutcome string

const (
	OutcomeRepaired RepairOutcome = "Repaired"
	OutcomeReplaced RepairOutcome = "Replaced"
)

func RepairOutcomes() []RepairOutcome { return []RepairOutcome{OutcomeRepaired, OutcomeReplaced} }

func (o RepairOutcome) Valid() bool {
	switch o {
	case OutcomeRepaired, OutcomeReplaced:
		return true
	}
	return false
}

// ── 函件 / 供应商选项 ──

// LetterDirection Incoming | Outgoing
type LetterDirection string

const (
	LetterIncoming LetterDirection = "Incoming"
	LetterOutgoing LetterDirection = "Outgoing"
)

func LetterDirections() []LetterDirection { return []LetterDirection{LetterIncoming, LetterOutgoing} }

func (d LetterDirection) Valid() bool {
	switch d {
	case LetterIncoming, LetterOutgoing:
		return true
	}
	return false
}

// ContractStatus Active | Inactive
type ContractStatus string

const (
	ContractActive   ContractStatus = "Active"
	ContractInactive ContractStatus = "Inactive"
)

func ContractStatuses() []ContractStatus { return []ContractStatus{ContractActive, ContractInactive} }

func (s ContractStatus) Valid() bool {
	switch s {
	case ContractActive, ContractInactive:
		return true
	}
	return false
}

// Subsystem 供应商供货或服务的车辆子系统
type Subsystem string

const (
	SubsystemTraction      Subsystem = "Traction"
	SubsystemBrakes        Subsystem = "Brakes"
	SubsystemDoors         Subsystem = "Doors"
	SubsystemHVAC          Subsystem = "HVAC"
	SubsystemBogie         Subsystem = "Bogie"
	SubsystemCoupler       Subsystem = "Coupler"
	SubsystemPantograph    Subsystem = "Pantograph"
	SubsystemTCMS          Subsystem = "TCMS"
	SubsystemPIS           Subsystem = "PIS"
	SubsystemSignalling    Subsystem = "Signalling"
	SubsystemLighting      Subsystem = "Lighting"
	SubsystemFireDetection Subsystem = "Fire Detection"
)

func Subsystems() []Subsystem {
	return []Subsystem{
		SubsystemTraction, SubsystemBrakes, SubsystemDoors, SubsystemHVAC,
		SubsystemBogie, SubsystemCoupler, SubsystemPantograph, SubsystemTCMS,
		SubsystemPIS, SubsystemSignalling, SubsystemLighting, SubsystemFireDetection,
	}
}

func (s Subsystem) Valid() bool {
	switch s {
	case SubsystemTraction, SubsystemBrakes, SubsystemDoors, SubsystemHVAC,
		SubsystemBogie, SubsystemCoupler, SubsystemPantograph, SubsystemTCMS,
		SubsystemPIS, SubsystemSignalling, SubsystemLighting, SubsystemFireDetection:
		return true
	}
	return false
}
