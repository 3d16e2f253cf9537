package model

import "gorm.io/datatypes"

// NCRReport 不合格报告表，对应 ncr_reports（跟踪缺陷从发现到关闭）
type NCRReport struct {
	NCRReportNo                 string                      `gorm:"column:ncr_report_no;primaryKey;type:varchar(64)" json:"ncrReportNo"`
	DateOfDetection             *Date                       `gorm:"column:date_of_detection" json:"dateOfDetection,omitempty"`
	DateOfNCR                   Date                        `gorm:"column:date_of_ncr;not null;index" json:"dateOfNcr"`
	ItemDescription             string                      `gorm:"column:item_description;type:text;not null" json:"itemDescription"`
	PartNumber                  string                      `gorm:"column:part_number;type:varchar(64);not null" json:"partNumber"`
	Modification                Modification                `gorm:"column:modification;type:varchar(16);not null;default:''" json:"modification,omitempty"`
	FaultySerialNumber          string                      `gorm:"column:faulty_serial_number;type:varchar(64);not null;default:''" json:"faultySerialNumber,omitempty"`
	HealthySerialNumber         string                      `gorm:"column:healthy_serial_number;type:varchar(64);not null;default:''" json:"healthySerialNumber,omitempty"`
	Responsibility              Responsibility              `gorm:"column:responsibility;type:varchar(16);not null;default:''" json:"responsibility,omitempty"`
	Status                      NCRStatus                   `gorm:"column:status;type:varchar(20);not null;index" json:"status"`
	Quantity                    int                         `gorm:"column:quantity;not null" json:"quantity"`
	TrainID                     string                      `gorm:"column:train_id;type:varchar(16);not null;default:'';index" json:"trainId,omitempty"`
	CarID                       string                      `gorm:"column:car_id;type:varchar(16);not null;default:''" json:"carId,omitempty"`
	Source                      NCRSource                   `gorm:"column:source;type:varchar(16);not null;default:''" json:"source,omitempty"`
	NCRClosedByDocument         bool                        `gorm:"column:ncr_closed_by_document;not null;default:false" json:"ncrClosedByDocument"`
	DateOfNCRClosure            *Date                       `gorm:"column:date_of_ncr_closure" json:"dateOfNcrClosure,omitempty"`
	GatePassNumber              string                      `gorm:"column:gate_pass_number;type:varchar(64);not null;default:''" json:"gatePassNumber,omitempty"`
	DateOfInvestigationReceived *Date                       `gorm:"column:date_of_investigation_received" json:"dateOfInvestigationReceived,omitempty"`
	ItemRepairedReplaced        RepairOutcome               `gorm:"column:item_repaired_replaced;type:varchar(16);not null;default:''" json:"itemRepairedReplaced,omitempty"`
	ItemRepairedReplacedDetails string                      `gorm:"column:item_repaired_replaced_details;type:text;not null;default:''" json:"itemRepairedReplacedDetails,omitempty"`
	Remarks                     string                      `gorm:"column:remarks;type:text;not null;default:''" json:"remarks,omitempty"`
	Attachments                 datatypes.JSONSlice[string] `gorm:"column:attachments;not null;default:'[]'" json:"attachments"`
	BaseModel
}

func (NCRReport) TableName() string { return "ncr_reports" }

func (NCRReport) EntityType() EntityType { return EntityNCRReport }

func (n *NCRReport) Identifier() string { return n.NCRReportNo }

func (n *NCRReport) SetIdentifier(id string) { n.NCRReportNo = id }

func (n *NCRReport) CurrentStatus() string { return string(n.Status) }
