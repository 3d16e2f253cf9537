package model

import "gorm.io/datatypes"

// Vendor 供应商表，对应 vendors（为一个或多个子系统供货或提供服务）
type Vendor struct {
	VendorCode     string                      `gorm:"column:vendor_code;primaryKey;type:varchar(64)"              json:"vendorCode"`
	Name           string                      `gorm:"column:name;type:varchar(255);not null"                      json:"name"`
	ContactPerson  string                      `gorm:"column:contact_person;type:varchar(255);not null;default:''" json:"contactPerson,omitempty"`
	Email          string                      `gorm:"column:email;type:varchar(255);not null;default:''"          json:"email,omitempty"`
	Phone          string                      `gorm:"column:phone;type:varchar(32);not null;default:''"           json:"phone,omitempty"`
	Address        string                      `gorm:"column:address;type:text;not null;default:''"                json:"address,omitempty"`
	RelatedSystems datatypes.JSONSlice[string] `gorm:"column:related_systems;not null;default:'[]'"                json:"relatedSystems"`
	ContractStatus ContractStatus              `gorm:"column:contract_status;type:varchar(16);not null;index"      json:"contractStatus"`
	BaseModel
}

func (Vendor) TableName() string { return "vendors" }

func (Vendor) EntityType() EntityType { return EntityVendor }

func (v *Vendor) Identifier() string { return v.VendorCode }

func (v *Vendor) SetIdentifier(id string) { v.VendorCode = id }

func (v *Vendor) CurrentStatus() string { return string(v.ContractStatus) }
