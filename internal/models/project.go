package models

import "github.com/google/uuid"

type Project struct {
	ID         uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	NameVI     string    `gorm:"column:name_vi;size:255" json:"name_vi"`
	NameEN     string    `gorm:"column:name_en;size:255" json:"name_en"`
	AddressVI  string    `gorm:"column:address_vi;size:255" json:"address_vi"`
	AddressEN  string    `gorm:"column:address_en;size:255" json:"address_en"`
	TypeVI     string    `gorm:"column:type_vi;size:255" json:"type_vi"`
	TypeEN     string    `gorm:"column:type_en;size:255" json:"type_en"`
	InvestorVI string    `gorm:"column:investor_vi;size:255" json:"investor_vi"`
	InvestorEN string    `gorm:"column:investor_en;size:255" json:"investor_en"`
	Picture    string    `gorm:"size:255" json:"picture"`
}
