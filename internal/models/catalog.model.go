package models

type ServiceType struct {
	BaseModel
	Slug      string `gorm:"type:text;uniqueIndex;not null"  json:"slug"`
	Name      string `gorm:"type:text;not null"              json:"name"`
	Icon      string `gorm:"type:text"                       json:"icon"`
	SortOrder int    `gorm:"type:int;default:0"              json:"sortOrder"`
	IsActive  bool   `gorm:"type:bool;default:true;not null" json:"isActive"`
}

type Location struct {
	BaseModel
	City     string `gorm:"type:text;not null;uniqueIndex:idx_locations_city_area" json:"city"`
	Area     string `gorm:"type:text;not null;uniqueIndex:idx_locations_city_area" json:"area"`
	IsActive bool   `gorm:"type:bool;default:true;not null"                        json:"isActive"`
}
