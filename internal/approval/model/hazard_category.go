package model

import "github.com/OpenCCS/ccs/internal/hazard"

// HazardCategory represents one GHS hazard class. Immutable reference data,
// seeded once at startup and never mutated by end users.
type HazardCategory struct {
	BaseModel
	Name          string `gorm:"type:varchar(100);column:name;not null" json:"name"`
	Code          string `gorm:"type:varchar(10);column:code;not null;unique" json:"code"` // GHS class code, e.g. GHS02
	Subclass      string `gorm:"type:varchar(100);column:subclass" json:"subclass,omitempty"`
	Description   string `gorm:"type:text;column:description" json:"description"`
	PictogramPath string `gorm:"type:varchar(255);column:pictogram_path" json:"pictogramPath,omitempty"`
}

func (c *HazardCategory) TableName() string {
	return "hazard_categories"
}

// DefaultHazardCategories returns the nine standard GHS classes used to seed
// an empty database.
func DefaultHazardCategories() []HazardCategory {
	return []HazardCategory{
		{Name: "Explosive", Code: hazard.CodeExplosive, Description: "Substances and mixtures which have explosive properties", PictogramPath: "/api/attachments/pictogram/ghs01_explosive.png"},
		{Name: "Flammable", Code: hazard.CodeFlammable, Description: "Flammable gases, aerosols, liquids, and solids", PictogramPath: "/api/attachments/pictogram/ghs02_flammable.png"},
		{Name: "Oxidizing", Code: hazard.CodeOxidizing, Description: "Oxidizing gases, liquids and solids", PictogramPath: "/api/attachments/pictogram/ghs03_oxidizing.png"},
		{Name: "Compressed Gas", Code: hazard.CodeCompressedGas, Description: "Gases under pressure", PictogramPath: "/api/attachments/pictogram/ghs04_gas.png"},
		{Name: "Corrosive", Code: hazard.CodeCorrosive, Description: "Corrosive to metals and causes severe skin burns", PictogramPath: "/api/attachments/pictogram/ghs05_corrosive.png"},
		{Name: "Acute Toxicity", Code: hazard.CodeAcuteToxicity, Description: "Substances that are fatal or toxic", PictogramPath: "/api/attachments/pictogram/ghs06_toxic.png"},
		{Name: "Serious Health Hazard", Code: hazard.CodeSeriousHealth, Description: "Harmful if swallowed, causes skin or eye irritation", PictogramPath: "/api/attachments/pictogram/ghs07_harmful.png"},
		{Name: "Health Hazard", Code: hazard.CodeHealthHazard, Description: "Carcinogenic, mutagenic, toxic to reproduction", PictogramPath: "/api/attachments/pictogram/ghs08_health.png"},
		{Name: "Environmental Hazard", Code: hazard.CodeEnvironmental, Description: "Hazardous to the aquatic environment", PictogramPath: "/api/attachments/pictogram/ghs09_environment.png"},
	}
}
