package seed

import (
	"fmt"

	"vtelltales/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BuiltInStoryTypes defines the permanent story classification labels.
var BuiltInStoryTypes = []string{
	"Fairy Tale",
	"Comic",
	"Adventure",
	"Mystery",
	"Everyday Life",
	"Animals",
	"Fantasy",
	"Science Fiction",
	"Poetry",
	"True Story",
}

// StoryTypes seeds the permanent story type labels. Safe to run on every
// startup: existing labels are left untouched.
func StoryTypes(db *gorm.DB) error {
	for _, label := range BuiltInStoryTypes {
		st := models.StoryType{Label: label}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "label"}},
			DoNothing: true,
		}).Create(&st).Error
		if err != nil {
			return fmt.Errorf("seed story type %q: %w", label, err)
		}
	}
	return nil
}
