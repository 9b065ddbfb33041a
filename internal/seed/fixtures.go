package seed

import (
	_ "embed"
	"fmt"

	"clubhub/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BuiltInClub is a permanent campus organization present in every
// deployment.
type BuiltInClub struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
}

//go:embed clubs.yaml
var builtInClubsYAML []byte

// BuiltInClubs parses the embedded built-in club fixtures.
func BuiltInClubs() ([]BuiltInClub, error) {
	var doc struct {
		Clubs []BuiltInClub `yaml:"clubs"`
	}
	if err := yaml.Unmarshal(builtInClubsYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse built-in club fixtures: %w", err)
	}
	return doc.Clubs, nil
}

// Clubs seeds the permanent built-in clubs. Existing rows are updated
// in place so repeated runs converge on the fixture content.
func Clubs(db *gorm.DB) error {
	fixtures, err := BuiltInClubs()
	if err != nil {
		return err
	}

	for _, item := range fixtures {
		club := models.Club{
			Name:        item.Name,
			Description: item.Description,
			Category:    item.Category,
		}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"description", "category", "updated_at"}),
		}).Create(&club).Error; err != nil {
			return fmt.Errorf("seed built-in club %s: %w", item.Name, err)
		}
	}

	return nil
}
