package seed

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"projecthub/internal/auth"
	"projecthub/internal/config"
	"projecthub/internal/models"
)

var defaultRoles = []models.Role{
	{Name: "Administrator", Rank: 1, Description: "Full control of the project"},
	{Name: "Director", Rank: 2, Description: "Manages project staff"},
	{Name: "Manager", Rank: 3, Description: "Runs day to day operations"},
	{Name: "Staff", Rank: 4, Description: "Works on the project"},
	{Name: "Viewer", Rank: 5, Description: "Read only access"},
}

var defaultTiers = []models.SystemTier{
	{Name: "System administrator", RankTotal: 1},
	{Name: "Onboarding administrator", RankTotal: 2},
	{Name: "Project lead", RankTotal: 3},
	{Name: "Employee", RankTotal: 4},
	{Name: "Partner", RankTotal: 5},
	{Name: "Guest", RankTotal: 6},
}

// FirstSetup creates the default role catalog, system tiers and the first
// superuser. It is safe to run on every start.
func FirstSetup(db *gorm.DB, cfg *config.Config, log *logrus.Logger) error {
	// -------------------------
	// 1) Ensure roles
	// -------------------------
	for _, r := range defaultRoles {
		role := r
		if err := db.Where("name = ?", role.Name).FirstOrCreate(&role).Error; err != nil {
			return err
		}
	}

	// -------------------------
	// 2) Ensure system tiers
	// -------------------------
	for _, t := range defaultTiers {
		tier := t
		if err := db.Where("name = ?", tier.Name).FirstOrCreate(&tier).Error; err != nil {
			return err
		}
	}

	// -------------------------
	// 3) Ensure first superuser
	// -------------------------
	var existing int64
	if err := db.Model(&models.User{}).Where("email = ?", cfg.FirstSuperuserEmail).Count(&existing).Error; err != nil {
		return err
	}
	if existing == 0 {
		hash, err := auth.HashPassword(cfg.FirstSuperuserPassword)
		if err != nil {
			return err
		}
		one := 1
		admin := models.User{
			Email:        cfg.FirstSuperuserEmail,
			FullName:     "Administrator",
			PasswordHash: hash,
			IsActive:     true,
			IsSuperuser:  true,
			SystemRank:   &one,
		}
		if err := db.Create(&admin).Error; err != nil {
			return err
		}
		log.WithField("email", admin.Email).Warn("first superuser created, change its password")
	}

	log.WithFields(logrus.Fields{
		"roles": len(defaultRoles),
		"tiers": len(defaultTiers),
	}).Info("seed OK")
	return nil
}
