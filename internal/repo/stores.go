package repo

import (
	"gorm.io/gorm"

	"resident-portal/internal/domain"
)

// Stores bundles every repository the services need.
type Stores struct {
	Accounts             domain.AccountRepository
	Profiles             domain.Repository[domain.Profile]
	Messages             domain.Repository[domain.Message]
	Sites                domain.Repository[domain.Site]
	Modules              domain.Repository[domain.Module]
	Subjects             domain.Repository[domain.Subject]
	Files                domain.Repository[domain.File]
	Contributions        domain.Repository[domain.Contribution]
	LeisureEvents        domain.Repository[domain.LeisureEvent]
	LeisureParticipants  domain.Repository[domain.LeisureParticipant]
	LeisureContributions domain.Repository[domain.LeisureContribution]
	Attendance           domain.Repository[domain.Attendance]
	Settings             domain.Repository[domain.Setting]
	Pinger               domain.Pinger
}

func NewGormStores(db *gorm.DB) *Stores {
	return &Stores{
		Accounts:             NewAccountRepo(db),
		Profiles:             NewGorm[domain.Profile](db),
		Messages:             NewGorm[domain.Message](db),
		Sites:                NewGorm[domain.Site](db),
		Modules:              NewGorm[domain.Module](db),
		Subjects:             NewGorm[domain.Subject](db),
		Files:                NewGorm[domain.File](db),
		Contributions:        NewGorm[domain.Contribution](db),
		LeisureEvents:        NewGorm[domain.LeisureEvent](db),
		LeisureParticipants:  NewGorm[domain.LeisureParticipant](db),
		LeisureContributions: NewGorm[domain.LeisureContribution](db),
		Attendance:           NewGorm[domain.Attendance](db),
		Settings:             NewGorm[domain.Setting](db),
		Pinger:               DBPinger{DB: db},
	}
}
