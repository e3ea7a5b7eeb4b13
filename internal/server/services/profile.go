package services

import (
	"github.com/dmitrijs2005/ccxpauth/internal/server/models"
)

// ProfileStrategy turns the result of the profile fetch into the claims the
// token minter receives.
type ProfileStrategy interface {
	Name() string
	Claims(studentID string) models.Profile
}

// recordProfile uses the fetched student record as is.
type recordProfile struct {
	p models.Profile
}

func (recordProfile) Name() string { return "record" }

func (r recordProfile) Claims(studentID string) models.Profile {
	p := r.p
	if p.StudentID == "" {
		p.StudentID = studentID
	}
	return p
}

// syntheticProfile serves accounts CCXP keeps no record page for, such as
// exchange students. Only the student id is known.
type syntheticProfile struct{}

func (syntheticProfile) Name() string { return "synthetic" }

func (syntheticProfile) Claims(studentID string) models.Profile {
	return models.Profile{StudentID: studentID}
}

// ProfileStrategyFor picks the strategy for a fetch result.
func ProfileStrategyFor(fetched *models.Profile) ProfileStrategy {
	if fetched == nil {
		return syntheticProfile{}
	}
	return recordProfile{p: *fetched}
}
