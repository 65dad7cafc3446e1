package classifier

import "solana-token-scanner/internal/domain"

// Category score boundaries. Lower bounds are inclusive.
const (
	MoonshotMinScore         = 8.5
	SolidInvestmentMinScore  = 7.0
	PotentialMinScore        = 5.0
	SocialPotentialMinScore  = 4.0
	PotentialMinMomentum     = 0.7
	SocialPotentialMinSocial = 0.8
)

// AssignCategory maps a breakdown to its category.
// It returns false when the token belongs to no category.
func AssignCategory(b domain.ScoreBreakdown) (domain.Category, bool) {
	switch {
	case b.Total >= MoonshotMinScore:
		return domain.CategoryMoonshot, true
	case b.Total >= SolidInvestmentMinScore:
		return domain.CategorySolidInvestment, true
	case b.Total >= PotentialMinScore:
		if b.Momentum >= PotentialMinMomentum {
			return domain.CategoryPotential, true
		}
		return domain.CategoryRisky, true
	case b.Total >= SocialPotentialMinScore && b.Social >= SocialPotentialMinSocial:
		return domain.CategoryPotential, true
	default:
		return "", false
	}
}
