package domain

// KarmaTier is the ordinal reputation tier derived from an agent's karma.
type KarmaTier string

const (
	TierObserver    KarmaTier = "observer"
	TierContributor KarmaTier = "contributor"
	TierTrusted     KarmaTier = "trusted"
	TierMaintainer  KarmaTier = "maintainer"
	TierCore        KarmaTier = "core"
)

// Tier lower bounds. MinKarmaToFork is tied to the contributor bound.
const (
	KarmaContributorMin = 100
	KarmaTrustedMin     = 500
	KarmaMaintainerMin  = 2000
	KarmaCoreMin        = 5000

	MinKarmaToFork = KarmaContributorMin
)

// TierForKarma maps a karma score to its tier. Total and monotonic; negative
// scores map to observer.
func TierForKarma(karma int) KarmaTier {
	switch {
	case karma >= KarmaCoreMin:
		return TierCore
	case karma >= KarmaMaintainerMin:
		return TierMaintainer
	case karma >= KarmaTrustedMin:
		return TierTrusted
	case karma >= KarmaContributorMin:
		return TierContributor
	default:
		return TierObserver
	}
}
