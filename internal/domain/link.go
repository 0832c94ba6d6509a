package domain

// PrimaryLink selects the user's primary agent from its links: the earliest
// linked_at wins, with the agent id as a tie-break so repeated calls are
// deterministic.
func PrimaryLink(links []LinkedAgent) (string, bool) {
	if len(links) == 0 {
		return "", false
	}
	primary := links[0]
	for _, link := range links[1:] {
		if link.LinkedAt.Before(primary.LinkedAt) {
			primary = link
			continue
		}
		if link.LinkedAt.Equal(primary.LinkedAt) && link.AgentID < primary.AgentID {
			primary = link
		}
	}
	return primary.AgentID, true
}
