package scoring

// DirectReports returns the subordinates assigned directly to directorID,
// split by role. Approval is not considered here. Subordinates without a
// known director profile are listed as clinicians.
func DirectReports(directorID string, assignments []Assignment, profiles []Profile) Reports {
	roles := make(map[string]Role, len(profiles))
	for _, p := range profiles {
		roles[p.ID] = p.Role
	}
	return partitionReports(subordinatesOf(directorID, assignments), roles)
}

func subordinatesOf(supervisorID string, assignments []Assignment) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, a := range assignments {
		if a.SupervisorID != supervisorID {
			continue
		}
		if _, dup := seen[a.SubordinateID]; dup {
			continue
		}
		seen[a.SubordinateID] = struct{}{}
		out = append(out, a.SubordinateID)
	}
	return out
}

func partitionReports(ids []string, roles map[string]Role) Reports {
	out := Reports{Clinicians: []string{}, SubDirectors: []string{}}
	for _, id := range ids {
		if roles[id] == RoleDirector {
			out.SubDirectors = append(out.SubDirectors, id)
			continue
		}
		out.Clinicians = append(out.Clinicians, id)
	}
	return out
}
