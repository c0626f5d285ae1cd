package export

// Users builds the records for the users document: every User entity in the
// dump with its group memberships and computed active flag, plus the
// reserved placeholder identity every stale author was collapsed into.
func (e *Engine) Users() []User {
	groups := make(map[string][]string)
	for _, m := range e.store.Records("Membership") {
		user := m.Field("userName")
		if user == "" {
			user = m.Field("childName")
		}
		group := m.Field("groupName")
		if group == "" {
			group = m.Field("parentName")
		}
		if user != "" && group != "" {
			groups[user] = append(groups[user], group)
		}
	}

	var out []User
	for _, r := range e.store.Records("User") {
		name := r.Field("userName")
		if name == "" {
			name = r.Field("name")
		}
		if name == "" {
			continue
		}
		u := User{
			Name:     name,
			Groups:   groups[name],
			Active:   e.resolver.IsActive(name),
			Email:    firstField(r, "emailAddress", "email"),
			Fullname: firstField(r, "displayName", "fullName"),
		}
		if u.Groups == nil {
			u.Groups = []string{}
		}
		out = append(out, u)
	}

	// The placeholder identity must exist in the target tracker or every
	// remapped author reference would dangle.
	out = append(out, User{
		Name:   e.resolver.Placeholder(),
		Groups: []string{},
		Active: true,
	})
	return out
}
