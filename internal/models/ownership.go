package models

// OwnerKind tags who an entity belongs to. Modeling ownership as an
// explicit variant keeps the access-rule switch exhaustive instead of
// relying on nullable foreign-key checks.
type OwnerKind int

const (
	OwnerPersonal OwnerKind = iota
	OwnerGlobal
	OwnerGroup
)

type Ownership struct {
	Kind    OwnerKind
	OwnerID string
	GroupID string
}

func PersonalOwner(ownerID string) Ownership {
	return Ownership{Kind: OwnerPersonal, OwnerID: ownerID}
}

func GlobalOwner() Ownership {
	return Ownership{Kind: OwnerGlobal}
}

func GroupOwner(groupID string) Ownership {
	return Ownership{Kind: OwnerGroup, GroupID: groupID}
}

// OwnershipOf derives the variant from the nullable columns a record or
// goal is stored with: a set group wins over the personal owner.
func OwnershipOf(ownerID string, groupID *string) Ownership {
	if groupID != nil && *groupID != "" {
		return GroupOwner(*groupID)
	}
	return PersonalOwner(ownerID)
}

func (c Category) Ownership() Ownership {
	if c.IsGlobal {
		return GlobalOwner()
	}
	owner := ""
	if c.OwnerID != nil {
		owner = *c.OwnerID
	}
	return PersonalOwner(owner)
}

func (r Record) Ownership() Ownership {
	return OwnershipOf(r.OwnerID, r.GroupID)
}

func (g Goal) Ownership() Ownership {
	return OwnershipOf(g.OwnerID, g.GroupID)
}
