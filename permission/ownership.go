package permission

// OwnershipRule configures the per-resource-type owner override: whether
// owning a record is, by itself, enough to edit or delete it regardless
// of the module's visibility level. Used for user-generated content
// (posts, comments). The zero value applies the plain level rules.
type OwnershipRule struct {
	OwnerCanEdit   bool
	OwnerCanDelete bool
}

// UserContentRule is the override applied to user-generated content
// resource types: exact ownership proves both edit and delete.
var UserContentRule = OwnershipRule{OwnerCanEdit: true, OwnerCanDelete: true}

// CanEdit decides whether the subject may edit a record owned by ownerID.
// All-level always grants; Junior grants because the data layer has
// already filtered the record into the subject's visible set; Own grants
// only on exact identity match. The rule's owner override grants on exact
// ownership independent of level.
func CanEdit(level Level, ownerID, subjectID string, rule OwnershipRule) bool {
	if levelAllows(level, ownerID, subjectID) {
		return true
	}
	return rule.OwnerCanEdit && exactOwner(ownerID, subjectID)
}

// CanDelete decides whether the subject may delete a record owned by
// ownerID. Deletion is the stricter operation: the owner override applies
// only on exact ownership, everything else falls back to the level rules.
func CanDelete(level Level, ownerID, subjectID string, rule OwnershipRule) bool {
	if levelAllows(level, ownerID, subjectID) {
		return true
	}
	return rule.OwnerCanDelete && exactOwner(ownerID, subjectID)
}

func levelAllows(level Level, ownerID, subjectID string) bool {
	switch level {
	case LevelAll, LevelJunior:
		return true
	default:
		return exactOwner(ownerID, subjectID)
	}
}

// An empty owner or subject ID never matches; ownerless records cannot be
// claimed by anonymous subjects.
func exactOwner(ownerID, subjectID string) bool {
	return ownerID != "" && ownerID == subjectID
}
