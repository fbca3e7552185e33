package validate

import (
	"fmt"

	"github.com/campusops/rostersync/pkg/differ"
	"github.com/campusops/rostersync/pkg/entities"
	"github.com/campusops/rostersync/pkg/matching"
)

// CrossRefInput is everything the cross-reference pass needs: the
// batch's changes and issues plus the identifier sets already in the
// store snapshot.
type CrossRefInput struct {
	Changes        []*differ.Change
	Issues         []*matching.Issue
	KnownPersonIDs map[string]bool // store document ids
	KnownSpaceKeys map[string]bool // store room identity keys
}

// CrossReferences verifies every room and instructor reference on a
// schedule change resolves to the store, to a record introduced
// elsewhere in the batch, or to a person arising from a matching
// resolution. Unresolved references are warnings; the matching gate
// itself is enforced at commit.
func CrossReferences(in CrossRefInput) []Problem {
	batchSpaceKeys := make(map[string]bool)
	for _, ch := range in.Changes {
		if ch.Collection == entities.CollectionRooms && ch.New != nil {
			batchSpaceKeys[ch.New.Key()] = true
		}
	}

	issueByChange := make(map[string]*matching.Issue)
	for _, issue := range in.Issues {
		for _, id := range issue.ScheduleChangeIDs {
			issueByChange[id] = issue
		}
	}

	var problems []Problem
	for _, ch := range in.Changes {
		if ch.Collection != entities.CollectionSchedules || ch.New == nil {
			continue
		}
		sched, ok := ch.New.(*entities.Schedule)
		if !ok {
			continue
		}

		for _, spaceID := range sched.SpaceIDs {
			key := "room|" + spaceID
			if in.KnownSpaceKeys[key] || batchSpaceKeys[key] {
				continue
			}
			problems = append(problems, Problem{
				Code:       CodeOrphanedReference,
				Severity:   SeverityWarning,
				Collection: entities.CollectionSchedules,
				ChangeID:   ch.ID,
				Field:      "spaceIds",
				Message:    fmt.Sprintf("schedule %s references unknown room %q", sched.Label(), spaceID),
			})
		}

		for _, personID := range sched.InstructorIDs {
			if in.KnownPersonIDs[personID] {
				continue
			}
			problems = append(problems, Problem{
				Code:       CodeOrphanedReference,
				Severity:   SeverityWarning,
				Collection: entities.CollectionSchedules,
				ChangeID:   ch.ID,
				Field:      "instructorIds",
				Message:    fmt.Sprintf("schedule %s references unknown person %q", sched.Label(), personID),
			})
		}

		if len(sched.InstructorIDs) == 0 && sched.InstructorName != "" {
			issue := issueByChange[ch.ID]
			switch {
			case issue == nil:
				problems = append(problems, Problem{
					Code:       CodeOrphanedReference,
					Severity:   SeverityWarning,
					Collection: entities.CollectionSchedules,
					ChangeID:   ch.ID,
					Field:      "instructorIds",
					Message:    fmt.Sprintf("schedule %s names instructor %q with no resolved identity", sched.Label(), sched.InstructorName),
				})
			case !issue.Resolved():
				problems = append(problems, Problem{
					Code:       CodeOrphanedReference,
					Severity:   SeverityWarning,
					Collection: entities.CollectionSchedules,
					ChangeID:   ch.ID,
					Field:      "instructorIds",
					Message: fmt.Sprintf("schedule %s waits on unresolved matching issue for %q; resolving it is required before commit",
						sched.Label(), sched.InstructorName),
				})
			}
		}
	}
	return problems
}

// IdentityChanges warns when a modify touches fields that participate
// in the record's identity key: the record stays the same document but
// would no longer be found under its previous key.
func IdentityChanges(changes []*differ.Change) []Problem {
	identityKeys := map[entities.Collection]map[string]bool{
		entities.CollectionSchedules: {"crn": true, "section": true, "meetings": true, "spaceIds": true, "term": true, "termCode": true},
		entities.CollectionPeople:    {"email": true, "baylorId": true, "externalIds": true},
		entities.CollectionRooms:     {"spaceKey": true, "displayName": true},
	}

	var problems []Problem
	for _, ch := range changes {
		if ch.Action != differ.ActionModify {
			continue
		}
		keys := identityKeys[ch.Collection]
		for _, edit := range ch.Diff {
			if !keys[edit.Key] {
				continue
			}
			problems = append(problems, Problem{
				Code:       CodeIdentityChange,
				Severity:   SeverityWarning,
				Collection: ch.Collection,
				ChangeID:   ch.ID,
				Field:      edit.Key,
				Message:    fmt.Sprintf("%s modifies identity field %s (%s -> %s)", ch.Label(), edit.Key, differ.FormatValue(edit.From), differ.FormatValue(edit.To)),
			})
			break
		}
	}
	return problems
}
