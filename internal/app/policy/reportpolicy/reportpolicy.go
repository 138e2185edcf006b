// Package reportpolicy provides authorization policies for incident reports.
//
// Authorization rules:
//   - Community members see their own reports plus approved public reports
//   - Researchers list approved reports only but may open any report by ID
//   - NGO and government staff see everything and perform validation
//   - Only the reporter or an admin role may edit or delete a report
package reportpolicy

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mangrovewatch/mangrovewatch/internal/app/system/authz"
	"github.com/mangrovewatch/mangrovewatch/internal/domain/models"
)

// CanView reports whether a user with the given role may read a single
// report. Researchers get full single-report visibility even though
// their list scope is narrowed to approved reports; only the community
// role is restricted here.
func CanView(role string, userID primitive.ObjectID, rpt *models.Report) bool {
	switch role {
	case authz.RoleNGO, authz.RoleGovernment, authz.RoleResearcher:
		return true
	case authz.RoleCommunity:
		if rpt.Reporter == userID {
			return true
		}
		return rpt.Status == models.StatusApproved && rpt.IsPublic
	default:
		return false
	}
}

// CanEdit reports whether a user may modify or delete a report owned by
// ownerID. Admin roles may edit any report; everyone else only their own.
func CanEdit(role string, userID, ownerID primitive.ObjectID) bool {
	if authz.IsAdminRole(role) {
		return true
	}
	return userID == ownerID
}

// CanValidate reports whether the role may move reports through the
// validation workflow.
func CanValidate(role string) bool {
	return authz.IsAdminRole(role)
}

// ListScope returns the base filter restricting a list query to the
// reports the user is allowed to see. Admin roles get an empty filter.
func ListScope(role string, userID primitive.ObjectID) bson.M {
	switch role {
	case authz.RoleNGO, authz.RoleGovernment:
		return bson.M{}
	case authz.RoleResearcher:
		return bson.M{"status": models.StatusApproved}
	case authz.RoleCommunity:
		return bson.M{"$or": []bson.M{
			{"reporter": userID},
			{"status": models.StatusApproved, "is_public": true},
		}}
	default:
		// Unknown role: match nothing.
		return bson.M{"_id": primitive.NilObjectID}
	}
}

// And combines the role scope with additional filter criteria under an
// explicit $and so a scope containing $or is never clobbered by a
// search clause that also uses $or.
func And(scope bson.M, extra ...bson.M) bson.M {
	clauses := make([]bson.M, 0, len(extra)+1)
	if len(scope) > 0 {
		clauses = append(clauses, scope)
	}
	for _, e := range extra {
		if len(e) > 0 {
			clauses = append(clauses, e)
		}
	}
	switch len(clauses) {
	case 0:
		return bson.M{}
	case 1:
		return clauses[0]
	default:
		return bson.M{"$and": clauses}
	}
}
