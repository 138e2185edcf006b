package reportpolicy

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mangrovewatch/mangrovewatch/internal/app/system/authz"
	"github.com/mangrovewatch/mangrovewatch/internal/domain/models"
)

func TestCanView(t *testing.T) {
	owner := primitive.NewObjectID()
	other := primitive.NewObjectID()

	report := func(status string, isPublic bool) *models.Report {
		return &models.Report{Reporter: owner, Status: status, IsPublic: isPublic}
	}

	tests := []struct {
		name   string
		role   string
		userID primitive.ObjectID
		rpt    *models.Report
		want   bool
	}{
		{"ngo sees pending", authz.RoleNGO, other, report(models.StatusPending, false), true},
		{"government sees rejected", authz.RoleGovernment, other, report(models.StatusRejected, false), true},
		{"researcher sees approved", authz.RoleResearcher, other, report(models.StatusApproved, false), true},
		{"researcher sees pending", authz.RoleResearcher, other, report(models.StatusPending, false), true},
		{"researcher sees under investigation", authz.RoleResearcher, other, report(models.StatusUnderInvestigation, false), true},
		{"community sees own pending", authz.RoleCommunity, owner, report(models.StatusPending, false), true},
		{"community sees own rejected", authz.RoleCommunity, owner, report(models.StatusRejected, false), true},
		{"community sees others approved public", authz.RoleCommunity, other, report(models.StatusApproved, true), true},
		{"community blocked from others approved private", authz.RoleCommunity, other, report(models.StatusApproved, false), false},
		{"community blocked from others pending", authz.RoleCommunity, other, report(models.StatusPending, true), false},
		{"unknown role blocked", "visitor", other, report(models.StatusApproved, true), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanView(tt.role, tt.userID, tt.rpt)
			if got != tt.want {
				t.Errorf("CanView(%s) = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestCanEdit(t *testing.T) {
	owner := primitive.NewObjectID()
	other := primitive.NewObjectID()

	tests := []struct {
		name   string
		role   string
		userID primitive.ObjectID
		want   bool
	}{
		{"owner can edit", authz.RoleCommunity, owner, true},
		{"non-owner community cannot", authz.RoleCommunity, other, false},
		{"non-owner researcher cannot", authz.RoleResearcher, other, false},
		{"ngo can edit any", authz.RoleNGO, other, true},
		{"government can edit any", authz.RoleGovernment, other, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanEdit(tt.role, tt.userID, owner)
			if got != tt.want {
				t.Errorf("CanEdit(%s) = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestCanValidate(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{authz.RoleNGO, true},
		{authz.RoleGovernment, true},
		{authz.RoleCommunity, false},
		{authz.RoleResearcher, false},
		{"visitor", false},
	}
	for _, tt := range tests {
		if got := CanValidate(tt.role); got != tt.want {
			t.Errorf("CanValidate(%q) = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestListScope(t *testing.T) {
	uid := primitive.NewObjectID()

	t.Run("admin roles unrestricted", func(t *testing.T) {
		if len(ListScope(authz.RoleNGO, uid)) != 0 {
			t.Error("expected empty scope for ngo")
		}
		if len(ListScope(authz.RoleGovernment, uid)) != 0 {
			t.Error("expected empty scope for government")
		}
	})

	t.Run("researcher approved only", func(t *testing.T) {
		scope := ListScope(authz.RoleResearcher, uid)
		if scope["status"] != models.StatusApproved {
			t.Errorf("scope = %v, want status=approved", scope)
		}
	})

	t.Run("community own or approved public", func(t *testing.T) {
		scope := ListScope(authz.RoleCommunity, uid)
		or, ok := scope["$or"].([]bson.M)
		if !ok || len(or) != 2 {
			t.Fatalf("scope = %v, want two-branch $or", scope)
		}
		if or[0]["reporter"] != uid {
			t.Errorf("first branch = %v, want reporter match", or[0])
		}
		if or[1]["status"] != models.StatusApproved || or[1]["is_public"] != true {
			t.Errorf("second branch = %v, want approved+public", or[1])
		}
	})

	t.Run("unknown role matches nothing", func(t *testing.T) {
		scope := ListScope("visitor", uid)
		if scope["_id"] != primitive.NilObjectID {
			t.Errorf("scope = %v, want nil-id filter", scope)
		}
	})
}

func TestAnd(t *testing.T) {
	uid := primitive.NewObjectID()
	scope := ListScope(authz.RoleCommunity, uid)
	search := bson.M{"$or": []bson.M{
		{"title": bson.M{"$regex": "oil", "$options": "i"}},
		{"description": bson.M{"$regex": "oil", "$options": "i"}},
	}}

	t.Run("scope with search wraps in and", func(t *testing.T) {
		combined := And(scope, search)
		and, ok := combined["$and"].([]bson.M)
		if !ok || len(and) != 2 {
			t.Fatalf("combined = %v, want two-clause $and", combined)
		}
	})

	t.Run("empty scope returns extra", func(t *testing.T) {
		combined := And(bson.M{}, search)
		if _, hasAnd := combined["$and"]; hasAnd {
			t.Errorf("combined = %v, want no $and wrapper", combined)
		}
		if _, hasOr := combined["$or"]; !hasOr {
			t.Errorf("combined = %v, want search clause preserved", combined)
		}
	})

	t.Run("all empty returns empty", func(t *testing.T) {
		if len(And(bson.M{}, bson.M{})) != 0 {
			t.Error("expected empty filter")
		}
	})

	t.Run("extra empty returns scope", func(t *testing.T) {
		combined := And(scope, bson.M{})
		if _, hasOr := combined["$or"]; !hasOr {
			t.Errorf("combined = %v, want scope preserved", combined)
		}
	})
}
