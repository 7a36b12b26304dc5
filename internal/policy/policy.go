// Package policy holds the declarative authorization data consulted by the
// request guards: plan quotas and role permissions.
package policy

type Plan string

const (
	PlanSilver  Plan = "Silver"
	PlanGold    Plan = "Gold"
	PlanDiamond Plan = "Diamond"
)

const defaultQuotaMessage = "You are not permitted to borrow more books, please return the ones you have borrowed or upgrade your plan."

type Quota struct {
	Limit   int
	Message string
}

var planQuotas = map[Plan]Quota{
	PlanSilver:  {Limit: 5, Message: defaultQuotaMessage},
	PlanDiamond: {Limit: 20, Message: defaultQuotaMessage},
	PlanGold:    {Limit: 50, Message: "Book limit reached, return previously borrowed"},
}

// QuotaFor returns the rental quota for a plan. Unknown plans get the Silver
// quota.
func QuotaFor(plan string) Quota {
	if q, ok := planQuotas[Plan(plan)]; ok {
		return q
	}
	return planQuotas[PlanSilver]
}

// Allows reports whether a user currently holding active unreturned rentals
// may take one more.
func (q Quota) Allows(active int) bool {
	return active < q.Limit
}

type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

type Action string

const (
	ActionReadCatalog   Action = "catalog:read"
	ActionManageCatalog Action = "catalog:manage"
	ActionRentBooks     Action = "books:rent"
)

var roleActions = map[Role]map[Action]bool{
	RoleMember: {
		ActionReadCatalog: true,
		ActionRentBooks:   true,
	},
	RoleAdmin: {
		ActionReadCatalog:   true,
		ActionManageCatalog: true,
		ActionRentBooks:     true,
	},
}

func RoleOf(isAdmin bool) Role {
	if isAdmin {
		return RoleAdmin
	}
	return RoleMember
}

func Can(role Role, action Action) bool {
	return roleActions[role][action]
}
