package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuotaBoundaries(t *testing.T) {
	tests := []struct {
		plan   string
		active int
		want   bool
	}{
		{"Silver", 0, true},
		{"Silver", 4, true},
		{"Silver", 5, false},
		{"Silver", 7, false},
		{"Diamond", 19, true},
		{"Diamond", 20, false},
		{"Gold", 49, true},
		{"Gold", 50, false},
		{"", 4, true},
		{"Platinum", 5, false},
	}

	for _, tc := range tests {
		got := QuotaFor(tc.plan).Allows(tc.active)
		assert.Equalf(t, tc.want, got, "plan=%q active=%d", tc.plan, tc.active)
	}
}

func TestQuotaMessages(t *testing.T) {
	assert.Equal(t, "Book limit reached, return previously borrowed", QuotaFor("Gold").Message)
	assert.Contains(t, QuotaFor("Silver").Message, "upgrade your plan")
	assert.Equal(t, QuotaFor("Silver").Message, QuotaFor("Diamond").Message)
}

func TestRolePermissions(t *testing.T) {
	assert.True(t, Can(RoleOf(true), ActionManageCatalog))
	assert.False(t, Can(RoleOf(false), ActionManageCatalog))
	assert.True(t, Can(RoleOf(false), ActionRentBooks))
	assert.False(t, Can(Role("ghost"), ActionReadCatalog))
}
