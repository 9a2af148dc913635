package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAttendanceState(t *testing.T) {
	now := time.Now()

	assert.Equal(t, AttendanceAbsent, Attendance{}.State())
	assert.Equal(t, AttendancePunchedIn, Attendance{PunchInTime: &now}.State())
	assert.Equal(t, AttendanceCompleted, Attendance{PunchInTime: &now, PunchOutTime: &now}.State())
}

func TestCityScopeAddCollapsesToAllOnNilCity(t *testing.T) {
	scope := NewCityScope()
	one := int64(1)
	scope.Add(&one)
	assert.False(t, scope.All)
	assert.True(t, scope.Contains(1))
	assert.False(t, scope.Contains(2))

	scope.Add(nil)
	assert.True(t, scope.All)
	assert.True(t, scope.Contains(2))
}

func TestCityScopeAddIsNoopOnceAll(t *testing.T) {
	scope := NewCityScope()
	scope.Add(nil)

	two := int64(2)
	scope.Add(&two)

	assert.True(t, scope.All)
	assert.Empty(t, scope.IDs())
}

func TestResolvedPermissionsHasAndScopeFor(t *testing.T) {
	scope := NewCityScope()
	one := int64(1)
	scope.Add(&one)

	resolved := ResolvedPermissions{
		PermSet: map[string]struct{}{PermissionKey("attendance", "punch"): {}},
		CityMap: map[string]CityScope{PermissionKey("attendance", "punch"): scope},
	}

	assert.True(t, resolved.Has("attendance", "punch"))
	assert.False(t, resolved.Has("attendance", "report"))

	gotScope := resolved.ScopeFor("attendance", "punch")
	assert.True(t, gotScope.Contains(1))

	missing := resolved.ScopeFor("rbac", "manage")
	assert.False(t, missing.All)
	assert.Empty(t, missing.IDs())
}
