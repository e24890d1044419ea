package session

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deliveryfood/models"
)

func TestNavigation_PerRole(t *testing.T) {
	tests := []struct {
		role models.UserRole
		want []Tab
	}{
		{"", []Tab{TabLogin}},
		{"UNKNOWN", []Tab{TabLogin}},
		{models.RoleCustomer, []Tab{TabHome, TabAbout, TabMenu, TabCart, TabOrders, TabProfile}},
		{models.RoleAdmin, []Tab{TabDashboard, TabCouriers, TabRestaurants, TabMenus, TabUnassignedOrders, TabReports}},
		{models.RoleCourier, []Tab{TabCourierDashboard}},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.want, Navigation(tt.role))
		})
	}

	// The sets are exclusive.
	for _, tab := range Navigation(models.RoleAdmin) {
		assert.False(t, Allowed(models.RoleCustomer, tab), tab)
		assert.False(t, Allowed(models.RoleCourier, tab), tab)
	}
	assert.False(t, Allowed(models.RoleCustomer, TabLogin))
}

func TestStore_PersistsAndClears(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	s, err := Open(path)
	require.NoError(t, err)
	assert.Zero(t, s.UserID())

	require.NoError(t, s.SignIn(1, models.RoleAdmin, "admin@test.local", "tok"))
	require.NoError(t, s.SetActiveTab(TabReports))
	assert.Error(t, s.SetActiveTab(TabCart))

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, State{
		UserID: 1, Role: models.RoleAdmin, Email: "admin@test.local",
		AdminID: 1, ActiveTab: TabReports, Token: "tok",
	}, reopened.State())

	require.NoError(t, reopened.Clear())
	assert.Equal(t, State{}, reopened.State())
	_, err = os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestStore_CustomerHasNoAdminID(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	require.NoError(t, s.SignIn(7, models.RoleCustomer, "budi@test.local", "tok"))
	assert.Zero(t, s.State().AdminID)
	assert.Equal(t, TabHome, s.State().ActiveTab)
}

func TestStore_EventsInOrder(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)

	var got []string
	unsubA := s.Subscribe(func(e Event) { got = append(got, "a:"+string(e.Type)) })
	s.Subscribe(func(e Event) { got = append(got, "b:"+string(e.Type)) })

	require.NoError(t, s.SignIn(7, models.RoleCustomer, "budi@test.local", "tok"))
	s.NotifyCartChanged()
	unsubA()
	unsubA()
	require.NoError(t, s.Clear())

	assert.Equal(t, []string{
		"a:identity_changed", "b:identity_changed",
		"a:cart_changed", "b:cart_changed",
		"b:logged_out",
	}, got)
}

func TestStore_SerializesConcurrentPublishers(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)

	var mu sync.Mutex
	inside := 0
	overlapped := false
	s.Subscribe(func(Event) {
		mu.Lock()
		inside++
		if inside > 1 {
			overlapped = true
		}
		mu.Unlock()

		mu.Lock()
		inside--
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.NotifyCartChanged()
		}()
	}
	wg.Wait()
	assert.False(t, overlapped)
}
