package session

import (
	"slices"

	"deliveryfood/models"
)

// Tab is a navigation entry of the client.
type Tab string

const (
	TabLogin Tab = "Login"

	TabHome    Tab = "Home"
	TabAbout   Tab = "About"
	TabMenu    Tab = "Menu"
	TabCart    Tab = "Cart"
	TabOrders  Tab = "Orders"
	TabProfile Tab = "Profile"

	TabDashboard        Tab = "Dashboard"
	TabCouriers         Tab = "Couriers"
	TabRestaurants      Tab = "Restaurants"
	TabMenus            Tab = "Menus"
	TabUnassignedOrders Tab = "Unassigned Orders"
	TabReports          Tab = "Reports"

	TabCourierDashboard Tab = "Courier Dashboard"
)

var navigation = map[models.UserRole][]Tab{
	models.RoleCustomer: {TabHome, TabAbout, TabMenu, TabCart, TabOrders, TabProfile},
	models.RoleAdmin:    {TabDashboard, TabCouriers, TabRestaurants, TabMenus, TabUnassignedOrders, TabReports},
	models.RoleCourier:  {TabCourierDashboard},
}

// Navigation returns the tabs a role may see. Without a known role only the
// login entry is offered.
func Navigation(role models.UserRole) []Tab {
	tabs, ok := navigation[role]
	if !ok {
		return []Tab{TabLogin}
	}
	return slices.Clone(tabs)
}

// Allowed reports whether role may open tab.
func Allowed(role models.UserRole, tab Tab) bool {
	return slices.Contains(Navigation(role), tab)
}
