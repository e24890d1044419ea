package listing

import (
	"cmp"

	"deliveryfood/models"
)

var Couriers = Schema[models.User]{
	Text: func(u models.User) []string { return []string{u.Name, u.Email, u.Phone} },
	Sort: map[string]func(a, b models.User) int{
		"name":  func(a, b models.User) int { return Fold(a.Name, b.Name) },
		"email": func(a, b models.User) int { return Fold(a.Email, b.Email) },
		"id":    func(a, b models.User) int { return cmp.Compare(a.ID, b.ID) },
	},
	DefaultSort: "name",
}

var Restaurants = Schema[models.Restaurant]{
	Text: func(r models.Restaurant) []string { return []string{r.Name, r.Address} },
	Sort: map[string]func(a, b models.Restaurant) int{
		"name":    func(a, b models.Restaurant) int { return Fold(a.Name, b.Name) },
		"address": func(a, b models.Restaurant) int { return Fold(a.Address, b.Address) },
		"id":      func(a, b models.Restaurant) int { return cmp.Compare(a.ID, b.ID) },
	},
	DefaultSort: "name",
}

var Menus = Schema[models.MenuItem]{
	Text: func(m models.MenuItem) []string {
		fields := []string{m.Name, m.Description}
		if m.Restaurant != nil {
			fields = append(fields, m.Restaurant.Name)
		}
		return fields
	},
	Sort: map[string]func(a, b models.MenuItem) int{
		"name":  func(a, b models.MenuItem) int { return Fold(a.Name, b.Name) },
		"price": func(a, b models.MenuItem) int { return cmp.Compare(a.Price, b.Price) },
		"id":    func(a, b models.MenuItem) int { return cmp.Compare(a.ID, b.ID) },
	},
	DefaultSort: "name",
}
