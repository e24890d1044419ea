package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deliveryfood/models"
)

func names[T any](items []T, name func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = name(it)
	}
	return out
}

func TestApply_Restaurants(t *testing.T) {
	restaurants := []models.Restaurant{
		{ID: 1, Name: "soto Betawi", Address: "Jl. Dago 9"},
		{ID: 2, Name: "Ayam Geprek", Address: "Jl. Riau 2"},
		{ID: 3, Name: "Bakso Malang", Address: "Jl. Dago 1"},
	}
	name := func(r models.Restaurant) string { return r.Name }

	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{"default sort is case-insensitive name", Query{}, []string{"Ayam Geprek", "Bakso Malang", "soto Betawi"}},
		{"search address", Query{Search: "DAGO"}, []string{"Bakso Malang", "soto Betawi"}},
		{"descending", Query{SortBy: "address", Desc: true}, []string{"Ayam Geprek", "soto Betawi", "Bakso Malang"}},
		{"no match", Query{Search: "pizza"}, []string{}},
		{"second page", Query{Page: 2, PageSize: 2}, []string{"soto Betawi"}},
		{"page past the end", Query{Page: 5, PageSize: 2}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := Apply(restaurants, Restaurants, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(page.Items, name))
		})
	}

	assert.Equal(t, "soto Betawi", restaurants[0].Name, "input untouched")
}

func TestApply_PageCounts(t *testing.T) {
	menus := []models.MenuItem{{ID: 1, Price: 3}, {ID: 2, Price: 1}, {ID: 3, Price: 2}, {ID: 4, Price: 5}, {ID: 5, Price: 4}}

	page, err := Apply(menus, Menus, Query{SortBy: "price", PageSize: 2, Page: 3})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 3, page.Pages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(5), page.Items[0].Price)
}

func TestApply_Menus_SearchRestaurantName(t *testing.T) {
	warung := &models.Restaurant{Name: "Warung Padang"}
	menus := []models.MenuItem{
		{ID: 1, Name: "Rendang", Restaurant: warung},
		{ID: 2, Name: "Bakso"},
	}
	page, err := Apply(menus, Menus, Query{Search: "padang"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Rendang", page.Items[0].Name)
}

func TestApply_UnknownColumn(t *testing.T) {
	_, err := Apply([]models.User{{Name: "a"}}, Couriers, Query{SortBy: "salary"})
	assert.ErrorContains(t, err, "email, id, name")
}
