package menu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchesExtras(t *testing.T) {
	tests := []struct {
		name   string
		extras []string
		terms  []string
		want   bool
	}{
		{
			name:   "substring per term, and across terms",
			extras: []string{"Veganes Gericht", "Bio-Siegel"},
			terms:  []string{"vegan", "bio"},
			want:   true,
		},
		{
			name:   "missing one term",
			extras: []string{"Veganes Gericht"},
			terms:  []string{"vegan", "bio"},
			want:   false,
		},
		{
			name:   "one label may satisfy several terms",
			extras: []string{"Vegetarisch Bio"},
			terms:  []string{"vegetar", "bio"},
			want:   true,
		},
		{
			name:   "no terms",
			extras: nil,
			terms:  nil,
			want:   true,
		},
		{
			name:   "no extras",
			extras: nil,
			terms:  []string{"vegan"},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesExtras(tt.extras, tt.terms))
		})
	}
}

func TestFilterExtras(t *testing.T) {
	m := Aggregate(day, []LocationMenu{
		{Location: forum, Courses: Courses{
			Main: []RawDish{
				{Name: "Bowl", Extras: []string{"Veganes Gericht", "Bio-Siegel"}},
				{Name: "Burger", Extras: []string{"Veganes Gericht"}},
				{Name: "Schnitzel", Extras: []string{"Schwein"}},
			},
			Dessert: []RawDish{{Name: "Obst", Extras: []string{"Bio", "Vegan"}}},
		}},
	})

	filtered := FilterExtras(m, []string{"vegan", "bio"})
	require.NoError(t, filtered.Check())
	assert.Equal(t, []string{"Bowl"}, names(filtered.Main))
	assert.Empty(t, filtered.Side)
	assert.NotNil(t, filtered.Side)
	assert.Equal(t, []string{"Obst"}, names(filtered.Dessert))
	assert.Equal(t, m.Date, filtered.Date)

	// comma separated terms behave like repeated flags
	assert.Equal(t, filtered, FilterExtras(m, []string{"vegan, bio"}))

	// no terms leaves the menu untouched
	assert.Equal(t, m, FilterExtras(m, []string{" "}))
}

func TestProjectPrices(t *testing.T) {
	p := Prices{Student: Price("2,20€"), Guest: Price("4,00€")}

	all := ProjectPrices(p, TierAll)
	require.Len(t, all, 3)
	assert.Equal(t, PriceColumn{Tier: Student, Label: "Preis Studierende", Value: "2,20€"}, all[0])
	assert.Equal(t, PriceColumn{Tier: Employee, Label: "Preis Bedienstete", Value: ""}, all[1])
	assert.Equal(t, PriceColumn{Tier: Guest, Label: "Preis Gäste", Value: "4,00€"}, all[2])

	assert.Equal(t, []PriceColumn{{Tier: Guest, Label: "Preis", Value: "4,00€"}}, ProjectPrices(p, Guest))
	assert.Equal(t, []PriceColumn{{Tier: Employee, Label: "Preis", Value: NotOffered}}, ProjectPrices(p, Employee))
}

func TestParsePriceTier(t *testing.T) {
	tests := []struct {
		in      string
		want    PriceTier
		wantErr bool
	}{
		{in: "", want: TierAll},
		{in: "student", want: Student},
		{in: "Studierende", want: Student},
		{in: "bediensteter", want: Employee},
		{in: "employee", want: Employee},
		{in: "Gast", want: Guest},
		{in: "gäste", want: Guest},
		{in: "guest", want: Guest},
		{in: "vip", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePriceTier(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPricesEqual(t *testing.T) {
	a := Prices{Student: Price("1,00€")}
	b := Prices{Student: Price("1,00€")}
	assert.True(t, a.Equal(b))

	b.Guest = Price("")
	assert.False(t, a.Equal(b), "an empty price is not the same as no price")
}
